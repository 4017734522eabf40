package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Jassur2025/metallerp-sub000/internal/dto"
	"github.com/Jassur2025/metallerp-sub000/internal/ledger"
	"github.com/Jassur2025/metallerp-sub000/internal/model"
	"github.com/Jassur2025/metallerp-sub000/internal/realtime"
	"github.com/Jassur2025/metallerp-sub000/internal/repository"
	"github.com/Jassur2025/metallerp-sub000/internal/worker"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductService manages the catalog side of stock rows. Quantity and cost
// price are owned by procurement and never written here after creation.
type ProductService interface {
	Create(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error)
	// Get returns every warehouse row of one catalog product.
	Get(ctx context.Context, id uuid.UUID) ([]dto.ProductResponse, error)
	List(ctx context.Context, filter dto.ProductFilter) (*dto.ProductListResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error)
	Alerts(ctx context.Context) ([]dto.ProductResponse, error)
	Movements(ctx context.Context, filter dto.StockMovementFilter) (*dto.StockMovementListResponse, error)
}

type productService struct {
	repo      repository.ProductRepository
	movements repository.StockMovementRepository
	notify    notifier
}

func NewProductService(repo repository.ProductRepository, movements repository.StockMovementRepository, dispatcher *worker.Dispatcher, hub *realtime.Hub) ProductService {
	return &productService{repo: repo, movements: movements, notify: newNotifier(dispatcher, hub)}
}

func (s *productService) Create(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error) {
	p := &model.Product{
		ID:            uuid.New(),
		Warehouse:     orDefault(req.Warehouse, model.WarehouseMain),
		Name:          strings.TrimSpace(req.Name),
		Type:          orDefault(req.Type, "other"),
		Dimensions:    req.Dimensions,
		SteelGrade:    req.SteelGrade,
		Quantity:      decimal.Zero,
		Unit:          req.Unit,
		PricePerUnit:  req.PricePerUnit,
		CostPrice:     req.CostPrice,
		MinStockLevel: req.MinStockLevel,
		Origin:        orDefault(req.Origin, model.OriginLocal),
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	resp := toProductResponse(*p)
	s.notify.committed(ctx, realtime.EventProductSaved, resp, worker.SheetsSyncPayload{ProductIDs: []string{p.ID.String()}})
	return &resp, nil
}

func (s *productService) Get(ctx context.Context, id uuid.UUID) ([]dto.ProductResponse, error) {
	rows, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookup(err, "product", id.String())
	}
	if len(rows) == 0 {
		return nil, notFound("product", id.String())
	}
	out := make([]dto.ProductResponse, 0, len(rows))
	for _, p := range rows {
		out = append(out, toProductResponse(p))
	}
	return out, nil
}

func (s *productService) List(ctx context.Context, filter dto.ProductFilter) (*dto.ProductListResponse, error) {
	rows, total, err := s.repo.List(ctx, repository.ProductFilter{
		Name:      filter.Name,
		Type:      filter.Type,
		Warehouse: filter.Warehouse,
		Page:      page(filter.Page, filter.Limit),
	})
	if err != nil {
		return nil, err
	}
	out := make([]dto.ProductResponse, 0, len(rows))
	for _, p := range rows {
		out = append(out, toProductResponse(p))
	}
	return &dto.ProductListResponse{Data: out, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *productService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	rows, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookup(err, "product", id.String())
	}
	var p *model.Product
	for i := range rows {
		if rows[i].Warehouse == req.Warehouse {
			p = &rows[i]
			break
		}
	}
	if p == nil {
		return nil, notFound("product", id.String()+"@"+req.Warehouse)
	}

	if req.Name != nil {
		p.Name = strings.TrimSpace(*req.Name)
	}
	if req.Dimensions != nil {
		p.Dimensions = *req.Dimensions
	}
	if req.SteelGrade != nil {
		p.SteelGrade = *req.SteelGrade
	}
	if req.PricePerUnit != nil {
		if req.PricePerUnit.IsNegative() {
			return nil, &ledger.ValidationError{Fields: map[string]string{"price_per_unit": "must not be negative"}}
		}
		p.PricePerUnit = *req.PricePerUnit
	}
	if req.MinStockLevel != nil {
		if req.MinStockLevel.IsNegative() {
			return nil, &ledger.ValidationError{Fields: map[string]string{"min_stock_level": "must not be negative"}}
		}
		p.MinStockLevel = *req.MinStockLevel
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	resp := toProductResponse(*p)
	s.notify.committed(ctx, realtime.EventProductSaved, resp, worker.SheetsSyncPayload{ProductIDs: []string{p.ID.String()}})
	return &resp, nil
}

func (s *productService) Alerts(ctx context.Context) ([]dto.ProductResponse, error) {
	rows, err := s.repo.LowStock(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ProductResponse, 0, len(rows))
	for _, p := range rows {
		out = append(out, toProductResponse(p))
	}
	return out, nil
}

func (s *productService) Movements(ctx context.Context, filter dto.StockMovementFilter) (*dto.StockMovementListResponse, error) {
	f := repository.StockMovementFilter{Type: filter.Type, Page: page(filter.Page, filter.Limit)}
	if filter.ProductID != "" {
		id, err := uuid.Parse(filter.ProductID)
		if err != nil {
			return nil, &ledger.ValidationError{Fields: map[string]string{"product_id": "must be a UUID"}}
		}
		f.ProductID = &id
	}
	if filter.ReferenceID != "" {
		id, err := uuid.Parse(filter.ReferenceID)
		if err != nil {
			return nil, &ledger.ValidationError{Fields: map[string]string{"reference_id": "must be a UUID"}}
		}
		f.ReferenceID = &id
	}
	rows, total, err := s.movements.List(ctx, f)
	if err != nil {
		return nil, err
	}
	out := make([]dto.StockMovementResponse, 0, len(rows))
	for _, m := range rows {
		out = append(out, toMovementResponse(m))
	}
	return &dto.StockMovementListResponse{Data: out, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
