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

	"github.com/google/uuid"
)

type WorkflowService interface {
	Create(ctx context.Context, req dto.CreateWorkflowOrderRequest) (*dto.WorkflowOrderResponse, error)
	List(ctx context.Context, filter dto.WorkflowOrderFilter) (*dto.WorkflowOrderListResponse, error)
	// Get includes the lines stock cannot cover right now.
	Get(ctx context.Context, id uuid.UUID) (*dto.WorkflowOrderResponse, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, req dto.UpdateWorkflowStatusRequest) (*dto.WorkflowOrderResponse, error)
}

type workflowService struct {
	orders   repository.WorkflowOrderRepository
	products repository.ProductRepository
	hub      *realtime.Hub
}

func NewWorkflowService(orders repository.WorkflowOrderRepository, products repository.ProductRepository, hub *realtime.Hub) WorkflowService {
	return &workflowService{orders: orders, products: products, hub: hub}
}

func (s *workflowService) Create(ctx context.Context, req dto.CreateWorkflowOrderRequest) (*dto.WorkflowOrderResponse, error) {
	o := &model.WorkflowOrder{
		ID:           uuid.New(),
		CustomerName: strings.TrimSpace(req.CustomerName),
		Status:       model.OrderDraft,
		Note:         req.Note,
	}
	for i, it := range req.Items {
		pid, err := uuid.Parse(it.ProductID)
		if err != nil {
			return nil, &ledger.ValidationError{Fields: map[string]string{fmt.Sprintf("items[%d].product_id", i): "must be a UUID"}}
		}
		o.Items = append(o.Items, model.WorkflowOrderItem{
			ID:          uuid.New(),
			OrderID:     o.ID,
			ProductID:   pid,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			Unit:        it.Unit,
		})
	}
	if err := s.orders.Create(ctx, o); err != nil {
		return nil, fmt.Errorf("create workflow order: %w", err)
	}
	return s.respond(ctx, *o, true)
}

func (s *workflowService) List(ctx context.Context, filter dto.WorkflowOrderFilter) (*dto.WorkflowOrderListResponse, error) {
	rows, total, err := s.orders.List(ctx, repository.WorkflowOrderFilter{
		Status: filter.Status,
		Page:   page(filter.Page, filter.Limit),
	})
	if err != nil {
		return nil, err
	}
	out := make([]dto.WorkflowOrderResponse, 0, len(rows))
	for _, o := range rows {
		out = append(out, toWorkflowOrderResponse(o, nil))
	}
	return &dto.WorkflowOrderListResponse{Data: out, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *workflowService) Get(ctx context.Context, id uuid.UUID) (*dto.WorkflowOrderResponse, error) {
	o, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, lookup(err, "workflow order", id.String())
	}
	return s.respond(ctx, *o, false)
}

// UpdateStatus moves an order along its workflow. Completed and cancelled
// orders are final.
func (s *workflowService) UpdateStatus(ctx context.Context, id uuid.UUID, req dto.UpdateWorkflowStatusRequest) (*dto.WorkflowOrderResponse, error) {
	o, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, lookup(err, "workflow order", id.String())
	}
	switch o.Status {
	case model.OrderCompleted, model.OrderCancelled:
		if req.Status != o.Status {
			return nil, &ledger.ValidationError{Fields: map[string]string{"status": "order is already " + o.Status}}
		}
	}
	if err := s.orders.UpdateStatus(ctx, id, req.Status); err != nil {
		return nil, fmt.Errorf("update workflow order: %w", err)
	}
	o.Status = req.Status
	return s.respond(ctx, *o, true)
}

func (s *workflowService) respond(ctx context.Context, o model.WorkflowOrder, publish bool) (*dto.WorkflowOrderResponse, error) {
	ids := make([]uuid.UUID, 0, len(o.Items))
	for _, it := range o.Items {
		ids = append(ids, it.ProductID)
	}
	products, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	resp := toWorkflowOrderResponse(o, ledger.MissingItems(o, products))
	if publish {
		s.hub.Publish(realtime.EventWorkflowOrderSaved, resp)
	}
	return &resp, nil
}
