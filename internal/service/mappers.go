package service

import (
	"time"

	"github.com/Jassur2025/metallerp-sub000/internal/dto"
	"github.com/Jassur2025/metallerp-sub000/internal/ledger"
	"github.com/Jassur2025/metallerp-sub000/internal/model"

	"github.com/google/uuid"
)

func uuidPtrString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

func toProductResponse(p model.Product) dto.ProductResponse {
	return dto.ProductResponse{
		ID:            p.ID.String(),
		Warehouse:     p.Warehouse,
		Name:          p.Name,
		Type:          p.Type,
		Dimensions:    p.Dimensions,
		SteelGrade:    p.SteelGrade,
		Quantity:      p.Quantity,
		Unit:          p.Unit,
		PricePerUnit:  p.PricePerUnit,
		CostPrice:     p.CostPrice,
		MinStockLevel: p.MinStockLevel,
		Origin:        p.Origin,
		LowStock:      p.MinStockLevel.IsPositive() && p.Quantity.LessThanOrEqual(p.MinStockLevel),
	}
}

func toMovementResponse(m model.StockMovement) dto.StockMovementResponse {
	return dto.StockMovementResponse{
		ID:             m.ID.String(),
		ProductID:      m.ProductID.String(),
		Warehouse:      m.Warehouse,
		Type:           m.Type,
		QuantityChange: m.QuantityChange,
		QuantityBefore: m.QuantityBefore,
		QuantityAfter:  m.QuantityAfter,
		CostBefore:     m.CostBefore,
		CostAfter:      m.CostAfter,
		Reason:         m.Reason,
		ReferenceID:    uuidPtrString(m.ReferenceID),
		CreatedAt:      m.CreatedAt.Format(time.RFC3339),
	}
}

func toTransactionResponse(t model.Transaction) dto.TransactionResponse {
	return dto.TransactionResponse{
		ID:           t.ID.String(),
		Date:         t.Date.Format("2006-01-02"),
		Type:         t.Type,
		Amount:       t.Amount,
		Currency:     t.Currency,
		ExchangeRate: t.ExchangeRate,
		Method:       t.Method,
		Description:  t.Description,
		RelatedID:    uuidPtrString(t.RelatedID),
	}
}

func toTransactionResponses(txs []model.Transaction) []dto.TransactionResponse {
	out := make([]dto.TransactionResponse, 0, len(txs))
	for _, t := range txs {
		out = append(out, toTransactionResponse(t))
	}
	return out
}

func toPurchaseResponse(p model.Purchase) dto.PurchaseResponse {
	debt := ledger.DebtViewOf(p)
	items := make([]dto.PurchaseItemResponse, 0, len(p.Items))
	for _, it := range p.Items {
		items = append(items, dto.PurchaseItemResponse{
			ID:                     it.ID.String(),
			Position:               it.Position,
			ProductID:              it.ProductID.String(),
			ProductName:            it.ProductName,
			Dimensions:             it.Dimensions,
			Warehouse:              it.Warehouse,
			Quantity:               it.Quantity,
			Unit:                   it.Unit,
			InvoicePrice:           it.InvoicePrice,
			InvoicePriceWithoutVat: it.InvoicePriceWithoutVat,
			VatAmount:              it.VatAmount,
			AllocatedOverhead:      it.AllocatedOverhead,
			LandedCost:             it.LandedCost,
			TotalLineCost:          it.TotalLineCost,
			TotalLineCostUZS:       it.TotalLineCostUZS,
		})
	}
	return dto.PurchaseResponse{
		ID:              p.ID.String(),
		Date:            p.Date.Format("2006-01-02"),
		SupplierName:    p.SupplierName,
		ProcurementType: p.ProcurementType,
		Currency:        p.Currency,
		Warehouse:       p.Warehouse,
		Items:           items,
		Overheads: dto.OverheadsRequest{
			Logistics:   p.Overheads.Logistics,
			CustomsDuty: p.Overheads.CustomsDuty,
			ImportVat:   p.Overheads.ImportVat,
			Other:       p.Overheads.Other,
		},
		TotalInvoiceAmount:    p.TotalInvoiceAmount,
		TotalInvoiceAmountUZS: p.TotalInvoiceAmountUZS,
		TotalVatAmountUZS:     p.TotalVatAmountUZS,
		TotalWithoutVatUZS:    p.TotalWithoutVatUZS,
		TotalLandedAmount:     p.TotalLandedAmount,
		ExpensedTaxes:         p.ExpensedTaxes,
		PaymentMethod:         p.PaymentMethod,
		PaymentCurrency:       p.PaymentCurrency,
		PaymentStatus:         p.PaymentStatus,
		AmountPaidUSD:         ledger.NormalizedPaidUSD(p),
		ExchangeRate:          p.ExchangeRate,
		VATRate:               p.VATRate,
		ImportTaxPolicy:       p.ImportTaxPolicy,
		Legacy:                ledger.IsLegacy(p),
		Debt: dto.DebtResponse{
			Currency:     string(debt.Currency),
			Total:        debt.Total,
			Paid:         debt.Paid,
			Remaining:    debt.Remaining,
			RemainingUSD: ledger.RemainingDebtUSD(p),
		},
		WorkflowOrderID: uuidPtrString(p.WorkflowOrderID),
		CreatedAt:       p.CreatedAt.Format(time.RFC3339),
	}
}

func toAllocationResponse(a ledger.Allocation, pc ledger.PricingContext) dto.AllocationResponse {
	lines := make([]dto.AllocatedLineResponse, 0, len(a.Lines))
	for _, l := range a.Lines {
		lines = append(lines, dto.AllocatedLineResponse{
			Quantity:               l.Quantity,
			InvoicePrice:           l.InvoicePrice,
			InvoicePriceWithoutVat: l.InvoicePriceWithoutVat,
			VatAmount:              l.VatAmount,
			AllocatedOverhead:      l.AllocatedOverhead,
			LandedCost:             l.LandedCost,
			TotalLineCost:          l.TotalLineCost,
			TotalLineCostUZS:       l.TotalLineCostUZS,
		})
	}
	return dto.AllocationResponse{
		Lines:              lines,
		TotalInvoiceValue:  a.TotalInvoiceValue,
		TotalOverheads:     a.TotalOverheads,
		ExpensedTaxes:      a.ExpensedTaxes,
		TotalLandedValue:   a.TotalLandedValue,
		TotalInvoiceUZS:    a.TotalInvoiceUZS,
		TotalVatUZS:        a.TotalVatUZS,
		TotalWithoutVatUZS: a.TotalWithoutVatUZS,
		ExchangeRate:       pc.ExchangeRate,
		VATRate:            pc.VATRate,
	}
}

func toStockDeltaResponse(d ledger.StockDelta) dto.StockDeltaResponse {
	return dto.StockDeltaResponse{
		ProductID:      d.Key.ProductID.String(),
		Warehouse:      d.Key.Warehouse,
		QuantityBefore: d.QuantityBefore,
		QuantityAfter:  d.QuantityAfter,
		CostBefore:     d.CostBefore,
		CostAfter:      d.CostAfter,
		Created:        d.Created,
		Migrated:       d.Migrated,
	}
}

func toShortageResponses(ss []ledger.Shortage) []dto.ShortageResponse {
	out := make([]dto.ShortageResponse, 0, len(ss))
	for _, s := range ss {
		out = append(out, dto.ShortageResponse{
			ProductID:   s.ProductID.String(),
			ProductName: s.ProductName,
			Unit:        s.Unit,
			Ordered:     s.Ordered,
			OnHand:      s.OnHand,
			Missing:     s.Missing,
		})
	}
	return out
}

func toWorkflowOrderResponse(o model.WorkflowOrder, shortages []ledger.Shortage) dto.WorkflowOrderResponse {
	items := make([]dto.WorkflowOrderItemResponse, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, dto.WorkflowOrderItemResponse{
			ProductID:   it.ProductID.String(),
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			Unit:        it.Unit,
		})
	}
	return dto.WorkflowOrderResponse{
		ID:           o.ID.String(),
		CustomerName: o.CustomerName,
		Status:       o.Status,
		Note:         o.Note,
		Items:        items,
		Shortages:    toShortageResponses(shortages),
		CreatedAt:    o.CreatedAt.Format(time.RFC3339),
	}
}
