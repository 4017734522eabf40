package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/Jassur2025/metallerp-sub000/internal/apierror"
	"github.com/Jassur2025/metallerp-sub000/internal/dto"
	"github.com/Jassur2025/metallerp-sub000/internal/middleware"
	"github.com/Jassur2025/metallerp-sub000/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	mimePDF  = "application/pdf"
)

type ProcurementHandler struct{ svc service.ProcurementService }

func NewProcurementHandler(svc service.ProcurementService) *ProcurementHandler {
	return &ProcurementHandler{svc: svc}
}

// Preview godoc
// @Summary      Preview landed costs
// @Description  Runs the landed-cost allocation for a cart without saving anything.
// @Tags         procurement
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.PreviewRequest true "Cart"
// @Success      200  {object} dto.AllocationResponse
// @Failure      422  {object} apierror.ValidationError
// @Router       /v1/procurement/preview [post]
func (h *ProcurementHandler) Preview(c *gin.Context) {
	var req dto.PreviewRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Preview(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CreatePurchase godoc
// @Summary      Record a purchase
// @Description  Allocates landed costs, books the payment and receives stock in one transaction.
// @Description  409 means the chosen till cannot cover the payment; the body names the debt fallback.
// @Tags         procurement
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CreatePurchaseRequest true "Purchase"
// @Success      201  {object} dto.CreatePurchaseResponse
// @Failure      409  {object} apierror.FundsError
// @Failure      422  {object} apierror.ValidationError
// @Failure      503  {object} apierror.APIError
// @Router       /v1/procurement/purchases [post]
func (h *ProcurementHandler) CreatePurchase(c *gin.Context) {
	var req dto.CreatePurchaseRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CreatePurchase(c.Request.Context(), req, middleware.UserID(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ListPurchases godoc
// @Summary      List purchases
// @Tags         procurement
// @Produce      json
// @Security     BearerAuth
// @Param        supplier query string false "Supplier name contains"
// @Param        status   query string false "unpaid | partial | paid"
// @Param        from     query string false "YYYY-MM-DD"
// @Param        to       query string false "YYYY-MM-DD, inclusive"
// @Param        page     query int    false "Page"
// @Param        limit    query int    false "Page size"
// @Success      200  {object} dto.PurchaseListResponse
// @Router       /v1/procurement/purchases [get]
func (h *ProcurementHandler) ListPurchases(c *gin.Context) {
	var filter dto.PurchaseFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.ListPurchases(c.Request.Context(), filter)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetPurchase godoc
// @Summary      Get a purchase
// @Tags         procurement
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Purchase UUID"
// @Success      200  {object} dto.PurchaseResponse
// @Failure      404  {object} apierror.APIError
// @Router       /v1/procurement/purchases/{id} [get]
func (h *ProcurementHandler) GetPurchase(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.GetPurchase(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Repay godoc
// @Summary      Repay supplier debt
// @Tags         procurement
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string           true "Purchase UUID"
// @Param        body body dto.RepayRequest true "Repayment"
// @Success      201  {object} dto.RepayResponse
// @Failure      409  {object} apierror.FundsError
// @Failure      422  {object} apierror.ValidationError
// @Router       /v1/procurement/purchases/{id}/repayments [post]
func (h *ProcurementHandler) Repay(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.RepayRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Repay(c.Request.Context(), id, req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// EditLine godoc
// @Summary      Edit a purchase line
// @Description  Recomputes the purchase totals and moves stock by the quantity difference.
// @Tags         procurement
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path string              true "Purchase UUID"
// @Param        index path int                 true "Zero-based line index"
// @Param        body  body dto.EditLineRequest true "New quantity and price"
// @Success      200  {object} dto.LineChangeResponse
// @Failure      422  {object} apierror.ValidationError
// @Router       /v1/procurement/purchases/{id}/items/{index} [put]
func (h *ProcurementHandler) EditLine(c *gin.Context) {
	id, index, ok := lineParams(c)
	if !ok {
		return
	}
	var req dto.EditLineRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.EditLine(c.Request.Context(), id, index, req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// DeleteLine godoc
// @Summary      Delete a purchase line
// @Tags         procurement
// @Produce      json
// @Security     BearerAuth
// @Param        id    path string true "Purchase UUID"
// @Param        index path int    true "Zero-based line index"
// @Success      200  {object} dto.LineChangeResponse
// @Failure      422  {object} apierror.ValidationError
// @Router       /v1/procurement/purchases/{id}/items/{index} [delete]
func (h *ProcurementHandler) DeleteLine(c *gin.Context) {
	id, index, ok := lineParams(c)
	if !ok {
		return
	}
	resp, err := h.svc.DeleteLine(c.Request.Context(), id, index)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func lineParams(c *gin.Context) (uuid.UUID, int, bool) {
	id, ok := pathID(c, "id")
	if !ok {
		return uuid.Nil, 0, false
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil || index < 0 {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid index"))
		return uuid.Nil, 0, false
	}
	return id, index, true
}

// MigrateLegacy godoc
// @Summary      Migrate a legacy purchase
// @Description  Rewrites a purchase stored in the pre-UZS schema into the current one. Runs once per purchase.
// @Tags         procurement
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Purchase UUID"
// @Success      200  {object} dto.MigrationResponse
// @Failure      422  {object} apierror.ValidationError
// @Router       /v1/procurement/purchases/{id}/migrate [post]
func (h *ProcurementHandler) MigrateLegacy(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.MigrateLegacy(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// SupplierDebts godoc
// @Summary      Outstanding debt per supplier
// @Tags         procurement
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array} dto.SupplierDebtResponse
// @Router       /v1/procurement/debts [get]
func (h *ProcurementHandler) SupplierDebts(c *gin.Context) {
	resp, err := h.svc.SupplierDebts(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Export godoc
// @Summary      Export purchases to Excel
// @Tags         procurement
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security     BearerAuth
// @Param        supplier query string false "Supplier name contains"
// @Param        status   query string false "unpaid | partial | paid"
// @Param        from     query string false "YYYY-MM-DD"
// @Param        to       query string false "YYYY-MM-DD, inclusive"
// @Success      200
// @Router       /v1/procurement/purchases/export.xlsx [get]
func (h *ProcurementHandler) Export(c *gin.Context) {
	var filter dto.PurchaseFilter
	if !bindQuery(c, &filter) {
		return
	}
	var buf bytes.Buffer
	if err := h.svc.ExportXLSX(c.Request.Context(), filter, &buf); err != nil {
		_ = c.Error(err)
		return
	}
	name := fmt.Sprintf("purchases-%s.xlsx", time.Now().Format("20060102"))
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Data(http.StatusOK, mimeXLSX, buf.Bytes())
}

// Voucher godoc
// @Summary      Purchase voucher PDF
// @Tags         procurement
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        id path string true "Purchase UUID"
// @Success      200
// @Failure      404  {object} apierror.APIError
// @Router       /v1/procurement/purchases/{id}/voucher.pdf [get]
func (h *ProcurementHandler) Voucher(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := h.svc.VoucherPDF(c.Request.Context(), id, &buf); err != nil {
		_ = c.Error(err)
		return
	}
	c.Header("Content-Disposition", `inline; filename="purchase-`+id.String()+`.pdf"`)
	c.Data(http.StatusOK, mimePDF, buf.Bytes())
}

// DraftFromOrder godoc
// @Summary      Purchase draft for a workflow order
// @Description  Seeds a purchase cart with the order lines stock cannot cover.
// @Tags         workflow
// @Produce      json
// @Security     BearerAuth
// @Param        id        path  string true  "Workflow order UUID"
// @Param        warehouse query string false "main | cloud"
// @Success      200  {object} dto.DraftResponse
// @Failure      422  {object} apierror.ValidationError
// @Router       /v1/workflow-orders/{id}/draft [get]
func (h *ProcurementHandler) DraftFromOrder(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.DraftFromOrder(c.Request.Context(), id, c.Query("warehouse"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
