package handler

import (
	"net/http"

	"github.com/Jassur2025/metallerp-sub000/internal/dto"
	"github.com/Jassur2025/metallerp-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

type TreasuryHandler struct{ svc service.TreasuryService }

func NewTreasuryHandler(svc service.TreasuryService) *TreasuryHandler {
	return &TreasuryHandler{svc: svc}
}

// Balances godoc
// @Summary Current till balances
// @Description Opening balances plus the signed sum of every ledger transaction.
// @Tags treasury
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.BalancesResponse
// @Router /v1/treasury/balances [get]
func (h *TreasuryHandler) Balances(c *gin.Context) {
	resp, err := h.svc.GetBalances(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RecordMovement godoc
// @Summary Deposit into or withdraw from a till
// @Tags treasury
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.MovementRequest true "Movement"
// @Success 201 {object} dto.TransactionResponse
// @Failure 409 {object} apierror.FundsError
// @Failure 422 {object} apierror.ValidationError
// @Router /v1/treasury/movements [post]
func (h *TreasuryHandler) RecordMovement(c *gin.Context) {
	var req dto.MovementRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.RecordMovement(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ListTransactions godoc
// @Summary List ledger transactions
// @Tags treasury
// @Produce json
// @Security BearerAuth
// @Param type       query string false "Transaction type"
// @Param method     query string false "cash | bank | card"
// @Param related_id query string false "Purchase UUID"
// @Param from       query string false "YYYY-MM-DD"
// @Param to         query string false "YYYY-MM-DD, inclusive"
// @Param page       query int    false "Page"
// @Param limit      query int    false "Page size"
// @Success 200 {object} dto.TransactionListResponse
// @Router /v1/treasury/transactions [get]
func (h *TreasuryHandler) ListTransactions(c *gin.Context) {
	var filter dto.TransactionFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.ListTransactions(c.Request.Context(), filter)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
