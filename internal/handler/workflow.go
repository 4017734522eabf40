package handler

import (
	"net/http"

	"github.com/Jassur2025/metallerp-sub000/internal/dto"
	"github.com/Jassur2025/metallerp-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

type WorkflowHandler struct{ svc service.WorkflowService }

func NewWorkflowHandler(svc service.WorkflowService) *WorkflowHandler {
	return &WorkflowHandler{svc: svc}
}

// Create godoc
// @Summary Create a workflow order
// @Tags workflow
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CreateWorkflowOrderRequest true "Order"
// @Success 201 {object} dto.WorkflowOrderResponse
// @Failure 422 {object} apierror.ValidationError
// @Router /v1/workflow-orders [post]
func (h *WorkflowHandler) Create(c *gin.Context) {
	var req dto.CreateWorkflowOrderRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// List godoc
// @Summary List workflow orders
// @Tags workflow
// @Produce json
// @Security BearerAuth
// @Param status query string false "Order status"
// @Param page   query int    false "Page"
// @Param limit  query int    false "Page size"
// @Success 200 {object} dto.WorkflowOrderListResponse
// @Router /v1/workflow-orders [get]
func (h *WorkflowHandler) List(c *gin.Context) {
	var filter dto.WorkflowOrderFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Get godoc
// @Summary Get a workflow order with its shortages
// @Tags workflow
// @Produce json
// @Security BearerAuth
// @Param id path string true "Workflow order UUID"
// @Success 200 {object} dto.WorkflowOrderResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/workflow-orders/{id} [get]
func (h *WorkflowHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// UpdateStatus godoc
// @Summary Move a workflow order to another status
// @Description Completed and cancelled orders are final.
// @Tags workflow
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id   path string                          true "Workflow order UUID"
// @Param body body dto.UpdateWorkflowStatusRequest true "Status"
// @Success 200 {object} dto.WorkflowOrderResponse
// @Failure 422 {object} apierror.ValidationError
// @Router /v1/workflow-orders/{id}/status [patch]
func (h *WorkflowHandler) UpdateStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateWorkflowStatusRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.UpdateStatus(c.Request.Context(), id, req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
