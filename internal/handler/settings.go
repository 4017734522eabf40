package handler

import (
	"net/http"

	"github.com/Jassur2025/metallerp-sub000/internal/dto"
	"github.com/Jassur2025/metallerp-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

type SettingsHandler struct{ svc service.SettingsService }

func NewSettingsHandler(svc service.SettingsService) *SettingsHandler {
	return &SettingsHandler{svc: svc}
}

// Get godoc
// @Summary Exchange rate and VAT
// @Description Falls back to the configured defaults until an admin saves a value.
// @Tags settings
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.SettingsResponse
// @Router /v1/settings [get]
func (h *SettingsHandler) Get(c *gin.Context) {
	resp, err := h.svc.Get(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Update godoc
// @Summary Save exchange rate and VAT
// @Tags settings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.UpdateSettingsRequest true "Settings"
// @Success 200 {object} dto.SettingsResponse
// @Failure 422 {object} apierror.ValidationError
// @Router /v1/settings [put]
func (h *SettingsHandler) Update(c *gin.Context) {
	var req dto.UpdateSettingsRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Update(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
