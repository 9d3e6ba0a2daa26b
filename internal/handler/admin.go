package handler

import (
	"net/http"

	"cochera/internal/dto"
	"cochera/internal/service"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	dashboard service.DashboardService
	config    service.ConfiguracionService
}

func NewAdminHandler(dashboard service.DashboardService, config service.ConfiguracionService) *AdminHandler {
	return &AdminHandler{dashboard: dashboard, config: config}
}

// Dashboard godoc
// @Summary Ingresos por método (hoy, mes, histórico) y ocupación
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.DashboardResponse
// @Router /v1/admin/dashboard [get]
func (h *AdminHandler) Dashboard(c *gin.Context) {
	resp, err := h.dashboard.Resumen(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AdminHandler) Configuracion(c *gin.Context) {
	resp, err := h.config.Listar(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GuardarConfiguracion godoc
// @Summary Guarda varios valores de configuración a la vez
// @Tags admin
// @Accept json
// @Security BearerAuth
// @Param body body dto.GuardarConfiguracionRequest true "Valores"
// @Success 204
// @Failure 422 {object} apierror.APIError
// @Router /v1/admin/configuracion [put]
func (h *AdminHandler) GuardarConfiguracion(c *gin.Context) {
	var req dto.GuardarConfiguracionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.config.Guardar(c.Request.Context(), req); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
