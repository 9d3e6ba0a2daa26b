package handler

import (
	"net/http"

	"cochera/internal/service"

	"github.com/gin-gonic/gin"
)

type AlertasHandler struct{ svc service.AlertaService }

func NewAlertasHandler(svc service.AlertaService) *AlertasHandler {
	return &AlertasHandler{svc: svc}
}

// Capacidad godoc
// @Summary Ocupación actual de la cochera
// @Tags alertas
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.CapacidadResponse
// @Router /v1/capacidad [get]
func (h *AlertasHandler) Capacidad(c *gin.Context) {
	resp, err := h.svc.Capacidad(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Alertas godoc
// @Summary Vehículos con tiempo excedido y alerta de capacidad
// @Tags alertas
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.AlertasResponse
// @Router /v1/alertas [get]
func (h *AlertasHandler) Alertas(c *gin.Context) {
	resp, err := h.svc.Alertas(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
