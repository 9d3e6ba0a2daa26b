package handler

import (
	"net/http"

	"cochera/internal/dto"
	"cochera/internal/service"

	"github.com/gin-gonic/gin"
)

type TurnosHandler struct{ svc service.TurnoService }

func NewTurnosHandler(svc service.TurnoService) *TurnosHandler { return &TurnosHandler{svc: svc} }

// Actual godoc
// @Summary Resumen en vivo del turno del trabajador
// @Tags turnos
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.ResumenTurnoResponse
// @Failure 403 {object} apierror.APIError
// @Router /v1/turnos/actual [get]
func (h *TurnosHandler) Actual(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	resp, err := h.svc.Actual(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Cerrar godoc
// @Summary Arqueo ciego y cierre del turno (solo_calcular para previsualizar)
// @Tags turnos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CerrarTurnoRequest true "Montos declarados"
// @Success 200 {object} dto.CierreTurnoResponse
// @Failure 403 {object} apierror.APIError
// @Failure 422 {object} apierror.APIError
// @Router /v1/turnos/cerrar [post]
func (h *TurnosHandler) Cerrar(c *gin.Context) {
	var req dto.CerrarTurnoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	resp, err := h.svc.Cerrar(c.Request.Context(), actor, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *TurnosHandler) MisReportes(c *gin.Context) {
	var filter dto.TurnoFilter
	if !bindQuery(c, &filter) {
		return
	}
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	resp, err := h.svc.MisReportes(c.Request.Context(), actor, filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *TurnosHandler) DetalleMio(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	resp, err := h.svc.DetalleMio(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *TurnosHandler) Movimiento(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	resp, err := h.svc.DetalleMovimiento(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ── Admin ────────────────────────────────────────────────────────────────────

func (h *TurnosHandler) Activo(c *gin.Context) {
	resp, err := h.svc.Activo(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Reportes godoc
// @Summary Reportes de todos los turnos
// @Tags turnos
// @Produce json
// @Security BearerAuth
// @Param trabajador_id query string false "Trabajador"
// @Param desde query string false "Desde (YYYY-MM-DD)"
// @Param hasta query string false "Hasta (YYYY-MM-DD)"
// @Param page query int false "Página"
// @Param limit query int false "Tamaño de página"
// @Success 200 {object} dto.TurnoListResponse
// @Router /v1/admin/turnos [get]
func (h *TurnosHandler) Reportes(c *gin.Context) {
	var filter dto.TurnoFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.Reportes(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *TurnosHandler) Detalle(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	resp, err := h.svc.Detalle(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
