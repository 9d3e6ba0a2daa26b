package handler

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"time"

	"cochera/internal/dto"
	"cochera/internal/service"

	"github.com/gin-gonic/gin"
)

// TicketRenderer renders the printable entry ticket.
type TicketRenderer interface {
	RenderTicket(w io.Writer, t *dto.TicketResponse) error
}

type EntradasHandler struct {
	svc    service.EntradaService
	ticket TicketRenderer
}

func NewEntradasHandler(svc service.EntradaService, ticket TicketRenderer) *EntradasHandler {
	return &EntradasHandler{svc: svc, ticket: ticket}
}

// Registrar godoc
// @Summary Registra el ingreso de un vehículo
// @Tags entradas
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.RegistrarEntradaRequest true "Ingreso"
// @Success 201 {object} dto.EntradaCreadaResponse
// @Failure 403 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError
// @Failure 422 {object} apierror.APIError
// @Router /v1/entradas [post]
func (h *EntradasHandler) Registrar(c *gin.Context) {
	var req dto.RegistrarEntradaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	resp, err := h.svc.RegistrarEntrada(c.Request.Context(), actor, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Obtener godoc
// @Summary Obtiene una entrada
// @Tags entradas
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID de entrada"
// @Success 200 {object} dto.EntradaResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/entradas/{id} [get]
func (h *EntradasHandler) Obtener(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	resp, err := h.svc.Obtener(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Actualizar godoc
// @Summary Corrige los datos de un vehículo que sigue en cochera
// @Tags entradas
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID de entrada"
// @Param body body dto.ActualizarEntradaRequest true "Cambios"
// @Success 200 {object} dto.EntradaResponse
// @Failure 404 {object} apierror.APIError
// @Failure 422 {object} apierror.APIError
// @Router /v1/entradas/{id} [put]
func (h *EntradasHandler) Actualizar(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req dto.ActualizarEntradaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Actualizar(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// EnCochera godoc
// @Summary Vehículos estacionados con su cobro al momento
// @Tags entradas
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.EnCocheraResponse
// @Router /v1/entradas/en-cochera [get]
func (h *EntradasHandler) EnCochera(c *gin.Context) {
	resp, err := h.svc.EnCochera(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Cobro godoc
// @Summary Calcula el cobro de salida sin registrarlo
// @Tags entradas
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID de entrada"
// @Success 200 {object} dto.CobroResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/entradas/{id}/cobro [get]
func (h *EntradasHandler) Cobro(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	resp, err := h.svc.CalcularCobro(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Salida godoc
// @Summary Registra la salida cobrando el saldo
// @Tags entradas
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.RegistrarSalidaRequest true "Salida"
// @Success 200 {object} dto.SalidaResponse
// @Failure 403 {object} apierror.APIError
// @Failure 404 {object} apierror.APIError
// @Router /v1/entradas/salida [post]
func (h *EntradasHandler) Salida(c *gin.Context) {
	var req dto.RegistrarSalidaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	resp, err := h.svc.RegistrarSalida(c.Request.Context(), actor, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// AutorizarSalida godoc
// @Summary Autoriza la salida de un vehículo con pago completo adelantado
// @Tags entradas
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.AutorizarSalidaRequest true "Autorización"
// @Success 200 {object} dto.AutorizacionResponse
// @Failure 422 {object} apierror.APIError
// @Router /v1/entradas/autorizar-salida [post]
func (h *EntradasHandler) AutorizarSalida(c *gin.Context) {
	var req dto.AutorizarSalidaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	resp, err := h.svc.AutorizarSalida(c.Request.Context(), actor, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *EntradasHandler) Ticket(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	resp, err := h.svc.Ticket(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// TicketPDF renders the ticket in memory first so a failed render still gets
// a clean error response.
func (h *EntradasHandler) TicketPDF(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	ticket, err := h.svc.Ticket(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	var buf bytes.Buffer
	if err := h.ticket.RenderTicket(&buf, ticket); err != nil {
		_ = c.Error(err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`inline; filename="ticket_%s.pdf"`, ticket.Placa))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

// ── Historial ────────────────────────────────────────────────────────────────

// Historial godoc
// @Summary Historial de vehículos con filtros
// @Tags historial
// @Produce json
// @Security BearerAuth
// @Param placa query string false "Placa (parcial)"
// @Param desde query string false "Desde (YYYY-MM-DD)"
// @Param hasta query string false "Hasta (YYYY-MM-DD)"
// @Param estado query string false "en_cochera | salio"
// @Param page query int false "Página"
// @Param limit query int false "Tamaño de página"
// @Success 200 {object} dto.HistorialResponse
// @Router /v1/historial [get]
func (h *EntradasHandler) Historial(c *gin.Context) {
	var filter dto.HistorialFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.Historial(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ExportarHistorial streams the filtered history as CSV.
func (h *EntradasHandler) ExportarHistorial(c *gin.Context) {
	var filter dto.HistorialFilter
	if !bindQuery(c, &filter) {
		return
	}
	var buf bytes.Buffer
	if err := h.svc.ExportarHistorialCSV(c.Request.Context(), filter, &buf); err != nil {
		respondError(c, err)
		return
	}
	nombre := fmt.Sprintf("historial_%s.csv", time.Now().Format("20060102_150405"))
	c.Header("Content-Disposition", `attachment; filename="`+nombre+`"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}
