package handler

import (
	"net/http"

	"cochera/internal/dto"
	"cochera/internal/service"

	"github.com/gin-gonic/gin"
)

type ClientesHandler struct{ svc service.ClienteService }

func NewClientesHandler(svc service.ClienteService) *ClientesHandler {
	return &ClientesHandler{svc: svc}
}

// Buscar godoc
// @Summary Busca un cliente por placa para pre-llenar el ingreso
// @Tags clientes
// @Produce json
// @Security BearerAuth
// @Param placa path string true "Placa"
// @Success 200 {object} dto.BuscarClienteResponse
// @Router /v1/clientes/placa/{placa} [get]
func (h *ClientesHandler) Buscar(c *gin.Context) {
	resp, err := h.svc.Buscar(c.Request.Context(), c.Param("placa"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Historial godoc
// @Summary Historial de visitas y estadísticas de un cliente
// @Tags clientes
// @Produce json
// @Security BearerAuth
// @Param placa path string true "Placa"
// @Success 200 {object} dto.HistorialClienteResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/clientes/placa/{placa}/historial [get]
func (h *ClientesHandler) Historial(c *gin.Context) {
	resp, err := h.svc.Historial(c.Request.Context(), c.Param("placa"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ClientesHandler) Listar(c *gin.Context) {
	var filter dto.ClienteFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ClientesHandler) Crear(c *gin.Context) {
	var req dto.CrearClienteRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Crear(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *ClientesHandler) Actualizar(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req dto.ActualizarClienteRequest
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

// Eliminar removes a client and its closed history. Rejected while parked.
func (h *ClientesHandler) Eliminar(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := h.svc.Eliminar(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
