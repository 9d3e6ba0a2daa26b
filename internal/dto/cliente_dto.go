package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CrearClienteRequest struct {
	Placa     string          `json:"placa"      validate:"required,max=20"`
	Nombre    string          `json:"nombre"     validate:"required,max=100"`
	Celular   string          `json:"celular"    validate:"omitempty,max=30"`
	PrecioDia decimal.Decimal `json:"precio_dia"`
}

type ActualizarClienteRequest struct {
	Placa     string          `json:"placa"      validate:"required,max=20"`
	Nombre    string          `json:"nombre"     validate:"required,max=100"`
	Celular   string          `json:"celular"    validate:"omitempty,max=30"`
	PrecioDia decimal.Decimal `json:"precio_dia"`
}

type ClienteFilter struct {
	Buscar string `form:"buscar"`
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

// BuscarClienteResponse pre-fills the check-in form for a known plate.
type BuscarClienteResponse struct {
	Existe    bool             `json:"existe"`
	Nombre    string           `json:"nombre,omitempty"`
	Celular   string           `json:"celular,omitempty"`
	PrecioDia *decimal.Decimal `json:"precio_dia,omitempty"`
}

type ClienteResponse struct {
	ID           string          `json:"id"`
	Placa        string          `json:"placa"`
	Nombre       string          `json:"nombre"`
	Celular      string          `json:"celular"`
	PrecioDia    decimal.Decimal `json:"precio_dia"`
	UpdatedAt    string          `json:"fecha_actualizacion"`
	TotalVisitas int64           `json:"total_visitas"`
	UltimaVisita *string         `json:"ultima_visita"`
	EnCochera    bool            `json:"en_cochera"`
}

type EstadisticasClienteResponse struct {
	TotalVisitas int64           `json:"total_visitas"`
	TotalGastado decimal.Decimal `json:"total_gastado"`
	DeudaActual  decimal.Decimal `json:"deuda_actual"`
	PromedioDias decimal.Decimal `json:"promedio_dias"`
}

type HistorialClienteResponse struct {
	Cliente      ClienteResponse             `json:"cliente"`
	Estadisticas EstadisticasClienteResponse `json:"estadisticas"`
	Visitas      []EntradaResponse           `json:"visitas"`
}

type ClienteListResponse struct {
	Data  []ClienteResponse `json:"data"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}
