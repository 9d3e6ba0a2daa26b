package dto

import "github.com/shopspring/decimal"

// ─── Dashboard ───────────────────────────────────────────────────────────────

type IngresoDiarioResponse struct {
	Fecha       string          `json:"fecha"`
	Efectivo    decimal.Decimal `json:"efectivo"`
	Electronico decimal.Decimal `json:"electronico"`
	Total       decimal.Decimal `json:"total"`
}

type DashboardResponse struct {
	Hoy                 MontosPorMetodo         `json:"hoy"`
	Mes                 MontosPorMetodo         `json:"mes"`
	Historico           MontosPorMetodo         `json:"historico"`
	AutosEnCochera      int64                   `json:"autos_en_cochera"`
	TotalClientes       int64                   `json:"total_clientes"`
	TrabajadoresActivos int64                   `json:"trabajadores_activos"`
	UltimosDias         []IngresoDiarioResponse `json:"ultimos_dias"`
}

// ─── Configuración ───────────────────────────────────────────────────────────

type ConfiguracionResponse struct {
	Clave       string `json:"clave"`
	Valor       string `json:"valor"`
	Descripcion string `json:"descripcion"`
}

type GuardarConfiguracionRequest struct {
	Valores map[string]string `json:"valores" validate:"required,min=1"`
}
