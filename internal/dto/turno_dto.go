package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

// CerrarTurnoRequest carries the blind cash count. SoloCalcular returns the
// reconciliation without closing the shift.
type CerrarTurnoRequest struct {
	EfectivoDeclarado    decimal.Decimal `json:"efectivo_declarado"    validate:"min=0"`
	ElectronicoDeclarado decimal.Decimal `json:"electronico_declarado" validate:"min=0"`
	Observaciones        *string         `json:"observaciones"         validate:"omitempty,max=500"`
	SoloCalcular         bool            `json:"solo_calcular"`
}

type TurnoFilter struct {
	TrabajadorID string `form:"trabajador_id"`
	Desde        string `form:"desde"`
	Hasta        string `form:"hasta"`
	Page         int    `form:"page"`
	Limit        int    `form:"limit"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type MontosPorMetodo struct {
	Efectivo    decimal.Decimal `json:"efectivo"`
	Electronico decimal.Decimal `json:"electronico"`
	Total       decimal.Decimal `json:"total"`
}

type TurnoResponse struct {
	ID                   string           `json:"id"`
	TrabajadorID         string           `json:"trabajador_id"`
	Trabajador           string           `json:"trabajador"`
	TipoTurno            string           `json:"tipo_turno"`
	Estado               string           `json:"estado"`
	TotalEfectivo        decimal.Decimal  `json:"total_efectivo"`
	TotalElectronico     decimal.Decimal  `json:"total_electronico"`
	EfectivoDeclarado    *decimal.Decimal `json:"efectivo_declarado"`
	ElectronicoDeclarado *decimal.Decimal `json:"electronico_declarado"`
	Observaciones        *string          `json:"observaciones"`
	OpenedAt             string           `json:"fecha_inicio"`
	ClosedAt             *string          `json:"fecha_fin"`
}

type MovimientoResponse struct {
	ID          string          `json:"id"`
	TurnoID     string          `json:"turno_id"`
	EntradaID   *string         `json:"entrada_id"`
	Tipo        string          `json:"tipo"`
	Monto       decimal.Decimal `json:"monto"`
	MetodoPago  string          `json:"metodo_pago"`
	Descripcion string          `json:"descripcion"`
	Placa       string          `json:"placa,omitempty"`
	Cliente     string          `json:"cliente,omitempty"`
	CreatedAt   string          `json:"fecha"`
}

type MovimientoDetalleResponse struct {
	MovimientoResponse
	Trabajador string           `json:"trabajador"`
	Entrada    *EntradaResponse `json:"entrada,omitempty"`
}

// ResumenTurnoResponse is the live view of the caller's open shift.
type ResumenTurnoResponse struct {
	Turno           TurnoResponse        `json:"turno"`
	Movimientos     []MovimientoResponse `json:"movimientos"`
	Totales         MontosPorMetodo      `json:"totales"`
	AutosIngresados int64                `json:"autos_ingresados"`
	AutosSalieron   int64                `json:"autos_salieron"`
	AutosEnCochera  int64                `json:"autos_en_cochera"`
}

type CierreTurnoResponse struct {
	TurnoID         string          `json:"turno_id"`
	Trabajador      string          `json:"trabajador"`
	TipoTurno       string          `json:"tipo_turno"`
	OpenedAt        string          `json:"fecha_inicio"`
	ClosedAt        *string         `json:"fecha_fin"`
	AutosIngresados int64           `json:"autos_ingresados"`
	AutosSalieron   int64           `json:"autos_salieron"`
	Computado       MontosPorMetodo `json:"computado"`
	Declarado       MontosPorMetodo `json:"declarado"`
	DifEfectivo     decimal.Decimal `json:"dif_efectivo"`
	DifElectronico  decimal.Decimal `json:"dif_electronico"`
	Diferencia      decimal.Decimal `json:"diferencia"`
	Cerrado         bool            `json:"cerrado"`
}

type TotalPorTipoResponse struct {
	Tipo     string          `json:"tipo"`
	Cantidad int64           `json:"cantidad"`
	Monto    decimal.Decimal `json:"monto"`
}

type DetalleTurnoResponse struct {
	Turno           TurnoResponse          `json:"turno"`
	Movimientos     []MovimientoResponse   `json:"movimientos"`
	Totales         MontosPorMetodo        `json:"totales"`
	PorTipo         []TotalPorTipoResponse `json:"por_tipo"`
	AutosIngresados int64                  `json:"autos_ingresados"`
	AutosSalieron   int64                  `json:"autos_salieron"`
}

type TurnoActivoResponse struct {
	Activo  bool             `json:"activo"`
	Turno   *TurnoResponse   `json:"turno,omitempty"`
	Totales *MontosPorMetodo `json:"totales,omitempty"`
}

type TurnoListResponse struct {
	Data  []TurnoResponse `json:"data"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}
