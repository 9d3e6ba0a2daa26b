package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

// RegistrarEntradaRequest checks a vehicle in. Entry date/time default to now.
type RegistrarEntradaRequest struct {
	Placa              string          `json:"placa"                validate:"max=20"`
	Cliente            string          `json:"cliente"              validate:"max=100"`
	Celular            string          `json:"celular"              validate:"omitempty,max=30"`
	PrecioDia          decimal.Decimal `json:"precio_dia"`
	Dias               int             `json:"dias"`
	Adelanto           decimal.Decimal `json:"adelanto"`
	MetodoPago         string          `json:"metodo_pago"          validate:"omitempty,oneof=efectivo electronico"`
	Pagado             bool            `json:"pagado"`
	FechaEntrada       *string         `json:"fecha_entrada"        validate:"omitempty,datetime=2006-01-02"`
	HoraEntrada        *string         `json:"hora_entrada"`
	FechaHasta         *string         `json:"fecha_hasta"          validate:"omitempty,datetime=2006-01-02"`
	HoraSalidaEsperada *string         `json:"hora_salida_esperada"`
	DejoLlave          bool            `json:"dejo_llave"`
	Observaciones      string          `json:"observaciones"        validate:"max=500"`
}

// ActualizarEntradaRequest edits a stay that is still parked; nil fields are kept.
type ActualizarEntradaRequest struct {
	FechaEntrada       *string          `json:"fecha_entrada"        validate:"omitempty,datetime=2006-01-02"`
	HoraEntrada        *string          `json:"hora_entrada"`
	FechaHasta         *string          `json:"fecha_hasta"`
	HoraSalidaEsperada *string          `json:"hora_salida_esperada"`
	PrecioDia          *decimal.Decimal `json:"precio_dia"`
	Dias               *int             `json:"dias"`
	DejoLlave          *bool            `json:"dejo_llave"`
	Observaciones      *string          `json:"observaciones"        validate:"omitempty,max=500"`
}

// RegistrarSalidaRequest closes a stay with a charge. The day count is always
// recomputed; DiasReales is accepted only so older clients keep working.
type RegistrarSalidaRequest struct {
	EntradaID string `json:"entrada_id" validate:"required,uuid"`
	// Penalidad overrides the computed penalty (e.g. waived by the operator).
	Penalidad  *decimal.Decimal `json:"penalidad"`
	Descuento  decimal.Decimal  `json:"descuento"`
	MetodoPago string           `json:"metodo_pago" validate:"omitempty,oneof=efectivo electronico"`
	DiasReales *int             `json:"dias_reales"`
}

// AutorizarSalidaRequest lets a fully prepaid vehicle leave without charge.
type AutorizarSalidaRequest struct {
	EntradaID  string           `json:"entrada_id"  validate:"required,uuid"`
	Penalidad  *decimal.Decimal `json:"penalidad"`
	Descuento  decimal.Decimal  `json:"descuento"`
	MetodoPago string           `json:"metodo_pago" validate:"omitempty,oneof=efectivo electronico"`
}

type HistorialFilter struct {
	Placa  string `form:"placa"`
	Desde  string `form:"desde"`
	Hasta  string `form:"hasta"`
	Estado string `form:"estado"` // en_cochera | salio
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type EntradaResponse struct {
	ID                     string          `json:"id"`
	ClienteID              string          `json:"cliente_id"`
	Placa                  string          `json:"placa"`
	Cliente                string          `json:"cliente"`
	Celular                string          `json:"celular"`
	FechaEntrada           string          `json:"fecha_entrada"`
	HoraEntrada            string          `json:"hora_entrada"`
	FechaHasta             *string         `json:"fecha_hasta"`
	HoraSalidaEsperada     *string         `json:"hora_salida_esperada"`
	FechaSalida            *string         `json:"fecha_salida"`
	HoraSalida             *string         `json:"hora_salida"`
	Dias                   int             `json:"dias"`
	PrecioDia              decimal.Decimal `json:"precio_dia"`
	Monto                  decimal.Decimal `json:"monto"`
	Adelanto               decimal.Decimal `json:"adelanto"`
	Penalidad              decimal.Decimal `json:"penalidad"`
	Descuento              decimal.Decimal `json:"descuento"`
	MetodoPago             string          `json:"metodo_pago"`
	DejoLlave              bool            `json:"dejo_llave"`
	Pagado                 bool            `json:"pagado"`
	PagoCompletoAdelantado bool            `json:"pago_completo_adelantado"`
	Salio                  bool            `json:"salio"`
	Observaciones          string          `json:"observaciones"`
	TrabajadorEntrada      string          `json:"trabajador_entrada"`
	TrabajadorSalida       string          `json:"trabajador_salida,omitempty"`
	CreatedAt              string          `json:"fecha_registro"`
	SalidaAt               *string         `json:"salida_at"`
}

type EntradaCreadaResponse struct {
	Entrada    EntradaResponse     `json:"entrada"`
	Movimiento *MovimientoResponse `json:"movimiento,omitempty"`
	Mensaje    string              `json:"mensaje"`
}

// AutoEnCocheraResponse is a parked vehicle with its live billing.
type AutoEnCocheraResponse struct {
	ID                     string          `json:"id"`
	Placa                  string          `json:"placa"`
	Cliente                string          `json:"cliente"`
	Celular                string          `json:"celular"`
	FechaEntrada           string          `json:"fecha_entrada"`
	HoraEntrada            string          `json:"hora_entrada"`
	FechaHasta             *string         `json:"fecha_hasta"`
	HoraSalidaEsperada     *string         `json:"hora_salida_esperada"`
	DiasPactados           int             `json:"dias_pactados"`
	DiasReales             int             `json:"dias_reales"`
	PrecioDia              decimal.Decimal `json:"precio_dia"`
	Monto                  decimal.Decimal `json:"monto"`
	Adelanto               decimal.Decimal `json:"adelanto"`
	Penalidad              decimal.Decimal `json:"penalidad"`
	Pendiente              decimal.Decimal `json:"pendiente"`
	MetodoPago             string          `json:"metodo_pago"`
	DejoLlave              bool            `json:"dejo_llave"`
	Pagado                 bool            `json:"pagado"`
	PagoCompletoAdelantado bool            `json:"pago_completo_adelantado"`
	Observaciones          string          `json:"observaciones"`
	TrabajadorEntrada      string          `json:"trabajador_entrada"`
	ExcedeTiempo           bool            `json:"excede_tiempo"`
}

type EnCocheraResponse struct {
	Autos []AutoEnCocheraResponse `json:"autos"`
	Total int                     `json:"total"`
}

// CobroResponse previews the checkout charge of an open stay.
type CobroResponse struct {
	ID                 string          `json:"id"`
	Placa              string          `json:"placa"`
	Cliente            string          `json:"cliente"`
	Celular            string          `json:"celular"`
	TrabajadorEntrada  string          `json:"trabajador_entrada"`
	FechaEntrada       string          `json:"fecha_entrada"`
	HoraEntrada        string          `json:"hora_entrada"`
	FechaHasta         *string         `json:"fecha_hasta"`
	HoraSalidaEsperada *string         `json:"hora_salida_esperada"`
	DiasPactados       int             `json:"dias_pactados"`
	DiasReales         int             `json:"dias_reales"`
	PrecioDia          decimal.Decimal `json:"precio_dia"`
	MontoDias          decimal.Decimal `json:"monto_dias"`
	Penalidad          decimal.Decimal `json:"penalidad"`
	MontoTotal         decimal.Decimal `json:"monto_total"`
	Adelanto           decimal.Decimal `json:"adelanto"`
	ACobrar            decimal.Decimal `json:"a_cobrar"`
	DejoLlave          bool            `json:"dejo_llave"`
	YaPagoCompleto     bool            `json:"ya_pago_completo"`
	ExcedeTiempo       bool            `json:"excede_tiempo"`
	Observaciones      string          `json:"observaciones"`
}

type SalidaResponse struct {
	EntradaID  string              `json:"entrada_id"`
	Placa      string              `json:"placa"`
	Cliente    string              `json:"cliente"`
	DiasReales int                 `json:"dias_reales"`
	Penalidad  decimal.Decimal     `json:"penalidad"`
	Descuento  decimal.Decimal     `json:"descuento"`
	MontoTotal decimal.Decimal     `json:"monto_total"`
	ACobrar    decimal.Decimal     `json:"a_cobrar"`
	Movimiento *MovimientoResponse `json:"movimiento,omitempty"`
	Mensaje    string              `json:"mensaje"`
}

type AutorizacionResponse struct {
	EntradaID  string              `json:"entrada_id"`
	Placa      string              `json:"placa"`
	Cliente    string              `json:"cliente"`
	Extra      decimal.Decimal     `json:"extra"`
	Movimiento *MovimientoResponse `json:"movimiento,omitempty"`
	Mensaje    string              `json:"mensaje"`
}

// TicketResponse is the printable entry ticket.
type TicketResponse struct {
	ID                     string          `json:"id"`
	Placa                  string          `json:"placa"`
	Cliente                string          `json:"cliente"`
	Celular                string          `json:"celular"`
	FechaEntrada           string          `json:"fecha_entrada"`
	HoraEntrada            string          `json:"hora_entrada"`
	FechaHasta             *string         `json:"fecha_hasta"`
	HoraSalidaEsperada     *string         `json:"hora_salida_esperada"`
	Dias                   int             `json:"dias"`
	PrecioDia              decimal.Decimal `json:"precio_dia"`
	Monto                  decimal.Decimal `json:"monto"`
	Adelanto               decimal.Decimal `json:"adelanto"`
	DejoLlave              bool            `json:"dejo_llave"`
	PagoCompletoAdelantado bool            `json:"pago_completo_adelantado"`
	Observaciones          string          `json:"observaciones"`
	Trabajador             string          `json:"trabajador"`
}

type HistorialResponse struct {
	Data  []EntradaResponse `json:"data"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}
