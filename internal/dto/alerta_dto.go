package dto

import "github.com/shopspring/decimal"

const (
	AlertaExcesoTiempo = "exceso_tiempo"
	AlertaCapacidad    = "capacidad"
)

type CapacidadResponse struct {
	Ocupados    int             `json:"ocupados"`
	Capacidad   int             `json:"capacidad"`
	Disponibles int             `json:"disponibles"`
	Porcentaje  decimal.Decimal `json:"porcentaje"`
	Nivel       string          `json:"nivel"` // normal | advertencia | critico
	Lleno       bool            `json:"lleno"`
}

type AlertaResponse struct {
	Tipo       string  `json:"tipo"`
	Nivel      string  `json:"nivel"`
	Mensaje    string  `json:"mensaje"`
	EntradaID  *string `json:"entrada_id,omitempty"`
	Placa      string  `json:"placa,omitempty"`
	DiasExceso int     `json:"dias_exceso,omitempty"`
}

type AlertasResponse struct {
	Alertas []AlertaResponse `json:"alertas"`
	Total   int              `json:"total"`
}
