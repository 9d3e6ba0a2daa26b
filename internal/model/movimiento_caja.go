package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Movement types.
const (
	MovAdelanto     = "ADELANTO"
	MovPagoCompleto = "PAGO_COMPLETO"
	MovCobroSalida  = "COBRO_SALIDA"
	MovPenalidad    = "PENALIDAD"
)

// Payment methods.
const (
	MetodoEfectivo    = "efectivo"
	MetodoElectronico = "electronico"
)

// MovimientoCaja is an immutable entry in the shift's cash ledger.
// Movements are NEVER modified or deleted. EntradaID is a lookup reference
// only and may dangle after a client is removed.
type MovimientoCaja struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TurnoID      uuid.UUID       `gorm:"type:uuid;index;not null"`
	EntradaID    *uuid.UUID      `gorm:"type:uuid;index"`
	TrabajadorID uuid.UUID       `gorm:"type:uuid;not null"`
	Tipo         string          `gorm:"type:varchar(20);not null"`
	Monto        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	MetodoPago   string          `gorm:"type:varchar(20);not null"`
	Descripcion  string          `gorm:"not null"`
	CreatedAt    time.Time       `gorm:"index"`

	Entrada    *Entrada    `gorm:"foreignKey:EntradaID"`
	Trabajador *Trabajador `gorm:"foreignKey:TrabajadorID"`
}

func (MovimientoCaja) TableName() string { return "movimientos_caja" }
