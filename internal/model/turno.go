package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	TurnoAbierto = "abierto"
	TurnoCerrado = "cerrado"
)

// Turno is a worker's attended session, opened at login and closed by the
// cash count. Totals are recomputed from movements at close.
type Turno struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TrabajadorID uuid.UUID `gorm:"type:uuid;index;not null"`
	// TipoTurno is a free label chosen at login (e.g. "mañana", "tarde", "noche")
	TipoTurno        string          `gorm:"type:varchar(30);not null"`
	Estado           string          `gorm:"type:varchar(20);not null;default:'abierto'"`
	TotalEfectivo    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	TotalElectronico decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	// Declared amounts are NULL until the shift is closed
	EfectivoDeclarado    *decimal.Decimal `gorm:"type:decimal(12,2)"`
	ElectronicoDeclarado *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Observaciones        *string
	OpenedAt             time.Time `gorm:"not null;index"`
	ClosedAt             *time.Time

	Trabajador *Trabajador `gorm:"foreignKey:TrabajadorID"`
}

func (Turno) TableName() string { return "turnos" }

func (t *Turno) Abierto() bool { return t.Estado == TurnoAbierto }
