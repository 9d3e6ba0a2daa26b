package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Formats used for the date/time columns of an entrada.
const (
	FormatoFecha = "2006-01-02"
	FormatoHora  = "15:04"
)

// Entrada is one check-in/check-out cycle of a vehicle.
// Dates are kept as local calendar strings; the exit columns stay NULL while
// the vehicle is parked and are written exactly once when it leaves.
type Entrada struct {
	ID                 uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ClienteID          uuid.UUID `gorm:"type:uuid;index;not null"`
	FechaEntrada       string    `gorm:"type:varchar(10);not null;index"`
	HoraEntrada        string    `gorm:"type:varchar(8);not null"`
	FechaHasta         *string   `gorm:"type:varchar(10)"`
	HoraSalidaEsperada *string   `gorm:"type:varchar(8)"`
	FechaSalida        *string   `gorm:"type:varchar(10)"`
	HoraSalida         *string   `gorm:"type:varchar(8)"`

	Dias      int             `gorm:"not null"`
	PrecioDia decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Monto     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Adelanto  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Penalidad decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Descuento decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	// MetodoPago: "efectivo" | "electronico"
	MetodoPago string `gorm:"type:varchar(20);not null;default:'efectivo'"`

	DejoLlave              bool `gorm:"not null;default:false"`
	Pagado                 bool `gorm:"not null;default:false"`
	PagoCompletoAdelantado bool `gorm:"not null;default:false"`
	Salio                  bool `gorm:"not null;default:false;index"`
	Observaciones          string

	TrabajadorID       uuid.UUID  `gorm:"type:uuid;not null"`
	TrabajadorSalidaID *uuid.UUID `gorm:"type:uuid"`
	CreatedAt          time.Time  `gorm:"index"`
	SalidaAt           *time.Time

	Cliente          *Cliente    `gorm:"foreignKey:ClienteID"`
	Trabajador       *Trabajador `gorm:"foreignKey:TrabajadorID"`
	TrabajadorSalida *Trabajador `gorm:"foreignKey:TrabajadorSalidaID"`
}

func (Entrada) TableName() string { return "entradas" }

func (e *Entrada) Abierta() bool { return !e.Salio }
