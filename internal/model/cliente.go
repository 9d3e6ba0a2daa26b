package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Cliente is one vehicle plate and the latest contact data seen for it.
type Cliente struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Placa     string          `gorm:"type:varchar(20);uniqueIndex;not null"`
	Nombre    string          `gorm:"not null"`
	Celular   string          `gorm:"type:varchar(30)"`
	PrecioDia decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Cliente) TableName() string { return "clientes" }

// NormalizarPlaca returns the canonical form used as the unique key.
func NormalizarPlaca(placa string) string {
	return strings.ToUpper(strings.TrimSpace(placa))
}
