package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	RolTrabajador = "trabajador"
	RolAdmin      = "admin"
)

// Trabajador is a system user. Workers own shifts; admins never do.
// Rows are soft-deleted (Activo=false) so stays and movements keep their attribution.
type Trabajador struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre       string    `gorm:"not null"`
	Usuario      string    `gorm:"uniqueIndex;not null"`
	PasswordHash string    `gorm:"not null"`
	Rol          string    `gorm:"type:varchar(20);not null;default:'trabajador'"`
	Activo       bool      `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (Trabajador) TableName() string { return "trabajadores" }

func (t *Trabajador) EsAdmin() bool { return t.Rol == RolAdmin }
