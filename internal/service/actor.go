package service

import (
	"time"

	"cochera/internal/model"

	"github.com/google/uuid"
)

// Actor is the authenticated caller of an operation, taken from the access
// token. TurnoID is nil for admins.
type Actor struct {
	TrabajadorID uuid.UUID
	Nombre       string
	Rol          string
	TurnoID      *uuid.UUID
}

func (a Actor) EsAdmin() bool { return a.Rol == model.RolAdmin }

// Clock returns the current time in the business location.
type Clock func() time.Time

// SystemClock reads the wall clock in loc.
func SystemClock(loc *time.Location) Clock {
	return func() time.Time { return time.Now().In(loc) }
}
