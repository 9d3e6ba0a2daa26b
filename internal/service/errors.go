package service

import (
	"errors"
	"fmt"
)

// Error kinds. Handlers map them to HTTP statuses; anything else is a 500.
var (
	ErrValidacion   = errors.New("validacion")
	ErrConflicto    = errors.New("conflicto")
	ErrNoEncontrado = errors.New("no encontrado")
	// ErrSinTurno means the caller holds no open shift (admins, or a closed shift).
	ErrSinTurno = errors.New("sin turno")
	// ErrCredenciales rejects a login or refresh.
	ErrCredenciales = errors.New("credenciales")
)

// Error is a user-facing failure of a given kind. Msg is safe to show to clients.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Unwrap() error { return e.Kind }

func validacion(format string, args ...any) error {
	return &Error{Kind: ErrValidacion, Msg: fmt.Sprintf(format, args...)}
}

func conflicto(format string, args ...any) error {
	return &Error{Kind: ErrConflicto, Msg: fmt.Sprintf(format, args...)}
}

func noEncontrado(format string, args ...any) error {
	return &Error{Kind: ErrNoEncontrado, Msg: fmt.Sprintf(format, args...)}
}

func sinTurno() error {
	return &Error{Kind: ErrSinTurno, Msg: "No tiene un turno abierto"}
}

func credenciales(msg string) error {
	return &Error{Kind: ErrCredenciales, Msg: msg}
}
