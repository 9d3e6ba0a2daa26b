package service

import (
	"context"
	"fmt"

	"cochera/internal/cobro"
	"cochera/internal/dto"
	"cochera/internal/model"
	"cochera/internal/repository"
)

const capacidadDefault = 50

// AlertaService derives occupancy and overstay alerts on every call; nothing
// is stored.
type AlertaService interface {
	Capacidad(ctx context.Context) (*dto.CapacidadResponse, error)
	Alertas(ctx context.Context) (*dto.AlertasResponse, error)
}

type alertaService struct {
	entradas repository.EntradaRepository
	config   ConfiguracionService
	now      Clock
}

func NewAlertaService(entradas repository.EntradaRepository, config ConfiguracionService, now Clock) AlertaService {
	return &alertaService{entradas: entradas, config: config, now: now}
}

func (s *alertaService) Capacidad(ctx context.Context) (*dto.CapacidadResponse, error) {
	o, err := s.ocupacion(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.CapacidadResponse{
		Ocupados:    o.Ocupados,
		Capacidad:   o.Capacidad,
		Disponibles: o.Disponibles,
		Porcentaje:  o.Porcentaje,
		Nivel:       o.Nivel,
		Lleno:       o.Ocupados >= o.Capacidad,
	}, nil
}

// Alertas lists one overstay alert per vehicle, then the occupancy alert if
// the lot is at warning level or above.
func (s *alertaService) Alertas(ctx context.Context) (*dto.AlertasResponse, error) {
	abiertas, err := s.entradas.ListAbiertas(ctx)
	if err != nil {
		return nil, err
	}
	ahora := s.now()

	alertas := make([]dto.AlertaResponse, 0)
	for i := range abiertas {
		e := &abiertas[i]
		dias := cobro.DiasReales(e.FechaEntrada, ahora)
		if !cobro.ExcedeTiempo(dias, e.Dias) {
			continue
		}
		id := e.ID.String()
		exceso := dias - e.Dias
		alertas = append(alertas, dto.AlertaResponse{
			Tipo:       dto.AlertaExcesoTiempo,
			Nivel:      cobro.NivelAdvertencia,
			Mensaje:    fmt.Sprintf("%s - Exceso: %d día(s)", clienteDe(e), exceso),
			EntradaID:  &id,
			Placa:      placaDe(e),
			DiasExceso: exceso,
		})
	}

	o := cobro.NivelCapacidad(len(abiertas), s.config.Entero(ctx, model.ConfCapacidadMaxima, capacidadDefault))
	if o.Nivel != cobro.NivelNormal {
		alertas = append(alertas, dto.AlertaResponse{
			Tipo:    dto.AlertaCapacidad,
			Nivel:   o.Nivel,
			Mensaje: fmt.Sprintf("Ocupación: %s%% (%d/%d)", o.Porcentaje.StringFixed(0), o.Ocupados, o.Capacidad),
		})
	}
	return &dto.AlertasResponse{Alertas: alertas, Total: len(alertas)}, nil
}

func (s *alertaService) ocupacion(ctx context.Context) (cobro.Ocupacion, error) {
	n, err := s.entradas.CountAbiertas(ctx)
	if err != nil {
		return cobro.Ocupacion{}, err
	}
	return cobro.NivelCapacidad(int(n), s.config.Entero(ctx, model.ConfCapacidadMaxima, capacidadDefault)), nil
}
