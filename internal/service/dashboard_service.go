package service

import (
	"context"
	"time"

	"cochera/internal/dto"
	"cochera/internal/model"
	"cochera/internal/repository"

	"github.com/shopspring/decimal"
)

const diasSerie = 7

type DashboardService interface {
	Resumen(ctx context.Context) (*dto.DashboardResponse, error)
}

type dashboardService struct {
	caja         repository.CajaRepository
	entradas     repository.EntradaRepository
	clientes     repository.ClienteRepository
	trabajadores repository.TrabajadorRepository
	now          Clock
}

func NewDashboardService(
	caja repository.CajaRepository,
	entradas repository.EntradaRepository,
	clientes repository.ClienteRepository,
	trabajadores repository.TrabajadorRepository,
	now Clock,
) DashboardService {
	return &dashboardService{caja: caja, entradas: entradas, clientes: clientes, trabajadores: trabajadores, now: now}
}

func (s *dashboardService) Resumen(ctx context.Context) (*dto.DashboardResponse, error) {
	ahora := s.now()
	hoy := time.Date(ahora.Year(), ahora.Month(), ahora.Day(), 0, 0, 0, 0, ahora.Location())
	inicioMes := time.Date(ahora.Year(), ahora.Month(), 1, 0, 0, 0, 0, ahora.Location())

	sumHoy, err := s.caja.SumPorMetodo(ctx, hoy, time.Time{})
	if err != nil {
		return nil, err
	}
	sumMes, err := s.caja.SumPorMetodo(ctx, inicioMes, time.Time{})
	if err != nil {
		return nil, err
	}
	sumTotal, err := s.caja.SumPorMetodo(ctx, time.Time{}, time.Time{})
	if err != nil {
		return nil, err
	}
	enCochera, err := s.entradas.CountAbiertas(ctx)
	if err != nil {
		return nil, err
	}
	clientes, err := s.clientes.Count(ctx)
	if err != nil {
		return nil, err
	}
	activos, err := s.trabajadores.CountActivos(ctx)
	if err != nil {
		return nil, err
	}

	desde := hoy.AddDate(0, 0, -(diasSerie - 1))
	diarios, err := s.caja.TotalesDiarios(ctx, desde, ahora.Location().String())
	if err != nil {
		return nil, err
	}

	return &dto.DashboardResponse{
		Hoy:                 toMontos(sumHoy),
		Mes:                 toMontos(sumMes),
		Historico:           toMontos(sumTotal),
		AutosEnCochera:      enCochera,
		TotalClientes:       clientes,
		TrabajadoresActivos: activos,
		UltimosDias:         serieDiaria(desde, diarios),
	}, nil
}

// serieDiaria returns one row per day starting at desde, zero-filled for days
// without movements.
func serieDiaria(desde time.Time, rows []repository.TotalDiario) []dto.IngresoDiarioResponse {
	porDia := make(map[string]map[string]decimal.Decimal, diasSerie)
	for _, r := range rows {
		if porDia[r.Fecha] == nil {
			porDia[r.Fecha] = map[string]decimal.Decimal{}
		}
		porDia[r.Fecha][r.MetodoPago] = r.Monto
	}

	serie := make([]dto.IngresoDiarioResponse, diasSerie)
	for i := range serie {
		fecha := desde.AddDate(0, 0, i).Format(model.FormatoFecha)
		m := toMontos(porDia[fecha])
		serie[i] = dto.IngresoDiarioResponse{Fecha: fecha, Efectivo: m.Efectivo, Electronico: m.Electronico, Total: m.Total}
	}
	return serie
}
