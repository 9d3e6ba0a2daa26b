package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"cochera/internal/cobro"
	"cochera/internal/dto"
	"cochera/internal/metrics"
	"cochera/internal/model"
	"cochera/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// ReporteEncolador schedules the closing report of a shift. It runs after the
// close has been committed; a failure never reopens the shift.
type ReporteEncolador interface {
	EncolarReporteTurno(ctx context.Context, turnoID uuid.UUID) error
}

type TurnoService interface {
	Actual(ctx context.Context, actor Actor) (*dto.ResumenTurnoResponse, error)
	// Cerrar reconciles the declared amounts against the ledger. With
	// SoloCalcular set nothing is written.
	Cerrar(ctx context.Context, actor Actor, req dto.CerrarTurnoRequest) (*dto.CierreTurnoResponse, error)
	MisReportes(ctx context.Context, actor Actor, filter dto.TurnoFilter) (*dto.TurnoListResponse, error)
	DetalleMio(ctx context.Context, actor Actor, id uuid.UUID) (*dto.DetalleTurnoResponse, error)

	Activo(ctx context.Context) (*dto.TurnoActivoResponse, error)
	Reportes(ctx context.Context, filter dto.TurnoFilter) (*dto.TurnoListResponse, error)
	Detalle(ctx context.Context, id uuid.UUID) (*dto.DetalleTurnoResponse, error)
	DetalleMovimiento(ctx context.Context, id uuid.UUID) (*dto.MovimientoDetalleResponse, error)

	// TurnoAbierto reports whether turnoID is still the worker's open shift.
	TurnoAbierto(ctx context.Context, trabajadorID, turnoID uuid.UUID) (bool, error)
}

type turnoService struct {
	turnos   repository.TurnoRepository
	caja     repository.CajaRepository
	entradas repository.EntradaRepository
	reportes ReporteEncolador
	now      Clock
}

func NewTurnoService(
	turnos repository.TurnoRepository,
	caja repository.CajaRepository,
	entradas repository.EntradaRepository,
	reportes ReporteEncolador,
	now Clock,
) TurnoService {
	return &turnoService{turnos: turnos, caja: caja, entradas: entradas, reportes: reportes, now: now}
}

// ── Turno propio ──────────────────────────────────────────────────────────────

func (s *turnoService) Actual(ctx context.Context, actor Actor) (*dto.ResumenTurnoResponse, error) {
	t, err := s.turnoDelActor(ctx, nil, actor)
	if err != nil {
		return nil, err
	}
	t.Trabajador = &model.Trabajador{ID: actor.TrabajadorID, Nombre: actor.Nombre}

	movs, err := s.caja.ListMovimientos(ctx, t.ID)
	if err != nil {
		return nil, err
	}
	sums, err := s.caja.SumMovimientosByMetodo(ctx, nil, t.ID)
	if err != nil {
		return nil, err
	}
	ingresados, salieron, err := s.autos(ctx, t)
	if err != nil {
		return nil, err
	}
	enCochera, err := s.entradas.CountAbiertas(ctx)
	if err != nil {
		return nil, err
	}

	return &dto.ResumenTurnoResponse{
		Turno:           toTurnoResponse(t),
		Movimientos:     toMovimientos(movs),
		Totales:         toMontos(sums),
		AutosIngresados: ingresados,
		AutosSalieron:   salieron,
		AutosEnCochera:  enCochera,
	}, nil
}

func (s *turnoService) Cerrar(ctx context.Context, actor Actor, req dto.CerrarTurnoRequest) (*dto.CierreTurnoResponse, error) {
	if req.EfectivoDeclarado.IsNegative() || req.ElectronicoDeclarado.IsNegative() {
		return nil, validacion("Los montos declarados no pueden ser negativos")
	}

	var (
		t    *model.Turno
		conc cobro.Conciliacion
	)
	err := runTx(ctx, s.turnos.DB(), func(tx *gorm.DB) error {
		var err error
		t, err = s.turnoDelActor(ctx, tx, actor)
		if err != nil {
			return err
		}
		sums, err := s.caja.SumMovimientosByMetodo(ctx, tx, t.ID)
		if err != nil {
			return err
		}
		conc = cobro.Arqueo(
			cobro.Montos{Efectivo: sums[model.MetodoEfectivo], Electronico: sums[model.MetodoElectronico]},
			cobro.Montos{Efectivo: req.EfectivoDeclarado, Electronico: req.ElectronicoDeclarado},
		)
		if req.SoloCalcular {
			return nil
		}

		ahora := s.now()
		t.Estado = model.TurnoCerrado
		t.TotalEfectivo = conc.Computado.Efectivo
		t.TotalElectronico = conc.Computado.Electronico
		t.EfectivoDeclarado = &req.EfectivoDeclarado
		t.ElectronicoDeclarado = &req.ElectronicoDeclarado
		t.Observaciones = recortar(req.Observaciones)
		t.ClosedAt = &ahora
		if err := s.turnos.Cerrar(ctx, tx, t); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return sinTurno()
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !req.SoloCalcular {
		metrics.TurnoCerrado()
		log.Info().
			Str("turno_id", t.ID.String()).
			Str("trabajador", actor.Nombre).
			Str("diferencia", conc.Diferencia.StringFixed(2)).
			Msg("turno cerrado")
		if s.reportes != nil {
			if err := s.reportes.EncolarReporteTurno(ctx, t.ID); err != nil {
				log.Error().Err(err).Str("turno_id", t.ID.String()).Msg("no se pudo encolar el reporte de turno")
			}
		}
	}

	ingresados, salieron, err := s.autos(ctx, t)
	if err != nil {
		return nil, err
	}
	return &dto.CierreTurnoResponse{
		TurnoID:         t.ID.String(),
		Trabajador:      actor.Nombre,
		TipoTurno:       t.TipoTurno,
		OpenedAt:        formatTime(t.OpenedAt),
		ClosedAt:        formatTimePtr(t.ClosedAt),
		AutosIngresados: ingresados,
		AutosSalieron:   salieron,
		Computado:       montosDTO(conc.Computado),
		Declarado:       montosDTO(conc.Declarado),
		DifEfectivo:     conc.DifEfectivo,
		DifElectronico:  conc.DifElectronico,
		Diferencia:      conc.Diferencia,
		Cerrado:         !req.SoloCalcular,
	}, nil
}

func (s *turnoService) MisReportes(ctx context.Context, actor Actor, filter dto.TurnoFilter) (*dto.TurnoListResponse, error) {
	filter.TrabajadorID = actor.TrabajadorID.String()
	return s.Reportes(ctx, filter)
}

func (s *turnoService) DetalleMio(ctx context.Context, actor Actor, id uuid.UUID) (*dto.DetalleTurnoResponse, error) {
	resp, err := s.Detalle(ctx, id)
	if err != nil {
		return nil, err
	}
	if resp.Turno.TrabajadorID != actor.TrabajadorID.String() {
		return nil, noEncontrado("Turno no encontrado")
	}
	return resp, nil
}

// ── Administración ────────────────────────────────────────────────────────────

func (s *turnoService) Activo(ctx context.Context) (*dto.TurnoActivoResponse, error) {
	t, err := s.turnos.FindAbierto(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &dto.TurnoActivoResponse{Activo: false}, nil
		}
		return nil, err
	}
	sums, err := s.caja.SumMovimientosByMetodo(ctx, nil, t.ID)
	if err != nil {
		return nil, err
	}
	tr := toTurnoResponse(t)
	totales := toMontos(sums)
	return &dto.TurnoActivoResponse{Activo: true, Turno: &tr, Totales: &totales}, nil
}

func (s *turnoService) Reportes(ctx context.Context, filter dto.TurnoFilter) (*dto.TurnoListResponse, error) {
	loc := s.now().Location()
	q := repository.TurnoQuery{}
	if id := strings.TrimSpace(filter.TrabajadorID); id != "" {
		uid, err := uuid.Parse(id)
		if err != nil {
			return nil, validacion("ID de trabajador inválido")
		}
		q.TrabajadorID = &uid
	}
	var err error
	if q.Desde, err = parseDia(filter.Desde, loc); err != nil {
		return nil, err
	}
	if q.Hasta, err = parseDia(filter.Hasta, loc); err != nil {
		return nil, err
	}
	if !q.Hasta.IsZero() {
		q.Hasta = q.Hasta.AddDate(0, 0, 1)
	}

	page, limit, offset := paginate(filter.Page, filter.Limit)
	q.Page = repository.Page{Offset: offset, Limit: limit}
	rows, total, err := s.turnos.List(ctx, q)
	if err != nil {
		return nil, err
	}
	data := make([]dto.TurnoResponse, len(rows))
	for i := range rows {
		data[i] = toTurnoResponse(&rows[i])
	}
	return &dto.TurnoListResponse{Data: data, Total: total, Page: page, Limit: limit}, nil
}

func (s *turnoService) Detalle(ctx context.Context, id uuid.UUID) (*dto.DetalleTurnoResponse, error) {
	t, err := s.turnos.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, noEncontrado("Turno no encontrado")
		}
		return nil, err
	}
	movs, err := s.caja.ListMovimientos(ctx, t.ID)
	if err != nil {
		return nil, err
	}
	sums, err := s.caja.SumMovimientosByMetodo(ctx, nil, t.ID)
	if err != nil {
		return nil, err
	}
	porTipo, err := s.caja.SumMovimientosByTipo(ctx, t.ID)
	if err != nil {
		return nil, err
	}
	ingresados, salieron, err := s.autos(ctx, t)
	if err != nil {
		return nil, err
	}

	tipos := make([]dto.TotalPorTipoResponse, len(porTipo))
	for i, pt := range porTipo {
		tipos[i] = dto.TotalPorTipoResponse{Tipo: pt.Tipo, Cantidad: pt.Cantidad, Monto: pt.Monto}
	}
	return &dto.DetalleTurnoResponse{
		Turno:           toTurnoResponse(t),
		Movimientos:     toMovimientos(movs),
		Totales:         toMontos(sums),
		PorTipo:         tipos,
		AutosIngresados: ingresados,
		AutosSalieron:   salieron,
	}, nil
}

func (s *turnoService) DetalleMovimiento(ctx context.Context, id uuid.UUID) (*dto.MovimientoDetalleResponse, error) {
	m, err := s.caja.FindMovimientoByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, noEncontrado("Movimiento no encontrado")
		}
		return nil, err
	}
	resp := &dto.MovimientoDetalleResponse{
		MovimientoResponse: toMovimientoResponse(m),
		Trabajador:         nombreTrabajador(m.Trabajador),
	}
	if m.Entrada != nil {
		e := toEntradaResponse(m.Entrada)
		resp.Entrada = &e
	}
	return resp, nil
}

func (s *turnoService) TurnoAbierto(ctx context.Context, trabajadorID, turnoID uuid.UUID) (bool, error) {
	t, err := s.turnos.FindAbiertoPorTrabajador(ctx, nil, trabajadorID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return t.ID == turnoID, nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func (s *turnoService) turnoDelActor(ctx context.Context, tx *gorm.DB, actor Actor) (*model.Turno, error) {
	if actor.TurnoID == nil {
		return nil, sinTurno()
	}
	t, err := s.turnos.FindAbiertoPorTrabajador(ctx, tx, actor.TrabajadorID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, sinTurno()
		}
		return nil, err
	}
	if t.ID != *actor.TurnoID {
		return nil, sinTurno()
	}
	return t, nil
}

// autos counts the check-ins and check-outs the shift's worker made while it was open.
func (s *turnoService) autos(ctx context.Context, t *model.Turno) (int64, int64, error) {
	var hasta time.Time
	if t.ClosedAt != nil {
		hasta = *t.ClosedAt
	}
	ingresados, err := s.entradas.CountRegistradas(ctx, t.TrabajadorID, t.OpenedAt, hasta)
	if err != nil {
		return 0, 0, err
	}
	salieron, err := s.entradas.CountSalidas(ctx, t.TrabajadorID, t.OpenedAt, hasta)
	if err != nil {
		return 0, 0, err
	}
	return ingresados, salieron, nil
}

func toMovimientos(movs []model.MovimientoCaja) []dto.MovimientoResponse {
	resp := make([]dto.MovimientoResponse, len(movs))
	for i := range movs {
		resp[i] = toMovimientoResponse(&movs[i])
	}
	return resp
}

func montosDTO(m cobro.Montos) dto.MontosPorMetodo {
	return dto.MontosPorMetodo{Efectivo: m.Efectivo, Electronico: m.Electronico, Total: m.Total()}
}

// parseDia reads an optional YYYY-MM-DD filter as local midnight.
func parseDia(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.ParseInLocation(model.FormatoFecha, s, loc)
	if err != nil {
		return time.Time{}, validacion("Fecha inválida: %s (formato AAAA-MM-DD)", s)
	}
	return t, nil
}
