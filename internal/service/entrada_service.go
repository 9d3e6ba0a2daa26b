package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"cochera/internal/cobro"
	"cochera/internal/dto"
	"cochera/internal/metrics"
	"cochera/internal/model"
	"cochera/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const toleranciaDefault = 60

type EntradaService interface {
	RegistrarEntrada(ctx context.Context, actor Actor, req dto.RegistrarEntradaRequest) (*dto.EntradaCreadaResponse, error)
	Obtener(ctx context.Context, id uuid.UUID) (*dto.EntradaResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarEntradaRequest) (*dto.EntradaResponse, error)
	EnCochera(ctx context.Context) (*dto.EnCocheraResponse, error)
	CalcularCobro(ctx context.Context, id uuid.UUID) (*dto.CobroResponse, error)
	RegistrarSalida(ctx context.Context, actor Actor, req dto.RegistrarSalidaRequest) (*dto.SalidaResponse, error)
	AutorizarSalida(ctx context.Context, actor Actor, req dto.AutorizarSalidaRequest) (*dto.AutorizacionResponse, error)
	Ticket(ctx context.Context, id uuid.UUID) (*dto.TicketResponse, error)
	Historial(ctx context.Context, filter dto.HistorialFilter) (*dto.HistorialResponse, error)
	ExportarHistorialCSV(ctx context.Context, filter dto.HistorialFilter, w io.Writer) error
}

type entradaService struct {
	clientes repository.ClienteRepository
	entradas repository.EntradaRepository
	caja     repository.CajaRepository
	turnos   repository.TurnoRepository
	config   ConfiguracionService
	now      Clock
}

func NewEntradaService(
	clientes repository.ClienteRepository,
	entradas repository.EntradaRepository,
	caja repository.CajaRepository,
	turnos repository.TurnoRepository,
	config ConfiguracionService,
	now Clock,
) EntradaService {
	return &entradaService{
		clientes: clientes,
		entradas: entradas,
		caja:     caja,
		turnos:   turnos,
		config:   config,
		now:      now,
	}
}

// ── Registrar entrada ─────────────────────────────────────────────────────────
// Client upsert, stay insert and the optional advance movement are atomic.

func (s *entradaService) RegistrarEntrada(ctx context.Context, actor Actor, req dto.RegistrarEntradaRequest) (*dto.EntradaCreadaResponse, error) {
	placa := model.NormalizarPlaca(req.Placa)
	nombre := strings.TrimSpace(req.Cliente)
	switch {
	case placa == "":
		return nil, validacion("La placa es obligatoria")
	case nombre == "":
		return nil, validacion("El nombre del cliente es obligatorio")
	case !req.PrecioDia.IsPositive():
		return nil, validacion("El precio por día es obligatorio y debe ser mayor a 0")
	case req.Dias < 1:
		return nil, validacion("Los días deben ser al menos 1")
	case req.Adelanto.IsNegative():
		return nil, validacion("El adelanto no puede ser negativo")
	}
	if actor.TurnoID == nil {
		return nil, sinTurno()
	}

	ahora := s.now()
	fecha := textoODefecto(req.FechaEntrada, ahora.Format(model.FormatoFecha))
	hora := textoODefecto(req.HoraEntrada, ahora.Format(model.FormatoHora))
	if _, err := cobro.ParseInstante(fecha, hora, ahora.Location()); err != nil {
		return nil, validacion("Fecha u hora de entrada inválida")
	}
	fechaHasta, horaHasta, err := salidaEsperada(req.FechaHasta, req.HoraSalidaEsperada, ahora.Location())
	if err != nil {
		return nil, err
	}

	metodo := metodoODefecto(req.MetodoPago)
	pre := cobro.Prepago(req.PrecioDia, req.Dias, req.Adelanto, req.Pagado)

	e := &model.Entrada{
		FechaEntrada:           fecha,
		HoraEntrada:            hora,
		FechaHasta:             fechaHasta,
		HoraSalidaEsperada:     horaHasta,
		Dias:                   req.Dias,
		PrecioDia:              req.PrecioDia,
		Monto:                  pre.Monto,
		Adelanto:               pre.Adelanto,
		MetodoPago:             metodo,
		DejoLlave:              req.DejoLlave,
		Pagado:                 pre.Completo,
		PagoCompletoAdelantado: pre.Completo,
		Observaciones:          strings.TrimSpace(req.Observaciones),
		TrabajadorID:           actor.TrabajadorID,
		CreatedAt:              ahora,
	}
	var mov *model.MovimientoCaja

	err = runTx(ctx, s.entradas.DB(), func(tx *gorm.DB) error {
		if err := s.verificarTurno(ctx, tx, actor); err != nil {
			return err
		}

		if _, err := s.entradas.FindAbiertaPorPlaca(ctx, tx, placa); err == nil {
			return conflicto("Este vehículo ya se encuentra en la cochera")
		} else if !errors.Is(err, repository.ErrNotFound) {
			return err
		}

		cliente, err := s.upsertCliente(ctx, tx, placa, nombre, req.Celular, req.PrecioDia)
		if err != nil {
			return err
		}
		e.ClienteID = cliente.ID
		e.Cliente = cliente

		if err := s.entradas.Create(ctx, tx, e); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return conflicto("Este vehículo ya se encuentra en la cochera")
			}
			return err
		}

		if e.Adelanto.IsPositive() {
			tipo := model.MovAdelanto
			if e.PagoCompletoAdelantado {
				tipo = model.MovPagoCompleto
			}
			desc := fmt.Sprintf("%s - %s - %s - %d día(s)", tipo, placa, nombre, e.Dias)
			mov, err = s.registrarMovimiento(ctx, tx, actor, e.ID, tipo, metodo, e.Adelanto, desc)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.EntradaRegistrada()
	if mov != nil {
		metrics.Movimiento(mov.Tipo, mov.MetodoPago, mov.Monto)
	}
	log.Info().Str("placa", placa).Str("entrada_id", e.ID.String()).Bool("pago_completo", e.PagoCompletoAdelantado).Msg("entrada registrada")

	e.Trabajador = &model.Trabajador{ID: actor.TrabajadorID, Nombre: actor.Nombre}
	resp := &dto.EntradaCreadaResponse{
		Entrada: toEntradaResponse(e),
		Mensaje: "Entrada registrada exitosamente",
	}
	if mov != nil {
		mov.Entrada = e
		m := toMovimientoResponse(mov)
		resp.Movimiento = &m
	}
	return resp, nil
}

// upsertCliente refreshes the contact data of a known plate or creates it.
func (s *entradaService) upsertCliente(ctx context.Context, tx *gorm.DB, placa, nombre, celular string, precio decimal.Decimal) (*model.Cliente, error) {
	c, err := s.clientes.FindByPlaca(ctx, tx, placa)
	switch {
	case err == nil:
		c.Nombre = nombre
		c.Celular = strings.TrimSpace(celular)
		c.PrecioDia = precio
		if err := s.clientes.Update(ctx, tx, c); err != nil {
			return nil, err
		}
		return c, nil
	case errors.Is(err, repository.ErrNotFound):
		c = &model.Cliente{Placa: placa, Nombre: nombre, Celular: strings.TrimSpace(celular), PrecioDia: precio}
		if err := s.clientes.Create(ctx, tx, c); err != nil {
			// Another check-in created the plate after our read.
			if errors.Is(err, repository.ErrDuplicate) {
				return nil, conflicto("Este vehículo ya se encuentra en la cochera")
			}
			return nil, err
		}
		return c, nil
	default:
		return nil, err
	}
}

// ── Consulta y edición ────────────────────────────────────────────────────────

func (s *entradaService) Obtener(ctx context.Context, id uuid.UUID) (*dto.EntradaResponse, error) {
	e, err := s.buscar(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toEntradaResponse(e)
	return &resp, nil
}

func (s *entradaService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarEntradaRequest) (*dto.EntradaResponse, error) {
	e, err := s.buscar(ctx, id)
	if err != nil {
		return nil, err
	}
	if !e.Abierta() {
		return nil, conflicto("No se puede editar una entrada que ya registró su salida")
	}

	loc := s.now().Location()
	if req.FechaEntrada != nil {
		e.FechaEntrada = strings.TrimSpace(*req.FechaEntrada)
	}
	if req.HoraEntrada != nil {
		e.HoraEntrada = strings.TrimSpace(*req.HoraEntrada)
	}
	if _, err := cobro.ParseInstante(e.FechaEntrada, e.HoraEntrada, loc); err != nil {
		return nil, validacion("Fecha u hora de entrada inválida")
	}
	if req.FechaHasta != nil || req.HoraSalidaEsperada != nil {
		fh, hh := e.FechaHasta, e.HoraSalidaEsperada
		if req.FechaHasta != nil {
			fh = req.FechaHasta
		}
		if req.HoraSalidaEsperada != nil {
			hh = req.HoraSalidaEsperada
		}
		e.FechaHasta, e.HoraSalidaEsperada, err = salidaEsperada(fh, hh, loc)
		if err != nil {
			return nil, err
		}
	}
	if req.PrecioDia != nil {
		if !req.PrecioDia.IsPositive() {
			return nil, validacion("El precio por día debe ser mayor a 0")
		}
		e.PrecioDia = *req.PrecioDia
	}
	if req.Dias != nil {
		if *req.Dias < 1 {
			return nil, validacion("Los días deben ser al menos 1")
		}
		e.Dias = *req.Dias
	}
	if req.DejoLlave != nil {
		e.DejoLlave = *req.DejoLlave
	}
	if req.Observaciones != nil {
		e.Observaciones = strings.TrimSpace(*req.Observaciones)
	}
	e.Monto = e.PrecioDia.Mul(decimal.NewFromInt(int64(e.Dias)))

	if err := s.entradas.UpdateAbierta(ctx, e); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, conflicto("No se puede editar una entrada que ya registró su salida")
		}
		return nil, err
	}
	resp := toEntradaResponse(e)
	return &resp, nil
}

// ── Autos en cochera / cobro ──────────────────────────────────────────────────

func (s *entradaService) EnCochera(ctx context.Context) (*dto.EnCocheraResponse, error) {
	abiertas, err := s.entradas.ListAbiertas(ctx)
	if err != nil {
		return nil, err
	}
	ahora := s.now()
	tol := s.config.Entero(ctx, model.ConfToleranciaMinutos, toleranciaDefault)

	autos := make([]dto.AutoEnCocheraResponse, len(abiertas))
	for i := range abiertas {
		e := &abiertas[i]
		liq := s.liquidar(e, ahora, tol)
		a := dto.AutoEnCocheraResponse{
			ID:                     e.ID.String(),
			FechaEntrada:           e.FechaEntrada,
			HoraEntrada:            e.HoraEntrada,
			FechaHasta:             e.FechaHasta,
			HoraSalidaEsperada:     e.HoraSalidaEsperada,
			DiasPactados:           e.Dias,
			DiasReales:             liq.DiasReales,
			PrecioDia:              e.PrecioDia,
			Monto:                  e.Monto,
			Adelanto:               e.Adelanto,
			Penalidad:              liq.Penalidad,
			Pendiente:              liq.ACobrar,
			MetodoPago:             e.MetodoPago,
			DejoLlave:              e.DejoLlave,
			Pagado:                 e.Pagado,
			PagoCompletoAdelantado: e.PagoCompletoAdelantado,
			Observaciones:          e.Observaciones,
			TrabajadorEntrada:      nombreTrabajador(e.Trabajador),
			ExcedeTiempo:           liq.ExcedeTiempo,
		}
		if e.Cliente != nil {
			a.Placa = e.Cliente.Placa
			a.Cliente = e.Cliente.Nombre
			a.Celular = e.Cliente.Celular
		}
		autos[i] = a
	}
	return &dto.EnCocheraResponse{Autos: autos, Total: len(autos)}, nil
}

func (s *entradaService) CalcularCobro(ctx context.Context, id uuid.UUID) (*dto.CobroResponse, error) {
	e, err := s.buscar(ctx, id)
	if err != nil {
		return nil, err
	}
	if !e.Abierta() {
		return nil, noEncontrado("Entrada no encontrada o ya registró su salida")
	}

	tol := s.config.Entero(ctx, model.ConfToleranciaMinutos, toleranciaDefault)
	liq := s.liquidar(e, s.now(), tol)

	resp := &dto.CobroResponse{
		ID:                 e.ID.String(),
		TrabajadorEntrada:  nombreTrabajador(e.Trabajador),
		FechaEntrada:       e.FechaEntrada,
		HoraEntrada:        e.HoraEntrada,
		FechaHasta:         e.FechaHasta,
		HoraSalidaEsperada: e.HoraSalidaEsperada,
		DiasPactados:       e.Dias,
		DiasReales:         liq.DiasReales,
		PrecioDia:          e.PrecioDia,
		MontoDias:          liq.MontoDias,
		Penalidad:          liq.Penalidad,
		MontoTotal:         liq.MontoTotal,
		Adelanto:           liq.Adelanto,
		ACobrar:            liq.ACobrar,
		DejoLlave:          e.DejoLlave,
		YaPagoCompleto:     e.PagoCompletoAdelantado,
		ExcedeTiempo:       liq.ExcedeTiempo,
		Observaciones:      e.Observaciones,
	}
	if e.Cliente != nil {
		resp.Placa = e.Cliente.Placa
		resp.Cliente = e.Cliente.Nombre
		resp.Celular = e.Cliente.Celular
	}
	return resp, nil
}

// ── Salida con cobro ──────────────────────────────────────────────────────────
// The day count is always recomputed here. The penalty is the operator's value
// when given, otherwise the computed one.

func (s *entradaService) RegistrarSalida(ctx context.Context, actor Actor, req dto.RegistrarSalidaRequest) (*dto.SalidaResponse, error) {
	id, err := uuid.Parse(req.EntradaID)
	if err != nil {
		return nil, validacion("ID de entrada inválido")
	}
	if req.Descuento.IsNegative() || (req.Penalidad != nil && req.Penalidad.IsNegative()) {
		return nil, validacion("La penalidad y el descuento no pueden ser negativos")
	}
	if actor.TurnoID == nil {
		return nil, sinTurno()
	}

	ahora := s.now()
	tol := s.config.Entero(ctx, model.ConfToleranciaMinutos, toleranciaDefault)
	metodo := metodoODefecto(req.MetodoPago)

	var (
		e    *model.Entrada
		res  cobro.ResultadoSalida
		dias int
		pen  decimal.Decimal
		mov  *model.MovimientoCaja
	)
	err = runTx(ctx, s.entradas.DB(), func(tx *gorm.DB) error {
		if err := s.verificarTurno(ctx, tx, actor); err != nil {
			return err
		}
		e, err = s.entradaAbierta(ctx, tx, id)
		if err != nil {
			return err
		}

		dias = cobro.DiasReales(e.FechaEntrada, ahora)
		if req.Penalidad != nil {
			pen = *req.Penalidad
		} else {
			pen = s.liquidar(e, ahora, tol).Penalidad
		}
		res = cobro.Salida(cobro.Cargo{
			Dias:                   dias,
			PrecioDia:              e.PrecioDia,
			Penalidad:              pen,
			Descuento:              req.Descuento,
			Adelanto:               e.Adelanto,
			PagoCompletoAdelantado: e.PagoCompletoAdelantado,
		})

		e.Dias = dias
		e.Monto = res.MontoTotal
		e.Penalidad = pen
		e.Descuento = req.Descuento
		e.Pagado = true
		e.MetodoPago = metodo
		marcarSalida(e, actor, ahora)
		if err := s.cerrar(ctx, tx, e); err != nil {
			return err
		}

		if res.ACobrar.IsPositive() {
			mov, err = s.registrarMovimiento(ctx, tx, actor, e.ID, model.MovCobroSalida, metodo, res.ACobrar,
				descripcionCobro(e, dias, pen, req.Descuento))
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.SalidaRegistrada("cobro")
	if mov != nil {
		metrics.Movimiento(mov.Tipo, mov.MetodoPago, mov.Monto)
	}
	log.Info().Str("entrada_id", e.ID.String()).Str("a_cobrar", res.ACobrar.StringFixed(2)).Msg("salida registrada")

	resp := &dto.SalidaResponse{
		EntradaID:  e.ID.String(),
		DiasReales: dias,
		Penalidad:  pen,
		Descuento:  req.Descuento,
		MontoTotal: res.MontoTotal,
		ACobrar:    res.ACobrar,
		Mensaje:    "Salida registrada exitosamente",
	}
	if e.Cliente != nil {
		resp.Placa = e.Cliente.Placa
		resp.Cliente = e.Cliente.Nombre
	}
	if mov != nil {
		mov.Entrada = e
		m := toMovimientoResponse(mov)
		resp.Movimiento = &m
	}
	return resp, nil
}

// ── Salida autorizada ─────────────────────────────────────────────────────────
// Fully prepaid stays leave without touching their days, amount or paid flag.
// Only the penalty left after the discount is collected.

func (s *entradaService) AutorizarSalida(ctx context.Context, actor Actor, req dto.AutorizarSalidaRequest) (*dto.AutorizacionResponse, error) {
	id, err := uuid.Parse(req.EntradaID)
	if err != nil {
		return nil, validacion("ID de entrada inválido")
	}
	if req.Descuento.IsNegative() || (req.Penalidad != nil && req.Penalidad.IsNegative()) {
		return nil, validacion("La penalidad y el descuento no pueden ser negativos")
	}
	if actor.TurnoID == nil {
		return nil, sinTurno()
	}

	ahora := s.now()
	tol := s.config.Entero(ctx, model.ConfToleranciaMinutos, toleranciaDefault)
	metodo := metodoODefecto(req.MetodoPago)

	var (
		e     *model.Entrada
		extra decimal.Decimal
		mov   *model.MovimientoCaja
	)
	err = runTx(ctx, s.entradas.DB(), func(tx *gorm.DB) error {
		if err := s.verificarTurno(ctx, tx, actor); err != nil {
			return err
		}
		e, err = s.entradaAbierta(ctx, tx, id)
		if err != nil {
			return err
		}
		if !e.PagoCompletoAdelantado {
			return noEncontrado("La entrada no está pagada por completo; registre la salida con cobro")
		}

		pen := s.liquidar(e, ahora, tol).Penalidad
		if req.Penalidad != nil {
			pen = *req.Penalidad
		}
		extra = cobro.ExtraAutorizacion(pen, req.Descuento)

		e.Penalidad = pen
		e.Descuento = req.Descuento
		marcarSalida(e, actor, ahora)
		if err := s.cerrar(ctx, tx, e); err != nil {
			return err
		}

		if extra.IsPositive() {
			desc := "Penalidad - " + placaDe(e) + " - " + clienteDe(e)
			mov, err = s.registrarMovimiento(ctx, tx, actor, e.ID, model.MovPenalidad, metodo, extra, desc)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.SalidaRegistrada("autorizada")
	if mov != nil {
		metrics.Movimiento(mov.Tipo, mov.MetodoPago, mov.Monto)
	}
	log.Info().Str("entrada_id", e.ID.String()).Str("extra", extra.StringFixed(2)).Msg("salida autorizada")

	resp := &dto.AutorizacionResponse{
		EntradaID: e.ID.String(),
		Placa:     placaDe(e),
		Cliente:   clienteDe(e),
		Extra:     extra,
		Mensaje:   "Salida autorizada",
	}
	if mov != nil {
		mov.Entrada = e
		m := toMovimientoResponse(mov)
		resp.Movimiento = &m
	}
	return resp, nil
}

// ── Ticket ────────────────────────────────────────────────────────────────────

func (s *entradaService) Ticket(ctx context.Context, id uuid.UUID) (*dto.TicketResponse, error) {
	e, err := s.buscar(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.TicketResponse{
		ID:                     e.ID.String(),
		Placa:                  placaDe(e),
		Cliente:                clienteDe(e),
		Celular:                celularDe(e),
		FechaEntrada:           e.FechaEntrada,
		HoraEntrada:            e.HoraEntrada,
		FechaHasta:             e.FechaHasta,
		HoraSalidaEsperada:     e.HoraSalidaEsperada,
		Dias:                   e.Dias,
		PrecioDia:              e.PrecioDia,
		Monto:                  e.Monto,
		Adelanto:               e.Adelanto,
		DejoLlave:              e.DejoLlave,
		PagoCompletoAdelantado: e.PagoCompletoAdelantado,
		Observaciones:          e.Observaciones,
		Trabajador:             nombreTrabajador(e.Trabajador),
	}, nil
}

// ── Historial ─────────────────────────────────────────────────────────────────

func (s *entradaService) Historial(ctx context.Context, filter dto.HistorialFilter) (*dto.HistorialResponse, error) {
	q, err := historialQuery(filter)
	if err != nil {
		return nil, err
	}
	page, limit, offset := paginate(filter.Page, filter.Limit)
	q.Page = repository.Page{Offset: offset, Limit: limit}

	rows, total, err := s.entradas.List(ctx, q)
	if err != nil {
		return nil, err
	}
	data := make([]dto.EntradaResponse, len(rows))
	for i := range rows {
		data[i] = toEntradaResponse(&rows[i])
	}
	return &dto.HistorialResponse{Data: data, Total: total, Page: page, Limit: limit}, nil
}

var cabeceraCSV = []string{
	"Placa", "Cliente", "Celular", "Fecha entrada", "Hora entrada", "Fecha salida", "Hora salida",
	"Días", "Precio/día", "Monto", "Adelanto", "Penalidad", "Descuento", "Método de pago",
	"Estado", "Registró", "Despachó",
}

// ExportarHistorialCSV writes every stay matching filter, ignoring pagination.
func (s *entradaService) ExportarHistorialCSV(ctx context.Context, filter dto.HistorialFilter, w io.Writer) error {
	q, err := historialQuery(filter)
	if err != nil {
		return err
	}
	rows, _, err := s.entradas.List(ctx, q)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(cabeceraCSV); err != nil {
		return err
	}
	for i := range rows {
		e := &rows[i]
		estado := "En cochera"
		if e.Salio {
			estado = "Salió"
		}
		record := []string{
			placaDe(e), clienteDe(e), celularDe(e),
			e.FechaEntrada, e.HoraEntrada, deref(e.FechaSalida), deref(e.HoraSalida),
			strconv.Itoa(e.Dias),
			e.PrecioDia.StringFixed(2), e.Monto.StringFixed(2), e.Adelanto.StringFixed(2),
			e.Penalidad.StringFixed(2), e.Descuento.StringFixed(2),
			e.MetodoPago, estado,
			nombreTrabajador(e.Trabajador), nombreTrabajador(e.TrabajadorSalida),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func historialQuery(f dto.HistorialFilter) (repository.EntradaQuery, error) {
	q := repository.EntradaQuery{
		Placa:  strings.TrimSpace(f.Placa),
		Desde:  strings.TrimSpace(f.Desde),
		Hasta:  strings.TrimSpace(f.Hasta),
		Estado: f.Estado,
	}
	for _, d := range []string{q.Desde, q.Hasta} {
		if d == "" {
			continue
		}
		if _, err := time.Parse(model.FormatoFecha, d); err != nil {
			return q, validacion("Fecha inválida: %s (formato AAAA-MM-DD)", d)
		}
	}
	switch q.Estado {
	case "", repository.EstadoEnCochera, repository.EstadoSalio:
	default:
		return q, validacion("Estado inválido: %s", q.Estado)
	}
	return q, nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func (s *entradaService) buscar(ctx context.Context, id uuid.UUID) (*model.Entrada, error) {
	e, err := s.entradas.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, noEncontrado("Entrada no encontrada")
		}
		return nil, err
	}
	return e, nil
}

func (s *entradaService) entradaAbierta(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Entrada, error) {
	e, err := s.entradas.FindByIDTx(ctx, tx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, noEncontrado("Entrada no encontrada o ya registró su salida")
		}
		return nil, err
	}
	if !e.Abierta() {
		return nil, noEncontrado("Entrada no encontrada o ya registró su salida")
	}
	return e, nil
}

// cerrar fails when another session closed the stay first.
func (s *entradaService) cerrar(ctx context.Context, tx *gorm.DB, e *model.Entrada) error {
	if err := s.entradas.Cerrar(ctx, tx, e); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return noEncontrado("Entrada no encontrada o ya registró su salida")
		}
		return err
	}
	return nil
}

// verificarTurno checks, inside the transaction, that the actor's shift is
// still the open one before a movement is attributed to it.
func (s *entradaService) verificarTurno(ctx context.Context, tx *gorm.DB, actor Actor) error {
	t, err := s.turnos.FindAbiertoPorTrabajador(ctx, tx, actor.TrabajadorID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return sinTurno()
		}
		return err
	}
	if t.ID != *actor.TurnoID {
		return sinTurno()
	}
	return nil
}

func (s *entradaService) registrarMovimiento(
	ctx context.Context, tx *gorm.DB, actor Actor, entradaID uuid.UUID,
	tipo, metodo string, monto decimal.Decimal, desc string,
) (*model.MovimientoCaja, error) {
	m := &model.MovimientoCaja{
		TurnoID:      *actor.TurnoID,
		EntradaID:    &entradaID,
		TrabajadorID: actor.TrabajadorID,
		Tipo:         tipo,
		Monto:        monto,
		MetodoPago:   metodo,
		Descripcion:  desc,
		CreatedAt:    s.now(),
	}
	if err := s.caja.CreateMovimiento(ctx, tx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// liquidar runs the billing engine and logs a penalty that fell back to zero.
func (s *entradaService) liquidar(e *model.Entrada, ahora time.Time, tol int) cobro.Liquidacion {
	liq := cobro.Liquidar(cobro.Estancia{
		FechaEntrada:           e.FechaEntrada,
		FechaHasta:             e.FechaHasta,
		HoraSalidaEsperada:     e.HoraSalidaEsperada,
		Dias:                   e.Dias,
		PrecioDia:              e.PrecioDia,
		Adelanto:               e.Adelanto,
		PagoCompletoAdelantado: e.PagoCompletoAdelantado,
	}, ahora, tol)
	if liq.PenalidadErr != nil {
		metrics.PenalidadFallida()
		log.Warn().Err(liq.PenalidadErr).Str("entrada_id", e.ID.String()).Msg("penalidad: cálculo fallido, se usa 0")
	}
	return liq
}

func marcarSalida(e *model.Entrada, actor Actor, ahora time.Time) {
	fecha := ahora.Format(model.FormatoFecha)
	hora := ahora.Format(model.FormatoHora)
	trabajador := actor.TrabajadorID
	e.Salio = true
	e.FechaSalida = &fecha
	e.HoraSalida = &hora
	e.SalidaAt = &ahora
	e.TrabajadorSalidaID = &trabajador
	e.TrabajadorSalida = &model.Trabajador{ID: actor.TrabajadorID, Nombre: actor.Nombre}
}

func descripcionCobro(e *model.Entrada, dias int, pen, desc decimal.Decimal) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Cobro salida - %s - %s - %d día(s)", placaDe(e), clienteDe(e), dias)
	if pen.IsPositive() {
		fmt.Fprintf(&b, " (+ penalidad S/ %s)", pen.StringFixed(2))
	}
	if desc.IsPositive() {
		fmt.Fprintf(&b, " (- descuento S/ %s)", desc.StringFixed(2))
	}
	return b.String()
}

// salidaEsperada normalizes the optional planned exit. Both parts must be
// valid when both are present; blanks become NULL.
func salidaEsperada(fecha, hora *string, loc *time.Location) (*string, *string, error) {
	f, h := recortar(fecha), recortar(hora)
	if f != nil {
		if _, err := time.ParseInLocation(model.FormatoFecha, *f, loc); err != nil {
			return nil, nil, validacion("Fecha de salida esperada inválida")
		}
	}
	if f != nil && h != nil {
		if _, err := cobro.ParseInstante(*f, *h, loc); err != nil {
			return nil, nil, validacion("Hora de salida esperada inválida")
		}
	}
	return f, h, nil
}

func recortar(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}

func textoODefecto(s *string, def string) string {
	if t := recortar(s); t != nil {
		return *t
	}
	return def
}

func metodoODefecto(m string) string {
	if m == model.MetodoElectronico {
		return m
	}
	return model.MetodoEfectivo
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func placaDe(e *model.Entrada) string {
	if e.Cliente == nil {
		return ""
	}
	return e.Cliente.Placa
}

func clienteDe(e *model.Entrada) string {
	if e.Cliente == nil {
		return ""
	}
	return e.Cliente.Nombre
}

func celularDe(e *model.Entrada) string {
	if e.Cliente == nil {
		return ""
	}
	return e.Cliente.Celular
}
