package service_test

import (
	"context"
	"sort"
	"strings"
	"time"

	"cochera/internal/model"
	"cochera/internal/repository"
	"cochera/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ── In-memory store ───────────────────────────────────────────────────────────
// Every fake repository shares one store. Reads return copies, like rows
// fetched from the database.

type store struct {
	trabajadores map[uuid.UUID]*model.Trabajador
	clientes     map[uuid.UUID]*model.Cliente
	entradas     map[uuid.UUID]*model.Entrada
	turnos       map[uuid.UUID]*model.Turno
	movimientos  []model.MovimientoCaja
	config       map[string]string
}

func newStore() *store {
	s := &store{
		trabajadores: make(map[uuid.UUID]*model.Trabajador),
		clientes:     make(map[uuid.UUID]*model.Cliente),
		entradas:     make(map[uuid.UUID]*model.Entrada),
		turnos:       make(map[uuid.UUID]*model.Turno),
		config:       make(map[string]string),
	}
	for _, c := range model.ConfiguracionInicial {
		s.config[c.Clave] = c.Valor
	}
	return s
}

func (s *store) trabajador(id *uuid.UUID) *model.Trabajador {
	if id == nil {
		return nil
	}
	if t, ok := s.trabajadores[*id]; ok {
		cp := *t
		return &cp
	}
	return nil
}

func (s *store) entrada(e *model.Entrada) *model.Entrada {
	cp := *e
	if c, ok := s.clientes[e.ClienteID]; ok {
		cc := *c
		cp.Cliente = &cc
	}
	cp.Trabajador = s.trabajador(&e.TrabajadorID)
	cp.TrabajadorSalida = s.trabajador(e.TrabajadorSalidaID)
	return &cp
}

// ── Trabajadores ──────────────────────────────────────────────────────────────

type fakeTrabajadorRepo struct{ s *store }

func (r *fakeTrabajadorRepo) Create(_ context.Context, t *model.Trabajador) error {
	for _, u := range r.s.trabajadores {
		if u.Usuario == t.Usuario {
			return repository.ErrDuplicate
		}
	}
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	cp := *t
	r.s.trabajadores[t.ID] = &cp
	return nil
}

func (r *fakeTrabajadorRepo) FindByUsuario(_ context.Context, usuario string) (*model.Trabajador, error) {
	for _, u := range r.s.trabajadores {
		if u.Usuario == strings.ToLower(usuario) && u.Activo {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeTrabajadorRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Trabajador, error) {
	if t := r.s.trabajador(&id); t != nil {
		return t, nil
	}
	return nil, repository.ErrNotFound
}

func (r *fakeTrabajadorRepo) list(soloActivos bool) []model.Trabajador {
	out := make([]model.Trabajador, 0, len(r.s.trabajadores))
	for _, u := range r.s.trabajadores {
		if soloActivos && !u.Activo {
			continue
		}
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Usuario < out[j].Usuario })
	return out
}

func (r *fakeTrabajadorRepo) List(_ context.Context) ([]model.Trabajador, error) {
	return r.list(true), nil
}

func (r *fakeTrabajadorRepo) ListAll(_ context.Context) ([]model.Trabajador, error) {
	return r.list(false), nil
}

func (r *fakeTrabajadorRepo) Update(_ context.Context, t *model.Trabajador) error {
	if _, ok := r.s.trabajadores[t.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *t
	r.s.trabajadores[t.ID] = &cp
	return nil
}

func (r *fakeTrabajadorRepo) setActivo(id uuid.UUID, activo bool) error {
	t, ok := r.s.trabajadores[id]
	if !ok {
		return repository.ErrNotFound
	}
	t.Activo = activo
	return nil
}

func (r *fakeTrabajadorRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	return r.setActivo(id, false)
}

func (r *fakeTrabajadorRepo) Reactivar(_ context.Context, id uuid.UUID) error {
	return r.setActivo(id, true)
}

func (r *fakeTrabajadorRepo) CountActivos(_ context.Context) (int64, error) {
	var n int64
	for _, u := range r.s.trabajadores {
		if u.Activo && u.Rol == model.RolTrabajador {
			n++
		}
	}
	return n, nil
}

// ── Clientes ──────────────────────────────────────────────────────────────────

type fakeClienteRepo struct{ s *store }

func (r *fakeClienteRepo) DB() *gorm.DB { return nil }

func (r *fakeClienteRepo) FindByPlaca(_ context.Context, _ *gorm.DB, placa string) (*model.Cliente, error) {
	placa = model.NormalizarPlaca(placa)
	for _, c := range r.s.clientes {
		if c.Placa == placa {
			cp := *c
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeClienteRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Cliente, error) {
	c, ok := r.s.clientes[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *fakeClienteRepo) placaUsada(placa string, id uuid.UUID) bool {
	for _, c := range r.s.clientes {
		if c.Placa == placa && c.ID != id {
			return true
		}
	}
	return false
}

func (r *fakeClienteRepo) Create(_ context.Context, _ *gorm.DB, c *model.Cliente) error {
	if r.placaUsada(c.Placa, uuid.Nil) {
		return repository.ErrDuplicate
	}
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	c.CreatedAt, c.UpdatedAt = time.Now(), time.Now()
	cp := *c
	r.s.clientes[c.ID] = &cp
	return nil
}

func (r *fakeClienteRepo) Update(_ context.Context, _ *gorm.DB, c *model.Cliente) error {
	if r.placaUsada(c.Placa, c.ID) {
		return repository.ErrDuplicate
	}
	c.UpdatedAt = time.Now()
	cp := *c
	r.s.clientes[c.ID] = &cp
	return nil
}

func (r *fakeClienteRepo) Delete(_ context.Context, _ *gorm.DB, id uuid.UUID) error {
	if _, ok := r.s.clientes[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.clientes, id)
	return nil
}

func (r *fakeClienteRepo) List(_ context.Context, q repository.ClienteQuery) ([]repository.ClienteConVisitas, int64, error) {
	var out []repository.ClienteConVisitas
	buscar := strings.ToUpper(strings.TrimSpace(q.Buscar))
	for _, c := range r.s.clientes {
		if buscar != "" && !strings.Contains(c.Placa, buscar) && !strings.Contains(strings.ToUpper(c.Nombre), buscar) {
			continue
		}
		row := repository.ClienteConVisitas{Cliente: *c}
		for _, e := range r.s.entradas {
			if e.ClienteID != c.ID {
				continue
			}
			row.TotalVisitas++
			if !e.Salio {
				row.EnCochera = true
			}
		}
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Placa < out[j].Placa })
	return out, int64(len(out)), nil
}

func (r *fakeClienteRepo) Count(_ context.Context) (int64, error) {
	return int64(len(r.s.clientes)), nil
}

func (r *fakeClienteRepo) Estadisticas(_ context.Context, clienteID uuid.UUID) (*repository.EstadisticasCliente, error) {
	st := &repository.EstadisticasCliente{}
	var dias int
	for _, e := range r.s.entradas {
		if e.ClienteID != clienteID {
			continue
		}
		st.TotalVisitas++
		st.TotalGastado = st.TotalGastado.Add(e.Monto)
		if !e.Pagado {
			st.DeudaActual = st.DeudaActual.Add(e.Monto.Sub(e.Adelanto))
		}
		dias += e.Dias
	}
	if st.TotalVisitas > 0 {
		st.PromedioDias = decimal.NewFromInt(int64(dias)).Div(decimal.NewFromInt(st.TotalVisitas)).Round(2)
	}
	return st, nil
}

// ── Entradas ──────────────────────────────────────────────────────────────────

type fakeEntradaRepo struct{ s *store }

func (r *fakeEntradaRepo) DB() *gorm.DB { return nil }

func (r *fakeEntradaRepo) Create(_ context.Context, _ *gorm.DB, e *model.Entrada) error {
	for _, o := range r.s.entradas {
		if o.ClienteID == e.ClienteID && !o.Salio {
			return repository.ErrDuplicate
		}
	}
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	cp := *e
	cp.Cliente, cp.Trabajador, cp.TrabajadorSalida = nil, nil, nil
	r.s.entradas[e.ID] = &cp
	return nil
}

func (r *fakeEntradaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Entrada, error) {
	return r.FindByIDTx(ctx, nil, id)
}

func (r *fakeEntradaRepo) FindByIDTx(_ context.Context, _ *gorm.DB, id uuid.UUID) (*model.Entrada, error) {
	e, ok := r.s.entradas[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return r.s.entrada(e), nil
}

func (r *fakeEntradaRepo) FindAbiertaPorPlaca(_ context.Context, _ *gorm.DB, placa string) (*model.Entrada, error) {
	placa = model.NormalizarPlaca(placa)
	for _, e := range r.s.entradas {
		if c, ok := r.s.clientes[e.ClienteID]; ok && c.Placa == placa && !e.Salio {
			return r.s.entrada(e), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeEntradaRepo) abiertas() []model.Entrada {
	var out []model.Entrada
	for _, e := range r.s.entradas {
		if !e.Salio {
			out = append(out, *r.s.entrada(e))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *fakeEntradaRepo) ListAbiertas(_ context.Context) ([]model.Entrada, error) {
	return r.abiertas(), nil
}

func (r *fakeEntradaRepo) CountAbiertas(_ context.Context) (int64, error) {
	return int64(len(r.abiertas())), nil
}

func (r *fakeEntradaRepo) CountAbiertasPorCliente(_ context.Context, _ *gorm.DB, clienteID uuid.UUID) (int64, error) {
	var n int64
	for _, e := range r.s.entradas {
		if e.ClienteID == clienteID && !e.Salio {
			n++
		}
	}
	return n, nil
}

func (r *fakeEntradaRepo) UpdateAbierta(_ context.Context, e *model.Entrada) error {
	cur, ok := r.s.entradas[e.ID]
	if !ok || cur.Salio {
		return repository.ErrNotFound
	}
	cur.FechaEntrada, cur.HoraEntrada = e.FechaEntrada, e.HoraEntrada
	cur.FechaHasta, cur.HoraSalidaEsperada = e.FechaHasta, e.HoraSalidaEsperada
	cur.Dias, cur.PrecioDia, cur.Monto = e.Dias, e.PrecioDia, e.Monto
	cur.DejoLlave, cur.Observaciones = e.DejoLlave, e.Observaciones
	return nil
}

func (r *fakeEntradaRepo) Cerrar(_ context.Context, _ *gorm.DB, e *model.Entrada) error {
	cur, ok := r.s.entradas[e.ID]
	if !ok || cur.Salio {
		return repository.ErrNotFound
	}
	cur.Salio = true
	cur.Pagado, cur.Dias, cur.Monto = e.Pagado, e.Dias, e.Monto
	cur.Penalidad, cur.Descuento, cur.MetodoPago = e.Penalidad, e.Descuento, e.MetodoPago
	cur.FechaSalida, cur.HoraSalida, cur.SalidaAt = e.FechaSalida, e.HoraSalida, e.SalidaAt
	cur.TrabajadorSalidaID = e.TrabajadorSalidaID
	return nil
}

func (r *fakeEntradaRepo) ListByCliente(_ context.Context, clienteID uuid.UUID) ([]model.Entrada, error) {
	var out []model.Entrada
	for _, e := range r.s.entradas {
		if e.ClienteID == clienteID {
			out = append(out, *r.s.entrada(e))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeEntradaRepo) DeleteByCliente(_ context.Context, _ *gorm.DB, clienteID uuid.UUID) error {
	for id, e := range r.s.entradas {
		if e.ClienteID == clienteID {
			delete(r.s.entradas, id)
		}
	}
	return nil
}

func enRango(t, desde, hasta time.Time) bool {
	return !t.Before(desde) && (hasta.IsZero() || t.Before(hasta))
}

func (r *fakeEntradaRepo) CountRegistradas(_ context.Context, trabajadorID uuid.UUID, desde, hasta time.Time) (int64, error) {
	var n int64
	for _, e := range r.s.entradas {
		if e.TrabajadorID == trabajadorID && enRango(e.CreatedAt, desde, hasta) {
			n++
		}
	}
	return n, nil
}

func (r *fakeEntradaRepo) CountSalidas(_ context.Context, trabajadorID uuid.UUID, desde, hasta time.Time) (int64, error) {
	var n int64
	for _, e := range r.s.entradas {
		if e.TrabajadorSalidaID != nil && *e.TrabajadorSalidaID == trabajadorID &&
			e.SalidaAt != nil && enRango(*e.SalidaAt, desde, hasta) {
			n++
		}
	}
	return n, nil
}

func (r *fakeEntradaRepo) List(_ context.Context, q repository.EntradaQuery) ([]model.Entrada, int64, error) {
	var out []model.Entrada
	for _, e := range r.s.entradas {
		full := r.s.entrada(e)
		if q.Placa != "" && (full.Cliente == nil || !strings.Contains(full.Cliente.Placa, model.NormalizarPlaca(q.Placa))) {
			continue
		}
		if q.Desde != "" && e.FechaEntrada < q.Desde {
			continue
		}
		if q.Hasta != "" && e.FechaEntrada > q.Hasta {
			continue
		}
		if (q.Estado == repository.EstadoEnCochera && e.Salio) || (q.Estado == repository.EstadoSalio && !e.Salio) {
			continue
		}
		out = append(out, *full)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	total := int64(len(out))
	if q.Offset > 0 {
		if q.Offset >= len(out) {
			return nil, total, nil
		}
		out = out[q.Offset:]
	}
	if q.Limit > 0 && q.Limit < len(out) {
		out = out[:q.Limit]
	}
	return out, total, nil
}

// ── Caja ──────────────────────────────────────────────────────────────────────

type fakeCajaRepo struct{ s *store }

func (r *fakeCajaRepo) CreateMovimiento(_ context.Context, _ *gorm.DB, m *model.MovimientoCaja) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	cp := *m
	cp.Entrada, cp.Trabajador = nil, nil
	r.s.movimientos = append(r.s.movimientos, cp)
	return nil
}

func (r *fakeCajaRepo) FindMovimientoByID(_ context.Context, id uuid.UUID) (*model.MovimientoCaja, error) {
	for _, m := range r.s.movimientos {
		if m.ID != id {
			continue
		}
		cp := m
		if m.EntradaID != nil {
			if e, ok := r.s.entradas[*m.EntradaID]; ok {
				cp.Entrada = r.s.entrada(e)
			}
		}
		cp.Trabajador = r.s.trabajador(&m.TrabajadorID)
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}

func (r *fakeCajaRepo) ListMovimientos(_ context.Context, turnoID uuid.UUID) ([]model.MovimientoCaja, error) {
	var out []model.MovimientoCaja
	for _, m := range r.s.movimientos {
		if m.TurnoID == turnoID {
			out = append(out, m)
		}
	}
	return out, nil
}

func sumar(movs []model.MovimientoCaja, keep func(model.MovimientoCaja) bool) map[string]decimal.Decimal {
	sums := map[string]decimal.Decimal{
		model.MetodoEfectivo:    decimal.Zero,
		model.MetodoElectronico: decimal.Zero,
	}
	for _, m := range movs {
		if keep(m) {
			sums[m.MetodoPago] = sums[m.MetodoPago].Add(m.Monto)
		}
	}
	return sums
}

func (r *fakeCajaRepo) SumMovimientosByMetodo(_ context.Context, _ *gorm.DB, turnoID uuid.UUID) (map[string]decimal.Decimal, error) {
	return sumar(r.s.movimientos, func(m model.MovimientoCaja) bool { return m.TurnoID == turnoID }), nil
}

func (r *fakeCajaRepo) SumMovimientosByTipo(_ context.Context, turnoID uuid.UUID) ([]repository.TotalPorTipo, error) {
	idx := map[string]int{}
	var out []repository.TotalPorTipo
	for _, m := range r.s.movimientos {
		if m.TurnoID != turnoID {
			continue
		}
		i, ok := idx[m.Tipo]
		if !ok {
			i = len(out)
			idx[m.Tipo] = i
			out = append(out, repository.TotalPorTipo{Tipo: m.Tipo})
		}
		out[i].Cantidad++
		out[i].Monto = out[i].Monto.Add(m.Monto)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Tipo < out[j].Tipo })
	return out, nil
}

func (r *fakeCajaRepo) SumPorMetodo(_ context.Context, desde, hasta time.Time) (map[string]decimal.Decimal, error) {
	return sumar(r.s.movimientos, func(m model.MovimientoCaja) bool { return enRango(m.CreatedAt, desde, hasta) }), nil
}

func (r *fakeCajaRepo) TotalesDiarios(_ context.Context, desde time.Time, tz string) ([]repository.TotalDiario, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, err
	}
	type key struct{ fecha, metodo string }
	sums := map[key]decimal.Decimal{}
	for _, m := range r.s.movimientos {
		if m.CreatedAt.Before(desde) {
			continue
		}
		k := key{m.CreatedAt.In(loc).Format(model.FormatoFecha), m.MetodoPago}
		sums[k] = sums[k].Add(m.Monto)
	}
	out := make([]repository.TotalDiario, 0, len(sums))
	for k, v := range sums {
		out = append(out, repository.TotalDiario{Fecha: k.fecha, MetodoPago: k.metodo, Monto: v})
	}
	return out, nil
}

// ── Turnos ────────────────────────────────────────────────────────────────────

type fakeTurnoRepo struct{ s *store }

func (r *fakeTurnoRepo) DB() *gorm.DB { return nil }

func (r *fakeTurnoRepo) copia(t *model.Turno) *model.Turno {
	cp := *t
	cp.Trabajador = r.s.trabajador(&t.TrabajadorID)
	return &cp
}

func (r *fakeTurnoRepo) Create(_ context.Context, _ *gorm.DB, t *model.Turno) error {
	for _, o := range r.s.turnos {
		if o.Estado == model.TurnoAbierto {
			return repository.ErrDuplicate
		}
	}
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	cp := *t
	cp.Trabajador = nil
	r.s.turnos[t.ID] = &cp
	return nil
}

func (r *fakeTurnoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Turno, error) {
	t, ok := r.s.turnos[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return r.copia(t), nil
}

func (r *fakeTurnoRepo) FindAbiertoPorTrabajador(_ context.Context, _ *gorm.DB, trabajadorID uuid.UUID) (*model.Turno, error) {
	for _, t := range r.s.turnos {
		if t.TrabajadorID == trabajadorID && t.Estado == model.TurnoAbierto {
			cp := *t
			cp.Trabajador = nil
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeTurnoRepo) FindAbiertoDeOtro(_ context.Context, _ *gorm.DB, trabajadorID uuid.UUID) (*model.Turno, error) {
	for _, t := range r.s.turnos {
		if t.TrabajadorID == trabajadorID || t.Estado != model.TurnoAbierto {
			continue
		}
		if w := r.s.trabajador(&t.TrabajadorID); w != nil && !w.EsAdmin() {
			return r.copia(t), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeTurnoRepo) FindAbierto(_ context.Context) (*model.Turno, error) {
	for _, t := range r.s.turnos {
		if t.Estado == model.TurnoAbierto {
			return r.copia(t), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeTurnoRepo) Cerrar(_ context.Context, _ *gorm.DB, t *model.Turno) error {
	cur, ok := r.s.turnos[t.ID]
	if !ok || cur.Estado != model.TurnoAbierto {
		return repository.ErrNotFound
	}
	cur.Estado = model.TurnoCerrado
	cur.TotalEfectivo, cur.TotalElectronico = t.TotalEfectivo, t.TotalElectronico
	cur.EfectivoDeclarado, cur.ElectronicoDeclarado = t.EfectivoDeclarado, t.ElectronicoDeclarado
	cur.Observaciones, cur.ClosedAt = t.Observaciones, t.ClosedAt
	return nil
}

func (r *fakeTurnoRepo) List(_ context.Context, q repository.TurnoQuery) ([]model.Turno, int64, error) {
	var out []model.Turno
	for _, t := range r.s.turnos {
		if q.TrabajadorID != nil && t.TrabajadorID != *q.TrabajadorID {
			continue
		}
		if !q.Desde.IsZero() && t.OpenedAt.Before(q.Desde) {
			continue
		}
		if !q.Hasta.IsZero() && !t.OpenedAt.Before(q.Hasta) {
			continue
		}
		out = append(out, *r.copia(t))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OpenedAt.After(out[j].OpenedAt) })
	return out, int64(len(out)), nil
}

// ── Configuración ─────────────────────────────────────────────────────────────

type fakeConfigRepo struct{ s *store }

func (r *fakeConfigRepo) DB() *gorm.DB { return nil }

func (r *fakeConfigRepo) Get(_ context.Context, clave string) (*model.Configuracion, error) {
	v, ok := r.s.config[clave]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &model.Configuracion{Clave: clave, Valor: v}, nil
}

func (r *fakeConfigRepo) List(_ context.Context) ([]model.Configuracion, error) {
	out := make([]model.Configuracion, 0, len(r.s.config))
	for k, v := range r.s.config {
		out = append(out, model.Configuracion{Clave: k, Valor: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Clave < out[j].Clave })
	return out, nil
}

func (r *fakeConfigRepo) Set(_ context.Context, _ *gorm.DB, clave, valor string) error {
	if _, ok := r.s.config[clave]; !ok {
		return repository.ErrNotFound
	}
	r.s.config[clave] = valor
	return nil
}

func (r *fakeConfigRepo) Seed(_ context.Context, rows []model.Configuracion) error {
	for _, c := range rows {
		if _, ok := r.s.config[c.Clave]; !ok {
			r.s.config[c.Clave] = c.Valor
		}
	}
	return nil
}

var (
	_ repository.TrabajadorRepository    = (*fakeTrabajadorRepo)(nil)
	_ repository.ClienteRepository       = (*fakeClienteRepo)(nil)
	_ repository.EntradaRepository       = (*fakeEntradaRepo)(nil)
	_ repository.CajaRepository          = (*fakeCajaRepo)(nil)
	_ repository.TurnoRepository         = (*fakeTurnoRepo)(nil)
	_ repository.ConfiguracionRepository = (*fakeConfigRepo)(nil)
)

// ── Fixture ───────────────────────────────────────────────────────────────────

var lima = mustLoc("America/Lima")

func mustLoc(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

// reloj is a settable clock.
type reloj struct{ t time.Time }

func (r *reloj) now() time.Time { return r.t }

func (r *reloj) avanzar(d time.Duration) { r.t = r.t.Add(d) }

// fixture wires every service over one store, with one worker holding an
// open shift.
type fixture struct {
	s      *store
	reloj  *reloj
	actor  service.Actor
	turno  *model.Turno
	config service.ConfiguracionService

	entradas  service.EntradaService
	turnos    service.TurnoService
	clientes  service.ClienteService
	alertas   service.AlertaService
	panel     service.DashboardService
	encolados []uuid.UUID
}

func (f *fixture) EncolarReporteTurno(_ context.Context, id uuid.UUID) error {
	f.encolados = append(f.encolados, id)
	return nil
}

func newFixture(ahora time.Time) *fixture {
	s := newStore()
	f := &fixture{s: s, reloj: &reloj{t: ahora}}
	clock := service.Clock(f.reloj.now)

	w := &model.Trabajador{ID: uuid.New(), Nombre: "Ana", Usuario: "ana", Rol: model.RolTrabajador, Activo: true}
	s.trabajadores[w.ID] = w
	f.turno = &model.Turno{ID: uuid.New(), TrabajadorID: w.ID, TipoTurno: "mañana", Estado: model.TurnoAbierto, OpenedAt: ahora.Add(-time.Hour)}
	s.turnos[f.turno.ID] = f.turno
	turnoID := f.turno.ID
	f.actor = service.Actor{TrabajadorID: w.ID, Nombre: w.Nombre, Rol: w.Rol, TurnoID: &turnoID}

	clientes := &fakeClienteRepo{s}
	entradas := &fakeEntradaRepo{s}
	caja := &fakeCajaRepo{s}
	turnos := &fakeTurnoRepo{s}

	f.config = service.NewConfiguracionService(&fakeConfigRepo{s})
	f.entradas = service.NewEntradaService(clientes, entradas, caja, turnos, f.config, clock)
	f.turnos = service.NewTurnoService(turnos, caja, entradas, f, clock)
	f.clientes = service.NewClienteService(clientes, entradas, f.config)
	f.alertas = service.NewAlertaService(entradas, f.config, clock)
	f.panel = service.NewDashboardService(caja, entradas, clientes, &fakeTrabajadorRepo{s}, clock)
	return f
}

func ptr[T any](v T) *T { return &v }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }
