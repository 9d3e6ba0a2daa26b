package service

import (
	"time"

	"cochera/internal/dto"
	"cochera/internal/model"

	"github.com/shopspring/decimal"
)

func formatTime(t time.Time) string { return t.Format(time.RFC3339) }

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}

func nombreTrabajador(t *model.Trabajador) string {
	if t == nil {
		return ""
	}
	return t.Nombre
}

func toUsuarioResponse(t *model.Trabajador) dto.UsuarioResponse {
	return dto.UsuarioResponse{
		ID:      t.ID.String(),
		Usuario: t.Usuario,
		Nombre:  t.Nombre,
		Rol:     t.Rol,
		Activo:  t.Activo,
	}
}

func toClienteResponse(c *model.Cliente) dto.ClienteResponse {
	return dto.ClienteResponse{
		ID:        c.ID.String(),
		Placa:     c.Placa,
		Nombre:    c.Nombre,
		Celular:   c.Celular,
		PrecioDia: c.PrecioDia,
		UpdatedAt: formatTime(c.UpdatedAt),
	}
}

func toEntradaResponse(e *model.Entrada) dto.EntradaResponse {
	r := dto.EntradaResponse{
		ID:                     e.ID.String(),
		ClienteID:              e.ClienteID.String(),
		FechaEntrada:           e.FechaEntrada,
		HoraEntrada:            e.HoraEntrada,
		FechaHasta:             e.FechaHasta,
		HoraSalidaEsperada:     e.HoraSalidaEsperada,
		FechaSalida:            e.FechaSalida,
		HoraSalida:             e.HoraSalida,
		Dias:                   e.Dias,
		PrecioDia:              e.PrecioDia,
		Monto:                  e.Monto,
		Adelanto:               e.Adelanto,
		Penalidad:              e.Penalidad,
		Descuento:              e.Descuento,
		MetodoPago:             e.MetodoPago,
		DejoLlave:              e.DejoLlave,
		Pagado:                 e.Pagado,
		PagoCompletoAdelantado: e.PagoCompletoAdelantado,
		Salio:                  e.Salio,
		Observaciones:          e.Observaciones,
		TrabajadorEntrada:      nombreTrabajador(e.Trabajador),
		TrabajadorSalida:       nombreTrabajador(e.TrabajadorSalida),
		CreatedAt:              formatTime(e.CreatedAt),
		SalidaAt:               formatTimePtr(e.SalidaAt),
	}
	if e.Cliente != nil {
		r.Placa = e.Cliente.Placa
		r.Cliente = e.Cliente.Nombre
		r.Celular = e.Cliente.Celular
	}
	return r
}

func toTurnoResponse(t *model.Turno) dto.TurnoResponse {
	return dto.TurnoResponse{
		ID:                   t.ID.String(),
		TrabajadorID:         t.TrabajadorID.String(),
		Trabajador:           nombreTrabajador(t.Trabajador),
		TipoTurno:            t.TipoTurno,
		Estado:               t.Estado,
		TotalEfectivo:        t.TotalEfectivo,
		TotalElectronico:     t.TotalElectronico,
		EfectivoDeclarado:    t.EfectivoDeclarado,
		ElectronicoDeclarado: t.ElectronicoDeclarado,
		Observaciones:        t.Observaciones,
		OpenedAt:             formatTime(t.OpenedAt),
		ClosedAt:             formatTimePtr(t.ClosedAt),
	}
}

func toMovimientoResponse(m *model.MovimientoCaja) dto.MovimientoResponse {
	r := dto.MovimientoResponse{
		ID:          m.ID.String(),
		TurnoID:     m.TurnoID.String(),
		Tipo:        m.Tipo,
		Monto:       m.Monto,
		MetodoPago:  m.MetodoPago,
		Descripcion: m.Descripcion,
		CreatedAt:   formatTime(m.CreatedAt),
	}
	if m.EntradaID != nil {
		id := m.EntradaID.String()
		r.EntradaID = &id
	}
	if m.Entrada != nil && m.Entrada.Cliente != nil {
		r.Placa = m.Entrada.Cliente.Placa
		r.Cliente = m.Entrada.Cliente.Nombre
	}
	return r
}

func toMontos(sums map[string]decimal.Decimal) dto.MontosPorMetodo {
	ef := sums[model.MetodoEfectivo]
	el := sums[model.MetodoElectronico]
	return dto.MontosPorMetodo{Efectivo: ef, Electronico: el, Total: ef.Add(el)}
}

// paginate normalizes page/limit the way every list endpoint does.
func paginate(page, limit int) (int, int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit, (page - 1) * limit
}
