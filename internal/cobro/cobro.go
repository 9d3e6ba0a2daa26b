// Package cobro holds the parking billing rules: elapsed days, late-exit
// penalties, checkout charges, prepayment at check-in, shift reconciliation and
// occupancy levels. Every function is pure; the current time is always passed in.
package cobro

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	layoutFecha       = "2006-01-02"
	layoutHora        = "15:04"
	layoutHoraSegundo = "15:04:05"
)

var (
	dia       = 24 * time.Hour
	msPorDia  = decimal.NewFromInt(int64(dia / time.Millisecond))
	cien      = decimal.NewFromInt(100)
	umbralCri = decimal.NewFromInt(90)
	umbralAdv = decimal.NewFromInt(75)
)

// ── Días ──────────────────────────────────────────────────────────────────────

// DiasReales counts the calendar days a vehicle has been parked, including the
// day of entry: floor((ahora - medianoche(fechaEntrada)) / 24h) + 1, never below 1.
// An unparseable date counts as a single day.
func DiasReales(fechaEntrada string, ahora time.Time) int {
	inicio, err := time.ParseInLocation(layoutFecha, strings.TrimSpace(fechaEntrada), ahora.Location())
	if err != nil {
		return 1
	}
	transcurrido := ahora.Sub(inicio)
	if transcurrido < 0 {
		return 1
	}
	return int(transcurrido/dia) + 1
}

// ExcedeTiempo reports whether a stay is past the number of days agreed at check-in.
func ExcedeTiempo(diasReales, diasPactados int) bool {
	return diasReales > diasPactados
}

// ── Penalidad ─────────────────────────────────────────────────────────────────

// ParametrosPenalidad is the input of Penalidad. The planned exit is optional;
// stays without one are never penalized.
type ParametrosPenalidad struct {
	FechaHasta         *string
	HoraSalidaEsperada *string
	PrecioDia          decimal.Decimal
	ToleranciaMinutos  int
}

// ResultadoPenalidad carries the penalty amount. When the calculation fails
// Monto is zero and Err holds the cause so the caller can log it.
type ResultadoPenalidad struct {
	Monto decimal.Decimal
	Err   error
}

// Penalidad charges the daily price pro rata for every second past the planned
// exit plus the tolerance window, rounded to cents.
func Penalidad(p ParametrosPenalidad, ahora time.Time) ResultadoPenalidad {
	if vacio(p.FechaHasta) || vacio(p.HoraSalidaEsperada) {
		return ResultadoPenalidad{Monto: decimal.Zero}
	}
	salida, err := ParseInstante(*p.FechaHasta, *p.HoraSalidaEsperada, ahora.Location())
	if err != nil {
		return ResultadoPenalidad{Monto: decimal.Zero, Err: fmt.Errorf("salida esperada: %w", err)}
	}
	if p.PrecioDia.IsNegative() {
		return ResultadoPenalidad{Monto: decimal.Zero, Err: errors.New("precio por día negativo")}
	}

	limite := salida.Add(time.Duration(p.ToleranciaMinutos) * time.Minute)
	if !ahora.After(limite) {
		return ResultadoPenalidad{Monto: decimal.Zero}
	}

	exceso := decimal.NewFromInt(ahora.Sub(limite).Milliseconds())
	return ResultadoPenalidad{Monto: p.PrecioDia.Mul(exceso).Div(msPorDia).Round(2)}
}

// ParseInstante combines a YYYY-MM-DD date and an HH:MM[:SS] time in loc.
func ParseInstante(fecha, hora string, loc *time.Location) (time.Time, error) {
	fecha, hora = strings.TrimSpace(fecha), strings.TrimSpace(hora)
	layout := layoutFecha + " " + layoutHora
	if strings.Count(hora, ":") == 2 {
		layout = layoutFecha + " " + layoutHoraSegundo
	}
	return time.ParseInLocation(layout, fecha+" "+hora, loc)
}

func vacio(s *string) bool { return s == nil || strings.TrimSpace(*s) == "" }

// ── Liquidación de una estancia abierta ───────────────────────────────────────

// Estancia is the subset of an open stay the engine needs.
type Estancia struct {
	FechaEntrada           string
	FechaHasta             *string
	HoraSalidaEsperada     *string
	Dias                   int
	PrecioDia              decimal.Decimal
	Adelanto               decimal.Decimal
	PagoCompletoAdelantado bool
}

// Liquidacion is what an open stay owes at a given instant.
type Liquidacion struct {
	DiasReales   int
	MontoDias    decimal.Decimal
	Penalidad    decimal.Decimal
	MontoTotal   decimal.Decimal
	Adelanto     decimal.Decimal
	ACobrar      decimal.Decimal
	ExcedeTiempo bool
	// PenalidadErr is set when the penalty fell back to zero.
	PenalidadErr error
}

// Liquidar computes the amount owed by an open stay. A fully prepaid stay only
// owes its penalty; the daily base was settled at check-in.
func Liquidar(e Estancia, ahora time.Time, toleranciaMinutos int) Liquidacion {
	dias := DiasReales(e.FechaEntrada, ahora)
	pen := Penalidad(ParametrosPenalidad{
		FechaHasta:         e.FechaHasta,
		HoraSalidaEsperada: e.HoraSalidaEsperada,
		PrecioDia:          e.PrecioDia,
		ToleranciaMinutos:  toleranciaMinutos,
	}, ahora)

	base := e.PrecioDia.Mul(decimal.NewFromInt(int64(dias)))
	total := base.Add(pen.Monto)

	var aCobrar decimal.Decimal
	if e.PagoCompletoAdelantado {
		aCobrar = noNegativo(pen.Monto)
	} else {
		aCobrar = noNegativo(total.Sub(e.Adelanto))
	}

	return Liquidacion{
		DiasReales:   dias,
		MontoDias:    base,
		Penalidad:    pen.Monto,
		MontoTotal:   total,
		Adelanto:     e.Adelanto,
		ACobrar:      aCobrar,
		ExcedeTiempo: ExcedeTiempo(dias, e.Dias),
		PenalidadErr: pen.Err,
	}
}

// ── Salida ────────────────────────────────────────────────────────────────────

// Cargo is the input of a charged checkout.
type Cargo struct {
	Dias                   int
	PrecioDia              decimal.Decimal
	Penalidad              decimal.Decimal
	Descuento              decimal.Decimal
	Adelanto               decimal.Decimal
	PagoCompletoAdelantado bool
}

// ResultadoSalida holds the final figures written to the stay on checkout.
type ResultadoSalida struct {
	MontoDias  decimal.Decimal
	MontoTotal decimal.Decimal
	ACobrar    decimal.Decimal
}

// Salida computes total = dias*precio + penalidad - descuento and what is
// still to be collected after the advance. Fully prepaid stays owe only
// max(0, penalidad - descuento).
func Salida(c Cargo) ResultadoSalida {
	base := c.PrecioDia.Mul(decimal.NewFromInt(int64(c.Dias)))
	total := base.Add(c.Penalidad).Sub(c.Descuento)

	aCobrar := noNegativo(total.Sub(c.Adelanto))
	if c.PagoCompletoAdelantado {
		aCobrar = ExtraAutorizacion(c.Penalidad, c.Descuento)
	}
	return ResultadoSalida{MontoDias: base, MontoTotal: total, ACobrar: aCobrar}
}

// ExtraAutorizacion is the only amount a fully prepaid stay can owe when its
// exit is authorized without a charge.
func ExtraAutorizacion(penalidad, descuento decimal.Decimal) decimal.Decimal {
	return noNegativo(penalidad.Sub(descuento))
}

// ── Prepago ───────────────────────────────────────────────────────────────────

// ResultadoPrepago is the derived payment state of a new stay.
type ResultadoPrepago struct {
	Monto    decimal.Decimal
	Adelanto decimal.Decimal
	Completo bool
}

// Prepago derives the planned amount and the prepayment state at check-in.
// A paid stay with no advance means the client paid the whole amount.
func Prepago(precioDia decimal.Decimal, dias int, adelanto decimal.Decimal, pagado bool) ResultadoPrepago {
	monto := precioDia.Mul(decimal.NewFromInt(int64(dias)))
	if pagado && adelanto.IsZero() {
		return ResultadoPrepago{Monto: monto, Adelanto: monto, Completo: true}
	}
	return ResultadoPrepago{
		Monto:    monto,
		Adelanto: adelanto,
		Completo: pagado && adelanto.GreaterThanOrEqual(monto),
	}
}

// ── Arqueo ────────────────────────────────────────────────────────────────────

// Montos splits an amount by payment method.
type Montos struct {
	Efectivo    decimal.Decimal
	Electronico decimal.Decimal
}

func (m Montos) Total() decimal.Decimal { return m.Efectivo.Add(m.Electronico) }

// Conciliacion compares declared against computed amounts. Differences are
// signed: declared minus computed.
type Conciliacion struct {
	Computado      Montos
	Declarado      Montos
	DifEfectivo    decimal.Decimal
	DifElectronico decimal.Decimal
	Diferencia     decimal.Decimal
}

func Arqueo(computado, declarado Montos) Conciliacion {
	difEf := declarado.Efectivo.Sub(computado.Efectivo)
	difEl := declarado.Electronico.Sub(computado.Electronico)
	return Conciliacion{
		Computado:      computado,
		Declarado:      declarado,
		DifEfectivo:    difEf,
		DifElectronico: difEl,
		Diferencia:     difEf.Add(difEl),
	}
}

// ── Capacidad ─────────────────────────────────────────────────────────────────

const (
	NivelCritico     = "critico"
	NivelAdvertencia = "advertencia"
	NivelNormal      = "normal"
)

// Ocupacion describes how full the lot is.
type Ocupacion struct {
	Ocupados    int
	Capacidad   int
	Disponibles int
	Porcentaje  decimal.Decimal
	Nivel       string
}

// NivelCapacidad computes the occupancy percentage and its level: critico at
// 90% or more, advertencia at 75% or more, normal otherwise. Levels use the
// exact ratio; only the reported percentage is rounded to one decimal.
func NivelCapacidad(ocupados, capacidad int) Ocupacion {
	o := Ocupacion{Ocupados: ocupados, Capacidad: capacidad, Nivel: NivelNormal}
	var exacto decimal.Decimal
	if capacidad > 0 {
		exacto = decimal.NewFromInt(int64(ocupados)).Mul(cien).
			Div(decimal.NewFromInt(int64(capacidad)))
	} else if ocupados > 0 {
		exacto = cien
	}
	o.Porcentaje = exacto.Round(1)
	if d := capacidad - ocupados; d > 0 {
		o.Disponibles = d
	}

	switch {
	case exacto.GreaterThanOrEqual(umbralCri):
		o.Nivel = NivelCritico
	case exacto.GreaterThanOrEqual(umbralAdv):
		o.Nivel = NivelAdvertencia
	}
	return o
}

func noNegativo(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
