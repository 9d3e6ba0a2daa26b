package service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"cochera/internal/dto"
	"cochera/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// estacionar parks n vehicles checked in today for one day.
func estacionar(f *fixture, n int) {
	hoy := f.reloj.now().Format(model.FormatoFecha)
	for i := 0; i < n; i++ {
		c := &model.Cliente{ID: uuid.New(), Placa: fmt.Sprintf("CAP-%03d", i), Nombre: "Cliente"}
		f.s.clientes[c.ID] = c
		e := &model.Entrada{
			ID:           uuid.New(),
			ClienteID:    c.ID,
			FechaEntrada: hoy,
			HoraEntrada:  "08:00",
			Dias:         1,
			PrecioDia:    dec("10"),
			Monto:        dec("10"),
			TrabajadorID: f.actor.TrabajadorID,
			CreatedAt:    f.reloj.now(),
		}
		f.s.entradas[e.ID] = e
	}
}

func TestCapacidadNiveles(t *testing.T) {
	cases := []struct {
		ocupados int
		nivel    string
		lleno    bool
	}{
		{10, "normal", false},
		{38, "advertencia", false},
		{46, "critico", false},
		{50, "critico", true},
	}
	for _, tc := range cases {
		t.Run(fmt.Sprint(tc.ocupados), func(t *testing.T) {
			f := newFixture(time.Date(2024, 1, 1, 10, 0, 0, 0, lima))
			estacionar(f, tc.ocupados)

			resp, err := f.alertas.Capacidad(context.Background())

			require.NoError(t, err)
			assert.Equal(t, 50, resp.Capacidad)
			assert.Equal(t, tc.nivel, resp.Nivel)
			assert.Equal(t, tc.lleno, resp.Lleno)
			assert.Equal(t, 50-tc.ocupados, resp.Disponibles)
		})
	}
}

func TestCapacidadConfigurada(t *testing.T) {
	f := newFixture(time.Date(2024, 1, 1, 10, 0, 0, 0, lima))
	require.NoError(t, f.config.Guardar(context.Background(), dto.GuardarConfiguracionRequest{
		Valores: map[string]string{model.ConfCapacidadMaxima: "4"},
	}))
	estacionar(f, 3)

	resp, err := f.alertas.Capacidad(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "75", resp.Porcentaje.String())
	assert.Equal(t, "advertencia", resp.Nivel)
}

func TestAlertasExcesoPrimeroLuegoCapacidad(t *testing.T) {
	f := newFixture(time.Date(2024, 1, 1, 10, 0, 0, 0, lima))
	registrar(t, f, entradaReq("EX-1", "Juan", "10", 1))
	f.reloj.t = time.Date(2024, 1, 3, 9, 0, 0, 0, lima)
	estacionar(f, 45)

	resp, err := f.alertas.Alertas(context.Background())

	require.NoError(t, err)
	require.Equal(t, 2, resp.Total)
	assert.Equal(t, dto.AlertaExcesoTiempo, resp.Alertas[0].Tipo)
	assert.Equal(t, "advertencia", resp.Alertas[0].Nivel)
	assert.Equal(t, "Juan - Exceso: 2 día(s)", resp.Alertas[0].Mensaje)
	assert.Equal(t, "EX-1", resp.Alertas[0].Placa)
	assert.Equal(t, 2, resp.Alertas[0].DiasExceso)

	assert.Equal(t, dto.AlertaCapacidad, resp.Alertas[1].Tipo)
	assert.Equal(t, "critico", resp.Alertas[1].Nivel)
	assert.Equal(t, "Ocupación: 92% (46/50)", resp.Alertas[1].Mensaje)
}

func TestAlertasVacias(t *testing.T) {
	f := newFixture(time.Date(2024, 1, 1, 10, 0, 0, 0, lima))
	registrar(t, f, entradaReq("OK-1", "Juan", "10", 3))

	resp, err := f.alertas.Alertas(context.Background())

	require.NoError(t, err)
	assert.Empty(t, resp.Alertas)
	assert.NotNil(t, resp.Alertas)
}
