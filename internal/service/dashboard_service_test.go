package service_test

import (
	"context"
	"testing"
	"time"

	"cochera/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboardResumen(t *testing.T) {
	f := newFixture(time.Date(2024, 1, 10, 10, 0, 0, 0, lima))
	req := entradaReq("DB-1", "Juan", "10", 2)
	req.FechaEntrada = nil
	req.Adelanto = dec("20")
	registrar(t, f, req)

	f.s.movimientos = append(f.s.movimientos,
		model.MovimientoCaja{
			ID:         uuid.New(),
			TurnoID:    f.turno.ID,
			Tipo:       model.MovCobroSalida,
			Monto:      dec("7"),
			MetodoPago: model.MetodoElectronico,
			CreatedAt:  time.Date(2024, 1, 8, 18, 0, 0, 0, lima),
		},
		model.MovimientoCaja{
			ID:         uuid.New(),
			TurnoID:    f.turno.ID,
			Tipo:       model.MovPagoCompleto,
			Monto:      dec("100"),
			MetodoPago: model.MetodoElectronico,
			CreatedAt:  time.Date(2023, 12, 20, 12, 0, 0, 0, lima),
		},
	)

	resp, err := f.panel.Resumen(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "20", resp.Hoy.Total.String())
	assert.Equal(t, "20", resp.Mes.Efectivo.String())
	assert.Equal(t, "7", resp.Mes.Electronico.String())
	assert.Equal(t, "127", resp.Historico.Total.String())
	assert.Equal(t, int64(1), resp.AutosEnCochera)
	assert.Equal(t, int64(1), resp.TotalClientes)
	assert.Equal(t, int64(1), resp.TrabajadoresActivos)

	require.Len(t, resp.UltimosDias, 7)
	assert.Equal(t, "2024-01-04", resp.UltimosDias[0].Fecha)
	assert.Equal(t, "2024-01-10", resp.UltimosDias[6].Fecha)
	assert.Equal(t, "20", resp.UltimosDias[6].Total.String())
	assert.Equal(t, "7", resp.UltimosDias[4].Electronico.String())
	assert.True(t, resp.UltimosDias[1].Total.IsZero())
}
