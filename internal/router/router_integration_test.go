//go:build integration

package router_test

// End-to-end tests against real Postgres + Redis via testcontainers.
// Run with: go test -tags integration ./internal/router/... -v

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cochera/internal/config"
	"cochera/internal/dto"
	"cochera/internal/infra"
	"cochera/internal/model"
	"cochera/internal/repository"
	"cochera/internal/router"
	"cochera/internal/service"
	"cochera/internal/worker"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// ── Helpers ──────────────────────────────────────────────────────────────────

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func do(t *testing.T, srv *httptest.Server, method, path string, body any, token string) *http.Response {
	t.Helper()
	var rd *bytes.Buffer
	if body != nil {
		rd = jsonBody(t, body)
	} else {
		rd = &bytes.Buffer{}
	}
	req, err := http.NewRequest(method, srv.URL+path, rd)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

func expectStatus(t *testing.T, resp *http.Response, status int) {
	t.Helper()
	defer resp.Body.Close()
	require.Equal(t, status, resp.StatusCode)
}

// ── Test Suite Setup ─────────────────────────────────────────────────────────

type testEnv struct {
	server *httptest.Server
	db     *gorm.DB
	rdb    *redis.Client
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	pgC, err := tcPostgres.Run(ctx, "postgres:16-alpine",
		tcPostgres.WithDatabase("cochera_test"),
		tcPostgres.WithUsername("cochera"),
		tcPostgres.WithPassword("cochera"),
		tcPostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(pgC) })

	pgURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	rdC, err := tcRedis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(rdC) })

	rdURL, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)

	cfg := &config.Config{
		Port:               8000,
		Env:                "test",
		JWTSecret:          "test-secret-key",
		JWTExpirationHours: 8,
		JWTRefreshHours:    24,
		DatabaseURL:        pgURL,
		RedisURL:           rdURL,
		WorkerPoolSize:     1,
		PDFStoragePath:     t.TempDir(),
		Timezone:           "America/Lima",
	}
	loc, err := cfg.Location()
	require.NoError(t, err)

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	require.NoError(t, err)
	// Idempotent: a second run over the migrated schema must be a no-op.
	require.NoError(t, infra.RunMigrations(db))

	rdb, err := infra.NewRedis(cfg.RedisURL)
	require.NoError(t, err)

	hash, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, db.Create(&model.Trabajador{
		Nombre:       "Admin",
		Usuario:      "admin",
		PasswordHash: string(hash),
		Rol:          model.RolAdmin,
		Activo:       true,
	}).Error)

	pdf := infra.NewPDFRenderer(cfg.PDFStoragePath)
	deps := router.Deps{
		Config:     cfg,
		DB:         db,
		Redis:      rdb,
		Mailer:     infra.NewMailer(cfg),
		PDF:        pdf,
		Tokens:     infra.NewTokenStore(rdb),
		Dispatcher: worker.NewDispatcher(rdb),
		Clock:      service.SystemClock(loc),
	}
	srv := httptest.NewServer(router.New(deps, router.NewServices(deps)))
	t.Cleanup(srv.Close)

	return &testEnv{server: srv, db: db, rdb: rdb}
}

func mustDecimal(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func redisLen(env *testEnv, queue string) (int64, error) {
	return env.rdb.LLen(context.Background(), queue).Result()
}

func login(t *testing.T, env *testEnv, usuario, password, tipoTurno string) (*http.Response, dto.LoginResponse) {
	t.Helper()
	resp := do(t, env.server, http.MethodPost, "/v1/auth/login", dto.LoginRequest{
		Usuario: usuario, Password: password, TipoTurno: tipoTurno,
	}, "")
	var out dto.LoginResponse
	if resp.StatusCode == http.StatusOK {
		decodeJSON(t, resp, &out)
	}
	return resp, out
}

// ── Tests ────────────────────────────────────────────────────────────────────

func TestShiftLifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("integration")
	}
	env := setupTestEnv(t)
	srv := env.server

	_, admin := login(t, env, "admin", "admin123", "")
	require.NotEmpty(t, admin.AccessToken)
	assert.Nil(t, admin.Turno)

	for _, u := range []string{"ana", "beto"} {
		resp := do(t, srv, http.MethodPost, "/v1/admin/usuarios", dto.CrearUsuarioRequest{
			Usuario: u, Nombre: u, Password: "clave123", Rol: model.RolTrabajador,
		}, admin.AccessToken)
		expectStatus(t, resp, http.StatusCreated)
	}

	// Admins own no shift, so they cannot check vehicles in.
	entrada := dto.RegistrarEntradaRequest{
		Placa: " abc-123 ", Cliente: "Juan", PrecioDia: mustDecimal("10"), Dias: 3,
		Adelanto: mustDecimal("20"), MetodoPago: model.MetodoEfectivo,
	}
	expectStatus(t, do(t, srv, http.MethodPost, "/v1/entradas", entrada, admin.AccessToken), http.StatusForbidden)

	// ana opens the only shift; beto is rejected while it is open.
	resp, ana := login(t, env, "ana", "clave123", "mañana")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotNil(t, ana.Turno)
	resp, _ = login(t, env, "beto", "clave123", "tarde")
	expectStatus(t, resp, http.StatusConflict)

	// Check-in, then a duplicate for the same normalized plate.
	var creada dto.EntradaCreadaResponse
	resp = do(t, srv, http.MethodPost, "/v1/entradas", entrada, ana.AccessToken)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	decodeJSON(t, resp, &creada)
	assert.Equal(t, "ABC-123", creada.Entrada.Placa)
	require.NotNil(t, creada.Movimiento)
	assert.Equal(t, model.MovAdelanto, creada.Movimiento.Tipo)

	entrada.Placa = "abc-123"
	expectStatus(t, do(t, srv, http.MethodPost, "/v1/entradas", entrada, ana.AccessToken), http.StatusConflict)

	var capacidad dto.CapacidadResponse
	resp = do(t, srv, http.MethodGet, "/v1/capacidad", nil, ana.AccessToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeJSON(t, resp, &capacidad)
	assert.Equal(t, 1, capacidad.Ocupados)
	assert.Equal(t, 50, capacidad.Capacidad)

	// Checkout on the same day: the advance already covers the charge.
	var salida dto.SalidaResponse
	resp = do(t, srv, http.MethodPost, "/v1/entradas/salida", dto.RegistrarSalidaRequest{
		EntradaID: creada.Entrada.ID, MetodoPago: model.MetodoElectronico,
	}, ana.AccessToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeJSON(t, resp, &salida)
	assert.False(t, salida.ACobrar.IsNegative())

	// A second close of the same stay finds nothing open.
	resp = do(t, srv, http.MethodPost, "/v1/entradas/salida", dto.RegistrarSalidaRequest{
		EntradaID: creada.Entrada.ID, MetodoPago: model.MetodoEfectivo,
	}, ana.AccessToken)
	assert.Contains(t, []int{http.StatusNotFound, http.StatusUnprocessableEntity}, resp.StatusCode)
	resp.Body.Close()

	// Dry run leaves the shift open.
	var cierre dto.CierreTurnoResponse
	resp = do(t, srv, http.MethodPost, "/v1/turnos/cerrar", map[string]any{
		"efectivo_declarado": "20", "electronico_declarado": "0", "solo_calcular": true,
	}, ana.AccessToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeJSON(t, resp, &cierre)
	assert.False(t, cierre.Cerrado)
	assert.True(t, cierre.Computado.Efectivo.Equal(mustDecimal("20")))
	assert.Equal(t, int64(1), cierre.AutosIngresados)
	assert.Equal(t, int64(1), cierre.AutosSalieron)

	resp = do(t, srv, http.MethodPost, "/v1/turnos/cerrar", map[string]any{
		"efectivo_declarado": "20", "electronico_declarado": cierre.Computado.Electronico.String(),
	}, ana.AccessToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeJSON(t, resp, &cierre)
	assert.True(t, cierre.Cerrado)
	assert.True(t, cierre.Diferencia.IsZero())

	// The closed shift logs ana out and frees the lot for beto.
	expectStatus(t, do(t, srv, http.MethodGet, "/v1/turnos/actual", nil, ana.AccessToken), http.StatusUnauthorized)
	resp, beto := login(t, env, "beto", "clave123", "tarde")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotNil(t, beto.Turno)

	// The report job was queued for the worker pool.
	var pendientes int64
	require.Eventually(t, func() bool {
		var err error
		pendientes, err = redisLen(env, worker.QueueReporteTurno)
		return err == nil && pendientes == 1
	}, 5*time.Second, 100*time.Millisecond)

	var historial dto.HistorialResponse
	resp = do(t, srv, http.MethodGet, "/v1/historial?placa=ABC&estado=salio", nil, admin.AccessToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeJSON(t, resp, &historial)
	assert.Equal(t, int64(1), historial.Total)
}

// A checkout still running on another device holds the shift row; the close
// waits for it and counts its movement.
func TestShiftCloseWaitsForInFlightCheckout(t *testing.T) {
	if testing.Short() {
		t.Skip("integration")
	}
	env := setupTestEnv(t)
	srv := env.server
	ctx := context.Background()

	_, admin := login(t, env, "admin", "admin123", "")
	expectStatus(t, do(t, srv, http.MethodPost, "/v1/admin/usuarios", dto.CrearUsuarioRequest{
		Usuario: "ana", Nombre: "Ana", Password: "clave123", Rol: model.RolTrabajador,
	}, admin.AccessToken), http.StatusCreated)
	_, ana := login(t, env, "ana", "clave123", "noche")
	require.NotNil(t, ana.Turno)

	expectStatus(t, do(t, srv, http.MethodPost, "/v1/entradas", dto.RegistrarEntradaRequest{
		Placa: "LCK-001", Cliente: "Rosa", PrecioDia: mustDecimal("10"), Dias: 2,
		Adelanto: mustDecimal("20"), MetodoPago: model.MetodoEfectivo,
	}, ana.AccessToken), http.StatusCreated)

	anaID := uuid.MustParse(ana.User.ID)
	turnoID := uuid.MustParse(ana.Turno.ID)
	turnos := repository.NewTurnoRepository(env.db)

	tx := env.db.Begin()
	require.NoError(t, tx.Error)
	locked, err := turnos.FindAbiertoPorTrabajador(ctx, tx, anaID)
	require.NoError(t, err)
	require.Equal(t, turnoID, locked.ID)
	require.NoError(t, tx.Create(&model.MovimientoCaja{
		TurnoID:      turnoID,
		TrabajadorID: anaID,
		Tipo:         model.MovCobroSalida,
		Monto:        mustDecimal("15"),
		MetodoPago:   model.MetodoEfectivo,
		Descripcion:  "COBRO_SALIDA - LCK-001",
	}).Error)

	type resultado struct {
		status int
		cierre dto.CierreTurnoResponse
		err    error
	}
	out := make(chan resultado, 1)
	go func() {
		var r resultado
		body, _ := json.Marshal(map[string]any{"efectivo_declarado": "35", "electronico_declarado": "0"})
		req, _ := http.NewRequest(http.MethodPost, srv.URL+"/v1/turnos/cerrar", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+ana.AccessToken)
		resp, err := srv.Client().Do(req)
		if err != nil {
			r.err = err
			out <- r
			return
		}
		defer resp.Body.Close()
		r.status = resp.StatusCode
		r.err = json.NewDecoder(resp.Body).Decode(&r.cierre)
		out <- r
	}()

	select {
	case r := <-out:
		t.Fatalf("close finished while the checkout held the shift: status %d", r.status)
	case <-time.After(500 * time.Millisecond):
	}

	require.NoError(t, tx.Commit().Error)

	var r resultado
	select {
	case r = <-out:
	case <-time.After(10 * time.Second):
		t.Fatal("close never finished")
	}
	require.NoError(t, r.err)
	require.Equal(t, http.StatusOK, r.status)
	assert.True(t, r.cierre.Cerrado)
	assert.True(t, r.cierre.Computado.Efectivo.Equal(mustDecimal("35")))
	assert.True(t, r.cierre.Diferencia.IsZero())

	var stored model.Turno
	require.NoError(t, env.db.First(&stored, "id = ?", turnoID).Error)
	var ledger decimal.Decimal
	require.NoError(t, env.db.Model(&model.MovimientoCaja{}).
		Select("COALESCE(SUM(monto), 0)").Where("turno_id = ?", turnoID).Scan(&ledger).Error)
	assert.True(t, stored.TotalEfectivo.Add(stored.TotalElectronico).Equal(ledger))

	// A movement that starts after the close no longer finds an open shift.
	tx = env.db.Begin()
	defer tx.Rollback()
	_, err = turnos.FindAbiertoPorTrabajador(ctx, tx, anaID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestLogoutRevokesToken(t *testing.T) {
	if testing.Short() {
		t.Skip("integration")
	}
	env := setupTestEnv(t)

	_, admin := login(t, env, "admin", "admin123", "")
	expectStatus(t, do(t, env.server, http.MethodGet, "/v1/admin/dashboard", nil, admin.AccessToken), http.StatusOK)
	expectStatus(t, do(t, env.server, http.MethodPost, "/v1/auth/logout", nil, admin.AccessToken), http.StatusNoContent)
	expectStatus(t, do(t, env.server, http.MethodGet, "/v1/admin/dashboard", nil, admin.AccessToken), http.StatusUnauthorized)
}

func TestHealthReportsBacklog(t *testing.T) {
	if testing.Short() {
		t.Skip("integration")
	}
	env := setupTestEnv(t)
	ctx := context.Background()

	dlqKey := worker.DLQPrefix + worker.QueueEmail
	require.NoError(t, env.rdb.LPush(ctx, dlqKey, `{"job_type":"email"}`).Err())

	resp := do(t, env.server, http.MethodGet, "/health", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		OK     bool             `json:"ok"`
		DB     string           `json:"db"`
		Redis  string           `json:"redis"`
		Mailer string           `json:"mailer"`
		DLQ    map[string]int64 `json:"dlq"`
	}
	decodeJSON(t, resp, &body)
	assert.True(t, body.OK)
	assert.Equal(t, "connected", body.DB)
	assert.Equal(t, "connected", body.Redis)
	assert.Equal(t, "closed", body.Mailer)
	assert.Equal(t, int64(1), body.DLQ[dlqKey])
	assert.Equal(t, int64(0), body.DLQ[worker.DLQPrefix+worker.QueueReporteTurno])
}

func TestSchemaAllowsOneOpenShift(t *testing.T) {
	if testing.Short() {
		t.Skip("integration")
	}
	env := setupTestEnv(t)

	var adminID uuid.UUID
	require.NoError(t, env.db.Model(&model.Trabajador{}).Select("id").Where("usuario = ?", "admin").Scan(&adminID).Error)

	abrir := func() error {
		return env.db.Create(&model.Turno{
			TrabajadorID: adminID,
			TipoTurno:    "noche",
			Estado:       model.TurnoAbierto,
			OpenedAt:     time.Now(),
		}).Error
	}
	require.NoError(t, abrir())
	assert.ErrorIs(t, abrir(), gorm.ErrDuplicatedKey)
}
