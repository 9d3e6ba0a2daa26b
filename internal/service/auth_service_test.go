package service_test

import (
	"context"
	"testing"
	"time"

	"cochera/internal/config"
	"cochera/internal/dto"
	"cochera/internal/model"
	"cochera/internal/service"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret"

type fakeRevocador struct {
	revocados map[string]time.Duration
}

func (r *fakeRevocador) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	r.revocados[jti] = ttl
	return nil
}

type authFixture struct {
	s         *store
	svc       service.AuthService
	revocador *fakeRevocador
}

func newAuthFixture() *authFixture {
	s := newStore()
	rev := &fakeRevocador{revocados: map[string]time.Duration{}}
	cfg := &config.Config{JWTSecret: testSecret, JWTExpirationHours: 12, JWTRefreshHours: 24}
	clock := func() time.Time { return time.Date(2024, 1, 1, 7, 0, 0, 0, lima) }
	return &authFixture{
		s:         s,
		svc:       service.NewAuthService(&fakeTrabajadorRepo{s}, &fakeTurnoRepo{s}, rev, cfg, clock),
		revocador: rev,
	}
}

// sembrar stores a user with a cheap hash so tests stay fast.
func (f *authFixture) sembrar(t *testing.T, usuario, nombre, rol string) *model.Trabajador {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("clave123"), bcrypt.MinCost)
	require.NoError(t, err)
	w := &model.Trabajador{ID: uuid.New(), Usuario: usuario, Nombre: nombre, PasswordHash: string(hash), Rol: rol, Activo: true}
	f.s.trabajadores[w.ID] = w
	return w
}

func parseClaims(t *testing.T, token string) jwt.MapClaims {
	t.Helper()
	parsed, err := jwt.Parse(token, func(*jwt.Token) (interface{}, error) { return []byte(testSecret), nil })
	require.NoError(t, err)
	return parsed.Claims.(jwt.MapClaims)
}

func TestLoginAbreTurno(t *testing.T) {
	f := newAuthFixture()
	f.sembrar(t, "ana", "Ana", model.RolTrabajador)

	resp, err := f.svc.Login(context.Background(), dto.LoginRequest{Usuario: " ANA ", Password: "clave123", TipoTurno: "mañana"})

	require.NoError(t, err)
	require.NotNil(t, resp.Turno)
	assert.Equal(t, "mañana", resp.Turno.TipoTurno)
	assert.Equal(t, model.TurnoAbierto, resp.Turno.Estado)
	assert.Equal(t, "Ana", resp.Turno.Trabajador)
	assert.Equal(t, 12*3600, resp.ExpiresIn)
	assert.Len(t, f.s.turnos, 1)

	claims := parseClaims(t, resp.AccessToken)
	assert.Equal(t, "access", claims["tipo"])
	assert.Equal(t, resp.Turno.ID, claims["turno_id"])
	assert.Equal(t, model.RolTrabajador, claims["rol"])
	assert.NotEmpty(t, claims["jti"])
}

func TestLoginReanudaTurnoPropio(t *testing.T) {
	f := newAuthFixture()
	f.sembrar(t, "ana", "Ana", model.RolTrabajador)
	req := dto.LoginRequest{Usuario: "ana", Password: "clave123", TipoTurno: "mañana"}

	first, err := f.svc.Login(context.Background(), req)
	require.NoError(t, err)
	req.TipoTurno = "tarde"
	second, err := f.svc.Login(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first.Turno.ID, second.Turno.ID)
	assert.Equal(t, "mañana", second.Turno.TipoTurno)
	assert.Len(t, f.s.turnos, 1)
}

func TestLoginRechazadoConTurnoDeOtro(t *testing.T) {
	f := newAuthFixture()
	f.sembrar(t, "ana", "Ana", model.RolTrabajador)
	f.sembrar(t, "luis", "Luis", model.RolTrabajador)
	_, err := f.svc.Login(context.Background(), dto.LoginRequest{Usuario: "ana", Password: "clave123", TipoTurno: "mañana"})
	require.NoError(t, err)

	_, err = f.svc.Login(context.Background(), dto.LoginRequest{Usuario: "luis", Password: "clave123", TipoTurno: "tarde"})

	assert.ErrorIs(t, err, service.ErrConflicto)
	assert.EqualError(t, err, "Ana tiene un turno abierto. Debe cerrar su turno primero.")
	assert.Len(t, f.s.turnos, 1)
}

func TestLoginAdminSinTurno(t *testing.T) {
	f := newAuthFixture()
	f.sembrar(t, "ana", "Ana", model.RolTrabajador)
	f.sembrar(t, "admin", "Dueño", model.RolAdmin)
	_, err := f.svc.Login(context.Background(), dto.LoginRequest{Usuario: "ana", Password: "clave123", TipoTurno: "mañana"})
	require.NoError(t, err)

	resp, err := f.svc.Login(context.Background(), dto.LoginRequest{Usuario: "admin", Password: "clave123"})

	require.NoError(t, err)
	assert.Nil(t, resp.Turno)
	assert.Nil(t, parseClaims(t, resp.AccessToken)["turno_id"])
	assert.Len(t, f.s.turnos, 1)
}

func TestLoginTrabajadorSinTipoTurno(t *testing.T) {
	f := newAuthFixture()
	f.sembrar(t, "ana", "Ana", model.RolTrabajador)

	_, err := f.svc.Login(context.Background(), dto.LoginRequest{Usuario: "ana", Password: "clave123"})

	assert.ErrorIs(t, err, service.ErrValidacion)
	assert.Empty(t, f.s.turnos)
}

func TestLoginCredencialesInvalidas(t *testing.T) {
	f := newAuthFixture()
	w := f.sembrar(t, "ana", "Ana", model.RolTrabajador)

	_, err := f.svc.Login(context.Background(), dto.LoginRequest{Usuario: "ana", Password: "otra", TipoTurno: "mañana"})
	assert.ErrorIs(t, err, service.ErrCredenciales)

	_, err = f.svc.Login(context.Background(), dto.LoginRequest{Usuario: "nadie", Password: "clave123", TipoTurno: "mañana"})
	assert.ErrorIs(t, err, service.ErrCredenciales)

	w.Activo = false
	_, err = f.svc.Login(context.Background(), dto.LoginRequest{Usuario: "ana", Password: "clave123", TipoTurno: "mañana"})
	assert.ErrorIs(t, err, service.ErrCredenciales)
}

func TestRefresh(t *testing.T) {
	f := newAuthFixture()
	f.sembrar(t, "ana", "Ana", model.RolTrabajador)
	login, err := f.svc.Login(context.Background(), dto.LoginRequest{Usuario: "ana", Password: "clave123", TipoTurno: "mañana"})
	require.NoError(t, err)

	_, err = f.svc.Refresh(context.Background(), login.AccessToken)
	assert.ErrorIs(t, err, service.ErrCredenciales, "access tokens cannot be used to refresh")

	_, err = f.svc.Refresh(context.Background(), "basura")
	assert.ErrorIs(t, err, service.ErrCredenciales)

	resp, err := f.svc.Refresh(context.Background(), login.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, login.Turno.ID, resp.Turno.ID)
}

func TestRefreshConTurnoCerrado(t *testing.T) {
	f := newAuthFixture()
	f.sembrar(t, "ana", "Ana", model.RolTrabajador)
	login, err := f.svc.Login(context.Background(), dto.LoginRequest{Usuario: "ana", Password: "clave123", TipoTurno: "mañana"})
	require.NoError(t, err)
	for _, tu := range f.s.turnos {
		tu.Estado = model.TurnoCerrado
	}

	_, err = f.svc.Refresh(context.Background(), login.RefreshToken)

	assert.ErrorIs(t, err, service.ErrCredenciales)
	assert.EqualError(t, err, "El turno fue cerrado. Inicie sesión nuevamente.")
}

func TestLogoutRevocaHastaExpirar(t *testing.T) {
	f := newAuthFixture()

	require.NoError(t, f.svc.Logout(context.Background(), "jti-1", time.Now().Add(time.Hour)))
	require.NoError(t, f.svc.Logout(context.Background(), "jti-2", time.Now().Add(-time.Minute)))

	require.Contains(t, f.revocador.revocados, "jti-1")
	assert.InDelta(t, time.Hour.Seconds(), f.revocador.revocados["jti-1"].Seconds(), 5)
	assert.NotContains(t, f.revocador.revocados, "jti-2")
}

func TestCrearUsuario(t *testing.T) {
	f := newAuthFixture()
	req := dto.CrearUsuarioRequest{Usuario: " Pedro ", Nombre: "Pedro", Password: "clave", Rol: model.RolTrabajador}

	resp, err := f.svc.CrearUsuario(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "pedro", resp.Usuario)
	assert.True(t, resp.Activo)

	req.Usuario = "PEDRO"
	_, err = f.svc.CrearUsuario(context.Background(), req)
	assert.ErrorIs(t, err, service.ErrConflicto)
}

func TestActualizarUsuario(t *testing.T) {
	f := newAuthFixture()
	w := f.sembrar(t, "ana", "Ana", model.RolTrabajador)

	resp, err := f.svc.ActualizarUsuario(context.Background(), w.ID, dto.ActualizarUsuarioRequest{Nombre: "Ana María", Rol: model.RolAdmin})
	require.NoError(t, err)
	assert.Equal(t, "Ana María", resp.Nombre)
	assert.Equal(t, model.RolAdmin, resp.Rol)

	_, err = f.svc.ActualizarUsuario(context.Background(), uuid.New(), dto.ActualizarUsuarioRequest{Nombre: "X"})
	assert.ErrorIs(t, err, service.ErrNoEncontrado)
}

func TestDesactivarYReactivarUsuario(t *testing.T) {
	f := newAuthFixture()
	admin := f.sembrar(t, "admin", "Dueño", model.RolAdmin)
	w := f.sembrar(t, "ana", "Ana", model.RolTrabajador)
	actor := service.Actor{TrabajadorID: admin.ID, Nombre: admin.Nombre, Rol: admin.Rol}

	err := f.svc.DesactivarUsuario(context.Background(), actor, admin.ID)
	assert.ErrorIs(t, err, service.ErrValidacion)
	assert.EqualError(t, err, "No puede desactivar su propio usuario")

	require.NoError(t, f.svc.DesactivarUsuario(context.Background(), actor, w.ID))
	activos, err := f.svc.ListarUsuarios(context.Background(), false)
	require.NoError(t, err)
	assert.Len(t, activos, 1)
	todos, err := f.svc.ListarUsuarios(context.Background(), true)
	require.NoError(t, err)
	assert.Len(t, todos, 2)

	require.NoError(t, f.svc.ReactivarUsuario(context.Background(), w.ID))
	assert.True(t, f.s.trabajadores[w.ID].Activo)

	assert.ErrorIs(t, f.svc.ReactivarUsuario(context.Background(), uuid.New()), service.ErrNoEncontrado)
}
