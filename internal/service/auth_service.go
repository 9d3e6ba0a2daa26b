package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"cochera/internal/config"
	"cochera/internal/dto"
	"cochera/internal/model"
	"cochera/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	bcryptCost = 12

	tokenAcceso  = "access"
	tokenRefresh = "refresh"
)

// TokenRevocador invalidates an access token until it would have expired.
type TokenRevocador interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
}

type AuthService interface {
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error)
	Logout(ctx context.Context, jti string, expira time.Time) error
	CrearUsuario(ctx context.Context, req dto.CrearUsuarioRequest) (*dto.UsuarioResponse, error)
	ListarUsuarios(ctx context.Context, incluirInactivos bool) ([]dto.UsuarioResponse, error)
	ActualizarUsuario(ctx context.Context, id uuid.UUID, req dto.ActualizarUsuarioRequest) (*dto.UsuarioResponse, error)
	DesactivarUsuario(ctx context.Context, actor Actor, id uuid.UUID) error
	ReactivarUsuario(ctx context.Context, id uuid.UUID) error
}

type authService struct {
	repo      repository.TrabajadorRepository
	turnos    repository.TurnoRepository
	revocador TokenRevocador
	cfg       *config.Config
	now       Clock
}

func NewAuthService(
	repo repository.TrabajadorRepository,
	turnos repository.TurnoRepository,
	revocador TokenRevocador,
	cfg *config.Config,
	now Clock,
) AuthService {
	return &authService{repo: repo, turnos: turnos, revocador: revocador, cfg: cfg, now: now}
}

// ── Login ─────────────────────────────────────────────────────────────────────
// Workers open or resume their shift as part of logging in. Only one worker may
// hold an open shift; admins never get one.

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.repo.FindByUsuario(ctx, normalizarUsuario(req.Usuario))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, credenciales("Usuario o contraseña incorrectos")
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, credenciales("Usuario o contraseña incorrectos")
	}

	var turno *model.Turno
	if !user.EsAdmin() {
		turno, err = s.abrirOReanudarTurno(ctx, user, strings.TrimSpace(req.TipoTurno))
		if err != nil {
			return nil, err
		}
	}
	log.Info().Str("usuario", user.Usuario).Str("rol", user.Rol).Msg("login")
	return s.issueTokens(user, turno)
}

func (s *authService) abrirOReanudarTurno(ctx context.Context, user *model.Trabajador, tipo string) (*model.Turno, error) {
	var turno *model.Turno
	err := runTx(ctx, s.turnos.DB(), func(tx *gorm.DB) error {
		otro, err := s.turnos.FindAbiertoDeOtro(ctx, tx, user.ID)
		switch {
		case err == nil:
			return conflicto("%s tiene un turno abierto. Debe cerrar su turno primero.", nombreTrabajador(otro.Trabajador))
		case !errors.Is(err, repository.ErrNotFound):
			return err
		}

		if tipo == "" {
			return validacion("Debe seleccionar un turno")
		}

		propio, err := s.turnos.FindAbiertoPorTrabajador(ctx, tx, user.ID)
		if err == nil {
			turno = propio
			return nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return err
		}

		nuevo := &model.Turno{
			TrabajadorID: user.ID,
			TipoTurno:    tipo,
			Estado:       model.TurnoAbierto,
			OpenedAt:     s.now(),
		}
		if err := s.turnos.Create(ctx, tx, nuevo); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return conflicto("Otro trabajador acaba de abrir un turno. Intente nuevamente.")
			}
			return err
		}
		turno = nuevo
		return nil
	})
	if err != nil {
		return nil, err
	}
	turno.Trabajador = user
	return turno, nil
}

// ── Refresh / Logout ──────────────────────────────────────────────────────────

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error) {
	token, err := jwt.Parse(refreshToken, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, credenciales("Refresh token inválido o expirado")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || claims["tipo"] != tokenRefresh {
		return nil, credenciales("Refresh token inválido o expirado")
	}
	userIDStr, _ := claims["user_id"].(string)
	uid, err := uuid.Parse(userIDStr)
	if err != nil {
		return nil, credenciales("Token mal formado")
	}

	user, err := s.repo.FindByID(ctx, uid)
	if err != nil || !user.Activo {
		return nil, credenciales("Usuario no encontrado o inactivo")
	}

	var turno *model.Turno
	if !user.EsAdmin() {
		turno, err = s.turnos.FindAbiertoPorTrabajador(ctx, nil, user.ID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, credenciales("El turno fue cerrado. Inicie sesión nuevamente.")
			}
			return nil, err
		}
		turno.Trabajador = user
	}
	return s.issueTokens(user, turno)
}

func (s *authService) Logout(ctx context.Context, jti string, expira time.Time) error {
	if jti == "" || s.revocador == nil {
		return nil
	}
	ttl := time.Until(expira)
	if ttl <= 0 {
		return nil
	}
	return s.revocador.Revoke(ctx, jti, ttl)
}

// ── Usuarios ──────────────────────────────────────────────────────────────────

func (s *authService) CrearUsuario(ctx context.Context, req dto.CrearUsuarioRequest) (*dto.UsuarioResponse, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return nil, err
	}
	user := &model.Trabajador{
		Usuario:      normalizarUsuario(req.Usuario),
		Nombre:       strings.TrimSpace(req.Nombre),
		PasswordHash: string(hash),
		Rol:          req.Rol,
		Activo:       true,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, conflicto("El usuario %s ya existe", user.Usuario)
		}
		return nil, err
	}
	resp := toUsuarioResponse(user)
	return &resp, nil
}

func (s *authService) ListarUsuarios(ctx context.Context, incluirInactivos bool) ([]dto.UsuarioResponse, error) {
	var users []model.Trabajador
	var err error
	if incluirInactivos {
		users, err = s.repo.ListAll(ctx)
	} else {
		users, err = s.repo.List(ctx)
	}
	if err != nil {
		return nil, err
	}
	resp := make([]dto.UsuarioResponse, len(users))
	for i := range users {
		resp[i] = toUsuarioResponse(&users[i])
	}
	return resp, nil
}

func (s *authService) ActualizarUsuario(ctx context.Context, id uuid.UUID, req dto.ActualizarUsuarioRequest) (*dto.UsuarioResponse, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, noEncontrado("Usuario no encontrado")
		}
		return nil, err
	}
	if req.Nombre != "" {
		user.Nombre = strings.TrimSpace(req.Nombre)
	}
	if req.Rol != "" {
		user.Rol = req.Rol
	}
	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = string(hash)
	}
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	resp := toUsuarioResponse(user)
	return &resp, nil
}

func (s *authService) DesactivarUsuario(ctx context.Context, actor Actor, id uuid.UUID) error {
	if actor.TrabajadorID == id {
		return validacion("No puede desactivar su propio usuario")
	}
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return noEncontrado("Usuario no encontrado")
		}
		return err
	}
	return nil
}

func (s *authService) ReactivarUsuario(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Reactivar(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return noEncontrado("Usuario no encontrado")
		}
		return err
	}
	return nil
}

// ── Tokens ────────────────────────────────────────────────────────────────────

func (s *authService) issueTokens(user *model.Trabajador, turno *model.Turno) (*dto.LoginResponse, error) {
	var turnoID *string
	if turno != nil {
		id := turno.ID.String()
		turnoID = &id
	}
	accessToken, err := s.generateToken(user, turnoID, tokenAcceso, time.Duration(s.cfg.JWTExpirationHours)*time.Hour)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.generateToken(user, turnoID, tokenRefresh, time.Duration(s.cfg.JWTRefreshHours)*time.Hour)
	if err != nil {
		return nil, err
	}

	resp := &dto.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
		ExpiresIn:    s.cfg.JWTExpirationHours * 3600,
		User:         toUsuarioResponse(user),
	}
	if turno != nil {
		t := toTurnoResponse(turno)
		resp.Turno = &t
	}
	return resp, nil
}

func (s *authService) generateToken(user *model.Trabajador, turnoID *string, tipo string, duration time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id":  user.ID.String(),
		"username": user.Usuario,
		"nombre":   user.Nombre,
		"rol":      user.Rol,
		"turno_id": turnoID,
		"tipo":     tipo,
		"jti":      uuid.NewString(),
		"exp":      now.Add(duration).Unix(),
		"iat":      now.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func normalizarUsuario(u string) string { return strings.ToLower(strings.TrimSpace(u)) }
