package service

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"cochera/internal/dto"
	"cochera/internal/model"
	"cochera/internal/repository"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ConfiguracionService interface {
	Listar(ctx context.Context) ([]dto.ConfiguracionResponse, error)
	Guardar(ctx context.Context, req dto.GuardarConfiguracionRequest) error
	// Entero and Decimal read a setting on every call. A missing or malformed
	// value falls back to def.
	Entero(ctx context.Context, clave string, def int) int
	Decimal(ctx context.Context, clave string, def decimal.Decimal) decimal.Decimal
	Texto(ctx context.Context, clave, def string) string
}

var validate = validator.New()

type configuracionService struct {
	repo repository.ConfiguracionRepository
}

func NewConfiguracionService(repo repository.ConfiguracionRepository) ConfiguracionService {
	return &configuracionService{repo: repo}
}

func (s *configuracionService) Listar(ctx context.Context) ([]dto.ConfiguracionResponse, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.ConfiguracionResponse, len(rows))
	for i, c := range rows {
		resp[i] = dto.ConfiguracionResponse{Clave: c.Clave, Valor: c.Valor, Descripcion: c.Descripcion}
	}
	return resp, nil
}

// ── Guardar ───────────────────────────────────────────────────────────────────
// All values are validated before any is written; the batch is atomic.

func (s *configuracionService) Guardar(ctx context.Context, req dto.GuardarConfiguracionRequest) error {
	valores := make(map[string]string, len(req.Valores))
	for clave, valor := range req.Valores {
		v, err := validarConfiguracion(clave, strings.TrimSpace(valor))
		if err != nil {
			return err
		}
		valores[clave] = v
	}

	return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		for clave, valor := range valores {
			if err := s.repo.Set(ctx, tx, clave, valor); err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return validacion("Clave de configuración desconocida: %s", clave)
				}
				return err
			}
		}
		return nil
	})
}

func validarConfiguracion(clave, valor string) (string, error) {
	switch clave {
	case model.ConfToleranciaMinutos:
		n, err := strconv.Atoi(valor)
		if err != nil || n < 0 {
			return "", validacion("La tolerancia debe ser un número entero de minutos mayor o igual a 0")
		}
		return strconv.Itoa(n), nil
	case model.ConfCapacidadMaxima:
		n, err := strconv.Atoi(valor)
		if err != nil || n < 1 {
			return "", validacion("La capacidad máxima debe ser un número entero mayor a 0")
		}
		return strconv.Itoa(n), nil
	case model.ConfPrecioDefault:
		d, err := decimal.NewFromString(valor)
		if err != nil || !d.IsPositive() {
			return "", validacion("El precio por defecto debe ser mayor a 0")
		}
		return d.StringFixed(2), nil
	case model.ConfEmailReportes:
		if valor == "" {
			return "", nil
		}
		if err := validate.Var(valor, "email"); err != nil {
			return "", validacion("Correo de reportes inválido")
		}
		return valor, nil
	default:
		return "", validacion("Clave de configuración desconocida: %s", clave)
	}
}

// ── Lectura tipada ────────────────────────────────────────────────────────────

func (s *configuracionService) Texto(ctx context.Context, clave, def string) string {
	c, err := s.repo.Get(ctx, clave)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			log.Warn().Err(err).Str("clave", clave).Msg("configuracion: lectura fallida, usando valor por defecto")
		}
		return def
	}
	return c.Valor
}

func (s *configuracionService) Entero(ctx context.Context, clave string, def int) int {
	v := s.Texto(ctx, clave, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Warn().Str("clave", clave).Str("valor", v).Msg("configuracion: valor no entero, usando valor por defecto")
		return def
	}
	return n
}

func (s *configuracionService) Decimal(ctx context.Context, clave string, def decimal.Decimal) decimal.Decimal {
	v := s.Texto(ctx, clave, "")
	if v == "" {
		return def
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		log.Warn().Str("clave", clave).Str("valor", v).Msg("configuracion: valor no decimal, usando valor por defecto")
		return def
	}
	return d
}
