package service

import (
	"context"
	"errors"
	"strings"

	"cochera/internal/dto"
	"cochera/internal/model"
	"cochera/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var precioDefault = decimal.NewFromInt(10)

type ClienteService interface {
	// Buscar pre-fills the check-in form. An unknown plate is not an error and
	// gets the configured default daily price.
	Buscar(ctx context.Context, placa string) (*dto.BuscarClienteResponse, error)
	Historial(ctx context.Context, placa string) (*dto.HistorialClienteResponse, error)
	Listar(ctx context.Context, filter dto.ClienteFilter) (*dto.ClienteListResponse, error)
	Crear(ctx context.Context, req dto.CrearClienteRequest) (*dto.ClienteResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarClienteRequest) (*dto.ClienteResponse, error)
	// Eliminar removes a client and its closed stays. Clients with a parked
	// vehicle cannot be removed.
	Eliminar(ctx context.Context, id uuid.UUID) error
}

type clienteService struct {
	repo     repository.ClienteRepository
	entradas repository.EntradaRepository
	config   ConfiguracionService
}

func NewClienteService(repo repository.ClienteRepository, entradas repository.EntradaRepository, config ConfiguracionService) ClienteService {
	return &clienteService{repo: repo, entradas: entradas, config: config}
}

func (s *clienteService) Buscar(ctx context.Context, placa string) (*dto.BuscarClienteResponse, error) {
	placa = model.NormalizarPlaca(placa)
	if placa == "" {
		return nil, validacion("La placa es obligatoria")
	}
	c, err := s.repo.FindByPlaca(ctx, nil, placa)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			precio := s.config.Decimal(ctx, model.ConfPrecioDefault, precioDefault)
			return &dto.BuscarClienteResponse{Existe: false, PrecioDia: &precio}, nil
		}
		return nil, err
	}
	precio := c.PrecioDia
	return &dto.BuscarClienteResponse{
		Existe:    true,
		Nombre:    c.Nombre,
		Celular:   c.Celular,
		PrecioDia: &precio,
	}, nil
}

func (s *clienteService) Historial(ctx context.Context, placa string) (*dto.HistorialClienteResponse, error) {
	c, err := s.repo.FindByPlaca(ctx, nil, placa)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, noEncontrado("Cliente no encontrado")
		}
		return nil, err
	}

	stats, err := s.repo.Estadisticas(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	visitas, err := s.entradas.ListByCliente(ctx, c.ID)
	if err != nil {
		return nil, err
	}

	resp := &dto.HistorialClienteResponse{
		Cliente: toClienteResponse(c),
		Estadisticas: dto.EstadisticasClienteResponse{
			TotalVisitas: stats.TotalVisitas,
			TotalGastado: stats.TotalGastado,
			DeudaActual:  stats.DeudaActual,
			PromedioDias: stats.PromedioDias,
		},
		Visitas: make([]dto.EntradaResponse, len(visitas)),
	}
	resp.Cliente.TotalVisitas = stats.TotalVisitas
	for i := range visitas {
		visitas[i].Cliente = c
		resp.Visitas[i] = toEntradaResponse(&visitas[i])
		if !visitas[i].Salio {
			resp.Cliente.EnCochera = true
		}
	}
	if len(visitas) > 0 {
		resp.Cliente.UltimaVisita = formatTimePtr(&visitas[0].CreatedAt)
	}
	return resp, nil
}

func (s *clienteService) Listar(ctx context.Context, filter dto.ClienteFilter) (*dto.ClienteListResponse, error) {
	page, limit, offset := paginate(filter.Page, filter.Limit)
	rows, total, err := s.repo.List(ctx, repository.ClienteQuery{
		Buscar: filter.Buscar,
		Page:   repository.Page{Offset: offset, Limit: limit},
	})
	if err != nil {
		return nil, err
	}

	data := make([]dto.ClienteResponse, len(rows))
	for i := range rows {
		r := toClienteResponse(&rows[i].Cliente)
		r.TotalVisitas = rows[i].TotalVisitas
		r.UltimaVisita = formatTimePtr(rows[i].UltimaVisita)
		r.EnCochera = rows[i].EnCochera
		data[i] = r
	}
	return &dto.ClienteListResponse{Data: data, Total: total, Page: page, Limit: limit}, nil
}

func (s *clienteService) Crear(ctx context.Context, req dto.CrearClienteRequest) (*dto.ClienteResponse, error) {
	c := &model.Cliente{}
	if err := aplicarDatosCliente(c, req.Placa, req.Nombre, req.Celular, req.PrecioDia); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, nil, c); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, conflicto("Ya existe un cliente con la placa %s", c.Placa)
		}
		return nil, err
	}
	resp := toClienteResponse(c)
	return &resp, nil
}

func (s *clienteService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarClienteRequest) (*dto.ClienteResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, noEncontrado("Cliente no encontrado")
		}
		return nil, err
	}
	if err := aplicarDatosCliente(c, req.Placa, req.Nombre, req.Celular, req.PrecioDia); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, nil, c); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, conflicto("Ya existe otro cliente con la placa %s", c.Placa)
		}
		return nil, err
	}
	resp := toClienteResponse(c)
	return &resp, nil
}

func (s *clienteService) Eliminar(ctx context.Context, id uuid.UUID) error {
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		abiertas, err := s.entradas.CountAbiertasPorCliente(ctx, tx, id)
		if err != nil {
			return err
		}
		if abiertas > 0 {
			return conflicto("No se puede eliminar un cliente con un vehículo en cochera")
		}
		if err := s.entradas.DeleteByCliente(ctx, tx, id); err != nil {
			return err
		}
		if err := s.repo.Delete(ctx, tx, id); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return noEncontrado("Cliente no encontrado")
			}
			return err
		}
		return nil
	})
	if err == nil {
		log.Info().Str("cliente_id", id.String()).Msg("cliente eliminado")
	}
	return err
}

func aplicarDatosCliente(c *model.Cliente, placa, nombre, celular string, precio decimal.Decimal) error {
	placa = model.NormalizarPlaca(placa)
	nombre = strings.TrimSpace(nombre)
	if placa == "" {
		return validacion("La placa es obligatoria")
	}
	if nombre == "" {
		return validacion("El nombre del cliente es obligatorio")
	}
	if precio.IsNegative() {
		return validacion("El precio por día no puede ser negativo")
	}
	c.Placa = placa
	c.Nombre = nombre
	c.Celular = strings.TrimSpace(celular)
	c.PrecioDia = precio
	return nil
}
