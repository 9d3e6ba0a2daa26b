package repository

import (
	"context"
	"strings"
	"time"

	"cochera/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ClienteConVisitas is a client row with its visit aggregates.
type ClienteConVisitas struct {
	model.Cliente
	TotalVisitas int64
	UltimaVisita *time.Time
	EnCochera    bool
}

// EstadisticasCliente summarizes every stay of one client.
type EstadisticasCliente struct {
	TotalVisitas int64
	TotalGastado decimal.Decimal
	DeudaActual  decimal.Decimal
	PromedioDias decimal.Decimal
}

type ClienteQuery struct {
	Buscar string
	Page
}

type ClienteRepository interface {
	FindByPlaca(ctx context.Context, tx *gorm.DB, placa string) (*model.Cliente, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Cliente, error)
	Create(ctx context.Context, tx *gorm.DB, c *model.Cliente) error
	Update(ctx context.Context, tx *gorm.DB, c *model.Cliente) error
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	List(ctx context.Context, q ClienteQuery) ([]ClienteConVisitas, int64, error)
	Count(ctx context.Context) (int64, error)
	Estadisticas(ctx context.Context, clienteID uuid.UUID) (*EstadisticasCliente, error)
	DB() *gorm.DB
}

type clienteRepo struct{ db *gorm.DB }

func NewClienteRepository(db *gorm.DB) ClienteRepository { return &clienteRepo{db: db} }

func (r *clienteRepo) DB() *gorm.DB { return r.db }

func (r *clienteRepo) FindByPlaca(ctx context.Context, tx *gorm.DB, placa string) (*model.Cliente, error) {
	var c model.Cliente
	err := conn(r.db, tx).WithContext(ctx).Where("placa = ?", model.NormalizarPlaca(placa)).First(&c).Error
	if err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *clienteRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Cliente, error) {
	var c model.Cliente
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *clienteRepo) Create(ctx context.Context, tx *gorm.DB, c *model.Cliente) error {
	return translate(conn(r.db, tx).WithContext(ctx).Create(c).Error)
}

func (r *clienteRepo) Update(ctx context.Context, tx *gorm.DB, c *model.Cliente) error {
	return translate(conn(r.db, tx).WithContext(ctx).Save(c).Error)
}

func (r *clienteRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	res := conn(r.db, tx).WithContext(ctx).Delete(&model.Cliente{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *clienteRepo) List(ctx context.Context, q ClienteQuery) ([]ClienteConVisitas, int64, error) {
	base := r.db.WithContext(ctx).Model(&model.Cliente{})
	if s := strings.TrimSpace(q.Buscar); s != "" {
		like := "%" + strings.ToUpper(s) + "%"
		base = base.Where("UPPER(clientes.placa) LIKE ? OR UPPER(clientes.nombre) LIKE ?", like, like)
	}
	base = base.Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []ClienteConVisitas
	err := q.Page.apply(base.
		Select(`clientes.*,
			COUNT(e.id) AS total_visitas,
			MAX(e.created_at) AS ultima_visita,
			COALESCE(BOOL_OR(NOT e.salio), false) AS en_cochera`).
		Joins("LEFT JOIN entradas e ON e.cliente_id = clientes.id").
		Group("clientes.id").
		Order("clientes.updated_at DESC")).
		Scan(&rows).Error
	return rows, total, err
}

func (r *clienteRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Cliente{}).Count(&n).Error
	return n, err
}

// Estadisticas treats an unpaid stay as debt for its planned amount minus the advance.
func (r *clienteRepo) Estadisticas(ctx context.Context, clienteID uuid.UUID) (*EstadisticasCliente, error) {
	var row EstadisticasCliente
	err := r.db.WithContext(ctx).Model(&model.Entrada{}).
		Select(`COUNT(*) AS total_visitas,
			COALESCE(SUM(monto), 0) AS total_gastado,
			COALESCE(SUM(CASE WHEN NOT pagado THEN monto - adelanto ELSE 0 END), 0) AS deuda_actual,
			COALESCE(ROUND(AVG(dias), 2), 0) AS promedio_dias`).
		Where("cliente_id = ?", clienteID).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}
