package repository

import (
	"context"
	"time"

	"cochera/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Estados accepted by EntradaQuery.Estado.
const (
	EstadoEnCochera = "en_cochera"
	EstadoSalio     = "salio"
)

// EntradaQuery filters the vehicle history. Dates are YYYY-MM-DD and compare
// against the entry date; every value is bound as a parameter.
type EntradaQuery struct {
	Placa  string
	Desde  string
	Hasta  string
	Estado string
	Page
}

type EntradaRepository interface {
	Create(ctx context.Context, tx *gorm.DB, e *model.Entrada) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Entrada, error)
	FindByIDTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Entrada, error)
	FindAbiertaPorPlaca(ctx context.Context, tx *gorm.DB, placa string) (*model.Entrada, error)
	ListAbiertas(ctx context.Context) ([]model.Entrada, error)
	CountAbiertas(ctx context.Context) (int64, error)
	CountAbiertasPorCliente(ctx context.Context, tx *gorm.DB, clienteID uuid.UUID) (int64, error)
	// UpdateAbierta saves editable fields of a stay that is still parked.
	UpdateAbierta(ctx context.Context, e *model.Entrada) error
	// Cerrar writes the exit columns only if the stay is still open.
	Cerrar(ctx context.Context, tx *gorm.DB, e *model.Entrada) error
	ListByCliente(ctx context.Context, clienteID uuid.UUID) ([]model.Entrada, error)
	DeleteByCliente(ctx context.Context, tx *gorm.DB, clienteID uuid.UUID) error
	// CountRegistradas and CountSalidas count a worker's check-ins and check-outs
	// in [desde, hasta); a zero hasta leaves the range open.
	CountRegistradas(ctx context.Context, trabajadorID uuid.UUID, desde, hasta time.Time) (int64, error)
	CountSalidas(ctx context.Context, trabajadorID uuid.UUID, desde, hasta time.Time) (int64, error)
	List(ctx context.Context, q EntradaQuery) ([]model.Entrada, int64, error)
	DB() *gorm.DB
}

type entradaRepo struct{ db *gorm.DB }

func NewEntradaRepository(db *gorm.DB) EntradaRepository { return &entradaRepo{db: db} }

func (r *entradaRepo) DB() *gorm.DB { return r.db }

func (r *entradaRepo) Create(ctx context.Context, tx *gorm.DB, e *model.Entrada) error {
	return translate(conn(r.db, tx).WithContext(ctx).Omit("Cliente", "Trabajador", "TrabajadorSalida").Create(e).Error)
}

func (r *entradaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Entrada, error) {
	return r.FindByIDTx(ctx, nil, id)
}

func (r *entradaRepo) FindByIDTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Entrada, error) {
	var e model.Entrada
	err := conn(r.db, tx).WithContext(ctx).
		Preload("Cliente").Preload("Trabajador").Preload("TrabajadorSalida").
		First(&e, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &e, nil
}

func (r *entradaRepo) FindAbiertaPorPlaca(ctx context.Context, tx *gorm.DB, placa string) (*model.Entrada, error) {
	var e model.Entrada
	err := conn(r.db, tx).WithContext(ctx).
		Joins("JOIN clientes c ON c.id = entradas.cliente_id").
		Where("c.placa = ? AND entradas.salio = false", model.NormalizarPlaca(placa)).
		First(&e).Error
	if err != nil {
		return nil, translate(err)
	}
	return &e, nil
}

func (r *entradaRepo) ListAbiertas(ctx context.Context) ([]model.Entrada, error) {
	var es []model.Entrada
	err := r.db.WithContext(ctx).
		Preload("Cliente").Preload("Trabajador").
		Where("salio = false").
		Order("fecha_entrada DESC, hora_entrada DESC").
		Find(&es).Error
	return es, err
}

func (r *entradaRepo) CountAbiertas(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Entrada{}).Where("salio = false").Count(&n).Error
	return n, err
}

func (r *entradaRepo) CountAbiertasPorCliente(ctx context.Context, tx *gorm.DB, clienteID uuid.UUID) (int64, error) {
	var n int64
	err := conn(r.db, tx).WithContext(ctx).Model(&model.Entrada{}).
		Where("cliente_id = ? AND salio = false", clienteID).Count(&n).Error
	return n, err
}

func (r *entradaRepo) UpdateAbierta(ctx context.Context, e *model.Entrada) error {
	res := r.db.WithContext(ctx).Model(&model.Entrada{}).
		Where("id = ? AND salio = false", e.ID).
		Updates(map[string]any{
			"fecha_entrada":        e.FechaEntrada,
			"hora_entrada":         e.HoraEntrada,
			"fecha_hasta":          e.FechaHasta,
			"hora_salida_esperada": e.HoraSalidaEsperada,
			"dias":                 e.Dias,
			"precio_dia":           e.PrecioDia,
			"monto":                e.Monto,
			"dejo_llave":           e.DejoLlave,
			"observaciones":        e.Observaciones,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *entradaRepo) Cerrar(ctx context.Context, tx *gorm.DB, e *model.Entrada) error {
	res := conn(r.db, tx).WithContext(ctx).Model(&model.Entrada{}).
		Where("id = ? AND salio = false", e.ID).
		Updates(map[string]any{
			"salio":                true,
			"pagado":               e.Pagado,
			"dias":                 e.Dias,
			"monto":                e.Monto,
			"penalidad":            e.Penalidad,
			"descuento":            e.Descuento,
			"metodo_pago":          e.MetodoPago,
			"fecha_salida":         e.FechaSalida,
			"hora_salida":          e.HoraSalida,
			"salida_at":            e.SalidaAt,
			"trabajador_salida_id": e.TrabajadorSalidaID,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *entradaRepo) ListByCliente(ctx context.Context, clienteID uuid.UUID) ([]model.Entrada, error) {
	var es []model.Entrada
	err := r.db.WithContext(ctx).
		Preload("Trabajador").Preload("TrabajadorSalida").
		Where("cliente_id = ?", clienteID).
		Order("created_at DESC").
		Find(&es).Error
	return es, err
}

func (r *entradaRepo) DeleteByCliente(ctx context.Context, tx *gorm.DB, clienteID uuid.UUID) error {
	return conn(r.db, tx).WithContext(ctx).Where("cliente_id = ?", clienteID).Delete(&model.Entrada{}).Error
}

func (r *entradaRepo) CountRegistradas(ctx context.Context, trabajadorID uuid.UUID, desde, hasta time.Time) (int64, error) {
	return r.countEnRango(ctx, "trabajador_id", "created_at", trabajadorID, desde, hasta)
}

func (r *entradaRepo) CountSalidas(ctx context.Context, trabajadorID uuid.UUID, desde, hasta time.Time) (int64, error) {
	return r.countEnRango(ctx, "trabajador_salida_id", "salida_at", trabajadorID, desde, hasta)
}

// countEnRango is only called with fixed column names.
func (r *entradaRepo) countEnRango(ctx context.Context, colTrabajador, colFecha string, trabajadorID uuid.UUID, desde, hasta time.Time) (int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Entrada{}).
		Where(colTrabajador+" = ? AND "+colFecha+" >= ?", trabajadorID, desde)
	if !hasta.IsZero() {
		q = q.Where(colFecha+" < ?", hasta)
	}
	var n int64
	err := q.Count(&n).Error
	return n, err
}

func (r *entradaRepo) List(ctx context.Context, q EntradaQuery) ([]model.Entrada, int64, error) {
	base := r.db.WithContext(ctx).Model(&model.Entrada{}).
		Joins("JOIN clientes c ON c.id = entradas.cliente_id")
	if q.Placa != "" {
		base = base.Where("c.placa LIKE ?", "%"+model.NormalizarPlaca(q.Placa)+"%")
	}
	if q.Desde != "" {
		base = base.Where("entradas.fecha_entrada >= ?", q.Desde)
	}
	if q.Hasta != "" {
		base = base.Where("entradas.fecha_entrada <= ?", q.Hasta)
	}
	switch q.Estado {
	case EstadoEnCochera:
		base = base.Where("entradas.salio = false")
	case EstadoSalio:
		base = base.Where("entradas.salio = true")
	}
	base = base.Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var es []model.Entrada
	err := q.Page.apply(base.
		Preload("Cliente").Preload("Trabajador").Preload("TrabajadorSalida").
		Order("entradas.created_at DESC")).
		Find(&es).Error
	return es, total, err
}
