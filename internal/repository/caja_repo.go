package repository

import (
	"context"
	"time"

	"cochera/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TotalPorTipo groups a shift's movements by type.
type TotalPorTipo struct {
	Tipo     string
	Cantidad int64
	Monto    decimal.Decimal
}

// TotalDiario is the income of one calendar day for one payment method.
type TotalDiario struct {
	Fecha      string
	MetodoPago string
	Monto      decimal.Decimal
}

// CajaRepository is the append-only cash ledger. Movements have no Update or Delete.
type CajaRepository interface {
	CreateMovimiento(ctx context.Context, tx *gorm.DB, m *model.MovimientoCaja) error
	FindMovimientoByID(ctx context.Context, id uuid.UUID) (*model.MovimientoCaja, error)
	ListMovimientos(ctx context.Context, turnoID uuid.UUID) ([]model.MovimientoCaja, error)
	SumMovimientosByMetodo(ctx context.Context, tx *gorm.DB, turnoID uuid.UUID) (map[string]decimal.Decimal, error)
	SumMovimientosByTipo(ctx context.Context, turnoID uuid.UUID) ([]TotalPorTipo, error)
	// SumPorMetodo totals every movement created in [desde, hasta); zero bounds are open.
	SumPorMetodo(ctx context.Context, desde, hasta time.Time) (map[string]decimal.Decimal, error)
	TotalesDiarios(ctx context.Context, desde time.Time, tz string) ([]TotalDiario, error)
}

type cajaRepo struct{ db *gorm.DB }

func NewCajaRepository(db *gorm.DB) CajaRepository { return &cajaRepo{db: db} }

func (r *cajaRepo) CreateMovimiento(ctx context.Context, tx *gorm.DB, m *model.MovimientoCaja) error {
	return conn(r.db, tx).WithContext(ctx).Omit("Entrada", "Trabajador").Create(m).Error
}

func (r *cajaRepo) FindMovimientoByID(ctx context.Context, id uuid.UUID) (*model.MovimientoCaja, error) {
	var m model.MovimientoCaja
	err := r.db.WithContext(ctx).
		Preload("Entrada.Cliente").Preload("Trabajador").
		First(&m, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &m, nil
}

func (r *cajaRepo) ListMovimientos(ctx context.Context, turnoID uuid.UUID) ([]model.MovimientoCaja, error) {
	var movs []model.MovimientoCaja
	err := r.db.WithContext(ctx).
		Preload("Entrada.Cliente").
		Where("turno_id = ?", turnoID).
		Order("created_at ASC").
		Find(&movs).Error
	return movs, err
}

func (r *cajaRepo) SumMovimientosByMetodo(ctx context.Context, tx *gorm.DB, turnoID uuid.UUID) (map[string]decimal.Decimal, error) {
	var rows []struct {
		MetodoPago string
		Total      decimal.Decimal
	}
	err := conn(r.db, tx).WithContext(ctx).Model(&model.MovimientoCaja{}).
		Select("metodo_pago, COALESCE(SUM(monto), 0) AS total").
		Where("turno_id = ?", turnoID).
		Group("metodo_pago").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	sums := map[string]decimal.Decimal{
		model.MetodoEfectivo:    decimal.Zero,
		model.MetodoElectronico: decimal.Zero,
	}
	for _, row := range rows {
		sums[row.MetodoPago] = row.Total
	}
	return sums, nil
}

func (r *cajaRepo) SumMovimientosByTipo(ctx context.Context, turnoID uuid.UUID) ([]TotalPorTipo, error) {
	var rows []TotalPorTipo
	err := r.db.WithContext(ctx).Model(&model.MovimientoCaja{}).
		Select("tipo, COUNT(*) AS cantidad, COALESCE(SUM(monto), 0) AS monto").
		Where("turno_id = ?", turnoID).
		Group("tipo").
		Order("tipo ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *cajaRepo) SumPorMetodo(ctx context.Context, desde, hasta time.Time) (map[string]decimal.Decimal, error) {
	q := r.db.WithContext(ctx).Model(&model.MovimientoCaja{})
	if !desde.IsZero() {
		q = q.Where("created_at >= ?", desde)
	}
	if !hasta.IsZero() {
		q = q.Where("created_at < ?", hasta)
	}
	var rows []struct {
		MetodoPago string
		Total      decimal.Decimal
	}
	if err := q.Select("metodo_pago, COALESCE(SUM(monto), 0) AS total").Group("metodo_pago").Scan(&rows).Error; err != nil {
		return nil, err
	}
	sums := map[string]decimal.Decimal{
		model.MetodoEfectivo:    decimal.Zero,
		model.MetodoElectronico: decimal.Zero,
	}
	for _, row := range rows {
		sums[row.MetodoPago] = row.Total
	}
	return sums, nil
}

// TotalesDiarios buckets income by local calendar day in the given IANA zone.
func (r *cajaRepo) TotalesDiarios(ctx context.Context, desde time.Time, tz string) ([]TotalDiario, error) {
	var rows []TotalDiario
	err := r.db.WithContext(ctx).Model(&model.MovimientoCaja{}).
		Select("TO_CHAR(created_at AT TIME ZONE ?, 'YYYY-MM-DD') AS fecha, metodo_pago, COALESCE(SUM(monto), 0) AS monto", tz).
		Where("created_at >= ?", desde).
		Group("fecha, metodo_pago").
		Order("fecha ASC").
		Scan(&rows).Error
	return rows, err
}
