package repository

import (
	"context"
	"time"

	"cochera/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TurnoQuery filters shift reports. Zero times are open bounds.
type TurnoQuery struct {
	TrabajadorID *uuid.UUID
	Desde        time.Time
	Hasta        time.Time
	Page
}

type TurnoRepository interface {
	// Create relies on the partial unique index over open shifts; a second open
	// shift fails with ErrDuplicate.
	Create(ctx context.Context, tx *gorm.DB, t *model.Turno) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Turno, error)
	// FindAbiertoPorTrabajador locks the row (FOR UPDATE) when called inside a
	// transaction, so a close and a movement on the same shift serialize.
	FindAbiertoPorTrabajador(ctx context.Context, tx *gorm.DB, trabajadorID uuid.UUID) (*model.Turno, error)
	// FindAbiertoDeOtro returns an open shift held by a non-admin worker other than trabajadorID.
	FindAbiertoDeOtro(ctx context.Context, tx *gorm.DB, trabajadorID uuid.UUID) (*model.Turno, error)
	FindAbierto(ctx context.Context) (*model.Turno, error)
	// Cerrar persists the closing figures only if the shift is still open.
	Cerrar(ctx context.Context, tx *gorm.DB, t *model.Turno) error
	List(ctx context.Context, q TurnoQuery) ([]model.Turno, int64, error)
	DB() *gorm.DB
}

type turnoRepo struct{ db *gorm.DB }

func NewTurnoRepository(db *gorm.DB) TurnoRepository { return &turnoRepo{db: db} }

func (r *turnoRepo) DB() *gorm.DB { return r.db }

func (r *turnoRepo) Create(ctx context.Context, tx *gorm.DB, t *model.Turno) error {
	return translate(conn(r.db, tx).WithContext(ctx).Omit("Trabajador").Create(t).Error)
}

func (r *turnoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Turno, error) {
	var t model.Turno
	if err := r.db.WithContext(ctx).Preload("Trabajador").First(&t, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

func (r *turnoRepo) FindAbiertoPorTrabajador(ctx context.Context, tx *gorm.DB, trabajadorID uuid.UUID) (*model.Turno, error) {
	var t model.Turno
	q := conn(r.db, tx).WithContext(ctx)
	if tx != nil {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	err := q.
		Where("trabajador_id = ? AND estado = ?", trabajadorID, model.TurnoAbierto).
		Order("opened_at DESC").
		First(&t).Error
	if err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

func (r *turnoRepo) FindAbiertoDeOtro(ctx context.Context, tx *gorm.DB, trabajadorID uuid.UUID) (*model.Turno, error) {
	var t model.Turno
	err := conn(r.db, tx).WithContext(ctx).
		Joins("Trabajador").
		Where("turnos.estado = ? AND turnos.trabajador_id <> ? AND \"Trabajador\".rol <> ?",
			model.TurnoAbierto, trabajadorID, model.RolAdmin).
		Order("turnos.opened_at DESC").
		First(&t).Error
	if err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

func (r *turnoRepo) FindAbierto(ctx context.Context) (*model.Turno, error) {
	var t model.Turno
	err := r.db.WithContext(ctx).
		Preload("Trabajador").
		Where("estado = ?", model.TurnoAbierto).
		Order("opened_at DESC").
		First(&t).Error
	if err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

func (r *turnoRepo) Cerrar(ctx context.Context, tx *gorm.DB, t *model.Turno) error {
	res := conn(r.db, tx).WithContext(ctx).Model(&model.Turno{}).
		Where("id = ? AND estado = ?", t.ID, model.TurnoAbierto).
		Updates(map[string]any{
			"estado":                model.TurnoCerrado,
			"total_efectivo":        t.TotalEfectivo,
			"total_electronico":     t.TotalElectronico,
			"efectivo_declarado":    t.EfectivoDeclarado,
			"electronico_declarado": t.ElectronicoDeclarado,
			"observaciones":         t.Observaciones,
			"closed_at":             t.ClosedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *turnoRepo) List(ctx context.Context, q TurnoQuery) ([]model.Turno, int64, error) {
	base := r.db.WithContext(ctx).Model(&model.Turno{})
	if q.TrabajadorID != nil {
		base = base.Where("trabajador_id = ?", *q.TrabajadorID)
	}
	if !q.Desde.IsZero() {
		base = base.Where("opened_at >= ?", q.Desde)
	}
	if !q.Hasta.IsZero() {
		base = base.Where("opened_at < ?", q.Hasta)
	}
	base = base.Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var ts []model.Turno
	err := q.Page.apply(base.Preload("Trabajador").Order("opened_at DESC")).Find(&ts).Error
	return ts, total, err
}
