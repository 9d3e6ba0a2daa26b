package repository

import (
	"context"

	"cochera/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TrabajadorRepository interface {
	Create(ctx context.Context, t *model.Trabajador) error
	FindByUsuario(ctx context.Context, usuario string) (*model.Trabajador, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Trabajador, error)
	List(ctx context.Context) ([]model.Trabajador, error)
	ListAll(ctx context.Context) ([]model.Trabajador, error)
	Update(ctx context.Context, t *model.Trabajador) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
	Reactivar(ctx context.Context, id uuid.UUID) error
	CountActivos(ctx context.Context) (int64, error)
}

type trabajadorRepo struct{ db *gorm.DB }

func NewTrabajadorRepository(db *gorm.DB) TrabajadorRepository { return &trabajadorRepo{db: db} }

func (r *trabajadorRepo) Create(ctx context.Context, t *model.Trabajador) error {
	return translate(r.db.WithContext(ctx).Create(t).Error)
}

// FindByUsuario only returns active accounts; inactive ones cannot log in.
func (r *trabajadorRepo) FindByUsuario(ctx context.Context, usuario string) (*model.Trabajador, error) {
	var t model.Trabajador
	err := r.db.WithContext(ctx).
		Where("usuario = LOWER(?) AND activo = true", usuario).
		First(&t).Error
	if err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

func (r *trabajadorRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Trabajador, error) {
	var t model.Trabajador
	if err := r.db.WithContext(ctx).First(&t, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

func (r *trabajadorRepo) List(ctx context.Context) ([]model.Trabajador, error) {
	var ts []model.Trabajador
	err := r.db.WithContext(ctx).Where("activo = true").Order("nombre ASC").Find(&ts).Error
	return ts, err
}

func (r *trabajadorRepo) ListAll(ctx context.Context) ([]model.Trabajador, error) {
	var ts []model.Trabajador
	err := r.db.WithContext(ctx).Order("activo DESC, nombre ASC").Find(&ts).Error
	return ts, err
}

func (r *trabajadorRepo) Update(ctx context.Context, t *model.Trabajador) error {
	return translate(r.db.WithContext(ctx).Save(t).Error)
}

func (r *trabajadorRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return r.setActivo(ctx, id, false)
}

func (r *trabajadorRepo) Reactivar(ctx context.Context, id uuid.UUID) error {
	return r.setActivo(ctx, id, true)
}

func (r *trabajadorRepo) setActivo(ctx context.Context, id uuid.UUID, activo bool) error {
	res := r.db.WithContext(ctx).Model(&model.Trabajador{}).Where("id = ?", id).Update("activo", activo)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *trabajadorRepo) CountActivos(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Trabajador{}).
		Where("activo = true AND rol = ?", model.RolTrabajador).Count(&n).Error
	return n, err
}
