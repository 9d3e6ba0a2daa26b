package repository

import (
	"context"

	"cochera/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ConfiguracionRepository interface {
	Get(ctx context.Context, clave string) (*model.Configuracion, error)
	List(ctx context.Context) ([]model.Configuracion, error)
	// Set updates an existing key; unknown keys yield ErrNotFound.
	Set(ctx context.Context, tx *gorm.DB, clave, valor string) error
	// Seed inserts the given rows, leaving existing keys untouched.
	Seed(ctx context.Context, rows []model.Configuracion) error
	DB() *gorm.DB
}

type configuracionRepo struct{ db *gorm.DB }

func NewConfiguracionRepository(db *gorm.DB) ConfiguracionRepository {
	return &configuracionRepo{db: db}
}

func (r *configuracionRepo) DB() *gorm.DB { return r.db }

func (r *configuracionRepo) Get(ctx context.Context, clave string) (*model.Configuracion, error) {
	var c model.Configuracion
	if err := r.db.WithContext(ctx).First(&c, "clave = ?", clave).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *configuracionRepo) List(ctx context.Context) ([]model.Configuracion, error) {
	var cs []model.Configuracion
	err := r.db.WithContext(ctx).Order("clave ASC").Find(&cs).Error
	return cs, err
}

func (r *configuracionRepo) Set(ctx context.Context, tx *gorm.DB, clave, valor string) error {
	res := conn(r.db, tx).WithContext(ctx).Model(&model.Configuracion{}).
		Where("clave = ?", clave).Update("valor", valor)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *configuracionRepo) Seed(ctx context.Context, rows []model.Configuracion) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
}
