package infra

import (
	"context"
	"fmt"

	"cochera/internal/model"
	"cochera/internal/repository"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx, migrates the schema
// and seeds the default business configuration. Driver errors are translated
// so repositories can match gorm.ErrDuplicatedKey.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
		// Movements keep pointing at stays of deleted clients, so FKs are
		// declared by hand in applySchemaPatches instead.
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}

	if err := repository.NewConfiguracionRepository(db).Seed(context.Background(), model.ConfiguracionInicial); err != nil {
		return nil, fmt.Errorf("seed configuracion: %w", err)
	}

	return db, nil
}

// RunMigrations creates or updates every table and then applies the patches
// AutoMigrate cannot express. Integration tests call it on a fresh container.
func RunMigrations(db *gorm.DB) error {
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto`).Error; err != nil {
		return fmt.Errorf("pgcrypto: %w", err)
	}
	if err := db.AutoMigrate(
		&model.Trabajador{},
		&model.Cliente{},
		&model.Turno{},
		&model.Entrada{},
		&model.MovimientoCaja{},
		&model.Configuracion{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	if err := applySchemaPatches(db); err != nil {
		return fmt.Errorf("schema patches: %w", err)
	}
	return nil
}

// applySchemaPatches runs idempotent DDL statements that GORM AutoMigrate cannot
// handle on its own: partial unique indexes and hand-picked foreign keys.
// Each statement is guarded so re-running on an already-patched DB is a no-op.
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		// At most one open shift in the whole lot.
		{"uq_turnos_un_abierto", `
CREATE UNIQUE INDEX IF NOT EXISTS uq_turnos_un_abierto
    ON turnos ((true))
    WHERE estado = 'abierto'`},
		// A plate can be parked only once at a time.
		{"uq_entradas_abierta_por_cliente", `
CREATE UNIQUE INDEX IF NOT EXISTS uq_entradas_abierta_por_cliente
    ON entradas (cliente_id)
    WHERE salio = false`},
		{"idx_entradas_salida_at", `
CREATE INDEX IF NOT EXISTS idx_entradas_salida_at
    ON entradas (salida_at)
    WHERE salida_at IS NOT NULL`},
		{"fk_entradas_cliente", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'fk_entradas_cliente') THEN
    ALTER TABLE entradas
      ADD CONSTRAINT fk_entradas_cliente
      FOREIGN KEY (cliente_id) REFERENCES clientes(id) ON DELETE CASCADE;
  END IF;
END $$`},
		{"fk_entradas_trabajador", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'fk_entradas_trabajador') THEN
    ALTER TABLE entradas
      ADD CONSTRAINT fk_entradas_trabajador
      FOREIGN KEY (trabajador_id) REFERENCES trabajadores(id);
  END IF;
END $$`},
		{"fk_turnos_trabajador", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'fk_turnos_trabajador') THEN
    ALTER TABLE turnos
      ADD CONSTRAINT fk_turnos_trabajador
      FOREIGN KEY (trabajador_id) REFERENCES trabajadores(id);
  END IF;
END $$`},
		{"fk_movimientos_caja_turno", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'fk_movimientos_caja_turno') THEN
    ALTER TABLE movimientos_caja
      ADD CONSTRAINT fk_movimientos_caja_turno
      FOREIGN KEY (turno_id) REFERENCES turnos(id);
  END IF;
END $$`},
		{"chk_movimientos_caja_monto", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_movimientos_caja_monto') THEN
    ALTER TABLE movimientos_caja
      ADD CONSTRAINT chk_movimientos_caja_monto CHECK (monto > 0);
  END IF;
END $$`},
	}

	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", p.descr, err)
		}
	}
	return nil
}
