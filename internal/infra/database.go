package infra

import (
	"fmt"

	"comanda/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx and migrates the
// schema. Unique violations are translated to gorm.ErrDuplicatedKey so the
// services can map them to domain errors.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
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

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate runs AutoMigrate for every model and then the schema patches.
// It works on Postgres and SQLite, so tests migrate with it too.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(model.All()...); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	if err := applySchemaPatches(db); err != nil {
		return fmt.Errorf("schema patches: %w", err)
	}
	return nil
}

// applySchemaPatches runs idempotent DDL that GORM tags cannot express.
// The partial unique indexes back two invariants: a single open cash shift,
// and a single open order per table. A concurrent loser gets a duplicate-key
// error instead of a second row.
func applySchemaPatches(db *gorm.DB) error {
	patches := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS ux_caixa_turnos_aberto
		    ON caixa_turnos (status) WHERE status = 'aberto'`,
		`CREATE UNIQUE INDEX IF NOT EXISTS ux_comandas_mesa_aberta
		    ON comandas (mesa_id) WHERE status = 'aberta'`,
		`CREATE INDEX IF NOT EXISTS idx_movimentos_estoque_replay
		    ON movimentos_estoque (produto_id, created_at)`,
	}

	for _, sql := range patches {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", sql[:min(len(sql), 60)], err)
		}
	}
	return nil
}
