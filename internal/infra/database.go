package infra

import (
	"fmt"

	"clubpos/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate
// for the local schema, then applies the idempotent SQL patches that GORM
// cannot express (partial indexes, sequences).
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
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

	return db, nil
}

// RunMigrations creates/updates all local tables and applies schema patches.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Usuario{},
		&model.Caja{},
		&model.Permiso{},
		&model.ProductoLocal{},
		&model.CatalogoCaja{},
		&model.Apertura{},
		&model.Venta{},
		&model.DetalleVenta{},
		&model.MedioPago{},
		&model.Cliente{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// schemaPatches is the idempotent DDL that AutoMigrate cannot express.
// Each statement uses IF NOT EXISTS semantics so re-running is safe.
var schemaPatches = []string{
	// Partial unique index: at most one open apertura per caja. This is
	// the DB-level guarantee behind the service-level per-caja mutex.
	`DO $$ BEGIN
	  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'ux_aperturas_caja_abierta') THEN
	    CREATE UNIQUE INDEX ux_aperturas_caja_abierta
	        ON aperturas (caja_id)
	        WHERE estado = 'abierta';
	  END IF;
	END $$`,
	// Sequence for the flex correlativo consumed inside the sale
	// transaction when a boleta is requested.
	`CREATE SEQUENCE IF NOT EXISTS ventas_correlativo_flex_seq START 1`,
}

func applySchemaPatches(db *gorm.DB) error {
	for _, sql := range schemaPatches {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", sql[:min(len(sql), 60)], err)
		}
	}
	return nil
}
