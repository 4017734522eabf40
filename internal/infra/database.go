package infra

import (
	"fmt"

	"github.com/Jassur2025/metallerp-sub000/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate
// for every model, then applies the idempotent SQL patches GORM cannot express.
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

// RunMigrations creates / updates all tables and applies schema patches.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.User{},
		&model.AppSettings{},
		&model.Product{},
		&model.StockMovement{},
		&model.Purchase{},
		&model.PurchaseItem{},
		&model.Transaction{},
		&model.WorkflowOrder{},
		&model.WorkflowOrderItem{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	if err := applySchemaPatches(db); err != nil {
		return fmt.Errorf("schema patches: %w", err)
	}
	return nil
}

// applySchemaPatches runs idempotent DDL statements that AutoMigrate cannot
// express (partial indexes, value checks). Each one is safe to re-run.
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		{"partial index for open supplier debt", `
CREATE INDEX IF NOT EXISTS idx_purchases_open_debt
    ON purchases (supplier_name)
    WHERE payment_status <> 'paid'`},
		{"transactions balance lookup", `
CREATE INDEX IF NOT EXISTS idx_transactions_method_currency
    ON transactions (method, currency)`},
		{"purchase item quantity is positive", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_purchase_items_quantity') THEN
    ALTER TABLE purchase_items ADD CONSTRAINT chk_purchase_items_quantity CHECK (quantity > 0);
  END IF;
END $$`},
		{"single settings row", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_app_settings_single_row') THEN
    ALTER TABLE app_settings ADD CONSTRAINT chk_app_settings_single_row CHECK (id = 1);
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
