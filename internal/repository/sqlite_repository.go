package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"rxbridge-service/internal/domain"

	_ "github.com/mattn/go-sqlite3"
)

const inventorySchema = `
	-- Pharmacy inventory read model: one row per stock-keeping unit
	CREATE TABLE IF NOT EXISTS pharmacy_inventory (
		drug_name TEXT PRIMARY KEY,
		current_stock INTEGER NOT NULL DEFAULT 0,
		average_daily_dispense REAL NOT NULL DEFAULT 0,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_pharmacy_inventory_updated_at ON pharmacy_inventory(updated_at);
`

// SQLiteInventoryRepository reads the inventory snapshot from a SQLite read model
// maintained by the pharmacy system.
type SQLiteInventoryRepository struct {
	db *sql.DB
}

// NewSQLiteInventoryRepository opens the database read-only.
func NewSQLiteInventoryRepository(dbPath string) (*SQLiteInventoryRepository, error) {
	db, err := sql.Open("sqlite3", "file:"+dbPath+"?mode=ro&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Multiple readers allowed
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteInventoryRepository{db: db}, nil
}

// Close closes the database connection
func (r *SQLiteInventoryRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// ListInventory returns every row ordered by drug name.
func (r *SQLiteInventoryRepository) ListInventory(ctx context.Context) ([]domain.InventoryItem, error) {
	query := `
		SELECT drug_name, current_stock, average_daily_dispense
		FROM pharmacy_inventory
		ORDER BY drug_name
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list inventory: %w", err)
	}
	defer rows.Close()

	items := make([]domain.InventoryItem, 0)
	for rows.Next() {
		var item domain.InventoryItem
		if err := rows.Scan(&item.DrugName, &item.CurrentStock, &item.AverageDailyDispense); err != nil {
			return nil, fmt.Errorf("failed to scan inventory row: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating inventory: %w", err)
	}

	return items, nil
}

// WriteSQLiteSnapshot creates the schema if needed and replaces every row with items in a
// single transaction. The importer CLI and tests use it to build the read model.
func WriteSQLiteSnapshot(ctx context.Context, dbPath string, items []domain.InventoryItem) error {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	// Single writer
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, inventorySchema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM pharmacy_inventory`); err != nil {
		return fmt.Errorf("failed to clear inventory: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO pharmacy_inventory (drug_name, current_stock, average_daily_dispense, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(drug_name) DO UPDATE SET
			current_stock = excluded.current_stock,
			average_daily_dispense = excluded.average_daily_dispense,
			updated_at = excluded.updated_at
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339)
	for _, item := range items {
		if _, err := stmt.ExecContext(ctx, item.DrugName, item.CurrentStock, item.AverageDailyDispense, now); err != nil {
			return fmt.Errorf("failed to insert %q: %w", item.DrugName, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit inventory: %w", err)
	}
	return nil
}
