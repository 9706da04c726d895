package repository

import (
	"fmt"

	"rxbridge-service/internal/config"

	"go.uber.org/zap"
)

// NewInventoryRepository builds the repository selected by INVENTORY_SOURCE.
func NewInventoryRepository(cfg *config.Config, logger *zap.Logger) (InventoryRepository, error) {
	switch cfg.InventorySource {
	case config.InventorySourceSQLite:
		repo, err := NewSQLiteInventoryRepository(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		logger.Info("Inventory source: SQLite read model", zap.String("path", cfg.SQLitePath))
		return repo, nil
	case config.InventorySourceCSV:
		logger.Info("Inventory source: CSV export", zap.String("path", cfg.InventoryCSV))
		return NewCSVInventoryRepository(cfg.InventoryCSV), nil
	case config.InventorySourceDemo, "":
		logger.Warn("Inventory source: demo data, set INVENTORY_SOURCE for real inventory")
		return NewInMemoryInventoryRepository(DemoInventory()...), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSourceKind, cfg.InventorySource)
	}
}
