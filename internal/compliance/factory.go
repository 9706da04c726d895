package compliance

import (
	"rxbridge-service/internal/config"
	"rxbridge-service/internal/metrics"

	"go.uber.org/zap"
)

// NewSources builds the compliance sources for the configured inventory. Demo inventory
// gets the matching offline signals; real inventory gets the recall API (unless
// USE_FDA_API=false) and the shortage export when SHORTAGE_CSV is set.
func NewSources(cfg *config.Config, m *metrics.Metrics, logger *zap.Logger) []Source {
	if cfg.InventorySource == config.InventorySourceDemo || cfg.InventorySource == "" {
		logger.Info("Compliance sources: demo signals")
		return []Source{NewStaticSource("demo", DemoSignals())}
	}

	var sources []Source
	if cfg.UseFDAAPI {
		logger.Info("Compliance source: openFDA recalls", zap.String("url", cfg.FDAAPIURL))
		sources = append(sources, NewRecallClient(cfg, m, logger))
	}
	if cfg.ShortageCSV != "" {
		logger.Info("Compliance source: shortage export", zap.String("path", cfg.ShortageCSV))
		sources = append(sources, NewShortageCSV(cfg.ShortageCSV, logger))
	}
	if len(sources) == 0 {
		logger.Warn("No compliance sources configured, scans will classify on stock only")
	}
	return sources
}
