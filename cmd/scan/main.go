// Command scan runs one inventory scan from the command line and prints the classified
// items. It can also load an inventory CSV into the SQLite read model.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"rxbridge-service/internal/cache"
	"rxbridge-service/internal/compliance"
	"rxbridge-service/internal/config"
	"rxbridge-service/internal/domain"
	"rxbridge-service/internal/events"
	"rxbridge-service/internal/repository"
	"rxbridge-service/internal/scan"
	"rxbridge-service/pkg/logger"

	"go.uber.org/zap"
)

func main() {
	importCSV := flag.String("import-csv", "", "load this inventory CSV into SQLITE_PATH and exit")
	level := flag.String("level", domain.AllLevels, "only print items with this alert level")
	search := flag.String("search", "", "only print items whose name contains this text")
	sortField := flag.String("sort", "", "sort field, e.g. days_of_supply")
	direction := flag.String("direction", "asc", "sort direction: asc or desc")
	asJSON := flag.Bool("json", false, "print the full scan result as JSON")
	flag.Parse()

	cfg := config.Load()
	appLogger := logger.New(cfg.Environment)
	defer appLogger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *importCSV != "" {
		if err := importInventory(ctx, *importCSV, cfg.SQLitePath, appLogger); err != nil {
			appLogger.Fatal("Import failed", zap.Error(err))
		}
		return
	}

	inventoryRepo, err := repository.NewInventoryRepository(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize inventory source", zap.Error(err))
	}
	if closer, ok := inventoryRepo.(io.Closer); ok {
		defer closer.Close()
	}

	service := scan.NewService(
		inventoryRepo,
		compliance.NewAggregator(compliance.NewSources(cfg, nil, appLogger), nil, appLogger),
		cache.NewInMemoryCache(),
		events.NewInMemoryEventPublisher(appLogger),
		nil,
		0,
		appLogger,
	)

	result, err := service.Run(ctx, "cli")
	if err != nil {
		appLogger.Fatal("Scan failed", zap.Error(err))
	}

	if *asJSON {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(result); err != nil {
			appLogger.Fatal("Failed to encode result", zap.Error(err))
		}
		return
	}

	items := domain.SearchByName(domain.FilterByLevel(result.Items(), *level), *search)
	if *sortField != "" {
		items, err = domain.SortByField(items, *sortField, domain.ParseSortDirection(*direction))
		if err != nil {
			appLogger.Fatal("Invalid sort field", zap.String("sort", *sortField), zap.Error(err))
		}
	}
	printReport(os.Stdout, result, items)
}

func importInventory(ctx context.Context, csvPath, dbPath string, logger *zap.Logger) error {
	items, err := repository.NewCSVInventoryRepository(csvPath).ListInventory(ctx)
	var rowErrs *repository.RowErrors
	if errors.As(err, &rowErrs) {
		for _, rowErr := range rowErrs.Rows {
			logger.Warn("Skipped inventory row", zap.String("drug_name", rowErr.DrugName), zap.String("reason", rowErr.Reason))
		}
		err = nil
	}
	if err != nil {
		return err
	}
	if err := repository.WriteSQLiteSnapshot(ctx, dbPath, items); err != nil {
		return err
	}
	logger.Info("Inventory imported", zap.String("csv", csvPath), zap.String("sqlite", dbPath), zap.Int("items", len(items)))
	return nil
}

func printReport(out io.Writer, result *scan.Result, items []domain.ClassifiedItem) {
	summary := result.Summary()
	fmt.Fprintf(out, "Scan %s: %d items checked, %d need attention, %d need immediate action\n",
		result.ID(), summary.TotalItemsChecked, summary.ItemsRequiringAttention, summary.ItemsRequiringImmediateAction)
	for _, l := range domain.AlertLevels {
		fmt.Fprintf(out, "  %-6s %d\n", l, summary.AlertBreakdown[l])
	}
	for _, w := range result.Warnings() {
		fmt.Fprintf(out, "WARNING: %s\n", w)
	}
	fmt.Fprintln(out)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DRUG\tSTOCK\tDAILY\tDAYS\tALERT\tFDA STATUS\tSEVERITY")
	for _, item := range items {
		fmt.Fprintf(tw, "%s\t%d\t%g\t%s\t%s\t%s\t%s\n",
			item.DrugName, item.CurrentStock, item.AverageDailyDispense, item.DaysOfSupply,
			item.AlertLevel, item.FDAStatus(), item.Severity)
	}
	tw.Flush()

	for _, e := range result.ItemErrors() {
		fmt.Fprintf(out, "ERROR: %s: %s\n", e.DrugName, e.Reason)
	}
}
