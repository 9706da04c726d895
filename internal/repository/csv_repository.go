package repository

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"rxbridge-service/internal/domain"
)

// Header names accepted for each inventory column. The second spelling matches the
// pharmacy system's export.
var inventoryColumns = map[string][]string{
	"drug_name":              {"drug_name", "name"},
	"current_stock":          {"current_stock", "quantity", "stock"},
	"average_daily_dispense": {"average_daily_dispense", "avg_daily_dispensed"},
}

// CSVInventoryRepository reads the snapshot from a CSV export on every call, so a
// replaced file is picked up by the next scan. Rows that do not parse are skipped and
// returned as *RowErrors next to the rows that did.
type CSVInventoryRepository struct {
	path string
}

func NewCSVInventoryRepository(path string) *CSVInventoryRepository {
	return &CSVInventoryRepository{path: path}
}

func (r *CSVInventoryRepository) ListInventory(ctx context.Context) ([]domain.InventoryItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	file, err := os.Open(r.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open inventory file %s: %w", r.path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read inventory CSV: %w", err)
	}
	if len(records) == 0 {
		return []domain.InventoryItem{}, nil
	}

	positions, err := locateColumns(records[0])
	if err != nil {
		return nil, err
	}

	items := make([]domain.InventoryItem, 0, len(records)-1)
	var rowErrs []*domain.ItemError
	for i, record := range records[1:] {
		if isBlank(record) {
			continue
		}
		item, rowErr := parseInventoryRecord(record, positions, i+2)
		if rowErr != nil {
			rowErrs = append(rowErrs, rowErr)
			continue
		}
		items = append(items, item)
	}
	if len(rowErrs) > 0 {
		return items, &RowErrors{Rows: rowErrs}
	}
	return items, nil
}

type columnPositions struct {
	name, stock, daily int
}

func locateColumns(header []string) (columnPositions, error) {
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}

	find := func(column string) (int, error) {
		for _, alias := range inventoryColumns[column] {
			if pos, ok := index[alias]; ok {
				return pos, nil
			}
		}
		return 0, fmt.Errorf("%w: inventory CSV header is missing %s, got %v", ErrMalformedSource, column, header)
	}

	var p columnPositions
	var err error
	if p.name, err = find("drug_name"); err != nil {
		return p, err
	}
	if p.stock, err = find("current_stock"); err != nil {
		return p, err
	}
	if p.daily, err = find("average_daily_dispense"); err != nil {
		return p, err
	}
	return p, nil
}

func parseInventoryRecord(record []string, p columnPositions, line int) (domain.InventoryItem, *domain.ItemError) {
	field := func(pos int) string {
		if pos >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[pos])
	}

	name := field(p.name)
	invalid := func(format string, args ...interface{}) *domain.ItemError {
		return &domain.ItemError{DrugName: name, Reason: fmt.Sprintf("CSV row %d: ", line) + fmt.Sprintf(format, args...)}
	}

	if name == "" {
		return domain.InventoryItem{}, invalid("drug name is empty")
	}
	stock, err := strconv.Atoi(field(p.stock))
	if err != nil {
		return domain.InventoryItem{}, invalid("current_stock %q is not a whole number", field(p.stock))
	}
	daily, err := strconv.ParseFloat(field(p.daily), 64)
	if err != nil {
		return domain.InventoryItem{}, invalid("average_daily_dispense %q is not a valid number", field(p.daily))
	}
	return domain.InventoryItem{DrugName: name, CurrentStock: stock, AverageDailyDispense: daily}, nil
}

func isBlank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
