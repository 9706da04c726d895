package compliance

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"rxbridge-service/internal/domain"

	"go.uber.org/zap"
)

// ShortageCSV reads an export of the FDA drug shortage list with generic_name and status
// columns. Resolved shortages produce no signal.
type ShortageCSV struct {
	path   string
	logger *zap.Logger
}

func NewShortageCSV(path string, logger *zap.Logger) *ShortageCSV {
	return &ShortageCSV{path: path, logger: logger}
}

func (s *ShortageCSV) Name() string { return SourceShortageDB }

func (s *ShortageCSV) Signals(ctx context.Context) ([]domain.ComplianceSignal, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	file, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open shortage file %s: %w", s.path, err)
	}
	defer file.Close()

	signals, err := parseShortages(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read shortage file %s: %w", s.path, err)
	}

	s.logger.Info("Loaded shortage signals", zap.String("path", s.path), zap.Int("signals", len(signals)))
	return signals, nil
}

func parseShortages(r io.Reader) ([]domain.ComplianceSignal, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	nameCol, statusCol := -1, -1
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "generic_name", "drug_name", "name":
			nameCol = i
		case "status":
			statusCol = i
		}
	}
	if nameCol < 0 || statusCol < 0 {
		return nil, errors.New("missing generic_name or status column")
	}

	var signals []domain.ComplianceSignal
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if nameCol >= len(record) || statusCol >= len(record) {
			continue
		}

		name := strings.TrimSpace(record[nameCol])
		status := strings.TrimSpace(record[statusCol])
		kind := domain.KindForStatus(status)
		if name == "" || kind != domain.SignalDiscontinued {
			continue
		}
		signals = append(signals, domain.ComplianceSignal{
			DrugName: name,
			Kind:     kind,
			Status:   status,
			Source:   SourceShortageDB,
		})
	}
	return signals, nil
}
