package repository

import (
	"context"
	"fmt"
	"sync"

	"rxbridge-service/internal/domain"
)

// InventoryRepository provides the pharmacy inventory snapshot a scan classifies. A source
// that skips unreadable rows returns the rest together with a *RowErrors.
type InventoryRepository interface {
	ListInventory(ctx context.Context) ([]domain.InventoryItem, error)
}

// InMemoryInventoryRepository serves a fixed snapshot. Used by tests and demo mode.
type InMemoryInventoryRepository struct {
	mu    sync.RWMutex
	items []domain.InventoryItem
}

func NewInMemoryInventoryRepository(items ...domain.InventoryItem) *InMemoryInventoryRepository {
	return &InMemoryInventoryRepository{
		items: append([]domain.InventoryItem(nil), items...),
	}
}

func (r *InMemoryInventoryRepository) ListInventory(ctx context.Context) ([]domain.InventoryItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]domain.InventoryItem(nil), r.items...), nil
}

// Replace swaps the whole snapshot.
func (r *InMemoryInventoryRepository) Replace(items []domain.InventoryItem) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append([]domain.InventoryItem(nil), items...)
}

// DemoInventory is the sample shelf used when no inventory source is configured.
func DemoInventory() []domain.InventoryItem {
	return []domain.InventoryItem{
		{DrugName: "Lisinopril 10mg Tablets", CurrentStock: 120, AverageDailyDispense: 15},
		{DrugName: "Metformin 500mg Tablets", CurrentStock: 450, AverageDailyDispense: 32},
		{DrugName: "Amoxicillin 500mg Capsules", CurrentStock: 89, AverageDailyDispense: 22},
		{DrugName: "Insulin Glargine", CurrentStock: 1000, AverageDailyDispense: 0},
		{DrugName: "Albuterol Inhaler", CurrentStock: 30, AverageDailyDispense: 5},
		{DrugName: "Atorvastatin 20mg Tablets", CurrentStock: 900, AverageDailyDispense: 25},
		{DrugName: "Sertraline 50mg Tablets", CurrentStock: 2400, AverageDailyDispense: 18},
		{DrugName: "Amlodipine 5mg Tablets", CurrentStock: 640, AverageDailyDispense: 9.5},
	}
}

var (
	ErrMalformedSource   = &RepositoryError{Message: "malformed inventory source"}
	ErrUnknownSourceKind = &RepositoryError{Message: "unknown inventory source"}
)

type RepositoryError struct {
	Message string
}

func (e *RepositoryError) Error() string {
	return e.Message
}

// RowErrors is returned together with the rows that did parse when some rows of a source
// could not be read. Callers may classify the returned items and report Rows per item.
type RowErrors struct {
	Rows []*domain.ItemError
}

func (e *RowErrors) Error() string {
	return fmt.Sprintf("%s: %d unreadable rows", ErrMalformedSource.Message, len(e.Rows))
}

func (e *RowErrors) Unwrap() error {
	return ErrMalformedSource
}
