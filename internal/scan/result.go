package scan

import (
	"encoding/json"
	"time"

	"rxbridge-service/internal/domain"
)

// Result is the outcome of one scan. It is never modified after the scan finishes;
// accessors hand out copies.
type Result struct {
	id          string
	session     string
	startedAt   time.Time
	completedAt time.Time
	items       []domain.ClassifiedItem
	itemErrors  []domain.ItemError
	summary     domain.ScanSummary
	warnings    []string
}

func newResult(id, session string, started, completed time.Time, items []domain.ClassifiedItem,
	itemErrs []*domain.ItemError, warnings []error) *Result {
	r := &Result{
		id:          id,
		session:     session,
		startedAt:   started,
		completedAt: completed,
		items:       copyItems(items),
		summary:     domain.Summarize(items),
	}
	for _, e := range itemErrs {
		if e != nil {
			r.itemErrors = append(r.itemErrors, *e)
		}
	}
	for _, w := range warnings {
		r.warnings = append(r.warnings, w.Error())
	}
	return r
}

func (r *Result) ID() string             { return r.id }
func (r *Result) Session() string        { return r.session }
func (r *Result) StartedAt() time.Time   { return r.startedAt }
func (r *Result) CompletedAt() time.Time { return r.completedAt }

// Degraded reports whether a compliance source was unavailable during the scan.
func (r *Result) Degraded() bool { return len(r.warnings) > 0 }

func (r *Result) Items() []domain.ClassifiedItem {
	return copyItems(r.items)
}

func (r *Result) ItemErrors() []domain.ItemError {
	return append([]domain.ItemError(nil), r.itemErrors...)
}

func (r *Result) Warnings() []string {
	return append([]string(nil), r.warnings...)
}

func (r *Result) Summary() domain.ScanSummary {
	s := r.summary
	s.AlertBreakdown = make(map[domain.AlertLevel]int, len(r.summary.AlertBreakdown))
	for k, v := range r.summary.AlertBreakdown {
		s.AlertBreakdown[k] = v
	}
	return s
}

// Item finds a classified item by id or case-insensitive drug name.
func (r *Result) Item(idOrName string) (domain.ClassifiedItem, bool) {
	for _, item := range r.items {
		if item.ID == idOrName || equalFold(item.DrugName, idOrName) {
			return copyItems([]domain.ClassifiedItem{item})[0], true
		}
	}
	return domain.ClassifiedItem{}, false
}

func copyItems(items []domain.ClassifiedItem) []domain.ClassifiedItem {
	out := make([]domain.ClassifiedItem, len(items))
	copy(out, items)
	for i := range out {
		if out[i].Signal != nil {
			s := *out[i].Signal
			out[i].Signal = &s
		}
	}
	return out
}

// snapshot is the cached form of a Result.
type snapshot struct {
	ID          string                  `json:"scan_id"`
	Session     string                  `json:"session"`
	StartedAt   time.Time               `json:"started_at"`
	CompletedAt time.Time               `json:"completed_at"`
	Items       []domain.ClassifiedItem `json:"items"`
	ItemErrors  []domain.ItemError      `json:"item_errors,omitempty"`
	Summary     domain.ScanSummary      `json:"summary"`
	Warnings    []string                `json:"warnings,omitempty"`
}

func (r *Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(snapshot{
		ID:          r.id,
		Session:     r.session,
		StartedAt:   r.startedAt,
		CompletedAt: r.completedAt,
		Items:       r.items,
		ItemErrors:  r.itemErrors,
		Summary:     r.summary,
		Warnings:    r.warnings,
	})
}

func (r *Result) UnmarshalJSON(data []byte) error {
	var s snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*r = Result{
		id:          s.ID,
		session:     s.Session,
		startedAt:   s.StartedAt,
		completedAt: s.CompletedAt,
		items:       s.Items,
		itemErrors:  s.ItemErrors,
		summary:     s.Summary,
		warnings:    s.Warnings,
	}
	return nil
}
