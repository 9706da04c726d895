package domain

import (
	"fmt"
	"sort"
	"strings"
)

// AllLevels selects every item in FilterByLevel.
const AllLevels = "all"

// Sortable fields.
const (
	FieldDrugName             = "drug_name"
	FieldCurrentStock         = "current_stock"
	FieldAverageDailyDispense = "average_daily_dispense"
	FieldDaysOfSupply         = "days_of_supply"
	FieldAlertLevel           = "alert_level"
	FieldFDAStatus            = "fda_status"
	FieldSeverity             = "severity"
)

// SortDirection is asc or desc.
type SortDirection string

const (
	Ascending  SortDirection = "asc"
	Descending SortDirection = "desc"
)

// ParseSortDirection defaults to ascending for anything but "desc"/"descending".
func ParseSortDirection(s string) SortDirection {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "desc", "descending":
		return Descending
	default:
		return Ascending
	}
}

// FilterByLevel returns the items tagged with level, compared case-insensitively. "all"
// or an empty level returns a copy of every item.
func FilterByLevel(items []ClassifiedItem, level string) []ClassifiedItem {
	level = strings.TrimSpace(level)
	if level == "" || strings.EqualFold(level, AllLevels) {
		return append([]ClassifiedItem(nil), items...)
	}
	out := make([]ClassifiedItem, 0, len(items))
	for _, item := range items {
		if strings.EqualFold(string(item.AlertLevel), level) {
			out = append(out, item)
		}
	}
	return out
}

// SearchByName returns the items whose drug name contains substr, ignoring case.
func SearchByName(items []ClassifiedItem, substr string) []ClassifiedItem {
	needle := strings.ToLower(strings.TrimSpace(substr))
	if needle == "" {
		return append([]ClassifiedItem(nil), items...)
	}
	out := make([]ClassifiedItem, 0, len(items))
	for _, item := range items {
		if strings.Contains(strings.ToLower(item.DrugName), needle) {
			out = append(out, item)
		}
	}
	return out
}

// SortByField returns a stably sorted copy. Numeric fields compare numerically with the
// infinite days-of-supply sentinel after every finite value; other fields compare as
// case-insensitive strings. Equal keys keep their input order in both directions.
func SortByField(items []ClassifiedItem, field string, dir SortDirection) ([]ClassifiedItem, error) {
	cmp, err := comparatorFor(field)
	if err != nil {
		return nil, err
	}
	out := append([]ClassifiedItem(nil), items...)
	sort.SliceStable(out, func(i, j int) bool {
		c := cmp(out[i], out[j])
		if dir == Descending {
			return c > 0
		}
		return c < 0
	})
	return out, nil
}

type comparator func(a, b ClassifiedItem) int

func comparatorFor(field string) (comparator, error) {
	switch strings.ToLower(strings.TrimSpace(field)) {
	case FieldCurrentStock:
		return func(a, b ClassifiedItem) int { return compareInts(a.CurrentStock, b.CurrentStock) }, nil
	case FieldAverageDailyDispense:
		return func(a, b ClassifiedItem) int {
			return compareFloats(a.AverageDailyDispense, b.AverageDailyDispense)
		}, nil
	case FieldDaysOfSupply:
		return func(a, b ClassifiedItem) int { return a.DaysOfSupply.Compare(b.DaysOfSupply) }, nil
	case FieldDrugName:
		return stringComparator(func(c ClassifiedItem) string { return c.DrugName }), nil
	case FieldAlertLevel:
		return stringComparator(func(c ClassifiedItem) string { return string(c.AlertLevel) }), nil
	case FieldFDAStatus:
		return stringComparator(func(c ClassifiedItem) string { return c.FDAStatus() }), nil
	case FieldSeverity:
		return stringComparator(func(c ClassifiedItem) string { return string(c.Severity) }), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSortField, field)
	}
}

func stringComparator(key func(ClassifiedItem) string) comparator {
	return func(a, b ClassifiedItem) int {
		return strings.Compare(strings.ToLower(key(a)), strings.ToLower(key(b)))
	}
}

func compareInts(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareFloats(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// SortByUrgency returns a stably sorted copy with the most urgent alert level first and,
// within a level, the fewest days of supply first.
func SortByUrgency(items []ClassifiedItem) []ClassifiedItem {
	out := append([]ClassifiedItem(nil), items...)
	sort.SliceStable(out, func(i, j int) bool {
		if ui, uj := out[i].AlertLevel.Urgency(), out[j].AlertLevel.Urgency(); ui != uj {
			return ui > uj
		}
		return out[i].DaysOfSupply.Compare(out[j].DaysOfSupply) < 0
	})
	return out
}
