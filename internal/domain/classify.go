package domain

import (
	"math"

	"github.com/shopspring/decimal"
)

const (
	// LowQuantityThreshold is the absolute on-hand floor that flags a shortage regardless
	// of how fast the drug moves.
	LowQuantityThreshold = 50
	// CriticalSupplyDays is the inclusive upper bound of the RED band (two weeks).
	CriticalSupplyDays = 14
	// WatchSupplyDays is the inclusive upper bound of the PURPLE band (eight weeks).
	WatchSupplyDays = 56
)

var maxFiniteDays = decimal.NewFromInt(math.MaxInt32)

// ComputeDaysOfSupply returns floor(stock / daily), or the infinite sentinel when daily is
// zero. Inputs must already be validated.
func ComputeDaysOfSupply(stock int, daily float64) DaysOfSupply {
	if daily == 0 {
		return InfiniteDays()
	}
	q := decimal.NewFromInt(int64(stock)).Div(decimal.NewFromFloat(daily)).Floor()
	if q.GreaterThan(maxFiniteDays) {
		return InfiniteDays()
	}
	return FiniteDays(int(q.IntPart()))
}

// Classify assigns exactly one alert level to an item. Rules are evaluated in order and
// the first match wins:
//
//	recall signal          -> PURPLE
//	discontinuation signal -> YELLOW
//	stock <= 50            -> BLUE
//	days <= 14             -> RED
//	days <= 56             -> PURPLE
//	otherwise              -> NONE
//
// A nil signal, or one with SignalNone, means no compliance fact is known.
func Classify(item InventoryItem, signal *ComplianceSignal) (ClassifiedItem, error) {
	if err := item.Validate(); err != nil {
		return ClassifiedItem{}, err
	}

	if signal != nil && signal.Kind == SignalNone {
		signal = nil
	}

	days := ComputeDaysOfSupply(item.CurrentStock, item.AverageDailyDispense)

	var level AlertLevel
	switch {
	case signal != nil && signal.Kind == SignalRecall:
		level = AlertPurple
	case signal != nil && signal.Kind == SignalDiscontinued:
		level = AlertYellow
	case item.CurrentStock <= LowQuantityThreshold:
		level = AlertBlue
	case days.AtMost(CriticalSupplyDays):
		level = AlertRed
	case days.AtMost(WatchSupplyDays):
		level = AlertPurple
	default:
		level = AlertNone
	}

	var attached *ComplianceSignal
	if signal != nil {
		s := *signal
		attached = &s
	}

	severity := ComputeSeverity(attached, days)
	return ClassifiedItem{
		ID:                      ItemID(item.DrugName),
		InventoryItem:           item,
		Signal:                  attached,
		DaysOfSupply:            days,
		AlertLevel:              level,
		RequiresImmediateAction: level.RequiresImmediateAction(),
		Severity:                severity,
		PriorityScore:           PriorityScore(level, attached.recallClass(), days),
	}, nil
}

// ClassifyBatch classifies every item against the signal list. Items with invalid data
// are reported in the returned error list and do not stop the rest of the batch.
func ClassifyBatch(items []InventoryItem, signals []ComplianceSignal) ([]ClassifiedItem, []*ItemError) {
	index := NewSignalIndex(signals)

	classified := make([]ClassifiedItem, 0, len(items))
	var errs []*ItemError
	for _, item := range items {
		c, err := Classify(item, index.Match(item.DrugName))
		if err != nil {
			if itemErr, ok := err.(*ItemError); ok {
				errs = append(errs, itemErr)
				continue
			}
			errs = append(errs, &ItemError{DrugName: item.DrugName, Reason: err.Error()})
			continue
		}
		classified = append(classified, c)
	}
	return classified, errs
}
