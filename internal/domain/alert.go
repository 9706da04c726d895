package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// AlertLevel is the mutually exclusive severity tag assigned to every classified item.
type AlertLevel string

const (
	AlertRed    AlertLevel = "RED"
	AlertPurple AlertLevel = "PURPLE"
	AlertYellow AlertLevel = "YELLOW"
	AlertBlue   AlertLevel = "BLUE"
	AlertNone   AlertLevel = "NONE"
)

// AlertLevels lists every level from most to least urgent.
var AlertLevels = []AlertLevel{AlertRed, AlertPurple, AlertYellow, AlertBlue, AlertNone}

// Urgency ranks a level; higher is more urgent.
func (l AlertLevel) Urgency() int {
	switch l {
	case AlertRed:
		return 4
	case AlertPurple:
		return 3
	case AlertYellow:
		return 2
	case AlertBlue:
		return 1
	default:
		return 0
	}
}

// RequiresImmediateAction is true for RED and PURPLE.
func (l AlertLevel) RequiresImmediateAction() bool {
	return l == AlertRed || l == AlertPurple
}

// ParseAlertLevel parses a level tag case-insensitively.
func ParseAlertLevel(s string) (AlertLevel, error) {
	candidate := AlertLevel(strings.ToUpper(strings.TrimSpace(s)))
	for _, l := range AlertLevels {
		if l == candidate {
			return l, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAlertLevel, s)
}

const infiniteLabel = "infinite"

// DaysOfSupply is a whole number of days or the infinite sentinel used when nothing is
// dispensed. The zero value is a finite zero.
type DaysOfSupply struct {
	days     int
	infinite bool
}

// FiniteDays returns a finite days-of-supply value.
func FiniteDays(days int) DaysOfSupply {
	return DaysOfSupply{days: days}
}

// InfiniteDays returns the sentinel for zero consumption.
func InfiniteDays() DaysOfSupply {
	return DaysOfSupply{infinite: true}
}

func (d DaysOfSupply) IsInfinite() bool {
	return d.infinite
}

// Days returns the finite value, or math.MaxInt for the sentinel.
func (d DaysOfSupply) Days() int {
	if d.infinite {
		return math.MaxInt
	}
	return d.days
}

// AtMost reports whether the supply is finite and no more than n days.
func (d DaysOfSupply) AtMost(n int) bool {
	return !d.infinite && d.days <= n
}

// Compare returns -1, 0 or 1. Infinite is greater than every finite value.
func (d DaysOfSupply) Compare(o DaysOfSupply) int {
	switch {
	case d.infinite && o.infinite:
		return 0
	case d.infinite:
		return 1
	case o.infinite:
		return -1
	case d.days < o.days:
		return -1
	case d.days > o.days:
		return 1
	default:
		return 0
	}
}

func (d DaysOfSupply) String() string {
	if d.infinite {
		return infiniteLabel
	}
	return strconv.Itoa(d.days)
}

// MarshalJSON encodes finite values as numbers and the sentinel as "infinite".
func (d DaysOfSupply) MarshalJSON() ([]byte, error) {
	if d.infinite {
		return []byte(`"` + infiniteLabel + `"`), nil
	}
	return []byte(strconv.Itoa(d.days)), nil
}

func (d *DaysOfSupply) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if !strings.EqualFold(s, infiniteLabel) {
			return fmt.Errorf("days_of_supply: unexpected value %q", s)
		}
		*d = InfiniteDays()
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("days_of_supply: %w", err)
	}
	*d = FiniteDays(n)
	return nil
}
