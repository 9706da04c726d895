package domain

import "strings"

// Severity is the coarse risk grade reported alongside the alert level.
type Severity string

const (
	SeverityCritical Severity = "Critical"
	SeverityHigh     Severity = "High"
	SeverityMedium   Severity = "Medium"
	SeverityLow      Severity = "Low"
)

// RecallClass is the regulatory recall grade, 1 being the most dangerous. 0 is unclassified.
type RecallClass int

// ParseRecallClass accepts "Class I", "class ii", "III" and similar spellings.
func ParseRecallClass(s string) RecallClass {
	s = strings.ToUpper(strings.TrimSpace(s))
	s = strings.TrimSpace(strings.TrimPrefix(s, "CLASS"))
	switch s {
	case "I", "1":
		return 1
	case "II", "2":
		return 2
	case "III", "3":
		return 3
	default:
		return 0
	}
}

// rank orders classes for tie-breaking; higher is more severe.
func (c RecallClass) rank() int {
	if c == 0 {
		return 0
	}
	return 4 - int(c)
}

func (s *ComplianceSignal) recallClass() RecallClass {
	if s == nil || s.Kind != SignalRecall {
		return 0
	}
	return ParseRecallClass(s.RecallClassification)
}

// ComputeSeverity grades an item from its signal and remaining supply.
func ComputeSeverity(signal *ComplianceSignal, days DaysOfSupply) Severity {
	if signal == nil {
		return SeverityLow
	}
	switch signal.Kind {
	case SignalRecall:
		switch signal.recallClass() {
		case 1:
			return SeverityCritical
		case 2:
			return SeverityHigh
		default:
			return SeverityMedium
		}
	case SignalDiscontinued:
		if strings.EqualFold(signal.Status, StatusInShortage) {
			switch {
			case days.AtMost(3):
				return SeverityCritical
			case days.AtMost(7):
				return SeverityHigh
			case days.AtMost(14):
				return SeverityMedium
			default:
				return SeverityLow
			}
		}
		switch {
		case days.AtMost(7):
			return SeverityHigh
		case days.AtMost(30):
			return SeverityMedium
		default:
			return SeverityLow
		}
	}
	return SeverityLow
}

// PriorityScore rates urgency from 1 to 10 for ordering recommendation work.
func PriorityScore(level AlertLevel, class RecallClass, days DaysOfSupply) int {
	score := 5

	switch level {
	case AlertRed:
		score += 3
	case AlertPurple:
		score += 2
	case AlertYellow:
		score++
	}

	switch class {
	case 1:
		score += 2
	case 2:
		score++
	}

	switch {
	case days.AtMost(7):
		score += 2
	case days.AtMost(30):
		score++
	}

	if score > 10 {
		return 10
	}
	if score < 1 {
		return 1
	}
	return score
}
