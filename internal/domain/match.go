package domain

import (
	"regexp"
	"strings"
)

var (
	dosageFormSuffix = regexp.MustCompile(`\s+(injection|tablet|capsule|solution|powder|suspension|syrup|gel|cream|ointment).*$`)
	nonWord          = regexp.MustCompile(`[^\w\s]`)
	whitespaceRun    = regexp.MustCompile(`\s+`)
)

// minSubstringMatch is the shortest normalized name allowed to match by containment.
const minSubstringMatch = 3

// NormalizeDrugName lower-cases a drug name and strips the dosage form and punctuation so
// "Amoxicillin Capsules, 500mg" and "amoxicillin" compare equal.
func NormalizeDrugName(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	n = dosageFormSuffix.ReplaceAllString(n, "")
	n = nonWord.ReplaceAllString(n, " ")
	n = whitespaceRun.ReplaceAllString(n, " ")
	return strings.TrimSpace(n)
}

type indexedSignal struct {
	normalized string
	signal     ComplianceSignal
}

// SignalIndex matches inventory drug names against a fixed signal list.
type SignalIndex struct {
	entries []indexedSignal
}

// NewSignalIndex normalizes each signal name once. Signals with an empty name or no kind
// are ignored.
func NewSignalIndex(signals []ComplianceSignal) *SignalIndex {
	entries := make([]indexedSignal, 0, len(signals))
	for _, s := range signals {
		if s.Kind == SignalNone {
			continue
		}
		n := NormalizeDrugName(s.DrugName)
		if n == "" {
			continue
		}
		entries = append(entries, indexedSignal{normalized: n, signal: s})
	}
	return &SignalIndex{entries: entries}
}

// Len returns the number of usable signals.
func (idx *SignalIndex) Len() int {
	return len(idx.entries)
}

// Match returns the signal for a drug name or nil. Names match when equal after
// normalization or when one contains the other. When several signals match, the winner
// is chosen by kind (recall over discontinuation), then exact over partial match, then
// recall class, then list order.
func (idx *SignalIndex) Match(drugName string) *ComplianceSignal {
	target := NormalizeDrugName(drugName)
	if target == "" {
		return nil
	}

	var best *indexedSignal
	bestExact := false
	for i := range idx.entries {
		e := &idx.entries[i]
		exact := e.normalized == target
		if !exact && !containsEither(e.normalized, target) {
			continue
		}
		if best == nil || outranks(e, exact, best, bestExact) {
			best = e
			bestExact = exact
		}
	}
	if best == nil {
		return nil
	}
	s := best.signal
	return &s
}

func containsEither(a, b string) bool {
	shorter := a
	if len(b) < len(a) {
		shorter = b
	}
	if len(shorter) < minSubstringMatch {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// outranks reports whether candidate beats current. Ties keep current, which preserves
// list order.
func outranks(candidate *indexedSignal, candidateExact bool, current *indexedSignal, currentExact bool) bool {
	if kp, cp := kindPriority(candidate.signal.Kind), kindPriority(current.signal.Kind); kp != cp {
		return kp > cp
	}
	if candidateExact != currentExact {
		return candidateExact
	}
	return candidate.signal.recallClass().rank() > current.signal.recallClass().rank()
}

// MatchSignal is a convenience wrapper for one-off lookups.
func MatchSignal(drugName string, signals []ComplianceSignal) *ComplianceSignal {
	return NewSignalIndex(signals).Match(drugName)
}
