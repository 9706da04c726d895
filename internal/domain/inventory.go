package domain

import (
	"math"
	"strings"

	"github.com/google/uuid"
)

// itemNamespace seeds the stable per-drug identifiers handed to the dashboard.
var itemNamespace = uuid.MustParse("6f1c5a8e-3b7d-4c2a-9e61-0d4b8f2a7c35")

// InventoryItem is one pharmacy stock-keeping unit as read from the inventory source.
type InventoryItem struct {
	DrugName             string  `json:"drug_name"`
	CurrentStock         int     `json:"current_stock"`
	AverageDailyDispense float64 `json:"average_daily_dispense"`
}

// Validate rejects negative or non-finite stock numbers.
func (i InventoryItem) Validate() error {
	if i.CurrentStock < 0 {
		return newInvalidData(i.DrugName, "current_stock must not be negative")
	}
	if math.IsNaN(i.AverageDailyDispense) || math.IsInf(i.AverageDailyDispense, 0) {
		return newInvalidData(i.DrugName, "average_daily_dispense must be a finite number")
	}
	if i.AverageDailyDispense < 0 {
		return newInvalidData(i.DrugName, "average_daily_dispense must not be negative")
	}
	return nil
}

// ItemID returns the stable identifier for a drug name. The same name always yields the
// same id so list diffing works across scans.
func ItemID(drugName string) string {
	key := strings.ToLower(strings.TrimSpace(drugName))
	return uuid.NewSHA1(itemNamespace, []byte(key)).String()
}

// SignalKind is the type of compliance fact reported for a drug.
type SignalKind string

const (
	SignalNone         SignalKind = ""
	SignalRecall       SignalKind = "RECALL"
	SignalDiscontinued SignalKind = "DISCONTINUED"
)

// FDA status texts as reported by the shortage list and recall feed.
const (
	StatusRecalled        = "Recalled"
	StatusInShortage      = "Currently in Shortage"
	StatusDiscontinuation = "Discontinuation"
	StatusResolved        = "Resolved"
	StatusLowStockOnly    = "Low Stock Only"
	StatusNoIssues        = "No Issues"
)

// ComplianceSignal is an externally sourced fact about a drug.
type ComplianceSignal struct {
	DrugName             string     `json:"drug_name"`
	Kind                 SignalKind `json:"kind"`
	RecallClassification string     `json:"recall_classification,omitempty"`
	Reason               string     `json:"reason,omitempty"`
	Status               string     `json:"status,omitempty"`
	Source               string     `json:"source,omitempty"`
}

// KindForStatus maps an FDA status text onto a signal kind.
func KindForStatus(status string) SignalKind {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "recalled":
		return SignalRecall
	case "currently in shortage", "discontinuation", "discontinued":
		return SignalDiscontinued
	default:
		return SignalNone
	}
}

// StatusPriority orders FDA statuses when several sources report the same drug.
func StatusPriority(status string) int {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "recalled":
		return 3
	case "currently in shortage":
		return 2
	case "discontinuation", "discontinued":
		return 1
	default:
		return 0
	}
}

// kindPriority ranks kinds for tie-breaking between matching signals.
func kindPriority(k SignalKind) int {
	switch k {
	case SignalRecall:
		return 2
	case SignalDiscontinued:
		return 1
	default:
		return 0
	}
}

// ClassifiedItem is an InventoryItem joined with at most one signal plus the computed fields.
type ClassifiedItem struct {
	ID string
	InventoryItem
	Signal                  *ComplianceSignal
	DaysOfSupply            DaysOfSupply
	AlertLevel              AlertLevel
	RequiresImmediateAction bool
	Severity                Severity
	PriorityScore           int
}

// FDAStatus is the status text shown next to the item.
func (c ClassifiedItem) FDAStatus() string {
	if c.Signal != nil && c.Signal.Kind != SignalNone {
		if c.Signal.Status != "" {
			return c.Signal.Status
		}
		if c.Signal.Kind == SignalRecall {
			return StatusRecalled
		}
		return StatusDiscontinuation
	}
	if c.AlertLevel != AlertNone {
		return StatusLowStockOnly
	}
	return StatusNoIssues
}

// RecallClassification returns the recall class or "" when the item is not recalled.
func (c ClassifiedItem) RecallClassification() string {
	if c.Signal == nil || c.Signal.Kind != SignalRecall {
		return ""
	}
	return c.Signal.RecallClassification
}

// RecallReason returns the signal reason, if any.
func (c ClassifiedItem) RecallReason() string {
	if c.Signal == nil {
		return ""
	}
	return c.Signal.Reason
}

// Domain errors
var (
	ErrInvalidInventoryData = &DomainError{Message: "invalid inventory data"}
	ErrUnknownSortField     = &DomainError{Message: "unknown sort field"}
	ErrUnknownAlertLevel    = &DomainError{Message: "unknown alert level"}
)

// DomainError represents a domain-level error
type DomainError struct {
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// ItemError reports why one inventory item could not be classified.
type ItemError struct {
	DrugName string
	Reason   string
}

func (e *ItemError) Error() string {
	return ErrInvalidInventoryData.Message + ": " + e.DrugName + ": " + e.Reason
}

func (e *ItemError) Unwrap() error {
	return ErrInvalidInventoryData
}

func newInvalidData(drugName, reason string) error {
	return &ItemError{DrugName: drugName, Reason: reason}
}
