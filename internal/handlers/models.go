package handlers

import (
	"time"

	"rxbridge-service/internal/domain"
	"rxbridge-service/internal/recommendation"
	"rxbridge-service/internal/scan"
)

const statusSuccess = "success"

// ItemResponse represents one classified inventory item
// @Description Classified inventory item with alert level and supply
type ItemResponse struct {
	// Stable item identifier derived from the drug name
	ID string `json:"id" example:"4c5a0d6e-5b2f-5d8a-9a51-7f0c2b1e9d33"`

	DrugName             string  `json:"drug_name" example:"Lisinopril 10mg Tablets"`
	CurrentStock         int     `json:"current_stock" example:"120"`
	AverageDailyDispense float64 `json:"average_daily_dispense" example:"15"`

	// Whole days of supply, or "infinite" when nothing is dispensed
	DaysOfSupply domain.DaysOfSupply `json:"days_of_supply" swaggertype:"string" example:"8"`

	// One of RED, PURPLE, YELLOW, BLUE, NONE
	AlertLevel              domain.AlertLevel `json:"alert_level" example:"RED"`
	FDAStatus               string            `json:"fda_status" example:"Low Stock Only"`
	RequiresImmediateAction bool              `json:"requires_immediate_action" example:"true"`
	Severity                domain.Severity   `json:"severity" example:"Low"`
	PriorityScore           int               `json:"priority_score" example:"8"`

	RecallReason         string `json:"recall_reason,omitempty" example:"NDMA impurity"`
	RecallClassification string `json:"recall_classification,omitempty" example:"Class II"`
}

// SummaryResponse represents the scan totals
// @Description Counts of classified items per alert level
type SummaryResponse struct {
	TotalItemsChecked             int            `json:"total_items_checked" example:"8"`
	ItemsRequiringAttention       int            `json:"items_requiring_attention" example:"6"`
	ItemsRequiringImmediateAction int            `json:"items_requiring_immediate_action" example:"4"`
	AlertBreakdown                map[string]int `json:"alert_breakdown"`
}

// ItemErrorResponse describes an inventory row that could not be classified
type ItemErrorResponse struct {
	DrugName string `json:"drug_name" example:"Warfarin 5mg"`
	Reason   string `json:"reason" example:"current_stock must not be negative"`
}

// ScanResponse represents the result of an inventory scan
// @Description Scan result split into recalls (RED, PURPLE) and other alerts (YELLOW, BLUE)
type ScanResponse struct {
	Status      string              `json:"status" example:"success"`
	ScanID      string              `json:"scan_id" example:"2f1d4c9a-7e3b-4a61-9d2c-8b5e0f1a3c47"`
	ScannedAt   time.Time           `json:"scanned_at" example:"2024-03-01T09:30:00Z"`
	Summary     SummaryResponse     `json:"summary"`
	Recalls     []ItemResponse      `json:"recalls"`
	OtherAlerts []ItemResponse      `json:"other_alerts"`
	Errors      []ItemErrorResponse `json:"errors"`

	// True when a compliance source could not be reached; warnings say which
	Degraded bool     `json:"degraded" example:"false"`
	Warnings []string `json:"warnings,omitempty"`
}

// ItemsResponse represents a filtered list of classified items
// @Description Flat item list from the latest scan
type ItemsResponse struct {
	Status string         `json:"status" example:"success"`
	ScanID string         `json:"scan_id" example:"2f1d4c9a-7e3b-4a61-9d2c-8b5e0f1a3c47"`
	Total  int            `json:"total" example:"3"`
	Items  []ItemResponse `json:"items"`
}

// RecommendationResponse wraps the recommendation for one item
type RecommendationResponse struct {
	Status         string                        `json:"status" example:"success"`
	Item           ItemResponse                  `json:"item"`
	Recommendation recommendation.Recommendation `json:"recommendation"`
}

// MessageResponse is a plain success acknowledgement
type MessageResponse struct {
	Status  string `json:"status" example:"success"`
	Message string `json:"message" example:"cached scan cleared"`
}

// HealthResponse represents the health check payload
type HealthResponse struct {
	Status  string `json:"status" example:"ok"`
	Service string `json:"service" example:"rxbridge-service"`
}

func toItemResponse(item domain.ClassifiedItem) ItemResponse {
	return ItemResponse{
		ID:                      item.ID,
		DrugName:                item.DrugName,
		CurrentStock:            item.CurrentStock,
		AverageDailyDispense:    item.AverageDailyDispense,
		DaysOfSupply:            item.DaysOfSupply,
		AlertLevel:              item.AlertLevel,
		FDAStatus:               item.FDAStatus(),
		RequiresImmediateAction: item.RequiresImmediateAction,
		Severity:                item.Severity,
		PriorityScore:           item.PriorityScore,
		RecallReason:            item.RecallReason(),
		RecallClassification:    item.RecallClassification(),
	}
}

func toItemResponses(items []domain.ClassifiedItem) []ItemResponse {
	out := make([]ItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, toItemResponse(item))
	}
	return out
}

func toSummaryResponse(s domain.ScanSummary) SummaryResponse {
	breakdown := make(map[string]int, len(domain.AlertLevels))
	for _, level := range domain.AlertLevels {
		breakdown[string(level)] = s.AlertBreakdown[level]
	}
	return SummaryResponse{
		TotalItemsChecked:             s.TotalItemsChecked,
		ItemsRequiringAttention:       s.ItemsRequiringAttention,
		ItemsRequiringImmediateAction: s.ItemsRequiringImmediateAction,
		AlertBreakdown:                breakdown,
	}
}

func toScanResponse(result *scan.Result) ScanResponse {
	resp := ScanResponse{
		Status:      statusSuccess,
		ScanID:      result.ID(),
		ScannedAt:   result.CompletedAt(),
		Summary:     toSummaryResponse(result.Summary()),
		Recalls:     make([]ItemResponse, 0),
		OtherAlerts: make([]ItemResponse, 0),
		Errors:      make([]ItemErrorResponse, 0),
		Degraded:    result.Degraded(),
		Warnings:    result.Warnings(),
	}

	for _, item := range domain.SortByUrgency(result.Items()) {
		switch item.AlertLevel {
		case domain.AlertRed, domain.AlertPurple:
			resp.Recalls = append(resp.Recalls, toItemResponse(item))
		case domain.AlertYellow, domain.AlertBlue:
			resp.OtherAlerts = append(resp.OtherAlerts, toItemResponse(item))
		}
	}
	for _, e := range result.ItemErrors() {
		resp.Errors = append(resp.Errors, ItemErrorResponse{DrugName: e.DrugName, Reason: e.Reason})
	}
	return resp
}
