package domain

// ScanSummary aggregates one scan's classified items.
type ScanSummary struct {
	TotalItemsChecked             int                `json:"total_items_checked"`
	ItemsRequiringAttention       int                `json:"items_requiring_attention"`
	ItemsRequiringImmediateAction int                `json:"items_requiring_immediate_action"`
	AlertBreakdown                map[AlertLevel]int `json:"alert_breakdown"`
}

// Summarize counts items per alert level. Every level is present in the breakdown, so
// the breakdown always sums to TotalItemsChecked.
func Summarize(items []ClassifiedItem) ScanSummary {
	summary := ScanSummary{
		TotalItemsChecked: len(items),
		AlertBreakdown:    make(map[AlertLevel]int, len(AlertLevels)),
	}
	for _, l := range AlertLevels {
		summary.AlertBreakdown[l] = 0
	}

	for _, item := range items {
		level := item.AlertLevel
		if level == "" {
			level = AlertNone
		}
		summary.AlertBreakdown[level]++
		if level != AlertNone {
			summary.ItemsRequiringAttention++
		}
		if level.RequiresImmediateAction() {
			summary.ItemsRequiringImmediateAction++
		}
	}
	return summary
}
