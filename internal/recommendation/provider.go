package recommendation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"rxbridge-service/internal/domain"

	"go.uber.org/zap"
)

// Recommendation is the pharmacist-facing advice for one classified item.
type Recommendation struct {
	DrugName         string            `json:"drug_name"`
	AlertLevel       domain.AlertLevel `json:"alert_level"`
	RiskLevel        string            `json:"risk_level"`
	RiskAssessment   string            `json:"risk_assessment"`
	ImmediateActions []string          `json:"immediate_actions"`
	Alternatives     []string          `json:"alternatives"`
	Timeline         string            `json:"timeline"`
	PriorityScore    int               `json:"priority_score"`
	ManualReview     bool              `json:"manual_review"`
}

// Provider produces recommendations. Implementations may call out to other systems.
type Provider interface {
	Recommend(ctx context.Context, item domain.ClassifiedItem) (Recommendation, error)
}

var ErrUnsupportedItem = errors.New("item cannot be assessed")

const maxAlternatives = 4

var riskLevels = map[domain.AlertLevel]string{
	domain.AlertRed:    "CRITICAL",
	domain.AlertPurple: "HIGH",
	domain.AlertYellow: "MODERATE",
	domain.AlertBlue:   "LOW",
	domain.AlertNone:   "NONE",
}

var recallClassDescriptions = map[domain.RecallClass]string{
	1: "Life-threatening situation, immediate action required",
	2: "Temporary or reversible health consequences, prompt action needed",
	3: "Remote possibility of adverse health consequences, monitor closely",
}

// RuleBasedProvider derives recommendations from the alert level, recall class and
// remaining supply. Output depends only on the item.
type RuleBasedProvider struct{}

func NewRuleBasedProvider() *RuleBasedProvider {
	return &RuleBasedProvider{}
}

func (p *RuleBasedProvider) Recommend(ctx context.Context, item domain.ClassifiedItem) (Recommendation, error) {
	if err := ctx.Err(); err != nil {
		return Recommendation{}, err
	}
	risk, ok := riskLevels[item.AlertLevel]
	if !ok || strings.TrimSpace(item.DrugName) == "" {
		return Recommendation{}, fmt.Errorf("%w: %q with alert level %q", ErrUnsupportedItem, item.DrugName, item.AlertLevel)
	}

	rec := Recommendation{
		DrugName:      item.DrugName,
		AlertLevel:    item.AlertLevel,
		RiskLevel:     risk,
		PriorityScore: item.PriorityScore,
	}
	class := domain.ParseRecallClass(item.RecallClassification())
	days := item.DaysOfSupply

	switch item.AlertLevel {
	case domain.AlertRed:
		rec.RiskAssessment = fmt.Sprintf("CRITICAL RISK: %s has %s of supply left and may run out before it can be restocked.",
			item.DrugName, describeDays(days))
		rec.ImmediateActions = []string{
			"Place an emergency order with the primary wholesaler",
			"Check availability with secondary suppliers",
			"Reserve remaining stock for patients with active prescriptions",
			"Notify the pharmacy supervisor",
		}
		if days.AtMost(7) {
			rec.ImmediateActions = append(rec.ImmediateActions, "Limit fills to a 7 day supply until stock recovers")
		}
		rec.Alternatives = alternativesFor(item.DrugName)
		rec.Timeline = "IMMEDIATE - complete within 2-4 hours"

	case domain.AlertPurple:
		if item.Signal != nil && item.Signal.Kind == domain.SignalRecall {
			desc, known := recallClassDescriptions[class]
			if !known {
				desc = "FDA recall"
			}
			rec.RiskAssessment = fmt.Sprintf("HIGH RISK: %s has been recalled by the FDA. %s. Current inventory should be quarantined.",
				item.DrugName, desc)
			rec.ImmediateActions = []string{
				"Quarantine all affected inventory",
				"Check lot numbers against the FDA recall notice",
				"Stop dispensing affected lots",
				"Contact patients who received recalled lots",
				"Complete the FDA recall response documentation",
			}
			switch class {
			case 1:
				rec.ImmediateActions = append(rec.ImmediateActions,
					"Treat as a medical emergency and contact patients within 24 hours",
					"Coordinate with prescribers for patient monitoring")
				rec.Timeline = "URGENT - complete within 24 hours"
			case 2:
				rec.ImmediateActions = append(rec.ImmediateActions, "Contact affected patients within 48-72 hours")
				rec.Timeline = "HIGH PRIORITY - complete within 48-72 hours"
			default:
				rec.Timeline = "HIGH PRIORITY - complete within 48-72 hours"
			}
		} else {
			rec.RiskAssessment = fmt.Sprintf("HIGH RISK: %s has %s of supply left, below the reorder window.",
				item.DrugName, describeDays(days))
			rec.ImmediateActions = []string{
				"Place a replenishment order today",
				"Review dispensing trend for the last 30 days",
				"Confirm supplier lead time",
			}
			rec.Timeline = "Within 48 hours"
		}
		rec.Alternatives = alternativesFor(item.DrugName)

	case domain.AlertYellow:
		rec.RiskAssessment = fmt.Sprintf("MODERATE RISK: %s is experiencing supply challenges (%s). Current %s of supply requires proactive management.",
			item.DrugName, strings.ToLower(item.FDAStatus()), describeDays(days))
		rec.ImmediateActions = []string{
			"Audit current inventory levels and usage patterns",
			"Contact alternative suppliers for availability",
			"Identify suitable therapeutic alternatives",
			"Notify prescribers of potential supply constraints",
		}
		if days.AtMost(14) {
			rec.ImmediateActions = append(rec.ImmediateActions,
				"Dispense conservatively (10-14 day supplies)",
				"Expedite orders from alternative sources")
		}
		if days.AtMost(7) {
			rec.ImmediateActions = append(rec.ImmediateActions,
				"Activate emergency procurement procedures",
				"Begin transitioning patients to alternatives")
		}
		rec.Alternatives = alternativesFor(item.DrugName)
		rec.Timeline = fmt.Sprintf("Within 7-10 days (current supply: %s)", describeDays(days))

	case domain.AlertBlue:
		rec.RiskAssessment = fmt.Sprintf("LOW RISK: %s is down to %d units. Proactive monitoring recommended.",
			item.DrugName, item.CurrentStock)
		rec.ImmediateActions = []string{
			"Monitor inventory levels more closely",
			"Review usage trends and reorder points",
			"Watch FDA announcements for this medication",
		}
		if days.AtMost(30) {
			rec.ImmediateActions = append(rec.ImmediateActions, "Consider increasing safety stock levels")
		}
		rec.Alternatives = []string{"Continue current management, no alternatives needed at this time"}
		rec.Timeline = "Monitor ongoing - review weekly"

	default:
		rec.RiskAssessment = fmt.Sprintf("%s has no compliance issues and adequate supply.", item.DrugName)
		rec.ImmediateActions = []string{}
		rec.Alternatives = []string{}
		rec.Timeline = "No action needed"
	}

	return rec, nil
}

// ManualReview is returned when a provider cannot produce a recommendation.
func ManualReview(item domain.ClassifiedItem) Recommendation {
	risk := riskLevels[item.AlertLevel]
	if risk == "" {
		risk = "UNKNOWN"
	}
	return Recommendation{
		DrugName:       item.DrugName,
		AlertLevel:     item.AlertLevel,
		RiskLevel:      risk,
		RiskAssessment: fmt.Sprintf("Unable to generate a detailed risk assessment for %s. Manual review required.", item.DrugName),
		ImmediateActions: []string{
			"Review drug status manually with the pharmacy supervisor",
			"Check FDA databases for the latest information",
			"Consult a clinical pharmacist for guidance",
			"Document the review and decisions made",
		},
		Alternatives: []string{
			"Consult the prescriber about alternative medications",
			"Contact a clinical pharmacist for therapeutic alternatives",
		},
		Timeline:      "Within 24 hours - manual review required",
		PriorityScore: 5,
		ManualReview:  true,
	}
}

// FallbackProvider wraps a provider and substitutes a manual-review recommendation for
// any failure, so callers always get an answer.
type FallbackProvider struct {
	next   Provider
	logger *zap.Logger
}

func NewFallbackProvider(next Provider, logger *zap.Logger) *FallbackProvider {
	return &FallbackProvider{next: next, logger: logger}
}

func (p *FallbackProvider) Recommend(ctx context.Context, item domain.ClassifiedItem) (Recommendation, error) {
	rec, err := p.next.Recommend(ctx, item)
	if err != nil {
		p.logger.Warn("Recommendation provider failed, falling back to manual review",
			zap.String("drug_name", item.DrugName),
			zap.Error(err),
		)
		return ManualReview(item), nil
	}
	return rec, nil
}

func describeDays(days domain.DaysOfSupply) string {
	if days.IsInfinite() {
		return "an unlimited number of days"
	}
	if days.Days() == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", days.Days())
}

// therapeuticAlternatives maps name fragments to suggestions, checked in order.
var therapeuticAlternatives = []struct {
	terms        []string
	alternatives []string
}{
	{
		terms: []string{"acetaminophen", "tylenol", "paracetamol"},
		alternatives: []string{
			"Consider NSAIDs such as ibuprofen for pain relief",
			"Consult the prescriber about alternative analgesics",
			"Generic acetaminophen from a different manufacturer",
		},
	},
	{
		terms: []string{"ibuprofen", "advil", "motrin"},
		alternatives: []string{
			"Naproxen for anti-inflammatory effect",
			"Acetaminophen for pain relief (different mechanism)",
			"Consult the prescriber about other NSAIDs",
		},
	},
	{
		terms: []string{"amoxicillin", "penicillin"},
		alternatives: []string{
			"Cephalexin (if not penicillin allergic)",
			"Azithromycin for penicillin-allergic patients",
			"Consult the prescriber for an appropriate alternative antibiotic",
		},
	},
	{
		terms: []string{"lisinopril", "enalapril", "ramipril"},
		alternatives: []string{
			"Consider ARBs (losartan, valsartan)",
			"Other ACE inhibitors (enalapril, ramipril)",
			"Consult the prescriber about therapeutic alternatives",
		},
	},
	{
		terms: []string{"metformin"},
		alternatives: []string{
			"Metformin extended-release from a different manufacturer",
			"Consult the prescriber about DPP-4 inhibitors or sulfonylureas",
		},
	},
}

var genericAlternatives = []string{
	"Contact the prescriber to discuss therapeutic alternatives",
	"Check for generic versions from different manufacturers",
	"Consider similar medications in the same therapeutic class",
	"Consult a clinical pharmacist for alternative recommendations",
}

func alternativesFor(drugName string) []string {
	lower := strings.ToLower(drugName)
	for _, entry := range therapeuticAlternatives {
		for _, term := range entry.terms {
			if strings.Contains(lower, term) {
				return limit(entry.alternatives)
			}
		}
	}
	return limit(genericAlternatives)
}

func limit(alternatives []string) []string {
	n := len(alternatives)
	if n > maxAlternatives {
		n = maxAlternatives
	}
	return append([]string(nil), alternatives[:n]...)
}
