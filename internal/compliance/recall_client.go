package compliance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"rxbridge-service/internal/config"
	"rxbridge-service/internal/domain"
	"rxbridge-service/internal/metrics"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	enforcementPath   = "/drug/enforcement.json"
	classIQuery       = `product_type:"Drugs" AND classification:"Class I"`
	generalQuery      = `product_type:"Drugs"`
	maxFallbackLimit  = 200
	maxDrugNameLength = 100
)

// Drug-name cut points. The name ends at the earliest one found.
var nameSeparators = []string{",", "(", " - ", " tablet", " capsule", " injection"}

var titleCaser = cases.Title(language.English)

// enforcementResponse is the subset of the openFDA enforcement payload we read.
type enforcementResponse struct {
	Results []enforcementRecord `json:"results"`
}

type enforcementRecord struct {
	ProductDescription   string `json:"product_description"`
	ReasonForRecall      string `json:"reason_for_recall"`
	Classification       string `json:"classification"`
	Status               string `json:"status"`
	RecallInitiationDate string `json:"recall_initiation_date"`
	EventID              string `json:"event_id"`
}

// RecallClient reads drug recalls from the openFDA enforcement endpoint.
type RecallClient struct {
	baseURL    string
	apiKey     string
	limit      int
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	logger     *zap.Logger
}

// NewRecallClient builds a client from FDA_* settings. The circuit breaker opens after
// five consecutive failures and probes again after a minute.
func NewRecallClient(cfg *config.Config, m *metrics.Metrics, logger *zap.Logger) *RecallClient {
	limit := cfg.FDARecallLimit
	if limit <= 0 {
		limit = maxFallbackLimit
	}
	timeout := time.Duration(cfg.FDATimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	settings := gobreaker.Settings{
		Name:        SourceRecallAPI,
		MaxRequests: 1,
		Interval:    5 * time.Minute,
		Timeout:     time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
			m.SetCircuitBreakerState(name, int(to))
		},
	}
	m.SetCircuitBreakerState(SourceRecallAPI, int(gobreaker.StateClosed))

	return &RecallClient{
		baseURL:    strings.TrimRight(cfg.FDAAPIURL, "/"),
		apiKey:     cfg.FDAAPIKey,
		limit:      limit,
		httpClient: &http.Client{Timeout: timeout},
		breaker:    gobreaker.NewCircuitBreaker(settings),
		logger:     logger,
	}
}

func (c *RecallClient) Name() string { return SourceRecallAPI }

// Signals fetches Class I drug recalls, falling back to all drug recalls when there are
// none. Every record becomes a RECALL signal.
func (c *RecallClient) Signals(ctx context.Context) ([]domain.ComplianceSignal, error) {
	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.fetchRecalls(ctx)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("circuit breaker open for %s: %w", SourceRecallAPI, err)
	}
	if err != nil {
		return nil, err
	}

	records := result.([]enforcementRecord)
	signals := make([]domain.ComplianceSignal, 0, len(records))
	seen := make(map[string]bool, len(records))
	for _, r := range records {
		name := ExtractDrugName(r.ProductDescription)
		if name == "" {
			continue
		}
		key := strings.ToLower(name) + "|" + r.EventID
		if seen[key] {
			continue
		}
		seen[key] = true

		signals = append(signals, domain.ComplianceSignal{
			DrugName:             name,
			Kind:                 domain.SignalRecall,
			RecallClassification: strings.TrimSpace(r.Classification),
			Reason:               strings.TrimSpace(r.ReasonForRecall),
			Status:               domain.StatusRecalled,
			Source:               SourceRecallAPI,
		})
	}

	c.logger.Info("Fetched recall signals", zap.Int("records", len(records)), zap.Int("signals", len(signals)))
	return signals, nil
}

func (c *RecallClient) fetchRecalls(ctx context.Context) ([]enforcementRecord, error) {
	records, err := c.query(ctx, classIQuery, c.limit)
	if err == nil && len(records) > 0 {
		return records, nil
	}
	if err != nil {
		c.logger.Warn("Class I recall query failed, falling back to general search", zap.Error(err))
	} else {
		c.logger.Warn("No Class I recalls found, falling back to general search")
	}

	limit := c.limit
	if limit > maxFallbackLimit {
		limit = maxFallbackLimit
	}
	return c.query(ctx, generalQuery, limit)
}

func (c *RecallClient) query(ctx context.Context, search string, limit int) ([]enforcementRecord, error) {
	params := url.Values{}
	params.Set("search", search)
	params.Set("limit", strconv.Itoa(limit))
	if c.apiKey != "" {
		params.Set("api_key", c.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+enforcementPath+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build recall request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "rxbridge-service/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("recall request failed: %w", err)
	}
	defer resp.Body.Close()

	// openFDA answers 404 when a search matches nothing.
	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("recall API returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload enforcementResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode recall response: %w", err)
	}
	return payload.Results, nil
}

// ExtractDrugName derives a drug name from an openFDA product description, e.g.
// "LISINOPRIL Tablets, USP, 10 mg" becomes "Lisinopril".
func ExtractDrugName(description string) string {
	description = strings.TrimSpace(description)
	if description == "" {
		return ""
	}

	cut := len(description)
	lower := strings.ToLower(description)
	for _, sep := range nameSeparators {
		if i := strings.Index(lower, sep); i >= 0 && i < cut {
			cut = i
		}
	}
	name := strings.TrimSpace(description[:cut])

	if runes := []rune(name); len(runes) > maxDrugNameLength {
		name = string(runes[:maxDrugNameLength])
	}
	return titleCaser.String(strings.TrimSpace(name))
}
