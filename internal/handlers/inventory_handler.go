package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"rxbridge-service/internal/domain"
	"rxbridge-service/internal/recommendation"
	"rxbridge-service/internal/scan"
	stderrors "rxbridge-service/pkg/errors"
	"rxbridge-service/pkg/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ScanService is the part of scan.Service the handlers use.
type ScanService interface {
	Run(ctx context.Context, session string) (*scan.Result, error)
	Latest(ctx context.Context, session string) (*scan.Result, error)
	Clear(ctx context.Context, session string) error
}

type InventoryHandler struct {
	logger      *zap.Logger
	scans       ScanService
	recommender recommendation.Provider
}

func NewInventoryHandler(scans ScanService, recommender recommendation.Provider, logger *zap.Logger) *InventoryHandler {
	return &InventoryHandler{
		logger:      logger,
		scans:       scans,
		recommender: recommender,
	}
}

// RunScan handles POST /api/v1/inventory/run
// @Summary      Run an inventory scan
// @Description  Reads the current inventory, fetches recall and shortage signals, and classifies every item.
// @Description  Items with a RED or PURPLE alert are returned under `recalls`, YELLOW and BLUE under `other_alerts`.
// @Description  Only one scan per session runs at a time; a second request while one is running gets 409.
// @Tags         inventory
// @Produce      json
// @Security     BearerAuth
// @Param        X-Request-ID  header    string  false  "Request ID for request tracking (UUID)"
// @Success      200  {object}  ScanResponse                 "Scan completed"
// @Failure      401  {object}  errors.StandardError  "Missing or invalid JWT"
// @Failure      404  {object}  errors.StandardError  "Inventory is empty"
// @Failure      409  {object}  errors.StandardError  "A scan is already running for this session"
// @Failure      502  {object}  errors.StandardError  "Inventory source unavailable"
// @Failure      500  {object}  errors.StandardError  "Internal server error"
// @Router       /inventory/run [post]
func (h *InventoryHandler) RunScan(c *gin.Context) {
	session := middleware.SessionID(c)

	result, err := h.scans.Run(c.Request.Context(), session)
	if err != nil {
		c.Error(scanError(err))
		return
	}

	c.JSON(http.StatusOK, toScanResponse(result))
}

// GetLatestScan handles GET /api/v1/inventory/scan/latest
// @Summary      Get the latest scan
// @Description  Returns the cached result of the caller's last scan without re-running it.
// @Tags         inventory
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  ScanResponse
// @Failure      401  {object}  errors.StandardError
// @Failure      404  {object}  errors.StandardError  "No scan has been run"
// @Failure      500  {object}  errors.StandardError
// @Router       /inventory/scan/latest [get]
func (h *InventoryHandler) GetLatestScan(c *gin.Context) {
	result, ok := h.latest(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, toScanResponse(result))
}

// ClearLatestScan handles DELETE /api/v1/inventory/scan/latest
// @Summary      Clear the cached scan
// @Description  Drops the caller's cached scan result. The next read requires a new scan.
// @Tags         inventory
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  MessageResponse
// @Failure      401  {object}  errors.StandardError
// @Failure      500  {object}  errors.StandardError
// @Router       /inventory/scan/latest [delete]
func (h *InventoryHandler) ClearLatestScan(c *gin.Context) {
	if err := h.scans.Clear(c.Request.Context(), middleware.SessionID(c)); err != nil {
		c.Error(stderrors.NewCacheError("clear", err))
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Status: statusSuccess, Message: "cached scan cleared"})
}

// ListItems handles GET /api/v1/inventory/items
// @Summary      List classified items
// @Description  Flat list from the latest scan. Filters apply in order: level, then search, then sort.
// @Description  Numeric sort fields compare numerically; "infinite" days of supply sort last ascending and first descending.
// @Tags         inventory
// @Produce      json
// @Security     BearerAuth
// @Param        level      query     string  false  "Alert level or all"  Enums(all, RED, PURPLE, YELLOW, BLUE, NONE)
// @Param        search     query     string  false  "Case-insensitive drug name substring"
// @Param        sort       query     string  false  "Sort field"  Enums(drug_name, current_stock, average_daily_dispense, days_of_supply, alert_level, fda_status, severity)
// @Param        direction  query     string  false  "Sort direction"  Enums(asc, desc)
// @Success      200  {object}  ItemsResponse
// @Failure      400  {object}  errors.StandardError  "Unknown level or sort field"
// @Failure      401  {object}  errors.StandardError
// @Failure      404  {object}  errors.StandardError  "No scan has been run"
// @Router       /inventory/items [get]
func (h *InventoryHandler) ListItems(c *gin.Context) {
	level := strings.TrimSpace(c.Query("level"))
	if level != "" && !strings.EqualFold(level, domain.AllLevels) {
		if _, err := domain.ParseAlertLevel(level); err != nil {
			c.Error(stderrors.NewValidationError("unknown alert level "+level, "level"))
			return
		}
	}

	result, ok := h.latest(c)
	if !ok {
		return
	}

	items := domain.FilterByLevel(result.Items(), level)
	items = domain.SearchByName(items, c.Query("search"))

	if field := strings.TrimSpace(c.Query("sort")); field != "" {
		sorted, err := domain.SortByField(items, field, domain.ParseSortDirection(c.Query("direction")))
		if err != nil {
			c.Error(stderrors.NewValidationError("unknown sort field "+field, "sort"))
			return
		}
		items = sorted
	}

	c.JSON(http.StatusOK, ItemsResponse{
		Status: statusSuccess,
		ScanID: result.ID(),
		Total:  len(items),
		Items:  toItemResponses(items),
	})
}

// GetRecommendation handles GET /api/v1/inventory/items/:drug/recommendation
// @Summary      Get a recommendation for one item
// @Description  Looks the item up in the latest scan by id or drug name and returns advice for its alert level.
// @Tags         inventory
// @Produce      json
// @Security     BearerAuth
// @Param        drug  path      string  true  "Item id or drug name"
// @Success      200   {object}  RecommendationResponse
// @Failure      401   {object}  errors.StandardError
// @Failure      404   {object}  errors.StandardError  "No scan, or item not in the latest scan"
// @Router       /inventory/items/{drug}/recommendation [get]
func (h *InventoryHandler) GetRecommendation(c *gin.Context) {
	drug := strings.TrimSpace(c.Param("drug"))
	if drug == "" {
		c.Error(stderrors.NewValidationError("drug is required", "drug"))
		return
	}

	result, ok := h.latest(c)
	if !ok {
		return
	}

	item, found := result.Item(drug)
	if !found {
		c.Error(stderrors.NewItemNotFound(drug))
		return
	}

	rec, err := h.recommender.Recommend(c.Request.Context(), item)
	if err != nil {
		h.logger.Warn("Recommendation failed, returning manual review",
			zap.String("drug_name", item.DrugName),
			zap.Error(err),
		)
		rec = recommendation.ManualReview(item)
	}

	c.JSON(http.StatusOK, RecommendationResponse{
		Status:         statusSuccess,
		Item:           toItemResponse(item),
		Recommendation: rec,
	})
}

func (h *InventoryHandler) latest(c *gin.Context) (*scan.Result, bool) {
	result, err := h.scans.Latest(c.Request.Context(), middleware.SessionID(c))
	if errors.Is(err, scan.ErrNoScan) {
		c.Error(stderrors.NewScanNotFound())
		return nil, false
	}
	if err != nil {
		c.Error(stderrors.NewCacheError("read latest scan", err))
		return nil, false
	}
	return result, true
}

func scanError(err error) *stderrors.StandardError {
	switch {
	case errors.Is(err, scan.ErrScanInProgress):
		return stderrors.NewScanInProgress()
	case errors.Is(err, scan.ErrNoInventory):
		return stderrors.NewNoInventory()
	case errors.Is(err, scan.ErrInventoryUnavailable):
		return stderrors.NewInventoryUnavailable(err)
	default:
		return stderrors.NewInternalError("scan failed", err)
	}
}
