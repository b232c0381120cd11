package api

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/cardpulse/card-market-service/internal/cache"
	"github.com/cardpulse/card-market-service/internal/chart"
	"github.com/cardpulse/card-market-service/internal/database"
	"github.com/cardpulse/card-market-service/internal/kafka"
	"github.com/cardpulse/card-market-service/internal/models"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	db       *database.DB
	producer *kafka.Producer
	charts   *cache.ChartCache
}

// NewHandler creates a new Handler
func NewHandler(db *database.DB, producer *kafka.Producer, charts *cache.ChartCache) *Handler {
	return &Handler{
		db:       db,
		producer: producer,
		charts:   charts,
	}
}

// GetAllCards handles GET /cards
func (h *Handler) GetAllCards(w http.ResponseWriter, r *http.Request) {
	cards, err := h.db.GetAllCards()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, cards)
}

// GetCard handles GET /cards/{id}
func (h *Handler) GetCard(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	card, err := h.db.GetCardByID(id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	respondJSON(w, http.StatusOK, card)
}

// AddCard handles POST /cards
func (h *Handler) AddCard(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name            string `json:"name"`
		SetCode         string `json:"set_code"`
		CollectorNumber string `json:"collector_number"`
		Rarity          string `json:"rarity"`
		ImageURL        string `json:"image_url"`
		Watched         bool   `json:"watched"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.Name == "" || req.SetCode == "" || req.CollectorNumber == "" {
		http.Error(w, "name, set_code and collector_number are required", http.StatusBadRequest)
		return
	}

	card := &models.Card{
		Name:            req.Name,
		SetCode:         req.SetCode,
		CollectorNumber: req.CollectorNumber,
		Rarity:          req.Rarity,
		ImageURL:        req.ImageURL,
		Watched:         req.Watched,
	}
	if err := h.db.CreateCard(card); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if h.producer != nil {
		if err := h.producer.PublishCardAdded(r.Context(), card); err != nil {
			log.Printf("Failed to publish card added event: %v", err)
		}
	}

	respondJSON(w, http.StatusCreated, card)
}

// RemoveCard handles DELETE /cards/{id}
func (h *Handler) RemoveCard(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.db.DeleteCard(id); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	if h.producer != nil {
		if err := h.producer.PublishCardRemoved(r.Context(), id); err != nil {
			log.Printf("Failed to publish card removed event: %v", err)
		}
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetCardSales handles GET /cards/{id}/sales
func (h *Handler) GetCardSales(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	timeRange := r.URL.Query().Get("range")
	if timeRange == "" {
		timeRange = models.TimeRangeAll
	}
	if !models.ValidTimeRange(timeRange) {
		http.Error(w, "invalid range", http.StatusBadRequest)
		return
	}

	if _, err := h.db.GetCardByID(id); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	sales, err := h.db.GetSaleRecordsByCard(id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if timeRange != models.TimeRangeAll {
		days := map[string]int{
			models.TimeRange7D:  7,
			models.TimeRange30D: 30,
			models.TimeRange90D: 90,
		}[timeRange]
		cutoff := time.Now().AddDate(0, 0, -days)

		filtered := sales[:0]
		for _, s := range sales {
			if !s.EffectiveDate().Before(cutoff) {
				filtered = append(filtered, s)
			}
		}
		sales = filtered
	}

	if sales == nil {
		sales = []models.SaleRecord{}
	}
	respondJSON(w, http.StatusOK, sales)
}

// GetCardChart handles GET /cards/{id}/chart
func (h *Handler) GetCardChart(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	timeRange := r.URL.Query().Get("range")
	if timeRange == "" {
		timeRange = models.TimeRangeAll
	}
	chartType := r.URL.Query().Get("type")
	if chartType == "" {
		chartType = models.ChartTypeLine
	}
	if !models.ValidTimeRange(timeRange) {
		http.Error(w, "invalid range", http.StatusBadRequest)
		return
	}
	if !models.ValidChartType(chartType) {
		http.Error(w, "invalid chart type", http.StatusBadRequest)
		return
	}

	if h.charts != nil {
		cached, err := h.charts.Get(r.Context(), id, timeRange, chartType)
		if err != nil {
			log.Printf("Chart cache read failed: %v", err)
		} else if cached != nil {
			respondJSON(w, http.StatusOK, cached)
			return
		}
	}

	card, err := h.db.GetCardByID(id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	sales, err := h.db.GetSaleRecordsByCard(id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	built := chart.Build(id, sales, chart.Options{
		TimeRange:  timeRange,
		ChartType:  chartType,
		FloorPrice: card.FloorPrice,
		LowestAsk:  card.LowestAsk,
		Now:        time.Now(),
	})

	if h.charts != nil {
		if err := h.charts.Set(r.Context(), built); err != nil {
			log.Printf("Chart cache write failed: %v", err)
		}
	}

	respondJSON(w, http.StatusOK, built)
}

// GetPortfolio handles GET /portfolio
func (h *Handler) GetPortfolio(w http.ResponseWriter, r *http.Request) {
	valuations, err := h.db.GetHoldingValuations()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if valuations == nil {
		valuations = []models.HoldingValuation{}
	}
	respondJSON(w, http.StatusOK, valuations)
}

// AddHolding handles POST /portfolio
func (h *Handler) AddHolding(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CardID           int             `json:"card_id"`
		Quantity         int             `json:"quantity"`
		AcquisitionPrice decimal.Decimal `json:"acquisition_price"`
		AcquiredAt       *time.Time      `json:"acquired_at"`
		Treatment        string          `json:"treatment"`
		Notes            string          `json:"notes"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.CardID == 0 {
		http.Error(w, "card_id is required", http.StatusBadRequest)
		return
	}
	if req.AcquisitionPrice.IsNegative() {
		http.Error(w, "acquisition_price must not be negative", http.StatusBadRequest)
		return
	}

	if _, err := h.db.GetCardByID(req.CardID); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	holding := &models.Holding{
		CardID:           req.CardID,
		Quantity:         req.Quantity,
		AcquisitionPrice: req.AcquisitionPrice,
		Treatment:        req.Treatment,
		Notes:            req.Notes,
	}
	if req.AcquiredAt != nil {
		holding.AcquiredAt = *req.AcquiredAt
	}

	if err := h.db.CreateHolding(holding); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusCreated, holding)
}

// RemoveHolding handles DELETE /portfolio/{id}
func (h *Handler) RemoveHolding(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.db.DeleteHolding(id); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetPortfolioSummary handles GET /portfolio/summary
func (h *Handler) GetPortfolioSummary(w http.ResponseWriter, r *http.Request) {
	valuations, err := h.db.GetHoldingValuations()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, buildSummary(valuations))
}

// SnapshotPortfolio handles POST /portfolio/snapshot
func (h *Handler) SnapshotPortfolio(w http.ResponseWriter, r *http.Request) {
	valuations, err := h.db.GetHoldingValuations()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	summary := buildSummary(valuations)
	now := time.Now().UTC()
	snapshot := &models.ValueSnapshot{
		SnapshotDate: time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC),
		TotalCards:   summary.TotalCards,
		UniqueCards:  summary.UniqueCards,
		TotalValue:   summary.TotalValue,
	}

	if err := h.db.CreateValueSnapshot(snapshot); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusCreated, snapshot)
}

// GetPortfolioHistory handles GET /portfolio/history
func (h *Handler) GetPortfolioHistory(w http.ResponseWriter, r *http.Request) {
	period := r.URL.Query().Get("period")
	if period == "" {
		period = "month"
	}

	var since time.Time
	now := time.Now()
	switch period {
	case "week":
		since = now.AddDate(0, 0, -7)
	case "month":
		since = now.AddDate(0, -1, 0)
	case "year":
		since = now.AddDate(-1, 0, 0)
	case "all":
		// zero time keeps everything
	default:
		http.Error(w, "invalid period", http.StatusBadRequest)
		return
	}

	snapshots, err := h.db.GetValueSnapshots(since)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if snapshots == nil {
		snapshots = []models.ValueSnapshot{}
	}
	respondJSON(w, http.StatusOK, struct {
		Snapshots []models.ValueSnapshot `json:"snapshots"`
		Period    string                 `json:"period"`
	}{Snapshots: snapshots, Period: period})
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func buildSummary(valuations []models.HoldingValuation) models.PortfolioSummary {
	summary := models.PortfolioSummary{
		Holdings: valuations,
		AsOf:     time.Now(),
	}
	if summary.Holdings == nil {
		summary.Holdings = []models.HoldingValuation{}
	}

	for _, v := range valuations {
		summary.TotalCards += v.Holding.Quantity
		summary.UniqueCards++
		summary.TotalValue = summary.TotalValue.Add(v.MarketValue)
		summary.TotalCost = summary.TotalCost.Add(v.CostBasis)
	}
	summary.UnrealizedPnl = summary.TotalValue.Sub(summary.TotalCost)

	return summary
}

func pathID(w http.ResponseWriter, r *http.Request) (int, bool) {
	vars := mux.Vars(r)
	id, err := strconv.Atoi(vars["id"])
	if err != nil || id <= 0 {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
