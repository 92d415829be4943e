package handlers

import (
	"encoding/json"
	"net/http"

	"fare-system/internal/logger"
	"fare-system/internal/models"
)

// MarketHandler обрабатывает запросы состояния рынка
type MarketHandler struct {
	market MarketProvider
	log    *logger.Logger
}

// NewMarketHandler создает обработчик рынка
func NewMarketHandler(market MarketProvider, log *logger.Logger) *MarketHandler {
	return &MarketHandler{
		market: market,
		log:    log,
	}
}

// Status возвращает текущий срез рыночных условий
func (h *MarketHandler) Status(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	writeJSONResponse(w, http.StatusOK, h.market.Snapshot())
}

// SetDemand вручную устанавливает уровень спроса
func (h *MarketHandler) SetDemand(w http.ResponseWriter, r *http.Request) {
	h.setFactor(w, r, h.market.SetDemand)
}

// SetSupply вручную устанавливает уровень предложения
func (h *MarketHandler) SetSupply(w http.ResponseWriter, r *http.Request) {
	h.setFactor(w, r, h.market.SetSupply)
}

func (h *MarketHandler) setFactor(w http.ResponseWriter, r *http.Request, apply func(float64) (models.MarketSnapshot, error)) {
	if r.Method != http.MethodPost {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req models.UpdateFactorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	snapshot, err := apply(req.Value)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to update market factor")
		return
	}

	writeJSONResponse(w, http.StatusOK, snapshot)
}
