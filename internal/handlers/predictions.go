package handlers

import (
	"encoding/json"
	"net/http"

	"fare-system/internal/logger"
	"fare-system/internal/models"
)

// PredictionHandler обрабатывает запросы оценки стоимости и истории
type PredictionHandler struct {
	market   MarketProvider
	fare     FareEstimator
	history  PredictionHistory
	producer EventProducer
	log      *logger.Logger
}

// NewPredictionHandler создает обработчик предсказаний
func NewPredictionHandler(market MarketProvider, fare FareEstimator, history PredictionHistory, producer EventProducer, log *logger.Logger) *PredictionHandler {
	return &PredictionHandler{
		market:   market,
		fare:     fare,
		history:  history,
		producer: producer,
		log:      log,
	}
}

// Predict оценивает стоимость поездки по текущему срезу рынка
func (h *PredictionHandler) Predict(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req models.PredictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	snapshot := h.market.Snapshot()

	prediction, err := h.fare.Estimate(&req, snapshot)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to estimate fare")
		return
	}

	// История и события не влияют на ответ клиенту
	if h.history != nil {
		if err := h.history.Append(r.Context(), prediction); err != nil {
			h.log.WithError(err).Warn("Failed to record prediction history")
		}
	}
	if h.producer != nil {
		if err := h.producer.PublishPredictionCompleted(prediction); err != nil {
			h.log.WithError(err).Error("Failed to publish prediction event")
		}
	}

	writeJSONResponse(w, http.StatusOK, models.PredictResponse{
		Prediction: prediction,
		Market:     &snapshot,
	})
}

// Recent возвращает последние предсказания, новые первыми
func (h *PredictionHandler) Recent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	predictions := h.history.Recent()
	writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"predictions": predictions,
		"count":       len(predictions),
	})
}

// Stats возвращает агрегаты по сохраненным предсказаниям
func (h *PredictionHandler) Stats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	stats, err := h.history.Stats(r.Context())
	if err != nil {
		h.log.WithError(err).Error("Failed to fetch prediction stats")
		writeErrorResponse(w, http.StatusInternalServerError, "Failed to fetch prediction stats")
		return
	}

	writeJSONResponse(w, http.StatusOK, stats)
}
