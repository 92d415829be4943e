package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fare-system/internal/apperror"
	"fare-system/internal/config"
	"fare-system/internal/logger"
	"fare-system/internal/models"
	"fare-system/internal/services"
)

func testLogger() *logger.Logger {
	return logger.New(&config.LoggerConfig{Level: "error", Format: "json"})
}

type stubMarket struct {
	snap models.MarketSnapshot
}

func (s *stubMarket) Snapshot() models.MarketSnapshot { return s.snap }

func (s *stubMarket) SetDemand(value float64) (models.MarketSnapshot, error) {
	if value < 0.1 || value > 1.0 {
		return models.MarketSnapshot{}, apperror.Validation("value must be within [0.1, 1.0]", nil)
	}
	s.snap.Demand = value
	return s.snap, nil
}

func (s *stubMarket) SetSupply(value float64) (models.MarketSnapshot, error) {
	if value < 0.1 || value > 1.0 {
		return models.MarketSnapshot{}, apperror.Validation("value must be within [0.1, 1.0]", nil)
	}
	s.snap.Supply = value
	return s.snap, nil
}

type stubHistory struct {
	appended  []*models.Prediction
	appendErr error
	stats     *models.PredictionStats
	statsErr  error
}

func (s *stubHistory) Append(ctx context.Context, p *models.Prediction) error {
	if s.appendErr != nil {
		return s.appendErr
	}
	s.appended = append(s.appended, p)
	return nil
}

func (s *stubHistory) Recent() []*models.Prediction {
	out := make([]*models.Prediction, len(s.appended))
	for i, p := range s.appended {
		out[len(s.appended)-1-i] = p
	}
	return out
}

func (s *stubHistory) Stats(ctx context.Context) (*models.PredictionStats, error) {
	if s.statsErr != nil {
		return nil, s.statsErr
	}
	return s.stats, nil
}

type stubProducer struct {
	published int
	err       error
}

func (s *stubProducer) PublishPredictionCompleted(p *models.Prediction) error {
	if s.err != nil {
		return s.err
	}
	s.published++
	return nil
}

func neutralMarket() *stubMarket {
	return &stubMarket{snap: models.MarketSnapshot{
		Demand:          0.5,
		Supply:          0.5,
		Weather:         models.WeatherClear,
		Traffic:         models.TrafficNormal,
		SurgeMultiplier: 1.0,
		UpdatedAt:       time.Now(),
	}}
}

func testFareService() *services.FareService {
	return services.NewFareService(&config.PricingConfig{
		BaseFare:           2.50,
		PerMileRate:        1.50,
		PerMinuteRate:      0.35,
		AvgSpeedMph:        20.0,
		EconomyMultiplier:  0.8,
		StandardMultiplier: 1.0,
		PremiumMultiplier:  1.3,
		LuxuryMultiplier:   1.8,
	}, testLogger())
}

func predictBody(t *testing.T, rideType string) *bytes.Buffer {
	t.Helper()
	body, err := json.Marshal(map[string]interface{}{
		"pickup_lat":  40.7128,
		"pickup_lng":  -74.0060,
		"dropoff_lat": 40.7589,
		"dropoff_lng": -73.9851,
		"ride_type":   rideType,
	})
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	return bytes.NewBuffer(body)
}

func TestPredict_Success(t *testing.T) {
	history := &stubHistory{}
	producer := &stubProducer{}
	h := NewPredictionHandler(neutralMarket(), testFareService(), history, producer, testLogger())

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/predict", predictBody(t, "standard"))
	h.Predict(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp models.PredictResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if resp.Prediction == nil || resp.Market == nil {
		t.Fatalf("expected prediction and market in response")
	}
	if resp.Prediction.PredictedPrice <= 0 {
		t.Fatalf("expected positive price, got %f", resp.Prediction.PredictedPrice)
	}
	if resp.Market.SurgeMultiplier != 1.0 {
		t.Fatalf("expected market snapshot echoed")
	}
	if len(history.appended) != 1 {
		t.Fatalf("expected prediction recorded in history")
	}
	if producer.published != 1 {
		t.Fatalf("expected prediction event published")
	}
}

func TestPredict_InvalidBody(t *testing.T) {
	h := NewPredictionHandler(neutralMarket(), testFareService(), &stubHistory{}, &stubProducer{}, testLogger())

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/predict", bytes.NewBufferString("{bad json"))
	h.Predict(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestPredict_InvalidCoordinate(t *testing.T) {
	h := NewPredictionHandler(neutralMarket(), testFareService(), &stubHistory{}, &stubProducer{}, testLogger())

	body, _ := json.Marshal(map[string]interface{}{
		"pickup_lat": 95.0, "pickup_lng": 0.0,
		"dropoff_lat": 0.0, "dropoff_lng": 0.0,
		"ride_type": "standard",
	})
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/predict", bytes.NewBuffer(body))
	h.Predict(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid coordinate, got %d", rr.Code)
	}
}

func TestPredict_UnknownRideType(t *testing.T) {
	h := NewPredictionHandler(neutralMarket(), testFareService(), &stubHistory{}, &stubProducer{}, testLogger())

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/predict", predictBody(t, "helicopter"))
	h.Predict(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown ride type, got %d", rr.Code)
	}
}

func TestPredict_MethodNotAllowed(t *testing.T) {
	h := NewPredictionHandler(neutralMarket(), testFareService(), &stubHistory{}, &stubProducer{}, testLogger())

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/predict", nil)
	h.Predict(rr, req)

	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rr.Code)
	}
}

func TestPredict_HistoryFailureDoesNotFailRequest(t *testing.T) {
	history := &stubHistory{appendErr: errors.New("db down")}
	producer := &stubProducer{err: errors.New("kafka down")}
	h := NewPredictionHandler(neutralMarket(), testFareService(), history, producer, testLogger())

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/predict", predictBody(t, "economy"))
	h.Predict(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 despite history/producer failures, got %d", rr.Code)
	}
}

func TestRecent_ReturnsNewestFirst(t *testing.T) {
	history := &stubHistory{}
	h := NewPredictionHandler(neutralMarket(), testFareService(), history, &stubProducer{}, testLogger())

	for _, rt := range []string{"economy", "luxury"} {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/predict", predictBody(t, rt))
		h.Predict(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("predict failed: %d", rr.Code)
		}
	}

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/predictions/recent", nil)
	h.Recent(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	var resp struct {
		Predictions []*models.Prediction `json:"predictions"`
		Count       int                  `json:"count"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if resp.Count != 2 || len(resp.Predictions) != 2 {
		t.Fatalf("expected 2 predictions, got %d", resp.Count)
	}
	if resp.Predictions[0].RideType != models.RideTypeLuxury {
		t.Fatalf("expected newest prediction first, got %s", resp.Predictions[0].RideType)
	}
}

func TestStats_Success(t *testing.T) {
	history := &stubHistory{stats: &models.PredictionStats{Count: 3, AvgPrice: 15.5, AvgSurge: 1.2, MaxSurge: 2.0}}
	h := NewPredictionHandler(neutralMarket(), testFareService(), history, &stubProducer{}, testLogger())

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/predictions/stats", nil)
	h.Stats(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	var stats models.PredictionStats
	if err := json.NewDecoder(rr.Body).Decode(&stats); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if stats.Count != 3 || stats.MaxSurge != 2.0 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestStats_Error(t *testing.T) {
	history := &stubHistory{statsErr: errors.New("db down")}
	h := NewPredictionHandler(neutralMarket(), testFareService(), history, &stubProducer{}, testLogger())

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/predictions/stats", nil)
	h.Stats(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
}
