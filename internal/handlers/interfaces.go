package handlers

import (
	"context"

	"fare-system/internal/models"
)

// ----- Market -----

type MarketProvider interface {
	Snapshot() models.MarketSnapshot
	SetDemand(value float64) (models.MarketSnapshot, error)
	SetSupply(value float64) (models.MarketSnapshot, error)
}

// ----- Fare -----

type FareEstimator interface {
	Estimate(req *models.PredictRequest, snapshot models.MarketSnapshot) (*models.Prediction, error)
}

// ----- History -----

type PredictionHistory interface {
	Append(ctx context.Context, prediction *models.Prediction) error
	Recent() []*models.Prediction
	Stats(ctx context.Context) (*models.PredictionStats, error)
}

// ----- Events -----

type EventProducer interface {
	PublishPredictionCompleted(prediction *models.Prediction) error
}

// ----- Health -----

type DBHealth interface {
	Health() error
}

type RedisHealth interface {
	Health(ctx context.Context) error
}
