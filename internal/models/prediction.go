package models

import (
	"time"

	"github.com/google/uuid"
)

// RideType представляет тариф поездки
type RideType string

const (
	RideTypeEconomy  RideType = "economy"
	RideTypeStandard RideType = "standard"
	// RideTypeComfort — исторический псевдоним standard, принимается на входе
	RideTypeComfort RideType = "comfort"
	RideTypePremium RideType = "premium"
	RideTypeLuxury  RideType = "luxury"
)

// PredictRequest представляет запрос оценки стоимости поездки
type PredictRequest struct {
	PickupLat  float64  `json:"pickup_lat"`
	PickupLng  float64  `json:"pickup_lng"`
	DropoffLat float64  `json:"dropoff_lat"`
	DropoffLng float64  `json:"dropoff_lng"`
	RideType   RideType `json:"ride_type"`
}

// FareBreakdown раскладывает итоговую цену на слагаемые.
// Surge и тариф показаны как дельты (вклад в долларах), а не множители.
type FareBreakdown struct {
	BaseFare           float64 `json:"base_fare"`
	DistanceCost       float64 `json:"distance_cost"`
	TimeCost           float64 `json:"time_cost"`
	SurgeAdjustment    float64 `json:"surge_adjustment"`
	RideTypeAdjustment float64 `json:"ride_type_adjustment"`
}

// MarketFactors фиксирует рыночные факторы, действовавшие в момент оценки
type MarketFactors struct {
	DemandLevel   float64 `json:"demand_level"`
	SupplyLevel   float64 `json:"supply_level"`
	WeatherImpact float64 `json:"weather_impact"`
	TrafficImpact float64 `json:"traffic_impact"`
}

// Prediction представляет результат оценки стоимости поездки
type Prediction struct {
	ID              uuid.UUID     `json:"id" db:"id"`
	RideType        RideType      `json:"ride_type" db:"ride_type"`
	PredictedPrice  float64       `json:"predicted_price" db:"predicted_price"`
	DistanceMiles   float64       `json:"distance_miles" db:"distance_miles"`
	DurationMinutes float64       `json:"estimated_duration_minutes" db:"duration_minutes"`
	SurgeMultiplier float64       `json:"surge_multiplier_applied" db:"surge_multiplier"`
	Breakdown       FareBreakdown `json:"breakdown"`
	Factors         MarketFactors `json:"factors_snapshot"`
	CreatedAt       time.Time     `json:"created_at" db:"created_at"`
}

// PredictResponse возвращает оценку вместе со срезом рынка, по которому она считалась
type PredictResponse struct {
	Prediction *Prediction     `json:"prediction"`
	Market     *MarketSnapshot `json:"market"`
}

// PredictionStats — агрегаты по сохранённым предсказаниям
type PredictionStats struct {
	Count       int       `json:"count"`
	AvgPrice    float64   `json:"avg_price"`
	AvgSurge    float64   `json:"avg_surge"`
	MaxSurge    float64   `json:"max_surge"`
	GeneratedAt time.Time `json:"generated_at"`
}
