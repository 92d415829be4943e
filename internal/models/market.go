package models

import "time"

// WeatherCondition представляет текущие погодные условия
type WeatherCondition string

const (
	WeatherClear  WeatherCondition = "clear"
	WeatherRainy  WeatherCondition = "rainy"
	WeatherSnowy  WeatherCondition = "snowy"
	WeatherStormy WeatherCondition = "stormy"
)

// AllWeatherConditions — полный набор состояний погоды для переходов симулятора
var AllWeatherConditions = []WeatherCondition{WeatherClear, WeatherRainy, WeatherSnowy, WeatherStormy}

// TrafficCondition представляет текущую загруженность дорог
type TrafficCondition string

const (
	TrafficNormal    TrafficCondition = "normal"
	TrafficHeavy     TrafficCondition = "heavy"
	TrafficCongested TrafficCondition = "congested"
)

// AllTrafficConditions — полный набор состояний трафика для переходов симулятора
var AllTrafficConditions = []TrafficCondition{TrafficNormal, TrafficHeavy, TrafficCongested}

// MarketSnapshot представляет неизменяемый срез рыночных условий.
// Surge всегда пересчитывается из demand/supply (с учётом погоды и трафика)
// в момент обновления и отдельно не мутируется.
type MarketSnapshot struct {
	Demand          float64          `json:"demand"`
	Supply          float64          `json:"supply"`
	Weather         WeatherCondition `json:"weather_condition"`
	Traffic         TrafficCondition `json:"traffic_condition"`
	SurgeMultiplier float64          `json:"surge_multiplier"`
	UpdatedAt       time.Time        `json:"timestamp"`
}

// UpdateFactorRequest представляет запрос ручной установки demand/supply
type UpdateFactorRequest struct {
	Value float64 `json:"value"`
}
