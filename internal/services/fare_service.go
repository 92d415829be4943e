package services

import (
	"fmt"
	"math"
	"time"

	"fare-system/internal/apperror"
	"fare-system/internal/config"
	"fare-system/internal/logger"
	"fare-system/internal/models"

	"github.com/google/uuid"
)

const (
	earthRadiusKm = 6371.0
	kmToMiles     = 0.621371
)

// FareService оценивает стоимость поездки по координатам и срезу рынка
type FareService struct {
	cfg *config.PricingConfig
	log *logger.Logger
}

// NewFareService создает сервис оценки стоимости
func NewFareService(cfg *config.PricingConfig, log *logger.Logger) *FareService {
	return &FareService{
		cfg: cfg,
		log: log,
	}
}

// Estimate рассчитывает стоимость поездки. Срез рынка передается снаружи,
// поэтому оценка детерминирована и не мутирует состояние рынка.
func (s *FareService) Estimate(req *models.PredictRequest, snapshot models.MarketSnapshot) (*models.Prediction, error) {
	if err := validateCoordinate("pickup", req.PickupLat, req.PickupLng); err != nil {
		return nil, err
	}
	if err := validateCoordinate("dropoff", req.DropoffLat, req.DropoffLng); err != nil {
		return nil, err
	}

	rideMultiplier, err := s.rideTypeMultiplier(req.RideType)
	if err != nil {
		return nil, err
	}

	distance := roundTo(haversineMiles(req.PickupLat, req.PickupLng, req.DropoffLat, req.DropoffLng), 2)
	duration := roundTo(distance/s.cfg.AvgSpeedMph*60*TrafficImpact(snapshot.Traffic), 1)

	// Слагаемые округляются до центов до суммирования, поэтому
	// breakdown всегда сходится с итоговой ценой без допусков.
	baseFare := roundTo(s.cfg.BaseFare, 2)
	distanceCost := roundTo(distance*s.cfg.PerMileRate, 2)
	timeCost := roundTo(duration*s.cfg.PerMinuteRate, 2)

	subtotal := baseFare + distanceCost + timeCost
	surgeTotal := roundTo(subtotal*snapshot.SurgeMultiplier, 2)
	total := roundTo(surgeTotal*rideMultiplier, 2)

	prediction := &models.Prediction{
		ID:              uuid.New(),
		RideType:        req.RideType,
		PredictedPrice:  total,
		DistanceMiles:   distance,
		DurationMinutes: duration,
		SurgeMultiplier: snapshot.SurgeMultiplier,
		Breakdown: models.FareBreakdown{
			BaseFare:           baseFare,
			DistanceCost:       distanceCost,
			TimeCost:           timeCost,
			SurgeAdjustment:    roundTo(surgeTotal-subtotal, 2),
			RideTypeAdjustment: roundTo(total-surgeTotal, 2),
		},
		Factors: models.MarketFactors{
			DemandLevel:   snapshot.Demand,
			SupplyLevel:   snapshot.Supply,
			WeatherImpact: WeatherImpact(snapshot.Weather),
			TrafficImpact: TrafficImpact(snapshot.Traffic),
		},
		CreatedAt: time.Now(),
	}

	s.log.WithFields(map[string]interface{}{
		"ride_type":       prediction.RideType,
		"distance_miles":  prediction.DistanceMiles,
		"predicted_price": prediction.PredictedPrice,
		"surge":           prediction.SurgeMultiplier,
	}).Debug("Fare estimated")

	return prediction, nil
}

// rideTypeMultiplier возвращает тарифный множитель для типа поездки.
// comfort принимается как исторический псевдоним standard.
func (s *FareService) rideTypeMultiplier(rideType models.RideType) (float64, error) {
	switch rideType {
	case models.RideTypeEconomy:
		return s.cfg.EconomyMultiplier, nil
	case models.RideTypeStandard, models.RideTypeComfort:
		return s.cfg.StandardMultiplier, nil
	case models.RideTypePremium:
		return s.cfg.PremiumMultiplier, nil
	case models.RideTypeLuxury:
		return s.cfg.LuxuryMultiplier, nil
	default:
		return 0, apperror.UnknownRideType(fmt.Sprintf("unknown ride type %q", rideType), nil)
	}
}

func validateCoordinate(name string, lat, lng float64) error {
	if math.IsNaN(lat) || math.IsNaN(lng) || lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return apperror.InvalidCoordinate(fmt.Sprintf("%s coordinates are out of range", name), nil)
	}
	return nil
}

// haversineMiles считает расстояние по дуге большого круга в милях
func haversineMiles(lat1, lng1, lat2, lng2 float64) float64 {
	rLat1 := lat1 * math.Pi / 180
	rLat2 := lat2 * math.Pi / 180
	dLat := (lat2 - lat1) * math.Pi / 180
	dLng := (lng2 - lng1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rLat1)*math.Cos(rLat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Asin(math.Sqrt(a))

	return earthRadiusKm * c * kmToMiles
}

// roundTo округляет до заданного числа знаков после запятой
func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
