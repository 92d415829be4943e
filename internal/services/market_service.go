package services

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"

	"fare-system/internal/apperror"
	"fare-system/internal/config"
	"fare-system/internal/logger"
	"fare-system/internal/models"
	"fare-system/internal/redis"
)

const (
	// Границы уровней demand/supply
	factorMin = 0.1
	factorMax = 1.0
)

// Веса погоды и трафика, умножаемые на surge при пересчёте.
// Нейтральные условия (clear, normal) дают вес 1.0, так что при
// demand == supply surge остаётся ровно 1.0.
var weatherWeights = map[models.WeatherCondition]float64{
	models.WeatherClear:  1.0,
	models.WeatherRainy:  1.1,
	models.WeatherSnowy:  1.25,
	models.WeatherStormy: 1.4,
}

var trafficWeights = map[models.TrafficCondition]float64{
	models.TrafficNormal:    1.0,
	models.TrafficHeavy:     1.15,
	models.TrafficCongested: 1.3,
}

// WeatherImpact возвращает вес погодных условий
func WeatherImpact(w models.WeatherCondition) float64 {
	if v, ok := weatherWeights[w]; ok {
		return v
	}
	return 1.0
}

// TrafficImpact возвращает вес загруженности дорог
func TrafficImpact(t models.TrafficCondition) float64 {
	if v, ok := trafficWeights[t]; ok {
		return v
	}
	return 1.0
}

// MarketPublisher публикует события обновления рынка
type MarketPublisher interface {
	PublishMarketUpdated(snapshot *models.MarketSnapshot) error
}

// SnapshotCache кеширует последний срез рынка
type SnapshotCache interface {
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// MarketService симулирует рыночные условия: единственный экземпляр на процесс,
// состояние мутируется только периодическим Advance и ручными SetDemand/SetSupply.
type MarketService struct {
	cfg      *config.MarketConfig
	log      *logger.Logger
	producer MarketPublisher
	cache    SnapshotCache

	mu    sync.RWMutex
	rng   *rand.Rand
	state models.MarketSnapshot
}

// NewMarketService создает симулятор с нейтральным начальным состоянием
func NewMarketService(cfg *config.MarketConfig, log *logger.Logger, producer MarketPublisher, cache SnapshotCache) *MarketService {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	s := &MarketService{
		cfg:      cfg,
		log:      log,
		producer: producer,
		cache:    cache,
		rng:      rand.New(rand.NewSource(seed)),
		state: models.MarketSnapshot{
			Demand:    0.5,
			Supply:    0.5,
			Weather:   models.WeatherClear,
			Traffic:   models.TrafficNormal,
			UpdatedAt: time.Now(),
		},
	}
	s.state.SurgeMultiplier = s.computeSurge(s.state.Demand, s.state.Supply, s.state.Weather, s.state.Traffic)
	return s
}

// Snapshot возвращает копию текущего состояния рынка
func (s *MarketService) Snapshot() models.MarketSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Advance выполняет один шаг симуляции: случайное возмущение demand/supply,
// вероятностная смена погоды и трафика, пересчёт surge.
func (s *MarketService) Advance() models.MarketSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Demand = clampFactor(s.state.Demand + s.perturbation())
	s.state.Supply = clampFactor(s.state.Supply + s.perturbation())

	if s.rng.Float64() < s.cfg.WeatherChangeProb {
		s.state.Weather = pickOtherWeather(s.rng, s.state.Weather)
	}
	if s.rng.Float64() < s.cfg.TrafficChangeProb {
		s.state.Traffic = pickOtherTraffic(s.rng, s.state.Traffic)
	}

	s.state.SurgeMultiplier = s.computeSurge(s.state.Demand, s.state.Supply, s.state.Weather, s.state.Traffic)
	s.state.UpdatedAt = time.Now()

	return s.state
}

// SetDemand вручную устанавливает уровень спроса
func (s *MarketService) SetDemand(value float64) (models.MarketSnapshot, error) {
	return s.setFactor(value, func(st *models.MarketSnapshot) { st.Demand = value })
}

// SetSupply вручную устанавливает уровень предложения
func (s *MarketService) SetSupply(value float64) (models.MarketSnapshot, error) {
	return s.setFactor(value, func(st *models.MarketSnapshot) { st.Supply = value })
}

func (s *MarketService) setFactor(value float64, apply func(*models.MarketSnapshot)) (models.MarketSnapshot, error) {
	if value < factorMin || value > factorMax {
		return models.MarketSnapshot{}, apperror.Validation("value must be within [0.1, 1.0]", nil)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	apply(&s.state)
	s.state.SurgeMultiplier = s.computeSurge(s.state.Demand, s.state.Supply, s.state.Weather, s.state.Traffic)
	s.state.UpdatedAt = time.Now()

	return s.state, nil
}

// Run запускает периодическое обновление рынка до отмены контекста.
// Каждый шаг публикуется в Kafka и кешируется в Redis; ошибки публикации
// логируются и не останавливают симуляцию.
func (s *MarketService) Run(ctx context.Context) {
	interval := time.Duration(s.cfg.UpdateIntervalSeconds) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.log.WithField("interval", interval.String()).Info("Market simulation started")

	for {
		select {
		case <-ctx.Done():
			s.log.Info("Market simulation stopped")
			return
		case <-ticker.C:
			snapshot := s.Advance()
			s.publish(ctx, snapshot)
		}
	}
}

func (s *MarketService) publish(ctx context.Context, snapshot models.MarketSnapshot) {
	if s.producer != nil {
		if err := s.producer.PublishMarketUpdated(&snapshot); err != nil {
			s.log.WithError(err).Error("Failed to publish market update")
		}
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, redis.KeyMarketCurrent, snapshot, 0); err != nil {
			s.log.WithError(err).Error("Failed to cache market snapshot")
		}
	}
}

// computeSurge выводит surge как чистую функцию от (demand, supply, weather, traffic)
func (s *MarketService) computeSurge(demand, supply float64, weather models.WeatherCondition, traffic models.TrafficCondition) float64 {
	ratio := demand / supply
	if ratio > s.cfg.SurgeRatioCap {
		ratio = s.cfg.SurgeRatioCap
	}

	surge := (s.cfg.SurgeBase + ratio*s.cfg.SurgeSlope) * WeatherImpact(weather) * TrafficImpact(traffic)

	if surge < s.cfg.SurgeFloor {
		surge = s.cfg.SurgeFloor
	}
	if surge > s.cfg.SurgeCeiling {
		surge = s.cfg.SurgeCeiling
	}

	return math.Round(surge*100) / 100
}

// perturbation возвращает равномерное случайное смещение в [-p, +p]
func (s *MarketService) perturbation() float64 {
	return (s.rng.Float64()*2 - 1) * s.cfg.Perturbation
}

func clampFactor(v float64) float64 {
	if v < factorMin {
		return factorMin
	}
	if v > factorMax {
		return factorMax
	}
	return v
}

// pickOtherWeather выбирает случайное состояние погоды, отличное от текущего
func pickOtherWeather(rng *rand.Rand, current models.WeatherCondition) models.WeatherCondition {
	candidates := make([]models.WeatherCondition, 0, len(models.AllWeatherConditions)-1)
	for _, w := range models.AllWeatherConditions {
		if w != current {
			candidates = append(candidates, w)
		}
	}
	return candidates[rng.Intn(len(candidates))]
}

// pickOtherTraffic выбирает случайное состояние трафика, отличное от текущего
func pickOtherTraffic(rng *rand.Rand, current models.TrafficCondition) models.TrafficCondition {
	candidates := make([]models.TrafficCondition, 0, len(models.AllTrafficConditions)-1)
	for _, t := range models.AllTrafficConditions {
		if t != current {
			candidates = append(candidates, t)
		}
	}
	return candidates[rng.Intn(len(candidates))]
}
