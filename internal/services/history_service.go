package services

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"fare-system/internal/config"
	"fare-system/internal/database"
	"fare-system/internal/logger"
	"fare-system/internal/models"
	"fare-system/internal/redis"
)

// statsCacheKey — ключ кеша агрегатов в Redis
var statsCacheKey = redis.GenerateKey(redis.KeyPrefixStats, "global")

// HistoryService хранит последние предсказания в памяти (ограниченный FIFO)
// и опционально персистит их в PostgreSQL для агрегатов.
type HistoryService struct {
	cfg   *config.HistoryConfig
	log   *logger.Logger
	db    *database.DB
	cache *redis.Client

	mu     sync.Mutex
	recent []*models.Prediction
}

// NewHistoryService создает сервис истории. db и cache могут быть nil —
// тогда история живет только в памяти.
func NewHistoryService(cfg *config.HistoryConfig, log *logger.Logger, db *database.DB, cache *redis.Client) *HistoryService {
	return &HistoryService{
		cfg:    cfg,
		log:    log,
		db:     db,
		cache:  cache,
		recent: make([]*models.Prediction, 0, cfg.Capacity),
	}
}

// Append добавляет предсказание в историю. При переполнении вытесняется
// самая старая запись.
func (s *HistoryService) Append(ctx context.Context, prediction *models.Prediction) error {
	s.mu.Lock()
	if len(s.recent) >= s.cfg.Capacity {
		s.recent = s.recent[1:]
	}
	s.recent = append(s.recent, prediction)
	s.mu.Unlock()

	if s.cfg.PersistEnabled && s.db != nil {
		if err := s.insert(ctx, prediction); err != nil {
			return fmt.Errorf("failed to persist prediction: %w", err)
		}
	}

	if s.cache != nil {
		if err := s.cache.DeleteByPrefix(ctx, redis.KeyPrefixStats); err != nil {
			s.log.WithError(err).Warn("Failed to invalidate stats cache")
		}
	}

	return nil
}

// Recent возвращает последние предсказания, новые первыми
func (s *HistoryService) Recent() []*models.Prediction {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]*models.Prediction, len(s.recent))
	for i, p := range s.recent {
		result[len(s.recent)-1-i] = p
	}
	return result
}

// Stats возвращает агрегаты по сохраненным предсказаниям. Результат
// кешируется в Redis на настроенный интервал.
func (s *HistoryService) Stats(ctx context.Context) (*models.PredictionStats, error) {
	if s.cache != nil {
		var cached models.PredictionStats
		if err := s.cache.Get(ctx, statsCacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	var stats *models.PredictionStats
	var err error
	if s.db != nil {
		stats, err = s.statsFromDB(ctx)
	} else {
		stats = s.statsFromMemory()
	}
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		ttl := time.Duration(s.cfg.StatsCacheSeconds) * time.Second
		if err := s.cache.Set(ctx, statsCacheKey, stats, ttl); err != nil {
			s.log.WithError(err).Warn("Failed to cache stats")
		}
	}

	return stats, nil
}

func (s *HistoryService) insert(ctx context.Context, p *models.Prediction) error {
	query := `
		INSERT INTO predictions (id, ride_type, predicted_price, distance_miles, duration_minutes, surge_multiplier, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := s.db.ExecContext(ctx, query,
		p.ID, p.RideType, p.PredictedPrice, p.DistanceMiles, p.DurationMinutes, p.SurgeMultiplier, p.CreatedAt)
	return err
}

func (s *HistoryService) statsFromDB(ctx context.Context) (*models.PredictionStats, error) {
	query := `
		SELECT COUNT(*),
		       COALESCE(AVG(predicted_price), 0),
		       COALESCE(AVG(surge_multiplier), 0),
		       COALESCE(MAX(surge_multiplier), 0)
		FROM predictions`

	stats := &models.PredictionStats{GeneratedAt: time.Now()}
	row := s.db.QueryRowContext(ctx, query)
	if err := row.Scan(&stats.Count, &stats.AvgPrice, &stats.AvgSurge, &stats.MaxSurge); err != nil {
		if err == sql.ErrNoRows {
			return stats, nil
		}
		return nil, fmt.Errorf("failed to query prediction stats: %w", err)
	}

	stats.AvgPrice = roundTo(stats.AvgPrice, 2)
	stats.AvgSurge = roundTo(stats.AvgSurge, 2)
	return stats, nil
}

func (s *HistoryService) statsFromMemory() *models.PredictionStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := &models.PredictionStats{Count: len(s.recent), GeneratedAt: time.Now()}
	if len(s.recent) == 0 {
		return stats
	}

	var sumPrice, sumSurge float64
	for _, p := range s.recent {
		sumPrice += p.PredictedPrice
		sumSurge += p.SurgeMultiplier
		if p.SurgeMultiplier > stats.MaxSurge {
			stats.MaxSurge = p.SurgeMultiplier
		}
	}
	stats.AvgPrice = roundTo(sumPrice/float64(len(s.recent)), 2)
	stats.AvgSurge = roundTo(sumSurge/float64(len(s.recent)), 2)
	return stats
}
