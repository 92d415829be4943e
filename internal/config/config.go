package config

import (
	"os"
	"strconv"
	"strings"
)

// Config представляет конфигурацию приложения
type Config struct {
	Server    ServerConfig    `json:"server"`
	Database  DatabaseConfig  `json:"database"`
	Redis     RedisConfig     `json:"redis"`
	Kafka     KafkaConfig     `json:"kafka"`
	Logger    LoggerConfig    `json:"logger"`
	Pricing   PricingConfig   `json:"pricing"`
	Market    MarketConfig    `json:"market"`
	History   HistoryConfig   `json:"history"`
	RateLimit RateLimitConfig `json:"rate_limit"`
}

// ServerConfig представляет конфигурацию HTTP сервера
type ServerConfig struct {
	Port         string `json:"port"`
	Host         string `json:"host"`
	ReadTimeout  int    `json:"read_timeout"`
	WriteTimeout int    `json:"write_timeout"`
}

// DatabaseConfig представляет конфигурацию базы данных
type DatabaseConfig struct {
	Host     string `json:"host"`
	Port     string `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"db_name"`
	SSLMode  string `json:"ssl_mode"`
}

// RedisConfig представляет конфигурацию Redis
type RedisConfig struct {
	Host     string `json:"host"`
	Port     string `json:"port"`
	Password string `json:"password"`
	DB       int    `json:"db"`
}

// KafkaConfig представляет конфигурацию Kafka
type KafkaConfig struct {
	Brokers []string `json:"brokers"`
	GroupID string   `json:"group_id"`
	Topics  Topics   `json:"topics"`
}

// Topics представляет список топиков Kafka
type Topics struct {
	Market      string `json:"market"`
	Predictions string `json:"predictions"`
}

// LoggerConfig представляет конфигурацию логгера
type LoggerConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"`
	File   string `json:"file"`
}

// PricingConfig хранит тарифы расчёта стоимости поездки.
// Все значения — политика ценообразования, а не контракт: подбираются оператором.
type PricingConfig struct {
	BaseFare           float64 `json:"base_fare"`
	PerMileRate        float64 `json:"per_mile_rate"`
	PerMinuteRate      float64 `json:"per_minute_rate"`
	AvgSpeedMph        float64 `json:"avg_speed_mph"`
	EconomyMultiplier  float64 `json:"economy_multiplier"`
	StandardMultiplier float64 `json:"standard_multiplier"`
	PremiumMultiplier  float64 `json:"premium_multiplier"`
	LuxuryMultiplier   float64 `json:"luxury_multiplier"`
}

// MarketConfig описывает настройки симулятора рыночных условий
type MarketConfig struct {
	UpdateIntervalSeconds int     `json:"update_interval_seconds"`
	Perturbation          float64 `json:"perturbation"`
	WeatherChangeProb     float64 `json:"weather_change_prob"`
	TrafficChangeProb     float64 `json:"traffic_change_prob"`
	SurgeBase             float64 `json:"surge_base"`
	SurgeSlope            float64 `json:"surge_slope"`
	SurgeRatioCap         float64 `json:"surge_ratio_cap"`
	SurgeFloor            float64 `json:"surge_floor"`
	SurgeCeiling          float64 `json:"surge_ceiling"`
	Seed                  int64   `json:"seed"` // 0 — сид от текущего времени
}

// HistoryConfig описывает настройки истории предсказаний
type HistoryConfig struct {
	Capacity          int  `json:"capacity"`
	PersistEnabled    bool `json:"persist_enabled"`
	StatsCacheSeconds int  `json:"stats_cache_seconds"`
}

// RateLimitConfig описывает настройки rate limiting
type RateLimitConfig struct {
	Enabled       bool   `json:"enabled"`
	Requests      int    `json:"requests"`
	WindowSeconds int    `json:"window_seconds"`
	KeyPrefix     string `json:"key_prefix"`
}

// Load загружает конфигурацию из переменных окружения
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			Host:         getEnv("SERVER_HOST", "0.0.0.0"),
			ReadTimeout:  getEnvAsInt("SERVER_READ_TIMEOUT", 10),
			WriteTimeout: getEnvAsInt("SERVER_WRITE_TIMEOUT", 10),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "fare_user"),
			Password: getEnv("DB_PASSWORD", "fare_pass"),
			DBName:   getEnv("DB_NAME", "fare_system"),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Kafka: KafkaConfig{
			Brokers: strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
			GroupID: getEnv("KAFKA_GROUP_ID", "fare-system"),
			Topics: Topics{
				Market:      getEnv("KAFKA_TOPIC_MARKET", "market"),
				Predictions: getEnv("KAFKA_TOPIC_PREDICTIONS", "predictions"),
			},
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
			File:   getEnv("LOG_FILE", ""),
		},
		Pricing: PricingConfig{
			BaseFare:           getEnvAsFloat("PRICING_BASE_FARE", 2.50),
			PerMileRate:        getEnvAsFloat("PRICING_PER_MILE", 1.50),
			PerMinuteRate:      getEnvAsFloat("PRICING_PER_MINUTE", 0.35),
			AvgSpeedMph:        getEnvAsFloat("PRICING_AVG_SPEED_MPH", 20.0),
			EconomyMultiplier:  getEnvAsFloat("PRICING_ECONOMY_MULT", 0.8),
			StandardMultiplier: getEnvAsFloat("PRICING_STANDARD_MULT", 1.0),
			PremiumMultiplier:  getEnvAsFloat("PRICING_PREMIUM_MULT", 1.3),
			LuxuryMultiplier:   getEnvAsFloat("PRICING_LUXURY_MULT", 1.8),
		},
		Market: MarketConfig{
			UpdateIntervalSeconds: getEnvAsInt("MARKET_UPDATE_INTERVAL_SECONDS", 5),
			Perturbation:          getEnvAsFloat("MARKET_PERTURBATION", 0.05),
			WeatherChangeProb:     getEnvAsFloat("MARKET_WEATHER_CHANGE_PROB", 0.1),
			TrafficChangeProb:     getEnvAsFloat("MARKET_TRAFFIC_CHANGE_PROB", 0.1),
			SurgeBase:             getEnvAsFloat("MARKET_SURGE_BASE", 0.8),
			SurgeSlope:            getEnvAsFloat("MARKET_SURGE_SLOPE", 0.2),
			SurgeRatioCap:         getEnvAsFloat("MARKET_SURGE_RATIO_CAP", 2.5),
			SurgeFloor:            getEnvAsFloat("MARKET_SURGE_FLOOR", 0.8),
			SurgeCeiling:          getEnvAsFloat("MARKET_SURGE_CEILING", 3.0),
			Seed:                  int64(getEnvAsInt("MARKET_SEED", 0)),
		},
		History: HistoryConfig{
			Capacity:          getEnvAsInt("HISTORY_CAPACITY", 10),
			PersistEnabled:    getEnvAsBool("HISTORY_PERSIST_ENABLED", true),
			StatsCacheSeconds: getEnvAsInt("HISTORY_STATS_CACHE_SECONDS", 60),
		},
		RateLimit: RateLimitConfig{
			Enabled:       getEnvAsBool("RATE_LIMIT_ENABLED", false),
			Requests:      getEnvAsInt("RATE_LIMIT_REQUESTS", 100),
			WindowSeconds: getEnvAsInt("RATE_LIMIT_WINDOW_SECONDS", 60),
			KeyPrefix:     getEnv("RATE_LIMIT_KEY_PREFIX", "ratelimit"),
		},
	}
}

// getEnv получает значение переменной окружения с значением по умолчанию
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt получает значение переменной окружения как int с значением по умолчанию
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsFloat получает значение переменной окружения как float64 с значением по умолчанию
func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool получает значение переменной окружения как bool с значением по умолчанию
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := strings.ToLower(getEnv(key, ""))
	if valueStr == "true" || valueStr == "1" || valueStr == "yes" {
		return true
	}
	if valueStr == "false" || valueStr == "0" || valueStr == "no" {
		return false
	}
	return defaultValue
}
