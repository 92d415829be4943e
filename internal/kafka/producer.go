package kafka

import (
	"encoding/json"
	"fmt"

	"fare-system/internal/config"
	"fare-system/internal/logger"
	"fare-system/internal/models"

	"github.com/IBM/sarama"
)

// Producer публикует доменные события в Kafka
type Producer struct {
	producer sarama.SyncProducer
	log      *logger.Logger
	topics   *config.Topics
}

// NewProducer создает синхронный продюсер Kafka
func NewProducer(cfg *config.KafkaConfig, log *logger.Logger) (*Producer, error) {
	saramaCfg := sarama.NewConfig()
	saramaCfg.Producer.RequiredAcks = sarama.WaitForAll
	saramaCfg.Producer.Retry.Max = 3
	saramaCfg.Producer.Return.Successes = true

	producer, err := sarama.NewSyncProducer(cfg.Brokers, saramaCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	log.Info("Successfully connected to Kafka")

	return &Producer{
		producer: producer,
		log:      log,
		topics:   &cfg.Topics,
	}, nil
}

// Close закрывает продюсер
func (p *Producer) Close() error {
	if p == nil || p.producer == nil {
		return nil
	}
	return p.producer.Close()
}

// publishEvent сериализует событие и отправляет его в указанный топик
func (p *Producer) publishEvent(topic string, event models.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(event.ID.String()),
		Value: sarama.ByteEncoder(data),
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("failed to send message to topic %s: %w", topic, err)
	}

	p.log.WithFields(map[string]interface{}{
		"topic":      topic,
		"partition":  partition,
		"offset":     offset,
		"event_type": event.Type,
	}).Debug("Event published to Kafka")

	return nil
}

// PublishMarketUpdated публикует событие обновления состояния рынка
func (p *Producer) PublishMarketUpdated(snapshot *models.MarketSnapshot) error {
	event, err := models.NewEvent(models.EventTypeMarketUpdated, snapshot)
	if err != nil {
		return fmt.Errorf("failed to build market event: %w", err)
	}
	return p.publishEvent(p.topics.Market, *event)
}

// PublishPredictionCompleted публикует событие завершения оценки стоимости
func (p *Producer) PublishPredictionCompleted(prediction *models.Prediction) error {
	event, err := models.NewEvent(models.EventTypePredictionCompleted, prediction)
	if err != nil {
		return fmt.Errorf("failed to build prediction event: %w", err)
	}
	return p.publishEvent(p.topics.Predictions, *event)
}
