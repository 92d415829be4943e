package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventType представляет тип события в системе
type EventType string

const (
	EventTypeMarketUpdated       EventType = "market.updated"
	EventTypePredictionCompleted EventType = "prediction.completed"
)

// Event представляет событие, публикуемое в Kafka
type Event struct {
	ID        uuid.UUID       `json:"id"`
	Type      EventType       `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// NewEvent создает событие с сериализованной полезной нагрузкой
func NewEvent(eventType EventType, payload interface{}) (*Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Event{
		ID:        uuid.New(),
		Type:      eventType,
		Data:      data,
		CreatedAt: time.Now(),
	}, nil
}
