package domain

import (
	"strings"
	"time"
)

// Metadata carries string attributes used for routing and display.
type Metadata map[string]string

// Message is the envelope pushed to websocket clients.
type Message struct {
	Topic      string    `json:"topic"`
	Entity     string    `json:"entity"`
	Action     string    `json:"action"`
	ResourceID string    `json:"resourceId,omitempty"`
	Metadata   Metadata  `json:"metadata,omitempty"`
	Data       any       `json:"data,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewReservationMessage builds a reservations.<action> message.
func NewReservationMessage(action, resourceID string, data any, metadata Metadata, at time.Time) *Message {
	return &Message{
		Topic:      ReservationTopic(action),
		Entity:     ReservationsEntity,
		Action:     strings.ToLower(strings.TrimSpace(action)),
		ResourceID: strings.TrimSpace(resourceID),
		Metadata:   metadata,
		Data:       data,
		Timestamp:  at.UTC(),
	}
}

// Merge returns a copy of m with extra applied on top. Blank values are skipped.
func (m Metadata) Merge(extra Metadata) Metadata {
	if len(m) == 0 && len(extra) == 0 {
		return nil
	}
	merged := make(Metadata, len(m)+len(extra))
	for key, value := range m {
		merged[key] = value
	}
	for key, value := range extra {
		if strings.TrimSpace(value) == "" {
			continue
		}
		merged[key] = value
	}
	return merged
}
