package domain

import (
	"bytes"
	"encoding/json"
	"strings"
)

// ReservationStatus represents the lifecycle of a reservation as exposed by the REST API.
type ReservationStatus string

const (
	ReservationStatusUnknown  ReservationStatus = ""
	ReservationStatusPending  ReservationStatus = "pendiente"
	ReservationStatusActive   ReservationStatus = "activa"
	ReservationStatusWaiting  ReservationStatus = "esperando_cliente"
	ReservationStatusExpired  ReservationStatus = "vencida"
	ReservationStatusCanceled ReservationStatus = "cancelada"
	ReservationStatusFinished ReservationStatus = "finalizada"
)

var allowedReservationStatuses = map[string]ReservationStatus{
	string(ReservationStatusPending):  ReservationStatusPending,
	string(ReservationStatusActive):   ReservationStatusActive,
	string(ReservationStatusWaiting):  ReservationStatusWaiting,
	string(ReservationStatusExpired):  ReservationStatusExpired,
	string(ReservationStatusCanceled): ReservationStatusCanceled,
	string(ReservationStatusFinished): ReservationStatusFinished,
	"pending":                         ReservationStatusPending,
	"active":                          ReservationStatusActive,
	"waiting":                         ReservationStatusWaiting,
	"esperando":                       ReservationStatusWaiting,
	"expired":                         ReservationStatusExpired,
	"cancelled":                       ReservationStatusCanceled,
	"canceled":                        ReservationStatusCanceled,
	"finished":                        ReservationStatusFinished,
	"completed":                       ReservationStatusFinished,
}

// NormalizeReservationStatus returns the canonical ReservationStatus for the given input.
// Unknown statuses are lowercased and returned as-is to avoid data loss.
func NormalizeReservationStatus(value any) ReservationStatus {
	s, ok := value.(string)
	if !ok {
		return ReservationStatusUnknown
	}
	trimmed := strings.ToLower(strings.TrimSpace(s))
	if trimmed == "" {
		return ReservationStatusUnknown
	}
	if status, ok := allowedReservationStatuses[trimmed]; ok {
		return status
	}
	return ReservationStatus(trimmed)
}

func (s *ReservationStatus) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*s = ReservationStatusUnknown
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = NormalizeReservationStatus(raw)
	return nil
}

// IsTerminal reports whether no further transitions are expected.
func (s ReservationStatus) IsTerminal() bool {
	switch s {
	case ReservationStatusCanceled, ReservationStatusFinished, ReservationStatusExpired:
		return true
	default:
		return false
	}
}
