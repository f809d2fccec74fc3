package infrastructure

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"hotelReservas/internal/modules/reservations/domain"
	"hotelReservas/internal/shared/normalization"
)

var errEmptyBody = errors.New("empty response body")

// listEnvelopeKeys are tried in order when a list endpoint answers with an object.
var listEnvelopeKeys = []string{"results", "data", "reservas", "habitaciones"}

// reservationEnvelopeKeys wrap a reservation in action responses.
var reservationEnvelopeKeys = []string{"reserva", "reservation", "data"}

func decodeList[T any](body []byte) ([]T, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, errEmptyBody
	}

	switch trimmed[0] {
	case '[':
		items := make([]T, 0)
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("decode list: %w", err)
		}
		return items, nil
	case '{':
		var envelope map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &envelope); err != nil {
			return nil, fmt.Errorf("decode list envelope: %w", err)
		}
		for _, key := range listEnvelopeKeys {
			raw, ok := envelope[key]
			if !ok {
				continue
			}
			raw = bytes.TrimSpace(raw)
			if len(raw) == 0 || raw[0] != '[' {
				continue
			}
			return decodeList[T](raw)
		}
		return nil, fmt.Errorf("decode list: object without a results array")
	default:
		return nil, fmt.Errorf("decode list: unexpected payload %.32q", trimmed)
	}
}

func decodeObject[T any](body []byte, allowEmpty bool) (*T, error) {
	trimmed := bytes.TrimSpace(body)
	result := new(T)
	if len(trimmed) == 0 {
		if allowEmpty {
			return result, nil
		}
		return nil, errEmptyBody
	}
	if trimmed[0] != '{' {
		return nil, fmt.Errorf("decode object: unexpected payload %.32q", trimmed)
	}
	if err := json.Unmarshal(trimmed, result); err != nil {
		return nil, fmt.Errorf("decode object: %w", err)
	}
	return result, nil
}

// decodeReservation accepts a bare reservation or one nested under reserva/reservation/data.
func decodeReservation(body []byte) (*domain.Reservation, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, errEmptyBody
	}
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return nil, fmt.Errorf("decode reservation: %w", err)
	}
	if _, ok := envelope["id"]; !ok {
		for _, key := range reservationEnvelopeKeys {
			raw := bytes.TrimSpace(envelope[key])
			if len(raw) > 0 && raw[0] == '{' {
				return decodeReservation(raw)
			}
		}
	}
	return decodeObject[domain.Reservation](trimmed, false)
}

// errorMessage prefers detail, then error, then the status fallback.
func errorMessage(body []byte) (string, bool) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return "", false
	}
	var payload map[string]any
	if err := json.Unmarshal(trimmed, &payload); err != nil {
		return "", false
	}
	for _, key := range []string{"detail", "error"} {
		if message := messageText(payload[key]); message != "" {
			return message, true
		}
	}
	return "", false
}

// messageText flattens a string or a list of strings such as {"detail": ["bad date"]}.
func messageText(value any) string {
	items, ok := value.([]any)
	if !ok {
		return normalization.AsString(value)
	}
	parts := make([]string, 0, len(items))
	for _, item := range items {
		if text := normalization.AsString(item); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, ", ")
}
