package domain

import "time"

type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

// Entry records one mutating staff action performed through the gateway.
type Entry struct {
	ID            string    `json:"id"`
	Operation     string    `json:"operation"`
	ReservationID string    `json:"reservationId,omitempty"`
	Actor         string    `json:"actor,omitempty"`
	Outcome       Outcome   `json:"outcome"`
	Message       string    `json:"message,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}
