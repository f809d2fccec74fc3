package domain

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Reservation is a booking that associates a client, a date and a set of rooms with a total amount.
// The server payload is kept verbatim in Raw so callers can echo it unchanged.
type Reservation struct {
	ID              ID                `json:"id"`
	Client          ID                `json:"cliente"`
	ReservationDate string            `json:"fecha_reserva"`
	RoomCount       int               `json:"numero_habitaciones"`
	TotalAmount     Amount            `json:"monto_total"`
	SelectedRooms   []ID              `json:"habitaciones_seleccionadas"`
	Status          ReservationStatus `json:"estado"`
	PaidAmount      Amount            `json:"monto_pagado"`
	CreatedAt       string            `json:"created_at,omitempty"`
	UpdatedAt       string            `json:"updated_at,omitempty"`
	Raw             json.RawMessage   `json:"-"`
}

type reservationAlias Reservation

func (r *Reservation) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	var alias reservationAlias
	if err := json.Unmarshal(trimmed, &alias); err != nil {
		return err
	}
	*r = Reservation(alias)
	r.Raw = append(json.RawMessage(nil), trimmed...)
	return nil
}

// MarshalJSON returns the server payload when one was decoded, otherwise the typed fields.
func (r Reservation) MarshalJSON() ([]byte, error) {
	if len(r.Raw) > 0 {
		return r.Raw, nil
	}
	return json.Marshal(reservationAlias(r))
}

// Balance returns the amount still owed.
func (r Reservation) Balance() Amount {
	if r.PaidAmount >= r.TotalAmount {
		return 0
	}
	return r.TotalAmount - r.PaidAmount
}

// ReservationInput is the payload accepted by create and update. When it was decoded from JSON
// the caller's object is kept in Raw and sent as-is; the typed fields only feed Validate.
type ReservationInput struct {
	Client          ID                `json:"cliente,omitempty"`
	ReservationDate string            `json:"fecha_reserva,omitempty"`
	RoomCount       int               `json:"numero_habitaciones,omitempty"`
	TotalAmount     Amount            `json:"monto_total,omitempty"`
	SelectedRooms   []ID              `json:"habitaciones_seleccionadas,omitempty"`
	Status          ReservationStatus `json:"estado,omitempty"`
	PaidAmount      *Amount           `json:"monto_pagado,omitempty"`
	Raw             json.RawMessage   `json:"-"`
}

type reservationInputAlias ReservationInput

func (in *ReservationInput) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	var alias reservationInputAlias
	if err := json.Unmarshal(trimmed, &alias); err != nil {
		return err
	}
	*in = ReservationInput(alias)
	in.Raw = append(json.RawMessage(nil), trimmed...)
	return nil
}

func (in ReservationInput) MarshalJSON() ([]byte, error) {
	if len(in.Raw) > 0 {
		return in.Raw, nil
	}
	return json.Marshal(reservationInputAlias(in))
}

// ValidationError describes an input rejected before any request is issued.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Validate enforces the creation-time invariants.
func (in ReservationInput) Validate() error {
	switch {
	case in.Client.IsZero():
		return &ValidationError{Field: "cliente", Message: "client is required"}
	case strings.TrimSpace(in.ReservationDate) == "":
		return &ValidationError{Field: "fecha_reserva", Message: "reservation date is required"}
	case in.RoomCount <= 0:
		return &ValidationError{Field: "numero_habitaciones", Message: "room count is required"}
	case in.TotalAmount <= 0:
		return &ValidationError{Field: "monto_total", Message: "total amount is required"}
	case len(in.SelectedRooms) == 0:
		return &ValidationError{Field: "habitaciones_seleccionadas", Message: "at least one room must be selected"}
	}
	return nil
}

// CacheOptions carries the optional freshness hints of a detail read.
type CacheOptions struct {
	// Timestamp is echoed as the _t query parameter when non-zero.
	Timestamp int64
	// Refresh asks the server to bypass its own caches.
	Refresh bool
}
