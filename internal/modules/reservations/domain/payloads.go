package domain

import (
	"bytes"
	"encoding/json"
)

// Room is a hotel room attached to a reservation.
type Room struct {
	ID          ID     `json:"id"`
	Number      int    `json:"numero"`
	Type        string `json:"tipo"`
	NightPrice  Amount `json:"precio_noche"`
	Status      string `json:"estado"`
	Description string `json:"descripcion,omitempty"`
}

// ActionResult confirms a cancel or status transition.
type ActionResult struct {
	Message     string            `json:"message,omitempty"`
	Status      ReservationStatus `json:"estado,omitempty"`
	Reservation *Reservation      `json:"reserva,omitempty"`
	Raw         json.RawMessage   `json:"-"`
}

type actionResultAlias ActionResult

func (a *ActionResult) UnmarshalJSON(data []byte) error {
	var alias actionResultAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}
	*a = ActionResult(alias)
	a.Raw = append(json.RawMessage(nil), bytes.TrimSpace(data)...)
	if a.Status == ReservationStatusUnknown && a.Reservation != nil {
		a.Status = a.Reservation.Status
	}
	return nil
}

func (a ActionResult) MarshalJSON() ([]byte, error) {
	if len(a.Raw) > 0 {
		return a.Raw, nil
	}
	return json.Marshal(actionResultAlias(a))
}

// PaymentResult confirms a registered payment.
type PaymentResult struct {
	Message     string       `json:"message,omitempty"`
	PaidAmount  Amount       `json:"monto_pagado"`
	Balance     Amount       `json:"saldo_pendiente"`
	Reservation *Reservation `json:"reserva,omitempty"`
}

// AvailabilityResult answers a room availability check.
type AvailabilityResult struct {
	Available      bool            `json:"available"`
	AvailableRooms []Room          `json:"habitaciones_disponibles,omitempty"`
	Message        string          `json:"message,omitempty"`
	Raw            json.RawMessage `json:"-"`
}

func (a *AvailabilityResult) UnmarshalJSON(data []byte) error {
	var payload struct {
		Available      *bool  `json:"available"`
		Disponible     *bool  `json:"disponible"`
		AvailableRooms []Room `json:"habitaciones_disponibles"`
		Message        string `json:"message"`
		Mensaje        string `json:"mensaje"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return err
	}
	*a = AvailabilityResult{
		AvailableRooms: payload.AvailableRooms,
		Message:        payload.Message,
		Raw:            append(json.RawMessage(nil), bytes.TrimSpace(data)...),
	}
	switch {
	case payload.Available != nil:
		a.Available = *payload.Available
	case payload.Disponible != nil:
		a.Available = *payload.Disponible
	}
	if a.Message == "" {
		a.Message = payload.Mensaje
	}
	return nil
}

func (a AvailabilityResult) MarshalJSON() ([]byte, error) {
	if len(a.Raw) > 0 {
		return a.Raw, nil
	}
	type plain AvailabilityResult
	return json.Marshal(plain(a))
}

// Statistics summarises reservations by status.
type Statistics struct {
	Total       int                       `json:"total"`
	ByStatus    map[ReservationStatus]int `json:"por_estado,omitempty"`
	TotalAmount Amount                    `json:"monto_total"`
	Raw         json.RawMessage           `json:"-"`
}

func (s *Statistics) UnmarshalJSON(data []byte) error {
	var payload struct {
		Total       int            `json:"total"`
		ByStatus    map[string]int `json:"por_estado"`
		TotalAmount Amount         `json:"monto_total"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return err
	}
	*s = Statistics{
		Total:       payload.Total,
		TotalAmount: payload.TotalAmount,
		Raw:         append(json.RawMessage(nil), bytes.TrimSpace(data)...),
	}
	if len(payload.ByStatus) > 0 {
		s.ByStatus = make(map[ReservationStatus]int, len(payload.ByStatus))
		for key, count := range payload.ByStatus {
			s.ByStatus[NormalizeReservationStatus(key)] += count
		}
	}
	return nil
}

func (s Statistics) MarshalJSON() ([]byte, error) {
	if len(s.Raw) > 0 {
		return s.Raw, nil
	}
	type plain Statistics
	return json.Marshal(plain(s))
}
