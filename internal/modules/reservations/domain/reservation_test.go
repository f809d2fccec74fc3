package domain

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestReservationDecodesServerPayload(t *testing.T) {
	payload := `{"id":7,"cliente":{"id":3,"nombre":"Ana"},"fecha_reserva":"2024-05-01","numero_habitaciones":2,` +
		`"monto_total":"250.50","habitaciones_seleccionadas":[1,"2"],"estado":"activa","monto_pagado":"100.00"}`

	var reservation Reservation
	if err := json.Unmarshal([]byte(payload), &reservation); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reservation.ID != "7" || reservation.Client != "3" {
		t.Fatalf("unexpected ids: %q %q", reservation.ID, reservation.Client)
	}
	if reservation.TotalAmount != 250.5 || reservation.PaidAmount != 100 {
		t.Fatalf("unexpected amounts: %v %v", reservation.TotalAmount, reservation.PaidAmount)
	}
	if reservation.Balance() != 150.5 {
		t.Fatalf("unexpected balance: %v", reservation.Balance())
	}
	if len(reservation.SelectedRooms) != 2 || reservation.SelectedRooms[1] != "2" {
		t.Fatalf("unexpected rooms: %v", reservation.SelectedRooms)
	}
	if reservation.Status != ReservationStatusActive {
		t.Fatalf("unexpected status: %q", reservation.Status)
	}

	echoed, err := json.Marshal(reservation)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(echoed) != payload {
		t.Fatalf("expected payload echoed unchanged, got %s", echoed)
	}
}

func TestReservationRejectsMalformedAmount(t *testing.T) {
	var reservation Reservation
	if err := json.Unmarshal([]byte(`{"id":1,"monto_total":"lots"}`), &reservation); err == nil {
		t.Fatal("expected malformed amount to fail")
	}
}

func TestReservationInputValidate(t *testing.T) {
	valid := ReservationInput{
		Client:          "A",
		ReservationDate: "2024-01-01",
		RoomCount:       2,
		TotalAmount:     100,
		SelectedRooms:   []ID{"1", "2"},
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*ReservationInput)
		field  string
		msg    string
	}{
		{name: "client", mutate: func(in *ReservationInput) { in.Client = " " }, field: "cliente", msg: "client is required"},
		{name: "date", mutate: func(in *ReservationInput) { in.ReservationDate = "" }, field: "fecha_reserva", msg: "reservation date is required"},
		{name: "room count", mutate: func(in *ReservationInput) { in.RoomCount = 0 }, field: "numero_habitaciones", msg: "room count is required"},
		{name: "negative amount", mutate: func(in *ReservationInput) { in.TotalAmount = -5 }, field: "monto_total", msg: "total amount is required"},
		{name: "rooms", mutate: func(in *ReservationInput) { in.SelectedRooms = nil }, field: "habitaciones_seleccionadas", msg: "at least one room must be selected"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := valid
			tc.mutate(&input)
			err := input.Validate()
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Field != tc.field || verr.Error() != tc.msg {
				t.Fatalf("expected %s %q, got %s %q", tc.field, tc.msg, verr.Field, verr.Error())
			}
		})
	}
}

func TestReservationInputEncodesNumericIDs(t *testing.T) {
	input := ReservationInput{Client: "A", ReservationDate: "2024-01-01", RoomCount: 2, TotalAmount: 100, SelectedRooms: []ID{"1", "2"}}
	body, err := json.Marshal(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expected := `{"cliente":"A","fecha_reserva":"2024-01-01","numero_habitaciones":2,"monto_total":100,"habitaciones_seleccionadas":[1,2]}`
	if string(body) != expected {
		t.Fatalf("expected %s, got %s", expected, body)
	}
}

func TestReservationInputKeepsCallerPayload(t *testing.T) {
	raw := `{"cliente":"A","fecha_reserva":"2024-01-01","numero_habitaciones":1,"monto_total":"80","habitaciones_seleccionadas":[4],"tipo_reserva":"grupal"}`
	var input ReservationInput
	if err := json.Unmarshal([]byte(raw), &input); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := input.Validate(); err != nil {
		t.Fatalf("expected valid input, got %v", err)
	}
	body, err := json.Marshal(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(body) != raw {
		t.Fatalf("expected %s, got %s", raw, body)
	}
}

func TestPayloadDecoders(t *testing.T) {
	var availability AvailabilityResult
	if err := json.Unmarshal([]byte(`{"disponible":true,"mensaje":"ok"}`), &availability); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !availability.Available || availability.Message != "ok" {
		t.Fatalf("unexpected availability: %+v", availability)
	}

	var action ActionResult
	if err := json.Unmarshal([]byte(`{"message":"listo","reserva":{"id":4,"estado":"esperando_cliente"}}`), &action); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if action.Status != ReservationStatusWaiting || action.Reservation == nil || action.Reservation.ID != "4" {
		t.Fatalf("unexpected action result: %+v", action)
	}

	var stats Statistics
	if err := json.Unmarshal([]byte(`{"total":3,"por_estado":{"activa":1,"active":1,"vencida":1},"monto_total":"90"}`), &stats); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.ByStatus[ReservationStatusActive] != 2 || stats.TotalAmount != 90 {
		t.Fatalf("unexpected statistics: %+v", stats)
	}
}
