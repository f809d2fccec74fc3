package handler

import (
	"context"
	"log/slog"
	"strings"

	"hotelReservas/internal/modules/realtime/application/port"
	"hotelReservas/internal/modules/realtime/application/usecase"
	"hotelReservas/internal/modules/realtime/domain"
)

// eventActionAliases maps the verbs emitted by the reservations backend onto hub actions.
var eventActionAliases = map[string]string{
	"create":             domain.ActionCreated,
	"update":             domain.ActionUpdated,
	"updated_status":     domain.ActionUpdated,
	"delete":             domain.ActionCancelled,
	"deleted":            domain.ActionCancelled,
	"cancel":             domain.ActionCancelled,
	"canceled":           domain.ActionCancelled,
	"marked_active":      domain.ActionActivated,
	"marcar_activa":      domain.ActionActivated,
	"marked_waiting":     domain.ActionWaiting,
	"marcar_esperando":   domain.ActionWaiting,
	"payment_received":   domain.ActionPayment,
	"registrar_pago":     domain.ActionPayment,
	"rooms_added":        domain.ActionRooms,
	"agregar_habitacion": domain.ActionRooms,
}

// ReservationEventsHandler forwards backend reservation events from one Kafka topic to the hub
// under the reservations.<action> topics. Actions outside the allowed set are dropped.
type ReservationEventsHandler struct {
	kafkaTopic     string
	allowedActions map[string]struct{}
	broadcastUC    *usecase.BroadcastUseCase
}

func NewReservationEventsHandler(kafkaTopic string, allowedActions []string, broadcastUC *usecase.BroadcastUseCase) *ReservationEventsHandler {
	if len(allowedActions) == 0 {
		allowedActions = domain.ReservationActions
	}
	actionSet := make(map[string]struct{}, len(allowedActions))
	for _, a := range allowedActions {
		if v := strings.TrimSpace(strings.ToLower(a)); v != "" {
			actionSet[v] = struct{}{}
		}
	}
	return &ReservationEventsHandler{
		kafkaTopic:     strings.TrimSpace(kafkaTopic),
		allowedActions: actionSet,
		broadcastUC:    broadcastUC,
	}
}

func (h *ReservationEventsHandler) Topic() string { return h.kafkaTopic }

func (h *ReservationEventsHandler) Handle(ctx context.Context, msg *domain.Message) error {
	if msg == nil {
		return nil
	}
	action := canonicalAction(msg.Action)
	if _, ok := h.allowedActions[action]; !ok {
		slog.Debug("reservation event skipped", slog.String("kafkaTopic", h.kafkaTopic), slog.String("action", msg.Action))
		return nil
	}

	msg.Entity = domain.ReservationsEntity
	msg.Action = action
	msg.Topic = domain.ReservationTopic(action)
	if msg.ResourceID == "" && msg.Metadata != nil {
		msg.ResourceID = strings.TrimSpace(msg.Metadata["reservationId"])
	}

	slog.Info("reservation event forwarded", slog.String("topic", msg.Topic), slog.String("resourceId", msg.ResourceID))
	h.broadcastUC.Execute(ctx, msg)
	return nil
}

func canonicalAction(action string) string {
	key := strings.ToLower(strings.TrimSpace(action))
	if mapped, ok := eventActionAliases[key]; ok {
		return mapped
	}
	return key
}

var _ port.TopicHandler = (*ReservationEventsHandler)(nil)
