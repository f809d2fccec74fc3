package domain

import "strings"

const (
	SystemEntity       = "system"
	ReservationsEntity = "reservations"

	TopicSystemConnected = SystemEntity + ".connected"
	TopicSystemPong      = SystemEntity + ".pong"
	TopicSystemError     = SystemEntity + ".error"

	ActionConnected = "connected"
	ActionPong      = "pong"
	ActionError     = "error"
	ActionSnapshot  = "snapshot"
	ActionCreated   = "created"
	ActionUpdated   = "updated"
	ActionCancelled = "cancelled"
	ActionActivated = "activated"
	ActionWaiting   = "waiting"
	ActionPayment   = "payment"
	ActionRooms     = "rooms"
)

// ReservationActions lists every action a reservations client is subscribed to on connect.
var ReservationActions = []string{
	ActionCreated,
	ActionUpdated,
	ActionCancelled,
	ActionActivated,
	ActionWaiting,
	ActionPayment,
	ActionRooms,
	ActionSnapshot,
	ActionError,
}

// ReservationTopic returns the canonical reservations topic for the given action.
func ReservationTopic(action string) string {
	return CustomTopic(ReservationsEntity, action)
}

// ReservationTopics returns the topics for ReservationActions.
func ReservationTopics() []string {
	topics := make([]string, 0, len(ReservationActions))
	for _, action := range ReservationActions {
		topics = append(topics, ReservationTopic(action))
	}
	return topics
}

// CustomTopic returns the canonical topic for the given entity and action.
func CustomTopic(entity, action string) string {
	cleanEntity := strings.TrimSpace(entity)
	cleanAction := strings.ToLower(strings.TrimSpace(action))
	if cleanEntity == "" || cleanAction == "" {
		return ""
	}
	return cleanEntity + "." + cleanAction
}
