package transport

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"hotelReservas/internal/modules/realtime/domain"
	"hotelReservas/internal/modules/realtime/infrastructure"
	"hotelReservas/internal/shared/auth"
)

// SnapshotSource renders the current contents of a reservations board (today, waiting, active, expired).
type SnapshotSource interface {
	Snapshot(ctx context.Context, board string) (*domain.Message, error)
}

type refreshPayload struct {
	Board string `json:"board"`
}

// NewUpgrader accepts any origin when allowedOrigins is empty.
func NewUpgrader(allowedOrigins []string) *websocket.Upgrader {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		if trimmed := strings.TrimRight(strings.TrimSpace(origin), "/"); trimmed != "" {
			allowed[trimmed] = struct{}{}
		}
	}
	return &websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			if len(allowed) == 0 {
				return true
			}
			origin := strings.TrimRight(r.Header.Get("Origin"), "/")
			if origin == "" {
				return true
			}
			_, ok := allowed[origin]
			return ok
		},
	}
}

// NewReservationsWebsocketHandler exposes /ws/reservations. The token comes from the token query
// parameter or the Authorization header and is verified when a validator is configured.
func NewReservationsWebsocketHandler(
	hub *infrastructure.Hub,
	upgrader *websocket.Upgrader,
	validator auth.TokenValidator,
	snapshots SnapshotSource,
) func(echo.Context) error {
	if upgrader == nil {
		upgrader = NewUpgrader(nil)
	}

	return func(c echo.Context) error {
		requestID := c.Response().Header().Get(echo.HeaderXRequestID)
		peerIP := c.RealIP()

		token := strings.TrimSpace(c.QueryParam("token"))
		if token == "" {
			token = auth.ExtractBearerToken(c.Request())
		}

		userID := "anonymous"
		var roles []string
		if validator != nil {
			claims, err := validator.Validate(token)
			if err != nil {
				message := "invalid token"
				if errors.Is(err, auth.ErrMissingToken) {
					message = "missing token"
				}
				slog.Warn("ws handler auth failed", slog.String("ip", peerIP), slog.String("reqID", requestID), slog.Any("error", err))
				return echo.NewHTTPError(http.StatusUnauthorized, message)
			}
			userID = claims.Actor()
			roles = claims.Roles
		}

		sessionID := strings.TrimSpace(c.QueryParam("sessionId"))
		if sessionID == "" {
			sessionID = uuid.NewString()
		}

		conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
		if err != nil {
			slog.Error("ws handler upgrade failed", slog.String("ip", peerIP), slog.String("reqID", requestID), slog.Any("error", err))
			return err
		}

		client := infrastructure.NewClient(hub, conn, userID, sessionID, 16, newRefreshCommandHandler(token, snapshots))
		topics := domain.ReservationTopics()
		hub.AttachClient(client, topics)

		go client.WritePump()
		go client.ReadPump()

		client.SendDomainMessage(&domain.Message{
			Topic:  domain.TopicSystemConnected,
			Entity: domain.SystemEntity,
			Action: domain.ActionConnected,
			Metadata: domain.Metadata{
				"userId":    userID,
				"sessionId": sessionID,
			},
			Data: map[string]any{
				"allowedTopics": topics,
				"roles":         roles,
			},
			Timestamp: time.Now().UTC(),
		})
		slog.Info("ws connected", slog.String("userId", userID), slog.String("sessionId", sessionID), slog.String("ip", peerIP), slog.String("reqID", requestID))
		return nil
	}
}

// newRefreshCommandHandler answers {"action":"refresh","payload":{"board":"today"}} with a snapshot
// fetched on behalf of the connected staff member.
func newRefreshCommandHandler(token string, snapshots SnapshotSource) infrastructure.CommandHandler {
	if snapshots == nil {
		return nil
	}
	return func(ctx context.Context, client *infrastructure.Client, cmd infrastructure.Command) {
		if !strings.EqualFold(strings.TrimSpace(cmd.Action), "refresh") {
			sendError(client, cmd.Action, "unsupported action")
			return
		}
		var payload refreshPayload
		if len(cmd.Payload) > 0 {
			if err := json.Unmarshal(cmd.Payload, &payload); err != nil {
				sendError(client, "refresh", "invalid payload")
				return
			}
		}
		board := strings.TrimSpace(payload.Board)
		if board == "" {
			board = strings.TrimSpace(cmd.Topic)
		}

		msg, err := snapshots.Snapshot(auth.WithToken(ctx, token), board)
		if err != nil {
			slog.Warn("ws refresh failed", slog.String("userId", client.UserID()), slog.String("board", board), slog.Any("error", err))
			sendError(client, "refresh", err.Error())
			return
		}
		client.SendDomainMessage(msg)
	}
}

func sendError(client *infrastructure.Client, action, reason string) {
	client.SendDomainMessage(&domain.Message{
		Topic:     domain.ReservationTopic(domain.ActionError),
		Entity:    domain.ReservationsEntity,
		Action:    domain.ActionError,
		Metadata:  domain.Metadata{"command": strings.ToLower(strings.TrimSpace(action))},
		Data:      map[string]string{"error": reason},
		Timestamp: time.Now().UTC(),
	})
}
