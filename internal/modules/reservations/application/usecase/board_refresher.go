package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	realtimeport "hotelReservas/internal/modules/realtime/application/port"
	realtime "hotelReservas/internal/modules/realtime/domain"
	"hotelReservas/internal/modules/reservations/application/port"
	"hotelReservas/internal/modules/reservations/domain"
	"hotelReservas/internal/shared/auth"
)

const (
	BoardToday   = "today"
	BoardWaiting = "waiting"
	BoardActive  = "active"
	BoardExpired = "expired"
)

var ErrUnknownBoard = errors.New("unknown board")

// Boards lists the boards refreshed on every run, in broadcast order.
var Boards = []string{BoardToday, BoardWaiting, BoardActive, BoardExpired}

var boardAliases = map[string]string{
	"hoy":               BoardToday,
	"esperando_cliente": BoardWaiting,
	"estadias_activas":  BoardActive,
	"vencidas":          BoardExpired,
}

// BoardRefresher publishes the front-desk boards to connected staff.
type BoardRefresher struct {
	api         port.ReservationAPI
	broadcaster realtimeport.Broadcaster
	tokens      auth.TokenProvider
	timeout     time.Duration
	now         func() time.Time
}

// NewBoardRefresher reads the service account token from tokens on every run. A nil provider sends
// the requests without a token.
func NewBoardRefresher(api port.ReservationAPI, broadcaster realtimeport.Broadcaster, tokens auth.TokenProvider, timeout time.Duration) *BoardRefresher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &BoardRefresher{
		api:         api,
		broadcaster: broadcaster,
		tokens:      tokens,
		timeout:     timeout,
		now:         time.Now,
	}
}

// Snapshot fetches one board and wraps it in a reservations.snapshot message.
func (r *BoardRefresher) Snapshot(ctx context.Context, board string) (*realtime.Message, error) {
	name := canonicalBoard(board)
	var (
		items []domain.Reservation
		err   error
	)
	switch name {
	case BoardToday:
		items, err = r.api.Today(ctx)
	case BoardWaiting:
		items, err = r.api.WaitingList(ctx)
	case BoardActive:
		items, err = r.api.ActiveStays(ctx)
	case BoardExpired:
		items, err = r.api.ExpiredList(ctx)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBoard, board)
	}
	if err != nil {
		return nil, err
	}

	metadata := realtime.Metadata{"board": name, "count": strconv.Itoa(len(items))}
	return realtime.NewReservationMessage(realtime.ActionSnapshot, "", items, metadata, r.now()), nil
}

// RefreshAll broadcasts every board. A failing board is announced on reservations.error and does not
// stop the others.
func (r *BoardRefresher) RefreshAll(ctx context.Context) error {
	if r.tokens != nil {
		token, err := r.tokens.Token(ctx)
		if err != nil {
			return fmt.Errorf("service token: %w", err)
		}
		if token != "" {
			ctx = auth.WithToken(ctx, token)
		}
	}

	var errs []error
	for _, board := range Boards {
		msg, err := r.Snapshot(ctx, board)
		if err != nil {
			slog.Warn("board refresh failed", slog.String("board", board), slog.Any("error", err))
			errs = append(errs, fmt.Errorf("%s: %w", board, err))
			r.broadcaster.Broadcast(ctx, realtime.NewReservationMessage(
				realtime.ActionError, "", map[string]string{"error": err.Error()}, realtime.Metadata{"board": board}, r.now(),
			))
			continue
		}
		r.broadcaster.Broadcast(ctx, msg)
	}
	return errors.Join(errs...)
}

// Schedule registers RefreshAll on c using a standard cron spec or a descriptor such as "@every 1m".
func (r *BoardRefresher) Schedule(c *cron.Cron, spec string) (cron.EntryID, error) {
	id, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()
		if err := r.RefreshAll(ctx); err != nil {
			slog.Error("scheduled board refresh finished with errors", slog.Any("error", err))
		}
	})
	if err != nil {
		return 0, fmt.Errorf("schedule board refresh %q: %w", spec, err)
	}
	return id, nil
}

func canonicalBoard(board string) string {
	key := strings.ToLower(strings.TrimSpace(board))
	if alias, ok := boardAliases[key]; ok {
		return alias
	}
	return key
}
