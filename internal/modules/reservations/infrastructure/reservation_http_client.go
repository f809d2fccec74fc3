package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"hotelReservas/internal/modules/reservations/application/port"
	"hotelReservas/internal/modules/reservations/domain"
	"hotelReservas/internal/shared/auth"
)

var errMissingID = errors.New("reservation id is required")

// ReservationHTTPClient implements port.ReservationAPI against the Django reservations resource.
// It holds no mutable state and is safe for concurrent use.
type ReservationHTTPClient struct {
	rest      *RESTClient
	tokens    auth.TokenProvider
	now       func() time.Time
	requestID func() string
}

type Option func(*ReservationHTTPClient)

// WithClock overrides the clock used for the _timestamp cache buster.
func WithClock(now func() time.Time) Option {
	return func(c *ReservationHTTPClient) {
		if now != nil {
			c.now = now
		}
	}
}

// WithRequestIDs overrides the X-Request-ID generator.
func WithRequestIDs(next func() string) Option {
	return func(c *ReservationHTTPClient) {
		if next != nil {
			c.requestID = next
		}
	}
}

func NewReservationHTTPClient(baseURL string, timeout time.Duration, client *http.Client, tokens auth.TokenProvider, opts ...Option) *ReservationHTTPClient {
	if tokens == nil {
		tokens = auth.StaticToken("")
	}
	c := &ReservationHTTPClient{
		rest:      NewRESTClient(baseURL, timeout, client),
		tokens:    tokens,
		now:       time.Now,
		requestID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type call struct {
	op    string
	id    domain.ID
	query url.Values
	body  any
}

// do executes one operation and returns the raw 2xx body. Every failure leaves here as a
// *port.ReservationError and is logged exactly once.
func (c *ReservationHTTPClient) do(ctx context.Context, in call) ([]byte, error) {
	body, err := c.execute(ctx, in)
	if err != nil {
		return nil, c.fail(in, err)
	}
	return body, nil
}

func (c *ReservationHTTPClient) execute(ctx context.Context, in call) ([]byte, error) {
	ep, ok := endpoints[in.op]
	if !ok {
		return nil, &port.ReservationError{Kind: port.ErrValidation, Op: in.op, Message: "unsupported operation " + in.op}
	}
	path, err := ep.path(in.id)
	if err != nil {
		return nil, port.NewValidationError(in.op, err.Error())
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, &port.ReservationError{Kind: port.ErrTokenUnavailable, Op: in.op, Message: err.Error(), Err: err}
	}

	req := c.rest.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetHeader("Authorization", auth.BearerHeader(token)).
		SetHeader("X-Request-ID", c.requestID())

	query := url.Values{}
	for key, values := range in.query {
		for _, value := range values {
			query.Add(key, value)
		}
	}
	if ep.method == http.MethodGet {
		req.SetHeader("Cache-Control", "no-cache, no-store, must-revalidate").
			SetHeader("Pragma", "no-cache").
			SetHeader("Expires", "0")
		query.Set("_timestamp", strconv.FormatInt(c.now().UnixMilli(), 10))
	}
	if len(query) > 0 {
		req.SetQueryParamsFromValues(query)
	}

	if in.body != nil {
		payload, err := json.Marshal(in.body)
		if err != nil {
			return nil, &port.ReservationError{Kind: port.ErrValidation, Op: in.op, Message: err.Error(), Err: err}
		}
		req.SetBody(payload)
	}

	target := c.rest.URL(path)
	slog.Debug("reservations request", slog.String("op", in.op), slog.String("method", ep.method), slog.String("url", target))

	res, err := req.Execute(ep.method, target)
	if err != nil {
		return nil, &port.ReservationError{Kind: port.ErrTransport, Op: in.op, Message: err.Error(), Err: err}
	}

	status := res.StatusCode()
	slog.Debug("reservations response", slog.String("op", in.op), slog.Int("status", status))
	if status >= 200 && status < 300 {
		return res.Body(), nil
	}

	slog.Debug("reservations unexpected status", slog.String("op", in.op), slog.Int("status", status), slog.String("body", truncateBody(res.Body())))
	if message, ok := errorMessage(res.Body()); ok {
		return nil, &port.ReservationError{Kind: port.ErrServerReported, Op: in.op, Status: status, Message: message}
	}
	return nil, &port.ReservationError{Kind: port.ErrHTTPStatus, Op: in.op, Status: status, Message: port.StatusMessage(status)}
}

func (c *ReservationHTTPClient) fail(in call, err error) error {
	var rerr *port.ReservationError
	if !errors.As(err, &rerr) {
		rerr = &port.ReservationError{Kind: port.ErrTransport, Op: in.op, Message: err.Error(), Err: err}
	}
	attrs := []any{slog.String("op", in.op), slog.Any("error", err)}
	if !in.id.IsZero() {
		attrs = append(attrs, slog.String("reservationId", in.id.String()))
	}
	if rerr.Status != 0 {
		attrs = append(attrs, slog.Int("status", rerr.Status))
	}
	if errors.Is(rerr, port.ErrValidation) {
		slog.Warn("reservations request rejected", attrs...)
	} else {
		slog.Error("reservations request failed", attrs...)
	}
	return rerr
}

// decodeFailure turns a payload that does not match the expected schema into an error.
func (c *ReservationHTTPClient) decodeFailure(op string, err error) error {
	return c.fail(call{op: op}, &port.ReservationError{Kind: port.ErrSchemaMismatch, Op: op, Message: "unexpected response from reservations api: " + err.Error(), Err: err})
}

func (c *ReservationHTTPClient) list(ctx context.Context, in call) ([]domain.Reservation, error) {
	body, err := c.do(ctx, in)
	if err != nil {
		return nil, err
	}
	items, err := decodeList[domain.Reservation](body)
	if err != nil {
		return nil, c.decodeFailure(in.op, err)
	}
	return items, nil
}

func (c *ReservationHTTPClient) reservation(ctx context.Context, in call) (*domain.Reservation, error) {
	body, err := c.do(ctx, in)
	if err != nil {
		return nil, err
	}
	reservation, err := decodeReservation(body)
	if err != nil {
		return nil, c.decodeFailure(in.op, err)
	}
	return reservation, nil
}

func (c *ReservationHTTPClient) action(ctx context.Context, in call) (*domain.ActionResult, error) {
	body, err := c.do(ctx, in)
	if err != nil {
		return nil, err
	}
	result, err := decodeObject[domain.ActionResult](body, true)
	if err != nil {
		return nil, c.decodeFailure(in.op, err)
	}
	return result, nil
}

func (c *ReservationHTTPClient) List(ctx context.Context, filter url.Values) ([]domain.Reservation, error) {
	return c.list(ctx, call{op: port.OpList, query: filter})
}

// Get fetches one reservation. opts.Timestamp is echoed as _t and opts.Refresh adds refresh=true.
func (c *ReservationHTTPClient) Get(ctx context.Context, id domain.ID, opts domain.CacheOptions) (*domain.Reservation, error) {
	query := url.Values{}
	if opts.Timestamp != 0 {
		query.Set("_t", strconv.FormatInt(opts.Timestamp, 10))
	}
	if opts.Refresh {
		query.Set("refresh", "true")
	}
	return c.reservation(ctx, call{op: port.OpGet, id: id, query: query})
}

func (c *ReservationHTTPClient) Create(ctx context.Context, input domain.ReservationInput) (*domain.Reservation, error) {
	if err := input.Validate(); err != nil {
		return nil, c.fail(call{op: port.OpCreate}, port.NewValidationError(port.OpCreate, err.Error()))
	}
	return c.reservation(ctx, call{op: port.OpCreate, body: input})
}

func (c *ReservationHTTPClient) Update(ctx context.Context, id domain.ID, input domain.ReservationInput) (*domain.Reservation, error) {
	return c.reservation(ctx, call{op: port.OpUpdate, id: id, body: input})
}

func (c *ReservationHTTPClient) Cancel(ctx context.Context, id domain.ID) (*domain.ActionResult, error) {
	return c.action(ctx, call{op: port.OpCancel, id: id})
}

func (c *ReservationHTTPClient) MarkActive(ctx context.Context, id domain.ID) (*domain.ActionResult, error) {
	return c.action(ctx, call{op: port.OpMarkActive, id: id})
}

func (c *ReservationHTTPClient) MarkWaiting(ctx context.Context, id domain.ID) (*domain.ActionResult, error) {
	return c.action(ctx, call{op: port.OpMarkWaiting, id: id})
}

func (c *ReservationHTTPClient) RegisterPayment(ctx context.Context, id domain.ID, amount domain.Amount) (*domain.PaymentResult, error) {
	if amount <= 0 {
		return nil, c.fail(call{op: port.OpRegisterPayment, id: id}, port.NewValidationError(port.OpRegisterPayment, "payment amount must be greater than zero"))
	}
	in := call{op: port.OpRegisterPayment, id: id, body: map[string]domain.Amount{"monto": amount}}
	body, err := c.do(ctx, in)
	if err != nil {
		return nil, err
	}
	result, err := decodeObject[domain.PaymentResult](body, false)
	if err != nil {
		return nil, c.decodeFailure(in.op, err)
	}
	return result, nil
}

// AddRooms attaches rooms and returns the updated reservation, unwrapping a nested reserva.
func (c *ReservationHTTPClient) AddRooms(ctx context.Context, id domain.ID, roomIDs []domain.ID) (*domain.Reservation, error) {
	if len(roomIDs) == 0 {
		return nil, c.fail(call{op: port.OpAddRooms, id: id}, port.NewValidationError(port.OpAddRooms, "at least one room must be selected"))
	}
	return c.reservation(ctx, call{op: port.OpAddRooms, id: id, body: map[string][]domain.ID{"habitaciones_adicionales": roomIDs}})
}

func (c *ReservationHTTPClient) Rooms(ctx context.Context, id domain.ID) ([]domain.Room, error) {
	in := call{op: port.OpRooms, id: id}
	body, err := c.do(ctx, in)
	if err != nil {
		return nil, err
	}
	rooms, err := decodeList[domain.Room](body)
	if err != nil {
		return nil, c.decodeFailure(in.op, err)
	}
	return rooms, nil
}

func (c *ReservationHTTPClient) CheckAvailability(ctx context.Context, date string, roomCount int) (*domain.AvailabilityResult, error) {
	in := call{op: port.OpCheckAvailability, body: map[string]any{
		"fecha_reserva":       strings.TrimSpace(date),
		"numero_habitaciones": roomCount,
	}}
	body, err := c.do(ctx, in)
	if err != nil {
		return nil, err
	}
	result, err := decodeObject[domain.AvailabilityResult](body, false)
	if err != nil {
		return nil, c.decodeFailure(in.op, err)
	}
	return result, nil
}

func (c *ReservationHTTPClient) Statistics(ctx context.Context) (*domain.Statistics, error) {
	in := call{op: port.OpStatistics}
	body, err := c.do(ctx, in)
	if err != nil {
		return nil, err
	}
	stats, err := decodeObject[domain.Statistics](body, false)
	if err != nil {
		return nil, c.decodeFailure(in.op, err)
	}
	return stats, nil
}

func (c *ReservationHTTPClient) WaitingList(ctx context.Context) ([]domain.Reservation, error) {
	return c.list(ctx, call{op: port.OpWaitingList})
}

func (c *ReservationHTTPClient) ActiveStays(ctx context.Context) ([]domain.Reservation, error) {
	return c.list(ctx, call{op: port.OpActiveStays})
}

func (c *ReservationHTTPClient) ExpiredList(ctx context.Context) ([]domain.Reservation, error) {
	return c.list(ctx, call{op: port.OpExpiredList})
}

func (c *ReservationHTTPClient) Today(ctx context.Context) ([]domain.Reservation, error) {
	return c.list(ctx, call{op: port.OpToday})
}

func (c *ReservationHTTPClient) Search(ctx context.Context, query string) ([]domain.Reservation, error) {
	return c.list(ctx, call{op: port.OpSearch, query: url.Values{"q": {query}}})
}

func (c *ReservationHTTPClient) ByDate(ctx context.Context, date string) ([]domain.Reservation, error) {
	return c.list(ctx, call{op: port.OpByDate, query: url.Values{"fecha": {strings.TrimSpace(date)}}})
}

func (c *ReservationHTTPClient) ByDateRange(ctx context.Context, start, end string) ([]domain.Reservation, error) {
	return c.list(ctx, call{op: port.OpByDateRange, query: url.Values{
		"fecha_inicio": {strings.TrimSpace(start)},
		"fecha_fin":    {strings.TrimSpace(end)},
	}})
}

var _ port.ReservationAPI = (*ReservationHTTPClient)(nil)

// drainLimit bounds how much of an unexpected body ends up in logs.
const drainLimit = 2048

func truncateBody(body []byte) string {
	if len(body) > drainLimit {
		body = body[:drainLimit]
	}
	return strings.TrimSpace(string(body))
}
