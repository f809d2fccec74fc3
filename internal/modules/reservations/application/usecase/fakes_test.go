package usecase

import (
	"context"
	"sync"

	realtime "hotelReservas/internal/modules/realtime/domain"
	"hotelReservas/internal/modules/reservations/application/port"
	"hotelReservas/internal/modules/reservations/domain"
	"hotelReservas/internal/shared/auth"
)

// fakeAPI overrides the operations a test needs; anything else panics through the nil interface.
type fakeAPI struct {
	port.ReservationAPI

	tokens   []string
	lists    map[string][]domain.Reservation
	listErrs map[string]error

	cancelResult *domain.ActionResult
	cancelErr    error
	created      *domain.Reservation
	createErr    error
	payment      *domain.PaymentResult
}

func (f *fakeAPI) board(ctx context.Context, name string) ([]domain.Reservation, error) {
	token, _ := auth.TokenFromContext(ctx)
	f.tokens = append(f.tokens, token)
	if err := f.listErrs[name]; err != nil {
		return nil, err
	}
	return f.lists[name], nil
}

func (f *fakeAPI) Today(ctx context.Context) ([]domain.Reservation, error) {
	return f.board(ctx, BoardToday)
}

func (f *fakeAPI) WaitingList(ctx context.Context) ([]domain.Reservation, error) {
	return f.board(ctx, BoardWaiting)
}

func (f *fakeAPI) ActiveStays(ctx context.Context) ([]domain.Reservation, error) {
	return f.board(ctx, BoardActive)
}

func (f *fakeAPI) ExpiredList(ctx context.Context) ([]domain.Reservation, error) {
	return f.board(ctx, BoardExpired)
}

func (f *fakeAPI) Cancel(context.Context, domain.ID) (*domain.ActionResult, error) {
	return f.cancelResult, f.cancelErr
}

func (f *fakeAPI) Create(context.Context, domain.ReservationInput) (*domain.Reservation, error) {
	return f.created, f.createErr
}

func (f *fakeAPI) RegisterPayment(context.Context, domain.ID, domain.Amount) (*domain.PaymentResult, error) {
	return f.payment, nil
}

type recordingBroadcaster struct {
	mu       sync.Mutex
	messages []*realtime.Message
}

func (r *recordingBroadcaster) Broadcast(_ context.Context, msg *realtime.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, msg)
}

type recordingAudit struct {
	entries []port.AuditEntry
	err     error
}

func (r *recordingAudit) Record(ctx context.Context, entry port.AuditEntry) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	r.entries = append(r.entries, entry)
	return r.err
}
