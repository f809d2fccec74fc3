package port

import (
	"context"
	"net/url"

	"hotelReservas/internal/modules/reservations/domain"
)

// ReservationAPI is the contract of the remote reservations resource.
type ReservationAPI interface {
	List(ctx context.Context, filter url.Values) ([]domain.Reservation, error)
	Get(ctx context.Context, id domain.ID, opts domain.CacheOptions) (*domain.Reservation, error)
	Create(ctx context.Context, input domain.ReservationInput) (*domain.Reservation, error)
	Update(ctx context.Context, id domain.ID, input domain.ReservationInput) (*domain.Reservation, error)
	Cancel(ctx context.Context, id domain.ID) (*domain.ActionResult, error)
	MarkActive(ctx context.Context, id domain.ID) (*domain.ActionResult, error)
	MarkWaiting(ctx context.Context, id domain.ID) (*domain.ActionResult, error)
	RegisterPayment(ctx context.Context, id domain.ID, amount domain.Amount) (*domain.PaymentResult, error)
	AddRooms(ctx context.Context, id domain.ID, roomIDs []domain.ID) (*domain.Reservation, error)
	Rooms(ctx context.Context, id domain.ID) ([]domain.Room, error)
	CheckAvailability(ctx context.Context, date string, roomCount int) (*domain.AvailabilityResult, error)
	Statistics(ctx context.Context) (*domain.Statistics, error)
	WaitingList(ctx context.Context) ([]domain.Reservation, error)
	ActiveStays(ctx context.Context) ([]domain.Reservation, error)
	ExpiredList(ctx context.Context) ([]domain.Reservation, error)
	Today(ctx context.Context) ([]domain.Reservation, error)
	Search(ctx context.Context, query string) ([]domain.Reservation, error)
	ByDate(ctx context.Context, date string) ([]domain.Reservation, error)
	ByDateRange(ctx context.Context, start, end string) ([]domain.Reservation, error)
}

// AuditEntry describes one staff action performed through the gateway.
type AuditEntry struct {
	Operation     string
	ReservationID string
	Actor         string
	Outcome       string
	Message       string
}

// AuditRecorder persists staff actions.
type AuditRecorder interface {
	Record(ctx context.Context, entry AuditEntry) error
}
