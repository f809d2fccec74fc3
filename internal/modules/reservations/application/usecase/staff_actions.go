package usecase

import (
	"context"
	"log/slog"
	"time"

	realtimeport "hotelReservas/internal/modules/realtime/application/port"
	realtime "hotelReservas/internal/modules/realtime/domain"
	"hotelReservas/internal/modules/reservations/application/port"
	"hotelReservas/internal/modules/reservations/domain"
	"hotelReservas/internal/shared/auth"
)

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// broadcastActions maps mutating operations to the realtime action announced on success.
var broadcastActions = map[string]string{
	port.OpCreate:          realtime.ActionCreated,
	port.OpUpdate:          realtime.ActionUpdated,
	port.OpCancel:          realtime.ActionCancelled,
	port.OpMarkActive:      realtime.ActionActivated,
	port.OpMarkWaiting:     realtime.ActionWaiting,
	port.OpRegisterPayment: realtime.ActionPayment,
	port.OpAddRooms:        realtime.ActionRooms,
}

// ReservationActionsUseCase runs the mutating reservation operations for staff. Successful calls are
// announced to connected clients and every attempt lands in the audit trail.
type ReservationActionsUseCase struct {
	api         port.ReservationAPI
	broadcaster realtimeport.Broadcaster
	audit       port.AuditRecorder
	now         func() time.Time
}

func NewReservationActionsUseCase(api port.ReservationAPI, broadcaster realtimeport.Broadcaster, audit port.AuditRecorder) *ReservationActionsUseCase {
	return &ReservationActionsUseCase{api: api, broadcaster: broadcaster, audit: audit, now: time.Now}
}

func (uc *ReservationActionsUseCase) Create(ctx context.Context, input domain.ReservationInput) (*domain.Reservation, error) {
	created, err := uc.api.Create(ctx, input)
	var id domain.ID
	if created != nil {
		id = created.ID
	}
	uc.finish(ctx, port.OpCreate, id, created, err)
	return created, err
}

func (uc *ReservationActionsUseCase) Update(ctx context.Context, id domain.ID, input domain.ReservationInput) (*domain.Reservation, error) {
	updated, err := uc.api.Update(ctx, id, input)
	uc.finish(ctx, port.OpUpdate, id, updated, err)
	return updated, err
}

func (uc *ReservationActionsUseCase) Cancel(ctx context.Context, id domain.ID) (*domain.ActionResult, error) {
	result, err := uc.api.Cancel(ctx, id)
	uc.finish(ctx, port.OpCancel, id, result, err)
	return result, err
}

func (uc *ReservationActionsUseCase) MarkActive(ctx context.Context, id domain.ID) (*domain.ActionResult, error) {
	result, err := uc.api.MarkActive(ctx, id)
	uc.finish(ctx, port.OpMarkActive, id, result, err)
	return result, err
}

func (uc *ReservationActionsUseCase) MarkWaiting(ctx context.Context, id domain.ID) (*domain.ActionResult, error) {
	result, err := uc.api.MarkWaiting(ctx, id)
	uc.finish(ctx, port.OpMarkWaiting, id, result, err)
	return result, err
}

func (uc *ReservationActionsUseCase) RegisterPayment(ctx context.Context, id domain.ID, amount domain.Amount) (*domain.PaymentResult, error) {
	result, err := uc.api.RegisterPayment(ctx, id, amount)
	uc.finish(ctx, port.OpRegisterPayment, id, result, err)
	return result, err
}

func (uc *ReservationActionsUseCase) AddRooms(ctx context.Context, id domain.ID, roomIDs []domain.ID) (*domain.Reservation, error) {
	updated, err := uc.api.AddRooms(ctx, id, roomIDs)
	uc.finish(ctx, port.OpAddRooms, id, updated, err)
	return updated, err
}

func (uc *ReservationActionsUseCase) finish(ctx context.Context, op string, id domain.ID, data any, err error) {
	actor := auth.ActorFromContext(ctx)
	entry := port.AuditEntry{
		Operation:     op,
		ReservationID: id.String(),
		Actor:         actor,
		Outcome:       OutcomeSuccess,
	}

	if err != nil {
		entry.Outcome = OutcomeFailure
		entry.Message = err.Error()
	} else if uc.broadcaster != nil {
		metadata := realtime.Metadata{"operation": op}.Merge(realtime.Metadata{"actor": actor})
		uc.broadcaster.Broadcast(ctx, realtime.NewReservationMessage(broadcastActions[op], id.String(), data, metadata, uc.now()))
	}

	if uc.audit == nil {
		return
	}
	// the audit write must outlive a cancelled request
	if auditErr := uc.audit.Record(context.WithoutCancel(ctx), entry); auditErr != nil {
		slog.Warn("audit record failed", slog.String("op", op), slog.String("reservationId", entry.ReservationID), slog.Any("error", auditErr))
	}
}
