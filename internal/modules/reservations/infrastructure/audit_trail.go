package infrastructure

import (
	"context"

	auditdomain "hotelReservas/internal/modules/audit/domain"
	"hotelReservas/internal/modules/reservations/application/port"
)

type auditAppender interface {
	Append(ctx context.Context, entry auditdomain.Entry) (auditdomain.Entry, error)
}

// AuditTrail stores reservation staff actions in the audit log.
type AuditTrail struct {
	store auditAppender
}

func NewAuditTrail(store auditAppender) *AuditTrail {
	return &AuditTrail{store: store}
}

func (a *AuditTrail) Record(ctx context.Context, entry port.AuditEntry) error {
	_, err := a.store.Append(ctx, auditdomain.Entry{
		Operation:     entry.Operation,
		ReservationID: entry.ReservationID,
		Actor:         entry.Actor,
		Outcome:       auditdomain.Outcome(entry.Outcome),
		Message:       entry.Message,
	})
	return err
}

var _ port.AuditRecorder = (*AuditTrail)(nil)
