package payment

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/peluqueria-anita/salon-api/internal/apperr"
	"github.com/peluqueria-anita/salon-api/internal/audit"
	domain "github.com/peluqueria-anita/salon-api/internal/domain/payment"
	"github.com/peluqueria-anita/salon-api/internal/models"
)

type RefundInput struct {
	ActorID *uint

	Reason string
	Amount *decimal.Decimal
}

type RefundResult struct {
	OriginalPayment *models.Payment `json:"original_payment"`
	Refund          *models.Payment `json:"refund"`
}

type RefundPayment struct {
	repo  domain.Repository
	audit *audit.Dispatcher
	now   func() time.Time
}

func NewRefundPayment(
	repo domain.Repository,
	audit *audit.Dispatcher,
	now func() time.Time,
) *RefundPayment {
	return &RefundPayment{repo: repo, audit: audit, now: now}
}

// Execute writes a negative ledger row for the refunded amount and marks
// the original payment refunded, then reconciles the appointment.
func (uc *RefundPayment) Execute(
	ctx context.Context,
	id uint,
	in RefundInput,
) (*RefundResult, error) {

	fields := map[string]string{}
	if in.Reason == "" {
		fields["reason"] = "is required"
	}
	if len(in.Reason) > 500 {
		fields["reason"] = "must be at most 500 characters"
	}
	if len(fields) > 0 {
		return nil, apperr.ValidationFields(fields)
	}

	var original, entry *models.Payment
	err := uc.repo.Transaction(ctx, func(tx domain.Repository) error {
		var err error
		if original, err = loadPayment(ctx, tx, id); err != nil {
			return err
		}

		ap, err := lockAppointment(ctx, tx, original.AppointmentID, apperr.KindNotFound)
		if err != nil {
			return err
		}

		if entry, err = domain.RefundEntry(original, in.Amount, in.Reason, uc.now()); err != nil {
			return err
		}

		if err := tx.CreatePayment(ctx, entry); err != nil {
			return err
		}

		row := *original
		row.Appointment = nil
		if err := tx.UpdatePayment(ctx, &row); err != nil {
			return err
		}
		return reconcile(ctx, tx, ap)
	})
	if err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		UserID:   in.ActorID,
		Action:   "payment_refunded",
		Entity:   "payment",
		EntityID: &original.ID,
		Metadata: map[string]any{
			"refund_id": entry.ID,
			"amount":    entry.Amount.Neg().StringFixed(2),
			"reason":    in.Reason,
		},
	})

	return &RefundResult{OriginalPayment: original, Refund: entry}, nil
}
