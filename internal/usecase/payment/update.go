package payment

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/peluqueria-anita/salon-api/internal/apperr"
	"github.com/peluqueria-anita/salon-api/internal/audit"
	domain "github.com/peluqueria-anita/salon-api/internal/domain/payment"
	"github.com/peluqueria-anita/salon-api/internal/models"
)

type UpdatePaymentInput struct {
	ActorID *uint

	Amount        *decimal.Decimal
	PaymentMethod *string
	Status        *string
	TransactionID *string
	Notes         *string
}

type UpdatePayment struct {
	repo  domain.Repository
	audit *audit.Dispatcher
}

func NewUpdatePayment(repo domain.Repository, audit *audit.Dispatcher) *UpdatePayment {
	return &UpdatePayment{repo: repo, audit: audit}
}

func (uc *UpdatePayment) Execute(
	ctx context.Context,
	id uint,
	in UpdatePaymentInput,
) (*models.Payment, error) {

	fields := map[string]string{}
	if in.Amount != nil && in.Amount.IsNegative() {
		fields["amount"] = "must be zero or greater"
	}
	if in.PaymentMethod != nil && !domain.ValidMethod(*in.PaymentMethod) {
		fields["payment_method"] = "must be one of cash, card, transfer, other"
	}
	if in.Status != nil && !domain.ValidStatus(*in.Status) {
		fields["status"] = "must be one of pending, completed, failed, refunded"
	}
	if in.TransactionID != nil && len(*in.TransactionID) > 255 {
		fields["transaction_id"] = "must be at most 255 characters"
	}
	if in.Notes != nil && len(*in.Notes) > 1000 {
		fields["notes"] = "must be at most 1000 characters"
	}
	if len(fields) > 0 {
		return nil, apperr.ValidationFields(fields)
	}

	var p *models.Payment
	err := uc.repo.Transaction(ctx, func(tx domain.Repository) error {
		var err error
		if p, err = loadPayment(ctx, tx, id); err != nil {
			return err
		}

		ap, err := lockAppointment(ctx, tx, p.AppointmentID, apperr.KindNotFound)
		if err != nil {
			return err
		}

		if in.Amount != nil {
			p.Amount = *in.Amount
		}
		if in.PaymentMethod != nil {
			p.PaymentMethod = *in.PaymentMethod
		}
		if in.Status != nil {
			p.Status = *in.Status
		}
		if in.TransactionID != nil {
			p.TransactionID = *in.TransactionID
		}
		if in.Notes != nil {
			p.Notes = *in.Notes
		}

		if domain.Status(p.Status) == domain.StatusCompleted && p.Amount.IsPositive() {
			ledger, err := tx.ListLedger(ctx, ap.ID)
			if err != nil {
				return err
			}
			if err := domain.CheckBalance(ap, domain.Without(ledger, p.ID), p.Amount); err != nil {
				return err
			}
		}

		row := *p
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
		Action:   "payment_updated",
		Entity:   "payment",
		EntityID: &p.ID,
	})

	return loadPayment(ctx, uc.repo, id)
}
