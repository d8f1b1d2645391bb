package payment

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/peluqueria-anita/salon-api/internal/apperr"
	"github.com/peluqueria-anita/salon-api/internal/audit"
	domain "github.com/peluqueria-anita/salon-api/internal/domain/payment"
	"github.com/peluqueria-anita/salon-api/internal/models"
)

// ======================================================
// INPUT
// ======================================================

type RecordPaymentInput struct {
	ActorID *uint

	AppointmentID uint
	Amount        decimal.Decimal
	PaymentMethod string
	Status        string
	TransactionID string
	Notes         string
}

func (in RecordPaymentInput) validate() error {
	fields := map[string]string{}
	if in.AppointmentID == 0 {
		fields["appointment_id"] = "is required"
	}
	if in.Amount.IsNegative() {
		fields["amount"] = "must be zero or greater"
	}
	if !domain.ValidMethod(in.PaymentMethod) {
		fields["payment_method"] = "must be one of cash, card, transfer, other"
	}
	if !domain.ValidStatus(in.Status) {
		fields["status"] = "must be one of pending, completed, failed, refunded"
	}
	if len(in.TransactionID) > 255 {
		fields["transaction_id"] = "must be at most 255 characters"
	}
	if len(in.Notes) > 1000 {
		fields["notes"] = "must be at most 1000 characters"
	}
	if len(fields) > 0 {
		return apperr.ValidationFields(fields)
	}
	return nil
}

// ======================================================
// USE CASE
// ======================================================

type RecordPayment struct {
	repo  domain.Repository
	audit *audit.Dispatcher
	now   func() time.Time
}

func NewRecordPayment(
	repo domain.Repository,
	audit *audit.Dispatcher,
	now func() time.Time,
) *RecordPayment {
	return &RecordPayment{repo: repo, audit: audit, now: now}
}

func (uc *RecordPayment) Execute(
	ctx context.Context,
	in RecordPaymentInput,
) (*models.Payment, error) {

	if err := in.validate(); err != nil {
		return nil, err
	}

	now := uc.now()
	p := &models.Payment{
		AppointmentID: in.AppointmentID,
		Amount:        in.Amount,
		PaymentMethod: in.PaymentMethod,
		Status:        in.Status,
		TransactionID: in.TransactionID,
		Notes:         in.Notes,
		PaymentDate:   &now,
	}
	if p.TransactionID == "" {
		p.TransactionID = uuid.NewString()
	}

	var standing domain.Standing
	err := uc.repo.Transaction(ctx, func(tx domain.Repository) error {
		ap, err := lockAppointment(ctx, tx, in.AppointmentID, apperr.KindValidation)
		if err != nil {
			return err
		}

		ledger, err := tx.ListLedger(ctx, ap.ID)
		if err != nil {
			return err
		}
		if err := domain.CanRecord(ap, ledger, in.Amount); err != nil {
			return err
		}

		if err := tx.CreatePayment(ctx, p); err != nil {
			return err
		}
		if err := reconcile(ctx, tx, ap); err != nil {
			return err
		}
		standing = domain.Standing(ap.PaymentStatus)
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		UserID:   in.ActorID,
		Action:   "payment_recorded",
		Entity:   "payment",
		EntityID: &p.ID,
		Metadata: map[string]any{
			"appointment_id": p.AppointmentID,
			"amount":         p.Amount.StringFixed(2),
			"payment_status": standing,
		},
	})

	return loadPayment(ctx, uc.repo, p.ID)
}
