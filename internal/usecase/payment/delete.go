package payment

import (
	"context"

	"github.com/peluqueria-anita/salon-api/internal/apperr"
	"github.com/peluqueria-anita/salon-api/internal/audit"
	domain "github.com/peluqueria-anita/salon-api/internal/domain/payment"
)

type DeletePayment struct {
	repo  domain.Repository
	audit *audit.Dispatcher
}

func NewDeletePayment(repo domain.Repository, audit *audit.Dispatcher) *DeletePayment {
	return &DeletePayment{repo: repo, audit: audit}
}

func (uc *DeletePayment) Execute(ctx context.Context, actorID *uint, id uint) error {
	var appointmentID uint

	err := uc.repo.Transaction(ctx, func(tx domain.Repository) error {
		p, err := loadPayment(ctx, tx, id)
		if err != nil {
			return err
		}
		appointmentID = p.AppointmentID

		ap, err := lockAppointment(ctx, tx, p.AppointmentID, apperr.KindNotFound)
		if err != nil {
			return err
		}
		if err := tx.DeletePayment(ctx, id); err != nil {
			return err
		}
		return reconcile(ctx, tx, ap)
	})
	if err != nil {
		return err
	}

	uc.audit.Dispatch(audit.Event{
		UserID:   actorID,
		Action:   "payment_deleted",
		Entity:   "payment",
		EntityID: &id,
		Metadata: map[string]uint{"appointment_id": appointmentID},
	})
	return nil
}
