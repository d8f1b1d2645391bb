package payment

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/peluqueria-anita/salon-api/internal/apperr"
	domain "github.com/peluqueria-anita/salon-api/internal/domain/payment"
	"github.com/peluqueria-anita/salon-api/internal/models"
)

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

func loadPayment(ctx context.Context, repo domain.Repository, id uint) (*models.Payment, error) {
	p, err := repo.GetPayment(ctx, id)
	if isNotFound(err) {
		return nil, apperr.NotFound("payment_not_found", "payment not found")
	}
	if err != nil {
		return nil, fmt.Errorf("load payment %d: %w", id, err)
	}
	return p, nil
}

// reconcile recomputes and stores payment_status inside tx.
func reconcile(ctx context.Context, tx domain.Repository, ap *models.Appointment) error {
	ledger, err := tx.ListLedger(ctx, ap.ID)
	if err != nil {
		return err
	}
	st := domain.Apply(ap, ledger)
	return tx.SetPaymentStatus(ctx, ap.ID, string(st))
}

// lockAppointment loads the appointment FOR UPDATE. Missing rows map to
// the given kind since the id may come from a body or a path.
func lockAppointment(ctx context.Context, tx domain.Repository, id uint, kind apperr.Kind) (*models.Appointment, error) {
	ap, err := tx.LockAppointment(ctx, id)
	if isNotFound(err) {
		if kind == apperr.KindValidation {
			return nil, apperr.ValidationFields(map[string]string{"appointment_id": "does not exist"})
		}
		return nil, apperr.NotFound("appointment_not_found", "appointment not found")
	}
	return ap, err
}
