package appointment

import (
	"context"

	"github.com/peluqueria-anita/salon-api/internal/apperr"
	"github.com/peluqueria-anita/salon-api/internal/audit"
	domain "github.com/peluqueria-anita/salon-api/internal/domain/appointment"
)

type DeleteAppointment struct {
	repo  domain.Repository
	audit *audit.Dispatcher
}

func NewDeleteAppointment(repo domain.Repository, audit *audit.Dispatcher) *DeleteAppointment {
	return &DeleteAppointment{repo: repo, audit: audit}
}

// Execute removes an appointment with its details and payments. Completed
// appointments are kept.
func (uc *DeleteAppointment) Execute(ctx context.Context, actorID *uint, id uint) error {
	ap, err := loadAppointment(ctx, uc.repo, id)
	if err != nil {
		return err
	}

	if domain.Status(ap.Status) == domain.StatusCompleted {
		return apperr.InvalidState("appointment_completed", "completed appointments cannot be deleted")
	}

	if err := uc.repo.Transaction(ctx, func(tx domain.Repository) error {
		return tx.DeleteAppointment(ctx, id)
	}); err != nil {
		return err
	}

	uc.audit.Dispatch(audit.Event{
		UserID:   actorID,
		Action:   "appointment_deleted",
		Entity:   "appointment",
		EntityID: &id,
	})
	return nil
}
