package appointment

import (
	"context"
	"time"

	"github.com/peluqueria-anita/salon-api/internal/apperr"
	"github.com/peluqueria-anita/salon-api/internal/audit"
	domain "github.com/peluqueria-anita/salon-api/internal/domain/appointment"
	"github.com/peluqueria-anita/salon-api/internal/models"
)

type ChangeStatusInput struct {
	ActorID *uint
	Status  string

	// Notes replaces the appointment notes when set (used by cancel).
	Notes *string
}

type ChangeStatus struct {
	repo  domain.Repository
	audit *audit.Dispatcher
	now   func() time.Time
}

func NewChangeStatus(
	repo domain.Repository,
	audit *audit.Dispatcher,
	now func() time.Time,
) *ChangeStatus {
	return &ChangeStatus{repo: repo, audit: audit, now: now}
}

func (uc *ChangeStatus) Execute(
	ctx context.Context,
	id uint,
	in ChangeStatusInput,
) (*models.Appointment, error) {

	next, ok := domain.ParseStatus(in.Status)
	if !ok {
		return nil, apperr.ValidationFields(map[string]string{"status": "is not a valid status"})
	}
	if in.Notes != nil && len(*in.Notes) > 500 {
		return nil, apperr.ValidationFields(map[string]string{"notes": "must be at most 500 characters"})
	}

	var (
		ap       *models.Appointment
		previous string
	)
	err := uc.repo.Transaction(ctx, func(tx domain.Repository) error {
		var err error
		ap, err = lockAppointment(ctx, tx, id)
		if err != nil {
			return err
		}

		previous = ap.Status
		if err := domain.Transition(ap, next, uc.now()); err != nil {
			return err
		}
		if in.Notes != nil {
			ap.Notes = *in.Notes
		}
		return tx.UpdateAppointment(ctx, stripRelations(ap))
	})
	if err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		UserID:   in.ActorID,
		Action:   "appointment_" + string(next),
		Entity:   "appointment",
		EntityID: &ap.ID,
		Metadata: map[string]string{"from": previous, "to": string(next)},
	})

	return loadAppointment(ctx, uc.repo, ap.ID)
}
