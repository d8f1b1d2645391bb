package appointment

import (
	"context"
	"time"

	"github.com/peluqueria-anita/salon-api/internal/apperr"
	"github.com/peluqueria-anita/salon-api/internal/audit"
	domain "github.com/peluqueria-anita/salon-api/internal/domain/appointment"
	"github.com/peluqueria-anita/salon-api/internal/models"
)

type RescheduleInput struct {
	ActorID *uint

	Date      models.Date
	StartTime string
	StylistID *uint
	Notes     *string
}

// Reschedule moves an appointment to a new date and start time. End time
// is recomputed from the booked services. The availability check is not
// repeated here; only the active-slot index rejects an exact collision.
type Reschedule struct {
	repo  domain.Repository
	audit *audit.Dispatcher
	now   func() time.Time
}

func NewReschedule(
	repo domain.Repository,
	audit *audit.Dispatcher,
	now func() time.Time,
) *Reschedule {
	return &Reschedule{repo: repo, audit: audit, now: now}
}

func (uc *Reschedule) Execute(
	ctx context.Context,
	id uint,
	in RescheduleInput,
) (*models.Appointment, error) {

	fields := map[string]string{}
	validateDate(fields, "appointment_date", in.Date, uc.now())
	validateClock(fields, "start_time", in.StartTime)
	if in.StylistID != nil {
		if err := checkStylist(ctx, uc.repo, fields, *in.StylistID); err != nil {
			return nil, err
		}
	}
	if len(fields) > 0 {
		return nil, apperr.ValidationFields(fields)
	}

	var (
		ap   *models.Appointment
		from map[string]any
	)
	err := uc.repo.Transaction(ctx, func(tx domain.Repository) error {
		var err error
		ap, err = lockAppointment(ctx, tx, id)
		if err != nil {
			return err
		}

		end, err := domain.ComputeEndTime(in.StartTime, detailDurations(ap.Details))
		if err != nil {
			return err
		}

		from = map[string]any{
			"appointment_date": ap.AppointmentDate,
			"start_time":       ap.StartTime,
			"user_id":          ap.UserID,
		}

		ap.AppointmentDate = in.Date
		ap.StartTime = in.StartTime
		ap.EndTime = end
		if in.StylistID != nil {
			ap.UserID = *in.StylistID
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
		Action:   "appointment_rescheduled",
		Entity:   "appointment",
		EntityID: &ap.ID,
		Metadata: map[string]any{"from": from},
	})

	return loadAppointment(ctx, uc.repo, ap.ID)
}
