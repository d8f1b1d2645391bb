package appointment

import (
	"context"
	"time"

	"github.com/peluqueria-anita/salon-api/internal/apperr"
	"github.com/peluqueria-anita/salon-api/internal/audit"
	domain "github.com/peluqueria-anita/salon-api/internal/domain/appointment"
	"github.com/peluqueria-anita/salon-api/internal/domain/payment"
	"github.com/peluqueria-anita/salon-api/internal/models"
)

// UpdateAppointmentInput carries a partial update. Nil fields are left
// untouched; a non-nil Services replaces every detail line.
type UpdateAppointmentInput struct {
	ActorID *uint

	ClientID  *uint
	StylistID *uint
	Date      *models.Date
	StartTime *string
	Status    *string
	Notes     *string
	Services  []ServiceLine
}

type UpdateAppointment struct {
	repo  domain.Repository
	audit *audit.Dispatcher
	now   func() time.Time
}

func NewUpdateAppointment(
	repo domain.Repository,
	audit *audit.Dispatcher,
	now func() time.Time,
) *UpdateAppointment {
	return &UpdateAppointment{repo: repo, audit: audit, now: now}
}

func (uc *UpdateAppointment) Execute(
	ctx context.Context,
	id uint,
	in UpdateAppointmentInput,
) (*models.Appointment, error) {

	var ap *models.Appointment
	err := uc.repo.Transaction(ctx, func(tx domain.Repository) error {
		var err error
		ap, err = lockAppointment(ctx, tx, id)
		if err != nil {
			return err
		}
		return uc.apply(ctx, tx, ap, in)
	})
	if err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		UserID:   in.ActorID,
		Action:   "appointment_updated",
		Entity:   "appointment",
		EntityID: &ap.ID,
	})

	return loadAppointment(ctx, uc.repo, ap.ID)
}

// apply validates in against the locked row and writes the result.
func (uc *UpdateAppointment) apply(
	ctx context.Context,
	tx domain.Repository,
	ap *models.Appointment,
	in UpdateAppointmentInput,
) error {

	fields := map[string]string{}

	if in.ClientID != nil {
		if err := checkClient(ctx, tx, fields, *in.ClientID); err != nil {
			return err
		}
	}
	if in.StylistID != nil {
		if err := checkStylist(ctx, tx, fields, *in.StylistID); err != nil {
			return err
		}
	}
	if in.Date != nil && in.Date.IsZero() {
		fields["appointment_date"] = "is required"
	}
	if in.StartTime != nil {
		validateClock(fields, "start_time", *in.StartTime)
	}
	if in.Notes != nil && len(*in.Notes) > 1000 {
		fields["notes"] = "must be at most 1000 characters"
	}

	var next domain.Status
	if in.Status != nil {
		st, ok := domain.ParseStatus(*in.Status)
		if !ok {
			fields["status"] = "is not a valid status"
		}
		next = st
	}

	var (
		details   []models.AppointmentDetail
		durations = detailDurations(ap.Details)
	)
	if in.Services != nil {
		var (
			total = ap.TotalAmount
			err   error
		)
		details, durations, total, err = buildDetails(ctx, tx, fields, in.Services)
		if err != nil {
			return err
		}
		ap.TotalAmount = total
	}

	if len(fields) > 0 {
		return apperr.ValidationFields(fields)
	}

	// --------------------------------------------------
	// Apply
	// --------------------------------------------------
	slotMoved := false
	if in.ClientID != nil {
		ap.ClientID = *in.ClientID
	}
	if in.StylistID != nil && *in.StylistID != ap.UserID {
		ap.UserID = *in.StylistID
		slotMoved = true
	}
	if in.Date != nil && *in.Date != ap.AppointmentDate {
		ap.AppointmentDate = *in.Date
		slotMoved = true
	}
	if in.StartTime != nil && *in.StartTime != ap.StartTime {
		ap.StartTime = *in.StartTime
		slotMoved = true
	}
	if in.Notes != nil {
		ap.Notes = *in.Notes
	}

	if in.StartTime != nil || in.Services != nil {
		end, err := domain.ComputeEndTime(ap.StartTime, durations)
		if err != nil {
			return err
		}
		ap.EndTime = end
	}

	if in.Status != nil && next != domain.Status(ap.Status) {
		if err := domain.Transition(ap, next, uc.now()); err != nil {
			return err
		}
	}

	if in.Services != nil {
		payment.Apply(ap, ap.Payments)
	}

	if slotMoved && domain.Status(ap.Status).IsActive() {
		taken, err := tx.HasActiveAt(ctx, domain.CheckInput{
			StylistID: ap.UserID,
			Date:      ap.AppointmentDate,
			StartTime: ap.StartTime,
			ExcludeID: ap.ID,
		})
		if err != nil {
			return err
		}
		if taken {
			return domain.SlotConflict()
		}
	}

	if in.Services != nil {
		if err := tx.ReplaceDetails(ctx, ap.ID, details); err != nil {
			return err
		}
	}
	return tx.UpdateAppointment(ctx, stripRelations(ap))
}
