package appointment

import (
	"context"
	"time"

	"github.com/peluqueria-anita/salon-api/internal/apperr"
	"github.com/peluqueria-anita/salon-api/internal/audit"
	domain "github.com/peluqueria-anita/salon-api/internal/domain/appointment"
	"github.com/peluqueria-anita/salon-api/internal/models"
)

// ======================================================
// INPUT
// ======================================================

type CreateAppointmentInput struct {
	ActorID *uint

	ClientID  uint
	StylistID uint
	Date      models.Date
	StartTime string
	Notes     string
	Services  []ServiceLine
}

// ======================================================
// USE CASE
// ======================================================

type CreateAppointment struct {
	repo  domain.Repository
	audit *audit.Dispatcher
	now   func() time.Time
}

func NewCreateAppointment(
	repo domain.Repository,
	audit *audit.Dispatcher,
	now func() time.Time,
) *CreateAppointment {
	return &CreateAppointment{
		repo:  repo,
		audit: audit,
		now:   now,
	}
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *CreateAppointment) Execute(
	ctx context.Context,
	in CreateAppointmentInput,
) (*models.Appointment, error) {

	// --------------------------------------------------
	// 1️⃣ Shape and references
	// --------------------------------------------------
	fields := map[string]string{}

	validateDate(fields, "appointment_date", in.Date, uc.now())
	validateClock(fields, "start_time", in.StartTime)
	if len(in.Notes) > 1000 {
		fields["notes"] = "must be at most 1000 characters"
	}

	if err := checkClient(ctx, uc.repo, fields, in.ClientID); err != nil {
		return nil, err
	}
	if err := checkStylist(ctx, uc.repo, fields, in.StylistID); err != nil {
		return nil, err
	}

	details, durations, total, err := buildDetails(ctx, uc.repo, fields, in.Services)
	if err != nil {
		return nil, err
	}

	if len(fields) > 0 {
		return nil, apperr.ValidationFields(fields)
	}

	// --------------------------------------------------
	// 2️⃣ End time
	// --------------------------------------------------
	end, err := domain.ComputeEndTime(in.StartTime, durations)
	if err != nil {
		return nil, err
	}

	ap := &models.Appointment{
		ClientID:        in.ClientID,
		UserID:          in.StylistID,
		AppointmentDate: in.Date,
		StartTime:       in.StartTime,
		EndTime:         end,
		Status:          string(domain.InitialStatus()),
		PaymentStatus:   "pending",
		TotalAmount:     total,
		Notes:           in.Notes,
		Details:         details,
	}

	// --------------------------------------------------
	// 3️⃣ Conflict check + insert
	// --------------------------------------------------
	err = uc.repo.Transaction(ctx, func(tx domain.Repository) error {
		taken, err := tx.HasActiveAt(ctx, domain.CheckInput{
			StylistID: in.StylistID,
			Date:      in.Date,
			StartTime: in.StartTime,
		})
		if err != nil {
			return err
		}
		if taken {
			return domain.SlotConflict()
		}
		return tx.CreateAppointment(ctx, ap)
	})
	if err != nil {
		if apperr.Is(err, apperr.KindConflict) {
			uc.audit.Dispatch(audit.Event{
				UserID:   in.ActorID,
				Action:   "appointment_conflict",
				Entity:   "appointment",
				Metadata: map[string]any{"user_id": in.StylistID, "date": in.Date, "start_time": in.StartTime},
			})
		}
		return nil, err
	}

	// --------------------------------------------------
	// 4️⃣ Audit
	// --------------------------------------------------
	uc.audit.Dispatch(audit.Event{
		UserID:   in.ActorID,
		Action:   "appointment_created",
		Entity:   "appointment",
		EntityID: &ap.ID,
	})

	return loadAppointment(ctx, uc.repo, ap.ID)
}
