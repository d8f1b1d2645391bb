package appointment

import (
	"context"
	"time"

	"github.com/peluqueria-anita/salon-api/internal/apperr"
	domain "github.com/peluqueria-anita/salon-api/internal/domain/appointment"
)

type GetAvailability struct {
	repo     domain.Repository
	defaults domain.WorkingHours
	now      func() time.Time
}

func NewGetAvailability(
	repo domain.Repository,
	defaults domain.WorkingHours,
	now func() time.Time,
) *GetAvailability {
	return &GetAvailability{repo: repo, defaults: defaults, now: now}
}

func (uc *GetAvailability) Execute(
	ctx context.Context,
	in domain.AvailabilityInput,
) (*domain.AvailabilityResult, error) {

	fields := map[string]string{}
	validateDate(fields, "date", in.Date, uc.now())
	if err := checkStylist(ctx, uc.repo, fields, in.StylistID); err != nil {
		return nil, err
	}
	if len(fields) > 0 {
		return nil, apperr.ValidationFields(fields)
	}

	result := &domain.AvailabilityResult{
		Date:           in.Date,
		UserID:         in.StylistID,
		AvailableSlots: []string{},
	}

	hours := uc.defaults
	if in.Hours != nil {
		hours = *in.Hours
	} else {
		day, err := in.Date.In(time.UTC)
		if err != nil {
			return nil, apperr.ValidationFields(map[string]string{"date": "must be YYYY-MM-DD"})
		}

		wh, err := uc.repo.GetWorkingHours(ctx, in.StylistID, int(day.Weekday()))
		if err != nil && !isNotFound(err) {
			return nil, err
		}
		if isNotFound(err) {
			wh = nil
		}

		var works bool
		if hours, works = domain.FromModel(wh, uc.defaults); !works {
			return result, nil
		}
	}

	booked, err := uc.repo.ActiveStartTimes(ctx, in.StylistID, in.Date)
	if err != nil {
		return nil, err
	}

	slots, err := domain.GenerateSlots(hours, booked)
	if err != nil {
		return nil, err
	}
	result.AvailableSlots = slots

	return result, nil
}

// CheckAvailability answers whether a stylist start time is free. Only an
// exact start match with an active appointment counts as taken.
type CheckAvailability struct {
	repo domain.Repository
}

func NewCheckAvailability(repo domain.Repository) *CheckAvailability {
	return &CheckAvailability{repo: repo}
}

func (uc *CheckAvailability) Execute(ctx context.Context, in domain.CheckInput) (bool, error) {
	fields := map[string]string{}
	if in.StylistID == 0 {
		fields["user_id"] = "is required"
	}
	if in.Date.IsZero() {
		fields["date"] = "is required"
	}
	validateClock(fields, "start_time", in.StartTime)
	if len(fields) > 0 {
		return false, apperr.ValidationFields(fields)
	}

	taken, err := uc.repo.HasActiveAt(ctx, in)
	if err != nil {
		return false, err
	}
	return !taken, nil
}
