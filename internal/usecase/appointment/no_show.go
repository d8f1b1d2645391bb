package appointment

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/peluqueria-anita/salon-api/internal/apperr"
	"github.com/peluqueria-anita/salon-api/internal/audit"
	domain "github.com/peluqueria-anita/salon-api/internal/domain/appointment"
	"github.com/peluqueria-anita/salon-api/internal/models"
)

// MarkNoShows moves pending or confirmed appointments dated before today to
// no_show.
type MarkNoShows struct {
	repo  domain.Repository
	audit *audit.Dispatcher
	now   func() time.Time
}

func NewMarkNoShows(
	repo domain.Repository,
	audit *audit.Dispatcher,
	now func() time.Time,
) *MarkNoShows {
	return &MarkNoShows{repo: repo, audit: audit, now: now}
}

func (uc *MarkNoShows) Execute(ctx context.Context) (int, error) {
	now := uc.now()

	overdue, err := uc.repo.ListOverdue(ctx, models.NewDate(now), []string{
		string(domain.StatusPending),
		string(domain.StatusConfirmed),
	})
	if err != nil {
		return 0, err
	}

	log := zerolog.Ctx(ctx)
	marked := 0
	for i := range overdue {
		ap := &overdue[i]
		err := uc.repo.Transaction(ctx, func(tx domain.Repository) error {
			current, err := tx.LockAppointment(ctx, ap.ID)
			if err != nil {
				return err
			}
			if err := domain.Transition(current, domain.StatusNoShow, now); err != nil {
				return err
			}
			return tx.UpdateAppointment(ctx, stripRelations(current))
		})
		if isNotFound(err) {
			continue
		}
		if _, ok := apperr.As(err); ok {
			log.Warn().Err(err).Uint("appointment_id", ap.ID).Msg("no-show transition rejected")
			continue
		}
		if err != nil {
			return marked, err
		}
		marked++

		uc.audit.Dispatch(audit.Event{
			Action:   "appointment_no_show",
			Entity:   "appointment",
			EntityID: &ap.ID,
			Metadata: map[string]string{"source": "scheduler"},
		})
	}

	return marked, nil
}
