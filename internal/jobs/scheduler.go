package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Task is one sweep; it reports how many rows it touched.
type Task interface {
	Execute(ctx context.Context) (int, error)
}

type Scheduler struct {
	cron    *cron.Cron
	log     zerolog.Logger
	timeout time.Duration
}

// New runs jobs on the salon clock.
func New(loc *time.Location, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithLocation(loc)),
		log:     log,
		timeout: 5 * time.Minute,
	}
}

// Register schedules task under a standard five-field cron spec. An empty
// spec disables the job.
func (s *Scheduler) Register(name, spec string, task Task) error {
	if spec == "" {
		s.log.Info().Str("job", name).Msg("job disabled")
		return nil
	}
	if _, err := s.cron.AddFunc(spec, s.runner(name, task)); err != nil {
		return fmt.Errorf("schedule %s: %w", name, err)
	}
	s.log.Info().Str("job", name).Str("spec", spec).Msg("job scheduled")
	return nil
}

func (s *Scheduler) runner(name string, task Task) func() {
	return func() {
		log := s.log.With().Str("job", name).Logger()
		ctx, cancel := context.WithTimeout(log.WithContext(context.Background()), s.timeout)
		defer cancel()

		started := time.Now()
		n, err := task.Execute(ctx)
		if err != nil {
			log.Error().Err(err).Int("affected", n).Msg("job failed")
			return
		}
		log.Info().Int("affected", n).Dur("took", time.Since(started)).Msg("job finished")
	}
}

func (s *Scheduler) Start() { s.cron.Start() }

// Stop waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
