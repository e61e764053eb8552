package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"systrack/console/internal/engine"
)

// Scheduler keeps the resource caches warm between console requests.
// The upstream list endpoints accept anonymous reads, so the refresh
// runs with no bearer token.
type Scheduler struct {
	cron     *cron.Cron
	engine   *engine.Engine
	schedule string
	log      zerolog.Logger
}

func NewScheduler(eng *engine.Engine, schedule string, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:     cron.New(cron.WithSeconds()),
		engine:   eng,
		schedule: schedule,
		log:      log,
	}
}

func (s *Scheduler) Start() error {
	if s.engine == nil || s.schedule == "" {
		return nil
	}

	if _, err := s.cron.AddFunc(s.schedule, s.refresh); err != nil {
		return err
	}

	s.cron.Start()
	s.log.Info().Str("schedule", s.schedule).Msg("cache refresh scheduled")
	return nil
}

// Stop waits briefly for an in-flight refresh to finish.
func (s *Scheduler) Stop() {
	done := s.cron.Stop().Done()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		s.log.Warn().Msg("cache refresh still running at shutdown")
	}
}

func (s *Scheduler) refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	started := time.Now()
	s.engine.RefreshAll(ctx, "")
	s.log.Debug().Dur("elapsed", time.Since(started)).Msg("cache refresh completed")
}
