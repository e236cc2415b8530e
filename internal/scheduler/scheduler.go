// Package scheduler runs the in-process poll that dispatches due scheduled
// newsletter sends. Deployments that trigger the run endpoint from an
// external cron can disable it.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"mathblog/internal/newsletter"
)

// Scheduler periodically invokes the newsletter driver.
type Scheduler struct {
	driver   *newsletter.Driver
	cron     *cron.Cron
	interval time.Duration
	log      *slog.Logger
}

func New(driver *newsletter.Driver, interval time.Duration, log *slog.Logger) *Scheduler {
	return &Scheduler{
		driver:   driver,
		cron:     cron.New(),
		interval: interval,
		log:      log,
	}
}

// Start begins polling. The passed context bounds each run; polling stops
// when Stop is called.
func (s *Scheduler) Start(ctx context.Context) {
	s.cron.Schedule(cron.Every(s.interval), cron.FuncJob(func() {
		s.run(ctx)
	}))
	s.cron.Start()
	s.log.Info("scheduler started", slog.Duration("interval", s.interval))
}

// Stop halts polling and waits for an in-flight run to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info("scheduler stopped")
}

func (s *Scheduler) run(ctx context.Context) {
	outcomes, err := s.driver.RunDue(ctx, time.Now().UTC())
	if err != nil {
		s.log.Error("scheduled send poll failed", slog.String("error", err.Error()))
		return
	}
	for _, out := range outcomes {
		if out.OK() {
			s.log.Info("scheduled send dispatched",
				slog.String("send_id", out.SendID.String()),
				slog.Int("recipients", out.RecipientCount))
			continue
		}
		s.log.Warn("scheduled send not dispatched",
			slog.String("send_id", out.SendID.String()),
			slog.Bool("dead_lettered", out.DeadLettered),
			slog.String("error", out.Error))
	}
}
