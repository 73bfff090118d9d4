// Package schedule drives the bot's time-based behavior: a frequent tick
// that re-evaluates the weekly deadline milestones and a once-a-day morning
// greeting. Both run in the owner's timezone.
package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron"
)

// Driver is what the scheduler triggers. *bot.Bot implements it.
type Driver interface {
	CheckDeadlineNudges(ctx context.Context) error
	MorningGreeting(ctx context.Context) error
}

// Scheduler owns the cron instance.
type Scheduler struct {
	cron *cron.Cron
	log  *slog.Logger
}

// New builds the schedule: milestone evaluation every 5 minutes and the
// greeting at hour:minute daily. The tick cadence bounds nudge latency; the
// evaluator itself is idempotent so a fast tick never double-sends.
func New(d Driver, zone *time.Location, greetingHour, greetingMinute int, log *slog.Logger) (*Scheduler, error) {
	c := cron.NewWithLocation(zone)

	err := c.AddFunc("@every 5m", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		if err := d.CheckDeadlineNudges(ctx); err != nil {
			log.Error("deadline check failed", "error", err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("scheduling deadline check: %w", err)
	}

	greetingSpec := fmt.Sprintf("0 %d %d * * *", greetingMinute, greetingHour)
	err = c.AddFunc(greetingSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		if err := d.MorningGreeting(ctx); err != nil {
			log.Error("morning greeting failed", "error", err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("scheduling greeting: %w", err)
	}

	return &Scheduler{cron: c, log: log}, nil
}

// Start begins ticking in a background goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("scheduler started")
}

// Stop halts future ticks. Running jobs are not interrupted.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	s.log.Info("scheduler stopped")
}
