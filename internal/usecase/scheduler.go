package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"FeedbackResponder/internal/config"
	"FeedbackResponder/internal/ports"
	"FeedbackResponder/internal/source"
)

// PausePoll is how often a stopped loop re-checks the run switch.
const PausePoll = time.Second

// SchedulerDeps wires the sweep loop.
type SchedulerDeps struct {
	Registry *source.Registry
	Settings ports.SettingsProvider
	State    ports.RunState
	Sleeper  ports.Sleeper
	Logger   *slog.Logger
}

// Scheduler repeats sweeps over every review source while the run switch
// is on. A sweep always runs to completion; stopping only prevents the
// next one.
type Scheduler struct {
	registry  *source.Registry
	settings  ports.SettingsProvider
	state     ports.RunState
	sleeper   ports.Sleeper
	logger    *slog.Logger
	pausePoll time.Duration
}

// NewScheduler builds the loop.
func NewScheduler(deps SchedulerDeps) *Scheduler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		registry:  deps.Registry,
		settings:  deps.Settings,
		state:     deps.State,
		sleeper:   deps.Sleeper,
		logger:    logger,
		pausePoll: PausePoll,
	}
}

// Run blocks until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("scheduler started", "running", s.state.Running())
	defer s.logger.Info("scheduler stopped")

	for {
		if ctx.Err() != nil {
			return nil
		}

		if !s.state.Running() {
			if err := s.sleeper.Sleep(ctx, s.pausePoll); err != nil {
				return nil
			}
			continue
		}

		s.Sweep(ctx, s.settings.Load())
		if ctx.Err() != nil {
			return nil
		}

		interval := s.settings.Load().Worker.CheckInterval()
		s.logger.Info("sweep finished", "next_in", interval.String())
		if err := s.sleeper.Sleep(ctx, interval); err != nil {
			return nil
		}
	}
}

// Sweep checks every configured platform once, in settings order. Each
// source runs inside its own failure boundary.
func (s *Scheduler) Sweep(ctx context.Context, settings config.Settings) {
	for _, platform := range settings.Worker.PlatformOrder() {
		if ctx.Err() != nil {
			return
		}

		src, err := s.registry.Resolve(platform)
		if err != nil {
			s.logger.Warn("platform skipped", "platform", platform, "error", err)
			continue
		}

		if err := s.checkSource(ctx, src, settings); err != nil {
			s.logger.Error("review check failed", "platform", platform, "error", err)
		}
	}
}

func (s *Scheduler) checkSource(ctx context.Context, src ports.ReviewSource, settings config.Settings) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return src.CheckForNewReviews(ctx, settings)
}
