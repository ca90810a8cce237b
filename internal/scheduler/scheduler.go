// Package scheduler drives the sample, display, evaluate and record cycle on
// a fixed interval.
package scheduler

import (
	"context"
	"sync"
	"time"

	"codeberg.org/mutker/hostwatch/internal/alert"
	"codeberg.org/mutker/hostwatch/internal/config"
	"codeberg.org/mutker/hostwatch/internal/display"
	"codeberg.org/mutker/hostwatch/internal/errors"
	"codeberg.org/mutker/hostwatch/internal/health"
	"codeberg.org/mutker/hostwatch/internal/logger"
	"codeberg.org/mutker/hostwatch/internal/sampler"
)

type State int

const (
	StateIdle State = iota
	StateRunning
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	default:
		return "unknown"
	}
}

// Sampler produces one sample per call
type Sampler interface {
	Sample(ctx context.Context) sampler.Sample
}

// Recorder records an alert; sink.Multi satisfies it
type Recorder interface {
	Record(ctx context.Context, r alert.Record) error
}

// TickResult describes one completed tick
type TickResult struct {
	Sample    sampler.Sample
	Lines     display.Lines
	Violation bool
	Breached  []string
	// Err holds display and sink failures. They never stop the scheduler.
	Err error
}

type Scheduler struct {
	interval   time.Duration
	thresholds config.Thresholds
	sampler    Sampler
	display    display.Surface
	recorder   Recorder
	log        logger.Logger
	now        func() time.Time

	mu    sync.Mutex
	state State
}

type Option func(*Scheduler)

// WithInterval overrides the configured refresh interval
func WithInterval(d time.Duration) Option {
	return func(s *Scheduler) {
		s.interval = d
	}
}

// WithClock sets the time source used for alert timestamps
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) {
		s.now = now
	}
}

func New(
	cfg *config.Config, smp Sampler, surface display.Surface, rec Recorder, log logger.Logger, opts ...Option,
) *Scheduler {
	s := &Scheduler{
		interval:   cfg.Interval(),
		thresholds: cfg.Thresholds(),
		sampler:    smp,
		display:    surface,
		recorder:   rec,
		log:        log.With("scheduler"),
		now:        time.Now,
		state:      StateIdle,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state
}

// Run ticks every interval until ctx is cancelled. Ticks run on the calling
// goroutine one after another; a tick that overruns the interval delays the
// next instead of overlapping it.
func (s *Scheduler) Run(ctx context.Context) error {
	errFactory := errors.New()

	if s.interval <= 0 {
		return errFactory.WithData(errors.ErrInvalidInterval, s.interval.String())
	}

	s.mu.Lock()
	if s.state == StateRunning {
		s.mu.Unlock()
		return errFactory.WithData(errors.ErrResourceBusy, "scheduler already running")
	}
	s.state = StateRunning
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.state = StateIdle
		s.mu.Unlock()
	}()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.log.Info().Dur("interval", s.interval).Msg("Scheduler running")

	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("Scheduler stopped")
			return nil
		case <-ticker.C:
			result := s.Tick(ctx)
			if result.Err != nil {
				s.log.Warn().Err(result.Err).Msg("Tick completed with errors")
			}
		}
	}
}

// Tick samples once, refreshes the display with those values, and records an
// alert when they violate the thresholds.
func (s *Scheduler) Tick(ctx context.Context) TickResult {
	sample := s.sampler.Sample(ctx)
	result := TickResult{
		Sample: sample,
		Lines:  display.Format(sample),
	}

	var errs []error
	if err := s.display.Update(result.Lines); err != nil {
		errs = append(errs, errors.New().Wrap(errors.ErrOperationFailed, err).WithMessage("display update"))
	}

	result.Violation = health.IsViolation(sample, s.thresholds)

	s.log.Debug().
		Float64("cpu_percent", sample.CPUPercent).
		Float64("ram_available_mb", sample.RAMAvailableMB).
		Float64("disk_percent", sample.DiskPercent).
		Float64("thread_count", sample.ThreadCount).
		Bool("violation", result.Violation).
		Msg("")

	if result.Violation {
		result.Breached = health.Metrics(health.Breaches(sample, s.thresholds))
		rec := alert.New(s.now(), sample, result.Lines, result.Breached)

		s.log.Info().
			Strs("breached", result.Breached).
			Msg("Threshold violated")

		if err := s.recorder.Record(ctx, rec); err != nil {
			errs = append(errs, err)
		}
	}

	result.Err = errors.Join(errs...)

	return result
}
