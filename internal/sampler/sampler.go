package sampler

import (
	"context"
	"time"

	"codeberg.org/mutker/hostwatch/internal/logger"
)

// Sampler reads host counters through a Provider. A failed read yields 0 and
// a warning; callers never see sampling errors.
type Sampler struct {
	provider Provider
	log      logger.Logger
	now      func() time.Time
}

func New(provider Provider, log logger.Logger) *Sampler {
	return &Sampler{
		provider: provider,
		log:      log.With("sampler"),
		now:      time.Now,
	}
}

func (s *Sampler) CPUPercent(ctx context.Context) float64 {
	return s.read(ctx, MetricCPU, s.provider.CPUPercent)
}

func (s *Sampler) RAMAvailableMB(ctx context.Context) float64 {
	return s.read(ctx, MetricRAM, s.provider.RAMAvailableMB)
}

func (s *Sampler) DiskPercent(ctx context.Context) float64 {
	return s.read(ctx, MetricDisk, s.provider.DiskPercent)
}

func (s *Sampler) ThreadCount(ctx context.Context) float64 {
	return s.read(ctx, MetricThreads, s.provider.ThreadCount)
}

// Sample reads every counter once
func (s *Sampler) Sample(ctx context.Context) Sample {
	return Sample{
		Timestamp:      s.now(),
		CPUPercent:     s.CPUPercent(ctx),
		RAMAvailableMB: s.RAMAvailableMB(ctx),
		DiskPercent:    s.DiskPercent(ctx),
		ThreadCount:    s.ThreadCount(ctx),
	}
}

func (s *Sampler) read(ctx context.Context, metric Metric, fn func(context.Context) (float64, error)) float64 {
	value, err := fn(ctx)
	if err != nil {
		s.log.Warn().
			Err(err).
			Str("metric", string(metric)).
			Msg("Counter unavailable, using 0")
		return 0
	}

	return value
}
