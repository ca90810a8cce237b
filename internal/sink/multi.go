package sink

import (
	"context"
	"fmt"
	"io"

	"codeberg.org/mutker/hostwatch/internal/alert"
	"codeberg.org/mutker/hostwatch/internal/errors"
	"codeberg.org/mutker/hostwatch/internal/logger"
)

// Multi fans an alert out to every sink. A failing or panicking sink is
// reported and skipped; the remaining sinks still record.
type Multi struct {
	sinks []Sink
	log   logger.Logger
}

func NewMulti(log logger.Logger, sinks ...Sink) *Multi {
	return &Multi{
		sinks: sinks,
		log:   log.With("sink"),
	}
}

func (*Multi) Name() string {
	return "multi"
}

// Len returns the number of composed sinks
func (m *Multi) Len() int {
	return len(m.sinks)
}

// Record writes r to every sink and returns the failures joined
func (m *Multi) Record(ctx context.Context, r alert.Record) error {
	errFactory := errors.New()

	var errs []error
	for _, s := range m.sinks {
		if err := m.recordOne(ctx, s, r); err != nil {
			wrapped := errFactory.Wrap(ErrSinkWrite, err).WithMessage("sink " + s.Name())
			m.log.Error().
				Err(err).
				Str("sink", s.Name()).
				Msg("Failed to record alert")
			errs = append(errs, wrapped)
			continue
		}
		m.log.Debug().Str("sink", s.Name()).Msg("Alert recorded")
	}

	return errors.Join(errs...)
}

func (*Multi) recordOne(ctx context.Context, s Sink, r alert.Record) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = errors.New().WithData(ErrSinkPanic, fmt.Sprint(p))
		}
	}()

	return s.Record(ctx, r)
}

// Close closes every sink that holds resources
func (m *Multi) Close() error {
	errFactory := errors.New()

	var errs []error
	for _, s := range m.sinks {
		c, ok := s.(io.Closer)
		if !ok {
			continue
		}
		if err := c.Close(); err != nil {
			errs = append(errs, errFactory.Wrap(ErrSinkClose, err).WithMessage("close "+s.Name()))
		}
	}

	return errors.Join(errs...)
}
