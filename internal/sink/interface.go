package sink

import (
	"context"

	"codeberg.org/mutker/hostwatch/internal/alert"
)

// Sink durably records an alert
type Sink interface {
	// Name identifies the sink in diagnostics
	Name() string

	// Record writes one alert. Implementations must not retain r.
	Record(ctx context.Context, r alert.Record) error
}

// EventWriter is the part of a platform event log the EventLog sink uses
type EventWriter interface {
	Info(msg string) error
	Close() error
}
