package history

import (
	"context"

	"codeberg.org/mutker/hostwatch/internal/alert"
)

// Recorder stores alert records. It satisfies sink.Sink.
type Recorder interface {
	Name() string
	Record(ctx context.Context, r alert.Record) error
	Close() error
}

// Repository defines the interface for alert storage
type Repository interface {
	Record(r alert.Record) error
	Close() error
}
