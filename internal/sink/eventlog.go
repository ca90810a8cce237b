package sink

import (
	"context"
	"sync"

	"codeberg.org/mutker/hostwatch/internal/alert"
	"codeberg.org/mutker/hostwatch/internal/errors"
)

// EventSource is the fixed source identifier alerts are logged under
const EventSource = "hostwatch"

// EventLog writes alerts as informational entries to the system event log:
// syslog on Unix, the Application log on Windows.
type EventLog struct {
	mu sync.Mutex
	w  EventWriter
}

// NewEventLog opens the platform event log under source
func NewEventLog(source string) (*EventLog, error) {
	w, err := openEventWriter(source)
	if err != nil {
		return nil, errors.New().Wrap(ErrEventLogOpen, err)
	}

	return NewEventLogWithWriter(w), nil
}

// NewEventLogWithWriter wraps an already opened writer
func NewEventLogWithWriter(w EventWriter) *EventLog {
	return &EventLog{w: w}
}

func (*EventLog) Name() string {
	return "eventlog"
}

func (e *EventLog) Record(ctx context.Context, r alert.Record) error {
	errFactory := errors.New()

	if err := ctx.Err(); err != nil {
		return errFactory.Wrap(ErrRecordCanceled, err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.w.Info(r.Message()); err != nil {
		return errFactory.Wrap(ErrEventLogWrite, err)
	}

	return nil
}

func (e *EventLog) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.w.Close()
}
