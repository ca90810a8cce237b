//go:build windows

package sink

import "golang.org/x/sys/windows/svc/eventlog"

const infoEventID = 1

type windowsEventWriter struct {
	log *eventlog.Log
}

func openEventWriter(source string) (EventWriter, error) {
	// Registration needs administrator rights and fails once the source
	// exists; Open decides whether we can write.
	_ = eventlog.InstallAsEventCreate(source, eventlog.Info|eventlog.Warning|eventlog.Error)

	l, err := eventlog.Open(source)
	if err != nil {
		return nil, err
	}

	return &windowsEventWriter{log: l}, nil
}

func (w *windowsEventWriter) Info(msg string) error {
	return w.log.Info(infoEventID, msg)
}

func (w *windowsEventWriter) Close() error {
	return w.log.Close()
}
