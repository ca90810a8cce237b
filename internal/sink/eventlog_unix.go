//go:build !windows

package sink

import "log/syslog"

func openEventWriter(source string) (EventWriter, error) {
	w, err := syslog.New(syslog.LOG_INFO|syslog.LOG_DAEMON, source)
	if err != nil {
		return nil, err
	}

	return w, nil
}
