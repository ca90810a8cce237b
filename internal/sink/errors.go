package sink

import "codeberg.org/mutker/hostwatch/internal/errors"

const (
	ErrSinkWrite      = errors.ErrSinkWrite
	ErrFileOpen       = errors.ErrorCode("sink_file_open_failed")
	ErrFileWrite      = errors.ErrorCode("sink_file_write_failed")
	ErrEventLogOpen   = errors.ErrorCode("sink_eventlog_open_failed")
	ErrEventLogWrite  = errors.ErrorCode("sink_eventlog_write_failed")
	ErrSinkPanic      = errors.ErrorCode("sink_panic")
	ErrSinkClose      = errors.ErrShutdownFailed
	ErrRecordCanceled = errors.ErrTimeout
)
