package sampler

import "codeberg.org/mutker/hostwatch/internal/errors"

const (
	ErrCPUReadFailed    = errors.ErrorCode("sampler_cpu_read_failed")
	ErrMemoryReadFailed = errors.ErrorCode("sampler_memory_read_failed")
	ErrDiskReadFailed   = errors.ErrorCode("sampler_disk_read_failed")
	ErrThreadReadFailed = errors.ErrorCode("sampler_thread_read_failed")
	ErrNoData           = errors.ErrorCode("sampler_no_data")
)
