package sampler

import (
	"context"
	"time"
)

// Provider reads the four host counters. Each call returns the current value
// of a live quantity, so consecutive calls may differ.
type Provider interface {
	// CPUPercent returns total processor utilisation in percent
	CPUPercent(ctx context.Context) (float64, error)

	// RAMAvailableMB returns memory available to new allocations in MiB
	RAMAvailableMB(ctx context.Context) (float64, error)

	// DiskPercent returns the share of wall time the busiest disk spent on I/O
	DiskPercent(ctx context.Context) (float64, error)

	// ThreadCount returns the number of threads across all processes
	ThreadCount(ctx context.Context) (float64, error)
}

// Metric names a monitored counter
type Metric string

const (
	MetricCPU     Metric = "cpu"
	MetricRAM     Metric = "ram"
	MetricDisk    Metric = "disk"
	MetricThreads Metric = "threads"
)

// Sample is a snapshot of the four readings taken at one instant
type Sample struct {
	Timestamp      time.Time
	CPUPercent     float64
	RAMAvailableMB float64
	DiskPercent    float64
	ThreadCount    float64
}
