// Package health classifies host samples against configured thresholds.
package health

import (
	"codeberg.org/mutker/hostwatch/internal/config"
	"codeberg.org/mutker/hostwatch/internal/sampler"
)

// Breach describes one reading on the unfavourable side of its bound
type Breach struct {
	Metric    sampler.Metric
	Value     float64
	Threshold float64
}

// IsHealthy reports whether every reading is within bounds. Bounds are
// inclusive: cpu <= max, ram >= min, disk <= max, threads <= max.
func IsHealthy(s sampler.Sample, t config.Thresholds) bool {
	return s.CPUPercent <= t.CPUMax &&
		s.RAMAvailableMB >= t.RAMMin &&
		s.DiskPercent <= t.DiskMax &&
		s.ThreadCount <= t.ThreadMax
}

// IsViolation is the single composite alert decision for a sample: any one
// reading out of bounds is enough.
func IsViolation(s sampler.Sample, t config.Thresholds) bool {
	return !IsHealthy(s, t)
}

// Breaches lists the readings that are out of bounds, for diagnostics only
func Breaches(s sampler.Sample, t config.Thresholds) []Breach {
	var out []Breach

	if s.CPUPercent > t.CPUMax {
		out = append(out, Breach{Metric: sampler.MetricCPU, Value: s.CPUPercent, Threshold: t.CPUMax})
	}
	if s.RAMAvailableMB < t.RAMMin {
		out = append(out, Breach{Metric: sampler.MetricRAM, Value: s.RAMAvailableMB, Threshold: t.RAMMin})
	}
	if s.DiskPercent > t.DiskMax {
		out = append(out, Breach{Metric: sampler.MetricDisk, Value: s.DiskPercent, Threshold: t.DiskMax})
	}
	if s.ThreadCount > t.ThreadMax {
		out = append(out, Breach{Metric: sampler.MetricThreads, Value: s.ThreadCount, Threshold: t.ThreadMax})
	}

	return out
}

// Metrics returns the names of the breached metrics
func Metrics(breaches []Breach) []string {
	names := make([]string, 0, len(breaches))
	for _, b := range breaches {
		names = append(names, string(b.Metric))
	}

	return names
}
