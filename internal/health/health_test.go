package health_test

import (
	"testing"

	"codeberg.org/mutker/hostwatch/internal/config"
	"codeberg.org/mutker/hostwatch/internal/health"
	"codeberg.org/mutker/hostwatch/internal/sampler"
	"github.com/stretchr/testify/assert"
)

var defaults = config.Default().Thresholds()

func sample(cpu, ram, disk, threads float64) sampler.Sample {
	return sampler.Sample{
		CPUPercent:     cpu,
		RAMAvailableMB: ram,
		DiskPercent:    disk,
		ThreadCount:    threads,
	}
}

func TestBoundaryIsHealthy(t *testing.T) {
	s := sample(defaults.CPUMax, defaults.RAMMin, defaults.DiskMax, defaults.ThreadMax)

	assert.True(t, health.IsHealthy(s, defaults))
	assert.False(t, health.IsViolation(s, defaults))
	assert.Empty(t, health.Breaches(s, defaults))
}

func TestSingleMetricBreach(t *testing.T) {
	tests := []struct {
		name   string
		sample sampler.Sample
		metric sampler.Metric
	}{
		{"cpu above max", sample(10.001, 6000, 5, 10), sampler.MetricCPU},
		{"ram below min", sample(5, 4999.99, 5, 10), sampler.MetricRAM},
		{"disk above max", sample(5, 6000, 10.5, 10), sampler.MetricDisk},
		{"threads above max", sample(5, 6000, 5, 1001), sampler.MetricThreads},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, health.IsViolation(tt.sample, defaults))

			breaches := health.Breaches(tt.sample, defaults)
			if assert.Len(t, breaches, 1) {
				assert.Equal(t, tt.metric, breaches[0].Metric)
			}
		})
	}
}

func TestHealthyScenario(t *testing.T) {
	assert.False(t, health.IsViolation(sample(5, 6000, 5, 10), defaults))
}

func TestCPUViolationScenario(t *testing.T) {
	s := sample(95, 6000, 5, 10)

	assert.True(t, health.IsViolation(s, defaults))
	assert.Equal(t, []health.Breach{{Metric: sampler.MetricCPU, Value: 95, Threshold: 10}}, health.Breaches(s, defaults))
}

func TestMultipleBreachesOneDecision(t *testing.T) {
	s := sample(95, 100, 99, 5000)

	assert.True(t, health.IsViolation(s, defaults))
	assert.Equal(t, []string{"cpu", "ram", "disk", "threads"}, health.Metrics(health.Breaches(s, defaults)))
}

func TestZeroFallbackSample(t *testing.T) {
	// A fully failed sample reads as zeros; only the RAM floor trips.
	s := sample(0, 0, 0, 0)

	assert.True(t, health.IsViolation(s, defaults))
	assert.Equal(t, []string{"ram"}, health.Metrics(health.Breaches(s, defaults)))
}
