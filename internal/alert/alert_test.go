package alert_test

import (
	"testing"
	"time"

	"codeberg.org/mutker/hostwatch/internal/alert"
	"codeberg.org/mutker/hostwatch/internal/display"
	"codeberg.org/mutker/hostwatch/internal/sampler"
	"github.com/stretchr/testify/assert"
)

func TestMessage(t *testing.T) {
	s := sampler.Sample{CPUPercent: 95, RAMAvailableMB: 6000, DiskPercent: 5, ThreadCount: 10}
	at := time.Date(2026, 10, 19, 14, 3, 7, 0, time.Local)

	r := alert.New(at, s, display.Format(s), []string{"cpu"})

	assert.Equal(t,
		"2026-10-19 14:03:07: CPU Usage: 95%, RAM Available: 6000MB, Disk Usage: 5%, Thread Count: 10",
		r.Message())
	assert.Equal(t, []string{"cpu"}, r.Breached)
}
