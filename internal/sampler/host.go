package sampler

import (
	"context"
	"sync"
	"time"

	"codeberg.org/mutker/hostwatch/internal/errors"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/process"
)

const (
	bytesPerMB = 1024 * 1024
	maxPercent = 100.0
	perCPU     = false
)

// HostProvider reads counters from the running host via gopsutil
type HostProvider struct {
	mu        sync.Mutex
	lastBusy  map[string]uint64
	lastCheck time.Time

	// Collection functions for mocking
	getCPUPercent func(context.Context, time.Duration, bool) ([]float64, error)
	getMemStats   func(context.Context) (*mem.VirtualMemoryStat, error)
	getIOCounters func(context.Context, ...string) (map[string]disk.IOCountersStat, error)
	getProcesses  func(context.Context) ([]*process.Process, error)
	getNumThreads func(context.Context, *process.Process) (int32, error)
	now           func() time.Time
}

func NewHostProvider() *HostProvider {
	return &HostProvider{
		getCPUPercent: cpu.PercentWithContext,
		getMemStats:   mem.VirtualMemoryWithContext,
		getIOCounters: disk.IOCountersWithContext,
		getProcesses:  process.ProcessesWithContext,
		getNumThreads: func(ctx context.Context, p *process.Process) (int32, error) {
			return p.NumThreadsWithContext(ctx)
		},
		now: time.Now,
	}
}

// CPUPercent reports utilisation since the previous call; the first call
// measures since process start.
func (h *HostProvider) CPUPercent(ctx context.Context) (float64, error) {
	errFactory := errors.New()

	percents, err := h.getCPUPercent(ctx, 0, perCPU)
	if err != nil {
		return 0, errFactory.Wrap(ErrCPUReadFailed, err)
	}
	if len(percents) == 0 {
		return 0, errFactory.WithData(ErrNoData, MetricCPU)
	}

	return percents[0], nil
}

func (h *HostProvider) RAMAvailableMB(ctx context.Context) (float64, error) {
	errFactory := errors.New()

	vm, err := h.getMemStats(ctx)
	if err != nil {
		return 0, errFactory.Wrap(ErrMemoryReadFailed, err)
	}
	if vm == nil {
		return 0, errFactory.WithData(ErrNoData, MetricRAM)
	}

	return float64(vm.Available) / bytesPerMB, nil
}

// DiskPercent compares each device's cumulative busy time with the wall time
// elapsed since the previous call and reports the busiest device. The first
// call only records a baseline and returns 0.
func (h *HostProvider) DiskPercent(ctx context.Context) (float64, error) {
	errFactory := errors.New()

	counters, err := h.getIOCounters(ctx)
	if err != nil {
		return 0, errFactory.Wrap(ErrDiskReadFailed, err)
	}
	if len(counters) == 0 {
		return 0, errFactory.WithData(ErrNoData, MetricDisk)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	now := h.now()
	elapsedMs := float64(now.Sub(h.lastCheck).Milliseconds())
	previous := h.lastBusy

	h.lastBusy = make(map[string]uint64, len(counters))
	for name, c := range counters {
		h.lastBusy[name] = c.IoTime
	}
	h.lastCheck = now

	if previous == nil || elapsedMs <= 0 {
		return 0, nil
	}

	busiest := 0.0
	for name, c := range counters {
		last, ok := previous[name]
		if !ok || c.IoTime < last {
			continue
		}
		busiest = max(busiest, float64(c.IoTime-last)/elapsedMs*maxPercent)
	}

	return min(busiest, maxPercent), nil
}

// ThreadCount sums thread counts over every visible process. Processes that
// exit or deny access while being read are skipped.
func (h *HostProvider) ThreadCount(ctx context.Context) (float64, error) {
	errFactory := errors.New()

	procs, err := h.getProcesses(ctx)
	if err != nil {
		return 0, errFactory.Wrap(ErrThreadReadFailed, err)
	}

	var total int64
	counted := 0
	for _, p := range procs {
		n, err := h.getNumThreads(ctx, p)
		if err != nil {
			continue
		}
		total += int64(n)
		counted++
	}

	if counted == 0 {
		return 0, errFactory.WithData(ErrNoData, MetricThreads)
	}

	return float64(total), nil
}
