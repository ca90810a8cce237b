// Package display formats readings for a display surface and provides a
// console surface.
package display

import (
	"fmt"
	"io"
	"strconv"
	"sync"

	"codeberg.org/mutker/hostwatch/internal/sampler"
)

// Lines holds the four formatted readings shown to the user
type Lines struct {
	CPU     string
	RAM     string
	Disk    string
	Threads string
}

// Surface receives formatted readings once per tick
type Surface interface {
	Update(lines Lines) error
}

// Format renders a sample the way the display shows it
func Format(s sampler.Sample) Lines {
	return Lines{
		CPU:     "CPU Usage: " + formatValue(s.CPUPercent) + "%",
		RAM:     "RAM Available: " + formatValue(s.RAMAvailableMB) + "MB",
		Disk:    "Disk Usage: " + formatValue(s.DiskPercent) + "%",
		Threads: "Thread Count: " + formatValue(s.ThreadCount),
	}
}

// formatValue prints the shortest decimal that reads back as v, so a value
// just past a threshold never displays as the threshold itself.
func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Console writes each update as one line to w
type Console struct {
	mu sync.Mutex
	w  io.Writer
}

func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

func (c *Console) Update(lines Lines) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, err := fmt.Fprintf(c.w, "%s | %s | %s | %s\n", lines.CPU, lines.RAM, lines.Disk, lines.Threads)
	return err
}
