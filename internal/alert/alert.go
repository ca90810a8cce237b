package alert

import (
	"strings"
	"time"

	"codeberg.org/mutker/hostwatch/internal/display"
	"codeberg.org/mutker/hostwatch/internal/sampler"
)

// TimestampLayout is the timestamp format used in alert messages
const TimestampLayout = "2006-01-02 15:04:05"

// Record is one threshold violation as written to the sinks
type Record struct {
	Timestamp time.Time
	Sample    sampler.Sample
	Lines     display.Lines
	Breached  []string
}

// New builds the record for a violating sample
func New(at time.Time, s sampler.Sample, lines display.Lines, breached []string) Record {
	return Record{
		Timestamp: at,
		Sample:    s,
		Lines:     lines,
		Breached:  breached,
	}
}

// Message renders "<timestamp>: <cpu>, <ram>, <disk>, <threads>"
func (r Record) Message() string {
	var b strings.Builder

	b.WriteString(r.Timestamp.Format(TimestampLayout))
	b.WriteString(": ")
	b.WriteString(strings.Join([]string{r.Lines.CPU, r.Lines.RAM, r.Lines.Disk, r.Lines.Threads}, ", "))

	return b.String()
}
