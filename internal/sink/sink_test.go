package sink_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"codeberg.org/mutker/hostwatch/internal/alert"
	"codeberg.org/mutker/hostwatch/internal/display"
	"codeberg.org/mutker/hostwatch/internal/errors"
	"codeberg.org/mutker/hostwatch/internal/logger"
	"codeberg.org/mutker/hostwatch/internal/sampler"
	"codeberg.org/mutker/hostwatch/internal/sink"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEventWriter struct {
	entries []string
	err     error
	closed  bool
}

func (f *fakeEventWriter) Info(msg string) error {
	if f.err != nil {
		return f.err
	}
	f.entries = append(f.entries, msg)
	return nil
}

func (f *fakeEventWriter) Close() error {
	f.closed = true
	return nil
}

type stubSink struct {
	name    string
	err     error
	panics  bool
	records []alert.Record
}

func (s *stubSink) Name() string { return s.name }

func (s *stubSink) Record(_ context.Context, r alert.Record) error {
	if s.panics {
		panic("sink exploded")
	}
	if s.err != nil {
		return s.err
	}
	s.records = append(s.records, r)
	return nil
}

func newRecord(at time.Time) alert.Record {
	s := sampler.Sample{Timestamp: at, CPUPercent: 95, RAMAvailableMB: 6000, DiskPercent: 5, ThreadCount: 10}
	return alert.New(at, s, display.Format(s), []string{"cpu"})
}

func readLines(t *testing.T, path string) []string {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	return strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
}

func TestFileAppendsOneLinePerRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "log.txt")
	f := sink.NewFile(path)
	start := time.Date(2026, 10, 19, 9, 0, 0, 0, time.Local)

	const n = 5
	for i := 0; i < n; i++ {
		require.NoError(t, f.Record(context.Background(), newRecord(start.Add(time.Duration(i)*time.Second))))
	}

	lines := readLines(t, path)
	require.Len(t, lines, n)

	var prev time.Time
	for _, line := range lines {
		ts, rest, ok := strings.Cut(line, ": ")
		require.True(t, ok)
		at, err := time.ParseInLocation(alert.TimestampLayout, ts, time.Local)
		require.NoError(t, err)
		assert.False(t, at.Before(prev), "timestamps must not decrease")
		prev = at
		assert.Equal(t, "CPU Usage: 95%, RAM Available: 6000MB, Disk Usage: 5%, Thread Count: 10", rest)
	}
}

func TestFileKeepsExistingContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.txt")
	require.NoError(t, os.WriteFile(path, []byte("earlier\n"), 0o600))

	f := sink.NewFile(path)
	require.NoError(t, f.Record(context.Background(), newRecord(time.Now())))

	lines := readLines(t, path)
	require.Len(t, lines, 2)
	assert.Equal(t, "earlier", lines[0])
}

func TestFileOpenFailure(t *testing.T) {
	dir := t.TempDir()
	f := sink.NewFile(dir) // a directory cannot be opened for append

	err := f.Record(context.Background(), newRecord(time.Now()))
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, sink.ErrFileOpen))
}

func TestFileCanceledContext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.txt")
	f := sink.NewFile(path)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := f.Record(ctx, newRecord(time.Now()))
	require.Error(t, err)
	assert.NoFileExists(t, path)
}

func TestEventLogRecord(t *testing.T) {
	w := &fakeEventWriter{}
	e := sink.NewEventLogWithWriter(w)
	r := newRecord(time.Now())

	require.NoError(t, e.Record(context.Background(), r))
	assert.Equal(t, []string{r.Message()}, w.entries)

	w.err = fmt.Errorf("no log provider")
	err := e.Record(context.Background(), r)
	assert.True(t, errors.HasCode(err, sink.ErrEventLogWrite))

	require.NoError(t, e.Close())
	assert.True(t, w.closed)
}

func TestMultiWritesBothSinksWithSameMessage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.txt")
	w := &fakeEventWriter{}
	m := sink.NewMulti(logger.Nop(), sink.NewFile(path), sink.NewEventLogWithWriter(w))
	r := newRecord(time.Now())

	require.NoError(t, m.Record(context.Background(), r))

	lines := readLines(t, path)
	require.Len(t, lines, 1)
	require.Len(t, w.entries, 1)
	assert.Equal(t, lines[0], w.entries[0])
	assert.Equal(t, 2, m.Len())
}

func TestMultiIsolatesFailures(t *testing.T) {
	broken := &stubSink{name: "broken", err: fmt.Errorf("disk full")}
	exploding := &stubSink{name: "exploding", panics: true}
	healthy := &stubSink{name: "healthy"}
	m := sink.NewMulti(logger.Nop(), broken, exploding, healthy)

	err := m.Record(context.Background(), newRecord(time.Now()))
	require.Error(t, err)

	assert.Len(t, healthy.records, 1, "later sinks still record")
	assert.True(t, errors.HasCode(err, sink.ErrSinkWrite))
	assert.True(t, errors.HasCode(err, sink.ErrSinkPanic))
	assert.Contains(t, err.Error(), "sink broken")
	assert.Contains(t, err.Error(), "sink exploding")
	assert.NotContains(t, err.Error(), "sink healthy")
}

func TestMultiClose(t *testing.T) {
	w := &fakeEventWriter{}
	m := sink.NewMulti(logger.Nop(), sink.NewFile(filepath.Join(t.TempDir(), "x.log")), sink.NewEventLogWithWriter(w))

	require.NoError(t, m.Close())
	assert.True(t, w.closed)
}
