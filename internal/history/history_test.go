package history

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"codeberg.org/mutker/hostwatch/internal/alert"
	"codeberg.org/mutker/hostwatch/internal/display"
	"codeberg.org/mutker/hostwatch/internal/errors"
	"codeberg.org/mutker/hostwatch/internal/logger"
	"codeberg.org/mutker/hostwatch/internal/sampler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRecord(at time.Time, cpu float64) alert.Record {
	s := sampler.Sample{Timestamp: at, CPUPercent: cpu, RAMAvailableMB: 6000, DiskPercent: 5, ThreadCount: 10}
	return alert.New(at, s, display.Format(s), []string{"cpu"})
}

func countAlerts(t *testing.T, path string) int {
	t.Helper()

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()

	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM alerts").Scan(&n))
	return n
}

func enabledConfig(t *testing.T) Config {
	cfg := DefaultConfig()
	cfg.Enabled = true
	cfg.DBPath = filepath.Join(t.TempDir(), "data", "history.db")
	return cfg
}

func TestDisabledServiceIsNoop(t *testing.T) {
	rec, err := NewService(DefaultConfig(), logger.Nop())
	require.NoError(t, err)

	assert.IsType(t, &noopRecorder{}, rec)
	assert.NoError(t, rec.Record(context.Background(), testRecord(time.Now(), 95)))
	assert.NoError(t, rec.Close())
}

func TestInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Enabled = true
	cfg.DBPath = ""

	_, err := NewService(cfg, logger.Nop())
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, ErrInvalidDBPath))

	cfg = DefaultConfig()
	cfg.BatchSize = 0
	assert.Error(t, cfg.Validate())
}

func TestRecordWritesImmediately(t *testing.T) {
	cfg := enabledConfig(t)
	rec, err := NewService(cfg, logger.Nop())
	require.NoError(t, err)

	at := time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)
	r := testRecord(at, 95)
	require.NoError(t, rec.Record(context.Background(), r))
	assert.Equal(t, 1, countAlerts(t, cfg.DBPath))
	require.NoError(t, rec.Close())

	db, err := sql.Open("sqlite3", cfg.DBPath)
	require.NoError(t, err)
	defer db.Close()

	var (
		ts       int64
		cpu      float64
		breached string
		message  string
	)
	err = db.QueryRow("SELECT timestamp, cpu_percent, breached, message FROM alerts").Scan(&ts, &cpu, &breached, &message)
	require.NoError(t, err)
	assert.Equal(t, at.UnixMilli(), ts)
	assert.Equal(t, 95.0, cpu)
	assert.Equal(t, "cpu", breached)
	assert.Equal(t, r.Message(), message)
}

func TestBatchedRecordsFlushOnClose(t *testing.T) {
	cfg := enabledConfig(t)
	cfg.BatchSize = 10
	cfg.BatchTimeout = 3600

	repo, err := NewRepository(cfg, logger.Nop())
	require.NoError(t, err)

	now := time.Now()
	require.NoError(t, repo.Record(testRecord(now, 90)))
	require.NoError(t, repo.Record(testRecord(now.Add(time.Second), 91)))
	assert.Equal(t, 0, countAlerts(t, cfg.DBPath), "records stay buffered until the batch fills")

	require.NoError(t, repo.Close())
	assert.Equal(t, 2, countAlerts(t, cfg.DBPath))

	err = repo.Record(testRecord(now, 92))
	assert.True(t, errors.HasCode(err, ErrClosed))
	assert.NoError(t, repo.Close(), "closing twice is harmless")
}

func TestCanceledContext(t *testing.T) {
	cfg := enabledConfig(t)
	rec, err := NewService(cfg, logger.Nop())
	require.NoError(t, err)
	defer rec.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = rec.Record(ctx, testRecord(time.Now(), 95))
	assert.True(t, errors.HasCode(err, ErrOperationTimeout))
}

func TestSchemaMismatchIsBackedUpAndRecreated(t *testing.T) {
	cfg := enabledConfig(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755))

	db, err := sql.Open("sqlite3", cfg.DBPath)
	require.NoError(t, err)
	_, err = db.Exec(`
		CREATE TABLE schema_versions (version INTEGER PRIMARY KEY, applied_at TEXT NOT NULL);
		INSERT INTO schema_versions VALUES (99, datetime('now'));
		CREATE TABLE alerts (legacy TEXT);`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	repo, err := NewRepository(cfg, logger.Nop())
	require.NoError(t, err)
	defer repo.Close()

	backups, err := filepath.Glob(filepath.Join(cfg.backupDir(), "history_v99_*.db"))
	require.NoError(t, err)
	assert.Len(t, backups, 1)

	require.NoError(t, repo.Record(testRecord(time.Now(), 95)))
	assert.Equal(t, 1, countAlerts(t, cfg.DBPath))
}
