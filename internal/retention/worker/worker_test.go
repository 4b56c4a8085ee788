package worker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"faceguard/internal/audit"
	"faceguard/internal/retention/metrics"
	"faceguard/internal/retention/models"
	"faceguard/internal/retention/store"
)

var now = time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

func clock() time.Time { return now }

func writeFile(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("sealed"), 0o600))
	return path
}

func TestRunOnceDeletesDueFilesOnly(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	schedule := store.New(dir)
	events := audit.NewInMemoryStore()
	m := metrics.New(prometheus.NewRegistry())

	due := writeFile(t, dir, "due.bin")
	later := writeFile(t, dir, "later.bin")
	gone := filepath.Join(dir, "gone.bin")
	require.NoError(t, schedule.Schedule(ctx, "u1", due, now.Add(-time.Minute)))
	require.NoError(t, schedule.Schedule(ctx, "u1", later, now.Add(time.Hour)))
	require.NoError(t, schedule.Schedule(ctx, "u2", gone, now))

	sweeper, err := New(schedule, WithClock(clock), WithAuditor(audit.NewPublisher(events)), WithMetrics(m))
	require.NoError(t, err)

	res, err := sweeper.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, Result{Deleted: 1, Missing: 1}, res)

	assert.NoFileExists(t, due)
	assert.FileExists(t, later)

	pending, err := schedule.Due(ctx, now.Add(2*time.Hour))
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, later, pending[0].FilePath)

	assert.Len(t, events.All(), 2)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FilesDeleted))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FilesMissing))

	res, err = sweeper.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, Result{}, res, "second sweep has nothing left to do")
}

type failingSchedule struct {
	entries []models.Entry
	markErr error
}

func (f *failingSchedule) Due(context.Context, time.Time) ([]models.Entry, error) {
	return f.entries, nil
}

func (f *failingSchedule) MarkDeleted(context.Context, string, time.Time) (bool, error) {
	return false, f.markErr
}

func TestRunOnceJoinsErrors(t *testing.T) {
	dir := t.TempDir()
	first := writeFile(t, dir, "a.bin")
	second := writeFile(t, dir, "b.bin")
	markErr := errors.New("disk full")
	schedule := &failingSchedule{
		entries: []models.Entry{{FilePath: first}, {FilePath: second}},
		markErr: markErr,
	}

	sweeper, err := New(schedule, WithClock(clock))
	require.NoError(t, err)

	res, err := sweeper.RunOnce(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, markErr)
	assert.Equal(t, 2, res.Failed)
	assert.Contains(t, err.Error(), "a.bin")
	assert.Contains(t, err.Error(), "b.bin")
}

func TestStartStopsOnCancel(t *testing.T) {
	sweeper, err := New(&failingSchedule{}, WithInterval(time.Millisecond))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sweeper.Start(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}

func TestNewRequiresSchedule(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)
}
