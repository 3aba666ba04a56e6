package jsonfile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/worklog-engine/worklog"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(t.TempDir())
	require.NoError(t, err)
	return s
}

func testItem(id, date string) worklog.WorkItem {
	return worklog.WorkItem{
		ID:          id,
		Number:      "100",
		Reference:   "PMP-A",
		Description: "Replace bearing",
		Department:  "Mechanical",
		Status:      "Pending",
		Date:        date,
	}
}

func TestLoadMissingYearIsEmpty(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// Repeated loads of an absent year keep returning empty, never error.
	for i := 0; i < 2; i++ {
		p, err := s.Load(ctx, 2025)
		require.NoError(t, err)
		assert.Empty(t, p)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	in := worklog.YearPartition{
		"2025-03-01": {testItem("a", "2025-03-01"), testItem("b", "2025-03-01")},
		"2025-03-02": {testItem("c", "2025-03-02")},
	}
	require.NoError(t, s.Save(ctx, 2025, in))

	out, err := s.Load(ctx, 2025)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestSaveMergesByDateBucket(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, 2025, worklog.YearPartition{
		"2025-03-01": {testItem("a", "2025-03-01")},
		"2025-03-02": {testItem("b", "2025-03-02")},
	}))

	// A later save touching only one date replaces that bucket wholesale
	// and leaves the other date alone.
	require.NoError(t, s.Save(ctx, 2025, worklog.YearPartition{
		"2025-03-02": {testItem("c", "2025-03-02")},
	}))

	out, err := s.Load(ctx, 2025)
	require.NoError(t, err)
	assert.Equal(t, []worklog.WorkItem{testItem("a", "2025-03-01")}, out["2025-03-01"])
	assert.Equal(t, []worklog.WorkItem{testItem("c", "2025-03-02")}, out["2025-03-02"])
}

func TestSaveEmptyBucketKeepsDateKey(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, 2025, worklog.YearPartition{
		"2025-03-01": {testItem("a", "2025-03-01")},
	}))
	require.NoError(t, s.Save(ctx, 2025, worklog.YearPartition{
		"2025-03-01": {},
	}))

	out, err := s.Load(ctx, 2025)
	require.NoError(t, err)
	bucket, ok := out["2025-03-01"]
	assert.True(t, ok)
	assert.Empty(t, bucket)
}

func TestYearsAreIsolated(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, 2024, worklog.YearPartition{
		"2024-12-31": {testItem("a", "2024-12-31")},
	}))
	require.NoError(t, s.Save(ctx, 2025, worklog.YearPartition{
		"2025-01-01": {testItem("b", "2025-01-01")},
	}))

	p24, err := s.Load(ctx, 2024)
	require.NoError(t, err)
	p25, err := s.Load(ctx, 2025)
	require.NoError(t, err)

	assert.Len(t, p24, 1)
	assert.Contains(t, p24, "2024-12-31")
	assert.Len(t, p25, 1)
	assert.Contains(t, p25, "2025-01-01")
}

func TestMalformedFileLoadsEmpty(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	require.NoError(t, err)
	ctx := context.Background()

	path := filepath.Join(dir, "works-2025.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	p, err := s.Load(ctx, 2025)
	require.NoError(t, err)
	assert.Empty(t, p)

	// A save over the corrupted file re-establishes valid content.
	require.NoError(t, s.Save(ctx, 2025, worklog.YearPartition{
		"2025-01-01": {testItem("a", "2025-01-01")},
	}))
	p, err = s.Load(ctx, 2025)
	require.NoError(t, err)
	assert.Len(t, p["2025-01-01"], 1)
}

func TestConcurrentSavesSameYear(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	done := make(chan error, 10)
	for i := 0; i < 10; i++ {
		go func(i int) {
			date := fmt.Sprintf("2025-01-%02d", i+1)
			done <- s.Save(ctx, 2025, worklog.YearPartition{
				date: {testItem(fmt.Sprintf("id-%d", i), date)},
			})
		}(i)
	}
	for i := 0; i < 10; i++ {
		require.NoError(t, <-done)
	}

	out, err := s.Load(ctx, 2025)
	require.NoError(t, err)
	assert.Len(t, out, 10)
}

func TestCancelledContext(t *testing.T) {
	s := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Load(ctx, 2025)
	assert.Error(t, err)
	assert.Error(t, s.Save(ctx, 2025, worklog.YearPartition{}))
}
