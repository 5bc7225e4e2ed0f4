package iocache

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/slipcheck/slipcheck/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRunStore(t *testing.T) *RunStoreImpl {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "runs.db")
	store, err := NewRunStore(schema.SQLiteBackend, dbPath)
	require.NoError(t, err, "Failed to create SQLite run store")
	t.Cleanup(func() { _ = store.Close() })
	return store.(*RunStoreImpl)
}

func sampleRunRecord(analysisID string, method schema.Method, direction schema.Direction, cm float64) schema.RunRecord {
	kmax := 0.35
	return schema.RunRecord{
		AnalysisID:     analysisID,
		CacheKey:       "abc123def4567890",
		Method:         method,
		Direction:      direction,
		DisplacementCm: cm,
		Kmax:           &kmax,
		EngineVersion:  "1.4.0",
		RunTime:        time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC),
	}
}

func TestRunStoreLifecycle(t *testing.T) {
	store := newTestRunStore(t)

	start := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	runID, err := store.BeginRun(start, "1.4.0", map[string]any{"dataset": "reference.json.gz"})
	require.NoError(t, err)
	assert.Positive(t, runID)

	require.NoError(t, store.RecordResult(runID, sampleRunRecord("northridge-a", schema.RigidMethod, schema.NormalDirection, 12.5)))
	require.NoError(t, store.RecordResult(runID, sampleRunRecord("northridge-a", schema.RigidMethod, schema.InverseDirection, 9.8)))
	require.NoError(t, store.RecordResult(runID, sampleRunRecord("loma-prieta-b", schema.DecoupledMethod, schema.NormalDirection, 4.2)))

	require.NoError(t, store.EndRun(runID, start.Add(2*time.Minute), 3))

	records, err := store.ListResults(runID)
	require.NoError(t, err)
	require.Len(t, records, 3)

	first := records[0]
	assert.Equal(t, runID, first.RunID)
	assert.Equal(t, "northridge-a", first.AnalysisID)
	assert.Equal(t, schema.RigidMethod, first.Method)
	assert.Equal(t, schema.NormalDirection, first.Direction)
	assert.InDelta(t, 12.5, first.DisplacementCm, 1e-9)
	require.NotNil(t, first.Kmax)
	assert.InDelta(t, 0.35, *first.Kmax, 1e-9)
	assert.Nil(t, first.VsFinalMps)
	assert.Equal(t, "1.4.0", first.EngineVersion)
	assert.Equal(t, time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC), first.RunTime)
}

func TestRunStoreNewestRun(t *testing.T) {
	store := newTestRunStore(t)

	start := time.Now()
	run1, err := store.BeginRun(start, "1.3.0", nil)
	require.NoError(t, err)
	require.NoError(t, store.RecordResult(run1, sampleRunRecord("old-record", schema.RigidMethod, schema.NormalDirection, 1.0)))

	run2, err := store.BeginRun(start.Add(time.Hour), "1.4.0", nil)
	require.NoError(t, err)
	require.NoError(t, store.RecordResult(run2, sampleRunRecord("new-record", schema.RigidMethod, schema.NormalDirection, 2.0)))

	// runID 0 selects the newest run
	records, err := store.ListResults(0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "new-record", records[0].AnalysisID)
	assert.Equal(t, run2, records[0].RunID)

	// Explicit ID still selects the older run
	records, err = store.ListResults(run1)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "old-record", records[0].AnalysisID)
}

func TestRunStoreEmpty(t *testing.T) {
	store := newTestRunStore(t)

	// No runs yet: newest-run lookup yields no rows, not an error
	records, err := store.ListResults(0)
	assert.NoError(t, err)
	assert.Empty(t, records)

	status, err := store.GetStatus()
	assert.NoError(t, err)
	assert.True(t, status.Connected)
	assert.Zero(t, status.TotalRuns)
	assert.Zero(t, status.TotalRecords)
}

func TestRunStoreStatus(t *testing.T) {
	store := newTestRunStore(t)

	start := time.Now().UTC().Truncate(time.Second)
	runID, err := store.BeginRun(start, "1.4.0", nil)
	require.NoError(t, err)
	require.NoError(t, store.RecordResult(runID, sampleRunRecord("rec", schema.RigidMethod, schema.NormalDirection, 3.0)))
	require.NoError(t, store.EndRun(runID, start.Add(time.Minute), 1))

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, string(schema.SQLiteBackend), status.Backend)
	assert.True(t, status.Connected)
	assert.Equal(t, 1, status.TotalRuns)
	assert.Equal(t, runID, status.LastRunID)
	assert.Equal(t, 1, status.TotalRecords)
	assert.False(t, status.LastRunTime.IsZero())
	assert.Contains(t, status.TableSizes, runsTable)
	assert.Contains(t, status.TableSizes, runResultsTable)
}

func TestRunStoreNoneBackend(t *testing.T) {
	store, err := NewRunStore(schema.NoneBackend, "")
	require.NoError(t, err)

	runID, err := store.BeginRun(time.Now(), "1.4.0", nil)
	assert.NoError(t, err)
	assert.Zero(t, runID)

	assert.NoError(t, store.RecordResult(0, sampleRunRecord("rec", schema.RigidMethod, schema.NormalDirection, 1.0)))
	assert.NoError(t, store.EndRun(0, time.Now(), 1))

	records, err := store.ListResults(0)
	assert.NoError(t, err)
	assert.Nil(t, records)

	status, err := store.GetStatus()
	assert.NoError(t, err)
	assert.False(t, status.Connected)

	assert.NoError(t, store.Close())
}

func TestFormatTimeRoundTrip(t *testing.T) {
	original := time.Date(2026, 3, 15, 10, 30, 45, 123456789, time.UTC)
	formatted := formatTime(original)

	parsed, err := time.Parse(time.RFC3339Nano, formatted)
	require.NoError(t, err)
	assert.True(t, original.Equal(parsed))
}
