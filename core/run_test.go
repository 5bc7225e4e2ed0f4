package core

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/slipcheck/slipcheck/internal/contract"
	"github.com/slipcheck/slipcheck/internal/dataset"
	"github.com/slipcheck/slipcheck/internal/iocache"
	"github.com/slipcheck/slipcheck/schema"
)

func TestEngineInputForRecord(t *testing.T) {
	strain := 0.05 // percent
	height := 30.0
	rec := verifyRecord("a-1", schema.DecoupledMethod, 4, 2)
	rec.Analysis.Mode = "equivalent_linear"
	rec.SiteParams.ReferenceStrain = &strain
	rec.SiteParams.HeightM = &height

	input := EngineInputForRecord(&rec, schema.NormalDirection)
	assert.Equal(t, "a-1", input.AnalysisID)
	assert.Equal(t, "decoupled", input.Method)
	assert.Equal(t, "northridge_pacoima.txt", input.GroundMotionFile)
	assert.Equal(t, 0.5, input.TargetPGAg)
	assert.Equal(t, 0.1, input.KyG)
	assert.False(t, input.Inverse)
	assert.Equal(t, "equivalent_linear", input.SoilModel)
	assert.Same(t, &height, input.HeightM)
	require.NotNil(t, input.StrainRatio)
	assert.InDelta(t, 0.0005, *input.StrainRatio, 1e-15)

	inverse := EngineInputForRecord(&rec, schema.InverseDirection)
	assert.True(t, inverse.Inverse)
}

func runTestConfig(t *testing.T, records []schema.AnalysisRecord) *contract.Config {
	t.Helper()
	dir := t.TempDir()
	refPath := filepath.Join(dir, "results_slammer_v1.0.json.gz")
	writeDataset(t, refPath, "slammer", "1.0", records)

	return &contract.Config{
		ReferencePath: refPath,
		ResultsDir:    dir,
		EngineBin:     "/usr/local/bin/slipcheck-engine",
		Workers:       2,
	}
}

func nilStoreManager() *iocache.MockCacheManager {
	mgr := &iocache.MockCacheManager{}
	mgr.On("GetRunCacheStore").Return(nil)
	mgr.On("GetRunStore").Return(nil)
	return mgr
}

func TestExecuteEngineRunWithoutStores(t *testing.T) {
	refs, _ := matchedRecords()
	cfg := runTestConfig(t, refs[:2])

	engine := &contract.MockEngine{}
	engine.On("Version", mock.Anything).Return("1.2.0", nil)
	engine.On("Run", mock.Anything, mock.Anything).Return(&contract.EngineOutput{DisplacementM: 0.05}, nil)

	err := ExecuteEngineRun(context.Background(), cfg, engine, nilStoreManager())
	require.NoError(t, err)
	engine.AssertNumberOfCalls(t, "Run", 4) // 2 records, 2 polarities each
}

func TestExecuteEngineRunTracksRun(t *testing.T) {
	refs, _ := matchedRecords()
	cfg := runTestConfig(t, refs[:2])

	engine := &contract.MockEngine{}
	engine.On("Version", mock.Anything).Return("1.2.0", nil)
	engine.On("Run", mock.Anything, mock.Anything).Return(&contract.EngineOutput{DisplacementM: 0.05}, nil)

	runStore := &iocache.MockRunStore{}
	runStore.On("BeginRun", mock.Anything, "1.2.0", mock.Anything).Return(int64(7), nil)
	runStore.On("RecordResult", int64(7), mock.MatchedBy(func(rec schema.RunRecord) bool {
		return rec.RunID == 7 && rec.EngineVersion == "1.2.0" && rec.DisplacementCm == 5.0
	})).Return(nil)
	runStore.On("EndRun", int64(7), mock.Anything, 4).Return(nil)

	mgr := &iocache.MockCacheManager{}
	mgr.On("GetRunCacheStore").Return(nil)
	mgr.On("GetRunStore").Return(runStore)

	err := ExecuteEngineRun(context.Background(), cfg, engine, mgr)
	require.NoError(t, err)
	runStore.AssertNumberOfCalls(t, "RecordResult", 4)
	runStore.AssertExpectations(t)
}

func TestRecordRunResultWithoutManager(t *testing.T) {
	rec := verifyRecord("a-1", schema.RigidMethod, 2, 1)
	input := EngineInputForRecord(&rec, schema.NormalDirection)
	out := &contract.EngineOutput{DisplacementM: 0.02}

	// No manager in the context: recording is a silent no-op.
	recordRunResult(context.Background(), 7, &rec, schema.NormalDirection, input, out, "1.2.0")
}

func TestRecordRunResultUsesContextManager(t *testing.T) {
	rec := verifyRecord("a-1", schema.RigidMethod, 2, 1)
	input := EngineInputForRecord(&rec, schema.NormalDirection)
	out := &contract.EngineOutput{DisplacementM: 0.02}

	runStore := &iocache.MockRunStore{}
	runStore.On("RecordResult", int64(7), mock.MatchedBy(func(row schema.RunRecord) bool {
		return row.RunID == 7 && row.AnalysisID == "a-1" && row.DisplacementCm == 2.0
	})).Return(nil)

	mgr := &iocache.MockCacheManager{}
	mgr.On("GetRunStore").Return(runStore)

	ctx := contextWithCacheManager(context.Background(), mgr)
	recordRunResult(ctx, 7, &rec, schema.NormalDirection, input, out, "1.2.0")
	runStore.AssertExpectations(t)
}

func TestExecuteEngineRunAllFailures(t *testing.T) {
	refs, _ := matchedRecords()
	cfg := runTestConfig(t, refs[:1])

	engine := &contract.MockEngine{}
	engine.On("Version", mock.Anything).Return("1.2.0", nil)
	engine.On("Run", mock.Anything, mock.Anything).Return(nil, errors.New("engine crashed"))

	err := ExecuteEngineRun(context.Background(), cfg, engine, nilStoreManager())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "engine produced no results")
}

func TestExecuteEngineRunVersionError(t *testing.T) {
	refs, _ := matchedRecords()
	cfg := runTestConfig(t, refs[:1])

	engine := &contract.MockEngine{}
	engine.On("Version", mock.Anything).Return("", errors.New("binary not found"))

	err := ExecuteEngineRun(context.Background(), cfg, engine, nilStoreManager())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "resolving engine version")
}

func TestExecuteEngineRunNoFilterMatches(t *testing.T) {
	refs, _ := matchedRecords()
	cfg := runTestConfig(t, refs)
	cfg.Methods = []schema.Method{schema.CoupledMethod}

	engine := &contract.MockEngine{}
	engine.On("Version", mock.Anything).Return("1.2.0", nil)

	err := ExecuteEngineRun(context.Background(), cfg, engine, nilStoreManager())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no reference analyses match")
}

func TestExecuteCollect(t *testing.T) {
	refs, _ := matchedRecords()
	cfg := runTestConfig(t, refs[:2])

	engine := &contract.MockEngine{}
	engine.On("Version", mock.Anything).Return("1.2.0", nil)

	fresh := time.Now().Unix()
	store := &iocache.MockCacheStore{}

	// First record: both polarities cached.
	normalOut := contract.EngineOutput{DisplacementM: 0.02}
	inverseOut := contract.EngineOutput{DisplacementM: 0.01}
	normalKey := generateRunCacheKey(EngineInputForRecord(&refs[0], schema.NormalDirection))
	inverseKey := generateRunCacheKey(EngineInputForRecord(&refs[0], schema.InverseDirection))
	store.On("Get", normalKey).Return(cacheEntryBytes(t, "1.2.0", normalOut), currentCacheVersion, fresh, nil)
	store.On("Get", inverseKey).Return(cacheEntryBytes(t, "1.2.0", inverseOut), currentCacheVersion, fresh, nil)

	// Second record: inverse polarity missing, so it is skipped.
	store.On("Get", generateRunCacheKey(EngineInputForRecord(&refs[1], schema.NormalDirection))).
		Return(cacheEntryBytes(t, "1.2.0", normalOut), currentCacheVersion, fresh, nil)
	store.On("Get", generateRunCacheKey(EngineInputForRecord(&refs[1], schema.InverseDirection))).
		Return(nil, 0, int64(0), errors.New("no such key"))

	mgr := &iocache.MockCacheManager{}
	mgr.On("GetRunCacheStore").Return(store)

	err := ExecuteCollect(context.Background(), cfg, engine, mgr)
	require.NoError(t, err)

	path := filepath.Join(cfg.ResultsDir, "results_slipcheck-engine_v1.2.0.json.gz")
	ds, err := dataset.Load(path)
	require.NoError(t, err)
	require.Len(t, ds.Analyses, 1)
	assert.Equal(t, "slipcheck-engine", ds.Metadata.SourceProgram)
	assert.Equal(t, "1.2.0", ds.Metadata.SourceVersion)
	assert.Equal(t, "a-1", ds.Analyses[0].AnalysisID)
	assert.InDelta(t, 2.0, ds.Analyses[0].Results.NormalDisplacementCm, 1e-9)
	assert.InDelta(t, 1.0, ds.Analyses[0].Results.InverseDisplacementCm, 1e-9)
	store.AssertNotCalled(t, "Delete", mock.Anything)
}

func TestExecuteCollectPrunes(t *testing.T) {
	refs, _ := matchedRecords()
	cfg := runTestConfig(t, refs[:1])
	cfg.Prune = true

	engine := &contract.MockEngine{}
	engine.On("Version", mock.Anything).Return("1.2.0", nil)

	fresh := time.Now().Unix()
	out := contract.EngineOutput{DisplacementM: 0.02}
	normalKey := generateRunCacheKey(EngineInputForRecord(&refs[0], schema.NormalDirection))
	inverseKey := generateRunCacheKey(EngineInputForRecord(&refs[0], schema.InverseDirection))

	store := &iocache.MockCacheStore{}
	store.On("Get", normalKey).Return(cacheEntryBytes(t, "1.2.0", out), currentCacheVersion, fresh, nil)
	store.On("Get", inverseKey).Return(cacheEntryBytes(t, "1.2.0", out), currentCacheVersion, fresh, nil)
	store.On("Delete", normalKey).Return(nil)
	store.On("Delete", inverseKey).Return(nil)

	mgr := &iocache.MockCacheManager{}
	mgr.On("GetRunCacheStore").Return(store)

	err := ExecuteCollect(context.Background(), cfg, engine, mgr)
	require.NoError(t, err)
	store.AssertExpectations(t)
}

func TestExecuteCollectNothingCached(t *testing.T) {
	refs, _ := matchedRecords()
	cfg := runTestConfig(t, refs[:1])

	engine := &contract.MockEngine{}
	engine.On("Version", mock.Anything).Return("1.2.0", nil)

	store := &iocache.MockCacheStore{}
	store.On("Get", mock.Anything).Return(nil, 0, int64(0), errors.New("no such key"))

	mgr := &iocache.MockCacheManager{}
	mgr.On("GetRunCacheStore").Return(store)

	err := ExecuteCollect(context.Background(), cfg, engine, mgr)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no cached engine results to collect")
}

func TestExecuteCollectNoCacheBackend(t *testing.T) {
	refs, _ := matchedRecords()
	cfg := runTestConfig(t, refs[:1])

	engine := &contract.MockEngine{}
	engine.On("Version", mock.Anything).Return("1.2.0", nil)

	mgr := &iocache.MockCacheManager{}
	mgr.On("GetRunCacheStore").Return(nil)

	err := ExecuteCollect(context.Background(), cfg, engine, mgr)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run caching is disabled")
}

func TestCandidateProgramName(t *testing.T) {
	assert.Equal(t, "slipcheck-engine", candidateProgramName(&contract.Config{EngineBin: "/opt/bin/slipcheck-engine"}))
	assert.Equal(t, "engine", candidateProgramName(&contract.Config{EngineBin: `engine.exe`}))
	assert.Equal(t, "candidate", candidateProgramName(&contract.Config{}))
}
