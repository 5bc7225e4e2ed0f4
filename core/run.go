package core

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/slipcheck/slipcheck/internal/contract"
	"github.com/slipcheck/slipcheck/internal/dataset"
	"github.com/slipcheck/slipcheck/schema"
)

// EngineInputForRecord derives the engine request for one reference record
// and polarity. Reference strain is stored in percent and the engine expects
// a ratio.
func EngineInputForRecord(rec *schema.AnalysisRecord, dir schema.Direction) *contract.EngineInput {
	input := &contract.EngineInput{
		AnalysisID:       rec.AnalysisID,
		Method:           string(rec.Analysis.Method),
		GroundMotionFile: rec.GroundMotion.GroundMotionFile,
		TargetPGAg:       rec.GroundMotion.TargetPGAg,
		KyG:              rec.SiteParams.KyG,
		Inverse:          dir == schema.InverseDirection,
		HeightM:          rec.SiteParams.HeightM,
		VsSlopeMps:       rec.SiteParams.VsSlopeMps,
		VsBaseMps:        rec.SiteParams.VsBaseMps,
		DampingRatio:     rec.SiteParams.DampingRatio,
		SoilModel:        rec.Analysis.Mode,
	}
	if rec.SiteParams.ReferenceStrain != nil {
		ratio := *rec.SiteParams.ReferenceStrain / 100
		input.StrainRatio = &ratio
	}
	return input
}

// runPolarities is the fixed order engine runs happen in for each record.
var runPolarities = []schema.Direction{schema.NormalDirection, schema.InverseDirection}

// ExecuteEngineRun analyzes every filtered reference record with the
// candidate engine, both polarities per record, serving repeat inputs from
// the run cache. Each produced row is stored in the run store for later
// collection and export.
func ExecuteEngineRun(ctx context.Context, cfg *contract.Config, engine contract.Engine, mgr contract.CacheManager) error {
	start := time.Now()

	engineVersion, err := engine.Version(ctx)
	if err != nil {
		return fmt.Errorf("resolving engine version: %w", err)
	}

	reference, err := dataset.Load(cfg.ReferencePath)
	if err != nil {
		return fmt.Errorf("loading reference results: %w", err)
	}
	records := dataset.ApplyFilters(reference, cfg)
	if len(records) == 0 {
		return fmt.Errorf("no reference analyses match the current filters")
	}

	cacheStore := mgr.GetRunCacheStore()
	runStore := mgr.GetRunStore()

	// Run tracking is optional; a nil store means no run backend is configured
	var runID int64
	if runStore != nil {
		runID, err = runStore.BeginRun(start, engineVersion, runConfigParams(cfg))
		if err != nil {
			return fmt.Errorf("starting run tracking: %w", err)
		}
	}
	// Workers pull the run ID and the manager back out of the context when
	// recording produced rows.
	ctx = withRunID(ctx, runID)
	ctx = contextWithCacheManager(ctx, mgr)

	if !shouldSuppressHeader(ctx) {
		fmt.Printf("Running engine %s (version %s)\n", cfg.EngineBin, engineVersion)
		fmt.Printf("  Analyses: %d (%d rows)\n", len(records), len(records)*len(runPolarities))
		fmt.Printf("  Workers: %d\n\n", cfg.Workers)
	}

	var mu sync.Mutex
	var outcome schema.RunOutcome

	recordCh := make(chan int, len(records))
	var wg sync.WaitGroup
	for range cfg.Workers {
		wg.Go(func() {
			for idx := range recordCh {
				rec := &records[idx]
				for _, dir := range runPolarities {
					completed, cached, err := runOnePolarity(ctx, cfg, engine, cacheStore, rec, dir, engineVersion)
					mu.Lock()
					switch {
					case err != nil:
						outcome.Failed++
					case cached:
						outcome.Cached++
					case completed:
						outcome.Completed++
					}
					mu.Unlock()
					if err != nil {
						contract.LogWarn(fmt.Sprintf("Engine run failed for %s (%s)", rec.AnalysisID, dir), err)
					}
				}
			}
		})
	}

	for idx := range records {
		recordCh <- idx
	}
	close(recordCh)
	wg.Wait()

	if runStore != nil {
		if err := runStore.EndRun(runID, time.Now(), outcome.Completed+outcome.Cached); err != nil {
			contract.LogWarn("Could not finalize run tracking", err)
		}
	}

	fmt.Printf("Run complete in %v: %d computed, %d served from cache, %d failed\n",
		time.Since(start).Round(time.Millisecond), outcome.Completed, outcome.Cached, outcome.Failed)
	if runID > 0 {
		fmt.Printf("Run ID: %d\n", runID)
	}

	if outcome.Completed+outcome.Cached == 0 {
		return fmt.Errorf("engine produced no results. Check the engine binary and ground motion files")
	}
	return nil
}

// runOnePolarity runs the engine for a single record and polarity, then
// records the produced row when run tracking is active.
func runOnePolarity(ctx context.Context, cfg *contract.Config, engine contract.Engine, cacheStore contract.CacheStore, rec *schema.AnalysisRecord, dir schema.Direction, engineVersion string) (completed, cached bool, err error) {
	input := EngineInputForRecord(rec, dir)
	out, hit, err := cachedEngineRun(ctx, cfg, engine, cacheStore, input, engineVersion)
	if err != nil {
		return false, false, err
	}

	if runID, ok := getRunID(ctx); ok && runID > 0 {
		recordRunResult(ctx, runID, rec, dir, input, out, engineVersion)
	}
	return !hit, hit, nil
}

// recordRunResult stores one produced row in the run store carried by the
// context. Recording is best-effort; a failed insert only warns.
func recordRunResult(ctx context.Context, runID int64, rec *schema.AnalysisRecord, dir schema.Direction, input *contract.EngineInput, out *contract.EngineOutput, engineVersion string) {
	mgr := cacheManagerFromContext(ctx)
	if mgr == nil {
		return
	}
	runStore := mgr.GetRunStore()
	if runStore == nil {
		return
	}

	row := schema.RunRecord{
		RunID:          runID,
		AnalysisID:     rec.AnalysisID,
		CacheKey:       generateRunCacheKey(input),
		Method:         rec.Analysis.Method,
		Direction:      dir,
		DisplacementCm: out.DisplacementM * 100,
		Kmax:           out.Kmax,
		VsFinalMps:     out.VsFinalMps,
		DampingFinal:   out.DampingFinal,
		EngineVersion:  engineVersion,
		RunTime:        time.Now().UTC(),
	}
	if err := runStore.RecordResult(runID, row); err != nil {
		contract.LogWarn(fmt.Sprintf("Could not record result for %s (%s)", rec.AnalysisID, dir), err)
	}
}

// runConfigParams captures the filters that shaped a run, stored alongside
// the run row for later inspection.
func runConfigParams(cfg *contract.Config) map[string]any {
	methods := make([]string, 0, len(cfg.Methods))
	for _, m := range cfg.Methods {
		methods = append(methods, string(m))
	}
	return map[string]any{
		"engine_bin":      cfg.EngineBin,
		"reference":       cfg.ReferencePath,
		"methods":         methods,
		"earthquakes":     cfg.Earthquakes,
		"analysis_ids":    cfg.AnalysisIDs,
		"max_analyses":    cfg.MaxAnalyses,
		"force_recompute": cfg.ForceRecompute,
		"workers":         cfg.Workers,
	}
}

// ExecuteCollect assembles a candidate results file from the run cache. A
// record is collected only when both polarities are cached for the current
// engine version; with --prune the collected entries are deleted afterwards.
func ExecuteCollect(ctx context.Context, cfg *contract.Config, engine contract.Engine, mgr contract.CacheManager) error {
	engineVersion, err := engine.Version(ctx)
	if err != nil {
		return fmt.Errorf("resolving engine version: %w", err)
	}

	reference, err := dataset.Load(cfg.ReferencePath)
	if err != nil {
		return fmt.Errorf("loading reference results: %w", err)
	}
	records := dataset.ApplyFilters(reference, cfg)
	if len(records) == 0 {
		return fmt.Errorf("no reference analyses match the current filters")
	}

	store := mgr.GetRunCacheStore()
	if store == nil {
		return fmt.Errorf("run caching is disabled. Configure --cache-backend before collecting")
	}

	var analyses []schema.AnalysisRecord
	var collectedKeys []string
	missing := 0
	for i := range records {
		rec := &records[i]

		normalInput := EngineInputForRecord(rec, schema.NormalDirection)
		inverseInput := EngineInputForRecord(rec, schema.InverseDirection)
		normalKey := generateRunCacheKey(normalInput)
		inverseKey := generateRunCacheKey(inverseInput)

		normal := checkRunCacheHit(store, normalKey, engineVersion)
		inverse := checkRunCacheHit(store, inverseKey, engineVersion)
		if normal == nil || inverse == nil {
			missing++
			continue
		}

		candidate := *rec
		candidate.Results = schema.EngineResults{
			NormalDisplacementCm:  normal.DisplacementM * 100,
			InverseDisplacementCm: inverse.DisplacementM * 100,
			Kmax:                  normal.Kmax,
			VsFinalMps:            normal.VsFinalMps,
			DampingFinal:          normal.DampingFinal,
		}
		analyses = append(analyses, candidate)
		collectedKeys = append(collectedKeys, normalKey, inverseKey)
	}

	if len(analyses) == 0 {
		return fmt.Errorf("no cached engine results to collect. Run 'slipcheck run' first")
	}

	program := candidateProgramName(cfg)
	ds := &schema.Dataset{
		SchemaVersion: schema.CurrentSchemaVersion,
		Metadata: schema.DatasetMetadata{
			SourceProgram: program,
			SourceVersion: engineVersion,
			DateExtracted: time.Now().UTC().Format(time.RFC3339),
			TotalAnalyses: len(analyses),
		},
		Analyses: analyses,
	}

	path := filepath.Join(cfg.ResultsDir, dataset.BuildResultsFileName(program, engineVersion))
	if err := dataset.Save(path, ds); err != nil {
		return err
	}

	fmt.Printf("Collected %d of %d analyses into %s\n", len(analyses), len(records), path)
	if missing > 0 {
		fmt.Printf("  %d analyses had no complete cache entry and were skipped\n", missing)
	}

	if cfg.Prune {
		pruned := 0
		for _, key := range collectedKeys {
			if err := store.Delete(key); err != nil {
				contract.LogWarn("Could not prune cache entry "+key, err)
				continue
			}
			pruned++
		}
		fmt.Printf("  Pruned %d cache entries\n", pruned)
	}
	return nil
}

// candidateProgramName names the candidate program in collected results
// files, derived from the engine binary.
func candidateProgramName(cfg *contract.Config) string {
	base := filepath.Base(cfg.EngineBin)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" || base == "." {
		return "candidate"
	}
	return base
}
