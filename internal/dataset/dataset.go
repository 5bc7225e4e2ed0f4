// Package dataset loads, saves and filters gzip-compressed verification
// result files.
package dataset

import (
	"bufio"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/slipcheck/slipcheck/internal/contract"
	"github.com/slipcheck/slipcheck/schema"
)

// Results file naming convention: results_<program>[_v<version>].json.gz
const (
	ResultsFilePrefix = "results_"
	ResultsFileSuffix = ".json.gz"
)

// Load reads a JSON results file, validates the payload against the dataset
// schema, and decodes it. Files are gzip-compressed by convention; plain
// JSON is detected by the missing gzip magic bytes and read as-is.
func Load(path string) (*schema.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening results file: %w", err)
	}
	defer func() { _ = f.Close() }()

	br := bufio.NewReader(f)
	var payload io.Reader = br
	if magic, err := br.Peek(2); err == nil && magic[0] == 0x1f && magic[1] == 0x8b {
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("reading gzip header of %s: %w", path, err)
		}
		defer func() { _ = zr.Close() }()
		payload = zr
	}

	data, err := io.ReadAll(payload)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	if err := schema.ValidateDatasetJSON(data, filepath.Base(path)); err != nil {
		return nil, err
	}

	var ds schema.Dataset
	if err := json.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return &ds, nil
}

// Save writes a dataset as gzip-compressed, indented JSON. The indentation
// keeps the files diffable once decompressed.
func Save(path string, ds *schema.Dataset) error {
	data, err := json.MarshalIndent(ds, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding results for %s: %w", path, err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating results directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating results file: %w", err)
	}
	defer func() { _ = f.Close() }()

	zw := gzip.NewWriter(f)
	if _, err := zw.Write(data); err != nil {
		_ = zw.Close()
		return fmt.Errorf("compressing results to %s: %w", path, err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("flushing results to %s: %w", path, err)
	}
	return f.Close()
}

// ApplyFilters returns the records selected by the method, earthquake and
// analysis ID filters, capped at the configured maximum. Empty filters
// select everything; dataset order is preserved.
func ApplyFilters(ds *schema.Dataset, cfg *contract.Config) []schema.AnalysisRecord {
	methodSet := make(map[schema.Method]struct{}, len(cfg.Methods))
	for _, m := range cfg.Methods {
		methodSet[m] = struct{}{}
	}
	idSet := make(map[string]struct{}, len(cfg.AnalysisIDs))
	for _, id := range cfg.AnalysisIDs {
		idSet[id] = struct{}{}
	}

	selected := make([]schema.AnalysisRecord, 0, len(ds.Analyses))
	for _, rec := range ds.Analyses {
		if len(methodSet) > 0 {
			if _, ok := methodSet[rec.Analysis.Method]; !ok {
				continue
			}
		}
		if len(cfg.Earthquakes) > 0 && !matchesEarthquake(rec.GroundMotion.Earthquake, cfg.Earthquakes) {
			continue
		}
		if len(idSet) > 0 {
			if _, ok := idSet[rec.AnalysisID]; !ok {
				continue
			}
		}
		selected = append(selected, rec)

		if cfg.MaxAnalyses > 0 && len(selected) >= cfg.MaxAnalyses {
			break
		}
	}
	return selected
}

// matchesEarthquake reports whether an earthquake name matches any filter
// entry, ignoring case.
func matchesEarthquake(name string, filters []string) bool {
	for _, f := range filters {
		if strings.EqualFold(name, f) {
			return true
		}
	}
	return false
}

// RecordPair joins a reference record with its candidate twin.
type RecordPair struct {
	Reference *schema.AnalysisRecord
	Candidate *schema.AnalysisRecord
}

// MatchPairs joins reference records to candidate records by analysis ID,
// preserving reference order. Reference records without a candidate twin are
// returned separately so callers can warn and continue.
func MatchPairs(refs []schema.AnalysisRecord, cand *schema.Dataset) (pairs []RecordPair, missing []string) {
	candByID := make(map[string]*schema.AnalysisRecord, len(cand.Analyses))
	for i := range cand.Analyses {
		candByID[cand.Analyses[i].AnalysisID] = &cand.Analyses[i]
	}

	for i := range refs {
		ref := &refs[i]
		c, ok := candByID[ref.AnalysisID]
		if !ok {
			missing = append(missing, ref.AnalysisID)
			continue
		}
		pairs = append(pairs, RecordPair{Reference: ref, Candidate: c})
	}
	return pairs, missing
}

// DiscoverCandidate returns the most recently modified results file in dir,
// skipping the reference file itself. Used when no explicit candidate path
// was given.
func DiscoverCandidate(dir, referencePath string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("listing results directory: %w", err)
	}

	refBase := filepath.Base(referencePath)
	var newest string
	var newestMod int64
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || name == refBase {
			continue
		}
		if !strings.HasPrefix(name, ResultsFilePrefix) || !strings.HasSuffix(name, ResultsFileSuffix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if mod := info.ModTime().UnixNano(); newest == "" || mod > newestMod {
			newest = name
			newestMod = mod
		}
	}

	if newest == "" {
		return "", fmt.Errorf("no candidate results found in %s. Run 'slipcheck run' and 'slipcheck collect' first, or pass --candidate", dir)
	}
	return filepath.Join(dir, newest), nil
}

// BuildResultsFileName returns the conventional file name for a program's
// results at a version.
func BuildResultsFileName(program, version string) string {
	name := strings.ReplaceAll(strings.TrimSpace(program), " ", "_")
	if version != "" {
		name += "_v" + version
	}
	return ResultsFilePrefix + name + ResultsFileSuffix
}
