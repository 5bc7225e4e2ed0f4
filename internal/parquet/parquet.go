// Package parquet provides data structures and functions for exporting
// slipcheck verification data to Parquet files using
// github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/slipcheck/slipcheck/schema"
)

// Comparison represents one reference/candidate displacement comparison.
type Comparison struct {
	// AnalysisID is the source record identifier
	AnalysisID string `parquet:"analysis_id,snappy"`

	// Name is the earthquake and station label
	Name string `parquet:"name,snappy"`

	// Method is the sliding-block analysis method
	Method string `parquet:"method,snappy"`

	// Direction is the ground motion polarity (normal or inverse)
	Direction string `parquet:"direction,snappy"`

	// ReferenceCm is the legacy displacement in centimeters
	ReferenceCm float64 `parquet:"reference_cm,snappy"`

	// CandidateCm is the candidate displacement in centimeters
	CandidateCm float64 `parquet:"candidate_cm,snappy"`

	// AbsoluteError is |candidate - reference| in centimeters
	AbsoluteError float64 `parquet:"absolute_error,snappy"`

	// RelativeError is AbsoluteError / |reference|; +Inf when reference is 0
	RelativeError float64 `parquet:"relative_error,snappy"`

	// PercentDifference is the signed percent difference; ±Inf when reference is 0
	PercentDifference float64 `parquet:"percent_difference,snappy"`

	// ToleranceRelative is the relative bound applied to this comparison
	ToleranceRelative float64 `parquet:"tolerance_relative,snappy"`

	// ToleranceAbsolute is the absolute bound applied to this comparison in centimeters
	ToleranceAbsolute float64 `parquet:"tolerance_absolute,snappy"`

	// SmallDisplacement marks comparisons judged by the absolute-only override
	SmallDisplacement bool `parquet:"small_displacement,snappy"`

	// Passed is the individual verdict
	Passed bool `parquet:"passed,snappy"`
}

// GroupStat represents the statistical verdict for one method/direction group.
type GroupStat struct {
	// Method is the sliding-block analysis method
	Method string `parquet:"method,snappy"`

	// Direction is the group polarity (normal, inverse, or All)
	Direction string `parquet:"direction,snappy"`

	// SampleCount is the number of comparisons in the group
	SampleCount int32 `parquet:"sample_count,snappy"`

	// PassingCount is the number of passing comparisons
	PassingCount int32 `parquet:"passing_count,snappy"`

	// FailingCount is the number of failing comparisons
	FailingCount int32 `parquet:"failing_count,snappy"`

	// PercentPassing is the individual pass rate in percent
	PercentPassing float64 `parquet:"percent_passing,snappy"`

	// Slope is the OLS slope of candidate on reference
	Slope float64 `parquet:"slope,snappy"`

	// Intercept is the OLS intercept in centimeters
	Intercept float64 `parquet:"intercept,snappy"`

	// RSquared is the coefficient of determination
	RSquared float64 `parquet:"r_squared,snappy"`

	// MeanRelativeError is the mean over finite relative errors only
	MeanRelativeError float64 `parquet:"mean_relative_error,snappy"`

	// StdRelativeError is the population std over finite relative errors
	StdRelativeError float64 `parquet:"std_relative_error,snappy"`

	// MaxAbsoluteError is the largest absolute error in centimeters
	MaxAbsoluteError float64 `parquet:"max_absolute_error,snappy"`

	// FailedChecks lists the acceptance checks that did not hold,
	// comma-separated (nullable when the group passed)
	FailedChecks *string `parquet:"failed_checks,optional,snappy"`

	// Passed is the group verdict
	Passed bool `parquet:"passed,snappy"`
}

// EngineRun represents one stored engine run result row.
// This struct maps to the slipcheck_run_results database table.
type EngineRun struct {
	// RunID references the parent run
	RunID int64 `parquet:"run_id,snappy"`

	// AnalysisID is the source record identifier
	AnalysisID string `parquet:"analysis_id,snappy"`

	// CacheKey is the run cache key for this record and polarity
	CacheKey string `parquet:"cache_key,snappy"`

	// Method is the sliding-block analysis method
	Method string `parquet:"method,snappy"`

	// Direction is the ground motion polarity
	Direction string `parquet:"direction,snappy"`

	// DisplacementCm is the computed displacement in centimeters
	DisplacementCm float64 `parquet:"displacement_cm,snappy"`

	// Kmax is the peak seismic coefficient (nullable)
	Kmax *float64 `parquet:"kmax,optional,snappy"`

	// VsFinalMps is the final shear wave velocity in m/s (nullable)
	VsFinalMps *float64 `parquet:"vs_final_mps,optional,snappy"`

	// DampingFinal is the final damping ratio (nullable)
	DampingFinal *float64 `parquet:"damping_final,optional,snappy"`

	// EngineVersion is the engine version that produced this row
	EngineVersion string `parquet:"engine_version,snappy"`

	// RunTime is when this row was produced (stored as TIMESTAMP with nanosecond precision)
	RunTime time.Time `parquet:"run_time,snappy"`
}

// WriteComparisonsParquet writes a slice of Comparison structs to a Parquet file.
func WriteComparisonsParquet(data []Comparison, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// The schema is derived from the Comparison struct tags
	writer := parquet.NewGenericWriter[Comparison](file)
	defer func() { _ = writer.Close() }()

	if _, err := writer.Write(data); err != nil {
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}

	return nil
}

// WriteGroupStatsParquet writes a slice of GroupStat structs to a Parquet file.
func WriteGroupStatsParquet(data []GroupStat, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// The schema is derived from the GroupStat struct tags
	writer := parquet.NewGenericWriter[GroupStat](file)
	defer func() { _ = writer.Close() }()

	if _, err := writer.Write(data); err != nil {
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}

	return nil
}

// WriteEngineRunsParquet writes a slice of EngineRun structs to a Parquet file.
func WriteEngineRunsParquet(data []EngineRun, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// The schema is derived from the EngineRun struct tags
	writer := parquet.NewGenericWriter[EngineRun](file)
	defer func() { _ = writer.Close() }()

	if _, err := writer.Write(data); err != nil {
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}

	return nil
}

// ConvertComparisonResults converts schema.ComparisonResult to Comparison for Parquet export.
func ConvertComparisonResults(results []schema.ComparisonResult) []Comparison {
	rows := make([]Comparison, len(results))
	for i, r := range results {
		rows[i] = Comparison{
			AnalysisID:        r.AnalysisID,
			Name:              r.Name,
			Method:            string(r.Method),
			Direction:         string(r.Direction),
			ReferenceCm:       r.ReferenceValue,
			CandidateCm:       r.CandidateValue,
			AbsoluteError:     r.AbsoluteError,
			RelativeError:     r.RelativeError,
			PercentDifference: r.PercentDifference,
			ToleranceRelative: r.Tolerance.Relative,
			ToleranceAbsolute: r.Tolerance.Absolute,
			SmallDisplacement: r.SmallDisplacement,
			Passed:            r.Passed,
		}
	}
	return rows
}

// ConvertGroupResults converts schema.GroupResult to GroupStat for Parquet export.
func ConvertGroupResults(results []schema.GroupResult) []GroupStat {
	rows := make([]GroupStat, len(results))
	for i, g := range results {
		var failed *string
		if len(g.FailedChecks) > 0 {
			names := make([]string, len(g.FailedChecks))
			for j, c := range g.FailedChecks {
				names[j] = string(c)
			}
			joined := strings.Join(names, ",")
			failed = &joined
		}
		rows[i] = GroupStat{
			Method:            string(g.Method),
			Direction:         string(g.Direction),
			SampleCount:       int32(g.SampleCount),
			PassingCount:      int32(g.PassingCount),
			FailingCount:      int32(g.FailingCount),
			PercentPassing:    g.PercentPassing,
			Slope:             g.Slope,
			Intercept:         g.Intercept,
			RSquared:          g.RSquared,
			MeanRelativeError: g.MeanRelativeError,
			StdRelativeError:  g.StdRelativeError,
			MaxAbsoluteError:  g.MaxAbsoluteError,
			FailedChecks:      failed,
			Passed:            g.Passed,
		}
	}
	return rows
}

// ConvertEngineRunRecords converts schema.RunRecord to EngineRun for Parquet export.
func ConvertEngineRunRecords(records []schema.RunRecord) []EngineRun {
	rows := make([]EngineRun, len(records))
	for i, rec := range records {
		rows[i] = EngineRun{
			RunID:          rec.RunID,
			AnalysisID:     rec.AnalysisID,
			CacheKey:       rec.CacheKey,
			Method:         string(rec.Method),
			Direction:      string(rec.Direction),
			DisplacementCm: rec.DisplacementCm,
			Kmax:           rec.Kmax,
			VsFinalMps:     rec.VsFinalMps,
			DampingFinal:   rec.DampingFinal,
			EngineVersion:  rec.EngineVersion,
			RunTime:        rec.RunTime,
		}
	}
	return rows
}

// MockFetchComparisons generates sample Comparison data for demonstration.
func MockFetchComparisons() []Comparison {
	return []Comparison{
		{
			AnalysisID:        "northridge-pacoima",
			Name:              "Northridge 1994 - Pacoima Dam",
			Method:            string(schema.RigidMethod),
			Direction:         string(schema.NormalDirection),
			ReferenceCm:       12.48,
			CandidateCm:       12.51,
			AbsoluteError:     0.03,
			RelativeError:     0.0024,
			PercentDifference: 0.24,
			ToleranceRelative: 0.05,
			ToleranceAbsolute: 1.0,
			Passed:            true,
		},
		{
			AnalysisID:        "loma-prieta-corralitos",
			Name:              "Loma Prieta 1989 - Corralitos",
			Method:            string(schema.DecoupledMethod),
			Direction:         string(schema.InverseDirection),
			ReferenceCm:       0.32,
			CandidateCm:       0.41,
			AbsoluteError:     0.09,
			RelativeError:     0.28125,
			PercentDifference: 28.125,
			ToleranceRelative: 0.05,
			ToleranceAbsolute: 0.05,
			SmallDisplacement: true,
			Passed:            false,
		},
	}
}

// MockFetchEngineRuns generates sample EngineRun data for demonstration.
func MockFetchEngineRuns() []EngineRun {
	now := time.Now()
	kmax := 0.38
	vsFinal := 412.6

	return []EngineRun{
		{
			RunID:          1,
			AnalysisID:     "northridge-pacoima",
			CacheKey:       "a1b2c3d4e5f60718",
			Method:         string(schema.RigidMethod),
			Direction:      string(schema.NormalDirection),
			DisplacementCm: 12.51,
			Kmax:           &kmax,
			EngineVersion:  "1.4.0",
			RunTime:        now.Add(-1 * time.Hour),
		},
		{
			RunID:          1,
			AnalysisID:     "kobe-takatori",
			CacheKey:       "0918f7e6d5c4b3a2",
			Method:         string(schema.CoupledMethod),
			Direction:      string(schema.InverseDirection),
			DisplacementCm: 44.07,
			VsFinalMps:     &vsFinal,
			EngineVersion:  "1.4.0",
			RunTime:        now.Add(-50 * time.Minute),
			// Kmax and DampingFinal nil to demonstrate nullable fields
		},
	}
}
