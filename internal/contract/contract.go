// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/slipcheck/slipcheck/schema"
)

// EngineInput is one request to the candidate engine: a single record and
// polarity, expressed in the engine's own units.
type EngineInput struct {
	AnalysisID       string   `json:"analysis_id"`
	Method           string   `json:"method"`
	GroundMotionFile string   `json:"ground_motion_file"`
	TargetPGAg       float64  `json:"target_pga_g"`
	KyG              float64  `json:"ky_g"`
	Inverse          bool     `json:"inverse"`
	HeightM          *float64 `json:"height_m,omitempty"`
	VsSlopeMps       *float64 `json:"vs_slope_mps,omitempty"`
	VsBaseMps        *float64 `json:"vs_base_mps,omitempty"`
	DampingRatio     *float64 `json:"damping_ratio,omitempty"`
	StrainRatio      *float64 `json:"strain_ratio,omitempty"` // Reference strain divided by 100
	SoilModel        string   `json:"soil_model,omitempty"`   // linear_elastic or equivalent_linear
}

// EngineOutput is the engine's answer for one input. Displacement is in
// meters, the engine's native unit; callers convert to cm.
type EngineOutput struct {
	DisplacementM float64  `json:"displacement_m"`
	Kmax          *float64 `json:"kmax,omitempty"`
	VsFinalMps    *float64 `json:"vs_final_mps,omitempty"`
	DampingFinal  *float64 `json:"damping_final,omitempty"`
}

// Engine defines the operations needed from the candidate analysis engine.
// This allows the run pipeline to be tested without a real engine binary.
type Engine interface {
	// --- Identity ---

	// Version returns the engine's version string, used in cache keys and
	// candidate result file names.
	Version(ctx context.Context) (string, error)

	// --- Execution ---

	// Run performs a single sliding-block analysis.
	Run(ctx context.Context, input *EngineInput) (*EngineOutput, error)
}

// CacheManager defines the interface for managing cache stores.
// This allows the cache layer to be mocked for testing.
type CacheManager interface {
	GetRunCacheStore() CacheStore
	GetRunStore() RunStore
}

// CacheStore defines the interface for cache data storage.
// This allows mocking the store for testing.
type CacheStore interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	Delete(key string) error
	GetStatus() (schema.CacheStatus, error)
	Close() error
}

// RunStore defines the interface for tracking completed engine runs.
type RunStore interface {
	// BeginRun creates a new run and returns its unique ID
	BeginRun(startTime time.Time, engineVersion string, configParams map[string]any) (int64, error)

	// EndRun updates the run with completion data
	EndRun(runID int64, endTime time.Time, totalRecords int) error

	// RecordResult stores one completed record/polarity result
	RecordResult(runID int64, rec schema.RunRecord) error

	// ListResults returns stored results for a run, newest run when runID is 0
	ListResults(runID int64) ([]schema.RunRecord, error)

	// GetStatus returns status information about the run store
	GetStatus() (schema.RunStatus, error)

	// Close closes the underlying connection
	Close() error
}
