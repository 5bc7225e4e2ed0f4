package contract

import (
	"fmt"
	"maps"
	"math"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/slipcheck/slipcheck/schema"
)

// Default values for configuration.
const (
	DefaultRelativeTolerance          = 0.05
	DefaultAbsoluteTolerance          = 1.0 // cm
	DefaultSmallDisplacementThreshold = 0.5 // cm
	DefaultSmallDisplacementAbsolute  = 0.05
	DefaultSmallDisplacementRelative  = "inf"
	DefaultAdditionalRelative         = 0.05
	DefaultPrecision                  = 3
	MaxPrecision                      = 6
)

// DefaultWorkers is the default number of concurrent workers to use.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// MethodToleranceRaw holds per-method tolerance overrides from the config
// file. Use float64 pointers so absent fields fall back to defaults.
type MethodToleranceRaw struct {
	Relative *float64 `mapstructure:"relative"`
	Absolute *float64 `mapstructure:"absolute"`
}

// ToleranceRawInput holds the [tolerance] section of the config file.
// small_displacement_relative is a string because the original configuration
// format allows "inf" to disable the relative check below the threshold.
type ToleranceRawInput struct {
	DefaultRelative            *float64            `mapstructure:"default_relative"`
	DefaultAbsolute            *float64            `mapstructure:"default_absolute"`
	SmallDisplacementThreshold *float64            `mapstructure:"small_displacement_threshold"`
	SmallDisplacementAbsolute  *float64            `mapstructure:"small_displacement_absolute"`
	SmallDisplacementRelative  *string             `mapstructure:"small_displacement_relative"`
	Rigid                      *MethodToleranceRaw `mapstructure:"rigid"`
	Decoupled                  *MethodToleranceRaw `mapstructure:"decoupled"`
	Coupled                    *MethodToleranceRaw `mapstructure:"coupled"`
	KmaxRelative               *float64            `mapstructure:"kmax_relative"`
	VsFinalRelative            *float64            `mapstructure:"vs_final_relative"`
	DampingFinalRelative       *float64            `mapstructure:"damping_final_relative"`
}

// ThresholdsRawInput holds the [thresholds] section of the config file.
type ThresholdsRawInput struct {
	PercentPassing *float64 `mapstructure:"percent_passing_individual_tests"`
	SlopeMin       *float64 `mapstructure:"lin_regression_slope_min"`
	SlopeMax       *float64 `mapstructure:"lin_regression_slope_max"`
	InterceptMin   *float64 `mapstructure:"lin_regression_intercept_min"`
	InterceptMax   *float64 `mapstructure:"lin_regression_intercept_max"`
	RSquaredMin    *float64 `mapstructure:"lin_regression_r_squared_min"`
}

// MethodTolerance holds validated per-method overrides; nil fields fall back
// to the defaults.
type MethodTolerance struct {
	Relative *float64
	Absolute *float64
}

// ToleranceConfig is the validated tolerance policy input. Resolution itself
// lives in core; this struct only guarantees usable values.
type ToleranceConfig struct {
	DefaultRelative            float64
	DefaultAbsolute            float64 // cm
	SmallDisplacementThreshold float64 // cm
	SmallDisplacementAbsolute  float64 // cm
	SmallDisplacementRelative  float64 // +Inf disables the relative check below the threshold
	Methods                    map[schema.Method]MethodTolerance
	Additional                 map[schema.AdditionalOutput]float64
}

// Config holds the runtime configuration for verification.
// This struct remains the "final, validated" config.
type Config struct {
	ReferencePath string // Reference results file
	CandidatePath string // Candidate results file; empty means discover in ResultsDir
	ResultsDir    string // Directory holding versioned results files
	EngineBin     string // Candidate engine binary for run commands

	Workers    int
	Precision  int
	Output     schema.OutputMode
	OutputFile string
	Width      int // Terminal width override (0 = auto-detect)

	IncludePassed bool // Report lists passing tests too
	Detailed      bool // Report echoes per-test tolerance detail

	ForceRecompute bool // Ignore cache hits during engine runs
	MaxAnalyses    int  // 0 means all records
	Prune          bool // Delete cache entries after collecting them

	Methods     []schema.Method // Record filters; empty means all
	Earthquakes []string
	AnalysisIDs []string

	Tolerances ToleranceConfig
	Thresholds schema.GroupThresholds

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext

	RunBackend   schema.DatabaseBackend
	RunDBConnect string // Please use env var as this is plaintext

	UseColors bool // Enable colored labels in table output
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	ReferencePathStr string

	// --- Fields from rootCmd.PersistentFlags() ---
	Candidate      string `mapstructure:"candidate"`
	ResultsDir     string `mapstructure:"results-dir"`
	EngineBin      string `mapstructure:"engine-bin"`
	Workers        int    `mapstructure:"workers"`
	Precision      int    `mapstructure:"precision"`
	Output         string `mapstructure:"output"`
	OutputFile     string `mapstructure:"output-file"`
	Width          int    `mapstructure:"width"`
	Color          string `mapstructure:"color"`
	Methods        string `mapstructure:"methods"`
	Earthquakes    string `mapstructure:"earthquakes"`
	AnalysisIDs    string `mapstructure:"analysis-ids"`
	CacheBackend   string `mapstructure:"cache-backend"`
	CacheDBConnect string `mapstructure:"cache-db-connect"`
	RunBackend     string `mapstructure:"run-backend"`
	RunDBConnect   string `mapstructure:"run-db-connect"`

	// --- Fields from verify/report flags ---
	IncludePassed bool `mapstructure:"include-passed"`
	Detailed      bool `mapstructure:"detailed"`

	// --- Fields from run flags ---
	ForceRecompute bool   `mapstructure:"force-recompute"`
	MaxAnalyses    string `mapstructure:"max-analyses"`
	Prune          bool   `mapstructure:"prune"`

	// --- Tolerance settings from config file ---
	Tolerance ToleranceRawInput `mapstructure:"tolerance"`

	// --- Acceptance thresholds from config file ---
	Thresholds ThresholdsRawInput `mapstructure:"thresholds"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	if c.Methods != nil {
		clone.Methods = make([]schema.Method, len(c.Methods))
		copy(clone.Methods, c.Methods)
	}
	if c.Earthquakes != nil {
		clone.Earthquakes = make([]string, len(c.Earthquakes))
		copy(clone.Earthquakes, c.Earthquakes)
	}
	if c.AnalysisIDs != nil {
		clone.AnalysisIDs = make([]string, len(c.AnalysisIDs))
		copy(clone.AnalysisIDs, c.AnalysisIDs)
	}
	if c.Tolerances.Methods != nil {
		clone.Tolerances.Methods = make(map[schema.Method]MethodTolerance)
		maps.Copy(clone.Tolerances.Methods, c.Tolerances.Methods)
	}
	if c.Tolerances.Additional != nil {
		clone.Tolerances.Additional = make(map[schema.AdditionalOutput]float64)
		maps.Copy(clone.Tolerances.Additional, c.Tolerances.Additional)
	}
	return &clone
}

// ProcessAndValidate performs all complex parsing and validation on the raw
// inputs and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	// All validation functions read from 'input' and populate 'cfg'.
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processFilters(cfg, input); err != nil {
		return err
	}
	if err := processRunLimits(cfg, input); err != nil {
		return err
	}
	if err := processTolerances(cfg, input); err != nil {
		return err
	}
	if err := processThresholds(cfg, input); err != nil {
		return err
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("cache-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("cache-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateBackendConfigs validates cache and run store backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	// --- Cache Backend Validation ---
	cfg.CacheBackend = schema.DatabaseBackend(strings.ToLower(input.CacheBackend))
	if _, ok := schema.ValidDatabaseBackends[cfg.CacheBackend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, none", input.CacheBackend)
	}
	cfg.CacheDBConnect = input.CacheDBConnect
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return err
	}

	// --- Run Store Backend Validation ---
	cfg.RunBackend = schema.DatabaseBackend(strings.ToLower(input.RunBackend))
	if cfg.RunBackend != "" {
		if _, ok := schema.ValidDatabaseBackends[cfg.RunBackend]; !ok {
			return fmt.Errorf("invalid run backend '%s'. must be sqlite, mysql, postgresql, none", input.RunBackend)
		}
		cfg.RunDBConnect = input.RunDBConnect
		if err := ValidateDatabaseConnectionString(cfg.RunBackend, cfg.RunDBConnect); err != nil {
			return err
		}

		// Validate that cache and run tracking use different databases
		if cfg.CacheBackend == cfg.RunBackend && cfg.CacheBackend != schema.NoneBackend {
			// For SQLite, resolve to actual file paths to catch default path conflicts
			if cfg.CacheBackend == schema.SQLiteBackend {
				cacheDBPath := cfg.CacheDBConnect
				if cacheDBPath == "" {
					cacheDBPath = GetCacheDBFilePath()
				}
				runDBPath := cfg.RunDBConnect
				if runDBPath == "" {
					runDBPath = GetRunDBFilePath()
				}
				if cacheDBPath == runDBPath {
					return fmt.Errorf("cache and run storage must use different SQLite database files. Both resolve to %q", cacheDBPath)
				}
			}
		}
	}

	return nil
}

// validateSimpleInputs processes and validates all scalar fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	// --- 0. Transfer simple non-validated fields from input -> cfg ---
	cfg.ReferencePath = strings.TrimSpace(input.ReferencePathStr)
	cfg.CandidatePath = strings.TrimSpace(input.Candidate)
	cfg.ResultsDir = strings.TrimSpace(input.ResultsDir)
	cfg.EngineBin = strings.TrimSpace(input.EngineBin)
	cfg.OutputFile = input.OutputFile
	cfg.IncludePassed = input.IncludePassed
	cfg.Detailed = input.Detailed
	cfg.ForceRecompute = input.ForceRecompute
	cfg.Prune = input.Prune
	cfg.Width = input.Width

	// Parse color flag; empty means colors on
	cfg.UseColors = true
	if input.Color != "" {
		colors, err := ParseBoolString(input.Color)
		if err != nil {
			return fmt.Errorf("invalid --color value: %w", err)
		}
		cfg.UseColors = colors
	}

	// --- 1. Workers Validation ---
	if input.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0 (received %d)", input.Workers)
	}
	cfg.Workers = input.Workers

	// --- 2. Precision and Output Validation ---
	if input.Precision < 1 || input.Precision > MaxPrecision {
		return fmt.Errorf("precision must be between 1 and %d (received %d)", MaxPrecision, input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, markdown, parquet", cfg.Output)
	}

	// --- 3. Backend Validation ---
	return validateBackendConfigs(cfg, input)
}

// processFilters parses the record selection flags.
func processFilters(cfg *Config, input *ConfigRawInput) error {
	cfg.Methods = nil
	if input.Methods != "" {
		for part := range strings.SplitSeq(input.Methods, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			m, ok := schema.ParseMethod(part)
			if !ok {
				return fmt.Errorf("invalid method '%s'. must be rigid, decoupled, coupled", part)
			}
			cfg.Methods = append(cfg.Methods, m)
		}
	}

	cfg.Earthquakes = splitCommaList(input.Earthquakes)
	cfg.AnalysisIDs = splitCommaList(input.AnalysisIDs)
	return nil
}

// processRunLimits parses the run sizing flags.
func processRunLimits(cfg *Config, input *ConfigRawInput) error {
	maxStr := strings.TrimSpace(strings.ToLower(input.MaxAnalyses))
	if maxStr == "" || maxStr == "all" {
		cfg.MaxAnalyses = 0
		return nil
	}

	n, err := strconv.Atoi(maxStr)
	if err != nil || n <= 0 {
		return fmt.Errorf("invalid --max-analyses value '%s'. must be 'all' or a positive integer", input.MaxAnalyses)
	}
	cfg.MaxAnalyses = n
	return nil
}

// processTolerances builds the validated tolerance policy inputs from the raw
// config file section. Every field has a default, so an empty section yields
// a complete policy.
func processTolerances(cfg *Config, input *ConfigRawInput) error {
	tol := ToleranceConfig{
		DefaultRelative:            DefaultRelativeTolerance,
		DefaultAbsolute:            DefaultAbsoluteTolerance,
		SmallDisplacementThreshold: DefaultSmallDisplacementThreshold,
		SmallDisplacementAbsolute:  DefaultSmallDisplacementAbsolute,
		SmallDisplacementRelative:  math.Inf(1),
		Methods:                    make(map[schema.Method]MethodTolerance),
		Additional:                 make(map[schema.AdditionalOutput]float64),
	}

	raw := input.Tolerance
	if raw.DefaultRelative != nil {
		tol.DefaultRelative = *raw.DefaultRelative
	}
	if raw.DefaultAbsolute != nil {
		tol.DefaultAbsolute = *raw.DefaultAbsolute
	}
	if raw.SmallDisplacementThreshold != nil {
		tol.SmallDisplacementThreshold = *raw.SmallDisplacementThreshold
	}
	if raw.SmallDisplacementAbsolute != nil {
		tol.SmallDisplacementAbsolute = *raw.SmallDisplacementAbsolute
	}
	if raw.SmallDisplacementRelative != nil {
		v, err := ParseToleranceValue(*raw.SmallDisplacementRelative)
		if err != nil {
			return fmt.Errorf("invalid small_displacement_relative: %w", err)
		}
		tol.SmallDisplacementRelative = v
	}

	methodRaw := map[schema.Method]*MethodToleranceRaw{
		schema.RigidMethod:     raw.Rigid,
		schema.DecoupledMethod: raw.Decoupled,
		schema.CoupledMethod:   raw.Coupled,
	}
	for _, m := range schema.AllMethods {
		r := methodRaw[m]
		if r == nil {
			continue
		}
		tol.Methods[m] = MethodTolerance{Relative: r.Relative, Absolute: r.Absolute}
	}

	tol.Additional[schema.KmaxOutput] = DefaultAdditionalRelative
	tol.Additional[schema.VsFinalOutput] = DefaultAdditionalRelative
	tol.Additional[schema.DampingFinalOutput] = DefaultAdditionalRelative
	if raw.KmaxRelative != nil {
		tol.Additional[schema.KmaxOutput] = *raw.KmaxRelative
	}
	if raw.VsFinalRelative != nil {
		tol.Additional[schema.VsFinalOutput] = *raw.VsFinalRelative
	}
	if raw.DampingFinalRelative != nil {
		tol.Additional[schema.DampingFinalOutput] = *raw.DampingFinalRelative
	}

	if err := validateToleranceConfig(&tol); err != nil {
		return err
	}
	cfg.Tolerances = tol
	return nil
}

// validateToleranceConfig rejects values the comparator cannot use.
func validateToleranceConfig(tol *ToleranceConfig) error {
	if tol.DefaultRelative < 0 {
		return fmt.Errorf("default_relative must be non-negative (received %g)", tol.DefaultRelative)
	}
	if tol.DefaultAbsolute < 0 {
		return fmt.Errorf("default_absolute must be non-negative (received %g)", tol.DefaultAbsolute)
	}
	if tol.SmallDisplacementThreshold < 0 {
		return fmt.Errorf("small_displacement_threshold must be non-negative (received %g)", tol.SmallDisplacementThreshold)
	}
	if tol.SmallDisplacementAbsolute < 0 {
		return fmt.Errorf("small_displacement_absolute must be non-negative (received %g)", tol.SmallDisplacementAbsolute)
	}
	if tol.SmallDisplacementRelative < 0 {
		return fmt.Errorf("small_displacement_relative must be non-negative")
	}
	for m, mt := range tol.Methods {
		if mt.Relative != nil && *mt.Relative < 0 {
			return fmt.Errorf("tolerance.%s.relative must be non-negative (received %g)", m, *mt.Relative)
		}
		if mt.Absolute != nil && *mt.Absolute < 0 {
			return fmt.Errorf("tolerance.%s.absolute must be non-negative (received %g)", m, *mt.Absolute)
		}
	}
	for out, rel := range tol.Additional {
		if rel < 0 {
			return fmt.Errorf("tolerance.%s_relative must be non-negative (received %g)", out, rel)
		}
	}
	return nil
}

// processThresholds builds the group acceptance thresholds from the raw
// config file section, starting from the defaults.
func processThresholds(cfg *Config, input *ConfigRawInput) error {
	th := schema.GetDefaultGroupThresholds()

	raw := input.Thresholds
	if raw.PercentPassing != nil {
		th.PercentPassingMin = *raw.PercentPassing
	}
	if raw.SlopeMin != nil {
		th.SlopeMin = *raw.SlopeMin
	}
	if raw.SlopeMax != nil {
		th.SlopeMax = *raw.SlopeMax
	}
	if raw.InterceptMin != nil {
		th.InterceptMin = *raw.InterceptMin
	}
	if raw.InterceptMax != nil {
		th.InterceptMax = *raw.InterceptMax
	}
	if raw.RSquaredMin != nil {
		th.RSquaredMin = *raw.RSquaredMin
	}

	// Validate thresholds
	if th.PercentPassingMin < 0 || th.PercentPassingMin > 100 {
		return fmt.Errorf("percent_passing_individual_tests must be between 0 and 100 (received %.2f)", th.PercentPassingMin)
	}
	if th.SlopeMin > th.SlopeMax {
		return fmt.Errorf("lin_regression_slope_min (%.4f) cannot exceed lin_regression_slope_max (%.4f)", th.SlopeMin, th.SlopeMax)
	}
	if th.InterceptMin > th.InterceptMax {
		return fmt.Errorf("lin_regression_intercept_min (%.4f) cannot exceed lin_regression_intercept_max (%.4f)", th.InterceptMin, th.InterceptMax)
	}
	if th.RSquaredMin < 0 || th.RSquaredMin > 1 {
		return fmt.Errorf("lin_regression_r_squared_min must be between 0 and 1 (received %.4f)", th.RSquaredMin)
	}

	cfg.Thresholds = th
	return nil
}

// ProcessProfilingConfig handles the profiling flag and sets up profiling configuration.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
	return nil
}

// ParseToleranceValue parses a tolerance string that is either a number or
// "inf" for an unbounded check.
func ParseToleranceValue(s string) (float64, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "inf" || s == "+inf" || s == "infinity" {
		return math.Inf(1), nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) {
		return 0, fmt.Errorf("expected a number or 'inf', got %q", s)
	}
	return v, nil
}

// splitCommaList splits a comma-separated flag value, dropping empty parts.
func splitCommaList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for part := range strings.SplitSeq(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
