package contract

import (
	"math"
	"testing"

	"github.com/slipcheck/slipcheck/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(v float64) *float64 { return &v }

func strPtr(s string) *string { return &s }

func TestProcessAndValidate(t *testing.T) {
	tests := []struct {
		name        string
		input       *ConfigRawInput
		expectError bool
		check       func(*testing.T, *Config) // Optional extra assertions on success
	}{
		{
			name: "valid minimal config",
			input: &ConfigRawInput{
				ReferencePathStr: "results_slammer.json.gz",
				Workers:          4,
				Precision:        3,
				Output:           "text",
			},
			expectError: false,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "results_slammer.json.gz", cfg.ReferencePath)
				assert.Equal(t, DefaultRelativeTolerance, cfg.Tolerances.DefaultRelative)
				assert.Equal(t, DefaultAbsoluteTolerance, cfg.Tolerances.DefaultAbsolute)
				assert.True(t, math.IsInf(cfg.Tolerances.SmallDisplacementRelative, 1))
				assert.Equal(t, schema.GetDefaultGroupThresholds(), cfg.Thresholds)
				assert.True(t, cfg.UseColors)
			},
		},
		{
			name: "invalid workers (zero)",
			input: &ConfigRawInput{
				ReferencePathStr: "ref.json.gz",
				Workers:          0,
				Precision:        3,
				Output:           "text",
			},
			expectError: true,
		},
		{
			name: "invalid workers (negative)",
			input: &ConfigRawInput{
				ReferencePathStr: "ref.json.gz",
				Workers:          -1,
				Precision:        3,
				Output:           "text",
			},
			expectError: true,
		},
		{
			name: "invalid precision (zero)",
			input: &ConfigRawInput{
				ReferencePathStr: "ref.json.gz",
				Workers:          4,
				Precision:        0,
				Output:           "text",
			},
			expectError: true,
		},
		{
			name: "invalid precision (too high)",
			input: &ConfigRawInput{
				ReferencePathStr: "ref.json.gz",
				Workers:          4,
				Precision:        MaxPrecision + 1,
				Output:           "text",
			},
			expectError: true,
		},
		{
			name: "invalid output format",
			input: &ConfigRawInput{
				ReferencePathStr: "ref.json.gz",
				Workers:          4,
				Precision:        3,
				Output:           "invalid_format",
			},
			expectError: true,
		},
		{
			name: "method filters",
			input: &ConfigRawInput{
				ReferencePathStr: "ref.json.gz",
				Workers:          4,
				Precision:        3,
				Output:           "text",
				Methods:          "rigid, Coupled",
				Earthquakes:      "Northridge,Loma Prieta",
			},
			expectError: false,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, []schema.Method{schema.RigidMethod, schema.CoupledMethod}, cfg.Methods)
				assert.Equal(t, []string{"Northridge", "Loma Prieta"}, cfg.Earthquakes)
			},
		},
		{
			name: "invalid method filter",
			input: &ConfigRawInput{
				ReferencePathStr: "ref.json.gz",
				Workers:          4,
				Precision:        3,
				Output:           "text",
				Methods:          "sliding_block",
			},
			expectError: true,
		},
		{
			name: "max analyses all",
			input: &ConfigRawInput{
				ReferencePathStr: "ref.json.gz",
				Workers:          4,
				Precision:        3,
				Output:           "text",
				MaxAnalyses:      "all",
			},
			expectError: false,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 0, cfg.MaxAnalyses)
			},
		},
		{
			name: "max analyses numeric",
			input: &ConfigRawInput{
				ReferencePathStr: "ref.json.gz",
				Workers:          4,
				Precision:        3,
				Output:           "text",
				MaxAnalyses:      "25",
			},
			expectError: false,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 25, cfg.MaxAnalyses)
			},
		},
		{
			name: "invalid max analyses",
			input: &ConfigRawInput{
				ReferencePathStr: "ref.json.gz",
				Workers:          4,
				Precision:        3,
				Output:           "text",
				MaxAnalyses:      "-3",
			},
			expectError: true,
		},
		{
			name: "tolerance overrides",
			input: &ConfigRawInput{
				ReferencePathStr: "ref.json.gz",
				Workers:          4,
				Precision:        3,
				Output:           "text",
				Tolerance: ToleranceRawInput{
					DefaultRelative:           floatPtr(0.02),
					SmallDisplacementRelative: strPtr("0.5"),
					Rigid:                     &MethodToleranceRaw{Relative: floatPtr(0.01)},
					KmaxRelative:              floatPtr(0.1),
				},
			},
			expectError: false,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 0.02, cfg.Tolerances.DefaultRelative)
				assert.Equal(t, 0.5, cfg.Tolerances.SmallDisplacementRelative)
				rigid := cfg.Tolerances.Methods[schema.RigidMethod]
				require.NotNil(t, rigid.Relative)
				assert.Equal(t, 0.01, *rigid.Relative)
				assert.Nil(t, rigid.Absolute)
				assert.Equal(t, 0.1, cfg.Tolerances.Additional[schema.KmaxOutput])
				assert.Equal(t, DefaultAdditionalRelative, cfg.Tolerances.Additional[schema.VsFinalOutput])
			},
		},
		{
			name: "negative tolerance",
			input: &ConfigRawInput{
				ReferencePathStr: "ref.json.gz",
				Workers:          4,
				Precision:        3,
				Output:           "text",
				Tolerance: ToleranceRawInput{
					DefaultAbsolute: floatPtr(-0.5),
				},
			},
			expectError: true,
		},
		{
			name: "unparseable small displacement relative",
			input: &ConfigRawInput{
				ReferencePathStr: "ref.json.gz",
				Workers:          4,
				Precision:        3,
				Output:           "text",
				Tolerance: ToleranceRawInput{
					SmallDisplacementRelative: strPtr("huge"),
				},
			},
			expectError: true,
		},
		{
			name: "threshold overrides",
			input: &ConfigRawInput{
				ReferencePathStr: "ref.json.gz",
				Workers:          4,
				Precision:        3,
				Output:           "text",
				Thresholds: ThresholdsRawInput{
					PercentPassing: floatPtr(90),
					RSquaredMin:    floatPtr(0.95),
				},
			},
			expectError: false,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 90.0, cfg.Thresholds.PercentPassingMin)
				assert.Equal(t, 0.95, cfg.Thresholds.RSquaredMin)
				// Untouched thresholds keep defaults
				assert.Equal(t, 0.99, cfg.Thresholds.SlopeMin)
			},
		},
		{
			name: "crossed slope thresholds",
			input: &ConfigRawInput{
				ReferencePathStr: "ref.json.gz",
				Workers:          4,
				Precision:        3,
				Output:           "text",
				Thresholds: ThresholdsRawInput{
					SlopeMin: floatPtr(1.05),
					SlopeMax: floatPtr(0.95),
				},
			},
			expectError: true,
		},
		{
			name: "invalid cache backend",
			input: &ConfigRawInput{
				ReferencePathStr: "ref.json.gz",
				Workers:          4,
				Precision:        3,
				Output:           "text",
				CacheBackend:     "invalid_backend",
			},
			expectError: true,
		},
		{
			name: "mysql backend without connection string",
			input: &ConfigRawInput{
				ReferencePathStr: "ref.json.gz",
				Workers:          4,
				Precision:        3,
				Output:           "text",
				CacheBackend:     string(schema.MySQLBackend),
			},
			expectError: true,
		},
		{
			name: "mysql backend with connection string",
			input: &ConfigRawInput{
				ReferencePathStr: "ref.json.gz",
				Workers:          4,
				Precision:        3,
				Output:           "text",
				CacheBackend:     string(schema.MySQLBackend),
				CacheDBConnect:   "user:pass@tcp(localhost:3306)/slipcheck",
			},
			expectError: false,
		},
		{
			name: "postgresql backend without connection string",
			input: &ConfigRawInput{
				ReferencePathStr: "ref.json.gz",
				Workers:          4,
				Precision:        3,
				Output:           "text",
				CacheBackend:     string(schema.PostgreSQLBackend),
			},
			expectError: true,
		},
		{
			name: "none backend",
			input: &ConfigRawInput{
				ReferencePathStr: "ref.json.gz",
				Workers:          4,
				Precision:        3,
				Output:           "text",
				CacheBackend:     string(schema.NoneBackend),
			},
			expectError: false,
		},
		{
			name: "cache and run stores share sqlite file",
			input: &ConfigRawInput{
				ReferencePathStr: "ref.json.gz",
				Workers:          4,
				Precision:        3,
				Output:           "text",
				CacheBackend:     string(schema.SQLiteBackend),
				CacheDBConnect:   "/tmp/slipcheck_shared.db",
				RunBackend:       string(schema.SQLiteBackend),
				RunDBConnect:     "/tmp/slipcheck_shared.db",
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Set default cache backend if not specified
			if tt.input.CacheBackend == "" {
				tt.input.CacheBackend = string(schema.SQLiteBackend)
			}

			cfg := &Config{}
			err := ProcessAndValidate(cfg, tt.input)

			if tt.expectError {
				assert.Error(t, err, "contract.ProcessAndValidate should return an error for %s", tt.name)
			} else {
				assert.NoError(t, err, "contract.ProcessAndValidate should not return an error for %s", tt.name)
				assert.Equal(t, tt.input.Workers, cfg.Workers)
				assert.Equal(t, schema.OutputMode(tt.input.Output), cfg.Output)
				if tt.check != nil {
					tt.check(t, cfg)
				}
			}
		})
	}
}

func TestParseToleranceValue(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expected    float64
		expectInf   bool
		expectError bool
	}{
		{"plain number", "0.05", 0.05, false, false},
		{"integer", "2", 2, false, false},
		{"inf lowercase", "inf", 0, true, false},
		{"inf mixed case", "Inf", 0, true, false},
		{"infinity", "infinity", 0, true, false},
		{"signed inf", "+inf", 0, true, false},
		{"padded", "  0.1  ", 0.1, false, false},
		{"garbage", "huge", 0, false, true},
		{"empty", "", 0, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseToleranceValue(tt.input)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.expectInf {
				assert.True(t, math.IsInf(got, 1))
			} else {
				assert.Equal(t, tt.expected, got)
			}
		})
	}
}

func TestConfigClone(t *testing.T) {
	cfg := &Config{
		ReferencePath: "ref.json.gz",
		Methods:       []schema.Method{schema.RigidMethod},
		Earthquakes:   []string{"Northridge"},
		Tolerances: ToleranceConfig{
			Methods: map[schema.Method]MethodTolerance{
				schema.RigidMethod: {Relative: floatPtr(0.01)},
			},
			Additional: map[schema.AdditionalOutput]float64{
				schema.KmaxOutput: 0.05,
			},
		},
	}

	clone := cfg.Clone()
	require.NotSame(t, cfg, clone)
	assert.Equal(t, cfg.ReferencePath, clone.ReferencePath)

	// Mutating the clone must not touch the original
	clone.Methods[0] = schema.CoupledMethod
	clone.Earthquakes[0] = "Kobe"
	clone.Tolerances.Methods[schema.CoupledMethod] = MethodTolerance{}
	clone.Tolerances.Additional[schema.KmaxOutput] = 0.5

	assert.Equal(t, schema.RigidMethod, cfg.Methods[0])
	assert.Equal(t, "Northridge", cfg.Earthquakes[0])
	assert.NotContains(t, cfg.Tolerances.Methods, schema.CoupledMethod)
	assert.Equal(t, 0.05, cfg.Tolerances.Additional[schema.KmaxOutput])
}

func TestValidateDatabaseConnectionString(t *testing.T) {
	tests := []struct {
		name        string
		backend     schema.DatabaseBackend
		connStr     string
		expectError bool
	}{
		{"sqlite empty", schema.SQLiteBackend, "", false},
		{"sqlite path", schema.SQLiteBackend, "/tmp/cache.db", false},
		{"none empty", schema.NoneBackend, "", false},
		{"mysql valid", schema.MySQLBackend, "user:pass@tcp(localhost:3306)/db", false},
		{"mysql missing tcp", schema.MySQLBackend, "user:pass@localhost/db", true},
		{"mysql missing database", schema.MySQLBackend, "user:pass@tcp(localhost:3306)", true},
		{"postgres valid", schema.PostgreSQLBackend, "host=localhost dbname=slipcheck sslmode=disable", false},
		{"postgres missing host", schema.PostgreSQLBackend, "dbname=slipcheck", true},
		{"postgres missing dbname", schema.PostgreSQLBackend, "host=localhost", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDatabaseConnectionString(tt.backend, tt.connStr)
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
