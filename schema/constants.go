package schema

import "strings"

// Custom string types for type safety.
type (
	// Method represents the sliding-block analysis method of a record.
	Method string

	// Direction represents the ground motion polarity of a comparison.
	Direction string

	// GroupCheck represents one of the named group acceptance checks.
	GroupCheck string

	// AdditionalOutput represents a secondary engine output with its own tolerance.
	AdditionalOutput string

	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for caching.
	DatabaseBackend string
)

// All analysis methods supported.
const (
	RigidMethod     Method = "rigid"
	DecoupledMethod Method = "decoupled"
	CoupledMethod   Method = "coupled"
)

// All comparison directions supported. Individual comparisons always carry
// normal or inverse; AllDirections is an aggregation selector that matches
// rows of both polarities.
const (
	NormalDirection  Direction = "normal"
	InverseDirection Direction = "inverse"
	AllDirections    Direction = "All"
)

// Named group acceptance checks, in report order.
const (
	PassRateCheck  GroupCheck = "pass_rate"
	SlopeCheck     GroupCheck = "slope"
	InterceptCheck GroupCheck = "intercept"
	RSquaredCheck  GroupCheck = "r_squared"
)

// Secondary engine outputs verified with relative-only tolerances.
const (
	KmaxOutput         AdditionalOutput = "kmax"
	VsFinalOutput      AdditionalOutput = "vs_final"
	DampingFinalOutput AdditionalOutput = "damping_final"
)

// All output modes supported.
const (
	CSVOut      OutputMode = "csv"
	TextOut     OutputMode = "text" // default
	JSONOut     OutputMode = "json"
	MarkdownOut OutputMode = "markdown"
	ParquetOut  OutputMode = "parquet"
)

// All cache backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// AllMethods lists analysis methods in canonical report order.
var AllMethods = []Method{RigidMethod, DecoupledMethod, CoupledMethod}

// AllComparisonDirections lists the polarities individual comparisons carry.
var AllComparisonDirections = []Direction{NormalDirection, InverseDirection}

// AllGroupDirections lists the directions used for group aggregation.
var AllGroupDirections = []Direction{NormalDirection, InverseDirection, AllDirections}

// AllGroupChecks lists group checks in report order.
var AllGroupChecks = []GroupCheck{PassRateCheck, SlopeCheck, InterceptCheck, RSquaredCheck}

// AllAdditionalOutputs lists secondary outputs in report order.
var AllAdditionalOutputs = []AdditionalOutput{KmaxOutput, VsFinalOutput, DampingFinalOutput}

// ValidMethods lists all valid analysis methods.
var ValidMethods = map[Method]struct{}{
	RigidMethod:     {},
	DecoupledMethod: {},
	CoupledMethod:   {},
}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:      {},
	TextOut:     {},
	JSONOut:     {},
	MarkdownOut: {},
	ParquetOut:  {},
}

// ValidDatabaseBackends lists all valid cache backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// ParseMethod canonicalizes a method string from config or CLI input.
func ParseMethod(s string) (Method, bool) {
	m := Method(strings.ToLower(strings.TrimSpace(s)))
	_, ok := ValidMethods[m]
	return m, ok
}

// ParseDirection canonicalizes a direction string. Any casing of "all" maps
// to the aggregation selector.
func ParseDirection(s string) (Direction, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "normal":
		return NormalDirection, true
	case "inverse":
		return InverseDirection, true
	case "all":
		return AllDirections, true
	default:
		return "", false
	}
}

// Matches reports whether a row direction is selected by a group direction.
func (d Direction) Matches(row Direction) bool {
	if d == AllDirections {
		return row == NormalDirection || row == InverseDirection
	}
	return d == row
}

// GetDefaultGroupThresholds returns the acceptance thresholds used when none
// are configured.
func GetDefaultGroupThresholds() GroupThresholds {
	return GroupThresholds{
		PercentPassingMin: 95.0,
		SlopeMin:          0.99,
		SlopeMax:          1.01,
		InterceptMin:      -0.1,
		InterceptMax:      0.1,
		RSquaredMin:       0.99,
	}
}
