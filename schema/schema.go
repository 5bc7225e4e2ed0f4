// Package schema has data models, enums and validation for all parts of slipcheck.
package schema

// GroundMotion holds the input motion parameters of a reference case.
type GroundMotion struct {
	Earthquake       string  `json:"earthquake"`            // Earthquake event name
	RecordStation    string  `json:"record_station"`        // Recording station identifier
	TargetPGAg       float64 `json:"target_pga_g"`          // Scaling target PGA in g
	GroundMotionFile string  `json:"ground_motion_file"`    // Acceleration time history file
	Description      string  `json:"description,omitempty"` // Optional free-form note
}

// AnalysisSettings selects the method configuration of a record.
type AnalysisSettings struct {
	Method Method `json:"method"`         // rigid, decoupled or coupled
	Mode   string `json:"mode,omitempty"` // linear_elastic or equivalent_linear (decoupled/coupled only)
}

// SiteParams holds slope geometry and material properties.
type SiteParams struct {
	KyG             float64  `json:"ky_g"`                       // Yield acceleration in g
	HeightM         *float64 `json:"height_m,omitempty"`         // Slide mass height in meters
	VsSlopeMps      *float64 `json:"vs_slope_mps,omitempty"`     // Shear wave velocity of the slide mass
	VsBaseMps       *float64 `json:"vs_base_mps,omitempty"`      // Shear wave velocity of the base material
	DampingRatio    *float64 `json:"damping_ratio,omitempty"`    // Initial damping ratio
	ReferenceStrain *float64 `json:"reference_strain,omitempty"` // Reference strain in percent
}

// EngineResults holds the outputs of one engine run pair.
type EngineResults struct {
	NormalDisplacementCm  float64  `json:"normal_displacement_cm"`  // Downslope polarity displacement in cm
	InverseDisplacementCm float64  `json:"inverse_displacement_cm"` // Reversed polarity displacement in cm
	Kmax                  *float64 `json:"kmax,omitempty"`          // Peak seismic coefficient
	VsFinalMps            *float64 `json:"vs_final_mps,omitempty"`  // Degraded shear wave velocity
	DampingFinal          *float64 `json:"damping_final,omitempty"` // Final damping ratio
}

// Displacement returns the displacement in cm for a polarity. AllDirections
// is not a row polarity and maps to the normal value.
func (r *EngineResults) Displacement(d Direction) float64 {
	if d == InverseDirection {
		return r.InverseDisplacementCm
	}
	return r.NormalDisplacementCm
}

// Additional returns the named secondary output, or false when the record
// does not carry it.
func (r *EngineResults) Additional(out AdditionalOutput) (float64, bool) {
	switch out {
	case KmaxOutput:
		if r.Kmax != nil {
			return *r.Kmax, true
		}
	case VsFinalOutput:
		if r.VsFinalMps != nil {
			return *r.VsFinalMps, true
		}
	case DampingFinalOutput:
		if r.DampingFinal != nil {
			return *r.DampingFinal, true
		}
	}
	return 0, false
}

// AnalysisRecord is one reference case: inputs plus the results produced by
// the program that generated the dataset.
type AnalysisRecord struct {
	AnalysisID   string           `json:"analysis_id"`
	GroundMotion GroundMotion     `json:"ground_motion_parameters"`
	Analysis     AnalysisSettings `json:"analysis"`
	SiteParams   SiteParams       `json:"site_parameters"`
	Results      EngineResults    `json:"results"`
}

// DisplayName is the human-readable identity used in report detail lines.
func (r *AnalysisRecord) DisplayName() string {
	return r.GroundMotion.Earthquake + " - " + r.GroundMotion.RecordStation
}

// DatasetMetadata describes the provenance of a results file.
type DatasetMetadata struct {
	SourceProgram string `json:"source_program"`        // Program that produced the results
	SourceVersion string `json:"source_version"`        // Version of that program
	DateExtracted string `json:"date_extracted"`        // ISO8601 extraction timestamp
	TotalAnalyses int    `json:"total_analyses"`        // Record count at write time
	Description   string `json:"description,omitempty"` // Optional free-form note
}

// Dataset is a complete versioned results file.
type Dataset struct {
	SchemaVersion string           `json:"schema_version"`
	Metadata      DatasetMetadata  `json:"metadata"`
	Analyses      []AnalysisRecord `json:"analyses"`
}

// RecordByID returns the record with the given analysis id, or nil.
func (d *Dataset) RecordByID(id string) *AnalysisRecord {
	for i := range d.Analyses {
		if d.Analyses[i].AnalysisID == id {
			return &d.Analyses[i]
		}
	}
	return nil
}

// CurrentSchemaVersion is written to files produced by this tool and accepted
// when reading.
const CurrentSchemaVersion = "1.0"
