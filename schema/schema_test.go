package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

// sampleDocument is a realistic results file with one coupled record.
const sampleDocument = `{
  "schema_version": "1.0",
  "metadata": {
    "source_program": "slammer",
    "source_version": "1.1",
    "date_extracted": "2024-03-18T09:30:00Z",
    "total_analyses": 1
  },
  "analyses": [
    {
      "analysis_id": "NORTHR_SYL090_coupled_001",
      "ground_motion_parameters": {
        "earthquake": "Northridge",
        "record_station": "Sylmar 090",
        "target_pga_g": 0.6,
        "ground_motion_file": "motions/NORTHR/SYL090.txt"
      },
      "analysis": {
        "method": "coupled",
        "mode": "equivalent_linear"
      },
      "site_parameters": {
        "ky_g": 0.1,
        "height_m": 30.0,
        "vs_slope_mps": 350.0,
        "vs_base_mps": 600.0,
        "damping_ratio": 0.05,
        "reference_strain": 0.05
      },
      "results": {
        "normal_displacement_cm": 14.23,
        "inverse_displacement_cm": 12.81,
        "kmax": 0.42,
        "vs_final_mps": 310.5
      }
    }
  ]
}`

func TestDatasetUnmarshal(t *testing.T) {
	var d Dataset
	err := json.Unmarshal([]byte(sampleDocument), &d)
	assert.Nil(t, err)

	assert.Equal(t, "1.0", d.SchemaVersion)
	assert.Equal(t, "slammer", d.Metadata.SourceProgram)
	assert.Len(t, d.Analyses, 1)

	rec := d.Analyses[0]
	assert.Equal(t, CoupledMethod, rec.Analysis.Method)
	assert.Equal(t, "equivalent_linear", rec.Analysis.Mode)
	assert.Equal(t, 0.1, rec.SiteParams.KyG)
	assert.NotNil(t, rec.SiteParams.HeightM)
	assert.Equal(t, 30.0, *rec.SiteParams.HeightM)
	assert.Equal(t, 14.23, rec.Results.NormalDisplacementCm)
	assert.Equal(t, "Northridge - Sylmar 090", rec.DisplayName())

	// Optional output present vs absent.
	kmax, ok := rec.Results.Additional(KmaxOutput)
	assert.True(t, ok)
	assert.Equal(t, 0.42, kmax)
	_, ok = rec.Results.Additional(DampingFinalOutput)
	assert.False(t, ok)
}

func TestDisplacementByDirection(t *testing.T) {
	res := EngineResults{NormalDisplacementCm: 5.0, InverseDisplacementCm: 3.5}

	assert.Equal(t, 5.0, res.Displacement(NormalDirection))
	assert.Equal(t, 3.5, res.Displacement(InverseDirection))
}

func TestRecordByID(t *testing.T) {
	d := Dataset{
		Analyses: []AnalysisRecord{
			{AnalysisID: "a_rigid_001"},
			{AnalysisID: "b_coupled_002"},
		},
	}

	rec := d.RecordByID("b_coupled_002")
	assert.NotNil(t, rec)
	assert.Equal(t, "b_coupled_002", rec.AnalysisID)

	assert.Nil(t, d.RecordByID("missing"))
}

func TestSummaryAccessors(t *testing.T) {
	s := Summary{
		MethodSummaries: map[Method]MethodSummary{
			CoupledMethod: {TotalTests: 4},
			RigidMethod:   {TotalTests: 10},
		},
		Groups: []GroupResult{
			{Method: RigidMethod, Direction: NormalDirection, SampleCount: 10},
			{Method: CoupledMethod, Direction: AllDirections, SampleCount: 8},
		},
	}

	// Canonical order regardless of map iteration.
	assert.Equal(t, []Method{RigidMethod, CoupledMethod}, s.MethodsPresent())

	g := s.GroupFor(CoupledMethod, AllDirections)
	assert.NotNil(t, g)
	assert.Equal(t, 8, g.SampleCount)
	assert.Nil(t, s.GroupFor(DecoupledMethod, NormalDirection))
}

func TestGroupResultFailedCheck(t *testing.T) {
	g := GroupResult{FailedChecks: []GroupCheck{SlopeCheck, RSquaredCheck}}

	assert.True(t, g.FailedCheck(SlopeCheck))
	assert.True(t, g.FailedCheck(RSquaredCheck))
	assert.False(t, g.FailedCheck(PassRateCheck))
	assert.False(t, g.FailedCheck(InterceptCheck))
}

func TestRunOutcomeTotal(t *testing.T) {
	o := RunOutcome{Completed: 3, Cached: 5, Failed: 1}
	assert.Equal(t, 9, o.Total())
}
