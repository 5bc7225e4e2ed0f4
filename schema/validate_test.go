package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func validRecord() AnalysisRecord {
	height := 30.0
	return AnalysisRecord{
		AnalysisID: "LOMAP_LGP000_rigid_001",
		GroundMotion: GroundMotion{
			Earthquake:       "Loma Prieta",
			RecordStation:    "LGP 000",
			TargetPGAg:       0.5,
			GroundMotionFile: "motions/LOMAP/LGP000.txt",
		},
		Analysis:   AnalysisSettings{Method: RigidMethod},
		SiteParams: SiteParams{KyG: 0.2, HeightM: &height},
		Results:    EngineResults{NormalDisplacementCm: 2.4, InverseDisplacementCm: 1.9},
	}
}

func TestValidateDataset(t *testing.T) {
	d := Dataset{
		SchemaVersion: CurrentSchemaVersion,
		Metadata: DatasetMetadata{
			SourceProgram: "slammer",
			SourceVersion: "1.1",
			DateExtracted: "2024-03-18T09:30:00Z",
			TotalAnalyses: 1,
		},
		Analyses: []AnalysisRecord{validRecord()},
	}

	assert.Nil(t, ValidateDataset(&d))
}

func TestValidateDatasetJSONRejectsBadMethod(t *testing.T) {
	d := Dataset{
		SchemaVersion: CurrentSchemaVersion,
		Metadata:      DatasetMetadata{SourceProgram: "slammer", SourceVersion: "1.1"},
		Analyses:      []AnalysisRecord{validRecord()},
	}
	d.Analyses[0].Analysis.Method = "newmark" // not in the closed enum

	data, err := json.Marshal(&d)
	assert.Nil(t, err)

	err = ValidateDatasetJSON(data, "bad.json")
	assert.NotNil(t, err)

	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
	assert.Equal(t, "bad.json", verr.Subject)
}

func TestValidateDatasetJSONRejectsMissingResults(t *testing.T) {
	doc := map[string]any{
		"schema_version": "1.0",
		"metadata": map[string]any{
			"source_program": "slammer",
			"source_version": "1.1",
		},
		"analyses": []any{
			map[string]any{
				"analysis_id": "x_rigid_001",
				"ground_motion_parameters": map[string]any{
					"earthquake":         "Kobe",
					"record_station":     "KJMA",
					"target_pga_g":       0.8,
					"ground_motion_file": "motions/KOBE/KJM000.txt",
				},
				"analysis":        map[string]any{"method": "rigid"},
				"site_parameters": map[string]any{"ky_g": 0.15},
				// results block missing entirely
			},
		},
	}

	data, err := json.Marshal(doc)
	assert.Nil(t, err)
	assert.NotNil(t, ValidateDatasetJSON(data, "partial.json"))
}

func TestValidateDatasetJSONRejectsInvalidJSON(t *testing.T) {
	err := ValidateDatasetJSON([]byte("{not json"), "garbage.json")
	assert.NotNil(t, err)

	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestValidateRecord(t *testing.T) {
	rec := validRecord()
	assert.Nil(t, ValidateRecord(&rec))

	// Zero yield acceleration violates the schema's exclusive minimum.
	rec.SiteParams.KyG = 0
	err := ValidateRecord(&rec)
	assert.NotNil(t, err)

	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
	assert.Equal(t, rec.AnalysisID, verr.Subject)
}
