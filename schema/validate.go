package schema

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed dataset_schema.json
var schemaFS embed.FS

var (
	datasetSchema *jsonschema.Schema
	compileOnce   sync.Once
	compileErr    error
)

// ValidationError is returned when dataset content fails schema validation.
// It identifies the offending file or record so callers can report it.
type ValidationError struct {
	Subject string // File path or analysis id being validated
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Subject == "" {
		return fmt.Sprintf("schema validation failed: %v", e.Err)
	}
	return fmt.Sprintf("schema validation failed for %s: %v", e.Subject, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// compileSchema compiles the embedded dataset schema once.
func compileSchema() error {
	compileOnce.Do(func() {
		data, err := schemaFS.ReadFile("dataset_schema.json")
		if err != nil {
			compileErr = fmt.Errorf("read dataset schema: %w", err)
			return
		}

		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
		if err != nil {
			compileErr = fmt.Errorf("unmarshal dataset schema: %w", err)
			return
		}

		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("dataset_schema.json", doc); err != nil {
			compileErr = fmt.Errorf("add dataset schema resource: %w", err)
			return
		}

		datasetSchema, err = compiler.Compile("dataset_schema.json")
		if err != nil {
			compileErr = fmt.Errorf("compile dataset schema: %w", err)
		}
	})

	return compileErr
}

// ValidateDatasetJSON validates raw JSON data against the dataset schema.
// The subject names the data source in any resulting ValidationError.
func ValidateDatasetJSON(data []byte, subject string) error {
	if err := compileSchema(); err != nil {
		return err
	}

	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return &ValidationError{Subject: subject, Err: fmt.Errorf("invalid JSON: %w", err)}
	}

	if err := datasetSchema.Validate(v); err != nil {
		return &ValidationError{Subject: subject, Err: err}
	}

	return nil
}

// ValidateDataset validates an in-memory dataset by round-tripping it through
// its JSON form, so the schema remains the single source of truth.
func ValidateDataset(d *Dataset) error {
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("marshal dataset: %w", err)
	}
	return ValidateDatasetJSON(data, "")
}

// ValidateRecord validates a single record by wrapping it in a minimal
// document, so record-level callers share the dataset schema.
func ValidateRecord(r *AnalysisRecord) error {
	doc := Dataset{
		SchemaVersion: CurrentSchemaVersion,
		Metadata: DatasetMetadata{
			SourceProgram: "validation",
			SourceVersion: "0.0.0",
		},
		Analyses: []AnalysisRecord{*r},
	}

	data, err := json.Marshal(&doc)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	return ValidateDatasetJSON(data, r.AnalysisID)
}
