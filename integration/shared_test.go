//go:build basic || database

// Package integration exercises the slipcheck binary end to end. The tests
// are excluded from normal runs by build tags:
//
//	go test -tags basic ./integration
//	go test -tags database ./integration
package integration

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"testing"

	"github.com/slipcheck/slipcheck/internal/dataset"
	"github.com/slipcheck/slipcheck/schema"
)

var (
	// sharedBinaryPath holds the path to a slipcheck binary built once for
	// all tests.
	sharedBinaryPath string

	// buildOnce ensures we only build the binary once.
	buildOnce sync.Once

	// buildMutex protects the shared binary path.
	buildMutex sync.Mutex

	// binaryDir holds the temp directory for cleanup.
	binaryDir string
)

// TestMain handles setup and cleanup for all integration tests.
func TestMain(m *testing.M) {
	code := m.Run()

	if binaryDir != "" {
		_ = os.RemoveAll(binaryDir)
	}

	os.Exit(code)
}

// slipcheckBinary returns the path to the slipcheck binary, building it once
// if needed.
func slipcheckBinary() string {
	buildMutex.Lock()
	defer buildMutex.Unlock()

	buildOnce.Do(func() {
		var err error
		binaryDir, err = os.MkdirTemp("", "slipcheck-integration-*")
		if err != nil {
			panic(fmt.Sprintf("failed to create temp dir: %v", err))
		}

		binaryPath := filepath.Join(binaryDir, "slipcheck")
		buildCmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/slipcheck")
		buildCmd.Dir = ".." // Build from the project root
		if out, err := buildCmd.CombinedOutput(); err != nil {
			panic(fmt.Sprintf("failed to build slipcheck: %v\n%s", err, out))
		}

		sharedBinaryPath = binaryPath
	})

	return sharedBinaryPath
}

// runSlipcheck runs the binary in dir and returns combined output. Commands
// get a sandboxed cache file in dir, never the user's real one.
func runSlipcheck(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	args = append(args, "--cache-backend", "sqlite", "--cache-db-connect", filepath.Join(dir, "cache.db"))
	cmd := exec.Command(slipcheckBinary(), args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Logf("Command failed: %s\nOutput: %s", cmd.String(), out)
	}
	return string(out), err
}

// integrationRecord builds a schema-valid analysis record.
func integrationRecord(id, earthquake string, method schema.Method, normal, inverse float64) schema.AnalysisRecord {
	return schema.AnalysisRecord{
		AnalysisID: id,
		GroundMotion: schema.GroundMotion{
			Earthquake:       earthquake,
			RecordStation:    "Station A",
			TargetPGAg:       0.4,
			GroundMotionFile: "motion.txt",
		},
		Analysis: schema.AnalysisSettings{Method: method},
		SiteParams: schema.SiteParams{
			KyG: 0.15,
		},
		Results: schema.EngineResults{
			NormalDisplacementCm:  normal,
			InverseDisplacementCm: inverse,
		},
	}
}

// writeResultsFile writes a results dataset for a program to path.
func writeResultsFile(t *testing.T, path, program, version string, records []schema.AnalysisRecord) {
	t.Helper()
	ds := &schema.Dataset{
		SchemaVersion: schema.CurrentSchemaVersion,
		Metadata: schema.DatasetMetadata{
			SourceProgram: program,
			SourceVersion: version,
			TotalAnalyses: len(records),
		},
		Analyses: records,
	}
	if err := dataset.Save(path, ds); err != nil {
		t.Fatalf("writing results file %s: %v", path, err)
	}
}
