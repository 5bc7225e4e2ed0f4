package contract

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ExecEngine implements the Engine interface by executing a candidate
// displacement engine binary installed on the machine. The binary is expected
// to accept a JSON request on stdin and print a JSON response on stdout.
type ExecEngine struct {
	bin string
}

var _ Engine = &ExecEngine{} // Compile-time check

// NewExecEngine creates a new engine client for the given binary path.
func NewExecEngine(bin string) *ExecEngine {
	return &ExecEngine{bin: bin}
}

// run executes an engine command and returns its stdout output.
func (e *ExecEngine) run(ctx context.Context, stdin []byte, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, e.bin, args...)
	if stdin != nil {
		cmd.Stdin = bytes.NewReader(stdin)
	}
	out, err := cmd.Output()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		stderr := strings.TrimSpace(string(exitErr.Stderr))
		return nil, fmt.Errorf("engine command failed: %s", stderr)
	} else if err != nil {
		return nil, fmt.Errorf("engine command failed: %w. Ensure the engine binary exists and is executable", err)
	}
	return out, nil
}

// Version implements the Engine interface.
func (e *ExecEngine) Version(ctx context.Context) (string, error) {
	out, err := e.run(ctx, nil, "version", "--short")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// Run implements the Engine interface.
func (e *ExecEngine) Run(ctx context.Context, input *EngineInput) (*EngineOutput, error) {
	payload, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("encoding engine input for %s: %w", input.AnalysisID, err)
	}
	out, err := e.run(ctx, payload, "analyze", "--json")
	if err != nil {
		return nil, fmt.Errorf("analysis %s: %w", input.AnalysisID, err)
	}
	var result EngineOutput
	if err := json.Unmarshal(out, &result); err != nil {
		return nil, fmt.Errorf("decoding engine output for %s: %w", input.AnalysisID, err)
	}
	return &result, nil
}
