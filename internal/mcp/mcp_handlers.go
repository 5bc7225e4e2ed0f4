package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/slipcheck/slipcheck/core"
	"github.com/slipcheck/slipcheck/internal/contract"
	"github.com/slipcheck/slipcheck/schema"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.CacheManager
}

// configForRequest clones the base config and applies the dataset overrides
// every verification tool accepts.
func (h *toolHandler) configForRequest(request mcp.CallToolRequest) *contract.Config {
	cfg := h.baseCfg.Clone()
	if p := request.GetString("reference", ""); p != "" {
		cfg.ReferencePath = p
	}
	if p := request.GetString("candidate", ""); p != "" {
		cfg.CandidatePath = p
	}
	return cfg
}

func (h *toolHandler) handleRunVerification(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.configForRequest(request)
	if m := request.GetString("method", ""); m != "" {
		method, ok := schema.ParseMethod(m)
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("unknown method: %s", m)), nil
		}
		cfg.Methods = []schema.Method{method}
	}
	if l := request.GetInt("max_analyses", 0); l > 0 {
		cfg.MaxAnalyses = l
	}

	output, err := core.GetVerificationOutput(core.WithSuppressHeader(ctx), cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("verification failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(output.Summary, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleGetGroupStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.configForRequest(request)

	method, ok := schema.ParseMethod(request.GetString("method", ""))
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("unknown method: %s", request.GetString("method", ""))), nil
	}
	cfg.Methods = []schema.Method{method}

	output, err := core.GetVerificationOutput(core.WithSuppressHeader(ctx), cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("verification failed: %v", err)), nil
	}

	groups := output.Summary.Groups
	if d := request.GetString("direction", ""); d != "" {
		direction, ok := schema.ParseDirection(d)
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("unknown direction: %s", d)), nil
		}
		group := output.Summary.GroupFor(method, direction)
		if group == nil {
			return mcp.NewToolResultError(fmt.Sprintf("no samples for %s", schema.GroupLabel(method, direction))), nil
		}
		groups = []schema.GroupResult{*group}
	}

	payload := struct {
		Groups     []schema.GroupResult   `json:"groups"`
		Thresholds schema.GroupThresholds `json:"thresholds"`
	}{groups, output.Summary.Thresholds}

	jsonData, _ := json.MarshalIndent(payload, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleListFailingTests(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.configForRequest(request)

	output, err := core.GetVerificationOutput(core.WithSuppressHeader(ctx), cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("verification failed: %v", err)), nil
	}

	var failing []schema.ComparisonResult
	for _, c := range output.Comparisons {
		if !c.Passed {
			failing = append(failing, c)
		}
	}
	sort.Slice(failing, func(i, j int) bool {
		return failing[i].AbsoluteError > failing[j].AbsoluteError
	})

	total := len(failing)
	if limit := request.GetInt("limit", 0); limit > 0 && limit < len(failing) {
		failing = failing[:limit]
	}

	payload := struct {
		TotalFailing int                       `json:"total_failing"`
		Failures     []schema.ComparisonResult `json:"failures"`
	}{total, failing}

	jsonData, _ := json.MarshalIndent(payload, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleGetTolerances(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()

	method, ok := schema.ParseMethod(request.GetString("method", ""))
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("unknown method: %s", request.GetString("method", ""))), nil
	}
	magnitude := request.GetFloat("magnitude", 0)

	setting := core.ResolveTolerance(&cfg.Tolerances, method, magnitude)
	payload := struct {
		Method            schema.Method           `json:"method"`
		Magnitude         float64                 `json:"magnitude_cm"`
		SmallDisplacement bool                    `json:"small_displacement"`
		Tolerance         schema.ToleranceSetting `json:"tolerance"`
	}{
		Method:            method,
		Magnitude:         magnitude,
		SmallDisplacement: core.IsSmallDisplacement(&cfg.Tolerances, magnitude),
		Tolerance:         setting,
	}

	jsonData, _ := json.MarshalIndent(payload, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}
