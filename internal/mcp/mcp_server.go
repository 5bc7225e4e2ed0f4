// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/slipcheck/slipcheck/internal/contract"
)

// NewMCPServer initializes and configures the Slipcheck MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.CacheManager) *server.MCPServer {
	s := server.NewMCPServer(
		"Slipcheck Verification Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	// --- 1. Tool: run_verification ---
	s.AddTool(mcp.NewTool("run_verification",
		mcp.WithDescription("Verify candidate displacement results against a reference dataset and return the summary statistics."),
		mcp.WithString("reference", mcp.Description("Path to the reference results file (defaults to the configured reference).")),
		mcp.WithString("candidate", mcp.Description("Path to the candidate results file (defaults to the newest results file).")),
		mcp.WithString("method", mcp.Description("Restrict verification to one analysis method."), mcp.Enum("rigid", "decoupled", "coupled")),
		mcp.WithNumber("max_analyses", mcp.Description("Limit the number of analyses compared.")),
	), h.handleRunVerification)

	// --- 2. Tool: get_group_stats ---
	s.AddTool(mcp.NewTool("get_group_stats",
		mcp.WithDescription("Return the statistical verdict (pass rate, regression slope/intercept, R squared) for one method/direction group."),
		mcp.WithString("method", mcp.Description("Analysis method of the group."), mcp.Required(), mcp.Enum("rigid", "decoupled", "coupled")),
		mcp.WithString("direction", mcp.Description("Polarity of the group (defaults to both)."), mcp.Enum("normal", "inverse")),
		mcp.WithString("reference", mcp.Description("Path to the reference results file.")),
		mcp.WithString("candidate", mcp.Description("Path to the candidate results file.")),
	), h.handleGetGroupStats)

	// --- 3. Tool: list_failing_tests ---
	s.AddTool(mcp.NewTool("list_failing_tests",
		mcp.WithDescription("List individual comparisons outside tolerance, worst absolute error first."),
		mcp.WithNumber("limit", mcp.Description("Maximum number of failures to return.")),
		mcp.WithString("reference", mcp.Description("Path to the reference results file.")),
		mcp.WithString("candidate", mcp.Description("Path to the candidate results file.")),
	), h.handleListFailingTests)

	// --- 4. Tool: get_tolerances ---
	s.AddTool(mcp.NewTool("get_tolerances",
		mcp.WithDescription("Resolve the tolerance pair that would apply to a displacement comparison."),
		mcp.WithString("method", mcp.Description("Analysis method."), mcp.Required(), mcp.Enum("rigid", "decoupled", "coupled")),
		mcp.WithNumber("magnitude", mcp.Description("Reference displacement magnitude in cm."), mcp.Required()),
	), h.handleGetTolerances)

	return s
}

// StartMCPServer starts the Slipcheck MCP server.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.CacheManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}
