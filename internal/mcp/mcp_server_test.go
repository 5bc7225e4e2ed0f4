package mcp_test

import (
	"context"
	"math"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/slipcheck/slipcheck/internal/contract"
	mcp_internal "github.com/slipcheck/slipcheck/internal/mcp"
	"github.com/slipcheck/slipcheck/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBaseConfig() *contract.Config {
	return &contract.Config{
		ReferencePath: "testdata/results_reference.json.gz",
		Workers:       2,
		Precision:     3,
		Output:        schema.JSONOut,
		Tolerances: contract.ToleranceConfig{
			DefaultRelative:            0.05,
			DefaultAbsolute:            1.0,
			SmallDisplacementThreshold: 0.5,
			SmallDisplacementAbsolute:  0.05,
			SmallDisplacementRelative:  math.Inf(1),
		},
		Thresholds: schema.GetDefaultGroupThresholds(),
	}
}

func TestMCPServerHandlers_ValidationErrors(t *testing.T) {
	baseCfg := testBaseConfig()

	// Create a dummy manager, though we shouldn't hit it because we test validation errors
	var mgr contract.CacheManager
	s := mcp_internal.NewMCPServer(baseCfg, mgr)

	ctx := context.Background()

	t.Run("get_group_stats unknown method", func(t *testing.T) {
		tool := s.GetTool("get_group_stats")
		require.NotNil(t, tool, "Tool get_group_stats should exist")

		req := mcp.CallToolRequest{
			Params: mcp.CallToolParams{
				Name: "get_group_stats",
				Arguments: map[string]any{
					"method": "sliding", // Invalid
				},
			},
		}

		res, err := tool.Handler(ctx, req)
		require.NoError(t, err, "The MCP handler should not return a raw error for tool logic failures")
		assert.True(t, res.IsError, "The response should indicate an error state")
		assert.Contains(t, res.Content[0].(mcp.TextContent).Text, "unknown method")
	})

	t.Run("run_verification missing reference", func(t *testing.T) {
		tool := s.GetTool("run_verification")
		require.NotNil(t, tool)

		req := mcp.CallToolRequest{
			Params: mcp.CallToolParams{
				Name: "run_verification",
				Arguments: map[string]any{
					"reference": "testdata/does_not_exist.json.gz",
				},
			},
		}

		res, err := tool.Handler(ctx, req)
		require.NoError(t, err)
		assert.True(t, res.IsError)
		assert.Contains(t, res.Content[0].(mcp.TextContent).Text, "verification failed")
	})

	t.Run("list_failing_tests missing reference", func(t *testing.T) {
		tool := s.GetTool("list_failing_tests")
		require.NotNil(t, tool)

		req := mcp.CallToolRequest{
			Params: mcp.CallToolParams{
				Name: "list_failing_tests",
				Arguments: map[string]any{
					"reference": "testdata/does_not_exist.json.gz",
				},
			},
		}

		res, err := tool.Handler(ctx, req)
		require.NoError(t, err)
		assert.True(t, res.IsError)
	})
}

func TestMCPServerGetTolerances(t *testing.T) {
	baseCfg := testBaseConfig()

	var mgr contract.CacheManager
	s := mcp_internal.NewMCPServer(baseCfg, mgr)

	ctx := context.Background()
	tool := s.GetTool("get_tolerances")
	require.NotNil(t, tool, "Tool get_tolerances should exist")

	t.Run("small displacement regime", func(t *testing.T) {
		req := mcp.CallToolRequest{
			Params: mcp.CallToolParams{
				Name: "get_tolerances",
				Arguments: map[string]any{
					"method":    "rigid",
					"magnitude": 0.2,
				},
			},
		}

		res, err := tool.Handler(ctx, req)
		require.NoError(t, err)
		require.False(t, res.IsError)

		text := res.Content[0].(mcp.TextContent).Text
		assert.Contains(t, text, `"small_displacement": true`)
		assert.Contains(t, text, `"relative": "inf"`)
		assert.Contains(t, text, `"absolute": 0.05`)
	})

	t.Run("normal regime", func(t *testing.T) {
		req := mcp.CallToolRequest{
			Params: mcp.CallToolParams{
				Name: "get_tolerances",
				Arguments: map[string]any{
					"method":    "coupled",
					"magnitude": 5.0,
				},
			},
		}

		res, err := tool.Handler(ctx, req)
		require.NoError(t, err)
		require.False(t, res.IsError)

		text := res.Content[0].(mcp.TextContent).Text
		assert.Contains(t, text, `"small_displacement": false`)
		assert.Contains(t, text, `"relative": 0.05`)
	})
}
