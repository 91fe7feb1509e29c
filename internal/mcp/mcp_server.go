// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/benchtable/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the benchtable MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.HistoryManager, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"Benchmark Table Server",
		version,
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	// --- 1. Tool: generate_table ---
	s.AddTool(mcp.NewTool("generate_table",
		mcp.WithDescription("Merge benchmark result files into comparison tables and return them as JSON documents."),
		mcp.WithString("result_files", mcp.Description("Comma-separated result XML files or glob patterns.")),
		mcp.WithString("table_definition", mcp.Description("Path to a table-definition XML file. Cannot be combined with result_files.")),
		mcp.WithBoolean("common", mcp.Description("Only keep tasks contained in every run-set.")),
		mcp.WithBoolean("correct_only", mcp.Description("Clear values of results that are not correct.")),
		mcp.WithBoolean("all_columns", mcp.Description("Show all columns of the result files, including hidden ones.")),
		mcp.WithBoolean("ignore_errors", mcp.Description("Skip run-sets whose result file reports an error.")),
	), h.handleGenerateTable)

	// --- 2. Tool: regression_count ---
	s.AddTool(mcp.NewTool("regression_count",
		mcp.WithDescription("Count regressions between consecutive run-sets and the correct/wrong/other tally of every run-set."),
		mcp.WithString("result_files", mcp.Description("Comma-separated result XML files or glob patterns, oldest first."), mcp.Required()),
		mcp.WithBoolean("ignore_flapping", mcp.Description("Do not count timeouts that flap between run-sets as regressions.")),
	), h.handleRegressionCount)

	// --- 3. Tool: history_status ---
	s.AddTool(mcp.NewTool("history_status",
		mcp.WithDescription("Report the state of the generation history store."),
	), h.handleHistoryStatus)

	return s
}

// StartMCPServer starts the benchtable MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.HistoryManager, version string) error {
	s := NewMCPServer(baseCfg, mgr, version)
	return server.ServeStdio(s)
}
