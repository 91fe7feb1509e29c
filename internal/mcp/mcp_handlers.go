package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/huangsam/benchtable/core"
	"github.com/huangsam/benchtable/internal/contract"
	"github.com/huangsam/benchtable/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.HistoryManager
}

// regressionResult is the answer of the regression_count tool.
type regressionResult struct {
	Regressions int                   `json:"regressions"`
	Counts      []runSetCountsSummary `json:"counts"`
}

type runSetCountsSummary struct {
	RunSet string `json:"runset"`
	schema.RunSetCounts
}

func splitFiles(s string) []string {
	var files []string
	for part := range strings.SplitSeq(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			files = append(files, part)
		}
	}
	return files
}

// requestConfig derives the generation settings of one tool call.
func (h *toolHandler) requestConfig(request mcp.CallToolRequest) (*contract.Config, error) {
	cfg := h.baseCfg.Clone()
	cfg.ResultFiles = splitFiles(request.GetString("result_files", ""))
	cfg.TableDefinition = strings.TrimSpace(request.GetString("table_definition", ""))
	cfg.Common = request.GetBool("common", cfg.Common)
	cfg.CorrectOnly = request.GetBool("correct_only", cfg.CorrectOnly)
	cfg.AllColumns = request.GetBool("all_columns", cfg.AllColumns)
	cfg.IgnoreErrors = request.GetBool("ignore_errors", cfg.IgnoreErrors)
	cfg.IgnoreFlappingTimeouts = request.GetBool("ignore_flapping", cfg.IgnoreFlappingTimeouts)
	cfg.OutputPath = contract.StdoutPath
	cfg.WriteDiff = true

	if cfg.TableDefinition != "" && len(cfg.ResultFiles) > 0 {
		return nil, fmt.Errorf("invalid additional arguments '%s'", strings.Join(cfg.ResultFiles, " "))
	}
	if cfg.TableDefinition == "" && len(cfg.ResultFiles) == 0 {
		return nil, errors.New("result_files or table_definition is required")
	}
	return cfg, nil
}

func (h *toolHandler) buildReport(ctx context.Context, request mcp.CallToolRequest) (*core.Report, *mcp.CallToolResult) {
	cfg, err := h.requestConfig(request)
	if err != nil {
		return nil, mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err))
	}
	report, err := core.BuildReport(core.WithSuppressHeader(ctx), cfg)
	if err != nil {
		return nil, mcp.NewToolResultError(fmt.Sprintf("table generation failed: %v", err))
	}
	if report == nil {
		return nil, mcp.NewToolResultError("no results found, no tables produced")
	}
	return report, nil
}

func (h *toolHandler) handleGenerateTable(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	report, failure := h.buildReport(ctx, request)
	if failure != nil {
		return failure, nil
	}

	jsonData, _ := json.MarshalIndent(report.Tables, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleRegressionCount(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if request.GetString("result_files", "") == "" {
		return mcp.NewToolResultError("invalid parameters: result_files is required"), nil
	}
	report, failure := h.buildReport(ctx, request)
	if failure != nil {
		return failure, nil
	}

	result := regressionResult{Regressions: report.Regressions}
	for i, rs := range report.RunSets {
		summary := runSetCountsSummary{RunSet: rs.Name()}
		if i < len(report.Counts) {
			summary.RunSetCounts = report.Counts[i]
		}
		result.Counts = append(result.Counts, summary)
	}

	jsonData, _ := json.MarshalIndent(result, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleHistoryStatus(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	status := schema.HistoryStatus{Backend: string(schema.NoneBackend)}
	if h.mgr != nil {
		if store := h.mgr.GetHistoryStore(); store != nil {
			var err error
			status, err = store.GetStatus()
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("history status failed: %v", err)), nil
			}
		}
	}

	jsonData, _ := json.MarshalIndent(status, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}
