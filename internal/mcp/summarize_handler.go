package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/giantswarm/creativity-bench/internal/judge"
	"github.com/giantswarm/creativity-bench/internal/server"
)

func handleSummarizeEvaluations(_ context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	file, _ := args["evaluation_file"].(string)

	path, err := resolveResultFilePath(sc.OutputDir(), file)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid evaluation_file: %v", err)), nil
	}

	summary, err := judge.SummarizeFile(path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to summarize evaluations: %v", err)), nil
	}

	summaryFile, err := judge.WriteSummaryFile(summary, path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to write summary: %v", err)), nil
	}

	result := map[string]interface{}{
		"summary_file": summaryFile,
		"summary":      summary,
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
