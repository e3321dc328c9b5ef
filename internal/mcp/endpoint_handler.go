package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/giantswarm/creativity-bench/internal/server"
)

func handleListEndpoints(ctx context.Context, _ mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	if sc.Resolver == nil {
		return mcp.NewToolResultError("KServe discovery is not configured (no Kubernetes connection)"), nil
	}

	endpoints, err := sc.Resolver.List(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list endpoints: %v", err)), nil
	}

	data, err := json.MarshalIndent(endpoints, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal endpoints: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
