package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/giantswarm/creativity-bench/internal/corpus"
	"github.com/giantswarm/creativity-bench/internal/server"
)

func handleListCorpora(_ context.Context, _ mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	names, err := corpus.List(sc.CorporaDir())
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list corpora: %v", err)), nil
	}

	type corpusInfo struct {
		ID            string   `json:"id"`
		Name          string   `json:"name"`
		Description   string   `json:"description"`
		Version       string   `json:"version"`
		Fields        []string `json:"fields"`
		QuestionCount int      `json:"question_count"`
	}

	corpora := make([]corpusInfo, 0, len(names))
	for _, name := range names {
		c, err := corpus.Load(name, sc.CorporaDir())
		if err != nil {
			slog.Warn("skipping unloadable corpus", "corpus", name, "error", err)
			continue
		}
		corpora = append(corpora, corpusInfo{
			ID:            name,
			Name:          c.Name,
			Description:   c.Description,
			Version:       c.Version,
			Fields:        c.Fields,
			QuestionCount: c.Size(),
		})
	}

	data, err := json.MarshalIndent(corpora, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal corpora: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
