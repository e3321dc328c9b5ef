package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/giantswarm/creativity-bench/internal/server"
)

// resultFile describes one file in the output directory.
type resultFile struct {
	Name     string `json:"name"`
	Kind     string `json:"kind"`
	Size     int64  `json:"size"`
	Modified string `json:"modified"`
}

// resultKind classifies output files by their naming convention.
func resultKind(name string) string {
	switch {
	case strings.HasSuffix(name, "_evaluations_summary.json"):
		return "summary"
	case strings.HasSuffix(name, "_answers.json"):
		return "answers"
	case strings.HasSuffix(name, "_evaluations.txt"):
		return "evaluations"
	default:
		return ""
	}
}

func handleGetResults(_ context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	file, _ := args["file"].(string)

	if file != "" {
		return getResultFile(sc.OutputDir(), file)
	}
	return listResults(sc.OutputDir())
}

func listResults(outputDir string) (*mcp.CallToolResult, error) {
	entries, err := os.ReadDir(outputDir)
	if err != nil {
		if os.IsNotExist(err) {
			return mcp.NewToolResultText("[]"), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("failed to read results directory: %v", err)), nil
	}

	files := []resultFile{}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		kind := resultKind(e.Name())
		if kind == "" {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, resultFile{
			Name:     e.Name(),
			Kind:     kind,
			Size:     info.Size(),
			Modified: info.ModTime().UTC().Format(time.RFC3339),
		})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })

	data, err := json.MarshalIndent(files, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal results: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func getResultFile(outputDir, file string) (*mcp.CallToolResult, error) {
	path, err := resolveResultFilePath(outputDir, file)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid file: %v", err)), nil
	}
	if resultKind(filepath.Base(path)) == "" {
		return mcp.NewToolResultError(fmt.Sprintf("%q is not a result file", file)), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("result %q not found: %v", file, err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
