package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/giantswarm/creativity-bench/internal/bench"
	"github.com/giantswarm/creativity-bench/internal/config"
	"github.com/giantswarm/creativity-bench/internal/judge"
	"github.com/giantswarm/creativity-bench/internal/server"
)

// runConfig applies tool arguments on top of the server's base config.
func runConfig(base *config.Config, args map[string]interface{}) *config.Config {
	var cfg config.Config
	if base != nil {
		cfg = *base
	} else {
		cfg = *config.Default()
	}

	if v, ok := args["corpus"].(string); ok && v != "" {
		cfg.Corpus = v
	}
	if v, ok := args["generator_model"].(string); ok && v != "" {
		cfg.Generator.Model = v
	}
	if v, ok := args["generator_endpoint"].(string); ok && v != "" {
		cfg.Generator.Endpoint = v
		cfg.Generator.InferenceService = ""
	}
	if v, ok := args["generator_isvc"].(string); ok && v != "" {
		cfg.Generator.InferenceService = v
		cfg.Generator.Endpoint = ""
	}
	if v, ok := args["judge_model"].(string); ok && v != "" {
		cfg.Judge.Model = v
	}
	if v, ok := args["judge_endpoint"].(string); ok && v != "" {
		cfg.Judge.Endpoint = v
		cfg.Judge.InferenceService = ""
	}
	if v, ok := args["prompt_style"].(string); ok && v != "" {
		cfg.PromptStyle = v
	}
	// Either argument replaces the configured start point. Given together
	// they conflict and validation rejects the run.
	start, hasStart := args["start_question"].(float64)
	if hasStart {
		cfg.StartQuestion = int(start)
		cfg.Resume = false
	}
	if v, ok := args["resume"].(bool); ok {
		cfg.Resume = v
		if v && !hasStart {
			cfg.StartQuestion = 1
		}
	}
	return &cfg
}

func handleRunBenchmark(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	cfg := runConfig(sc.Config, request.GetArguments())

	if !sc.TryStartRun() {
		return mcp.NewToolResultError("a benchmark run is already in progress"), nil
	}
	defer sc.FinishRun()

	b, err := bench.Prepare(ctx, cfg, sc.BenchOptions())
	if errors.Is(err, bench.ErrRunComplete) {
		return mcp.NewToolResultText("nothing to do: " + err.Error()), nil
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to prepare benchmark: %v", err)), nil
	}

	slog.Info("running benchmark from MCP",
		"corpus", cfg.Corpus,
		"generator", cfg.Generator.Model,
		"judge", cfg.Judge.Model,
		"start_question", b.StartQuestion,
	)

	report, runErr := b.Run(ctx)

	result := map[string]interface{}{
		"corpus":           b.Corpus.Name,
		"prompt_style":     b.Style,
		"start_question":   b.StartQuestion,
		"answers_file":     b.AnswersPath,
		"evaluations_file": b.EvaluationsPath,
	}
	if report != nil {
		result["questions"] = report.Questions
		result["answers"] = report.Answers
		result["last_question"] = report.LastQuestion
		result["duration"] = report.Duration.String()
	}
	if summary, err := judge.SummarizeFile(b.EvaluationsPath); err == nil {
		result["summary"] = summary
	}

	if runErr != nil {
		result["error"] = runErr.Error()
		data, _ := json.MarshalIndent(result, "", "  ")
		return mcp.NewToolResultError(fmt.Sprintf("benchmark run failed: %v\n%s", runErr, data)), nil
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
