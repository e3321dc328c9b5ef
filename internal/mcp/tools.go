package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/giantswarm/creativity-bench/internal/server"
)

// RegisterTools registers all MCP tools with the server.
func RegisterTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	s.AddTool(mcp.NewTool("list_corpora",
		mcp.WithDescription("List available question corpora with their fields and question counts"),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleListCorpora(ctx, request, sc)
	})

	s.AddTool(mcp.NewTool("run_benchmark",
		mcp.WithDescription("Run the creativity benchmark: generate answers for each question, judge every answer and feed the best and worst answers back into the next prompt. Results are appended to the answer and evaluation logs in the output directory."),
		mcp.WithString("corpus",
			mcp.Description("Corpus name (default: from config)"),
		),
		mcp.WithString("generator_model",
			mcp.Description("Model that generates answers"),
		),
		mcp.WithString("generator_endpoint",
			mcp.Description("OpenAI-compatible endpoint for the generator (overrides KServe discovery)"),
		),
		mcp.WithString("generator_isvc",
			mcp.Description("KServe InferenceService serving the generator"),
		),
		mcp.WithString("judge_model",
			mcp.Description("Model that scores answers"),
		),
		mcp.WithString("judge_endpoint",
			mcp.Description("OpenAI-compatible endpoint for the judge"),
		),
		mcp.WithString("prompt_style",
			mcp.Description("Prompt style: dynamic, scp, cot, rag or rcp"),
			mcp.Enum("dynamic", "scp", "cot", "rag", "rcp"),
		),
		mcp.WithNumber("start_question",
			mcp.Description("1-based question to start from"),
		),
		mcp.WithBoolean("resume",
			mcp.Description("Continue after the last question in the existing evaluation log"),
		),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleRunBenchmark(ctx, request, sc)
	})

	s.AddTool(mcp.NewTool("summarize_evaluations",
		mcp.WithDescription("Aggregate an evaluation log into mean scores, hallucination counts and originality variance, and write <log>_summary.json"),
		mcp.WithString("evaluation_file",
			mcp.Required(),
			mcp.Description("Evaluation log path, relative to the output directory"),
		),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleSummarizeEvaluations(ctx, request, sc)
	})

	s.AddTool(mcp.NewTool("get_results",
		mcp.WithDescription("List result files in the output directory, or return the content of one"),
		mcp.WithString("file",
			mcp.Description("Result file to return (optional, lists all if omitted)"),
		),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleGetResults(ctx, request, sc)
	})

	s.AddTool(mcp.NewTool("list_endpoints",
		mcp.WithDescription("List KServe InferenceServices in the configured namespace and their endpoint URLs"),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleListEndpoints(ctx, request, sc)
	})

	return nil
}
