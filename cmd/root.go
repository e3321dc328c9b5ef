package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/giantswarm/creativity-bench/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "creativity-bench",
	Short: "Creativity benchmark for LLMs with adaptive exemplar prompting",
	Long: `creativity-bench measures how creatively an LLM answers open scientific
questions. For every question of a corpus it asks a generator model for a batch of
answers, has a judge model score each answer for originality, feasibility, value
and hallucination, and feeds the best and the latest hallucinated answer back into
the next prompt as examples.

Generator and judge can be any OpenAI-compatible endpoint, including models served
by KServe InferenceServices. All functionality is also exposed via an MCP server.

When run without subcommands, it starts the MCP server (equivalent to 'creativity-bench serve').`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		verbose, _ := cmd.Flags().GetBool("verbose")
		if verbose {
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelDebug,
			})))
		}
	},
}

// serveCmd is stored so the root command can delegate to it by default.
var serveCmd *cobra.Command

var (
	buildCommit = "unknown"
	buildDate   = "unknown"
)

// SetVersion sets the version for the root command.
func SetVersion(v string) {
	rootCmd.Version = v
}

// SetBuildInfo sets the commit and build date for the version command.
func SetBuildInfo(commit, date string) {
	buildCommit = commit
	buildDate = date
}

// Execute is the main entry point for the CLI application.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "creativity-bench version %s\n" .Version}}`)

	// The root command cannot parse serve-specific flags, so it only
	// delegates with defaults.
	rootCmd.Run = func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(os.Stderr, "No subcommand specified. Defaulting to 'serve' (stdio transport).")
		fmt.Fprintln(os.Stderr, "For HTTP transport, use: creativity-bench serve --transport streamable-http")
		fmt.Fprintln(os.Stderr)
		if err := serveCmd.RunE(serveCmd, args); err != nil {
			slog.Error("serve failed", "error", err)
			os.Exit(1)
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	cancel()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	serveCmd = newServeCmd()
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newSummarizeCmd())
	rootCmd.AddCommand(newListCmd())

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().String("kubeconfig", "", "Path to kubeconfig file")
	rootCmd.PersistentFlags().StringP("namespace", "n", config.DefaultNamespace, "Kubernetes namespace of the InferenceServices")
	rootCmd.PersistentFlags().Bool("in-cluster", false, "Use in-cluster Kubernetes authentication")
}
