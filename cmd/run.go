package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/giantswarm/creativity-bench/internal/bench"
	"github.com/giantswarm/creativity-bench/internal/config"
	"github.com/giantswarm/creativity-bench/internal/judge"
	"github.com/giantswarm/creativity-bench/internal/runner"
)

// modelFlags binds the flags of one model role ("generator" or "judge").
func modelFlags(fs *pflag.FlagSet, role string, m *config.ModelConfig) {
	fs.StringVar(&m.Model, role+"-model", m.Model, "Model name of the "+role)
	fs.StringVar(&m.Endpoint, role+"-endpoint", m.Endpoint, "OpenAI-compatible endpoint URL of the "+role)
	fs.StringVar(&m.APIKey, role+"-api-key", m.APIKey, "API key of the "+role+" (or set OPENAI_API_KEY)")
	fs.Float64Var(&m.Temperature, role+"-temperature", m.Temperature, "Sampling temperature of the "+role)
	fs.IntVar(&m.MaxTokens, role+"-max-tokens", m.MaxTokens, "Max completion tokens of the "+role)
	fs.StringVar(&m.InferenceService, role+"-isvc", m.InferenceService, "KServe InferenceService serving the "+role)
}

// applyChanged copies every explicitly set flag value from flagCfg into cfg.
// Flags left at their default never override the config file.
func applyChanged(fs *pflag.FlagSet, cfg, flagCfg *config.Config) {
	model := func(role string, dst, src *config.ModelConfig) {
		if fs.Changed(role + "-model") {
			dst.Model = src.Model
		}
		if fs.Changed(role + "-endpoint") {
			dst.Endpoint = src.Endpoint
			dst.InferenceService = ""
		}
		if fs.Changed(role + "-api-key") {
			dst.APIKey = src.APIKey
		}
		if fs.Changed(role + "-temperature") {
			dst.Temperature = src.Temperature
		}
		if fs.Changed(role + "-max-tokens") {
			dst.MaxTokens = src.MaxTokens
		}
		if fs.Changed(role + "-isvc") {
			dst.InferenceService = src.InferenceService
			dst.Endpoint = ""
		}
	}
	model("generator", &cfg.Generator, &flagCfg.Generator)
	model("judge", &cfg.Judge, &flagCfg.Judge)

	if fs.Changed("corpus") {
		cfg.Corpus = flagCfg.Corpus
	}
	if fs.Changed("corpora-dir") {
		cfg.CorporaDir = flagCfg.CorporaDir
	}
	if fs.Changed("output-dir") {
		cfg.OutputDir = flagCfg.OutputDir
	}
	if fs.Changed("prompt-style") {
		cfg.PromptStyle = flagCfg.PromptStyle
	}
	// An explicit start point on the command line replaces the other kind
	// from the config file.
	if fs.Changed("start-question") {
		cfg.StartQuestion = flagCfg.StartQuestion
		cfg.Resume = false
	}
	if fs.Changed("resume") {
		cfg.Resume = flagCfg.Resume
		if cfg.Resume {
			cfg.StartQuestion = 1
		}
	}
	if fs.Changed("throttle") {
		cfg.Throttle = flagCfg.Throttle
	}
}

func newRunCmd() *cobra.Command {
	var (
		configFile  string
		timeout     time.Duration
		isvcTimeout time.Duration
		flagCfg     = config.Default()
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the creativity benchmark against a generator and a judge model",
		Long: `Run the benchmark over a question corpus.

For each question the generator produces a batch of answers separated by blank lines.
The batch is appended to the answer log, then every answer is scored by the judge and
the raw verdict is appended to the evaluation log as "<answer index>: <verdict>".
With the dynamic prompt style the best qualifying answer and the latest hallucinated
answer are shown to the generator as examples for the following questions.

Settings come from --config (YAML) and are overridden by any flag given explicitly.
An interrupted run can be continued with --resume.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return err
			}
			applyChanged(cmd.Flags(), cfg, flagCfg)
			applyNamespaceFlag(cmd, cfg)

			ctx := cmd.Context()
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			opts := bench.Options{ReadyTimeout: isvcTimeout}
			if usesInferenceServices(cfg) {
				resolver, err := newResolverFromFlags(cmd, cfg.Namespace)
				if err != nil {
					return fmt.Errorf("failed to connect to Kubernetes: %w", err)
				}
				opts.Resolver = resolver
			}

			b, err := bench.Prepare(ctx, cfg, opts)
			if errors.Is(err, bench.ErrRunComplete) {
				fmt.Printf("Nothing to do: %v\n", err)
				return nil
			}
			if err != nil {
				return err
			}

			b.Runner.SetProgressFunc(printProgress)

			fmt.Printf("Corpus: %s (%d questions, %d fields)\n", b.Corpus.Name, b.Corpus.Size(), len(b.Corpus.Fields))
			fmt.Printf("Generator: %s\n", cfg.Generator.Model)
			fmt.Printf("Judge: %s\n", cfg.Judge.Model)
			fmt.Printf("Prompt style: %s\n", b.Style)
			fmt.Printf("Starting at question: %d\n\n", b.StartQuestion)

			report, err := b.Run(ctx)
			if report != nil {
				fmt.Printf("\nQuestions processed: %d\n", report.Questions)
				fmt.Printf("Answers judged: %d\n", report.Answers)
				fmt.Printf("Duration: %s\n", report.Duration.Round(time.Second))
				fmt.Printf("Answers: %s\n", report.AnswersFile)
				fmt.Printf("Evaluations: %s\n", report.EvaluationsFile)
			}
			if err != nil {
				if report != nil {
					// Run stops inside the question after the last completed
					// one, which is also where --resume picks up.
					next := report.StartQuestion + report.Questions
					fmt.Printf("\nRun stopped at question %d. Continue with --resume or --start-question %d.\n",
						next, next)
				}
				return err
			}

			summary, err := judge.SummarizeFile(b.EvaluationsPath)
			if err != nil {
				slog.Warn("failed to summarize evaluations", "error", err)
				return nil
			}
			summaryFile, err := judge.WriteSummaryFile(summary, b.EvaluationsPath)
			if err != nil {
				slog.Warn("failed to write summary", "error", err)
				return nil
			}
			fmt.Printf("Summary: %s\n", summaryFile)
			return nil
		},
	}

	fs := cmd.Flags()
	fs.StringVarP(&configFile, "config", "c", "", "YAML configuration file")
	modelFlags(fs, "generator", &flagCfg.Generator)
	modelFlags(fs, "judge", &flagCfg.Judge)
	fs.StringVar(&flagCfg.Corpus, "corpus", flagCfg.Corpus, "Corpus name")
	fs.StringVar(&flagCfg.CorporaDir, "corpora-dir", "", "External corpora directory")
	fs.StringVar(&flagCfg.OutputDir, "output-dir", flagCfg.OutputDir, "Directory for answer and evaluation logs")
	fs.StringVar(&flagCfg.PromptStyle, "prompt-style", flagCfg.PromptStyle, "Prompt style: dynamic, scp, cot, rag or rcp")
	fs.IntVar(&flagCfg.StartQuestion, "start-question", flagCfg.StartQuestion, "1-based question to start from")
	fs.BoolVar(&flagCfg.Resume, "resume", false, "Continue after the last question in the existing evaluation log")
	fs.DurationVar(&flagCfg.Throttle, "throttle", flagCfg.Throttle, "Pause between questions")
	fs.DurationVar(&timeout, "timeout", 0, "Overall timeout for the run (e.g. 30m, 1h). 0 means no timeout")
	fs.DurationVar(&isvcTimeout, "isvc-timeout", 10*time.Minute, "How long to wait for an InferenceService to become ready")
	cmd.MarkFlagsMutuallyExclusive("resume", "start-question")

	return cmd
}

func printProgress(p runner.Progress) {
	switch p.Phase {
	case runner.PhaseAwaitingGeneration:
		fmt.Printf("Processing question %d/%d in %s...\n", p.Question.Number(), p.Total, p.Question.Field)
	case runner.PhaseAwaitingEvaluation:
		if p.Raw != "" {
			fmt.Printf("  %d: %s\n", p.AnswerIndex, p.Raw)
		} else {
			fmt.Printf("  %d answers, judging...\n", p.Answers)
		}
	case runner.PhaseDone:
		fmt.Println("Processing complete.")
	}
}
