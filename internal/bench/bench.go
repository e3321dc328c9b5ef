// Package bench assembles a runnable benchmark from a validated
// configuration: corpus, model clients, prompt composer and output logs.
package bench

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/giantswarm/creativity-bench/internal/config"
	"github.com/giantswarm/creativity-bench/internal/corpus"
	"github.com/giantswarm/creativity-bench/internal/judge"
	"github.com/giantswarm/creativity-bench/internal/llm"
	"github.com/giantswarm/creativity-bench/internal/prompt"
	"github.com/giantswarm/creativity-bench/internal/runner"
	"github.com/giantswarm/creativity-bench/internal/store"
)

// ErrRunComplete is returned on resume when the evaluation log already
// covers the last question of the corpus.
var ErrRunComplete = errors.New("evaluation log already covers the whole corpus")

// EndpointResolver finds the base URL of a served model by name.
// *kserve.Resolver implements it.
type EndpointResolver interface {
	WaitForReady(ctx context.Context, name string, timeout time.Duration) (string, error)
}

// ClientFactory builds an LLM client for an endpoint.
type ClientFactory func(endpoint, apiKey string) llm.Client

// Options carries the collaborators Prepare cannot derive from config.
type Options struct {
	// Resolver is required only when a model names an InferenceService.
	Resolver     EndpointResolver
	ReadyTimeout time.Duration

	// NewClient defaults to NewOpenAIClient.
	NewClient ClientFactory
}

// Benchmark is a prepared run.
type Benchmark struct {
	Config          *config.Config
	Corpus          *corpus.Corpus
	Style           prompt.Style
	StartQuestion   int
	AnswersPath     string
	EvaluationsPath string
	Runner          *runner.Runner
}

const (
	// DefaultEndpoint is used for models without an endpoint or InferenceService.
	DefaultEndpoint = "https://api.openai.com/v1"
	// DefaultRequestTimeout bounds one generator or judge call.
	DefaultRequestTimeout = 10 * time.Minute
)

// NewOpenAIClient creates an OpenAI-compatible client. An empty endpoint
// selects DefaultEndpoint.
func NewOpenAIClient(endpoint, apiKey string) llm.Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	opts := []llm.Option{
		llm.WithBaseURL(endpoint),
		llm.WithRequestTimeout(DefaultRequestTimeout),
	}
	if apiKey != "" {
		opts = append(opts, llm.WithAPIKey(apiKey))
	}
	return llm.NewOpenAIClient(opts...)
}

// Prepare validates cfg and wires everything a run needs. No model is
// called; InferenceService endpoints are looked up.
func Prepare(ctx context.Context, cfg *config.Config, opts Options) (*Benchmark, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if opts.NewClient == nil {
		opts.NewClient = NewOpenAIClient
	}

	style, err := prompt.ParseStyle(cfg.PromptStyle)
	if err != nil {
		return nil, err
	}
	composer, err := prompt.NewComposer(style)
	if err != nil {
		return nil, err
	}

	c, err := corpus.Load(cfg.Corpus, cfg.CorporaDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load corpus: %w", err)
	}

	generatorEndpoint, err := resolveEndpoint(ctx, "generator", cfg.Generator, opts)
	if err != nil {
		return nil, err
	}
	judgeEndpoint, err := resolveEndpoint(ctx, "judge", cfg.Judge, opts)
	if err != nil {
		return nil, err
	}

	answersPath, evaluationsPath := runner.OutputPaths(cfg.OutputDir, cfg.Generator.Model, cfg.Judge.Model, style)
	answers := store.NewAnswerLog(answersPath)
	evaluations := store.NewEvaluationLog(evaluationsPath)

	start := cfg.StartQuestion
	if cfg.Resume {
		start, err = resumePoint(answers, evaluations, c)
		if err != nil {
			return nil, err
		}
	}

	j := judge.NewJudge(opts.NewClient(judgeEndpoint, cfg.Judge.ResolveAPIKey()), judge.Config{
		Model:       cfg.Judge.Model,
		Temperature: cfg.Judge.Temperature,
		MaxTokens:   cfg.Judge.MaxTokens,
	})

	r := runner.NewRunner(runner.Config{
		Generator:            opts.NewClient(generatorEndpoint, cfg.Generator.ResolveAPIKey()),
		GeneratorModel:       cfg.Generator.Model,
		GeneratorTemperature: cfg.Generator.Temperature,
		GeneratorMaxTokens:   cfg.Generator.MaxTokens,
		Judge:                j,
		Composer:             composer,
		Answers:              answers,
		Evaluations:          evaluations,
		Throttle:             cfg.Throttle,
	})

	return &Benchmark{
		Config:          cfg,
		Corpus:          c,
		Style:           style,
		StartQuestion:   start,
		AnswersPath:     answersPath,
		EvaluationsPath: evaluationsPath,
		Runner:          r,
	}, nil
}

// Run executes the prepared benchmark.
func (b *Benchmark) Run(ctx context.Context) (*runner.RunReport, error) {
	return b.Runner.Run(ctx, b.Corpus, b.StartQuestion)
}

func resolveEndpoint(ctx context.Context, role string, m config.ModelConfig, opts Options) (string, error) {
	if m.Endpoint != "" || m.InferenceService == "" {
		return m.Endpoint, nil
	}
	if opts.Resolver == nil {
		return "", fmt.Errorf("%s: inference service %q requires a Kubernetes connection", role, m.InferenceService)
	}

	url, err := opts.Resolver.WaitForReady(ctx, m.InferenceService, opts.ReadyTimeout)
	if err != nil {
		return "", fmt.Errorf("%s: failed to resolve inference service %q: %w", role, m.InferenceService, err)
	}
	slog.Info("using InferenceService endpoint", "role", role, "name", m.InferenceService, "endpoint", url)
	return url, nil
}

// resumePoint returns the first unfinished question. The last logged
// question is finished only when every answer stored for it in the answer
// log has a verdict.
func resumePoint(answers *store.AnswerLog, evaluations *store.EvaluationLog, c *corpus.Corpus) (int, error) {
	last, ok, err := evaluations.LastIndex()
	if err != nil {
		return 0, err
	}
	if !ok {
		slog.Info("no previous evaluations found, starting from the first question", "log", evaluations.Path())
		return 1, nil
	}

	question := runner.QuestionOfIndex(last)
	generated, err := generatedAnswers(answers, question)
	if err != nil {
		return 0, err
	}

	start := runner.NextStartQuestion(last, generated)
	if start > c.Size() {
		return 0, fmt.Errorf("%w: last answer index %d", ErrRunComplete, last)
	}
	if start == question {
		slog.Warn("last question was only partly judged, running it again",
			"question", question,
			"last_answer_index", last,
			"answers", generated,
		)
	}
	slog.Info("resuming run", "last_answer_index", last, "start_question", start)
	return start, nil
}

// generatedAnswers returns how many answers the latest record for question
// holds, or 0 when the answer log has no such record.
func generatedAnswers(answers *store.AnswerLog, question int) (int, error) {
	records, err := answers.Records()
	if err != nil {
		return 0, fmt.Errorf("failed to read answer log: %w", err)
	}
	for i := len(records) - 1; i >= 0; i-- {
		if records[i].QuestionID == question {
			return len(records[i].Answers), nil
		}
	}
	slog.Warn("no answer record for the last judged question", "question", question, "log", answers.Path())
	return 0, nil
}
