// Package judge scores generated answers with an LLM acting as judge and
// parses its one-line verdicts.
package judge

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/giantswarm/creativity-bench/internal/llm"
)

// Judge defaults.
const (
	DefaultModel     = "gpt-4o"
	DefaultMaxTokens = 200
)

// Config holds judge configuration.
type Config struct {
	Model       string
	Temperature float64
	MaxTokens   int
}

// Evaluation is the raw judge reply for one answer and its parsed verdict.
type Evaluation struct {
	Raw     string
	Verdict Verdict
}

// Judge evaluates answers using an LLM.
type Judge struct {
	client llm.Client
	config Config
}

// NewJudge creates a new Judge.
func NewJudge(client llm.Client, config Config) *Judge {
	if config.Model == "" {
		config.Model = DefaultModel
	}
	if config.MaxTokens <= 0 {
		config.MaxTokens = DefaultMaxTokens
	}
	return &Judge{client: client, config: config}
}

// Model returns the judge model name.
func (j *Judge) Model() string {
	return j.config.Model
}

// Evaluate asks the judge to score one answer and parses the reply.
// A service failure and a malformed reply are both returned as errors;
// a malformed reply still carries the raw text in the Evaluation.
func (j *Judge) Evaluate(ctx context.Context, question, answer string) (Evaluation, error) {
	resp, err := j.client.ChatCompletion(ctx, llm.ChatRequest{
		Model:         j.config.Model,
		SystemMessage: EvaluationPrompt,
		UserMessage:   UserMessage(question, answer),
		Temperature:   llm.Float64Ptr(j.config.Temperature),
		MaxTokens:     j.config.MaxTokens,
	})
	if err != nil {
		return Evaluation{}, fmt.Errorf("evaluation failed: %w", err)
	}

	raw := strings.TrimSpace(resp.Content)
	v, err := ParseVerdict(raw)
	if err != nil {
		slog.Debug("judge reply did not parse", "reply", raw, "error", err)
		return Evaluation{Raw: raw}, err
	}

	return Evaluation{Raw: raw, Verdict: v}, nil
}
