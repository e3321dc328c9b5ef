package judge

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giantswarm/creativity-bench/internal/testutil"
)

func TestJudgeEvaluate(t *testing.T) {
	client := &testutil.MockLLMClient{
		DefaultResponse: "  Originality: 4 Feasibility: 3 Value: 4 Hallucination: No\n",
	}
	j := NewJudge(client, Config{Model: "judge-model"})

	ev, err := j.Evaluate(context.Background(), "How?", "Like this.")
	require.NoError(t, err)

	assert.Equal(t, "Originality: 4 Feasibility: 3 Value: 4 Hallucination: No", ev.Raw)
	assert.Equal(t, Verdict{Originality: 4, Feasibility: 3, Value: 4}, ev.Verdict)

	req := client.LastRequest()
	assert.Equal(t, "judge-model", req.Model)
	assert.Equal(t, EvaluationPrompt, req.SystemMessage)
	assert.Equal(t, "[User Questions]:How?[Answers to be evaluated]:Like this.", req.UserMessage)
	require.NotNil(t, req.Temperature)
	assert.Equal(t, 0.0, *req.Temperature)
	assert.Equal(t, DefaultMaxTokens, req.MaxTokens)
}

func TestJudgeDefaults(t *testing.T) {
	j := NewJudge(&testutil.MockLLMClient{}, Config{})
	assert.Equal(t, DefaultModel, j.Model())
	assert.Equal(t, DefaultMaxTokens, j.config.MaxTokens)
}

func TestJudgeEvaluateMalformedKeepsRaw(t *testing.T) {
	client := &testutil.MockLLMClient{DefaultResponse: "I would rate this highly."}
	j := NewJudge(client, Config{})

	ev, err := j.Evaluate(context.Background(), "q", "a")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedVerdict)
	assert.Equal(t, "I would rate this highly.", ev.Raw)
}

func TestJudgeEvaluateServiceFailure(t *testing.T) {
	client := &testutil.MockLLMClient{Err: assert.AnError}
	j := NewJudge(client, Config{})

	_, err := j.Evaluate(context.Background(), "q", "a")
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
	assert.NotErrorIs(t, err, ErrMalformedVerdict)
}
