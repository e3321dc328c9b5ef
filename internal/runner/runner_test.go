package runner

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giantswarm/creativity-bench/internal/corpus"
	"github.com/giantswarm/creativity-bench/internal/exemplar"
	"github.com/giantswarm/creativity-bench/internal/judge"
	"github.com/giantswarm/creativity-bench/internal/llm"
	"github.com/giantswarm/creativity-bench/internal/prompt"
	"github.com/giantswarm/creativity-bench/internal/store"
	"github.com/giantswarm/creativity-bench/internal/testutil"
)

// answeringGenerator returns three answers per call, each tagged with the
// question found at the end of the prompt.
type answeringGenerator struct {
	failOn   int
	calls    int
	requests []llm.ChatRequest
	// reply overrides the default three-answer completion.
	reply func(question string) string
}

func (g *answeringGenerator) ChatCompletion(_ context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	g.calls++
	g.requests = append(g.requests, req)
	if g.failOn == g.calls {
		return nil, errors.New("service unavailable")
	}
	q := req.UserMessage[strings.LastIndex(req.UserMessage, "Question: ")+len("Question: "):]
	if g.reply != nil {
		return &llm.ChatResponse{Content: g.reply(q)}, nil
	}
	return &llm.ChatResponse{
		Content: fmt.Sprintf("%s answer A\n\n%s answer B\r\n\r\n%s answer C\n", q, q, q),
	}, nil
}

// scriptedJudge maps (question, answer) to a raw reply and parses it.
type scriptedJudge struct {
	replies map[string]string
	calls   int
}

func (j *scriptedJudge) Evaluate(_ context.Context, question, answer string) (judge.Evaluation, error) {
	j.calls++
	raw, ok := j.replies[answer]
	if !ok {
		raw = "Originality: 2 Feasibility: 2 Value: 2 Hallucination: No"
	}
	v, err := judge.ParseVerdict(raw)
	if err != nil {
		return judge.Evaluation{Raw: raw}, err
	}
	return judge.Evaluation{Raw: raw, Verdict: v}, nil
}

func testCorpus() *corpus.Corpus {
	c := &corpus.Corpus{Name: "test", Fields: []string{"Optics", "Robotics"}}
	for i := 1; i <= 20; i++ {
		c.Questions = append(c.Questions, fmt.Sprintf("Q%02d", i))
		c.Principles = append(c.Principles, fmt.Sprintf("P%02d", i))
	}
	return c
}

type fixture struct {
	dir       string
	generator *answeringGenerator
	judge     *scriptedJudge
	runner    *Runner
	answers   *store.AnswerLog
	evals     *store.EvaluationLog
	sleeps    []time.Duration
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	composer, err := prompt.NewComposer(prompt.StyleDynamic)
	require.NoError(t, err)

	f := &fixture{
		dir:       dir,
		generator: &answeringGenerator{},
		judge:     &scriptedJudge{replies: map[string]string{}},
		answers:   store.NewAnswerLog(filepath.Join(dir, "answers.json")),
		evals:     store.NewEvaluationLog(filepath.Join(dir, "evaluations.txt")),
	}
	f.runner = f.build(composer)
	return f
}

func (f *fixture) build(composer *prompt.Composer) *Runner {
	r := NewRunner(Config{
		Generator:            f.generator,
		GeneratorModel:       "gen-model",
		GeneratorTemperature: 1.0,
		Judge:                f.judge,
		Composer:             composer,
		Answers:              f.answers,
		Evaluations:          f.evals,
		Throttle:             time.Second,
	})
	r.sleep = func(_ context.Context, d time.Duration) error {
		f.sleeps = append(f.sleeps, d)
		return nil
	}
	return r
}

func readIndices(t *testing.T, path string) []int {
	t.Helper()
	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	var out []int
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		head, _, ok := strings.Cut(scanner.Text(), ": ")
		require.True(t, ok)
		n, err := strconv.Atoi(head)
		require.NoError(t, err)
		out = append(out, n)
	}
	require.NoError(t, scanner.Err())
	return out
}

func expectedIndices(fromQuestion, toQuestion, perQuestion int) []int {
	var out []int
	for g := fromQuestion - 1; g < toQuestion; g++ {
		for s := 0; s < perQuestion; s++ {
			out = append(out, g*10+s+1)
		}
	}
	return out
}

func TestRunFullCorpus(t *testing.T) {
	f := newFixture(t)
	f.judge.replies["Q05 answer B"] = "Originality: 5 Feasibility: 4 Value: 5 Hallucination: No"
	f.judge.replies["Q12 answer A"] = "Originality: 4 Feasibility: 3 Value: 4 Hallucination: Yes"
	f.judge.replies["Q15 answer C"] = "Originality: 1 Feasibility: 1 Value: 1 Hallucination: Yes"

	report, err := f.runner.Run(context.Background(), testCorpus(), 1)
	require.NoError(t, err)

	assert.Equal(t, 20, report.Questions)
	assert.Equal(t, 60, report.Answers)
	assert.Equal(t, 20, report.LastQuestion)
	assert.Equal(t, 60, f.judge.calls)

	// Exactly one line per answer, in strictly increasing index order.
	assert.Equal(t, expectedIndices(1, 20, 3), readIndices(t, f.evals.Path()))

	records, err := f.answers.Records()
	require.NoError(t, err)
	require.Len(t, records, 20)
	for i, rec := range records {
		assert.Equal(t, i+1, rec.QuestionID)
	}
	assert.Equal(t, "Robotics", records[10].Field)
	assert.Equal(t, []string{"Q01 answer A", "Q01 answer B", "Q01 answer C"}, records[0].Answers)

	// The run-wide best positive survives the later lower-scoring
	// qualifier; the last hallucination wins the negative slot.
	assert.Equal(t, exemplar.State{
		Positive: &exemplar.Positive{Score: 14, Text: "Q05 answer B"},
		Negative: &exemplar.Negative{Text: "Q15 answer C"},
	}, report.Exemplars)

	// Exemplars reach the next prompt, not the current one.
	assert.NotContains(t, f.generator.requests[4].UserMessage, "Positive Example")
	assert.Contains(t, f.generator.requests[5].UserMessage, "Positive Example:\nQ05 answer B\n")
	assert.NotContains(t, f.generator.requests[11].UserMessage, "Negative Example")
	assert.Contains(t, f.generator.requests[12].UserMessage, "Negative Example (Hallucination):\nQ12 answer A\n")

	// Throttle between questions, never after the last one.
	assert.Len(t, f.sleeps, 19)
}

func TestRunGeneratorRequest(t *testing.T) {
	f := newFixture(t)

	_, err := f.runner.Run(context.Background(), testCorpus(), 20)
	require.NoError(t, err)

	require.Len(t, f.generator.requests, 1)
	req := f.generator.requests[0]
	assert.Equal(t, "gen-model", req.Model)
	assert.Empty(t, req.SystemMessage)
	assert.Equal(t, DefaultGeneratorMaxTokens, req.MaxTokens)
	require.NotNil(t, req.Temperature)
	assert.Equal(t, 1.0, *req.Temperature)
	assert.True(t, strings.HasSuffix(req.UserMessage, "\nField: Robotics\nQuestion: Q20"))
	assert.Empty(t, f.sleeps)
}

func TestRunResumesWithoutGapsOrDuplicates(t *testing.T) {
	f := newFixture(t)
	f.generator.failOn = 8

	_, err := f.runner.Run(context.Background(), testCorpus(), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "question 8")

	last, ok, err := f.evals.LastIndex()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 63, last)

	records, err := f.answers.Records()
	require.NoError(t, err)
	require.Len(t, records, 7)
	assert.Equal(t, 7, records[6].QuestionID)

	next := NextStartQuestion(last, len(records[6].Answers))
	assert.Equal(t, 8, next)

	f.generator.failOn = 0
	report, err := f.runner.Run(context.Background(), testCorpus(), next)
	require.NoError(t, err)
	assert.Equal(t, 13, report.Questions)

	// Exemplar state restarts empty: the resumed first prompt has none.
	assert.NotContains(t, f.generator.requests[8].UserMessage, "Example")

	assert.Equal(t, expectedIndices(1, 20, 3), readIndices(t, f.evals.Path()))
}

func TestRunMalformedVerdictAborts(t *testing.T) {
	f := newFixture(t)
	f.judge.replies["Q02 answer B"] = "Originality: high Feasibility: 3 Value: 4 Hallucination: No"

	report, err := f.runner.Run(context.Background(), testCorpus(), 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, judge.ErrMalformedVerdict)
	assert.Equal(t, 1, report.Questions)

	// Answers were persisted before evaluation began; the bad reply and
	// everything after it never reached the evaluation log.
	records, err := f.answers.Records()
	require.NoError(t, err)
	assert.Len(t, records, 2)
	assert.Equal(t, []int{1, 2, 3, 11}, readIndices(t, f.evals.Path()))
	assert.Equal(t, 2, f.generator.calls)
}

func TestRunRerunsPartlyJudgedQuestion(t *testing.T) {
	f := newFixture(t)
	f.judge.replies["Q02 answer C"] = "Originality: ? Feasibility: 3 Value: 4 Hallucination: No"

	_, err := f.runner.Run(context.Background(), testCorpus(), 1)
	require.ErrorIs(t, err, judge.ErrMalformedVerdict)

	last, ok, err := f.evals.LastIndex()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 12, last)

	records, err := f.answers.Records()
	require.NoError(t, err)
	require.Len(t, records, 2)
	next := NextStartQuestion(last, len(records[1].Answers))
	assert.Equal(t, 2, next)

	delete(f.judge.replies, "Q02 answer C")
	_, err = f.runner.Run(context.Background(), testCorpus(), next)
	require.NoError(t, err)

	// Question 2 is judged again from its first answer; nothing is skipped.
	want := append([]int{1, 2, 3, 11, 12}, expectedIndices(2, 20, 3)...)
	assert.Equal(t, want, readIndices(t, f.evals.Path()))
}

func TestRunCapsAnswersPerQuestion(t *testing.T) {
	f := newFixture(t)
	f.generator.reply = func(q string) string {
		blocks := make([]string, 11)
		for i := range blocks {
			blocks[i] = fmt.Sprintf("%s idea %d", q, i+1)
		}
		return strings.Join(blocks, "\n\n")
	}

	report, err := f.runner.Run(context.Background(), testCorpus(), 19)
	require.NoError(t, err)
	assert.Equal(t, 20, report.Answers)
	assert.Equal(t, 20, f.judge.calls)

	// Indices stay inside each question's range and never repeat.
	assert.Equal(t, expectedIndices(19, 20, 10), readIndices(t, f.evals.Path()))

	records, err := f.answers.Records()
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Len(t, records[0].Answers, judge.AnswersPerQuestion)
	assert.Equal(t, "Q19 idea 10", records[0].Answers[9])
}

func TestRunEmptyReplyIsLogged(t *testing.T) {
	f := newFixture(t)
	f.generator.reply = func(string) string { return "  \n\n " }

	var logs bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&logs, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	report, err := f.runner.Run(context.Background(), testCorpus(), 20)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Questions)
	assert.Zero(t, report.Answers)
	assert.Zero(t, f.judge.calls)
	assert.Contains(t, logs.String(), "generator returned no answers")

	_, ok, err := f.evals.LastIndex()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRunStartOutOfRangeFailsBeforeServiceCalls(t *testing.T) {
	for _, start := range []int{0, 21} {
		f := newFixture(t)

		_, err := f.runner.Run(context.Background(), testCorpus(), start)
		require.Error(t, err)
		assert.ErrorIs(t, err, corpus.ErrStartOutOfRange)
		assert.Zero(t, f.generator.calls)
		assert.Zero(t, f.judge.calls)
	}
}

func TestRunCancelled(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	f.runner.SetProgressFunc(func(p Progress) {
		if p.Phase == PhaseUpdatingExemplars && p.Question.Number() == 3 {
			cancel()
		}
	})

	report, err := f.runner.Run(ctx, testCorpus(), 1)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 3, report.Questions)
	assert.Equal(t, 3, f.generator.calls)
}

func TestRunProgressPhases(t *testing.T) {
	f := newFixture(t)
	var phases []Phase
	var raws []string
	f.runner.SetProgressFunc(func(p Progress) {
		phases = append(phases, p.Phase)
		if p.Raw != "" {
			raws = append(raws, fmt.Sprintf("%d: %s", p.AnswerIndex, p.Raw))
		}
	})

	_, err := f.runner.Run(context.Background(), testCorpus(), 20)
	require.NoError(t, err)

	assert.Equal(t, []Phase{
		PhaseAwaitingGeneration,
		PhaseAwaitingEvaluation,
		PhaseAwaitingEvaluation,
		PhaseAwaitingEvaluation,
		PhaseAwaitingEvaluation,
		PhaseUpdatingExemplars,
		PhaseDone,
	}, phases)
	require.Len(t, raws, 3)
	assert.True(t, strings.HasPrefix(raws[0], "191: Originality: 2"))
}

func TestRunWithJudge(t *testing.T) {
	f := newFixture(t)
	judgeClient := &testutil.MockLLMClient{
		DefaultResponse: "Originality: 4 Feasibility: 4 Value: 4 Hallucination: No",
	}
	composer, err := prompt.NewComposer(prompt.StyleStandard)
	require.NoError(t, err)

	r := f.build(composer)
	r.config.Judge = judge.NewJudge(judgeClient, judge.Config{Model: "judge-model"})

	report, err := r.Run(context.Background(), testCorpus(), 19)
	require.NoError(t, err)

	assert.Equal(t, 6, judgeClient.Calls)
	assert.Equal(t, judge.UserMessage("Q20", "Q20 answer C"), judgeClient.LastRequest().UserMessage)
	assert.Equal(t, judge.EvaluationPrompt, judgeClient.LastRequest().SystemMessage)
	require.NotNil(t, report.Exemplars.Positive)
	assert.Equal(t, "Q19 answer A", report.Exemplars.Positive.Text)

	// Fixed styles never show exemplars to the generator.
	assert.NotContains(t, f.generator.requests[1].UserMessage, "Positive Example")
}

func TestRunRejectsIncompleteConfig(t *testing.T) {
	r := NewRunner(Config{})
	_, err := r.Run(context.Background(), testCorpus(), 1)
	assert.Error(t, err)
}
