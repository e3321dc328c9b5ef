// Package runner drives a benchmark run: for each question it generates a
// batch of answers, has every answer judged, and feeds the verdicts back
// into the exemplars used for the next prompt.
package runner

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/giantswarm/creativity-bench/internal/corpus"
	"github.com/giantswarm/creativity-bench/internal/exemplar"
	"github.com/giantswarm/creativity-bench/internal/judge"
	"github.com/giantswarm/creativity-bench/internal/llm"
	"github.com/giantswarm/creativity-bench/internal/prompt"
	"github.com/giantswarm/creativity-bench/internal/store"
)

// Generator defaults.
const (
	DefaultGeneratorTemperature = 1.0
	DefaultGeneratorMaxTokens   = 700
	DefaultThrottle             = time.Second
)

// Evaluator scores a single answer. *judge.Judge implements it.
type Evaluator interface {
	Evaluate(ctx context.Context, question, answer string) (judge.Evaluation, error)
}

// Config wires the services and logs a Runner works with.
type Config struct {
	Generator            llm.Client
	GeneratorModel       string
	GeneratorTemperature float64
	GeneratorMaxTokens   int

	Judge    Evaluator
	Composer *prompt.Composer

	Answers     *store.AnswerLog
	Evaluations *store.EvaluationLog

	// Throttle is the pause between questions. Zero disables it.
	Throttle time.Duration
}

// RunReport describes a finished run.
type RunReport struct {
	StartQuestion   int
	LastQuestion    int
	Questions       int
	Answers         int
	Exemplars       exemplar.State
	AnswersFile     string
	EvaluationsFile string
	Duration        time.Duration
}

// Runner processes questions strictly one at a time.
type Runner struct {
	config   Config
	progress ProgressFunc
	sleep    func(ctx context.Context, d time.Duration) error
}

// NewRunner creates a runner from cfg.
func NewRunner(cfg Config) *Runner {
	if cfg.GeneratorMaxTokens <= 0 {
		cfg.GeneratorMaxTokens = DefaultGeneratorMaxTokens
	}
	return &Runner{
		config: cfg,
		sleep:  sleepContext,
	}
}

// SetProgressFunc sets the progress callback.
func (r *Runner) SetProgressFunc(fn ProgressFunc) {
	r.progress = fn
}

// Run processes the corpus from startQuestion (1-based) to the end.
//
// Exemplar state starts empty on every call, including resumed runs.
// Any generation, judging or persistence failure aborts the run; questions
// completed before the failure stay in the logs.
func (r *Runner) Run(ctx context.Context, c *corpus.Corpus, startQuestion int) (*RunReport, error) {
	if r.config.Generator == nil || r.config.Judge == nil || r.config.Composer == nil {
		return nil, fmt.Errorf("runner is missing a generator, judge or prompt composer")
	}
	if r.config.Answers == nil || r.config.Evaluations == nil {
		return nil, fmt.Errorf("runner is missing an output log")
	}

	batches, err := c.Partition(startQuestion)
	if err != nil {
		return nil, fmt.Errorf("failed to partition corpus %s: %w", c.Name, err)
	}

	var questions []corpus.Question
	for _, b := range batches {
		questions = append(questions, b.Questions...)
	}

	start := time.Now()
	state := &exemplar.State{}
	report := &RunReport{
		StartQuestion:   startQuestion,
		AnswersFile:     r.config.Answers.Path(),
		EvaluationsFile: r.config.Evaluations.Path(),
	}

	slog.Info("starting benchmark run",
		"corpus", c.Name,
		"start_question", startQuestion,
		"questions", len(questions),
		"style", r.config.Composer.Style(),
		"generator", r.config.GeneratorModel,
	)

	for i, q := range questions {
		if err := ctx.Err(); err != nil {
			slog.Warn("benchmark run cancelled", "completed", i, "remaining", len(questions)-i)
			return r.finish(report, state, start), err
		}

		n, err := r.processQuestion(ctx, q, c.Size(), state)
		if err != nil {
			return r.finish(report, state, start), fmt.Errorf("question %d: %w", q.Number(), err)
		}
		report.Questions++
		report.Answers += n
		report.LastQuestion = q.Number()

		if i < len(questions)-1 && r.config.Throttle > 0 {
			if err := r.sleep(ctx, r.config.Throttle); err != nil {
				return r.finish(report, state, start), err
			}
		}
	}

	r.report(Progress{Phase: PhaseDone, Total: c.Size()})
	report = r.finish(report, state, start)

	slog.Info("benchmark run complete",
		"questions", report.Questions,
		"answers", report.Answers,
		"duration", report.Duration,
	)
	return report, nil
}

// processQuestion runs one question through generation, evaluation and
// exemplar update. It returns the number of answers judged.
func (r *Runner) processQuestion(ctx context.Context, q corpus.Question, total int, state *exemplar.State) (int, error) {
	r.report(Progress{Phase: PhaseAwaitingGeneration, Question: q, Total: total})

	text, err := r.config.Composer.Compose(q, state)
	if err != nil {
		return 0, err
	}

	resp, err := r.config.Generator.ChatCompletion(ctx, llm.ChatRequest{
		Model:       r.config.GeneratorModel,
		UserMessage: text,
		Temperature: llm.Float64Ptr(r.config.GeneratorTemperature),
		MaxTokens:   r.config.GeneratorMaxTokens,
	})
	if err != nil {
		return 0, fmt.Errorf("generation failed: %w", err)
	}

	answers := capAnswers(q, SplitAnswers(resp.Content))
	if _, err := r.config.Answers.Append(q.Number(), q.Field, q.Text, answers); err != nil {
		return 0, err
	}
	slog.Debug("answers generated", "question", q.Number(), "answers", len(answers))

	r.report(Progress{Phase: PhaseAwaitingEvaluation, Question: q, Total: total, Answers: len(answers)})

	verdicts := make([]judge.Verdict, len(answers))
	for slot, answer := range answers {
		ev, err := r.config.Judge.Evaluate(ctx, q.Text, answer)
		if err != nil {
			return 0, fmt.Errorf("answer %d: %w", slot+1, err)
		}

		idx := AnswerIndex(q.GlobalIndex, slot)
		if err := r.config.Evaluations.Append(idx, ev.Raw); err != nil {
			return 0, err
		}
		verdicts[slot] = ev.Verdict

		r.report(Progress{
			Phase:       PhaseAwaitingEvaluation,
			Question:    q,
			Total:       total,
			Slot:        slot,
			Answers:     len(answers),
			AnswerIndex: idx,
			Raw:         ev.Raw,
		})
	}

	r.report(Progress{Phase: PhaseUpdatingExemplars, Question: q, Total: total, Answers: len(answers)})

	sel := exemplar.NewSelector(state)
	for slot, answer := range answers {
		sel.Consider(answer, verdicts[slot])
	}
	if sel.Commit(state) {
		slog.Debug("exemplars updated", "question", q.Number(), "positive_score", state.PositiveScore())
	}

	return len(answers), nil
}

func (r *Runner) report(p Progress) {
	if r.progress != nil {
		r.progress(p)
	}
}

func (r *Runner) finish(report *RunReport, state *exemplar.State, start time.Time) *RunReport {
	report.Exemplars = *state
	report.Duration = time.Since(start)
	return report
}

// AnswerIndex returns the 1-based global index of an answer slot, as used
// in the evaluation log.
func AnswerIndex(globalQuestionIndex, slot int) int {
	return globalQuestionIndex*judge.AnswersPerQuestion + slot + 1
}

// QuestionOfIndex returns the 1-based question an answer index belongs to.
func QuestionOfIndex(answerIndex int) int {
	return (answerIndex-1)/judge.AnswersPerQuestion + 1
}

// NextStartQuestion returns the question to resume from after a log whose
// highest answer index is lastIndex. generated is the number of answers
// stored for that question; unless all of them were judged the question is
// run again. A generated count of zero means unknown, and then only a full
// batch of AnswersPerQuestion counts as finished.
func NextStartQuestion(lastIndex, generated int) int {
	if lastIndex < 1 {
		return 1
	}
	if generated <= 0 || generated > judge.AnswersPerQuestion {
		generated = judge.AnswersPerQuestion
	}
	question := QuestionOfIndex(lastIndex)
	judged := (lastIndex-1)%judge.AnswersPerQuestion + 1
	if judged < generated {
		return question
	}
	return question + 1
}

// capAnswers keeps at most AnswersPerQuestion answers so that answer
// indices never run into the next question's range.
func capAnswers(q corpus.Question, answers []string) []string {
	switch {
	case len(answers) == 0:
		slog.Warn("generator returned no answers, question will have no evaluations",
			"question", q.Number())
	case len(answers) > judge.AnswersPerQuestion:
		slog.Warn("generator returned too many answers, dropping the extra ones",
			"question", q.Number(),
			"answers", len(answers),
			"kept", judge.AnswersPerQuestion,
		)
		answers = answers[:judge.AnswersPerQuestion]
	}
	return answers
}

var blankLine = regexp.MustCompile(`\n[ \t]*\n`)

// SplitAnswers splits a completion into answers on blank lines. Answers are
// trimmed and empty ones dropped.
func SplitAnswers(completion string) []string {
	normalized := strings.ReplaceAll(completion, "\r\n", "\n")
	parts := blankLine.Split(strings.TrimSpace(normalized), -1)

	answers := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			answers = append(answers, p)
		}
	}
	return answers
}

// OutputPaths returns the answer and evaluation log locations for a run.
func OutputPaths(outputDir, generatorModel, judgeModel string, style prompt.Style) (answers, evaluations string) {
	answers = filepath.Join(outputDir, fmt.Sprintf("%s_%s_answers.json", sanitizeFilename(generatorModel), style))
	evaluations = filepath.Join(outputDir, fmt.Sprintf("%s_%s_evaluations.txt", sanitizeFilename(judgeModel), style))
	return answers, evaluations
}

// sanitizeFilename replaces characters unsafe for filenames with underscores.
func sanitizeFilename(name string) string {
	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
		" ", "_",
	)
	return replacer.Replace(name)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
