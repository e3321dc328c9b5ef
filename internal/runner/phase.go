package runner

import "github.com/giantswarm/creativity-bench/internal/corpus"

// Phase is the step the runner is in for the current question.
type Phase int

const (
	PhaseAwaitingGeneration Phase = iota
	PhaseAwaitingEvaluation
	PhaseUpdatingExemplars
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseAwaitingGeneration:
		return "awaiting_generation"
	case PhaseAwaitingEvaluation:
		return "awaiting_evaluation"
	case PhaseUpdatingExemplars:
		return "updating_exemplars"
	case PhaseDone:
		return "done"
	default:
		return "unknown"
	}
}

// Progress is reported on every phase change and after each judged answer.
type Progress struct {
	Phase    Phase
	Question corpus.Question
	Total    int

	// Set while evaluating: the answer slot, the number of answers for the
	// question, its global answer index and the raw judge reply.
	Slot        int
	Answers     int
	AnswerIndex int
	Raw         string
}

// ProgressFunc is called to report progress during a run.
type ProgressFunc func(p Progress)
