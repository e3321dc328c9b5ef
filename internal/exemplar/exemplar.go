// Package exemplar tracks the answers shown back to the generator as
// few-shot examples: the best-scoring qualifying answer of the run and the
// most recent hallucinated one.
package exemplar

import "github.com/giantswarm/creativity-bench/internal/judge"

// Positive is the best qualifying answer seen so far.
type Positive struct {
	Score int
	Text  string
}

// Negative is the most recent answer flagged as a hallucination.
type Negative struct {
	Text string
}

// State holds at most one positive and one negative exemplar. It lives for
// one run and is never persisted.
type State struct {
	Positive *Positive
	Negative *Negative
}

// PositiveScore returns the held positive score, or 0 when there is none.
func (s *State) PositiveScore() int {
	if s == nil || s.Positive == nil {
		return 0
	}
	return s.Positive.Score
}

// Qualifies reports whether a verdict meets the positive-exemplar thresholds.
func Qualifies(v judge.Verdict) bool {
	return v.HighQuality()
}

// Selector collects the candidates of one question's answer batch.
//
// Positive candidates must qualify and beat the best score seen so far,
// seeded from the run state, so ties never replace. Every hallucinated
// candidate overwrites the negative slot: last one wins, regardless of score.
type Selector struct {
	best     int
	positive *Positive
	negative *Negative
}

// NewSelector starts a selection round against the given run state.
func NewSelector(st *State) *Selector {
	return &Selector{best: st.PositiveScore()}
}

// Consider offers one judged answer to the selector.
func (s *Selector) Consider(answer string, v judge.Verdict) {
	if Qualifies(v) {
		if total := v.Total(); total > s.best {
			s.best = total
			s.positive = &Positive{Score: total, Text: answer}
		}
	}
	if v.Hallucination {
		s.negative = &Negative{Text: answer}
	}
}

// Commit writes any updated slot into st. Slots without a new candidate
// keep their previous exemplar. It reports whether anything changed.
func (s *Selector) Commit(st *State) bool {
	changed := false
	if s.positive != nil {
		st.Positive = s.positive
		changed = true
	}
	if s.negative != nil {
		st.Negative = s.negative
		changed = true
	}
	return changed
}
