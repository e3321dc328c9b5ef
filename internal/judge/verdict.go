package judge

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMalformedVerdict is matched by every parse failure.
var ErrMalformedVerdict = errors.New("malformed verdict")

// Verdict is the judge's structured assessment of one answer.
type Verdict struct {
	Originality   int  `json:"originality"`
	Feasibility   int  `json:"feasibility"`
	Value         int  `json:"value"`
	Hallucination bool `json:"hallucination"`
}

// Total is the sum of the three scores.
func (v Verdict) Total() int {
	return v.Originality + v.Feasibility + v.Value
}

// Thresholds of a high-quality answer.
const (
	HighOriginality = 4
	HighFeasibility = 3
	HighValue       = 4
)

// HighQuality reports whether every score meets its high-quality threshold.
// A hallucinated answer can still be high quality; summaries count those as
// intelligent hallucinations.
func (v Verdict) HighQuality() bool {
	return v.Originality >= HighOriginality && v.Feasibility >= HighFeasibility && v.Value >= HighValue
}

// MalformedVerdictError describes why a judge line could not be parsed.
type MalformedVerdictError struct {
	Line   string
	Token  int // offending token offset, -1 when the line is too short
	Reason string
}

func (e *MalformedVerdictError) Error() string {
	if e.Token < 0 {
		return fmt.Sprintf("malformed verdict %q: %s", e.Line, e.Reason)
	}
	return fmt.Sprintf("malformed verdict %q: token %d: %s", e.Line, e.Token, e.Reason)
}

func (e *MalformedVerdictError) Unwrap() error {
	return ErrMalformedVerdict
}

// Score bounds.
const (
	MinScore = 1
	MaxScore = 5
)

// verdictTokens is the minimum token count of
//
//	label score label score label score label yesno
const verdictTokens = 8

// ParseVerdict parses one judge line of the form
//
//	Originality: <1-5> Feasibility: <1-5> Value: <1-5> Hallucination: Yes|No
//
// Parsing is positional: the label tokens are skipped without inspection, so
// relabelled or translated lines parse the same way. Tokens after the
// eighth are ignored.
func ParseVerdict(line string) (Verdict, error) {
	p := &verdictParser{line: line, tokens: strings.Fields(line)}
	if len(p.tokens) < verdictTokens {
		return Verdict{}, p.fail(-1, fmt.Sprintf("want at least %d tokens, got %d", verdictTokens, len(p.tokens)))
	}

	var v Verdict
	var err error
	if v.Originality, err = p.labelledScore(); err != nil {
		return Verdict{}, err
	}
	if v.Feasibility, err = p.labelledScore(); err != nil {
		return Verdict{}, err
	}
	if v.Value, err = p.labelledScore(); err != nil {
		return Verdict{}, err
	}
	if v.Hallucination, err = p.labelledYesNo(); err != nil {
		return Verdict{}, err
	}
	return v, nil
}

type verdictParser struct {
	line   string
	tokens []string
	pos    int
}

func (p *verdictParser) fail(token int, reason string) error {
	return &MalformedVerdictError{Line: p.line, Token: token, Reason: reason}
}

// next returns the current token with surrounding quotes and punctuation
// stripped, and advances.
func (p *verdictParser) next() (string, int) {
	i := p.pos
	p.pos++
	return strings.Trim(p.tokens[i], `'"`+"`.,;"), i
}

func (p *verdictParser) labelledScore() (int, error) {
	p.next() // label
	tok, i := p.next()
	n, err := strconv.Atoi(tok)
	if err != nil {
		return 0, p.fail(i, fmt.Sprintf("score %q is not an integer", tok))
	}
	if n < MinScore || n > MaxScore {
		return 0, p.fail(i, fmt.Sprintf("score %d outside %d-%d", n, MinScore, MaxScore))
	}
	return n, nil
}

func (p *verdictParser) labelledYesNo() (bool, error) {
	p.next() // label
	tok, i := p.next()
	switch strings.ToLower(tok) {
	case "yes":
		return true, nil
	case "no":
		return false, nil
	default:
		return false, p.fail(i, fmt.Sprintf("hallucination flag %q is neither yes nor no", tok))
	}
}
