package judge

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"
)

// AnswersPerQuestion is the index stride of the evaluation log: answer
// indexes of question q (0-based) start at q*AnswersPerQuestion+1.
const AnswersPerQuestion = 10

// Summary holds aggregate statistics over an evaluation log.
type Summary struct {
	Metadata SummaryMetadata `json:"metadata"`

	Lines    int `json:"lines"`
	Parsed   int `json:"parsed"`
	Unparsed int `json:"unparsed"`

	Questions int `json:"questions"`

	MeanOriginality *float64 `json:"mean_originality"`
	MeanFeasibility *float64 `json:"mean_feasibility"`
	MeanValue       *float64 `json:"mean_value"`

	// OriginalityVariance is the population variance of the per-question
	// originality means.
	OriginalityVariance *float64 `json:"originality_variance"`

	HallucinationYes int `json:"hallucination_yes"`
	HallucinationNo  int `json:"hallucination_no"`

	// IntelligentHallucinations counts high-quality answers, whatever
	// their hallucination flag.
	IntelligentHallucinations int `json:"intelligent_hallucinations"`

	AllLinesParsed bool `json:"all_lines_parsed"`
}

// SummaryMetadata describes the summarized log.
type SummaryMetadata struct {
	Timestamp      string `json:"timestamp"`
	EvaluationFile string `json:"evaluation_file"`
}

// ParseLogLine splits an evaluation log line "<index>: <verdict>".
func ParseLogLine(line string) (int, Verdict, error) {
	head, rest, ok := strings.Cut(line, ":")
	if !ok {
		return 0, Verdict{}, fmt.Errorf("missing index separator in %q", line)
	}
	idx, err := strconv.Atoi(strings.TrimSpace(head))
	if err != nil {
		return 0, Verdict{}, fmt.Errorf("invalid answer index %q: %w", head, err)
	}
	v, err := ParseVerdict(rest)
	if err != nil {
		return idx, Verdict{}, err
	}
	return idx, v, nil
}

// SummarizeFile reads an evaluation log file and summarizes it.
func SummarizeFile(path string) (*Summary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open evaluation log: %w", err)
	}
	defer f.Close()

	s, err := Summarize(f)
	if err != nil {
		return nil, err
	}
	s.Metadata.EvaluationFile = path
	return s, nil
}

// Summarize aggregates the lines of an evaluation log. Blank lines are
// ignored; lines that do not parse are counted and skipped.
func Summarize(r io.Reader) (*Summary, error) {
	s := &Summary{
		Metadata: SummaryMetadata{Timestamp: time.Now().Format(time.RFC3339)},
	}

	var sumO, sumF, sumV int
	perQuestion := make(map[int][]int)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for lineNum := 1; scanner.Scan(); lineNum++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		s.Lines++

		idx, v, err := ParseLogLine(line)
		if err != nil {
			slog.Warn("skipping unparsable evaluation line", "line", lineNum, "error", err)
			s.Unparsed++
			continue
		}
		s.Parsed++

		sumO += v.Originality
		sumF += v.Feasibility
		sumV += v.Value
		if v.Hallucination {
			s.HallucinationYes++
		} else {
			s.HallucinationNo++
		}
		if v.HighQuality() {
			s.IntelligentHallucinations++
		}

		q := (idx - 1) / AnswersPerQuestion
		perQuestion[q] = append(perQuestion[q], v.Originality)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read evaluation log: %w", err)
	}

	s.AllLinesParsed = s.Unparsed == 0
	s.Questions = len(perQuestion)
	if s.Parsed == 0 {
		return s, nil
	}

	meanO := round2(float64(sumO) / float64(s.Parsed))
	meanF := round2(float64(sumF) / float64(s.Parsed))
	meanV := round2(float64(sumV) / float64(s.Parsed))
	s.MeanOriginality = &meanO
	s.MeanFeasibility = &meanF
	s.MeanValue = &meanV

	keys := make([]int, 0, len(perQuestion))
	for q := range perQuestion {
		keys = append(keys, q)
	}
	sort.Ints(keys)
	means := make([]float64, 0, len(keys))
	for _, q := range keys {
		means = append(means, meanInts(perQuestion[q]))
	}
	variance := round4(populationVariance(means))
	s.OriginalityVariance = &variance

	return s, nil
}

// WriteSummaryFile writes the summary as JSON next to the evaluation log.
func WriteSummaryFile(s *Summary, evaluationFile string) (string, error) {
	summaryFile := strings.TrimSuffix(evaluationFile, ".txt") + "_summary.json"

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal summary: %w", err)
	}

	if err := os.WriteFile(summaryFile, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write summary file: %w", err)
	}

	return summaryFile, nil
}

func meanInts(vals []int) float64 {
	sum := 0
	for _, v := range vals {
		sum += v
	}
	return float64(sum) / float64(len(vals))
}

func populationVariance(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	mean := 0.0
	for _, v := range vals {
		mean += v
	}
	mean /= float64(len(vals))

	sumSquaredDiff := 0.0
	for _, v := range vals {
		diff := v - mean
		sumSquaredDiff += diff * diff
	}
	return sumSquaredDiff / float64(len(vals))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
