package judge

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLogLine(t *testing.T) {
	idx, v, err := ParseLogLine("12: Originality: 4 Feasibility: 3 Value: 5 Hallucination: Yes")
	require.NoError(t, err)
	assert.Equal(t, 12, idx)
	assert.Equal(t, Verdict{Originality: 4, Feasibility: 3, Value: 5, Hallucination: true}, v)

	_, _, err = ParseLogLine("no separator here")
	assert.Error(t, err)

	_, _, err = ParseLogLine("x: Originality: 4 Feasibility: 3 Value: 5 Hallucination: No")
	assert.Error(t, err)

	idx, _, err = ParseLogLine("3: garbage")
	assert.Equal(t, 3, idx)
	assert.ErrorIs(t, err, ErrMalformedVerdict)
}

func TestSummarize(t *testing.T) {
	log := strings.Join([]string{
		"1: Originality: 4 Feasibility: 3 Value: 4 Hallucination: No",
		"2: Originality: 2 Feasibility: 4 Value: 2 Hallucination: Yes",
		"",
		"11: Originality: 5 Feasibility: 5 Value: 5 Hallucination: Yes",
		"12: Originality: 5 Feasibility: 1 Value: 3 Hallucination: No",
	}, "\n")

	s, err := Summarize(strings.NewReader(log))
	require.NoError(t, err)

	assert.Equal(t, 4, s.Lines)
	assert.Equal(t, 4, s.Parsed)
	assert.Equal(t, 0, s.Unparsed)
	assert.True(t, s.AllLinesParsed)
	assert.Equal(t, 2, s.Questions)
	assert.Equal(t, 2, s.HallucinationYes)
	assert.Equal(t, 2, s.HallucinationNo)
	assert.Equal(t, 2, s.IntelligentHallucinations)

	require.NotNil(t, s.MeanOriginality)
	assert.InDelta(t, 4.0, *s.MeanOriginality, 0.001)
	assert.InDelta(t, 3.25, *s.MeanFeasibility, 0.001)
	assert.InDelta(t, 3.5, *s.MeanValue, 0.001)

	// Per-question originality means are 3 and 5: variance 1.
	require.NotNil(t, s.OriginalityVariance)
	assert.InDelta(t, 1.0, *s.OriginalityVariance, 0.0001)
}

func TestSummarizeCountsUnparsedLines(t *testing.T) {
	log := "1: Originality: 3 Feasibility: 3 Value: 3 Hallucination: No\n2: error from judge\n"

	s, err := Summarize(strings.NewReader(log))
	require.NoError(t, err)
	assert.Equal(t, 2, s.Lines)
	assert.Equal(t, 1, s.Parsed)
	assert.Equal(t, 1, s.Unparsed)
	assert.False(t, s.AllLinesParsed)
	assert.InDelta(t, 0.0, *s.OriginalityVariance, 0.0001)
}

func TestSummarizeEmpty(t *testing.T) {
	s, err := Summarize(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, 0, s.Lines)
	assert.Nil(t, s.MeanOriginality)
	assert.Nil(t, s.OriginalityVariance)
	assert.True(t, s.AllLinesParsed)
}

func TestSummarizeFileAndWrite(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "judge_dynamic_evaluations.txt")
	require.NoError(t, os.WriteFile(logPath,
		[]byte("1: Originality: 4 Feasibility: 4 Value: 4 Hallucination: No\n"), 0o644))

	s, err := SummarizeFile(logPath)
	require.NoError(t, err)
	assert.Equal(t, logPath, s.Metadata.EvaluationFile)

	out, err := WriteSummaryFile(s, logPath)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "judge_dynamic_evaluations_summary.json"), out)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, float64(1), decoded["parsed"])
}

func TestSummarizeFileMissing(t *testing.T) {
	_, err := SummarizeFile(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}
