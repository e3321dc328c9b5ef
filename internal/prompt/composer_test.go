package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giantswarm/creativity-bench/internal/corpus"
	"github.com/giantswarm/creativity-bench/internal/exemplar"
)

var question = corpus.Question{
	GlobalIndex: 4,
	Field:       "Renewable Energy",
	Text:        "How could wind turbines run without gearboxes?",
	Principle:   "Direct-drive generators couple the rotor to the generator shaft.",
}

func compose(t *testing.T, style Style, st *exemplar.State) string {
	t.Helper()
	c, err := NewComposer(style)
	require.NoError(t, err)
	out, err := c.Compose(question, st)
	require.NoError(t, err)
	return out
}

func TestCompose_DynamicWithoutExemplars(t *testing.T) {
	out := compose(t, StyleDynamic, &exemplar.State{})

	assert.True(t, strings.HasPrefix(out, "Assume you are an expert in the given field."))
	assert.True(t, strings.HasSuffix(out,
		"separated by a blank line.\n\nField: Renewable Energy\nQuestion: How could wind turbines run without gearboxes?"))
	assert.NotContains(t, out, "Positive Example")
	assert.NotContains(t, out, "Negative Example")
}

func TestCompose_DynamicWithExemplars(t *testing.T) {
	st := &exemplar.State{
		Positive: &exemplar.Positive{Score: 13, Text: "Use magnetic levitation bearings."},
		Negative: &exemplar.Negative{Text: "Perpetual motion rotors."},
	}

	out := compose(t, StyleDynamic, st)

	assert.Contains(t, out,
		"Positive Example:\nUse magnetic levitation bearings.\n"+
			"Negative Example (Hallucination):\nPerpetual motion rotors.\n"+
			"\nField: Renewable Energy\nQuestion: ")
}

func TestCompose_OnlyNegative(t *testing.T) {
	st := &exemplar.State{Negative: &exemplar.Negative{Text: "Cold fusion."}}

	out := compose(t, StyleDynamic, st)

	assert.NotContains(t, out, "Positive Example")
	assert.Contains(t, out, "blank line.\nNegative Example (Hallucination):\nCold fusion.\n\nField:")
}

func TestCompose_DoesNotMutateState(t *testing.T) {
	st := &exemplar.State{
		Positive: &exemplar.Positive{Score: 12, Text: "p"},
		Negative: &exemplar.Negative{Text: "n"},
	}
	before := *st
	pos, neg := *st.Positive, *st.Negative

	compose(t, StyleDynamic, st)

	assert.Equal(t, before, *st)
	assert.Equal(t, pos, *st.Positive)
	assert.Equal(t, neg, *st.Negative)
}

func TestCompose_FixedStyles(t *testing.T) {
	st := &exemplar.State{Positive: &exemplar.Positive{Score: 15, Text: "ignored"}}

	tests := []struct {
		style    Style
		contains []string
		excludes []string
	}{
		{
			style:    StyleStandard,
			contains: []string{"expert in Renewable Energy.", "4. Maintain logical rigor"},
			excludes: []string{"step by step", "Direct-drive"},
		},
		{
			style:    StyleChainOfThought,
			contains: []string{"5. Think step by step"},
		},
		{
			style:    StyleRetrieval,
			contains: []string{"Direct-drive generators couple the rotor"},
		},
		{
			style:    StyleRelaxed,
			contains: []string{"potential value"},
			excludes: []string{"feasibility", "logical rigor"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.style.String(), func(t *testing.T) {
			out := compose(t, tt.style, st)

			assert.True(t, strings.HasSuffix(out, "Question: "+question.Text))
			assert.NotContains(t, out, "ignored")
			for _, s := range tt.contains {
				assert.Contains(t, out, s)
			}
			for _, s := range tt.excludes {
				assert.NotContains(t, out, s)
			}
		})
	}
}

func TestCompose_NilState(t *testing.T) {
	out := compose(t, StyleDynamic, nil)
	assert.NotContains(t, out, "Example")
}
