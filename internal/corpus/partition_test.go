package corpus

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func grid(fields int) ([]string, []string, []string) {
	var names, questions, principles []string
	for f := 0; f < fields; f++ {
		names = append(names, fmt.Sprintf("field-%d", f))
		for q := 0; q < QuestionsPerField; q++ {
			questions = append(questions, fmt.Sprintf("q%d", f*QuestionsPerField+q))
			principles = append(principles, fmt.Sprintf("p%d", f*QuestionsPerField+q))
		}
	}
	return names, questions, principles
}

func TestPartitionFromStart(t *testing.T) {
	fields, questions, principles := grid(2)

	batches, err := Partition(fields, questions, principles, 1)
	require.NoError(t, err)
	require.Len(t, batches, 2)

	assert.Equal(t, 0, batches[0].Index)
	assert.Equal(t, "field-0", batches[0].Field)
	assert.Len(t, batches[0].Questions, 10)
	assert.Equal(t, Question{GlobalIndex: 0, Field: "field-0", Text: "q0", Principle: "p0"}, batches[0].Questions[0])
	assert.Equal(t, 19, batches[1].Questions[9].GlobalIndex)
}

func TestPartitionStartAtSecondField(t *testing.T) {
	fields, questions, principles := grid(3)

	batches, err := Partition(fields, questions, principles, 11)
	require.NoError(t, err)
	require.Len(t, batches, 2)

	first := batches[0]
	assert.Equal(t, 1, first.Index)
	assert.Len(t, first.Questions, 10)
	assert.Equal(t, 10, first.Questions[0].GlobalIndex)
	assert.Equal(t, "q10", first.Questions[0].Text)
	assert.Equal(t, 11, first.Questions[0].Number())
}

func TestPartitionTrimsFirstField(t *testing.T) {
	fields, questions, principles := grid(2)

	batches, err := Partition(fields, questions, principles, 7)
	require.NoError(t, err)
	require.Len(t, batches, 2)

	assert.Len(t, batches[0].Questions, 4)
	assert.Equal(t, 6, batches[0].Questions[0].GlobalIndex)
	assert.Equal(t, "p6", batches[0].Questions[0].Principle)
	assert.Len(t, batches[1].Questions, 10)
}

func TestPartitionLastQuestion(t *testing.T) {
	fields, questions, principles := grid(2)

	batches, err := Partition(fields, questions, principles, 20)
	require.NoError(t, err)
	require.Len(t, batches, 1)
	require.Len(t, batches[0].Questions, 1)
	assert.Equal(t, 19, batches[0].Questions[0].GlobalIndex)
}

func TestPartitionOutOfRange(t *testing.T) {
	fields, questions, principles := grid(2)

	for _, start := range []int{0, -3, 21, 100} {
		t.Run(fmt.Sprintf("start=%d", start), func(t *testing.T) {
			_, err := Partition(fields, questions, principles, start)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrStartOutOfRange)

			var rangeErr *RangeError
			require.True(t, errors.As(err, &rangeErr))
			assert.Equal(t, start, rangeErr.Start)
			assert.Equal(t, 20, rangeErr.Size)
		})
	}
}

func TestPartitionShapeMismatch(t *testing.T) {
	fields, questions, principles := grid(2)

	_, err := Partition(fields, questions, principles[:19], 1)
	assert.ErrorIs(t, err, ErrShapeMismatch)

	_, err = Partition(fields[:1], questions, principles, 1)
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestCorpusPartition(t *testing.T) {
	fields, questions, principles := grid(1)
	c := &Corpus{Fields: fields, Questions: questions, Principles: principles}

	batches, err := c.Partition(10)
	require.NoError(t, err)
	require.Len(t, batches, 1)
	assert.Equal(t, "q9", batches[0].Questions[0].Text)
}
