package corpus

import (
	"errors"
	"fmt"
)

var (
	// ErrStartOutOfRange is returned when the starting question lies outside the corpus.
	ErrStartOutOfRange = errors.New("start question out of range")

	// ErrShapeMismatch is returned when questions, principles and fields do
	// not describe a grid of QuestionsPerField questions per field.
	ErrShapeMismatch = errors.New("corpus shape mismatch")
)

// RangeError reports an out-of-range starting question.
type RangeError struct {
	Start int
	Size  int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("start question %d outside corpus of %d questions", e.Start, e.Size)
}

func (e *RangeError) Unwrap() error {
	return ErrStartOutOfRange
}

// Partition slices the flat question and principle lists into per-field
// batches, starting at the 1-based startQuestion. The first returned batch
// is trimmed to begin at (startQuestion-1) % QuestionsPerField.
func Partition(fields, questions, principles []string, startQuestion int) ([]FieldBatch, error) {
	if len(questions) != len(principles) {
		return nil, fmt.Errorf("%w: %d questions but %d principles", ErrShapeMismatch, len(questions), len(principles))
	}
	if len(questions) != len(fields)*QuestionsPerField {
		return nil, fmt.Errorf("%w: %d fields need %d questions, got %d",
			ErrShapeMismatch, len(fields), len(fields)*QuestionsPerField, len(questions))
	}
	if startQuestion < 1 || startQuestion > len(questions) {
		return nil, &RangeError{Start: startQuestion, Size: len(questions)}
	}

	startGlobal := startQuestion - 1
	startField := startGlobal / QuestionsPerField
	startInField := startGlobal % QuestionsPerField

	batches := make([]FieldBatch, 0, len(fields)-startField)
	for fi := startField; fi < len(fields); fi++ {
		first := 0
		if fi == startField {
			first = startInField
		}

		batch := FieldBatch{
			Index:     fi,
			Field:     fields[fi],
			Questions: make([]Question, 0, QuestionsPerField-first),
		}
		for qi := first; qi < QuestionsPerField; qi++ {
			g := fi*QuestionsPerField + qi
			batch.Questions = append(batch.Questions, Question{
				GlobalIndex: g,
				Field:       fields[fi],
				Text:        questions[g],
				Principle:   principles[g],
			})
		}
		batches = append(batches, batch)
	}

	return batches, nil
}
