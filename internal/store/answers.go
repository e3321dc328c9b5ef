// Package store persists benchmark output as flat files: a JSON answer log
// rewritten atomically per question and a line-append evaluation log.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// AnswerRecord is one question's generated answers.
type AnswerRecord struct {
	QuestionID int      `json:"question_id"`
	Field      string   `json:"field"`
	Question   string   `json:"question"`
	Timestamp  string   `json:"timestamp"`
	Answers    []string `json:"answers"`
}

// AnswerLog is a JSON array of AnswerRecords on disk.
type AnswerLog struct {
	path string
	now  func() time.Time
}

// NewAnswerLog returns an answer log stored at path.
func NewAnswerLog(path string) *AnswerLog {
	return &AnswerLog{path: path, now: time.Now}
}

// Path returns the file location.
func (l *AnswerLog) Path() string {
	return l.path
}

// Append adds a record for the given question. The whole array is read,
// extended and written back through a temporary file that replaces the
// log by rename, so a crash never leaves a half-written array behind.
// A missing or unparsable log counts as empty.
func (l *AnswerLog) Append(questionID int, field, question string, answers []string) (AnswerRecord, error) {
	records, err := l.load()
	if err != nil {
		return AnswerRecord{}, err
	}

	rec := AnswerRecord{
		QuestionID: questionID,
		Field:      field,
		Question:   question,
		Timestamp:  l.now().Format(time.RFC3339),
		Answers:    answers,
	}
	records = append(records, rec)

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return AnswerRecord{}, fmt.Errorf("failed to marshal answer log: %w", err)
	}
	if err := writeFileAtomic(l.path, data, 0o644); err != nil {
		return AnswerRecord{}, fmt.Errorf("failed to write answer log: %w", err)
	}

	return rec, nil
}

// Records returns every stored record in insertion order.
func (l *AnswerLog) Records() ([]AnswerRecord, error) {
	return l.load()
}

func (l *AnswerLog) load() ([]AnswerRecord, error) {
	data, err := os.ReadFile(l.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []AnswerRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read answer log: %w", err)
	}

	var records []AnswerRecord
	if err := json.Unmarshal(data, &records); err != nil {
		slog.Warn("answer log is not a JSON array, starting over", "path", l.path, "error", err)
		return []AnswerRecord{}, nil
	}
	if records == nil {
		records = []AnswerRecord{}
	}
	return records, nil
}

// writeFileAtomic writes data to a temporary file in the target directory,
// syncs it and renames it over path.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}

	// Best effort: persist the rename itself.
	if d, err := os.Open(dir); err == nil {
		_ = d.Sync()
		_ = d.Close()
	}
	return nil
}
