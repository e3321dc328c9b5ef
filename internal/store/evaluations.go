package store

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// EvaluationLog is a plain-text log with one "<index>: <judge reply>" line
// per judged answer. It is only ever appended to.
type EvaluationLog struct {
	path string
}

// NewEvaluationLog returns an evaluation log stored at path.
func NewEvaluationLog(path string) *EvaluationLog {
	return &EvaluationLog{path: path}
}

// Path returns the file location.
func (l *EvaluationLog) Path() string {
	return l.path
}

// Append writes one line. Line breaks inside raw are flattened to spaces so
// every record stays on a single line.
func (l *EvaluationLog) Append(index int, raw string) error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("failed to create evaluation log directory: %w", err)
	}

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open evaluation log: %w", err)
	}

	line := fmt.Sprintf("%d: %s\n", index, flatten(raw))
	if _, err := f.WriteString(line); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to append evaluation: %w", err)
	}
	return f.Close()
}

// LastIndex returns the highest answer index in the log. ok is false when
// the log is missing or holds no indexed line.
func (l *EvaluationLog) LastIndex() (last int, ok bool, err error) {
	f, err := os.Open(l.path)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to open evaluation log: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		head, _, found := strings.Cut(scanner.Text(), ":")
		if !found {
			continue
		}
		n, convErr := strconv.Atoi(strings.TrimSpace(head))
		if convErr != nil {
			continue
		}
		if !ok || n > last {
			last, ok = n, true
		}
	}
	if err := scanner.Err(); err != nil {
		return 0, false, fmt.Errorf("failed to read evaluation log: %w", err)
	}
	return last, ok, nil
}

func flatten(s string) string {
	return strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(s)
}
