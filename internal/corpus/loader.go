package corpus

import (
	"embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed all:testdata
var embeddedCorpora embed.FS

// Load loads a corpus by name, searching first in the external directory
// (if provided), then in the embedded corpora.
func Load(name string, externalDir string) (*Corpus, error) {
	if externalDir != "" {
		dir := filepath.Join(externalDir, name)
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return loadFromFS(os.DirFS(dir), name)
		}
	}

	// embed.FS always uses forward slashes.
	subFS, err := fs.Sub(embeddedCorpora, path.Join("testdata", name))
	if err != nil {
		return nil, fmt.Errorf("corpus %q not found: %w", name, err)
	}
	return loadFromFS(subFS, name)
}

// List returns the names of all available corpora.
func List(externalDir string) ([]string, error) {
	seen := make(map[string]bool)
	var names []string

	entries, err := fs.ReadDir(embeddedCorpora, "testdata")
	if err == nil {
		for _, e := range entries {
			if e.IsDir() {
				seen[e.Name()] = true
				names = append(names, e.Name())
			}
		}
	}

	if externalDir != "" {
		entries, err := os.ReadDir(externalDir)
		if err == nil {
			for _, e := range entries {
				if e.IsDir() && !seen[e.Name()] {
					names = append(names, e.Name())
				}
			}
		}
	}

	return names, nil
}

func loadFromFS(fsys fs.FS, name string) (*Corpus, error) {
	configData, err := fs.ReadFile(fsys, "config.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to read config.yaml for corpus %q: %w", name, err)
	}

	var c Corpus
	if err := yaml.Unmarshal(configData, &c); err != nil {
		return nil, fmt.Errorf("failed to parse config.yaml for corpus %q: %w", name, err)
	}

	if c.QuestionsFile == "" {
		c.QuestionsFile = "questions.csv"
	}
	if len(c.Fields) == 0 {
		return nil, fmt.Errorf("corpus %q declares no fields", name)
	}

	questions, principles, err := loadQuestionsFromFS(fsys, c.QuestionsFile, c.QuestionColumn, c.PrincipleColumn)
	if err != nil {
		return nil, fmt.Errorf("failed to load questions for corpus %q: %w", name, err)
	}
	c.Questions = questions
	c.Principles = principles

	if want := len(c.Fields) * QuestionsPerField; len(questions) != want {
		return nil, fmt.Errorf("%w: corpus %q has %d fields but %d questions (want %d)",
			ErrShapeMismatch, name, len(c.Fields), len(questions), want)
	}

	return &c, nil
}

// loadQuestionsFromFS reads the question and principle columns. Rows with an
// empty question are skipped; a missing principle yields an empty string.
func loadQuestionsFromFS(fsys fs.FS, filename string, questionCol, principleCol *int) ([]string, []string, error) {
	f, err := fsys.Open(filename)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s: %w", filename, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	colIndex := make(map[string]int)
	for i, col := range header {
		colIndex[strings.TrimSpace(col)] = i
	}

	qCol := -1
	if questionCol != nil {
		qCol = *questionCol
	} else if i, ok := colIndex["Question"]; ok {
		qCol = i
	}
	if qCol < 0 || qCol >= len(header) {
		return nil, nil, fmt.Errorf("question column not found in CSV header")
	}

	pCol := -1
	if principleCol != nil {
		pCol = *principleCol
	} else if i, ok := colIndex["Principle"]; ok {
		pCol = i
	}

	var questions, principles []string
	for lineNum := 2; ; lineNum++ { // 1-indexed, after header.
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read CSV row %d: %w", lineNum, err)
		}
		if qCol >= len(record) || strings.TrimSpace(record[qCol]) == "" {
			continue
		}

		principle := ""
		if pCol >= 0 && pCol < len(record) {
			principle = strings.TrimSpace(record[pCol])
		}
		questions = append(questions, strings.TrimSpace(record[qCol]))
		principles = append(principles, principle)
	}

	return questions, principles, nil
}
