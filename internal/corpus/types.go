package corpus

// QuestionsPerField is the fixed number of questions in every field.
const QuestionsPerField = 10

// Corpus is a loaded question corpus: an ordered list of fields, each owning
// exactly QuestionsPerField consecutive questions.
type Corpus struct {
	Name          string   `yaml:"name"`
	Description   string   `yaml:"description"`
	Version       string   `yaml:"version"`
	Fields        []string `yaml:"fields"`
	QuestionsFile string   `yaml:"questions_file"`

	// QuestionColumn and PrincipleColumn are 0-based CSV column indices.
	// When unset, the "Question" and "Principle" header columns are used.
	QuestionColumn  *int `yaml:"question_column,omitempty"`
	PrincipleColumn *int `yaml:"principle_column,omitempty"`

	Questions  []string `yaml:"-"` // loaded separately from CSV
	Principles []string `yaml:"-"`
}

// Question is a single benchmark question. GlobalIndex is 0-based across
// the whole corpus.
type Question struct {
	GlobalIndex int
	Field       string
	Text        string
	Principle   string
}

// Number returns the 1-based question number used in logs and on the CLI.
func (q Question) Number() int {
	return q.GlobalIndex + 1
}

// FieldBatch is the remaining slice of one field's questions.
type FieldBatch struct {
	Index     int
	Field     string
	Questions []Question
}

// Size returns the number of questions in the corpus.
func (c *Corpus) Size() int {
	return len(c.Questions)
}

// Partition resumes iteration over this corpus at startQuestion (1-based).
func (c *Corpus) Partition(startQuestion int) ([]FieldBatch, error) {
	return Partition(c.Fields, c.Questions, c.Principles, startQuestion)
}
