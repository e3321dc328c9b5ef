// Package prompt builds the generation prompt sent to the completion model.
package prompt

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/giantswarm/creativity-bench/internal/corpus"
	"github.com/giantswarm/creativity-bench/internal/exemplar"
)

var templates = map[Style]*template.Template{
	StyleDynamic:        template.Must(template.New("dynamic").Parse(dynamicTemplate)),
	StyleStandard:       template.Must(template.New("scp").Parse(standardTemplate)),
	StyleChainOfThought: template.Must(template.New("cot").Parse(chainOfThoughtTemplate)),
	StyleRetrieval:      template.Must(template.New("rag").Parse(retrievalTemplate)),
	StyleRelaxed:        template.Must(template.New("rcp").Parse(relaxedTemplate)),
}

// data is the template input. Positive and Negative are nil when the
// corresponding exemplar slot is empty, which drops the whole block.
type data struct {
	Field     string
	Question  string
	Principle string
	Positive  *exemplar.Positive
	Negative  *exemplar.Negative
}

// Composer renders prompts of a single style.
type Composer struct {
	style Style
	tmpl  *template.Template
}

// NewComposer returns a composer for the given style.
func NewComposer(style Style) (*Composer, error) {
	tmpl, ok := templates[style]
	if !ok {
		return nil, &UnsupportedStyleError{Name: string(style)}
	}
	return &Composer{style: style, tmpl: tmpl}, nil
}

// Style returns the composer's style.
func (c *Composer) Style() Style {
	return c.style
}

// Compose renders the prompt for q. The exemplar state is only read, and
// only by the dynamic style; st may be nil.
func (c *Composer) Compose(q corpus.Question, st *exemplar.State) (string, error) {
	d := data{
		Field:     q.Field,
		Question:  q.Text,
		Principle: q.Principle,
	}
	if st != nil && c.style.UsesExemplars() {
		d.Positive = st.Positive
		d.Negative = st.Negative
	}

	var buf bytes.Buffer
	if err := c.tmpl.Execute(&buf, d); err != nil {
		return "", fmt.Errorf("failed to render %s prompt: %w", c.style, err)
	}
	return buf.String(), nil
}
