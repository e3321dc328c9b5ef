package prompt

import "strings"

// Style selects how the generation prompt is built.
type Style string

const (
	// StyleDynamic carries the best and latest hallucinated answers forward
	// as exemplars.
	StyleDynamic Style = "dynamic"
	// StyleStandard is the plain instruction prompt.
	StyleStandard Style = "scp"
	// StyleChainOfThought asks the model to think step by step.
	StyleChainOfThought Style = "cot"
	// StyleRetrieval grounds the answer in the question's principle text.
	StyleRetrieval Style = "rag"
	// StyleRelaxed drops the feasibility and rigor constraints.
	StyleRelaxed Style = "rcp"
)

// Styles lists every supported style, default first.
func Styles() []Style {
	return []Style{StyleDynamic, StyleStandard, StyleChainOfThought, StyleRetrieval, StyleRelaxed}
}

// ParseStyle resolves a style name. The empty name selects StyleDynamic.
func ParseStyle(name string) (Style, error) {
	s := Style(strings.ToLower(strings.TrimSpace(name)))
	if s == "" {
		return StyleDynamic, nil
	}
	for _, known := range Styles() {
		if s == known {
			return s, nil
		}
	}
	return "", &UnsupportedStyleError{Name: name}
}

// UsesExemplars reports whether prompts of this style read exemplar state.
func (s Style) UsesExemplars() bool {
	return s == StyleDynamic
}

func (s Style) String() string {
	return string(s)
}

// UnsupportedStyleError is returned when an unknown prompt style is requested.
type UnsupportedStyleError struct {
	Name string
}

func (e *UnsupportedStyleError) Error() string {
	return "unsupported prompt style: " + e.Name
}
