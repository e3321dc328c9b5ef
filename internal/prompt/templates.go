package prompt

const requirements = `1. Ensure feasibility based on scientific principles and technological trends.
2. Propose novel concepts or methods, avoiding unsupported speculation.
3. Ensure the answer has value for the target field.
4. Maintain logical rigor without contradictions or vague statements.
`

const format = "Format: Plain text, no numbering or Markdown. Each answer is separated by a blank line.\n"

const dynamicTemplate = "Assume you are an expert in the given field. " +
	"Please provide answers to the following question, not exceeding 70 tokens each. " +
	"Requirements:\n" + requirements + format +
	"{{with .Positive}}Positive Example:\n{{.Text}}\n{{end}}" +
	"{{with .Negative}}Negative Example (Hallucination):\n{{.Text}}\n{{end}}" +
	"\nField: {{.Field}}\nQuestion: {{.Question}}"

const fixedHeader = "Assume you are an expert in {{.Field}}.\n" +
	"Please provide answers to the following question, not exceeding 70 tokens each. Requirements:\n"

const standardTemplate = fixedHeader + requirements + format +
	"Question: {{.Question}}"

const chainOfThoughtTemplate = fixedHeader + requirements +
	"5. Think step by step before answering the question.\n" + format +
	"Question: {{.Question}}"

const retrievalTemplate = fixedHeader + requirements +
	"5. Rely primarily on the following principle; if it is insufficient, general scientific knowledge may be used, " +
	"but speculation and contradictions must be avoided: {{.Principle}}\n" + format +
	"Question: {{.Question}}"

const relaxedTemplate = fixedHeader +
	"1. Propose novel concepts or methods, avoiding unsupported speculation.\n" +
	"2. Ensure the answer has potential value for the target field.\n" + format +
	"Question: {{.Question}}"
