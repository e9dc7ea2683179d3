package ai

import (
	"bytes"
	"text/template"
)

// CommitSystemPrompt is the system prompt for commit message generation.
const CommitSystemPrompt = `You are a highly knowledgeable assistant specialized in software development and version control systems.`

// CommitUserPromptTemplate is the user prompt template for commit message generation.
const CommitUserPromptTemplate = `The following Git diff input is in Unified Diff format, which displays changes made to files in a version control system.
Analyze the changes and generate a clear, concise commit message that summarizes the main modifications.
Focus on describing the purpose or function of the changes.
Generate a concise commit message following conventional commits format.
Requirements:
- Single line
- Max 50 characters

Git diff:
{{.Diff}}
`

// PullRequestSystemPrompt is the system prompt for pull request generation.
const PullRequestSystemPrompt = `You are a helpful assistant specialized in creating clear and informative pull request descriptions. Focus on making the changes easy to understand and review.`

// PullRequestUserPromptTemplate is the user prompt template for pull request generation.
const PullRequestUserPromptTemplate = `Based on the following git diff and commit messages, generate a pull request title and detailed body.
The body should include:
- A summary of changes
- Key modifications
- Any important notes

Commits:
{{.Commits}}

Diff:
{{.Diff}}

Format the response exactly as:
TITLE: <title>
BODY:
<body>
`

// PromptTemplate pairs a system prompt with a user prompt template.
type PromptTemplate struct {
	SystemPrompt string
	UserPrompt   string
	tmpl         *template.Template
}

// PromptData contains the data used to render a user prompt template.
type PromptData struct {
	Diff    string
	Commits string
}

// NewCommitPromptTemplate creates the prompt template for commit messages.
func NewCommitPromptTemplate() *PromptTemplate {
	return &PromptTemplate{
		SystemPrompt: CommitSystemPrompt,
		UserPrompt:   CommitUserPromptTemplate,
	}
}

// NewPullRequestPromptTemplate creates the prompt template for pull requests.
func NewPullRequestPromptTemplate() *PromptTemplate {
	return &PromptTemplate{
		SystemPrompt: PullRequestSystemPrompt,
		UserPrompt:   PullRequestUserPromptTemplate,
	}
}

// NewPromptTemplateWithCustom overrides the prompts of base.
// If systemPrompt or userPrompt is empty, the one from base is kept.
func NewPromptTemplateWithCustom(base *PromptTemplate, systemPrompt, userPrompt string) *PromptTemplate {
	pt := &PromptTemplate{
		SystemPrompt: base.SystemPrompt,
		UserPrompt:   base.UserPrompt,
	}

	if systemPrompt != "" {
		pt.SystemPrompt = systemPrompt
	}
	if userPrompt != "" {
		pt.UserPrompt = userPrompt
	}

	return pt
}

// RenderUserPrompt renders the user prompt template with the given data.
func (pt *PromptTemplate) RenderUserPrompt(data *PromptData) (string, error) {
	if pt.tmpl == nil {
		tmpl, err := template.New("userPrompt").Parse(pt.UserPrompt)
		if err != nil {
			return "", err
		}
		pt.tmpl = tmpl
	}

	var buf bytes.Buffer
	if err := pt.tmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}

// GetSystemPrompt returns the system prompt.
func (pt *PromptTemplate) GetSystemPrompt() string {
	return pt.SystemPrompt
}
