// Package message inspects generated commit messages and reports
// non-blocking warnings before the operator confirms them.
package message

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"
)

// ValidCommitTypes contains all valid Conventional Commits types.
var ValidCommitTypes = []string{
	"feat", "fix", "docs", "style", "refactor",
	"test", "chore", "perf", "ci", "build", "revert",
}

// MaxSubjectLength is the subject length the generator is asked to stay within.
const MaxSubjectLength = 50

// conventionalCommitRegex matches the Conventional Commits format.
// Format: <type>(<scope>)!: <subject> or <type>: <subject>
var conventionalCommitRegex = regexp.MustCompile(`^([a-z]+)(\([^)]+\))?(!)?:\s*(.+)$`)

// CommitMessage is a commit message split into its Conventional Commits parts.
type CommitMessage struct {
	Type     string
	Scope    string
	Breaking bool
	Subject  string
	Body     string
}

// Parse splits raw text into a CommitMessage. A subject that does not follow
// the Conventional Commits format is kept whole in Subject.
func Parse(rawText string) *CommitMessage {
	cm := &CommitMessage{}
	rawText = strings.TrimSpace(rawText)
	if rawText == "" {
		return cm
	}

	subject, body, _ := strings.Cut(rawText, "\n")
	subject = strings.TrimSpace(subject)
	cm.Body = strings.TrimSpace(body)

	if m := conventionalCommitRegex.FindStringSubmatch(subject); m != nil && IsValidCommitType(m[1]) {
		cm.Type = m[1]
		cm.Scope = strings.Trim(m[2], "()")
		cm.Breaking = m[3] == "!"
		cm.Subject = strings.TrimSpace(m[4])
		return cm
	}

	cm.Subject = subject
	return cm
}

// FormatSubject formats the subject line in Conventional Commits format.
func (cm *CommitMessage) FormatSubject() string {
	if cm.Type == "" {
		return cm.Subject
	}

	prefix := cm.Type
	if cm.Scope != "" {
		prefix += "(" + cm.Scope + ")"
	}
	if cm.Breaking {
		prefix += "!"
	}
	return prefix + ": " + cm.Subject
}

// IsMultiLine returns true if the commit message has a body.
func (cm *CommitMessage) IsMultiLine() bool {
	return cm.Body != ""
}

// IsValidCommitType checks if the given type is a valid Conventional Commits type.
func IsValidCommitType(commitType string) bool {
	return slices.Contains(ValidCommitTypes, commitType)
}

// Lint returns human-readable warnings for rawText. Warnings never block a commit.
func Lint(rawText string) []string {
	cm := Parse(rawText)
	var warnings []string

	if cm.Type == "" {
		warnings = append(warnings, "message does not follow the Conventional Commits format (<type>: <subject>)")
	}

	if n := utf8.RuneCountInString(cm.FormatSubject()); n > MaxSubjectLength {
		warnings = append(warnings, fmt.Sprintf("subject line exceeds %d characters (%d chars)", MaxSubjectLength, n))
	}

	if cm.IsMultiLine() {
		warnings = append(warnings, "message spans multiple lines; only a single line was requested")
	}

	if strings.HasSuffix(cm.Subject, ".") {
		warnings = append(warnings, "subject line ends with a period")
	}

	return warnings
}
