// Package ui provides the terminal interaction for gait: the confirmation
// loop, styled output, the spinner and the setup wizard.
package ui

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

// markdownWidth is the wrap width for rendered pull request bodies.
const markdownWidth = 80

// styles holds the lipgloss styles for UI rendering.
type styles struct {
	title      lipgloss.Style
	message    lipgloss.Style
	prompt     lipgloss.Style
	success    lipgloss.Style
	errorStyle lipgloss.Style
	warning    lipgloss.Style
	info       lipgloss.Style
	rule       lipgloss.Style
}

// newStyles returns colored styles, or plain ones when colorEnabled is false.
func newStyles(colorEnabled bool) *styles {
	if !colorEnabled {
		return &styles{
			title:      lipgloss.NewStyle(),
			message:    lipgloss.NewStyle(),
			prompt:     lipgloss.NewStyle(),
			success:    lipgloss.NewStyle(),
			errorStyle: lipgloss.NewStyle(),
			warning:    lipgloss.NewStyle(),
			info:       lipgloss.NewStyle(),
			rule:       lipgloss.NewStyle(),
		}
	}

	return &styles{
		title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")),
		message: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("220")),
		prompt: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("42")),
		success: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("42")),
		errorStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196")),
		warning: lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")),
		info: lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")),
		rule: lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")),
	}
}

// RenderMarkdown renders md for the terminal. Without color it only wraps;
// if glamour fails the text is returned unchanged.
func RenderMarkdown(md string, colorEnabled bool) string {
	style := "dark"
	if !colorEnabled {
		style = "notty"
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(markdownWidth),
		glamour.WithPreservedNewLines(),
	)
	if err != nil {
		return md
	}

	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.Trim(out, "\n")
}
