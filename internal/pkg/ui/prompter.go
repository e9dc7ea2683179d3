package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/gait/gait/internal/pkg/ai"
	apperrors "github.com/gait/gait/internal/pkg/errors"
)

// State is a state of the confirmation loop.
type State int

const (
	StateAwaitingDecision State = iota
	StateConfirmed
	StateEditing
	StateRejected
)

// String returns the string representation of a State.
func (s State) String() string {
	switch s {
	case StateAwaitingDecision:
		return "awaiting-decision"
	case StateConfirmed:
		return "confirmed"
	case StateEditing:
		return "editing"
	case StateRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Decision is the operator's answer to a proposed message.
type Decision int

const (
	DecisionConfirm Decision = iota
	DecisionEdit
	DecisionReject
)

// String returns the string representation of a Decision.
func (d Decision) String() string {
	switch d {
	case DecisionConfirm:
		return "confirm"
	case DecisionEdit:
		return "edit"
	case DecisionReject:
		return "reject"
	default:
		return "unknown"
	}
}

// parseDecision maps one line of input to a decision; case and surrounding
// whitespace are ignored.
func parseDecision(line string) (Decision, bool) {
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y":
		return DecisionConfirm, true
	case "n":
		return DecisionReject, true
	case "e":
		return DecisionEdit, true
	default:
		return 0, false
	}
}

const (
	decisionPrompt    = "Accept (y) / Reject (n) / Edit (e): "
	editPrompt        = "Enter new commit message: "
	invalidMessage    = "Invalid message. Please try again."
	invalidDecision   = "Please answer 'y' (yes), 'n' (no), or 'e' (edit)"
	bodyTerminator    = "."
	previewRuleLength = 40
)

// Manager defines the interaction the orchestration layer needs.
type Manager interface {
	Confirm(ctx context.Context, message string) (string, Decision, error)
	ConfirmPullRequest(ctx context.Context, pr *ai.PullRequest) (*ai.PullRequest, Decision, error)
	ShowSpinner(text string) Spinner
	ShowWarning(message string)
	ShowInfo(message string)
	ShowSuccess(message string)
}

// Prompter implements Manager over a line-oriented reader and a writer.
// The zero value with In and Out set is usable: plain output, no spinner.
type Prompter struct {
	In  io.Reader
	Out io.Writer

	ColorEnabled   bool
	SpinnerEnabled bool

	once   sync.Once
	styles *styles
	input  *lineReader
}

type lineResult struct {
	text string
	err  error
}

// NewPrompter creates a Prompter with color and spinner settings.
func NewPrompter(in io.Reader, out io.Writer, colorEnabled, spinnerEnabled bool) *Prompter {
	return &Prompter{
		In:             in,
		Out:            out,
		ColorEnabled:   colorEnabled,
		SpinnerEnabled: spinnerEnabled,
	}
}

func (p *Prompter) init() {
	p.once.Do(func() {
		p.styles = newStyles(p.ColorEnabled)
	})
}

// openInput starts reading p.In for one confirmation and returns the function
// that stops it. Outside a confirmation nothing reads p.In.
func (p *Prompter) openInput() func() {
	p.input = newLineReader(p.In)
	return func() {
		_ = p.input.close()
		p.input = nil
	}
}

// readLine returns the next input line, or a Cancelled error on EOF or when
// ctx is done. A cancelled read is interrupted without consuming input when
// p.In is a terminal or a pipe.
func (p *Prompter) readLine(ctx context.Context) (string, error) {
	p.init()
	in := p.input
	if in == nil {
		in = newLineReader(p.In)
		defer func() { _ = in.close() }()
	}

	done := make(chan lineResult, 1)
	go func() {
		text, err := in.readLine()
		done <- lineResult{text: text, err: err}
	}()

	select {
	case <-ctx.Done():
		if in.cancel() {
			<-done
		}
		fmt.Fprintln(p.Out)
		return "", apperrors.NewCancelledError("Interrupted.")
	case res := <-done:
		if errors.Is(res.err, io.EOF) {
			fmt.Fprintln(p.Out)
			return "", apperrors.NewCancelledError("Input closed before a decision was made.")
		}
		if res.err != nil {
			return "", apperrors.Wrap(res.err, apperrors.ErrCancelled, "failed to read input")
		}
		return res.text, nil
	}
}

// Confirm shows message and runs the accept / reject / edit loop.
// It returns the final message and DecisionConfirm or DecisionEdit, or
// DecisionReject with an empty message. Any error means no decision was made.
func (p *Prompter) Confirm(ctx context.Context, message string) (string, Decision, error) {
	p.init()
	defer p.openInput()()
	p.showProposedMessage(message)

	state := StateAwaitingDecision
	edited := false
	for {
		switch state {
		case StateAwaitingDecision:
			fmt.Fprint(p.Out, "\n"+p.styles.prompt.Render(decisionPrompt))
			line, err := p.readLine(ctx)
			if err != nil {
				return "", DecisionReject, err
			}
			decision, ok := parseDecision(line)
			if !ok {
				fmt.Fprintln(p.Out, invalidDecision)
				continue
			}
			switch decision {
			case DecisionConfirm:
				state = StateConfirmed
			case DecisionReject:
				state = StateRejected
			case DecisionEdit:
				state = StateEditing
			}

		case StateEditing:
			fmt.Fprint(p.Out, editPrompt)
			line, err := p.readLine(ctx)
			if err != nil {
				return "", DecisionReject, err
			}
			if replacement := strings.TrimSpace(line); replacement != "" {
				message = replacement
				edited = true
				state = StateConfirmed
				continue
			}
			fmt.Fprintln(p.Out, invalidMessage)
			state = StateAwaitingDecision

		case StateConfirmed:
			if edited {
				return message, DecisionEdit, nil
			}
			return message, DecisionConfirm, nil

		case StateRejected:
			return "", DecisionReject, nil
		}
	}
}

func (p *Prompter) showProposedMessage(message string) {
	fmt.Fprintln(p.Out)
	fmt.Fprintln(p.Out, p.styles.title.Render("Proposed commit message:"))
	fmt.Fprintln(p.Out, p.styles.message.Render("→ "+message))
}

// ConfirmPullRequest runs the same loop for a pull request. Editing replaces
// the title and body, shows the updated preview and asks again.
func (p *Prompter) ConfirmPullRequest(ctx context.Context, pr *ai.PullRequest) (*ai.PullRequest, Decision, error) {
	p.init()
	defer p.openInput()()
	current := *pr
	p.showPullRequest("Generated PR", &current)

	edited := false
	for {
		fmt.Fprint(p.Out, "\n"+p.styles.prompt.Render("Create this PR? "+decisionPrompt))
		line, err := p.readLine(ctx)
		if err != nil {
			return nil, DecisionReject, err
		}

		decision, ok := parseDecision(line)
		if !ok {
			fmt.Fprintln(p.Out, invalidDecision)
			continue
		}

		switch decision {
		case DecisionConfirm:
			if edited {
				return &current, DecisionEdit, nil
			}
			return &current, DecisionConfirm, nil
		case DecisionReject:
			return nil, DecisionReject, nil
		case DecisionEdit:
			if err := p.editPullRequest(ctx, &current); err != nil {
				return nil, DecisionReject, err
			}
			edited = true
			p.showPullRequest("Updated PR", &current)
		}
	}
}

// editPullRequest reads a new title (blank keeps) and a new body ended by a
// line holding only "." (a blank first line keeps the body).
func (p *Prompter) editPullRequest(ctx context.Context, pr *ai.PullRequest) error {
	fmt.Fprintln(p.Out, p.styles.title.Render("\nEnter new title (press Enter to keep current):"))
	title, err := p.readLine(ctx)
	if err != nil {
		return err
	}
	if t := strings.TrimSpace(title); t != "" {
		pr.Title = t
	}

	fmt.Fprintln(p.Out, p.styles.title.Render("\nEnter new body (press Enter to keep current)."))
	fmt.Fprintln(p.Out, p.styles.title.Render("Finish with a line containing only '"+bodyTerminator+"':"))

	var body []string
	for {
		line, err := p.readLine(ctx)
		if err != nil {
			return err
		}
		if line == bodyTerminator || (len(body) == 0 && strings.TrimSpace(line) == "") {
			break
		}
		body = append(body, line)
	}
	if b := strings.TrimSpace(strings.Join(body, "\n")); b != "" {
		pr.Body = b
	}
	return nil
}

func (p *Prompter) showPullRequest(heading string, pr *ai.PullRequest) {
	rule := p.styles.rule.Render(strings.Repeat("-", previewRuleLength))
	fmt.Fprintln(p.Out)
	fmt.Fprintln(p.Out, p.styles.title.Render(heading+" Title: ")+p.styles.message.Render(pr.Title))
	fmt.Fprintln(p.Out)
	fmt.Fprintln(p.Out, p.styles.title.Render(heading+" Body:"))
	fmt.Fprintln(p.Out, rule)
	fmt.Fprintln(p.Out, RenderMarkdown(pr.Body, p.ColorEnabled))
	fmt.Fprintln(p.Out, rule)
}

// ShowSpinner returns a started-on-demand spinner, or a no-op one when
// disabled or when Out is not a terminal.
func (p *Prompter) ShowSpinner(text string) Spinner {
	if !p.SpinnerEnabled || !isTerminal(p.Out) {
		return &noopSpinner{}
	}
	return newBubbleSpinner(p.Out, text)
}

// ShowWarning prints a non-fatal warning.
func (p *Prompter) ShowWarning(message string) {
	p.init()
	fmt.Fprintln(p.Out, p.styles.warning.Render("Warning: "+message))
}

// ShowInfo prints a progress or status line.
func (p *Prompter) ShowInfo(message string) {
	p.init()
	fmt.Fprintln(p.Out, p.styles.info.Render(message))
}

// ShowSuccess prints a success line.
func (p *Prompter) ShowSuccess(message string) {
	p.init()
	fmt.Fprintln(p.Out, p.styles.success.Render(message))
}

// ShowError prints err the way the command layer formats errors.
func (p *Prompter) ShowError(err error) {
	if err == nil {
		return
	}
	p.init()
	fmt.Fprintln(p.Out, p.styles.errorStyle.Render(strings.TrimRight(apperrors.FormatError(err), "\n")))
}
