package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/gait/gait/internal/pkg/ai"
	"github.com/gait/gait/internal/pkg/security"
)

// SetupStore is the part of the configuration manager the wizard writes to.
type SetupStore interface {
	Set(key, value string) error
	AcknowledgeSecurityWarning() error
	GetConfigPath() string
}

// SetupAnswers are the values collected by the setup wizard.
type SetupAnswers struct {
	APIKey   string
	Model    string
	Endpoint string
}

// Validate checks the answers the same way the form does.
func (a SetupAnswers) Validate() error {
	if err := security.ValidateAPIKeyFormat(strings.TrimSpace(a.APIKey), strings.TrimSpace(a.Endpoint) != ""); err != nil {
		return err
	}
	if strings.TrimSpace(a.Model) == "" {
		return fmt.Errorf("model name cannot be empty")
	}
	return nil
}

// ApplySetup validates answers and persists them. Running the wizard counts
// as having read the security notice.
func ApplySetup(store SetupStore, answers SetupAnswers) error {
	if err := answers.Validate(); err != nil {
		return err
	}

	values := []struct{ key, value string }{
		{"provider.api_key", strings.TrimSpace(answers.APIKey)},
		{"provider.model", strings.TrimSpace(answers.Model)},
		{"provider.endpoint", strings.TrimSpace(answers.Endpoint)},
	}
	for _, kv := range values {
		if err := store.Set(kv.key, kv.value); err != nil {
			return fmt.Errorf("failed to set %s: %w", kv.key, err)
		}
	}

	// Non-critical; the notice is simply shown once more.
	_ = store.AcknowledgeSecurityWarning()
	return nil
}

// RunInteractiveSetup runs the huh setup wizard and saves the result to store.
func RunInteractiveSetup(store SetupStore, out io.Writer) error {
	fmt.Fprintln(out, "Let's set up gait.")
	fmt.Fprint(out, security.FirstUseWarning)

	answers := SetupAnswers{Model: ai.DefaultOpenAIModel}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("API Endpoint").
				Description("Leave empty for api.openai.com, or enter an OpenAI-compatible base URL").
				Value(&answers.Endpoint),
			huh.NewInput().
				Title("API Key").
				Description("Stored in "+store.GetConfigPath()+" with 0600 permissions").
				Value(&answers.APIKey).
				EchoMode(huh.EchoModePassword).
				Validate(func(s string) error {
					return security.ValidateAPIKeyFormat(strings.TrimSpace(s), strings.TrimSpace(answers.Endpoint) != "")
				}),
			huh.NewInput().
				Title("Model Name").
				Value(&answers.Model).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("model name cannot be empty")
					}
					return nil
				}),
		),
	)
	if err := form.Run(); err != nil {
		return err
	}

	if err := ApplySetup(store, answers); err != nil {
		return err
	}

	fmt.Fprintf(out, "\nConfiguration saved to %s\n", store.GetConfigPath())
	fmt.Fprintln(out, "Setup complete! Try: gait commit --ai")
	return nil
}
