// Package security provides secret masking and the first-use data notice for gait.
package security

import (
	"fmt"
	"regexp"
	"strings"
)

// minAPIKeyLength is shorter than any key OpenAI issues.
const minAPIKeyLength = 20

var openAIKeyPattern = regexp.MustCompile(`^sk-[a-zA-Z0-9_-]{20,}$`)

// MaskAPIKey masks an API key, showing only the last 4 characters.
// This should be used when logging or displaying API keys.
func MaskAPIKey(key string) string {
	if len(key) <= 4 {
		return "****"
	}
	return strings.Repeat("*", len(key)-4) + key[len(key)-4:]
}

// ValidateAPIKeyFormat reports whether apiKey looks like a usable credential.
// OpenAI keys must start with "sk-"; keys for custom endpoints only need a plausible length.
func ValidateAPIKeyFormat(apiKey string, customEndpoint bool) error {
	if apiKey == "" {
		return fmt.Errorf("API key is required")
	}

	if len(apiKey) < minAPIKeyLength {
		return fmt.Errorf("API key appears to be invalid (too short)")
	}

	if !customEndpoint && !openAIKeyPattern.MatchString(apiKey) {
		return fmt.Errorf("API key format appears invalid for OpenAI (expected format: sk-...)")
	}

	return nil
}

// sanitizePatterns are applied in order by SanitizeForLogging.
var sanitizePatterns = []struct {
	regex       *regexp.Regexp
	replacement string
}{
	// API keys (sk-... and sk-proj-...)
	{regexp.MustCompile(`sk-[a-zA-Z0-9_-]{20,}`), "sk-****"},
	// Bearer tokens
	{regexp.MustCompile(`Bearer\s+[a-zA-Z0-9._-]+`), "Bearer ****"},
	// GitHub tokens
	{regexp.MustCompile(`\b(ghp|gho|ghu|ghs|ghr|github_pat)_[a-zA-Z0-9_]{20,}`), "gh_****"},
	// Generic API key patterns
	{regexp.MustCompile(`(?i)(api[_-]?key|apikey|api_secret|secret[_-]?key)\s*[:=]\s*["']?[a-zA-Z0-9._-]+["']?`), "$1=****"},
	// Password patterns
	{regexp.MustCompile(`(?i)(password|passwd|pwd)\s*[:=]\s*["']?[^\s"']+["']?`), "$1=****"},
}

// SanitizeForLogging sanitizes a string for safe logging by masking potential secrets.
// It looks for common patterns like API keys, passwords, and tokens.
func SanitizeForLogging(s string) string {
	result := s
	for _, p := range sanitizePatterns {
		result = p.regex.ReplaceAllString(result, p.replacement)
	}
	return result
}

// FirstUseWarning is shown once, before the first diff is sent to the API.
const FirstUseWarning = `
IMPORTANT: gait sends your staged git diff to the configured AI service
(OpenAI or an OpenAI-compatible endpoint) to generate messages.

Your code changes will be transmitted to a third-party server. Please:

1. Do not stage secrets (API keys, passwords, tokens)
2. Review your staged changes before running gait commit --ai
3. Point OPENAI_BASE_URL at a self-hosted endpoint for sensitive projects

`

// FirstUseAcknowledgment is the message shown after the warning has been recorded.
const FirstUseAcknowledgment = "This notice will not be shown again."
