package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/gait/gait/internal/pkg/errors"
)

func TestParsePullRequest(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		wantTitle string
		wantBody  string
	}{
		{
			name:      "exact format",
			content:   "TITLE: Add login\nBODY:\nAdds a login page.",
			wantTitle: "Add login",
			wantBody:  "Adds a login page.",
		},
		{
			name:      "preamble is ignored",
			content:   "Sure! Here it is.\n\nTITLE: Fix parser\nBODY:\n## Summary\n\n- fixes parser",
			wantTitle: "Fix parser",
			wantBody:  "## Summary\n\n- fixes parser",
		},
		{
			name:      "body on the same line",
			content:   "TITLE: Bump deps BODY: Updates go.mod",
			wantTitle: "Bump deps",
			wantBody:  "Updates go.mod",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pr, err := ParsePullRequest(tt.content)

			require.NoError(t, err)
			assert.Equal(t, tt.wantTitle, pr.Title)
			assert.Equal(t, tt.wantBody, pr.Body)
		})
	}
}

func TestParsePullRequest_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"no markers", "Add login page"},
		{"missing body marker", "TITLE: Add login"},
		{"missing title marker", "BODY:\nsomething"},
		{"empty title", "TITLE:\nBODY:\nsomething"},
		{"empty body", "TITLE: Add login\nBODY:\n   "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePullRequest(tt.content)

			assert.True(t, apperrors.HasCode(err, apperrors.ErrMalformedAPIResponse), "got %v", err)
		})
	}
}
