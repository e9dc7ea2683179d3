package ai

import (
	"strings"

	apperrors "github.com/gait/gait/internal/pkg/errors"
)

const (
	titleMarker = "TITLE:"
	bodyMarker  = "BODY:"
)

// ParsePullRequest splits a "TITLE: ... BODY: ..." response into its parts.
// Text before the title marker is ignored.
func ParsePullRequest(content string) (*PullRequest, error) {
	_, afterTitle, ok := strings.Cut(content, titleMarker)
	if !ok {
		return nil, apperrors.NewMalformedResponseError("response is missing " + titleMarker)
	}

	title, body, ok := strings.Cut(afterTitle, bodyMarker)
	if !ok {
		return nil, apperrors.NewMalformedResponseError("response is missing " + bodyMarker)
	}

	pr := &PullRequest{
		Title: strings.TrimSpace(title),
		Body:  strings.TrimSpace(body),
	}
	if pr.Title == "" || pr.Body == "" {
		return nil, apperrors.NewMalformedResponseError("pull request title or body is empty")
	}

	return pr, nil
}
