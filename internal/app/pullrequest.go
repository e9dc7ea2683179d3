package app

import (
	"context"
	"strings"

	"github.com/gait/gait/internal/pkg/ai"
	"github.com/gait/gait/internal/pkg/config"
	apperrors "github.com/gait/gait/internal/pkg/errors"
	"github.com/gait/gait/internal/pkg/git"
	"github.com/gait/gait/internal/pkg/github"
	"github.com/gait/gait/internal/pkg/history"
	"github.com/gait/gait/internal/pkg/ui"
)

// PullRequestCancelledMessage is printed when the operator rejects the draft.
const PullRequestCancelledMessage = "PR creation cancelled."

// PullRequestOptions contains options for the pull request workflow.
type PullRequestOptions struct {
	// Args is the argument vector after "pr"; see PullRequestArgs.
	Args []string
}

// PullRequestArgs drops the tokens gait consumes ("pr", "create", "--ai")
// and returns what is passed on to gh pr create.
func PullRequestArgs(args []string) []string {
	out := make([]string, 0, len(args))
	for _, a := range args {
		switch a {
		case "pr", "create", "--ai":
			continue
		}
		out = append(out, a)
	}
	return out
}

// PullRequestService drafts a pull request from the current branch and opens it with gh.
type PullRequestService struct {
	gitClient    git.Client
	githubClient github.Client
	aiProvider   ai.Provider
	uiManager    ui.Manager
	historyMgr   history.Manager
	notice       SecurityNotice
	config       *config.Config
}

// NewPullRequestService creates a new PullRequestService. historyMgr and notice may be nil.
func NewPullRequestService(
	gitClient git.Client,
	githubClient github.Client,
	aiProvider ai.Provider,
	uiManager ui.Manager,
	historyMgr history.Manager,
	notice SecurityNotice,
	cfg *config.Config,
) *PullRequestService {
	return &PullRequestService{
		gitClient:    gitClient,
		githubClient: githubClient,
		aiProvider:   aiProvider,
		uiManager:    uiManager,
		historyMgr:   historyMgr,
		notice:       notice,
		config:       cfg,
	}
}

// Run checks gh authentication, collects the branch diff and log against the
// default branch, drafts the PR and creates it once confirmed. A rejected
// draft is not an error.
func (s *PullRequestService) Run(ctx context.Context, opts *PullRequestOptions) error {
	if opts == nil {
		opts = &PullRequestOptions{}
	}

	if err := s.githubClient.AuthStatus(ctx); err != nil {
		return err
	}

	head, err := s.gitClient.GetCurrentBranch(ctx)
	if err != nil {
		return err
	}
	base, err := s.gitClient.GetDefaultBranch(ctx)
	if err != nil {
		return err
	}
	s.uiManager.ShowInfo("Comparing " + head + " against " + base + "...")

	diff, err := s.gitClient.BranchDiff(ctx, base, head)
	if err != nil {
		return err
	}
	commits, err := s.gitClient.BranchLog(ctx, base, head)
	if err != nil {
		return err
	}
	if strings.TrimSpace(diff) == "" && strings.TrimSpace(commits) == "" {
		return apperrors.NewNoBranchChangesError(base, head)
	}

	showSecurityNotice(s.uiManager, s.notice)

	draft, err := s.generate(ctx, diff, commits)
	if err != nil {
		return err
	}

	final, decision, err := s.uiManager.ConfirmPullRequest(ctx, draft)
	if err != nil {
		return err
	}

	entry := &history.Entry{
		Kind:      history.KindPullRequest,
		Generated: formatPullRequest(draft),
		Decision:  decision.String(),
		Model:     s.aiProvider.Model(),
	}
	if decision == ui.DecisionReject {
		recordHistory(s.historyMgr, s.config, s.uiManager, entry)
		s.uiManager.ShowInfo(PullRequestCancelledMessage)
		return nil
	}

	err = s.githubClient.CreatePullRequest(ctx, final.Title, final.Body, PullRequestArgs(opts.Args)...)
	entry.Final = formatPullRequest(final)
	entry.Committed = err == nil
	recordHistory(s.historyMgr, s.config, s.uiManager, entry)
	return err
}

func (s *PullRequestService) generate(ctx context.Context, diff, commits string) (*ai.PullRequest, error) {
	spinner := s.uiManager.ShowSpinner("Generating PR description...")
	spinner.Start()
	defer spinner.Stop()

	return s.aiProvider.GeneratePullRequest(ctx, diff, commits)
}

func formatPullRequest(pr *ai.PullRequest) string {
	if pr == nil {
		return ""
	}
	return pr.Title + "\n\n" + pr.Body
}
