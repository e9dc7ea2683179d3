// Package app contains the application layer with business orchestration logic.
package app

import (
	"context"
	"strings"
	"time"

	"github.com/gait/gait/internal/pkg/ai"
	"github.com/gait/gait/internal/pkg/config"
	apperrors "github.com/gait/gait/internal/pkg/errors"
	"github.com/gait/gait/internal/pkg/git"
	"github.com/gait/gait/internal/pkg/history"
	"github.com/gait/gait/internal/pkg/message"
	"github.com/gait/gait/internal/pkg/security"
	"github.com/gait/gait/internal/pkg/ui"
)

// CommitCancelledMessage is reported when the operator rejects the message.
const CommitCancelledMessage = "Commit cancelled."

// SecurityNotice tracks whether the first-use data notice has been shown.
type SecurityNotice interface {
	IsSecurityWarningAcknowledged() bool
	AcknowledgeSecurityWarning() error
}

// CommitOptions contains options for the commit workflow.
type CommitOptions struct {
	// ExtraArgs are passed to git commit after -m <message>.
	ExtraArgs []string
}

// CommitService orchestrates the commit message generation workflow.
type CommitService struct {
	gitClient  git.Client
	aiProvider ai.Provider
	uiManager  ui.Manager
	historyMgr history.Manager
	notice     SecurityNotice
	config     *config.Config
}

// NewCommitService creates a new CommitService with the given dependencies.
// historyMgr and notice may be nil.
func NewCommitService(
	gitClient git.Client,
	aiProvider ai.Provider,
	uiManager ui.Manager,
	historyMgr history.Manager,
	notice SecurityNotice,
	cfg *config.Config,
) *CommitService {
	return &CommitService{
		gitClient:  gitClient,
		aiProvider: aiProvider,
		uiManager:  uiManager,
		historyMgr: historyMgr,
		notice:     notice,
		config:     cfg,
	}
}

// Run executes the workflow: staged diff → generate → lint warnings →
// confirm → record → commit. Rejection yields an ErrCancelled error and git
// commit is never run.
func (s *CommitService) Run(ctx context.Context, opts *CommitOptions) error {
	if opts == nil {
		opts = &CommitOptions{}
	}

	diff, err := s.gitClient.StagedDiff(ctx)
	if err != nil {
		return err
	}

	showSecurityNotice(s.uiManager, s.notice)

	generated, err := s.generate(ctx, diff)
	if err != nil {
		return err
	}

	for _, w := range message.Lint(generated) {
		s.uiManager.ShowWarning(w)
	}

	final, decision, err := s.uiManager.Confirm(ctx, generated)
	if err != nil {
		return err
	}

	entry := &history.Entry{
		Kind:      history.KindCommit,
		Generated: generated,
		Final:     final,
		Decision:  decision.String(),
		Model:     s.aiProvider.Model(),
	}
	if decision == ui.DecisionReject {
		s.record(entry)
		return apperrors.NewCancelledError(CommitCancelledMessage)
	}

	err = s.gitClient.Commit(ctx, final, opts.ExtraArgs...)
	entry.Committed = err == nil
	s.record(entry)
	return err
}

func (s *CommitService) generate(ctx context.Context, diff string) (string, error) {
	spinner := s.uiManager.ShowSpinner("Generating commit message...")
	spinner.Start()
	defer spinner.Stop()

	start := time.Now()
	msg, err := s.aiProvider.GenerateCommitMessage(ctx, diff)
	if err != nil {
		return "", err
	}
	apperrors.Debug("commit message generated in %v", time.Since(start))

	msg = strings.TrimSpace(msg)
	if msg == "" {
		return "", apperrors.NewMalformedResponseError("empty commit message")
	}
	return msg, nil
}

func (s *CommitService) record(entry *history.Entry) {
	recordHistory(s.historyMgr, s.config, s.uiManager, entry)
}

// recordHistory saves entry when history is enabled. Failures only warn.
func recordHistory(mgr history.Manager, cfg *config.Config, uiManager ui.Manager, entry *history.Entry) {
	if mgr == nil || cfg == nil || !cfg.History.Enabled {
		return
	}
	if err := mgr.Save(entry); err != nil {
		uiManager.ShowWarning("failed to save to history: " + err.Error())
	}
}

// showSecurityNotice prints the data notice once per installation.
func showSecurityNotice(uiManager ui.Manager, notice SecurityNotice) {
	if notice == nil || notice.IsSecurityWarningAcknowledged() {
		return
	}
	uiManager.ShowInfo(security.FirstUseWarning)
	uiManager.ShowInfo(security.FirstUseAcknowledgment)
	if err := notice.AcknowledgeSecurityWarning(); err != nil {
		apperrors.Debug("could not persist security acknowledgment: %v", err)
	}
}
