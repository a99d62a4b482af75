package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/codetrack-go-api/internal/models"
	"github.com/noah-isme/codetrack-go-api/internal/repository"
	"github.com/noah-isme/codetrack-go-api/pkg/platform"
)

// LeetCodeSyncService reconciles LeetCode submissions. It is invoked by the
// per-assignment sweep and by manual "sync all linked users" triggers; the
// system-wide sweep deliberately does not call it.
type LeetCodeSyncService struct {
	sweeper     *platformSweeper
	submissions repository.SubmissionRepository
	assignments repository.AssignmentRepository
	users       repository.UserRepository
	logger      zerolog.Logger
}

// NewLeetCodeSyncService constructs the LeetCode sync collaborator.
func NewLeetCodeSyncService(client platform.Client, submissions repository.SubmissionRepository, assignments repository.AssignmentRepository, users repository.UserRepository, logger zerolog.Logger) *LeetCodeSyncService {
	componentLogger := logger.With().Str("component", "leetcode_sync_service").Logger()

	return &LeetCodeSyncService{
		sweeper:     newPlatformSweeper(client, submissions, assignments, users, componentLogger),
		submissions: submissions,
		assignments: assignments,
		users:       users,
		logger:      componentLogger,
	}
}

// ForceCheckAssignment reconciles the assignment's pending LeetCode
// submissions, optionally narrowed to one user.
func (s *LeetCodeSyncService) ForceCheckAssignment(ctx context.Context, assignmentID uint, userID *uint) (int, error) {
	return forceCheckAssignment(ctx, s.sweeper, s.submissions, s.assignments, models.PlatformLeetcode, assignmentID, userID, s.logger)
}

// SyncAllLinkedUsers reconciles pending LeetCode submissions for every user
// with a LINKED LeetCode cookie.
func (s *LeetCodeSyncService) SyncAllLinkedUsers(ctx context.Context) (int, error) {
	return syncAllLinkedUsers(ctx, s.sweeper, s.submissions, s.users, models.PlatformLeetcode, s.logger)
}

func forceCheckAssignment(
	ctx context.Context,
	sweeper *platformSweeper,
	submissions repository.SubmissionRepository,
	assignments repository.AssignmentRepository,
	platformName string,
	assignmentID uint,
	userID *uint,
	logger zerolog.Logger,
) (int, error) {
	if _, err := assignments.GetByID(ctx, assignmentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn().Uint("assignment_id", assignmentID).Msg("assignment not found, nothing to check")
			return 0, nil
		}
		return 0, err
	}

	pending, err := submissions.ListPending(ctx, repository.PendingSubmissionQuery{
		AssignmentID: &assignmentID,
		UserID:       userID,
		Platform:     &platformName,
	})
	if err != nil {
		return 0, err
	}

	updated := sweeper.process(ctx, pending)
	logger.Info().Uint("assignment_id", assignmentID).Int("pending", len(pending)).Int("updated", updated).Msg("assignment force check finished")

	return updated, nil
}

func syncAllLinkedUsers(
	ctx context.Context,
	sweeper *platformSweeper,
	submissions repository.SubmissionRepository,
	users repository.UserRepository,
	platformName string,
	logger zerolog.Logger,
) (int, error) {
	linked, err := users.ListLinked(ctx, platformName)
	if err != nil {
		return 0, err
	}

	total := 0
	for _, user := range linked {
		userID := user.ID
		pending, err := submissions.ListPending(ctx, repository.PendingSubmissionQuery{
			UserID:   &userID,
			Platform: &platformName,
		})
		if err != nil {
			logger.Error().Err(err).Uint("user_id", userID).Msg("failed to list pending submissions for linked user")
			continue
		}
		total += sweeper.process(ctx, pending)
	}

	logger.Info().Int("linked_users", len(linked)).Int("updated", total).Msg("linked user sync finished")

	return total, nil
}
