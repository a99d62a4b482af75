package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/noah-isme/codetrack-go-api/internal/models"
	"github.com/noah-isme/codetrack-go-api/internal/repository"
	"github.com/noah-isme/codetrack-go-api/pkg/platform"
)

// HackerRankSyncService reconciles HackerRank submissions, mirroring the
// LeetCode sync collaborator.
type HackerRankSyncService struct {
	sweeper     *platformSweeper
	submissions repository.SubmissionRepository
	assignments repository.AssignmentRepository
	users       repository.UserRepository
	logger      zerolog.Logger
}

// NewHackerRankSyncService constructs the HackerRank sync collaborator.
func NewHackerRankSyncService(client platform.Client, submissions repository.SubmissionRepository, assignments repository.AssignmentRepository, users repository.UserRepository, logger zerolog.Logger) *HackerRankSyncService {
	componentLogger := logger.With().Str("component", "hackerrank_sync_service").Logger()

	return &HackerRankSyncService{
		sweeper:     newPlatformSweeper(client, submissions, assignments, users, componentLogger),
		submissions: submissions,
		assignments: assignments,
		users:       users,
		logger:      componentLogger,
	}
}

// ForceCheckAssignment reconciles the assignment's pending HackerRank
// submissions, optionally narrowed to one user.
func (s *HackerRankSyncService) ForceCheckAssignment(ctx context.Context, assignmentID uint, userID *uint) (int, error) {
	return forceCheckAssignment(ctx, s.sweeper, s.submissions, s.assignments, models.PlatformHackerrank, assignmentID, userID, s.logger)
}

// SyncAllLinkedUsers reconciles pending HackerRank submissions for every
// user with a LINKED HackerRank cookie.
func (s *HackerRankSyncService) SyncAllLinkedUsers(ctx context.Context) (int, error) {
	return syncAllLinkedUsers(ctx, s.sweeper, s.submissions, s.users, models.PlatformHackerrank, s.logger)
}
