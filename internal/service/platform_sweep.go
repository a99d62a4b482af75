package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/codetrack-go-api/internal/models"
	"github.com/noah-isme/codetrack-go-api/internal/observability"
	"github.com/noah-isme/codetrack-go-api/internal/repository"
	"github.com/noah-isme/codetrack-go-api/pkg/platform"
)

// platformSweeper applies the cookie-first / bulk-fallback reconciliation
// policy for one platform over a set of pending submissions. It is shared by
// the reconciliation engine (GFG inline path) and the dedicated LeetCode and
// HackerRank sync services.
type platformSweeper struct {
	client      platform.Client
	submissions repository.SubmissionRepository
	assignments repository.AssignmentRepository
	users       repository.UserRepository
	logger      zerolog.Logger
	now         func() time.Time
}

func newPlatformSweeper(client platform.Client, submissions repository.SubmissionRepository, assignments repository.AssignmentRepository, users repository.UserRepository, logger zerolog.Logger) *platformSweeper {
	return &platformSweeper{
		client:      client,
		submissions: submissions,
		assignments: assignments,
		users:       users,
		logger:      logger.With().Str("platform", client.Name()).Logger(),
		now:         time.Now,
	}
}

// process checks the given pending submissions against the platform and
// marks solved ones completed. Submissions for other platforms are ignored.
// Within a user, problems are checked strictly sequentially; a cookie-expiry
// latches that user onto the bulk path for the rest of this pass and records
// the EXPIRED transition exactly once. Returns the number of submissions
// newly transitioned to completed.
func (s *platformSweeper) process(ctx context.Context, pending []models.Submission) int {
	var mine []models.Submission
	for _, submission := range pending {
		if submission.Problem.Platform == s.client.Name() {
			mine = append(mine, submission)
		}
	}

	if len(mine) == 0 {
		return 0
	}

	byUser := make(map[uint][]models.Submission)
	var userOrder []uint
	for _, submission := range mine {
		if _, seen := byUser[submission.UserID]; !seen {
			userOrder = append(userOrder, submission.UserID)
		}
		byUser[submission.UserID] = append(byUser[submission.UserID], submission)
	}

	assignmentCache := make(map[uint]models.Assignment)
	total := 0

	for _, userID := range userOrder {
		total += s.processUser(ctx, byUser[userID], assignmentCache)
	}

	return total
}

func (s *platformSweeper) processUser(ctx context.Context, pending []models.Submission, assignmentCache map[uint]models.Assignment) int {
	user := pending[0].User
	username := user.PlatformUsername(s.client.Name())
	if username == "" {
		s.logger.Debug().Uint("user_id", user.ID).Int("pending", len(pending)).Msg("user has no platform username, skipping")
		return 0
	}

	cookie, _ := user.PlatformCookie(s.client.Name())
	useCookie := user.HasLinkedCookie(s.client.Name())

	// The bulk solved set is fetched lazily, once per user per pass.
	var solvedSet map[string]struct{}
	bulkSolved := func() map[string]struct{} {
		if solvedSet == nil {
			solvedSet, _ = s.client.FetchAllSolved(ctx, username)
		}
		return solvedSet
	}

	updated := 0

	for _, submission := range pending {
		slug := platform.Slug(submission.Problem.URL)

		var submittedAt *time.Time
		completed := false

		if useCookie {
			record, err := s.client.FetchSingleSubmission(ctx, slug, cookie)
			switch {
			case errors.Is(err, platform.ErrCredentialExpired):
				useCookie = false
				observability.CredentialExpiries().WithLabelValues(s.client.Name()).Inc()
				s.logger.Warn().Uint("user_id", user.ID).Msg("cookie expired, falling back to bulk lookup for remaining problems")
				if statusErr := s.users.UpdateCookieStatus(ctx, user.ID, s.client.Name(), models.CredentialExpired); statusErr != nil {
					s.logger.Error().Err(statusErr).Uint("user_id", user.ID).Msg("failed to mark cookie expired")
				}
			case record != nil && record.Accepted:
				completed = true
				at := record.SubmittedAt
				submittedAt = &at
			}
		}

		if !completed {
			if _, solved := bulkSolved()[slug]; solved {
				completed = true
			}
		}

		if !completed {
			s.logger.Debug().Str("slug", slug).Uint("user_id", user.ID).Msg("problem not solved yet")
			continue
		}

		// Bulk hits carry no timestamp; wall clock is the best effort.
		finalTime := s.now().UTC()
		path := "bulk"
		if submittedAt != nil {
			finalTime = *submittedAt
			path = "cookie"
		}

		status := s.classify(ctx, submission.Problem.AssignmentID, finalTime, assignmentCache)

		changed, err := s.submissions.MarkCompleted(ctx, submission.ID, finalTime)
		if err != nil {
			s.logger.Error().Err(err).Uint("submission_id", submission.ID).Msg("failed to persist completion")
			continue
		}
		if !changed {
			continue
		}

		updated++
		observability.SubmissionsCompleted().WithLabelValues(s.client.Name(), path).Inc()
		s.logger.Info().
			Uint("user_id", user.ID).
			Str("slug", slug).
			Str("status", string(status)).
			Str("path", path).
			Msg("submission marked completed")
	}

	return updated
}

func (s *platformSweeper) classify(ctx context.Context, assignmentID uint, submittedAt time.Time, cache map[uint]models.Assignment) models.CompletionStatus {
	assignment, ok := cache[assignmentID]
	if !ok {
		loaded, err := s.assignments.GetByID(ctx, assignmentID)
		if err != nil {
			s.logger.Warn().Err(err).Uint("assignment_id", assignmentID).Msg("failed to load assignment for classification")
			return models.StatusOnTime
		}
		assignment = loaded
		cache[assignmentID] = assignment
	}

	return models.ClassifyCompletion(submittedAt, assignment.AssignDate, assignment.DueDate)
}
