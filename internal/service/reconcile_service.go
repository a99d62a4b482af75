package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/codetrack-go-api/internal/models"
	"github.com/noah-isme/codetrack-go-api/internal/observability"
	"github.com/noah-isme/codetrack-go-api/internal/repository"
	"github.com/noah-isme/codetrack-go-api/pkg/platform"
)

// AssignmentSyncer is the contract of the dedicated per-platform sync
// services invoked by the per-assignment sweep.
type AssignmentSyncer interface {
	ForceCheckAssignment(ctx context.Context, assignmentID uint, userID *uint) (int, error)
	SyncAllLinkedUsers(ctx context.Context) (int, error)
}

// ReconcileService determines completion of pending submissions by querying
// external judge platforms. Both operations run to completion once started
// and always report a count; platform failures surface only as still-pending
// submissions.
type ReconcileService interface {
	// CheckAllPending sweeps every pending submission in fixed-size batches.
	CheckAllPending(ctx context.Context) (int, error)
	// CheckAssignment sweeps one assignment, optionally narrowed to one user.
	CheckAssignment(ctx context.Context, assignmentID uint, userID *uint) (int, error)
	// SyncLinkedUsers resyncs every pending submission of every user with a
	// LINKED cookie on the given platform. Only the cookie-based platforms
	// support this; GFG is covered by CheckAllPending.
	SyncLinkedUsers(ctx context.Context, platformName string) (int, error)
}

// ReconcileConfig tunes sweep batching.
type ReconcileConfig struct {
	// BatchSize bounds how many pending submissions are held in memory at once.
	BatchSize int
	// BatchPause is the delay between batches, protecting downstream platform APIs.
	BatchPause time.Duration
}

type reconcileService struct {
	submissions    repository.SubmissionRepository
	assignments    repository.AssignmentRepository
	users          repository.UserRepository
	gfg            *platformSweeper
	leetcodeSync   AssignmentSyncer
	hackerrankSync AssignmentSyncer
	batchSize      int
	batchPause     time.Duration
	logger         zerolog.Logger
	tracer         trace.Tracer
	sleep          func(context.Context, time.Duration)
}

// NewReconcileService constructs the reconciliation engine.
func NewReconcileService(
	submissions repository.SubmissionRepository,
	assignments repository.AssignmentRepository,
	users repository.UserRepository,
	gfgClient platform.Client,
	leetcodeSync AssignmentSyncer,
	hackerrankSync AssignmentSyncer,
	cfg ReconcileConfig,
	logger zerolog.Logger,
) ReconcileService {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.BatchPause <= 0 {
		cfg.BatchPause = 100 * time.Millisecond
	}

	componentLogger := logger.With().Str("component", "reconcile_service").Logger()

	return &reconcileService{
		submissions:    submissions,
		assignments:    assignments,
		users:          users,
		gfg:            newPlatformSweeper(gfgClient, submissions, assignments, users, componentLogger),
		leetcodeSync:   leetcodeSync,
		hackerrankSync: hackerrankSync,
		batchSize:      cfg.BatchSize,
		batchPause:     cfg.BatchPause,
		logger:         componentLogger,
		tracer:         otel.Tracer("github.com/noah-isme/codetrack-go-api/internal/service/reconcile"),
		sleep:          sleepContext,
	}
}

// CheckAllPending pages pending submissions in batches and reconciles the GFG
// ones. Platform-wide LeetCode/HackerRank resync is intentionally not part of
// this sweep: it proved too memory-hungry to run against every linked user,
// so those platforms are only reconciled through the per-assignment sweep.
func (s *reconcileService) CheckAllPending(ctx context.Context) (int, error) {
	ctx, span := s.tracer.Start(ctx, "reconcile.check_all_pending")
	defer span.End()

	observability.SweepRuns().WithLabelValues("all").Inc()
	s.logger.Info().Int("batch_size", s.batchSize).Msg("starting system-wide submission sweep")

	offset := 0
	totalUpdated := 0
	totalScanned := 0

	for {
		batch, err := s.submissions.ListPendingPage(ctx, s.batchSize, offset)
		if err != nil {
			span.RecordError(err)
			return totalUpdated, err
		}

		if len(batch) == 0 {
			break
		}

		s.logger.Debug().Int("offset", offset).Int("size", len(batch)).Msg("processing sweep batch")
		totalUpdated += s.gfg.process(ctx, batch)
		totalScanned += len(batch)
		offset += s.batchSize

		s.sleep(ctx, s.batchPause)
	}

	span.SetAttributes(
		attribute.Int("sweep.scanned", totalScanned),
		attribute.Int("sweep.updated", totalUpdated),
	)
	s.logger.Info().Int("scanned", totalScanned).Int("updated", totalUpdated).Msg("system-wide submission sweep finished")

	return totalUpdated, nil
}

func (s *reconcileService) CheckAssignment(ctx context.Context, assignmentID uint, userID *uint) (int, error) {
	ctx, span := s.tracer.Start(ctx, "reconcile.check_assignment", trace.WithAttributes(
		attribute.Int("assignment.id", int(assignmentID)),
	))
	defer span.End()

	observability.SweepRuns().WithLabelValues("assignment").Inc()

	assignment, err := s.assignments.GetByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn().Uint("assignment_id", assignmentID).Msg("assignment not found, nothing to check")
			return 0, nil
		}
		span.RecordError(err)
		return 0, err
	}

	counts := countByPlatform(assignment.Problems)
	s.logger.Info().
		Uint("assignment_id", assignmentID).
		Str("title", assignment.Title).
		Int("leetcode", counts[models.PlatformLeetcode]).
		Int("hackerrank", counts[models.PlatformHackerrank]).
		Int("gfg", counts[models.PlatformGfg]).
		Msg("starting assignment submission sweep")

	totalUpdated := 0

	if counts[models.PlatformLeetcode] > 0 && s.leetcodeSync != nil {
		updated, err := s.leetcodeSync.ForceCheckAssignment(ctx, assignmentID, userID)
		if err != nil {
			s.logger.Error().Err(err).Uint("assignment_id", assignmentID).Msg("leetcode force check failed")
		}
		totalUpdated += updated
	}

	if counts[models.PlatformHackerrank] > 0 && s.hackerrankSync != nil {
		updated, err := s.hackerrankSync.ForceCheckAssignment(ctx, assignmentID, userID)
		if err != nil {
			s.logger.Error().Err(err).Uint("assignment_id", assignmentID).Msg("hackerrank force check failed")
		}
		totalUpdated += updated
	}

	if counts[models.PlatformGfg] > 0 {
		gfgPlatform := models.PlatformGfg
		pending, err := s.submissions.ListPending(ctx, repository.PendingSubmissionQuery{
			AssignmentID: &assignmentID,
			UserID:       userID,
			Platform:     &gfgPlatform,
		})
		if err != nil {
			span.RecordError(err)
			return totalUpdated, err
		}
		totalUpdated += s.gfg.process(ctx, pending)
	}

	span.SetAttributes(attribute.Int("sweep.updated", totalUpdated))
	s.logger.Info().Uint("assignment_id", assignmentID).Int("updated", totalUpdated).Msg("assignment submission sweep finished")

	return totalUpdated, nil
}

func (s *reconcileService) SyncLinkedUsers(ctx context.Context, platformName string) (int, error) {
	ctx, span := s.tracer.Start(ctx, "reconcile.sync_linked_users", trace.WithAttributes(
		attribute.String("platform", platformName),
	))
	defer span.End()

	var syncer AssignmentSyncer
	switch platformName {
	case models.PlatformLeetcode:
		syncer = s.leetcodeSync
	case models.PlatformHackerrank:
		syncer = s.hackerrankSync
	}
	if syncer == nil {
		return 0, ErrUnknownPlatform
	}

	observability.SweepRuns().WithLabelValues("linked_users").Inc()
	s.logger.Info().Str("platform", platformName).Msg("starting linked user sync")

	count, err := syncer.SyncAllLinkedUsers(ctx)
	if err != nil {
		span.RecordError(err)
		return count, err
	}

	span.SetAttributes(attribute.Int("sweep.updated", count))
	return count, nil
}

func countByPlatform(problems []models.Problem) map[string]int {
	counts := make(map[string]int, 4)
	for _, problem := range problems {
		counts[problem.Platform]++
	}
	return counts
}

func sleepContext(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
