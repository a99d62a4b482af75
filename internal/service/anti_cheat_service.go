package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/noah-isme/codetrack-go-api/internal/dto"
	"github.com/noah-isme/codetrack-go-api/internal/models"
	"github.com/noah-isme/codetrack-go-api/internal/repository"
)

var (
	// ErrSessionNotFound indicates a test session could not be found.
	ErrSessionNotFound = errors.New("test session not found")
	// ErrUnknownViolationType indicates an unrecognized violation identifier.
	ErrUnknownViolationType = errors.New("unknown violation type")
)

// highRiskViolationCount is the total-violation threshold that flags a
// session for teacher review.
const highRiskViolationCount = 5

// violationConfig holds the escalation thresholds and deductions for one
// violation type. Counts are compared against the thresholds in descending
// order; WARNING level carries no deduction.
type violationConfig struct {
	warningThreshold     int
	minorThreshold       int
	majorThreshold       int
	terminationThreshold int
	scoreReduction       float64
	timePenalty          int
}

var violationConfigs = map[models.ViolationType]violationConfig{
	models.ViolationTabSwitch:      {warningThreshold: 1, minorThreshold: 3, majorThreshold: 5, terminationThreshold: 8, scoreReduction: 5, timePenalty: 30},
	models.ViolationFullscreenExit: {warningThreshold: 1, minorThreshold: 2, majorThreshold: 3, terminationThreshold: 5, scoreReduction: 10, timePenalty: 60},
	models.ViolationCopyPaste:      {warningThreshold: 1, minorThreshold: 2, majorThreshold: 3, terminationThreshold: 4, scoreReduction: 15, timePenalty: 120},
	models.ViolationDevTools:       {warningThreshold: 0, minorThreshold: 1, majorThreshold: 2, terminationThreshold: 3, scoreReduction: 20, timePenalty: 180},
	models.ViolationFocusLoss:      {warningThreshold: 3, minorThreshold: 6, majorThreshold: 10, terminationThreshold: 15, scoreReduction: 2, timePenalty: 10},
	models.ViolationContextMenu:    {warningThreshold: 1, minorThreshold: 3, majorThreshold: 5, terminationThreshold: 7, scoreReduction: 5, timePenalty: 30},
}

// AntiCheatService tracks proctoring violations per test session, escalates
// penalties and reports when a session should be terminated. The component
// never terminates sessions itself.
type AntiCheatService interface {
	StartSession(ctx context.Context, payload dto.SessionCreateRequest) (models.TestSession, error)
	RecordViolation(ctx context.Context, sessionID uint, violationType models.ViolationType, details map[string]any) (dto.ViolationOutcome, error)
	SessionViolations(ctx context.Context, sessionID uint) (dto.SessionViolationSummary, error)
	TestViolationStats(ctx context.Context, testID uint) (dto.TestViolationStats, error)
}

type antiCheatService struct {
	sessions      repository.TestSessionRepository
	notifications NotificationService
	validator     *validator.Validate
	logger        zerolog.Logger
}

// NewAntiCheatService constructs the violation tracker.
func NewAntiCheatService(sessions repository.TestSessionRepository, notifications NotificationService, validate *validator.Validate, logger zerolog.Logger) AntiCheatService {
	return &antiCheatService{
		sessions:      sessions,
		notifications: notifications,
		validator:     validate,
		logger:        logger.With().Str("component", "anti_cheat_service").Logger(),
	}
}

func (s *antiCheatService) StartSession(ctx context.Context, payload dto.SessionCreateRequest) (models.TestSession, error) {
	if err := s.validator.Struct(payload); err != nil {
		return models.TestSession{}, err
	}

	session := models.TestSession{
		TestID:    payload.TestID,
		UserID:    payload.UserID,
		TeacherID: payload.TeacherID,
	}
	if err := s.sessions.CreateSession(ctx, &session); err != nil {
		return models.TestSession{}, err
	}

	s.logger.Info().Uint("session_id", session.ID).Uint("test_id", session.TestID).Uint("user_id", session.UserID).Msg("test session started")

	return session, nil
}

func (s *antiCheatService) RecordViolation(ctx context.Context, sessionID uint, violationType models.ViolationType, details map[string]any) (dto.ViolationOutcome, error) {
	config, known := violationConfigs[violationType]
	if !known {
		return dto.ViolationOutcome{}, fmt.Errorf("%w: %q", ErrUnknownViolationType, violationType)
	}

	session, err := s.sessions.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ViolationOutcome{}, ErrSessionNotFound
		}
		return dto.ViolationOutcome{}, err
	}

	// Count is derived from stored penalty rows plus the one being recorded.
	violationCount := 1
	for _, penalty := range session.Penalties {
		if penalty.ViolationType == violationType {
			violationCount++
		}
	}

	level := penaltyLevelFor(config, violationCount)
	shouldTerminate := level == models.PenaltyTermination

	scoreReduction := config.scoreReduction
	timePenalty := config.timePenalty
	if level == models.PenaltyWarning {
		scoreReduction = 0
		timePenalty = 0
	}

	penalty := models.TestPenalty{
		SessionID:      sessionID,
		ViolationType:  violationType,
		PenaltyLevel:   level,
		Description:    fmt.Sprintf("%s violation - %s", violationType, level),
		ScoreReduction: scoreReduction,
		TimePenalty:    timePenalty,
		Details:        datatypes.JSONMap(details),
	}
	if err := s.sessions.CreatePenalty(ctx, &penalty); err != nil {
		return dto.ViolationOutcome{}, err
	}

	if err := s.recomputeSessionTotals(ctx, sessionID); err != nil {
		s.logger.Error().Err(err).Uint("session_id", sessionID).Msg("failed to recompute session penalty totals")
	}

	message := penaltyMessage(violationType, level, violationCount, config)

	s.notify(ctx, session.TeacherID, "violation_detected", fmt.Sprintf(
		"%s by %s during session %d (violation #%d, penalty %s)",
		violationType, session.User.Name, sessionID, violationCount, level,
	))
	s.notify(ctx, session.UserID, "penalty_applied", message)

	s.logger.Info().
		Uint("session_id", sessionID).
		Str("violation_type", string(violationType)).
		Str("penalty_level", string(level)).
		Int("count", violationCount).
		Bool("should_terminate", shouldTerminate).
		Msg("violation recorded")

	return dto.ViolationOutcome{
		PenaltyLevel:    level,
		ShouldTerminate: shouldTerminate,
		Message:         message,
		TotalViolations: violationCount,
		ScoreReduction:  scoreReduction,
		TimePenalty:     timePenalty,
	}, nil
}

func (s *antiCheatService) SessionViolations(ctx context.Context, sessionID uint) (dto.SessionViolationSummary, error) {
	penalties, err := s.sessions.ListPenalties(ctx, sessionID)
	if err != nil {
		return dto.SessionViolationSummary{}, err
	}

	summary := dto.SessionViolationSummary{
		ViolationsByType: emptyViolationCounts(),
	}

	for _, penalty := range penalties {
		summary.TotalViolations++
		summary.ViolationsByType[penalty.ViolationType]++
		summary.TotalScoreReduction += penalty.ScoreReduction
		summary.TotalTimePenalty += penalty.TimePenalty
		if penalty.PenaltyLevel == models.PenaltyTermination {
			summary.ShouldTerminate = true
		}
	}

	return summary, nil
}

func (s *antiCheatService) TestViolationStats(ctx context.Context, testID uint) (dto.TestViolationStats, error) {
	sessions, err := s.sessions.ListSessionsByTest(ctx, testID)
	if err != nil {
		return dto.TestViolationStats{}, err
	}

	stats := dto.TestViolationStats{
		TotalSessions:    len(sessions),
		ViolationsByType: emptyViolationCounts(),
		HighRiskSessions: []dto.HighRiskSession{},
	}

	for _, session := range sessions {
		if len(session.Penalties) == 0 {
			continue
		}

		stats.SessionsWithViolations++
		for _, penalty := range session.Penalties {
			stats.ViolationsByType[penalty.ViolationType]++
		}

		if len(session.Penalties) >= highRiskViolationCount {
			stats.HighRiskSessions = append(stats.HighRiskSessions, dto.HighRiskSession{
				SessionID:      session.ID,
				UserID:         session.UserID,
				UserName:       session.User.Name,
				ViolationCount: len(session.Penalties),
			})
		}
	}

	return stats, nil
}

// recomputeSessionTotals overwrites the session aggregates with sums over
// its penalty rows so they can never drift.
func (s *antiCheatService) recomputeSessionTotals(ctx context.Context, sessionID uint) error {
	penalties, err := s.sessions.ListPenalties(ctx, sessionID)
	if err != nil {
		return err
	}

	var scoreReduction float64
	var timePenalty int
	for _, penalty := range penalties {
		scoreReduction += penalty.ScoreReduction
		timePenalty += penalty.TimePenalty
	}

	return s.sessions.UpdateSessionTotals(ctx, sessionID, len(penalties), scoreReduction, timePenalty)
}

func (s *antiCheatService) notify(ctx context.Context, userID uint, notificationType, message string) {
	if s.notifications == nil {
		return
	}

	_, err := s.notifications.Publish(ctx, dto.NotificationCreateRequest{
		UserID:  userID,
		Type:    notificationType,
		Message: message,
	})
	if err != nil {
		s.logger.Warn().Err(err).Uint("user_id", userID).Str("type", notificationType).Msg("failed to publish violation notification")
	}
}

func penaltyLevelFor(config violationConfig, count int) models.PenaltyLevel {
	switch {
	case count >= config.terminationThreshold:
		return models.PenaltyTermination
	case count >= config.majorThreshold:
		return models.PenaltyMajor
	case count >= config.minorThreshold:
		return models.PenaltyMinor
	default:
		return models.PenaltyWarning
	}
}

func penaltyMessage(violationType models.ViolationType, level models.PenaltyLevel, count int, config violationConfig) string {
	actions := map[models.ViolationType]string{
		models.ViolationTabSwitch:      "switching tabs",
		models.ViolationFullscreenExit: "exiting fullscreen mode",
		models.ViolationCopyPaste:      "using copy/paste operations",
		models.ViolationDevTools:       "accessing developer tools",
		models.ViolationFocusLoss:      "losing window focus",
		models.ViolationContextMenu:    "using the context menu",
	}
	action := actions[violationType]

	switch level {
	case models.PenaltyWarning:
		return fmt.Sprintf("Warning: please avoid %s. This is violation #%d; penalties apply after %d.", action, count, config.minorThreshold-1)
	case models.PenaltyMinor:
		return fmt.Sprintf("Minor penalty: %s detected (violation #%d). Score reduced by %.0f%% and %d seconds added.", action, count, config.scoreReduction, config.timePenalty)
	case models.PenaltyMajor:
		return fmt.Sprintf("Major penalty: repeated %s (violation #%d). Score reduced by %.0f%% and %d seconds added.", action, count, config.scoreReduction, config.timePenalty)
	case models.PenaltyTermination:
		return fmt.Sprintf("Test terminated: too many violations for %s (%d violations).", action, count)
	default:
		return fmt.Sprintf("Violation detected: %s", action)
	}
}

func emptyViolationCounts() map[models.ViolationType]int {
	counts := make(map[models.ViolationType]int, len(violationConfigs))
	for _, violationType := range models.ViolationTypes() {
		counts[violationType] = 0
	}
	return counts
}
