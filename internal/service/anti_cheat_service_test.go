package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/codetrack-go-api/internal/dto"
	"github.com/noah-isme/codetrack-go-api/internal/models"
)

type fakeSessionRepo struct {
	sessions  map[uint]*models.TestSession
	penalties map[uint][]models.TestPenalty
	nextID    uint
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{
		sessions:  make(map[uint]*models.TestSession),
		penalties: make(map[uint][]models.TestPenalty),
		nextID:    1,
	}
}

func (f *fakeSessionRepo) GetSession(_ context.Context, id uint) (models.TestSession, error) {
	session, ok := f.sessions[id]
	if !ok {
		return models.TestSession{}, gorm.ErrRecordNotFound
	}
	copied := *session
	copied.Penalties = append([]models.TestPenalty(nil), f.penalties[id]...)
	return copied, nil
}

func (f *fakeSessionRepo) CreateSession(_ context.Context, session *models.TestSession) error {
	session.ID = f.nextID
	f.nextID++
	stored := *session
	f.sessions[session.ID] = &stored
	return nil
}

func (f *fakeSessionRepo) CreatePenalty(_ context.Context, penalty *models.TestPenalty) error {
	penalty.ID = f.nextID
	f.nextID++
	f.penalties[penalty.SessionID] = append(f.penalties[penalty.SessionID], *penalty)
	return nil
}

func (f *fakeSessionRepo) ListPenalties(_ context.Context, sessionID uint) ([]models.TestPenalty, error) {
	return append([]models.TestPenalty(nil), f.penalties[sessionID]...), nil
}

func (f *fakeSessionRepo) UpdateSessionTotals(_ context.Context, sessionID uint, totalPenalties int, scoreReduction float64, timePenalty int) error {
	session, ok := f.sessions[sessionID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	session.TotalPenalties = totalPenalties
	session.ScoreReduction = scoreReduction
	session.TimePenalty = timePenalty
	return nil
}

func (f *fakeSessionRepo) ListSessionsByTest(_ context.Context, testID uint) ([]models.TestSession, error) {
	var sessions []models.TestSession
	for id, session := range f.sessions {
		if session.TestID != testID {
			continue
		}
		copied := *session
		copied.Penalties = append([]models.TestPenalty(nil), f.penalties[id]...)
		sessions = append(sessions, copied)
	}
	return sessions, nil
}

type fakeNotifier struct {
	published []dto.NotificationCreateRequest
}

func (f *fakeNotifier) Publish(_ context.Context, payload dto.NotificationCreateRequest) (dto.NotificationResponse, error) {
	f.published = append(f.published, payload)
	return dto.NotificationResponse{UserID: payload.UserID, Type: payload.Type, Message: payload.Message}, nil
}

func (f *fakeNotifier) List(context.Context, uint, int, int) ([]dto.NotificationResponse, error) {
	return nil, nil
}

func (f *fakeNotifier) MarkRead(context.Context, uint, uint) (dto.NotificationResponse, error) {
	return dto.NotificationResponse{}, nil
}

func (f *fakeNotifier) Subscribe(uint) (<-chan dto.NotificationResponse, func()) {
	ch := make(chan dto.NotificationResponse)
	return ch, func() { close(ch) }
}

func (f *fakeNotifier) Start(context.Context) {}

func newAntiCheatFixture(t *testing.T) (AntiCheatService, *fakeSessionRepo, *fakeNotifier, uint) {
	t.Helper()

	repo := newFakeSessionRepo()
	notifier := &fakeNotifier{}
	svc := NewAntiCheatService(repo, notifier, validator.New(validator.WithRequiredStructEnabled()), zerolog.Nop())

	session, err := svc.StartSession(context.Background(), dto.SessionCreateRequest{TestID: 7, UserID: 1, TeacherID: 2})
	require.NoError(t, err)

	return svc, repo, notifier, session.ID
}

func TestRecordViolationFirstTabSwitchIsWarning(t *testing.T) {
	svc, repo, notifier, sessionID := newAntiCheatFixture(t)

	outcome, err := svc.RecordViolation(context.Background(), sessionID, models.ViolationTabSwitch, map[string]any{"from": "editor"})
	require.NoError(t, err)

	require.Equal(t, models.PenaltyWarning, outcome.PenaltyLevel)
	require.False(t, outcome.ShouldTerminate)
	require.Equal(t, 1, outcome.TotalViolations)
	require.Zero(t, outcome.ScoreReduction)
	require.Zero(t, outcome.TimePenalty)

	// Warnings still create a penalty row but contribute no deductions.
	session := repo.sessions[sessionID]
	require.Equal(t, 1, session.TotalPenalties)
	require.Zero(t, session.ScoreReduction)
	require.Zero(t, session.TimePenalty)

	// Teacher and student are both notified.
	require.Len(t, notifier.published, 2)
	require.Equal(t, uint(2), notifier.published[0].UserID)
	require.Equal(t, "violation_detected", notifier.published[0].Type)
	require.Equal(t, uint(1), notifier.published[1].UserID)
	require.Equal(t, "penalty_applied", notifier.published[1].Type)
}

func TestRecordViolationEscalatesToTermination(t *testing.T) {
	svc, repo, _, sessionID := newAntiCheatFixture(t)

	var last dto.ViolationOutcome
	for i := 0; i < 8; i++ {
		outcome, err := svc.RecordViolation(context.Background(), sessionID, models.ViolationTabSwitch, nil)
		require.NoError(t, err)
		last = outcome
	}

	require.Equal(t, models.PenaltyTermination, last.PenaltyLevel)
	require.True(t, last.ShouldTerminate)
	require.Equal(t, 8, last.TotalViolations)

	// Totals equal the sum over all penalty rows: warnings (count 1 and 2)
	// apply nothing, counts 3 and 4 are MINOR, 5 through 7 MAJOR, 8
	// TERMINATION; each non-warning level deducts 5 points and 30 seconds.
	session := repo.sessions[sessionID]
	require.Equal(t, 8, session.TotalPenalties)
	require.Equal(t, float64(30), session.ScoreReduction)
	require.Equal(t, 180, session.TimePenalty)
}

func TestRecordViolationDevToolsEscalatesImmediately(t *testing.T) {
	svc, _, _, sessionID := newAntiCheatFixture(t)

	outcome, err := svc.RecordViolation(context.Background(), sessionID, models.ViolationDevTools, nil)
	require.NoError(t, err)
	require.Equal(t, models.PenaltyMinor, outcome.PenaltyLevel)
	require.Equal(t, float64(20), outcome.ScoreReduction)
	require.Equal(t, 180, outcome.TimePenalty)

	outcome, err = svc.RecordViolation(context.Background(), sessionID, models.ViolationDevTools, nil)
	require.NoError(t, err)
	require.Equal(t, models.PenaltyMajor, outcome.PenaltyLevel)

	outcome, err = svc.RecordViolation(context.Background(), sessionID, models.ViolationDevTools, nil)
	require.NoError(t, err)
	require.Equal(t, models.PenaltyTermination, outcome.PenaltyLevel)
	require.True(t, outcome.ShouldTerminate)
}

func TestRecordViolationCountsArePerType(t *testing.T) {
	svc, _, _, sessionID := newAntiCheatFixture(t)

	_, err := svc.RecordViolation(context.Background(), sessionID, models.ViolationTabSwitch, nil)
	require.NoError(t, err)

	// A different violation type starts its own count.
	outcome, err := svc.RecordViolation(context.Background(), sessionID, models.ViolationCopyPaste, nil)
	require.NoError(t, err)
	require.Equal(t, models.PenaltyWarning, outcome.PenaltyLevel)
	require.Equal(t, 1, outcome.TotalViolations)
}

func TestRecordViolationUnknownSession(t *testing.T) {
	svc, _, _, _ := newAntiCheatFixture(t)

	_, err := svc.RecordViolation(context.Background(), 999, models.ViolationTabSwitch, nil)
	require.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRecordViolationUnknownType(t *testing.T) {
	svc, _, _, sessionID := newAntiCheatFixture(t)

	_, err := svc.RecordViolation(context.Background(), sessionID, models.ViolationType("MIND_READING"), nil)
	require.ErrorIs(t, err, ErrUnknownViolationType)
}

func TestSessionViolationsSummary(t *testing.T) {
	svc, _, _, sessionID := newAntiCheatFixture(t)

	for i := 0; i < 3; i++ {
		_, err := svc.RecordViolation(context.Background(), sessionID, models.ViolationTabSwitch, nil)
		require.NoError(t, err)
	}
	_, err := svc.RecordViolation(context.Background(), sessionID, models.ViolationContextMenu, nil)
	require.NoError(t, err)

	summary, err := svc.SessionViolations(context.Background(), sessionID)
	require.NoError(t, err)
	require.Equal(t, 4, summary.TotalViolations)
	require.Equal(t, 3, summary.ViolationsByType[models.ViolationTabSwitch])
	require.Equal(t, 1, summary.ViolationsByType[models.ViolationContextMenu])
	require.Equal(t, 0, summary.ViolationsByType[models.ViolationDevTools])
	require.False(t, summary.ShouldTerminate)
}

func TestTestViolationStatsFlagsHighRiskSessions(t *testing.T) {
	svc, _, _, sessionID := newAntiCheatFixture(t)

	quiet, err := svc.StartSession(context.Background(), dto.SessionCreateRequest{TestID: 7, UserID: 3, TeacherID: 2})
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		_, err := svc.RecordViolation(context.Background(), sessionID, models.ViolationFocusLoss, nil)
		require.NoError(t, err)
	}

	stats, err := svc.TestViolationStats(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, 2, stats.TotalSessions)
	require.Equal(t, 1, stats.SessionsWithViolations)
	require.Equal(t, 5, stats.ViolationsByType[models.ViolationFocusLoss])
	require.Len(t, stats.HighRiskSessions, 1)
	require.Equal(t, sessionID, stats.HighRiskSessions[0].SessionID)
	require.NotEqual(t, quiet.ID, stats.HighRiskSessions[0].SessionID)
}
