package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/codetrack-go-api/internal/models"
)

// TestSessionRepository defines persistence for proctored test sessions and penalties.
type TestSessionRepository interface {
	// GetSession loads a session with its penalty rows preloaded.
	GetSession(ctx context.Context, id uint) (models.TestSession, error)
	CreateSession(ctx context.Context, session *models.TestSession) error
	CreatePenalty(ctx context.Context, penalty *models.TestPenalty) error
	ListPenalties(ctx context.Context, sessionID uint) ([]models.TestPenalty, error)
	// UpdateSessionTotals overwrites the derived aggregate columns.
	UpdateSessionTotals(ctx context.Context, sessionID uint, totalPenalties int, scoreReduction float64, timePenalty int) error
	// ListSessionsByTest loads all sessions of a test with penalties and users preloaded.
	ListSessionsByTest(ctx context.Context, testID uint) ([]models.TestSession, error)
}

type testSessionRepository struct {
	db *gorm.DB
}

// NewTestSessionRepository instantiates a GORM-backed repository.
func NewTestSessionRepository(db *gorm.DB) TestSessionRepository {
	return &testSessionRepository{db: db}
}

func (r *testSessionRepository) GetSession(ctx context.Context, id uint) (models.TestSession, error) {
	var session models.TestSession
	if err := r.db.WithContext(ctx).
		Preload("Penalties").
		Preload("User").
		First(&session, id).Error; err != nil {
		return models.TestSession{}, err
	}

	return session, nil
}

func (r *testSessionRepository) CreateSession(ctx context.Context, session *models.TestSession) error {
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *testSessionRepository) CreatePenalty(ctx context.Context, penalty *models.TestPenalty) error {
	return r.db.WithContext(ctx).Create(penalty).Error
}

func (r *testSessionRepository) ListPenalties(ctx context.Context, sessionID uint) ([]models.TestPenalty, error) {
	var penalties []models.TestPenalty
	if err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at").
		Find(&penalties).Error; err != nil {
		return nil, err
	}

	return penalties, nil
}

func (r *testSessionRepository) UpdateSessionTotals(ctx context.Context, sessionID uint, totalPenalties int, scoreReduction float64, timePenalty int) error {
	return r.db.WithContext(ctx).
		Model(&models.TestSession{}).
		Where("id = ?", sessionID).
		Updates(map[string]any{
			"total_penalties": totalPenalties,
			"score_reduction": scoreReduction,
			"time_penalty":    timePenalty,
		}).Error
}

func (r *testSessionRepository) ListSessionsByTest(ctx context.Context, testID uint) ([]models.TestSession, error) {
	var sessions []models.TestSession
	if err := r.db.WithContext(ctx).
		Preload("Penalties").
		Preload("User").
		Where("test_id = ?", testID).
		Find(&sessions).Error; err != nil {
		return nil, err
	}

	return sessions, nil
}
