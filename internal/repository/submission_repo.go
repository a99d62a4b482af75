package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/codetrack-go-api/internal/models"
)

// PendingSubmissionQuery narrows pending-submission scans.
type PendingSubmissionQuery struct {
	AssignmentID *uint
	UserID       *uint
	Platform     *string
}

// SubmissionRepository defines data operations for submissions.
type SubmissionRepository interface {
	// ListPendingPage returns up to limit pending submissions starting at
	// offset, with user and problem preloaded, ordered by id for a stable
	// paginated sweep.
	ListPendingPage(ctx context.Context, limit, offset int) ([]models.Submission, error)
	// ListPending returns all pending submissions matching the query.
	ListPending(ctx context.Context, query PendingSubmissionQuery) ([]models.Submission, error)
	// MarkCompleted transitions a submission to completed with the given
	// timestamp, only if it is still pending. Returns true when the row was
	// updated, false when another sweep already completed it.
	MarkCompleted(ctx context.Context, id uint, submittedAt time.Time) (bool, error)
	Create(ctx context.Context, submission *models.Submission) error
	CreateBatch(ctx context.Context, submissions []models.Submission) error
	// CountCompletedByUser returns completed-submission counts per user for
	// the problems of a class, used for leaderboard scoring.
	CountCompletedByUser(ctx context.Context, classID uint) (map[uint]int, error)
}

type submissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository instantiates the repository.
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) ListPendingPage(ctx context.Context, limit, offset int) ([]models.Submission, error) {
	var submissions []models.Submission
	if err := r.db.WithContext(ctx).
		Model(&models.Submission{}).
		Preload("User").
		Preload("Problem").
		Where("completed = ?", false).
		Order("id").
		Offset(offset).
		Limit(limit).
		Find(&submissions).Error; err != nil {
		return nil, err
	}

	return submissions, nil
}

func (r *submissionRepository) ListPending(ctx context.Context, query PendingSubmissionQuery) ([]models.Submission, error) {
	tx := r.db.WithContext(ctx).
		Model(&models.Submission{}).
		Preload("User").
		Preload("Problem").
		Joins("JOIN problems ON problems.id = submissions.problem_id").
		Where("submissions.completed = ?", false)

	if query.AssignmentID != nil {
		tx = tx.Where("problems.assignment_id = ?", *query.AssignmentID)
	}
	if query.UserID != nil {
		tx = tx.Where("submissions.user_id = ?", *query.UserID)
	}
	if query.Platform != nil {
		tx = tx.Where("problems.platform = ?", *query.Platform)
	}

	var submissions []models.Submission
	if err := tx.Order("submissions.id").Find(&submissions).Error; err != nil {
		return nil, err
	}

	return submissions, nil
}

func (r *submissionRepository) MarkCompleted(ctx context.Context, id uint, submittedAt time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Submission{}).
		Where("id = ? AND completed = ?", id, false).
		Updates(map[string]any{
			"completed":       true,
			"submission_time": submittedAt,
		})
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

func (r *submissionRepository) Create(ctx context.Context, submission *models.Submission) error {
	return r.db.WithContext(ctx).Create(submission).Error
}

func (r *submissionRepository) CreateBatch(ctx context.Context, submissions []models.Submission) error {
	if len(submissions) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(submissions, 100).Error
}

func (r *submissionRepository) CountCompletedByUser(ctx context.Context, classID uint) (map[uint]int, error) {
	type row struct {
		UserID uint
		Count  int
	}

	var rows []row
	if err := r.db.WithContext(ctx).
		Model(&models.Submission{}).
		Select("submissions.user_id AS user_id, COUNT(*) AS count").
		Joins("JOIN problems ON problems.id = submissions.problem_id").
		Joins("JOIN assignments ON assignments.id = problems.assignment_id").
		Where("assignments.class_id = ? AND submissions.completed = ?", classID, true).
		Group("submissions.user_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[uint]int, len(rows))
	for _, r := range rows {
		counts[r.UserID] = r.Count
	}

	return counts, nil
}
