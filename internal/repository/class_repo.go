package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/codetrack-go-api/internal/models"
)

// ClassRepository defines persistence operations for classes and enrollments.
type ClassRepository interface {
	List(ctx context.Context, archived bool) ([]models.Class, error)
	// GetByID loads the class with enrollments (and enrolled users) preloaded.
	GetByID(ctx context.Context, id uint) (models.Class, error)
	Create(ctx context.Context, class *models.Class) error
	Update(ctx context.Context, class *models.Class) error
	Enroll(ctx context.Context, enrollment *models.Enrollment) error
	// ListEnrolledUsers returns the users enrolled in a class.
	ListEnrolledUsers(ctx context.Context, classID uint) ([]models.User, error)
}

type classRepository struct {
	db *gorm.DB
}

// NewClassRepository instantiates a GORM-backed repository.
func NewClassRepository(db *gorm.DB) ClassRepository {
	return &classRepository{db: db}
}

func (r *classRepository) List(ctx context.Context, archived bool) ([]models.Class, error) {
	var classes []models.Class
	if err := r.db.WithContext(ctx).
		Where("archived = ?", archived).
		Order("created_at DESC").
		Find(&classes).Error; err != nil {
		return nil, err
	}

	return classes, nil
}

func (r *classRepository) GetByID(ctx context.Context, id uint) (models.Class, error) {
	var class models.Class
	if err := r.db.WithContext(ctx).
		Preload("Enrollments").
		Preload("Enrollments.User").
		First(&class, id).Error; err != nil {
		return models.Class{}, err
	}

	return class, nil
}

func (r *classRepository) Create(ctx context.Context, class *models.Class) error {
	return r.db.WithContext(ctx).Create(class).Error
}

func (r *classRepository) Update(ctx context.Context, class *models.Class) error {
	return r.db.WithContext(ctx).Save(class).Error
}

func (r *classRepository) Enroll(ctx context.Context, enrollment *models.Enrollment) error {
	return r.db.WithContext(ctx).Create(enrollment).Error
}

func (r *classRepository) ListEnrolledUsers(ctx context.Context, classID uint) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Joins("JOIN enrollments ON enrollments.user_id = users.id").
		Where("enrollments.class_id = ?", classID).
		Find(&users).Error; err != nil {
		return nil, err
	}

	return users, nil
}
