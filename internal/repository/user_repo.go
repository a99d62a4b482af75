package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/codetrack-go-api/internal/models"
)

// UserRepository defines data operations for users and their platform credentials.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	// UpdateCookieStatus transitions the stored cookie status for one
	// platform without touching the rest of the row.
	UpdateCookieStatus(ctx context.Context, userID uint, platform string, status models.CredentialStatus) error
	// LinkCredential stores a username/cookie pair for a platform and marks
	// the credential LINKED.
	LinkCredential(ctx context.Context, userID uint, platform, username, cookie string) error
	// ListLinked returns users with a LINKED cookie for the platform.
	ListLinked(ctx context.Context, platform string) ([]models.User, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository instantiates the repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

func (r *userRepository) UpdateCookieStatus(ctx context.Context, userID uint, platform string, status models.CredentialStatus) error {
	column, ok := cookieStatusColumn(platform)
	if !ok {
		return gorm.ErrInvalidField
	}

	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", userID).
		Update(column, status).Error
}

func (r *userRepository) LinkCredential(ctx context.Context, userID uint, platform, username, cookie string) error {
	updates, ok := credentialColumns(platform, username, cookie)
	if !ok {
		return gorm.ErrInvalidField
	}

	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", userID).
		Updates(updates).Error
}

func (r *userRepository) ListLinked(ctx context.Context, platform string) ([]models.User, error) {
	column, ok := cookieStatusColumn(platform)
	if !ok {
		return nil, gorm.ErrInvalidField
	}

	var users []models.User
	if err := r.db.WithContext(ctx).
		Where(column+" = ?", models.CredentialLinked).
		Find(&users).Error; err != nil {
		return nil, err
	}

	return users, nil
}

func cookieStatusColumn(platform string) (string, bool) {
	switch platform {
	case models.PlatformLeetcode:
		return "leetcode_cookie_status", true
	case models.PlatformHackerrank:
		return "hackerrank_cookie_status", true
	case models.PlatformGfg:
		return "gfg_cookie_status", true
	default:
		return "", false
	}
}

func credentialColumns(platform, username, cookie string) (map[string]any, bool) {
	// A username without a cookie keeps the account trackable through the
	// public endpoints but leaves the cookie status NOT_LINKED.
	status := models.CredentialNotLinked
	if cookie != "" {
		status = models.CredentialLinked
	}

	switch platform {
	case models.PlatformLeetcode:
		return map[string]any{
			"leetcode_username":      username,
			"leetcode_cookie":        cookie,
			"leetcode_cookie_status": status,
		}, true
	case models.PlatformHackerrank:
		return map[string]any{
			"hackerrank_username":      username,
			"hackerrank_cookie":        cookie,
			"hackerrank_cookie_status": status,
		}, true
	case models.PlatformGfg:
		return map[string]any{
			"gfg_username":      username,
			"gfg_cookie":        cookie,
			"gfg_cookie_status": status,
		}, true
	default:
		return nil, false
	}
}
