package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/codetrack-go-api/internal/dto"
	"github.com/noah-isme/codetrack-go-api/internal/models"
	"github.com/noah-isme/codetrack-go-api/internal/repository"
)

var (
	// ErrUserNotFound indicates the user does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrUnknownPlatform indicates an unsupported judge platform identifier.
	ErrUnknownPlatform = errors.New("unknown platform")
)

// UserService exposes profile lookups and judge-platform credential linking.
type UserService interface {
	Get(ctx context.Context, id uint) (models.User, error)
	// LinkPlatformCredential stores a judge-platform username and optional
	// session cookie. Providing a cookie marks the credential LINKED;
	// linking is the only path back from EXPIRED.
	LinkPlatformCredential(ctx context.Context, userID uint, platform string, payload dto.CredentialLinkRequest) (models.User, error)
}

type userService struct {
	users     repository.UserRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewUserService constructs the user service.
func NewUserService(users repository.UserRepository, validate *validator.Validate, logger zerolog.Logger) UserService {
	return &userService{
		users:     users,
		validator: validate,
		logger:    logger.With().Str("component", "user_service").Logger(),
	}
}

func (s *userService) Get(ctx context.Context, id uint) (models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, err
	}

	return user, nil
}

func (s *userService) LinkPlatformCredential(ctx context.Context, userID uint, platform string, payload dto.CredentialLinkRequest) (models.User, error) {
	if err := s.validator.Struct(payload); err != nil {
		return models.User{}, err
	}

	switch platform {
	case models.PlatformLeetcode, models.PlatformHackerrank, models.PlatformGfg:
	default:
		return models.User{}, ErrUnknownPlatform
	}

	if _, err := s.Get(ctx, userID); err != nil {
		return models.User{}, err
	}

	if err := s.users.LinkCredential(ctx, userID, platform, payload.Username, payload.Cookie); err != nil {
		return models.User{}, err
	}

	s.logger.Info().
		Uint("user_id", userID).
		Str("platform", platform).
		Bool("cookie_provided", payload.Cookie != "").
		Msg("platform credential linked")

	return s.Get(ctx, userID)
}
