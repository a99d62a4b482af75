package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/codetrack-go-api/internal/dto"
	"github.com/noah-isme/codetrack-go-api/internal/models"
	"github.com/noah-isme/codetrack-go-api/internal/repository"
)

// ErrClassNotFound indicates the class does not exist.
var ErrClassNotFound = errors.New("class not found")

const defaultLeaderboardTTL = 5 * time.Minute

// ClassService manages classes, enrollment, the completion leaderboard and
// the per-class credential health report.
type ClassService interface {
	List(ctx context.Context, archived bool) ([]dto.ClassResponse, error)
	Get(ctx context.Context, id uint) (dto.ClassResponse, error)
	Create(ctx context.Context, payload dto.ClassCreateRequest) (dto.ClassResponse, error)
	Update(ctx context.Context, id uint, payload dto.ClassUpdateRequest) (dto.ClassResponse, error)
	Enroll(ctx context.Context, classID uint, payload dto.EnrollRequest) error
	Leaderboard(ctx context.Context, classID uint) (dto.LeaderboardResponse, error)
	CredentialReport(ctx context.Context, classID uint) (dto.ClassCredentialReport, error)
}

type classService struct {
	classes        repository.ClassRepository
	assignments    repository.AssignmentRepository
	submissions    repository.SubmissionRepository
	users          repository.UserRepository
	redis          *redis.Client
	leaderboardTTL time.Duration
	validator      *validator.Validate
	logger         zerolog.Logger
}

// NewClassService constructs the class service. redisClient may be nil, in
// which case the leaderboard is computed on every request.
func NewClassService(
	classes repository.ClassRepository,
	assignments repository.AssignmentRepository,
	submissions repository.SubmissionRepository,
	users repository.UserRepository,
	redisClient *redis.Client,
	leaderboardTTL time.Duration,
	validate *validator.Validate,
	logger zerolog.Logger,
) ClassService {
	if leaderboardTTL <= 0 {
		leaderboardTTL = defaultLeaderboardTTL
	}

	return &classService{
		classes:        classes,
		assignments:    assignments,
		submissions:    submissions,
		users:          users,
		redis:          redisClient,
		leaderboardTTL: leaderboardTTL,
		validator:      validate,
		logger:         logger.With().Str("component", "class_service").Logger(),
	}
}

func (s *classService) List(ctx context.Context, archived bool) ([]dto.ClassResponse, error) {
	classes, err := s.classes.List(ctx, archived)
	if err != nil {
		return nil, err
	}

	return dto.NewClassResponseSlice(classes), nil
}

func (s *classService) Get(ctx context.Context, id uint) (dto.ClassResponse, error) {
	class, err := s.classes.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ClassResponse{}, ErrClassNotFound
		}
		return dto.ClassResponse{}, err
	}

	return dto.NewClassResponse(class), nil
}

func (s *classService) Create(ctx context.Context, payload dto.ClassCreateRequest) (dto.ClassResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ClassResponse{}, err
	}

	class := models.Class{
		Name:      payload.Name,
		TeacherID: payload.TeacherID,
	}
	if err := s.classes.Create(ctx, &class); err != nil {
		return dto.ClassResponse{}, err
	}

	s.logger.Info().Uint("class_id", class.ID).Str("name", class.Name).Msg("class created")

	return dto.NewClassResponse(class), nil
}

func (s *classService) Update(ctx context.Context, id uint, payload dto.ClassUpdateRequest) (dto.ClassResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ClassResponse{}, err
	}

	class, err := s.classes.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ClassResponse{}, ErrClassNotFound
		}
		return dto.ClassResponse{}, err
	}

	if payload.Name != nil {
		class.Name = *payload.Name
	}
	if payload.Archived != nil {
		class.Archived = *payload.Archived
	}

	if err := s.classes.Update(ctx, &class); err != nil {
		return dto.ClassResponse{}, err
	}

	return dto.NewClassResponse(class), nil
}

// Enroll adds a student to a class and backfills pending submissions for
// every problem already assigned to it.
func (s *classService) Enroll(ctx context.Context, classID uint, payload dto.EnrollRequest) error {
	if err := s.validator.Struct(payload); err != nil {
		return err
	}

	if _, err := s.classes.GetByID(ctx, classID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrClassNotFound
		}
		return err
	}
	if _, err := s.users.GetByID(ctx, payload.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	enrollment := models.Enrollment{ClassID: classID, UserID: payload.UserID}
	if err := s.classes.Enroll(ctx, &enrollment); err != nil {
		return err
	}

	assignments, err := s.assignments.ListByClass(ctx, classID)
	if err != nil {
		return err
	}

	var rows []models.Submission
	for _, assignment := range assignments {
		for _, problem := range assignment.Problems {
			rows = append(rows, models.Submission{
				UserID:    payload.UserID,
				ProblemID: problem.ID,
			})
		}
	}
	if err := s.submissions.CreateBatch(ctx, rows); err != nil {
		s.logger.Error().Err(err).Uint("class_id", classID).Uint("user_id", payload.UserID).Msg("failed to backfill pending submissions for new enrollment")
	}

	s.invalidateLeaderboard(ctx, classID)

	return nil
}

func (s *classService) Leaderboard(ctx context.Context, classID uint) (dto.LeaderboardResponse, error) {
	cacheKey := leaderboardCacheKey(classID)
	if s.redis != nil {
		cached, err := s.redis.Get(ctx, cacheKey).Result()
		if err == nil {
			var response dto.LeaderboardResponse
			if jsonErr := json.Unmarshal([]byte(cached), &response); jsonErr == nil {
				return response, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			s.logger.Warn().Err(err).Msg("leaderboard cache read failed")
		}
	}

	response, err := s.computeLeaderboard(ctx, classID)
	if err != nil {
		return dto.LeaderboardResponse{}, err
	}

	if s.redis != nil {
		if payload, jsonErr := json.Marshal(response); jsonErr == nil {
			if err := s.redis.Set(ctx, cacheKey, payload, s.leaderboardTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("leaderboard cache write failed")
			}
		}
	}

	return response, nil
}

func (s *classService) computeLeaderboard(ctx context.Context, classID uint) (dto.LeaderboardResponse, error) {
	students, err := s.classes.ListEnrolledUsers(ctx, classID)
	if err != nil {
		return dto.LeaderboardResponse{}, err
	}

	counts, err := s.submissions.CountCompletedByUser(ctx, classID)
	if err != nil {
		return dto.LeaderboardResponse{}, err
	}

	entries := make([]dto.LeaderboardEntry, 0, len(students))
	for _, student := range students {
		if student.Role != models.RoleStudent {
			continue
		}
		entries = append(entries, dto.LeaderboardEntry{
			UserID:    student.ID,
			Name:      student.Name,
			Completed: counts[student.ID],
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Completed != entries[j].Completed {
			return entries[i].Completed > entries[j].Completed
		}
		return entries[i].Name < entries[j].Name
	})

	// Students with equal completion counts share a rank.
	for i := range entries {
		if i > 0 && entries[i].Completed == entries[i-1].Completed {
			entries[i].Rank = entries[i-1].Rank
			continue
		}
		entries[i].Rank = i + 1
	}

	return dto.LeaderboardResponse{ClassID: classID, Entries: entries}, nil
}

func (s *classService) CredentialReport(ctx context.Context, classID uint) (dto.ClassCredentialReport, error) {
	class, err := s.classes.GetByID(ctx, classID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ClassCredentialReport{}, ErrClassNotFound
		}
		return dto.ClassCredentialReport{}, err
	}

	report := dto.ClassCredentialReport{
		ClassID:   class.ID,
		ClassName: class.Name,
		Students:  []dto.StudentCredentialStatus{},
	}

	platforms := []string{models.PlatformLeetcode, models.PlatformHackerrank, models.PlatformGfg}
	for _, enrollment := range class.Enrollments {
		student := enrollment.User
		if student.Role != models.RoleStudent {
			continue
		}

		status := dto.StudentCredentialStatus{
			UserID:    student.ID,
			Name:      student.Name,
			Email:     student.Email,
			Platforms: make(map[string]dto.PlatformCredentialStatus, len(platforms)),
		}
		for _, platform := range platforms {
			username := student.PlatformUsername(platform)
			_, cookieStatus := student.PlatformCookie(platform)
			status.Platforms[platform] = dto.PlatformCredentialStatus{
				HasUsername:  username != "",
				Username:     username,
				CookieStatus: string(cookieStatus),
			}
		}

		report.Students = append(report.Students, status)
	}
	report.StudentCount = len(report.Students)

	return report, nil
}

func (s *classService) invalidateLeaderboard(ctx context.Context, classID uint) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Del(ctx, leaderboardCacheKey(classID)).Err(); err != nil {
		s.logger.Warn().Err(err).Uint("class_id", classID).Msg("failed to invalidate leaderboard cache")
	}
}

func leaderboardCacheKey(classID uint) string {
	return fmt.Sprintf("codetrack:leaderboard:%d", classID)
}
