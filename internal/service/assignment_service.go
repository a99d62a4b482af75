package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/codetrack-go-api/internal/dto"
	"github.com/noah-isme/codetrack-go-api/internal/models"
	"github.com/noah-isme/codetrack-go-api/internal/repository"
)

// ErrAssignmentNotFound indicates the assignment does not exist.
var ErrAssignmentNotFound = errors.New("assignment not found")

// AssignmentService manages assignments, their problems and the pending
// submission rows that the reconciliation engine later completes.
type AssignmentService interface {
	ListByClass(ctx context.Context, classID uint) ([]dto.AssignmentResponse, error)
	Get(ctx context.Context, id uint) (dto.AssignmentResponse, error)
	Create(ctx context.Context, payload dto.AssignmentCreateRequest) (dto.AssignmentResponse, error)
	Update(ctx context.Context, id uint, payload dto.AssignmentUpdateRequest) (dto.AssignmentResponse, error)
	Delete(ctx context.Context, id uint) error
	AddProblems(ctx context.Context, assignmentID uint, problems []dto.ProblemCreateRequest) (dto.AssignmentResponse, error)
}

type assignmentService struct {
	assignments repository.AssignmentRepository
	classes     repository.ClassRepository
	submissions repository.SubmissionRepository
	validator   *validator.Validate
	logger      zerolog.Logger
}

// NewAssignmentService constructs the assignment service.
func NewAssignmentService(
	assignments repository.AssignmentRepository,
	classes repository.ClassRepository,
	submissions repository.SubmissionRepository,
	validate *validator.Validate,
	logger zerolog.Logger,
) AssignmentService {
	return &assignmentService{
		assignments: assignments,
		classes:     classes,
		submissions: submissions,
		validator:   validate,
		logger:      logger.With().Str("component", "assignment_service").Logger(),
	}
}

func (s *assignmentService) ListByClass(ctx context.Context, classID uint) ([]dto.AssignmentResponse, error) {
	assignments, err := s.assignments.ListByClass(ctx, classID)
	if err != nil {
		return nil, err
	}

	return dto.NewAssignmentResponseSlice(assignments), nil
}

func (s *assignmentService) Get(ctx context.Context, id uint) (dto.AssignmentResponse, error) {
	assignment, err := s.assignments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssignmentResponse{}, ErrAssignmentNotFound
		}
		return dto.AssignmentResponse{}, err
	}

	return dto.NewAssignmentResponse(assignment), nil
}

func (s *assignmentService) Create(ctx context.Context, payload dto.AssignmentCreateRequest) (dto.AssignmentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AssignmentResponse{}, err
	}

	if _, err := s.classes.GetByID(ctx, payload.ClassID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssignmentResponse{}, ErrClassNotFound
		}
		return dto.AssignmentResponse{}, err
	}

	assignDate, err := parseOptionalTime(payload.AssignDate)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}
	dueDate, err := parseOptionalTime(payload.DueDate)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	assignment := models.Assignment{
		ClassID:     payload.ClassID,
		Title:       payload.Title,
		Description: payload.Description,
		AssignDate:  assignDate,
		DueDate:     dueDate,
	}
	for _, problem := range payload.Problems {
		assignment.Problems = append(assignment.Problems, models.Problem{
			URL:        problem.URL,
			Title:      problem.Title,
			Platform:   problem.Platform,
			Difficulty: problem.Difficulty,
		})
	}

	if err := s.assignments.Create(ctx, &assignment); err != nil {
		return dto.AssignmentResponse{}, err
	}

	if err := s.fanOutSubmissions(ctx, assignment.ClassID, assignment.Problems); err != nil {
		s.logger.Error().Err(err).Uint("assignment_id", assignment.ID).Msg("failed to create pending submissions for enrolled students")
	}

	s.logger.Info().
		Uint("assignment_id", assignment.ID).
		Uint("class_id", assignment.ClassID).
		Int("problems", len(assignment.Problems)).
		Msg("assignment created")

	return dto.NewAssignmentResponse(assignment), nil
}

func (s *assignmentService) Update(ctx context.Context, id uint, payload dto.AssignmentUpdateRequest) (dto.AssignmentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AssignmentResponse{}, err
	}

	assignment, err := s.assignments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssignmentResponse{}, ErrAssignmentNotFound
		}
		return dto.AssignmentResponse{}, err
	}

	if payload.Title != nil {
		assignment.Title = *payload.Title
	}
	if payload.Description != nil {
		assignment.Description = *payload.Description
	}
	if payload.AssignDate != nil {
		assignDate, err := parseOptionalTime(payload.AssignDate)
		if err != nil {
			return dto.AssignmentResponse{}, err
		}
		assignment.AssignDate = assignDate
	}
	if payload.DueDate != nil {
		dueDate, err := parseOptionalTime(payload.DueDate)
		if err != nil {
			return dto.AssignmentResponse{}, err
		}
		assignment.DueDate = dueDate
	}

	if err := s.assignments.Update(ctx, &assignment); err != nil {
		return dto.AssignmentResponse{}, err
	}

	return dto.NewAssignmentResponse(assignment), nil
}

func (s *assignmentService) Delete(ctx context.Context, id uint) error {
	if _, err := s.assignments.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAssignmentNotFound
		}
		return err
	}

	return s.assignments.Delete(ctx, id)
}

func (s *assignmentService) AddProblems(ctx context.Context, assignmentID uint, problems []dto.ProblemCreateRequest) (dto.AssignmentResponse, error) {
	for _, problem := range problems {
		if err := s.validator.Struct(problem); err != nil {
			return dto.AssignmentResponse{}, err
		}
	}

	assignment, err := s.assignments.GetByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssignmentResponse{}, ErrAssignmentNotFound
		}
		return dto.AssignmentResponse{}, err
	}

	rows := make([]models.Problem, 0, len(problems))
	for _, problem := range problems {
		rows = append(rows, models.Problem{
			AssignmentID: assignment.ID,
			URL:          problem.URL,
			Title:        problem.Title,
			Platform:     problem.Platform,
			Difficulty:   problem.Difficulty,
		})
	}

	if err := s.assignments.AddProblems(ctx, rows); err != nil {
		return dto.AssignmentResponse{}, err
	}

	if err := s.fanOutSubmissions(ctx, assignment.ClassID, rows); err != nil {
		s.logger.Error().Err(err).Uint("assignment_id", assignment.ID).Msg("failed to create pending submissions for new problems")
	}

	return s.Get(ctx, assignmentID)
}

// fanOutSubmissions creates one pending submission per enrolled student per
// problem so the reconciliation sweep has rows to work through.
func (s *assignmentService) fanOutSubmissions(ctx context.Context, classID uint, problems []models.Problem) error {
	students, err := s.classes.ListEnrolledUsers(ctx, classID)
	if err != nil {
		return err
	}

	rows := make([]models.Submission, 0, len(students)*len(problems))
	for _, student := range students {
		if student.Role != models.RoleStudent {
			continue
		}
		for _, problem := range problems {
			rows = append(rows, models.Submission{
				UserID:    student.ID,
				ProblemID: problem.ID,
			})
		}
	}

	return s.submissions.CreateBatch(ctx, rows)
}

func parseOptionalTime(value *string) (*time.Time, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, *value)
	if err != nil {
		return nil, err
	}
	utc := parsed.UTC()
	return &utc, nil
}
