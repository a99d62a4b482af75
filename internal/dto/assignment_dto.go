package dto

import (
	"time"

	"github.com/noah-isme/codetrack-go-api/internal/models"
)

// ProblemCreateRequest describes one problem inside an assignment payload.
type ProblemCreateRequest struct {
	URL        string `json:"url" validate:"required,url"`
	Title      string `json:"title" validate:"required,min=1,max=255"`
	Platform   string `json:"platform" validate:"required,oneof=leetcode hackerrank gfg other"`
	Difficulty string `json:"difficulty" validate:"omitempty,max=32"`
}

// AssignmentCreateRequest describes the payload for creating a new assignment.
type AssignmentCreateRequest struct {
	ClassID     uint                   `json:"class_id" validate:"required,gt=0"`
	Title       string                 `json:"title" validate:"required,min=3"`
	Description string                 `json:"description" validate:"omitempty,max=4000"`
	AssignDate  *string                `json:"assign_date" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	DueDate     *string                `json:"due_date" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	Problems    []ProblemCreateRequest `json:"problems" validate:"required,min=1,dive"`
}

// AssignmentUpdateRequest describes the payload for updating an assignment.
type AssignmentUpdateRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=3"`
	Description *string `json:"description" validate:"omitempty,max=4000"`
	AssignDate  *string `json:"assign_date" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	DueDate     *string `json:"due_date" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
}

// ProblemResponse serializes a problem.
type ProblemResponse struct {
	ID         uint   `json:"id"`
	URL        string `json:"url"`
	Title      string `json:"title"`
	Platform   string `json:"platform"`
	Difficulty string `json:"difficulty"`
}

// AssignmentResponse is the serialized representation returned to API clients.
type AssignmentResponse struct {
	ID          uint              `json:"id"`
	ClassID     uint              `json:"class_id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	AssignDate  *time.Time        `json:"assign_date"`
	DueDate     *time.Time        `json:"due_date"`
	Problems    []ProblemResponse `json:"problems"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// NewAssignmentResponse converts a model into a DTO.
func NewAssignmentResponse(model models.Assignment) AssignmentResponse {
	problems := make([]ProblemResponse, 0, len(model.Problems))
	for _, problem := range model.Problems {
		problems = append(problems, ProblemResponse{
			ID:         problem.ID,
			URL:        problem.URL,
			Title:      problem.Title,
			Platform:   problem.Platform,
			Difficulty: problem.Difficulty,
		})
	}

	return AssignmentResponse{
		ID:          model.ID,
		ClassID:     model.ClassID,
		Title:       model.Title,
		Description: model.Description,
		AssignDate:  model.AssignDate,
		DueDate:     model.DueDate,
		Problems:    problems,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}

// NewAssignmentResponseSlice converts a slice of models into DTOs.
func NewAssignmentResponseSlice(assignments []models.Assignment) []AssignmentResponse {
	responses := make([]AssignmentResponse, 0, len(assignments))
	for _, assignment := range assignments {
		responses = append(responses, NewAssignmentResponse(assignment))
	}

	return responses
}
