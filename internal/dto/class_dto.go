package dto

import (
	"time"

	"github.com/noah-isme/codetrack-go-api/internal/models"
)

// ClassCreateRequest describes the payload for creating a class.
type ClassCreateRequest struct {
	Name      string `json:"name" validate:"required,min=2,max=255"`
	TeacherID uint   `json:"teacher_id" validate:"required,gt=0"`
}

// ClassUpdateRequest describes the payload for renaming or archiving a class.
type ClassUpdateRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=2,max=255"`
	Archived *bool   `json:"archived"`
}

// EnrollRequest adds a student to a class.
type EnrollRequest struct {
	UserID uint `json:"user_id" validate:"required,gt=0"`
}

// ClassResponse is the serialized representation of a class.
type ClassResponse struct {
	ID           uint      `json:"id"`
	Name         string    `json:"name"`
	TeacherID    uint      `json:"teacher_id"`
	Archived     bool      `json:"archived"`
	StudentCount int       `json:"student_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// LeaderboardEntry ranks one student by completed submissions.
type LeaderboardEntry struct {
	UserID    uint   `json:"user_id"`
	Name      string `json:"name"`
	Completed int    `json:"completed"`
	Rank      int    `json:"rank"`
}

// LeaderboardResponse is the class leaderboard.
type LeaderboardResponse struct {
	ClassID uint               `json:"class_id"`
	Entries []LeaderboardEntry `json:"entries"`
}

// NewClassResponse converts a model into a DTO.
func NewClassResponse(model models.Class) ClassResponse {
	return ClassResponse{
		ID:           model.ID,
		Name:         model.Name,
		TeacherID:    model.TeacherID,
		Archived:     model.Archived,
		StudentCount: len(model.Enrollments),
		CreatedAt:    model.CreatedAt,
		UpdatedAt:    model.UpdatedAt,
	}
}

// NewClassResponseSlice converts a slice of models into DTOs.
func NewClassResponseSlice(classes []models.Class) []ClassResponse {
	responses := make([]ClassResponse, 0, len(classes))
	for _, class := range classes {
		responses = append(responses, NewClassResponse(class))
	}

	return responses
}
