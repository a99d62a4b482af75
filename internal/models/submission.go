package models

import "time"

// CompletionStatus classifies a confirmed solve relative to the assignment window.
type CompletionStatus string

const (
	// StatusBeforeAssignment means the problem was solved before the assignment opened.
	StatusBeforeAssignment CompletionStatus = "BEFORE_ASSIGNMENT"
	// StatusOnTime means the problem was solved within the assignment window.
	StatusOnTime CompletionStatus = "ON_TIME"
	// StatusLate means the problem was solved after the due date cutoff.
	StatusLate CompletionStatus = "LATE"
)

// Submission tracks whether one student has solved one assigned problem.
// Rows are created when a problem is assigned to a class (one per enrolled
// student) and only ever transition completed false -> true, with
// SubmissionTime set exactly when Completed is true.
type Submission struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	UserID         uint       `gorm:"not null;uniqueIndex:idx_user_problem" json:"user_id"`
	ProblemID      uint       `gorm:"not null;uniqueIndex:idx_user_problem" json:"problem_id"`
	Completed      bool       `gorm:"not null;default:false;index" json:"completed"`
	SubmissionTime *time.Time `json:"submission_time"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	User           User       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"user"`
	Problem        Problem    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"problem"`
}

// ClassifyCompletion places a solve timestamp in the assignment window.
// A missing assign date skips the early check and a missing due date skips
// the late check; the due-date cutoff is inclusive of 23:59:59.999 UTC.
func ClassifyCompletion(submittedAt time.Time, assignDate, dueDate *time.Time) CompletionStatus {
	if assignDate != nil && submittedAt.Before(*assignDate) {
		return StatusBeforeAssignment
	}

	if dueDate != nil {
		d := dueDate.UTC()
		cutoff := time.Date(d.Year(), d.Month(), d.Day(), 23, 59, 59, 999*int(time.Millisecond), time.UTC)
		if submittedAt.After(cutoff) {
			return StatusLate
		}
	}

	return StatusOnTime
}
