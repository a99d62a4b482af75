package dto

import "github.com/noah-isme/codetrack-go-api/internal/models"

// SessionCreateRequest opens a proctored test session for a student.
type SessionCreateRequest struct {
	TestID    uint `json:"test_id" validate:"required,gt=0"`
	UserID    uint `json:"user_id" validate:"required,gt=0"`
	TeacherID uint `json:"teacher_id" validate:"required,gt=0"`
}

// ViolationReportRequest is the payload a test client sends when a
// proctoring violation is observed.
type ViolationReportRequest struct {
	ViolationType string         `json:"violation_type" validate:"required,oneof=TAB_SWITCH FULLSCREEN_EXIT COPY_PASTE DEV_TOOLS FOCUS_LOSS CONTEXT_MENU"`
	Details       map[string]any `json:"details"`
}

// ViolationOutcome describes the penalty applied for a reported violation.
type ViolationOutcome struct {
	PenaltyLevel    models.PenaltyLevel `json:"penalty_level"`
	ShouldTerminate bool                `json:"should_terminate"`
	Message         string              `json:"message"`
	TotalViolations int                 `json:"total_violations"`
	ScoreReduction  float64             `json:"score_reduction"`
	TimePenalty     int                 `json:"time_penalty"`
}

// SessionViolationSummary aggregates violations for one test session.
type SessionViolationSummary struct {
	TotalViolations     int                          `json:"total_violations"`
	ViolationsByType    map[models.ViolationType]int `json:"violations_by_type"`
	TotalScoreReduction float64                      `json:"total_score_reduction"`
	TotalTimePenalty    int                          `json:"total_time_penalty"`
	ShouldTerminate     bool                         `json:"should_terminate"`
}

// HighRiskSession flags a session with enough violations to warrant review.
type HighRiskSession struct {
	SessionID      uint   `json:"session_id"`
	UserID         uint   `json:"user_id"`
	UserName       string `json:"user_name"`
	ViolationCount int    `json:"violation_count"`
}

// TestViolationStats aggregates violations across all sessions of a test.
type TestViolationStats struct {
	TotalSessions          int                          `json:"total_sessions"`
	SessionsWithViolations int                          `json:"sessions_with_violations"`
	ViolationsByType       map[models.ViolationType]int `json:"violations_by_type"`
	HighRiskSessions       []HighRiskSession            `json:"high_risk_sessions"`
}
