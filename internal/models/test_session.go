package models

import (
	"time"

	"gorm.io/datatypes"
)

// ViolationType identifies a proctoring violation observed during a test.
type ViolationType string

const (
	ViolationTabSwitch      ViolationType = "TAB_SWITCH"
	ViolationFullscreenExit ViolationType = "FULLSCREEN_EXIT"
	ViolationCopyPaste      ViolationType = "COPY_PASTE"
	ViolationDevTools       ViolationType = "DEV_TOOLS"
	ViolationFocusLoss      ViolationType = "FOCUS_LOSS"
	ViolationContextMenu    ViolationType = "CONTEXT_MENU"
)

// ViolationTypes lists every known violation type.
func ViolationTypes() []ViolationType {
	return []ViolationType{
		ViolationTabSwitch,
		ViolationFullscreenExit,
		ViolationCopyPaste,
		ViolationDevTools,
		ViolationFocusLoss,
		ViolationContextMenu,
	}
}

// PenaltyLevel is the escalation stage reached by repeated violations.
type PenaltyLevel string

const (
	PenaltyWarning     PenaltyLevel = "WARNING"
	PenaltyMinor       PenaltyLevel = "MINOR"
	PenaltyMajor       PenaltyLevel = "MAJOR"
	PenaltyTermination PenaltyLevel = "TERMINATION"
)

// TestSession is one student's proctored attempt at a test.
// TotalPenalties, ScoreReduction and TimePenalty are always recomputed as
// sums over the session's penalty rows, never mutated independently.
type TestSession struct {
	ID             uint          `gorm:"primaryKey" json:"id"`
	TestID         uint          `gorm:"not null;index" json:"test_id"`
	UserID         uint          `gorm:"not null;index" json:"user_id"`
	TeacherID      uint          `gorm:"not null" json:"teacher_id"`
	TotalPenalties int           `gorm:"not null;default:0" json:"total_penalties"`
	ScoreReduction float64       `gorm:"not null;default:0" json:"score_reduction"`
	TimePenalty    int           `gorm:"not null;default:0" json:"time_penalty"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
	Penalties      []TestPenalty `json:"penalties,omitempty"`
	User           User          `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"user"`
}

// TestPenalty records a single violation and the penalty it triggered.
type TestPenalty struct {
	ID             uint              `gorm:"primaryKey" json:"id"`
	SessionID      uint              `gorm:"not null;index" json:"session_id"`
	ViolationType  ViolationType     `gorm:"size:32;not null" json:"violation_type"`
	PenaltyLevel   PenaltyLevel      `gorm:"size:16;not null" json:"penalty_level"`
	Description    string            `gorm:"size:255" json:"description"`
	ScoreReduction float64           `gorm:"not null;default:0" json:"score_reduction"`
	TimePenalty    int               `gorm:"not null;default:0" json:"time_penalty"`
	Details        datatypes.JSONMap `json:"details,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
}
