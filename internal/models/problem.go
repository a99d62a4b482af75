package models

import "time"

// Platform identifiers for Problem.Platform.
const (
	PlatformLeetcode   = "leetcode"
	PlatformHackerrank = "hackerrank"
	PlatformGfg        = "gfg"
	PlatformOther      = "other"
)

// Problem references a problem hosted on an external judge platform.
type Problem struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	AssignmentID uint      `gorm:"not null;index" json:"assignment_id"`
	URL          string    `gorm:"size:1024;not null" json:"url"`
	Title        string    `gorm:"size:255;not null" json:"title"`
	Platform     string    `gorm:"size:32;not null" json:"platform"`
	Difficulty   string    `gorm:"size:32" json:"difficulty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
