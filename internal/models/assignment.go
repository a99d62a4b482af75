package models

import "time"

// Assignment is a set of judge-platform problems given to a class.
// AssignDate and DueDate are optional; an assignment without a due date is
// never late and one without an assign date has no early-solve cutoff.
type Assignment struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	ClassID     uint       `gorm:"not null;index" json:"class_id"`
	Title       string     `gorm:"size:255;not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	AssignDate  *time.Time `json:"assign_date"`
	DueDate     *time.Time `json:"due_date"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Problems    []Problem  `json:"problems,omitempty"`
}

// DueEndOfDay returns the inclusive late cutoff: 23:59:59.999 UTC on the due
// date. Returns nil when no due date is set.
func (a Assignment) DueEndOfDay() *time.Time {
	if a.DueDate == nil {
		return nil
	}
	d := a.DueDate.UTC()
	cutoff := time.Date(d.Year(), d.Month(), d.Day(), 23, 59, 59, 999*int(time.Millisecond), time.UTC)
	return &cutoff
}
