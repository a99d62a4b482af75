package models

import "time"

// Class groups students under a teacher and owns assignments.
type Class struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	Name        string       `gorm:"size:255;not null" json:"name"`
	TeacherID   uint         `gorm:"not null;index" json:"teacher_id"`
	Archived    bool         `gorm:"not null;default:false" json:"archived"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
	Enrollments []Enrollment `json:"enrollments,omitempty"`
	Assignments []Assignment `json:"assignments,omitempty"`
}

// Enrollment links a student to a class.
type Enrollment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ClassID   uint      `gorm:"not null;uniqueIndex:idx_class_user" json:"class_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_class_user" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	User      User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"user"`
}
