package models

import (
	"time"

	"github.com/google/uuid"
)

type Course struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CourseCode string    `json:"course_code" gorm:"uniqueIndex;not null;size:50" validate:"required,max=50"`
	Name       string    `json:"name" gorm:"not null;size:255" validate:"required,max=255"`
	IsActive   bool      `json:"is_active" gorm:"default:true"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Course) TableName() string {
	return "courses"
}

// CourseEnrollment defines a student's enrolled-course scope; the notes
// portal only serves notes inside this scope.
type CourseEnrollment struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CourseID  uuid.UUID `json:"course_id" gorm:"type:uuid;not null;index"`
	StudentID string    `json:"student_id" gorm:"not null;index;size:255"`

	CreatedAt time.Time `json:"created_at"`

	// Relations
	Course *Course `json:"course,omitempty" gorm:"foreignKey:CourseID"`
}

func (CourseEnrollment) TableName() string {
	return "course_enrollments"
}
