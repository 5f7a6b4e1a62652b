package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type CompletionStatus string

const (
	StatusCompleted  CompletionStatus = "completed"
	StatusPartial    CompletionStatus = "partial"
	StatusNotStarted CompletionStatus = "not_started"
)

// Activity is a published assessment activity; submissions against it feed
// the read-only analytics views.
type Activity struct {
	ID      uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Title   string    `json:"title" gorm:"not null;size:255"`
	ClassID uuid.UUID `json:"class_id" gorm:"type:uuid;not null;index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Activity) TableName() string {
	return "activities"
}

// ActivitySubmission is one student's submission for an activity. The
// per-question breakdown is denormalized into QuestionSubmissions so the
// analytics queries stay read-only over a single table.
type ActivitySubmission struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ActivityID  uuid.UUID `json:"activity_id" gorm:"type:uuid;not null;index"`
	ClassID     uuid.UUID `json:"class_id" gorm:"type:uuid;not null;index"`
	StudentID   string    `json:"student_id" gorm:"not null;index;size:255"`
	StudentName string    `json:"student_name" gorm:"size:255"`

	CompletionRate float64          `json:"completion_rate"`
	TotalTimeSpent int              `json:"total_time_spent"` // seconds
	Status         CompletionStatus `json:"status" gorm:"size:20;default:not_started"`
	SubmittedAt    time.Time        `json:"submitted_at"`

	// []QuestionSubmission
	QuestionSubmissions datatypes.JSON `json:"question_submissions" gorm:"type:jsonb"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (ActivitySubmission) TableName() string {
	return "activity_submissions"
}

// QuestionSubmission is the per-question element stored inside
// ActivitySubmission.QuestionSubmissions.
type QuestionSubmission struct {
	QuestionNumber int    `json:"question_number"`
	Title          string `json:"title"`
	TimeSpent      int    `json:"time_spent"`
	Completed      bool   `json:"completed"`
	Language       string `json:"language"`
}
