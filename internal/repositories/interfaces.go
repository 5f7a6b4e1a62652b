package repositories

import (
	"time"

	"github.com/codebench-edu/console-service/internal/models"
	"github.com/google/uuid"
)

// ===== SHARED FILTER STRUCTS =====

type QuestionFilters struct {
	Difficulty *models.DifficultyLevel `json:"difficulty"`
	CategoryID *uuid.UUID              `json:"category_id"`
	CreatedBy  *string                 `json:"created_by"`
	IsActive   *bool                   `json:"is_active"`
	Tags       []string                `json:"tags"`
	Limit      int                     `json:"limit"`
	Offset     int                     `json:"offset"`
	SortBy     string                  `json:"sort_by"`    // "created_at", "title", "difficulty"
	SortOrder  string                  `json:"sort_order"` // "asc", "desc"
}

type MCQFilters struct {
	Difficulty *models.DifficultyLevel `json:"difficulty"`
	CategoryID *uuid.UUID              `json:"category_id"`
	CreatedBy  *string                 `json:"created_by"`
	IsActive   *bool                   `json:"is_active"`
	Limit      int                     `json:"limit"`
	Offset     int                     `json:"offset"`
	SortBy     string                  `json:"sort_by"`
	SortOrder  string                  `json:"sort_order"`
}

type TestCaseFilters struct {
	QuestionID *uuid.UUID `json:"question_id"`
	IsSample   *bool      `json:"is_sample"`
	IsHidden   *bool      `json:"is_hidden"`
	Limit      int        `json:"limit"`
	Offset     int        `json:"offset"`
}

type NoteFilters struct {
	CourseID   *uuid.UUID           `json:"course_id"`
	TeacherID  *string              `json:"teacher_id"`
	Category   *models.NoteCategory `json:"category"`
	Search     *string              `json:"search"` // matches title and description
	PublicOnly bool                 `json:"public_only"`
	Limit      int                  `json:"limit"`
	Offset     int                  `json:"offset"`
	SortBy     string               `json:"sort_by"`
	SortOrder  string               `json:"sort_order"`
}

type CourseFilters struct {
	ActiveOnly bool   `json:"active_only"`
	Search     string `json:"search"`
	Limit      int    `json:"limit"`
	Offset     int    `json:"offset"`
}

type SubmissionFilters struct {
	ActivityID *uuid.UUID               `json:"activity_id"`
	ClassID    *uuid.UUID               `json:"class_id"`
	StudentID  *string                  `json:"student_id"`
	Status     *models.CompletionStatus `json:"status"`
	DateFrom   *time.Time               `json:"date_from"`
	DateTo     *time.Time               `json:"date_to"`
	Limit      int                      `json:"limit"`
	Offset     int                      `json:"offset"`
	SortBy     string                   `json:"sort_by"`
	SortOrder  string                   `json:"sort_order"`
}

// UserFilters defines filters for user queries
type UserFilters struct {
	Role   *models.UserRole // restrict to one role
	Query  string           // search query for name or email
	Limit  int              // page size
	Offset int              // offset for pagination
}

// ===== SHARED STATISTICS STRUCTS =====

type CategoryStats struct {
	QuestionCount int `json:"question_count"`
	MCQCount      int `json:"mcq_count"`
}

type CategoryWithCount struct {
	*models.QuestionCategory
	QuestionCount int `json:"question_count"`
	MCQCount      int `json:"mcq_count"`
}

type QuestionUsageStats struct {
	TotalQuestions  int                            `json:"total_questions"`
	ActiveQuestions int                            `json:"active_questions"`
	ImportedCount   int                            `json:"imported_count"`
	QuestionsByDiff map[models.DifficultyLevel]int `json:"questions_by_difficulty"`
}

type NoteStats struct {
	TotalNotes    int                         `json:"total_notes"`
	TotalFiles    int                         `json:"total_files"`
	TotalBytes    int64                       `json:"total_bytes"`
	NotesByCourse map[uuid.UUID]int           `json:"notes_by_course"`
	NotesByType   map[models.NoteCategory]int `json:"notes_by_category"`
}
