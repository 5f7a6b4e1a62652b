package repositories

import (
	"context"
	"time"

	"github.com/codebench-edu/console-service/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AnalyticsRepository interface for read-only submission analytics. The
// submission data is ingested by the assessment pipeline; this service only
// aggregates it.
type AnalyticsRepository interface {
	// Activity lookups
	GetActivity(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Activity, error)
	GetActivitiesByClass(ctx context.Context, tx *gorm.DB, classID uuid.UUID) ([]*models.Activity, error)
	GetClassIDs(ctx context.Context, tx *gorm.DB) ([]uuid.UUID, error)

	// Submission lookups
	GetSubmission(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.ActivitySubmission, error)
	GetSubmissions(ctx context.Context, tx *gorm.DB, filters SubmissionFilters) ([]*models.ActivitySubmission, int64, error)
	GetSubmissionsByActivity(ctx context.Context, tx *gorm.DB, activityID uuid.UUID) ([]*models.ActivitySubmission, error)
	GetSubmissionsByStudent(ctx context.Context, tx *gorm.DB, classID uuid.UUID, studentID string) ([]*models.ActivitySubmission, error)

	// Overview metrics
	GetTotalActivities(ctx context.Context, tx *gorm.DB) (int64, error)
	GetTotalSubmissions(ctx context.Context, tx *gorm.DB) (int64, error)
	GetActiveStudents(ctx context.Context, tx *gorm.DB, days int) (int64, error)
	GetCompletionRate(ctx context.Context, tx *gorm.DB, activityID *uuid.UUID) (float64, error)
	GetAverageTimeSpent(ctx context.Context, tx *gorm.DB, activityID *uuid.UUID) (float64, error)
	GetStatusBreakdown(ctx context.Context, tx *gorm.DB, activityID uuid.UUID) (map[models.CompletionStatus]int64, error)

	// Trends
	GetSubmissionTrends(ctx context.Context, tx *gorm.DB, period string) ([]SubmissionTrendData, error)
	GetRecentSubmissions(ctx context.Context, tx *gorm.DB, limit int) ([]RecentSubmissionData, error)
}

// Data structures for analytics responses

type SubmissionTrendData struct {
	Period         string  `json:"period"`
	Submissions    int64   `json:"submissions"`
	Students       int64   `json:"students"`
	CompletionRate float64 `json:"completion_rate"`
	Date           time.Time
}

type RecentSubmissionData struct {
	ID             uuid.UUID               `json:"id"`
	ActivityID     uuid.UUID               `json:"activity_id"`
	ActivityTitle  string                  `json:"activity_title"`
	StudentID      string                  `json:"student_id"`
	StudentName    string                  `json:"student_name"`
	Status         models.CompletionStatus `json:"status"`
	CompletionRate float64                 `json:"completion_rate"`
	SubmittedAt    time.Time               `json:"submitted_at"`
}
