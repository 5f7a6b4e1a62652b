package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/codebench-edu/console-service/internal/models"
	"github.com/codebench-edu/console-service/internal/repositories"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AnalyticsPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewAnalyticsPostgreSQL(db *gorm.DB) repositories.AnalyticsRepository {
	return &AnalyticsPostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

// ===== ACTIVITY LOOKUPS =====

func (a *AnalyticsPostgreSQL) GetActivity(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Activity, error) {
	db := a.getDB(tx)
	var activity models.Activity
	if err := db.WithContext(ctx).First(&activity, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("activity not found with ID %s", id)
		}
		return nil, fmt.Errorf("failed to get activity: %w", err)
	}
	return &activity, nil
}

func (a *AnalyticsPostgreSQL) GetActivitiesByClass(ctx context.Context, tx *gorm.DB, classID uuid.UUID) ([]*models.Activity, error) {
	db := a.getDB(tx)
	var activities []*models.Activity
	if err := db.WithContext(ctx).
		Where("class_id = ?", classID).
		Order("created_at DESC").
		Find(&activities).Error; err != nil {
		return nil, fmt.Errorf("failed to get activities by class: %w", err)
	}
	return activities, nil
}

func (a *AnalyticsPostgreSQL) GetClassIDs(ctx context.Context, tx *gorm.DB) ([]uuid.UUID, error) {
	db := a.getDB(tx)
	var classIDs []uuid.UUID
	if err := db.WithContext(ctx).
		Model(&models.Activity{}).
		Distinct("class_id").
		Pluck("class_id", &classIDs).Error; err != nil {
		return nil, fmt.Errorf("failed to get class IDs: %w", err)
	}
	return classIDs, nil
}

// ===== SUBMISSION LOOKUPS =====

func (a *AnalyticsPostgreSQL) GetSubmission(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.ActivitySubmission, error) {
	db := a.getDB(tx)
	var submission models.ActivitySubmission
	if err := db.WithContext(ctx).First(&submission, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("submission not found with ID %s", id)
		}
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}
	return &submission, nil
}

// GetSubmissions retrieves submissions with filtering and pagination
func (a *AnalyticsPostgreSQL) GetSubmissions(ctx context.Context, tx *gorm.DB, filters repositories.SubmissionFilters) ([]*models.ActivitySubmission, int64, error) {
	db := a.getDB(tx)
	query := db.WithContext(ctx).Model(&models.ActivitySubmission{})

	query = a.applySubmissionFilters(query, filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count submissions: %w", err)
	}

	sortBy := filters.SortBy
	if sortBy == "" {
		sortBy = "submitted_at"
	}
	query = a.helpers.ApplyPaginationAndSort(query, sortBy, filters.SortOrder, filters.Limit, filters.Offset)

	var submissions []*models.ActivitySubmission
	if err := query.Find(&submissions).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list submissions: %w", err)
	}

	return submissions, total, nil
}

func (a *AnalyticsPostgreSQL) GetSubmissionsByActivity(ctx context.Context, tx *gorm.DB, activityID uuid.UUID) ([]*models.ActivitySubmission, error) {
	db := a.getDB(tx)
	var submissions []*models.ActivitySubmission
	if err := db.WithContext(ctx).
		Where("activity_id = ?", activityID).
		Order("submitted_at DESC").
		Find(&submissions).Error; err != nil {
		return nil, fmt.Errorf("failed to get submissions by activity: %w", err)
	}
	return submissions, nil
}

func (a *AnalyticsPostgreSQL) GetSubmissionsByStudent(ctx context.Context, tx *gorm.DB, classID uuid.UUID, studentID string) ([]*models.ActivitySubmission, error) {
	db := a.getDB(tx)
	var submissions []*models.ActivitySubmission
	if err := db.WithContext(ctx).
		Where("class_id = ? AND student_id = ?", classID, studentID).
		Order("submitted_at DESC").
		Find(&submissions).Error; err != nil {
		return nil, fmt.Errorf("failed to get submissions by student: %w", err)
	}
	return submissions, nil
}

// ===== OVERVIEW METRICS =====

func (a *AnalyticsPostgreSQL) GetTotalActivities(ctx context.Context, tx *gorm.DB) (int64, error) {
	db := a.getDB(tx)
	var count int64
	if err := db.WithContext(ctx).Model(&models.Activity{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count activities: %w", err)
	}
	return count, nil
}

func (a *AnalyticsPostgreSQL) GetTotalSubmissions(ctx context.Context, tx *gorm.DB) (int64, error) {
	db := a.getDB(tx)
	var count int64
	if err := db.WithContext(ctx).Model(&models.ActivitySubmission{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count submissions: %w", err)
	}
	return count, nil
}

// GetActiveStudents counts distinct students who submitted in the last N days
func (a *AnalyticsPostgreSQL) GetActiveStudents(ctx context.Context, tx *gorm.DB, days int) (int64, error) {
	db := a.getDB(tx)
	since := time.Now().AddDate(0, 0, -days)

	var count int64
	if err := db.WithContext(ctx).
		Model(&models.ActivitySubmission{}).
		Where("submitted_at >= ?", since).
		Distinct("student_id").
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count active students: %w", err)
	}
	return count, nil
}

// GetCompletionRate computes the average completion rate, optionally scoped
// to one activity
func (a *AnalyticsPostgreSQL) GetCompletionRate(ctx context.Context, tx *gorm.DB, activityID *uuid.UUID) (float64, error) {
	db := a.getDB(tx)
	query := db.WithContext(ctx).Model(&models.ActivitySubmission{})
	if activityID != nil {
		query = query.Where("activity_id = ?", *activityID)
	}

	var rate *float64
	if err := query.Select("AVG(completion_rate)").Scan(&rate).Error; err != nil {
		return 0, fmt.Errorf("failed to compute completion rate: %w", err)
	}
	if rate == nil {
		return 0, nil
	}
	return *rate, nil
}

// GetAverageTimeSpent computes the average time spent in seconds
func (a *AnalyticsPostgreSQL) GetAverageTimeSpent(ctx context.Context, tx *gorm.DB, activityID *uuid.UUID) (float64, error) {
	db := a.getDB(tx)
	query := db.WithContext(ctx).Model(&models.ActivitySubmission{})
	if activityID != nil {
		query = query.Where("activity_id = ?", *activityID)
	}

	var avg *float64
	if err := query.Select("AVG(total_time_spent)").Scan(&avg).Error; err != nil {
		return 0, fmt.Errorf("failed to compute average time spent: %w", err)
	}
	if avg == nil {
		return 0, nil
	}
	return *avg, nil
}

// GetStatusBreakdown counts submissions per completion status
func (a *AnalyticsPostgreSQL) GetStatusBreakdown(ctx context.Context, tx *gorm.DB, activityID uuid.UUID) (map[models.CompletionStatus]int64, error) {
	db := a.getDB(tx)

	var results []struct {
		Status models.CompletionStatus
		Count  int64
	}
	if err := db.WithContext(ctx).
		Model(&models.ActivitySubmission{}).
		Select("status, COUNT(*) as count").
		Where("activity_id = ?", activityID).
		Group("status").
		Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to get status breakdown: %w", err)
	}

	breakdown := make(map[models.CompletionStatus]int64, len(results))
	for _, result := range results {
		breakdown[result.Status] = result.Count
	}
	return breakdown, nil
}

// ===== TRENDS =====

// GetSubmissionTrends aggregates submissions per day or week
func (a *AnalyticsPostgreSQL) GetSubmissionTrends(ctx context.Context, tx *gorm.DB, period string) ([]repositories.SubmissionTrendData, error) {
	db := a.getDB(tx)

	trunc := "day"
	lookback := 30
	if period == "weekly" {
		trunc = "week"
		lookback = 90
	}
	since := time.Now().AddDate(0, 0, -lookback)

	var results []struct {
		Bucket         time.Time
		Submissions    int64
		Students       int64
		CompletionRate float64
	}
	if err := db.WithContext(ctx).
		Model(&models.ActivitySubmission{}).
		Select(fmt.Sprintf(
			"DATE_TRUNC('%s', submitted_at) as bucket, "+
				"COUNT(*) as submissions, "+
				"COUNT(DISTINCT student_id) as students, "+
				"COALESCE(AVG(completion_rate), 0) as completion_rate", trunc)).
		Where("submitted_at >= ?", since).
		Group("bucket").
		Order("bucket ASC").
		Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to get submission trends: %w", err)
	}

	trends := make([]repositories.SubmissionTrendData, 0, len(results))
	for _, result := range results {
		trends = append(trends, repositories.SubmissionTrendData{
			Period:         result.Bucket.Format("2006-01-02"),
			Submissions:    result.Submissions,
			Students:       result.Students,
			CompletionRate: result.CompletionRate,
			Date:           result.Bucket,
		})
	}
	return trends, nil
}

// GetRecentSubmissions retrieves the latest submissions with activity titles
func (a *AnalyticsPostgreSQL) GetRecentSubmissions(ctx context.Context, tx *gorm.DB, limit int) ([]repositories.RecentSubmissionData, error) {
	db := a.getDB(tx)
	if limit <= 0 {
		limit = 10
	}

	var results []repositories.RecentSubmissionData
	if err := db.WithContext(ctx).
		Model(&models.ActivitySubmission{}).
		Select("activity_submissions.id, activity_submissions.activity_id, activities.title as activity_title, "+
			"activity_submissions.student_id, activity_submissions.student_name, activity_submissions.status, "+
			"activity_submissions.completion_rate, activity_submissions.submitted_at").
		Joins("JOIN activities ON activities.id = activity_submissions.activity_id").
		Order("activity_submissions.submitted_at DESC").
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to get recent submissions: %w", err)
	}

	return results, nil
}

// ===== HELPER METHODS =====

func (a *AnalyticsPostgreSQL) applySubmissionFilters(query *gorm.DB, filters repositories.SubmissionFilters) *gorm.DB {
	if filters.ActivityID != nil {
		query = query.Where("activity_id = ?", *filters.ActivityID)
	}
	if filters.ClassID != nil {
		query = query.Where("class_id = ?", *filters.ClassID)
	}
	if filters.StudentID != nil {
		query = query.Where("student_id = ?", *filters.StudentID)
	}
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.DateFrom != nil {
		query = query.Where("submitted_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("submitted_at <= ?", *filters.DateTo)
	}
	return query
}

// getDB returns the transaction DB if provided, otherwise returns the default DB
func (a *AnalyticsPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return a.db
}
