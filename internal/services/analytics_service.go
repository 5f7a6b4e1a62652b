package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/codebench-edu/console-service/internal/models"
	"github.com/codebench-edu/console-service/internal/repositories"
)

// ===== RESPONSE TYPES =====

type QuestionStat struct {
	QuestionNumber int            `json:"question_number"`
	Title          string         `json:"title"`
	Attempted      int            `json:"attempted"`
	Completed      int            `json:"completed"`
	AverageTime    float64        `json:"average_time_seconds"`
	LanguageUsage  map[string]int `json:"language_usage"`
}

type ActivityOverview struct {
	ActivityID            uuid.UUID                          `json:"activity_id"`
	ActivityTitle         string                             `json:"activity_title"`
	ClassID               uuid.UUID                          `json:"class_id"`
	TotalSubmissions      int64                              `json:"total_submissions"`
	AverageCompletionRate float64                            `json:"average_completion_rate"`
	AverageTimeSpent      float64                            `json:"average_time_spent_seconds"`
	StatusBreakdown       map[models.CompletionStatus]int64  `json:"status_breakdown"`
	QuestionStats         []QuestionStat                     `json:"question_stats"`
}

type StudentPerformance struct {
	StudentID      string                  `json:"student_id"`
	StudentName    string                  `json:"student_name"`
	CompletionRate float64                 `json:"completion_rate"`
	TotalTimeSpent int                     `json:"total_time_spent"`
	Status         models.CompletionStatus `json:"status"`
	SubmittedAt    time.Time               `json:"submitted_at"`
}

type ClassPerformance struct {
	ActivityID uuid.UUID            `json:"activity_id"`
	ClassID    uuid.UUID            `json:"class_id"`
	Students   []StudentPerformance `json:"students"`
}

type StudentSubmissionDetail struct {
	SubmissionID   uuid.UUID                   `json:"submission_id"`
	ActivityID     uuid.UUID                   `json:"activity_id"`
	StudentID      string                      `json:"student_id"`
	StudentName    string                      `json:"student_name"`
	CompletionRate float64                     `json:"completion_rate"`
	TotalTimeSpent int                         `json:"total_time_spent"`
	Status         models.CompletionStatus     `json:"status"`
	SubmittedAt    time.Time                   `json:"submitted_at"`
	Questions      []models.QuestionSubmission `json:"questions"`
}

// ActivityReport is the three-stage aggregation: overview, then the
// class roster, then one detail per student.
type ActivityReport struct {
	Overview *ActivityOverview          `json:"overview"`
	Class    *ClassPerformance          `json:"class"`
	Students []*StudentSubmissionDetail `json:"students"`
}

type DashboardStats struct {
	TotalActivities    int64                              `json:"total_activities"`
	TotalSubmissions   int64                              `json:"total_submissions"`
	ActiveStudents     int64                              `json:"active_students"`
	AvgCompletionRate  float64                            `json:"avg_completion_rate"`
	SubmissionTrends   []repositories.SubmissionTrendData `json:"submission_trends"`
	RecentSubmissions  []repositories.RecentSubmissionData `json:"recent_submissions"`
}

// ===== SERVICE =====

type analyticsService struct {
	repo   repositories.Repository
	db     *gorm.DB
	logger *slog.Logger
}

func NewAnalyticsService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger) AnalyticsService {
	return &analyticsService{
		repo:   repo,
		db:     db,
		logger: logger,
	}
}

func (s *analyticsService) GetActivityOverview(ctx context.Context, activityID uuid.UUID) (*ActivityOverview, error) {
	activity, err := s.repo.Analytics().GetActivity(ctx, nil, activityID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrActivityNotFound
		}
		return nil, fmt.Errorf("failed to get activity: %w", err)
	}

	submissions, err := s.repo.Analytics().GetSubmissionsByActivity(ctx, nil, activityID)
	if err != nil {
		return nil, fmt.Errorf("failed to get submissions: %w", err)
	}

	breakdown, err := s.repo.Analytics().GetStatusBreakdown(ctx, nil, activityID)
	if err != nil {
		return nil, fmt.Errorf("failed to get status breakdown: %w", err)
	}

	avgTime, err := s.repo.Analytics().GetAverageTimeSpent(ctx, nil, &activityID)
	if err != nil {
		return nil, fmt.Errorf("failed to get average time spent: %w", err)
	}

	overview := &ActivityOverview{
		ActivityID:       activity.ID,
		ActivityTitle:    activity.Title,
		ClassID:          activity.ClassID,
		TotalSubmissions: int64(len(submissions)),
		AverageTimeSpent: avgTime,
		StatusBreakdown:  breakdown,
		QuestionStats:    buildQuestionStats(submissions),
	}

	var rateSum float64
	for _, sub := range submissions {
		rateSum += sub.CompletionRate
	}
	if len(submissions) > 0 {
		overview.AverageCompletionRate = rateSum / float64(len(submissions))
	}

	return overview, nil
}

func (s *analyticsService) GetClassPerformance(ctx context.Context, activityID uuid.UUID, classID uuid.UUID) (*ClassPerformance, error) {
	if _, err := s.repo.Analytics().GetActivity(ctx, nil, activityID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrActivityNotFound
		}
		return nil, fmt.Errorf("failed to get activity: %w", err)
	}

	filters := repositories.SubmissionFilters{
		ActivityID: &activityID,
		ClassID:    &classID,
		Limit:      1000,
	}
	submissions, _, err := s.repo.Analytics().GetSubmissions(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to get class submissions: %w", err)
	}

	students := make([]StudentPerformance, len(submissions))
	for i, sub := range submissions {
		students[i] = StudentPerformance{
			StudentID:      sub.StudentID,
			StudentName:    sub.StudentName,
			CompletionRate: sub.CompletionRate,
			TotalTimeSpent: sub.TotalTimeSpent,
			Status:         sub.Status,
			SubmittedAt:    sub.SubmittedAt,
		}
	}

	return &ClassPerformance{
		ActivityID: activityID,
		ClassID:    classID,
		Students:   students,
	}, nil
}

func (s *analyticsService) GetStudentSubmission(ctx context.Context, activityID uuid.UUID, studentID string) (*StudentSubmissionDetail, error) {
	filters := repositories.SubmissionFilters{
		ActivityID: &activityID,
		StudentID:  &studentID,
		Limit:      1,
	}
	submissions, _, err := s.repo.Analytics().GetSubmissions(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to get student submission: %w", err)
	}
	if len(submissions) == 0 {
		return nil, ErrSubmissionNotFound
	}

	sub := submissions[0]
	detail := &StudentSubmissionDetail{
		SubmissionID:   sub.ID,
		ActivityID:     sub.ActivityID,
		StudentID:      sub.StudentID,
		StudentName:    sub.StudentName,
		CompletionRate: sub.CompletionRate,
		TotalTimeSpent: sub.TotalTimeSpent,
		Status:         sub.Status,
		SubmittedAt:    sub.SubmittedAt,
	}

	if len(sub.QuestionSubmissions) > 0 {
		if err := json.Unmarshal(sub.QuestionSubmissions, &detail.Questions); err != nil {
			return nil, fmt.Errorf("failed to decode question submissions: %w", err)
		}
	}

	return detail, nil
}

// BuildActivityReport runs the dependent aggregation: the overview, then
// the class roster, then per-student details concurrently. Any failing
// stage fails the whole report; a partial report is worse than none when
// it feeds grading decisions.
func (s *analyticsService) BuildActivityReport(ctx context.Context, activityID uuid.UUID) (*ActivityReport, error) {
	overview, err := s.GetActivityOverview(ctx, activityID)
	if err != nil {
		return nil, err
	}

	class, err := s.GetClassPerformance(ctx, activityID, overview.ClassID)
	if err != nil {
		return nil, err
	}

	details := make([]*StudentSubmissionDetail, len(class.Students))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for i, student := range class.Students {
		g.Go(func() error {
			detail, err := s.GetStudentSubmission(gctx, activityID, student.StudentID)
			if err != nil {
				return fmt.Errorf("student %s: %w", student.StudentID, err)
			}
			details[i] = detail
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to build activity report: %w", err)
	}

	return &ActivityReport{
		Overview: overview,
		Class:    class,
		Students: details,
	}, nil
}

func (s *analyticsService) GetDashboardStats(ctx context.Context) (*DashboardStats, error) {
	totalActivities, err := s.repo.Analytics().GetTotalActivities(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get total activities: %w", err)
	}

	totalSubmissions, err := s.repo.Analytics().GetTotalSubmissions(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get total submissions: %w", err)
	}

	activeStudents, err := s.repo.Analytics().GetActiveStudents(ctx, nil, 7)
	if err != nil {
		return nil, fmt.Errorf("failed to get active students: %w", err)
	}

	avgRate, err := s.repo.Analytics().GetCompletionRate(ctx, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get completion rate: %w", err)
	}

	trends, err := s.repo.Analytics().GetSubmissionTrends(ctx, nil, "day")
	if err != nil {
		return nil, fmt.Errorf("failed to get submission trends: %w", err)
	}

	recent, err := s.repo.Analytics().GetRecentSubmissions(ctx, nil, 10)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent submissions: %w", err)
	}

	return &DashboardStats{
		TotalActivities:   totalActivities,
		TotalSubmissions:  totalSubmissions,
		ActiveStudents:    activeStudents,
		AvgCompletionRate: avgRate,
		SubmissionTrends:  trends,
		RecentSubmissions: recent,
	}, nil
}

// buildQuestionStats folds the per-question payloads of every submission
// into one row per question number.
func buildQuestionStats(submissions []*models.ActivitySubmission) []QuestionStat {
	byNumber := make(map[int]*QuestionStat)
	timeSums := make(map[int]int)

	for _, sub := range submissions {
		if len(sub.QuestionSubmissions) == 0 {
			continue
		}
		var questions []models.QuestionSubmission
		if err := json.Unmarshal(sub.QuestionSubmissions, &questions); err != nil {
			continue
		}
		for _, q := range questions {
			stat, ok := byNumber[q.QuestionNumber]
			if !ok {
				stat = &QuestionStat{
					QuestionNumber: q.QuestionNumber,
					Title:          q.Title,
					LanguageUsage:  make(map[string]int),
				}
				byNumber[q.QuestionNumber] = stat
			}
			stat.Attempted++
			if q.Completed {
				stat.Completed++
			}
			timeSums[q.QuestionNumber] += q.TimeSpent
			if q.Language != "" {
				stat.LanguageUsage[q.Language]++
			}
		}
	}

	stats := make([]QuestionStat, 0, len(byNumber))
	for number, stat := range byNumber {
		if stat.Attempted > 0 {
			stat.AverageTime = float64(timeSums[number]) / float64(stat.Attempted)
		}
		stats = append(stats, *stat)
	}
	sort.Slice(stats, func(i, j int) bool {
		return stats[i].QuestionNumber < stats[j].QuestionNumber
	})
	return stats
}
