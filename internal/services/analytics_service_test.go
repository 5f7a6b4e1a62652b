package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/codebench-edu/console-service/internal/models"
	"github.com/codebench-edu/console-service/internal/repositories"
)

// fakeAnalyticsRepo serves one activity with a two-student roster and can
// be told to fail one student's detail lookup.
type fakeAnalyticsRepo struct {
	activity      *models.Activity
	roster        []*models.ActivitySubmission
	failStudentID string
}

func (f *fakeAnalyticsRepo) GetActivity(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Activity, error) {
	if f.activity == nil || f.activity.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return f.activity, nil
}

func (f *fakeAnalyticsRepo) GetActivitiesByClass(ctx context.Context, tx *gorm.DB, classID uuid.UUID) ([]*models.Activity, error) {
	return nil, nil
}

func (f *fakeAnalyticsRepo) GetClassIDs(ctx context.Context, tx *gorm.DB) ([]uuid.UUID, error) {
	return nil, nil
}

func (f *fakeAnalyticsRepo) GetSubmission(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.ActivitySubmission, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeAnalyticsRepo) GetSubmissions(ctx context.Context, tx *gorm.DB, filters repositories.SubmissionFilters) ([]*models.ActivitySubmission, int64, error) {
	if filters.StudentID != nil {
		if *filters.StudentID == f.failStudentID {
			return nil, 0, fmt.Errorf("connection reset")
		}
		for _, sub := range f.roster {
			if sub.StudentID == *filters.StudentID {
				return []*models.ActivitySubmission{sub}, 1, nil
			}
		}
		return nil, 0, nil
	}
	return f.roster, int64(len(f.roster)), nil
}

func (f *fakeAnalyticsRepo) GetSubmissionsByActivity(ctx context.Context, tx *gorm.DB, activityID uuid.UUID) ([]*models.ActivitySubmission, error) {
	return f.roster, nil
}

func (f *fakeAnalyticsRepo) GetSubmissionsByStudent(ctx context.Context, tx *gorm.DB, classID uuid.UUID, studentID string) ([]*models.ActivitySubmission, error) {
	return nil, nil
}

func (f *fakeAnalyticsRepo) GetTotalActivities(ctx context.Context, tx *gorm.DB) (int64, error) {
	return 0, nil
}

func (f *fakeAnalyticsRepo) GetTotalSubmissions(ctx context.Context, tx *gorm.DB) (int64, error) {
	return 0, nil
}

func (f *fakeAnalyticsRepo) GetActiveStudents(ctx context.Context, tx *gorm.DB, days int) (int64, error) {
	return 0, nil
}

func (f *fakeAnalyticsRepo) GetCompletionRate(ctx context.Context, tx *gorm.DB, activityID *uuid.UUID) (float64, error) {
	return 0, nil
}

func (f *fakeAnalyticsRepo) GetAverageTimeSpent(ctx context.Context, tx *gorm.DB, activityID *uuid.UUID) (float64, error) {
	return 0, nil
}

func (f *fakeAnalyticsRepo) GetStatusBreakdown(ctx context.Context, tx *gorm.DB, activityID uuid.UUID) (map[models.CompletionStatus]int64, error) {
	return map[models.CompletionStatus]int64{}, nil
}

func (f *fakeAnalyticsRepo) GetSubmissionTrends(ctx context.Context, tx *gorm.DB, period string) ([]repositories.SubmissionTrendData, error) {
	return nil, nil
}

func (f *fakeAnalyticsRepo) GetRecentSubmissions(ctx context.Context, tx *gorm.DB, limit int) ([]repositories.RecentSubmissionData, error) {
	return nil, nil
}

type fakeAnalyticsServiceRepo struct {
	MockNotificationRepository
	analytics *fakeAnalyticsRepo
}

func (f *fakeAnalyticsServiceRepo) Analytics() repositories.AnalyticsRepository {
	return f.analytics
}

func newAnalyticsTestService(repo *fakeAnalyticsRepo) *analyticsService {
	return &analyticsService{
		repo:   &fakeAnalyticsServiceRepo{analytics: repo},
		logger: slog.New(slog.NewTextHandler(os.Stdout, nil)),
	}
}

func TestAnalyticsService_BuildActivityReport(t *testing.T) {
	activity := &models.Activity{ID: uuid.New(), Title: "Midterm", ClassID: uuid.New()}
	roster := []*models.ActivitySubmission{
		{ID: uuid.New(), ActivityID: activity.ID, ClassID: activity.ClassID, StudentID: "s1", StudentName: "Student One", CompletionRate: 1},
		{ID: uuid.New(), ActivityID: activity.ID, ClassID: activity.ClassID, StudentID: "s2", StudentName: "Student Two", CompletionRate: 0.5},
	}

	t.Run("full report", func(t *testing.T) {
		service := newAnalyticsTestService(&fakeAnalyticsRepo{activity: activity, roster: roster})

		report, err := service.BuildActivityReport(context.Background(), activity.ID)
		if err != nil {
			t.Fatalf("BuildActivityReport failed: %v", err)
		}
		if report.Overview.TotalSubmissions != 2 {
			t.Errorf("Expected 2 submissions in overview, got %d", report.Overview.TotalSubmissions)
		}
		if len(report.Students) != 2 {
			t.Fatalf("Expected 2 student details, got %d", len(report.Students))
		}
	})

	t.Run("one failing student detail fails the whole report", func(t *testing.T) {
		service := newAnalyticsTestService(&fakeAnalyticsRepo{
			activity:      activity,
			roster:        roster,
			failStudentID: "s2",
		})

		report, err := service.BuildActivityReport(context.Background(), activity.ID)
		if err == nil {
			t.Fatal("Expected report to fail")
		}
		if report != nil {
			t.Errorf("Expected no partial report, got %+v", report)
		}
		if !strings.Contains(err.Error(), "s2") {
			t.Errorf("Expected error to name the failing student, got %v", err)
		}
	})
}

func submissionWithQuestions(t *testing.T, questions []models.QuestionSubmission) *models.ActivitySubmission {
	t.Helper()
	raw, err := json.Marshal(questions)
	if err != nil {
		t.Fatalf("Failed to marshal questions: %v", err)
	}
	return &models.ActivitySubmission{QuestionSubmissions: raw}
}

func TestBuildQuestionStats(t *testing.T) {
	submissions := []*models.ActivitySubmission{
		submissionWithQuestions(t, []models.QuestionSubmission{
			{QuestionNumber: 1, Title: "Two Sum", TimeSpent: 300, Completed: true, Language: "python"},
			{QuestionNumber: 2, Title: "Reverse List", TimeSpent: 600, Completed: false, Language: "go"},
		}),
		submissionWithQuestions(t, []models.QuestionSubmission{
			{QuestionNumber: 1, Title: "Two Sum", TimeSpent: 500, Completed: false, Language: "python"},
		}),
		{QuestionSubmissions: nil}, // student never opened a question
	}

	stats := buildQuestionStats(submissions)
	if len(stats) != 2 {
		t.Fatalf("Expected 2 question rows, got %d", len(stats))
	}

	first := stats[0]
	if first.QuestionNumber != 1 {
		t.Errorf("Expected rows sorted by question number, got %d first", first.QuestionNumber)
	}
	if first.Attempted != 2 || first.Completed != 1 {
		t.Errorf("Question 1: expected 2 attempted / 1 completed, got %d/%d", first.Attempted, first.Completed)
	}
	if first.AverageTime != 400 {
		t.Errorf("Question 1: expected average time 400, got %v", first.AverageTime)
	}
	if first.LanguageUsage["python"] != 2 {
		t.Errorf("Question 1: expected python used twice, got %v", first.LanguageUsage)
	}

	second := stats[1]
	if second.QuestionNumber != 2 || second.Attempted != 1 || second.Completed != 0 {
		t.Errorf("Question 2: unexpected stats %+v", second)
	}
}

func TestBuildQuestionStats_SkipsMalformedPayloads(t *testing.T) {
	submissions := []*models.ActivitySubmission{
		{QuestionSubmissions: []byte("not json")},
		submissionWithQuestions(t, []models.QuestionSubmission{
			{QuestionNumber: 3, Title: "FizzBuzz", Completed: true},
		}),
	}

	stats := buildQuestionStats(submissions)
	if len(stats) != 1 || stats[0].QuestionNumber != 3 {
		t.Fatalf("Expected only the valid payload to count, got %+v", stats)
	}
}

func TestFormatLanguageUsage(t *testing.T) {
	if got := formatLanguageUsage(nil); got != "" {
		t.Errorf("Expected empty string for nil usage, got %q", got)
	}

	got := formatLanguageUsage(map[string]int{"python": 12, "go": 3, "java": 7})
	want := "go: 3, java: 7, python: 12"
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "blank falls back", in: "   ", want: "activity"},
		{name: "spaces and separators", in: "Week 3: Sorting / Searching", want: "Week_3__Sorting___Searching"},
		{name: "already safe", in: "midterm-review", want: "midterm-review"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sanitizeFilename(tt.in); got != tt.want {
				t.Errorf("sanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
