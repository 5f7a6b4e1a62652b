package services

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/google/uuid"

	"github.com/codebench-edu/console-service/internal/events"
	"github.com/codebench-edu/console-service/internal/models"
	"github.com/codebench-edu/console-service/internal/repositories"
	"github.com/codebench-edu/console-service/internal/validator"
)

// MockRepository for testing - minimal implementation
type MockNotificationRepository struct{}

func (m *MockNotificationRepository) Question() repositories.QuestionRepository { return nil }
func (m *MockNotificationRepository) QuestionCategory() repositories.QuestionCategoryRepository {
	return nil
}
func (m *MockNotificationRepository) QuestionTestCase() repositories.QuestionTestCaseRepository {
	return nil
}
func (m *MockNotificationRepository) MCQ() repositories.MCQRepository             { return nil }
func (m *MockNotificationRepository) Note() repositories.NoteRepository           { return nil }
func (m *MockNotificationRepository) Course() repositories.CourseRepository       { return nil }
func (m *MockNotificationRepository) Analytics() repositories.AnalyticsRepository { return nil }
func (m *MockNotificationRepository) User() repositories.UserRepository           { return nil }
func (m *MockNotificationRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return nil
}
func (m *MockNotificationRepository) Ping(ctx context.Context) error { return nil }
func (m *MockNotificationRepository) Close() error                   { return nil }

func newTestEventService() (*notificationEventService, *events.MockEventPublisher) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	mockPublisher := events.NewMockEventPublisher(logger)

	service := &notificationEventService{
		repo:           &MockNotificationRepository{},
		eventPublisher: mockPublisher,
		logger:         logger,
		validator:      validator.New(),
	}
	return service, mockPublisher
}

func TestNotificationEventService_PublishEvents(t *testing.T) {
	service, mockPublisher := newTestEventService()
	ctx := context.Background()

	question := &models.Question{
		ID:         uuid.New(),
		Title:      "Two Sum",
		CategoryID: uuid.New(),
		CreatedBy:  "teacher-1",
	}

	t.Run("QuestionCreated", func(t *testing.T) {
		mockPublisher.ClearEvents()

		if err := service.NotifyQuestionCreated(ctx, question); err != nil {
			t.Fatalf("Failed to publish question created event: %v", err)
		}

		published := mockPublisher.GetPublishedEvents()
		if len(published) != 1 {
			t.Fatalf("Expected 1 event, got %d", len(published))
		}

		event := published[0]
		if event.Type != "question.created" {
			t.Errorf("Expected event type 'question.created', got %s", event.Type)
		}

		data, ok := event.Data.(QuestionEventData)
		if !ok {
			t.Fatalf("Expected QuestionEventData payload, got %T", event.Data)
		}
		if data.QuestionID != question.ID {
			t.Errorf("Expected question ID %s, got %s", question.ID, data.QuestionID)
		}
		if data.Title != question.Title {
			t.Errorf("Expected title %q, got %q", question.Title, data.Title)
		}
	})

	t.Run("QuestionDeleted", func(t *testing.T) {
		mockPublisher.ClearEvents()

		if err := service.NotifyQuestionDeleted(ctx, question.ID, "admin-1"); err != nil {
			t.Fatalf("Failed to publish question deleted event: %v", err)
		}

		published := mockPublisher.GetPublishedEvents()
		if len(published) != 1 {
			t.Fatalf("Expected 1 event, got %d", len(published))
		}
		if published[0].Type != "question.deleted" {
			t.Errorf("Expected event type 'question.deleted', got %s", published[0].Type)
		}

		data, ok := published[0].Data.(QuestionDeletedEventData)
		if !ok {
			t.Fatalf("Expected QuestionDeletedEventData payload, got %T", published[0].Data)
		}
		if data.DeletedBy != "admin-1" {
			t.Errorf("Expected deleted_by 'admin-1', got %q", data.DeletedBy)
		}
	})

	t.Run("NotesBulkDownloaded", func(t *testing.T) {
		mockPublisher.ClearEvents()

		if err := service.NotifyNotesBulkDownloaded(ctx, "student-7", 4); err != nil {
			t.Fatalf("Failed to publish bulk download event: %v", err)
		}

		published := mockPublisher.GetPublishedEvents()
		if len(published) != 1 {
			t.Fatalf("Expected 1 event, got %d", len(published))
		}
		if published[0].Type != "notes.bulk_downloaded" {
			t.Errorf("Expected event type 'notes.bulk_downloaded', got %s", published[0].Type)
		}
	})

	t.Run("Event_Structure_Validation", func(t *testing.T) {
		mockPublisher.ClearEvents()

		if err := service.NotifyQuestionImported(ctx, "HumanEval/0", question.ID); err != nil {
			t.Fatalf("Failed to publish import event: %v", err)
		}

		published := mockPublisher.GetPublishedEvents()
		if len(published) != 1 {
			t.Fatalf("Expected 1 event, got %d", len(published))
		}

		event := published[0]

		// Validate event structure
		if event.ID == "" {
			t.Error("Event ID should not be empty")
		}
		if event.Source != "console-service" {
			t.Errorf("Expected source 'console-service', got '%s'", event.Source)
		}
		if event.Version != "1.0" {
			t.Errorf("Expected version '1.0', got '%s'", event.Version)
		}
		if event.Timestamp.IsZero() {
			t.Error("Event timestamp should not be zero")
		}
	})

	t.Run("NilPublisher", func(t *testing.T) {
		noPublisher := &notificationEventService{
			repo:      &MockNotificationRepository{},
			logger:    service.logger,
			validator: service.validator,
		}
		if err := noPublisher.NotifyQuestionCreated(ctx, question); err != nil {
			t.Fatalf("Nil publisher should be a no-op, got %v", err)
		}
	})
}

func BenchmarkNotificationEventService_PublishEvent(b *testing.B) {
	service, _ := newTestEventService()
	ctx := context.Background()

	question := &models.Question{
		ID:         uuid.New(),
		Title:      "Benchmark Question",
		CategoryID: uuid.New(),
		CreatedBy:  "teacher-1",
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := service.NotifyQuestionUpdated(ctx, question); err != nil {
			b.Fatalf("Failed to publish event: %v", err)
		}
	}
}
