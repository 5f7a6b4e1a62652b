package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/codebench-edu/console-service/internal/events"
	"github.com/codebench-edu/console-service/internal/models"
	"github.com/codebench-edu/console-service/internal/repositories"
	"github.com/codebench-edu/console-service/internal/validator"
)

// notificationEventService publishes domain events to kafka. Every
// publish is best-effort: the originating request already succeeded, so
// a broker hiccup is logged and swallowed.
type notificationEventService struct {
	repo           repositories.Repository
	eventPublisher events.EventPublisher
	logger         *slog.Logger
	validator      *validator.Validator
}

func NewNotificationEventService(repo repositories.Repository, eventPublisher events.EventPublisher, logger *slog.Logger, validator *validator.Validator) NotificationEventService {
	return &notificationEventService{
		repo:           repo,
		eventPublisher: eventPublisher,
		logger:         logger,
		validator:      validator,
	}
}

// ===== EVENT PAYLOADS =====

type QuestionEventData struct {
	QuestionID uuid.UUID `json:"question_id"`
	Title      string    `json:"title"`
	CategoryID uuid.UUID `json:"category_id"`
	CreatedBy  string    `json:"created_by"`
}

type QuestionDeletedEventData struct {
	QuestionID uuid.UUID `json:"question_id"`
	DeletedBy  string    `json:"deleted_by"`
}

type QuestionImportedEventData struct {
	TaskID     string    `json:"task_id"`
	QuestionID uuid.UUID `json:"question_id"`
}

type NoteUploadedEventData struct {
	NoteID    uuid.UUID `json:"note_id"`
	CourseID  uuid.UUID `json:"course_id"`
	TeacherID string    `json:"teacher_id"`
	Title     string    `json:"title"`
	FileCount int       `json:"file_count"`
}

type NotesBulkDownloadedEventData struct {
	StudentID string `json:"student_id"`
	FileCount int    `json:"file_count"`
}

// ===== PUBLISHERS =====

func (s *notificationEventService) NotifyQuestionCreated(ctx context.Context, question *models.Question) error {
	return s.publish(ctx, events.EventQuestionCreated, questionEventData(question))
}

func (s *notificationEventService) NotifyQuestionUpdated(ctx context.Context, question *models.Question) error {
	return s.publish(ctx, events.EventQuestionUpdated, questionEventData(question))
}

func (s *notificationEventService) NotifyQuestionDeleted(ctx context.Context, questionID uuid.UUID, deletedBy string) error {
	return s.publish(ctx, events.EventQuestionDeleted, QuestionDeletedEventData{
		QuestionID: questionID,
		DeletedBy:  deletedBy,
	})
}

func (s *notificationEventService) NotifyQuestionImported(ctx context.Context, taskID string, questionID uuid.UUID) error {
	return s.publish(ctx, events.EventQuestionImported, QuestionImportedEventData{
		TaskID:     taskID,
		QuestionID: questionID,
	})
}

func (s *notificationEventService) NotifyNoteUploaded(ctx context.Context, note *models.UploadedNote) error {
	return s.publish(ctx, events.EventNoteUploaded, NoteUploadedEventData{
		NoteID:    note.ID,
		CourseID:  note.CourseID,
		TeacherID: note.TeacherID,
		Title:     note.Title,
		FileCount: len(note.NoteFiles),
	})
}

func (s *notificationEventService) NotifyNotesBulkDownloaded(ctx context.Context, studentID string, fileCount int) error {
	return s.publish(ctx, events.EventNotesBulkDownloaded, NotesBulkDownloadedEventData{
		StudentID: studentID,
		FileCount: fileCount,
	})
}

func (s *notificationEventService) publish(ctx context.Context, eventType string, data interface{}) error {
	if s.eventPublisher == nil {
		return nil
	}

	event := events.NewEvent(eventType, data)
	if err := s.eventPublisher.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish event", "event_type", eventType, "error", err)
		return fmt.Errorf("failed to publish %s event: %w", eventType, err)
	}
	return nil
}

func questionEventData(question *models.Question) QuestionEventData {
	return QuestionEventData{
		QuestionID: question.ID,
		Title:      question.Title,
		CategoryID: question.CategoryID,
		CreatedBy:  question.CreatedBy,
	}
}
