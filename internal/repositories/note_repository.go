package repositories

import (
	"context"

	"github.com/codebench-edu/console-service/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NoteRepository interface for uploaded-note and note-file operations
type NoteRepository interface {
	// Basic CRUD operations. Create persists the note together with any
	// attached NoteFiles in one shot.
	Create(ctx context.Context, tx *gorm.DB, note *models.UploadedNote) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.UploadedNote, error)
	GetByIDWithFiles(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.UploadedNote, error)
	Update(ctx context.Context, tx *gorm.DB, note *models.UploadedNote) error
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error

	// Query operations. Listings never load file blobs.
	List(ctx context.Context, tx *gorm.DB, filters NoteFilters) ([]*models.UploadedNote, int64, error)
	GetByCourse(ctx context.Context, tx *gorm.DB, courseID uuid.UUID, filters NoteFilters) ([]*models.UploadedNote, int64, error)
	ListByCourses(ctx context.Context, tx *gorm.DB, courseIDs []uuid.UUID, filters NoteFilters) ([]*models.UploadedNote, int64, error)
	GetByTeacher(ctx context.Context, tx *gorm.DB, teacherID string, filters NoteFilters) ([]*models.UploadedNote, int64, error)

	// File operations
	AddFile(ctx context.Context, tx *gorm.DB, file *models.NoteFile) error
	GetFile(ctx context.Context, tx *gorm.DB, fileID uuid.UUID) (*models.NoteFile, error)
	GetFilesByNote(ctx context.Context, tx *gorm.DB, noteID uuid.UUID) ([]*models.NoteFile, error)
	DeleteFile(ctx context.Context, tx *gorm.DB, fileID uuid.UUID) error

	// Validation and statistics
	CountByCourse(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) (int64, error)
	GetNoteStats(ctx context.Context, tx *gorm.DB, teacherID string) (*NoteStats, error)
}
