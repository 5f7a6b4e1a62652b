package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/codebench-edu/console-service/internal/cache"
	"github.com/codebench-edu/console-service/internal/models"
	"github.com/codebench-edu/console-service/internal/repositories"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type NotePostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewNotePostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.NoteRepository {
	return &NotePostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

// ===== BASIC CRUD OPERATIONS =====

// Create persists the note and any attached files in one transaction
func (n *NotePostgreSQL) Create(ctx context.Context, tx *gorm.DB, note *models.UploadedNote) error {
	db := n.getDB(tx)
	if err := db.WithContext(ctx).Create(note).Error; err != nil {
		return fmt.Errorf("failed to create note: %w", err)
	}

	cache.InvalidateNoteCache(ctx, n.cacheManager, note.ID, note.CourseID)
	return nil
}

// GetByID retrieves a note without its file blobs
func (n *NotePostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.UploadedNote, error) {
	db := n.getDB(tx)
	var note models.UploadedNote
	if err := db.WithContext(ctx).First(&note, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("note not found with ID %s", id)
		}
		return nil, fmt.Errorf("failed to get note: %w", err)
	}
	return &note, nil
}

// GetByIDWithFiles retrieves a note with file metadata; blobs stay omitted
// until GetFile is called for a specific file.
func (n *NotePostgreSQL) GetByIDWithFiles(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.UploadedNote, error) {
	db := n.getDB(tx)
	var note models.UploadedNote
	if err := db.WithContext(ctx).
		Preload("NoteFiles", func(db *gorm.DB) *gorm.DB {
			return db.Select("id, note_id, filename, original_filename, content_type, file_size, created_at").
				Order("created_at ASC")
		}).
		Preload("Course").
		First(&note, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("note not found with ID %s", id)
		}
		return nil, fmt.Errorf("failed to get note with files: %w", err)
	}
	return &note, nil
}

// Update updates a note's metadata
func (n *NotePostgreSQL) Update(ctx context.Context, tx *gorm.DB, note *models.UploadedNote) error {
	db := n.getDB(tx)
	if err := db.WithContext(ctx).Omit("NoteFiles").Save(note).Error; err != nil {
		return fmt.Errorf("failed to update note: %w", err)
	}

	cache.InvalidateNoteCache(ctx, n.cacheManager, note.ID, note.CourseID)
	return nil
}

// Delete removes a note and its files
func (n *NotePostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	db := n.getDB(tx)

	var note models.UploadedNote
	if err := db.WithContext(ctx).Select("id, course_id").First(&note, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to get note before delete: %w", err)
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.WithContext(ctx).Where("note_id = ?", id).Delete(&models.NoteFile{}).Error; err != nil {
			return fmt.Errorf("failed to delete note files: %w", err)
		}
		if err := tx.WithContext(ctx).Delete(&models.UploadedNote{}, "id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to delete note: %w", err)
		}
		return nil
	})

	if err != nil {
		return err
	}

	cache.InvalidateNoteCache(ctx, n.cacheManager, id, note.CourseID)
	return nil
}

// ===== QUERY OPERATIONS =====

// List retrieves notes with filtering and pagination; file metadata is
// preloaded, blobs are not.
func (n *NotePostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.NoteFilters) ([]*models.UploadedNote, int64, error) {
	db := n.getDB(tx)
	query := db.WithContext(ctx).Model(&models.UploadedNote{})

	query = n.applyNoteFilters(query, filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count notes: %w", err)
	}

	query = n.helpers.ApplyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)

	var notes []*models.UploadedNote
	if err := query.
		Preload("NoteFiles", func(db *gorm.DB) *gorm.DB {
			return db.Select("id, note_id, filename, original_filename, content_type, file_size, created_at")
		}).
		Preload("Course").
		Find(&notes).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list notes: %w", err)
	}

	return notes, total, nil
}

// GetByCourse retrieves notes for a course
func (n *NotePostgreSQL) GetByCourse(ctx context.Context, tx *gorm.DB, courseID uuid.UUID, filters repositories.NoteFilters) ([]*models.UploadedNote, int64, error) {
	filters.CourseID = &courseID
	return n.List(ctx, tx, filters)
}

// ListByCourses retrieves notes across a set of courses; it backs the
// student listing scoped to the enrolled set.
func (n *NotePostgreSQL) ListByCourses(ctx context.Context, tx *gorm.DB, courseIDs []uuid.UUID, filters repositories.NoteFilters) ([]*models.UploadedNote, int64, error) {
	db := n.getDB(tx)
	query := db.WithContext(ctx).Model(&models.UploadedNote{}).
		Where("course_id IN ?", courseIDs)

	query = n.applyNoteFilters(query, filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count notes: %w", err)
	}

	query = n.helpers.ApplyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)

	var notes []*models.UploadedNote
	if err := query.
		Preload("NoteFiles", func(db *gorm.DB) *gorm.DB {
			return db.Select("id, note_id, filename, original_filename, content_type, file_size, created_at")
		}).
		Preload("Course").
		Find(&notes).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list notes by courses: %w", err)
	}

	return notes, total, nil
}

// GetByTeacher retrieves notes uploaded by a teacher
func (n *NotePostgreSQL) GetByTeacher(ctx context.Context, tx *gorm.DB, teacherID string, filters repositories.NoteFilters) ([]*models.UploadedNote, int64, error) {
	filters.TeacherID = &teacherID
	return n.List(ctx, tx, filters)
}

// ===== FILE OPERATIONS =====

// AddFile attaches a file to an existing note
func (n *NotePostgreSQL) AddFile(ctx context.Context, tx *gorm.DB, file *models.NoteFile) error {
	db := n.getDB(tx)
	if err := db.WithContext(ctx).Create(file).Error; err != nil {
		return fmt.Errorf("failed to add note file: %w", err)
	}
	return nil
}

// GetFile loads a single file including its blob
func (n *NotePostgreSQL) GetFile(ctx context.Context, tx *gorm.DB, fileID uuid.UUID) (*models.NoteFile, error) {
	db := n.getDB(tx)
	var file models.NoteFile
	if err := db.WithContext(ctx).First(&file, "id = ?", fileID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("note file not found with ID %s", fileID)
		}
		return nil, fmt.Errorf("failed to get note file: %w", err)
	}
	return &file, nil
}

// GetFilesByNote loads all files for a note including blobs; used by the
// bulk zip download.
func (n *NotePostgreSQL) GetFilesByNote(ctx context.Context, tx *gorm.DB, noteID uuid.UUID) ([]*models.NoteFile, error) {
	db := n.getDB(tx)
	var files []*models.NoteFile
	if err := db.WithContext(ctx).
		Where("note_id = ?", noteID).
		Order("created_at ASC").
		Find(&files).Error; err != nil {
		return nil, fmt.Errorf("failed to get files by note: %w", err)
	}
	return files, nil
}

// DeleteFile removes a single file from a note
func (n *NotePostgreSQL) DeleteFile(ctx context.Context, tx *gorm.DB, fileID uuid.UUID) error {
	db := n.getDB(tx)
	if err := db.WithContext(ctx).Delete(&models.NoteFile{}, "id = ?", fileID).Error; err != nil {
		return fmt.Errorf("failed to delete note file: %w", err)
	}
	return nil
}

// ===== VALIDATION AND STATISTICS =====

// CountByCourse counts notes attached to a course
func (n *NotePostgreSQL) CountByCourse(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) (int64, error) {
	db := n.getDB(tx)
	var count int64
	if err := db.WithContext(ctx).
		Model(&models.UploadedNote{}).
		Where("course_id = ?", courseID).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count notes by course: %w", err)
	}
	return count, nil
}

// GetNoteStats aggregates upload statistics for a teacher
func (n *NotePostgreSQL) GetNoteStats(ctx context.Context, tx *gorm.DB, teacherID string) (*repositories.NoteStats, error) {
	db := n.getDB(tx)
	stats := &repositories.NoteStats{
		NotesByCourse: make(map[uuid.UUID]int),
		NotesByType:   make(map[models.NoteCategory]int),
	}

	var totalNotes int64
	if err := db.WithContext(ctx).
		Model(&models.UploadedNote{}).
		Where("teacher_id = ?", teacherID).
		Count(&totalNotes).Error; err != nil {
		return nil, fmt.Errorf("failed to count notes: %w", err)
	}
	stats.TotalNotes = int(totalNotes)

	var fileAgg struct {
		Count int64
		Bytes int64
	}
	if err := db.WithContext(ctx).
		Model(&models.NoteFile{}).
		Select("COUNT(*) as count, COALESCE(SUM(file_size), 0) as bytes").
		Joins("JOIN uploaded_notes ON uploaded_notes.id = note_files.note_id").
		Where("uploaded_notes.teacher_id = ?", teacherID).
		Scan(&fileAgg).Error; err != nil {
		return nil, fmt.Errorf("failed to aggregate note files: %w", err)
	}
	stats.TotalFiles = int(fileAgg.Count)
	stats.TotalBytes = fileAgg.Bytes

	var courseResults []struct {
		CourseID uuid.UUID
		Count    int
	}
	if err := db.WithContext(ctx).
		Model(&models.UploadedNote{}).
		Select("course_id, COUNT(*) as count").
		Where("teacher_id = ?", teacherID).
		Group("course_id").
		Find(&courseResults).Error; err != nil {
		return nil, fmt.Errorf("failed to group notes by course: %w", err)
	}
	for _, result := range courseResults {
		stats.NotesByCourse[result.CourseID] = result.Count
	}

	var categoryResults []struct {
		Category models.NoteCategory
		Count    int
	}
	if err := db.WithContext(ctx).
		Model(&models.UploadedNote{}).
		Select("category, COUNT(*) as count").
		Where("teacher_id = ?", teacherID).
		Group("category").
		Find(&categoryResults).Error; err != nil {
		return nil, fmt.Errorf("failed to group notes by category: %w", err)
	}
	for _, result := range categoryResults {
		stats.NotesByType[result.Category] = result.Count
	}

	return stats, nil
}

// ===== HELPER METHODS =====

func (n *NotePostgreSQL) applyNoteFilters(query *gorm.DB, filters repositories.NoteFilters) *gorm.DB {
	if filters.CourseID != nil {
		query = query.Where("course_id = ?", *filters.CourseID)
	}
	if filters.TeacherID != nil {
		query = query.Where("teacher_id = ?", *filters.TeacherID)
	}
	if filters.Category != nil {
		query = query.Where("category = ?", *filters.Category)
	}
	if filters.PublicOnly {
		query = query.Where("is_public = ?", true)
	}
	if filters.Search != nil && *filters.Search != "" {
		searchTerm := "%" + strings.ToLower(*filters.Search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", searchTerm, searchTerm)
	}
	return query
}

// getDB returns the transaction DB if provided, otherwise returns the default DB
func (n *NotePostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return n.db
}
