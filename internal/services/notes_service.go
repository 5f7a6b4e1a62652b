package services

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/codebench-edu/console-service/internal/models"
	"github.com/codebench-edu/console-service/internal/repositories"
	"github.com/codebench-edu/console-service/internal/validator"
)

// DefaultNotesPageSize is the fixed page size of the student notes
// listing.
const DefaultNotesPageSize = 20

// NoteListParams are the student-facing listing filters. Every filter
// change starts a fresh query from Skip 0 on the client side; the server
// is stateless about it.
type NoteListParams struct {
	Search   string
	CourseID *uuid.UUID
	Category *models.NoteCategory
	Skip     int
	Limit    int
}

// NoteFileUpload is one multipart file as received by the handler.
type NoteFileUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}

type notesService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	events    NotificationEventService
}

func NewNotesService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, events NotificationEventService) NotesService {
	return &notesService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
		events:    events,
	}
}

// ===== STUDENT-FACING OPERATIONS =====

func (s *notesService) ListNotes(ctx context.Context, studentID string, params NoteListParams) (*NoteListResponse, error) {
	enrolled, err := s.repo.Course().GetEnrolledCourses(ctx, nil, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get enrolled courses: %w", err)
	}
	if len(enrolled) == 0 {
		return emptyNoteListResponse(params), nil
	}

	enrolledIDs := make(map[uuid.UUID]bool, len(enrolled))
	for _, c := range enrolled {
		enrolledIDs[c.ID] = true
	}

	filters := repositories.NoteFilters{
		PublicOnly: true,
		Limit:      normalizeNotesLimit(params.Limit),
		Offset:     max(params.Skip, 0),
	}
	if params.Search != "" {
		search := params.Search
		filters.Search = &search
	}
	if params.Category != nil && *params.Category != "" {
		filters.Category = params.Category
	}

	// A course filter outside the student's enrolled set is silently
	// dropped; the listing reverts to all enrolled courses.
	if params.CourseID != nil && enrolledIDs[*params.CourseID] {
		filters.CourseID = params.CourseID
	}

	var notes []*models.UploadedNote
	var total int64
	if filters.CourseID != nil {
		notes, total, err = s.repo.Note().GetByCourse(ctx, nil, *filters.CourseID, filters)
	} else {
		notes, total, err = s.listAcrossCourses(ctx, enrolled, filters)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}

	return s.buildNoteListResponse(notes, total, filters), nil
}

// listAcrossCourses scopes a multi-course listing to the enrolled set.
func (s *notesService) listAcrossCourses(ctx context.Context, enrolled []*models.Course, filters repositories.NoteFilters) ([]*models.UploadedNote, int64, error) {
	ids := make([]uuid.UUID, len(enrolled))
	for i, c := range enrolled {
		ids[i] = c.ID
	}
	return s.repo.Note().ListByCourses(ctx, nil, ids, filters)
}

func (s *notesService) GetNoteFile(ctx context.Context, fileID uuid.UUID, studentID string) (*FileDownload, error) {
	file, _, err := s.getScopedFile(ctx, fileID, studentID)
	if err != nil {
		return nil, err
	}

	return &FileDownload{
		Filename:    file.OriginalFilename,
		ContentType: file.ContentType,
		Data:        file.FileData,
	}, nil
}

func (s *notesService) BulkDownload(ctx context.Context, fileIDs []uuid.UUID, studentID string) (*FileDownload, error) {
	if len(fileIDs) == 0 {
		return nil, ErrNoFilesRequested
	}

	var files []*models.NoteFile
	noteTitles := make(map[uuid.UUID]string)
	for _, fileID := range fileIDs {
		file, note, err := s.getScopedFile(ctx, fileID, studentID)
		if err != nil {
			return nil, err
		}
		files = append(files, file)
		noteTitles[note.ID] = note.Title
	}

	data, err := buildZipArchive(files)
	if err != nil {
		return nil, fmt.Errorf("failed to build archive: %w", err)
	}

	// Single-note bundles are named after the note, mixed ones generically.
	filename := "notes_bundle.zip"
	if len(noteTitles) == 1 {
		for _, title := range noteTitles {
			filename = fmt.Sprintf("%s_files.zip", sanitizeFilename(title))
		}
	}

	s.logger.Info("Notes bulk download", "student_id", studentID, "file_count", len(files))

	if s.events != nil {
		_ = s.events.NotifyNotesBulkDownloaded(ctx, studentID, len(files))
	}

	return &FileDownload{
		Filename:    filename,
		ContentType: "application/zip",
		Data:        data,
	}, nil
}

// getScopedFile loads a file blob and checks the requester is enrolled
// in the owning note's course and the note is public.
func (s *notesService) getScopedFile(ctx context.Context, fileID uuid.UUID, studentID string) (*models.NoteFile, *models.UploadedNote, error) {
	file, err := s.repo.Note().GetFile(ctx, nil, fileID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, nil, ErrNoteFileNotFound
		}
		return nil, nil, fmt.Errorf("failed to get note file: %w", err)
	}

	note, err := s.repo.Note().GetByID(ctx, nil, file.NoteID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get note: %w", err)
	}

	if !note.IsPublic {
		return nil, nil, ErrNoteFileNotFound
	}

	isEnrolled, err := s.repo.Course().IsEnrolled(ctx, nil, note.CourseID, studentID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to check enrollment: %w", err)
	}
	if !isEnrolled {
		return nil, nil, ErrNotEnrolled
	}

	return file, note, nil
}

// ===== TEACHER-FACING OPERATIONS =====

func (s *notesService) CreateNote(ctx context.Context, req *CreateNoteRequest, teacherID string, files []NoteFileUpload) (*NoteResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	canManage, err := s.canManageNotes(ctx, teacherID)
	if err != nil {
		return nil, err
	}
	if !canManage {
		return nil, NewPermissionError(teacherID, "", "note", "create", "insufficient role permissions")
	}

	if _, err := s.repo.Course().GetByID(ctx, nil, req.CourseID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}

	note := &models.UploadedNote{
		TeacherID:   teacherID,
		CourseID:    req.CourseID,
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Tags:        encodeExtraData(nil, req.Tags),
		IsPublic:    req.IsPublic,
	}
	for _, upload := range files {
		note.NoteFiles = append(note.NoteFiles, models.NoteFile{
			Filename:         sanitizeFilename(upload.Filename),
			OriginalFilename: upload.Filename,
			FileData:         upload.Data,
			ContentType:      upload.ContentType,
			FileSize:         len(upload.Data),
		})
	}

	if err := s.repo.Note().Create(ctx, nil, note); err != nil {
		return nil, fmt.Errorf("failed to create note: %w", err)
	}

	s.logger.Info("Note created", "note_id", note.ID, "teacher_id", teacherID, "files", len(files))

	if s.events != nil {
		_ = s.events.NotifyNoteUploaded(ctx, note)
	}

	return s.buildNoteResponse(note), nil
}

func (s *notesService) UpdateNote(ctx context.Context, id uuid.UUID, req *UpdateNoteRequest, teacherID string) (*NoteResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	note, err := s.getOwnedNote(ctx, id, teacherID, "update")
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		note.Title = *req.Title
	}
	if req.Description != nil {
		note.Description = req.Description
	}
	if req.Category != nil {
		note.Category = *req.Category
	}
	if req.Tags != nil {
		note.Tags = encodeExtraData(nil, req.Tags)
	}
	if req.IsPublic != nil {
		note.IsPublic = *req.IsPublic
	}

	if err := s.repo.Note().Update(ctx, nil, note); err != nil {
		return nil, fmt.Errorf("failed to update note: %w", err)
	}

	s.logger.Info("Note updated", "note_id", id, "teacher_id", teacherID)
	return s.buildNoteResponse(note), nil
}

func (s *notesService) DeleteNote(ctx context.Context, id uuid.UUID, teacherID string) error {
	if _, err := s.getOwnedNote(ctx, id, teacherID, "delete"); err != nil {
		return err
	}

	if err := s.repo.Note().Delete(ctx, nil, id); err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}

	s.logger.Info("Note deleted", "note_id", id, "teacher_id", teacherID)
	return nil
}

func (s *notesService) GetNote(ctx context.Context, id uuid.UUID, userID string) (*NoteResponse, error) {
	note, err := s.repo.Note().GetByIDWithFiles(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrNoteNotFound
		}
		return nil, fmt.Errorf("failed to get note: %w", err)
	}
	return s.buildNoteResponse(note), nil
}

func (s *notesService) AddNoteFile(ctx context.Context, noteID uuid.UUID, teacherID string, upload NoteFileUpload) (*NoteFileResponse, error) {
	if len(upload.Data) == 0 {
		return nil, ErrEmptyFile
	}

	if _, err := s.getOwnedNote(ctx, noteID, teacherID, "upload"); err != nil {
		return nil, err
	}

	file := &models.NoteFile{
		NoteID:           noteID,
		Filename:         sanitizeFilename(upload.Filename),
		OriginalFilename: upload.Filename,
		FileData:         upload.Data,
		ContentType:      upload.ContentType,
		FileSize:         len(upload.Data),
	}

	if err := s.repo.Note().AddFile(ctx, nil, file); err != nil {
		return nil, fmt.Errorf("failed to add note file: %w", err)
	}

	s.logger.Info("Note file added", "note_id", noteID, "file_id", file.ID, "size", file.FileSize)
	return noteFileResponse(file), nil
}

func (s *notesService) DeleteNoteFile(ctx context.Context, fileID uuid.UUID, teacherID string) error {
	file, err := s.repo.Note().GetFile(ctx, nil, fileID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrNoteFileNotFound
		}
		return fmt.Errorf("failed to get note file: %w", err)
	}

	if _, err := s.getOwnedNote(ctx, file.NoteID, teacherID, "delete"); err != nil {
		return err
	}

	if err := s.repo.Note().DeleteFile(ctx, nil, fileID); err != nil {
		return fmt.Errorf("failed to delete note file: %w", err)
	}

	s.logger.Info("Note file deleted", "note_id", file.NoteID, "file_id", fileID)
	return nil
}

// DownloadNoteArchive zips every file of one note, for teachers as well
// as enrolled students.
func (s *notesService) DownloadNoteArchive(ctx context.Context, noteID uuid.UUID, userID string) (*FileDownload, error) {
	note, err := s.repo.Note().GetByID(ctx, nil, noteID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrNoteNotFound
		}
		return nil, fmt.Errorf("failed to get note: %w", err)
	}

	if note.TeacherID != userID {
		user, err := s.repo.User().GetByID(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to get user: %w", err)
		}
		if user.Role != models.RoleAdmin {
			if !note.IsPublic {
				return nil, ErrNoteNotFound
			}
			isEnrolled, err := s.repo.Course().IsEnrolled(ctx, nil, note.CourseID, userID)
			if err != nil {
				return nil, fmt.Errorf("failed to check enrollment: %w", err)
			}
			if !isEnrolled {
				return nil, ErrNotEnrolled
			}
		}
	}

	files, err := s.repo.Note().GetFilesByNote(ctx, nil, noteID)
	if err != nil {
		return nil, fmt.Errorf("failed to get note files: %w", err)
	}
	if len(files) == 0 {
		return nil, ErrNoteFileNotFound
	}

	data, err := buildZipArchive(files)
	if err != nil {
		return nil, fmt.Errorf("failed to build archive: %w", err)
	}

	return &FileDownload{
		Filename:    fmt.Sprintf("%s_files.zip", sanitizeFilename(note.Title)),
		ContentType: "application/zip",
		Data:        data,
	}, nil
}

func (s *notesService) GetTeacherNotes(ctx context.Context, teacherID string, params NoteListParams) (*NoteListResponse, error) {
	filters := repositories.NoteFilters{
		Limit:  normalizeNotesLimit(params.Limit),
		Offset: max(params.Skip, 0),
	}
	if params.Search != "" {
		search := params.Search
		filters.Search = &search
	}
	if params.Category != nil && *params.Category != "" {
		filters.Category = params.Category
	}
	if params.CourseID != nil {
		filters.CourseID = params.CourseID
	}

	notes, total, err := s.repo.Note().GetByTeacher(ctx, nil, teacherID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list teacher notes: %w", err)
	}

	return s.buildNoteListResponse(notes, total, filters), nil
}

func (s *notesService) GetNoteStats(ctx context.Context, teacherID string) (*repositories.NoteStats, error) {
	stats, err := s.repo.Note().GetNoteStats(ctx, nil, teacherID)
	if err != nil {
		return nil, fmt.Errorf("failed to get note stats: %w", err)
	}
	return stats, nil
}

// ===== HELPER FUNCTIONS =====

func (s *notesService) canManageNotes(ctx context.Context, userID string) (bool, error) {
	user, err := s.repo.User().GetByID(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("failed to get user: %w", err)
	}
	return user.Role == models.RoleTeacher || user.Role == models.RoleAdmin, nil
}

func (s *notesService) getOwnedNote(ctx context.Context, id uuid.UUID, teacherID string, action string) (*models.UploadedNote, error) {
	note, err := s.repo.Note().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrNoteNotFound
		}
		return nil, fmt.Errorf("failed to get note: %w", err)
	}

	if note.TeacherID != teacherID {
		user, err := s.repo.User().GetByID(ctx, teacherID)
		if err != nil {
			return nil, fmt.Errorf("failed to get user: %w", err)
		}
		if user.Role != models.RoleAdmin {
			return nil, NewPermissionError(teacherID, id.String(), "note", action, "not the uploading teacher")
		}
	}
	return note, nil
}

func (s *notesService) buildNoteResponse(note *models.UploadedNote) *NoteResponse {
	resp := &NoteResponse{
		UploadedNote: note,
		Tags:         decodeNoteTags(note),
		Files:        []*NoteFileResponse{},
	}
	if note.Course != nil {
		resp.CourseName = note.Course.Name
		resp.CourseCode = note.Course.CourseCode
	}
	for i := range note.NoteFiles {
		resp.Files = append(resp.Files, noteFileResponse(&note.NoteFiles[i]))
	}
	return resp
}

func (s *notesService) buildNoteListResponse(notes []*models.UploadedNote, total int64, filters repositories.NoteFilters) *NoteListResponse {
	responses := make([]*NoteResponse, len(notes))
	for i, n := range notes {
		responses[i] = s.buildNoteResponse(n)
	}
	return &NoteListResponse{
		Notes: responses,
		Total: total,
		Page:  (filters.Offset / max(filters.Limit, 1)) + 1,
		Size:  filters.Limit,
	}
}

func noteFileResponse(file *models.NoteFile) *NoteFileResponse {
	return &NoteFileResponse{
		ID:               file.ID,
		Filename:         file.Filename,
		OriginalFilename: file.OriginalFilename,
		ContentType:      file.ContentType,
		FileSize:         file.FileSize,
		CreatedAt:        file.CreatedAt,
	}
}

func decodeNoteTags(note *models.UploadedNote) []string {
	extra := decodeExtraData(note.Tags)
	if extra == nil {
		return []string{}
	}
	list, ok := extra[extraDataTagsKey].([]interface{})
	if !ok {
		return []string{}
	}
	tags := make([]string, 0, len(list))
	for _, v := range list {
		if s, ok := v.(string); ok {
			tags = append(tags, s)
		}
	}
	return tags
}

func emptyNoteListResponse(params NoteListParams) *NoteListResponse {
	return &NoteListResponse{
		Notes: []*NoteResponse{},
		Total: 0,
		Page:  (max(params.Skip, 0) / normalizeNotesLimit(params.Limit)) + 1,
		Size:  normalizeNotesLimit(params.Limit),
	}
}

func normalizeNotesLimit(limit int) int {
	if limit <= 0 || limit > 100 {
		return DefaultNotesPageSize
	}
	return limit
}

// buildZipArchive packs note files into a zip, deduplicating names so
// two uploads called report.pdf both survive.
func buildZipArchive(files []*models.NoteFile) ([]byte, error) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)

	seen := make(map[string]int)
	for _, file := range files {
		name := file.OriginalFilename
		if name == "" {
			name = file.Filename
		}
		key := name
		if n := seen[key]; n > 0 {
			ext := ""
			base := name
			if idx := strings.LastIndex(name, "."); idx > 0 {
				base, ext = name[:idx], name[idx:]
			}
			name = fmt.Sprintf("%s_%d%s", base, n, ext)
		}
		seen[key]++

		entry, err := w.Create(name)
		if err != nil {
			return nil, err
		}
		if _, err := entry.Write(file.FileData); err != nil {
			return nil, err
		}
	}

	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
