package services

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/codebench-edu/console-service/internal/models"
	"github.com/codebench-edu/console-service/internal/repositories"
	"github.com/codebench-edu/console-service/internal/validator"
)

// fakeCourseRepo serves a fixed enrolled set.
type fakeCourseRepo struct {
	enrolled []*models.Course
}

func (f *fakeCourseRepo) Create(ctx context.Context, tx *gorm.DB, course *models.Course) error {
	return nil
}

func (f *fakeCourseRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Course, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeCourseRepo) GetByCode(ctx context.Context, tx *gorm.DB, courseCode string) (*models.Course, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeCourseRepo) Update(ctx context.Context, tx *gorm.DB, course *models.Course) error {
	return nil
}

func (f *fakeCourseRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error { return nil }

func (f *fakeCourseRepo) List(ctx context.Context, tx *gorm.DB, filters repositories.CourseFilters) ([]*models.Course, int64, error) {
	return nil, 0, nil
}

func (f *fakeCourseRepo) Enroll(ctx context.Context, tx *gorm.DB, courseID uuid.UUID, studentID string) error {
	return nil
}

func (f *fakeCourseRepo) Unenroll(ctx context.Context, tx *gorm.DB, courseID uuid.UUID, studentID string) error {
	return nil
}

func (f *fakeCourseRepo) GetEnrolledCourses(ctx context.Context, tx *gorm.DB, studentID string) ([]*models.Course, error) {
	return f.enrolled, nil
}

func (f *fakeCourseRepo) GetEnrollments(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) ([]*models.CourseEnrollment, error) {
	return nil, nil
}

func (f *fakeCourseRepo) IsEnrolled(ctx context.Context, tx *gorm.DB, courseID uuid.UUID, studentID string) (bool, error) {
	for _, c := range f.enrolled {
		if c.ID == courseID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeCourseRepo) ExistsByCode(ctx context.Context, tx *gorm.DB, courseCode string, excludeID *uuid.UUID) (bool, error) {
	return false, nil
}

// fakeNoteRepo records the query it receives.
type fakeNoteRepo struct {
	byCourseIDs []uuid.UUID
	listedIDs   []uuid.UUID
	lastFilters *repositories.NoteFilters
}

func (f *fakeNoteRepo) Create(ctx context.Context, tx *gorm.DB, note *models.UploadedNote) error {
	return nil
}

func (f *fakeNoteRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.UploadedNote, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeNoteRepo) GetByIDWithFiles(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.UploadedNote, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeNoteRepo) Update(ctx context.Context, tx *gorm.DB, note *models.UploadedNote) error {
	return nil
}

func (f *fakeNoteRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error { return nil }

func (f *fakeNoteRepo) List(ctx context.Context, tx *gorm.DB, filters repositories.NoteFilters) ([]*models.UploadedNote, int64, error) {
	f.lastFilters = &filters
	return nil, 0, nil
}

func (f *fakeNoteRepo) GetByCourse(ctx context.Context, tx *gorm.DB, courseID uuid.UUID, filters repositories.NoteFilters) ([]*models.UploadedNote, int64, error) {
	f.byCourseIDs = append(f.byCourseIDs, courseID)
	f.lastFilters = &filters
	return nil, 0, nil
}

func (f *fakeNoteRepo) ListByCourses(ctx context.Context, tx *gorm.DB, courseIDs []uuid.UUID, filters repositories.NoteFilters) ([]*models.UploadedNote, int64, error) {
	f.listedIDs = courseIDs
	f.lastFilters = &filters
	return nil, 0, nil
}

func (f *fakeNoteRepo) GetByTeacher(ctx context.Context, tx *gorm.DB, teacherID string, filters repositories.NoteFilters) ([]*models.UploadedNote, int64, error) {
	return nil, 0, nil
}

func (f *fakeNoteRepo) AddFile(ctx context.Context, tx *gorm.DB, file *models.NoteFile) error {
	return nil
}

func (f *fakeNoteRepo) GetFile(ctx context.Context, tx *gorm.DB, fileID uuid.UUID) (*models.NoteFile, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeNoteRepo) GetFilesByNote(ctx context.Context, tx *gorm.DB, noteID uuid.UUID) ([]*models.NoteFile, error) {
	return nil, nil
}

func (f *fakeNoteRepo) DeleteFile(ctx context.Context, tx *gorm.DB, fileID uuid.UUID) error {
	return nil
}

func (f *fakeNoteRepo) CountByCourse(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) (int64, error) {
	return 0, nil
}

func (f *fakeNoteRepo) GetNoteStats(ctx context.Context, tx *gorm.DB, teacherID string) (*repositories.NoteStats, error) {
	return &repositories.NoteStats{}, nil
}

type fakeNotesServiceRepo struct {
	MockNotificationRepository
	course *fakeCourseRepo
	note   *fakeNoteRepo
}

func (f *fakeNotesServiceRepo) Course() repositories.CourseRepository { return f.course }
func (f *fakeNotesServiceRepo) Note() repositories.NoteRepository     { return f.note }

func newNotesTestService(enrolled []*models.Course) (*notesService, *fakeNoteRepo) {
	noteRepo := &fakeNoteRepo{}
	service := &notesService{
		repo: &fakeNotesServiceRepo{
			course: &fakeCourseRepo{enrolled: enrolled},
			note:   noteRepo,
		},
		logger:    slog.New(slog.NewTextHandler(os.Stdout, nil)),
		validator: validator.New(),
	}
	return service, noteRepo
}

func TestNotesService_ListScopedToEnrolledCourses(t *testing.T) {
	enrolledCourse := &models.Course{ID: uuid.New(), CourseCode: "CS201", Name: "Algorithms"}
	service, noteRepo := newNotesTestService([]*models.Course{enrolledCourse})
	ctx := context.Background()

	t.Run("out-of-scope course filter is dropped", func(t *testing.T) {
		foreignCourse := uuid.New()
		if _, err := service.ListNotes(ctx, "student-1", NoteListParams{CourseID: &foreignCourse}); err != nil {
			t.Fatalf("ListNotes failed: %v", err)
		}

		// The listing reverts to the whole enrolled set.
		if len(noteRepo.listedIDs) != 1 || noteRepo.listedIDs[0] != enrolledCourse.ID {
			t.Errorf("Expected query over enrolled courses %v, got %v", enrolledCourse.ID, noteRepo.listedIDs)
		}
		if noteRepo.lastFilters.CourseID != nil {
			t.Errorf("Expected no course filter, got %v", noteRepo.lastFilters.CourseID)
		}
	})

	t.Run("enrolled course filter is applied", func(t *testing.T) {
		if _, err := service.ListNotes(ctx, "student-1", NoteListParams{CourseID: &enrolledCourse.ID}); err != nil {
			t.Fatalf("ListNotes failed: %v", err)
		}
		if len(noteRepo.byCourseIDs) != 1 || noteRepo.byCourseIDs[0] != enrolledCourse.ID {
			t.Errorf("Expected course-scoped query for %v, got %v", enrolledCourse.ID, noteRepo.byCourseIDs)
		}
	})

	t.Run("fresh params query from offset zero", func(t *testing.T) {
		category := models.NoteLectureNotes
		if _, err := service.ListNotes(ctx, "student-1", NoteListParams{Category: &category}); err != nil {
			t.Fatalf("ListNotes failed: %v", err)
		}
		if noteRepo.lastFilters.Offset != 0 {
			t.Errorf("Expected offset 0 on a fresh query, got %d", noteRepo.lastFilters.Offset)
		}
		if noteRepo.lastFilters.Limit != DefaultNotesPageSize {
			t.Errorf("Expected default page size %d, got %d", DefaultNotesPageSize, noteRepo.lastFilters.Limit)
		}
	})

	t.Run("negative skip clamps to zero", func(t *testing.T) {
		if _, err := service.ListNotes(ctx, "student-1", NoteListParams{Skip: -40}); err != nil {
			t.Fatalf("ListNotes failed: %v", err)
		}
		if noteRepo.lastFilters.Offset != 0 {
			t.Errorf("Expected offset clamped to 0, got %d", noteRepo.lastFilters.Offset)
		}
	})
}

func TestNormalizeNotesLimit(t *testing.T) {
	tests := []struct {
		name  string
		limit int
		want  int
	}{
		{name: "zero falls back to default", limit: 0, want: DefaultNotesPageSize},
		{name: "negative falls back to default", limit: -5, want: DefaultNotesPageSize},
		{name: "over cap falls back to default", limit: 500, want: DefaultNotesPageSize},
		{name: "in range kept", limit: 50, want: 50},
		{name: "cap boundary kept", limit: 100, want: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := normalizeNotesLimit(tt.limit); got != tt.want {
				t.Errorf("normalizeNotesLimit(%d) = %d, want %d", tt.limit, got, tt.want)
			}
		})
	}
}

func TestBuildZipArchive(t *testing.T) {
	files := []*models.NoteFile{
		{OriginalFilename: "report.pdf", FileData: []byte("first")},
		{OriginalFilename: "report.pdf", FileData: []byte("second")},
		{OriginalFilename: "report.pdf", FileData: []byte("third")},
		{OriginalFilename: "slides.pptx", FileData: []byte("deck")},
	}

	data, err := buildZipArchive(files)
	if err != nil {
		t.Fatalf("buildZipArchive failed: %v", err)
	}

	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("Archive does not parse as zip: %v", err)
	}

	want := map[string]string{
		"report.pdf":   "first",
		"report_1.pdf": "second",
		"report_2.pdf": "third",
		"slides.pptx":  "deck",
	}
	if len(reader.File) != len(want) {
		t.Fatalf("Expected %d entries, got %d", len(want), len(reader.File))
	}

	for _, entry := range reader.File {
		expected, ok := want[entry.Name]
		if !ok {
			t.Errorf("Unexpected entry %q", entry.Name)
			continue
		}
		rc, err := entry.Open()
		if err != nil {
			t.Fatalf("Failed to open entry %q: %v", entry.Name, err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("Failed to read entry %q: %v", entry.Name, err)
		}
		if string(content) != expected {
			t.Errorf("Entry %q: expected content %q, got %q", entry.Name, expected, content)
		}
	}
}

func TestBuildZipArchive_FallsBackToStoredFilename(t *testing.T) {
	files := []*models.NoteFile{
		{Filename: "a1b2c3.bin", FileData: []byte("payload")},
	}

	data, err := buildZipArchive(files)
	if err != nil {
		t.Fatalf("buildZipArchive failed: %v", err)
	}

	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("Archive does not parse as zip: %v", err)
	}
	if len(reader.File) != 1 || reader.File[0].Name != "a1b2c3.bin" {
		t.Fatalf("Expected single entry a1b2c3.bin, got %v", reader.File)
	}
}

func TestBuildZipArchive_DeduplicatesFallbackNames(t *testing.T) {
	// Both files lack an original filename and share a stored name; the
	// archive must still get two distinct entries.
	files := []*models.NoteFile{
		{Filename: "a1b2c3.bin", FileData: []byte("first")},
		{Filename: "a1b2c3.bin", FileData: []byte("second")},
	}

	data, err := buildZipArchive(files)
	if err != nil {
		t.Fatalf("buildZipArchive failed: %v", err)
	}

	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("Archive does not parse as zip: %v", err)
	}
	if len(reader.File) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(reader.File))
	}

	names := map[string]bool{}
	for _, entry := range reader.File {
		if names[entry.Name] {
			t.Fatalf("Duplicate archive entry %q", entry.Name)
		}
		names[entry.Name] = true
	}
	if !names["a1b2c3.bin"] || !names["a1b2c3_1.bin"] {
		t.Fatalf("Expected entries a1b2c3.bin and a1b2c3_1.bin, got %v", names)
	}
}
