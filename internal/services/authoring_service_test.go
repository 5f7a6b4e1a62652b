package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/codebench-edu/console-service/internal/cache"
	"github.com/codebench-edu/console-service/internal/models"
	"github.com/codebench-edu/console-service/internal/repositories"
	"github.com/codebench-edu/console-service/internal/validator"
)

// fakeQuestionRepo is an in-memory QuestionRepository that records the
// order of mutating calls.
type fakeQuestionRepo struct {
	questions map[uuid.UUID]*models.Question
	calls     []string

	failStatementUpload bool
	failSolutionUpload  bool
}

func newFakeQuestionRepo() *fakeQuestionRepo {
	return &fakeQuestionRepo{questions: make(map[uuid.UUID]*models.Question)}
}

func (f *fakeQuestionRepo) Create(ctx context.Context, tx *gorm.DB, question *models.Question) error {
	if question.ID == uuid.Nil {
		question.ID = uuid.New()
	}
	f.questions[question.ID] = question
	f.calls = append(f.calls, "create")
	return nil
}

func (f *fakeQuestionRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Question, error) {
	q, ok := f.questions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return q, nil
}

func (f *fakeQuestionRepo) GetByIDWithDetails(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Question, error) {
	return f.GetByID(ctx, tx, id)
}

func (f *fakeQuestionRepo) Update(ctx context.Context, tx *gorm.DB, question *models.Question) error {
	if _, ok := f.questions[question.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	f.questions[question.ID] = question
	f.calls = append(f.calls, "update")
	return nil
}

func (f *fakeQuestionRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	delete(f.questions, id)
	f.calls = append(f.calls, "delete")
	return nil
}

func (f *fakeQuestionRepo) CreateBatch(ctx context.Context, tx *gorm.DB, questions []*models.Question) error {
	for _, q := range questions {
		if err := f.Create(ctx, tx, q); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeQuestionRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*models.Question, error) {
	return nil, nil
}

func (f *fakeQuestionRepo) List(ctx context.Context, tx *gorm.DB, filters repositories.QuestionFilters) ([]*models.Question, int64, error) {
	return nil, 0, nil
}

func (f *fakeQuestionRepo) GetByCreator(ctx context.Context, tx *gorm.DB, creatorID string, filters repositories.QuestionFilters) ([]*models.Question, int64, error) {
	return nil, 0, nil
}

func (f *fakeQuestionRepo) GetByCategory(ctx context.Context, tx *gorm.DB, categoryID uuid.UUID, filters repositories.QuestionFilters) ([]*models.Question, int64, error) {
	return nil, 0, nil
}

func (f *fakeQuestionRepo) GetByTags(ctx context.Context, tx *gorm.DB, tags []string, filters repositories.QuestionFilters) ([]*models.Question, int64, error) {
	return nil, 0, nil
}

func (f *fakeQuestionRepo) Search(ctx context.Context, tx *gorm.DB, query string, filters repositories.QuestionFilters) ([]*models.Question, int64, error) {
	return nil, 0, nil
}

func (f *fakeQuestionRepo) GetByImportedTaskID(ctx context.Context, tx *gorm.DB, taskID string) (*models.Question, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeQuestionRepo) GetStatementPDF(ctx context.Context, tx *gorm.DB, id uuid.UUID) ([]byte, string, error) {
	return nil, "", gorm.ErrRecordNotFound
}

func (f *fakeQuestionRepo) GetSolutionPDF(ctx context.Context, tx *gorm.DB, id uuid.UUID) ([]byte, string, error) {
	return nil, "", gorm.ErrRecordNotFound
}

func (f *fakeQuestionRepo) UpdateStatementPDF(ctx context.Context, tx *gorm.DB, id uuid.UUID, data []byte, filename string) error {
	if f.failStatementUpload {
		return fmt.Errorf("blob store unavailable")
	}
	f.calls = append(f.calls, "upload_statement")
	return nil
}

func (f *fakeQuestionRepo) UpdateSolutionPDF(ctx context.Context, tx *gorm.DB, id uuid.UUID, data []byte, filename string) error {
	if f.failSolutionUpload {
		return fmt.Errorf("blob store unavailable")
	}
	f.calls = append(f.calls, "upload_solution")
	return nil
}

func (f *fakeQuestionRepo) ExistsByTitle(ctx context.Context, tx *gorm.DB, title string, creatorID string, excludeID *uuid.UUID) (bool, error) {
	return false, nil
}

func (f *fakeQuestionRepo) CountByCategory(ctx context.Context, tx *gorm.DB, categoryID uuid.UUID) (int64, error) {
	return 0, nil
}

func (f *fakeQuestionRepo) GetUsageStats(ctx context.Context, tx *gorm.DB, creatorID string) (*repositories.QuestionUsageStats, error) {
	return nil, nil
}

// fakeUserRepo returns a fixed role for every lookup.
type fakeUserRepo struct {
	role models.UserRole
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	return &models.User{ID: id, FullName: "Test User", Role: f.role}, nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) GetByIDs(ctx context.Context, ids []string) ([]*models.User, error) {
	return nil, nil
}

func (f *fakeUserRepo) List(ctx context.Context, filters repositories.UserFilters) ([]*models.User, int64, error) {
	return nil, 0, nil
}

func (f *fakeUserRepo) Search(ctx context.Context, query string, filters repositories.UserFilters) ([]*models.User, int64, error) {
	return nil, 0, nil
}

func (f *fakeUserRepo) ExistsByID(ctx context.Context, id string) (bool, error)       { return true, nil }
func (f *fakeUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) { return false, nil }
func (f *fakeUserRepo) HasRole(ctx context.Context, id string, role models.UserRole) (bool, error) {
	return f.role == role, nil
}

// fakeAuthoringRepo wires the fakes into the aggregate Repository.
type fakeAuthoringRepo struct {
	MockNotificationRepository
	question *fakeQuestionRepo
	user     *fakeUserRepo
}

func (f *fakeAuthoringRepo) Question() repositories.QuestionRepository { return f.question }
func (f *fakeAuthoringRepo) User() repositories.UserRepository         { return f.user }

func newAuthoringTestService(t *testing.T) (*authoringService, *fakeQuestionRepo) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	questionRepo := newFakeQuestionRepo()
	repo := &fakeAuthoringRepo{
		question: questionRepo,
		user:     &fakeUserRepo{role: models.RoleTeacher},
	}

	service := &authoringService{
		repo:      repo,
		sessions:  cache.NewCacheManager(client).Session,
		logger:    slog.New(slog.NewTextHandler(os.Stdout, nil)),
		validator: validator.New(),
	}
	return service, questionRepo
}

func TestAuthoringService_SessionLifecycle(t *testing.T) {
	service, _ := newAuthoringTestService(t)
	ctx := context.Background()

	session, err := service.StartSession(ctx, "teacher-1")
	if err != nil {
		t.Fatalf("StartSession failed: %v", err)
	}
	if session.Step != StepBasicInfo {
		t.Errorf("Expected step %q, got %q", StepBasicInfo, session.Step)
	}

	// Sessions are private to their owner.
	if _, err := service.GetSession(ctx, session.ID, "teacher-2"); !IsPermissionError(err) {
		t.Errorf("Expected permission error for foreign session, got %v", err)
	}

	loaded, err := service.GetSession(ctx, session.ID, "teacher-1")
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if loaded.ID != session.ID {
		t.Errorf("Expected session %s, got %s", session.ID, loaded.ID)
	}

	if err := service.Cancel(ctx, session.ID, "teacher-1"); err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}
	if _, err := service.GetSession(ctx, session.ID, "teacher-1"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound after cancel, got %v", err)
	}
}

func TestAuthoringService_StudentCannotAuthor(t *testing.T) {
	service, _ := newAuthoringTestService(t)
	service.repo.(*fakeAuthoringRepo).user.role = models.RoleStudent

	if _, err := service.StartSession(context.Background(), "student-1"); !IsPermissionError(err) {
		t.Errorf("Expected permission error for student, got %v", err)
	}
}

func TestAuthoringService_DisablingSolutionResetsType(t *testing.T) {
	service, _ := newAuthoringTestService(t)
	ctx := context.Background()

	session, err := service.StartSession(ctx, "teacher-1")
	if err != nil {
		t.Fatalf("StartSession failed: %v", err)
	}

	updated, err := service.UpdateBasicInfo(ctx, session.ID, "teacher-1", WizardBasicInfo{
		Title:        "Two Sum",
		CategoryID:   uuid.New(),
		HasSolution:  false,
		SolutionType: models.ContentPDF,
	})
	if err != nil {
		t.Fatalf("UpdateBasicInfo failed: %v", err)
	}

	if updated.BasicInfo.SolutionType != models.ContentHTML {
		t.Errorf("Expected solution type reset to html, got %q", updated.BasicInfo.SolutionType)
	}
}

func TestAuthoringService_AdvanceBlocksIncompleteStep(t *testing.T) {
	service, _ := newAuthoringTestService(t)
	ctx := context.Background()

	session, err := service.StartSession(ctx, "teacher-1")
	if err != nil {
		t.Fatalf("StartSession failed: %v", err)
	}

	if _, err := service.Advance(ctx, session.ID, "teacher-1"); !errors.Is(err, ErrStepNotReady) {
		t.Errorf("Expected ErrStepNotReady without basic info, got %v", err)
	}
}

func TestAuthoringService_SubmitCreatesThenUploads(t *testing.T) {
	service, questionRepo := newAuthoringTestService(t)
	ctx := context.Background()

	session, err := service.StartSession(ctx, "teacher-1")
	if err != nil {
		t.Fatalf("StartSession failed: %v", err)
	}

	if _, err := service.UpdateBasicInfo(ctx, session.ID, "teacher-1", WizardBasicInfo{
		Title:         "Two Sum",
		CategoryID:    uuid.New(),
		StatementType: models.ContentPDF,
	}); err != nil {
		t.Fatalf("UpdateBasicInfo failed: %v", err)
	}

	if _, err := service.AttachStatementPDF(ctx, session.ID, "teacher-1", []byte("%PDF-data"), "statement.pdf"); err != nil {
		t.Fatalf("AttachStatementPDF failed: %v", err)
	}

	response, err := service.Submit(ctx, session.ID, "teacher-1")
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if response.Title != "Two Sum" {
		t.Errorf("Expected title 'Two Sum', got %q", response.Title)
	}

	// The record must exist before its blob upload.
	want := []string{"create", "upload_statement"}
	if len(questionRepo.calls) != len(want) {
		t.Fatalf("Expected calls %v, got %v", want, questionRepo.calls)
	}
	for i, call := range want {
		if questionRepo.calls[i] != call {
			t.Fatalf("Expected calls %v, got %v", want, questionRepo.calls)
		}
	}

	// A submitted session cannot be edited or submitted again.
	if _, err := service.Submit(ctx, session.ID, "teacher-1"); !errors.Is(err, ErrSessionSubmitted) {
		t.Errorf("Expected ErrSessionSubmitted on resubmit, got %v", err)
	}
}

func TestAuthoringService_SubmitRetryAfterUploadFailure(t *testing.T) {
	service, questionRepo := newAuthoringTestService(t)
	ctx := context.Background()

	session, err := service.StartSession(ctx, "teacher-1")
	if err != nil {
		t.Fatalf("StartSession failed: %v", err)
	}

	if _, err := service.UpdateBasicInfo(ctx, session.ID, "teacher-1", WizardBasicInfo{
		Title:         "Two Sum",
		CategoryID:    uuid.New(),
		StatementType: models.ContentPDF,
	}); err != nil {
		t.Fatalf("UpdateBasicInfo failed: %v", err)
	}
	if _, err := service.AttachStatementPDF(ctx, session.ID, "teacher-1", []byte("%PDF-data"), "statement.pdf"); err != nil {
		t.Fatalf("AttachStatementPDF failed: %v", err)
	}

	// First submit: the record persists but the upload breaks.
	questionRepo.failStatementUpload = true
	_, err = service.Submit(ctx, session.ID, "teacher-1")
	if !IsUploadError(err) {
		t.Fatalf("Expected upload error, got %v", err)
	}
	if len(questionRepo.questions) != 1 {
		t.Fatalf("Expected question record to survive the failed upload, got %d records", len(questionRepo.questions))
	}

	// Retry: the existing record is updated, not duplicated.
	questionRepo.failStatementUpload = false
	if _, err := service.Submit(ctx, session.ID, "teacher-1"); err != nil {
		t.Fatalf("Retry submit failed: %v", err)
	}
	if len(questionRepo.questions) != 1 {
		t.Errorf("Expected 1 question after retry, got %d", len(questionRepo.questions))
	}

	creates := 0
	for _, call := range questionRepo.calls {
		if call == "create" {
			creates++
		}
	}
	if creates != 1 {
		t.Errorf("Expected exactly 1 create across retries, got %d (calls: %v)", creates, questionRepo.calls)
	}
}

func TestAuthoringService_ReopenExistingQuestion(t *testing.T) {
	service, questionRepo := newAuthoringTestService(t)
	ctx := context.Background()

	pdfName := "statement.pdf"
	pdfSize := 4096
	solName := "solution.pdf"
	solSize := 2048
	existing := &models.Question{
		ID:                  uuid.New(),
		CategoryID:          uuid.New(),
		CreatedBy:           "teacher-1",
		Title:               "Two Sum",
		Difficulty:          models.DifficultyMedium,
		MaxScore:            100,
		StatementType:       models.ContentPDF,
		PDFFilename:         &pdfName,
		PDFFilesize:         &pdfSize,
		HasSolution:         true,
		SolutionType:        models.ContentPDF,
		SolutionPDFFilename: &solName,
		SolutionPDFFilesize: &solSize,
	}
	questionRepo.questions[existing.ID] = existing

	session, err := service.StartSessionForQuestion(ctx, existing.ID, "teacher-1")
	if err != nil {
		t.Fatalf("StartSessionForQuestion failed: %v", err)
	}

	// Persisted PDFs surface as metadata only, no blob loaded.
	if session.StatementFile == nil || !session.StatementFile.IsExisting {
		t.Fatalf("Expected existing statement file marker, got %+v", session.StatementFile)
	}
	if session.StatementFile.Filename != pdfName || session.StatementFile.Size != pdfSize {
		t.Errorf("Expected statement metadata %s/%d, got %s/%d",
			pdfName, pdfSize, session.StatementFile.Filename, session.StatementFile.Size)
	}
	if session.SolutionFile == nil || !session.SolutionFile.IsExisting {
		t.Fatalf("Expected existing solution file marker, got %+v", session.SolutionFile)
	}

	// Reopening alone must not write anything.
	if len(questionRepo.calls) != 0 {
		t.Fatalf("Expected no writes on reopen, got %v", questionRepo.calls)
	}

	// Submitting untouched files updates the record and skips both uploads.
	response, err := service.Submit(ctx, session.ID, "teacher-1")
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if response.Question.ID != existing.ID {
		t.Errorf("Expected update of question %s, got %s", existing.ID, response.Question.ID)
	}
	if len(questionRepo.calls) != 1 || questionRepo.calls[0] != "update" {
		t.Errorf("Expected exactly one update and no uploads, got %v", questionRepo.calls)
	}
}

func TestAuthoringService_AttachRejectsBadFiles(t *testing.T) {
	service, _ := newAuthoringTestService(t)
	ctx := context.Background()

	session, err := service.StartSession(ctx, "teacher-1")
	if err != nil {
		t.Fatalf("StartSession failed: %v", err)
	}

	if _, err := service.AttachStatementPDF(ctx, session.ID, "teacher-1", nil, "statement.pdf"); !errors.Is(err, ErrEmptyFile) {
		t.Errorf("Expected ErrEmptyFile, got %v", err)
	}
	if _, err := service.AttachStatementPDF(ctx, session.ID, "teacher-1", []byte("data"), "statement.docx"); !errors.Is(err, ErrInvalidFileType) {
		t.Errorf("Expected ErrInvalidFileType, got %v", err)
	}
}
