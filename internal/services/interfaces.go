package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/codebench-edu/console-service/internal/models"
	"github.com/codebench-edu/console-service/internal/repositories"
	"github.com/codebench-edu/console-service/internal/validator"
)

// ===== REQUEST DTO ALIASES =====

// Request DTOs live in the validator package so struct tags and business
// rules stay in one place; the service layer re-exports them.
type (
	CreateQuestionRequest = validator.QuestionCreateRequest
	UpdateQuestionRequest = validator.QuestionUpdateRequest
	CreateCategoryRequest = validator.CategoryCreateRequest
	UpdateCategoryRequest = validator.CategoryUpdateRequest
	CreateTestCaseRequest = validator.TestCaseCreateRequest
	UpdateTestCaseRequest = validator.TestCaseUpdateRequest
	CreateMCQRequest      = validator.MCQCreateRequest
	UpdateMCQRequest      = validator.MCQUpdateRequest
	CreateNoteRequest     = validator.NoteCreateRequest
	UpdateNoteRequest     = validator.NoteUpdateRequest
	ImportJSONLRequest    = validator.ImportJSONLRequest
)

// ===== RESPONSE TYPES =====

type QuestionResponse struct {
	*models.Question
	Tags         []string `json:"tags"`
	IsImported   bool     `json:"is_imported"`
	CategoryName string   `json:"category_name,omitempty"`
	CreatorName  string   `json:"creator_name,omitempty"`
}

type QuestionListResponse struct {
	Questions []*QuestionResponse `json:"questions"`
	Total     int64               `json:"total"`
	Page      int                 `json:"page"`
	Size      int                 `json:"size"`
}

type CategoryResponse struct {
	*models.QuestionCategory
	QuestionCount int `json:"question_count"`
	MCQCount      int `json:"mcq_count"`
}

type TestCaseListResponse struct {
	TestCases []*models.QuestionTestCase `json:"test_cases"`
	Total     int64                      `json:"total"`
	Page      int                        `json:"page"`
	Size      int                        `json:"size"`
}

type MCQResponse struct {
	*models.MCQ
	Options      []string `json:"options"`
	CategoryName string   `json:"category_name,omitempty"`
	CreatorName  string   `json:"creator_name,omitempty"`
}

type MCQListResponse struct {
	MCQs  []*MCQResponse `json:"mcqs"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Size  int            `json:"size"`
}

type NoteFileResponse struct {
	ID               uuid.UUID `json:"id"`
	Filename         string    `json:"filename"`
	OriginalFilename string    `json:"original_filename"`
	ContentType      string    `json:"content_type"`
	FileSize         int       `json:"file_size"`
	CreatedAt        time.Time `json:"created_at"`
}

type NoteResponse struct {
	*models.UploadedNote
	Tags       []string            `json:"tags"`
	CourseName string              `json:"course_name,omitempty"`
	CourseCode string              `json:"course_code,omitempty"`
	Files      []*NoteFileResponse `json:"files"`
}

type NoteListResponse struct {
	Notes []*NoteResponse `json:"notes"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Size  int             `json:"size"`
}

// FileDownload is a blob plus the metadata a handler needs to serve it.
type FileDownload struct {
	Filename    string
	ContentType string
	Data        []byte
}

type ImportResult struct {
	Status   string   `json:"status"`
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors"`
}

// ===== SERVICE INTERFACES =====

type QuestionService interface {
	// CRUD operations
	Create(ctx context.Context, req *CreateQuestionRequest, creatorID string) (*QuestionResponse, error)
	GetByID(ctx context.Context, id uuid.UUID, userID string) (*QuestionResponse, error)
	GetByIDWithDetails(ctx context.Context, id uuid.UUID, userID string) (*QuestionResponse, error)
	Update(ctx context.Context, id uuid.UUID, req *UpdateQuestionRequest, userID string) (*QuestionResponse, error)
	Delete(ctx context.Context, id uuid.UUID, userID string) error

	// List and search operations
	List(ctx context.Context, filters repositories.QuestionFilters, userID string) (*QuestionListResponse, error)
	Search(ctx context.Context, query string, filters repositories.QuestionFilters, userID string) (*QuestionListResponse, error)
	GetByCreator(ctx context.Context, creatorID string, filters repositories.QuestionFilters, userID string) (*QuestionListResponse, error)

	// PDF operations
	UploadStatementPDF(ctx context.Context, id uuid.UUID, data []byte, filename string, userID string) error
	UploadSolutionPDF(ctx context.Context, id uuid.UUID, data []byte, filename string, userID string) error
	GetStatementPDF(ctx context.Context, id uuid.UUID, userID string) (*FileDownload, error)
	GetSolutionPDF(ctx context.Context, id uuid.UUID, userID string) (*FileDownload, error)

	// Statistics
	GetUsageStats(ctx context.Context, creatorID string, userID string) (*repositories.QuestionUsageStats, error)

	// Permission checks
	CanAccess(ctx context.Context, id uuid.UUID, userID string) (bool, error)
	CanEdit(ctx context.Context, id uuid.UUID, userID string) (bool, error)
	CanDelete(ctx context.Context, id uuid.UUID, userID string) (bool, error)
}

type CategoryService interface {
	Create(ctx context.Context, req *CreateCategoryRequest, userID string) (*CategoryResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*CategoryResponse, error)
	Update(ctx context.Context, id uuid.UUID, req *UpdateCategoryRequest, userID string) (*CategoryResponse, error)
	Delete(ctx context.Context, id uuid.UUID, userID string) error
	List(ctx context.Context, activeOnly bool) ([]*CategoryResponse, error)
}

type TestCaseService interface {
	Create(ctx context.Context, req *CreateTestCaseRequest, userID string) (*models.QuestionTestCase, error)
	GetByID(ctx context.Context, id uuid.UUID, userID string) (*models.QuestionTestCase, error)
	Update(ctx context.Context, id uuid.UUID, req *UpdateTestCaseRequest, userID string) (*models.QuestionTestCase, error)
	Delete(ctx context.Context, id uuid.UUID, userID string) error
	List(ctx context.Context, filters repositories.TestCaseFilters, userID string) (*TestCaseListResponse, error)
	GetByQuestion(ctx context.Context, questionID uuid.UUID, userID string) ([]*models.QuestionTestCase, error)
	DeleteByQuestion(ctx context.Context, questionID uuid.UUID, userID string) error
}

type MCQService interface {
	Create(ctx context.Context, req *CreateMCQRequest, creatorID string) (*MCQResponse, error)
	GetByID(ctx context.Context, id uuid.UUID, userID string) (*MCQResponse, error)
	Update(ctx context.Context, id uuid.UUID, req *UpdateMCQRequest, userID string) (*MCQResponse, error)
	Delete(ctx context.Context, id uuid.UUID, userID string) error
	List(ctx context.Context, filters repositories.MCQFilters, userID string) (*MCQListResponse, error)
	Search(ctx context.Context, query string, filters repositories.MCQFilters, userID string) (*MCQListResponse, error)
}

// AuthoringService drives the multi-step question authoring wizard. The
// session state lives in redis; nothing touches postgres until Submit.
type AuthoringService interface {
	// Session lifecycle
	StartSession(ctx context.Context, userID string) (*WizardSession, error)
	StartSessionForQuestion(ctx context.Context, questionID uuid.UUID, userID string) (*WizardSession, error)
	GetSession(ctx context.Context, sessionID string, userID string) (*WizardSession, error)
	Cancel(ctx context.Context, sessionID string, userID string) error

	// Step content
	UpdateBasicInfo(ctx context.Context, sessionID string, userID string, info WizardBasicInfo) (*WizardSession, error)
	SetStatementHTML(ctx context.Context, sessionID string, userID string, html string) (*WizardSession, error)
	SetSolutionHTML(ctx context.Context, sessionID string, userID string, html string) (*WizardSession, error)
	AttachStatementPDF(ctx context.Context, sessionID string, userID string, data []byte, filename string) (*WizardSession, error)
	AttachSolutionPDF(ctx context.Context, sessionID string, userID string, data []byte, filename string) (*WizardSession, error)

	// Navigation
	Advance(ctx context.Context, sessionID string, userID string) (*WizardSession, error)
	Back(ctx context.Context, sessionID string, userID string) (*WizardSession, error)

	// Submit persists the question and uploads any attached files.
	Submit(ctx context.Context, sessionID string, userID string) (*QuestionResponse, error)
}

type TemplateService interface {
	GetTemplate(role EditorRole, kind TemplateKind) (string, error)
	ListTemplates() []TemplateInfo
}

type AnalyticsService interface {
	GetActivityOverview(ctx context.Context, activityID uuid.UUID) (*ActivityOverview, error)
	GetClassPerformance(ctx context.Context, activityID uuid.UUID, classID uuid.UUID) (*ClassPerformance, error)
	GetStudentSubmission(ctx context.Context, activityID uuid.UUID, studentID string) (*StudentSubmissionDetail, error)
	BuildActivityReport(ctx context.Context, activityID uuid.UUID) (*ActivityReport, error)
	ExportActivityReport(ctx context.Context, activityID uuid.UUID) (*FileDownload, error)
	GetDashboardStats(ctx context.Context) (*DashboardStats, error)
}

type NotesService interface {
	// Student-facing operations, always scoped to enrolled courses.
	ListNotes(ctx context.Context, studentID string, params NoteListParams) (*NoteListResponse, error)
	GetNoteFile(ctx context.Context, fileID uuid.UUID, studentID string) (*FileDownload, error)
	BulkDownload(ctx context.Context, fileIDs []uuid.UUID, studentID string) (*FileDownload, error)

	// Teacher-facing operations.
	CreateNote(ctx context.Context, req *CreateNoteRequest, teacherID string, files []NoteFileUpload) (*NoteResponse, error)
	UpdateNote(ctx context.Context, id uuid.UUID, req *UpdateNoteRequest, teacherID string) (*NoteResponse, error)
	DeleteNote(ctx context.Context, id uuid.UUID, teacherID string) error
	GetNote(ctx context.Context, id uuid.UUID, userID string) (*NoteResponse, error)
	AddNoteFile(ctx context.Context, noteID uuid.UUID, teacherID string, file NoteFileUpload) (*NoteFileResponse, error)
	DeleteNoteFile(ctx context.Context, fileID uuid.UUID, teacherID string) error
	DownloadNoteArchive(ctx context.Context, noteID uuid.UUID, userID string) (*FileDownload, error)
	GetTeacherNotes(ctx context.Context, teacherID string, params NoteListParams) (*NoteListResponse, error)
	GetNoteStats(ctx context.Context, teacherID string) (*repositories.NoteStats, error)
}

type ImportService interface {
	ImportJSONL(ctx context.Context, req *ImportJSONLRequest, userID string) (*ImportResult, error)
}

type CourseService interface {
	List(ctx context.Context, filters repositories.CourseFilters) ([]*models.Course, int64, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Course, error)
	GetEnrolledCourses(ctx context.Context, studentID string) ([]*models.Course, error)
	Enroll(ctx context.Context, courseID uuid.UUID, studentID string, userID string) error
	Unenroll(ctx context.Context, courseID uuid.UUID, studentID string, userID string) error
}

type UserService interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	List(ctx context.Context, filters repositories.UserFilters) ([]*models.User, int64, error)
	Search(ctx context.Context, query string, filters repositories.UserFilters) ([]*models.User, int64, error)
}

// NotificationEventService publishes domain events best-effort; a failed
// publish is logged and never fails the originating request.
type NotificationEventService interface {
	NotifyQuestionCreated(ctx context.Context, question *models.Question) error
	NotifyQuestionUpdated(ctx context.Context, question *models.Question) error
	NotifyQuestionDeleted(ctx context.Context, questionID uuid.UUID, deletedBy string) error
	NotifyQuestionImported(ctx context.Context, taskID string, questionID uuid.UUID) error
	NotifyNoteUploaded(ctx context.Context, note *models.UploadedNote) error
	NotifyNotesBulkDownloaded(ctx context.Context, studentID string, fileCount int) error
}

// ===== SERVICE MANAGER =====

// ServiceManager owns construction and lifecycle of all services.
type ServiceManager interface {
	Question() QuestionService
	Category() CategoryService
	TestCase() TestCaseService
	MCQ() MCQService
	Authoring() AuthoringService
	Template() TemplateService
	Analytics() AnalyticsService
	Notes() NotesService
	Import() ImportService
	Course() CourseService
	User() UserService
	Events() NotificationEventService

	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
