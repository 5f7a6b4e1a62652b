package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/codebench-edu/console-service/internal/cache"
	"github.com/codebench-edu/console-service/internal/models"
	"github.com/codebench-edu/console-service/internal/repositories"
	"github.com/codebench-edu/console-service/internal/validator"
)

// authoringService keeps wizard sessions in redis and only writes to
// postgres on Submit. A submit is two-phase: the question record first,
// then one dedicated upload per attached PDF.
type authoringService struct {
	repo      repositories.Repository
	db        *gorm.DB
	sessions  *cache.CacheHelper
	logger    *slog.Logger
	validator *validator.Validator
	events    NotificationEventService
}

func NewAuthoringService(repo repositories.Repository, db *gorm.DB, cacheManager *cache.CacheManager, logger *slog.Logger, validator *validator.Validator, events NotificationEventService) AuthoringService {
	return &authoringService{
		repo:      repo,
		db:        db,
		sessions:  cacheManager.Session,
		logger:    logger,
		validator: validator,
		events:    events,
	}
}

// ===== SESSION LIFECYCLE =====

func (s *authoringService) StartSession(ctx context.Context, userID string) (*WizardSession, error) {
	canAuthor, err := s.canAuthor(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !canAuthor {
		return nil, NewPermissionError(userID, "", "authoring_session", "create", "insufficient role permissions")
	}

	now := time.Now().UTC()
	session := &WizardSession{
		ID:     uuid.New().String(),
		UserID: userID,
		Step:   StepBasicInfo,
		BasicInfo: WizardBasicInfo{
			Difficulty:    models.DifficultyMedium,
			MaxScore:      100,
			StatementType: models.ContentHTML,
			SolutionType:  models.ContentHTML,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.saveSession(ctx, session); err != nil {
		return nil, err
	}

	s.logger.Info("Authoring session started", "session_id", session.ID, "user_id", userID)
	return session, nil
}

func (s *authoringService) StartSessionForQuestion(ctx context.Context, questionID uuid.UUID, userID string) (*WizardSession, error) {
	canAuthor, err := s.canAuthor(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !canAuthor {
		return nil, NewPermissionError(userID, questionID.String(), "authoring_session", "create", "insufficient role permissions")
	}

	question, err := s.repo.Question().GetByID(ctx, nil, questionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}

	now := time.Now().UTC()
	qid := question.ID
	session := &WizardSession{
		ID:         uuid.New().String(),
		UserID:     userID,
		QuestionID: &qid,
		Step:       StepBasicInfo,
		BasicInfo: WizardBasicInfo{
			Title:            question.Title,
			CategoryID:       question.CategoryID,
			Description:      question.Description,
			Difficulty:       question.Difficulty,
			MaxScore:         question.MaxScore,
			TimeLimitSeconds: question.TimeLimitSeconds,
			StatementType:    question.StatementType,
			HasSolution:      question.HasSolution,
			SolutionType:     question.SolutionType,
			Tags:             question.Tags(),
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if question.StatementType == models.ContentHTML {
		session.StatementHTML = question.ProblemStatement
	}
	if question.HasSolution && question.SolutionType == models.ContentHTML && question.SolutionText != nil {
		session.SolutionHTML = *question.SolutionText
	}

	// Persisted PDFs surface as metadata only; the blob stays in
	// postgres and submit skips re-uploading untouched files.
	if question.StatementType == models.ContentPDF && question.PDFFilename != nil {
		session.StatementFile = &WizardFile{
			Filename:   *question.PDFFilename,
			Size:       valueOrZero(question.PDFFilesize),
			IsExisting: true,
		}
	}
	if question.HasSolution && question.SolutionType == models.ContentPDF && question.SolutionPDFFilename != nil {
		session.SolutionFile = &WizardFile{
			Filename:   *question.SolutionPDFFilename,
			Size:       valueOrZero(question.SolutionPDFFilesize),
			IsExisting: true,
		}
	}

	if err := s.saveSession(ctx, session); err != nil {
		return nil, err
	}

	s.logger.Info("Authoring session started for existing question",
		"session_id", session.ID, "question_id", questionID, "user_id", userID)
	return session, nil
}

func (s *authoringService) GetSession(ctx context.Context, sessionID string, userID string) (*WizardSession, error) {
	return s.loadSession(ctx, sessionID, userID)
}

func (s *authoringService) Cancel(ctx context.Context, sessionID string, userID string) error {
	if _, err := s.loadSession(ctx, sessionID, userID); err != nil {
		return err
	}
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	s.logger.Info("Authoring session cancelled", "session_id", sessionID, "user_id", userID)
	return nil
}

// ===== STEP CONTENT =====

func (s *authoringService) UpdateBasicInfo(ctx context.Context, sessionID string, userID string, info WizardBasicInfo) (*WizardSession, error) {
	session, err := s.loadEditableSession(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}

	// Turning the solution off resets the type; staged solution content
	// is kept in the session so toggling back does not lose work, but
	// submit will not persist any of it.
	if !info.HasSolution {
		info.SolutionType = models.ContentHTML
	}
	if info.StatementType == "" {
		info.StatementType = models.ContentHTML
	}
	if info.SolutionType == "" {
		info.SolutionType = models.ContentHTML
	}
	if info.Difficulty == "" {
		info.Difficulty = models.DifficultyMedium
	}
	if info.MaxScore == 0 {
		info.MaxScore = 100
	}

	session.BasicInfo = info
	if err := s.saveSession(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *authoringService) SetStatementHTML(ctx context.Context, sessionID string, userID string, html string) (*WizardSession, error) {
	session, err := s.loadEditableSession(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}
	session.StatementHTML = html
	if err := s.saveSession(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *authoringService) SetSolutionHTML(ctx context.Context, sessionID string, userID string, html string) (*WizardSession, error) {
	session, err := s.loadEditableSession(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}
	session.SolutionHTML = html
	if err := s.saveSession(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *authoringService) AttachStatementPDF(ctx context.Context, sessionID string, userID string, data []byte, filename string) (*WizardSession, error) {
	if err := validatePDFUpload(data, filename); err != nil {
		return nil, err
	}

	session, err := s.loadEditableSession(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}

	session.StatementFile = &WizardFile{
		Filename: filename,
		Size:     len(data),
		Data:     data,
	}
	if err := s.saveSession(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *authoringService) AttachSolutionPDF(ctx context.Context, sessionID string, userID string, data []byte, filename string) (*WizardSession, error) {
	if err := validatePDFUpload(data, filename); err != nil {
		return nil, err
	}

	session, err := s.loadEditableSession(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}

	session.SolutionFile = &WizardFile{
		Filename: filename,
		Size:     len(data),
		Data:     data,
	}
	if err := s.saveSession(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// ===== NAVIGATION =====

// Advance moves the session to the next editable step. When no editable
// step remains the session is returned unchanged and the caller should
// Submit.
func (s *authoringService) Advance(ctx context.Context, sessionID string, userID string) (*WizardSession, error) {
	session, err := s.loadEditableSession(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}

	next := session.NextStep()
	if next == "" {
		return nil, ErrStepNotReady
	}
	if next == StepSubmitted {
		return session, nil
	}

	session.Step = next
	if err := s.saveSession(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// Back moves to the previous step without discarding anything already
// entered. At the first step it is a no-op.
func (s *authoringService) Back(ctx context.Context, sessionID string, userID string) (*WizardSession, error) {
	session, err := s.loadEditableSession(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}

	prev := session.PrevStep()
	if prev == "" {
		return session, nil
	}

	session.Step = prev
	if err := s.saveSession(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// ===== SUBMIT =====

func (s *authoringService) Submit(ctx context.Context, sessionID string, userID string) (*QuestionResponse, error) {
	session, err := s.loadEditableSession(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}

	if !session.CanSubmit() {
		return nil, ErrStepNotReady
	}

	// Phase one: persist the question record without the blobs.
	question, created, err := s.persistQuestion(ctx, session, userID)
	if err != nil {
		return nil, err
	}

	// Remember the record so a retry after a failed upload updates it
	// instead of creating a duplicate.
	if session.QuestionID == nil {
		qid := question.ID
		session.QuestionID = &qid
		if err := s.saveSession(ctx, session); err != nil {
			s.logger.Warn("Failed to record question id on session", "session_id", sessionID, "error", err)
		}
	}

	// Phase two: dedicated uploads, statement first. A failure here
	// leaves the record in place and reports which upload broke.
	if f := session.StatementFile; f != nil && !f.IsExisting {
		if err := s.repo.Question().UpdateStatementPDF(ctx, nil, question.ID, f.Data, f.Filename); err != nil {
			return nil, NewUploadError(UploadKindStatement, err)
		}
	}
	if session.BasicInfo.HasSolution && session.BasicInfo.SolutionType == models.ContentPDF {
		if f := session.SolutionFile; f != nil && !f.IsExisting {
			if err := s.repo.Question().UpdateSolutionPDF(ctx, nil, question.ID, f.Data, f.Filename); err != nil {
				return nil, NewUploadError(UploadKindSolution, err)
			}
		}
	}

	session.Step = StepSubmitted
	if err := s.saveSession(ctx, session); err != nil {
		s.logger.Warn("Failed to mark session submitted", "session_id", sessionID, "error", err)
	}

	s.logger.Info("Authoring session submitted",
		"session_id", sessionID, "question_id", question.ID, "created", created, "user_id", userID)

	if s.events != nil && created {
		_ = s.events.NotifyQuestionCreated(ctx, question)
	}

	return newQuestionResponse(question), nil
}

func (s *authoringService) persistQuestion(ctx context.Context, session *WizardSession, userID string) (*models.Question, bool, error) {
	req := s.buildCreateRequest(session)

	if validationErrors := s.validator.GetBusinessValidator().ValidateQuestionCreate(req); len(validationErrors) > 0 {
		return nil, false, validationErrors
	}

	if session.QuestionID == nil {
		question := buildQuestionFromCreate(req, userID)
		if err := s.repo.Question().Create(ctx, nil, question); err != nil {
			return nil, false, fmt.Errorf("failed to create question: %w", err)
		}
		return question, true, nil
	}

	question, err := s.repo.Question().GetByID(ctx, nil, *session.QuestionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, false, ErrQuestionNotFound
		}
		return nil, false, fmt.Errorf("failed to get question: %w", err)
	}

	updated := buildQuestionFromCreate(req, question.CreatedBy)
	updated.ID = question.ID
	updated.CreatedAt = question.CreatedAt
	// Keep the import marker when the wizard edits an imported entry
	if taskID := question.ImportedTaskID(); taskID != "" {
		extra := decodeExtraData(updated.ExtraData)
		if extra == nil {
			extra = map[string]interface{}{}
		}
		extra["question_id"] = taskID
		updated.ExtraData = encodeExtraData(extra, nil)
	}

	if err := s.repo.Question().Update(ctx, nil, updated); err != nil {
		return nil, false, fmt.Errorf("failed to update question: %w", err)
	}
	return updated, false, nil
}

func (s *authoringService) buildCreateRequest(session *WizardSession) *CreateQuestionRequest {
	info := session.BasicInfo

	req := &CreateQuestionRequest{
		Title:            info.Title,
		CategoryID:       info.CategoryID,
		Description:      info.Description,
		StatementType:    info.StatementType,
		Difficulty:       info.Difficulty,
		MaxScore:         info.MaxScore,
		TimeLimitSeconds: info.TimeLimitSeconds,
		IsActive:         info.IsActive,
		HasSolution:      info.HasSolution,
		SolutionType:     info.SolutionType,
		Tags:             info.Tags,
	}

	if info.StatementType == models.ContentHTML {
		req.ProblemStatement = session.StatementHTML
	}
	if info.HasSolution && info.SolutionType == models.ContentHTML {
		solution := session.SolutionHTML
		req.SolutionText = &solution
	}

	return req
}

// ===== SESSION STORE =====

func (s *authoringService) loadSession(ctx context.Context, sessionID string, userID string) (*WizardSession, error) {
	var session WizardSession
	if err := s.sessions.Get(ctx, sessionID, &session); err != nil {
		if errors.Is(err, cache.ErrCacheNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	if session.UserID != userID {
		return nil, NewPermissionError(userID, sessionID, "authoring_session", "read", "session belongs to another user")
	}
	return &session, nil
}

func (s *authoringService) loadEditableSession(ctx context.Context, sessionID string, userID string) (*WizardSession, error) {
	session, err := s.loadSession(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}
	if session.Step == StepSubmitted {
		return nil, ErrSessionSubmitted
	}
	return session, nil
}

func (s *authoringService) saveSession(ctx context.Context, session *WizardSession) error {
	session.UpdatedAt = time.Now().UTC()
	if err := s.sessions.Set(ctx, session.ID, session, cache.SessionCacheConfig.TTL); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (s *authoringService) canAuthor(ctx context.Context, userID string) (bool, error) {
	user, err := s.repo.User().GetByID(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("failed to get user: %w", err)
	}
	return user.Role == models.RoleTeacher || user.Role == models.RoleAdmin, nil
}

func valueOrZero(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
