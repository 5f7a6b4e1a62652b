package services

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/codebench-edu/console-service/internal/models"
	"github.com/codebench-edu/console-service/internal/repositories"
	"github.com/codebench-edu/console-service/internal/validator"
)

// jsonlRecord is one line of a HumanEval-format export.
type jsonlRecord struct {
	TaskID            string `json:"task_id"`
	Prompt            string `json:"prompt"`
	EntryPoint        string `json:"entry_point"`
	CanonicalSolution string `json:"canonical_solution"`
	Test              string `json:"test"`
}

type importService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	events    NotificationEventService
}

func NewImportService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, events NotificationEventService) ImportService {
	return &importService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
		events:    events,
	}
}

// ImportJSONL reads HumanEval-format JSONL files from disk and turns
// each record into a coding question. Existing imported questions are
// matched by task id; they are skipped unless overwrite is set.
func (s *importService) ImportJSONL(ctx context.Context, req *ImportJSONLRequest, userID string) (*ImportResult, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.repo.User().GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user.Role != models.RoleAdmin {
		return nil, NewPermissionError(userID, "", "import", "create", "admin role required")
	}

	category, err := s.ensureImportCategory(ctx)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{Status: "ok", Errors: []string{}}

	for _, path := range req.FilePaths {
		if err := s.importFile(ctx, path, category, userID, req.Overwrite, result); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", path, err))
		}
	}

	if len(result.Errors) > 0 && result.Imported == 0 {
		result.Status = "failed"
	}

	s.logger.Info("JSONL import finished",
		"user_id", userID,
		"imported", result.Imported,
		"skipped", result.Skipped,
		"errors", len(result.Errors))

	return result, nil
}

func (s *importService) importFile(ctx context.Context, path string, category *models.QuestionCategory, userID string, overwrite bool, result *ImportResult) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var record jsonlRecord
		if err := json.Unmarshal([]byte(line), &record); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s line %d: invalid json: %v", path, lineNo, err))
			continue
		}
		if record.TaskID == "" || record.Prompt == "" {
			result.Errors = append(result.Errors, fmt.Sprintf("%s line %d: missing task_id or prompt", path, lineNo))
			continue
		}

		imported, err := s.importRecord(ctx, &record, category, userID, overwrite)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s line %d (%s): %v", path, lineNo, record.TaskID, err))
			continue
		}
		if imported {
			result.Imported++
		} else {
			result.Skipped++
		}
	}

	return scanner.Err()
}

func (s *importService) importRecord(ctx context.Context, record *jsonlRecord, category *models.QuestionCategory, userID string, overwrite bool) (bool, error) {
	existing, err := s.repo.Question().GetByImportedTaskID(ctx, nil, record.TaskID)
	if err != nil && !repositories.IsNotFoundError(err) {
		return false, fmt.Errorf("failed to check for existing question: %w", err)
	}
	if existing != nil && !overwrite {
		return false, nil
	}

	question := s.buildImportedQuestion(record, category, userID)

	if existing != nil {
		question.ID = existing.ID
		question.CreatedBy = existing.CreatedBy
		question.CreatedAt = existing.CreatedAt
		if err := s.repo.Question().Update(ctx, nil, question); err != nil {
			return false, fmt.Errorf("failed to update question: %w", err)
		}
		// Replace any previously derived sample test cases
		if err := s.repo.QuestionTestCase().DeleteByQuestion(ctx, nil, question.ID); err != nil {
			return false, fmt.Errorf("failed to clear test cases: %w", err)
		}
	} else {
		if err := s.repo.Question().Create(ctx, nil, question); err != nil {
			return false, fmt.Errorf("failed to create question: %w", err)
		}
	}

	if testCases := deriveSampleTestCases(record, question.ID); len(testCases) > 0 {
		if err := s.repo.QuestionTestCase().CreateBatch(ctx, nil, testCases); err != nil {
			return false, fmt.Errorf("failed to create test cases: %w", err)
		}
	}

	if s.events != nil {
		_ = s.events.NotifyQuestionImported(ctx, record.TaskID, question.ID)
	}

	return true, nil
}

func (s *importService) buildImportedQuestion(record *jsonlRecord, category *models.QuestionCategory, userID string) *models.Question {
	solution := strings.TrimRight(record.CanonicalSolution, "\n")
	hasSolution := solution != ""

	question := &models.Question{
		CategoryID:       category.ID,
		CreatedBy:        userID,
		Title:            record.TaskID,
		ProblemStatement: renderPromptHTML(record.Prompt),
		StatementType:    models.ContentHTML,
		Difficulty:       models.DifficultyMedium,
		MaxScore:         100,
		IsActive:         true,
		HasSolution:      hasSolution,
		SolutionType:     models.ContentHTML,
	}
	if hasSolution {
		solutionHTML := renderSolutionHTML(record, solution)
		question.SolutionText = &solutionHTML
	}

	question.ExtraData = encodeExtraData(map[string]interface{}{
		"question_id": record.TaskID,
		"entry_point": record.EntryPoint,
	}, nil)

	return question
}

// ensureImportCategory resolves or creates the category imported tasks
// land in.
func (s *importService) ensureImportCategory(ctx context.Context) (*models.QuestionCategory, error) {
	const name = "Imported"

	category, err := s.repo.QuestionCategory().GetByName(ctx, nil, name)
	if err == nil {
		return category, nil
	}
	if !repositories.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to get import category: %w", err)
	}

	description := "Questions imported from JSONL task archives"
	category = &models.QuestionCategory{
		Name:        name,
		Description: &description,
		IsActive:    true,
	}
	if err := s.repo.QuestionCategory().Create(ctx, nil, category); err != nil {
		return nil, fmt.Errorf("failed to create import category: %w", err)
	}
	return category, nil
}

// renderPromptHTML wraps the python prompt in a preformatted block; the
// docstring carries the human-readable statement.
func renderPromptHTML(prompt string) string {
	return fmt.Sprintf("<pre><code>%s</code></pre>", escapeHTML(strings.TrimSpace(prompt)))
}

func renderSolutionHTML(record *jsonlRecord, solution string) string {
	var b strings.Builder
	b.WriteString("<h3>Canonical solution</h3>\n<pre><code>")
	if record.EntryPoint != "" {
		b.WriteString(escapeHTML(fmt.Sprintf("def %s(...):\n", record.EntryPoint)))
	}
	b.WriteString(escapeHTML(solution))
	b.WriteString("</code></pre>")
	return b.String()
}

func escapeHTML(s string) string {
	replacer := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	return replacer.Replace(s)
}

// deriveSampleTestCases extracts doctest-style examples from the prompt:
// a ">>> call(...)" line followed by its expected output line.
func deriveSampleTestCases(record *jsonlRecord, questionID uuid.UUID) []*models.QuestionTestCase {
	lines := strings.Split(record.Prompt, "\n")

	var testCases []*models.QuestionTestCase
	for i := 0; i < len(lines)-1; i++ {
		call, ok := strings.CutPrefix(strings.TrimSpace(lines[i]), ">>> ")
		if !ok {
			continue
		}
		expected := strings.TrimSpace(lines[i+1])
		if expected == "" || strings.HasPrefix(expected, ">>>") || strings.HasPrefix(expected, `"""`) {
			continue
		}

		testCases = append(testCases, &models.QuestionTestCase{
			QuestionID:     questionID,
			InputData:      call,
			ExpectedOutput: expected,
			IsSample:       true,
			Weight:         1,
		})
	}

	return testCases
}
