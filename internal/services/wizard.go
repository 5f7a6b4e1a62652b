package services

import (
	"time"

	"github.com/google/uuid"

	"github.com/codebench-edu/console-service/internal/models"
)

// WizardStep identifies a state in the authoring wizard state machine.
type WizardStep string

const (
	StepBasicInfo WizardStep = "basic_info"
	StepStatement WizardStep = "statement"
	StepSolution  WizardStep = "solution"
	StepSubmitted WizardStep = "submitted"
)

// WizardBasicInfo carries the fields entered on the first wizard step.
type WizardBasicInfo struct {
	Title            string                 `json:"title"`
	CategoryID       uuid.UUID              `json:"category_id"`
	Description      *string                `json:"description,omitempty"`
	Difficulty       models.DifficultyLevel `json:"difficulty"`
	MaxScore         int                    `json:"max_score"`
	TimeLimitSeconds int                    `json:"time_limit_seconds"`
	StatementType    models.ContentType     `json:"statement_type"`
	HasSolution      bool                   `json:"has_solution"`
	SolutionType     models.ContentType     `json:"solution_type"`
	Tags             []string               `json:"tags,omitempty"`
	IsActive         *bool                  `json:"is_active,omitempty"`
}

// WizardFile is a PDF staged inside a session. When a session is opened
// for an existing question whose PDF is already persisted, IsExisting is
// true and Data stays empty; submit then skips that upload.
type WizardFile struct {
	Filename   string `json:"filename"`
	Size       int    `json:"size"`
	Data       []byte `json:"data,omitempty"`
	IsExisting bool   `json:"is_existing"`
}

// WizardSession is the redis-backed state of one authoring run. All
// mutation happens through AuthoringService; nothing is written to
// postgres until Submit.
type WizardSession struct {
	ID         string     `json:"id"`
	UserID     string     `json:"user_id"`
	QuestionID *uuid.UUID `json:"question_id,omitempty"`
	Step       WizardStep `json:"step"`

	BasicInfo     WizardBasicInfo `json:"basic_info"`
	StatementHTML string          `json:"statement_html,omitempty"`
	SolutionHTML  string          `json:"solution_html,omitempty"`
	StatementFile *WizardFile     `json:"statement_file,omitempty"`
	SolutionFile  *WizardFile     `json:"solution_file,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ===== GATING PREDICATES =====

// BasicInfoComplete reports whether step 1 has the minimum to move on:
// a title and a category.
func (s *WizardSession) BasicInfoComplete() bool {
	return s.BasicInfo.Title != "" && s.BasicInfo.CategoryID != uuid.Nil
}

// StatementReady reports whether the statement content for the chosen
// statement type is present.
func (s *WizardSession) StatementReady() bool {
	if s.BasicInfo.StatementType == models.ContentPDF {
		return s.StatementFile != nil
	}
	return s.StatementHTML != ""
}

// SolutionReady reports whether the solution content is present. A
// session with has_solution=false is always ready.
func (s *WizardSession) SolutionReady() bool {
	if !s.BasicInfo.HasSolution {
		return true
	}
	if s.BasicInfo.SolutionType == models.ContentPDF {
		return s.SolutionFile != nil
	}
	return s.SolutionHTML != ""
}

// wantsSolutionStep reports whether the wizard shows a dedicated HTML
// solution step. PDF solutions are attached, not authored.
func (s *WizardSession) wantsSolutionStep() bool {
	return s.BasicInfo.HasSolution && s.BasicInfo.SolutionType == models.ContentHTML
}

// NextStep computes the step Advance would move to, or "" when the
// current step's gate is not satisfied.
func (s *WizardSession) NextStep() WizardStep {
	switch s.Step {
	case StepBasicInfo:
		if !s.BasicInfoComplete() {
			return ""
		}
		// PDF statements are attached on step 1, so the statement
		// editor step is skipped entirely.
		if s.BasicInfo.StatementType == models.ContentPDF {
			if !s.StatementReady() {
				return ""
			}
			if s.wantsSolutionStep() {
				return StepSolution
			}
			if !s.SolutionReady() {
				return ""
			}
			return StepSubmitted
		}
		return StepStatement
	case StepStatement:
		if !s.StatementReady() {
			return ""
		}
		if s.wantsSolutionStep() {
			return StepSolution
		}
		if !s.SolutionReady() {
			return ""
		}
		return StepSubmitted
	case StepSolution:
		if !s.SolutionReady() {
			return ""
		}
		return StepSubmitted
	default:
		return ""
	}
}

// PrevStep computes the step Back would move to, or "" at the first
// step. Content entered so far is never discarded.
func (s *WizardSession) PrevStep() WizardStep {
	switch s.Step {
	case StepSolution:
		if s.BasicInfo.StatementType == models.ContentPDF {
			return StepBasicInfo
		}
		return StepStatement
	case StepStatement:
		return StepBasicInfo
	default:
		return ""
	}
}

// CanSubmit reports whether every gate up to and including submit is
// satisfied from the current state.
func (s *WizardSession) CanSubmit() bool {
	return s.BasicInfoComplete() && s.StatementReady() && s.SolutionReady()
}
