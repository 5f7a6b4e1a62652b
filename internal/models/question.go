package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type DifficultyLevel string

const (
	DifficultyEasy   DifficultyLevel = "easy"
	DifficultyMedium DifficultyLevel = "medium"
	DifficultyHard   DifficultyLevel = "hard"
)

// ContentType selects the authoritative representation of a statement or
// solution. Exactly one representation is authoritative per field.
type ContentType string

const (
	ContentHTML ContentType = "html"
	ContentPDF  ContentType = "pdf"
)

type Question struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CategoryID uuid.UUID `json:"category_id" gorm:"type:uuid;not null;index"`
	CreatedBy  string    `json:"created_by" gorm:"not null;index;size:255"`

	Title            string          `json:"title" gorm:"not null;size:255" validate:"required,max=255"`
	Description      *string         `json:"description" gorm:"type:text"`
	ProblemStatement string          `json:"problem_statement" gorm:"type:text"`
	Difficulty       DifficultyLevel `json:"difficulty" gorm:"default:medium;index"`
	MaxScore         int             `json:"max_score" gorm:"default:100" validate:"min=1"`
	TimeLimitSeconds int             `json:"time_limit_seconds" gorm:"default:30"`
	IsActive         bool            `json:"is_active" gorm:"default:true;index"`

	// Statement representation. When StatementType is pdf the blob columns
	// are authoritative and ProblemStatement is ignored by consumers.
	StatementType ContentType `json:"statement_type" gorm:"size:20;default:html"`
	PDFStatement  []byte      `json:"-" gorm:"type:bytea"`
	PDFFilename   *string     `json:"pdf_filename" gorm:"size:255"`
	PDFFilesize   *int        `json:"pdf_filesize"`

	// Optional solution with its own independent representation. When
	// HasSolution is false SolutionType resets to html and the remaining
	// solution columns are cleared.
	HasSolution         bool        `json:"has_solution" gorm:"default:false;not null"`
	SolutionType        ContentType `json:"solution_type" gorm:"size:20;default:html"`
	SolutionText        *string     `json:"solution_text" gorm:"type:text"`
	SolutionPDF         []byte      `json:"-" gorm:"type:bytea"`
	SolutionPDFFilename *string     `json:"solution_pdf_filename" gorm:"size:255"`
	SolutionPDFFilesize *int        `json:"solution_pdf_filesize"`

	// Free-form metadata: tags []string, question_id for imported entries.
	ExtraData datatypes.JSON `json:"extra_data" gorm:"type:jsonb"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Category  *QuestionCategory  `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	TestCases []QuestionTestCase `json:"test_cases,omitempty" gorm:"foreignKey:QuestionID"`
}

func (Question) TableName() string {
	return "questions"
}

type QuestionCategory struct {
	ID          uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name        string         `json:"name" gorm:"uniqueIndex;not null;size:100" validate:"required,max=100"`
	Description *string        `json:"description" gorm:"type:text"`
	IsActive    bool           `json:"is_active" gorm:"default:true;index"`
	ExtraData   datatypes.JSON `json:"extra_data" gorm:"type:jsonb"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (QuestionCategory) TableName() string {
	return "question_categories"
}

type QuestionTestCase struct {
	ID             uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	QuestionID     uuid.UUID      `json:"question_id" gorm:"type:uuid;not null;index"`
	InputData      string         `json:"input_data" gorm:"type:text;not null"`
	ExpectedOutput string         `json:"expected_output" gorm:"type:text;not null"`
	IsSample       bool           `json:"is_sample" gorm:"default:false;index"`
	IsHidden       bool           `json:"is_hidden" gorm:"default:false"`
	Weight         int            `json:"weight" gorm:"default:1"`
	ExtraData      datatypes.JSON `json:"extra_data" gorm:"type:jsonb"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (QuestionTestCase) TableName() string {
	return "question_test_cases"
}

// Tags decodes the tag list from ExtraData. Missing or malformed metadata
// yields an empty list.
func (q *Question) Tags() []string {
	return extraDataTags(q.ExtraData)
}

// ImportedTaskID returns the upstream task identifier for questions brought
// in by the JSONL importer, or "" for hand-authored questions.
func (q *Question) ImportedTaskID() string {
	return extraDataString(q.ExtraData, "question_id")
}

// IsImported reports whether the question came from a bulk import rather
// than the authoring workflow.
func (q *Question) IsImported() bool {
	return q.ImportedTaskID() != ""
}
