package validator

import (
	"github.com/google/uuid"

	"github.com/codebench-edu/console-service/internal/models"
)

// QuestionCreateRequest represents the request structure for creating questions
type QuestionCreateRequest struct {
	Title            string                 `json:"title" validate:"required,min=1,max=255"`
	CategoryID       uuid.UUID              `json:"category_id" validate:"required"`
	Description      *string                `json:"description" validate:"omitempty,max=5000"`
	ProblemStatement string                 `json:"problem_statement"`
	StatementType    models.ContentType     `json:"statement_type" validate:"omitempty,oneof=html pdf"`
	Difficulty       models.DifficultyLevel `json:"difficulty" validate:"omitempty,oneof=easy medium hard"`
	MaxScore         int                    `json:"max_score" validate:"min=1,max=1000"`
	TimeLimitSeconds int                    `json:"time_limit_seconds" validate:"omitempty,min=1,max=3600"`
	IsActive         *bool                  `json:"is_active"`
	HasSolution      bool                   `json:"has_solution"`
	SolutionType     models.ContentType     `json:"solution_type" validate:"omitempty,oneof=html pdf"`
	SolutionText     *string                `json:"solution_text"`
	Tags             []string               `json:"tags" validate:"omitempty,dive,min=1,max=50"`
	ExtraData        map[string]interface{} `json:"extra_data"`
}

// QuestionUpdateRequest represents the request structure for updating questions
type QuestionUpdateRequest struct {
	Title            *string                 `json:"title" validate:"omitempty,min=1,max=255"`
	CategoryID       *uuid.UUID              `json:"category_id"`
	Description      *string                 `json:"description" validate:"omitempty,max=5000"`
	ProblemStatement *string                 `json:"problem_statement"`
	StatementType    *models.ContentType     `json:"statement_type" validate:"omitempty,oneof=html pdf"`
	Difficulty       *models.DifficultyLevel `json:"difficulty" validate:"omitempty,oneof=easy medium hard"`
	MaxScore         *int                    `json:"max_score" validate:"omitempty,min=1,max=1000"`
	TimeLimitSeconds *int                    `json:"time_limit_seconds" validate:"omitempty,min=1,max=3600"`
	IsActive         *bool                   `json:"is_active"`
	HasSolution      *bool                   `json:"has_solution"`
	SolutionType     *models.ContentType     `json:"solution_type" validate:"omitempty,oneof=html pdf"`
	SolutionText     *string                 `json:"solution_text"`
	Tags             []string                `json:"tags" validate:"omitempty,dive,min=1,max=50"`
	ExtraData        map[string]interface{}  `json:"extra_data"`
}

type CategoryCreateRequest struct {
	Name        string                 `json:"name" validate:"required,min=1,max=100"`
	Description *string                `json:"description" validate:"omitempty,max=2000"`
	IsActive    *bool                  `json:"is_active"`
	ExtraData   map[string]interface{} `json:"extra_data"`
}

type CategoryUpdateRequest struct {
	Name        *string                `json:"name" validate:"omitempty,min=1,max=100"`
	Description *string                `json:"description" validate:"omitempty,max=2000"`
	IsActive    *bool                  `json:"is_active"`
	ExtraData   map[string]interface{} `json:"extra_data"`
}

type TestCaseCreateRequest struct {
	QuestionID     uuid.UUID              `json:"question_id" validate:"required"`
	InputData      string                 `json:"input_data" validate:"required"`
	ExpectedOutput string                 `json:"expected_output" validate:"required"`
	IsSample       bool                   `json:"is_sample"`
	IsHidden       bool                   `json:"is_hidden"`
	Weight         int                    `json:"weight" validate:"omitempty,min=1,max=100"`
	ExtraData      map[string]interface{} `json:"extra_data"`
}

type TestCaseUpdateRequest struct {
	InputData      *string                `json:"input_data" validate:"omitempty,min=1"`
	ExpectedOutput *string                `json:"expected_output" validate:"omitempty,min=1"`
	IsSample       *bool                  `json:"is_sample"`
	IsHidden       *bool                  `json:"is_hidden"`
	Weight         *int                   `json:"weight" validate:"omitempty,min=1,max=100"`
	ExtraData      map[string]interface{} `json:"extra_data"`
}

// MCQCreateRequest represents the request structure for creating MCQs
type MCQCreateRequest struct {
	Title          string                 `json:"title" validate:"required,min=1,max=255"`
	CategoryID     uuid.UUID              `json:"category_id" validate:"required"`
	Description    *string                `json:"description" validate:"omitempty,max=5000"`
	QuestionText   string                 `json:"question_text" validate:"required"`
	Difficulty     models.DifficultyLevel `json:"difficulty" validate:"omitempty,oneof=easy medium hard"`
	Options        []string               `json:"options" validate:"required,len=4,dive,required"`
	CorrectAnswer  int                    `json:"correct_answer" validate:"required,min=1,max=4"`
	ShuffleOptions bool                   `json:"shuffle_options"`
	Explanation    *string                `json:"explanation" validate:"omitempty,max=5000"`
	MaxScore       int                    `json:"max_score" validate:"required,min=1,max=1000"`
	PartialScoring bool                   `json:"partial_scoring"`
	IsActive       *bool                  `json:"is_active"`
	ExtraData      map[string]interface{} `json:"extra_data"`
}

type MCQUpdateRequest struct {
	Title          *string                 `json:"title" validate:"omitempty,min=1,max=255"`
	CategoryID     *uuid.UUID              `json:"category_id"`
	Description    *string                 `json:"description" validate:"omitempty,max=5000"`
	QuestionText   *string                 `json:"question_text" validate:"omitempty,min=1"`
	Difficulty     *models.DifficultyLevel `json:"difficulty" validate:"omitempty,oneof=easy medium hard"`
	Options        []string                `json:"options" validate:"omitempty,len=4,dive,required"`
	CorrectAnswer  *int                    `json:"correct_answer" validate:"omitempty,min=1,max=4"`
	ShuffleOptions *bool                   `json:"shuffle_options"`
	Explanation    *string                 `json:"explanation" validate:"omitempty,max=5000"`
	MaxScore       *int                    `json:"max_score" validate:"omitempty,min=1,max=1000"`
	PartialScoring *bool                   `json:"partial_scoring"`
	IsActive       *bool                   `json:"is_active"`
	ExtraData      map[string]interface{}  `json:"extra_data"`
}

type NoteCreateRequest struct {
	Title       string              `json:"title" validate:"required,min=1,max=255"`
	Description *string             `json:"description" validate:"omitempty,max=5000"`
	Category    models.NoteCategory `json:"category" validate:"required,oneof=lecture_notes assignment_solutions reference_materials exam_papers study_guides presentations other"`
	CourseID    uuid.UUID           `json:"course_id" validate:"required"`
	Tags        []string            `json:"tags" validate:"omitempty,dive,min=1,max=50"`
	IsPublic    bool                `json:"is_public"`
}

type NoteUpdateRequest struct {
	Title       *string              `json:"title" validate:"omitempty,min=1,max=255"`
	Description *string              `json:"description" validate:"omitempty,max=5000"`
	Category    *models.NoteCategory `json:"category" validate:"omitempty,oneof=lecture_notes assignment_solutions reference_materials exam_papers study_guides presentations other"`
	Tags        []string             `json:"tags" validate:"omitempty,dive,min=1,max=50"`
	IsPublic    *bool                `json:"is_public"`
}

// ImportJSONLRequest is the payload for the LeetCode JSONL bulk import.
type ImportJSONLRequest struct {
	FilePaths []string `json:"file_paths" validate:"required,min=1,dive,required"`
	Overwrite bool     `json:"overwrite"`
}
