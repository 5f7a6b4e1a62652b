package validator

import (
	"encoding/json"
	"strings"

	"github.com/go-playground/validator/v10"
	"gorm.io/datatypes"

	"github.com/codebench-edu/console-service/internal/models"
)

// BusinessValidator handles cross-field business rule validation that the
// struct tags cannot express.
type BusinessValidator struct {
	validate *validator.Validate
}

func NewBusinessValidator() *BusinessValidator {
	return &BusinessValidator{validate: validator.New()}
}

// Validate validates business rules for any struct
func (bv *BusinessValidator) Validate(s interface{}) ValidationErrors {
	if err := bv.validate.Struct(s); err != nil {
		return ToValidationErrors(err)
	}
	return nil
}

// ValidateQuestionCreate validates question creation business rules.
func (bv *BusinessValidator) ValidateQuestionCreate(req *QuestionCreateRequest) ValidationErrors {
	var errors ValidationErrors

	errors = append(errors, bv.Validate(req)...)
	errors = append(errors, bv.validateStatementRules(req.StatementType, req.ProblemStatement)...)
	errors = append(errors, bv.validateSolutionRules(req.HasSolution, req.SolutionType, req.SolutionText)...)

	return errors
}

// ValidateMCQCreate validates MCQ creation business rules.
func (bv *BusinessValidator) ValidateMCQCreate(req *MCQCreateRequest) ValidationErrors {
	var errors ValidationErrors

	errors = append(errors, bv.Validate(req)...)
	errors = append(errors, bv.validateMCQRules(req.Options, req.CorrectAnswer)...)

	return errors
}

// ValidateMCQUpdate validates MCQ update business rules against the current
// entity state.
func (bv *BusinessValidator) ValidateMCQUpdate(req *MCQUpdateRequest, existing *models.MCQ) ValidationErrors {
	var errors ValidationErrors

	errors = append(errors, bv.Validate(req)...)

	if req.Options != nil || req.CorrectAnswer != nil {
		options := req.Options
		if options == nil && existing != nil {
			options = decodeOptions(existing.Options)
		}
		correct := existing.CorrectAnswer
		if req.CorrectAnswer != nil {
			correct = *req.CorrectAnswer
		}
		errors = append(errors, bv.validateMCQRules(options, correct)...)
	}

	return errors
}

// A HTML statement must carry content; a PDF statement gets its content via
// the dedicated upload, so an empty body is fine there.
func (bv *BusinessValidator) validateStatementRules(statementType models.ContentType, statement string) ValidationErrors {
	var errors ValidationErrors

	if statementType != models.ContentPDF && strings.TrimSpace(statement) == "" {
		errors = append(errors, ValidationError{
			Field:   "problem_statement",
			Message: "is required for html statements",
			Rule:    "business_logic",
		})
	}

	return errors
}

// When has_solution is false the solution representation resets to html and
// solution content must not be supplied.
func (bv *BusinessValidator) validateSolutionRules(hasSolution bool, solutionType models.ContentType, solutionText *string) ValidationErrors {
	var errors ValidationErrors

	if !hasSolution {
		return errors
	}

	if solutionType != models.ContentPDF && (solutionText == nil || strings.TrimSpace(*solutionText) == "") {
		errors = append(errors, ValidationError{
			Field:   "solution_text",
			Message: "is required for html solutions",
			Rule:    "business_logic",
		})
	}

	return errors
}

func decodeOptions(raw datatypes.JSON) []string {
	var opts []string
	if err := json.Unmarshal(raw, &opts); err != nil {
		return nil
	}
	return opts
}

func (bv *BusinessValidator) validateMCQRules(options []string, correctAnswer int) ValidationErrors {
	var errors ValidationErrors

	if len(options) != 4 {
		errors = append(errors, ValidationError{
			Field:   "options",
			Message: "must contain exactly 4 options",
			Value:   len(options),
			Rule:    "business_logic",
		})
	}

	for i, opt := range options {
		if strings.TrimSpace(opt) == "" {
			errors = append(errors, ValidationError{
				Field:   "options",
				Message: "option text must not be blank",
				Value:   i + 1,
				Rule:    "business_logic",
			})
		}
	}

	if correctAnswer < 1 || correctAnswer > len(options) {
		errors = append(errors, ValidationError{
			Field:   "correct_answer",
			Message: "must reference one of the provided options",
			Value:   correctAnswer,
			Rule:    "business_logic",
		})
	}

	return errors
}
