package validator

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Validator bundles struct-tag validation with the business-rule validator.
type Validator struct {
	validate *validator.Validate
	business *BusinessValidator
}

func New() *Validator {
	validate := validator.New()

	return &Validator{
		validate: validate,
		business: NewBusinessValidator(),
	}
}

// Validate runs struct-tag validation and converts failures into
// ValidationErrors.
func (v *Validator) Validate(s interface{}) error {
	if err := v.validate.Struct(s); err != nil {
		if errs := ToValidationErrors(err); len(errs) > 0 {
			return errs
		}
		return fmt.Errorf("validation failed: %w", err)
	}
	return nil
}

func (v *Validator) GetBusinessValidator() *BusinessValidator {
	return v.business
}
