package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidationError carries field-level details of an ErrInvalidInput failure
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrInvalidInput, strings.Join(e.Fields, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// validateInput checks the `validate` tags of a service input struct
func validateInput(input interface{}) error {
	err := validate.Struct(input)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	fields := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		fields = append(fields, fmt.Sprintf("%s failed on %s", fe.Namespace(), fe.Tag()))
	}
	return &ValidationError{Fields: fields}
}

func invalidInput(format string, args ...interface{}) error {
	return &ValidationError{Fields: []string{fmt.Sprintf(format, args...)}}
}
