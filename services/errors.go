package services

import (
	"errors"
	"fmt"

	"github.com/yunshui/materials-api/utils"
)

var (
	ErrMaterialNotFound     = errors.New("material not found")
	ErrOrderNotFound        = errors.New("order not found")
	ErrProjectNotFound      = errors.New("project not found")
	ErrWrongMaterialType    = errors.New("material type does not match order type")
	ErrDuplicateProjectName = errors.New("project name already exists")
	ErrInvalidInput         = errors.New("invalid input")
	ErrInvalidStatus        = errors.New("invalid status")
)

// Kind is the coarse error class the HTTP layer maps to a response status
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindValidation
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation_error"
	}
	return "internal_error"
}

// KindOf classifies err. Anything that is not a known domain error is internal,
// which includes storage failures.
func KindOf(err error) Kind {
	switch {
	case errors.Is(err, ErrMaterialNotFound),
		errors.Is(err, ErrOrderNotFound),
		errors.Is(err, ErrProjectNotFound):
		return KindNotFound
	case errors.Is(err, ErrWrongMaterialType),
		errors.Is(err, ErrDuplicateProjectName),
		errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrInvalidStatus):
		return KindValidation
	}
	var uploadErr *utils.FileUploadError
	if errors.As(err, &uploadErr) {
		return KindValidation
	}
	return KindInternal
}

// ClassifyError returns the log label of err's kind
func ClassifyError(err error) string {
	return KindOf(err).String()
}

func materialNotFound(id uint) error {
	return fmt.Errorf("%w: id %d", ErrMaterialNotFound, id)
}

func orderNotFound(id uint) error {
	return fmt.Errorf("%w: id %d", ErrOrderNotFound, id)
}
