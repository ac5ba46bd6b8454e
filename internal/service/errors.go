package service

import (
	"errors"
	"fmt"

	"github.com/MorseWayne/catalog_admin/internal/validate"
)

var (
	ErrSessionNotFound = errors.New("edit session not found")
	ErrProductNotFound = errors.New("product not found")
	ErrDuplicateField  = errors.New("slug or sku already in use")
	ErrInvalidSizeEdit = errors.New("invalid size edit")
	ErrValidation      = errors.New("product payload validation failed")
)

// ValidationError 载荷校验失败，携带逐字段的错误
type ValidationError struct {
	Fields []validate.FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return ErrValidation.Error()
	}
	return fmt.Sprintf("%s: %s %s", ErrValidation, e.Fields[0].Field, e.Fields[0].Message)
}

// Is 使 errors.Is(err, ErrValidation) 成立
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
