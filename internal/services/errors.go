package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

// Code identifies a class of service failure
type Code string

const (
	CodeValidationFailed  Code = "VALIDATION_FAILED"
	CodeDuplicateUsername Code = "DUPLICATE_USERNAME"
	CodeDuplicateEmail    Code = "DUPLICATE_EMAIL"
	CodeNotFound          Code = "NOT_FOUND"
	CodeBadCredential     Code = "BAD_CREDENTIAL"
	CodeNotApproved       Code = "NOT_APPROVED"
	CodeForbidden         Code = "FORBIDDEN"
	CodeInvalidTarget     Code = "INVALID_TARGET"
)

// Error is a typed service failure. Two Errors match under errors.Is when their codes match.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

var (
	ErrValidationFailed  = &Error{Code: CodeValidationFailed, Message: "validation failed"}
	ErrDuplicateUsername = &Error{Code: CodeDuplicateUsername, Message: "username is already taken"}
	ErrDuplicateEmail    = &Error{Code: CodeDuplicateEmail, Message: "email is already registered"}
	ErrNotFound          = &Error{Code: CodeNotFound, Message: "resource not found"}
	ErrBadCredential     = &Error{Code: CodeBadCredential, Message: "invalid credentials"}
	ErrNotApproved       = &Error{Code: CodeNotApproved, Message: "account is waiting for administrator approval"}
	ErrForbidden         = &Error{Code: CodeForbidden, Message: "operation not permitted"}
	ErrInvalidTarget     = &Error{Code: CodeInvalidTarget, Message: "administrators cannot be moderated"}
)

// CodeOf extracts the code of a service error, or "" for infrastructure errors
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidationFailed, fmt.Sprintf(format, args...))
}

// notFound maps gorm's missing-row error onto ErrNotFound and wraps anything else
func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, what)
	}
	return fmt.Errorf("load %s: %w", what, err)
}

// validateStruct runs the validator tags on v and reports the first failure as ErrValidationFailed
func validateStruct(validate *validator.Validate, v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return validationError("%s failed on %s", strings.ToLower(fe.Field()), fe.Tag())
	}
	return validationError("%v", err)
}
