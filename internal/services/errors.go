package services

import (
	"errors"
	"fmt"

	"github.com/SAP-F-2025/interview-service/internal/auth"
	apperrors "github.com/SAP-F-2025/interview-service/internal/errors"
	"github.com/SAP-F-2025/interview-service/internal/models"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Generic errors
	ErrNotFound         = errors.New("resource not found")
	ErrValidationFailed = errors.New("validation failed")
	ErrConflict         = errors.New("resource conflict")

	// Interview specific errors
	ErrInterviewNotFound = errors.New("interview not found")
	ErrTemplateNotFound  = errors.New("interview template not found")
	ErrTemplateEmpty     = errors.New("interview template has no questions")
	ErrTemplateInUse     = errors.New("interview template cannot be deleted - used by interviews")
	ErrQuestionNotFound  = errors.New("question not found")
	ErrAnswerNotFound    = errors.New("answer not found")

	// User errors
	ErrUserNotFound = errors.New("user not found")
)

// ===== CUSTOM ERROR TYPES =====

type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

// StateError reports an operation the interview's current status does not allow.
type StateError struct {
	Operation Operation              `json:"operation"`
	Status    models.InterviewStatus `json:"status"`
}

func (se *StateError) Error() string {
	return fmt.Sprintf("cannot %s an interview that is %s", se.Operation, se.Status)
}

type PermissionError struct {
	UserID     string `json:"user_id"`
	ResourceID uint   `json:"resource_id"`
	Resource   string `json:"resource"`
	Action     string `json:"action"`
	Err        error  `json:"-"`
}

func (pe *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: user %q cannot %s %s %d: %v",
		pe.UserID, pe.Action, pe.Resource, pe.ResourceID, pe.Err)
}

// Unwrap exposes auth.ErrNotAuthenticated or auth.ErrNotAuthorized.
func (pe *PermissionError) Unwrap() error { return pe.Err }

// ===== ERROR HELPERS =====

func NewValidationError(field, message string, value interface{}) *ValidationError {
	return apperrors.NewValidationError(field, message, value)
}

func NewValidationErrorWithRule(field, message, rule string, value interface{}) *ValidationError {
	return apperrors.NewValidationErrorWithRule(field, message, rule, value)
}

func NewPermissionError(id *auth.Identity, resourceID uint, resource, action string, err error) *PermissionError {
	pe := &PermissionError{
		ResourceID: resourceID,
		Resource:   resource,
		Action:     action,
		Err:        err,
	}
	if id != nil {
		pe.UserID = id.UserID
	}
	return pe
}

// authorize runs gate and wraps a refusal into a PermissionError.
func authorize(gate auth.Gate, id *auth.Identity, resourceID uint, resource, action string) error {
	if err := gate(id); err != nil {
		return NewPermissionError(id, resourceID, resource, action, err)
	}
	return nil
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrInterviewNotFound) ||
		errors.Is(err, ErrTemplateNotFound) ||
		errors.Is(err, ErrQuestionNotFound) ||
		errors.Is(err, ErrAnswerNotFound) ||
		errors.Is(err, ErrUserNotFound)
}

func IsUnauthenticated(err error) bool {
	return errors.Is(err, auth.ErrNotAuthenticated)
}

func IsForbidden(err error) bool {
	return errors.Is(err, auth.ErrNotAuthorized)
}

func IsValidation(err error) bool {
	if errors.Is(err, ErrValidationFailed) {
		return true
	}
	var ve ValidationErrors
	if errors.As(err, &ve) {
		return true
	}
	var one *ValidationError
	return errors.As(err, &one)
}

func IsState(err error) bool {
	var se *StateError
	return errors.As(err, &se)
}

func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrTemplateInUse)
}
