package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/SAP-F-2025/interview-service/internal/auth"
	"github.com/SAP-F-2025/interview-service/internal/models"
	"github.com/SAP-F-2025/interview-service/internal/repositories"
	"gorm.io/datatypes"
)

// ValidationService checks the request rules that need the database.
// Every problem it finds is reported as a field error; repository failures are returned as is.
type ValidationService struct {
	repo repositories.Repository
}

func NewValidationService(repo repositories.Repository) *ValidationService {
	return &ValidationService{repo: repo}
}

// ===== INTERVIEW VALIDATION =====

// ValidateInterviewCreate collects every field problem of req and, when there are none,
// returns the interview to insert.
func (v *ValidationService) ValidateInterviewCreate(ctx context.Context, req *CreateInterviewRequest, caller *auth.Identity, now time.Time) (*models.Interview, error) {
	var errs ValidationErrors

	deadline, deadlineErr := parseDeadline(req.Deadline, now)
	if deadlineErr != nil {
		errs = append(errs, *deadlineErr)
	}

	ve, err := v.validateTemplate(ctx, req.TemplateID)
	if err != nil {
		return nil, err
	}
	errs = appendFieldError(errs, ve)

	ve, err = v.validateUser(ctx, "candidate_id", req.CandidateID, models.RoleCandidate)
	if err != nil {
		return nil, err
	}
	errs = appendFieldError(errs, ve)

	interviewerID := req.InterviewerID
	if interviewerID == "" && caller.Role == models.RoleInterviewer {
		interviewerID = caller.UserID
	}
	ve, err = v.validateUser(ctx, "interviewer_id", interviewerID, models.RoleAdmin, models.RoleInterviewer)
	if err != nil {
		return nil, err
	}
	errs = appendFieldError(errs, ve)

	var metadata datatypes.JSON
	if len(req.Metadata) > 0 {
		raw, err := json.Marshal(req.Metadata)
		if err != nil {
			errs = append(errs, *NewValidationError("metadata", "must be a JSON object", nil))
		}
		metadata = datatypes.JSON(raw)
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return &models.Interview{
		TemplateID:    req.TemplateID,
		CandidateID:   req.CandidateID,
		InterviewerID: interviewerID,
		CreatedBy:     caller.UserID,
		Deadline:      deadline,
		Metadata:      metadata,
	}, nil
}

// ApplyInterviewUpdate validates req and copies it onto interview. Nothing is copied on failure.
func (v *ValidationService) ApplyInterviewUpdate(ctx context.Context, req *UpdateInterviewRequest, interview *models.Interview, now time.Time) error {
	var errs ValidationErrors
	deadline := interview.Deadline
	interviewerID := interview.InterviewerID

	if req.Deadline != nil {
		parsed, deadlineErr := parseDeadline(*req.Deadline, now)
		if deadlineErr != nil {
			errs = append(errs, *deadlineErr)
		}
		deadline = parsed
	}
	if req.InterviewerID != nil {
		ve, err := v.validateUser(ctx, "interviewer_id", *req.InterviewerID, models.RoleAdmin, models.RoleInterviewer)
		if err != nil {
			return err
		}
		errs = appendFieldError(errs, ve)
		interviewerID = *req.InterviewerID
	}

	if len(errs) > 0 {
		return errs
	}
	interview.Deadline = deadline
	interview.InterviewerID = interviewerID
	return nil
}

// ===== FIELD RULES =====

// validateTemplate rejects a missing template and one without questions.
func (v *ValidationService) validateTemplate(ctx context.Context, templateID uint) (*ValidationError, error) {
	if _, err := v.repo.Template().GetByID(ctx, nil, templateID); err != nil {
		if repositories.IsNotFoundError(err) {
			return NewValidationError("template_id", "interview template does not exist", templateID), nil
		}
		return nil, fmt.Errorf("failed to get template: %w", err)
	}
	count, err := v.repo.Template().CountQuestions(ctx, nil, templateID)
	if err != nil {
		return nil, fmt.Errorf("failed to count template questions: %w", err)
	}
	if count == 0 {
		return NewValidationError("template_id", ErrTemplateEmpty.Error(), templateID), nil
	}
	return nil, nil
}

// validateUser rejects a missing user and one holding none of roles.
func (v *ValidationService) validateUser(ctx context.Context, field, userID string, roles ...models.UserRole) (*ValidationError, error) {
	if userID == "" {
		return NewValidationError(field, "is required", userID), nil
	}
	user, err := v.repo.User().GetByID(ctx, nil, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return NewValidationError(field, "user does not exist", userID), nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	for _, r := range roles {
		if user.Role == r {
			return nil, nil
		}
	}
	return NewValidationError(field, fmt.Sprintf("user has role %s", user.Role), userID), nil
}

const deadlineDateLayout = "2006-01-02"

// parseDeadline accepts RFC 3339 or a YYYY-MM-DD date, which means midnight UTC.
func parseDeadline(raw string, now time.Time) (time.Time, *ValidationError) {
	deadline, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		deadline, err = time.Parse(deadlineDateLayout, raw)
	}
	if err != nil {
		return time.Time{}, NewValidationErrorWithRule("deadline", "must be an RFC 3339 timestamp or a YYYY-MM-DD date", "deadline", raw)
	}
	if !deadline.After(now) {
		return time.Time{}, NewValidationErrorWithRule("deadline", "must be in the future", "future", raw)
	}
	return deadline.UTC(), nil
}

func appendFieldError(errs ValidationErrors, ve *ValidationError) ValidationErrors {
	if ve != nil {
		return append(errs, *ve)
	}
	return errs
}
