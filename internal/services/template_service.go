package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SAP-F-2025/interview-service/internal/auth"
	"github.com/SAP-F-2025/interview-service/internal/models"
	"github.com/SAP-F-2025/interview-service/internal/repositories"
	"github.com/SAP-F-2025/interview-service/internal/validator"
	"gorm.io/gorm"
)

type templateService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
}

func NewTemplateService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator) TemplateService {
	return &templateService{repo: repo, logger: logger, validator: validator}
}

func (s *templateService) Create(ctx context.Context, caller *auth.Identity, req *CreateTemplateRequest) (*models.InterviewTemplate, error) {
	if err := authorize(auth.Staff(), caller, 0, "template", "create"); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	s.logger.Info("Creating interview template", "name", req.Name, "questions", len(req.QuestionIDs))

	template := &models.InterviewTemplate{
		Name:        req.Name,
		Description: req.Description,
		CreatedBy:   caller.UserID,
	}
	err := s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		if err := s.repo.Template().Create(ctx, tx, template); err != nil {
			return fmt.Errorf("failed to create template: %w", err)
		}
		for i, questionID := range req.QuestionIDs {
			if _, err := s.repo.Question().GetByID(ctx, tx, questionID); err != nil {
				if repositories.IsNotFoundError(err) {
					return ValidationErrors{*NewValidationError(fmt.Sprintf("question_ids[%d]", i), "question does not exist", questionID)}
				}
				return fmt.Errorf("failed to get question: %w", err)
			}
			if err := s.repo.Template().AddQuestion(ctx, tx, template.ID, questionID); err != nil {
				return fmt.Errorf("failed to add question: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Interview template created successfully", "template_id", template.ID)
	return s.load(ctx, template.ID)
}

func (s *templateService) Get(ctx context.Context, caller *auth.Identity, id uint) (*models.InterviewTemplate, error) {
	if err := authorize(auth.Staff(), caller, id, "template", "read"); err != nil {
		return nil, err
	}
	return s.load(ctx, id)
}

func (s *templateService) List(ctx context.Context, caller *auth.Identity, filters repositories.TemplateFilters) (*TemplateListResponse, error) {
	if err := authorize(auth.Staff(), caller, 0, "template", "list"); err != nil {
		return nil, err
	}
	templates, total, err := s.repo.Template().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	return &TemplateListResponse{Templates: templates, Total: total}, nil
}

// AddQuestion is idempotent.
func (s *templateService) AddQuestion(ctx context.Context, caller *auth.Identity, templateID, questionID uint) (*models.InterviewTemplate, error) {
	if err := authorize(auth.Staff(), caller, templateID, "template", "update"); err != nil {
		return nil, err
	}
	if _, err := s.repo.Template().GetByID(ctx, nil, templateID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTemplateNotFound
		}
		return nil, fmt.Errorf("failed to get template: %w", err)
	}
	if _, err := s.repo.Question().GetByID(ctx, nil, questionID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}

	if err := s.repo.Template().AddQuestion(ctx, nil, templateID, questionID); err != nil {
		return nil, fmt.Errorf("failed to add question: %w", err)
	}
	s.logger.Info("Question added to template", "template_id", templateID, "question_id", questionID)
	return s.load(ctx, templateID)
}

// Delete refuses templates that interviews still point at.
func (s *templateService) Delete(ctx context.Context, caller *auth.Identity, id uint) error {
	if err := authorize(auth.Staff(), caller, id, "template", "delete"); err != nil {
		return err
	}
	if _, err := s.repo.Template().GetByID(ctx, nil, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrTemplateNotFound
		}
		return fmt.Errorf("failed to get template: %w", err)
	}

	inUse, err := s.repo.Template().IsInUse(ctx, nil, id)
	if err != nil {
		return fmt.Errorf("failed to check template usage: %w", err)
	}
	if inUse {
		return ErrTemplateInUse
	}

	if err := s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		return s.repo.Template().Delete(ctx, tx, id)
	}); err != nil {
		return fmt.Errorf("failed to delete template: %w", err)
	}
	s.logger.Info("Interview template deleted", "template_id", id)
	return nil
}

func (s *templateService) load(ctx context.Context, id uint) (*models.InterviewTemplate, error) {
	template, err := s.repo.Template().GetByIDWithQuestions(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTemplateNotFound
		}
		return nil, fmt.Errorf("failed to get template: %w", err)
	}
	return template, nil
}
