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

type questionService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
}

func NewQuestionService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator) QuestionService {
	return &questionService{repo: repo, logger: logger, validator: validator}
}

// ===== TAGS =====

func (s *questionService) CreateTag(ctx context.Context, caller *auth.Identity, req *CreateTagRequest) (*models.Tag, error) {
	if err := authorize(auth.Staff(), caller, 0, "tag", "create"); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	tags, err := s.repo.Tag().Ensure(ctx, nil, []string{req.Name})
	if err != nil {
		return nil, fmt.Errorf("failed to create tag: %w", err)
	}
	if len(tags) == 0 {
		return nil, ValidationErrors{*NewValidationError("name", "is required", req.Name)}
	}
	return &tags[0], nil
}

func (s *questionService) ListTags(ctx context.Context, caller *auth.Identity) ([]*models.Tag, error) {
	if err := authorize(auth.Staff(), caller, 0, "tag", "list"); err != nil {
		return nil, err
	}
	tags, err := s.repo.Tag().List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	return tags, nil
}

// ===== QUESTIONS =====

func (s *questionService) Create(ctx context.Context, caller *auth.Identity, req *CreateQuestionRequest) (*models.Question, error) {
	if err := authorize(auth.Staff(), caller, 0, "question", "create"); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	s.logger.Info("Creating question", "title", req.Title, "created_by", caller.UserID)

	question := &models.Question{
		Title:       req.Title,
		Description: req.Description,
		CreatedBy:   caller.UserID,
	}
	err := s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		tags, err := s.repo.Tag().Ensure(ctx, tx, req.Tags)
		if err != nil {
			return fmt.Errorf("failed to ensure tags: %w", err)
		}
		question.Tags = tags
		if err := s.repo.Question().Create(ctx, tx, question); err != nil {
			return fmt.Errorf("failed to create question: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Question created successfully", "question_id", question.ID)
	return question, nil
}

func (s *questionService) Get(ctx context.Context, caller *auth.Identity, id uint) (*models.Question, error) {
	if err := authorize(auth.Staff(), caller, id, "question", "read"); err != nil {
		return nil, err
	}
	question, err := s.repo.Question().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}
	return question, nil
}

func (s *questionService) List(ctx context.Context, caller *auth.Identity, filters repositories.QuestionFilters) (*QuestionListResponse, error) {
	if err := authorize(auth.Staff(), caller, 0, "question", "list"); err != nil {
		return nil, err
	}
	questions, total, err := s.repo.Question().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	return &QuestionListResponse{Questions: questions, Total: total}, nil
}
