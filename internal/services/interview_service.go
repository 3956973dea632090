package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/interview-service/internal/auth"
	"github.com/SAP-F-2025/interview-service/internal/cache"
	"github.com/SAP-F-2025/interview-service/internal/metrics"
	"github.com/SAP-F-2025/interview-service/internal/models"
	"github.com/SAP-F-2025/interview-service/internal/repositories"
	"github.com/SAP-F-2025/interview-service/internal/validator"
	"github.com/jonboulle/clockwork"
	"gorm.io/gorm"
)

type interviewService struct {
	repo      repositories.Repository
	cache     cache.CacheService
	notifier  NotificationEventService
	clock     clockwork.Clock
	logger    *slog.Logger
	ops       *ServiceLogger
	validator *validator.Validator
	rules     *ValidationService
}

func NewInterviewService(
	repo repositories.Repository,
	cacheService cache.CacheService,
	notifier NotificationEventService,
	clock clockwork.Clock,
	logger *slog.Logger,
	validator *validator.Validator,
) InterviewService {
	return &interviewService{
		repo:      repo,
		cache:     cacheService,
		notifier:  notifier,
		clock:     clock,
		logger:    logger,
		ops:       NewServiceLogger(logger, "interview"),
		validator: validator,
		rules:     NewValidationService(repo),
	}
}

// ===== CORE CRUD OPERATIONS =====

func (s *interviewService) Create(ctx context.Context, caller *auth.Identity, req *CreateInterviewRequest) (resp *InterviewResponse, err error) {
	defer s.ops.Track(ctx, "interview.create", caller, 0, "interview")(&err)
	defer func() { metrics.InterviewTransitions.WithLabelValues("create", metrics.Outcome(err)).Inc() }()

	if err = authorize(auth.Staff(), caller, 0, "interview", "create"); err != nil {
		return nil, err
	}
	if err = s.validator.Validate(req); err != nil {
		return nil, err
	}
	s.logger.Info("Creating interview", "template_id", req.TemplateID, "candidate_id", req.CandidateID, "created_by", caller.UserID)

	interview, err := s.rules.ValidateInterviewCreate(ctx, req, caller, s.clock.Now())
	if err != nil {
		return nil, err
	}

	if err = s.repo.Interview().Create(ctx, nil, interview); err != nil {
		return nil, fmt.Errorf("failed to create interview: %w", err)
	}

	s.logger.Info("Interview created successfully", "interview_id", interview.ID)
	s.notify(s.notifier.NotifyInterviewCreated(ctx, interview, caller.UserID), interview.ID)

	return s.getWithDetails(ctx, interview.ID)
}

func (s *interviewService) Get(ctx context.Context, caller *auth.Identity, id uint) (*InterviewResponse, error) {
	if err := authorize(auth.Authenticated(), caller, id, "interview", "read"); err != nil {
		return nil, err
	}

	resp, err := s.getWithDetails(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(auth.StaffOrOwner(resp.CandidateID), caller, id, "interview", "read"); err != nil {
		return nil, err
	}
	return resp, nil
}

// List shows candidates only their own interviews whatever the filters say.
func (s *interviewService) List(ctx context.Context, caller *auth.Identity, filters repositories.InterviewFilters) (*InterviewListResponse, error) {
	if err := authorize(auth.Authenticated(), caller, 0, "interview", "list"); err != nil {
		return nil, err
	}
	if caller.Role == models.RoleCandidate {
		own := caller.UserID
		filters.CandidateID = &own
	}

	now := s.clock.Now()
	filters.At = now

	interviews, total, err := s.repo.Interview().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list interviews: %w", err)
	}

	out := make([]*InterviewResponse, len(interviews))
	for i, iv := range interviews {
		out[i] = toInterviewResponse(iv, now)
	}
	return &InterviewListResponse{
		Interviews: out,
		Total:      total,
		Limit:      filters.Limit,
		Offset:     filters.Offset,
	}, nil
}

func (s *interviewService) Update(ctx context.Context, caller *auth.Identity, id uint, req *UpdateInterviewRequest) (resp *InterviewResponse, err error) {
	defer s.ops.Track(ctx, "interview.update", caller, id, "interview")(&err)
	defer func() { metrics.InterviewTransitions.WithLabelValues(string(OpUpdate), metrics.Outcome(err)).Inc() }()

	if err = authorize(auth.Staff(), caller, id, "interview", "update"); err != nil {
		return nil, err
	}
	s.logger.Info("Updating interview", "interview_id", id, "user_id", caller.UserID)

	interview, err := s.load(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	if err = CheckTransition(interview, OpUpdate, now); err != nil {
		return nil, err
	}

	if err = s.rules.ApplyInterviewUpdate(ctx, req, interview, now); err != nil {
		return nil, err
	}

	if err = s.repo.Interview().Update(ctx, nil, interview); err != nil {
		return nil, fmt.Errorf("failed to update interview: %w", err)
	}

	s.logger.Info("Interview updated successfully", "interview_id", id)
	s.notify(s.notifier.NotifyInterviewUpdated(ctx, interview, caller.UserID), id)

	return s.getWithDetails(ctx, id)
}

// Delete removes the interview, its answers and their keystroke logs.
func (s *interviewService) Delete(ctx context.Context, caller *auth.Identity, id uint) (err error) {
	defer s.ops.Track(ctx, "interview.delete", caller, id, "interview")(&err)
	defer func() { metrics.InterviewTransitions.WithLabelValues(string(OpDelete), metrics.Outcome(err)).Inc() }()

	if err = authorize(auth.Staff(), caller, id, "interview", "delete"); err != nil {
		return err
	}
	s.logger.Info("Deleting interview", "interview_id", id, "user_id", caller.UserID)

	interview, err := s.load(ctx, nil, id)
	if err != nil {
		return err
	}
	if err = CheckTransition(interview, OpDelete, s.clock.Now()); err != nil {
		return err
	}

	answerIDs, err := s.repo.Answer().IDsByInterview(ctx, nil, id)
	if err != nil {
		return fmt.Errorf("failed to list answers: %w", err)
	}

	err = s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		return s.repo.Interview().Delete(ctx, tx, id)
	})
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrInterviewNotFound
		}
		return fmt.Errorf("failed to delete interview: %w", err)
	}

	// The keystroke store may be a different database, so it is cleaned after the commit.
	if err = s.repo.Keystroke().DeleteByAnswers(ctx, answerIDs); err != nil {
		return fmt.Errorf("failed to delete keystroke events: %w", err)
	}
	if len(answerIDs) > 0 {
		keys := make([]string, len(answerIDs))
		for i, answerID := range answerIDs {
			keys[i] = cache.KeystrokeKey(answerID)
		}
		if cacheErr := s.cache.Delete(ctx, keys...); cacheErr != nil {
			s.logger.Warn("Failed to evict keystroke cache", "interview_id", id, "error", cacheErr)
		}
	}

	s.logger.Info("Interview deleted successfully", "interview_id", id, "answers", len(answerIDs))
	s.notify(s.notifier.NotifyInterviewDeleted(ctx, interview, caller.UserID), id)
	return nil
}

// ===== LIFECYCLE OPERATIONS =====

func (s *interviewService) Complete(ctx context.Context, caller *auth.Identity, id uint) (resp *InterviewResponse, err error) {
	defer s.ops.Track(ctx, "interview.complete", caller, id, "interview")(&err)
	defer func() { metrics.InterviewTransitions.WithLabelValues(string(OpComplete), metrics.Outcome(err)).Inc() }()

	if err = authorize(auth.Authenticated(), caller, id, "interview", "complete"); err != nil {
		return nil, err
	}

	interview, err := s.load(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if err = authorize(auth.Owner(interview.CandidateID), caller, id, "interview", "complete"); err != nil {
		return nil, err
	}
	now := s.clock.Now()
	if err = CheckTransition(interview, OpComplete, now); err != nil {
		return nil, err
	}

	s.logger.Info("Completing interview", "interview_id", id, "candidate_id", caller.UserID)
	completedAt := now.UTC()
	interview.CompletedAt = &completedAt
	if err = s.repo.Interview().Update(ctx, nil, interview); err != nil {
		return nil, fmt.Errorf("failed to complete interview: %w", err)
	}

	answerIDs, err := s.repo.Answer().IDsByInterview(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("failed to count answers: %w", err)
	}
	s.notify(s.notifier.NotifyInterviewCompleted(ctx, interview, len(answerIDs)), id)

	return s.getWithDetails(ctx, id)
}

func (s *interviewService) Evaluate(ctx context.Context, caller *auth.Identity, id uint, req *EvaluateInterviewRequest) (resp *InterviewResponse, err error) {
	defer s.ops.Track(ctx, "interview.evaluate", caller, id, "interview")(&err)
	defer func() { metrics.InterviewTransitions.WithLabelValues(string(OpEvaluate), metrics.Outcome(err)).Inc() }()

	if err = authorize(auth.Staff(), caller, id, "interview", "evaluate"); err != nil {
		return nil, err
	}
	if err = s.validator.Validate(req); err != nil {
		return nil, err
	}

	interview, err := s.load(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	if err = CheckTransition(interview, OpEvaluate, now); err != nil {
		return nil, err
	}

	s.logger.Info("Evaluating interview", "interview_id", id, "value", req.Value, "evaluator_id", caller.UserID)
	value := req.Value
	evaluatedAt := now.UTC()
	interview.EvaluationValue = &value
	interview.EvaluationNotes = req.Notes
	interview.EvaluatedAt = &evaluatedAt
	if err = s.repo.Interview().Update(ctx, nil, interview); err != nil {
		return nil, fmt.Errorf("failed to evaluate interview: %w", err)
	}

	s.notify(s.notifier.NotifyInterviewEvaluated(ctx, interview, caller.UserID), id)
	return s.getWithDetails(ctx, id)
}

// ===== HELPERS =====

func (s *interviewService) load(ctx context.Context, tx *gorm.DB, id uint) (*models.Interview, error) {
	interview, err := s.repo.Interview().GetByID(ctx, tx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrInterviewNotFound
		}
		return nil, fmt.Errorf("failed to get interview: %w", err)
	}
	return interview, nil
}

func (s *interviewService) getWithDetails(ctx context.Context, id uint) (*InterviewResponse, error) {
	interview, err := s.repo.Interview().GetByIDWithDetails(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrInterviewNotFound
		}
		return nil, fmt.Errorf("failed to get interview with details: %w", err)
	}
	return toInterviewResponse(interview, s.clock.Now()), nil
}

// notify logs publish failures. The change is already committed at this point.
func (s *interviewService) notify(err error, interviewID uint) {
	if err != nil {
		s.logger.Warn("Failed to publish interview event", "interview_id", interviewID, "error", err)
	}
}

func toInterviewResponse(interview *models.Interview, now time.Time) *InterviewResponse {
	return &InterviewResponse{
		Interview: interview,
		Status:    interview.StatusAt(now),
	}
}
