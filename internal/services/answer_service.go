package services

import (
	"context"
	"errors"
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

type answerService struct {
	repo      repositories.Repository
	log       *keystrokeLog
	notifier  NotificationEventService
	clock     clockwork.Clock
	logger    *slog.Logger
	ops       *ServiceLogger
	validator *validator.Validator
}

func NewAnswerService(
	repo repositories.Repository,
	cacheService cache.CacheService,
	cacheTTL time.Duration,
	notifier NotificationEventService,
	clock clockwork.Clock,
	logger *slog.Logger,
	validator *validator.Validator,
) AnswerService {
	return &answerService{
		repo:      repo,
		log:       newKeystrokeLog(repo, cacheService, cacheTTL, logger),
		notifier:  notifier,
		clock:     clock,
		logger:    logger,
		ops:       NewServiceLogger(logger, "answer"),
		validator: validator,
	}
}

// ===== ANSWER OPERATIONS =====

// SaveAnswer creates or overwrites the answer and marks the interview as started.
func (s *answerService) SaveAnswer(ctx context.Context, caller *auth.Identity, interviewID, questionID uint, req *SaveAnswerRequest) (answer *models.Answer, err error) {
	defer s.ops.Track(ctx, "answer.save", caller, interviewID, "interview")(&err)

	if err = authorize(auth.Authenticated(), caller, interviewID, "answer", "save"); err != nil {
		return nil, err
	}
	interview, err := s.loadInterview(ctx, interviewID)
	if err != nil {
		return nil, err
	}
	if err = authorize(auth.Owner(interview.CandidateID), caller, interviewID, "answer", "save"); err != nil {
		return nil, err
	}
	now := s.clock.Now()
	if err = CheckTransition(interview, OpAnswer, now); err != nil {
		return nil, err
	}
	if err = s.validator.Validate(req); err != nil {
		return nil, err
	}

	inTemplate, err := s.repo.Template().HasQuestion(ctx, nil, interview.TemplateID, questionID)
	if err != nil {
		return nil, fmt.Errorf("failed to check template question: %w", err)
	}
	if !inTemplate {
		return nil, fmt.Errorf("%w: question %d is not part of interview %d", ErrQuestionNotFound, questionID, interviewID)
	}

	s.logger.Info("Saving answer", "interview_id", interviewID, "question_id", questionID, "length", len(req.Text))

	err = s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		existing, getErr := s.repo.Answer().GetByInterviewAndQuestion(ctx, tx, interviewID, questionID)
		switch {
		case getErr == nil:
			existing.Text = req.Text
			if req.Language != "" {
				existing.Language = req.Language
			}
			if err := s.repo.Answer().Update(ctx, tx, existing); err != nil {
				return fmt.Errorf("failed to update answer: %w", err)
			}
			answer = existing
		case repositories.IsNotFoundError(getErr):
			answer = &models.Answer{
				InterviewID: interviewID,
				QuestionID:  questionID,
				Text:        req.Text,
				Language:    req.Language,
			}
			if err := s.repo.Answer().Create(ctx, tx, answer); err != nil {
				return fmt.Errorf("failed to create answer: %w", err)
			}
		default:
			return fmt.Errorf("failed to get answer: %w", getErr)
		}
		return s.repo.Interview().MarkStarted(ctx, tx, interviewID, now.UTC())
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Answer saved successfully", "answer_id", answer.ID)
	return answer, nil
}

func (s *answerService) ListByInterview(ctx context.Context, caller *auth.Identity, interviewID uint) ([]*models.Answer, error) {
	if err := authorize(auth.Authenticated(), caller, interviewID, "answer", "list"); err != nil {
		return nil, err
	}
	interview, err := s.loadInterview(ctx, interviewID)
	if err != nil {
		return nil, err
	}
	if err := authorize(auth.StaffOrOwner(interview.CandidateID), caller, interviewID, "answer", "list"); err != nil {
		return nil, err
	}

	answers, err := s.repo.Answer().ListByInterview(ctx, nil, interviewID)
	if err != nil {
		return nil, fmt.Errorf("failed to list answers: %w", err)
	}
	return answers, nil
}

// ===== KEYSTROKE LOG =====

// SaveKeystrokeBatch appends one recorder flush to the answer's log.
func (s *answerService) SaveKeystrokeBatch(ctx context.Context, caller *auth.Identity, answerID uint, req *KeystrokeBatchRequest) (resp *KeystrokeBatchResponse, err error) {
	defer s.ops.Track(ctx, "answer.keystrokes", caller, answerID, "answer")(&err)

	if err = authorize(auth.Authenticated(), caller, answerID, "keystrokes", "record"); err != nil {
		return nil, err
	}
	if err = s.validator.Validate(req); err != nil {
		return nil, err
	}

	answer, interview, err := loadAnswerScope(ctx, s.repo, caller, answerID, auth.Owner, "record")
	if err != nil {
		return nil, err
	}
	if err = CheckTransition(interview, OpRecord, s.clock.Now()); err != nil {
		return nil, err
	}

	seq, err := s.repo.Keystroke().AppendBatch(ctx, answerID, req.Events)
	if err != nil {
		return nil, fmt.Errorf("failed to append keystroke batch: %w", err)
	}
	if !answer.HasReplay {
		if err = s.repo.Answer().MarkHasReplay(ctx, nil, answerID); err != nil {
			return nil, fmt.Errorf("failed to mark answer replayable: %w", err)
		}
	}
	s.log.invalidate(ctx, answerID)

	metrics.KeystrokeBatches.Inc()
	metrics.KeystrokeEvents.Add(float64(len(req.Events)))
	s.logger.Debug("Keystroke batch stored", "answer_id", answerID, "batch_seq", seq, "events", len(req.Events))

	if notifyErr := s.notifier.NotifyKeystrokesRecorded(ctx, answer, interview.CandidateID, seq, len(req.Events)); notifyErr != nil {
		s.logger.Warn("Failed to publish keystroke event", "answer_id", answerID, "error", notifyErr)
	}

	return &KeystrokeBatchResponse{AnswerID: answerID, BatchSeq: seq, Stored: len(req.Events)}, nil
}

func (s *answerService) LoadKeystrokeEvents(ctx context.Context, caller *auth.Identity, answerID uint) ([]models.KeystrokeEvent, error) {
	if err := authorize(auth.Authenticated(), caller, answerID, "keystrokes", "read"); err != nil {
		return nil, err
	}
	if _, _, err := loadAnswerScope(ctx, s.repo, caller, answerID, auth.StaffOrOwner, "read"); err != nil {
		return nil, err
	}
	return s.log.load(ctx, answerID)
}

// OpenCapture applies the same gates as SaveKeystrokeBatch, so a live session is refused up front
// instead of failing on every flush.
func (s *answerService) OpenCapture(ctx context.Context, caller *auth.Identity, answerID uint) ([]models.KeystrokeEvent, error) {
	if err := authorize(auth.Authenticated(), caller, answerID, "keystrokes", "record"); err != nil {
		return nil, err
	}
	_, interview, err := loadAnswerScope(ctx, s.repo, caller, answerID, auth.Owner, "record")
	if err != nil {
		return nil, err
	}
	if err := CheckTransition(interview, OpRecord, s.clock.Now()); err != nil {
		return nil, err
	}
	return s.log.load(ctx, answerID)
}

func (s *answerService) loadInterview(ctx context.Context, id uint) (*models.Interview, error) {
	interview, err := s.repo.Interview().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrInterviewNotFound
		}
		return nil, fmt.Errorf("failed to get interview: %w", err)
	}
	return interview, nil
}

// ===== SHARED HELPERS =====

// loadAnswerScope loads the answer with its interview and applies gate to the interview's candidate.
func loadAnswerScope(ctx context.Context, repo repositories.Repository, caller *auth.Identity, answerID uint, gate func(ownerID string) auth.Gate, action string) (*models.Answer, *models.Interview, error) {
	answer, err := repo.Answer().GetByID(ctx, nil, answerID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, nil, ErrAnswerNotFound
		}
		return nil, nil, fmt.Errorf("failed to get answer: %w", err)
	}
	interview, err := repo.Interview().GetByID(ctx, nil, answer.InterviewID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, nil, ErrInterviewNotFound
		}
		return nil, nil, fmt.Errorf("failed to get interview: %w", err)
	}
	if err := authorize(gate(interview.CandidateID), caller, answerID, "keystrokes", action); err != nil {
		return nil, nil, err
	}
	return answer, interview, nil
}

// keystrokeLog reads answer logs through the cache.
type keystrokeLog struct {
	repo   repositories.Repository
	cache  cache.CacheService
	ttl    time.Duration
	logger *slog.Logger
}

func newKeystrokeLog(repo repositories.Repository, cacheService cache.CacheService, ttl time.Duration, logger *slog.Logger) *keystrokeLog {
	if cacheService == nil {
		cacheService = cache.NoopCache{}
	}
	return &keystrokeLog{repo: repo, cache: cacheService, ttl: ttl, logger: logger}
}

func (l *keystrokeLog) load(ctx context.Context, answerID uint) ([]models.KeystrokeEvent, error) {
	key := cache.KeystrokeKey(answerID)

	var cached []models.KeystrokeEvent
	err := l.cache.Get(ctx, key, &cached)
	if err == nil {
		metrics.KeystrokeCacheLookups.WithLabelValues("hit").Inc()
		return cached, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		l.logger.Warn("Keystroke cache read failed", "answer_id", answerID, "error", err)
	}
	metrics.KeystrokeCacheLookups.WithLabelValues("miss").Inc()

	events, err := l.repo.Keystroke().Load(ctx, answerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load keystroke events: %w", err)
	}
	if err := l.cache.Set(ctx, key, events, l.ttl); err != nil {
		l.logger.Warn("Keystroke cache write failed", "answer_id", answerID, "error", err)
	}
	return events, nil
}

func (l *keystrokeLog) invalidate(ctx context.Context, answerID uint) {
	if err := l.cache.Delete(ctx, cache.KeystrokeKey(answerID)); err != nil {
		l.logger.Warn("Keystroke cache eviction failed", "answer_id", answerID, "error", err)
	}
}
