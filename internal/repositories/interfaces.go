package repositories

import (
	"context"
	"time"

	"github.com/SAP-F-2025/interview-service/internal/models"
	"gorm.io/gorm"
)

// ===== SHARED FILTER STRUCTS =====

type UserFilters struct {
	Role   *models.UserRole `json:"role"`
	Search string           `json:"search"`
	Limit  int              `json:"limit"`
	Offset int              `json:"offset"`
}

type QuestionFilters struct {
	Tag       string  `json:"tag"`
	CreatedBy *string `json:"created_by"`
	Limit     int     `json:"limit"`
	Offset    int     `json:"offset"`
}

type TemplateFilters struct {
	CreatedBy *string `json:"created_by"`
	Search    string  `json:"search"`
	Limit     int     `json:"limit"`
	Offset    int     `json:"offset"`
}

// InterviewFilters. Status is derived, so filtering by it needs the evaluation time in At.
type InterviewFilters struct {
	Status        *models.InterviewStatus `json:"status"`
	At            time.Time               `json:"-"`
	CandidateID   *string                 `json:"candidate_id"`
	InterviewerID *string                 `json:"interviewer_id"`
	TemplateID    *uint                   `json:"template_id"`
	Limit         int                     `json:"limit"`
	Offset        int                     `json:"offset"`
	SortBy        string                  `json:"sort_by"`    // "created_at", "deadline"
	SortOrder     string                  `json:"sort_order"` // "asc", "desc"
}

// ===== REPOSITORY INTERFACES =====

// Repository groups the per-entity repositories. Methods taking tx run on it when non-nil.
type Repository interface {
	User() UserRepository
	Tag() TagRepository
	Question() QuestionRepository
	Template() TemplateRepository
	Interview() InterviewRepository
	Answer() AnswerRepository
	Keystroke() KeystrokeRepository

	// WithTransaction commits when fn returns nil and rolls back otherwise.
	WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type UserRepository interface {
	Create(ctx context.Context, tx *gorm.DB, user *models.User) error
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.User, error)
	List(ctx context.Context, tx *gorm.DB, filters UserFilters) ([]*models.User, int64, error)
}

type TagRepository interface {
	// Ensure returns the tags with the given names, creating the missing ones.
	Ensure(ctx context.Context, tx *gorm.DB, names []string) ([]models.Tag, error)
	List(ctx context.Context, tx *gorm.DB) ([]*models.Tag, error)
}

type QuestionRepository interface {
	Create(ctx context.Context, tx *gorm.DB, question *models.Question) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Question, error)
	List(ctx context.Context, tx *gorm.DB, filters QuestionFilters) ([]*models.Question, int64, error)
}

type TemplateRepository interface {
	Create(ctx context.Context, tx *gorm.DB, template *models.InterviewTemplate) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.InterviewTemplate, error)
	GetByIDWithQuestions(ctx context.Context, tx *gorm.DB, id uint) (*models.InterviewTemplate, error)
	List(ctx context.Context, tx *gorm.DB, filters TemplateFilters) ([]*models.InterviewTemplate, int64, error)
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	AddQuestion(ctx context.Context, tx *gorm.DB, templateID, questionID uint) error
	CountQuestions(ctx context.Context, tx *gorm.DB, templateID uint) (int64, error)
	HasQuestion(ctx context.Context, tx *gorm.DB, templateID, questionID uint) (bool, error)
	IsInUse(ctx context.Context, tx *gorm.DB, templateID uint) (bool, error)
}

type InterviewRepository interface {
	Create(ctx context.Context, tx *gorm.DB, interview *models.Interview) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Interview, error)
	GetByIDWithDetails(ctx context.Context, tx *gorm.DB, id uint) (*models.Interview, error)
	Update(ctx context.Context, tx *gorm.DB, interview *models.Interview) error
	// Delete removes the interview and its answers. Keystroke logs live in KeystrokeRepository.
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
	List(ctx context.Context, tx *gorm.DB, filters InterviewFilters) ([]*models.Interview, int64, error)

	// MarkStarted sets started_at unless it is already set.
	MarkStarted(ctx context.Context, tx *gorm.DB, id uint, at time.Time) error
	// ListExpiredUnannounced returns interviews past deadline, not completed, never announced.
	ListExpiredUnannounced(ctx context.Context, tx *gorm.DB, now time.Time, limit int) ([]*models.Interview, error)
	MarkExpiryNotified(ctx context.Context, tx *gorm.DB, id uint, at time.Time) error
}

type AnswerRepository interface {
	Create(ctx context.Context, tx *gorm.DB, answer *models.Answer) error
	Update(ctx context.Context, tx *gorm.DB, answer *models.Answer) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Answer, error)
	GetByInterviewAndQuestion(ctx context.Context, tx *gorm.DB, interviewID, questionID uint) (*models.Answer, error)
	ListByInterview(ctx context.Context, tx *gorm.DB, interviewID uint) ([]*models.Answer, error)
	IDsByInterview(ctx context.Context, tx *gorm.DB, interviewID uint) ([]uint, error)
	MarkHasReplay(ctx context.Context, tx *gorm.DB, id uint) error
}

// KeystrokeRepository is the append-only event log store. It may live outside the
// relational database, so it takes no transaction.
type KeystrokeRepository interface {
	// AppendBatch stores events after every earlier batch and returns the batch sequence number.
	AppendBatch(ctx context.Context, answerID uint, events []models.KeystrokeEvent) (int, error)
	// Load returns events in emission order. Callers still sort by timestamp before replay.
	Load(ctx context.Context, answerID uint) ([]models.KeystrokeEvent, error)
	Count(ctx context.Context, answerID uint) (int64, error)
	DeleteByAnswers(ctx context.Context, answerIDs []uint) error
}
