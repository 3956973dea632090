package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/interview-service/internal/auth"
	"github.com/SAP-F-2025/interview-service/internal/cache"
	"github.com/SAP-F-2025/interview-service/internal/events"
	"github.com/SAP-F-2025/interview-service/internal/keystroke"
	"github.com/SAP-F-2025/interview-service/internal/models"
	"github.com/SAP-F-2025/interview-service/internal/replay"
	"github.com/SAP-F-2025/interview-service/internal/repositories"
	"github.com/SAP-F-2025/interview-service/internal/validator"
	"github.com/jonboulle/clockwork"
)

// ===== SERVICE INTERFACES =====
// Every method takes the caller's identity. A nil identity is an unauthenticated caller.

type UserService interface {
	Get(ctx context.Context, caller *auth.Identity, id string) (*models.User, error)
	List(ctx context.Context, caller *auth.Identity, filters repositories.UserFilters) (*UserListResponse, error)
}

type QuestionService interface {
	CreateTag(ctx context.Context, caller *auth.Identity, req *CreateTagRequest) (*models.Tag, error)
	ListTags(ctx context.Context, caller *auth.Identity) ([]*models.Tag, error)

	Create(ctx context.Context, caller *auth.Identity, req *CreateQuestionRequest) (*models.Question, error)
	Get(ctx context.Context, caller *auth.Identity, id uint) (*models.Question, error)
	List(ctx context.Context, caller *auth.Identity, filters repositories.QuestionFilters) (*QuestionListResponse, error)
}

type TemplateService interface {
	Create(ctx context.Context, caller *auth.Identity, req *CreateTemplateRequest) (*models.InterviewTemplate, error)
	Get(ctx context.Context, caller *auth.Identity, id uint) (*models.InterviewTemplate, error)
	List(ctx context.Context, caller *auth.Identity, filters repositories.TemplateFilters) (*TemplateListResponse, error)
	AddQuestion(ctx context.Context, caller *auth.Identity, templateID, questionID uint) (*models.InterviewTemplate, error)
	Delete(ctx context.Context, caller *auth.Identity, id uint) error
}

type InterviewService interface {
	Create(ctx context.Context, caller *auth.Identity, req *CreateInterviewRequest) (*InterviewResponse, error)
	Get(ctx context.Context, caller *auth.Identity, id uint) (*InterviewResponse, error)
	List(ctx context.Context, caller *auth.Identity, filters repositories.InterviewFilters) (*InterviewListResponse, error)
	Update(ctx context.Context, caller *auth.Identity, id uint, req *UpdateInterviewRequest) (*InterviewResponse, error)
	Delete(ctx context.Context, caller *auth.Identity, id uint) error
	Complete(ctx context.Context, caller *auth.Identity, id uint) (*InterviewResponse, error)
	Evaluate(ctx context.Context, caller *auth.Identity, id uint, req *EvaluateInterviewRequest) (*InterviewResponse, error)
}

type AnswerService interface {
	SaveAnswer(ctx context.Context, caller *auth.Identity, interviewID, questionID uint, req *SaveAnswerRequest) (*models.Answer, error)
	ListByInterview(ctx context.Context, caller *auth.Identity, interviewID uint) ([]*models.Answer, error)
	SaveKeystrokeBatch(ctx context.Context, caller *auth.Identity, answerID uint, req *KeystrokeBatchRequest) (*KeystrokeBatchResponse, error)
	// LoadKeystrokeEvents returns the log in storage order. Callers sort before reconstructing.
	LoadKeystrokeEvents(ctx context.Context, caller *auth.Identity, answerID uint) ([]models.KeystrokeEvent, error)
	// OpenCapture checks that caller may record into the answer right now and returns the stored log.
	OpenCapture(ctx context.Context, caller *auth.Identity, answerID uint) ([]models.KeystrokeEvent, error)
}

type ReplayService interface {
	TextAt(ctx context.Context, caller *auth.Identity, answerID uint, query ReplayQuery) (*ReplayFrame, error)
	// Controller builds a replay controller over the answer's sorted log. The caller owns it.
	Controller(ctx context.Context, caller *auth.Identity, answerID uint, opts ...replay.Option) (*replay.Controller, error)
}

type ExportService interface {
	ExportInterviews(ctx context.Context, caller *auth.Identity, filters repositories.InterviewFilters) ([]byte, error)
}

// ===== REQUEST / RESPONSE TYPES =====

type CreateTagRequest struct {
	Name string `json:"name" validate:"required,max=50"`
}

type CreateQuestionRequest struct {
	Title       string   `json:"title" validate:"required,min=1,max=200"`
	Description string   `json:"description" validate:"max=10000"`
	Tags        []string `json:"tags" validate:"max=20,dive,min=1,max=50"`
}

type CreateTemplateRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=200"`
	Description string `json:"description" validate:"max=10000"`
	QuestionIDs []uint `json:"question_ids" validate:"max=100"`
}

// CreateInterviewRequest. Deadline accepts RFC 3339 or a YYYY-MM-DD date (midnight UTC).
// InterviewerID defaults to the caller when the caller is an interviewer.
type CreateInterviewRequest struct {
	TemplateID    uint                   `json:"template_id" validate:"required"`
	CandidateID   string                 `json:"candidate_id" validate:"required"`
	InterviewerID string                 `json:"interviewer_id"`
	Deadline      string                 `json:"deadline" validate:"required"`
	Metadata      map[string]interface{} `json:"metadata"`
}

type UpdateInterviewRequest struct {
	Deadline      *string `json:"deadline"`
	InterviewerID *string `json:"interviewer_id"`
}

type EvaluateInterviewRequest struct {
	Value models.EvaluationValue `json:"value" validate:"required,evaluation_value"`
	Notes string                 `json:"notes" validate:"max=10000"`
}

// InterviewResponse adds the status derived at read time.
type InterviewResponse struct {
	*models.Interview
	Status models.InterviewStatus `json:"status"`
}

type InterviewListResponse struct {
	Interviews []*InterviewResponse `json:"interviews"`
	Total      int64                `json:"total"`
	Limit      int                  `json:"limit"`
	Offset     int                  `json:"offset"`
}

type UserListResponse struct {
	Users []*models.User `json:"users"`
	Total int64          `json:"total"`
}

type QuestionListResponse struct {
	Questions []*models.Question `json:"questions"`
	Total     int64              `json:"total"`
}

type TemplateListResponse struct {
	Templates []*models.InterviewTemplate `json:"templates"`
	Total     int64                       `json:"total"`
}

type SaveAnswerRequest struct {
	Text     string `json:"text" validate:"max=200000"`
	Language string `json:"language" validate:"omitempty,max=50"`
}

type KeystrokeBatchRequest struct {
	Events []models.KeystrokeEvent `json:"events" validate:"required,min=1,max=1000,dive"`
}

type KeystrokeBatchResponse struct {
	AnswerID uint `json:"answer_id"`
	BatchSeq int  `json:"batch_seq"`
	Stored   int  `json:"stored"`
}

// ReplayQuery selects a point in the log. AtMs wins when both are set; neither means the end.
type ReplayQuery struct {
	AtMs    *int64
	Percent *float64
}

type ReplayFrame struct {
	AnswerID   uint    `json:"answer_id"`
	Text       string  `json:"text"`
	Index      int     `json:"index"`
	Progress   float64 `json:"progress"`
	EventCount int     `json:"event_count"`
	// MatchesAnswer reports whether the full reconstruction equals the saved answer text.
	MatchesAnswer bool                `json:"matches_answer"`
	Anomalies     []keystroke.Anomaly `json:"anomalies,omitempty"`
}

// ===== WIRING =====

// Services is the full service layer the handlers and jobs are built on.
type Services struct {
	User      UserService
	Question  QuestionService
	Template  TemplateService
	Interview InterviewService
	Answer    AnswerService
	Replay    ReplayService
	Export    ExportService

	Notifications NotificationEventService
}

// Dependencies are the collaborators every service is built from.
type Dependencies struct {
	Repo      repositories.Repository
	Cache     cache.CacheService
	CacheTTL  time.Duration
	Publisher events.EventPublisher
	Clock     clockwork.Clock
	Logger    *slog.Logger
	Validator *validator.Validator
}

func NewServices(deps Dependencies) *Services {
	if deps.Cache == nil {
		deps.Cache = cache.NoopCache{}
	}
	if deps.Clock == nil {
		deps.Clock = clockwork.NewRealClock()
	}
	notifier := NewNotificationEventService(deps.Publisher, deps.Clock, deps.Logger)

	return &Services{
		User:          NewUserService(deps.Repo, deps.Logger),
		Question:      NewQuestionService(deps.Repo, deps.Logger, deps.Validator),
		Template:      NewTemplateService(deps.Repo, deps.Logger, deps.Validator),
		Interview:     NewInterviewService(deps.Repo, deps.Cache, notifier, deps.Clock, deps.Logger, deps.Validator),
		Answer:        NewAnswerService(deps.Repo, deps.Cache, deps.CacheTTL, notifier, deps.Clock, deps.Logger, deps.Validator),
		Replay:        NewReplayService(deps.Repo, deps.Cache, deps.CacheTTL, deps.Clock, deps.Logger),
		Export:        NewExportService(deps.Repo, deps.Clock, deps.Logger),
		Notifications: notifier,
	}
}
