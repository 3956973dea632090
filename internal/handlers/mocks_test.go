package handlers

import (
	"context"

	"github.com/SAP-F-2025/interview-service/internal/auth"
	"github.com/SAP-F-2025/interview-service/internal/models"
	"github.com/SAP-F-2025/interview-service/internal/replay"
	"github.com/SAP-F-2025/interview-service/internal/repositories"
	"github.com/SAP-F-2025/interview-service/internal/services"
	"github.com/stretchr/testify/mock"
)

// MockUserService is a mock implementation of services.UserService
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Get(ctx context.Context, caller *auth.Identity, id string) (*models.User, error) {
	args := m.Called(ctx, caller, id)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *MockUserService) List(ctx context.Context, caller *auth.Identity, filters repositories.UserFilters) (*services.UserListResponse, error) {
	args := m.Called(ctx, caller, filters)
	resp, _ := args.Get(0).(*services.UserListResponse)
	return resp, args.Error(1)
}

// MockQuestionService is a mock implementation of services.QuestionService
type MockQuestionService struct {
	mock.Mock
}

func (m *MockQuestionService) CreateTag(ctx context.Context, caller *auth.Identity, req *services.CreateTagRequest) (*models.Tag, error) {
	args := m.Called(ctx, caller, req)
	tag, _ := args.Get(0).(*models.Tag)
	return tag, args.Error(1)
}

func (m *MockQuestionService) ListTags(ctx context.Context, caller *auth.Identity) ([]*models.Tag, error) {
	args := m.Called(ctx, caller)
	tags, _ := args.Get(0).([]*models.Tag)
	return tags, args.Error(1)
}

func (m *MockQuestionService) Create(ctx context.Context, caller *auth.Identity, req *services.CreateQuestionRequest) (*models.Question, error) {
	args := m.Called(ctx, caller, req)
	q, _ := args.Get(0).(*models.Question)
	return q, args.Error(1)
}

func (m *MockQuestionService) Get(ctx context.Context, caller *auth.Identity, id uint) (*models.Question, error) {
	args := m.Called(ctx, caller, id)
	q, _ := args.Get(0).(*models.Question)
	return q, args.Error(1)
}

func (m *MockQuestionService) List(ctx context.Context, caller *auth.Identity, filters repositories.QuestionFilters) (*services.QuestionListResponse, error) {
	args := m.Called(ctx, caller, filters)
	resp, _ := args.Get(0).(*services.QuestionListResponse)
	return resp, args.Error(1)
}

// MockTemplateService is a mock implementation of services.TemplateService
type MockTemplateService struct {
	mock.Mock
}

func (m *MockTemplateService) Create(ctx context.Context, caller *auth.Identity, req *services.CreateTemplateRequest) (*models.InterviewTemplate, error) {
	args := m.Called(ctx, caller, req)
	tmpl, _ := args.Get(0).(*models.InterviewTemplate)
	return tmpl, args.Error(1)
}

func (m *MockTemplateService) Get(ctx context.Context, caller *auth.Identity, id uint) (*models.InterviewTemplate, error) {
	args := m.Called(ctx, caller, id)
	tmpl, _ := args.Get(0).(*models.InterviewTemplate)
	return tmpl, args.Error(1)
}

func (m *MockTemplateService) List(ctx context.Context, caller *auth.Identity, filters repositories.TemplateFilters) (*services.TemplateListResponse, error) {
	args := m.Called(ctx, caller, filters)
	resp, _ := args.Get(0).(*services.TemplateListResponse)
	return resp, args.Error(1)
}

func (m *MockTemplateService) AddQuestion(ctx context.Context, caller *auth.Identity, templateID, questionID uint) (*models.InterviewTemplate, error) {
	args := m.Called(ctx, caller, templateID, questionID)
	tmpl, _ := args.Get(0).(*models.InterviewTemplate)
	return tmpl, args.Error(1)
}

func (m *MockTemplateService) Delete(ctx context.Context, caller *auth.Identity, id uint) error {
	args := m.Called(ctx, caller, id)
	return args.Error(0)
}

// MockInterviewService is a mock implementation of services.InterviewService
type MockInterviewService struct {
	mock.Mock
}

func (m *MockInterviewService) Create(ctx context.Context, caller *auth.Identity, req *services.CreateInterviewRequest) (*services.InterviewResponse, error) {
	args := m.Called(ctx, caller, req)
	resp, _ := args.Get(0).(*services.InterviewResponse)
	return resp, args.Error(1)
}

func (m *MockInterviewService) Get(ctx context.Context, caller *auth.Identity, id uint) (*services.InterviewResponse, error) {
	args := m.Called(ctx, caller, id)
	resp, _ := args.Get(0).(*services.InterviewResponse)
	return resp, args.Error(1)
}

func (m *MockInterviewService) List(ctx context.Context, caller *auth.Identity, filters repositories.InterviewFilters) (*services.InterviewListResponse, error) {
	args := m.Called(ctx, caller, filters)
	resp, _ := args.Get(0).(*services.InterviewListResponse)
	return resp, args.Error(1)
}

func (m *MockInterviewService) Update(ctx context.Context, caller *auth.Identity, id uint, req *services.UpdateInterviewRequest) (*services.InterviewResponse, error) {
	args := m.Called(ctx, caller, id, req)
	resp, _ := args.Get(0).(*services.InterviewResponse)
	return resp, args.Error(1)
}

func (m *MockInterviewService) Delete(ctx context.Context, caller *auth.Identity, id uint) error {
	args := m.Called(ctx, caller, id)
	return args.Error(0)
}

func (m *MockInterviewService) Complete(ctx context.Context, caller *auth.Identity, id uint) (*services.InterviewResponse, error) {
	args := m.Called(ctx, caller, id)
	resp, _ := args.Get(0).(*services.InterviewResponse)
	return resp, args.Error(1)
}

func (m *MockInterviewService) Evaluate(ctx context.Context, caller *auth.Identity, id uint, req *services.EvaluateInterviewRequest) (*services.InterviewResponse, error) {
	args := m.Called(ctx, caller, id, req)
	resp, _ := args.Get(0).(*services.InterviewResponse)
	return resp, args.Error(1)
}

// MockAnswerService is a mock implementation of services.AnswerService
type MockAnswerService struct {
	mock.Mock
}

func (m *MockAnswerService) SaveAnswer(ctx context.Context, caller *auth.Identity, interviewID, questionID uint, req *services.SaveAnswerRequest) (*models.Answer, error) {
	args := m.Called(ctx, caller, interviewID, questionID, req)
	answer, _ := args.Get(0).(*models.Answer)
	return answer, args.Error(1)
}

func (m *MockAnswerService) ListByInterview(ctx context.Context, caller *auth.Identity, interviewID uint) ([]*models.Answer, error) {
	args := m.Called(ctx, caller, interviewID)
	answers, _ := args.Get(0).([]*models.Answer)
	return answers, args.Error(1)
}

func (m *MockAnswerService) SaveKeystrokeBatch(ctx context.Context, caller *auth.Identity, answerID uint, req *services.KeystrokeBatchRequest) (*services.KeystrokeBatchResponse, error) {
	args := m.Called(ctx, caller, answerID, req)
	resp, _ := args.Get(0).(*services.KeystrokeBatchResponse)
	return resp, args.Error(1)
}

func (m *MockAnswerService) LoadKeystrokeEvents(ctx context.Context, caller *auth.Identity, answerID uint) ([]models.KeystrokeEvent, error) {
	args := m.Called(ctx, caller, answerID)
	events, _ := args.Get(0).([]models.KeystrokeEvent)
	return events, args.Error(1)
}

func (m *MockAnswerService) OpenCapture(ctx context.Context, caller *auth.Identity, answerID uint) ([]models.KeystrokeEvent, error) {
	args := m.Called(ctx, caller, answerID)
	events, _ := args.Get(0).([]models.KeystrokeEvent)
	return events, args.Error(1)
}

// MockReplayService is a mock implementation of services.ReplayService. Controller builds a
// real controller over the events the expectation returns so callbacks still fire.
type MockReplayService struct {
	mock.Mock
}

func (m *MockReplayService) TextAt(ctx context.Context, caller *auth.Identity, answerID uint, query services.ReplayQuery) (*services.ReplayFrame, error) {
	args := m.Called(ctx, caller, answerID, query)
	frame, _ := args.Get(0).(*services.ReplayFrame)
	return frame, args.Error(1)
}

func (m *MockReplayService) Controller(ctx context.Context, caller *auth.Identity, answerID uint, opts ...replay.Option) (*replay.Controller, error) {
	args := m.Called(ctx, caller, answerID)
	if err := args.Error(1); err != nil {
		return nil, err
	}
	events, _ := args.Get(0).([]models.KeystrokeEvent)
	return replay.New(events, opts...), nil
}

// MockExportService is a mock implementation of services.ExportService
type MockExportService struct {
	mock.Mock
}

func (m *MockExportService) ExportInterviews(ctx context.Context, caller *auth.Identity, filters repositories.InterviewFilters) ([]byte, error) {
	args := m.Called(ctx, caller, filters)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}
