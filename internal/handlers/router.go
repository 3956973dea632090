package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/interview-service/internal/auth"
	"github.com/SAP-F-2025/interview-service/internal/metrics"
	"github.com/SAP-F-2025/interview-service/internal/models"
	"github.com/SAP-F-2025/interview-service/internal/services"
	"github.com/SAP-F-2025/interview-service/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
)

type HandlerManager struct {
	catalogHandler   *CatalogHandler
	interviewHandler *InterviewHandler
	answerHandler    *AnswerHandler
	resolver         auth.Resolver
	logger           utils.Logger
}

// HandlerOptions carries the non-service settings the handlers need.
type HandlerOptions struct {
	Resolver           auth.Resolver
	Clock              clockwork.Clock
	KeystrokeBatchSize int
}

func NewHandlerManager(svc *services.Services, opts HandlerOptions, logger utils.Logger) *HandlerManager {
	return &HandlerManager{
		catalogHandler:   NewCatalogHandler(svc.User, svc.Question, svc.Template, logger),
		interviewHandler: NewInterviewHandler(svc.Interview, svc.Answer, svc.Export, logger),
		answerHandler:    NewAnswerHandler(svc.Answer, svc.Replay, opts.Clock, opts.KeystrokeBatchSize, logger),
		resolver:         opts.Resolver,
		logger:           logger,
	}
}

// NewRouter builds the engine with the full middleware chain and every route.
func (hm *HandlerManager) NewRouter() *gin.Engine {
	router := gin.New()
	router.Use(
		RequestID(),
		Recovery(hm.logger),
		utils.LoggerMiddleware(hm.logger),
		utils.ContextLogger(hm.logger),
		metrics.Middleware(),
	)
	hm.SetupRoutes(router)
	return router
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", HealthCheck)
	router.GET("/metrics", metrics.Handler())

	staff := RequireRole(models.RoleAdmin, models.RoleInterviewer)

	v1 := router.Group("/api/v1", Authenticate(hm.resolver), RequireIdentity())
	{
		users := v1.Group("/users", staff)
		{
			users.GET("", hm.catalogHandler.ListUsers)
			users.GET("/:id", hm.catalogHandler.GetUser)
		}

		tags := v1.Group("/tags", staff)
		{
			tags.POST("", hm.catalogHandler.CreateTag)
			tags.GET("", hm.catalogHandler.ListTags)
		}

		questions := v1.Group("/questions", staff)
		{
			questions.POST("", hm.catalogHandler.CreateQuestion)
			questions.GET("", hm.catalogHandler.ListQuestions)
			questions.GET("/:id", hm.catalogHandler.GetQuestion)
		}

		templates := v1.Group("/templates", staff)
		{
			templates.POST("", hm.catalogHandler.CreateTemplate)
			templates.GET("", hm.catalogHandler.ListTemplates)
			templates.GET("/:id", hm.catalogHandler.GetTemplate)
			templates.POST("/:id/questions/:question_id", hm.catalogHandler.AddTemplateQuestion)
			templates.DELETE("/:id", hm.catalogHandler.DeleteTemplate)
		}

		// Candidates reach their own interviews here; the services enforce ownership.
		interviews := v1.Group("/interviews")
		{
			interviews.POST("", staff, hm.interviewHandler.CreateInterview)
			interviews.GET("", hm.interviewHandler.ListInterviews)
			interviews.GET("/export", staff, hm.interviewHandler.ExportInterviews)
			interviews.GET("/:id", hm.interviewHandler.GetInterview)
			interviews.PUT("/:id", staff, hm.interviewHandler.UpdateInterview)
			interviews.DELETE("/:id", staff, hm.interviewHandler.DeleteInterview)
			interviews.POST("/:id/complete", hm.interviewHandler.CompleteInterview)
			interviews.POST("/:id/evaluation", staff, hm.interviewHandler.EvaluateInterview)

			interviews.GET("/:id/answers", hm.interviewHandler.ListAnswers)
			interviews.PUT("/:id/answers/:question_id", hm.interviewHandler.SaveAnswer)
		}

		answers := v1.Group("/answers")
		{
			answers.POST("/:id/keystrokes", hm.answerHandler.SaveKeystrokes)
			answers.GET("/:id/keystrokes", hm.answerHandler.GetKeystrokes)
			answers.GET("/:id/replay", hm.answerHandler.GetReplayFrame)
			answers.GET("/:id/replay/stream", hm.answerHandler.ReplayStream)
			answers.GET("/:id/capture", hm.answerHandler.CaptureStream)
		}
	}
}

func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "interview-service",
	})
}
