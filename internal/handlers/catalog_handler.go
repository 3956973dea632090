package handlers

import (
	"net/http"
	"strings"

	"github.com/SAP-F-2025/interview-service/internal/models"
	"github.com/SAP-F-2025/interview-service/internal/repositories"
	"github.com/SAP-F-2025/interview-service/internal/services"
	"github.com/SAP-F-2025/interview-service/internal/utils"
	"github.com/gin-gonic/gin"
)

// CatalogHandler serves the reference data interviews are built from: users, tags,
// questions and templates.
type CatalogHandler struct {
	BaseHandler
	userService     services.UserService
	questionService services.QuestionService
	templateService services.TemplateService
}

func NewCatalogHandler(
	userService services.UserService,
	questionService services.QuestionService,
	templateService services.TemplateService,
	logger utils.Logger,
) *CatalogHandler {
	return &CatalogHandler{
		BaseHandler:     NewBaseHandler(logger),
		userService:     userService,
		questionService: questionService,
		templateService: templateService,
	}
}

// ===== USERS =====

// ListUsers lists users, optionally by role and a name or email search
// @Router /users [get]
func (h *CatalogHandler) ListUsers(c *gin.Context) {
	limit, offset, ok := parsePaging(c)
	if !ok {
		return
	}
	filters := repositories.UserFilters{
		Search: strings.TrimSpace(c.Query("search")),
		Limit:  limit,
		Offset: offset,
	}
	if raw := c.Query("role"); raw != "" {
		role, err := models.ParseUserRole(raw)
		if err != nil {
			writeQueryError(c, "role", err.Error())
			return
		}
		filters.Role = &role
	}

	users, err := h.userService.List(c.Request.Context(), caller(c), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// @Router /users/{id} [get]
func (h *CatalogHandler) GetUser(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}
	user, err := h.userService.Get(c.Request.Context(), caller(c), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// ===== TAGS =====

// @Router /tags [post]
func (h *CatalogHandler) CreateTag(c *gin.Context) {
	var req services.CreateTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "Invalid request payload", err)
		return
	}

	h.LogRequest(c, "Creating tag", "name", req.Name)

	tag, err := h.questionService.CreateTag(c.Request.Context(), caller(c), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, tag)
}

// @Router /tags [get]
func (h *CatalogHandler) ListTags(c *gin.Context) {
	tags, err := h.questionService.ListTags(c.Request.Context(), caller(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tags": tags})
}

// ===== QUESTIONS =====

// CreateQuestion creates a question; unknown tag names are created on the fly
// @Router /questions [post]
func (h *CatalogHandler) CreateQuestion(c *gin.Context) {
	var req services.CreateQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "Invalid request payload", err)
		return
	}

	h.LogRequest(c, "Creating question", "title", req.Title)

	question, err := h.questionService.Create(c.Request.Context(), caller(c), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, question)
}

// @Router /questions [get]
func (h *CatalogHandler) ListQuestions(c *gin.Context) {
	limit, offset, ok := parsePaging(c)
	if !ok {
		return
	}
	filters := repositories.QuestionFilters{
		Tag:    strings.TrimSpace(c.Query("tag")),
		Limit:  limit,
		Offset: offset,
	}
	if createdBy := c.Query("created_by"); createdBy != "" {
		filters.CreatedBy = &createdBy
	}

	questions, err := h.questionService.List(c.Request.Context(), caller(c), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, questions)
}

// @Router /questions/{id} [get]
func (h *CatalogHandler) GetQuestion(c *gin.Context) {
	id := ParseUintParam(c, "id")
	if id == 0 {
		return
	}
	question, err := h.questionService.Get(c.Request.Context(), caller(c), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, question)
}

// ===== TEMPLATES =====

// @Router /templates [post]
func (h *CatalogHandler) CreateTemplate(c *gin.Context) {
	var req services.CreateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "Invalid request payload", err)
		return
	}

	h.LogRequest(c, "Creating template", "name", req.Name, "questions", len(req.QuestionIDs))

	template, err := h.templateService.Create(c.Request.Context(), caller(c), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, template)
}

// @Router /templates [get]
func (h *CatalogHandler) ListTemplates(c *gin.Context) {
	limit, offset, ok := parsePaging(c)
	if !ok {
		return
	}
	filters := repositories.TemplateFilters{
		Search: strings.TrimSpace(c.Query("search")),
		Limit:  limit,
		Offset: offset,
	}
	if createdBy := c.Query("created_by"); createdBy != "" {
		filters.CreatedBy = &createdBy
	}

	templates, err := h.templateService.List(c.Request.Context(), caller(c), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, templates)
}

// @Router /templates/{id} [get]
func (h *CatalogHandler) GetTemplate(c *gin.Context) {
	id := ParseUintParam(c, "id")
	if id == 0 {
		return
	}
	template, err := h.templateService.Get(c.Request.Context(), caller(c), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, template)
}

// AddTemplateQuestion appends a question to a template. Adding it twice is a no-op.
// @Router /templates/{id}/questions/{question_id} [post]
func (h *CatalogHandler) AddTemplateQuestion(c *gin.Context) {
	id := ParseUintParam(c, "id")
	if id == 0 {
		return
	}
	questionID := ParseUintParam(c, "question_id")
	if questionID == 0 {
		return
	}

	h.LogRequest(c, "Adding question to template", "template_id", id, "question_id", questionID)

	template, err := h.templateService.AddQuestion(c.Request.Context(), caller(c), id, questionID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, template)
}

// @Router /templates/{id} [delete]
func (h *CatalogHandler) DeleteTemplate(c *gin.Context) {
	id := ParseUintParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Deleting template", "template_id", id)

	if err := h.templateService.Delete(c.Request.Context(), caller(c), id); err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Template deleted successfully", nil)
}
