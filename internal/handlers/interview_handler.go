package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/SAP-F-2025/interview-service/internal/models"
	"github.com/SAP-F-2025/interview-service/internal/repositories"
	"github.com/SAP-F-2025/interview-service/internal/services"
	"github.com/SAP-F-2025/interview-service/internal/utils"
	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type InterviewHandler struct {
	BaseHandler
	interviewService services.InterviewService
	answerService    services.AnswerService
	exportService    services.ExportService
}

func NewInterviewHandler(
	interviewService services.InterviewService,
	answerService services.AnswerService,
	exportService services.ExportService,
	logger utils.Logger,
) *InterviewHandler {
	return &InterviewHandler{
		BaseHandler:      NewBaseHandler(logger),
		interviewService: interviewService,
		answerService:    answerService,
		exportService:    exportService,
	}
}

// CreateInterview schedules an interview from a template
// @Summary Create interview
// @Tags interviews
// @Accept json
// @Produce json
// @Param interview body services.CreateInterviewRequest true "Interview data"
// @Success 201 {object} services.InterviewResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /interviews [post]
func (h *InterviewHandler) CreateInterview(c *gin.Context) {
	var req services.CreateInterviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "Invalid request payload", err)
		return
	}

	h.LogRequest(c, "Creating interview", "template_id", req.TemplateID, "candidate_id", req.CandidateID)

	interview, err := h.interviewService.Create(c.Request.Context(), caller(c), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, interview)
}

// ListInterviews lists interviews. Candidates only ever see their own.
// @Router /interviews [get]
func (h *InterviewHandler) ListInterviews(c *gin.Context) {
	filters, ok := parseInterviewFilters(c)
	if !ok {
		return
	}

	interviews, err := h.interviewService.List(c.Request.Context(), caller(c), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, interviews)
}

// @Router /interviews/{id} [get]
func (h *InterviewHandler) GetInterview(c *gin.Context) {
	id := ParseUintParam(c, "id")
	if id == 0 {
		return
	}
	interview, err := h.interviewService.Get(c.Request.Context(), caller(c), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, interview)
}

// UpdateInterview changes the deadline or interviewer of a pending interview
// @Router /interviews/{id} [put]
func (h *InterviewHandler) UpdateInterview(c *gin.Context) {
	id := ParseUintParam(c, "id")
	if id == 0 {
		return
	}

	var req services.UpdateInterviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "Invalid request payload", err)
		return
	}

	h.LogRequest(c, "Updating interview", "interview_id", id)

	interview, err := h.interviewService.Update(c.Request.Context(), caller(c), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, interview)
}

// @Router /interviews/{id} [delete]
func (h *InterviewHandler) DeleteInterview(c *gin.Context) {
	id := ParseUintParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Deleting interview", "interview_id", id)

	if err := h.interviewService.Delete(c.Request.Context(), caller(c), id); err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Interview deleted successfully", nil)
}

// CompleteInterview is the candidate handing in
// @Router /interviews/{id}/complete [post]
func (h *InterviewHandler) CompleteInterview(c *gin.Context) {
	id := ParseUintParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Completing interview", "interview_id", id)

	interview, err := h.interviewService.Complete(c.Request.Context(), caller(c), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, interview)
}

// @Router /interviews/{id}/evaluation [post]
func (h *InterviewHandler) EvaluateInterview(c *gin.Context) {
	id := ParseUintParam(c, "id")
	if id == 0 {
		return
	}

	var req services.EvaluateInterviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "Invalid request payload", err)
		return
	}

	h.LogRequest(c, "Evaluating interview", "interview_id", id, "value", req.Value)

	interview, err := h.interviewService.Evaluate(c.Request.Context(), caller(c), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, interview)
}

// ExportInterviews streams an xlsx workbook of every interview matching the filters.
// limit and offset are ignored; the export always covers the full result.
// @Router /interviews/export [get]
func (h *InterviewHandler) ExportInterviews(c *gin.Context) {
	filters, ok := parseInterviewFilters(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Exporting interviews")

	data, err := h.exportService.ExportInterviews(c.Request.Context(), caller(c), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("interviews-%s.xlsx", time.Now().UTC().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}

// ===== ANSWERS =====

// @Router /interviews/{id}/answers [get]
func (h *InterviewHandler) ListAnswers(c *gin.Context) {
	id := ParseUintParam(c, "id")
	if id == 0 {
		return
	}
	answers, err := h.answerService.ListByInterview(c.Request.Context(), caller(c), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"answers": answers})
}

// SaveAnswer creates or replaces the caller's answer to one question
// @Router /interviews/{id}/answers/{question_id} [put]
func (h *InterviewHandler) SaveAnswer(c *gin.Context) {
	id := ParseUintParam(c, "id")
	if id == 0 {
		return
	}
	questionID := ParseUintParam(c, "question_id")
	if questionID == 0 {
		return
	}

	var req services.SaveAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "Invalid request payload", err)
		return
	}

	answer, err := h.answerService.SaveAnswer(c.Request.Context(), caller(c), id, questionID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, answer)
}

// ===== HELPERS =====

func parseInterviewFilters(c *gin.Context) (repositories.InterviewFilters, bool) {
	limit, offset, ok := parsePaging(c)
	if !ok {
		return repositories.InterviewFilters{}, false
	}
	filters := repositories.InterviewFilters{
		Limit:     limit,
		Offset:    offset,
		SortBy:    c.DefaultQuery("sort_by", "created_at"),
		SortOrder: strings.ToLower(c.DefaultQuery("sort_order", "desc")),
	}

	if filters.SortBy != "created_at" && filters.SortBy != "deadline" {
		writeQueryError(c, "sort_by", "must be created_at or deadline")
		return filters, false
	}
	if filters.SortOrder != "asc" && filters.SortOrder != "desc" {
		writeQueryError(c, "sort_order", "must be asc or desc")
		return filters, false
	}

	if raw := c.Query("status"); raw != "" {
		status := models.InterviewStatus(strings.ToUpper(raw))
		switch status {
		case models.InterviewPending, models.InterviewInProgress, models.InterviewCompleted, models.InterviewExpired:
			filters.Status = &status
		default:
			writeQueryError(c, "status", "must be one of PENDING, IN_PROGRESS, COMPLETED, EXPIRED")
			return filters, false
		}
	}
	if candidateID := c.Query("candidate_id"); candidateID != "" {
		filters.CandidateID = &candidateID
	}
	if interviewerID := c.Query("interviewer_id"); interviewerID != "" {
		filters.InterviewerID = &interviewerID
	}
	if raw := c.Query("template_id"); raw != "" {
		n, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || n == 0 {
			writeQueryError(c, "template_id", "must be a positive integer")
			return filters, false
		}
		templateID := uint(n)
		filters.TemplateID = &templateID
	}
	return filters, true
}
