package handlers

import (
	"net/http"
	"strconv"

	"github.com/SAP-F-2025/interview-service/internal/keystroke"
	"github.com/SAP-F-2025/interview-service/internal/models"
	"github.com/SAP-F-2025/interview-service/internal/services"
	"github.com/SAP-F-2025/interview-service/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
)

// AnswerHandler serves keystroke logs and replays of a single answer.
type AnswerHandler struct {
	BaseHandler
	answerService services.AnswerService
	replayService services.ReplayService
	clock         clockwork.Clock
	batchSize     int
}

func NewAnswerHandler(
	answerService services.AnswerService,
	replayService services.ReplayService,
	clock clockwork.Clock,
	batchSize int,
	logger utils.Logger,
) *AnswerHandler {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if batchSize < 1 {
		batchSize = keystroke.DefaultBatchSize
	}
	return &AnswerHandler{
		BaseHandler:   NewBaseHandler(logger),
		answerService: answerService,
		replayService: replayService,
		clock:         clock,
		batchSize:     batchSize,
	}
}

// SaveKeystrokes appends one batch to the answer's log
// @Summary Append keystroke batch
// @Tags answers
// @Accept json
// @Produce json
// @Param id path uint true "Answer ID"
// @Param batch body services.KeystrokeBatchRequest true "Events in emission order"
// @Success 201 {object} services.KeystrokeBatchResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /answers/{id}/keystrokes [post]
func (h *AnswerHandler) SaveKeystrokes(c *gin.Context) {
	id := ParseUintParam(c, "id")
	if id == 0 {
		return
	}

	var req services.KeystrokeBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "Invalid request payload", err)
		return
	}

	resp, err := h.answerService.SaveKeystrokeBatch(c.Request.Context(), caller(c), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// @Router /answers/{id}/keystrokes [get]
func (h *AnswerHandler) GetKeystrokes(c *gin.Context) {
	id := ParseUintParam(c, "id")
	if id == 0 {
		return
	}

	events, err := h.answerService.LoadKeystrokeEvents(c.Request.Context(), caller(c), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	if events == nil {
		events = []models.KeystrokeEvent{}
	}
	c.JSON(http.StatusOK, gin.H{"answer_id": id, "events": events})
}

// GetReplayFrame reconstructs the answer at a point in time: at_ms (log time) or percent
// (of the log's duration). Without either, the final text is returned.
// @Router /answers/{id}/replay [get]
func (h *AnswerHandler) GetReplayFrame(c *gin.Context) {
	id := ParseUintParam(c, "id")
	if id == 0 {
		return
	}

	var query services.ReplayQuery
	if raw := c.Query("at_ms"); raw != "" {
		at, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeQueryError(c, "at_ms", "must be an integer")
			return
		}
		query.AtMs = &at
	}
	if raw := c.Query("percent"); raw != "" {
		p, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			writeQueryError(c, "percent", "must be a number")
			return
		}
		query.Percent = &p
	}

	frame, err := h.replayService.TextAt(c.Request.Context(), caller(c), id, query)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, frame)
}
