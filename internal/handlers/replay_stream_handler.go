package handlers

import (
	"strconv"

	"github.com/SAP-F-2025/interview-service/internal/metrics"
	"github.com/SAP-F-2025/interview-service/internal/replay"
	"github.com/gin-gonic/gin"
)

// ReplayStream plays an answer's keystroke log to a viewer over a websocket.
//
// Commands: play, pause, reset and seek (with percent). Every state change is pushed as a
// state frame and the end of playback as a complete frame. ?speed= scales playback.
// @Router /answers/{id}/replay/stream [get]
func (h *AnswerHandler) ReplayStream(c *gin.Context) {
	answerID := ParseUintParam(c, "id")
	if answerID == 0 {
		return
	}

	speed := 1.0
	if raw := c.Query("speed"); raw != "" {
		s, err := strconv.ParseFloat(raw, 64)
		if err != nil || s <= 0 {
			writeQueryError(c, "speed", "must be a positive number")
			return
		}
		speed = s
	}

	client := &wsClient{}
	ctrl, err := h.replayService.Controller(c.Request.Context(), caller(c), answerID,
		replay.WithSpeed(speed),
		replay.OnUpdate(func(s replay.State) { client.Send(wsFrame{Type: "state", Data: s}) }),
		replay.OnComplete(func() { client.Send(wsFrame{Type: "complete"}) }),
	)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.LogError(c, err, "Failed to upgrade replay stream", "answer_id", answerID)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(wsReadLimit)
	client.attach(conn)

	// Pending steps must not outlive the connection.
	defer ctrl.Pause()

	metrics.ActiveStreams.WithLabelValues("replay").Inc()
	defer metrics.ActiveStreams.WithLabelValues("replay").Dec()

	h.LogRequest(c, "Replay stream opened", "answer_id", answerID, "speed", speed)
	client.Send(wsFrame{Type: "state", Data: ctrl.State()})

	for {
		var cmd wsCommand
		if err := conn.ReadJSON(&cmd); err != nil {
			return
		}

		switch cmd.Type {
		case "play":
			ctrl.Play()
		case "pause":
			ctrl.Pause()
		case "reset":
			ctrl.Reset()
		case "seek":
			ctrl.Seek(cmd.Percent)
		default:
			client.Send(errFrame("unknown_type"))
		}
	}
}
