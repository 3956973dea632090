package handlers

import (
	"context"
	"time"

	"github.com/SAP-F-2025/interview-service/internal/keystroke"
	"github.com/SAP-F-2025/interview-service/internal/metrics"
	"github.com/SAP-F-2025/interview-service/internal/models"
	"github.com/SAP-F-2025/interview-service/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// CaptureStream records an editing session over a websocket.
//
// The client sends insert, delete and replace commands as the candidate types and stop at the
// end. Every full batch is persisted and acknowledged with an ack frame; stop (or a dropped
// connection) flushes the remainder. Timestamps continue from the end of the stored log, so a
// reconnecting candidate extends the same timeline instead of restarting it at zero.
// @Router /answers/{id}/capture [get]
func (h *AnswerHandler) CaptureStream(c *gin.Context) {
	answerID := ParseUintParam(c, "id")
	if answerID == 0 {
		return
	}
	ctx := c.Request.Context()
	who := caller(c)

	// refuse over plain HTTP when the caller could never store a batch
	existing, err := h.answerService.OpenCapture(ctx, who, answerID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	base := lastTimestamp(existing)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.LogError(c, err, "Failed to upgrade capture stream", "answer_id", answerID)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(wsReadLimit)

	metrics.ActiveStreams.WithLabelValues("capture").Inc()
	defer metrics.ActiveStreams.WithLabelValues("capture").Dec()

	client := &wsClient{}
	client.attach(conn)

	flushCtx := context.WithoutCancel(ctx)
	flush := func(batch []models.KeystrokeEvent) {
		if len(batch) == 0 {
			return
		}
		for i := range batch {
			batch[i].RelativeTimestampMs += base
		}
		resp, err := h.answerService.SaveKeystrokeBatch(flushCtx, who, answerID, &services.KeystrokeBatchRequest{Events: batch})
		if err != nil {
			h.LogError(c, err, "Failed to persist captured keystrokes", "answer_id", answerID, "events", len(batch))
			client.Send(errFrame(err.Error()))
			return
		}
		client.Send(wsFrame{Type: "ack", Data: resp})
	}

	rec := keystroke.NewRecorder(
		keystroke.WithClock(h.clock),
		keystroke.WithBatchSize(h.batchSize),
		keystroke.WithFlush(flush),
	)
	rec.StartRecording()
	defer func() {
		if rec.IsRecording() {
			flush(rec.StopRecording())
		}
	}()

	h.LogRequest(c, "Capture stream opened", "answer_id", answerID, "offset_ms", base)
	client.Send(wsFrame{Type: "ready", Data: gin.H{"answer_id": answerID, "batch_size": h.batchSize}})

	for {
		var cmd wsCommand
		if err := conn.ReadJSON(&cmd); err != nil {
			return
		}
		if cmd.Position < 0 || cmd.Length < 0 {
			client.Send(errFrame("position and length must be non-negative"))
			continue
		}

		switch cmd.Type {
		case "insert":
			rec.InsertText(cmd.Position, cmd.Value)
		case "delete":
			rec.DeleteText(cmd.Position, cmd.Length)
		case "replace":
			rec.ReplaceText(cmd.Position, cmd.Length, cmd.Value)
		case "stop":
			flush(rec.StopRecording())
			client.Send(wsFrame{Type: "stopped"})
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
			return
		default:
			client.Send(errFrame("unknown_type"))
		}
	}
}

func lastTimestamp(events []models.KeystrokeEvent) int64 {
	var last int64
	for _, ev := range events {
		if ev.RelativeTimestampMs > last {
			last = ev.RelativeTimestampMs
		}
	}
	return last
}
