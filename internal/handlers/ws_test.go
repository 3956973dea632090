package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/SAP-F-2025/interview-service/internal/auth"
	"github.com/SAP-F-2025/interview-service/internal/models"
	"github.com/SAP-F-2025/interview-service/internal/replay"
	"github.com/SAP-F-2025/interview-service/internal/services"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type inFrame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func dialWS(t *testing.T, server *httptest.Server, path, token string) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http") + path + "?access_token=" + token
	return websocket.DefaultDialer.Dial(url, nil)
}

func readFrame(t *testing.T, conn *websocket.Conn) inFrame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var f inFrame
	require.NoError(t, conn.ReadJSON(&f))
	return f
}

func TestCaptureStream(t *testing.T) {
	ts := newTestServer(t)
	server := httptest.NewServer(ts.router)
	defer server.Close()

	stored := []models.KeystrokeEvent{{Kind: models.KeystrokeInsert, Position: 0, Value: "a", RelativeTimestampMs: 500}}
	ts.answers.On("OpenCapture", mock.Anything, asUser("cand-1"), uint(5)).Return(stored, nil).Once()
	ts.answers.On("SaveKeystrokeBatch", mock.Anything, asUser("cand-1"), uint(5), mock.MatchedBy(func(req *services.KeystrokeBatchRequest) bool {
		if len(req.Events) != 2 {
			return false
		}
		// The fake clock never moves, so both events sit at the end of the stored log.
		return req.Events[0].Value == "H" && req.Events[1].Value == "i" &&
			req.Events[0].RelativeTimestampMs == 500 && req.Events[1].RelativeTimestampMs == 500
	})).Return(&services.KeystrokeBatchResponse{AnswerID: 5, BatchSeq: 1, Stored: 2}, nil).Once()

	conn, _, err := dialWS(t, server, "/api/v1/answers/5/capture", ts.token(t, "cand-1", models.RoleCandidate))
	require.NoError(t, err)
	defer conn.Close()

	assert.Equal(t, "ready", readFrame(t, conn).Type)

	require.NoError(t, conn.WriteJSON(wsCommand{Type: "insert", Position: 1, Value: "H"}))
	require.NoError(t, conn.WriteJSON(wsCommand{Type: "insert", Position: 2, Value: "i"}))

	ack := readFrame(t, conn)
	require.Equal(t, "ack", ack.Type)
	var resp services.KeystrokeBatchResponse
	require.NoError(t, json.Unmarshal(ack.Data, &resp))
	assert.Equal(t, 2, resp.Stored)

	require.NoError(t, conn.WriteJSON(wsCommand{Type: "bogus"}))
	assert.Equal(t, "error", readFrame(t, conn).Type)

	require.NoError(t, conn.WriteJSON(wsCommand{Type: "stop"}))
	assert.Equal(t, "stopped", readFrame(t, conn).Type)

	ts.answers.AssertExpectations(t)
}

func TestCaptureStreamRefusedBeforeUpgrade(t *testing.T) {
	tests := []struct {
		name   string
		user   string
		role   models.UserRole
		err    error
		status int
	}{
		{
			name:   "interviewer cannot record",
			user:   "int-1",
			role:   models.RoleInterviewer,
			err:    &services.PermissionError{Resource: "keystrokes", Action: "record", Err: auth.ErrNotAuthorized},
			status: http.StatusForbidden,
		},
		{
			name:   "completed interview",
			user:   "cand-1",
			role:   models.RoleCandidate,
			err:    &services.StateError{Operation: services.OpRecord, Status: models.InterviewCompleted},
			status: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t)
			server := httptest.NewServer(ts.router)
			defer server.Close()

			ts.answers.On("OpenCapture", mock.Anything, asUser(tt.user), uint(5)).Return(nil, tt.err).Once()

			_, resp, err := dialWS(t, server, "/api/v1/answers/5/capture", ts.token(t, tt.user, tt.role))
			require.ErrorIs(t, err, websocket.ErrBadHandshake)
			require.NotNil(t, resp)
			assert.Equal(t, tt.status, resp.StatusCode)
			ts.answers.AssertNotCalled(t, "SaveKeystrokeBatch", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestReplayStream(t *testing.T) {
	ts := newTestServer(t)
	server := httptest.NewServer(ts.router)
	defer server.Close()

	events := []models.KeystrokeEvent{
		{Kind: models.KeystrokeInsert, Position: 1, Value: "i", RelativeTimestampMs: 20},
		{Kind: models.KeystrokeInsert, Position: 0, Value: "H", RelativeTimestampMs: 0},
	}
	ts.replays.On("Controller", mock.Anything, asUser("int-1"), uint(5)).Return(events, nil).Once()

	conn, _, err := dialWS(t, server, "/api/v1/answers/5/replay/stream", ts.token(t, "int-1", models.RoleInterviewer))
	require.NoError(t, err)
	defer conn.Close()

	initial := readFrame(t, conn)
	require.Equal(t, "state", initial.Type)
	var state replay.State
	require.NoError(t, json.Unmarshal(initial.Data, &state))
	assert.Empty(t, state.DisplayedText)
	assert.False(t, state.IsPlaying)

	require.NoError(t, conn.WriteJSON(wsCommand{Type: "play"}))

	var last replay.State
	for {
		f := readFrame(t, conn)
		if f.Type == "complete" {
			break
		}
		require.Equal(t, "state", f.Type)
		require.NoError(t, json.Unmarshal(f.Data, &last))
	}
	assert.Equal(t, "Hi", last.DisplayedText)
	assert.Equal(t, float64(100), last.Progress)

	require.NoError(t, conn.WriteJSON(wsCommand{Type: "seek", Percent: 0}))
	seek := readFrame(t, conn)
	require.NoError(t, json.Unmarshal(seek.Data, &state))
	assert.Empty(t, state.DisplayedText)

	ts.replays.AssertExpectations(t)
}

func TestReplayStreamRejectsBadSpeed(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(http.MethodGet, "/api/v1/answers/5/replay/stream?speed=-2", ts.token(t, "int-1", models.RoleInterviewer), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	ts.replays.AssertNotCalled(t, "Controller", mock.Anything, mock.Anything, mock.Anything)
}
