package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"agent-proxy/internal/agent"
)

// terminatingGenerator answers every request with the stop marker, so a
// chat exchange finishes after a single assistant turn.
type terminatingGenerator struct {
	reply string
}

func (g *terminatingGenerator) Generate(ctx context.Context, systemMessage string, history []agent.Message) (agent.Message, error) {
	return agent.Message{Content: g.reply}, nil
}

func newTestRouter(t *testing.T) (*gin.Engine, *sessionStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := &sessionStore{
		sessions: make(map[string]*session),
		newProxy: func() (*agent.UserProxy, error) {
			return agent.NewUserProxy("user_proxy", agent.ProxyOptions{
				HumanInputMode:          agent.InputModeNever,
				MaxConsecutiveAutoReply: 5,
			})
		},
		newPeer: func() *agent.Assistant {
			return agent.NewAssistant("assistant", "", &terminatingGenerator{reply: "TERMINATE"})
		},
	}
	return newRouter(store, zap.NewNop()), store
}

func TestHealthEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/health", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, "ok", response["status"])
}

func TestCreateSessionEndpoint(t *testing.T) {
	router, store := newTestRouter(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/sessions", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	var response map[string]string
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.NotEmpty(t, response["session_id"])

	_, ok := store.get(response["session_id"])
	assert.True(t, ok)
}

func TestChatEndpoint_UnknownSession(t *testing.T) {
	router, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/sessions/nope/chat", bytes.NewBufferString(`{"message": "hi"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestChatEndpoint_InvalidRequest(t *testing.T) {
	router, store := newTestRouter(t)
	id, err := store.create()
	assert.NoError(t, err)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/sessions/"+id+"/chat", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestChatEndpoint_RunsExchange(t *testing.T) {
	router, store := newTestRouter(t)
	id, err := store.create()
	assert.NoError(t, err)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/sessions/"+id+"/chat", bytes.NewBufferString(`{"message": "solve this"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var response struct {
		Transcript []agent.Message `json:"transcript"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Len(t, response.Transcript, 2)
	assert.Equal(t, "solve this", response.Transcript[0].Content)
	assert.Equal(t, "TERMINATE", response.Transcript[1].Content)
}

func TestTranscriptEndpoint(t *testing.T) {
	router, store := newTestRouter(t)
	id, err := store.create()
	assert.NoError(t, err)

	// Unknown session first
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/sessions/missing/transcript", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/api/sessions/"+id+"/transcript", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var response struct {
		Transcript []agent.Message `json:"transcript"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Empty(t, response.Transcript)
}
