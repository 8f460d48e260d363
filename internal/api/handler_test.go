package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DhivakarBS/Travel-Planning-Assistant-AI/internal/agent"
	"github.com/DhivakarBS/Travel-Planning-Assistant-AI/internal/api"
	"github.com/DhivakarBS/Travel-Planning-Assistant-AI/internal/llm"
	"github.com/DhivakarBS/Travel-Planning-Assistant-AI/internal/models"
	"github.com/DhivakarBS/Travel-Planning-Assistant-AI/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubProvider struct {
	intent      models.TravelIntent
	reply       string
	generateErr error
}

func (s *stubProvider) ClassifyIntent(ctx context.Context, message string) (models.TravelIntent, error) {
	return s.intent, nil
}

func (s *stubProvider) GenerateReply(ctx context.Context, intent models.TravelIntent, history []models.Message, message string) (string, error) {
	if s.generateErr != nil {
		return "", s.generateErr
	}
	return s.reply, nil
}

func newTestServer(t *testing.T, provider agent.Provider, autoCreate bool) (*httptest.Server, *session.Store) {
	t.Helper()

	store := session.New()
	ag := agent.New(provider, store, zap.NewNop(), agent.Options{AutoCreateSessions: autoCreate})
	handler := api.NewHandler(store, ag, zap.NewNop())

	mux := http.NewServeMux()
	handler.Register(mux)

	srv := httptest.NewServer(api.WithCORS(api.WithLogging(zap.NewNop(), mux)))
	t.Cleanup(srv.Close)
	return srv, store
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(b))
	require.NoError(t, err)
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestCreateSession(t *testing.T) {
	srv, store := newTestServer(t, &stubProvider{reply: "hi"}, false)

	resp, err := http.Post(srv.URL+"/session", "application/json", nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	sess := decodeBody[models.Session](t, resp)
	assert.NotEmpty(t, sess.ID)
	assert.Equal(t, 1, store.Count())
}

func TestChatHappyPath(t *testing.T) {
	provider := &stubProvider{
		intent: models.TravelIntent{
			Intent:      models.IntentDestination,
			Confidence:  0.95,
			KeyEntities: []string{"Lisbon"},
		},
		reply: "Lisbon in 3 days: Alfama, Belém, and a day trip to Sintra.",
	}
	srv, store := newTestServer(t, provider, false)

	created := decodeBody[models.Session](t, postJSON(t, srv.URL+"/session", nil))

	resp := postJSON(t, srv.URL+"/chat", map[string]string{
		"session_id": created.ID,
		"message":    "Plan a 3-day trip to Lisbon",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody[map[string]any](t, resp)
	assert.NotEmpty(t, body["response"])
	assert.Equal(t, created.ID, body["session_id"])

	sess, err := store.Get(created.ID)
	require.NoError(t, err)
	require.Len(t, sess.Messages, 2)
	assert.Equal(t, "Lisbon", sess.Preferences["destination"])
}

func TestChatUnknownSessionReturns404(t *testing.T) {
	srv, store := newTestServer(t, &stubProvider{reply: "hi"}, false)

	resp := postJSON(t, srv.URL+"/chat", map[string]string{
		"session_id": "ghost",
		"message":    "hello",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
	assert.Equal(t, 0, store.Count(), "404 must not create a session")
}

func TestChatAutoCreatesSession(t *testing.T) {
	srv, store := newTestServer(t, &stubProvider{reply: "welcome"}, true)

	resp := postJSON(t, srv.URL+"/chat", map[string]string{
		"session_id": "client-generated-id",
		"message":    "hello",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	sess, err := store.Get("client-generated-id")
	require.NoError(t, err)
	assert.Len(t, sess.Messages, 2)
}

func TestChatValidation(t *testing.T) {
	srv, _ := newTestServer(t, &stubProvider{reply: "hi"}, true)

	tests := []struct {
		name string
		body string
	}{
		{"malformed JSON", `{"session_id": `},
		{"missing session_id", `{"message": "hello"}`},
		{"empty message", `{"session_id": "abc", "message": "   "}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := http.Post(srv.URL+"/chat", "application/json", bytes.NewBufferString(tc.body))
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestChatProviderErrorReturns502(t *testing.T) {
	provider := &stubProvider{
		generateErr: &llm.ProviderError{Op: "generate", Err: errors.New("quota exceeded")},
	}
	srv, store := newTestServer(t, provider, false)

	created := decodeBody[models.Session](t, postJSON(t, srv.URL+"/session", nil))

	resp := postJSON(t, srv.URL+"/chat", map[string]string{
		"session_id": created.ID,
		"message":    "hello",
	})
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	resp.Body.Close()

	sess, err := store.Get(created.ID)
	require.NoError(t, err)
	require.Len(t, sess.Messages, 1, "only the user message is recorded on provider failure")
	assert.Equal(t, models.RoleUser, sess.Messages[0].Role)
}

func TestGetSessionInfo(t *testing.T) {
	provider := &stubProvider{reply: "sure"}
	srv, _ := newTestServer(t, provider, false)

	created := decodeBody[models.Session](t, postJSON(t, srv.URL+"/session", nil))
	postJSON(t, srv.URL+"/chat", map[string]string{
		"session_id": created.ID,
		"message":    "hi",
	}).Body.Close()

	resp, err := http.Get(srv.URL + "/session/" + created.ID)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	info := decodeBody[map[string]any](t, resp)
	assert.Equal(t, created.ID, info["session_id"])
	assert.EqualValues(t, 2, info["message_count"])
}

func TestGetSessionInfoUnknown(t *testing.T) {
	srv, _ := newTestServer(t, &stubProvider{}, false)

	resp, err := http.Get(srv.URL + "/session/ghost")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestClearConversation(t *testing.T) {
	srv, store := newTestServer(t, &stubProvider{reply: "hello"}, false)

	created := decodeBody[models.Session](t, postJSON(t, srv.URL+"/session", nil))
	postJSON(t, srv.URL+"/chat", map[string]string{
		"session_id": created.ID,
		"message":    "hi",
	}).Body.Close()

	resp := postJSON(t, srv.URL+"/clear", map[string]string{"session_id": created.ID})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	sess, err := store.Get(created.ID)
	require.NoError(t, err)
	assert.Empty(t, sess.Messages)
}

func TestClearUnknownSession(t *testing.T) {
	srv, _ := newTestServer(t, &stubProvider{}, false)

	resp := postJSON(t, srv.URL+"/clear", map[string]string{"session_id": "ghost"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDeleteSession(t *testing.T) {
	srv, store := newTestServer(t, &stubProvider{}, false)

	created := decodeBody[models.Session](t, postJSON(t, srv.URL+"/session", nil))

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/session/"+created.ID, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 0, store.Count())
}

func TestSessionCount(t *testing.T) {
	srv, _ := newTestServer(t, &stubProvider{}, false)

	postJSON(t, srv.URL+"/session", nil).Body.Close()
	postJSON(t, srv.URL+"/session", nil).Body.Close()

	resp, err := http.Get(srv.URL + "/sessions")
	require.NoError(t, err)
	counts := decodeBody[map[string]int](t, resp)
	assert.Equal(t, 2, counts["active_sessions"])
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t, &stubProvider{}, false)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	body := decodeBody[map[string]string](t, resp)
	assert.Equal(t, "healthy", body["status"])
}

func TestMethodNotAllowed(t *testing.T) {
	srv, _ := newTestServer(t, &stubProvider{}, false)

	resp, err := http.Get(srv.URL + "/chat")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestCORSPreflight(t *testing.T) {
	srv, _ := newTestServer(t, &stubProvider{}, false)

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/chat", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}
