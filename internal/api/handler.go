package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/DhivakarBS/Travel-Planning-Assistant-AI/internal/agent"
	"github.com/DhivakarBS/Travel-Planning-Assistant-AI/internal/llm"
	"github.com/DhivakarBS/Travel-Planning-Assistant-AI/internal/models"
	"github.com/DhivakarBS/Travel-Planning-Assistant-AI/internal/session"
	"go.uber.org/zap"
)

type Handler struct {
	store  *session.Store
	agent  *agent.Agent
	logger *zap.Logger
}

func NewHandler(store *session.Store, ag *agent.Agent, logger *zap.Logger) *Handler {
	return &Handler{
		store:  store,
		agent:  ag,
		logger: logger,
	}
}

// Register mounts all API endpoints on the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/session", h.handleCreateSession)
	mux.HandleFunc("/session/", h.handleSessionByID)
	mux.HandleFunc("/sessions", h.handleSessionCount)
	mux.HandleFunc("/chat", h.handleChat)
	mux.HandleFunc("/clear", h.handleClear)
	mux.HandleFunc("/health", h.handleHealth)
}

type chatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

type chatResponse struct {
	Response  string               `json:"response"`
	SessionID string               `json:"session_id"`
	Intent    *models.TravelIntent `json:"intent,omitempty"`
}

type clearRequest struct {
	SessionID string `json:"session_id"`
}

type sessionInfoResponse struct {
	SessionID    string            `json:"session_id"`
	MessageCount int               `json:"message_count"`
	CreatedAt    string            `json:"created_at"`
	LastUpdated  string            `json:"last_updated"`
	Preferences  map[string]string `json:"preferences"`
	Messages     []models.Message  `json:"messages"`
}

func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	sess := h.store.Create()
	h.logger.Info("created session", zap.String("session_id", sess.ID))
	writeJSON(w, http.StatusCreated, sess)
}

func (h *Handler) handleSessionByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/session/")
	if id == "" || strings.Contains(id, "/") {
		http.NotFound(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		sess, err := h.store.Get(id)
		if err != nil {
			h.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sessionInfoResponse{
			SessionID:    sess.ID,
			MessageCount: len(sess.Messages),
			CreatedAt:    sess.CreatedAt.UTC().Format(time.RFC3339),
			LastUpdated:  sess.LastUpdated.UTC().Format(time.RFC3339),
			Preferences:  sess.Preferences,
			Messages:     sess.Messages,
		})

	case http.MethodDelete:
		if err := h.store.Delete(id); err != nil {
			h.writeError(w, err)
			return
		}
		h.logger.Info("deleted session", zap.String("session_id", id))
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})

	default:
		methodNotAllowed(w)
	}
}

func (h *Handler) handleSessionCount(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"active_sessions": h.store.Count()})
}

func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	if req.SessionID == "" {
		badRequest(w, "session_id is required")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		badRequest(w, "message is required")
		return
	}

	result, err := h.agent.Chat(r.Context(), req.SessionID, req.Message)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{
		Response:  result.Reply,
		SessionID: result.SessionID,
		Intent:    &result.Intent,
	})
}

func (h *Handler) handleClear(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	var req clearRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	if req.SessionID == "" {
		badRequest(w, "session_id is required")
		return
	}

	if err := h.store.Clear(req.SessionID); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": "Conversation cleared",
	})
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "Travel Planning Assistant API",
	})
}

// writeError maps internal errors onto the HTTP taxonomy: unknown session is
// a 404, a failed provider call is a 502, everything else is a 500.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrNotFound):
		writeJSONError(w, http.StatusNotFound, "session not found")
	case errors.Is(err, agent.ErrEmptyMessage):
		writeJSONError(w, http.StatusBadRequest, "message is required")
	default:
		var provErr *llm.ProviderError
		if errors.As(err, &provErr) {
			h.logger.Error("provider failure", zap.Error(err))
			writeJSONError(w, http.StatusBadGateway, "the travel assistant is unavailable, please try again")
			return
		}
		h.logger.Error("internal error", zap.Error(err))
		writeJSONError(w, http.StatusInternalServerError, "internal server error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSONError(w, http.StatusBadRequest, msg)
}

func methodNotAllowed(w http.ResponseWriter) {
	writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
}
