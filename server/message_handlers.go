package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/Nayab-Gohar-95/llm-saas-backend/chat"
	"github.com/Nayab-Gohar-95/llm-saas-backend/messages"
)

// SendMessageRequest is the payload for synchronous generation
type SendMessageRequest struct {
	Content string `json:"content"`
}

// MessagePage is one page of a tenant's message history
type MessagePage struct {
	Total int                 `json:"total"`
	Items []*messages.Message `json:"items"`
}

// SendMessageHandler generates a complete response for the prompt and stores
// the exchange before replying.
func (s *Server) SendMessageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal := PrincipalFromContext(r.Context())

		var req SendMessageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if strings.TrimSpace(req.Content) == "" {
			writeJSONError(w, http.StatusBadRequest, "content is required")
			return
		}

		msg, err := s.orchestrator.Send(r.Context(), principal, req.Content)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, msg)
	}
}

// ListMessagesHandler returns one page of the tenant's history, newest first.
// The tenant filter comes from the credential; there is no way to request
// another tenant's messages.
func (s *Server) ListMessagesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal := PrincipalFromContext(r.Context())

		skip := queryInt(r, "skip", 0)
		limit := queryInt(r, "limit", 0)

		total, items, err := s.orchestrator.List(r.Context(), principal, skip, limit)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, MessagePage{Total: total, Items: items})
	}
}

// StreamMessageHandler delivers the generation incrementally over SSE. Each
// chunk is one `data:` event; the reserved [DONE] payload terminates the
// stream. A mid-stream failure is surfaced as a JSON error event before the
// terminal sentinel.
func (s *Server) StreamMessageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal := PrincipalFromContext(r.Context())

		content := strings.TrimSpace(r.URL.Query().Get("content"))
		if content == "" {
			writeJSONError(w, http.StatusBadRequest, "content is required")
			return
		}

		flusher, ok := w.(http.Flusher)
		if !ok {
			writeJSONError(w, http.StatusInternalServerError, "streaming unsupported")
			return
		}

		events, err := s.orchestrator.Stream(r.Context(), principal, content)
		if err != nil {
			writeError(w, err)
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no")
		w.WriteHeader(http.StatusOK)
		flusher.Flush()

		for ev := range events {
			switch {
			case ev.Done:
				fmt.Fprintf(w, "data: %s\n\n", chat.DoneSentinel)
			case ev.Err != nil:
				payload, _ := json.Marshal(map[string]string{"error": ev.Err.Error()})
				fmt.Fprintf(w, "data: %s\n\n", payload)
			default:
				fmt.Fprintf(w, "data: %s\n\n", ev.Text)
			}
			flusher.Flush()
		}
	}
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
