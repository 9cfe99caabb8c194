// Package server exposes the assistant over HTTP: a JSON-in, SSE-out chat
// endpoint plus a minimal embedded chat page. The conversation history
// lives entirely on the client; the server keeps no session state.
package server

import (
	"embed"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/kmalhotra18/Career-Conversations/chat"
	"github.com/kmalhotra18/Career-Conversations/types"
	"github.com/kmalhotra18/Career-Conversations/utils"
)

//go:embed static
var staticFS embed.FS

// Server routes HTTP traffic to the conversation engine.
type Server struct {
	engine *chat.Engine
	logger utils.Logger
	mux    *http.ServeMux
}

func New(engine *chat.Engine, logger utils.Logger) *Server {
	s := &Server{
		engine: engine,
		logger: logger,
		mux:    http.NewServeMux(),
	}

	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	s.mux.HandleFunc("POST /api/chat", s.handleChat)
	s.mux.Handle("GET /", http.FileServerFS(staticFS))
	s.mux.Handle("GET /{$}", http.RedirectHandler("/static/index.html", http.StatusFound))

	return s
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	return withCORS(s.mux)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, "ok")
}

// chatRequest is the inbound turn: the new message plus the client-held
// history.
type chatRequest struct {
	Message string          `json:"message"`
	History []types.Message `json:"history"`
}

// chatDone is the payload of the terminal SSE event.
type chatDone struct {
	Reply   string          `json:"reply"`
	History []types.Message `json:"history"`
}

// handleChat runs one turn, streaming accumulated-reply snapshots as
// "chunk" events and finishing with a "done" event carrying the updated
// history. Turn failures surface as a terminal "error" event.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Message == "" {
		http.Error(w, "message is required", http.StatusBadRequest)
		return
	}

	sse, err := newSSEWriter(w)
	if err != nil {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	turnID := uuid.NewString()
	s.logger.Info("Turn started", "turn_id", turnID, "history_len", len(req.History))

	turn := s.engine.StreamChat(req.Message, req.History)
	defer turn.Close()

	for {
		snapshot, err := turn.Next(r.Context())
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			s.logger.Error("Turn failed", "turn_id", turnID, "error", err)
			sse.writeJSON("error", map[string]string{"message": "the assistant is unavailable right now"})
			return
		}
		if err := sse.writeEvent("chunk", snapshot); err != nil {
			s.logger.Warn("Client went away mid-turn", "turn_id", turnID, "error", err)
			return
		}
	}

	s.logger.Info("Turn finished", "turn_id", turnID)
	sse.writeJSON("done", chatDone{
		Reply:   turn.Final(),
		History: turn.History(),
	})
}
