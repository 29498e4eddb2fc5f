// Package server exposes the QA pipeline over HTTP. It is a thin
// wrapper: one query endpoint plus a health check. Each request
// independently re-fetches and re-computes; there is no cross-request
// cache.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/aurorahq/memberqa/internal/types"
)

// MessageSource supplies the message set for a request.
type MessageSource interface {
	Fetch(ctx context.Context, limit int) ([]types.Message, error)
}

// Router answers a question over a message set.
type Router interface {
	Route(ctx context.Context, question string, msgs []types.Message) (string, error)
}

// QAResponse is the body of every /ask reply, success or failure.
type QAResponse struct {
	Answer string `json:"answer"`
}

// Server serves the /ask endpoint.
type Server struct {
	source     MessageSource
	router     Router
	fetchLimit int
	log        *slog.Logger
	mux        *chi.Mux
}

// New builds the HTTP server around a message source and QA router.
func New(source MessageSource, router Router, fetchLimit int) *Server {
	s := &Server{
		source:     source,
		router:     router,
		fetchLimit: fetchLimit,
		log:        slog.Default().With("component", "server"),
	}

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Get("/healthz", s.handleHealth)
	r.Get("/ask", s.handleAsk)
	s.mux = r
	return s
}

// Handler returns the root HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// ListenAndServe blocks serving on addr.
func (s *Server) ListenAndServe(addr string) error {
	s.log.Info("serving", "addr", addr)
	return http.ListenAndServe(addr, s.mux)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleAsk fetches messages and routes the question through the
// pipeline. Internal failures come back as a 500 whose body still has
// the answer shape, with an "Error: ..." string in place of an answer.
func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	reqID := uuid.NewString()
	question := r.URL.Query().Get("q")
	if question == "" {
		writeJSON(w, http.StatusBadRequest, QAResponse{Answer: "Error: missing q parameter"})
		return
	}

	log := s.log.With("request_id", reqID)
	log.Info("question received", "question", question)

	msgs, err := s.source.Fetch(r.Context(), s.fetchLimit)
	if err != nil {
		log.Error("fetch failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, QAResponse{Answer: fmt.Sprintf("Error: %v", err)})
		return
	}

	answer, err := s.router.Route(r.Context(), question, msgs)
	if err != nil {
		log.Error("routing failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, QAResponse{Answer: fmt.Sprintf("Error: %v", err)})
		return
	}

	log.Info("question answered", "messages", len(msgs))
	writeJSON(w, http.StatusOK, QAResponse{Answer: answer})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
