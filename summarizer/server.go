package summarizer

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
)

type ChatRequest struct {
	Messages []string `json:"messages" validate:"required"`
}

type SummaryResponse struct {
	Summary string `json:"summary"`
}

type Server struct {
	log           *slog.Logger
	service       *Service
	validator     *validator.Validate
	allowedOrigin string
	maxMessages   int
}

func NewServer(log *slog.Logger, service *Service, allowedOrigin string, maxMessages int) *Server {
	return &Server{
		log:           log,
		service:       service,
		validator:     validator.New(),
		allowedOrigin: allowedOrigin,
		maxMessages:   maxMessages,
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.root)
	mux.HandleFunc("POST /summarize", s.summarize)
	return s.cors(mux)
}

// cors answers preflights and tags responses for the single allowed browser origin.
func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && origin == s.allowedOrigin {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Add("Vary", "Origin")
		}
		if r.Method == http.MethodOptions {
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) root(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Chat Summarization API is running"})
}

func (s *Server) summarize(w http.ResponseWriter, r *http.Request) {
	var request ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": fmt.Sprintf("invalid body: %v", err)})
		return
	}
	if err := s.validate(request); err != nil {
		s.log.Warn("Invalid summarize request", "error", err)
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": err.Error()})
		return
	}

	summary := s.service.Summarize(request.Messages)
	writeJSON(w, http.StatusOK, SummaryResponse{Summary: summary})
}

func (s *Server) validate(request ChatRequest) error {
	if err := s.validator.Struct(request); err != nil {
		return fmt.Errorf("messages: %w", err)
	}
	if s.maxMessages > 0 {
		if err := s.validator.Var(request.Messages, fmt.Sprintf("max=%d", s.maxMessages)); err != nil {
			return fmt.Errorf("messages: at most %d allowed", s.maxMessages)
		}
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
