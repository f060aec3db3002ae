package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/xaenox/wikichat/internal/chatbot"
	"github.com/xaenox/wikichat/internal/classifier"
	"github.com/xaenox/wikichat/internal/webloader"
	"go.uber.org/zap"
)

const httpUserID = 0

type WikiURL struct {
	URL string `json:"url" validate:"omitempty,url"`
}

type Message struct {
	Message string `json:"message" validate:"required"`
}

type Server struct {
	service  *chatbot.Service
	validate *validator.Validate
	logger   *zap.Logger
	http     *http.Server
}

func New(addr string, service *chatbot.Service, logger *zap.Logger) *Server {
	s := &Server{
		service:  service,
		validate: validator.New(),
		logger:   logger,
	}
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleHome)
	mux.HandleFunc("POST /index_data", s.handleIndexData)
	mux.HandleFunc("POST /chat", s.handleChat)
	return mux
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", zap.String("addr", s.http.Addr))
		errCh <- s.http.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.http.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleIndexData(w http.ResponseWriter, r *http.Request) {
	var req WikiURL
	if !s.decode(w, r, &req) {
		return
	}
	if req.URL == "" {
		req.URL = webloader.DefaultURL
	}

	if _, err := s.service.Index(r.Context(), req.URL); err != nil {
		s.logger.Error("Failed to index data", zap.Error(err), zap.String("url", req.URL))
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "failed to index " + req.URL})
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusCreated)
	w.Write([]byte("Database has been created successfully!"))
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req Message
	if !s.decode(w, r, &req) {
		return
	}

	reply, err := s.service.Reply(r.Context(), httpUserID, req.Message)
	switch {
	case err == nil:
		s.logger.Info("WikiBot replied", zap.String("intent", reply.Intent), zap.String("reply", reply.Text))
		writeJSON(w, http.StatusOK, map[string]string{"message": reply.Text})
	case errors.Is(err, classifier.ErrModelNotTrained):
		s.logger.Error("Model not trained", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "the intent model has not been trained"})
	case errors.Is(err, chatbot.ErrUnknownTag):
		s.logger.Warn("No response for intent", zap.Error(err))
		writeJSON(w, http.StatusOK, map[string]string{"message": chatbot.FallbackResponse})
	default:
		s.logger.Error("Failed to reply", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	// An empty body decodes as the zero request.
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": "invalid JSON body"})
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
