package main

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/askpage/askpage/core/ask"
	"github.com/askpage/askpage/core/relay"
	"github.com/askpage/askpage/internal/bookmarklet"
	"github.com/askpage/askpage/internal/config"
	"github.com/askpage/askpage/providers/ai"
	"github.com/askpage/askpage/providers/observability"
)

type server struct {
	cfg         config.Config
	log         *slog.Logger
	ask         *ask.Service
	bookmarklet *bookmarklet.Builder
}

// cors allows the bookmarklet to call the daemon from any page origin.
func (s *server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", s.cfg.AllowedOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("ok")); err != nil {
		s.log.Warn("healthz write failed", "err", err)
	}
}

// handleProviders lists the configured providers. Credentials never leave the
// process: ai.Config excludes the APIKey field from JSON.
func (s *server) handleProviders(w http.ResponseWriter, r *http.Request) {
	snapshots := s.cfg.Providers()
	list := make([]ai.Config, 0, len(snapshots))
	for _, cfg := range snapshots {
		list = append(list, cfg)
	}
	writeJSON(s.log, w, http.StatusOK, list)
}

// handleAsk runs one streaming question-answer request. Pre-stream failures
// are returned as a JSON error with a status matching the error class; once
// the stream has started, failures flow through the SSE relay as terminal
// error records.
func (s *server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var request ask.Request
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeJSON(s.log, w, http.StatusBadRequest, map[string]string{"error": "invalid request body: " + err.Error()})
		return
	}

	ctx := observability.ContextWithObserver(r.Context(), observability.NewSlogObserver(s.log))

	stream, err := s.ask.Ask(ctx, request)
	if err != nil {
		var configErr *ai.ConfigurationError
		var networkErr *ai.NetworkError
		status := http.StatusInternalServerError
		switch {
		case errors.As(err, &configErr):
			status = http.StatusBadRequest
		case errors.As(err, &networkErr):
			status = http.StatusBadGateway
		}
		s.log.Warn("ask request rejected", "provider", request.Provider, "status", status, "err", err)
		writeJSON(s.log, w, status, map[string]string{"error": err.Error()})
		return
	}

	if err := relay.Stream(w, stream); err != nil {
		// The client went away mid-stream; abandoning the iteration already
		// released the upstream connection.
		s.log.Debug("relay aborted", "provider", request.Provider, "err", err)
	}
}

func (s *server) handleBookmarklet(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/javascript")
	if _, err := w.Write([]byte(s.bookmarklet.Script())); err != nil {
		s.log.Warn("bookmarklet write failed", "err", err)
	}
}

// writeJSON writes a JSON response with proper headers.
func writeJSON(log *slog.Logger, w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Warn("failed to encode response", "err", err)
	}
}
