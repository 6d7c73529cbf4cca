// Command askpaged runs the askpage daemon: a single-process, single-user
// backend that answers questions about the web page a browser bookmarklet is
// looking at, streaming the answer token by token from the selected language
// model provider.
package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/askpage/askpage/core/ask"
	"github.com/askpage/askpage/core/pagetext"
	"github.com/askpage/askpage/core/prompt"
	"github.com/askpage/askpage/internal/bookmarklet"
	"github.com/askpage/askpage/internal/config"
	"github.com/askpage/askpage/internal/logger"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.LogLevel)

	service := ask.NewService(
		cfg.Providers,
		prompt.Builder{MaxHistory: cfg.MaxHistory},
		pagetext.New(),
	)
	scriptBuilder := bookmarklet.New(cfg.PublicBaseURL+"/api/ask", cfg.BookmarkletMaxAge)

	s := &server{cfg: cfg, log: log, ask: service, bookmarklet: scriptBuilder}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.cors)

	r.Get("/healthz", s.handleHealth)
	r.Get("/api/providers", s.handleProviders)
	r.Post("/api/ask", s.handleAsk)
	r.Get("/bookmarklet.js", s.handleBookmarklet)

	addr := fmt.Sprintf(":%d", cfg.Port)
	log.Info("askpaged listening", "addr", addr, "public_base_url", cfg.PublicBaseURL)
	if err := http.ListenAndServe(addr, r); err != nil {
		log.Error("server failed", "err", err)
		os.Exit(1)
	}
}
