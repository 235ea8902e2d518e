// Package main provides the API router setup.
package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/frank19990603-cmyk/model-for-amazon-2.0/cmd/selector-api/handlers"
	"github.com/frank19990603-cmyk/model-for-amazon-2.0/internal/config"
	"github.com/frank19990603-cmyk/model-for-amazon-2.0/internal/ingest"
	"github.com/frank19990603-cmyk/model-for-amazon-2.0/internal/observability"
	"github.com/frank19990603-cmyk/model-for-amazon-2.0/internal/pipeline"
)

// NewRouter creates the main API router with all routes configured.
func NewRouter(logger *observability.Logger, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(cfg.Server.RequestTimeout))

	// Health check (unauthenticated)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"healthy","service":"selector-api"}`))
	})

	reader := ingest.NewReader(logger)
	p := pipeline.New(logger, cfg.PipelineOptions())

	selectionHandler := handlers.NewSelectionHandler(logger, reader, p, handlers.Options{
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
		SheetName:      cfg.Export.SheetName,
		WorkbookName:   cfg.Export.WorkbookName,
	})

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/select", selectionHandler.Select)
	})

	return r
}
