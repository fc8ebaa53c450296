package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/DreamStack-us/redisTOON/internal/store"
)

// Handler builds the routing stack: request ID and real IP extraction, one
// slog line per request, panic recovery, then the document API.
func (s *Server) Handler() http.Handler {
	r := chi.NewMux()
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		requestLogger(s.logger),
		middleware.Recoverer,
	)

	SetupRoutes(r, s.store)
	return r
}

// SetupRoutes registers the document API routes.
func SetupRoutes(router chi.Router, st *store.Store) {
	h := NewHandlers(st)

	router.Get("/healthz", h.Health)

	router.Route("/v1/documents", func(r chi.Router) {
		r.Get("/", h.List)
		r.Route("/{key}", func(r chi.Router) {
			r.Put("/", h.Put)
			r.Get("/", h.Get)
			r.Delete("/", h.Delete)
			r.Get("/type", h.Type)
			r.Get("/json", h.GetJSON)
			r.Put("/json", h.PutJSON)
			r.Get("/tokens", h.Tokens)
			r.Route("/array", func(r chi.Router) {
				r.Post("/append", h.ArrayAppend)
				r.Post("/insert", h.ArrayInsert)
				r.Post("/pop", h.ArrayPop)
				r.Get("/length", h.ArrayLength)
			})
			r.Post("/merge", h.Merge)
			r.Post("/validate", h.Validate)
			r.Post("/path", h.Path)
		})
	})
}

// requestLogger logs one line per request through slog.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			logger.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}
