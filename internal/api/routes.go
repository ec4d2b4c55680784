// Package api serves the whiteboard store over HTTP.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// SetupRoutes builds the router for the store service.
func SetupRoutes(h *Handlers, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(h.log))
	r.Use(middleware.Recoverer)

	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID", "X-Client-Session"},
		MaxAge:         300,
	}))

	r.Get("/health", h.HealthCheck)

	r.Route("/whiteboards", func(r chi.Router) {
		r.Post("/", h.CreateWhiteboard)
		r.Get("/", h.GetWhiteboard)
		r.Put("/", h.UpdateWhiteboard)
		r.Delete("/", h.DeleteWhiteboard)
		r.Delete("/clear", h.ClearWhiteboard)
	})

	r.Route("/strokes", func(r chi.Router) {
		r.Post("/", h.AddStroke)
		r.Get("/", h.GetStrokes)
		r.Post("/delete", h.DeleteStrokes)
	})

	return r
}

// requestLogger logs one line per request with the chi request id.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
				"session", r.Header.Get("X-Client-Session"),
			)
		})
	}
}
