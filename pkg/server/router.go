package server

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// NewRouter builds the chi router for the chat API.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/api/health"))

	r.Route("/api", func(r chi.Router) {
		r.Post("/chat", h.Chat)
		r.Get("/memory/{userID}", h.Memory)
	})

	return r
}
