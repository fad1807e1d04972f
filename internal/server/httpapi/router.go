package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter wires the API routes. metrics may be nil.
//
// Middleware order: RequestID → AccessLog → Recoverer.
func NewRouter(users AuthService, l logging.Logger, metrics http.Handler) http.Handler {
	h := NewHandler(users, l)

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(AccessLog(l))
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)

		r.Group(func(r chi.Router) {
			r.Use(RequireToken(users))
			r.Get("/me", h.Me)
		})
	})

	if metrics != nil {
		r.Method(http.MethodGet, "/metrics", metrics)
	}

	return r
}
