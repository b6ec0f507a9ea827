package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/mstamatov/userpipe-backend/internal/handlers"
)

func SetupRoutes(r *chi.Mux, users *handlers.UserHandler) {
	// Read gateway
	r.Get("/users", users.ListUsers)
	r.Get("/users/{uid}", users.GetUser)
}
