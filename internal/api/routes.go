package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/task-manager-api/internal/api/middleware"
)

// Handlers bundles the route handlers and the auth gate.
type Handlers struct {
	Users   *UserHandler
	Avatars *AvatarHandler
	Tasks   *TaskHandler
	Auth    *middleware.AuthMiddleware
}

// Mount registers the user, avatar and task routes on r.
func Mount(r chi.Router, h Handlers) {
	// Public endpoints
	r.Post("/users", h.Users.Register)
	r.Post("/users/login", h.Users.Login)
	r.Get("/users/{id}/avatar", h.Avatars.Get)

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(h.Auth.Authenticate)

		r.Post("/users/logout", h.Users.Logout)
		r.Post("/users/logoutAll", h.Users.LogoutAll)
		r.Get("/users/me", h.Users.Me)
		r.Patch("/users/me", h.Users.UpdateMe)
		r.Delete("/users/me", h.Users.DeleteMe)
		r.Post("/users/me/avatar", h.Avatars.Upload)
		r.Delete("/users/me/avatar", h.Avatars.Delete)

		r.Get("/tasks", h.Tasks.List)
		r.Post("/tasks", h.Tasks.Create)
		r.Get("/tasks/{id}", h.Tasks.Get)
		r.Patch("/tasks/{id}", h.Tasks.Update)
		r.Delete("/tasks/{id}", h.Tasks.Delete)
	})
}
