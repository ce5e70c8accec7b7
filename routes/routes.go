package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"github.com/material-forms/api/app"
	"github.com/material-forms/api/routes/middlewares"
)

func Wire(app app.App) http.Handler {
	root := chi.NewRouter()
	root.Use(middleware.Logger, middleware.Recoverer)

	root.Get("/", health)

	root.Route("/auth", func(r chi.Router) {
		r.Post("/register", Register(app))
		r.Post("/login", Login(app))
		r.Post("/refresh", Refresh(app))
		r.With(middlewares.Authenticated(app.TokenSecret)).Get("/me", Me(app))
	})

	root.Route("/forms", func(r chi.Router) {
		r.Use(middlewares.Authenticated(app.TokenSecret))

		// CRUD form
		r.Post("/", CreateForm(app))
		r.Get("/", ListForms(app))
		r.Get("/{id}", GetForm(app))
		r.Patch("/{id}", UpdateForm(app))
		r.Delete("/{id}", DeleteForm(app))

		// lifecycle
		r.Post("/{id}/publish", PublishForm(app))
		r.Post("/{id}/close", CloseForm(app))

		// owner reads
		r.Get("/{id}/stats", GetFormStats(app))
		r.Get("/{id}/submissions", GetFormSubmissions(app))
		r.Get("/{id}/export", ExportForm(app))
	})

	root.Route("/public/forms/{id}", func(r chi.Router) {
		r.Get("/", PublicGetForm(app))
		r.Post("/submit", PublicSubmitForm(app))
	})

	return root
}

func health(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]any{
		"status": "ok",
		"name":   "material-forms-api",
	})
}
