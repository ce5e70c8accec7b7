package routes

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/material-forms/api/app"
	"github.com/material-forms/api/httpx"
	"github.com/material-forms/api/log"
	"github.com/material-forms/api/model"
	"github.com/material-forms/api/routes/middlewares"
	"github.com/material-forms/api/store"
)

type publicForm struct {
	ID          string           `json:"id"`
	Title       string           `json:"title"`
	Description *string          `json:"description"`
	ThemeColor  string           `json:"themeColor"`
	Questions   []model.Question `json:"questions"`
}

type submitRequest struct {
	Answers model.Answers `json:"answers"`
}

func PublicGetForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formID := chi.URLParam(r, "id")

		form, err := app.Forms.ByID(r.Context(), formID)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			httpx.LogInternalError(w, "db.get_form", err)
			return
		}
		if err != nil || form.Status != model.StatusPublished {
			log.Debugf("public.get_form: not published (%v)", formID)
			httpx.JSONError(w, r, http.StatusNotFound, "Form not found or not published")
			return
		}

		render.JSON(w, r, publicForm{
			ID:          form.ID,
			Title:       form.Title,
			Description: form.Description,
			ThemeColor:  form.ThemeColor,
			Questions:   form.Questions,
		})
	}
}

func PublicSubmitForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formID := chi.URLParam(r, "id")

		// one submission per respondent per form within the cooldown window;
		// the stamp lands before validation, matching the route-level guard
		// this grew out of
		ok, retryAfter := app.Allow(submitKey(r, formID))
		if !ok {
			render.Status(r, http.StatusTooManyRequests)
			render.JSON(w, r, map[string]any{
				"error":             "Too many requests. Please try again later.",
				"retryAfterSeconds": retryAfter,
			})
			return
		}

		req := submitRequest{}
		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		form, err := app.Forms.ByID(r.Context(), formID)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			httpx.LogInternalError(w, "db.get_form", err)
			return
		}
		if err != nil || form.Status != model.StatusPublished {
			log.Debugf("public.submit: not accepting (%v)", formID)
			httpx.JSONError(w, r, http.StatusNotFound, "Form not found or not accepting responses")
			return
		}

		if missing := model.ValidateAnswers(form.Questions, req.Answers); missing != nil {
			render.Status(r, http.StatusUnprocessableEntity)
			render.JSON(w, r, map[string]any{
				"error":  "Missing required answers",
				"fields": missing,
			})
			return
		}

		if req.Answers == nil {
			req.Answers = model.Answers{}
		}
		submission, err := app.Submissions.Create(r.Context(), form.ID, req.Answers)
		if err != nil {
			httpx.LogInternalError(w, "db.insert_submission", err)
			return
		}

		render.JSON(w, r, map[string]any{
			"id":          submission.ID,
			"submittedAt": submission.SubmittedAt,
		})
	}
}

// submitKey derives the cooldown key for a submission. No form id in the
// path means no key, which the limiter treats as unlimited.
func submitKey(r *http.Request, formID string) string {
	if formID == "" {
		return ""
	}
	return middlewares.ClientIP(r) + ":" + formID
}
