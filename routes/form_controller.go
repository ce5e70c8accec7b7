package routes

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/material-forms/api/app"
	"github.com/material-forms/api/export"
	"github.com/material-forms/api/httpx"
	"github.com/material-forms/api/log"
	"github.com/material-forms/api/model"
	"github.com/material-forms/api/routes/middlewares"
	"github.com/material-forms/api/stats"
	"github.com/material-forms/api/store"
)

type formCreate struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	ThemeColor  string  `json:"themeColor"`
}

type formPatch struct {
	Title       *string           `json:"title"`
	Description *string           `json:"description"`
	ThemeColor  *string           `json:"themeColor"`
	Questions   *[]model.Question `json:"questions"`
}

func CreateForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		input := formCreate{}
		err := render.DecodeJSON(r.Body, &input)
		if err != nil && !errors.Is(err, io.EOF) {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		if input.Title == "" {
			input.Title = model.DefaultFormTitle
		}
		if input.ThemeColor == "" {
			input.ThemeColor = model.DefaultThemeColor
		}

		form, err := app.Forms.Create(r.Context(), middlewares.UserID(r), input.Title, input.Description, input.ThemeColor)
		if err != nil {
			httpx.LogInternalError(w, "db.insert_form", err)
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, form)
	}
}

func ListForms(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		forms, err := app.Forms.ByOwner(r.Context(), middlewares.UserID(r))
		if err != nil {
			httpx.LogInternalError(w, "db.get_forms", err)
			return
		}

		render.JSON(w, r, forms)
	}
}

func GetForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		form, ok := ownedForm(app, w, r)
		if !ok {
			return
		}

		render.JSON(w, r, form)
	}
}

func UpdateForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		form, ok := ownedForm(app, w, r)
		if !ok {
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.read_body")
			return
		}

		patch := formPatch{}
		err = json.Unmarshal(body, &patch)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		if patch.Title != nil {
			form.Title = *patch.Title
		}
		if patch.ThemeColor != nil {
			form.ThemeColor = *patch.ThemeColor
		}
		// an explicit null clears the description, an absent key keeps it
		var keys map[string]json.RawMessage
		if json.Unmarshal(body, &keys) == nil {
			if _, present := keys["description"]; present {
				form.Description = patch.Description
			}
		}
		if patch.Questions != nil {
			err = model.ValidateQuestions(*patch.Questions)
			if err != nil {
				httpx.JSONError(w, r, http.StatusBadRequest, err.Error())
				return
			}
			form.Questions = *patch.Questions
		}

		err = app.Forms.Update(r.Context(), form)
		if err != nil {
			httpx.LogInternalError(w, "db.update_form", err)
			return
		}

		updated, err := app.Forms.ByID(r.Context(), form.ID)
		if err != nil {
			httpx.LogInternalError(w, "db.get_form", err)
			return
		}
		render.JSON(w, r, updated)
	}
}

func DeleteForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		form, ok := ownedForm(app, w, r)
		if !ok {
			return
		}

		err := app.Forms.Delete(r.Context(), form.ID)
		if err != nil {
			httpx.LogInternalError(w, "db.delete_form", err)
			return
		}

		render.JSON(w, r, map[string]any{"success": true})
	}
}

func PublishForm(app app.App) http.HandlerFunc {
	return setStatus(app, model.StatusPublished)
}

func CloseForm(app app.App) http.HandlerFunc {
	return setStatus(app, model.StatusClosed)
}

func setStatus(app app.App, status model.FormStatus) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		form, ok := ownedForm(app, w, r)
		if !ok {
			return
		}

		if !form.Status.CanTransition(status) {
			httpx.JSONError(w, r, http.StatusConflict, "Form cannot transition from "+string(form.Status)+" to "+string(status))
			return
		}

		err := app.Forms.SetStatus(r.Context(), form.ID, status)
		if err != nil {
			httpx.LogInternalError(w, "db.update_form_status", err)
			return
		}

		updated, err := app.Forms.ByID(r.Context(), form.ID)
		if err != nil {
			httpx.LogInternalError(w, "db.get_form", err)
			return
		}
		render.JSON(w, r, updated)
	}
}

func GetFormStats(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		form, ok := ownedForm(app, w, r)
		if !ok {
			return
		}

		submissions, err := app.Submissions.ByForm(r.Context(), form.ID)
		if err != nil {
			httpx.LogInternalError(w, "db.get_submissions", err)
			return
		}

		render.JSON(w, r, stats.Aggregate(form, submissions))
	}
}

func GetFormSubmissions(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		form, ok := ownedForm(app, w, r)
		if !ok {
			return
		}

		submissions, err := app.Submissions.ByForm(r.Context(), form.ID)
		if err != nil {
			httpx.LogInternalError(w, "db.get_submissions", err)
			return
		}

		render.JSON(w, r, map[string]any{"submissions": submissions})
	}
}

func ExportForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		form, ok := ownedForm(app, w, r)
		if !ok {
			return
		}

		submissions, err := app.Submissions.ByForm(r.Context(), form.ID)
		if err != nil {
			httpx.LogInternalError(w, "db.get_submissions", err)
			return
		}

		csv := export.CSV(form, submissions)
		filename := export.Filename(form.Title)

		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`.csv"`)
		w.Write([]byte(csv))
	}
}

// ownedForm loads the form in the id URL param and enforces ownership.
// Responds with 404 or 403 and returns ok=false when the caller may not
// touch it.
func ownedForm(app app.App, w http.ResponseWriter, r *http.Request) (model.Form, bool) {
	formID := chi.URLParam(r, "id")

	form, err := app.Forms.ByID(r.Context(), formID)
	if errors.Is(err, store.ErrNotFound) {
		httpx.LogNotFound(w, r, "get_form", formID)
		return model.Form{}, false
	}
	if err != nil {
		httpx.LogInternalError(w, "db.get_form", err)
		return model.Form{}, false
	}

	if form.OwnerID != middlewares.UserID(r) {
		httpx.JSONError(w, r, http.StatusForbidden, "Not authorized")
		return model.Form{}, false
	}

	return form, true
}
