package routes

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-chi/render"
	"golang.org/x/crypto/bcrypt"

	"github.com/material-forms/api/app"
	"github.com/material-forms/api/httpx"
	"github.com/material-forms/api/log"
	"github.com/material-forms/api/routes/middlewares"
	"github.com/material-forms/api/store"
)

const bcryptCost = 12

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func Register(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := registerRequest{}
		err := render.DecodeJSON(r.Body, &req)
		if err != nil || req.Email == "" || req.Password == "" {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		_, err = app.Users.ByEmail(r.Context(), req.Email)
		if err == nil {
			httpx.JSONError(w, r, http.StatusConflict, "Email already registered")
			return
		}
		if !errors.Is(err, store.ErrNotFound) {
			httpx.LogInternalError(w, "db.get_user", err)
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
		if err != nil {
			httpx.LogInternalError(w, "auth.hash_password", err)
			return
		}

		user, err := app.Users.Create(r.Context(), req.Name, req.Email, hash)
		if err != nil {
			httpx.LogInternalError(w, "db.insert_user", err)
			return
		}

		token, status := issueToken(app, req.Email, req.Password)
		if status != http.StatusOK {
			httpx.LogStatus(w, http.StatusInternalServerError, log.ErrorLevel, "auth.issue_token")
			return
		}

		render.JSON(w, r, map[string]any{
			"token": token,
			"user":  user,
		})
	}
}

func Login(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := loginRequest{}
		err := render.DecodeJSON(r.Body, &req)
		if err != nil || req.Email == "" || req.Password == "" {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		user, err := app.Users.ByEmail(r.Context(), req.Email)
		if errors.Is(err, store.ErrNotFound) {
			httpx.JSONError(w, r, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.get_user", err)
			return
		}

		token, status := issueToken(app, req.Email, req.Password)
		if status == http.StatusUnauthorized {
			httpx.JSONError(w, r, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		if status != http.StatusOK {
			httpx.LogStatus(w, http.StatusInternalServerError, log.ErrorLevel, "auth.issue_token")
			return
		}

		render.JSON(w, r, map[string]any{
			"token": token,
			"user":  user,
		})
	}
}

func Me(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := app.Users.ByID(r.Context(), middlewares.UserID(r))
		if errors.Is(err, store.ErrNotFound) {
			httpx.JSONError(w, r, http.StatusNotFound, "User not found")
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.get_user", err)
			return
		}

		render.JSON(w, r, user)
	}
}

func Refresh(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("authorization")
		match := regexp.MustCompile(`(?i)^refresh\s+(.*)`).FindStringSubmatch(auth)
		if len(match) == 0 {
			httpx.LogStatus(w, http.StatusUnauthorized, log.DebugLevel, "refresh.token")
			return
		}
		token := match[1]

		body := url.Values{
			"grant_type":    {"refresh_token"},
			"refresh_token": {token},
		}

		req, err := http.NewRequest("POST", "/", strings.NewReader(body.Encode()))
		if err != nil {
			httpx.LogStatus(w, http.StatusInternalServerError, log.DebugLevel, "refresh.new_request")
			return
		}
		req.Header.Set("content-type", "application/x-www-form-urlencoded")
		req.Header.Set("content-length", strconv.Itoa(len(body.Encode())))

		resp := httpx.NewResponseBuffer()
		app.UserCredentials(resp, req)
		resp.Flush(w)
	}
}

// issueToken runs the bearer server's password grant against an in-memory
// request and pulls the access token out of its response.
func issueToken(app app.App, email, password string) (token string, status int) {
	body := url.Values{
		"grant_type": {"password"},
		"username":   {email},
		"password":   {password},
	}

	req, err := http.NewRequest("POST", "/", strings.NewReader(body.Encode()))
	if err != nil {
		return "", http.StatusInternalServerError
	}
	req.Header.Set("content-type", "application/x-www-form-urlencoded")
	req.Header.Set("content-length", strconv.Itoa(len(body.Encode())))

	resp := httpx.NewResponseBuffer()
	app.UserCredentials(resp, req)
	status = resp.Status()
	if status != http.StatusOK {
		return "", status
	}

	var payload map[string]any
	err = json.Unmarshal(resp.Body(), &payload)
	if err != nil {
		return "", http.StatusInternalServerError
	}

	token, _ = payload["access_token"].(string)
	if token == "" {
		return "", http.StatusInternalServerError
	}
	return token, http.StatusOK
}
