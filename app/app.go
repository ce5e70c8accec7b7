package app

import (
	"github.com/go-chi/oauth"

	"github.com/material-forms/api/config"
	"github.com/material-forms/api/ratelimit"
	"github.com/material-forms/api/store"
)

type App struct {
	store.Store
	*oauth.BearerServer
	*ratelimit.Limiter
	config.Config
}
