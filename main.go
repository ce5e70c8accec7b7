package main

import (
	"errors"
	"net/http"
	"time"

	"github.com/material-forms/api/app"
	"github.com/material-forms/api/config"
	"github.com/material-forms/api/database"
	"github.com/material-forms/api/httpx"
	"github.com/material-forms/api/log"
	"github.com/material-forms/api/ratelimit"
	"github.com/material-forms/api/routes"
	"github.com/material-forms/api/store"
)

func main() {
	cfg, err := config.ParseFlags()
	if err != nil {
		log.Fatal("main.config:", err)
	}
	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
	}

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatal("main.db.open:", err)
	}
	defer db.Close()

	st := store.New(db)
	bearerServer := httpx.NewBearerServer(db, st.Users, cfg)

	submitLimiter := ratelimit.New(cfg.SubmitCooldown)
	defer submitLimiter.Stop()

	app := app.App{
		Store:        st,
		BearerServer: bearerServer,
		Limiter:      submitLimiter,
		Config:       cfg,
	}

	handler := routes.Wire(app)

	err = runServer(cfg, handler)
	if !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("main.server:", err)
	}
}

func runServer(cfg config.Config, handler http.Handler) error {
	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	log.Info("Listening on " + cfg.Url())
	return srv.ListenAndServe()
}
