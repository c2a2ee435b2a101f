package main

import (
	"net/http"

	"StandupBot/api"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// SetupRouter mounts the health check and, when a server is given, the Slack
// interactivity endpoint.
func SetupRouter(interactions *api.InteractionServer) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", api.HandleHealthCheck)
	if interactions != nil {
		r.Post("/slack/interactions", interactions.HandleInteractions)
	}

	return r
}
