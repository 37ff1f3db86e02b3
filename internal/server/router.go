package server

import (
	"context"
	"net/http"

	"batchbook/internal/handlers"
	applog "batchbook/internal/log"
)

type route struct {
	pattern   string
	handler   http.HandlerFunc
	protected bool
}

var routes = []route{
	{"/healthz", handlers.Health, false},
	{"/login", handlers.Login, false},
	{"/signup", handlers.Signup, false},
	{"/logout", handlers.Logout, false},
	{"GET /{$}", handlers.Home, true},
	{"GET /profile", handlers.Profile, true},
	{"POST /profile", handlers.Profile, true},
	{"GET /recipes/new", handlers.NewRecipe, true},
	{"POST /recipes/new", handlers.NewRecipe, true},
	{"GET /recipes/{id}", handlers.RecipeDetail, true},
	{"GET /recipes/{id}/edit", handlers.EditRecipe, true},
	{"POST /recipes/{id}/edit", handlers.EditRecipe, true},
	{"GET /recipes/{id}/batches/new", handlers.NewBatch, true},
	{"POST /recipes/{id}/batches/new", handlers.NewBatch, true},
	{"GET /batches/{id}", handlers.BatchDetail, true},
	{"GET /batches/{id}/edit", handlers.EditBatch, true},
	{"POST /batches/{id}/edit", handlers.EditBatch, true},
}

// newRouter registers every route. metrics and storage may be nil.
func newRouter(metrics, storage http.Handler) http.Handler {
	mux := http.NewServeMux()
	applog.Debug(context.Background(), "registering http routes")
	for _, rt := range routes {
		var h http.Handler = rt.handler
		if rt.protected {
			h = handlers.RequireAuthentication(h)
		}
		mux.Handle(rt.pattern, h)
		applog.Debug(context.Background(), "route registered", "pattern", rt.pattern, "protected", rt.protected)
	}
	if metrics != nil {
		mux.Handle("GET /metrics", metrics)
		applog.Debug(context.Background(), "route registered", "pattern", "GET /metrics")
	}
	if storage != nil {
		mux.Handle("GET /storage/", http.StripPrefix("/storage", storage))
		applog.Debug(context.Background(), "route registered", "pattern", "GET /storage/", "static", true)
	}
	return mux
}
