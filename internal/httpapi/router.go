package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(EchoRequestID)
	r.Use(AccessLog)
	r.Use(Recover)
	r.Use(Cors)

	health := HealthHandler{Hub: d.Hub}
	jobs := JobsHandler{Jobs: d.Jobs}
	scrape := ScrapeHandler{Runs: d.Runs, RunContext: d.RunContext}
	ev := EventsHandler{Hub: d.Hub}
	cfg := ConfigHandler{Config: d.Config, Path: d.ConfigPath}

	r.Get("/health", health.Health)

	r.Route("/jobs", func(r chi.Router) {
		r.Get("/", jobs.List)
		r.Get("/{id}", jobs.Get)
	})

	r.Route("/scrape", func(r chi.Router) {
		r.Get("/status", scrape.Status)
		r.Post("/run", scrape.Run)
	})

	r.Get("/events", ev.ServeSSE)

	r.Route("/config", func(r chi.Router) {
		r.Get("/path", cfg.ConfigPath)
		r.Get("/validate", cfg.Validate)
	})

	if d.AllowSecretWrites {
		sec := SecretsHandler{}
		r.Route("/secrets", func(r chi.Router) {
			r.Get("/", sec.List)
			r.Put("/{account}", sec.Set)
			r.Delete("/{account}", sec.Delete)
		})
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, r, http.StatusNotFound, "not_found", "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, r, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	})
	return r
}
