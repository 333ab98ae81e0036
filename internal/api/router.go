package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"wowtoc/internal/observability"
	"wowtoc/web"
)

func Router(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(observability.Measure)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(h.RenderWait + 5*time.Second))

	r.Get("/", h.Index)
	r.Post("/toggle", h.Toggle)
	r.Post("/region", h.SetRegion)
	r.Post("/region/{product}", h.SetProductRegion)
	r.Post("/clear", h.Clear)

	r.Get("/api/v1/selection", h.Selection)
	r.Post("/api/v1/selection/toggle", h.ToggleJSON)

	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(web.StaticFS())))
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", observability.MetricsHandler())
	return r
}
