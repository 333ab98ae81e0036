package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"wowtoc/internal/api"
	"wowtoc/internal/backend"
	"wowtoc/internal/config"
	"wowtoc/internal/session"
	"wowtoc/internal/storage"
	"wowtoc/web"
)

// New wires storage, the backend client and sessions into an HTTP handler.
// ctx bounds every background fetch started by sessions.
func New(ctx context.Context, cfg config.Config, kv storage.KV) http.Handler {
	src := backend.NewClient(cfg.Backend.BaseURL, backend.WithTimeout(cfg.Backend.Timeout))
	sessions := session.NewManager(ctx, kv, src, cfg.UI.DefaultRegion, cfg.Session.CookieName,
		session.WithIdleTTL(cfg.Session.IdleTTL))
	go sessions.Janitor(ctx, time.Minute)
	h := api.NewHandler(sessions, web.Templates(), cfg.UI.HistoryDepth, cfg.UI.RenderWait)
	return api.Router(h)
}

func Run(cfg config.Config) {
	rootCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Storage
	kv, err := storage.Open(rootCtx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Storage.Driver).Msg("init storage")
	}
	defer func() {
		if err := kv.Close(); err != nil {
			log.Error().Err(err).Msg("close storage")
		}
	}()

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           New(rootCtx, cfg, kv),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.UI.RenderWait + 10*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info().
			Str("addr", cfg.Server.Addr).
			Str("backend", cfg.Backend.BaseURL).
			Str("storage", cfg.Storage.Driver).
			Msg("http server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server crashed")
		}
	}()

	waitForSignal()
	log.Info().Msg("shutdown...")

	shCtx, shCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shCancel()
	cancel() // stop background fetches
	_ = srv.Shutdown(shCtx)
}

func waitForSignal() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c
}
