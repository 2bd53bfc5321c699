package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/orgball2608/tweet-radar/pkg/config"
	"github.com/orgball2608/tweet-radar/pkg/logger"
	"go.uber.org/fx"
)

// New builds the HTTP server around the API handlers and hooks it into the
// fx lifecycle.
func New(lc fx.Lifecycle, log logger.Logger, cfg *config.Config, h *Handlers) *http.Server {
	mux := http.NewServeMux()
	h.Register(mux)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			log.Info(fmt.Sprintf("Starting server on :%d", cfg.App.Port))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Error("Server failed", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})

	return srv
}
