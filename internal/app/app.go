package app

import (
	"context"
	"database/sql"
	"net/http"

	_ "github.com/lib/pq"
	"github.com/orgball2608/tweet-radar/internal/history"
	"github.com/orgball2608/tweet-radar/internal/ingest"
	_ "github.com/orgball2608/tweet-radar/internal/migrations"
	"github.com/orgball2608/tweet-radar/internal/pgx"
	repositories "github.com/orgball2608/tweet-radar/internal/repositories/fx"
	"github.com/orgball2608/tweet-radar/internal/server"
	"github.com/orgball2608/tweet-radar/internal/telegram"
	"github.com/orgball2608/tweet-radar/internal/telegram/telegramimpl"
	"github.com/orgball2608/tweet-radar/internal/triage"
	"github.com/orgball2608/tweet-radar/internal/twitter"
	"github.com/orgball2608/tweet-radar/internal/twitter/twitterimpl"
	"github.com/orgball2608/tweet-radar/pkg/config"
	"github.com/orgball2608/tweet-radar/pkg/logger"
	"github.com/pressly/goose/v3"
	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(
		config.New,
		logger.FxOption,
		pgx.New,
	),
	fx.Provide(
		fx.Annotate(
			twitterimpl.New,
			fx.As(new(twitter.Client)),
		),
		fx.Annotate(
			telegramimpl.New,
			fx.As(new(telegram.Client)),
		),
	),
	repositories.Module,
	fx.Provide(
		ingest.New,
		ingest.NewScheduler,
		triage.New,
		history.New,
		server.NewHandlers,
		server.New,
	),
	fx.Invoke(migrate),
	fx.Invoke(run),
)

// migrate applies pending schema migrations on startup. The migration files
// register themselves through their init functions.
func migrate(c *config.Config, log logger.Logger) error {
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	db, err := sql.Open("postgres", c.GetDSN())
	if err != nil {
		return err
	}
	defer db.Close()

	if err := goose.Up(db, "."); err != nil {
		return err
	}

	log.Info("Database migrations applied")
	return nil
}

func run(lc fx.Lifecycle, log logger.Logger, scheduler *ingest.Scheduler, _ *http.Server) {
	ctx, cancel := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			if err := scheduler.Start(ctx); err != nil {
				log.Error("Failed to start ingest scheduler", "error", err)
				return err
			}
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			return nil
		},
	})
}
