// Package cli implements the interactive clinician console: the UI layer
// on top of the record repository, sync engine and connectivity monitor.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/carechain/carechain/internal/client/api"
	"github.com/carechain/carechain/internal/client/config"
	"github.com/carechain/carechain/internal/client/monitor"
	"github.com/carechain/carechain/internal/client/repository"
	"github.com/carechain/carechain/internal/client/session"
	"github.com/carechain/carechain/internal/client/store"
	syncengine "github.com/carechain/carechain/internal/client/sync"
	"github.com/carechain/carechain/internal/logging"
)

type App struct {
	config *config.Config
	log    logging.Logger

	sess   *session.Session
	api    api.Client
	store  store.Store
	mon    *monitor.Monitor
	repo   *repository.Repository
	engine *syncengine.Engine

	reader *bufio.Reader
	out    *os.File
}

func NewApp(c *config.Config) (*App, error) {
	ctx := context.Background()

	log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	st, err := store.Open(ctx, c.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("initializing local store: %w", err)
	}

	sess := session.New()
	apiClient := api.NewRESTClient(c.BaseURL, sess,
		api.RetryPolicy{MaxRetries: c.RetryMaxAttempts, BaseDelay: c.RetryBaseDelay}, log)

	mon := monitor.New(apiClient, c.OnlineCheckInterval, log)
	repo := repository.New(apiClient, st, sess, mon.Online, log)
	engine := syncengine.New(apiClient, st, sess, mon.Online, repo.Promote, log)

	app := &App{
		config: c,
		log:    log,
		sess:   sess,
		api:    apiClient,
		store:  st,
		mon:    mon,
		repo:   repo,
		engine: engine,
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}

	mon.OnOnline(func(ctx context.Context) {
		if n := engine.Run(ctx); n > 0 {
			fmt.Fprintf(app.out, "\nSynced %d offline record(s).\n", n)
		}
	})
	sess.OnExpire(func() {
		fmt.Fprintln(app.out, "\nSession expired, please log in again.")
	})

	return app, nil
}

func (a *App) Run(ctx context.Context) {
	defer a.store.Close()
	a.Root(ctx)
}

func (a *App) isLoggedIn() bool {
	return a.sess.Valid()
}
