// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/sigil-dev/sparqlboard/internal/board"
	"github.com/sigil-dev/sparqlboard/internal/config"
	"github.com/sigil-dev/sparqlboard/internal/events"
	"github.com/sigil-dev/sparqlboard/internal/metrics"
	"github.com/sigil-dev/sparqlboard/internal/server"
	"github.com/sigil-dev/sparqlboard/internal/sparql"
	"github.com/sigil-dev/sparqlboard/internal/store"
	_ "github.com/sigil-dev/sparqlboard/internal/store/sqlite" // register sqlite backend
	"github.com/sigil-dev/sparqlboard/internal/surface"
	"github.com/sigil-dev/sparqlboard/internal/table"
	sberr "github.com/sigil-dev/sparqlboard/pkg/errors"
)

// App holds the subsystems behind one board and manages their lifecycle.
type App struct {
	Config  *config.Config
	Client  *sparql.Client
	History store.HistoryStore
	Board   *board.Board
	// Bus carries terminal and pointer events to the board's views.
	Bus *events.Bus
	// Metrics is nil unless metrics are enabled.
	Metrics *metrics.Prometheus
}

// executorOverride replaces the SPARQL client as the board's executor.
// Tests set it to avoid the network.
var executorOverride board.Executor

// WireApp creates every subsystem from cfg and wires them together.
func WireApp(cfg *config.Config) (*App, error) {
	client, err := sparql.New(sparql.Options{
		Endpoint: cfg.Endpoint.URL,
		Accept:   cfg.Endpoint.Accept,
		Timeout:  cfg.Endpoint.Timeout,
		Username: cfg.Endpoint.Username,
		Password: cfg.Endpoint.Password,
		Token:    cfg.Endpoint.Token,
	})
	if err != nil {
		return nil, err
	}

	if err := ensureStorageDir(cfg.Storage); err != nil {
		return nil, err
	}
	history, err := store.NewHistoryStore(&store.StorageConfig{
		Backend:      cfg.Storage.Backend,
		DSN:          cfg.Storage.DSN,
		HistoryLimit: cfg.Storage.HistoryLimit,
	})
	if err != nil {
		return nil, err
	}

	app := &App{Config: cfg, Client: client, History: history}
	if cfg.Metrics.Enabled {
		app.Metrics = metrics.NewPrometheus()
		metrics.SetRecorder(app.Metrics)
	}

	var exec board.Executor = client
	if executorOverride != nil {
		exec = executorOverride
	}

	renderer := &surface.Headless{}
	layouts := surface.NewLayoutProvider(surface.Layout(cfg.Graph.FallbackLayout), cfg.Graph.ProbeTimeout)
	layouts.RegisterEnhanced(surface.LayoutCoseBilkent, renderer.ProbeEnhanced)

	render := surface.DefaultRenderOptions()
	if cfg.Graph.WheelSensitivity > 0 {
		render.WheelSensitivity = cfg.Graph.WheelSensitivity
	}

	app.Bus = &events.Bus{}
	app.Board = board.New(board.Options{
		Bus:      app.Bus,
		Executor: exec,
		History:  history,
		Endpoint: client.Endpoint(),
		Table: table.Options{
			PageSize:       cfg.Table.PageSize,
			AvailableWidth: cfg.Table.AvailableWidth,
			MinColumnWidth: cfg.Table.MinColumnWidth,
			MinDragWidth:   cfg.Table.MinDragWidth,
		},
		Layout: surface.Layout(cfg.Graph.Layout),
		Surface: surface.Options{
			Renderer:      renderer,
			Layouts:       layouts,
			ZoomStep:      cfg.Graph.ZoomStep,
			RenderOptions: render,
		},
		Image: surface.ImageOptions{Width: cfg.Graph.ImageWidth, Height: cfg.Graph.ImageHeight},
	})

	return app, nil
}

// NewServer builds the HTTP API in front of the app's board.
func (a *App) NewServer() (*server.Server, error) {
	srv, err := server.New(server.Config{
		ListenAddr:  a.Config.Networking.Listen,
		CORSOrigins: a.Config.Networking.CORSOrigins,
		RateLimit: server.RateLimitConfig{
			RequestsPerSecond: a.Config.Networking.QueryRate,
			Burst:             a.Config.Networking.QueryBurst,
		},
	}, a.Board)
	if err != nil {
		return nil, err
	}
	if a.Metrics != nil {
		srv.RegisterMetrics(a.Metrics.Handler())
	}
	return srv, nil
}

// Close releases every subsystem. It is safe to call on a partial App.
func (a *App) Close() error {
	if a.Board != nil {
		a.Board.Close()
	}
	if a.Metrics != nil {
		metrics.SetRecorder(nil)
	}

	var errs []error
	if a.History != nil {
		if err := a.History.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ensureStorageDir creates the parent directory of a file-backed sqlite DSN.
func ensureStorageDir(cfg config.StorageConfig) error {
	dsn := cfg.DSN
	if cfg.Backend == "memory" || dsn == "" || strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory") {
		return nil
	}
	dsn = strings.TrimPrefix(dsn, "file:")
	if i := strings.IndexByte(dsn, '?'); i >= 0 {
		dsn = dsn[:i]
	}
	dir := filepath.Dir(dsn)
	if dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return sberr.Errorf(sberr.CodeCLISetupFailure, "creating storage directory %s: %w", dir, err)
	}
	return nil
}
