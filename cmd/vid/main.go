// Package main provides the vid binary entry point that starts the HTTP
// server for minting and verifying signed identifiers. It loads configuration
// from environment variables, validates it, wires the sqlite audit trail,
// metrics manager, and retention janitor to the application service, and then
// starts the HTTP server.
//
// The application flow:
//  1. Load defaults and apply environment variables.
//  2. Validate configuration (keys, node identity, paths).
//  3. Open the audit database and initialize the schema.
//  4. Build the service, janitor, and metrics manager.
//  5. Configure and start the HTTP server.
//
// It blocks until the server exits with an error (other than
// http.ErrServerClosed) or a termination signal arrives, then shuts down
// gracefully. It exits the process with a distinct non-zero status code per
// startup stage on fatal errors.
package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/haukened/vid/internal/app"
	"github.com/haukened/vid/internal/config"
	"github.com/haukened/vid/internal/httpx"
	"github.com/haukened/vid/internal/janitor"
	"github.com/haukened/vid/internal/metrics"
	"github.com/haukened/vid/internal/store/sqlite"
)

// version is stamped at build time via -ldflags "-X main.version=...".
var version = "dev"

// realClock implements app.Clock using time.Now.
type realClock struct{}

func (realClock) Now() time.Time { return time.Now().UTC() }

func loadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration error", "err", err)
		os.Exit(2)
	}
	return cfg
}

func ensureDataDir(dir string) {
	if st, err := os.Stat(dir); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if mkErr := os.MkdirAll(dir, 0o700); mkErr != nil {
				slog.Error("failed to create data directory", "dir", dir, "err", mkErr)
				os.Exit(3)
			}
		} else {
			slog.Error("stat data directory", "dir", dir, "err", err)
			os.Exit(3)
		}
	} else if !st.IsDir() {
		slog.Error("data path not directory", "dir", dir)
		os.Exit(3)
	}
}

func openDatabase(cfg *config.Config) (*sql.DB, *sqlite.Audit) {
	db, err := sql.Open("sqlite3", cfg.SQLiteDSN())
	if err != nil {
		slog.Error("open sqlite driver", "err", err)
		os.Exit(4)
	}
	audit, err := sqlite.New(db)
	if err != nil {
		slog.Error("init sqlite schema", "err", err)
		os.Exit(4)
	}
	return db, audit
}

func buildService(cfg *config.Config, audit *sqlite.Audit, meter *metrics.Manager) *app.Service {
	keys, err := cfg.ParseKeys()
	if err != nil {
		slog.Error("parse keys", "err", err)
		os.Exit(2)
	}
	node, err := cfg.NodeSpec()
	if err != nil {
		slog.Error("node identity", "err", err)
		os.Exit(2)
	}
	svc, err := app.New(app.Config{
		Keys:       keys,
		CurrentKey: uint8(cfg.CurrentKey),
		Node:       node,
		Clock:      realClock{},
		Audit:      audit,
		Meter:      meter,
	})
	if err != nil {
		slog.Error("build service", "err", err)
		os.Exit(5)
	}
	return svc
}

func buildHandler(cfg *config.Config, svc *app.Service, audit *sqlite.Audit, db *sql.DB, meter *metrics.Manager) http.Handler {
	readiness := func(ctx context.Context) error {
		return db.PingContext(ctx)
	}
	h := httpx.New(svc, audit, readiness)
	h.Metrics = metrics.Handler(meter, cfg.MetricsToken)
	h.Version = version
	h.Identity = svc.Identity()
	h.KeyVersions = svc.KeyVersions()
	return h.Router()
}

func newServer(cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{Addr: cfg.Addr, Handler: handler, ReadTimeout: 5 * time.Second, WriteTimeout: 10 * time.Second, IdleTimeout: 120 * time.Second}
}

func run() error {
	cfg := loadConfig()
	ensureDataDir(cfg.DataDir)
	db, audit := openDatabase(cfg)
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	meter := metrics.New(db, metrics.Config{FlushInterval: cfg.MetricsFlush})
	if err := meter.InitSchema(ctx); err != nil {
		slog.Error("init metrics schema", "err", err)
		os.Exit(4)
	}
	meter.Start(ctx)
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		meter.Stop(flushCtx)
	}()

	svc := buildService(cfg, audit, meter)

	jan := janitor.New(audit, janitor.Config{
		Interval:  cfg.JanitorInterval,
		Retention: cfg.AuditRetention,
		Meter:     meter,
	})
	jan.Start(ctx)
	defer jan.Stop()

	srv := newServer(cfg, buildHandler(cfg, svc, audit, db, meter))
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	slog.Info("starting server", "addr", cfg.Addr, "pid", os.Getpid(), "node_id", svc.Identity().ID, "node_source", string(svc.Identity().Source))

	select {
	case <-ctx.Done():
		slog.Info("shutdown signal received")
		shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutCtx); err != nil {
			return err
		}
		return nil
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	}
}

func main() {
	if err := run(); err != nil {
		slog.Error("server error", "err", err)
		os.Exit(1)
	}
}
