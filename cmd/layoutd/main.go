// layoutd is the layout engine server: it migrates the schema, seeds the
// core slots and serves the REST API.
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"github.com/makersimpulse/layoutengine/internal/app"
	"github.com/makersimpulse/layoutengine/internal/config"
	"github.com/makersimpulse/layoutengine/internal/platform/migrations"
	"github.com/makersimpulse/layoutengine/internal/storage"
	"github.com/makersimpulse/layoutengine/internal/storage/postgres"
	"github.com/makersimpulse/layoutengine/internal/storage/supabase"
	"github.com/makersimpulse/layoutengine/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "path to layoutd.yaml (defaults to config/layoutd.yaml)")
	flag.Parse()

	var (
		cfg config.Config
		err error
	)
	if *configPath != "" {
		cfg, err = config.LoadFromPath(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Logging).WithField("service", "layoutd")

	store, cleanup, err := openStore(cfg.Store, log)
	if err != nil {
		log.WithError(err).Error("open store")
		os.Exit(1)
	}
	defer cleanup()

	application := app.New(app.Stores{Layouts: store}, app.Options{
		AuthTokens:        cfg.Auth.Tokens,
		AllowedOrigins:    cfg.Server.AllowedOrigins,
		RequestsPerSecond: cfg.Server.RequestsPerSecond,
		Burst:             cfg.Server.Burst,
	}, log)

	seedCtx, cancelSeed := context.WithTimeout(context.Background(), 30*time.Second)
	application.Seed(seedCtx)
	cancelSeed()

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           application.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("listening on %s (store driver %s)", addr, cfg.Store.Driver)
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stop:
		log.Infof("received %s, shutting down", sig)
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("server failed")
			os.Exit(1)
		}
		return
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
		os.Exit(1)
	}
}

// openStore builds the configured store. The returned cleanup is safe to
// call exactly once.
func openStore(cfg config.StoreConfig, log *logger.Logger) (storage.LayoutStore, func(), error) {
	switch cfg.Driver {
	case config.DriverMemory:
		log.Warnf("using in-memory store; layouts are lost on restart")
		return storage.NewMemory(), func() {}, nil

	case config.DriverPostgres:
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres: %w", err)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("ping postgres: %w", err)
		}
		if err := migrations.Apply(ctx, db); err != nil {
			db.Close()
			return nil, nil, err
		}
		return postgres.New(db), func() { db.Close() }, nil

	case config.DriverSupabase:
		client, err := supabase.NewClient(supabase.Config{
			URL:        cfg.SupabaseURL,
			ServiceKey: cfg.SupabaseKey,
		})
		if err != nil {
			return nil, nil, err
		}
		return supabase.NewStore(client), func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
