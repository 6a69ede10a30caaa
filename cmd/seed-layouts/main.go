// seed-layouts populates the core layout slots (topnav, footer, usermenu,
// admin dashboard, admin sidebar) with their defaults. Slots that already
// hold an active layout are left untouched, so it is safe to rerun.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/makersimpulse/layoutengine/internal/platform/migrations"
	"github.com/makersimpulse/layoutengine/internal/services/layouts"
	"github.com/makersimpulse/layoutengine/internal/storage"
	"github.com/makersimpulse/layoutengine/internal/storage/postgres"
	"github.com/makersimpulse/layoutengine/internal/storage/supabase"
	"github.com/makersimpulse/layoutengine/pkg/logger"
)

func main() {
	var (
		envFile = flag.String("env", "", "optional .env file with DATABASE_URL or SUPABASE_* settings")
		driver  = flag.String("driver", "supabase", "store driver: postgres|supabase")
		timeout = flag.Duration("timeout", 60*time.Second, "overall run timeout")
	)
	flag.Parse()

	log := logger.NewDefault("seed-layouts")

	if *envFile != "" {
		if err := godotenv.Load(*envFile); err != nil {
			log.WithError(err).Errorf("load env file %s", *envFile)
			os.Exit(1)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	store, cleanup, err := openStore(ctx, *driver)
	if err != nil {
		log.WithError(err).Error("open store")
		os.Exit(1)
	}
	defer cleanup()

	created := layouts.NewSeeder(store, log).EnsureDefaults(ctx)
	log.Infof("seeding complete, %d layouts created", created)
}

func openStore(ctx context.Context, driver string) (storage.LayoutStore, func(), error) {
	switch driver {
	case "postgres":
		dsn := os.Getenv("DATABASE_URL")
		if dsn == "" {
			return nil, nil, fmt.Errorf("DATABASE_URL is required for the postgres driver")
		}
		db, err := sql.Open("postgres", dsn)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("ping postgres: %w", err)
		}
		if err := migrations.Apply(ctx, db); err != nil {
			db.Close()
			return nil, nil, err
		}
		return postgres.New(db), func() { db.Close() }, nil

	case "supabase":
		client, err := supabase.NewClient(supabase.Config{})
		if err != nil {
			return nil, nil, err
		}
		return supabase.NewStore(client), func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unknown driver %q", driver)
	}
}
