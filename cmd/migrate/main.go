package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"strings"

	"affiliate-catalog/internal/config"
	"affiliate-catalog/internal/db"
	"affiliate-catalog/internal/migrate"
	"github.com/joho/godotenv"
)

func main() {
	down := flag.Bool("down", false, "Roll back the client-state schema instead of applying it")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("load .env: %v", err)
	}
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[migrate] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	if !strings.HasPrefix(cfg.StateDSN, "postgres://") && !strings.HasPrefix(cfg.StateDSN, "postgresql://") {
		logger.Fatalf("STATE_DSN must be a postgres url, got %q", cfg.StateDSN)
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.StateDSN)
	if err != nil {
		logger.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	if *down {
		if err := migrate.Rollback(ctx, pool); err != nil {
			logger.Fatalf("rollback migrations: %v", err)
		}
		logger.Println("migrations rolled back")
		return
	}

	if err := migrate.Apply(ctx, pool); err != nil {
		logger.Fatalf("apply migrations: %v", err)
	}

	logger.Println("migrations applied")
}
