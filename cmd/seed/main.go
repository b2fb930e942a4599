package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"affiliate-catalog/internal/cli"
	"affiliate-catalog/internal/config"
	"affiliate-catalog/internal/seed"
	"github.com/joho/godotenv"
)

func main() {
	user := flag.String("user", "", "Admin username or email")
	flag.Parse()
	if *user == "" {
		flag.Usage()
		os.Exit(2)
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("load .env: %v", err)
	}
	cfg := config.FromEnv()
	logger := log.New(os.Stderr, "[seed] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	fmt.Fprint(os.Stderr, "Password: ")
	password, err := cli.ReadPassword(os.Stdin)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		logger.Fatalf("read password: %v", err)
	}

	ctx := context.Background()
	repo, err := cli.Connect(ctx, cfg, *user, password, logger)
	if err != nil {
		cli.Failure(os.Stderr, "%v", err)
		os.Exit(1)
	}

	res, err := seed.Apply(ctx, repo)
	if err != nil {
		cli.Failure(os.Stderr, "seed apply: %v", err)
		os.Exit(1)
	}

	cli.Success(os.Stdout, "seed applied")
	cli.Detail(os.Stdout, "categories", res.Categories)
	cli.Detail(os.Stdout, "products", res.Products)
}
