package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"affiliate-catalog/internal/cli"
	"affiliate-catalog/internal/config"
	"affiliate-catalog/internal/forms"
	"affiliate-catalog/internal/importer"
	"affiliate-catalog/internal/media"
	"github.com/joho/godotenv"
)

func main() {
	var (
		filePath string
		user     string
	)
	flag.StringVar(&filePath, "file", "", "Path to a product or category CSV file")
	flag.StringVar(&user, "user", "", "Admin username or email")
	flag.Parse()

	if filePath == "" || user == "" {
		flag.Usage()
		os.Exit(2)
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("load .env: %v", err)
	}
	cfg := config.FromEnv()
	logger := log.New(os.Stderr, "[importer] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	f, err := os.Open(filePath)
	if err != nil {
		log.Fatalf("open file: %v", err)
	}
	defer f.Close()

	kind, err := importer.DetectKind(f)
	if err != nil {
		log.Fatalf("detect file kind: %v", err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		log.Fatalf("rewind file: %v", err)
	}

	fmt.Fprint(os.Stderr, "Password: ")
	password, err := cli.ReadPassword(os.Stdin)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		log.Fatalf("read password: %v", err)
	}

	ctx := context.Background()
	repo, err := cli.Connect(ctx, cfg, user, password, logger)
	if err != nil {
		cli.Failure(os.Stderr, "%v", err)
		os.Exit(1)
	}

	var uploader media.Uploader
	if cfg.CloudinaryURL != "" {
		cld, err := media.NewCloudinary(cfg.CloudinaryURL, cfg.CloudinaryFolder, logger)
		if err != nil {
			log.Fatalf("init cloudinary: %v", err)
		}
		uploader = cld
	}

	imp := importer.NewCSVImporter(f, repo, forms.NewProductForm(repo, uploader, nil, logger))

	start := time.Now()
	count, err := imp.Run(ctx)
	if err != nil {
		cli.Failure(os.Stderr, "import failed after %d rows: %v", count, err)
		os.Exit(1)
	}

	cli.Success(os.Stdout, "Imported %d %s", count, kind)
	cli.Detail(os.Stdout, "backend", cfg.BackendURL)
	cli.Detail(os.Stdout, "took", time.Since(start).Truncate(time.Millisecond))
}
