package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"affiliate-catalog/internal/backend"
	"affiliate-catalog/internal/catalog"
	"affiliate-catalog/internal/config"
	"affiliate-catalog/internal/devbackend"
	"affiliate-catalog/internal/forms"
	"affiliate-catalog/internal/httpserver"
	"affiliate-catalog/internal/media"
	"affiliate-catalog/internal/preferences"
	"affiliate-catalog/internal/session"
	"affiliate-catalog/internal/storage"
	"affiliate-catalog/internal/view"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("load .env: %v", err)
	}
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[storefront] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx := context.Background()

	if cfg.BackendURL == config.EmbeddedBackend {
		url, stop, err := startEmbeddedBackend(cfg, logger)
		if err != nil {
			logger.Fatalf("start embedded backend: %v", err)
		}
		defer stop()
		cfg.BackendURL = url
	}

	routes, err := backend.RoutesFor(cfg.APIStyle)
	if err != nil {
		logger.Fatalf("api style: %v", err)
	}

	kv, err := storage.Open(ctx, cfg.StateDSN, logger)
	if err != nil {
		logger.Fatalf("open client state %s: %v", cfg.StateDSN, err)
	}
	defer kv.Close()

	client := backend.New(cfg.BackendURL, routes, cfg.RequestTimeout, logger)
	sessionStore, err := session.New(ctx, kv, client, logger)
	if err != nil {
		logger.Fatalf("load session: %v", err)
	}
	prefs, err := preferences.New(ctx, kv, cfg.DefaultLanguage, cfg.DefaultDark, logger)
	if err != nil {
		logger.Fatalf("load preferences: %v", err)
	}

	repo := catalog.New(client.WithAuth(sessionStore), logger)
	if err := repo.RefreshAll(ctx); err != nil {
		logger.Printf("initial catalog load failed: %v", err)
	}

	var uploader media.Uploader
	if cfg.CloudinaryURL != "" {
		cld, err := media.NewCloudinary(cfg.CloudinaryURL, cfg.CloudinaryFolder, logger)
		if err != nil {
			logger.Fatalf("init cloudinary: %v", err)
		}
		uploader = cld
	}
	notify := forms.NotifyFunc(func(msg string) { logger.Printf("alert: %s", msg) })

	srv, err := httpserver.New(cfg.HTTPAddr, logger, httpserver.Deps{
		Session:      sessionStore,
		Preferences:  prefs,
		Catalog:      repo,
		View:         view.New(sessionStore, repo, prefs),
		CategoryForm: forms.NewCategoryForm(repo, notify, logger),
		ProductForm:  forms.NewProductForm(repo, uploader, notify, logger),
		Health:       client,
	}, cfg.CORSOrigins)
	if err != nil {
		logger.Fatalf("init server: %v", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("starting http server on %s backend=%s style=%s", cfg.HTTPAddr, cfg.BackendURL, cfg.APIStyle)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		logger.Printf("server error: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	} else {
		logger.Printf("server stopped")
	}
}

// startEmbeddedBackend serves the dev backend on a loopback port.
func startEmbeddedBackend(cfg config.Config, logger *log.Logger) (string, func(), error) {
	dev, err := devbackend.New(devbackend.Options{
		AdminUser:     cfg.DevAdminUser,
		AdminPassword: cfg.DevAdminPassword,
		Logger:        log.New(logger.Writer(), "[devbackend] ", logger.Flags()),
	})
	if err != nil {
		return "", nil, err
	}
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", nil, err
	}
	hs := &http.Server{Handler: dev, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := hs.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Printf("embedded backend stopped: %v", err)
		}
	}()
	logger.Printf("embedded backend on %s user=%s", ln.Addr(), cfg.DevAdminUser)
	stop := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = hs.Shutdown(ctx)
	}
	return "http://" + ln.Addr().String(), stop, nil
}
