// Package cli holds what the admin commands share: the password prompt, the
// authenticated catalog connection and coloured summaries.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"affiliate-catalog/internal/backend"
	"affiliate-catalog/internal/catalog"
	"affiliate-catalog/internal/config"
	"affiliate-catalog/internal/session"
	"affiliate-catalog/internal/storage"
	"github.com/fatih/color"
	"golang.org/x/term"
)

// ReadPassword reads without echo when stdin is a terminal and falls back to
// a plain line read for pipes and tests.
func ReadPassword(stdin io.Reader) (string, error) {
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", err
		}
		return string(b), nil
	}

	scanner := bufio.NewScanner(stdin)
	if scanner.Scan() {
		return strings.TrimRight(scanner.Text(), "\r"), nil
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

// Connect logs in against the configured backend and returns a repository
// whose writes carry the resulting token. The session lives in memory only so
// the storefront's persisted session is left alone.
func Connect(ctx context.Context, cfg config.Config, identifier, password string, logger *log.Logger) (*catalog.Repository, error) {
	if cfg.BackendURL == config.EmbeddedBackend {
		return nil, errors.New("admin commands need a real BACKEND_URL, not embedded")
	}
	routes, err := backend.RoutesFor(cfg.APIStyle)
	if err != nil {
		return nil, err
	}
	client := backend.New(cfg.BackendURL, routes, cfg.RequestTimeout, logger)

	store, err := session.New(ctx, storage.NewMemory(), client, logger)
	if err != nil {
		return nil, err
	}
	if _, err := store.Login(ctx, identifier, password); err != nil {
		return nil, fmt.Errorf("login as %s: %w", identifier, err)
	}
	return catalog.New(client.WithAuth(store), logger), nil
}

// Success prints a green line to w.
func Success(w io.Writer, format string, args ...any) {
	color.New(color.FgGreen, color.Bold).Fprintf(w, format+"\n", args...)
}

// Failure prints a red line to w.
func Failure(w io.Writer, format string, args ...any) {
	color.New(color.FgRed).Fprintf(w, format+"\n", args...)
}

// Detail prints a cyan key followed by its value.
func Detail(w io.Writer, key string, value any) {
	color.New(color.FgCyan).Fprintf(w, "  %-12s", key)
	fmt.Fprintf(w, " %v\n", value)
}
