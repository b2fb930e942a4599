package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"affiliate-catalog/internal/config"
	"affiliate-catalog/internal/devbackend"
	"affiliate-catalog/internal/domain"
	"github.com/fatih/color"
)

func TestReadPasswordFromPipe(t *testing.T) {
	got, err := ReadPassword(strings.NewReader("secret\r\nignored\n"))
	if err != nil {
		t.Fatalf("read password: %v", err)
	}
	if got != "secret" {
		t.Fatalf("expected secret, got %q", got)
	}
	if _, err := ReadPassword(strings.NewReader("")); !errors.Is(err, io.EOF) {
		t.Fatalf("expected EOF on empty input, got %v", err)
	}
}

func TestConnectRejectsEmbedded(t *testing.T) {
	cfg := config.Config{BackendURL: config.EmbeddedBackend, APIStyle: "legacy"}
	if _, err := Connect(context.Background(), cfg, "admin", "x", nil); err == nil {
		t.Fatalf("expected error for embedded backend")
	}
}

func TestConnectLogsIn(t *testing.T) {
	dev, err := devbackend.New(devbackend.Options{AdminUser: "admin", AdminPassword: "secret"})
	if err != nil {
		t.Fatalf("dev backend: %v", err)
	}
	ts := httptest.NewServer(dev)
	defer ts.Close()

	cfg := config.Config{BackendURL: ts.URL, APIStyle: "legacy", RequestTimeout: 2 * time.Second}
	ctx := context.Background()

	if _, err := Connect(ctx, cfg, "admin", "wrong", nil); err == nil {
		t.Fatalf("expected login failure")
	} else {
		var authErr *domain.AuthError
		if !errors.As(err, &authErr) {
			t.Fatalf("expected AuthError, got %T", err)
		}
	}

	repo, err := Connect(ctx, cfg, "admin", "secret", nil)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if _, err := repo.CreateCategory(ctx, domain.Category{Name: "Tech", IsActive: true}); err != nil {
		t.Fatalf("authenticated write: %v", err)
	}
	if len(dev.Categories()) != 1 {
		t.Fatalf("expected category in backend")
	}
}

func TestSummaryLines(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	Success(&buf, "Imported %d products", 3)
	Detail(&buf, "backend", "http://x")
	Failure(&buf, "failed")
	out := buf.String()
	for _, want := range []string{"Imported 3 products\n", "backend", " http://x\n", "failed\n"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in %q", want, out)
		}
	}
}
