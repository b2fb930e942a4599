package seed

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"affiliate-catalog/internal/backend"
	"affiliate-catalog/internal/catalog"
	"affiliate-catalog/internal/devbackend"
	"affiliate-catalog/internal/domain"
)

type staticAuth string

func (a staticAuth) CurrentAuthHeader() map[string]string {
	return map[string]string{"Authorization": "Bearer " + string(a)}
}

func TestApplyIsIdempotent(t *testing.T) {
	dev, err := devbackend.New(devbackend.Options{AdminUser: "admin", AdminPassword: "secret"})
	if err != nil {
		t.Fatalf("dev backend: %v", err)
	}
	ts := httptest.NewServer(dev)
	defer ts.Close()

	ctx := context.Background()
	client := backend.New(ts.URL, backend.APIRoutes, 2*time.Second, nil)
	sess, err := client.Login(ctx, "admin@localhost", "secret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	dev.PutCategory(domain.Category{Name: "elektronik", IsActive: true})

	repo := catalog.New(client.WithAuth(staticAuth(sess.Token)), nil)
	res, err := Apply(ctx, repo)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if res.Categories != 1 || res.Products != 2 {
		t.Fatalf("expected 1 category and 2 products, got %+v", res)
	}

	res, err = Apply(ctx, repo)
	if err != nil {
		t.Fatalf("second apply: %v", err)
	}
	if res.Categories != 0 || res.Products != 0 {
		t.Fatalf("expected nothing created on rerun, got %+v", res)
	}
	if got := len(dev.Products(domain.ProductFilter{})); got != 2 {
		t.Fatalf("expected 2 products in backend, got %d", got)
	}
}
