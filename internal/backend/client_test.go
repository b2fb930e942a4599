package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"affiliate-catalog/internal/devbackend"
	"affiliate-catalog/internal/domain"
	"github.com/gin-gonic/gin"
)

type staticAuth map[string]string

func (a staticAuth) CurrentAuthHeader() map[string]string { return a }

func newDev(t *testing.T) (*devbackend.Server, *httptest.Server) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	dev, err := devbackend.New(devbackend.Options{AdminUser: "admin", AdminEmail: "admin@example.com", AdminPassword: "secret"})
	if err != nil {
		t.Fatalf("dev backend: %v", err)
	}
	ts := httptest.NewServer(dev)
	t.Cleanup(ts.Close)
	return dev, ts
}

func TestLogin_LegacyAndAPI(t *testing.T) {
	_, ts := newDev(t)
	ctx := context.Background()

	sess, err := New(ts.URL, LegacyRoutes, time.Second, nil).Login(ctx, "admin", "secret")
	if err != nil {
		t.Fatalf("legacy login: %v", err)
	}
	if sess.Token == "" || sess.User == nil || sess.User.Name != "admin" {
		t.Fatalf("unexpected legacy session %+v", sess)
	}

	sess, err = New(ts.URL, APIRoutes, time.Second, nil).Login(ctx, "admin@example.com", "secret")
	if err != nil {
		t.Fatalf("api login: %v", err)
	}
	if sess.User == nil || sess.User.Email != "admin@example.com" {
		t.Fatalf("expected identity from response, got %+v", sess.User)
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	_, ts := newDev(t)
	_, err := New(ts.URL, LegacyRoutes, time.Second, nil).Login(context.Background(), "admin", "wrong")
	var authErr *domain.AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected AuthError, got %v", err)
	}
	if authErr.Status != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", authErr.Status)
	}
}

func TestWriteWithoutToken_IsSubmitError(t *testing.T) {
	_, ts := newDev(t)
	_, err := New(ts.URL, LegacyRoutes, time.Second, nil).CreateCategory(context.Background(), domain.Category{Name: "Tech"})
	var subErr *domain.SubmitError
	if !errors.As(err, &subErr) {
		t.Fatalf("expected SubmitError, got %v", err)
	}
	if subErr.Status != http.StatusUnauthorized || subErr.Op != "create category" {
		t.Fatalf("unexpected submit error %+v", subErr)
	}
}

func TestCreateAndListProducts_Legacy(t *testing.T) {
	_, ts := newDev(t)
	ctx := context.Background()
	anon := New(ts.URL, LegacyRoutes, time.Second, nil)
	sess, err := anon.Login(ctx, "admin", "secret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	client := anon.WithAuth(staticAuth{"Authorization": "Bearer " + sess.Token})

	cat, err := client.CreateCategory(ctx, domain.Category{Name: "Tech", IsActive: true})
	if err != nil {
		t.Fatalf("create category: %v", err)
	}
	price := 150000.0
	created, err := client.CreateProduct(ctx, domain.Product{
		Title: "Mouse", AffiliateURL: "https://shopee/x", Price: &price,
		CategoryID: cat.ID, Tags: []string{"electronics", "mouse"}, IsActive: true,
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	if created.ID.IsZero() || created.Price == nil || *created.Price != 150000 {
		t.Fatalf("unexpected product %+v", created)
	}
	if _, err := client.CreateProduct(ctx, domain.Product{Title: "Keyboard", AffiliateURL: "https://shopee/y", IsActive: true}); err != nil {
		t.Fatalf("create product: %v", err)
	}

	got, err := anon.ListProducts(ctx, domain.ProductFilter{CategoryID: cat.ID})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 || got[0].Title != "Mouse" {
		t.Fatalf("expected server-side category filter, got %+v", got)
	}

	if err := client.DeleteProduct(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := client.DeleteProduct(ctx, created.ID); err == nil {
		t.Fatalf("expected error deleting a missing product")
	}
}

func TestAPIRoutes_RequestInactiveAndSkipFilterParams(t *testing.T) {
	var gotQuery string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		if r.URL.Path != "/api/products" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		io.WriteString(w, `[{"id":7,"title":"Mouse","affiliate_url":"u","price":null,"category_id":2,"tags":null,"is_active":false}]`)
	}))
	defer ts.Close()

	client := New(ts.URL, APIRoutes, time.Second, nil)
	got, err := client.ListProducts(context.Background(), domain.ProductFilter{Query: "mou"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if gotQuery != "active=" {
		t.Fatalf("expected only active= query, got %q", gotQuery)
	}
	if client.FiltersServerSide() {
		t.Fatalf("api routes filter client-side")
	}
	if len(got) != 1 || got[0].ID.String() != "7" || got[0].Price != nil || got[0].IsActive {
		t.Fatalf("unexpected decode %+v", got)
	}
}

func TestWritePayload_NullsEmptyOptionalFields(t *testing.T) {
	var body map[string]any
	var auth string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&body)
		w.WriteHeader(http.StatusCreated)
	}))
	defer ts.Close()

	client := New(ts.URL, LegacyRoutes, time.Second, nil).WithAuth(staticAuth{"Authorization": "Bearer t"})
	out, err := client.CreateProduct(context.Background(), domain.Product{Title: "Mouse", AffiliateURL: "u", IsActive: true})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if auth != "Bearer t" {
		t.Fatalf("expected bearer header, got %q", auth)
	}
	for _, k := range []string{"price", "description", "image_url", "category_id"} {
		v, ok := body[k]
		if !ok || v != nil {
			t.Fatalf("expected %s to be null, got %v (present=%v)", k, v, ok)
		}
	}
	if tags, ok := body["tags"].([]any); !ok || len(tags) != 0 {
		t.Fatalf("expected empty tags array, got %v", body["tags"])
	}
	if out.Title != "Mouse" {
		t.Fatalf("expected sent entity back on empty body, got %+v", out)
	}
}

func TestListCategories_FetchErrors(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	_, err := New(ts.URL, LegacyRoutes, time.Second, nil).ListCategories(context.Background())
	var fe *domain.FetchError
	if !errors.As(err, &fe) || fe.Status != http.StatusInternalServerError {
		t.Fatalf("expected FetchError with 500, got %v", err)
	}
	var se *domain.StatusError
	if !errors.As(err, &se) || !strings.Contains(se.Body, "boom") {
		t.Fatalf("expected status error cause, got %v", err)
	}

	ts.Close()
	_, err = New(ts.URL, LegacyRoutes, time.Second, nil).ListCategories(context.Background())
	if !errors.As(err, &fe) || fe.Status != 0 {
		t.Fatalf("expected network FetchError, got %v", err)
	}
}

func TestRoutesFor(t *testing.T) {
	if r, err := RoutesFor(""); err != nil || r.Name != "legacy" {
		t.Fatalf("expected legacy default, got %v %v", r.Name, err)
	}
	if r, err := RoutesFor("api"); err != nil || r.LoginField != "email" {
		t.Fatalf("expected api routes, got %v %v", r.Name, err)
	}
	if _, err := RoutesFor("graphql"); err == nil {
		t.Fatalf("expected error for unknown style")
	}
}
