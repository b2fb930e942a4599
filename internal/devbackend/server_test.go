package devbackend

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"affiliate-catalog/internal/domain"
	"github.com/gin-gonic/gin"
)

func newTestServer(t *testing.T, numeric bool) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	srv, err := New(Options{AdminUser: "admin", AdminEmail: "admin@example.com", AdminPassword: "secret", NumericIDs: numeric})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	return srv
}

func login(t *testing.T, srv *Server, path, body string) string {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from %s, got %d body=%s", path, rec.Code, rec.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil || resp.Token == "" {
		t.Fatalf("expected token in %s", rec.Body.String())
	}
	return resp.Token
}

func TestLogin_BothConventions(t *testing.T) {
	srv := newTestServer(t, false)
	login(t, srv, "/auth/login", `{"username":"admin","password":"secret"}`)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"email":"admin@example.com","password":"secret"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"email":"admin@example.com"`) {
		t.Fatalf("expected identity in body: %s", rec.Body.String())
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	srv := newTestServer(t, false)
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"username":"admin","password":"nope"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAdminWrites_RequireToken(t *testing.T) {
	srv := newTestServer(t, false)
	for _, path := range []string{"/admin/categories", "/api/categories", "/admin/items", "/api/products"} {
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(`{"name":"x"}`))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", path, rec.Code)
		}
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	srv := newTestServer(t, false)
	token, err := srv.tokens.Issue("admin", time.Minute)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	srv.tokens.now = func() time.Time { return time.Now().Add(time.Hour) }

	req := httptest.NewRequest(http.MethodDelete, "/admin/items/1", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestCreateCategory_NumericIDsAndOrdering(t *testing.T) {
	srv := newTestServer(t, true)
	token := login(t, srv, "/auth/login", `{"username":"admin","password":"secret"}`)

	for _, body := range []string{`{"name":"Zeta","order":1}`, `{"name":"Alpha","order":2}`, `{"name":"beta","order":1}`} {
		req := httptest.NewRequest(http.MethodPost, "/admin/categories", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d body=%s", rec.Code, rec.Body.String())
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/categories", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if !strings.HasPrefix(rec.Body.String(), `[{"id":3,"name":"beta"`) {
		t.Fatalf("unexpected order: %s", rec.Body.String())
	}
	var cats []domain.Category
	if err := json.Unmarshal(rec.Body.Bytes(), &cats); err != nil {
		t.Fatalf("decode: %v", err)
	}
	names := []string{cats[0].Name, cats[1].Name, cats[2].Name}
	if names[0] != "beta" || names[1] != "Zeta" || names[2] != "Alpha" {
		t.Fatalf("expected beta,Zeta,Alpha got %v", names)
	}
	if !cats[0].IsActive {
		t.Fatalf("expected is_active default true")
	}
}

func TestItemsFilterAndAPIActiveParam(t *testing.T) {
	srv := newTestServer(t, false)
	cat := srv.PutCategory(domain.Category{Name: "Tech", IsActive: true})
	srv.PutProduct(domain.Product{Title: "Wireless Mouse", AffiliateURL: "https://s/1", CategoryID: cat.ID, IsActive: true})
	srv.PutProduct(domain.Product{Title: "Mouse Pad", AffiliateURL: "https://s/2", IsActive: false})
	srv.PutProduct(domain.Product{Title: "Keyboard", AffiliateURL: "https://s/3", CategoryID: cat.ID, IsActive: true})

	cases := []struct {
		path string
		want int
	}{
		{"/items", 3},
		{"/items?q=mouse", 2},
		{"/items?q=mouse&category_id=" + cat.ID.String(), 1},
		{"/api/products", 2},
		{"/api/products?active=", 3},
		{"/api/products?active=false", 1},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, tc.path, nil)
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)
		var got []domain.Product
		if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
			t.Fatalf("%s: decode: %v", tc.path, err)
		}
		if len(got) != tc.want {
			t.Fatalf("%s: expected %d products, got %d", tc.path, tc.want, len(got))
		}
	}
}

func TestDeleteCategory_DetachesProducts(t *testing.T) {
	srv := newTestServer(t, false)
	token := login(t, srv, "/api/auth/login", `{"email":"admin","password":"secret"}`)
	cat := srv.PutCategory(domain.Category{Name: "Tech", IsActive: true})
	p := srv.PutProduct(domain.Product{Title: "Mouse", AffiliateURL: "https://s/1", CategoryID: cat.ID, IsActive: true})

	req := httptest.NewRequest(http.MethodDelete, "/api/categories/"+cat.ID.String(), nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	got := srv.Products(domain.ProductFilter{})
	if len(got) != 1 || !got[0].CategoryID.IsZero() || !got[0].ID.Equal(p.ID) {
		t.Fatalf("expected detached product, got %+v", got)
	}
}

func TestHealthEcho(t *testing.T) {
	srv := newTestServer(t, false)
	req := httptest.NewRequest(http.MethodGet, "/test?ping=1", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"ping":"1"`) {
		t.Fatalf("unexpected health response %d %s", rec.Code, rec.Body.String())
	}
}
