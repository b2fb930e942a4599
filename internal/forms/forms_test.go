package forms

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"affiliate-catalog/internal/backend"
	"affiliate-catalog/internal/catalog"
	"affiliate-catalog/internal/devbackend"
	"affiliate-catalog/internal/domain"
	"affiliate-catalog/internal/media"
	"github.com/gin-gonic/gin"
)

type stubWriter struct {
	err       error
	created   []domain.Product
	updated   []domain.ID
	catCalls  int
	deletions int
}

func (s *stubWriter) CreateCategory(_ context.Context, c domain.Category) (*domain.Category, error) {
	s.catCalls++
	if s.err != nil {
		return nil, s.err
	}
	c.ID = domain.NewID("1")
	return &c, nil
}

func (s *stubWriter) UpdateCategory(_ context.Context, id domain.ID, c domain.Category) (*domain.Category, error) {
	s.catCalls++
	if s.err != nil {
		return nil, s.err
	}
	c.ID = id
	return &c, nil
}

func (s *stubWriter) CreateProduct(_ context.Context, p domain.Product) (*domain.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	p.ID = domain.NewID("5")
	s.created = append(s.created, p)
	return &p, nil
}

func (s *stubWriter) UpdateProduct(_ context.Context, id domain.ID, p domain.Product) (*domain.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.updated = append(s.updated, id)
	p.ID = id
	return &p, nil
}

func (s *stubWriter) DeleteCategory(_ context.Context, _ domain.ID) error {
	s.deletions++
	return s.err
}

func (s *stubWriter) DeleteProduct(_ context.Context, _ domain.ID) error {
	s.deletions++
	return s.err
}

type notes []string

func (n *notes) Notify(msg string) { *n = append(*n, msg) }

func TestParsing(t *testing.T) {
	if p := ParsePrice(""); p != nil {
		t.Fatalf("expected nil for empty price, got %v", *p)
	}
	if p := ParsePrice("  "); p != nil {
		t.Fatalf("expected nil for blank price")
	}
	if p := ParsePrice("abc"); p != nil {
		t.Fatalf("expected nil for garbage price")
	}
	if p := ParsePrice("-5"); p != nil {
		t.Fatalf("expected nil for negative price")
	}
	if p := ParsePrice("0"); p == nil || *p != 0 {
		t.Fatalf("expected explicit zero price kept")
	}
	if p := ParsePrice("150000"); p == nil || *p != 150000 {
		t.Fatalf("expected 150000")
	}
	if ParseOrder("3") != 3 || ParseOrder("x") != 0 || ParseOrder("") != 0 {
		t.Fatalf("unexpected order parsing")
	}
	tags := ParseTags(" electronics, , mouse ,")
	if len(tags) != 2 || tags[0] != "electronics" || tags[1] != "mouse" {
		t.Fatalf("unexpected tags %v", tags)
	}
	if tags := ParseTags(""); tags == nil || len(tags) != 0 {
		t.Fatalf("expected empty non-nil tags, got %#v", tags)
	}
}

func TestEmptyDraftDefaults(t *testing.T) {
	c := NewCategoryDraft()
	if !c.IsActive || c.Order != "0" || !c.ID.IsZero() {
		t.Fatalf("unexpected category defaults %+v", c)
	}
	p := NewProductDraft()
	if !p.IsActive || p.Price != "" {
		t.Fatalf("unexpected product defaults %+v", p)
	}
}

func TestMustDefaults_PanicsOnBrokenTag(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for unparsable default tag")
		}
	}()
	var broken struct {
		Order int `default:"not-a-number"`
	}
	mustDefaults(&broken)
}

func TestLoad_EditModeRoundTrips(t *testing.T) {
	price := 150000.0
	form := NewProductForm(&stubWriter{}, nil, nil, nil)
	d := form.Load(&domain.Product{ID: domain.NewID("9"), Title: "Mouse", Price: &price, Tags: []string{"a", "b"}, IsActive: false})
	if d.Price != "150000" || d.Tags != "a, b" || d.IsActive || d.ID.String() != "9" {
		t.Fatalf("unexpected draft %+v", d)
	}
	if got := form.Load(nil); !got.ID.IsZero() || !got.IsActive {
		t.Fatalf("expected empty draft from nil, got %+v", got)
	}
}

func TestCategorySubmit_RequiresName(t *testing.T) {
	w := &stubWriter{}
	var n notes
	form := NewCategoryForm(w, &n, nil)
	draft := NewCategoryDraft()
	draft.Description = "typed"

	_, err := form.Submit(context.Background(), draft)
	if !errors.Is(err, domain.ErrRequired) {
		t.Fatalf("expected ErrRequired, got %v", err)
	}
	var se *domain.SubmitError
	if !errors.As(err, &se) {
		t.Fatalf("expected SubmitError, got %T", err)
	}
	if w.catCalls != 0 {
		t.Fatalf("expected no backend call")
	}
	if form.Draft().Description != "typed" || len(n) != 1 {
		t.Fatalf("expected draft kept and one notification, got %+v %v", form.Draft(), n)
	}
}

func TestCategorySubmit_FailureKeepsDraftSuccessResets(t *testing.T) {
	w := &stubWriter{err: &domain.SubmitError{Op: "update category", Status: 500}}
	var n notes
	form := NewCategoryForm(w, &n, nil)
	d := CategoryDraft{ID: domain.NewID("4"), Name: "Tech", Order: "2", IsActive: true}

	if _, err := form.Submit(context.Background(), d); err == nil {
		t.Fatalf("expected error")
	}
	if form.Draft() != d {
		t.Fatalf("expected draft preserved, got %+v", form.Draft())
	}
	if len(n) != 1 || n[0] != MsgSaveCategoryFailed {
		t.Fatalf("expected save failure notice, got %v", n)
	}

	w.err = nil
	out, err := form.Submit(context.Background(), d)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if out.Order != 2 || out.ID.String() != "4" {
		t.Fatalf("unexpected category %+v", out)
	}
	if form.Draft() != NewCategoryDraft() {
		t.Fatalf("expected reset draft, got %+v", form.Draft())
	}
}

func TestProductSubmit_UploadsImageFirst(t *testing.T) {
	w := &stubWriter{}
	up := media.UploaderFunc(func(_ context.Context, path string) (string, error) {
		return "https://res.cloudinary.com/demo/" + path, nil
	})
	form := NewProductForm(w, up, nil, nil)
	_, err := form.Submit(context.Background(), ProductDraft{Title: "Lamp", AffiliateURL: "https://shopee/l", ImageFile: "lamp.jpg", IsActive: true})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if len(w.created) != 1 || w.created[0].ImageURL != "https://res.cloudinary.com/demo/lamp.jpg" {
		t.Fatalf("expected uploaded url in payload, got %+v", w.created)
	}
}

func TestProductSubmit_UploadFailureKeepsDraft(t *testing.T) {
	w := &stubWriter{}
	up := media.UploaderFunc(func(context.Context, string) (string, error) { return "", errors.New("quota") })
	var n notes
	form := NewProductForm(w, up, &n, nil)
	d := ProductDraft{Title: "Lamp", AffiliateURL: "https://shopee/l", ImageFile: "lamp.jpg"}
	if _, err := form.Submit(context.Background(), d); err == nil {
		t.Fatalf("expected error")
	}
	if len(w.created) != 0 || form.Draft() != d || len(n) != 1 {
		t.Fatalf("expected no write, kept draft and notice")
	}
}

func TestRemover_DeclineIsNoop(t *testing.T) {
	w := &stubWriter{}
	var asked string
	r := NewRemover(w, ConfirmFunc(func(msg string) bool { asked = msg; return false }), nil, nil)
	ok, err := r.DeleteCategory(context.Background(), domain.NewID("1"))
	if ok || err != nil {
		t.Fatalf("expected (false, nil), got (%v, %v)", ok, err)
	}
	if w.deletions != 0 {
		t.Fatalf("expected no request")
	}
	if asked != MsgConfirmDeleteCat {
		t.Fatalf("unexpected prompt %q", asked)
	}
}

func TestRemover_FailureNotifies(t *testing.T) {
	w := &stubWriter{err: errors.New("boom")}
	var n notes
	r := NewRemover(w, ConfirmFunc(func(string) bool { return true }), &n, nil)
	ok, err := r.DeleteProduct(context.Background(), domain.NewID("1"))
	var se *domain.SubmitError
	if ok || !errors.As(err, &se) {
		t.Fatalf("expected SubmitError, got (%v, %v)", ok, err)
	}
	if len(n) != 1 || n[0] != MsgDeleteProductFailed {
		t.Fatalf("expected delete failure notice, got %v", n)
	}
}

type tokenAuth struct{ token string }

func (a *tokenAuth) CurrentAuthHeader() map[string]string {
	return map[string]string{"Authorization": "Bearer " + a.token}
}

func TestProductSubmit_RoundTripThroughBackend(t *testing.T) {
	gin.SetMode(gin.TestMode)
	dev, err := devbackend.New(devbackend.Options{AdminUser: "admin", AdminPassword: "secret"})
	if err != nil {
		t.Fatalf("dev backend: %v", err)
	}
	ts := httptest.NewServer(dev)
	defer ts.Close()

	ctx := context.Background()
	client := backend.New(ts.URL, backend.LegacyRoutes, 2*time.Second, nil)
	sess, err := client.Login(ctx, "admin", "secret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	repo := catalog.New(client.WithAuth(&tokenAuth{token: sess.Token}), nil)
	form := NewProductForm(repo, nil, nil, nil)

	draft := NewProductDraft()
	draft.Title = "Mouse"
	draft.AffiliateURL = "https://shopee/x"
	draft.Price = "150000"
	draft.Tags = "electronics, mouse"
	out, err := form.Submit(ctx, draft)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if out.Price == nil || *out.Price != 150000 {
		t.Fatalf("expected numeric price 150000, got %v", out.Price)
	}
	if len(out.Tags) != 2 || out.Tags[0] != "electronics" || out.Tags[1] != "mouse" {
		t.Fatalf("unexpected tags %v", out.Tags)
	}

	cached := repo.Products()
	if len(cached) != 1 || cached[0].Title != "Mouse" {
		t.Fatalf("expected repository refreshed after write, got %+v", cached)
	}

	noPrice := NewProductDraft()
	noPrice.Title = "Pad"
	noPrice.AffiliateURL = "https://shopee/y"
	out, err = form.Submit(ctx, noPrice)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if out.Price != nil {
		t.Fatalf("expected null price, got %v", *out.Price)
	}
}
