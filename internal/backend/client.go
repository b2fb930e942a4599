// Package backend talks to the catalog REST service. One Client covers both
// path conventions through a Routes value.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"affiliate-catalog/internal/domain"
)

// Authorizer supplies the bearer header for admin calls.
type Authorizer interface {
	CurrentAuthHeader() map[string]string
}

// Client is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
	routes  Routes
	auth    Authorizer
	logger  *log.Logger
}

// New builds a Client. A zero timeout leaves requests bounded only by ctx.
func New(baseURL string, routes Routes, timeout time.Duration, logger *log.Logger) *Client {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		timeout: timeout,
		routes:  routes,
		logger:  logger,
	}
}

// WithHTTPClient swaps the transport, mostly for tests.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	cp := *c
	cp.http = hc
	return &cp
}

// WithAuth returns a copy that attaches a's header to admin requests.
func (c *Client) WithAuth(a Authorizer) *Client {
	cp := *c
	cp.auth = a
	return &cp
}

func (c *Client) Routes() Routes { return c.routes }

// FiltersServerSide reports whether ListProducts honours the filter itself.
func (c *Client) FiltersServerSide() bool { return c.routes.ServerSideFilter }

func (c *Client) ListCategories(ctx context.Context) ([]domain.Category, error) {
	var out []domain.Category
	if _, err := c.do(ctx, http.MethodGet, c.routes.Categories, nil, nil, false, &out); err != nil {
		return nil, fetchError("categories", err)
	}
	if out == nil {
		out = []domain.Category{}
	}
	return out, nil
}

// ListProducts sends the filter as query parameters when the convention
// supports it. Inactive products are always requested; hiding them is up to
// the view.
func (c *Client) ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	q := url.Values{}
	if c.routes.ServerSideFilter {
		if !filter.CategoryID.IsZero() {
			q.Set("category_id", filter.CategoryID.String())
		}
		if filter.Query != "" {
			q.Set("q", filter.Query)
		}
	}
	if c.routes.IncludeInactiveParam != "" {
		q.Set(c.routes.IncludeInactiveParam, "")
	}
	var out []domain.Product
	if _, err := c.do(ctx, http.MethodGet, c.routes.Products, q, nil, false, &out); err != nil {
		return nil, fetchError("products", err)
	}
	if out == nil {
		out = []domain.Product{}
	}
	return out, nil
}

func (c *Client) CreateCategory(ctx context.Context, cat domain.Category) (*domain.Category, error) {
	return c.writeCategory(ctx, "create category", http.MethodPost, c.routes.AdminCategories, cat)
}

func (c *Client) UpdateCategory(ctx context.Context, id domain.ID, cat domain.Category) (*domain.Category, error) {
	if id.IsZero() {
		return nil, &domain.SubmitError{Op: "update category", Err: domain.ErrRequired}
	}
	cat.ID = id
	return c.writeCategory(ctx, "update category", http.MethodPut, c.itemPath(c.routes.AdminCategories, id), cat)
}

func (c *Client) DeleteCategory(ctx context.Context, id domain.ID) error {
	if _, err := c.do(ctx, http.MethodDelete, c.itemPath(c.routes.AdminCategories, id), nil, nil, true, nil); err != nil {
		return submitError("delete category", err)
	}
	return nil
}

func (c *Client) CreateProduct(ctx context.Context, p domain.Product) (*domain.Product, error) {
	return c.writeProduct(ctx, "create product", http.MethodPost, c.routes.AdminProducts, p)
}

func (c *Client) UpdateProduct(ctx context.Context, id domain.ID, p domain.Product) (*domain.Product, error) {
	if id.IsZero() {
		return nil, &domain.SubmitError{Op: "update product", Err: domain.ErrRequired}
	}
	p.ID = id
	return c.writeProduct(ctx, "update product", http.MethodPut, c.itemPath(c.routes.AdminProducts, id), p)
}

func (c *Client) DeleteProduct(ctx context.Context, id domain.ID) error {
	if _, err := c.do(ctx, http.MethodDelete, c.itemPath(c.routes.AdminProducts, id), nil, nil, true, nil); err != nil {
		return submitError("delete product", err)
	}
	return nil
}

// Login exchanges credentials for a session. Every failure is an AuthError.
func (c *Client) Login(ctx context.Context, identifier, password string) (domain.Session, error) {
	body := map[string]string{
		c.routes.LoginField: identifier,
		"password":          password,
	}
	var resp loginResponse
	if _, err := c.do(ctx, http.MethodPost, c.routes.Login, nil, body, false, &resp); err != nil {
		var se *domain.StatusError
		if errors.As(err, &se) {
			return domain.Session{}, &domain.AuthError{Status: se.Status, Err: err}
		}
		return domain.Session{}, &domain.AuthError{Err: err}
	}
	if resp.Token == "" {
		return domain.Session{}, &domain.AuthError{Err: errors.New("response carried no token")}
	}
	sess := domain.Session{Token: resp.Token, User: &domain.User{Name: resp.Name, Email: resp.Email}}
	if resp.Name == "" && resp.Email == "" {
		sess.User = &domain.User{Name: identifier}
	}
	return sess, nil
}

// Health returns the decoded body of the diagnostic echo endpoint.
func (c *Client) Health(ctx context.Context) (map[string]any, error) {
	out := map[string]any{}
	if _, err := c.do(ctx, http.MethodGet, c.routes.Health, nil, nil, false, &out); err != nil {
		return nil, fetchError("health", err)
	}
	return out, nil
}

func (c *Client) writeCategory(ctx context.Context, op, method, path string, cat domain.Category) (*domain.Category, error) {
	out := cat
	status, err := c.do(ctx, method, path, nil, newCategoryPayload(cat), true, &out)
	if err != nil {
		return nil, submitError(op, err)
	}
	if out.ID.IsZero() {
		out.ID = cat.ID
	}
	c.logger.Printf("backend: %s status=%d id=%s", op, status, out.ID)
	return &out, nil
}

func (c *Client) writeProduct(ctx context.Context, op, method, path string, p domain.Product) (*domain.Product, error) {
	out := p
	status, err := c.do(ctx, method, path, nil, newProductPayload(p), true, &out)
	if err != nil {
		return nil, submitError(op, err)
	}
	if out.ID.IsZero() {
		out.ID = p.ID
	}
	c.logger.Printf("backend: %s status=%d id=%s", op, status, out.ID)
	return &out, nil
}

func (c *Client) itemPath(base string, id domain.ID) string {
	return base + "/" + url.PathEscape(id.String())
}

// do sends one request. A non-2xx answer becomes *domain.StatusError. out is
// left untouched when the response body is empty.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, admin bool, out any) (int, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("encode body: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if admin && c.auth != nil {
		for k, v := range c.auth.CurrentAuthHeader() {
			req.Header.Set(k, v)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Printf("backend: %s %s error=%v", method, path, err)
		return 0, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return resp.StatusCode, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Printf("backend: %s %s status=%d", method, path, resp.StatusCode)
		return resp.StatusCode, &domain.StatusError{Status: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return resp.StatusCode, nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return resp.StatusCode, fmt.Errorf("decode %s: %w", path, err)
	}
	return resp.StatusCode, nil
}

func fetchError(resource string, err error) error {
	fe := &domain.FetchError{Resource: resource, Err: err}
	var se *domain.StatusError
	if errors.As(err, &se) {
		fe.Status = se.Status
	}
	return fe
}

func submitError(op string, err error) error {
	e := &domain.SubmitError{Op: op, Err: err}
	var se *domain.StatusError
	if errors.As(err, &se) {
		e.Status = se.Status
	}
	return e
}
