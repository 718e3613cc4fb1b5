// Package backend talks to the storefront REST backend that owns categories and
// issues admin tokens.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/storefront/admin-console/internal/domain"
)

const (
	// DefaultTimeout bounds a single backend round trip
	DefaultTimeout = 15 * time.Second

	// maxResponseSize caps how much of a response body is read
	maxResponseSize = 10 * 1024 * 1024
)

// Client is an HTTP client for the admin endpoints of the storefront backend
type Client struct {
	baseURL      string
	loginBaseURL string
	httpClient   *http.Client
}

// Ensure Client implements the gateways used by the services
var (
	_ domain.CategoryGateway = (*Client)(nil)
	_ domain.AuthGateway     = (*Client)(nil)
)

// NewClient creates a Client. baseURL prefixes the /admin endpoints and
// loginBaseURL prefixes /public/admin-login.
func NewClient(baseURL, loginBaseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		loginBaseURL: strings.TrimRight(loginBaseURL, "/"),
		httpClient:   &http.Client{Timeout: timeout},
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

type categoryResponse struct {
	Category domain.Category `json:"category"`
}

type statusRequest struct {
	IsActive bool `json:"isActive"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Login handles POST /public/admin-login
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	body, err := json.Marshal(loginRequest{Email: email, Password: password})
	if err != nil {
		return "", fmt.Errorf("encode login request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.loginBaseURL+"/public/admin-login", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var resp loginResponse
	if err := c.do(req, "login", &resp); err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", transportError("login", fmt.Errorf("response carried no token"))
	}
	return resp.Token, nil
}

// ListCategories handles GET /admin/get-all-categories[?q=...]
func (c *Client) ListCategories(ctx context.Context, token, query string) (*domain.CategoryPage, error) {
	endpoint := c.baseURL + "/admin/get-all-categories"
	if query != "" {
		endpoint += "?q=" + url.QueryEscape(query)
	}

	req, err := c.newAuthRequest(ctx, http.MethodGet, endpoint, token, nil)
	if err != nil {
		return nil, err
	}

	var page domain.CategoryPage
	if err := c.do(req, "list categories", &page); err != nil {
		return nil, err
	}
	if page.Categories == nil {
		page.Categories = []domain.Category{}
	}
	return &page, nil
}

// CreateCategory handles POST /admin/create-category
func (c *Client) CreateCategory(ctx context.Context, token string, form domain.CategoryForm) (*domain.Category, error) {
	return c.sendCategoryForm(ctx, http.MethodPost, c.baseURL+"/admin/create-category", token, form, "create category")
}

// UpdateCategory handles PUT /admin/update-category/:id
func (c *Client) UpdateCategory(ctx context.Context, token, id string, form domain.CategoryForm) (*domain.Category, error) {
	endpoint := c.baseURL + "/admin/update-category/" + url.PathEscape(id)
	return c.sendCategoryForm(ctx, http.MethodPut, endpoint, token, form, "update category")
}

// DeleteCategory handles DELETE /admin/delete-category/:id
func (c *Client) DeleteCategory(ctx context.Context, token, id string) error {
	endpoint := c.baseURL + "/admin/delete-category/" + url.PathEscape(id)
	req, err := c.newAuthRequest(ctx, http.MethodDelete, endpoint, token, nil)
	if err != nil {
		return err
	}
	return c.do(req, "delete category", nil)
}

// SetCategoryStatus handles PATCH /admin/toggle-category-status/:id
func (c *Client) SetCategoryStatus(ctx context.Context, token, id string, active bool) error {
	body, err := json.Marshal(statusRequest{IsActive: active})
	if err != nil {
		return fmt.Errorf("encode status request: %w", err)
	}

	endpoint := c.baseURL + "/admin/toggle-category-status/" + url.PathEscape(id)
	req, err := c.newAuthRequest(ctx, http.MethodPatch, endpoint, token, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, "toggle category status", nil)
}

func (c *Client) sendCategoryForm(ctx context.Context, method, endpoint, token string, form domain.CategoryForm, op string) (*domain.Category, error) {
	body, contentType, err := encodeCategoryForm(form)
	if err != nil {
		return nil, fmt.Errorf("%s: encode form: %w", op, err)
	}

	req, err := c.newAuthRequest(ctx, method, endpoint, token, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)

	var resp categoryResponse
	if err := c.do(req, op, &resp); err != nil {
		return nil, err
	}
	return &resp.Category, nil
}

// encodeCategoryForm writes name, description and the optional image as multipart/form-data
func encodeCategoryForm(form domain.CategoryForm) (*bytes.Buffer, string, error) {
	buf := new(bytes.Buffer)
	writer := multipart.NewWriter(buf)

	if err := writer.WriteField("name", form.Name); err != nil {
		return nil, "", err
	}
	if err := writer.WriteField("description", form.Description); err != nil {
		return nil, "", err
	}

	if form.Image != nil {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename="%s"`, escapeQuotes(form.Image.Filename)))
		contentType := form.Image.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		header.Set("Content-Type", contentType)

		part, err := writer.CreatePart(header)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(form.Image.Data); err != nil {
			return nil, "", err
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", err
	}
	return buf, writer.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

func (c *Client) newAuthRequest(ctx context.Context, method, endpoint, token string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// do sends req and decodes a 2xx body into out (when non-nil).
// Non-2xx answers become *APIError; everything else that prevents a usable
// response is wrapped in ErrTransport.
func (c *Client) do(req *http.Request, op string, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return transportError(op, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return transportError(op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errResp errorResponse
		// A non-JSON error body still yields an APIError, just without a message
		_ = json.Unmarshal(data, &errResp)
		return &APIError{Status: resp.StatusCode, Message: errResp.Error}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return transportError(op, fmt.Errorf("decode response: %w", err))
	}
	return nil
}
