package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"net/http"
	"testing"
	"time"

	"github.com/storefront/admin-console/internal/backend"
	"github.com/storefront/admin-console/internal/domain"
	"github.com/storefront/admin-console/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedCategories() []domain.Category {
	return []domain.Category{
		{ID: "1", Name: "Shoes", IsActive: true, Products: 4},
		{ID: "2", Name: "Bags", IsActive: false, Image: "/uploads/bags.png"},
	}
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

func decodeState(t *testing.T, body []byte) service.CategoryState {
	t.Helper()
	var state service.CategoryState
	require.NoError(t, json.Unmarshal(body, &state))
	return state
}

func decodeProblem(t *testing.T, body []byte) ProblemDetails {
	t.Helper()
	var problem ProblemDetails
	require.NoError(t, json.Unmarshal(body, &problem))
	return problem
}

func TestCategoryHandler_GetState(t *testing.T) {
	env := newTestEnv(t, seedCategories()...)
	sess := env.login(t)
	h := NewCategoryHandler(env.auth)

	c, rec := env.newContext(jsonRequest(http.MethodGet, "/api/v1/categories", ""), sess)
	require.NoError(t, h.GetState(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	state := decodeState(t, rec.Body.Bytes())
	assert.Len(t, state.Categories, 2)
	assert.Equal(t, domain.CategorySummary{Total: 2, Active: 1, Inactive: 1}, state.Summary)
	assert.Equal(t, "http://img.test/uploads/bags.png", state.Categories[1].ImageURL)
}

func TestCategoryHandler_NoSession(t *testing.T) {
	env := newTestEnv(t)
	h := NewCategoryHandler(env.auth)

	c, rec := env.newContext(jsonRequest(http.MethodGet, "/api/v1/categories", ""), nil)
	require.NoError(t, h.GetState(c))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCategoryHandler_Search(t *testing.T) {
	env := newTestEnv(t, seedCategories()...)
	sess := env.login(t)
	h := NewCategoryHandler(env.auth)

	c, rec := env.newContext(jsonRequest(http.MethodPut, "/api/v1/categories/search", `{"query":"sho"}`), sess)
	require.NoError(t, h.Search(c))

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "sho", decodeState(t, rec.Body.Bytes()).Query)

	require.Eventually(t, func() bool {
		return env.gateway.ListCount() == 2
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"", "sho"}, env.gateway.Queries())
}

func TestCategoryHandler_Refresh_TransportError(t *testing.T) {
	env := newTestEnv(t, seedCategories()...)
	sess := env.login(t)
	h := NewCategoryHandler(env.auth)
	env.gateway.ListFn = func(ctx context.Context, token, query string) (*domain.CategoryPage, error) {
		return nil, fmt.Errorf("list categories: %w: connection refused", backend.ErrTransport)
	}

	c, rec := env.newContext(jsonRequest(http.MethodPost, "/api/v1/categories/refresh", ""), sess)
	require.NoError(t, h.Refresh(c))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "Something went wrong while fetching categories", decodeProblem(t, rec.Body.Bytes()).Detail)
}

func TestCategoryHandler_CreateCategory(t *testing.T) {
	env := newTestEnv(t, seedCategories()...)
	sess := env.login(t)
	h := NewCategoryHandler(env.auth)

	req := multipartRequest(t, http.MethodPost, "/api/v1/categories",
		map[string]string{"name": "Hats", "description": "Headwear"}, "hat.png", pngBytes(t, 100, 100))
	c, rec := env.newContext(req, sess)
	require.NoError(t, h.CreateCategory(c))

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp CategoryMutationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Hats", resp.Category.Name)
	assert.Equal(t, "/uploads/categories/hat.png", resp.Category.Image)
	assert.Equal(t, domain.CategorySummary{Total: 3, Active: 2, Inactive: 1}, resp.State.Summary)
	require.NotNil(t, resp.State.LastNotification)
	assert.Equal(t, "Category added successfully!", resp.State.LastNotification.Message)

	require.Len(t, env.gateway.CreateForms, 1)
	assert.Equal(t, "image/png", env.gateway.CreateForms[0].Image.ContentType)
}

func TestCategoryHandler_CreateCategory_Validation(t *testing.T) {
	tests := []struct {
		name     string
		fields   map[string]string
		filename string
		image    []byte
		field    string
	}{
		{"empty name", map[string]string{"name": "  "}, "", nil, "name"},
		{"unsupported image", map[string]string{"name": "Hats"}, "hat.gif", []byte("GIF89a"), "image"},
		{"undecodable image", map[string]string{"name": "Hats"}, "hat.png", []byte("not an image"), "image"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, seedCategories()...)
			sess := env.login(t)
			h := NewCategoryHandler(env.auth)

			req := multipartRequest(t, http.MethodPost, "/api/v1/categories", tt.fields, tt.filename, tt.image)
			c, rec := env.newContext(req, sess)
			require.NoError(t, h.CreateCategory(c))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			problem := decodeProblem(t, rec.Body.Bytes())
			require.Len(t, problem.Errors, 1)
			assert.Equal(t, tt.field, problem.Errors[0].Field)
			assert.Empty(t, env.gateway.CreateForms)
		})
	}
}

func TestCategoryHandler_CreateCategory_BackendError(t *testing.T) {
	env := newTestEnv(t, seedCategories()...)
	sess := env.login(t)
	h := NewCategoryHandler(env.auth)
	env.gateway.CreateFn = func(ctx context.Context, token string, form domain.CategoryForm) (*domain.Category, error) {
		return nil, &backend.APIError{Status: 409, Message: "Category already exists"}
	}

	req := multipartRequest(t, http.MethodPost, "/api/v1/categories", map[string]string{"name": "Shoes"}, "", nil)
	c, rec := env.newContext(req, sess)
	require.NoError(t, h.CreateCategory(c))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "Category already exists", decodeProblem(t, rec.Body.Bytes()).Detail)
}

func TestCategoryHandler_UpdateFlow(t *testing.T) {
	env := newTestEnv(t, seedCategories()...)
	sess := env.login(t)
	h := NewCategoryHandler(env.auth)

	// Update without selecting first
	req := multipartRequest(t, http.MethodPut, "/api/v1/categories/1", map[string]string{"name": "Sneakers"}, "", nil)
	c, rec := env.newContext(req, sess)
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, h.UpdateCategory(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Select
	c, rec = env.newContext(jsonRequest(http.MethodPost, "/api/v1/categories/1/edit", ""), sess)
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, h.BeginEdit(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var form service.EditFormState
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &form))
	assert.Equal(t, "Shoes", form.Name)

	// Update
	req = multipartRequest(t, http.MethodPut, "/api/v1/categories/1",
		map[string]string{"name": "Sneakers", "description": "Running"}, "", nil)
	c, rec = env.newContext(req, sess)
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, h.UpdateCategory(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp CategoryMutationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Sneakers", resp.State.Categories[0].Name)
	assert.Equal(t, "Running", resp.State.Categories[0].Description)
	assert.Nil(t, resp.State.EditForm)
	assert.Equal(t, 1, env.gateway.ListCount())
}

func TestCategoryHandler_BeginEdit_Unknown(t *testing.T) {
	env := newTestEnv(t, seedCategories()...)
	sess := env.login(t)
	h := NewCategoryHandler(env.auth)

	c, rec := env.newContext(jsonRequest(http.MethodPost, "/api/v1/categories/9/edit", ""), sess)
	c.SetParamNames("id")
	c.SetParamValues("9")
	require.NoError(t, h.BeginEdit(c))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCategoryHandler_CancelEdit(t *testing.T) {
	env := newTestEnv(t, seedCategories()...)
	sess := env.login(t)
	h := NewCategoryHandler(env.auth)

	c, rec := env.newContext(jsonRequest(http.MethodDelete, "/api/v1/categories/edit", ""), sess)
	require.NoError(t, h.CancelEdit(c))

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestCategoryHandler_CreateForm(t *testing.T) {
	env := newTestEnv(t)
	sess := env.login(t)
	h := NewCategoryHandler(env.auth)

	c, rec := env.newContext(jsonRequest(http.MethodPost, "/api/v1/categories/form", ""), sess)
	require.NoError(t, h.OpenCreateForm(c))
	assert.True(t, decodeState(t, rec.Body.Bytes()).CreateForm.Open)

	c, rec = env.newContext(jsonRequest(http.MethodDelete, "/api/v1/categories/form", ""), sess)
	require.NoError(t, h.CloseCreateForm(c))
	assert.False(t, decodeState(t, rec.Body.Bytes()).CreateForm.Open)
}

func TestCategoryHandler_DeleteCategory(t *testing.T) {
	env := newTestEnv(t, seedCategories()...)
	sess := env.login(t)
	h := NewCategoryHandler(env.auth)

	// Without confirmation nothing is sent
	c, rec := env.newContext(jsonRequest(http.MethodDelete, "/api/v1/categories/2", ""), sess)
	c.SetParamNames("id")
	c.SetParamValues("2")
	require.NoError(t, h.DeleteCategory(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, env.gateway.DeleteIDs)

	c, rec = env.newContext(jsonRequest(http.MethodDelete, "/api/v1/categories/2?confirm=true", ""), sess)
	c.SetParamNames("id")
	c.SetParamValues("2")
	require.NoError(t, h.DeleteCategory(c))

	require.Equal(t, http.StatusOK, rec.Code)
	state := decodeState(t, rec.Body.Bytes())
	assert.Len(t, state.Categories, 1)
	assert.Equal(t, domain.CategorySummary{Total: 1, Active: 1, Inactive: 0}, state.Summary)
}

func TestCategoryHandler_ToggleStatus(t *testing.T) {
	env := newTestEnv(t, seedCategories()...)
	sess := env.login(t)
	h := NewCategoryHandler(env.auth)

	// isActive is required
	c, rec := env.newContext(jsonRequest(http.MethodPatch, "/api/v1/categories/1/status", `{}`), sess)
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, h.ToggleStatus(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	problem := decodeProblem(t, rec.Body.Bytes())
	require.Len(t, problem.Errors, 1)
	assert.Equal(t, "isActive", problem.Errors[0].Field)

	c, rec = env.newContext(jsonRequest(http.MethodPatch, "/api/v1/categories/1/status", `{"isActive":true}`), sess)
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, h.ToggleStatus(c))

	require.Equal(t, http.StatusOK, rec.Code)
	state := decodeState(t, rec.Body.Bytes())
	assert.False(t, state.Categories[0].IsActive)
	assert.Equal(t, domain.CategorySummary{Total: 2, Active: 0, Inactive: 2}, state.Summary)
}

func TestCategoryHandler_ToggleStatus_BackendUnauthorized(t *testing.T) {
	env := newTestEnv(t, seedCategories()...)
	sess := env.login(t)
	h := NewCategoryHandler(env.auth)
	env.gateway.StatusFn = func(ctx context.Context, token, id string, active bool) error {
		return &backend.APIError{Status: http.StatusUnauthorized, Message: "Token expired"}
	}

	c, rec := env.newContext(jsonRequest(http.MethodPatch, "/api/v1/categories/1/status", `{"isActive":true}`), sess)
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, h.ToggleStatus(c))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Token expired", decodeProblem(t, rec.Body.Bytes()).Detail)
}
