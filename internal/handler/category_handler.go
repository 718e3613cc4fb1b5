package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/storefront/admin-console/internal/domain"
	"github.com/storefront/admin-console/internal/middleware"
	"github.com/storefront/admin-console/internal/service"
)

const sessionExpired = "Session expired, please log in again"

// CategoryHandler handles category-related HTTP requests
type CategoryHandler struct {
	authService *service.AuthService
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(authService *service.AuthService) *CategoryHandler {
	return &CategoryHandler{
		authService: authService,
	}
}

// SearchRequest represents the search request body
type SearchRequest struct {
	Query string `json:"query" validate:"max=200"`
}

// ToggleStatusRequest carries the status the admin currently sees
type ToggleStatusRequest struct {
	IsActive *bool `json:"isActive" validate:"required"`
}

// CategoryMutationResponse is returned after create and update
type CategoryMutationResponse struct {
	Category domain.Category       `json:"category"`
	State    service.CategoryState `json:"state"`
}

// GetState handles GET /api/v1/categories
func (h *CategoryHandler) GetState(c echo.Context) error {
	m, ok := h.manager(c)
	if !ok {
		return NewUnauthorizedError(c, sessionExpired)
	}
	return c.JSON(http.StatusOK, m.State())
}

// Search handles PUT /api/v1/categories/search
// The fetch runs after the search debounce window; the response carries the
// state as of now.
func (h *CategoryHandler) Search(c echo.Context) error {
	m, ok := h.manager(c)
	if !ok {
		return NewUnauthorizedError(c, sessionExpired)
	}

	var req SearchRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	m.SetQuery(req.Query)
	return c.JSON(http.StatusAccepted, m.State())
}

// Refresh handles POST /api/v1/categories/refresh
func (h *CategoryHandler) Refresh(c echo.Context) error {
	m, ok := h.manager(c)
	if !ok {
		return NewUnauthorizedError(c, sessionExpired)
	}

	if err := m.Fetch(c.Request().Context(), m.Query()); err != nil {
		return writeCategoryError(c, domain.OpFetch, err)
	}
	return c.JSON(http.StatusOK, m.State())
}

// OpenCreateForm handles POST /api/v1/categories/form
func (h *CategoryHandler) OpenCreateForm(c echo.Context) error {
	m, ok := h.manager(c)
	if !ok {
		return NewUnauthorizedError(c, sessionExpired)
	}
	m.OpenCreateForm()
	return c.JSON(http.StatusOK, m.State())
}

// CloseCreateForm handles DELETE /api/v1/categories/form
func (h *CategoryHandler) CloseCreateForm(c echo.Context) error {
	m, ok := h.manager(c)
	if !ok {
		return NewUnauthorizedError(c, sessionExpired)
	}
	m.CloseCreateForm()
	return c.JSON(http.StatusOK, m.State())
}

// CreateCategory handles POST /api/v1/categories (multipart: name, description, image)
func (h *CategoryHandler) CreateCategory(c echo.Context) error {
	m, ok := h.manager(c)
	if !ok {
		return NewUnauthorizedError(c, sessionExpired)
	}

	form, err := readCategoryForm(c)
	if err != nil {
		return NewValidationError(c, "Invalid form data", []ValidationError{
			{Field: "image", Message: "Could not read uploaded file"},
		})
	}

	category, err := m.Create(c.Request().Context(), form)
	if err != nil {
		return writeCategoryError(c, domain.OpCreate, err)
	}

	log.Info().
		Str("session_id", middleware.GetSessionID(c).String()).
		Str("category_id", category.ID).
		Msg("Category created via console")

	return c.JSON(http.StatusCreated, CategoryMutationResponse{
		Category: *category,
		State:    m.State(),
	})
}

// BeginEdit handles POST /api/v1/categories/:id/edit
func (h *CategoryHandler) BeginEdit(c echo.Context) error {
	m, ok := h.manager(c)
	if !ok {
		return NewUnauthorizedError(c, sessionExpired)
	}

	form, err := m.BeginEdit(c.Param("id"))
	if err != nil {
		return writeCategoryError(c, domain.OpUpdate, err)
	}
	return c.JSON(http.StatusOK, form)
}

// CancelEdit handles DELETE /api/v1/categories/edit
func (h *CategoryHandler) CancelEdit(c echo.Context) error {
	m, ok := h.manager(c)
	if !ok {
		return NewUnauthorizedError(c, sessionExpired)
	}
	m.CancelEdit()
	return c.NoContent(http.StatusNoContent)
}

// UpdateCategory handles PUT /api/v1/categories/:id (multipart: name, description, image)
func (h *CategoryHandler) UpdateCategory(c echo.Context) error {
	m, ok := h.manager(c)
	if !ok {
		return NewUnauthorizedError(c, sessionExpired)
	}

	form, err := readCategoryForm(c)
	if err != nil {
		return NewValidationError(c, "Invalid form data", []ValidationError{
			{Field: "image", Message: "Could not read uploaded file"},
		})
	}

	category, err := m.Update(c.Request().Context(), c.Param("id"), form)
	if err != nil {
		return writeCategoryError(c, domain.OpUpdate, err)
	}

	return c.JSON(http.StatusOK, CategoryMutationResponse{
		Category: *category,
		State:    m.State(),
	})
}

// DeleteCategory handles DELETE /api/v1/categories/:id?confirm=true
func (h *CategoryHandler) DeleteCategory(c echo.Context) error {
	m, ok := h.manager(c)
	if !ok {
		return NewUnauthorizedError(c, sessionExpired)
	}

	confirmed, _ := strconv.ParseBool(c.QueryParam("confirm"))

	if err := m.Delete(c.Request().Context(), c.Param("id"), confirmed); err != nil {
		return writeCategoryError(c, domain.OpDelete, err)
	}
	return c.JSON(http.StatusOK, m.State())
}

// ToggleStatus handles PATCH /api/v1/categories/:id/status
func (h *CategoryHandler) ToggleStatus(c echo.Context) error {
	m, ok := h.manager(c)
	if !ok {
		return NewUnauthorizedError(c, sessionExpired)
	}

	var req ToggleStatusRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	if err := m.ToggleStatus(c.Request().Context(), c.Param("id"), *req.IsActive); err != nil {
		return writeCategoryError(c, domain.OpToggleStatus, err)
	}
	return c.JSON(http.StatusOK, m.State())
}

func (h *CategoryHandler) manager(c echo.Context) (*service.CategoryManager, bool) {
	m, err := h.authService.Manager(middleware.GetSessionID(c))
	if err != nil {
		return nil, false
	}
	return m, true
}

// readCategoryForm reads name, description and an optional image part.
// The image is read up to one byte past the size limit so oversize uploads
// are rejected by image validation rather than buffered whole.
func readCategoryForm(c echo.Context) (domain.CategoryForm, error) {
	form := domain.CategoryForm{
		Name:        c.FormValue("name"),
		Description: c.FormValue("description"),
	}

	file, err := c.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return form, nil
		}
		return form, err
	}

	src, err := file.Open()
	if err != nil {
		return form, err
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, service.MaxImageSize+1))
	if err != nil {
		return form, err
	}

	form.Image = &domain.ImageUpload{
		Filename:    file.Filename,
		ContentType: file.Header.Get("Content-Type"),
		Data:        data,
	}
	return form, nil
}
