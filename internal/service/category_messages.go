package service

import (
	"errors"

	"github.com/storefront/admin-console/internal/backend"
	"github.com/storefront/admin-console/internal/domain"
)

// operationMessages holds the user-visible text for each category operation
type operationMessages struct {
	success string
	// failed is shown when the backend rejects the call without a message
	failed string
	// unexpected is shown for transport and parse failures
	unexpected string
}

var categoryMessages = map[domain.CategoryOperation]operationMessages{
	domain.OpFetch: {
		failed:     "Failed to fetch categories",
		unexpected: "Something went wrong while fetching categories",
	},
	domain.OpCreate: {
		success:    "Category added successfully!",
		failed:     "Failed to create category",
		unexpected: "Something went wrong",
	},
	domain.OpUpdate: {
		failed:     "Failed to update category",
		unexpected: "Something went wrong",
	},
	domain.OpDelete: {
		success:    "Category deleted successfully!",
		failed:     "Failed to delete category",
		unexpected: "Something went wrong while deleting category",
	},
	domain.OpToggleStatus: {
		failed:     "Failed to update status",
		unexpected: "Something went wrong while updating status",
	},
}

// UserMessage resolves an operation error into the single message shown to the admin
func UserMessage(op domain.CategoryOperation, err error) string {
	msgs := categoryMessages[op]

	switch {
	case errors.Is(err, domain.ErrNameRequired):
		return "Category name is required"
	case errors.Is(err, domain.ErrNoSession):
		return "Session expired, please log in again"
	case errors.Is(err, domain.ErrNoSelection):
		return "Select a category to edit first"
	case errors.Is(err, domain.ErrNotConfirmed):
		return "Deletion was not confirmed"
	case errors.Is(err, domain.ErrCategoryMissing):
		return "Category not found"
	case isImageError(err):
		return err.Error()
	}

	if apiErr, ok := backend.IsAPIError(err); ok {
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return msgs.failed
	}
	return msgs.unexpected
}

func successMessage(op domain.CategoryOperation) string {
	return categoryMessages[op].success
}
