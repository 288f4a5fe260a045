package dto

import (
	"time"

	"github.com/google/uuid"
)

// CategoryResponse is the API representation of a category
type CategoryResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateCategoryRequest is the request body for creating a category
type CreateCategoryRequest struct {
	Name string `json:"name" validate:"required,category_name"`
}

// RenameCategoryRequest is the request body for renaming a category
type RenameCategoryRequest struct {
	NewName string `json:"new_name" validate:"required,category_name"`
}

// RenameCategoryResponse reports the outcome of a category rename
type RenameCategoryResponse struct {
	OldName           string `json:"old_name"`
	NewName           string `json:"new_name"`
	TransactionsMoved int64  `json:"transactions_moved"`
	Message           string `json:"message"`
}
