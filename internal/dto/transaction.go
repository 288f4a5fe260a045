package dto

import (
	"time"

	"github.com/google/uuid"
)

// TransactionResponse is the API representation of a transaction. Amounts are
// rendered as strings to preserve decimal precision.
type TransactionResponse struct {
	ID          uuid.UUID `json:"id"`
	Date        time.Time `json:"date"`
	Amount      string    `json:"amount"`
	Merchant    string    `json:"merchant"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Note        *string   `json:"note,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// PaginationInfo contains pagination metadata for list responses
type PaginationInfo struct {
	Offset int   `json:"offset"`
	Limit  int   `json:"limit"`
	Total  int64 `json:"total"`
}

// ListTransactionsResponse is the response for listing transactions
type ListTransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	Pagination   PaginationInfo        `json:"pagination"`
}

// ReassignCategoryRequest is the request body for a manual category override
type ReassignCategoryRequest struct {
	Category string `json:"category" validate:"required,category_name"`
}

// UpdateNoteRequest is the request body for setting or clearing a note.
// A null note clears the existing one.
type UpdateNoteRequest struct {
	Note *string `json:"note" validate:"omitempty,max=500"`
}
