package dto

import "github.com/google/uuid"

// StartImportResponse acknowledges an accepted import. The batch keeps
// running in the background; its state is available on the current-import
// endpoint.
type StartImportResponse struct {
	BatchID uuid.UUID `json:"batch_id"`
	Message string    `json:"message"`
}

// CancelImportResponse reports whether a running batch was signalled
type CancelImportResponse struct {
	Cancelled bool   `json:"cancelled"`
	Message   string `json:"message"`
}

// GenerateSampleRequest is the request body for generating sample data
type GenerateSampleRequest struct {
	Count     int    `json:"count" validate:"omitempty,min=1,max=10000"`
	StartDate string `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate   string `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
}
