package handlers

import (
	"net/http"
	"sort"

	"github.com/labstack/echo/v4"

	"spendtrail/internal/dto"
	"spendtrail/internal/errors"
	"spendtrail/internal/models"
	"spendtrail/internal/services"
)

// TotalsHandler handles per-category totals HTTP requests
type TotalsHandler struct {
	ledgerService services.LedgerServiceInterface
}

// NewTotalsHandler creates a new totals handler
func NewTotalsHandler(ledgerService services.LedgerServiceInterface) *TotalsHandler {
	return &TotalsHandler{ledgerService: ledgerService}
}

// GetTotals returns per-category credit, debit and net totals. Without
// filters the incrementally maintained cache is served directly; with
// filters the totals are computed over the matching transactions.
// @Summary Get per-category totals
// @Description Retrieve aggregated credit, debit, net and count per category, optionally filtered
// @Tags Totals
// @Produce json
// @Param start_date query string false "Filter by start date (YYYY-MM-DD)"
// @Param end_date query string false "Filter by end date (YYYY-MM-DD)"
// @Param category query string false "Filter by category name"
// @Param merchant query string false "Filter by merchant name"
// @Success 200 {object} dto.TotalsResponse "Per-category totals"
// @Failure 400 {object} errors.ErrorResponse "TRANSACTION_003 - Invalid filter parameters"
// @Failure 500 {object} errors.ErrorResponse "SYSTEM_001 - Internal server error"
// @Router /categories/totals [get]
func (h *TotalsHandler) GetTotals(c echo.Context) error {
	filters, err := parseTransactionFilters(c)
	if err != nil {
		return SendError(c, errors.TransactionInvalidFilter, errors.WithDetails(err.Error()))
	}

	if !hasTotalsFilters(filters) {
		return c.JSON(http.StatusOK, buildTotalsResponse(h.ledgerService.GetTotals(), "cache"))
	}

	// Filtered views bypass pagination: totals cover every matching row.
	filters.Offset = 0
	filters.Limit = 0

	totals, err := h.ledgerService.GetFilteredTotals(filters)
	if err != nil {
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusOK, buildTotalsResponse(totals, "query"))
}

// hasTotalsFilters reports whether any filter beyond pagination is set
func hasTotalsFilters(filters models.TransactionFilters) bool {
	return filters.StartDate != nil ||
		filters.EndDate != nil ||
		filters.Category != "" ||
		filters.Merchant != "" ||
		filters.MinAmount != nil ||
		filters.MaxAmount != nil ||
		filters.Search != ""
}

// buildTotalsResponse renders the totals map sorted by category name
func buildTotalsResponse(totals map[string]models.CategoryTotals, source string) dto.TotalsResponse {
	response := dto.TotalsResponse{
		Totals: make([]dto.CategoryTotalsResponse, 0, len(totals)),
		Source: source,
	}

	for category, entry := range totals {
		response.Totals = append(response.Totals, dto.CategoryTotalsResponse{
			Category: category,
			Credit:   entry.Credit.String(),
			Debit:    entry.Debit.String(),
			Net:      entry.Net().String(),
			Count:    entry.Count,
		})
	}

	sort.Slice(response.Totals, func(i, j int) bool {
		return response.Totals[i].Category < response.Totals[j].Category
	})

	return response
}
