package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"spendtrail/internal/dto"
	"spendtrail/internal/errors"
	"spendtrail/internal/models"
	"spendtrail/internal/repositories"
	"spendtrail/internal/services"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// TransactionHandler handles transaction-related HTTP requests
type TransactionHandler struct {
	ledgerService services.LedgerServiceInterface
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(ledgerService services.LedgerServiceInterface) *TransactionHandler {
	return &TransactionHandler{ledgerService: ledgerService}
}

// ListTransactions retrieves paginated transaction history with filtering
// @Summary List transactions
// @Description Retrieve paginated and filtered transaction history, most recent first
// @Tags Transactions
// @Produce json
// @Param offset query int false "Number of results to skip" default(0)
// @Param limit query int false "Number of results per page (max 100)" default(20)
// @Param start_date query string false "Filter by start date (YYYY-MM-DD)"
// @Param end_date query string false "Filter by end date (YYYY-MM-DD)"
// @Param category query string false "Filter by category name"
// @Param merchant query string false "Filter by merchant name"
// @Param min_amount query string false "Filter by minimum signed amount"
// @Param max_amount query string false "Filter by maximum signed amount"
// @Param search query string false "Free text search over merchant and description"
// @Success 200 {object} dto.ListTransactionsResponse "Transactions with pagination"
// @Failure 400 {object} errors.ErrorResponse "TRANSACTION_003 - Invalid filter parameters"
// @Failure 500 {object} errors.ErrorResponse "SYSTEM_001 - Internal server error"
// @Router /transactions [get]
func (h *TransactionHandler) ListTransactions(c echo.Context) error {
	filters, err := parseTransactionFilters(c)
	if err != nil {
		return SendError(c, errors.TransactionInvalidFilter, errors.WithDetails(err.Error()))
	}

	transactions, total, err := h.ledgerService.ListTransactions(filters)
	if err != nil {
		return SendSystemError(c, err)
	}

	response := dto.ListTransactionsResponse{
		Transactions: convertTransactions(transactions),
		Pagination: dto.PaginationInfo{
			Offset: filters.Offset,
			Limit:  filters.Limit,
			Total:  total,
		},
	}

	return c.JSON(http.StatusOK, response)
}

// GetTransaction retrieves a specific transaction by ID
// @Summary Get transaction by ID
// @Description Retrieve a single transaction
// @Tags Transactions
// @Produce json
// @Param id path string true "Transaction ID (UUID)"
// @Success 200 {object} dto.TransactionResponse "Transaction details"
// @Failure 400 {object} errors.ErrorResponse "TRANSACTION_002 - Invalid transaction ID format"
// @Failure 404 {object} errors.ErrorResponse "TRANSACTION_001 - Transaction not found"
// @Failure 500 {object} errors.ErrorResponse "SYSTEM_001 - Internal server error"
// @Router /transactions/{id} [get]
func (h *TransactionHandler) GetTransaction(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return SendError(c, errors.TransactionInvalidID, errors.WithDetails("Transaction ID must be a valid UUID"))
	}

	transaction, err := h.ledgerService.GetTransaction(id)
	if err != nil {
		if err == repositories.ErrTransactionNotFound {
			return SendError(c, errors.TransactionNotFound)
		}
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusOK, convertTransaction(transaction))
}

// ReassignCategory manually moves a transaction to a category. The override
// is recorded, a rule is learned from it and other transactions of the same
// merchant are recategorized.
// @Summary Reassign transaction category
// @Description Manually override the category of a transaction. The correction is learned and applied to similar transactions.
// @Tags Transactions
// @Accept json
// @Produce json
// @Param id path string true "Transaction ID (UUID)"
// @Param request body dto.ReassignCategoryRequest true "Target category"
// @Success 200 {object} dto.TransactionResponse "Updated transaction"
// @Failure 400 {object} errors.ErrorResponse "VALIDATION_001 - Invalid request body"
// @Failure 404 {object} errors.ErrorResponse "TRANSACTION_001 - Transaction not found"
// @Failure 500 {object} errors.ErrorResponse "SYSTEM_001 - Internal server error"
// @Router /transactions/{id}/category [put]
func (h *TransactionHandler) ReassignCategory(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return SendError(c, errors.TransactionInvalidID, errors.WithDetails("Transaction ID must be a valid UUID"))
	}

	var req dto.ReassignCategoryRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}
	if err := c.Validate(req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails(err.Error()))
	}

	transaction, err := h.ledgerService.ReassignCategory(id, req.Category)
	if err != nil {
		if err == repositories.ErrTransactionNotFound {
			return SendError(c, errors.TransactionNotFound)
		}
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusOK, convertTransaction(transaction))
}

// UpdateNote sets or clears the free-text note on a transaction
// @Summary Update transaction note
// @Description Set or clear the note on a transaction. A null note clears it.
// @Tags Transactions
// @Accept json
// @Produce json
// @Param id path string true "Transaction ID (UUID)"
// @Param request body dto.UpdateNoteRequest true "Note content"
// @Success 200 {object} dto.TransactionResponse "Updated transaction"
// @Failure 400 {object} errors.ErrorResponse "VALIDATION_001 - Invalid request body"
// @Failure 404 {object} errors.ErrorResponse "TRANSACTION_001 - Transaction not found"
// @Failure 500 {object} errors.ErrorResponse "SYSTEM_001 - Internal server error"
// @Router /transactions/{id}/note [put]
func (h *TransactionHandler) UpdateNote(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return SendError(c, errors.TransactionInvalidID, errors.WithDetails("Transaction ID must be a valid UUID"))
	}

	var req dto.UpdateNoteRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}
	if err := c.Validate(req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails(err.Error()))
	}

	transaction, err := h.ledgerService.UpdateNote(id, req.Note)
	if err != nil {
		if err == repositories.ErrTransactionNotFound {
			return SendError(c, errors.TransactionNotFound)
		}
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusOK, convertTransaction(transaction))
}

// parseTransactionFilters parses and validates transaction filter parameters
func parseTransactionFilters(c echo.Context) (models.TransactionFilters, error) {
	filters := models.TransactionFilters{
		Offset: 0,
		Limit:  defaultPageLimit,
	}

	if startDateStr := c.QueryParam("start_date"); startDateStr != "" {
		startDate, err := time.Parse("2006-01-02", startDateStr)
		if err != nil {
			return filters, fmt.Errorf("invalid start_date format, use YYYY-MM-DD")
		}
		filters.StartDate = &startDate
	}

	if endDateStr := c.QueryParam("end_date"); endDateStr != "" {
		endDate, err := time.Parse("2006-01-02", endDateStr)
		if err != nil {
			return filters, fmt.Errorf("invalid end_date format, use YYYY-MM-DD")
		}
		// Set to end of day
		endOfDay := endDate.Add(23*time.Hour + 59*time.Minute + 59*time.Second)
		filters.EndDate = &endOfDay
	}

	if filters.StartDate != nil && filters.EndDate != nil && filters.StartDate.After(*filters.EndDate) {
		return filters, fmt.Errorf("start_date must not be after end_date")
	}

	if category := c.QueryParam("category"); category != "" {
		filters.Category = category
	}

	if merchant := c.QueryParam("merchant"); merchant != "" {
		filters.Merchant = merchant
	}

	if minAmountStr := c.QueryParam("min_amount"); minAmountStr != "" {
		minAmount, err := decimal.NewFromString(minAmountStr)
		if err != nil {
			return filters, fmt.Errorf("invalid min_amount format")
		}
		filters.MinAmount = &minAmount
	}

	if maxAmountStr := c.QueryParam("max_amount"); maxAmountStr != "" {
		maxAmount, err := decimal.NewFromString(maxAmountStr)
		if err != nil {
			return filters, fmt.Errorf("invalid max_amount format")
		}
		filters.MaxAmount = &maxAmount
	}

	if search := c.QueryParam("search"); search != "" {
		filters.Search = search
	}

	if offsetStr := c.QueryParam("offset"); offsetStr != "" {
		offset, err := strconv.Atoi(offsetStr)
		if err != nil || offset < 0 {
			return filters, fmt.Errorf("invalid offset parameter")
		}
		filters.Offset = offset
	}

	if limitStr := c.QueryParam("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil {
			return filters, fmt.Errorf("invalid limit parameter")
		}
		if limit < 1 {
			return filters, fmt.Errorf("limit must be at least 1")
		}
		if limit > maxPageLimit {
			limit = maxPageLimit
		}
		filters.Limit = limit
	}

	return filters, nil
}

// convertTransaction converts a transaction model to its API representation
func convertTransaction(txn *models.Transaction) dto.TransactionResponse {
	return dto.TransactionResponse{
		ID:          txn.ID,
		Date:        txn.Date,
		Amount:      txn.Amount.String(),
		Merchant:    txn.Merchant,
		Description: txn.Description,
		Category:    txn.DisplayCategory(),
		Note:        txn.Note,
		CreatedAt:   txn.CreatedAt,
	}
}

func convertTransactions(transactions []models.Transaction) []dto.TransactionResponse {
	result := make([]dto.TransactionResponse, 0, len(transactions))
	for i := range transactions {
		result = append(result, convertTransaction(&transactions[i]))
	}
	return result
}
