package handlers

import (
	stderrors "errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"spendtrail/internal/dto"
	"spendtrail/internal/errors"
	"spendtrail/internal/models"
	"spendtrail/internal/repositories"
	"spendtrail/internal/services"
)

// CategoryHandler handles category HTTP requests
type CategoryHandler struct {
	ledgerService services.LedgerServiceInterface
	categoryRepo  repositories.CategoryRepositoryInterface
}

// NewCategoryHandler creates a new category handler
func NewCategoryHandler(
	ledgerService services.LedgerServiceInterface,
	categoryRepo repositories.CategoryRepositoryInterface,
) *CategoryHandler {
	return &CategoryHandler{
		ledgerService: ledgerService,
		categoryRepo:  categoryRepo,
	}
}

// ListCategories returns all known categories
// @Summary List categories
// @Description Retrieve all known categories, built-in and created
// @Tags Categories
// @Produce json
// @Success 200 {array} models.Category "Known categories"
// @Failure 500 {object} errors.ErrorResponse "SYSTEM_001 - Internal server error"
// @Router /categories [get]
func (h *CategoryHandler) ListCategories(c echo.Context) error {
	categories, err := h.ledgerService.ListCategories()
	if err != nil {
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusOK, categories)
}

// CreateCategory creates a new empty category
// @Summary Create a category
// @Description Create a new category with no transactions assigned
// @Tags Categories
// @Accept json
// @Produce json
// @Param request body dto.CreateCategoryRequest true "Category name"
// @Success 201 {object} models.Category "Created category"
// @Failure 400 {object} errors.ErrorResponse "CATEGORY_003 - Invalid category name"
// @Failure 409 {object} errors.ErrorResponse "CATEGORY_002 - Category already exists"
// @Failure 500 {object} errors.ErrorResponse "SYSTEM_001 - Internal server error"
// @Router /categories [post]
func (h *CategoryHandler) CreateCategory(c echo.Context) error {
	var req dto.CreateCategoryRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}
	if err := c.Validate(req); err != nil {
		return SendError(c, errors.CategoryInvalidName, errors.WithDetails(err.Error()))
	}

	category := &models.Category{Name: req.Name}
	if err := h.categoryRepo.Create(category); err != nil {
		if stderrors.Is(err, repositories.ErrCategoryAlreadyExists) {
			return SendError(c, errors.CategoryAlreadyExists)
		}
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusCreated, category)
}

// RenameCategory renames a category and cascades the change to transactions,
// rules and totals
// @Summary Rename a category
// @Description Rename a category. Transactions, rules and cached totals move with it. Renaming onto an existing category merges into it.
// @Tags Categories
// @Accept json
// @Produce json
// @Param name path string true "Current category name"
// @Param request body dto.RenameCategoryRequest true "New category name"
// @Success 200 {object} dto.RenameCategoryResponse "Rename outcome"
// @Failure 400 {object} errors.ErrorResponse "CATEGORY_003 - Invalid category name"
// @Failure 404 {object} errors.ErrorResponse "CATEGORY_001 - Category not found"
// @Failure 500 {object} errors.ErrorResponse "SYSTEM_001 - Internal server error"
// @Router /categories/{name}/rename [post]
func (h *CategoryHandler) RenameCategory(c echo.Context) error {
	oldName := c.Param("name")
	if oldName == "" {
		return SendError(c, errors.CategoryInvalidName)
	}

	var req dto.RenameCategoryRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}
	if err := c.Validate(req); err != nil {
		return SendError(c, errors.CategoryInvalidName, errors.WithDetails(err.Error()))
	}

	moved, err := h.ledgerService.RenameCategory(oldName, req.NewName)
	if err != nil {
		if stderrors.Is(err, repositories.ErrCategoryNotFound) {
			return SendError(c, errors.CategoryNotFound)
		}
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusOK, dto.RenameCategoryResponse{
		OldName:           oldName,
		NewName:           req.NewName,
		TransactionsMoved: moved,
		Message:           "Category renamed",
	})
}
