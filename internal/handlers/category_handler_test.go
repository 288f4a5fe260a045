package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"

	"spendtrail/internal/dto"
	"spendtrail/internal/models"
)

type CategoryHandlerTestSuite struct {
	suite.Suite
	env     *handlerEnv
	handler *CategoryHandler
}

func TestCategoryHandlerSuite(t *testing.T) {
	suite.Run(t, new(CategoryHandlerTestSuite))
}

func (s *CategoryHandlerTestSuite) SetupTest() {
	s.env = newHandlerEnv(s.T())
	s.handler = NewCategoryHandler(s.env.service, s.env.catRepo)
}

func (s *CategoryHandlerTestSuite) TearDownTest() {
	s.env.close(s.T())
}

func (s *CategoryHandlerTestSuite) TestListCategories() {
	c, rec := s.env.newContext(http.MethodGet, "/api/v1/categories", nil, "")

	s.NoError(s.handler.ListCategories(c))
	s.Equal(http.StatusOK, rec.Code)

	var categories []models.Category
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &categories))
	s.Len(categories, len(models.DefaultCategories()))
}

func (s *CategoryHandlerTestSuite) TestCreateCategory() {
	body := `{"name":"Subscriptions"}`
	c, rec := s.env.newContext(http.MethodPost, "/api/v1/categories", strings.NewReader(body), "application/json")

	s.NoError(s.handler.CreateCategory(c))
	s.Equal(http.StatusCreated, rec.Code)

	var category models.Category
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &category))
	s.Equal("Subscriptions", category.Name)
}

func (s *CategoryHandlerTestSuite) TestCreateCategoryConflict() {
	body := `{"name":"Groceries"}`
	c, rec := s.env.newContext(http.MethodPost, "/api/v1/categories", strings.NewReader(body), "application/json")

	s.NoError(s.handler.CreateCategory(c))
	s.Equal(http.StatusConflict, rec.Code)

	var response ErrorResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &response))
	s.Equal("CATEGORY_002", response.Error.Code)
}

func (s *CategoryHandlerTestSuite) TestCreateCategoryInvalidName() {
	body := `{"name":"   "}`
	c, rec := s.env.newContext(http.MethodPost, "/api/v1/categories", strings.NewReader(body), "application/json")

	s.NoError(s.handler.CreateCategory(c))
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *CategoryHandlerTestSuite) TestRenameCategory() {
	s.env.runImport(s.T(), testImportCSV)

	body := `{"new_name":"Food"}`
	c, rec := s.env.newContext(http.MethodPost, "/api/v1/categories/Groceries/rename", strings.NewReader(body), "application/json")
	c.SetParamNames("name")
	c.SetParamValues("Groceries")

	s.NoError(s.handler.RenameCategory(c))
	s.Equal(http.StatusOK, rec.Code)

	var response dto.RenameCategoryResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &response))
	s.Equal("Groceries", response.OldName)
	s.Equal("Food", response.NewName)
	s.Equal(int64(2), response.TransactionsMoved)

	// Transactions, rules and totals all follow the rename
	moved, _, err := s.env.service.ListTransactions(models.TransactionFilters{Category: "Food"})
	s.Require().NoError(err)
	s.Len(moved, 2)

	totals := s.env.service.GetTotals()
	s.Contains(totals, "Food")
	s.NotContains(totals, "Groceries")
}

func (s *CategoryHandlerTestSuite) TestRenameCategoryNotFound() {
	body := `{"new_name":"Whatever"}`
	c, rec := s.env.newContext(http.MethodPost, "/api/v1/categories/Nonexistent/rename", strings.NewReader(body), "application/json")
	c.SetParamNames("name")
	c.SetParamValues("Nonexistent")

	s.NoError(s.handler.RenameCategory(c))
	s.Equal(http.StatusNotFound, rec.Code)

	var response ErrorResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &response))
	s.Equal("CATEGORY_001", response.Error.Code)
}
