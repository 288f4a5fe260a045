package repositories

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"spendtrail/internal/database"
	"spendtrail/internal/models"
)

type CategoryRepositoryTestSuite struct {
	suite.Suite
	db         *database.DB
	categories CategoryRepositoryInterface
	txns       TransactionRepositoryInterface
	rules      RuleRepositoryInterface
}

func TestCategoryRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(CategoryRepositoryTestSuite))
}

func (s *CategoryRepositoryTestSuite) SetupTest() {
	s.db = database.SetupTestDB(s.T())
	s.categories = NewCategoryRepository(s.db.DB)
	s.txns = NewTransactionRepository(s.db.DB)
	s.rules = NewRuleRepository(s.db.DB)
}

func (s *CategoryRepositoryTestSuite) TearDownTest() {
	s.NoError(s.db.Close())
}

func (s *CategoryRepositoryTestSuite) TestCreateAndGetByName() {
	s.Require().NoError(s.categories.Create(&models.Category{Name: "Groceries"}))

	found, err := s.categories.GetByName("Groceries")
	s.Require().NoError(err)
	s.Equal("Groceries", found.Name)

	_, err = s.categories.GetByName("Nope")
	s.ErrorIs(err, ErrCategoryNotFound)
}

func (s *CategoryRepositoryTestSuite) TestCreateRejectsInvalid() {
	s.ErrorIs(s.categories.Create(&models.Category{Name: ""}), models.ErrEmptyCategoryName)

	parent := "Loop"
	s.ErrorIs(s.categories.Create(&models.Category{Name: "Loop", Parent: &parent}), models.ErrSelfParent)
}

func (s *CategoryRepositoryTestSuite) TestEnsureExistsIsIdempotent() {
	s.Require().NoError(s.categories.EnsureExists("Household"))
	s.Require().NoError(s.categories.EnsureExists("Household"))

	all, err := s.categories.GetAll()
	s.Require().NoError(err)
	s.Len(all, 1)
}

func (s *CategoryRepositoryTestSuite) TestRenameCascades() {
	s.Require().NoError(s.categories.Create(&models.Category{Name: "Groceries"}))
	s.Require().NoError(s.categories.Create(&models.Category{Name: "Utilities"}))

	s.Require().NoError(s.txns.CreateBatch([]*models.Transaction{
		{Date: time.Now(), Merchant: "Albert Heijn", Amount: decimal.NewFromInt(-45), Category: "Groceries"},
		{Date: time.Now(), Merchant: "Picnic", Amount: decimal.NewFromInt(-80), Category: "Groceries"},
		{Date: time.Now(), Merchant: "ESSENT", Amount: decimal.NewFromInt(-210), Category: "Utilities"},
	}))
	s.Require().NoError(s.rules.Create(&models.Rule{
		Pattern: "Albert Heijn", Category: "Groceries", Priority: 1, Source: models.RuleSourceAuthored, Seq: 1,
	}))

	moved, err := s.categories.Rename("Groceries", "Food")
	s.Require().NoError(err)
	s.Equal(int64(2), moved)

	_, err = s.categories.GetByName("Groceries")
	s.ErrorIs(err, ErrCategoryNotFound)
	_, err = s.categories.GetByName("Food")
	s.NoError(err)

	txns, _, err := s.txns.GetWithFilters(models.TransactionFilters{Category: "Food"})
	s.Require().NoError(err)
	s.Len(txns, 2)

	untouched, _, err := s.txns.GetWithFilters(models.TransactionFilters{Category: "Utilities"})
	s.Require().NoError(err)
	s.Len(untouched, 1)

	ruleSet, err := s.rules.GetAll()
	s.Require().NoError(err)
	s.Require().Len(ruleSet, 1)
	s.Equal("Food", ruleSet[0].Category)
}

func (s *CategoryRepositoryTestSuite) TestRenameErrors() {
	s.Require().NoError(s.categories.Create(&models.Category{Name: "Groceries"}))
	s.Require().NoError(s.categories.Create(&models.Category{Name: "Food"}))

	_, err := s.categories.Rename("Missing", "Other")
	s.ErrorIs(err, ErrCategoryNotFound)

	_, err = s.categories.Rename("Groceries", "Food")
	s.ErrorIs(err, ErrCategoryAlreadyExists)

	_, err = s.categories.Rename("Groceries", "")
	s.ErrorIs(err, models.ErrEmptyCategoryName)
}
