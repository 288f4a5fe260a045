package services

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"spendtrail/internal/aggregation"
	"spendtrail/internal/database"
	"spendtrail/internal/models"
	"spendtrail/internal/pipeline"
	"spendtrail/internal/repositories"
	"spendtrail/internal/rules"
)

const importCSV = `"Date";"Name / Description";"Account";"Counterparty";"Code";"Debit/credit";"Amount (EUR)";"Transaction type";"Notifications"
"20240105";"ALBERT HEIJN 1123";"NL01INGB0001234567";"";"BA";"Debit";"45,50";"Payment terminal";"groceries"
"20240112";"ALBERT HEIJN 1123";"NL01INGB0001234567";"";"BA";"Debit";"62,10";"Payment terminal";"groceries"
"20240115";"ESSENT Retail Energie";"NL01INGB0001234567";"";"IC";"Debit";"210,00";"SEPA direct debit";"energy"
"20240125";"Salary BV";"NL01INGB0001234567";"";"GT";"Credit";"2.500,00";"Online Banking";"salary"
"20240201";"Mystery Shop";"NL01INGB0001234567";"";"BA";"Debit";"9,99";"Payment terminal";""
`

type LedgerServiceTestSuite struct {
	suite.Suite
	db        *database.DB
	txns      repositories.TransactionRepositoryInterface
	ruleRepo  repositories.RuleRepositoryInterface
	catRepo   repositories.CategoryRepositoryInterface
	overrides repositories.OverrideRepositoryInterface
	service   LedgerServiceInterface
}

func TestLedgerServiceTestSuite(t *testing.T) {
	suite.Run(t, new(LedgerServiceTestSuite))
}

func (s *LedgerServiceTestSuite) SetupTest() {
	s.db = database.SetupTestDB(s.T())
	s.Require().NoError(s.db.SeedDefaults())

	s.txns = repositories.NewTransactionRepository(s.db.DB)
	s.ruleRepo = repositories.NewRuleRepository(s.db.DB)
	s.catRepo = repositories.NewCategoryRepository(s.db.DB)
	s.overrides = repositories.NewOverrideRepository(s.db.DB)

	service, err := NewLedgerService(
		s.txns, s.ruleRepo, s.catRepo, s.overrides,
		rules.NewEngine(), aggregation.NewAggregator(),
		pipeline.DefaultFormat(), NewNoopMetrics(),
	)
	s.Require().NoError(err)
	s.service = service
}

func (s *LedgerServiceTestSuite) TearDownTest() {
	s.NoError(s.db.Close())
}

func (s *LedgerServiceTestSuite) runImport(csv string) *pipeline.Batch {
	_, progress, err := s.service.Import(context.Background(), strings.NewReader(csv))
	s.Require().NoError(err)
	for range progress {
	}
	batch, err := s.service.CurrentImport()
	s.Require().NoError(err)
	return batch
}

func (s *LedgerServiceTestSuite) TestImportCategorizesAndAggregates() {
	batch := s.runImport(importCSV)

	s.Equal(pipeline.BatchCompleted, batch.State)
	s.Equal(5, batch.Imported)
	s.Equal(0, batch.Rejected)

	totals := s.service.GetTotals()

	groceries := totals["Groceries"]
	s.Equal("-107.6", groceries.Debit.String())
	s.Equal(int64(2), groceries.Count)

	utilities := totals["Utilities"]
	s.Equal("-210", utilities.Debit.String())

	fallback := totals[models.FallbackCategory]
	s.Equal(int64(2), fallback.Count, "salary and mystery shop have no matching rule")
	s.Equal("2500", fallback.Credit.String())
	s.Equal("-9.99", fallback.Debit.String())
}

func (s *LedgerServiceTestSuite) TestImportIsIdempotentOnTotals() {
	s.runImport(importCSV)
	first := s.service.GetTotals()

	s.Require().NoError(s.service.RecomputeTotals())
	recomputed := s.service.GetTotals()

	s.Require().Len(recomputed, len(first))
	for category, want := range first {
		got := recomputed[category]
		s.True(want.Credit.Equal(got.Credit), category)
		s.True(want.Debit.Equal(got.Debit), category)
		s.Equal(want.Count, got.Count, category)
	}
}

func (s *LedgerServiceTestSuite) TestReassignLearnsAndRecategorizes() {
	s.runImport(importCSV)

	listed, _, err := s.service.ListTransactions(models.TransactionFilters{Category: "Groceries"})
	s.Require().NoError(err)
	s.Require().Len(listed, 2)

	reassigned, err := s.service.ReassignCategory(listed[0].ID, "Household")
	s.Require().NoError(err)
	s.Equal("Household", reassigned.Category)

	// The sibling Albert Heijn transaction follows through the learned rule.
	household, _, err := s.service.ListTransactions(models.TransactionFilters{Category: "Household"})
	s.Require().NoError(err)
	s.Len(household, 2)

	totals := s.service.GetTotals()
	s.Equal(int64(2), totals["Household"].Count)
	_, ok := totals["Groceries"]
	s.False(ok)

	history, err := s.overrides.GetByTransactionID(listed[0].ID)
	s.Require().NoError(err)
	s.Require().Len(history, 1)
	s.Equal("Groceries", history[0].PreviousCategory)
	s.Equal("Household", history[0].NewCategory)

	stored, err := s.ruleRepo.GetAll()
	s.Require().NoError(err)
	var learned *models.Rule
	for i := range stored {
		if stored[i].IsLearned() {
			learned = &stored[i]
		}
	}
	s.Require().NotNil(learned, "learned rule must be persisted")
	s.Equal("Household", learned.Category)
	s.Equal(2, learned.Priority)
}

func (s *LedgerServiceTestSuite) TestLearnedRuleAppliesToNextImport() {
	s.runImport(importCSV)

	listed, _, err := s.service.ListTransactions(models.TransactionFilters{Category: "Groceries"})
	s.Require().NoError(err)
	_, err = s.service.ReassignCategory(listed[0].ID, "Household")
	s.Require().NoError(err)

	s.runImport(`"Date";"Name / Description";"Debit/credit";"Amount (EUR)";"Notifications"
"20240210";"ALBERT HEIJN 1123";"Debit";"30,00";""
`)

	household, _, err := s.service.ListTransactions(models.TransactionFilters{Category: "Household"})
	s.Require().NoError(err)
	s.Len(household, 3, "new import resolves through the learned rule")
}

func (s *LedgerServiceTestSuite) TestReassignFollowsDescriptionOnlySiblings() {
	// Rows with an empty merchant column learn their rule from the
	// description, and the sibling lookup must search descriptions too.
	s.runImport(importCSV + `"20240205";"";"NL01INGB0001234567";"";"BA";"Debit";"12,50";"Payment terminal";"TIKKIE terugbetaling"
"20240206";"";"NL01INGB0001234567";"";"BA";"Debit";"17,50";"Payment terminal";"TIKKIE terugbetaling"
`)

	listed, _, err := s.service.ListTransactions(models.TransactionFilters{Search: "TIKKIE"})
	s.Require().NoError(err)
	s.Require().Len(listed, 2)

	_, err = s.service.ReassignCategory(listed[0].ID, "Friends")
	s.Require().NoError(err)

	friends, _, err := s.service.ListTransactions(models.TransactionFilters{Category: "Friends"})
	s.Require().NoError(err)
	s.Len(friends, 2, "the sibling with the same description follows")

	totals := s.service.GetTotals()
	s.Equal(int64(2), totals["Friends"].Count)
	s.Equal("-30", totals["Friends"].Debit.String())
}

func (s *LedgerServiceTestSuite) TestAddAmountConstrainedRule() {
	s.runImport(importCSV)

	min := decimal.NewFromInt(-10000)
	max := decimal.NewFromInt(-50)
	_, err := s.service.AddRule(models.Rule{
		Pattern:   "Albert Heijn",
		Category:  "Major Grocery Shopping",
		Priority:  2,
		AmountMin: &min,
		AmountMax: &max,
	})
	s.Require().NoError(err)

	major, _, err := s.service.ListTransactions(models.TransactionFilters{Category: "Major Grocery Shopping"})
	s.Require().NoError(err)
	s.Require().Len(major, 1)
	s.Equal("-62.1", major[0].Amount.String())

	remaining, _, err := s.service.ListTransactions(models.TransactionFilters{Category: "Groceries"})
	s.Require().NoError(err)
	s.Len(remaining, 1)

	totals := s.service.GetTotals()
	s.Equal(int64(1), totals["Major Grocery Shopping"].Count)
	s.Equal(int64(1), totals["Groceries"].Count)
}

func (s *LedgerServiceTestSuite) TestAddRuleRejectsMalformedRegex() {
	_, err := s.service.AddRule(models.Rule{Pattern: "[unclosed", IsRegex: true, Category: "Broken", Priority: 1})
	s.Error(err)

	count, err := s.ruleRepo.Count()
	s.Require().NoError(err)
	s.Equal(int64(len(models.DefaultRules())), count)
}

func (s *LedgerServiceTestSuite) TestDeleteRuleRecategorizes() {
	s.runImport(importCSV)

	installed, err := s.service.AddRule(models.Rule{Pattern: "Mystery Shop", Category: "Misc", Priority: 5})
	s.Require().NoError(err)

	misc, _, err := s.service.ListTransactions(models.TransactionFilters{Category: "Misc"})
	s.Require().NoError(err)
	s.Require().Len(misc, 1)

	s.Require().NoError(s.service.DeleteRule(installed.ID))

	misc, _, err = s.service.ListTransactions(models.TransactionFilters{Category: "Misc"})
	s.Require().NoError(err)
	s.Empty(misc, "transactions the rule was holding fall back")

	fallback, _, err := s.service.ListTransactions(models.TransactionFilters{Category: models.FallbackCategory})
	s.Require().NoError(err)
	s.Len(fallback, 2)

	count, err := s.ruleRepo.Count()
	s.Require().NoError(err)
	s.Equal(int64(len(models.DefaultRules())), count)

	s.ErrorIs(s.service.DeleteRule(uuid.New()), repositories.ErrRuleNotFound)
}

func (s *LedgerServiceTestSuite) TestImportFile() {
	path := filepath.Join(s.T().TempDir(), "export.csv")
	s.Require().NoError(os.WriteFile(path, []byte(importCSV), 0o600))

	_, progress, err := s.service.ImportFile(context.Background(), path)
	s.Require().NoError(err)
	for range progress {
	}

	batch, err := s.service.CurrentImport()
	s.Require().NoError(err)
	s.Equal(pipeline.BatchCompleted, batch.State)
	s.Equal(5, batch.Imported)

	_, _, err = s.service.ImportFile(context.Background(), filepath.Join(s.T().TempDir(), "missing.csv"))
	s.ErrorIs(err, pipeline.ErrSourceUnreadable)
}

func (s *LedgerServiceTestSuite) TestRenameCategoryCascades() {
	s.runImport(importCSV)

	moved, err := s.service.RenameCategory("Groceries", "Food")
	s.Require().NoError(err)
	s.Equal(int64(2), moved)

	totals := s.service.GetTotals()
	_, ok := totals["Groceries"]
	s.False(ok)
	s.Equal(int64(2), totals["Food"].Count)

	// Rules follow the rename, so the next matching import lands in Food.
	s.runImport(`"Date";"Name / Description";"Debit/credit";"Amount (EUR)";"Notifications"
"20240210";"Picnic by Picnic B.V.";"Debit";"20,00";""
`)
	totals = s.service.GetTotals()
	s.Equal(int64(3), totals["Food"].Count)
}

func (s *LedgerServiceTestSuite) TestGetFilteredTotals() {
	s.runImport(importCSV)

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC)
	totals, err := s.service.GetFilteredTotals(models.TransactionFilters{StartDate: &start, EndDate: &end})
	s.Require().NoError(err)

	s.Equal(int64(2), totals["Groceries"].Count)
	s.Equal(int64(1), totals["Utilities"].Count)
	_, ok := totals[models.FallbackCategory]
	s.False(ok, "salary and mystery shop fall outside the window")

	// Filtered view leaves the cache untouched.
	cached := s.service.GetTotals()
	s.Equal(int64(2), cached[models.FallbackCategory].Count)
}

func (s *LedgerServiceTestSuite) TestUpdateNote() {
	s.runImport(importCSV)
	listed, _, err := s.service.ListTransactions(models.TransactionFilters{Limit: 1})
	s.Require().NoError(err)

	note := "check this one"
	updated, err := s.service.UpdateNote(listed[0].ID, &note)
	s.Require().NoError(err)
	s.Require().NotNil(updated.Note)
	s.Equal(note, *updated.Note)
}

func (s *LedgerServiceTestSuite) TestImportRejectsWhileRunning() {
	// Covered in detail by the worker tests; here only the service wiring.
	s.runImport(importCSV)
	batch, err := s.service.CurrentImport()
	s.Require().NoError(err)
	s.Equal(pipeline.BatchCompleted, batch.State)
	s.False(s.service.CancelImport())
}

func (s *LedgerServiceTestSuite) TestGeneratedSampleDataImports() {
	generator := NewSampleDataGenerator(42)
	csv := generator.GenerateCSV(
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		40,
	)

	batch := s.runImport(csv)
	s.Equal(pipeline.BatchCompleted, batch.State)
	s.Equal(40, batch.Imported)
	s.Equal(0, batch.Rejected)

	totals := s.service.GetTotals()
	s.NotEmpty(totals)
}
