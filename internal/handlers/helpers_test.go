package handlers

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"spendtrail/internal/aggregation"
	"spendtrail/internal/database"
	"spendtrail/internal/pipeline"
	"spendtrail/internal/repositories"
	"spendtrail/internal/rules"
	"spendtrail/internal/services"
)

const testImportCSV = `"Date";"Name / Description";"Account";"Counterparty";"Code";"Debit/credit";"Amount (EUR)";"Transaction type";"Notifications"
"20240105";"ALBERT HEIJN 1123";"NL01INGB0001234567";"";"BA";"Debit";"45,50";"Payment terminal";"groceries"
"20240112";"ALBERT HEIJN 1123";"NL01INGB0001234567";"";"BA";"Debit";"62,10";"Payment terminal";"groceries"
"20240115";"ESSENT Retail Energie";"NL01INGB0001234567";"";"IC";"Debit";"210,00";"SEPA direct debit";"energy"
"20240125";"Salary BV";"NL01INGB0001234567";"";"GT";"Credit";"2.500,00";"Online Banking";"salary"
"20240201";"Mystery Shop";"NL01INGB0001234567";"";"BA";"Debit";"9,99";"Payment terminal";""
`

// handlerEnv wires the real service stack against an in-memory database so
// handler tests exercise the full path below the HTTP layer
type handlerEnv struct {
	db       *database.DB
	service  services.LedgerServiceInterface
	catRepo  repositories.CategoryRepositoryInterface
	ruleRepo repositories.RuleRepositoryInterface
	echo     *echo.Echo
}

func newHandlerEnv(t *testing.T) *handlerEnv {
	t.Helper()

	db := database.SetupTestDB(t)
	if err := db.SeedDefaults(); err != nil {
		t.Fatalf("failed to seed defaults: %v", err)
	}

	txnRepo := repositories.NewTransactionRepository(db.DB)
	ruleRepo := repositories.NewRuleRepository(db.DB)
	catRepo := repositories.NewCategoryRepository(db.DB)
	overrideRepo := repositories.NewOverrideRepository(db.DB)

	service, err := services.NewLedgerService(
		txnRepo, ruleRepo, catRepo, overrideRepo,
		rules.NewEngine(), aggregation.NewAggregator(),
		pipeline.DefaultFormat(), services.NewNoopMetrics(),
	)
	if err != nil {
		t.Fatalf("failed to create ledger service: %v", err)
	}

	e := echo.New()
	e.Validator = NewValidator()

	return &handlerEnv{
		db:       db,
		service:  service,
		catRepo:  catRepo,
		ruleRepo: ruleRepo,
		echo:     e,
	}
}

func (env *handlerEnv) close(t *testing.T) {
	t.Helper()
	if err := env.db.Close(); err != nil {
		t.Logf("failed to close test database: %v", err)
	}
}

// runImport imports a CSV synchronously through the service layer
func (env *handlerEnv) runImport(t *testing.T, csv string) {
	t.Helper()

	_, progress, err := env.service.Import(context.Background(), strings.NewReader(csv))
	if err != nil {
		t.Fatalf("failed to start import: %v", err)
	}
	for range progress {
	}
}

// newContext builds an echo context for a request and returns the recorder
func (env *handlerEnv) newContext(method, target string, body io.Reader, contentType string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}
	rec := httptest.NewRecorder()
	return env.echo.NewContext(req, rec), rec
}
