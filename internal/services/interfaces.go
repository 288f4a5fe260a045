package services

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"

	"spendtrail/internal/models"
	"spendtrail/internal/pipeline"
)

// LedgerServiceInterface defines the business operations over transactions,
// rules, categories and totals
type LedgerServiceInterface interface {
	// Import starts a background import from a CSV source. A running import
	// is cancelled and superseded.
	Import(ctx context.Context, source io.Reader) (uuid.UUID, <-chan pipeline.Progress, error)

	// ImportFile starts a background import from a file on disk
	ImportFile(ctx context.Context, path string) (uuid.UUID, <-chan pipeline.Progress, error)

	// CurrentImport returns the state of the most recent import batch
	CurrentImport() (*pipeline.Batch, error)

	// CancelImport requests cooperative cancellation of the running import
	CancelImport() bool

	// ListTransactions retrieves transactions with filters and a total count
	ListTransactions(filters models.TransactionFilters) ([]models.Transaction, int64, error)

	// GetTransaction retrieves one transaction by ID
	GetTransaction(id uuid.UUID) (*models.Transaction, error)

	// ReassignCategory manually moves a transaction to a category, records
	// the override, learns a rule from it and recategorizes affected
	// transactions
	ReassignCategory(id uuid.UUID, category string) (*models.Transaction, error)

	// UpdateNote sets or clears the note on a transaction
	UpdateNote(id uuid.UUID, note *string) (*models.Transaction, error)

	// GetTotals returns the cached per-category totals
	GetTotals() map[string]models.CategoryTotals

	// GetFilteredTotals computes totals over a filtered transaction set by
	// direct summation
	GetFilteredTotals(filters models.TransactionFilters) (map[string]models.CategoryTotals, error)

	// RecomputeTotals rebuilds the cached totals from persisted transactions
	RecomputeTotals() error

	// ListRules returns the current rule set in precedence order
	ListRules() []models.Rule

	// AddRule validates, persists and installs an authored rule, then
	// recategorizes existing transactions under the new rule set
	AddRule(rule models.Rule) (*models.Rule, error)

	// DeleteRule removes a rule and recategorizes existing transactions
	// under the remaining rule set
	DeleteRule(id uuid.UUID) error

	// ListCategories returns all known categories
	ListCategories() ([]models.Category, error)

	// RenameCategory renames a category and cascades to transactions, rules
	// and totals. Returns the number of transactions moved.
	RenameCategory(oldName, newName string) (int64, error)
}

// SampleDataGeneratorInterface generates realistic transaction data for
// demos and testing
type SampleDataGeneratorInterface interface {
	GenerateTransactions(startDate, endDate time.Time, count int) []*models.Transaction
	GenerateCSV(startDate, endDate time.Time, count int) string
}

type MetricsRecorderInterface interface {
	IncrementCounter(name string, tags map[string]string)
	RecordProcessingTime(name string, duration time.Duration)
	RecordGauge(name string, value float64, tags map[string]string)
}
