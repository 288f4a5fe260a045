package repositories

import (
	"github.com/google/uuid"

	"spendtrail/internal/models"
)

// TransactionRepositoryInterface defines transaction persistence operations
type TransactionRepositoryInterface interface {
	Create(txn *models.Transaction) error
	CreateBatch(txns []*models.Transaction) error
	GetByID(id uuid.UUID) (*models.Transaction, error)
	GetAll() ([]models.Transaction, error)
	GetWithFilters(filters models.TransactionFilters) ([]models.Transaction, int64, error)
	UpdateCategory(id uuid.UUID, category string) error
	UpdateCategories(txns []*models.Transaction) error
	UpdateNote(id uuid.UUID, note *string) error
}

// RuleRepositoryInterface defines rule persistence operations
type RuleRepositoryInterface interface {
	Create(rule *models.Rule) error
	Save(rule *models.Rule) error
	GetAll() ([]models.Rule, error)
	Delete(id uuid.UUID) error
	Count() (int64, error)
}

// CategoryRepositoryInterface defines category persistence operations
type CategoryRepositoryInterface interface {
	Create(category *models.Category) error
	GetAll() ([]models.Category, error)
	GetByName(name string) (*models.Category, error)
	EnsureExists(name string) error
	Rename(oldName, newName string) (int64, error)
}

// OverrideRepositoryInterface defines manual override persistence operations
type OverrideRepositoryInterface interface {
	Create(override *models.ManualOverride) error
	GetByTransactionID(transactionID uuid.UUID) ([]models.ManualOverride, error)
	GetRecent(limit int) ([]models.ManualOverride, error)
}
