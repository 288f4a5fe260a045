package repositories

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"spendtrail/internal/models"
)

var (
	ErrTransactionNotFound = errors.New("transaction not found")
)

// transactionRepository implements TransactionRepositoryInterface
type transactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *gorm.DB) TransactionRepositoryInterface {
	return &transactionRepository{
		db: db,
	}
}

// Create creates a new transaction
func (r *transactionRepository) Create(txn *models.Transaction) error {
	if err := r.db.Create(txn).Error; err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

// CreateBatch creates multiple transactions in a single database transaction
func (r *transactionRepository) CreateBatch(txns []*models.Transaction) error {
	if len(txns) == 0 {
		return nil
	}

	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&txns).Error; err != nil {
			return fmt.Errorf("failed to create batch transactions: %w", err)
		}
		return nil
	})
}

// GetByID retrieves a transaction by ID
func (r *transactionRepository) GetByID(id uuid.UUID) (*models.Transaction, error) {
	transaction := &models.Transaction{ID: id}
	if err := r.db.First(transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return transaction, nil
}

// GetAll retrieves every transaction ordered by date
func (r *transactionRepository) GetAll() ([]models.Transaction, error) {
	var txns []models.Transaction
	if err := r.db.Order("date ASC, record_index ASC").Find(&txns).Error; err != nil {
		return nil, fmt.Errorf("failed to get transactions: %w", err)
	}
	return txns, nil
}

// GetWithFilters retrieves transactions with multiple filters
func (r *transactionRepository) GetWithFilters(filters models.TransactionFilters) ([]models.Transaction, int64, error) {
	var txns []models.Transaction
	var total int64

	query := r.db.Model(&models.Transaction{})

	if filters.StartDate != nil {
		query = query.Where("date >= ?", *filters.StartDate)
	}
	if filters.EndDate != nil {
		query = query.Where("date <= ?", *filters.EndDate)
	}
	if filters.Category != "" {
		if filters.Category == models.FallbackCategory {
			query = query.Where("category = ? OR category = ''", filters.Category)
		} else {
			query = query.Where("category = ?", filters.Category)
		}
	}
	if filters.Merchant != "" {
		query = query.Where("LOWER(merchant) LIKE ?", "%"+strings.ToLower(filters.Merchant)+"%")
	}
	if filters.MinAmount != nil {
		query = query.Where("amount >= ?", *filters.MinAmount)
	}
	if filters.MaxAmount != nil {
		query = query.Where("amount <= ?", *filters.MaxAmount)
	}
	if filters.Search != "" {
		pattern := "%" + strings.ToLower(filters.Search) + "%"
		query = query.Where("LOWER(merchant) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count filtered transactions: %w", err)
	}

	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if err := query.Offset(filters.Offset).
		Order("date DESC, record_index DESC").
		Find(&txns).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to get filtered transactions: %w", err)
	}

	return txns, total, nil
}

// UpdateCategory updates the category of a single transaction
func (r *transactionRepository) UpdateCategory(id uuid.UUID, category string) error {
	result := r.db.Model(&models.Transaction{ID: id}).
		Updates(map[string]interface{}{
			"category":   category,
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update transaction category: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrTransactionNotFound
	}
	return nil
}

// UpdateCategories persists the categories of an already-categorized batch
func (r *transactionRepository) UpdateCategories(txns []*models.Transaction) error {
	if len(txns) == 0 {
		return nil
	}

	now := time.Now()
	return r.db.Transaction(func(tx *gorm.DB) error {
		for _, txn := range txns {
			if err := tx.Model(&models.Transaction{ID: txn.ID}).
				Updates(map[string]interface{}{
					"category":   txn.Category,
					"updated_at": now,
				}).Error; err != nil {
				return fmt.Errorf("failed to update category for %s: %w", txn.ID, err)
			}
		}
		return nil
	})
}

// UpdateNote sets or clears the free-form note on a transaction
func (r *transactionRepository) UpdateNote(id uuid.UUID, note *string) error {
	result := r.db.Model(&models.Transaction{ID: id}).
		Updates(map[string]interface{}{
			"note":       note,
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update transaction note: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrTransactionNotFound
	}
	return nil
}
