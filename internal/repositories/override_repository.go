package repositories

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"spendtrail/internal/models"
)

// overrideRepository implements OverrideRepositoryInterface
type overrideRepository struct {
	db *gorm.DB
}

// NewOverrideRepository creates a new manual override repository
func NewOverrideRepository(db *gorm.DB) OverrideRepositoryInterface {
	return &overrideRepository{
		db: db,
	}
}

// Create records a manual override
func (r *overrideRepository) Create(override *models.ManualOverride) error {
	if err := r.db.Create(override).Error; err != nil {
		return fmt.Errorf("failed to create override: %w", err)
	}
	return nil
}

// GetByTransactionID retrieves the override history of one transaction
func (r *overrideRepository) GetByTransactionID(transactionID uuid.UUID) ([]models.ManualOverride, error) {
	var overrides []models.ManualOverride
	if err := r.db.Where("transaction_id = ?", transactionID).
		Order("created_at ASC").
		Find(&overrides).Error; err != nil {
		return nil, fmt.Errorf("failed to get overrides: %w", err)
	}
	return overrides, nil
}

// GetRecent retrieves the most recent overrides across all transactions
func (r *overrideRepository) GetRecent(limit int) ([]models.ManualOverride, error) {
	var overrides []models.ManualOverride
	if err := r.db.Order("created_at DESC").
		Limit(limit).
		Find(&overrides).Error; err != nil {
		return nil, fmt.Errorf("failed to get recent overrides: %w", err)
	}
	return overrides, nil
}
