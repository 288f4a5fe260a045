package repositories

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"spendtrail/internal/models"
)

var (
	ErrRuleNotFound = errors.New("rule not found")
)

// ruleRepository implements RuleRepositoryInterface
type ruleRepository struct {
	db *gorm.DB
}

// NewRuleRepository creates a new rule repository
func NewRuleRepository(db *gorm.DB) RuleRepositoryInterface {
	return &ruleRepository{
		db: db,
	}
}

// Create creates a new rule
func (r *ruleRepository) Create(rule *models.Rule) error {
	if err := r.db.Create(rule).Error; err != nil {
		return fmt.Errorf("failed to create rule: %w", err)
	}
	return nil
}

// Save upserts a rule by primary key, used when a learned rule supersedes an
// earlier one for the same merchant
func (r *ruleRepository) Save(rule *models.Rule) error {
	if err := r.db.Save(rule).Error; err != nil {
		return fmt.Errorf("failed to save rule: %w", err)
	}
	return nil
}

// GetAll retrieves every rule in insertion order
func (r *ruleRepository) GetAll() ([]models.Rule, error) {
	var ruleSet []models.Rule
	if err := r.db.Order("seq ASC").Find(&ruleSet).Error; err != nil {
		return nil, fmt.Errorf("failed to get rules: %w", err)
	}
	return ruleSet, nil
}

// Delete removes a rule by ID
func (r *ruleRepository) Delete(id uuid.UUID) error {
	result := r.db.Delete(&models.Rule{ID: id})
	if result.Error != nil {
		return fmt.Errorf("failed to delete rule: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrRuleNotFound
	}
	return nil
}

// Count returns the number of stored rules
func (r *ruleRepository) Count() (int64, error) {
	var total int64
	if err := r.db.Model(&models.Rule{}).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("failed to count rules: %w", err)
	}
	return total, nil
}
