package repositories

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"spendtrail/internal/models"
)

var (
	ErrCategoryNotFound      = errors.New("category not found")
	ErrCategoryAlreadyExists = errors.New("category already exists")
)

// categoryRepository implements CategoryRepositoryInterface
type categoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository creates a new category repository
func NewCategoryRepository(db *gorm.DB) CategoryRepositoryInterface {
	return &categoryRepository{
		db: db,
	}
}

// Create creates a new category
func (r *categoryRepository) Create(category *models.Category) error {
	if err := category.Validate(); err != nil {
		return err
	}
	if category.CreatedAt.IsZero() {
		category.CreatedAt = time.Now()
	}
	if err := r.db.Create(category).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrCategoryAlreadyExists
		}
		return fmt.Errorf("failed to create category: %w", err)
	}
	return nil
}

// GetAll retrieves every category by name
func (r *categoryRepository) GetAll() ([]models.Category, error) {
	var categories []models.Category
	if err := r.db.Order("name ASC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}
	return categories, nil
}

// GetByName retrieves a category by name
func (r *categoryRepository) GetByName(name string) (*models.Category, error) {
	var category models.Category
	if err := r.db.Where("name = ?", name).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return &category, nil
}

// EnsureExists creates the category when it is not present yet. Rules and
// overrides may name categories before anyone declared them.
func (r *categoryRepository) EnsureExists(name string) error {
	if name == "" {
		return models.ErrEmptyCategoryName
	}

	var count int64
	if err := r.db.Model(&models.Category{}).Where("name = ?", name).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check category: %w", err)
	}
	if count > 0 {
		return nil
	}

	return r.Create(&models.Category{Name: name})
}

// Rename renames a category and cascades the new name to every transaction
// and rule that references it, all inside one database transaction. Returns
// the number of transactions moved.
func (r *categoryRepository) Rename(oldName, newName string) (int64, error) {
	if newName == "" {
		return 0, models.ErrEmptyCategoryName
	}

	var moved int64
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Category{}).Where("name = ?", oldName).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check category: %w", err)
		}
		if count == 0 {
			return ErrCategoryNotFound
		}

		if err := tx.Model(&models.Category{}).Where("name = ?", newName).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check target category: %w", err)
		}
		if count > 0 {
			return ErrCategoryAlreadyExists
		}

		if err := tx.Model(&models.Category{}).Where("name = ?", oldName).
			Update("name", newName).Error; err != nil {
			return fmt.Errorf("failed to rename category: %w", err)
		}
		if err := tx.Model(&models.Category{}).Where("parent = ?", oldName).
			Update("parent", newName).Error; err != nil {
			return fmt.Errorf("failed to reparent categories: %w", err)
		}

		result := tx.Model(&models.Transaction{}).Where("category = ?", oldName).
			Updates(map[string]interface{}{"category": newName, "updated_at": time.Now()})
		if result.Error != nil {
			return fmt.Errorf("failed to move transactions: %w", result.Error)
		}
		moved = result.RowsAffected

		if err := tx.Model(&models.Rule{}).Where("category = ?", oldName).
			Update("category", newName).Error; err != nil {
			return fmt.Errorf("failed to move rules: %w", err)
		}

		return nil
	})
	if err != nil {
		return 0, err
	}
	return moved, nil
}
