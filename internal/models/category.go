package models

import (
	"errors"
	"time"
)

var (
	ErrEmptyCategoryName = errors.New("category name must not be empty")
	ErrSelfParent        = errors.New("category cannot be its own parent")
)

// Category is identified by its name. A category may have at most one level
// of nesting via the optional parent name.
type Category struct {
	Name      string    `gorm:"type:varchar(100);primary_key" json:"name"`
	Parent    *string   `gorm:"type:varchar(100)" json:"parent,omitempty"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

// Validate validates the category fields
func (c *Category) Validate() error {
	if c.Name == "" {
		return ErrEmptyCategoryName
	}
	if c.Parent != nil && *c.Parent == c.Name {
		return ErrSelfParent
	}
	return nil
}

// TableName returns the table name for Category
func (c *Category) TableName() string {
	return "categories"
}

// DefaultCategories returns the built-in category set loaded on first start
func DefaultCategories() []string {
	return []string{
		"Groceries",
		"Utilities",
		"Transportation",
		"Childcare",
		"Entertainment",
		"Government",
		"Internal Transfer",
		FallbackCategory,
	}
}

// DefaultRules returns the built-in authored rule set. Patterns are
// case-insensitive substrings over merchant and description text.
func DefaultRules() []Rule {
	patterns := []struct {
		category string
		patterns []string
	}{
		{"Groceries", []string{"Albert Heijn", "Picnic", "Crisp", "WILLYS", "Flink"}},
		{"Utilities", []string{"ESSENT", "ANWB Energie", "Waternet", "KPN"}},
		{"Transportation", []string{"Uber", "TLS BV inz. OV-Chipkaart"}},
		{"Childcare", []string{"KINDERGARDEN", "Babysitting"}},
		{"Entertainment", []string{"SWESHOP", "Espresso House", "Babbel", "hunkemoller"}},
		{"Government", []string{"BELASTINGDIENST", "Gemeente Amsterdam"}},
		{"Internal Transfer", []string{"Oranje Spaarrekening", "Savings Transfer"}},
	}

	var rules []Rule
	for _, group := range patterns {
		for _, pattern := range group.patterns {
			rules = append(rules, Rule{
				Pattern:  pattern,
				Category: group.category,
				Priority: 1,
				Source:   RuleSourceAuthored,
			})
		}
	}
	return rules
}
