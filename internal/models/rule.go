package models

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Rule provenance values
const (
	RuleSourceAuthored = "authored"
	RuleSourceLearned  = "learned"
)

const MaxRulePriority = 255

var (
	ErrEmptyPattern       = errors.New("rule pattern must not be empty")
	ErrEmptyRuleCategory  = errors.New("rule category must not be empty")
	ErrInvalidPriority    = errors.New("rule priority must be between 0 and 255")
	ErrInvalidRuleSource  = errors.New("invalid rule source")
	ErrInvalidAmountRange = errors.New("amount_min must not exceed amount_max")
)

// Rule is a matching predicate over a transaction's merchant/description text
// and amount, with a target category and priority. Patterns are either
// case-insensitive substrings or regular expressions. Seq is a monotonic
// insertion sequence used only as a deterministic tie-break.
type Rule struct {
	ID        uuid.UUID        `gorm:"type:uuid;primary_key" json:"id"`
	Pattern   string           `gorm:"type:varchar(255);not null" json:"pattern"`
	IsRegex   bool             `gorm:"not null;default:false" json:"is_regex"`
	Category  string           `gorm:"type:varchar(100);not null;index" json:"category"`
	Priority  int              `gorm:"not null;default:1" json:"priority"`
	AmountMin *decimal.Decimal `gorm:"type:decimal(15,2)" json:"amount_min,omitempty"`
	AmountMax *decimal.Decimal `gorm:"type:decimal(15,2)" json:"amount_max,omitempty"`
	Source    string           `gorm:"type:varchar(20);not null;default:'authored'" json:"source"`
	Seq       int64            `gorm:"not null;index" json:"-"`
	CreatedAt time.Time        `gorm:"not null" json:"created_at"`

	re *regexp.Regexp `gorm:"-"`
}

// BeforeCreate hook for Rule
func (r *Rule) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.Source == "" {
		r.Source = RuleSourceAuthored
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	return r.Validate()
}

// Validate validates the rule fields without compiling the pattern
func (r *Rule) Validate() error {
	if strings.TrimSpace(r.Pattern) == "" {
		return ErrEmptyPattern
	}
	if strings.TrimSpace(r.Category) == "" {
		return ErrEmptyRuleCategory
	}
	if r.Priority < 0 || r.Priority > MaxRulePriority {
		return ErrInvalidPriority
	}
	if !IsValidRuleSource(r.Source) {
		return ErrInvalidRuleSource
	}
	if r.AmountMin != nil && r.AmountMax != nil && r.AmountMin.GreaterThan(*r.AmountMax) {
		return ErrInvalidAmountRange
	}
	return nil
}

// Compile validates the rule and, for regex rules, compiles the pattern.
// A malformed regex is reported here so it never reaches evaluation time.
func (r *Rule) Compile() error {
	if err := r.Validate(); err != nil {
		return err
	}

	if r.IsRegex {
		re, err := regexp.Compile("(?i)" + r.Pattern)
		if err != nil {
			return fmt.Errorf("invalid regex pattern %q: %w", r.Pattern, err)
		}
		r.re = re
	}

	return nil
}

// Matches reports whether the rule applies to the given transaction text and
// amount. Regex rules must be compiled first; an uncompiled regex rule never
// matches.
func (r *Rule) Matches(merchant, description string, amount decimal.Decimal) bool {
	if !r.matchesText(merchant) && !r.matchesText(description) {
		return false
	}
	return r.matchesAmount(amount)
}

func (r *Rule) matchesText(text string) bool {
	if text == "" {
		return false
	}
	if r.IsRegex {
		return r.re != nil && r.re.MatchString(text)
	}
	return strings.Contains(strings.ToLower(text), strings.ToLower(r.Pattern))
}

func (r *Rule) matchesAmount(amount decimal.Decimal) bool {
	if r.AmountMin != nil && amount.LessThan(*r.AmountMin) {
		return false
	}
	if r.AmountMax != nil && amount.GreaterThan(*r.AmountMax) {
		return false
	}
	return true
}

// HasAmountConstraint reports whether the rule restricts the amount range.
// Constrained rules outrank unconstrained ones at equal priority.
func (r *Rule) HasAmountConstraint() bool {
	return r.AmountMin != nil || r.AmountMax != nil
}

// IsLearned returns true for rules synthesized from manual overrides
func (r *Rule) IsLearned() bool {
	return r.Source == RuleSourceLearned
}

// TableName returns the table name for Rule
func (r *Rule) TableName() string {
	return "category_rules"
}

// IsValidRuleSource checks if the rule source is valid
func IsValidRuleSource(source string) bool {
	switch source {
	case RuleSourceAuthored, RuleSourceLearned:
		return true
	default:
		return false
	}
}
