package models

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// FallbackCategory is assigned when no rule matches a transaction.
const FallbackCategory = "Uncategorized"

var (
	ErrMissingDate         = errors.New("transaction date is required")
	ErrMissingMerchantText = errors.New("merchant or description is required")
)

// Transaction represents a single imported bank transaction. Amounts are
// signed: credits are positive, debits negative. The category field is empty
// until a categorization pass has run.
type Transaction struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	Date        time.Time       `gorm:"not null;index" json:"date"`
	Amount      decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	Merchant    string          `gorm:"type:varchar(255);index" json:"merchant"`
	Description string          `gorm:"type:text" json:"description"`
	Category    string          `gorm:"type:varchar(100);index" json:"category,omitempty"`
	Note        *string         `gorm:"type:text" json:"note,omitempty"`
	RecordIndex int             `json:"record_index"`
	CreatedAt   time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"not null" json:"updated_at"`
}

// BeforeCreate hook for Transaction
func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}

	now := time.Now()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	if t.UpdatedAt.IsZero() {
		t.UpdatedAt = now
	}

	return t.Validate()
}

// BeforeUpdate hook for Transaction
func (t *Transaction) BeforeUpdate(tx *gorm.DB) error {
	t.UpdatedAt = time.Now()
	return nil
}

// Validate validates the transaction fields
func (t *Transaction) Validate() error {
	if t.Date.IsZero() {
		return ErrMissingDate
	}

	if strings.TrimSpace(t.Merchant) == "" && strings.TrimSpace(t.Description) == "" {
		return ErrMissingMerchantText
	}

	return nil
}

// IsCredit returns true for incoming amounts
func (t *Transaction) IsCredit() bool {
	return t.Amount.Sign() >= 0
}

// IsDebit returns true for outgoing amounts
func (t *Transaction) IsDebit() bool {
	return t.Amount.Sign() < 0
}

// IsCategorized returns true once a category has been assigned
func (t *Transaction) IsCategorized() bool {
	return t.Category != ""
}

// DisplayCategory returns the assigned category or the fallback name
func (t *Transaction) DisplayCategory() string {
	if t.Category == "" {
		return FallbackCategory
	}
	return t.Category
}

// TableName returns the table name for Transaction
func (t *Transaction) TableName() string {
	return "transactions"
}
