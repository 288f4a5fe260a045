package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ManualOverride records a user reassigning a transaction's category. The
// records feed the learning adapter and are retained for audit; they are
// never mutated.
type ManualOverride struct {
	ID               uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	TransactionID    uuid.UUID `gorm:"type:uuid;not null;index" json:"transaction_id"`
	Merchant         string    `gorm:"type:varchar(255);not null" json:"merchant"`
	PreviousCategory string    `gorm:"type:varchar(100)" json:"previous_category"`
	NewCategory      string    `gorm:"type:varchar(100);not null" json:"new_category"`
	CreatedAt        time.Time `gorm:"not null;index" json:"created_at"`
}

// BeforeCreate hook for ManualOverride
func (o *ManualOverride) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now()
	}
	return nil
}

// TableName returns the table name for ManualOverride
func (o *ManualOverride) TableName() string {
	return "manual_overrides"
}
