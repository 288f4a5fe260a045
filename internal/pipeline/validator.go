package pipeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"spendtrail/internal/models"
)

// Rejection records why one import record was skipped. The batch continues
// past rejections; only an unreadable source aborts an import.
type Rejection struct {
	RecordIndex int    `json:"record_index"`
	Field       string `json:"field"`
	Reason      string `json:"reason"`
}

func (r Rejection) String() string {
	return fmt.Sprintf("record %d: %s: %s", r.RecordIndex, r.Field, r.Reason)
}

// Validator turns raw import records into transactions, or rejections when a
// field cannot be interpreted under the configured format.
type Validator struct {
	format Format
}

// NewValidator creates a validator for the given import format
func NewValidator(format Format) *Validator {
	return &Validator{format: format}
}

// Validate converts one raw record. Exactly one of the return values is
// non-nil. Amounts come out signed: credits positive, debits negative.
func (v *Validator) Validate(record *RawRecord) (*models.Transaction, *Rejection) {
	date, rejection := v.parseDate(record)
	if rejection != nil {
		return nil, rejection
	}

	amount, rejection := v.parseAmount(record)
	if rejection != nil {
		return nil, rejection
	}

	txn := &models.Transaction{
		Date:        date,
		Amount:      amount,
		Merchant:    record.Merchant,
		Description: record.Description,
		RecordIndex: record.Index,
	}
	if err := txn.Validate(); err != nil {
		return nil, &Rejection{RecordIndex: record.Index, Field: "merchant", Reason: err.Error()}
	}

	return txn, nil
}

func (v *Validator) parseDate(record *RawRecord) (time.Time, *Rejection) {
	raw := strings.TrimSpace(record.Date)
	if raw == "" {
		return time.Time{}, &Rejection{RecordIndex: record.Index, Field: "date", Reason: "date is required"}
	}

	for _, layout := range v.format.DateLayouts {
		if date, err := time.Parse(layout, raw); err == nil {
			return date, nil
		}
	}

	return time.Time{}, &Rejection{
		RecordIndex: record.Index,
		Field:       "date",
		Reason:      fmt.Sprintf("unrecognized date %q", raw),
	}
}

func (v *Validator) parseAmount(record *RawRecord) (decimal.Decimal, *Rejection) {
	raw := strings.TrimSpace(record.Amount)
	if raw == "" {
		return decimal.Zero, &Rejection{RecordIndex: record.Index, Field: "amount", Reason: "amount is required"}
	}

	normalized := raw
	if v.format.DecimalComma {
		// Exports with comma decimals use the dot as a thousands separator.
		normalized = strings.ReplaceAll(normalized, ".", "")
		normalized = strings.ReplaceAll(normalized, ",", ".")
	}
	normalized = strings.ReplaceAll(normalized, " ", "")

	amount, err := decimal.NewFromString(normalized)
	if err != nil {
		return decimal.Zero, &Rejection{
			RecordIndex: record.Index,
			Field:       "amount",
			Reason:      fmt.Sprintf("unparseable amount %q", raw),
		}
	}

	if v.isDebit(record.Direction) && amount.Sign() > 0 {
		amount = amount.Neg()
	}

	return amount, nil
}

func (v *Validator) isDebit(direction string) bool {
	direction = strings.ToLower(strings.TrimSpace(direction))
	for _, marker := range v.format.DebitMarkers {
		if direction == marker {
			return true
		}
	}
	return false
}
