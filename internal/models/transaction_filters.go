package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionFilters narrows transaction queries. Zero values mean "no
// filter" for each field.
type TransactionFilters struct {
	StartDate *time.Time
	EndDate   *time.Time
	Category  string
	Merchant  string
	MinAmount *decimal.Decimal
	MaxAmount *decimal.Decimal
	Search    string
	Offset    int
	Limit     int
}
