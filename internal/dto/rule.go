package dto

import (
	"time"

	"github.com/google/uuid"
)

// CreateRuleRequest is the request body for authoring a categorization rule.
// Amount bounds are decimal strings so precision survives JSON transport.
type CreateRuleRequest struct {
	Pattern   string  `json:"pattern" validate:"required,min=1,max=255"`
	IsRegex   bool    `json:"is_regex"`
	Category  string  `json:"category" validate:"required,category_name"`
	Priority  int     `json:"priority" validate:"rule_priority"`
	AmountMin *string `json:"amount_min" validate:"omitempty,decimal_amount"`
	AmountMax *string `json:"amount_max" validate:"omitempty,decimal_amount"`
}

// RuleResponse is the API representation of a categorization rule
type RuleResponse struct {
	ID        uuid.UUID `json:"id"`
	Pattern   string    `json:"pattern"`
	IsRegex   bool      `json:"is_regex"`
	Category  string    `json:"category"`
	Priority  int       `json:"priority"`
	AmountMin *string   `json:"amount_min,omitempty"`
	AmountMax *string   `json:"amount_max,omitempty"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"created_at"`
}

// ListRulesResponse is the response for listing rules in precedence order
type ListRulesResponse struct {
	Rules []RuleResponse `json:"rules"`
	Count int            `json:"count"`
}
