package validation

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"spendtrail/internal/models"
)

// Validator wraps the go-playground validator with custom rules and error formatting
type Validator struct {
	validate *validator.Validate
}

// GetValidate returns the underlying validator.Validate instance for use with Echo
func (v *Validator) GetValidate() *validator.Validate {
	return v.validate
}

// singleton instance of the validator
var instance *Validator

// GetValidator returns the singleton validator instance
func GetValidator() *Validator {
	if instance == nil {
		instance = NewValidator()
	}
	return instance
}

// NewValidator creates a new validator instance with custom rules and configuration
func NewValidator() *Validator {
	v := validator.New()

	_ = v.RegisterValidation("category_name", validateCategoryName)
	_ = v.RegisterValidation("rule_priority", validateRulePriority)
	_ = v.RegisterValidation("decimal_amount", validateDecimalAmount)
	_ = v.RegisterValidation("rule_source", validateRuleSource)

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Validator{validate: v}
}

// Custom validation functions

// validateCategoryName rejects blank names and names longer than the column
func validateCategoryName(fl validator.FieldLevel) bool {
	name := strings.TrimSpace(fl.Field().String())
	return name != "" && len(name) <= 100
}

// validateRulePriority keeps priorities inside the supported range
func validateRulePriority(fl validator.FieldLevel) bool {
	priority := fl.Field().Int()
	return priority >= 0 && priority <= models.MaxRulePriority
}

// validateDecimalAmount validates that a string field parses as a decimal
func validateDecimalAmount(fl validator.FieldLevel) bool {
	raw := fl.Field().String()
	if raw == "" {
		return true
	}
	_, err := decimal.NewFromString(raw)
	return err == nil
}

// validateRuleSource restricts the provenance to known values
func validateRuleSource(fl validator.FieldLevel) bool {
	source := fl.Field().String()
	return source == "" || models.IsValidRuleSource(source)
}
