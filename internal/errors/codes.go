package errors

// ErrorCode represents a standardized error code used throughout the API
type ErrorCode string

// Import error codes (IMPORT_*)
const (
	ImportSourceUnreadable ErrorCode = "IMPORT_001"
	ImportAlreadyRunning   ErrorCode = "IMPORT_002"
	ImportNotFound         ErrorCode = "IMPORT_003"
	ImportCancelled        ErrorCode = "IMPORT_004"
	ImportEmptyFile        ErrorCode = "IMPORT_005"
)

// Rule error codes (RULE_*)
const (
	RuleInvalidPattern     ErrorCode = "RULE_001"
	RuleInvalidPriority    ErrorCode = "RULE_002"
	RuleInvalidAmountRange ErrorCode = "RULE_003"
	RuleNotFound           ErrorCode = "RULE_004"
)

// Category error codes (CATEGORY_*)
const (
	CategoryNotFound      ErrorCode = "CATEGORY_001"
	CategoryAlreadyExists ErrorCode = "CATEGORY_002"
	CategoryInvalidName   ErrorCode = "CATEGORY_003"
	CategoryRenameFailed  ErrorCode = "CATEGORY_004"
)

// Transaction error codes (TRANSACTION_*)
const (
	TransactionNotFound      ErrorCode = "TRANSACTION_001"
	TransactionInvalidID     ErrorCode = "TRANSACTION_002"
	TransactionInvalidFilter ErrorCode = "TRANSACTION_003"
)

// Validation error codes (VALIDATION_*)
const (
	ValidationGeneral       ErrorCode = "VALIDATION_001"
	ValidationRequiredField ErrorCode = "VALIDATION_002"
	ValidationInvalidFormat ErrorCode = "VALIDATION_003"
	ValidationOutOfRange    ErrorCode = "VALIDATION_004"
	ValidationInvalidDate   ErrorCode = "VALIDATION_005"
	ValidationInvalidAmount ErrorCode = "VALIDATION_006"
)

// System error codes (SYSTEM_*)
const (
	SystemInternalError      ErrorCode = "SYSTEM_001"
	SystemDatabaseError      ErrorCode = "SYSTEM_002"
	SystemServiceUnavailable ErrorCode = "SYSTEM_003"
	SystemConfigurationError ErrorCode = "SYSTEM_004"
	SystemRateLimitExceeded  ErrorCode = "SYSTEM_005"
)

// errorMessages maps error codes to their default human-readable messages
var errorMessages = map[ErrorCode]string{
	// Import errors
	ImportSourceUnreadable: "Import source could not be read",
	ImportAlreadyRunning:   "An import is already in progress",
	ImportNotFound:         "No import batch found",
	ImportCancelled:        "Import was cancelled",
	ImportEmptyFile:        "Import source contains no records",

	// Rule errors
	RuleInvalidPattern:     "Rule pattern is empty or not a valid regular expression",
	RuleInvalidPriority:    "Rule priority is out of the allowed range",
	RuleInvalidAmountRange: "Rule amount_min must not exceed amount_max",
	RuleNotFound:           "Rule not found",

	// Category errors
	CategoryNotFound:      "Category not found",
	CategoryAlreadyExists: "A category with this name already exists",
	CategoryInvalidName:   "Category name must not be empty",
	CategoryRenameFailed:  "Category rename could not be applied",

	// Transaction errors
	TransactionNotFound:      "Transaction not found",
	TransactionInvalidID:     "Invalid transaction ID format",
	TransactionInvalidFilter: "Invalid transaction filter parameters",

	// Validation errors
	ValidationGeneral:       "Validation failed",
	ValidationRequiredField: "Required field is missing",
	ValidationInvalidFormat: "Invalid field format",
	ValidationOutOfRange:    "Field value is out of allowed range",
	ValidationInvalidDate:   "Invalid date format or range",
	ValidationInvalidAmount: "Invalid amount format",

	// System errors
	SystemInternalError:      "An unexpected error occurred. Please contact support with trace ID",
	SystemDatabaseError:      "Database connection error",
	SystemServiceUnavailable: "Service temporarily unavailable",
	SystemConfigurationError: "System configuration error",
	SystemRateLimitExceeded:  "Rate limit exceeded. Please try again later",
}

// GetErrorMessage returns the default message for a given error code
// If the error code is not found, it returns a generic error message
func GetErrorMessage(code ErrorCode) string {
	if msg, ok := errorMessages[code]; ok {
		return msg
	}
	return "An error occurred"
}

// IsValidErrorCode checks if the provided error code is a valid registered code
func IsValidErrorCode(code ErrorCode) bool {
	_, ok := errorMessages[code]
	return ok
}
