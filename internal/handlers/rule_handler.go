package handlers

import (
	stderrors "errors"
	"net/http"
	"regexp/syntax"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"spendtrail/internal/dto"
	"spendtrail/internal/errors"
	"spendtrail/internal/models"
	"spendtrail/internal/repositories"
	"spendtrail/internal/services"
)

// RuleHandler handles categorization rule HTTP requests
type RuleHandler struct {
	ledgerService services.LedgerServiceInterface
}

// NewRuleHandler creates a new rule handler
func NewRuleHandler(ledgerService services.LedgerServiceInterface) *RuleHandler {
	return &RuleHandler{ledgerService: ledgerService}
}

// ListRules returns the installed rule set in precedence order
// @Summary List categorization rules
// @Description Retrieve all installed rules, authored and learned, in precedence order
// @Tags Rules
// @Produce json
// @Success 200 {object} dto.ListRulesResponse "Installed rules"
// @Router /rules [get]
func (h *RuleHandler) ListRules(c echo.Context) error {
	ruleSet := h.ledgerService.ListRules()

	response := dto.ListRulesResponse{
		Rules: make([]dto.RuleResponse, 0, len(ruleSet)),
		Count: len(ruleSet),
	}
	for i := range ruleSet {
		response.Rules = append(response.Rules, convertRule(&ruleSet[i]))
	}

	return c.JSON(http.StatusOK, response)
}

// CreateRule validates and installs an authored rule, then recategorizes
// existing transactions under the updated rule set
// @Summary Create a categorization rule
// @Description Author a new rule. Existing transactions are recategorized under the updated rule set.
// @Tags Rules
// @Accept json
// @Produce json
// @Param request body dto.CreateRuleRequest true "Rule definition"
// @Success 201 {object} dto.RuleResponse "Installed rule"
// @Failure 400 {object} errors.ErrorResponse "RULE_001 - Invalid pattern, RULE_002 - Invalid priority or RULE_003 - Invalid amount range"
// @Failure 500 {object} errors.ErrorResponse "SYSTEM_001 - Internal server error"
// @Router /rules [post]
func (h *RuleHandler) CreateRule(c echo.Context) error {
	var req dto.CreateRuleRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}
	if err := c.Validate(req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails(err.Error()))
	}

	rule := models.Rule{
		Pattern:  req.Pattern,
		IsRegex:  req.IsRegex,
		Category: req.Category,
		Priority: req.Priority,
		Source:   models.RuleSourceAuthored,
	}

	if req.AmountMin != nil {
		amountMin, err := decimal.NewFromString(*req.AmountMin)
		if err != nil {
			return SendError(c, errors.ValidationInvalidAmount, errors.WithDetails("Invalid amount_min"))
		}
		rule.AmountMin = &amountMin
	}
	if req.AmountMax != nil {
		amountMax, err := decimal.NewFromString(*req.AmountMax)
		if err != nil {
			return SendError(c, errors.ValidationInvalidAmount, errors.WithDetails("Invalid amount_max"))
		}
		rule.AmountMax = &amountMax
	}

	installed, err := h.ledgerService.AddRule(rule)
	if err != nil {
		return sendRuleError(c, err)
	}

	return c.JSON(http.StatusCreated, convertRule(installed))
}

// DeleteRule removes a rule and recategorizes affected transactions
// @Summary Delete a categorization rule
// @Description Remove a rule. Transactions it was categorizing are re-run under the remaining rule set.
// @Tags Rules
// @Produce json
// @Param id path string true "Rule ID"
// @Success 204 "Rule deleted"
// @Failure 400 {object} errors.ErrorResponse "VALIDATION_003 - Invalid rule ID format"
// @Failure 404 {object} errors.ErrorResponse "RULE_004 - Rule not found"
// @Failure 500 {object} errors.ErrorResponse "SYSTEM_001 - Internal server error"
// @Router /rules/{id} [delete]
func (h *RuleHandler) DeleteRule(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return SendError(c, errors.ValidationInvalidFormat, errors.WithDetails("Invalid rule ID format"))
	}

	if err := h.ledgerService.DeleteRule(id); err != nil {
		if stderrors.Is(err, repositories.ErrRuleNotFound) {
			return SendError(c, errors.RuleNotFound)
		}
		return SendSystemError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

// sendRuleError maps rule validation errors to API error responses
func sendRuleError(c echo.Context, err error) error {
	switch {
	case stderrors.Is(err, models.ErrInvalidPriority):
		return SendError(c, errors.RuleInvalidPriority)
	case stderrors.Is(err, models.ErrInvalidAmountRange):
		return SendError(c, errors.RuleInvalidAmountRange)
	case stderrors.Is(err, models.ErrEmptyPattern),
		stderrors.Is(err, models.ErrEmptyRuleCategory):
		return SendError(c, errors.RuleInvalidPattern, errors.WithDetails(err.Error()))
	default:
		// Regex compile failures wrap the regexp syntax error
		var syntaxErr *syntax.Error
		if stderrors.As(err, &syntaxErr) {
			return SendError(c, errors.RuleInvalidPattern, errors.WithDetails(err.Error()))
		}
		return SendSystemError(c, err)
	}
}

// convertRule converts a rule model to its API representation
func convertRule(rule *models.Rule) dto.RuleResponse {
	response := dto.RuleResponse{
		ID:        rule.ID,
		Pattern:   rule.Pattern,
		IsRegex:   rule.IsRegex,
		Category:  rule.Category,
		Priority:  rule.Priority,
		Source:    rule.Source,
		CreatedAt: rule.CreatedAt,
	}
	if rule.AmountMin != nil {
		amountMin := rule.AmountMin.String()
		response.AmountMin = &amountMin
	}
	if rule.AmountMax != nil {
		amountMax := rule.AmountMax.String()
		response.AmountMax = &amountMax
	}
	return response
}
