package learning

import (
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"spendtrail/internal/models"
	"spendtrail/internal/rules"
)

// Adapter turns manual category corrections into learned rules so the next
// import categorizes the same merchant the user's way. It only ever adds or
// updates learned rules; authored rules are never modified or removed.
type Adapter struct {
	engine *rules.Engine
}

// NewAdapter creates a learning adapter bound to the given rule engine
func NewAdapter(engine *rules.Engine) *Adapter {
	return &Adapter{engine: engine}
}

// Observe records a manual override. When the rule set already resolves the
// transaction to the chosen category, nothing is learned and nil is returned.
// Otherwise a substring rule on the transaction's merchant text is
// synthesized, one priority above the highest rule currently matching the
// transaction, so it outranks whatever produced the wrong answer. A later
// override for the same merchant supersedes the earlier learned rule.
func (a *Adapter) Observe(txn *models.Transaction, newCategory string) (*models.Rule, error) {
	if txn == nil {
		return nil, rules.ErrNilTransaction
	}
	if strings.TrimSpace(newCategory) == "" {
		return nil, models.ErrEmptyRuleCategory
	}

	if a.engine.Resolve(txn) == newCategory {
		return nil, nil
	}

	pattern := strings.TrimSpace(txn.Merchant)
	if pattern == "" {
		pattern = strings.TrimSpace(txn.Description)
	}
	if pattern == "" {
		return nil, models.ErrEmptyPattern
	}

	priority := 1
	if highest, ok := a.engine.HighestMatchingPriority(txn); ok {
		priority = highest + 1
	}
	if priority > models.MaxRulePriority {
		priority = models.MaxRulePriority
	}

	if updated := a.engine.ReplaceLearned(pattern, newCategory, priority); updated != nil {
		return updated, nil
	}

	learned, err := a.engine.Add(models.Rule{
		ID:       uuid.New(),
		Pattern:  pattern,
		Category: newCategory,
		Priority: priority,
		Source:   models.RuleSourceLearned,
	})
	if err != nil {
		return nil, err
	}

	slog.Info("learned rule from override",
		"pattern", learned.Pattern,
		"category", learned.Category,
		"priority", learned.Priority)

	return learned, nil
}
