package rules

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"spendtrail/internal/models"
)

var (
	ErrNilTransaction = errors.New("transaction must not be nil")
)

// Engine evaluates the rule set against transactions and resolves the winning
// category. Evaluation is deterministic: the winner is the matching rule with
// the highest priority, amount-constrained rules beating unconstrained ones at
// equal priority, and the lowest insertion sequence breaking remaining ties.
//
// The engine is safe for concurrent use. Rules are compiled once when loaded
// or added; a malformed regex is rejected up front and never evaluated.
type Engine struct {
	mu      sync.RWMutex
	rules   []*models.Rule
	nextSeq int64
}

// NewEngine creates an empty rule engine
func NewEngine() *Engine {
	return &Engine{}
}

// Load replaces the engine's rule set. Every rule is validated and compiled
// before any of them is installed; on error the previous rule set is kept.
func (e *Engine) Load(ruleSet []models.Rule) error {
	compiled := make([]*models.Rule, 0, len(ruleSet))
	var seq int64
	for i := range ruleSet {
		rule := ruleSet[i]
		if err := rule.Compile(); err != nil {
			return fmt.Errorf("rule %d (%s): %w", i, rule.Pattern, err)
		}
		if rule.Seq == 0 {
			seq++
			rule.Seq = seq
		} else if rule.Seq > seq {
			seq = rule.Seq
		}
		compiled = append(compiled, &rule)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.rules = compiled
	e.nextSeq = seq

	slog.Info("rule set loaded", "rules", len(compiled))
	return nil
}

// Add validates, compiles and installs a single rule, assigning its insertion
// sequence. The stored copy is returned.
func (e *Engine) Add(rule models.Rule) (*models.Rule, error) {
	if err := rule.Compile(); err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.nextSeq++
	rule.Seq = e.nextSeq
	e.rules = append(e.rules, &rule)

	slog.Debug("rule added",
		"pattern", rule.Pattern,
		"category", rule.Category,
		"priority", rule.Priority,
		"source", rule.Source)

	return &rule, nil
}

// Resolve returns the category for a transaction, or the fallback when no
// rule matches. The result depends only on the transaction and the current
// rule set, never on evaluation order.
func (e *Engine) Resolve(txn *models.Transaction) string {
	if txn == nil {
		return models.FallbackCategory
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	winner := e.findWinner(txn)
	if winner == nil {
		return models.FallbackCategory
	}
	return winner.Category
}

// HighestMatchingPriority returns the highest priority among rules matching
// the transaction, and whether any rule matched at all.
func (e *Engine) HighestMatchingPriority(txn *models.Transaction) (int, bool) {
	if txn == nil {
		return 0, false
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	winner := e.findWinner(txn)
	if winner == nil {
		return 0, false
	}
	return winner.Priority, true
}

func (e *Engine) findWinner(txn *models.Transaction) *models.Rule {
	var winner *models.Rule
	for _, rule := range e.rules {
		if !rule.Matches(txn.Merchant, txn.Description, txn.Amount) {
			continue
		}
		if winner == nil || outranks(rule, winner) {
			winner = rule
		}
	}
	return winner
}

// outranks reports whether candidate beats current under the precedence
// order: priority, then amount specificity, then insertion sequence.
func outranks(candidate, current *models.Rule) bool {
	if candidate.Priority != current.Priority {
		return candidate.Priority > current.Priority
	}
	if candidate.HasAmountConstraint() != current.HasAmountConstraint() {
		return candidate.HasAmountConstraint()
	}
	return candidate.Seq < current.Seq
}

// ReplaceLearned updates the learned rule matching the given pattern in
// place, so a later correction for the same merchant supersedes an earlier
// one instead of piling up. Authored rules are never touched. Returns the
// updated rule, or nil when no learned rule carries that pattern.
func (e *Engine) ReplaceLearned(pattern, category string, priority int) *models.Rule {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, rule := range e.rules {
		if !rule.IsLearned() || !strings.EqualFold(rule.Pattern, pattern) {
			continue
		}
		rule.Category = category
		rule.Priority = priority
		slog.Debug("learned rule superseded",
			"pattern", rule.Pattern,
			"category", category,
			"priority", priority)
		updated := *rule
		return &updated
	}
	return nil
}

// Rules returns a snapshot of the current rule set ordered by precedence
func (e *Engine) Rules() []models.Rule {
	e.mu.RLock()
	defer e.mu.RUnlock()

	snapshot := make([]models.Rule, len(e.rules))
	for i, rule := range e.rules {
		snapshot[i] = *rule
	}
	sort.SliceStable(snapshot, func(i, j int) bool {
		return outranks(&snapshot[i], &snapshot[j])
	})
	return snapshot
}

// Len returns the number of installed rules
func (e *Engine) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.rules)
}
