package pipeline

import (
	"log/slog"

	"spendtrail/internal/aggregation"
	"spendtrail/internal/models"
	"spendtrail/internal/rules"
)

// Pipeline runs the rule engine over transaction batches and emits the
// category deltas the aggregator needs to stay current. It mutates the
// transactions' Category field in place; persistence is the caller's job.
type Pipeline struct {
	engine *rules.Engine
}

// NewPipeline creates a categorization pipeline over the given rule engine
func NewPipeline(engine *rules.Engine) *Pipeline {
	return &Pipeline{engine: engine}
}

// Categorize assigns categories to freshly imported transactions that are
// not yet counted in any totals. Every transaction yields a delta with an
// empty old category.
func (p *Pipeline) Categorize(txns []*models.Transaction) []aggregation.Delta {
	deltas := make([]aggregation.Delta, 0, len(txns))
	for _, txn := range txns {
		txn.Category = p.engine.Resolve(txn)
		deltas = append(deltas, aggregation.Delta{
			TransactionID: txn.ID,
			NewCategory:   txn.Category,
			Amount:        txn.Amount,
		})
	}

	slog.Info("batch categorized", "transactions", len(txns))
	return deltas
}

// Recategorize re-runs the rule engine over transactions that are already
// counted in the totals. Unchanged transactions emit no delta, so re-running
// with an unchanged rule set is a no-op.
func (p *Pipeline) Recategorize(txns []*models.Transaction) []aggregation.Delta {
	var deltas []aggregation.Delta
	for _, txn := range txns {
		old := txn.DisplayCategory()
		resolved := p.engine.Resolve(txn)
		if resolved == old {
			continue
		}
		txn.Category = resolved
		deltas = append(deltas, aggregation.Delta{
			TransactionID: txn.ID,
			OldCategory:   old,
			NewCategory:   resolved,
			Amount:        txn.Amount,
		})
	}

	if len(deltas) > 0 {
		slog.Info("transactions recategorized", "scanned", len(txns), "changed", len(deltas))
	}
	return deltas
}
