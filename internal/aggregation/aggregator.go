package aggregation

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"spendtrail/internal/models"
)

// Delta describes a single transaction moving between categories. An empty
// OldCategory means the transaction was not counted before (fresh import);
// an empty NewCategory means it is being removed from the totals.
type Delta struct {
	TransactionID uuid.UUID       `json:"transaction_id"`
	OldCategory   string          `json:"old_category,omitempty"`
	NewCategory   string          `json:"new_category,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
}

// Aggregator maintains per-category credit/debit/count totals, kept current
// incrementally through deltas. Readers always see a consistent snapshot:
// applying a delta moves the amount out of the old category and into the new
// one under a single write lock.
type Aggregator struct {
	mu     sync.RWMutex
	totals map[string]models.CategoryTotals
}

// NewAggregator creates an aggregator with empty totals
func NewAggregator() *Aggregator {
	return &Aggregator{
		totals: make(map[string]models.CategoryTotals),
	}
}

// ApplyDelta applies one category movement to the cached totals. Applying
// the same set of deltas in any order yields the same totals.
func (a *Aggregator) ApplyDelta(delta Delta) {
	if delta.OldCategory == delta.NewCategory {
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if delta.OldCategory != "" {
		updated := a.totals[delta.OldCategory].Sub(delta.Amount)
		if updated.IsZero() {
			delete(a.totals, delta.OldCategory)
		} else {
			a.totals[delta.OldCategory] = updated
		}
	}
	if delta.NewCategory != "" {
		a.totals[delta.NewCategory] = a.totals[delta.NewCategory].Add(delta.Amount)
	}
}

// ApplyDeltas applies a batch of movements under one write lock
func (a *Aggregator) ApplyDeltas(deltas []Delta) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, delta := range deltas {
		if delta.OldCategory == delta.NewCategory {
			continue
		}
		if delta.OldCategory != "" {
			updated := a.totals[delta.OldCategory].Sub(delta.Amount)
			if updated.IsZero() {
				delete(a.totals, delta.OldCategory)
			} else {
				a.totals[delta.OldCategory] = updated
			}
		}
		if delta.NewCategory != "" {
			a.totals[delta.NewCategory] = a.totals[delta.NewCategory].Add(delta.Amount)
		}
	}
}

// FullRecompute rebuilds the totals from scratch out of the given
// transactions, replacing whatever the incremental path accumulated. Used on
// startup and as a consistency fallback.
func (a *Aggregator) FullRecompute(txns []models.Transaction) {
	rebuilt := Summarize(txns)

	a.mu.Lock()
	a.totals = rebuilt
	a.mu.Unlock()

	slog.Info("category totals recomputed", "transactions", len(txns), "categories", len(rebuilt))
}

// RenameCategory moves the totals entry for oldName under newName, merging
// when the target already has totals
func (a *Aggregator) RenameCategory(oldName, newName string) {
	if oldName == newName {
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	moved, ok := a.totals[oldName]
	if !ok {
		return
	}
	delete(a.totals, oldName)

	existing := a.totals[newName]
	existing.Credit = existing.Credit.Add(moved.Credit)
	existing.Debit = existing.Debit.Add(moved.Debit)
	existing.Count += moved.Count
	a.totals[newName] = existing
}

// Snapshot returns a copy of the current per-category totals
func (a *Aggregator) Snapshot() map[string]models.CategoryTotals {
	a.mu.RLock()
	defer a.mu.RUnlock()

	snapshot := make(map[string]models.CategoryTotals, len(a.totals))
	for category, totals := range a.totals {
		snapshot[category] = totals
	}
	return snapshot
}

// TotalsFor returns the totals for one category
func (a *Aggregator) TotalsFor(category string) (models.CategoryTotals, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	totals, ok := a.totals[category]
	return totals, ok
}

// Summarize computes per-category totals for an arbitrary transaction set by
// direct summation. Filtered views go through here so they never touch the
// incremental cache.
func Summarize(txns []models.Transaction) map[string]models.CategoryTotals {
	totals := make(map[string]models.CategoryTotals)
	for i := range txns {
		category := txns[i].DisplayCategory()
		totals[category] = totals[category].Add(txns[i].Amount)
	}
	return totals
}
