package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"spendtrail/internal/aggregation"
	"spendtrail/internal/learning"
	"spendtrail/internal/models"
	"spendtrail/internal/pipeline"
	"spendtrail/internal/repositories"
	"spendtrail/internal/rules"
)

// ledgerService implements LedgerServiceInterface. It owns the in-memory
// rule engine and totals cache and keeps them consistent with the database:
// every write goes to the repository first, then to the caches.
type ledgerService struct {
	txns       repositories.TransactionRepositoryInterface
	rules      repositories.RuleRepositoryInterface
	categories repositories.CategoryRepositoryInterface
	overrides  repositories.OverrideRepositoryInterface

	engine     *rules.Engine
	pipeline   *pipeline.Pipeline
	aggregator *aggregation.Aggregator
	adapter    *learning.Adapter
	worker     *pipeline.Worker
	metrics    MetricsRecorderInterface
}

// NewLedgerService creates the ledger service and wires the import worker
func NewLedgerService(
	txnRepo repositories.TransactionRepositoryInterface,
	ruleRepo repositories.RuleRepositoryInterface,
	categoryRepo repositories.CategoryRepositoryInterface,
	overrideRepo repositories.OverrideRepositoryInterface,
	engine *rules.Engine,
	aggregator *aggregation.Aggregator,
	format pipeline.Format,
	metrics MetricsRecorderInterface,
) (LedgerServiceInterface, error) {
	s := &ledgerService{
		txns:       txnRepo,
		rules:      ruleRepo,
		categories: categoryRepo,
		overrides:  overrideRepo,
		engine:     engine,
		pipeline:   pipeline.NewPipeline(engine),
		aggregator: aggregator,
		adapter:    learning.NewAdapter(engine),
		metrics:    metrics,
	}
	s.worker = pipeline.NewWorker(format, s.importSink)

	if err := s.loadState(); err != nil {
		return nil, err
	}
	return s, nil
}

// loadState hydrates the rule engine and totals cache from the database
func (s *ledgerService) loadState() error {
	ruleSet, err := s.rules.GetAll()
	if err != nil {
		return fmt.Errorf("failed to load rules: %w", err)
	}
	if err := s.engine.Load(ruleSet); err != nil {
		return fmt.Errorf("failed to compile rules: %w", err)
	}

	return s.RecomputeTotals()
}

// importSink receives each completed import batch from the worker
func (s *ledgerService) importSink(ctx context.Context, txns []*models.Transaction) error {
	started := time.Now()

	for _, txn := range txns {
		if txn.ID == uuid.Nil {
			txn.ID = uuid.New()
		}
	}

	deltas := s.pipeline.Categorize(txns)

	if err := s.txns.CreateBatch(txns); err != nil {
		return err
	}
	for _, txn := range txns {
		if err := s.categories.EnsureExists(txn.Category); err != nil {
			return err
		}
	}

	s.aggregator.ApplyDeltas(deltas)

	s.metrics.IncrementCounter("import.batch.completed", nil)
	s.metrics.RecordGauge("import.batch.size", float64(len(txns)), nil)
	s.metrics.RecordProcessingTime("import.batch", time.Since(started))
	return nil
}

func (s *ledgerService) Import(ctx context.Context, source io.Reader) (uuid.UUID, <-chan pipeline.Progress, error) {
	return s.worker.Start(ctx, source)
}

func (s *ledgerService) ImportFile(ctx context.Context, path string) (uuid.UUID, <-chan pipeline.Progress, error) {
	file, err := os.Open(path)
	if err != nil {
		return uuid.Nil, nil, fmt.Errorf("%w: %v", pipeline.ErrSourceUnreadable, err)
	}

	batchID, progress, err := s.worker.Start(ctx, file)
	if err != nil {
		file.Close()
		return uuid.Nil, nil, err
	}

	// Close the file once the batch finishes.
	done := make(chan pipeline.Progress, 16)
	go func() {
		defer close(done)
		defer file.Close()
		for update := range progress {
			select {
			case done <- update:
			default:
			}
		}
	}()

	return batchID, done, nil
}

func (s *ledgerService) CurrentImport() (*pipeline.Batch, error) {
	return s.worker.Current()
}

func (s *ledgerService) CancelImport() bool {
	return s.worker.Cancel()
}

func (s *ledgerService) ListTransactions(filters models.TransactionFilters) ([]models.Transaction, int64, error) {
	return s.txns.GetWithFilters(filters)
}

func (s *ledgerService) GetTransaction(id uuid.UUID) (*models.Transaction, error) {
	return s.txns.GetByID(id)
}

// ReassignCategory applies a manual correction: the transaction moves to the
// chosen category, an override record is written, a rule is learned so future
// imports agree, and other transactions of the same merchant are re-run under
// the updated rule set.
func (s *ledgerService) ReassignCategory(id uuid.UUID, category string) (*models.Transaction, error) {
	txn, err := s.txns.GetByID(id)
	if err != nil {
		return nil, err
	}

	previous := txn.DisplayCategory()
	if err := s.categories.EnsureExists(category); err != nil {
		return nil, err
	}

	if err := s.overrides.Create(&models.ManualOverride{
		TransactionID:    txn.ID,
		Merchant:         txn.Merchant,
		PreviousCategory: previous,
		NewCategory:      category,
	}); err != nil {
		return nil, err
	}

	learned, err := s.adapter.Observe(txn, category)
	if err != nil {
		return nil, err
	}
	if learned != nil {
		if err := s.rules.Save(learned); err != nil {
			return nil, err
		}
	}

	if err := s.txns.UpdateCategory(txn.ID, category); err != nil {
		return nil, err
	}
	txn.Category = category
	s.aggregator.ApplyDelta(aggregation.Delta{
		TransactionID: txn.ID,
		OldCategory:   previous,
		NewCategory:   category,
		Amount:        txn.Amount,
	})

	if learned != nil {
		if err := s.recategorizeMatching(learned.Pattern); err != nil {
			return nil, err
		}
	}

	s.metrics.IncrementCounter("category.override", map[string]string{"category": category})
	slog.Info("transaction reassigned",
		"transaction_id", txn.ID,
		"from", previous,
		"to", category,
		"learned", learned != nil)

	return txn, nil
}

// recategorizeMatching re-runs the engine over transactions whose merchant or
// description text matches a learned pattern, persisting and aggregating any
// movement. The pattern is learned from the description when the merchant
// column is empty, so the lookup has to search both.
func (s *ledgerService) recategorizeMatching(pattern string) error {
	matching, _, err := s.txns.GetWithFilters(models.TransactionFilters{Search: pattern})
	if err != nil {
		return err
	}

	refs := make([]*models.Transaction, len(matching))
	for i := range matching {
		refs[i] = &matching[i]
	}

	deltas := s.pipeline.Recategorize(refs)
	if len(deltas) == 0 {
		return nil
	}

	changed := make([]*models.Transaction, 0, len(deltas))
	byID := make(map[uuid.UUID]*models.Transaction, len(refs))
	for _, ref := range refs {
		byID[ref.ID] = ref
	}
	for _, delta := range deltas {
		if ref, ok := byID[delta.TransactionID]; ok {
			changed = append(changed, ref)
		}
		if err := s.categories.EnsureExists(delta.NewCategory); err != nil {
			return err
		}
	}

	if err := s.txns.UpdateCategories(changed); err != nil {
		return err
	}
	s.aggregator.ApplyDeltas(deltas)
	return nil
}

func (s *ledgerService) UpdateNote(id uuid.UUID, note *string) (*models.Transaction, error) {
	if err := s.txns.UpdateNote(id, note); err != nil {
		return nil, err
	}
	return s.txns.GetByID(id)
}

func (s *ledgerService) GetTotals() map[string]models.CategoryTotals {
	return s.aggregator.Snapshot()
}

func (s *ledgerService) GetFilteredTotals(filters models.TransactionFilters) (map[string]models.CategoryTotals, error) {
	txns, _, err := s.txns.GetWithFilters(filters)
	if err != nil {
		return nil, err
	}
	return aggregation.Summarize(txns), nil
}

func (s *ledgerService) RecomputeTotals() error {
	txns, err := s.txns.GetAll()
	if err != nil {
		return fmt.Errorf("failed to load transactions: %w", err)
	}
	s.aggregator.FullRecompute(txns)
	return nil
}

func (s *ledgerService) ListRules() []models.Rule {
	return s.engine.Rules()
}

func (s *ledgerService) AddRule(rule models.Rule) (*models.Rule, error) {
	if rule.ID == uuid.Nil {
		rule.ID = uuid.New()
	}
	if rule.Source == "" {
		rule.Source = models.RuleSourceAuthored
	}

	installed, err := s.engine.Add(rule)
	if err != nil {
		return nil, err
	}

	if err := s.categories.EnsureExists(installed.Category); err != nil {
		return nil, err
	}
	if err := s.rules.Create(installed); err != nil {
		return nil, err
	}

	if err := s.recategorizeAll(); err != nil {
		return nil, err
	}

	s.metrics.IncrementCounter("rules.added", map[string]string{"source": installed.Source})
	return installed, nil
}

// DeleteRule removes a rule, reloads the engine from the persisted set and
// re-runs categorization so transactions the rule was holding fall back to
// whatever now wins.
func (s *ledgerService) DeleteRule(id uuid.UUID) error {
	if err := s.rules.Delete(id); err != nil {
		return err
	}

	ruleSet, err := s.rules.GetAll()
	if err != nil {
		return err
	}
	if err := s.engine.Load(ruleSet); err != nil {
		return err
	}

	if err := s.recategorizeAll(); err != nil {
		return err
	}

	s.metrics.IncrementCounter("rules.deleted", nil)
	slog.Info("rule deleted", "rule_id", id)
	return nil
}

// recategorizeAll re-runs the engine over every transaction after a rule set
// change
func (s *ledgerService) recategorizeAll() error {
	txns, err := s.txns.GetAll()
	if err != nil {
		return err
	}

	refs := make([]*models.Transaction, len(txns))
	for i := range txns {
		refs[i] = &txns[i]
	}

	deltas := s.pipeline.Recategorize(refs)
	if len(deltas) == 0 {
		return nil
	}

	changed := make([]*models.Transaction, 0, len(deltas))
	byID := make(map[uuid.UUID]*models.Transaction, len(refs))
	for _, ref := range refs {
		byID[ref.ID] = ref
	}
	for _, delta := range deltas {
		if ref, ok := byID[delta.TransactionID]; ok {
			changed = append(changed, ref)
		}
		if err := s.categories.EnsureExists(delta.NewCategory); err != nil {
			return err
		}
	}

	if err := s.txns.UpdateCategories(changed); err != nil {
		return err
	}
	s.aggregator.ApplyDeltas(deltas)
	return nil
}

func (s *ledgerService) ListCategories() ([]models.Category, error) {
	return s.categories.GetAll()
}

func (s *ledgerService) RenameCategory(oldName, newName string) (int64, error) {
	moved, err := s.categories.Rename(oldName, newName)
	if err != nil {
		return 0, err
	}

	// Rules changed on disk; reload the engine so it agrees.
	ruleSet, err := s.rules.GetAll()
	if err != nil {
		return 0, err
	}
	if err := s.engine.Load(ruleSet); err != nil {
		return 0, err
	}

	s.aggregator.RenameCategory(oldName, newName)

	slog.Info("category renamed", "from", oldName, "to", newName, "transactions_moved", moved)
	return moved, nil
}
