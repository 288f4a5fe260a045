package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"spendtrail/internal/models"
)

// Import batch states
const (
	BatchRunning   = "running"
	BatchCompleted = "completed"
	BatchCancelled = "cancelled"
	BatchFailed    = "failed"
)

var (
	ErrNoImport         = errors.New("no import batch found")
	ErrSourceUnreadable = errors.New("import source unreadable")
)

// Progress is one point-in-time update emitted while a batch runs
type Progress struct {
	BatchID   uuid.UUID `json:"batch_id"`
	State     string    `json:"state"`
	Processed int       `json:"processed"`
	Imported  int       `json:"imported"`
	Rejected  int       `json:"rejected"`
	Done      bool      `json:"done"`
}

// Batch tracks one import run. Rejections are kept with their record index
// so the caller can report exactly which rows were skipped and why.
type Batch struct {
	ID         uuid.UUID   `json:"id"`
	State      string      `json:"state"`
	Processed  int         `json:"processed"`
	Imported   int         `json:"imported"`
	Rejected   int         `json:"rejected"`
	Rejections []Rejection `json:"rejections,omitempty"`
	StartedAt  time.Time   `json:"started_at"`
	FinishedAt *time.Time  `json:"finished_at,omitempty"`
	Error      string      `json:"error,omitempty"`
}

// Sink receives the validated transactions of a completed batch for
// persistence and categorization. A cancelled batch never reaches the sink.
type Sink func(ctx context.Context, txns []*models.Transaction) error

// Worker runs imports in the background. Starting a new import while one is
// running supersedes it: the old batch is cancelled and its partial results
// are discarded. Cancellation is cooperative: the context is checked between
// records, never mid-record.
type Worker struct {
	mu            sync.Mutex
	format        Format
	validator     *Validator
	sink          Sink
	current       *Batch
	cancel        context.CancelFunc
	progressEvery int
}

// NewWorker creates an import worker for the given format and sink
func NewWorker(format Format, sink Sink) *Worker {
	return &Worker{
		format:        format,
		validator:     NewValidator(format),
		sink:          sink,
		progressEvery: 100,
	}
}

// Start begins a background import from the source. It fails fast when the
// source is unreadable. A batch still running is cancelled and superseded by
// the new one. The returned channel delivers progress updates and is closed
// when the batch finishes.
func (w *Worker) Start(ctx context.Context, source io.Reader) (uuid.UUID, <-chan Progress, error) {
	reader, err := NewReader(source, w.format)
	if err != nil {
		return uuid.Nil, nil, fmt.Errorf("%w: %v", ErrSourceUnreadable, err)
	}

	w.mu.Lock()
	if w.current != nil && w.current.State == BatchRunning && w.cancel != nil {
		w.cancel()
		w.cancel = nil
	}

	// The batch outlives the caller; a handler's request context dies as
	// soon as the response is written. Only Cancel or a superseding Start
	// stops a running batch.
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	batch := &Batch{ID: uuid.New(), State: BatchRunning, StartedAt: time.Now()}
	w.current = batch
	w.cancel = cancel
	w.mu.Unlock()

	progress := make(chan Progress, 16)
	go w.run(runCtx, reader, batch, progress)

	slog.Info("import started", "batch_id", batch.ID)
	return batch.ID, progress, nil
}

func (w *Worker) run(ctx context.Context, reader *Reader, batch *Batch, progress chan<- Progress) {
	defer close(progress)

	var txns []*models.Transaction

	for {
		if err := ctx.Err(); err != nil {
			w.finish(batch, BatchCancelled, nil)
			w.emit(progress, batch)
			slog.Info("import cancelled", "batch_id", batch.ID, "processed", batch.Processed)
			return
		}

		record, err := reader.Next()
		if err == io.EOF {
			break
		}

		w.mu.Lock()
		batch.Processed++
		if err != nil {
			batch.Rejected++
			batch.Rejections = append(batch.Rejections, Rejection{
				RecordIndex: record.Index,
				Field:       "record",
				Reason:      err.Error(),
			})
			w.mu.Unlock()
			continue
		}

		txn, rejection := w.validator.Validate(record)
		if rejection != nil {
			batch.Rejected++
			batch.Rejections = append(batch.Rejections, *rejection)
			w.mu.Unlock()
			continue
		}
		batch.Imported++
		w.mu.Unlock()

		txns = append(txns, txn)

		if batch.Processed%w.progressEvery == 0 {
			w.emit(progress, batch)
		}
	}

	if err := ctx.Err(); err != nil {
		w.finish(batch, BatchCancelled, nil)
		w.emit(progress, batch)
		slog.Info("import cancelled", "batch_id", batch.ID, "processed", batch.Processed)
		return
	}

	if err := w.sink(ctx, txns); err != nil {
		w.finish(batch, BatchFailed, err)
		w.emit(progress, batch)
		slog.Error("import sink failed", "batch_id", batch.ID, "error", err)
		return
	}

	w.finish(batch, BatchCompleted, nil)
	w.emit(progress, batch)
	slog.Info("import completed",
		"batch_id", batch.ID,
		"imported", batch.Imported,
		"rejected", batch.Rejected)
}

func (w *Worker) finish(batch *Batch, state string, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := time.Now()
	batch.State = state
	batch.FinishedAt = &now
	if err != nil {
		batch.Error = err.Error()
	}
	// A superseded batch must not clear the successor's cancel func.
	if w.current == batch {
		w.cancel = nil
	}
}

// emit never blocks; a slow consumer misses intermediate updates but always
// observes the final state through Current.
func (w *Worker) emit(progress chan<- Progress, batch *Batch) {
	w.mu.Lock()
	update := Progress{
		BatchID:   batch.ID,
		State:     batch.State,
		Processed: batch.Processed,
		Imported:  batch.Imported,
		Rejected:  batch.Rejected,
		Done:      batch.State != BatchRunning,
	}
	w.mu.Unlock()

	select {
	case progress <- update:
	default:
	}
}

// Current returns a copy of the most recent batch, running or finished
func (w *Worker) Current() (*Batch, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.current == nil {
		return nil, ErrNoImport
	}

	snapshot := *w.current
	snapshot.Rejections = append([]Rejection(nil), w.current.Rejections...)
	return &snapshot, nil
}

// Cancel requests cooperative cancellation of the running batch. It reports
// whether a running batch was signalled.
func (w *Worker) Cancel() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.current == nil || w.current.State != BatchRunning || w.cancel == nil {
		return false
	}
	w.cancel()
	return true
}
