// Package worker keeps each owner's spreadsheet summary in step with their
// ledgers.
package worker

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"ledgerbook/internal/amqp"
	"ledgerbook/internal/log"
	"ledgerbook/internal/services"
	"ledgerbook/internal/sheets"
)

// RollupSource computes an owner's monthly rollup.
// *services.LedgerService implements it.
type RollupSource interface {
	MonthlyRollup(ctx context.Context, owner string) (services.Rollup, error)
}

// Config holds configuration for the export worker.
type Config struct {
	// ExportInterval is how often every known owner is re-exported (default: 10m).
	ExportInterval time.Duration
}

func DefaultConfig() Config {
	return Config{ExportInterval: 10 * time.Minute}
}

// ExportWorker writes an owner's rollup to the summary sheet whenever one
// of their ledgers changes, and re-exports every owner it has seen on a
// fixed interval to recover from lost events.
type ExportWorker struct {
	rollups RollupSource
	sheets  sheets.SummaryWriter
	config  Config
	logger  *log.Logger

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
	owners  map[string]struct{}
}

func NewExportWorker(rollups RollupSource, writer sheets.SummaryWriter, config Config, logger *log.Logger) *ExportWorker {
	if config.ExportInterval <= 0 {
		config.ExportInterval = DefaultConfig().ExportInterval
	}
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &ExportWorker{
		rollups: rollups,
		sheets:  writer,
		config:  config,
		logger:  logger.WithComponent(log.ComponentWorker),
		owners:  make(map[string]struct{}),
	}
}

// HandleLedgerChanged is the AMQP handler. A returned error requeues the
// message.
func (w *ExportWorker) HandleLedgerChanged(ctx context.Context, msg *amqp.LedgerChangedMessage) error {
	w.logger.InfoContext(ctx, "Processing ledger change",
		"event_id", msg.EventID,
		log.FieldOwner, msg.Owner,
		log.FieldLedgerKind, msg.Kind,
		log.FieldLedgerID, msg.LedgerID,
		log.FieldOperation, msg.Operation)

	w.Track(msg.Owner)
	if err := w.ExportOwner(ctx, msg.Owner); err != nil {
		return fmt.Errorf("export owner %s: %w", msg.Owner, err)
	}
	return nil
}

// Track adds owner to the set re-exported on every interval.
func (w *ExportWorker) Track(owner string) {
	owner = strings.TrimSpace(owner)
	if owner == "" {
		return
	}
	w.mu.Lock()
	w.owners[owner] = struct{}{}
	w.mu.Unlock()
}

// Owners returns the tracked owners in sorted order.
func (w *ExportWorker) Owners() []string {
	w.mu.Lock()
	out := make([]string, 0, len(w.owners))
	for o := range w.owners {
		out = append(out, o)
	}
	w.mu.Unlock()
	sort.Strings(out)
	return out
}

// ExportOwner recomputes owner's rollup and replaces their summary.
func (w *ExportWorker) ExportOwner(ctx context.Context, owner string) error {
	r, err := w.rollups.MonthlyRollup(ctx, owner)
	if err != nil {
		return fmt.Errorf("rollup: %w", err)
	}
	ref, err := w.sheets.WriteSummary(ctx, sheets.Summary{
		Owner:       r.Owner,
		Rows:        r.Rows,
		Totals:      r.Totals,
		GeneratedAt: r.GeneratedAt,
	})
	if err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	w.logger.InfoContext(ctx, "Exported rollup",
		log.FieldOwner, owner,
		log.FieldMonths, len(r.Rows),
		"sheets_ref", ref)
	return nil
}

// ExportAll re-exports every tracked owner. Failures are logged and
// joined; one failing owner does not stop the others.
func (w *ExportWorker) ExportAll(ctx context.Context) error {
	var errs []error
	for _, owner := range w.Owners() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := w.ExportOwner(ctx, owner); err != nil {
			w.logger.ErrorContext(ctx, "Periodic export failed",
				log.FieldOwner, owner,
				log.FieldError, err)
			errs = append(errs, fmt.Errorf("%s: %w", owner, err))
		}
	}
	return errors.Join(errs...)
}

// Start begins the periodic export loop. Returns an error if already running.
func (w *ExportWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("export worker is already running")
	}
	w.running = true
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	stopCh, doneCh := w.stopCh, w.doneCh
	w.mu.Unlock()

	go w.runLoop(ctx, stopCh, doneCh)

	w.logger.InfoContext(ctx, "Export worker started",
		"export_interval", w.config.ExportInterval)
	return nil
}

// Stop signals the loop and waits for it to finish or for ctx to expire.
func (w *ExportWorker) Stop(ctx context.Context) error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	stopCh, doneCh := w.stopCh, w.doneCh
	w.stopCh = nil
	w.mu.Unlock()

	// A Stop that timed out already closed stopCh; later calls only wait.
	if stopCh != nil {
		close(stopCh)
	}

	select {
	case <-doneCh:
		w.logger.InfoContext(ctx, "Export worker stopped gracefully")
	case <-ctx.Done():
		w.logger.WarnContext(ctx, "Export worker stop timed out")
		return ctx.Err()
	}
	return nil
}

func (w *ExportWorker) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

func (w *ExportWorker) runLoop(ctx context.Context, stopCh <-chan struct{}, doneCh chan<- struct{}) {
	// running clears however the loop ends, unless a newer Start owns it.
	defer func() {
		w.mu.Lock()
		if w.doneCh == doneCh {
			w.running = false
		}
		w.mu.Unlock()
		close(doneCh)
	}()

	ticker := time.NewTicker(w.config.ExportInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = w.ExportAll(ctx)
		}
	}
}
