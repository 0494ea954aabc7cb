package worker

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"ledgerbook/internal/amqp"
	"ledgerbook/internal/core"
	"ledgerbook/internal/log"
	"ledgerbook/internal/services"
	"ledgerbook/internal/sheets"
	sheetmem "ledgerbook/internal/sheets/memory"
	storemem "ledgerbook/internal/store/memory"
)

var testNow = time.Date(2025, time.March, 10, 9, 30, 0, 0, time.UTC)

func newService() *services.LedgerService {
	return services.NewLedgerService(storemem.New(),
		services.WithClock(func() time.Time { return testNow }),
		services.WithLogger(log.Discard()))
}

// failingWriter rejects summaries for one owner.
type failingWriter struct {
	*sheetmem.Sink
	owner string
}

func (f failingWriter) WriteSummary(ctx context.Context, s sheets.Summary) (string, error) {
	if s.Owner == f.owner {
		return "", errors.New("quota exceeded")
	}
	return f.Sink.WriteSummary(ctx, s)
}

func TestHandleLedgerChangedExportsRollup(t *testing.T) {
	ctx := context.Background()
	svc := newService()
	sink := sheetmem.New()
	w := NewExportWorker(svc, sink, DefaultConfig(), log.Discard())

	m, err := svc.CreateMiscLedger(ctx, "u1", core.MiscValues{"fuel": core.ParseOrZero("40")})
	if err != nil {
		t.Fatal(err)
	}

	msg := amqp.NewLedgerChangedMessage("u1", string(core.KindMisc), m.ID, log.OpCreate)
	if err := w.HandleLedgerChanged(ctx, msg); err != nil {
		t.Fatalf("handle: %v", err)
	}

	got, ok := sink.Summary("u1")
	if !ok {
		t.Fatal("no summary written")
	}
	if len(got.Rows) != 1 || got.Rows[0].Month != 3 || !got.Totals.MiscTotal.Equal(core.ParseOrZero("40")) {
		t.Fatalf("unexpected summary: %+v", got)
	}
	if owners := w.Owners(); len(owners) != 1 || owners[0] != "u1" {
		t.Fatalf("owners = %v", owners)
	}
}

func TestHandleLedgerChangedReturnsExportError(t *testing.T) {
	w := NewExportWorker(newService(), failingWriter{Sink: sheetmem.New(), owner: "u1"}, DefaultConfig(), log.Discard())
	msg := amqp.NewLedgerChangedMessage("u1", string(core.KindBudget), "b1", log.OpDelete)
	err := w.HandleLedgerChanged(context.Background(), msg)
	if err == nil || !strings.Contains(err.Error(), "quota exceeded") {
		t.Fatalf("expected export error, got %v", err)
	}
}

func TestExportAllContinuesPastFailures(t *testing.T) {
	sink := sheetmem.New()
	w := NewExportWorker(newService(), failingWriter{Sink: sink, owner: "bad"}, DefaultConfig(), log.Discard())
	for _, o := range []string{"u2", "bad", "u1", " "} {
		w.Track(o)
	}

	err := w.ExportAll(context.Background())
	if err == nil || !strings.Contains(err.Error(), "bad") {
		t.Fatalf("expected joined error naming the failing owner, got %v", err)
	}
	if sink.Writes() != 2 {
		t.Fatalf("writes = %d, want 2", sink.Writes())
	}
	if _, ok := sink.Summary("u2"); !ok {
		t.Fatal("u2 not exported")
	}
}

func TestExportWorkerLifecycle(t *testing.T) {
	sink := sheetmem.New()
	w := NewExportWorker(newService(), sink, Config{ExportInterval: 10 * time.Millisecond}, log.Discard())

	if err := w.Stop(context.Background()); err != nil {
		t.Fatalf("stop before start: %v", err)
	}
	if w.IsRunning() {
		t.Fatal("worker should not be running initially")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Track("u1")
	if err := w.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := w.Start(ctx); err == nil {
		t.Fatal("expected error when starting twice")
	}

	deadline := time.Now().Add(2 * time.Second)
	for sink.Writes() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if sink.Writes() == 0 {
		t.Fatal("periodic export never ran")
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), time.Second)
	defer stopCancel()
	if err := w.Stop(stopCtx); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if w.IsRunning() {
		t.Fatal("worker still running after stop")
	}
}

func waitStopped(t *testing.T, w *ExportWorker) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for w.IsRunning() && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if w.IsRunning() {
		t.Fatal("worker still reported running after its loop exited")
	}
}

func TestExportWorkerRestartsAfterLoopExit(t *testing.T) {
	w := NewExportWorker(newService(), sheetmem.New(), Config{ExportInterval: time.Hour}, log.Discard())

	// The parent context ends the loop without Stop.
	ctx, cancel := context.WithCancel(context.Background())
	if err := w.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	cancel()
	waitStopped(t, w)

	ctx2, cancel2 := context.WithCancel(context.Background())
	defer cancel2()
	if err := w.Start(ctx2); err != nil {
		t.Fatalf("restart after context cancel: %v", err)
	}
	if !w.IsRunning() {
		t.Fatal("restarted worker should be running")
	}

	// Stop with an expired context times out but the loop still exits.
	expired, expiredCancel := context.WithCancel(context.Background())
	expiredCancel()
	_ = w.Stop(expired)
	waitStopped(t, w)

	if err := w.Stop(context.Background()); err != nil {
		t.Fatalf("stop after loop exit: %v", err)
	}
	if err := w.Start(ctx2); err != nil {
		t.Fatalf("restart after timed-out stop: %v", err)
	}
	if err := w.Stop(context.Background()); err != nil {
		t.Fatalf("final stop: %v", err)
	}
	if w.IsRunning() {
		t.Fatal("worker still running after final stop")
	}
}

func TestNewExportWorkerDefaults(t *testing.T) {
	w := NewExportWorker(newService(), sheetmem.New(), Config{}, nil)
	if w.config.ExportInterval != 10*time.Minute {
		t.Fatalf("interval = %v", w.config.ExportInterval)
	}
}
