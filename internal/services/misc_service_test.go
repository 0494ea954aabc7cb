package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"ledgerbook/internal/core"
)

func TestRemoveEntriesByCategory(t *testing.T) {
	ctx := context.Background()
	st := newCountingStore()
	svc := newTestService(st)

	m, err := svc.CreateMiscLedger(ctx, "u1", core.MiscValues{"a": d("1"), "rent": d("2")})
	if err != nil {
		t.Fatal(err)
	}
	m, err = svc.AppendEntry(ctx, m.ID, "u1", EntryDraft{Data: core.MiscValues{"rent": d("3")}})
	if err != nil {
		t.Fatal(err)
	}
	if !m.TotalMiscExp.Equal(d("6")) {
		t.Fatalf("total before = %s", m.TotalMiscExp)
	}

	got, err := svc.RemoveEntriesByCategory(ctx, m.ID, "u1", "rent")
	if err != nil {
		t.Fatalf("remove category: %v", err)
	}
	if len(got.Entries) != 2 {
		t.Fatalf("entries must be kept, got %d", len(got.Entries))
	}
	if len(got.Entries[0].Data) != 1 || !got.Entries[0].Data["a"].Equal(d("1")) {
		t.Fatalf("first entry = %+v, want {a:1}", got.Entries[0].Data)
	}
	if len(got.Entries[1].Data) != 0 {
		t.Fatalf("second entry = %+v, want {}", got.Entries[1].Data)
	}
	if !got.TotalMiscExp.Equal(d("1")) {
		t.Fatalf("total after = %s, want 1", got.TotalMiscExp)
	}

	saves := st.saves.Load()
	if _, err := svc.RemoveEntriesByCategory(ctx, m.ID, "u1", "rent"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("second removal should be not found, got %v", err)
	}
	if st.saves.Load() != saves {
		t.Fatal("failed removal must not save")
	}

	if _, err := svc.RemoveEntriesByCategory(ctx, m.ID, "u1", " "); !errors.Is(err, core.ErrInvalidInput) {
		t.Fatalf("blank category: %v", err)
	}
	if _, err := svc.RemoveEntriesByCategory(ctx, m.ID, "u2", "a"); !errors.Is(err, core.ErrUnauthorized) {
		t.Fatalf("non-owner: %v", err)
	}
}

func TestAppendEntry(t *testing.T) {
	ctx := context.Background()
	st := newCountingStore()
	svc := newTestService(st)
	m, _ := svc.CreateMiscLedger(ctx, "u1", nil)
	if len(m.Entries) != 0 {
		t.Fatalf("empty initial map should create no entry: %+v", m.Entries)
	}

	t.Run("zero date means now", func(t *testing.T) {
		got, err := svc.AppendEntry(ctx, m.ID, "u1", EntryDraft{Data: core.CoerceValues(map[string]any{"fuel": "12.5", "junk": "x"})})
		if err != nil {
			t.Fatal(err)
		}
		e := got.Entries[len(got.Entries)-1]
		if !e.Date.Equal(testNow) {
			t.Fatalf("date = %v, want %v", e.Date, testNow)
		}
		if !got.TotalMiscExp.Equal(d("12.5")) {
			t.Fatalf("total = %s", got.TotalMiscExp)
		}
	})

	t.Run("explicit date is kept in UTC", func(t *testing.T) {
		when := time.Date(2025, time.January, 2, 3, 0, 0, 0, time.FixedZone("IST", 19800))
		got, err := svc.AppendEntry(ctx, m.ID, "u1", EntryDraft{Date: when, Data: core.MiscValues{"a": d("1")}})
		if err != nil {
			t.Fatal(err)
		}
		e := got.Entries[len(got.Entries)-1]
		if !e.Date.Equal(when) || e.Date.Location() != time.UTC {
			t.Fatalf("date = %v", e.Date)
		}
	})

	t.Run("invalid entries rejected before load", func(t *testing.T) {
		st.loads.Store(0)
		for _, data := range []core.MiscValues{nil, {}, {" ": d("1")}} {
			if _, err := svc.AppendEntry(ctx, m.ID, "u1", EntryDraft{Data: data}); !errors.Is(err, core.ErrInvalidInput) {
				t.Fatalf("data %v: expected invalid input, got %v", data, err)
			}
		}
		if st.loads.Load() != 0 {
			t.Fatalf("saw %d loads", st.loads.Load())
		}
	})
}

func TestEditAndRemoveEntry(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newCountingStore())
	m, _ := svc.CreateMiscLedger(ctx, "u1", core.MiscValues{"a": d("1")})
	entryID := m.Entries[0].ID

	when := time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC)
	got, err := svc.EditEntry(ctx, m.ID, "u1", entryID, EntryPatch{Date: &when, Data: core.MiscValues{"b": d("4"), "c": d("5")}})
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	if !got.Entries[0].Date.Equal(when) || !got.TotalMiscExp.Equal(d("9")) {
		t.Fatalf("unexpected edit result: %+v", got)
	}

	if _, err := svc.EditEntry(ctx, m.ID, "u1", entryID, EntryPatch{}); !errors.Is(err, core.ErrInvalidInput) {
		t.Fatalf("empty patch: %v", err)
	}
	if _, err := svc.EditEntry(ctx, m.ID, "u1", "ghost", EntryPatch{Date: &when}); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("missing entry: %v", err)
	}

	got, err = svc.RemoveEntry(ctx, m.ID, "u1", entryID)
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if len(got.Entries) != 0 || !got.TotalMiscExp.IsZero() {
		t.Fatalf("unexpected after remove: %+v", got)
	}
	if _, err := svc.RemoveEntry(ctx, m.ID, "u1", entryID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("second remove: %v", err)
	}
}

func TestDeleteMiscLedger(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newCountingStore())
	m, _ := svc.CreateMiscLedger(ctx, "u1", core.MiscValues{"a": d("1")})

	if err := svc.DeleteMiscLedger(ctx, m.ID, "u2"); !errors.Is(err, core.ErrUnauthorized) {
		t.Fatalf("non-owner delete: %v", err)
	}
	if err := svc.DeleteMiscLedger(ctx, m.ID, "u1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.GetMiscExpense(ctx, m.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
	if list, _ := svc.ListMiscExpenses(ctx, "u1"); len(list) != 0 {
		t.Fatalf("listing after delete: %+v", list)
	}
}
