package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"ledgerbook/internal/core"
	"ledgerbook/internal/store"

	_ "modernc.org/sqlite"
)

var _ store.Store = (*SQLiteRepository)(nil)

// SQLiteRepository stores each ledger as one JSON document keyed by id.
// Transactions and entries live inside the document, so a save replaces the
// whole aggregate atomically.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

const (
	loadLedgerSQL = `SELECT body FROM ledgers WHERE id = ? AND kind = ?`

	findLedgersSQL = `SELECT body FROM ledgers WHERE owner = ? AND kind = ? ORDER BY seq`

	upsertLedgerSQL = `
INSERT INTO ledgers (id, kind, owner, body, seq, created_at, updated_at)
VALUES (?, ?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM ledgers), ?, ?)
ON CONFLICT(id) DO UPDATE SET
    owner = excluded.owner,
    body = excluded.body,
    updated_at = excluded.updated_at
WHERE ledgers.kind = excluded.kind`

	deleteLedgerSQL = `DELETE FROM ledgers WHERE id = ? AND kind = ?`
)

func (r *SQLiteRepository) LoadBudget(ctx context.Context, id string) (core.Budget, error) {
	var b core.Budget
	if err := r.load(ctx, id, core.KindBudget, &b); err != nil {
		return core.Budget{}, err
	}
	return b, nil
}

func (r *SQLiteRepository) SaveBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	if err := r.save(ctx, b.ID, core.KindBudget, b.Owner, b.CreatedAt, b.UpdatedAt, b); err != nil {
		return core.Budget{}, err
	}
	slog.DebugContext(ctx, "Budget saved to SQLite", "id", b.ID, "transactions", len(b.Transactions))
	return b, nil
}

func (r *SQLiteRepository) FindBudgets(ctx context.Context, owner string) ([]core.Budget, error) {
	var out []core.Budget
	err := r.find(ctx, owner, core.KindBudget, func(body []byte) error {
		var b core.Budget
		if err := json.Unmarshal(body, &b); err != nil {
			return err
		}
		out = append(out, b)
		return nil
	})
	return out, err
}

func (r *SQLiteRepository) DeleteBudget(ctx context.Context, id string) error {
	return r.delete(ctx, id, core.KindBudget)
}

func (r *SQLiteRepository) LoadMiscExpense(ctx context.Context, id string) (core.MiscExpense, error) {
	var m core.MiscExpense
	if err := r.load(ctx, id, core.KindMisc, &m); err != nil {
		return core.MiscExpense{}, err
	}
	return m, nil
}

func (r *SQLiteRepository) SaveMiscExpense(ctx context.Context, m core.MiscExpense) (core.MiscExpense, error) {
	if err := r.save(ctx, m.ID, core.KindMisc, m.Owner, m.CreatedAt, m.UpdatedAt, m); err != nil {
		return core.MiscExpense{}, err
	}
	slog.DebugContext(ctx, "Misc expense saved to SQLite", "id", m.ID, "entries", len(m.Entries))
	return m, nil
}

func (r *SQLiteRepository) FindMiscExpenses(ctx context.Context, owner string) ([]core.MiscExpense, error) {
	var out []core.MiscExpense
	err := r.find(ctx, owner, core.KindMisc, func(body []byte) error {
		var m core.MiscExpense
		if err := json.Unmarshal(body, &m); err != nil {
			return err
		}
		out = append(out, m)
		return nil
	})
	return out, err
}

func (r *SQLiteRepository) DeleteMiscExpense(ctx context.Context, id string) error {
	return r.delete(ctx, id, core.KindMisc)
}

func (r *SQLiteRepository) load(ctx context.Context, id string, kind core.Kind, dst any) error {
	var body []byte
	err := r.db.QueryRowContext(ctx, loadLedgerSQL, id, string(kind)).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %s: %w", kind, id, core.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("%w: load %s %s: %w", core.ErrStorage, kind, id, err)
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("%w: decode %s %s: %w", core.ErrStorage, kind, id, err)
	}
	return nil
}

func (r *SQLiteRepository) save(ctx context.Context, id string, kind core.Kind, owner string, created, updated time.Time, doc any) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("%w: encode %s %s: %w", core.ErrStorage, kind, id, err)
	}
	res, err := r.db.ExecContext(ctx, upsertLedgerSQL,
		id, string(kind), owner, body,
		created.UTC().Format(time.RFC3339Nano), updated.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("%w: save %s %s: %w", core.ErrStorage, kind, id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: save %s %s: id belongs to another ledger kind", core.ErrStorage, kind, id)
	}
	return nil
}

func (r *SQLiteRepository) find(ctx context.Context, owner string, kind core.Kind, each func([]byte) error) error {
	rows, err := r.db.QueryContext(ctx, findLedgersSQL, owner, string(kind))
	if err != nil {
		return fmt.Errorf("%w: list %s for %s: %w", core.ErrStorage, kind, owner, err)
	}
	defer rows.Close()

	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return fmt.Errorf("%w: scan %s: %w", core.ErrStorage, kind, err)
		}
		if err := each(body); err != nil {
			return fmt.Errorf("%w: decode %s: %w", core.ErrStorage, kind, err)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("%w: list %s for %s: %w", core.ErrStorage, kind, owner, err)
	}
	return nil
}

func (r *SQLiteRepository) delete(ctx context.Context, id string, kind core.Kind) error {
	res, err := r.db.ExecContext(ctx, deleteLedgerSQL, id, string(kind))
	if err != nil {
		return fmt.Errorf("%w: delete %s %s: %w", core.ErrStorage, kind, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: delete %s %s: %w", core.ErrStorage, kind, id, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, core.ErrNotFound)
	}
	slog.DebugContext(ctx, "Ledger deleted from SQLite", "id", id, "kind", kind)
	return nil
}
