package state

import (
	"context"
	"fmt"

	"github.com/DreamStack-us/redisTOON/internal/store"
)

// Snapshot writes every document in st to the database, replacing the
// previous snapshot in a single transaction. It returns the number of
// documents written.
func (s *SQLiteStore) Snapshot(ctx context.Context, st *store.Store) (int, error) {
	if s.db == nil {
		return 0, fmt.Errorf("database not opened")
	}

	recs, err := st.Export()
	if err != nil {
		return 0, fmt.Errorf("export documents: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM documents`); err != nil {
		return 0, fmt.Errorf("clear documents: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO documents (key, body, revision, updated_at)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, rec := range recs {
		if _, err := stmt.ExecContext(ctx, rec.Key, rec.Body, rec.Revision, rec.UpdatedAt); err != nil {
			return 0, fmt.Errorf("insert document %q: %w", rec.Key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit transaction: %w", err)
	}

	return len(recs), nil
}

// Restore loads every snapshot row into st and returns the number of
// documents restored. A row whose body no longer decodes fails the restore
// and names the key.
func (s *SQLiteStore) Restore(ctx context.Context, st *store.Store) (int, error) {
	if s.db == nil {
		return 0, fmt.Errorf("database not opened")
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT key, body, revision, updated_at FROM documents ORDER BY key
	`)
	if err != nil {
		return 0, fmt.Errorf("query documents: %w", err)
	}
	defer func() { _ = rows.Close() }()

	count := 0
	for rows.Next() {
		var rec store.Record
		if err := rows.Scan(&rec.Key, &rec.Body, &rec.Revision, &rec.UpdatedAt); err != nil {
			return 0, fmt.Errorf("scan document: %w", err)
		}
		if err := st.Load(rec); err != nil {
			return 0, fmt.Errorf("restore document %q: %w", rec.Key, err)
		}
		count++
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("rows error: %w", err)
	}

	return count, nil
}
