package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/timelens/timelens/internal/attr"
	"github.com/timelens/timelens/internal/span"
)

// Comment kinds. Only end-of-line comments are used by the frame
// facade; the column is an integer so further kinds slot in without a
// migration.
const (
	CommentEOL = 0
)

// GetComment returns the comment of the given kind stored for addr and
// valid at snap, or "" if absent. Caller holds a guard.
func (s *Store) GetComment(ctx context.Context, snap span.Snap, addr attr.Address, kind int) (string, error) {
	var body string
	err := s.db.QueryRowContext(ctx, `
		SELECT body FROM comments
		WHERE address = ? AND kind = ? AND min_snap <= ? AND max_snap > ?
	`, int64(addr), kind, int64(snap), int64(snap)).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get comment at %s: %w", addr, err)
	}
	return body, nil
}

// SetComment stores body as the comment of the given kind for addr over
// sp, carving prior comment intervals for the same (addr, kind) apart.
// An empty body clears coverage. Caller holds the write guard.
func (s *Store) SetComment(ctx context.Context, sp span.Span, addr attr.Address, kind int, body string) error {
	if sp.IsEmpty() {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("set comment at %s: %w", addr, err)
	}
	defer tx.Rollback()

	if err := carveComments(ctx, tx, addr, kind, sp); err != nil {
		return fmt.Errorf("set comment at %s: %w", addr, err)
	}

	if body != "" {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO comments (address, kind, min_snap, max_snap, body)
			VALUES (?, ?, ?, ?, ?)
		`, int64(addr), kind, int64(sp.Min), int64(sp.Max), body)
		if err != nil {
			return fmt.Errorf("set comment at %s: %w", addr, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("set comment at %s: %w", addr, err)
	}
	return nil
}

// carveComments mirrors carveValues for the comments table. The two
// tables carry different identity columns, so the statements stay
// separate rather than sharing a templated helper.
func carveComments(ctx context.Context, tx *sql.Tx, addr attr.Address, kind int, w span.Span) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO comments (address, kind, min_snap, max_snap, body)
		SELECT address, kind, ?, max_snap, body FROM comments
		WHERE address = ? AND kind = ? AND min_snap < ? AND max_snap > ?
	`, int64(w.Max), int64(addr), kind, int64(w.Min), int64(w.Max))
	if err != nil {
		return fmt.Errorf("split enclosing interval: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		DELETE FROM comments
		WHERE address = ? AND kind = ? AND min_snap >= ? AND max_snap <= ?
	`, int64(addr), kind, int64(w.Min), int64(w.Max))
	if err != nil {
		return fmt.Errorf("delete covered intervals: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE comments SET max_snap = ?
		WHERE address = ? AND kind = ? AND min_snap < ? AND max_snap > ?
	`, int64(w.Min), int64(addr), kind, int64(w.Min), int64(w.Min))
	if err != nil {
		return fmt.Errorf("truncate left overlap: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE comments SET min_snap = ?
		WHERE address = ? AND kind = ? AND min_snap >= ? AND min_snap < ? AND max_snap > ?
	`, int64(w.Max), int64(addr), kind, int64(w.Min), int64(w.Max), int64(w.Max))
	if err != nil {
		return fmt.Errorf("truncate right overlap: %w", err)
	}
	return nil
}
