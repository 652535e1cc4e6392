package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/timelens/timelens/internal/attr"
	"github.com/timelens/timelens/internal/event"
	"github.com/timelens/timelens/internal/span"
)

// GetValue returns the value of key on obj valid at snap, or nil if
// absent there. Caller holds a guard. Absence is not an error.
func (s *Store) GetValue(ctx context.Context, obj *Object, snap span.Snap, key string) (attr.Value, error) {
	var kind, text string
	err := s.db.QueryRowContext(ctx, `
		SELECT kind, value FROM attr_values
		WHERE object_id = ? AND key = ? AND min_snap <= ? AND max_snap > ?
	`, obj.ID, key, int64(snap), int64(snap)).Scan(&kind, &text)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get value %s[%q]: %w", obj.Path.String(), key, err)
	}
	return attr.Decode(kind, text)
}

// SetValue writes value for key on obj over sp intersected with obj's
// lifespan; writing outside the lifespan is silently narrowed, never
// rejected, and an empty intersection is a no-op. A nil value clears
// coverage instead of storing anything. Caller holds the write guard.
//
// Prior intervals for the same key that overlap the written span are
// carved apart so that stored intervals stay disjoint. Emits a
// value.changed change for the narrowed span (including for clears).
func (s *Store) SetValue(ctx context.Context, obj *Object, sp span.Span, key string, value attr.Value) error {
	written := sp.Intersect(obj.Life)
	if written.IsEmpty() {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("set value %s[%q]: %w", obj.Path.String(), key, err)
	}
	defer tx.Rollback()

	if err := carveValues(ctx, tx, obj.ID, key, written); err != nil {
		return fmt.Errorf("set value %s[%q]: %w", obj.Path.String(), key, err)
	}

	if value != nil {
		kind, text, err := attr.Encode(value)
		if err != nil {
			return fmt.Errorf("set value %s[%q]: %w", obj.Path.String(), key, err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO attr_values (object_id, key, min_snap, max_snap, kind, value)
			VALUES (?, ?, ?, ?, ?, ?)
		`, obj.ID, key, int64(written.Min), int64(written.Max), kind, text)
		if err != nil {
			return fmt.Errorf("set value %s[%q]: %w", obj.Path.String(), key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("set value %s[%q]: %w", obj.Path.String(), key, err)
	}

	s.notify(event.Change{
		Kind:     event.KindValueChanged,
		ObjectID: obj.ID,
		Path:     obj.Path,
		Role:     obj.Role,
		Key:      key,
		Span:     written,
	})
	return nil
}

// carveValues removes coverage of w from prior attr_values rows for
// (objectID, key), splitting, truncating, or deleting as needed so
// that no surviving row overlaps w.
func carveValues(ctx context.Context, tx *sql.Tx, objectID int64, key string, w span.Span) error {
	// A row strictly enclosing w splits in two: keep the head in place,
	// insert the tail, then shrink the head below.
	_, err := tx.ExecContext(ctx, `
		INSERT INTO attr_values (object_id, key, min_snap, max_snap, kind, value)
		SELECT object_id, key, ?, max_snap, kind, value FROM attr_values
		WHERE object_id = ? AND key = ? AND min_snap < ? AND max_snap > ?
	`, int64(w.Max), objectID, key, int64(w.Min), int64(w.Max))
	if err != nil {
		return fmt.Errorf("split enclosing interval: %w", err)
	}

	// Rows fully inside w vanish. The freshly inserted tails start at
	// w.Max and are untouched by every clause below.
	_, err = tx.ExecContext(ctx, `
		DELETE FROM attr_values
		WHERE object_id = ? AND key = ? AND min_snap >= ? AND max_snap <= ?
	`, objectID, key, int64(w.Min), int64(w.Max))
	if err != nil {
		return fmt.Errorf("delete covered intervals: %w", err)
	}

	// Rows overhanging w on the left truncate down to w.Min.
	_, err = tx.ExecContext(ctx, `
		UPDATE attr_values SET max_snap = ?
		WHERE object_id = ? AND key = ? AND min_snap < ? AND max_snap > ?
	`, int64(w.Min), objectID, key, int64(w.Min), int64(w.Min))
	if err != nil {
		return fmt.Errorf("truncate left overlap: %w", err)
	}

	// Rows overhanging w on the right advance their start to w.Max.
	_, err = tx.ExecContext(ctx, `
		UPDATE attr_values SET min_snap = ?
		WHERE object_id = ? AND key = ? AND min_snap >= ? AND min_snap < ? AND max_snap > ?
	`, int64(w.Max), objectID, key, int64(w.Min), int64(w.Max), int64(w.Max))
	if err != nil {
		return fmt.Errorf("truncate right overlap: %w", err)
	}
	return nil
}
