package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/timelens/timelens/internal/event"
	"github.com/timelens/timelens/internal/path"
	"github.com/timelens/timelens/internal/span"
)

// Object roles. A role names the projection that applies to an object;
// the store itself attaches no semantics to it.
const (
	RoleStack  = "Stack"
	RoleFrame  = "Frame"
	RoleThread = "Thread"
)

// Object is a handle to a versioned object in the store.
//
// Identity (ID, Path, Role) and the lifespan are fixed at creation and
// carried on the handle; attribute values are not, and must be read
// through the store under a guard. A handle held across DeleteObject
// dangles: value reads return absence and parent queries return nil.
type Object struct {
	ID   int64
	Path path.Path
	Role string
	Life span.Span
}

// Lifespan returns the span of snaps the object exists over.
func (o *Object) Lifespan() span.Span { return o.Life }

// MinSnap returns the first snap of the object's lifespan.
func (o *Object) MinSnap() span.Snap { return o.Life.Min }

// MaxSnap returns the last snap of the object's lifespan.
func (o *Object) MaxSnap() span.Snap { return o.Life.Last() }

// CreateObject inserts a new object. Caller holds the write guard.
// Emits an object.inserted change.
func (s *Store) CreateObject(ctx context.Context, p path.Path, role string, life span.Span) (*Object, error) {
	if life.IsEmpty() {
		return nil, fmt.Errorf("create object %q: empty lifespan", p.String())
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO objects (path, role, min_snap, max_snap)
		VALUES (?, ?, ?, ?)
	`, p.String(), role, int64(life.Min), int64(life.Max))
	if err != nil {
		return nil, fmt.Errorf("create object %q: %w", p.String(), err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("create object %q: %w", p.String(), err)
	}

	obj := &Object{ID: id, Path: p, Role: role, Life: life}
	s.notify(event.Change{
		Kind:     event.KindObjectInserted,
		ObjectID: obj.ID,
		Path:     obj.Path,
		Role:     obj.Role,
		Span:     obj.Life,
	})
	return obj, nil
}

// DeleteObject removes an object and, via cascade, its attribute
// values. Caller holds the write guard. Emits an object.deleted change.
func (s *Store) DeleteObject(ctx context.Context, obj *Object) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM objects WHERE id = ?`, obj.ID)
	if err != nil {
		return fmt.Errorf("delete object %q: %w", obj.Path.String(), err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete object %q: %w", obj.Path.String(), err)
	}
	if n == 0 {
		// Already gone; deleting twice is not an error, but there is
		// nothing to announce either.
		return nil
	}

	s.notify(event.Change{
		Kind:     event.KindObjectDeleted,
		ObjectID: obj.ID,
		Path:     obj.Path,
		Role:     obj.Role,
		Span:     obj.Life,
	})
	return nil
}

// ObjectByPath looks up an object by canonical path. Caller holds a
// guard. Returns (nil, nil) if no such object exists.
func (s *Store) ObjectByPath(ctx context.Context, p path.Path) (*Object, error) {
	return s.scanObject(ctx, `SELECT id, path, role, min_snap, max_snap FROM objects WHERE path = ?`, p.String())
}

// ObjectByID looks up an object by row id. Caller holds a guard.
// Returns (nil, nil) if no such object exists.
func (s *Store) ObjectByID(ctx context.Context, id int64) (*Object, error) {
	return s.scanObject(ctx, `SELECT id, path, role, min_snap, max_snap FROM objects WHERE id = ?`, id)
}

func (s *Store) scanObject(ctx context.Context, query string, arg any) (*Object, error) {
	var (
		obj      Object
		pathStr  string
		min, max int64
	)
	err := s.db.QueryRowContext(ctx, query, arg).Scan(&obj.ID, &pathStr, &obj.Role, &min, &max)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("look up object: %w", err)
	}
	p, err := path.Parse(pathStr)
	if err != nil {
		return nil, fmt.Errorf("stored object has malformed path %q: %w", pathStr, err)
	}
	obj.Path = p
	obj.Life = span.New(span.Snap(min), span.Snap(max))
	return &obj, nil
}

// ObjectsByRole returns all objects carrying the given role, ordered
// by path. Caller holds a guard.
func (s *Store) ObjectsByRole(ctx context.Context, role string) ([]*Object, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, path, role, min_snap, max_snap FROM objects WHERE role = ? ORDER BY path`, role)
	if err != nil {
		return nil, fmt.Errorf("list objects by role: %w", err)
	}
	defer rows.Close()

	var out []*Object
	for rows.Next() {
		var (
			obj      Object
			pathStr  string
			min, max int64
		)
		if err := rows.Scan(&obj.ID, &pathStr, &obj.Role, &min, &max); err != nil {
			return nil, fmt.Errorf("scan object row: %w", err)
		}
		p, err := path.Parse(pathStr)
		if err != nil {
			return nil, fmt.Errorf("stored object has malformed path %q: %w", pathStr, err)
		}
		obj.Path = p
		obj.Life = span.New(span.Snap(min), span.Snap(max))
		out = append(out, &obj)
	}
	return out, rows.Err()
}

// CanonicalParent returns the object at the parent path if both it and
// obj exist at the given snap, or nil if obj is detached there. Caller
// holds a guard.
func (s *Store) CanonicalParent(ctx context.Context, obj *Object, snap span.Snap) (*Object, error) {
	if obj.Path.IsRoot() || !obj.Life.Contains(snap) {
		return nil, nil
	}
	parent, err := s.ObjectByPath(ctx, obj.Path.Parent())
	if err != nil {
		return nil, err
	}
	if parent == nil || !parent.Life.Contains(snap) {
		return nil, nil
	}
	return parent, nil
}

// QueryAncestors returns the strict canonical ancestors of obj that
// carry the given role and whose lifespans intersect sp, ordered
// nearest first. Caller holds a guard.
func (s *Store) QueryAncestors(ctx context.Context, obj *Object, sp span.Span, role string) ([]*Object, error) {
	var out []*Object
	for p := obj.Path.Parent(); !p.IsRoot(); p = p.Parent() {
		anc, err := s.ObjectByPath(ctx, p)
		if err != nil {
			return nil, err
		}
		if anc == nil || anc.Role != role || !anc.Life.Overlaps(sp) {
			continue
		}
		out = append(out, anc)
	}
	return out, nil
}
