package frame

import (
	"context"
	"errors"
	"fmt"

	"github.com/timelens/timelens/internal/attr"
	"github.com/timelens/timelens/internal/span"
	"github.com/timelens/timelens/internal/store"
)

// KeyProgramCounter is the attribute key producers publish a frame's
// program counter under.
const KeyProgramCounter = "_pc"

// ErrNoProgramCounter reports that a comment write could not resolve a
// program counter to key the comment by.
var ErrNoProgramCounter = errors.New("frame has no resolvable program counter")

// Frame projects stack-frame semantics over one store object.
// The zero value is not usable; construct with New.
type Frame struct {
	store *store.Store
	obj   *store.Object
}

// New wraps a store object in the frame projection. The object is
// expected to carry the Frame role; the projection does not verify it.
func New(st *store.Store, obj *store.Object) *Frame {
	return &Frame{store: st, obj: obj}
}

// Object returns the underlying store object handle.
func (f *Frame) Object() *store.Object {
	return f.obj
}

// Stack resolves the stack owning this frame: its nearest ancestor with
// the Stack role, valid within the frame's lifespan. Exactly one such
// ancestor must exist for well-formed trace data; its absence is a
// fatal consistency violation, never defaulted around.
func (f *Frame) Stack(ctx context.Context) (*store.Object, error) {
	g := f.store.LockRead()
	defer g.Release()
	return f.stack(ctx)
}

// stack is Stack without guard acquisition, for use under a held guard.
func (f *Frame) stack(ctx context.Context) (*store.Object, error) {
	ancestors, err := f.store.QueryAncestors(ctx, f.obj, f.obj.Lifespan(), store.RoleStack)
	if err != nil {
		return nil, fmt.Errorf("resolve stack for %s: %w", f.obj.Path.String(), err)
	}
	if len(ancestors) == 0 {
		return nil, &ConsistencyError{Code: CodeNoStackOwner, Path: f.obj.Path.String()}
	}
	return ancestors[0], nil
}

// Level derives the frame's position in its stack from the canonical
// path: the value of the nearest trailing index segment. A frame path
// with no index anywhere is a fatal consistency violation.
func (f *Frame) Level() (int64, error) {
	n, err := f.obj.Path.LastIndex()
	if err != nil {
		return 0, &ConsistencyError{Code: CodeNoFrameIndex, Path: f.obj.Path.String(), Err: err}
	}
	return n, nil
}

// ProgramCounter returns the frame's program counter at snap, or
// ok=false if none is recorded there. A value stored under the PC key
// with a non-address type also reads as absent.
func (f *Frame) ProgramCounter(ctx context.Context, snap span.Snap) (attr.Address, bool, error) {
	g := f.store.LockRead()
	defer g.Release()
	return f.programCounter(ctx, snap)
}

// programCounter is ProgramCounter without guard acquisition.
func (f *Frame) programCounter(ctx context.Context, snap span.Snap) (attr.Address, bool, error) {
	v, err := f.store.GetValue(ctx, f.obj, snap, KeyProgramCounter)
	if err != nil {
		return 0, false, fmt.Errorf("read program counter of %s: %w", f.obj.Path.String(), err)
	}
	addr, ok := v.(attr.Address)
	if !ok {
		return 0, false, nil
	}
	return addr, true, nil
}

// SetProgramCounter records pc as the frame's program counter over sp
// intersected with the frame's lifespan; writing outside the lifespan
// is silently narrowed. The NoAddress sentinel is normalized to
// absence, so "no value" and "explicitly no address" are one state.
func (f *Frame) SetProgramCounter(ctx context.Context, sp span.Span, pc attr.Address) error {
	g := f.store.LockWrite()
	defer g.Release()

	var v attr.Value
	if pc != attr.NoAddress {
		v = pc
	}
	if err := f.store.SetValue(ctx, f.obj, sp, KeyProgramCounter, v); err != nil {
		return fmt.Errorf("set program counter of %s: %w", f.obj.Path.String(), err)
	}
	return nil
}

// Comment returns the end-of-line comment for this frame, read through
// the program counter resolved at the frame's latest snap. Absence of
// either the program counter or the comment reads as ok=false.
func (f *Frame) Comment(ctx context.Context) (string, bool, error) {
	g := f.store.LockRead()
	defer g.Release()

	pc, ok, err := f.programCounter(ctx, f.obj.MaxSnap())
	if err != nil || !ok {
		return "", false, err
	}
	body, err := f.store.GetComment(ctx, f.obj.MaxSnap(), pc, store.CommentEOL)
	if err != nil {
		return "", false, fmt.Errorf("read comment of %s: %w", f.obj.Path.String(), err)
	}
	return body, body != "", nil
}

// SetComment stores body as the end-of-line comment for the address
// the program counter resolves to at the frame's latest snap, valid
// over the frame's own lifespan. Fails with ErrNoProgramCounter when no
// proxy address is resolvable.
func (f *Frame) SetComment(ctx context.Context, body string) error {
	g := f.store.LockWrite()
	defer g.Release()

	pc, ok, err := f.programCounter(ctx, f.obj.MaxSnap())
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("set comment of %s: %w", f.obj.Path.String(), ErrNoProgramCounter)
	}
	if err := f.store.SetComment(ctx, f.obj.Lifespan(), pc, store.CommentEOL, body); err != nil {
		return fmt.Errorf("set comment of %s: %w", f.obj.Path.String(), err)
	}
	return nil
}
