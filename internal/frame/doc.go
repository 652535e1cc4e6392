// Package frame projects call-stack-frame semantics over a versioned
// object in a timelens store.
//
// A Frame does not own any data of its own. Every operation reads or
// writes through the store under a scoped guard: the frame's level is
// derived from its canonical path, the program counter is a
// time-varying attribute, and the owning stack is resolved by an
// ancestor query on every access. Nothing is cached across guard
// scopes; two sequential operations may observe different worlds.
//
// # Comments and frame identity
//
// Producers are encouraged to reuse frame objects as the stack grows
// and shrinks, so a frame object's identity says nothing about which
// logical frame it currently represents. A comment attached to the
// object itself would leak across unrelated frames. Instead, comments
// are stored against the frame's current program counter: the closest
// identity heuristic available. This is an approximation with a known
// collision case - two unrelated frames sharing a program counter share
// the comment - and no stronger identity signal exists upstream, so the
// limitation is documented rather than papered over.
package frame
