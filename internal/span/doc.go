// Package span provides the logical-time primitives for timelens.
//
// A Snap is a point on the versioning time axis. It is a logical clock
// value, never a wall-clock timestamp: trace producers assign snaps
// monotonically, and all interval arithmetic in the store is defined
// over snaps.
//
// A Span is a half-open interval [Min, Max) of snaps. Every object and
// attribute value in the store is valid over exactly one Span. The
// half-open convention makes adjacent intervals compose without overlap:
// [0,5) and [5,10) tile the axis with no shared snap.
//
// This package contains type definitions and pure arithmetic only. All
// other internal packages import span; span imports nothing internal.
package span
