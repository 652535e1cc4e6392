// Package engine implements the timelens change-dispatch loop.
//
// The store raises low-level change notifications synchronously, while
// the mutating guard is still held. The dispatcher decouples that hot
// path from observers: changes are enqueued to an unbounded FIFO queue
// and a single Run goroutine drains it, translating frame-object
// changes into stack events and delivering them to subscribers.
//
// Single-Writer Loop:
// All translation and delivery happens in the one Run goroutine. This
// keeps observer-visible event order identical to mutation order with
// no further synchronization, and means subscribers never race each
// other.
//
// A data-consistency violation surfaced during translation (a frame
// with no owning stack) stops the loop and is returned from Run: it is
// a bug in the trace producer, not a runtime condition to skip past.
package engine
