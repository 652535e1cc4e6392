// Package path models canonical object paths in a timelens trace.
//
// A canonical path locates an object in the trace's object tree as an
// ordered sequence of segments. Segments come in two shapes:
//
//   - name segments, e.g. "Threads" or "Stack", which identify a named
//     child, and
//   - index segments, e.g. "[0]" or a bare decimal "3", which identify
//     an element position.
//
// The string form joins name segments with "." and appends bracketed
// index segments directly: "Processes[0].Threads[1].Stack[3]".
//
// Index resolution is the load-bearing operation here: a frame's level
// is derived from the nearest trailing index segment of its path, since
// producers do not publish an explicit level attribute. The scan order
// and failure behavior of LastIndex are therefore part of the contract,
// not an implementation detail.
//
// All segments are NFC-normalized on parse so that equal-looking paths
// from different producers compare equal byte-wise.
package path
