// Package harness provides a conformance testing framework for the
// trace store and its stack event pipeline.
//
// Scenarios are YAML files that build an object hierarchy, mutate it
// step by step, and assert on the translated stack events and final
// frame state. Each scenario runs against a fresh in-memory store with
// a fixed trace token, so the same scenario always produces the same
// event trace. Golden snapshots of those traces are compared
// byte-for-byte via canonical JSON.
//
// The harness drives the real dispatch pipeline: mutations raise store
// changes, the dispatcher queue buffers them, and a drain pass
// translates them into stack events exactly as a live Run loop would.
// Nothing is manufactured from the scenario's expectations.
package harness
