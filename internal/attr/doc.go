// Package attr defines the typed attribute values a timelens store can
// hold and their serialized forms.
//
// Attribute values are a sealed union: String, Int, Bool, and Address.
// Only these types implement Value. There is no float variant - snaps
// and addresses are integral, and keeping floats out of the model keeps
// every serialization deterministic.
//
// Absence is represented by a nil Value, never by a sentinel inside the
// union. The one domain sentinel, NoAddress, exists so that callers can
// say "explicitly no program counter"; the store normalizes it to
// absence at the write boundary.
//
// Two serializations are provided:
//
//   - Encode/Decode map a Value to a (kind, text) column pair for
//     SQLite storage.
//   - MarshalCanonical produces canonical JSON (UTF-16 sorted keys,
//     NFC-normalized strings, no floats) for golden trace snapshots,
//     where byte-stable output across runs is the whole point.
package attr
