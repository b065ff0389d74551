// Package engine answers availability and scheduling-conflict questions over an
// in-memory snapshot of availability records, equipment bookings and events.
//
// Every function is a pure read-side computation: inputs are never mutated and
// no I/O is performed, so the functions are safe to call concurrently. Callers
// own the snapshot and are expected to reload it after each mutation.
//
// Two time conventions are used:
//   - Day granularity: calendar days keyed as "YYYY-MM-DD", timezone-naive,
//     compared as strings. Ranges of days are inclusive on both ends.
//   - Instant granularity: UTC timestamps forming half-open intervals
//     [start, end). Touching intervals do not overlap.
//
// Malformed input fails fast with ErrInvalidInterval instead of producing a
// partially-correct answer.
package engine
