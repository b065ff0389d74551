// Package sanitizer normalizes user input before validation and storage.
//
// All functions are idempotent and never fail: input that cannot be
// normalized is returned trimmed (so that validation can reject it) or dropped
// from slices.
//
// Normalization includes:
//   - Phone numbers: E.164 via libphonenumber
//   - Names, titles, notes: trimmed, internal whitespace collapsed
//   - Roles and emails: additionally lowercased
//   - Id lists: trimmed, blanks and duplicates removed, order kept
package sanitizer
