// Package sanitizer normalizes user supplied booking and catalogue input.
//
// All functions are idempotent and never return errors: invalid input maps to
// an empty value (or false) and is rejected later by validation.
//
// Normalization includes:
//   - Phone numbers: 10 digit local numbers and 91XXXXXXXXXX WhatsApp recipients (region IN)
//   - Strings: collapse whitespace, trim leading/trailing spaces
//   - Labels: trimmed and lowercased, used for sports and skill levels
//   - Slices: remove duplicates and empty values after normalization
package sanitizer
