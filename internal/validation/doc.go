// Package validation provides boundary input checks: dangerous-pattern
// rejection plus bounded-and-defaulted scalar conversion. It is the Go
// counterpart of a Python input-validation module that guarded every
// external input with rule-based checks; this package keeps only the
// rules this system's boundaries actually need, expressed as small pure
// functions rather than a rule-registry object.
package validation
