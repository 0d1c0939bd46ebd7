// Package errors provides structured errors for Loom.
//
// Every user-facing failure carries a registered code (e.g. "E001"), a
// category, a detail message, and a suggestion. Structural invariant
// violations inside the engine panic with one of these errors so the
// failure is descriptive rather than a bare index fault.
package errors
