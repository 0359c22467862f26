// Package shared holds helpers used across firmpanel packages.
//
// Subpackages:
//   - testutil: a capturing slog handler and filing fixtures for tests
package shared
