// SPDX-License-Identifier: MPL-2.0

// Package bootstrap provisions a fresh machine with the named setups of
// `syncbin bootstrap`.
//
// A Setup pairs a name with a Run function, an optional installed-state
// Probe, its OS packages and the setups it requires. The Registry is an
// explicit table built once; Bootstrap validates every requested name before
// touching the system, orders prerequisites with internal/dag, skips
// prerequisites that already report installed, and runs the rest. Failures
// are returned as they happen: nothing is retried or rolled back.
package bootstrap
