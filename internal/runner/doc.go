// SPDX-License-Identifier: MPL-2.0

// Package runner executes the external programs every syncbin tool is built
// around (git, cargo, rustup, df, osascript, apt-get, ...).
//
// Two execution paths are available:
//   - native: os/exec with optional timeout, used for ordinary commands
//   - shell: an embedded POSIX interpreter (mvdan/sh) for the few places that
//     need a pipeline, such as `curl ... | sh`
//
// Both are reachable through the Runner interface so callers can be tested
// with a recording fake (see internal/testutil/fakerunner).
package runner
