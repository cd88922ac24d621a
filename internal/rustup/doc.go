// SPDX-License-Identifier: MPL-2.0

// Package rustup updates Rust toolchains through rustup and runs the project
// pipeline of `syncbin rust`: pull the git repo, refresh crates, then cargo
// build, test and optionally run.
//
// Every toolchain command runs with ~/.cargo/bin prepended to PATH, so a
// rustup installed without touching the shell profile is still found.
package rustup
