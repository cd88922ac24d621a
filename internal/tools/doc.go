// SPDX-License-Identifier: MPL-2.0

// Package tools holds the small standalone utilities of syncbin: edit, jinit,
// tube, m4a2mp3, sleeptill, info-beamer, bun and the terminal cursor helpers.
// Each tool takes its I/O, runner and clock explicitly so it can be driven
// from tests.
package tools
