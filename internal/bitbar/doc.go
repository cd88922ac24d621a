// SPDX-License-Identifier: MPL-2.0

// Package bitbar renders menu bar plugins in the bitbar/xbar text protocol.
//
// A plugin prints its title line, then menu items after a "---" separator.
// Items may carry "|key=value" parameters; submenu items are prefixed with
// "--" per level.
package bitbar
