// SPDX-License-Identifier: MPL-2.0

// Package playlist manipulates the MPD queue: listing it, appending from a
// music directory, appending random tracks and pausing after the current
// song.
package playlist
