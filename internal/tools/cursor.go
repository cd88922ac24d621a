// SPDX-License-Identifier: MPL-2.0

package tools

import (
	"io"
	"strings"
)

const (
	cursorUp = "\x1b[A"
	clearEOL = "\x1b[K"
)

// Up moves the cursor up n lines.
func Up(w io.Writer, n int) error {
	_, err := io.WriteString(w, strings.Repeat(cursorUp, max(n, 0)))
	return err
}

// ClearEOL clears from the cursor to the end of the line.
func ClearEOL(w io.Writer) error {
	_, err := io.WriteString(w, clearEOL)
	return err
}
