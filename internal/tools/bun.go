// SPDX-License-Identifier: MPL-2.0

package tools

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/term"
)

// ErrNotTerminal is returned by ReadRaw when stdin is not a terminal.
var ErrNotTerminal = errors.New("stdin is not a terminal")

// Repr quotes s the way Python's repr does for str: single quotes unless s
// contains a single quote and no double quote, with control and
// non-printable characters escaped.
func Repr(s string) string {
	quote := '\''
	if strings.ContainsRune(s, '\'') && !strings.ContainsRune(s, '"') {
		quote = '"'
	}
	var b strings.Builder
	b.WriteRune(quote)
	for _, r := range s {
		switch {
		case r == quote || r == '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\r':
			b.WriteString(`\r`)
		case r == '\t':
			b.WriteString(`\t`)
		case r < 0x20 || r == 0x7f:
			fmt.Fprintf(&b, `\x%02x`, r)
		case !unicode.IsPrint(r):
			switch {
			case r <= 0xff:
				fmt.Fprintf(&b, `\x%02x`, r)
			case r <= 0xffff:
				fmt.Fprintf(&b, `\u%04x`, r)
			default:
				fmt.Fprintf(&b, `\U%08x`, r)
			}
		default:
			b.WriteRune(r)
		}
	}
	b.WriteRune(quote)
	return b.String()
}

// ReadChars reads n characters from r and writes the repr of each on its own
// line. Lines end in "\r\n" since the terminal is in raw mode.
func ReadChars(r io.Reader, w io.Writer, n int) error {
	br := bufio.NewReaderSize(r, utf8.UTFMax)
	for range n {
		ch, _, err := br.ReadRune()
		if err != nil {
			return err
		}
		if _, err := fmt.Fprint(w, Repr(string(ch)), "\r\n"); err != nil {
			return err
		}
	}
	return nil
}

// ReadRaw puts the terminal into raw mode, reads n characters with
// ReadChars and restores the previous mode.
func ReadRaw(in *os.File, w io.Writer, n int) error {
	fd := int(in.Fd())
	if !term.IsTerminal(fd) {
		return ErrNotTerminal
	}
	state, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("entering raw mode: %w", err)
	}
	defer func() { _ = term.Restore(fd, state) }()
	return ReadChars(in, w, n)
}
