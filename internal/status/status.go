// SPDX-License-Identifier: MPL-2.0

// Package status prints the bracketed progress and message lines shared by
// every syncbin tool:
//
//	[==..] updating repo
//	[ ok ] update complete
//	[ ** ] not a git repo, skipping repo update step
//	[ !! ] releasing rustup lock
//	[!!!!] updating Rust nightly: failed
package status

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	// Done is the progress value that prints "[ ok ]".
	Done = 5

	okTag    = "[ ok ]"
	infoTag  = "[ ** ]"
	warnTag  = "[ !! ]"
	fatalTag = "[!!!!]"
)

// Printer writes status lines. Progress and info go to Out, warnings and
// errors to Err. Tags are colored only when the destination is a terminal.
type Printer struct {
	Out   io.Writer
	Err   io.Writer
	Quiet bool

	ok, info, warn, fatal, progress lipgloss.Style
}

// New returns a Printer writing to out and errOut.
func New(out, errOut io.Writer, quiet bool) *Printer {
	outR := lipgloss.NewRenderer(out)
	errR := lipgloss.NewRenderer(errOut)
	return &Printer{
		Out:      out,
		Err:      errOut,
		Quiet:    quiet,
		ok:       outR.NewStyle().Foreground(lipgloss.Color("#10B981")),
		info:     outR.NewStyle().Foreground(lipgloss.Color("#3B82F6")),
		progress: outR.NewStyle().Foreground(lipgloss.Color("#7C3AED")),
		warn:     errR.NewStyle().Foreground(lipgloss.Color("#F59E0B")),
		fatal:    errR.NewStyle().Bold(true).Foreground(lipgloss.Color("#EF4444")),
	}
}

// Bar renders the tag for progress n: "[" + n×"=" + (4−n)×"." + "]", or
// "[ ok ]" from Done on.
func Bar(n int) string {
	if n >= Done {
		return okTag
	}
	n = max(n, 0)
	return "[" + strings.Repeat("=", n) + strings.Repeat(".", 4-n) + "]"
}

// Progress prints msg with the bar for n. Unfinished steps end in a carriage
// return so the next line overwrites them, unless newline is set.
func (p *Printer) Progress(n int, msg string, newline bool) {
	if p == nil || p.Quiet {
		return
	}
	if n >= Done {
		fmt.Fprintln(p.Out, p.ok.Render(okTag), msg)
		return
	}
	end := "\r"
	if newline {
		end = "\n"
	}
	fmt.Fprint(p.Out, p.progress.Render(Bar(n)), " ", msg, end)
}

// Info prints "[ ** ] msg". Suppressed in quiet mode.
func (p *Printer) Info(format string, args ...any) {
	if p == nil || p.Quiet {
		return
	}
	fmt.Fprintln(p.Out, p.info.Render(infoTag), fmt.Sprintf(format, args...))
}

// OK prints "[ ok ] msg". Suppressed in quiet mode.
func (p *Printer) OK(format string, args ...any) {
	p.Progress(Done, fmt.Sprintf(format, args...), true)
}

// Warn prints "[ !! ] msg" to Err.
func (p *Printer) Warn(format string, args ...any) {
	if p == nil {
		return
	}
	fmt.Fprintln(p.Err, p.warn.Render(warnTag), fmt.Sprintf(format, args...))
}

// Fatal prints "[!!!!] msg" to Err. The caller decides the exit code.
func (p *Printer) Fatal(format string, args ...any) {
	if p == nil {
		return
	}
	fmt.Fprintln(p.Err, p.fatal.Render(fatalTag), fmt.Sprintf(format, args...))
}
