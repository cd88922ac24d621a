// SPDX-License-Identifier: MPL-2.0

package bitbar

import (
	"encoding/base64"
	"fmt"
	"io"
	"strconv"
	"strings"
)

type (
	// Param is one "key=value" item parameter.
	Param struct {
		Key   string
		Value string
	}

	// Writer writes protocol lines and keeps the first write error.
	Writer struct {
		w   io.Writer
		err error
	}
)

var escaper = strings.NewReplacer("|", "¦", "\n", " ")

// Escape makes user text safe for an item: "|" would start the parameter
// list and a newline would end the item.
func Escape(s string) string {
	return escaper.Replace(s)
}

// P builds a parameter.
func P(key, value string) Param {
	return Param{Key: key, Value: value}
}

// TemplateImage is the templateImage parameter for a PNG.
func TemplateImage(png []byte) Param {
	return P("templateImage", base64.StdEncoding.EncodeToString(png))
}

// Action runs exe with args when the item is clicked.
func Action(exe string, args ...string) []Param {
	params := []Param{P("bash", exe)}
	for i, arg := range args {
		params = append(params, P("param"+strconv.Itoa(i+1), arg))
	}
	return params
}

// NewWriter returns a Writer on w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Item writes text with optional parameters. text is written as is; use
// Escape for user-provided text.
func (w *Writer) Item(text string, params ...Param) {
	if len(params) == 0 {
		w.line(text)
		return
	}
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = p.Key + "=" + quote(p.Value)
	}
	w.line(text + "|" + strings.Join(parts, " "))
}

// Sub writes a submenu item at depth (1 = "--").
func (w *Writer) Sub(depth int, text string, params ...Param) {
	w.Item(strings.Repeat("--", depth)+text, params...)
}

// Sep writes a separator; at depth > 0 it separates submenu items.
func (w *Writer) Sep(depth ...int) {
	d := 0
	if len(depth) > 0 {
		d = depth[0]
	}
	w.line(strings.Repeat("--", d) + "---")
}

// Err returns the first write error.
func (w *Writer) Err() error {
	return w.err
}

func (w *Writer) line(s string) {
	if w.err != nil {
		return
	}
	_, w.err = fmt.Fprintln(w.w, s)
}

func quote(v string) string {
	if strings.ContainsAny(v, " \t") {
		return `"` + strings.ReplaceAll(v, `"`, `\"`) + `"`
	}
	return v
}
