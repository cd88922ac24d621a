// SPDX-License-Identifier: MPL-2.0

package runner

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestShell_Pipeline(t *testing.T) {
	t.Parallel()

	var stdout bytes.Buffer
	code, err := New().Shell(context.Background(), `VAR="piped value"; echo "$VAR" | tr a-z A-Z`, Cmd{
		Stdout: &stdout,
		Stderr: &bytes.Buffer{},
	})
	if err != nil {
		t.Fatalf("Shell() error: %v", err)
	}
	if code != 0 {
		t.Fatalf("Shell() exit code = %d, want 0", code)
	}
	if got := strings.TrimSpace(stdout.String()); got != "PIPED VALUE" {
		t.Errorf("Shell() output = %q, want %q", got, "PIPED VALUE")
	}
}

func TestShell_ExitStatus(t *testing.T) {
	t.Parallel()

	code, err := New().Shell(context.Background(), "exit 5", Cmd{})
	if err != nil {
		t.Fatalf("Shell() error: %v", err)
	}
	if code != 5 {
		t.Errorf("Shell() exit code = %d, want 5", code)
	}
}

func TestShell_ParseError(t *testing.T) {
	t.Parallel()

	if _, err := New().Shell(context.Background(), "if then fi (", Cmd{}); err == nil {
		t.Error("Shell() expected parse error")
	}
}

func TestShell_Env(t *testing.T) {
	t.Parallel()

	var stdout bytes.Buffer
	_, err := New().Shell(context.Background(), `printf '%s' "$SYNCBIN_SHELL_VALUE"`, Cmd{
		Env:    []string{"SYNCBIN_SHELL_VALUE=from-env"},
		Stdout: &stdout,
	})
	if err != nil {
		t.Fatalf("Shell() error: %v", err)
	}
	if stdout.String() != "from-env" {
		t.Errorf("Shell() output = %q, want %q", stdout.String(), "from-env")
	}
}

func TestQuoteArgs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		args []string
		want string
	}{
		{[]string{"plain"}, "plain"},
		{[]string{"two words"}, "'two words'"},
		{[]string{"-x", "it's"}, `-x "it's"`},
		{nil, ""},
	}

	for _, tt := range tests {
		got, err := QuoteArgs(tt.args)
		if err != nil {
			t.Fatalf("QuoteArgs(%q) error: %v", tt.args, err)
		}
		if got != tt.want {
			t.Errorf("QuoteArgs(%q) = %q, want %q", tt.args, got, tt.want)
		}
	}
}
