// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"syncbin-cli/pkg/types"
)

// ExitError signals a non-zero exit code without forcing os.Exit in RunE handlers.
// A nil Err means the failure was already reported and nothing more is printed.
type ExitError struct {
	Code types.ExitCode
	Err  error
}

// Error returns the error message for ExitError.
func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

// Unwrap returns the underlying error, if any.
func (e *ExitError) Unwrap() error {
	return e.Err
}

// exitWith turns a subprocess exit code into a RunE result.
func exitWith(code types.ExitCode) error {
	if code.IsSuccess() {
		return nil
	}
	return &ExitError{Code: code}
}

// toolResult turns a tool's (code, err) result into a RunE result. An error
// always exits non-zero.
func toolResult(code types.ExitCode, err error) error {
	if err == nil {
		return exitWith(code)
	}
	if code.IsSuccess() {
		code = types.ExitFailure
	}
	return &ExitError{Code: code, Err: err}
}
