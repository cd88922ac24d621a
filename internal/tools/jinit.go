// SPDX-License-Identifier: MPL-2.0

package tools

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrFileExists is returned by InitJSON when the target already exists.
var ErrFileExists = errors.New("file exists")

// InitJSON creates path containing an empty JSON object, or an empty array
// when array is set. Missing parent directories are created.
func InitJSON(path string, array bool) error {
	if _, err := os.Lstat(path); err == nil {
		return ErrFileExists
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create parent directory: %w", err)
	}
	content := "{}\n"
	if array {
		content = "[]\n"
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return ErrFileExists
		}
		return err
	}
	if _, err := f.WriteString(content); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
