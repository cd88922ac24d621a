// SPDX-License-Identifier: MPL-2.0

package rustup

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

const manifestFile = "Cargo.toml"

// maxManifestSize bounds how much of a Cargo.toml is read.
const maxManifestSize = 1 << 20

// Manifest is the subset of Cargo.toml syncbin reads.
type Manifest struct {
	Package struct {
		Name    string `toml:"name"`
		Version string `toml:"version"`
	} `toml:"package"`
	Workspace *struct {
		Members []string `toml:"members"`
	} `toml:"workspace"`
}

// ReadManifest parses dir/Cargo.toml. It returns fs.ErrNotExist (wrapped)
// when dir is not a cargo project.
func ReadManifest(dir string) (*Manifest, error) {
	path := filepath.Join(dir, manifestFile)
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.Size() > maxManifestSize {
		return nil, fmt.Errorf("%s: file too large (%d bytes)", path, info.Size())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &m, nil
}

// DisplayName names the project: the package name, or the directory for
// virtual workspaces.
func (m *Manifest) DisplayName(dir string) string {
	if m.Package.Name != "" {
		return m.Package.Name
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return dir
	}
	return filepath.Base(abs)
}

// IsCargoProject reports whether dir holds a Cargo.toml.
func IsCargoProject(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, manifestFile))
	return !errors.Is(err, fs.ErrNotExist)
}
