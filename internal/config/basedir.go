// SPDX-License-Identifier: MPL-2.0

package config

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	defaultConfigDirs = "/etc/xdg"
	defaultDataDirs   = "/usr/local/share:/usr/share"
)

// HomeDir returns the user's home directory, falling back to $HOME.
func HomeDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return os.Getenv("HOME")
}

// ConfigHome returns $XDG_CONFIG_HOME, or ~/.config.
func ConfigHome() string {
	return xdgHome("XDG_CONFIG_HOME", ".config")
}

// DataHome returns $XDG_DATA_HOME, or ~/.local/share.
func DataHome() string {
	return xdgHome("XDG_DATA_HOME", filepath.Join(".local", "share"))
}

// ConfigDirs returns the config search path, user directory first.
func ConfigDirs() []string {
	return append([]string{ConfigHome()}, xdgDirs("XDG_CONFIG_DIRS", defaultConfigDirs)...)
}

// DataDirs returns the data search path, user directory first.
func DataDirs() []string {
	return append([]string{DataHome()}, xdgDirs("XDG_DATA_DIRS", defaultDataDirs)...)
}

// ConfigPaths returns every candidate location of rel, in lookup order.
func ConfigPaths(rel string) []string {
	return join(ConfigDirs(), rel)
}

// FindConfig returns the first existing config file named rel.
func FindConfig(rel string) (string, bool) {
	return first(ConfigPaths(rel))
}

// FindData returns the first existing data file named rel.
func FindData(rel string) (string, bool) {
	return first(join(DataDirs(), rel))
}

// DataPath returns where rel is written: always under DataHome.
func DataPath(rel string) string {
	return filepath.Join(DataHome(), rel)
}

func xdgHome(key, fallback string) string {
	if dir := os.Getenv(key); dir != "" && filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(HomeDir(), fallback)
}

// xdgDirs ignores relative entries, as the base directory spec requires.
func xdgDirs(key, fallback string) []string {
	value := os.Getenv(key)
	if value == "" {
		value = fallback
	}
	var dirs []string
	for dir := range strings.SplitSeq(value, string(os.PathListSeparator)) {
		if filepath.IsAbs(dir) {
			dirs = append(dirs, dir)
		}
	}
	return dirs
}

func join(dirs []string, rel string) []string {
	paths := make([]string, len(dirs))
	for i, dir := range dirs {
		paths[i] = filepath.Join(dir, rel)
	}
	return paths
}

func first(paths []string) (string, bool) {
	for _, path := range paths {
		if fileExists(path) {
			return path, true
		}
	}
	return "", false
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
