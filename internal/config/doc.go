// SPDX-License-Identifier: MPL-2.0

// Package config locates and loads syncbin's JSON configuration files.
//
// Files are found with XDG base-directory rules (basedir.go): the user's
// $XDG_CONFIG_HOME (~/.config) first, then each of $XDG_CONFIG_DIRS
// (/etc/xdg). The first existing file wins; a missing file means defaults.
//
// fenhl/syncbin.json and bitbar/plugins/discord.json are validated against
// the embedded CUE schema (config_schema.cue) before being merged into Viper
// and decoded into typed structs.
package config
