// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Jokester Contributors

// Package xdg resolves XDG Base Directory paths for Jokester.
package xdg

import (
	"os"
	"path/filepath"

	"github.com/samber/oops"
)

const appName = "jokester"

// ConfigFileName is the file looked up in ConfigDir when --config is not given.
const ConfigFileName = "config.yaml"

// ConfigDir returns the XDG config directory for jokester.
// Checks XDG_CONFIG_HOME first, falls back to ~/.config.
func ConfigDir() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home := os.Getenv("HOME")
		if home == "" {
			return "", oops.Code("XDG_NO_HOME").Errorf("neither XDG_CONFIG_HOME nor HOME is set")
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, appName), nil
}

// ConfigFile returns the default config file path if that file exists.
func ConfigFile() (string, bool) {
	dir, err := ConfigDir()
	if err != nil {
		return "", false
	}
	path := filepath.Join(dir, ConfigFileName)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", false
	}
	return path, true
}
