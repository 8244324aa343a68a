// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

//go:build !windows

package config

import (
	"io/fs"
	"log/slog"
	"os"
)

// readableByOthers covers the group and other read bits.
const readableByOthers fs.FileMode = 0o044

// ExposedMode returns the permission bits of path and whether users other
// than the owner can read it. A missing or unreadable path reports false.
func ExposedMode(path string) (fs.FileMode, bool) {
	if path == "" {
		return 0, false
	}
	info, err := os.Stat(path)
	if err != nil {
		slog.Debug("skipping config permission check", "path", path, "error", err)
		return 0, false
	}
	perm := info.Mode().Perm()
	return perm, perm&readableByOthers != 0
}

// WarnInsecurePermissions logs when the config file, which may carry endpoint
// credentials, is readable by other users. It never fails startup.
func WarnInsecurePermissions(path string) {
	if perm, exposed := ExposedMode(path); exposed {
		slog.Warn("config file is readable by other users; keep endpoint credentials in the keyring",
			"path", path,
			"mode", perm,
			"recommended", "0600",
		)
	}
}
