// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

//go:build !windows

package main

import (
	"fmt"

	"golang.org/x/sys/unix"

	"github.com/sigil-dev/sparqlboard/pkg/health"
)

// lowDiskBytes is the free space below which a file-backed history warns.
const lowDiskBytes = 100 * 1024 * 1024

func checkDiskSpace(dir string) health.Check {
	var stat unix.Statfs_t
	if err := unix.Statfs(dir, &stat); err != nil {
		return health.Warn("Disk Space", fmt.Sprintf("unable to check %s: %s", dir, err))
	}

	avail := stat.Bavail * uint64(stat.Bsize)
	detail := formatBytes(avail) + " available in " + dir
	if avail < lowDiskBytes {
		return health.Warn("Disk Space", detail)
	}
	return health.OK("Disk Space", detail)
}
