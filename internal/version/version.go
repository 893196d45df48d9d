// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package version provides build-time version information.
package version

import "fmt"

// Set via ldflags:
//
//	-X github.com/olegiv/dhefar-go/internal/version.version=v1.2.3
var (
	version   = "dev"
	gitCommit = "unknown"
	buildTime = "unknown"
)

// Info contains build-time version information.
type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"gitCommit"`
	BuildTime string `json:"buildTime"`
}

// Get returns the version information of the running binary.
func Get() Info {
	return Info{Version: version, GitCommit: gitCommit, BuildTime: buildTime}
}

// String formats the info for the -version flag.
func (i Info) String() string {
	return fmt.Sprintf("dhefar %s (commit: %s, built: %s)", i.Version, i.GitCommit, i.BuildTime)
}
