// Copyright 2021-2023
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package common

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"sort"
	"strings"
)

// commitHash and buildDate are stamped by `mage build` through -ldflags
var (
	commitHash string
	buildDate  string
)

// Version is the SemVer 2.0.0 version of pvscreen. Suffix is empty for
// releases; pre-releases carry the commit as build metadata.
type Version struct {
	Major  int
	Minor  int
	Patch  int
	Suffix string
}

func (v Version) String() string {
	s := fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	if v.Suffix == "" {
		return s
	}
	s += "-" + v.Suffix
	if commitHash != "" {
		s += "+" + strings.ToLower(commitHash)
	}
	return s
}

// moduleVersions lists the modules linked into the binary as path=version
func moduleVersions() []string {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return nil
	}
	mods := make([]string, 0, len(bi.Deps))
	for _, dep := range bi.Deps {
		mods = append(mods, fmt.Sprintf("%s=%q", dep.Path, dep.Version))
	}
	sort.Strings(mods)
	return mods
}

// BuildVersionString is printed by `pvscreen version`
func BuildVersionString() string {
	date := buildDate
	if date == "" {
		date = "unknown"
	}
	commit := commitHash
	if commit == "" {
		commit = "unknown"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "pvscreen v%s %s/%s\n\n", CurrentVersion, runtime.GOOS, runtime.GOARCH)
	fmt.Fprintf(&sb, "Build Date: %s\nCommit: %s\nBuilt with: %s\n", date, commit, runtime.Version())
	if mods := moduleVersions(); len(mods) > 0 {
		sb.WriteString("\nModules:\n\n")
		sb.WriteString(strings.Join(mods, "\n"))
	}
	return sb.String()
}
