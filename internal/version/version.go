// Copyright 2022 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

// Package version reports the ethsign release and the commit it was built from.
package version

import "fmt"

// 主模块路径，用来判断构建信息是否属于本程序。
const ourPath = "github.com/ethsign/ethsign"

// 发布时修改这里的版本号。
const (
	Major = 0        // Major version component of the current release
	Minor = 3        // Minor version component of the current release
	Patch = 0        // Patch version component of the current release
	Meta  = "stable" // Version metadata to append to the version string
)

// Semantic holds the textual version string for major.minor.patch.
var Semantic = fmt.Sprintf("%d.%d.%d", Major, Minor, Patch)

// WithMeta holds the textual version string including the metadata.
var WithMeta = func() string {
	v := Semantic
	if Meta != "" {
		v += "-" + Meta
	}
	return v
}()

// WithCommit appends the first 8 characters of the commit hash, and the
// commit date for non-stable builds.
func WithCommit(gitCommit, gitDate string) string {
	vsn := WithMeta
	if len(gitCommit) >= 8 {
		vsn += "-" + gitCommit[:8]
	}
	if (Meta != "stable") && (gitDate != "") {
		vsn += "-" + gitDate
	}
	return vsn
}
