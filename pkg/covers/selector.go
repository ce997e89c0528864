// Zaparoo Covers
// Copyright (c) 2025 The Zaparoo Project Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of Zaparoo Covers.
//
// Zaparoo Covers is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Zaparoo Covers is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Zaparoo Covers.  If not, see <http://www.gnu.org/licenses/>.

package covers

import (
	"net/url"
	"slices"
	"strings"
)

// SelectCandidate picks one candidate from a provider's results:
//  1. the first whose name matches the title exactly, ignoring case
//  2. otherwise, when platform IDs are known, the first on one of them
//  3. otherwise the first result
//
// An exact title match wins even if its platform doesn't match. Returns
// false only for an empty candidate list.
func SelectCandidate(candidates []Candidate, title string, platformIDs []int) (Candidate, bool) {
	if len(candidates) == 0 {
		return Candidate{}, false
	}

	for _, c := range candidates {
		if strings.EqualFold(c.Name, title) {
			return c, true
		}
	}

	if len(platformIDs) > 0 {
		for _, c := range candidates {
			if onPlatform(c, platformIDs) {
				return c, true
			}
		}
	}

	return candidates[0], true
}

func onPlatform(c Candidate, platformIDs []int) bool {
	for _, id := range c.PlatformIDs {
		if slices.Contains(platformIDs, id) {
			return true
		}
	}
	return false
}

// IsCoverURL reports whether s is an absolute http(s) URL with a host.
func IsCoverURL(s string) bool {
	if s == "" {
		return false
	}
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "https" || u.Scheme == "http") && u.Host != ""
}
