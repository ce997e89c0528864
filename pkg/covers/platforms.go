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
	"slices"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// PlatformTable maps a lower-cased platform name to an ordered list of
// provider-specific platform IDs.
type PlatformTable map[string][]int

// PlatformIDs holds the platform IDs for each provider
type PlatformIDs struct {
	RAWG       []int
	TheGamesDB []int
	IGDB       []int
}

// PlatformDefinition is a single platform with all the lower-cased names
// it can be referred to by.
type PlatformDefinition struct {
	Names []string
	IDs   PlatformIDs
}

// PlatformDefinitions centralizes platform IDs to avoid duplication across
// providers. The first name of each entry is the display name.
var PlatformDefinitions = []PlatformDefinition{
	// Microsoft
	{
		Names: []string{"microsoft windows", "windows", "pc", "win"},
		IDs:   PlatformIDs{RAWG: []int{4}, TheGamesDB: []int{1}, IGDB: []int{6}},
	},
	{
		Names: []string{"microsoft xbox", "xbox"},
		IDs:   PlatformIDs{RAWG: []int{80}, TheGamesDB: []int{14}, IGDB: []int{11}},
	},
	{
		Names: []string{"microsoft xbox 360", "xbox 360", "xbox360"},
		IDs:   PlatformIDs{RAWG: []int{14}, TheGamesDB: []int{15}, IGDB: []int{12}},
	},

	// Nintendo
	{
		Names: []string{"nintendo 3ds", "3ds"},
		IDs:   PlatformIDs{RAWG: []int{8}, TheGamesDB: []int{4912}, IGDB: []int{37, 137}},
	},
	{
		Names: []string{"nintendo 64", "n64"},
		IDs:   PlatformIDs{RAWG: []int{83}, TheGamesDB: []int{3}, IGDB: []int{4}},
	},
	{
		Names: []string{"nintendo ds", "ds", "nds"},
		IDs:   PlatformIDs{RAWG: []int{9}, TheGamesDB: []int{8}, IGDB: []int{20, 159}},
	},
	{
		Names: []string{"nintendo gamecube", "gamecube", "gc", "ngc"},
		IDs:   PlatformIDs{RAWG: []int{105}, TheGamesDB: []int{2}, IGDB: []int{21}},
	},
	{
		Names: []string{"nintendo switch", "switch"},
		IDs:   PlatformIDs{RAWG: []int{7}, TheGamesDB: []int{4971}, IGDB: []int{130}},
	},
	{
		Names: []string{"nintendo wii", "wii"},
		IDs:   PlatformIDs{RAWG: []int{11}, TheGamesDB: []int{9}, IGDB: []int{5}},
	},
	{
		Names: []string{"nintendo wii u", "wii u", "wiiu"},
		IDs:   PlatformIDs{RAWG: []int{10}, TheGamesDB: []int{38}, IGDB: []int{41}},
	},

	// Sega
	{
		Names: []string{"sega dreamcast", "dreamcast", "dc"},
		IDs:   PlatformIDs{RAWG: []int{106}, TheGamesDB: []int{16}, IGDB: []int{23}},
	},
	{
		Names: []string{"sega saturn", "saturn"},
		IDs:   PlatformIDs{RAWG: []int{107}, TheGamesDB: []int{17}, IGDB: []int{32}},
	},

	// Sony
	{
		Names: []string{"sony playstation", "playstation", "ps1", "psx"},
		IDs:   PlatformIDs{RAWG: []int{27}, TheGamesDB: []int{10}, IGDB: []int{7}},
	},
	{
		Names: []string{"sony playstation 2", "playstation 2", "ps2"},
		IDs:   PlatformIDs{RAWG: []int{15}, TheGamesDB: []int{11}, IGDB: []int{8}},
	},
	{
		Names: []string{"sony playstation 3", "playstation 3", "ps3"},
		IDs:   PlatformIDs{RAWG: []int{16}, TheGamesDB: []int{12}, IGDB: []int{9}},
	},
	{
		Names: []string{"sony playstation 4", "playstation 4", "ps4"},
		IDs:   PlatformIDs{RAWG: []int{18}, TheGamesDB: []int{4919}, IGDB: []int{48}},
	},
	{
		Names: []string{"sony playstation 5", "playstation 5", "ps5"},
		IDs:   PlatformIDs{RAWG: []int{187}, TheGamesDB: []int{4980}, IGDB: []int{167}},
	},
	{
		Names: []string{"sony psp", "sony playstation portable", "playstation portable", "psp"},
		IDs:   PlatformIDs{RAWG: []int{17}, TheGamesDB: []int{13}, IGDB: []int{38}},
	},
	{
		Names: []string{"sony playstation vita", "sony vita", "playstation vita", "ps vita", "psvita", "vita"},
		IDs:   PlatformIDs{RAWG: []int{19}, TheGamesDB: []int{39}, IGDB: []int{46}},
	},
}

// NewPlatformTable builds a provider's table from the central definitions
// using pick to select that provider's IDs. Definitions without IDs for the
// provider are left out.
func NewPlatformTable(pick func(PlatformIDs) []int) PlatformTable {
	table := make(PlatformTable)
	for _, def := range PlatformDefinitions {
		ids := pick(def.IDs)
		if len(ids) == 0 {
			continue
		}
		for _, name := range def.Names {
			table[normalizePlatformName(name)] = slices.Clone(ids)
		}
	}
	return table
}

// NormalizePlatform looks up a human-readable platform name in the table.
// The lookup is case-insensitive but otherwise exact. An unknown name
// returns an empty slice, meaning no platform filter should be applied.
func NormalizePlatform(table PlatformTable, name string) []int {
	ids, ok := table[normalizePlatformName(name)]
	if !ok {
		return []int{}
	}
	return slices.Clone(ids)
}

func normalizePlatformName(name string) string {
	return strings.ToLower(norm.NFC.String(strings.TrimSpace(name)))
}

// JoinIDs formats platform IDs for use in a request.
func JoinIDs(ids []int, sep string) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, sep)
}
