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

package rawg

// SearchResponse represents the root response structure from the RAWG games endpoint
type SearchResponse struct {
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []Game  `json:"results"`
	Count    int     `json:"count"`
}

// Game represents a game from RAWG
type Game struct {
	Slug            string         `json:"slug"`
	Name            string         `json:"name"`
	Released        string         `json:"released"`
	BackgroundImage string         `json:"background_image"`
	Platforms       []PlatformSlot `json:"platforms"`
	ID              int            `json:"id"`
	Rating          float64        `json:"rating"`
}

// PlatformSlot wraps a platform entry in a game's platform list
type PlatformSlot struct {
	Platform Platform `json:"platform"`
}

// Platform represents a gaming platform
type Platform struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
	ID   int    `json:"id"`
}

// ErrorResponse is returned by RAWG alongside non-2xx statuses
type ErrorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail"`
}
