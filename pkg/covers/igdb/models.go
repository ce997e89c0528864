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

package igdb

// Game represents a game from the IGDB games endpoint
type Game struct {
	Cover     *Cover `json:"cover"`
	Name      string `json:"name"`
	Platforms []int  `json:"platforms"`
	ID        int    `json:"id"`
}

// Cover represents cover art from IGDB
type Cover struct {
	ImageID  string `json:"image_id"`
	URL      string `json:"url"`
	Checksum string `json:"checksum"`
	ID       int    `json:"id"`
	Game     int    `json:"game"`
	Height   int    `json:"height"`
	Width    int    `json:"width"`
}

// APIError represents an error response from IGDB API
type APIError struct {
	Title  string `json:"title"`
	Cause  string `json:"cause"`
	Status int    `json:"status"`
}
