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

package thegamesdb

// APIResponse represents the root response structure from the ByGameName endpoint
type APIResponse struct {
	Data              *APIResponseData    `json:"data,omitempty"`
	Include           *APIResponseInclude `json:"include,omitempty"`
	Status            string              `json:"status"`
	AllowanceRefresh  string              `json:"allowance_refresh_timer"`
	Code              int                 `json:"code"`
	RemainingRequests int                 `json:"remaining_monthly_allowance"`
	ExtraAllowance    int                 `json:"extra_allowance"`
}

// APIResponseData contains the main data from API responses
type APIResponseData struct {
	Games []Game `json:"games,omitempty"`
	Count int    `json:"count,omitempty"`
}

// APIResponseInclude contains additional data referenced by game IDs
type APIResponseInclude struct {
	Boxart *ImageInclude `json:"boxart,omitempty"`
}

// ImageInclude lists images per game ID, keyed by the ID as a string
type ImageInclude struct {
	Data    map[string][]Image `json:"data"`
	BaseURL ImageBaseURL       `json:"base_url"`
}

// ImagesResponse represents the response from the Games/Images endpoint
type ImagesResponse struct {
	Data              *ImagesResponseData `json:"data,omitempty"`
	Status            string              `json:"status"`
	Code              int                 `json:"code"`
	RemainingRequests int                 `json:"remaining_monthly_allowance"`
}

// ImagesResponseData holds the per-game image collections
type ImagesResponseData struct {
	Images  map[string][]Image `json:"images"`
	BaseURL ImageBaseURL       `json:"base_url"`
	Count   int                `json:"count"`
}

// ImageBaseURL holds URL prefixes for each image size
type ImageBaseURL struct {
	Original string `json:"original"`
	Small    string `json:"small"`
	Thumb    string `json:"thumb"`
	Cropped  string `json:"cropped_center_thumb"`
	Medium   string `json:"medium"`
	Large    string `json:"large"`
}

// Game represents a game from TheGamesDB
type Game struct {
	GameTitle   string `json:"game_title"`
	ReleaseDate string `json:"release_date"`
	Platform    int    `json:"platform"`
	ID          int    `json:"id"`
}

// Image represents boxart, screenshots and other artwork
type Image struct {
	Type       string `json:"type"`
	Side       string `json:"side"`
	Filename   string `json:"filename"`
	Resolution string `json:"resolution"`
	ID         int    `json:"id"`
}

const (
	imageTypeBoxart     = "boxart"
	imageTypeScreenshot = "screenshot"
	boxartSideFront     = "front"
)
