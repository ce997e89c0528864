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

package models

import (
	"github.com/ZaparooProject/zaparoo-covers/v2/pkg/covers"
)

type ProviderResponse struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	Website      string `json:"website"`
	RequiresAuth bool   `json:"requiresAuth"`
}

type CoversResponse struct {
	RunID    string            `json:"runId"`
	Provider string            `json:"provider"`
	Items    []covers.GameItem `json:"items"`
	Found    int               `json:"found"`
	Total    int               `json:"total"`
}
