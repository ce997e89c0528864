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

package helpers

import (
	"testing"

	"github.com/ZaparooProject/zaparoo-covers/v2/pkg/covers"
	"github.com/stretchr/testify/require"
)

// AssertValidCoverItems checks a batch result against its input: same
// length, same order, and every imageUrl either absent or an absolute URL.
func AssertValidCoverItems(t *testing.T, input, output []covers.GameItem) {
	t.Helper()

	require.Len(t, output, len(input), "output must have one item per input item")
	for i := range input {
		require.Equal(t, input[i].Title, output[i].Title, "item %d title changed", i)
		require.Equal(t, input[i].SystemName, output[i].SystemName, "item %d system changed", i)
		if output[i].HasCover() {
			require.True(t, covers.IsCoverURL(output[i].ImageURL),
				"item %d has invalid imageUrl %q", i, output[i].ImageURL)
		}
	}
}
