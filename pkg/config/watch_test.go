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

package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatch_ReloadsOnChange(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg, err := NewConfig(afero.NewOsFs(), dir, BaseDefaults)
	require.NoError(t, err)
	require.Equal(t, DefaultProvider, cfg.Provider())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, cfg.Watch(ctx))

	require.NoError(t, os.WriteFile(filepath.Join(dir, CfgFile), []byte(`provider = "igdb"`), 0o600))
	assert.Eventually(t, func() bool {
		return cfg.Provider() == "igdb"
	}, 5*time.Second, 20*time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(dir, AuthFile), []byte(`
["https://api.rawg.io"]
bearer = "fresh-key"
`), 0o600))
	assert.Eventually(t, func() bool {
		return cfg.ProviderCredentials("rawg").APIKey == "fresh-key"
	}, 5*time.Second, 20*time.Millisecond)
}

func TestWatch_KeepsValuesOnInvalidFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, CfgFile), []byte(`provider = "thegamesdb"`), 0o600))
	cfg, err := NewConfig(afero.NewOsFs(), dir, BaseDefaults)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, cfg.Watch(ctx))

	require.NoError(t, os.WriteFile(filepath.Join(dir, CfgFile), []byte(`provider = "nope"`), 0o600))
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, "thegamesdb", cfg.Provider())
}

func TestWatch_MissingDirectory(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	cfg, err := NewConfig(fs, "/does/not/exist/on/disk", BaseDefaults)
	require.NoError(t, err)

	require.Error(t, cfg.Watch(context.Background()))
}
