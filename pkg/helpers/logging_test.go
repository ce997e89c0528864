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
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/ZaparooProject/zaparoo-covers/v2/pkg/config"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureDirectories(t *testing.T) {
	t.Parallel()

	testRoot := t.TempDir()
	configDir := filepath.Join(testRoot, "config", "nested")
	logDir := filepath.Join(testRoot, "logs", "nested")

	require.NoError(t, EnsureDirectories(configDir, logDir))
	// Existing directories are fine.
	require.NoError(t, EnsureDirectories(configDir, logDir))

	for _, dir := range []string{configDir, logDir} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
		if runtime.GOOS != "windows" {
			assert.Equal(t, os.FileMode(0o750), info.Mode().Perm())
		}
	}
}

func TestEnsureDirectoriesErrorHandling(t *testing.T) {
	t.Parallel()

	err := EnsureDirectories("/proc/invalid\x00path", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create config directory")

	err = EnsureDirectories(t.TempDir(), "/proc/invalid\x00path")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create log directory")
}

func TestInitLogging(t *testing.T) {
	// Cannot use t.Parallel() because InitLogging modifies global log.Logger
	original := log.Logger
	t.Cleanup(func() { log.Logger = original })

	logDir := filepath.Join(t.TempDir(), "logs")
	var buf bytes.Buffer
	require.NoError(t, InitLogging(logDir, []io.Writer{&buf}))

	log.Error().Err(errors.New("boom")).Str("provider", "rawg").Msg("lookup failed")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "lookup failed", entry["message"])
	assert.Equal(t, "rawg", entry["provider"])
	assert.Equal(t, "boom", entry["error"])
	assert.Contains(t, entry, "time")
	assert.Contains(t, entry["caller"], "logging_test.go")

	data, err := os.ReadFile(filepath.Join(logDir, config.LogFile))
	require.NoError(t, err)
	assert.Contains(t, string(data), "lookup failed")

	buf.Reset()
	_, err = LogWriter().Write([]byte("raw line\n"))
	require.NoError(t, err)
	assert.Equal(t, "raw line\n", buf.String())
}

func TestInitLogging_InvalidDir(t *testing.T) {
	original := log.Logger
	t.Cleanup(func() { log.Logger = original })

	err := InitLogging("/proc/invalid\x00path", nil)
	require.Error(t, err)
}

func TestPaths(t *testing.T) {
	t.Parallel()

	assert.Equal(t, config.AppName, filepath.Base(ConfigDir()))
	assert.Equal(t, config.AppName, filepath.Base(LogDir()))
}
