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
	"path/filepath"
	"testing"
	"time"

	"github.com/ZaparooProject/zaparoo-covers/v2/pkg/covers"
	"github.com/ZaparooProject/zaparoo-covers/v2/pkg/testing/helpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfigDir = "/config/zaparoo-covers"

func TestNewConfig_WritesDefaults(t *testing.T) {
	t.Parallel()

	fs := helpers.NewMemoryFS()
	cfg, err := NewConfig(fs.Fs, testConfigDir, BaseDefaults)
	require.NoError(t, err)

	assert.True(t, fs.FileExists(filepath.Join(testConfigDir, CfgFile)))
	assert.Equal(t, DefaultProvider, cfg.Provider())
	assert.Equal(t, DefaultOutput, cfg.Output())
	assert.Equal(t, DefaultListen, cfg.APIListen())
	assert.False(t, cfg.DebugLogging())
	assert.Empty(t, cfg.ItemDelays())

	data, err := fs.ReadFile(filepath.Join(testConfigDir, CfgFile))
	require.NoError(t, err)
	assert.Contains(t, string(data), `provider = 'rawg'`)
}

func TestNewConfig_ReadsFile(t *testing.T) {
	t.Parallel()

	fs := helpers.NewMemoryFS()
	require.NoError(t, fs.CreateConfigFile(filepath.Join(testConfigDir, CfgFile), `
provider = "igdb"
debug_logging = true
output = "/tmp/out.json"

[api]
listen = "127.0.0.1:9000"
allowed_origins = ["https://zaparoo.app"]
rate_limit = 30

[delays]
rawg = 500
igdb = 0
`))

	cfg, err := NewConfig(fs.Fs, testConfigDir, BaseDefaults)
	require.NoError(t, err)

	assert.Equal(t, "igdb", cfg.Provider())
	assert.True(t, cfg.DebugLogging())
	assert.Equal(t, "/tmp/out.json", cfg.Output())
	assert.Equal(t, "127.0.0.1:9000", cfg.APIListen())
	assert.Equal(t, []string{"https://zaparoo.app"}, cfg.AllowedOrigins())
	assert.Equal(t, 30, cfg.RateLimit())
	assert.Equal(t, map[string]time.Duration{
		"rawg": 500 * time.Millisecond,
		"igdb": 0,
	}, cfg.ItemDelays())
}

func TestNewConfig_Telemetry(t *testing.T) {
	t.Parallel()

	fs := helpers.NewMemoryFS()
	require.NoError(t, fs.CreateConfigFile(filepath.Join(testConfigDir, CfgFile), `
[telemetry]
error_reporting = true
sentry_dsn = "https://public@sentry.example.com/1"
`))

	cfg, err := NewConfig(fs.Fs, testConfigDir, BaseDefaults)
	require.NoError(t, err)

	assert.True(t, cfg.ErrorReporting())
	assert.Equal(t, "https://public@sentry.example.com/1", cfg.SentryDSN())
}

func TestNewConfig_MQTTPublishers(t *testing.T) {
	t.Parallel()

	fs := helpers.NewMemoryFS()
	require.NoError(t, fs.CreateConfigFile(filepath.Join(testConfigDir, CfgFile), `
[[publishers.mqtt]]
broker = "localhost:1883"
topic = "zaparoo/covers"

[[publishers.mqtt]]
broker = "ssl://mqtt.example.com:8883"
topic = "home/covers"
username = "user"
password = "pass"
filter = ["covers.complete"]
`))

	cfg, err := NewConfig(fs.Fs, testConfigDir, BaseDefaults)
	require.NoError(t, err)

	pubs := cfg.MQTTPublishers()
	require.Len(t, pubs, 2)
	assert.Equal(t, "localhost:1883", pubs[0].Broker)
	assert.Empty(t, pubs[0].Filter)
	assert.Equal(t, "user", pubs[1].Username)
	assert.Equal(t, []string{"covers.complete"}, pubs[1].Filter)

	pubs[1].Filter[0] = "changed"
	assert.Equal(t, []string{"covers.complete"}, cfg.MQTTPublishers()[1].Filter)
}

func TestNewConfig_PartialFileKeepsDefaults(t *testing.T) {
	t.Parallel()

	fs := helpers.NewMemoryFS()
	require.NoError(t, fs.CreateConfigFile(filepath.Join(testConfigDir, CfgFile), `debug_logging = true`))

	cfg, err := NewConfig(fs.Fs, testConfigDir, BaseDefaults)
	require.NoError(t, err)

	assert.True(t, cfg.DebugLogging())
	assert.Equal(t, DefaultProvider, cfg.Provider())
	assert.Equal(t, DefaultListen, cfg.APIListen())
	assert.False(t, cfg.ErrorReporting())
	assert.Empty(t, cfg.SentryDSN())
}

func TestNewConfig_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		message string
	}{
		{name: "bad toml", content: `provider = `, message: "failed to unmarshal config"},
		{name: "unknown provider", content: `provider = "mobygames"`, message: `provider "mobygames" not found`},
		{name: "bad listen", content: "[api]\nlisten = \"nope\"", message: "listen must be a host:port address"},
		{name: "negative delay", content: "[delays]\nrawg = -1", message: "rawg must be greater than or equal to 0"},
		{name: "mqtt missing topic", content: "[[publishers.mqtt]]\nbroker = \"localhost:1883\"", message: "topic is required"},
		{name: "bad dsn", content: "[telemetry]\nsentry_dsn = \"not a url\"", message: "sentry_dsn must be a valid URL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			fs := helpers.NewMemoryFS()
			require.NoError(t, fs.CreateConfigFile(filepath.Join(testConfigDir, CfgFile), tt.content))

			_, err := NewConfig(fs.Fs, testConfigDir, BaseDefaults)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestNewConfig_LoadsAuth(t *testing.T) {
	t.Parallel()

	fs := helpers.NewMemoryFS()
	require.NoError(t, fs.CreateAuthFile(filepath.Join(testConfigDir, AuthFile), []byte(`
["https://api.rawg.io"]
bearer = "rawg-key"

[creds."https://api.thegamesdb.net"]
bearer = "tgdb-key"

[auth.creds."https://api.igdb.com"]
username = "twitch-id"
password = "twitch-secret"
`)))

	cfg, err := NewConfig(fs.Fs, testConfigDir, BaseDefaults)
	require.NoError(t, err)

	assert.Equal(t, "rawg-key", cfg.ProviderCredentials("rawg").APIKey)
	assert.Equal(t, "tgdb-key", cfg.ProviderCredentials("TheGamesDB").APIKey)

	igdbCreds := cfg.ProviderCredentials("igdb")
	assert.Equal(t, "twitch-id", igdbCreds.ClientID)
	assert.Equal(t, "twitch-secret", igdbCreds.ClientSecret)

	assert.Equal(t, covers.Credentials{}, cfg.ProviderCredentials("mobygames"))
}

func TestNewConfig_NoAuthFile(t *testing.T) {
	t.Parallel()

	cfg, err := NewConfig(helpers.NewMemoryFS().Fs, testConfigDir, BaseDefaults)
	require.NoError(t, err)
	assert.Equal(t, covers.Credentials{}, cfg.ProviderCredentials("rawg"))
	assert.Nil(t, cfg.LookupAuth("https://api.rawg.io/api/games"))
}

func TestConfig_SaveRoundTrip(t *testing.T) {
	t.Parallel()

	fs := helpers.NewMemoryFS()
	require.NoError(t, fs.CreateConfigFile(filepath.Join(testConfigDir, CfgFile), "[delays]\nthegamesdb = 2000"))

	cfg, err := NewConfig(fs.Fs, testConfigDir, BaseDefaults)
	require.NoError(t, err)
	require.NoError(t, cfg.Save())
	require.NoError(t, cfg.Load())

	assert.Equal(t, map[string]time.Duration{"thegamesdb": 2 * time.Second}, cfg.ItemDelays())
}

func TestConfig_AllowedOriginsIsCopy(t *testing.T) {
	t.Parallel()

	fs := helpers.NewMemoryFS()
	require.NoError(t, fs.CreateConfigFile(filepath.Join(testConfigDir, CfgFile),
		"[api]\nallowed_origins = [\"https://a.example\"]"))

	cfg, err := NewConfig(fs.Fs, testConfigDir, BaseDefaults)
	require.NoError(t, err)

	origins := cfg.AllowedOrigins()
	origins[0] = "https://changed.example"
	assert.Equal(t, []string{"https://a.example"}, cfg.AllowedOrigins())
}
