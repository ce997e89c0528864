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
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ZaparooProject/zaparoo-covers/v2/pkg/api/validation"
	"github.com/ZaparooProject/zaparoo-covers/v2/pkg/covers/igdb"
	"github.com/ZaparooProject/zaparoo-covers/v2/pkg/covers/rawg"
	"github.com/ZaparooProject/zaparoo-covers/v2/pkg/covers/thegamesdb"
	"github.com/ZaparooProject/zaparoo-covers/v2/pkg/helpers/syncutil"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

type Values struct {
	Provider     string     `toml:"provider" validate:"provider"`
	Output       string     `toml:"output"`
	API          API        `toml:"api"`
	Delays       Delays     `toml:"delays,omitempty"`
	Publishers   Publishers `toml:"publishers,omitempty"`
	Telemetry    Telemetry  `toml:"telemetry,omitempty"`
	DebugLogging bool       `toml:"debug_logging"`
}

type Publishers struct {
	MQTT []MQTTPublisher `toml:"mqtt,omitempty" validate:"dive"`
}

// MQTTPublisher forwards covers notifications to an MQTT broker. Filter
// limits which notification methods are sent, empty sends all.
type MQTTPublisher struct {
	Broker   string   `toml:"broker" validate:"required"`
	Topic    string   `toml:"topic" validate:"required"`
	Username string   `toml:"username,omitempty"`
	Password string   `toml:"password,omitempty"`
	Filter   []string `toml:"filter,omitempty"`
}

// Telemetry controls opt-in error reporting. Nothing is sent unless
// error_reporting is set and a DSN is given.
type Telemetry struct {
	SentryDSN      string `toml:"sentry_dsn,omitempty" validate:"omitempty,url"`
	ErrorReporting bool   `toml:"error_reporting,omitempty"`
}

type API struct {
	Listen         string   `toml:"listen" validate:"omitempty,hostname_port"`
	AllowedOrigins []string `toml:"allowed_origins,omitempty,multiline"`
	// Requests per minute per client IP, 0 uses the default.
	RateLimit int `toml:"rate_limit,omitempty" validate:"gte=0"`
}

// Delays override the pause between items for a provider, in milliseconds.
type Delays struct {
	RAWG       *int `toml:"rawg,omitempty" validate:"omitempty,gte=0"`
	TheGamesDB *int `toml:"thegamesdb,omitempty" validate:"omitempty,gte=0"`
	IGDB       *int `toml:"igdb,omitempty" validate:"omitempty,gte=0"`
}

var BaseDefaults = Values{
	Provider: DefaultProvider,
	Output:   DefaultOutput,
	API: API{
		Listen: DefaultListen,
	},
}

type Instance struct {
	fs       afero.Fs
	auth     map[string]CredentialEntry
	cfgPath  string
	authPath string
	vals     Values
	defaults Values
	mu       syncutil.RWMutex
}

// NewConfig loads covers.toml from configDir, writing the defaults to disk
// first if the file doesn't exist yet. An auth.toml next to it is loaded if
// present.
//
//nolint:gocritic // config struct copied for immutability
func NewConfig(fs afero.Fs, configDir string, defaults Values) (*Instance, error) {
	cfgPath := filepath.Join(configDir, CfgFile)

	cfg := Instance{
		fs:       fs,
		cfgPath:  cfgPath,
		authPath: filepath.Join(configDir, AuthFile),
		vals:     defaults,
		defaults: defaults,
		auth:     make(map[string]CredentialEntry),
	}

	exists, err := afero.Exists(fs, cfgPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if !exists {
		log.Info().Msg("saving new default config to disk")

		if err := fs.MkdirAll(configDir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create config directory: %w", err)
		}

		if err := cfg.Save(); err != nil {
			return nil, err
		}
	}

	if err := cfg.Load(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Instance) Load() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cfgPath == "" {
		return errors.New("config path not set")
	}

	data, err := afero.ReadFile(c.fs, c.cfgPath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	// Start with defaults, then unmarshal file values on top.
	// This ensures fields not present in the file retain their default values.
	newVals := c.defaults
	err = toml.Unmarshal(data, &newVals)
	if err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validation.DefaultValidator.Validate(&newVals); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	c.vals = newVals

	authData, err := afero.ReadFile(c.fs, c.authPath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		c.auth = make(map[string]CredentialEntry)
	case err != nil:
		return fmt.Errorf("failed to read auth file: %w", err)
	default:
		c.auth = LoadAuthFromData(authData)
		log.Info().Msgf("loaded %d auth entries", len(c.auth))
	}

	return nil
}

func (c *Instance) Save() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cfgPath == "" {
		return errors.New("config path not set")
	}

	data, err := toml.Marshal(&c.vals)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := afero.WriteFile(c.fs, c.cfgPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func (c *Instance) Provider() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Provider
}

func (c *Instance) Output() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Output
}

func (c *Instance) APIListen() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.API.Listen
}

func (c *Instance) AllowedOrigins() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]string(nil), c.vals.API.AllowedOrigins...)
}

func (c *Instance) RateLimit() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.API.RateLimit
}

// ItemDelays returns the configured per-provider delay overrides, keyed by
// provider name. Providers without an override are left out.
func (c *Instance) ItemDelays() map[string]time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()

	delays := make(map[string]time.Duration)
	add := func(name string, ms *int) {
		if ms != nil {
			delays[name] = time.Duration(*ms) * time.Millisecond
		}
	}
	add(rawg.Name, c.vals.Delays.RAWG)
	add(thegamesdb.Name, c.vals.Delays.TheGamesDB)
	add(igdb.Name, c.vals.Delays.IGDB)
	return delays
}

func (c *Instance) MQTTPublishers() []MQTTPublisher {
	c.mu.RLock()
	defer c.mu.RUnlock()
	pubs := make([]MQTTPublisher, len(c.vals.Publishers.MQTT))
	for i, p := range c.vals.Publishers.MQTT {
		p.Filter = append([]string(nil), p.Filter...)
		pubs[i] = p
	}
	return pubs
}

func (c *Instance) ErrorReporting() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Telemetry.ErrorReporting
}

func (c *Instance) SentryDSN() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Telemetry.SentryDSN
}

func (c *Instance) DebugLogging() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.DebugLogging
}

func (c *Instance) SetDebugLogging(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.DebugLogging = enabled
	if enabled {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
