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

package cli

import (
	"flag"
	"fmt"
	"io"

	"github.com/ZaparooProject/zaparoo-covers/v2/internal/telemetry"
	"github.com/ZaparooProject/zaparoo-covers/v2/pkg/config"
	"github.com/ZaparooProject/zaparoo-covers/v2/pkg/helpers"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

type Flags struct {
	set          *flag.FlagSet
	Provider     *string
	Input        *string
	Output       *string
	Format       *string
	Serve        *string
	APIKey       *string
	ClientID     *string
	ClientSecret *string
	Debug        *bool
	Version      *bool
}

// SetupFlags defines all CLI flags on the given flag set.
func SetupFlags(set *flag.FlagSet) *Flags {
	return &Flags{
		set: set,
		Provider: set.String(
			"provider",
			"",
			"cover provider to use: rawg, thegamesdb or igdb (default from config)",
		),
		Input: set.String(
			"input",
			"",
			"JSON or CSV game list to enrich, - for stdin",
		),
		Output: set.String(
			"output",
			"",
			"file to write the enriched list to, - for stdout (default from config)",
		),
		Format: set.String(
			"format",
			"",
			"output format: json or csv (default from output extension)",
		),
		Serve: set.String(
			"serve",
			"",
			"start the HTTP API on the given address instead of running a batch",
		),
		APIKey: set.String(
			"key",
			"",
			"provider API key (RAWG, TheGamesDB)",
		),
		ClientID: set.String(
			"client-id",
			"",
			"provider client ID (IGDB)",
		),
		ClientSecret: set.String(
			"client-secret",
			"",
			"provider client secret (IGDB)",
		),
		Debug: set.Bool(
			"debug",
			false,
			"enable debug logging",
		),
		Version: set.Bool(
			"version",
			false,
			"print version and exit",
		),
	}
}

// Parse parses the command line arguments, not including the program name.
func (f *Flags) Parse(args []string) error {
	if err := f.set.Parse(args); err != nil {
		return fmt.Errorf("failed to parse flags: %w", err)
	}
	return nil
}

// IsFlagPassed reports whether the named flag was set on the command line.
func (f *Flags) IsFlagPassed(name string) bool {
	found := false
	f.set.Visit(func(fl *flag.Flag) {
		if fl.Name == name {
			found = true
		}
	})
	return found
}

// Pre actions any immediate flags that don't require environment setup.
// Returns true if the program should exit.
func (f *Flags) Pre(w io.Writer) bool {
	if *f.Version {
		_, _ = fmt.Fprintf(w, "Zaparoo Covers v%s\n", config.AppVersion)
		return true
	}
	return false
}

// ServeMode reports whether the HTTP API was requested.
func (f *Flags) ServeMode() bool {
	return f.IsFlagPassed("serve")
}

// Setup initializes logging and the user config.
//
//nolint:gocritic // config struct copied for immutability
func Setup(
	fs afero.Fs,
	configDir string,
	logDir string,
	defaultConfig config.Values,
	writers []io.Writer,
) (*config.Instance, error) {
	// Ensure directories exist before logging initialization
	if err := helpers.EnsureDirectories(configDir, logDir); err != nil {
		return nil, fmt.Errorf("error creating directories: %w", err)
	}

	if err := helpers.InitLogging(logDir, writers); err != nil {
		return nil, fmt.Errorf("error initializing logging: %w", err)
	}

	cfg, err := config.NewConfig(fs, configDir, defaultConfig)
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}

	if cfg.DebugLogging() {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	// Initialize error reporting (opt-in)
	if err := telemetry.Init(
		cfg.ErrorReporting(),
		cfg.SentryDSN(),
		config.AppVersion,
	); err != nil {
		log.Warn().Err(err).Msg("failed to initialize error reporting")
	}

	return cfg, nil
}
