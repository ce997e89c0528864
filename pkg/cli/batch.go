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
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/ZaparooProject/zaparoo-covers/v2/pkg/api"
	"github.com/ZaparooProject/zaparoo-covers/v2/pkg/api/methods"
	"github.com/ZaparooProject/zaparoo-covers/v2/pkg/config"
	coverspkg "github.com/ZaparooProject/zaparoo-covers/v2/pkg/covers"
	"github.com/ZaparooProject/zaparoo-covers/v2/pkg/export"
	"github.com/ZaparooProject/zaparoo-covers/v2/pkg/service/broker"
	"github.com/ZaparooProject/zaparoo-covers/v2/pkg/service/covers"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

const stdio = "-"

var errNoInput = errors.New("an input file is required, use -input <file> or -input - for stdin")

// Env holds everything a batch run or the API server needs.
type Env struct {
	Config   *config.Instance
	Fs       afero.Fs
	Registry *covers.Registry
	Service  *covers.Service
	// Broker is optional and feeds the API events stream.
	Broker *broker.Broker
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	// WatchConfig reloads the config from disk when it changes while
	// serving. Requires an OS-backed filesystem.
	WatchConfig bool
}

// Post applies flags that need the config to be loaded.
func (f *Flags) Post(cfg *config.Instance) {
	if *f.Debug {
		cfg.SetDebugLogging(true)
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
}

// Credentials returns the credentials given on the command line, falling
// back to auth.toml for any that are missing.
func (f *Flags) Credentials(cfg *config.Instance, provider string) coverspkg.Credentials {
	creds := coverspkg.Credentials{
		APIKey:       *f.APIKey,
		ClientID:     *f.ClientID,
		ClientSecret: *f.ClientSecret,
	}
	if cfg != nil {
		creds = creds.WithFallback(cfg.ProviderCredentials(provider))
	}
	return creds
}

func (f *Flags) providerName(cfg *config.Instance) string {
	if *f.Provider != "" {
		return *f.Provider
	}
	if cfg != nil && cfg.Provider() != "" {
		return cfg.Provider()
	}
	return config.DefaultProvider
}

// outputTarget resolves the output path and format. A -format that
// disagrees with the configured output's extension swaps the extension,
// unless -output was given explicitly.
func (f *Flags) outputTarget(cfg *config.Instance) (path, format string, err error) {
	path = *f.Output
	if path == "" && cfg != nil {
		path = cfg.Output()
	}
	if path == "" {
		path = config.DefaultOutput
	}

	format = strings.ToLower(*f.Format)
	switch format {
	case "":
		if path == stdio {
			return path, export.FormatJSON, nil
		}
		return path, export.FormatFromPath(path), nil
	case export.FormatJSON, export.FormatCSV:
	default:
		return "", "", fmt.Errorf("unsupported output format: %s", *f.Format)
	}

	if path != stdio && !f.IsFlagPassed("output") && export.FormatFromPath(path) != format {
		path = strings.TrimSuffix(path, filepath.Ext(path)) + "." + format
	}
	return path, format, nil
}

func (f *Flags) readInput(env Env) ([]byte, error) {
	path := *f.Input
	if path == "" {
		return nil, errNoInput
	}

	var data []byte
	var err error
	if path == stdio {
		data, err = io.ReadAll(env.Stdin)
	} else {
		data, err = afero.ReadFile(env.Fs, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}

	if path != stdio && export.FormatFromPath(path) == export.FormatCSV {
		return export.CSVToJSON(bytes.NewReader(data))
	}
	return data, nil
}

// Run enriches the input list with covers and writes the result. A summary
// line is printed to stderr.
func (f *Flags) Run(ctx context.Context, env Env) (*covers.Result, error) {
	name := f.providerName(env.Config)

	outPath, format, err := f.outputTarget(env.Config)
	if err != nil {
		return nil, err
	}

	provider, err := env.Registry.New(name, f.Credentials(env.Config, name))
	if err != nil {
		return nil, err
	}

	input, err := f.readInput(env)
	if err != nil {
		return nil, err
	}

	result, err := env.Service.Run(ctx, provider, input)
	if err != nil {
		return nil, err
	}

	if outPath == stdio {
		err = export.Encode(env.Stdout, result.Items, format)
	} else {
		err = export.WriteFile(env.Fs, outPath, result.Items, format)
	}
	if err != nil {
		return nil, err
	}

	_, _ = fmt.Fprintf(env.Stderr, "%d of %d games matched a cover\n", result.Found, result.Total)
	if outPath != stdio {
		_, _ = fmt.Fprintf(env.Stderr, "Saved to %s\n", outPath)
		log.Info().Str("path", outPath).Str("format", format).Msg("wrote results")
	}

	return result, nil
}

// ServeAPI runs the HTTP API until ctx is cancelled. The -serve value takes
// priority over the configured listen address.
func (f *Flags) ServeAPI(ctx context.Context, env Env) error {
	listen := *f.Serve
	if listen == "" && env.Config != nil {
		listen = env.Config.APIListen()
	}
	if listen == "" {
		listen = config.DefaultListen
	}

	if env.Config != nil && env.WatchConfig {
		if err := env.Config.Watch(ctx); err != nil {
			log.Warn().Err(err).Msg("config changes will need a restart")
		}
	}

	_, _ = fmt.Fprintf(env.Stderr, "Zaparoo Covers API listening on %s\n", listen)
	return api.Start(ctx, methods.Env{
		Config:   env.Config,
		Registry: env.Registry,
		Service:  env.Service,
		Broker:   env.Broker,
	}, listen)
}
