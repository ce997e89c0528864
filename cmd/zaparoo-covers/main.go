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

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/ZaparooProject/zaparoo-covers/v2/internal/telemetry"
	"github.com/ZaparooProject/zaparoo-covers/v2/pkg/api/models"
	"github.com/ZaparooProject/zaparoo-covers/v2/pkg/cli"
	"github.com/ZaparooProject/zaparoo-covers/v2/pkg/config"
	"github.com/ZaparooProject/zaparoo-covers/v2/pkg/helpers"
	"github.com/ZaparooProject/zaparoo-covers/v2/pkg/service/covers"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

const notificationBufferSize = 100

func main() {
	if err := run(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func run() error {
	flags := cli.SetupFlags(flag.CommandLine)
	if err := flags.Parse(os.Args[1:]); err != nil {
		return err
	}

	if flags.Pre(os.Stdout) {
		return nil
	}

	// batch runs keep stderr for the summary unless debugging
	var logWriters []io.Writer
	if flags.ServeMode() || *flags.Debug {
		logWriters = []io.Writer{zerolog.ConsoleWriter{Out: os.Stderr}}
	}

	cfg, err := cli.Setup(
		afero.NewOsFs(),
		helpers.ConfigDir(),
		helpers.LogDir(),
		config.BaseDefaults,
		logWriters,
	)
	if err != nil {
		return err
	}
	defer telemetry.Close()

	defer func() {
		if err := recover(); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Panic: %s\n", err)
			log.Fatal().Msgf("panic: %v", err)
		}
	}()

	flags.Post(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ns := make(chan models.Notification, notificationBufferSize)
	b, stopNotifications := cli.StartNotifications(ctx, cfg, ns)
	defer stopNotifications()

	env := cli.Env{
		Config:   cfg,
		Fs:       afero.NewOsFs(),
		Registry: covers.NewRegistry(),
		Service: covers.NewService(
			covers.WithItemDelaySource(cfg.ItemDelays),
			covers.WithNotifications(ns),
		),
		Broker: b,
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,

		WatchConfig: true,
	}

	if flags.ServeMode() {
		log.Info().Str("version", config.AppVersion).Msg("starting in API mode")
		return flags.ServeAPI(ctx, env)
	}

	_, err = flags.Run(ctx, env)
	// nothing sends on ns once the run is over
	close(ns)
	return err
}
