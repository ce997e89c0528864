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

package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/ZaparooProject/zaparoo-covers/v2/pkg/api/methods"
	apimiddleware "github.com/ZaparooProject/zaparoo-covers/v2/pkg/api/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"
)

const (
	// MaxRequestSize caps the body of a covers request.
	MaxRequestSize = 1 << 20
	// RequestTimeout applies to the quick read-only endpoints. Batch runs
	// are paced per item and are only bounded by the client connection.
	RequestTimeout    = 30 * time.Second
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 5 * time.Second
)

var defaultAllowedOrigins = []string{"https://*", "http://*", "capacitor://*"}

// NewRouter builds the HTTP API. The rate limiter cleanup goroutine stops
// when ctx is cancelled.
func NewRouter(ctx context.Context, env methods.Env) http.Handler {
	origins := defaultAllowedOrigins
	rateLimit := 0
	if env.Config != nil {
		if configured := env.Config.AllowedOrigins(); len(configured) > 0 {
			origins = configured
		}
		rateLimit = env.Config.RateLimit()
	}

	limiter := apimiddleware.NewIPRateLimiter(rateLimit, nil)
	limiter.StartCleanup(ctx)

	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.NoCache)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{
			"Accept",
			"Content-Type",
			methods.HeaderAPIKey,
			methods.HeaderClientID,
			methods.HeaderClientSecret,
		},
		ExposedHeaders: []string{},
	}))
	r.Use(apimiddleware.HTTPRateLimitMiddleware(limiter))

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(RequestTimeout))
		r.Get("/api/providers", methods.HandleProviders(env))
		r.Get("/api/progress", methods.HandleProgress(env))
	})

	r.Get("/api/events", methods.HandleEvents(env))

	r.With(middleware.RequestSize(MaxRequestSize)).
		Post("/api/covers/{provider}", methods.HandleCovers(env))

	return r
}

// Start serves the API on listen until ctx is cancelled.
func Start(ctx context.Context, env methods.Env, listen string) error {
	srv := &http.Server{
		Addr:              listen,
		Handler:           NewRouter(ctx, env),
		ReadHeaderTimeout: readHeaderTimeout,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("error shutting down http server")
		}
	}()

	log.Info().Str("listen", listen).Msg("starting http server")
	err := srv.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("error starting http server: %w", err)
	}
	log.Info().Msg("http server stopped")
	return nil
}
