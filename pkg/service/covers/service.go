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

// Package covers runs batch cover lookups against a single provider.
package covers

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/ZaparooProject/zaparoo-covers/v2/pkg/api/models"
	"github.com/ZaparooProject/zaparoo-covers/v2/pkg/api/validation"
	coverspkg "github.com/ZaparooProject/zaparoo-covers/v2/pkg/covers"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ErrRunInProgress is returned when Run is called while another batch is
// still being processed by the same service.
var ErrRunInProgress = errors.New("a batch run is already in progress")

// Result is the outcome of a completed batch run. Items has the same length
// and order as the input.
type Result struct {
	RunID    string
	Provider string
	Items    []coverspkg.GameItem
	Found    int
	Total    int
	Duration time.Duration
}

// Service processes batches of game items one at a time
type Service struct {
	clock    clockwork.Clock
	progress *ProgressTracker
	delays   func() map[string]time.Duration
	running  atomic.Bool
}

// Option configures a Service
type Option func(*Service)

// WithClock sets the clock used for pacing between items
func WithClock(clock clockwork.Clock) Option {
	return func(s *Service) {
		s.clock = clock
	}
}

// WithNotifications sends progress notifications to the given channel
func WithNotifications(ns chan<- models.Notification) Option {
	return func(s *Service) {
		s.progress = NewProgressTracker(ns)
	}
}

// WithItemDelays overrides the pause between items for the named providers
func WithItemDelays(delays map[string]time.Duration) Option {
	fixed := make(map[string]time.Duration, len(delays))
	for name, d := range delays {
		fixed[name] = d
	}
	return WithItemDelaySource(func() map[string]time.Duration {
		return fixed
	})
}

// WithItemDelaySource looks up the delay overrides at the start of every
// run, so changes to the source apply to the next batch.
func WithItemDelaySource(source func() map[string]time.Duration) Option {
	return func(s *Service) {
		s.delays = source
	}
}

// NewService creates a new batch service
func NewService(opts ...Option) *Service {
	s := &Service{
		clock:    clockwork.NewRealClock(),
		progress: NewProgressTracker(nil),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Progress returns a snapshot of the current or last run
func (s *Service) Progress() *Progress {
	return s.progress.Get()
}

// Run parses the input and looks up a cover for every item using the
// provider. Input and credential problems abort the run before any request
// is made. Failures for a single item are logged and leave that item without
// a cover. Cancelling ctx stops the run and returns the context's error.
func (s *Service) Run(ctx context.Context, provider coverspkg.Provider, input []byte) (*Result, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, ErrRunInProgress
	}
	defer s.running.Store(false)

	started := s.clock.Now()
	info := provider.Info()
	runID := uuid.New().String()
	logger := log.With().Str("runID", runID).Str("provider", info.Name).Logger()

	s.progress.Start(runID, info.Name)

	items, err := validation.ParseItems(input)
	if err != nil {
		logger.Error().Err(err).Msg("batch input rejected")
		s.progress.Abort(err)
		return nil, err
	}

	if err := provider.CheckCredentials(); err != nil {
		err = fmt.Errorf("%s: %w", info.Name, err)
		logger.Error().Err(err).Msg("provider credentials missing")
		s.progress.Abort(err)
		return nil, err
	}

	s.progress.SetRunning(len(items))
	logger.Info().Int("items", len(items)).Msg("starting batch run")

	result := &Result{
		RunID:    runID,
		Provider: info.Name,
		Items:    items,
		Total:    len(items),
	}

	if len(items) > 0 {
		if err := provider.Prepare(ctx); err != nil {
			logger.Warn().Err(err).Msg("provider preparation failed, lookups will fail")
			s.progress.SetError(err)
		}
	}

	delay := s.itemDelay(info)
	for i := range items {
		if err := ctx.Err(); err != nil {
			return nil, s.cancelled(logger, err)
		}

		item := &items[i]
		s.progress.SetCurrentGame(item.Title)

		imageURL, err := s.lookup(ctx, provider, item)
		switch {
		case err != nil && ctx.Err() != nil:
			return nil, s.cancelled(logger, ctx.Err())
		case err != nil:
			logger.Warn().Err(err).
				Int("index", i).
				Str("title", item.Title).
				Str("system", item.SystemName).
				Msg("cover lookup failed")
			s.progress.SetError(err)
		case imageURL == "":
			logger.Debug().Int("index", i).Str("title", item.Title).Msg("no cover found")
		case !coverspkg.IsCoverURL(imageURL):
			logger.Warn().Int("index", i).Str("url", imageURL).Msg("ignoring invalid cover URL")
		default:
			item.ImageURL = imageURL
			result.Found++
			logger.Debug().Int("index", i).Str("title", item.Title).Str("url", imageURL).Msg("found cover")
		}

		s.progress.ItemDone(item.HasCover())

		if i < len(items)-1 {
			if err := s.wait(ctx, delay); err != nil {
				return nil, s.cancelled(logger, err)
			}
		}
	}

	result.Duration = s.clock.Since(started)
	s.progress.Complete()

	logger.Info().
		Int("found", result.Found).
		Int("total", result.Total).
		Dur("duration", result.Duration).
		Msg("batch run completed")

	return result, nil
}

// lookup runs the per-item pipeline: normalize, search, select, resolve.
// An empty URL with a nil error means no cover was found.
func (*Service) lookup(ctx context.Context, provider coverspkg.Provider, item *coverspkg.GameItem) (string, error) {
	platformIDs := coverspkg.NormalizePlatform(provider.Platforms(), item.SystemName)

	candidates, err := provider.Search(ctx, item.Title, platformIDs)
	if err != nil {
		return "", fmt.Errorf("search failed: %w", err)
	}

	candidate, ok := coverspkg.SelectCandidate(candidates, item.Title, platformIDs)
	if !ok {
		return "", nil
	}

	imageURL, err := provider.ResolveImage(ctx, candidate)
	if err != nil {
		return "", fmt.Errorf("image lookup failed for %q: %w", candidate.Name, err)
	}
	return imageURL, nil
}

func (s *Service) itemDelay(info coverspkg.ProviderInfo) time.Duration {
	if s.delays == nil {
		return info.ItemDelay
	}
	if d, ok := s.delays()[info.Name]; ok {
		return d
	}
	return info.ItemDelay
}

func (s *Service) wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-s.clock.After(d):
		return nil
	}
}

func (s *Service) cancelled(logger zerolog.Logger, err error) error {
	logger.Warn().Err(err).Msg("batch run cancelled")
	s.progress.Cancel()
	return fmt.Errorf("batch run cancelled: %w", err)
}
