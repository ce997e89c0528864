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

package rawg

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ZaparooProject/zaparoo-covers/v2/pkg/covers"
	"github.com/ZaparooProject/zaparoo-covers/v2/pkg/shared/httpclient"
	"github.com/rs/zerolog/log"
)

const (
	// Name is the registry name of the provider
	Name = "rawg"

	// APIURL is used to look up credentials in auth.toml
	APIURL = "https://api.rawg.io"

	defaultBaseURL = APIURL + "/api"

	pageSize = 10

	// RAWG allows unauthenticated use at a low rate, one item a second
	// keeps well inside it
	defaultItemDelay = 1000 * time.Millisecond
)

// RAWG implements the covers.Provider interface for the RAWG video game
// database. An API key is optional.
type RAWG struct {
	client    *httpclient.Client
	platforms covers.PlatformTable
	baseURL   string
	apiKey    string
}

// Option configures a RAWG instance
type Option func(*RAWG)

// WithBaseURL overrides the API base URL
func WithBaseURL(u string) Option {
	return func(r *RAWG) {
		r.baseURL = strings.TrimRight(u, "/")
	}
}

// WithHTTPClient overrides the HTTP client
func WithHTTPClient(c *httpclient.Client) Option {
	return func(r *RAWG) {
		r.client = c
	}
}

// NewRAWG creates a new RAWG instance
func NewRAWG(creds covers.Credentials, opts ...Option) *RAWG {
	r := &RAWG{
		client:    httpclient.DefaultClient,
		platforms: NewPlatformTable(),
		baseURL:   defaultBaseURL,
		apiKey:    strings.TrimSpace(creds.APIKey),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// NewPlatformTable builds the RAWG platform table
func NewPlatformTable() covers.PlatformTable {
	return covers.NewPlatformTable(func(ids covers.PlatformIDs) []int { return ids.RAWG })
}

// Info returns provider information
func (*RAWG) Info() covers.ProviderInfo {
	return covers.ProviderInfo{
		Name:         Name,
		Description:  "RAWG.io open video game database",
		Website:      "https://rawg.io",
		RequiresAuth: false,
		ItemDelay:    defaultItemDelay,
	}
}

// Platforms returns the RAWG platform table
func (r *RAWG) Platforms() covers.PlatformTable {
	return r.platforms
}

// CheckCredentials always succeeds, the key is optional
func (*RAWG) CheckCredentials() error {
	return nil
}

// Prepare has nothing to do for RAWG
func (r *RAWG) Prepare(_ context.Context) error {
	if r.apiKey == "" {
		log.Info().Msg("no RAWG API key set, using unauthenticated access")
	}
	return nil
}

// Search searches for games matching the title
func (r *RAWG) Search(ctx context.Context, title string, platformIDs []int) ([]covers.Candidate, error) {
	searchURL, err := r.buildSearchURL(title, platformIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to build search URL: %w", err)
	}

	log.Debug().Str("title", title).Ints("platforms", platformIDs).Msg("RAWG search request")

	resp, err := r.client.Get(ctx, searchURL)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("Failed to close response body")
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, handleHTTPError(resp)
	}

	var apiResp SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	candidates := make([]covers.Candidate, 0, len(apiResp.Results))
	for i := range apiResp.Results {
		candidates = append(candidates, convertGameToCandidate(&apiResp.Results[i]))
	}

	return candidates, nil
}

// ResolveImage returns the candidate's background image as-is
func (*RAWG) ResolveImage(_ context.Context, candidate covers.Candidate) (string, error) {
	return candidate.ImageRef, nil
}

// buildSearchURL constructs the search URL for the RAWG API
func (r *RAWG) buildSearchURL(title string, platformIDs []int) (string, error) {
	u, err := url.Parse(r.baseURL + "/games")
	if err != nil {
		return "", fmt.Errorf("failed to parse RAWG search URL: %w", err)
	}

	params := url.Values{}
	params.Set("search", title)
	params.Set("page_size", strconv.Itoa(pageSize))
	if r.apiKey != "" {
		params.Set("key", r.apiKey)
	}
	if len(platformIDs) > 0 {
		params.Set("platforms", covers.JoinIDs(platformIDs, ","))
	}

	u.RawQuery = params.Encode()
	return u.String(), nil
}

func convertGameToCandidate(game *Game) covers.Candidate {
	platformIDs := make([]int, 0, len(game.Platforms))
	for _, slot := range game.Platforms {
		platformIDs = append(platformIDs, slot.Platform.ID)
	}

	return covers.Candidate{
		ID:          game.ID,
		Name:        game.Name,
		PlatformIDs: platformIDs,
		ImageRef:    game.BackgroundImage,
	}
}

// handleHTTPError handles HTTP error responses
func handleHTTPError(resp *http.Response) error {
	var apiErr ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil {
		msg := apiErr.Error
		if msg == "" {
			msg = apiErr.Detail
		}
		if msg != "" {
			return fmt.Errorf("RAWG HTTP error %d: %s", resp.StatusCode, msg)
		}
	}

	switch resp.StatusCode {
	case http.StatusTooManyRequests:
		return errors.New("rate limited by RAWG (429)")
	case http.StatusUnauthorized:
		return errors.New("authentication failed - check RAWG API key")
	default:
		return fmt.Errorf("RAWG HTTP error %d", resp.StatusCode)
	}
}
