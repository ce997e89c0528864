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

package thegamesdb

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
	Name = "thegamesdb"

	// APIURL is used to look up credentials in auth.toml
	APIURL = "https://api.thegamesdb.net"

	defaultBaseURL     = APIURL + "/v1"
	defaultImagePrefix = "https://cdn.thegamesdb.net/images/original/"

	// TheGamesDB API limits
	defaultItemDelay = 1000 * time.Millisecond
)

var errAPIKeyRequired = fmt.Errorf("%w: TheGamesDB requires an API key", covers.ErrMissingCredentials)

// TheGamesDB implements the covers.Provider interface for TheGamesDB API
type TheGamesDB struct {
	client    *httpclient.Client
	platforms covers.PlatformTable
	baseURL   string
	apiKey    string
}

// Option configures a TheGamesDB instance
type Option func(*TheGamesDB)

// WithBaseURL overrides the API base URL
func WithBaseURL(u string) Option {
	return func(tgdb *TheGamesDB) {
		tgdb.baseURL = strings.TrimRight(u, "/")
	}
}

// WithHTTPClient overrides the HTTP client
func WithHTTPClient(c *httpclient.Client) Option {
	return func(tgdb *TheGamesDB) {
		tgdb.client = c
	}
}

// NewTheGamesDB creates a new TheGamesDB instance
func NewTheGamesDB(creds covers.Credentials, opts ...Option) *TheGamesDB {
	tgdb := &TheGamesDB{
		client:    httpclient.DefaultClient,
		platforms: NewPlatformTable(),
		baseURL:   defaultBaseURL,
		apiKey:    strings.TrimSpace(creds.APIKey),
	}
	for _, opt := range opts {
		opt(tgdb)
	}
	return tgdb
}

// NewPlatformTable builds the TheGamesDB platform table
func NewPlatformTable() covers.PlatformTable {
	return covers.NewPlatformTable(func(ids covers.PlatformIDs) []int { return ids.TheGamesDB })
}

// Info returns provider information
func (*TheGamesDB) Info() covers.ProviderInfo {
	return covers.ProviderInfo{
		Name:         Name,
		Description:  "TheGamesDB.net community game database",
		Website:      "https://thegamesdb.net",
		RequiresAuth: true,
		ItemDelay:    defaultItemDelay,
	}
}

// Platforms returns the TheGamesDB platform table
func (tgdb *TheGamesDB) Platforms() covers.PlatformTable {
	return tgdb.platforms
}

// CheckCredentials fails when no API key was supplied
func (tgdb *TheGamesDB) CheckCredentials() error {
	if tgdb.apiKey == "" {
		return errAPIKeyRequired
	}
	return nil
}

// Prepare has nothing to do for TheGamesDB
func (*TheGamesDB) Prepare(_ context.Context) error {
	return nil
}

// Search searches for games matching the title
func (tgdb *TheGamesDB) Search(
	ctx context.Context,
	title string,
	platformIDs []int,
) ([]covers.Candidate, error) {
	searchURL, err := tgdb.buildSearchURL(title, platformIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to build search URL: %w", err)
	}

	log.Debug().Str("title", title).Ints("platforms", platformIDs).Msg("TheGamesDB search request")

	var apiResp APIResponse
	if err := tgdb.getJSON(ctx, searchURL, &apiResp); err != nil {
		return nil, err
	}

	if apiResp.Code != http.StatusOK {
		return nil, fmt.Errorf("API error: %s (code %d)", apiResp.Status, apiResp.Code)
	}

	log.Debug().Int("remaining", apiResp.RemainingRequests).Msg("TheGamesDB monthly allowance")

	if apiResp.Data == nil || len(apiResp.Data.Games) == 0 {
		return nil, nil // No results found
	}

	candidates := make([]covers.Candidate, 0, len(apiResp.Data.Games))
	for i := range apiResp.Data.Games {
		candidates = append(candidates, convertGameToCandidate(&apiResp.Data.Games[i], apiResp.Include))
	}

	return candidates, nil
}

// ResolveImage looks up the candidate's images with a second request and
// picks front boxart, then any boxart, then a screenshot. Candidates with
// no front boxart reference resolve to no cover without a request.
func (tgdb *TheGamesDB) ResolveImage(ctx context.Context, candidate covers.Candidate) (string, error) {
	if !candidate.HasBoxart {
		return "", nil
	}

	imagesURL, err := tgdb.buildImagesURL(candidate.ID)
	if err != nil {
		return "", fmt.Errorf("failed to build images URL: %w", err)
	}

	log.Debug().Int("id", candidate.ID).Msg("TheGamesDB images request")

	var apiResp ImagesResponse
	if err := tgdb.getJSON(ctx, imagesURL, &apiResp); err != nil {
		return "", err
	}

	if apiResp.Code != http.StatusOK {
		return "", fmt.Errorf("API error: %s (code %d)", apiResp.Status, apiResp.Code)
	}

	if apiResp.Data == nil {
		return "", nil
	}

	image, ok := pickCoverImage(apiResp.Data.Images[strconv.Itoa(candidate.ID)])
	if !ok {
		return "", nil
	}

	prefix := apiResp.Data.BaseURL.Original
	if prefix == "" {
		prefix = defaultImagePrefix
	}

	return prefix + image.Filename, nil
}

// getJSON performs a GET request and decodes a 200 response into v
func (tgdb *TheGamesDB) getJSON(ctx context.Context, reqURL string, v any) error {
	resp, err := tgdb.client.Get(ctx, reqURL)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("Failed to close response body")
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return handleHTTPError(resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// buildSearchURL constructs the search URL for TheGamesDB API
func (tgdb *TheGamesDB) buildSearchURL(title string, platformIDs []int) (string, error) {
	u, err := url.Parse(tgdb.baseURL + "/Games/ByGameName")
	if err != nil {
		return "", fmt.Errorf("failed to parse TheGamesDB search URL: %w", err)
	}

	params := url.Values{}
	params.Set("apikey", tgdb.apiKey)
	params.Set("name", title)
	params.Set("fields", "platform,release_date,boxart")
	params.Set("include", "boxart")
	if len(platformIDs) > 0 {
		params.Set("filter[platform]", covers.JoinIDs(platformIDs, ","))
	}

	u.RawQuery = params.Encode()
	return u.String(), nil
}

// buildImagesURL constructs the images URL for a single game
func (tgdb *TheGamesDB) buildImagesURL(gameID int) (string, error) {
	u, err := url.Parse(tgdb.baseURL + "/Games/Images")
	if err != nil {
		return "", fmt.Errorf("failed to parse TheGamesDB images URL: %w", err)
	}

	params := url.Values{}
	params.Set("apikey", tgdb.apiKey)
	params.Set("games_id", strconv.Itoa(gameID))

	u.RawQuery = params.Encode()
	return u.String(), nil
}

// handleHTTPError handles HTTP error responses
func handleHTTPError(statusCode int) error {
	switch statusCode {
	case http.StatusTooManyRequests:
		return errors.New("rate limited by TheGamesDB (429)")
	case http.StatusUnauthorized:
		return errors.New("authentication failed - check TheGamesDB API key")
	case http.StatusForbidden:
		return errors.New("access forbidden - check API key allowance")
	case http.StatusNotFound:
		return errors.New("game not found")
	case http.StatusInternalServerError:
		return errors.New("TheGamesDB server error")
	default:
		return fmt.Errorf("HTTP error %d", statusCode)
	}
}

// convertGameToCandidate converts TheGamesDB game data to a candidate
func convertGameToCandidate(game *Game, include *APIResponseInclude) covers.Candidate {
	c := covers.Candidate{
		ID:   game.ID,
		Name: game.GameTitle,
	}
	if game.Platform != 0 {
		c.PlatformIDs = []int{game.Platform}
	}

	if include != nil && include.Boxart != nil {
		for _, img := range include.Boxart.Data[strconv.Itoa(game.ID)] {
			if img.Type == imageTypeBoxart && img.Side == boxartSideFront {
				c.HasBoxart = true
				break
			}
		}
	}

	return c
}

// pickCoverImage prefers boxart with "front" in its filename, then the first
// boxart, then the first screenshot.
func pickCoverImage(images []Image) (Image, bool) {
	var firstBoxart, firstScreenshot *Image

	for i := range images {
		img := &images[i]
		switch img.Type {
		case imageTypeBoxart:
			if strings.Contains(img.Filename, boxartSideFront) {
				return *img, true
			}
			if firstBoxart == nil {
				firstBoxart = img
			}
		case imageTypeScreenshot:
			if firstScreenshot == nil {
				firstScreenshot = img
			}
		}
	}

	switch {
	case firstBoxart != nil:
		return *firstBoxart, true
	case firstScreenshot != nil:
		return *firstScreenshot, true
	default:
		return Image{}, false
	}
}
