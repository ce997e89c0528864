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

package igdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ZaparooProject/zaparoo-covers/v2/pkg/covers"
	"github.com/ZaparooProject/zaparoo-covers/v2/pkg/shared/httpclient"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	// Name is the registry name of the provider
	Name = "igdb"

	// APIURL is used to look up credentials in auth.toml
	APIURL = "https://api.igdb.com"

	defaultBaseURL  = APIURL + "/v4"
	defaultTokenURL = "https://id.twitch.tv/oauth2/token" // #nosec G101 - Public OAuth endpoint URL, not a credential

	coverURLFormat = "https://images.igdb.com/igdb/image/upload/t_cover_big/%s.jpg"

	searchLimit = 10

	// IGDB allows 4 requests per second
	defaultItemDelay = 250 * time.Millisecond
)

var (
	errCredentialsRequired = fmt.Errorf(
		"%w: IGDB requires a Twitch client ID and client secret", covers.ErrMissingCredentials)
	errNoToken = errors.New("no IGDB access token, token request failed")
)

// IGDB implements the covers.Provider interface for IGDB API
type IGDB struct {
	client       *httpclient.Client
	platforms    covers.PlatformTable
	baseURL      string
	tokenURL     string
	clientID     string
	clientSecret string
	accessToken  string
}

// Option configures an IGDB instance
type Option func(*IGDB)

// WithBaseURL overrides the API base URL
func WithBaseURL(u string) Option {
	return func(igdb *IGDB) {
		igdb.baseURL = strings.TrimRight(u, "/")
	}
}

// WithTokenURL overrides the OAuth2 token endpoint
func WithTokenURL(u string) Option {
	return func(igdb *IGDB) {
		igdb.tokenURL = u
	}
}

// WithHTTPClient overrides the HTTP client
func WithHTTPClient(c *httpclient.Client) Option {
	return func(igdb *IGDB) {
		igdb.client = c
	}
}

// NewIGDB creates a new IGDB instance
func NewIGDB(creds covers.Credentials, opts ...Option) *IGDB {
	igdb := &IGDB{
		client:       httpclient.DefaultClient,
		platforms:    NewPlatformTable(),
		baseURL:      defaultBaseURL,
		tokenURL:     defaultTokenURL,
		clientID:     strings.TrimSpace(creds.ClientID),
		clientSecret: strings.TrimSpace(creds.ClientSecret),
	}
	for _, opt := range opts {
		opt(igdb)
	}
	return igdb
}

// NewPlatformTable builds the IGDB platform table
func NewPlatformTable() covers.PlatformTable {
	return covers.NewPlatformTable(func(ids covers.PlatformIDs) []int { return ids.IGDB })
}

// Info returns provider information
func (*IGDB) Info() covers.ProviderInfo {
	return covers.ProviderInfo{
		Name:         Name,
		Description:  "IGDB.com curated game database",
		Website:      "https://igdb.com",
		RequiresAuth: true, // Requires Twitch client credentials
		ItemDelay:    defaultItemDelay,
	}
}

// Platforms returns the IGDB platform table
func (igdb *IGDB) Platforms() covers.PlatformTable {
	return igdb.platforms
}

// CheckCredentials fails unless both client ID and secret are set
func (igdb *IGDB) CheckCredentials() error {
	if igdb.clientID == "" || igdb.clientSecret == "" {
		return errCredentialsRequired
	}
	return nil
}

// Prepare requests a fresh app access token from Twitch. It runs once per
// batch; tokens are never reused between batches or refreshed mid-batch.
func (igdb *IGDB) Prepare(ctx context.Context) error {
	igdb.accessToken = ""

	cfg := clientcredentials.Config{
		ClientID:     igdb.clientID,
		ClientSecret: igdb.clientSecret,
		TokenURL:     igdb.tokenURL,
		AuthStyle:    oauth2.AuthStyleInParams,
	}

	tokenCtx := context.WithValue(ctx, oauth2.HTTPClient, igdb.client.Client)
	token, err := cfg.Token(tokenCtx)
	if err != nil {
		return fmt.Errorf("failed to request IGDB token: %w", err)
	}
	if token.AccessToken == "" {
		return errors.New("IGDB token response had no access token")
	}

	igdb.accessToken = token.AccessToken
	log.Info().Time("expires", token.Expiry).Msg("Successfully obtained IGDB access token")
	return nil
}

// Search searches for games matching the title
func (igdb *IGDB) Search(ctx context.Context, title string, platformIDs []int) ([]covers.Candidate, error) {
	if igdb.accessToken == "" {
		return nil, errNoToken
	}

	query := buildSearchQuery(title, platformIDs)
	log.Debug().Str("query", query).Msg("IGDB search request")

	resp, err := igdb.client.Post(ctx, igdb.baseURL+"/games", "text/plain", strings.NewReader(query),
		httpclient.WithHeader("Client-ID", igdb.clientID),
		httpclient.WithHeader("Authorization", "Bearer "+igdb.accessToken),
		httpclient.WithHeader("Accept", "application/json"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("Failed to close response body")
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, handleHTTPError(resp)
	}

	var games []Game
	if err := json.NewDecoder(resp.Body).Decode(&games); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	candidates := make([]covers.Candidate, 0, len(games))
	for i := range games {
		candidates = append(candidates, convertGameToCandidate(&games[i]))
	}

	return candidates, nil
}

// ResolveImage builds the cover URL from the candidate's image ID
func (*IGDB) ResolveImage(_ context.Context, candidate covers.Candidate) (string, error) {
	if candidate.ImageRef == "" {
		return "", nil
	}
	return fmt.Sprintf(coverURLFormat, candidate.ImageRef), nil
}

// buildSearchQuery builds an IGDB query for searching games
func buildSearchQuery(title string, platformIDs []int) string {
	escaped := strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(title)

	var b strings.Builder
	fmt.Fprintf(&b, `search "%s"; fields name,cover.*,platforms; limit %d;`, escaped, searchLimit)
	if len(platformIDs) > 0 {
		fmt.Fprintf(&b, ` where platforms = (%s);`, covers.JoinIDs(platformIDs, ","))
	}
	return b.String()
}

// handleHTTPError handles HTTP error responses
func handleHTTPError(resp *http.Response) error {
	var apiErrs []APIError
	if err := json.NewDecoder(resp.Body).Decode(&apiErrs); err == nil && len(apiErrs) > 0 {
		if apiErrs[0].Cause != "" {
			return fmt.Errorf("IGDB error %d: %s: %s", resp.StatusCode, apiErrs[0].Title, apiErrs[0].Cause)
		}
		return fmt.Errorf("IGDB error %d: %s", resp.StatusCode, apiErrs[0].Title)
	}

	switch resp.StatusCode {
	case http.StatusTooManyRequests:
		return errors.New("rate limited by IGDB (429)")
	case http.StatusUnauthorized:
		return errors.New("authentication failed - check Twitch credentials")
	case http.StatusForbidden:
		return errors.New("access forbidden - check API permissions")
	case http.StatusInternalServerError:
		return errors.New("IGDB server error")
	default:
		return fmt.Errorf("HTTP error %d", resp.StatusCode)
	}
}

func convertGameToCandidate(game *Game) covers.Candidate {
	c := covers.Candidate{
		ID:          game.ID,
		Name:        game.Name,
		PlatformIDs: game.Platforms,
	}
	if game.Cover != nil {
		c.ImageRef = game.Cover.ImageID
	}
	return c
}
