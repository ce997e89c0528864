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
	"maps"
	"net/url"
	"strings"

	"github.com/ZaparooProject/zaparoo-covers/v2/pkg/covers"
	"github.com/ZaparooProject/zaparoo-covers/v2/pkg/covers/igdb"
	"github.com/ZaparooProject/zaparoo-covers/v2/pkg/covers/rawg"
	"github.com/ZaparooProject/zaparoo-covers/v2/pkg/covers/thegamesdb"
	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog/log"
)

// CredentialEntry holds authentication credentials for a URL.
type CredentialEntry struct {
	Username string `toml:"username"`
	Password string `toml:"password"`
	Bearer   string `toml:"bearer"`
}

// Credentials converts the entry to provider credentials. API keys are read
// from bearer, falling back to password. Client ID and secret are read from
// username and password.
func (e CredentialEntry) Credentials() covers.Credentials {
	key := e.Bearer
	if key == "" {
		key = e.Password
	}
	return covers.Credentials{
		APIKey:       key,
		ClientID:     e.Username,
		ClientSecret: e.Password,
	}
}

// providerAuthURLs maps provider names to the URL their credentials are
// stored under in auth.toml.
var providerAuthURLs = map[string]string{
	rawg.Name:       rawg.APIURL,
	thegamesdb.Name: thegamesdb.APIURL,
	igdb.Name:       igdb.APIURL,
}

// authRootFormat represents the format: ["url"] at root level
type authRootFormat map[string]CredentialEntry

// authCredsFormat represents the format: [creds."url"]
type authCredsFormat struct {
	Creds map[string]CredentialEntry `toml:"creds"`
}

// authAuthCredsFormat represents the format: [auth.creds."url"]
type authAuthCredsFormat struct {
	Auth authCredsFormat `toml:"auth"`
}

// isValidAuthKey filters out TOML structural keys that get captured when
// parsing the root format in mixed-format files.
func isValidAuthKey(key string) bool {
	return key != "creds" && key != "auth"
}

// LoadAuthFromData parses auth.toml data supporting all three formats.
// Formats are merged, allowing users to mix formats in the same file.
//
// Supported formats:
//   - Root level: ["https://api.rawg.io"]
//   - Creds wrapper: [creds."https://api.rawg.io"]
//   - Auth.creds wrapper: [auth.creds."https://api.rawg.io"]
func LoadAuthFromData(data []byte) map[string]CredentialEntry {
	result := make(map[string]CredentialEntry)

	var root authRootFormat
	if err := toml.Unmarshal(data, &root); err == nil {
		for k, v := range root {
			if isValidAuthKey(k) {
				result[k] = v
			}
		}
	}

	var creds authCredsFormat
	if err := toml.Unmarshal(data, &creds); err == nil {
		maps.Copy(result, creds.Creds)
	}

	var authCreds authAuthCredsFormat
	if err := toml.Unmarshal(data, &authCreds); err == nil {
		maps.Copy(result, authCreds.Auth.Creds)
	}

	return result
}

// LookupAuth finds credentials for a URL. Entries with a scheme must match
// scheme and host exactly, and the request path must start with the entry's
// path. Entries without a scheme match on host alone.
func LookupAuth(creds map[string]CredentialEntry, reqURL string) *CredentialEntry {
	if len(creds) == 0 {
		return nil
	}

	u, err := url.Parse(reqURL)
	if err != nil {
		log.Warn().Msgf("invalid auth request url: %s", reqURL)
		return nil
	}

	for k, v := range creds {
		if !strings.Contains(k, "://") {
			continue
		}
		defURL, err := url.Parse(k)
		if err != nil {
			log.Error().Msgf("invalid auth config url: %s", k)
			continue
		}
		if strings.EqualFold(defURL.Scheme, u.Scheme) &&
			strings.EqualFold(defURL.Host, u.Host) &&
			strings.HasPrefix(u.Path, defURL.Path) {
			return &v
		}
	}

	for k, v := range creds {
		if strings.Contains(k, "://") {
			continue
		}
		if strings.EqualFold(k, u.Host) {
			return &v
		}
	}

	return nil
}

// LookupAuth finds credentials for a URL in the loaded auth file.
func (c *Instance) LookupAuth(reqURL string) *CredentialEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return LookupAuth(c.auth, reqURL)
}

// ProviderCredentials returns the auth.toml credentials stored for the named
// provider, or empty credentials if there are none.
func (c *Instance) ProviderCredentials(provider string) covers.Credentials {
	authURL, ok := providerAuthURLs[strings.ToLower(provider)]
	if !ok {
		return covers.Credentials{}
	}
	entry := c.LookupAuth(authURL)
	if entry == nil {
		return covers.Credentials{}
	}
	return entry.Credentials()
}
