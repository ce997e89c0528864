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

// Package covers holds the provider-independent parts of cover lookup:
// the game item model, the Provider interface implemented by each metadata
// service, platform name tables and the candidate selection rules.
package covers

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrInvalidInput is returned when the batch input cannot be used.
	ErrInvalidInput = errors.New("invalid input")
	// ErrMissingCredentials is returned when a provider's required
	// credentials were not supplied.
	ErrMissingCredentials = errors.New("missing credentials")
	// ErrUnknownProvider is returned for provider names with no registration.
	ErrUnknownProvider = errors.New("unknown provider")
)

// Provider is implemented by each game metadata service.
type Provider interface {
	// Info returns static details about the provider.
	Info() ProviderInfo

	// Platforms returns the provider's platform name table.
	Platforms() PlatformTable

	// CheckCredentials reports whether the required credentials are present.
	// It never touches the network.
	CheckCredentials() error

	// Prepare runs once per batch before the first item is looked up.
	Prepare(ctx context.Context) error

	// Search returns raw candidates for a title, optionally constrained to
	// the given platform IDs.
	Search(ctx context.Context, title string, platformIDs []int) ([]Candidate, error)

	// ResolveImage turns a selected candidate into an absolute image URL.
	// An empty string means no cover was found.
	ResolveImage(ctx context.Context, candidate Candidate) (string, error)
}

// ProviderInfo contains provider metadata
type ProviderInfo struct {
	Name         string        `json:"name"`
	Description  string        `json:"description"`
	Website      string        `json:"website"`
	ItemDelay    time.Duration `json:"-"`
	RequiresAuth bool          `json:"requiresAuth"`
}

// Credentials are supplied by the caller for a single run. Which fields
// are needed depends on the provider.
type Credentials struct {
	APIKey       string
	ClientID     string
	ClientSecret string
}

// WithFallback fills any empty field of c from fallback.
func (c Credentials) WithFallback(fallback Credentials) Credentials {
	if c.APIKey == "" {
		c.APIKey = fallback.APIKey
	}
	if c.ClientID == "" {
		c.ClientID = fallback.ClientID
	}
	if c.ClientSecret == "" {
		c.ClientSecret = fallback.ClientSecret
	}
	return c
}

// GameItem is one entry of the user's list. Items are identified by their
// position in the list.
type GameItem struct {
	Title      string `json:"title" csv:"title" validate:"required,notblank"`
	SystemName string `json:"systemName" csv:"systemName" validate:"required,notblank"`
	ImageURL   string `json:"imageUrl,omitempty" csv:"imageUrl"`
}

// HasCover reports whether a cover URL was attached to the item.
func (g GameItem) HasCover() bool {
	return g.ImageURL != ""
}

// Candidate is a single search result from a provider, reduced to the
// fields needed for selection and image resolution.
type Candidate struct {
	Name        string
	ImageRef    string
	PlatformIDs []int
	ID          int
	HasBoxart   bool
}
