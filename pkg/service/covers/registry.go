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

package covers

import (
	"fmt"
	"slices"
	"strings"

	coverspkg "github.com/ZaparooProject/zaparoo-covers/v2/pkg/covers"
	"github.com/ZaparooProject/zaparoo-covers/v2/pkg/covers/igdb"
	"github.com/ZaparooProject/zaparoo-covers/v2/pkg/covers/rawg"
	"github.com/ZaparooProject/zaparoo-covers/v2/pkg/covers/thegamesdb"
	"github.com/ZaparooProject/zaparoo-covers/v2/pkg/helpers/syncutil"
	"github.com/rs/zerolog/log"
)

// Factory creates a provider for a single run using the caller's credentials
type Factory func(creds coverspkg.Credentials) coverspkg.Provider

// Registry manages the registration and lookup of providers
type Registry struct {
	factories map[string]Factory
	mu        syncutil.RWMutex
}

// NewRegistry creates a new registry holding the built-in providers
func NewRegistry() *Registry {
	registry := &Registry{
		factories: make(map[string]Factory),
	}

	registry.registerDefaultProviders()
	return registry
}

func (r *Registry) registerDefaultProviders() {
	r.Register(rawg.Name, func(creds coverspkg.Credentials) coverspkg.Provider {
		return rawg.NewRAWG(creds)
	})
	r.Register(thegamesdb.Name, func(creds coverspkg.Credentials) coverspkg.Provider {
		return thegamesdb.NewTheGamesDB(creds)
	})
	r.Register(igdb.Name, func(creds coverspkg.Credentials) coverspkg.Provider {
		return igdb.NewIGDB(creds)
	})

	log.Debug().Int("count", len(r.factories)).Msg("registered providers")
}

// Register registers a provider factory with the given name
func (r *Registry) Register(name string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[strings.ToLower(name)] = factory
}

// New creates the named provider. Names are case-insensitive.
func (r *Registry) New(name string, creds coverspkg.Credentials) (coverspkg.Provider, error) {
	r.mu.RLock()
	factory, exists := r.factories[strings.ToLower(strings.TrimSpace(name))]
	r.mu.RUnlock()
	if !exists {
		return nil, fmt.Errorf("%w: %q", coverspkg.ErrUnknownProvider, name)
	}
	return factory(creds), nil
}

// Names returns all registered provider names, sorted
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Infos returns the static details of every registered provider, sorted by
// name. No credentials are needed to read them.
func (r *Registry) Infos() []coverspkg.ProviderInfo {
	names := r.Names()
	infos := make([]coverspkg.ProviderInfo, 0, len(names))
	for _, name := range names {
		p, err := r.New(name, coverspkg.Credentials{})
		if err != nil {
			continue
		}
		infos = append(infos, p.Info())
	}
	return infos
}
