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

package mocks

import (
	"context"
	"time"

	"github.com/ZaparooProject/zaparoo-covers/v2/pkg/covers"
	"github.com/stretchr/testify/mock"
)

// MockProvider is a mock implementation of the covers.Provider interface
// using testify/mock. Info and Platforms are static so tests only need
// expectations for the calls that matter.
type MockProvider struct {
	mock.Mock
	platforms    covers.PlatformTable
	name         string
	itemDelay    time.Duration
	requiresAuth bool
}

// NewMockProvider creates a mock provider with no pacing between items.
func NewMockProvider(name string, platforms covers.PlatformTable) *MockProvider {
	if platforms == nil {
		platforms = covers.PlatformTable{}
	}
	return &MockProvider{
		name:      name,
		platforms: platforms,
	}
}

// WithItemDelay sets the delay reported by Info.
func (m *MockProvider) WithItemDelay(d time.Duration) *MockProvider {
	m.itemDelay = d
	return m
}

// WithRequiresAuth sets the RequiresAuth flag reported by Info.
func (m *MockProvider) WithRequiresAuth(requiresAuth bool) *MockProvider {
	m.requiresAuth = requiresAuth
	return m
}

func (m *MockProvider) Info() covers.ProviderInfo {
	return covers.ProviderInfo{
		Name:         m.name,
		Description:  "Mock provider",
		Website:      "https://example.com",
		ItemDelay:    m.itemDelay,
		RequiresAuth: m.requiresAuth,
	}
}

func (m *MockProvider) Platforms() covers.PlatformTable {
	return m.platforms
}

func (m *MockProvider) CheckCredentials() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockProvider) Prepare(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockProvider) Search(ctx context.Context, title string, platformIDs []int) ([]covers.Candidate, error) {
	args := m.Called(ctx, title, platformIDs)
	candidates, _ := args.Get(0).([]covers.Candidate)
	return candidates, args.Error(1)
}

func (m *MockProvider) ResolveImage(ctx context.Context, candidate covers.Candidate) (string, error) {
	args := m.Called(ctx, candidate)
	return args.String(0), args.Error(1)
}

// SetupNoResults accepts any batch and finds nothing for every item.
func (m *MockProvider) SetupNoResults() {
	m.On("CheckCredentials").Return(nil)
	m.On("Prepare", mock.Anything).Return(nil)
	m.On("Search", mock.Anything, mock.Anything, mock.Anything).Return([]covers.Candidate{}, nil)
}
