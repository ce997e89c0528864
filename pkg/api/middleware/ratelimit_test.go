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

package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ZaparooProject/zaparoo-covers/v2/pkg/api/models"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIPRateLimiter_BasicFunctionality(t *testing.T) {
	t.Parallel()
	limiter := NewIPRateLimiter(0, nil)

	rl := limiter.GetLimiter("192.168.1.100")
	assert.NotNil(t, rl)

	for i := range BurstSize {
		allowed := rl.Allow()
		assert.True(t, allowed, "should allow request %d within burst", i+1)
	}

	blocked := rl.Allow()
	assert.False(t, blocked, "should block request beyond burst size")
}

func TestIPRateLimiter_ConfiguredRate(t *testing.T) {
	t.Parallel()
	limiter := NewIPRateLimiter(120, nil)

	rl := limiter.GetLimiter("192.168.1.100")
	assert.InDelta(t, 2.0, float64(rl.Limit()), 0.0001)

	rl = NewIPRateLimiter(-5, nil).GetLimiter("192.168.1.100")
	assert.InDelta(t, float64(DefaultRequestsPerMinute)/60.0, float64(rl.Limit()), 0.0001)
}

func TestIPRateLimiter_DifferentIPs(t *testing.T) {
	t.Parallel()
	limiter := NewIPRateLimiter(0, nil)

	rl1 := limiter.GetLimiter("192.168.1.100")
	rl2 := limiter.GetLimiter("192.168.1.101")
	assert.NotSame(t, rl1, rl2)

	for range BurstSize {
		rl1.Allow()
	}

	assert.False(t, rl1.Allow())
	assert.True(t, rl2.Allow())
}

func TestIPRateLimiter_SameIPReuse(t *testing.T) {
	t.Parallel()
	limiter := NewIPRateLimiter(0, nil)

	rl1 := limiter.GetLimiter("192.168.1.100")
	rl2 := limiter.GetLimiter("192.168.1.100")
	assert.Same(t, rl1, rl2)
}

func TestIPRateLimiter_Cleanup(t *testing.T) {
	t.Parallel()
	clock := clockwork.NewFakeClock()
	limiter := NewIPRateLimiter(0, clock)

	limiter.GetLimiter("192.168.1.100")
	clock.Advance(6 * time.Minute)
	limiter.GetLimiter("192.168.1.101")
	clock.Advance(5 * time.Minute)

	limiter.Cleanup()
	assert.Equal(t, 1, limiter.Len())

	clock.Advance(6 * time.Minute)
	limiter.Cleanup()
	assert.Equal(t, 0, limiter.Len())
}

func TestIPRateLimiter_StartCleanup(t *testing.T) {
	t.Parallel()
	clock := clockwork.NewFakeClock()
	limiter := NewIPRateLimiter(0, clock)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	limiter.GetLimiter("192.168.1.100")
	limiter.StartCleanup(ctx)

	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	clock.Advance(15 * time.Minute)

	assert.Eventually(t, func() bool { return limiter.Len() == 0 }, time.Second, 10*time.Millisecond)
}

func TestHTTPRateLimitMiddleware_Allow(t *testing.T) {
	t.Parallel()
	limiter := NewIPRateLimiter(0, nil)

	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("success"))
	})

	wrappedHandler := HTTPRateLimitMiddleware(limiter)(handler)

	for i := range BurstSize {
		req := httptest.NewRequest(http.MethodPost, "/api/covers/rawg", http.NoBody)
		req.RemoteAddr = "192.168.1.100:12345"

		w := httptest.NewRecorder()
		wrappedHandler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code, "should allow request %d", i+1)
		assert.Equal(t, "success", w.Body.String())
	}
}

func TestHTTPRateLimitMiddleware_Block(t *testing.T) {
	t.Parallel()
	limiter := NewIPRateLimiter(0, nil)

	calls := 0
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
	})
	wrappedHandler := HTTPRateLimitMiddleware(limiter)(handler)

	var last *httptest.ResponseRecorder
	for range BurstSize + 1 {
		req := httptest.NewRequest(http.MethodPost, "/api/covers/rawg", http.NoBody)
		req.RemoteAddr = "192.168.1.100:12345"
		last = httptest.NewRecorder()
		wrappedHandler.ServeHTTP(last, req)
	}

	assert.Equal(t, BurstSize, calls)
	assert.Equal(t, http.StatusTooManyRequests, last.Code)

	var body models.ErrorResponse
	require.NoError(t, json.Unmarshal(last.Body.Bytes(), &body))
	assert.Equal(t, http.StatusTooManyRequests, body.Code)
	assert.Equal(t, "rate limit exceeded", body.Error)
}

func TestParseRemoteIP(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "192.168.1.100", ParseRemoteIP("192.168.1.100:12345").String())
	assert.Equal(t, "::1", ParseRemoteIP("[::1]:7498").String())
	assert.Equal(t, "10.0.0.1", ParseRemoteIP("10.0.0.1").String())
	assert.Nil(t, ParseRemoteIP("not-an-ip"))
}
