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

package notifications

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/ZaparooProject/zaparoo-covers/v2/pkg/api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// An unbuffered channel with no reader must not block the sender.
func TestSendNotification_NonBlocking(t *testing.T) {
	t.Parallel()

	ns := make(chan models.Notification)

	done := make(chan struct{})
	go func() {
		CoversProgress(ns, map[string]int{"processed": 1})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(100 * time.Millisecond):
		t.Fatal("sendNotification blocked on full channel")
	}
}

func TestSendNotification_SuccessfulSend(t *testing.T) {
	t.Parallel()

	ns := make(chan models.Notification, 1)
	CoversProgress(ns, map[string]int{"processed": 3})

	select {
	case n := <-ns:
		assert.Equal(t, models.NotificationCoversProgress, n.Method)
		var params map[string]int
		require.NoError(t, json.Unmarshal(n.Params, &params))
		assert.Equal(t, 3, params["processed"])
	default:
		t.Fatal("expected notification")
	}
}

func TestSendNotification_NilPayload(t *testing.T) {
	t.Parallel()

	ns := make(chan models.Notification, 1)
	CoversComplete(ns, nil)

	n := <-ns
	assert.Equal(t, models.NotificationCoversComplete, n.Method)
	assert.Nil(t, n.Params)
}

func TestSendNotification_NilChannel(t *testing.T) {
	t.Parallel()

	assert.NotPanics(t, func() {
		CoversComplete(nil, map[string]string{"status": "completed"})
	})
}

func TestSendNotification_UnmarshalablePayload(t *testing.T) {
	t.Parallel()

	ns := make(chan models.Notification, 1)
	CoversProgress(ns, make(chan int))

	assert.Empty(t, ns)
}
