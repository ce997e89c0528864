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

package broker

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/ZaparooProject/zaparoo-covers/v2/pkg/api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func progress(params string) models.Notification {
	return models.Notification{Method: models.NotificationCoversProgress, Params: []byte(params)}
}

func receive(t *testing.T, ch <-chan models.Notification) models.Notification {
	t.Helper()
	select {
	case n, ok := <-ch:
		require.True(t, ok, "channel closed unexpectedly")
		return n
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for notification")
		return models.Notification{}
	}
}

func TestBroker_SubscribeAndUnsubscribe(t *testing.T) {
	t.Parallel()

	b := NewBroker(context.Background(), make(chan models.Notification))

	ch, id := b.Subscribe(10)
	_, id2 := b.Subscribe(20)

	assert.Equal(t, 0, id)
	assert.Equal(t, 1, id2)
	assert.Equal(t, 2, b.SubscriberCount())

	b.Unsubscribe(id)
	assert.Equal(t, 1, b.SubscriberCount())

	_, ok := <-ch
	assert.False(t, ok, "channel should be closed")

	// Unsubscribing again is a no-op
	b.Unsubscribe(id)
	assert.Equal(t, 1, b.SubscriberCount())
}

func TestBroker_BroadcastToMultipleSubscribers(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	source := make(chan models.Notification, 10)
	b := NewBroker(ctx, source)
	b.Start()

	sub1, _ := b.Subscribe(10)
	sub2, _ := b.Subscribe(10)

	source <- progress(`{"processed":1}`)

	assert.JSONEq(t, `{"processed":1}`, string(receive(t, sub1).Params))
	assert.JSONEq(t, `{"processed":1}`, string(receive(t, sub2).Params))
}

func TestBroker_MethodFilter(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	source := make(chan models.Notification, 10)
	b := NewBroker(ctx, source)
	b.Start()

	completeOnly, _ := b.Subscribe(10, models.NotificationCoversComplete)
	all, _ := b.Subscribe(10)

	source <- progress(`{}`)
	source <- models.Notification{Method: models.NotificationCoversComplete, Params: []byte(`{}`)}

	assert.Equal(t, models.NotificationCoversProgress, receive(t, all).Method)
	assert.Equal(t, models.NotificationCoversComplete, receive(t, all).Method)
	assert.Equal(t, models.NotificationCoversComplete, receive(t, completeOnly).Method)
	assert.Empty(t, completeOnly)
}

func TestBroker_FullSubscriberDoesNotBlockOthers(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	source := make(chan models.Notification, 10)
	b := NewBroker(ctx, source)
	b.Start()

	slow, _ := b.Subscribe(1)
	fast, _ := b.Subscribe(10)

	for i := range 3 {
		source <- progress(`{"processed":` + strconv.Itoa(i+1) + `}`)
	}

	for i := range 3 {
		n := receive(t, fast)
		assert.JSONEq(t, `{"processed":`+strconv.Itoa(i+1)+`}`, string(n.Params))
	}

	assert.Len(t, slow, 1)
	assert.JSONEq(t, `{"processed":1}`, string(receive(t, slow).Params))
}

func TestBroker_ContextCancelClosesSubscribers(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	b := NewBroker(ctx, make(chan models.Notification))
	b.Start()

	sub, _ := b.Subscribe(1)
	cancel()

	select {
	case _, ok := <-sub:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("subscriber channel was not closed")
	}

	late, _ := b.Subscribe(1)
	_, ok := <-late
	assert.False(t, ok, "subscribing after shutdown returns a closed channel")
	assert.Equal(t, 0, b.SubscriberCount())
}

func TestBroker_SourceClosed(t *testing.T) {
	t.Parallel()

	source := make(chan models.Notification)
	b := NewBroker(context.Background(), source)
	b.Start()

	sub, _ := b.Subscribe(1)
	close(source)

	select {
	case _, ok := <-sub:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("subscriber channel was not closed")
	}
}

func TestBroker_DoneAfterSourceDrained(t *testing.T) {
	t.Parallel()

	source := make(chan models.Notification, 4)
	b := NewBroker(context.Background(), source)
	sub, _ := b.Subscribe(4)
	b.Start()

	source <- models.Notification{Method: models.NotificationCoversProgress}
	source <- models.Notification{Method: models.NotificationCoversComplete}
	close(source)

	select {
	case <-b.Done():
	case <-time.After(time.Second):
		t.Fatal("broker did not finish")
	}

	var methods []string
	for notif := range sub {
		methods = append(methods, notif.Method)
	}
	assert.Equal(t, []string{models.NotificationCoversProgress, models.NotificationCoversComplete}, methods)
}

func TestBroker_Stop(t *testing.T) {
	t.Parallel()

	b := NewBroker(context.Background(), make(chan models.Notification))
	sub, _ := b.Subscribe(1)

	b.Stop()

	_, ok := <-sub
	assert.False(t, ok)
	assert.Equal(t, 0, b.SubscriberCount())
}
