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

package publishers

import (
	"context"
	"testing"
	"time"

	"github.com/ZaparooProject/zaparoo-covers/v2/pkg/api/models"
	"github.com/ZaparooProject/zaparoo-covers/v2/pkg/config"
	"github.com/ZaparooProject/zaparoo-covers/v2/pkg/service/broker"
	"github.com/ZaparooProject/zaparoo-covers/v2/pkg/testing/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPublisher(client *mocks.MockMQTTClient, filter ...string) *MQTTPublisher {
	return NewMQTTPublisher(config.MQTTPublisher{
		Broker:   "localhost:1883",
		Topic:    "zaparoo/covers/",
		Username: "user",
		Password: "pass",
		Filter:   filter,
	}, WithClientFactory(client.Factory()))
}

func TestBrokerURL(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "tcp://localhost:1883", BrokerURL("localhost:1883"))
	assert.Equal(t, "ssl://mqtt.example.com:8883", BrokerURL("ssl://mqtt.example.com:8883"))
	assert.Equal(t, "ws://mqtt.example.com/mqtt", BrokerURL("ws://mqtt.example.com/mqtt"))
}

func TestTopicFor(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "zaparoo/covers/progress", TopicFor("zaparoo/covers", models.NotificationCoversProgress))
	assert.Equal(t, "zaparoo/covers/complete", TopicFor("zaparoo/covers/", models.NotificationCoversComplete))
	assert.Equal(t, "base/other.event", TopicFor("base", "other.event"))
}

func TestStart_PublishesNotifications(t *testing.T) {
	t.Parallel()

	client := mocks.NewMockMQTTClient()
	p := newTestPublisher(client)

	notifications := make(chan models.Notification, 10)
	require.NoError(t, p.Start(notifications))
	defer p.Stop()

	opts := client.Options()
	require.NotNil(t, opts)
	require.Len(t, opts.Servers, 1)
	assert.Equal(t, "tcp://localhost:1883", opts.Servers[0].String())
	assert.Equal(t, "user", opts.Username)
	assert.Contains(t, opts.ClientID, "zaparoo-covers-")

	notifications <- models.Notification{
		Method: models.NotificationCoversProgress,
		Params: []byte(`{"processed":1,"total":2}`),
	}
	notifications <- models.Notification{Method: models.NotificationCoversComplete}

	require.Eventually(t, func() bool {
		return len(client.Messages()) == 2
	}, time.Second, 10*time.Millisecond)

	msgs := client.Messages()
	assert.Equal(t, "zaparoo/covers/progress", msgs[0].Topic)
	assert.JSONEq(t, `{"processed":1,"total":2}`, string(msgs[0].Payload))
	assert.Equal(t, "zaparoo/covers/complete", msgs[1].Topic)
	assert.Equal(t, "null", string(msgs[1].Payload))
}

func TestStart_ConnectError(t *testing.T) {
	t.Parallel()

	client := mocks.NewMockMQTTClient()
	client.ConnectError = assert.AnError
	p := newTestPublisher(client)

	err := p.Start(make(chan models.Notification))
	require.Error(t, err)
	require.ErrorIs(t, err, assert.AnError)

	// Stop after a failed start must not hang
	p.Stop()
}

func TestPublish_ErrorDoesNotStopPublisher(t *testing.T) {
	t.Parallel()

	client := mocks.NewMockMQTTClient()
	client.PublishError = assert.AnError
	p := newTestPublisher(client)

	notifications := make(chan models.Notification, 10)
	require.NoError(t, p.Start(notifications))

	notifications <- models.Notification{Method: models.NotificationCoversProgress, Params: []byte(`{}`)}
	notifications <- models.Notification{Method: models.NotificationCoversProgress, Params: []byte(`{}`)}

	assert.Eventually(t, func() bool { return len(notifications) == 0 }, time.Second, 10*time.Millisecond)
	assert.Empty(t, client.Messages())
	p.Stop()
}

func TestStop_Disconnects(t *testing.T) {
	t.Parallel()

	client := mocks.NewMockMQTTClient()
	p := newTestPublisher(client)
	require.NoError(t, p.Start(make(chan models.Notification)))

	p.Stop()
	p.Stop()

	assert.False(t, client.IsConnected())
	assert.Equal(t, 1, client.DisconnectCalls())
}

func TestChannelClosedEndsPublishing(t *testing.T) {
	t.Parallel()

	client := mocks.NewMockMQTTClient()
	p := newTestPublisher(client, models.NotificationCoversComplete)
	assert.Equal(t, []string{models.NotificationCoversComplete}, p.Filter())

	notifications := make(chan models.Notification)
	require.NoError(t, p.Start(notifications))
	close(notifications)

	done := make(chan struct{})
	go func() {
		p.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop hung after notification channel closed")
	}
}

func TestStop_PublishesQueuedNotifications(t *testing.T) {
	t.Parallel()

	client := mocks.NewMockMQTTClient()
	p := newTestPublisher(client)

	notifications := make(chan models.Notification, 2)
	notifications <- models.Notification{Method: models.NotificationCoversProgress, Params: []byte(`{}`)}
	notifications <- models.Notification{Method: models.NotificationCoversComplete, Params: []byte(`{}`)}
	close(notifications)

	require.NoError(t, p.Start(notifications))
	p.Stop()

	msgs := client.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "zaparoo/covers/complete", msgs[1].Topic)
}

func TestStop_AfterBrokerDrainDeliversComplete(t *testing.T) {
	t.Parallel()

	for range 50 {
		client := mocks.NewMockMQTTClient()
		p := newTestPublisher(client)

		source := make(chan models.Notification, 4)
		b := broker.NewBroker(context.Background(), source)
		ch, _ := b.Subscribe(8, p.Filter()...)
		require.NoError(t, p.Start(ch))
		b.Start()

		source <- models.Notification{Method: models.NotificationCoversProgress, Params: []byte(`{"processed":1}`)}
		source <- models.Notification{Method: models.NotificationCoversComplete, Params: []byte(`{"found":1}`)}
		close(source)

		select {
		case <-b.Done():
		case <-time.After(time.Second):
			t.Fatal("broker did not drain")
		}
		p.Stop()

		msgs := client.Messages()
		require.Len(t, msgs, 2)
		assert.Equal(t, "zaparoo/covers/progress", msgs[0].Topic)
		assert.Equal(t, "zaparoo/covers/complete", msgs[1].Topic)
	}
}
