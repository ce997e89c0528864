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
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ZaparooProject/zaparoo-covers/v2/pkg/api/models"
	"github.com/ZaparooProject/zaparoo-covers/v2/pkg/config"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	connectTimeout    = 10 * time.Second
	publishTimeout    = 5 * time.Second
	disconnectQuiesce = 250
)

// MQTTPublisher publishes covers notifications to an MQTT broker. Each
// notification goes to a subtopic named after its method, e.g.
// zaparoo/covers/progress, with the notification params as payload.
type MQTTPublisher struct {
	client    mqtt.Client
	newClient func(*mqtt.ClientOptions) mqtt.Client
	stopCh    chan struct{}
	cfg       config.MQTTPublisher
	wg        sync.WaitGroup
	stopOnce  sync.Once
}

// Option configures an MQTTPublisher
type Option func(*MQTTPublisher)

// WithClientFactory replaces the function used to create the MQTT client.
func WithClientFactory(newClient func(*mqtt.ClientOptions) mqtt.Client) Option {
	return func(p *MQTTPublisher) {
		p.newClient = newClient
	}
}

// NewMQTTPublisher creates a publisher for one configured broker.
func NewMQTTPublisher(cfg config.MQTTPublisher, opts ...Option) *MQTTPublisher {
	p := &MQTTPublisher{
		cfg:       cfg,
		newClient: mqtt.NewClient,
		stopCh:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Filter returns the notification methods this publisher should receive,
// empty meaning all.
func (p *MQTTPublisher) Filter() []string {
	return p.cfg.Filter
}

// BrokerURL returns the broker address with a tcp:// scheme added if none
// was configured.
func BrokerURL(broker string) string {
	if strings.Contains(broker, "://") {
		return broker
	}
	return "tcp://" + broker
}

// TopicFor returns the topic a notification method is published to.
func TopicFor(base, method string) string {
	suffix := strings.TrimPrefix(method, "covers.")
	return strings.TrimSuffix(base, "/") + "/" + suffix
}

// Start connects to the MQTT broker and publishes everything received on
// notifications until Stop is called or the channel closes.
func (p *MQTTPublisher) Start(notifications <-chan models.Notification) error {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(BrokerURL(p.cfg.Broker))
	opts.SetClientID("zaparoo-covers-" + uuid.New().String()[:8])
	opts.SetUsername(p.cfg.Username)
	opts.SetPassword(p.cfg.Password)
	opts.SetAutoReconnect(true)
	opts.SetConnectTimeout(connectTimeout)

	opts.OnConnect = func(_ mqtt.Client) {
		log.Info().Str("broker", p.cfg.Broker).Msg("mqtt publisher: connected")
	}
	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		log.Warn().Err(err).Str("broker", p.cfg.Broker).Msg("mqtt publisher: connection lost")
	}

	p.client = p.newClient(opts)

	token := p.client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		p.client.Disconnect(0)
		return fmt.Errorf("timed out connecting to MQTT broker %s", p.cfg.Broker)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("failed to connect to MQTT broker: %w", err)
	}

	log.Info().
		Str("broker", p.cfg.Broker).
		Str("topic", p.cfg.Topic).
		Msg("mqtt publisher: started")

	p.wg.Add(1)
	go p.publishNotifications(notifications)

	return nil
}

// Stop publishes whatever is already queued on the notification channel,
// then disconnects from the broker. Safe to call more than once.
func (p *MQTTPublisher) Stop() {
	p.stopOnce.Do(func() {
		close(p.stopCh)
		p.wg.Wait()

		if p.client != nil && p.client.IsConnected() {
			log.Debug().Str("broker", p.cfg.Broker).Msg("mqtt publisher: disconnecting")
			p.client.Disconnect(disconnectQuiesce)
		}
	})
}

func (p *MQTTPublisher) publishNotifications(notifications <-chan models.Notification) {
	defer p.wg.Done()

	for {
		select {
		case <-p.stopCh:
			p.drain(notifications)
			return
		case notif, ok := <-notifications:
			if !ok {
				log.Debug().Msg("mqtt publisher: notification channel closed")
				return
			}
			p.publish(notif)
		}
	}
}

func (p *MQTTPublisher) drain(notifications <-chan models.Notification) {
	for {
		select {
		case notif, ok := <-notifications:
			if !ok {
				return
			}
			p.publish(notif)
		default:
			return
		}
	}
}

func (p *MQTTPublisher) publish(notif models.Notification) {
	payload := []byte(notif.Params)
	if payload == nil {
		payload = []byte("null")
	}

	topic := TopicFor(p.cfg.Topic, notif.Method)
	token := p.client.Publish(topic, 0, false, payload)
	if !token.WaitTimeout(publishTimeout) {
		log.Warn().Str("topic", topic).Msg("mqtt publisher: timed out publishing message")
		return
	}
	if err := token.Error(); err != nil {
		log.Error().Err(err).Str("topic", topic).Msg("mqtt publisher: failed to publish message")
		return
	}

	log.Debug().Str("topic", topic).Str("method", notif.Method).Msg("mqtt publisher: published notification")
}
