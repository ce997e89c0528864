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

package cli

import (
	"context"
	"time"

	"github.com/ZaparooProject/zaparoo-covers/v2/pkg/api/models"
	"github.com/ZaparooProject/zaparoo-covers/v2/pkg/config"
	"github.com/ZaparooProject/zaparoo-covers/v2/pkg/service/broker"
	"github.com/ZaparooProject/zaparoo-covers/v2/pkg/service/publishers"
	"github.com/rs/zerolog/log"
)

const (
	publisherBufferSize = 32
	drainTimeout        = 5 * time.Second
)

// StartNotifications fans notifications from source out to the API events
// stream and every configured MQTT publisher. Publishers that fail to
// connect are skipped.
//
// The returned function stops everything. Close source before calling it
// so queued notifications, covers.complete included, are delivered first.
func StartNotifications(
	ctx context.Context,
	cfg *config.Instance,
	source <-chan models.Notification,
	opts ...publishers.Option,
) (b *broker.Broker, stop func()) {
	b = broker.NewBroker(ctx, source)
	b.Start()

	var mqttConfigs []config.MQTTPublisher
	if cfg != nil {
		mqttConfigs = cfg.MQTTPublishers()
	}

	active := make([]*publishers.MQTTPublisher, 0, len(mqttConfigs))
	for _, mqttCfg := range mqttConfigs {
		log.Info().Msgf("starting MQTT publisher: %s (topic: %s)", mqttCfg.Broker, mqttCfg.Topic)

		pub := publishers.NewMQTTPublisher(mqttCfg, opts...)
		ch, id := b.Subscribe(publisherBufferSize, pub.Filter()...)
		if err := pub.Start(ch); err != nil {
			log.Error().Err(err).Msgf("failed to start MQTT publisher for %s", mqttCfg.Broker)
			b.Unsubscribe(id)
			continue
		}
		active = append(active, pub)
	}

	if len(active) > 0 {
		log.Info().Msgf("started %d MQTT publisher(s)", len(active))
	}

	return b, func() {
		select {
		case <-b.Done():
		case <-time.After(drainTimeout):
			log.Warn().Msg("timed out waiting for notifications to drain")
			b.Stop()
		}
		for _, pub := range active {
			pub.Stop()
		}
	}
}
