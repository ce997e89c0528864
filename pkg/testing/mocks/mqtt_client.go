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
	"time"

	"github.com/ZaparooProject/zaparoo-covers/v2/pkg/helpers/syncutil"
	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// PublishedMessage is a message recorded by MockMQTTClient.
type PublishedMessage struct {
	Topic   string
	Payload []byte
}

// MockMQTTClient implements mqtt.Client and records everything published.
// Set ConnectError or PublishError before use to simulate failures.
type MockMQTTClient struct {
	ConnectError   error
	PublishError   error
	opts           *mqtt.ClientOptions
	published      []PublishedMessage
	disconnectCall int
	connected      bool
	mu             syncutil.Mutex
}

func NewMockMQTTClient() *MockMQTTClient {
	return &MockMQTTClient{}
}

// Factory returns a client constructor that records the options it was
// given and hands back the mock.
func (m *MockMQTTClient) Factory() func(*mqtt.ClientOptions) mqtt.Client {
	return func(opts *mqtt.ClientOptions) mqtt.Client {
		m.mu.Lock()
		m.opts = opts
		m.mu.Unlock()
		return m
	}
}

// Options returns the options passed to the factory, or nil.
func (m *MockMQTTClient) Options() *mqtt.ClientOptions {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.opts
}

// Messages returns a copy of the published messages in order.
func (m *MockMQTTClient) Messages() []PublishedMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]PublishedMessage(nil), m.published...)
}

// DisconnectCalls returns how many times Disconnect was called.
func (m *MockMQTTClient) DisconnectCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.disconnectCall
}

func (m *MockMQTTClient) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}

func (m *MockMQTTClient) IsConnectionOpen() bool {
	return m.IsConnected()
}

func (m *MockMQTTClient) Connect() mqtt.Token {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ConnectError != nil {
		return &MockToken{Err: m.ConnectError}
	}
	m.connected = true
	return &MockToken{}
}

func (m *MockMQTTClient) Disconnect(_ uint) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connected = false
	m.disconnectCall++
}

func (m *MockMQTTClient) Publish(topic string, _ byte, _ bool, payload any) mqtt.Token {
	if m.PublishError != nil {
		return &MockToken{Err: m.PublishError}
	}
	data, _ := payload.([]byte)
	m.mu.Lock()
	m.published = append(m.published, PublishedMessage{Topic: topic, Payload: data})
	m.mu.Unlock()
	return &MockToken{}
}

func (*MockMQTTClient) Subscribe(_ string, _ byte, _ mqtt.MessageHandler) mqtt.Token {
	return &MockToken{}
}

func (*MockMQTTClient) SubscribeMultiple(_ map[string]byte, _ mqtt.MessageHandler) mqtt.Token {
	return &MockToken{}
}

func (*MockMQTTClient) Unsubscribe(_ ...string) mqtt.Token {
	return &MockToken{}
}

func (*MockMQTTClient) AddRoute(_ string, _ mqtt.MessageHandler) {}

func (*MockMQTTClient) OptionsReader() mqtt.ClientOptionsReader {
	return mqtt.ClientOptionsReader{}
}

// MockToken implements mqtt.Token and completes immediately.
type MockToken struct {
	Err error
}

func (*MockToken) Wait() bool {
	return true
}

func (*MockToken) WaitTimeout(_ time.Duration) bool {
	return true
}

func (*MockToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

func (t *MockToken) Error() error {
	return t.Err
}
