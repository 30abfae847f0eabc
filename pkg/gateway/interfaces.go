/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package gateway accepts device websocket connections and ties them to the presence registry.
package gateway

//go:generate mockgen -destination=mock_gateway.go -package=gateway github.com/carverauto/buzzer/pkg/gateway RingReporter,PresencePublisher

import (
	"context"

	"github.com/carverauto/buzzer/pkg/models"
	"github.com/carverauto/buzzer/pkg/protocol"
)

// TokenVerifier resolves a bearer token to a user id.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// RingReporter receives the ring reports devices send over their channel.
type RingReporter interface {
	Acknowledge(ctx context.Context, deviceID string, report protocol.Inbound) (*models.RingSession, error)
}

// PresencePublisher publishes device online/offline transitions.
type PresencePublisher interface {
	PublishPresenceEvent(ctx context.Context, event *models.PresenceEventData) error
}
