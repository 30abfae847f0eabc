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

// Package ring owns the ring session state machine.
package ring

//go:generate mockgen -destination=mock_ring.go -package=ring github.com/carverauto/buzzer/pkg/ring Notifier,EventPublisher,SubscriptionStore

import (
	"context"
	"time"

	"github.com/carverauto/buzzer/pkg/models"
	"github.com/carverauto/buzzer/pkg/protocol"
	"github.com/carverauto/buzzer/pkg/push"
)

// Store persists ring sessions. It is written only by the Coordinator.
type Store interface {
	// Create inserts a new session.
	Create(ctx context.Context, session *models.RingSession) error
	// Get returns the session or ErrSessionNotFound.
	Get(ctx context.Context, id string) (*models.RingSession, error)
	// Transition moves the session to status `to` if its current status is one of `from`.
	// It stamps stopped_at or completed_at from `at` when entering those states.
	// When the current status is not in `from` it returns the stored session with ErrInvalidTransition.
	Transition(ctx context.Context, id string, to models.RingStatus, at time.Time,
		from ...models.RingStatus) (*models.RingSession, error)
}

// Sender delivers a message to a device's live channel.
type Sender interface {
	SendToDevice(ctx context.Context, deviceID string, msg protocol.Outbound) bool
}

// Notifier sends an out-of-band push notification.
type Notifier interface {
	Notify(ctx context.Context, device *models.Device, title, body string) push.Result
}

// EventPublisher publishes ring lifecycle events.
type EventPublisher interface {
	PublishRingEvent(ctx context.Context, event *models.RingEventData) error
}

// SubscriptionStore clears push subscriptions the push service reports as gone.
type SubscriptionStore interface {
	SavePushSubscription(ctx context.Context, deviceID string, sub *models.PushSubscription) error
}

// Timer is a pending auto-completion.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d.
type AfterFunc func(d time.Duration, f func()) Timer
