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

package presence

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"github.com/carverauto/buzzer/pkg/logger"
	"github.com/carverauto/buzzer/pkg/protocol"
)

// Router delivers messages over the channels held by a Registry.
// Delivery is at-most-once: nothing is queued for offline devices.
type Router struct {
	registry     *Registry
	logger       logger.Logger
	sendFailures metric.Int64Counter
	now          func() time.Time
}

func NewRouter(registry *Registry, log logger.Logger) *Router {
	failures, err := otel.Meter(meterName).Int64Counter("buzzer_channel_send_failures_total",
		metric.WithDescription("Channel sends that failed and deregistered the device"))
	if err != nil {
		log.Warn().Err(err).Msg("Failed to create send failure counter")
	}

	return &Router{
		registry:     registry,
		logger:       log,
		sendFailures: failures,
		now:          time.Now,
	}
}

// Registry returns the registry the router delivers through.
func (r *Router) Registry() *Registry {
	return r.registry
}

// SendToDevice writes msg to the live channel of deviceID. A failed write deregisters
// that channel and closes it before false is returned.
func (r *Router) SendToDevice(ctx context.Context, deviceID string, msg protocol.Outbound) bool {
	conn, ok := r.registry.Get(deviceID)
	if !ok {
		r.logger.Debug().
			Str("device_id", deviceID).
			Str("type", msg.MessageType()).
			Msg("Device not connected, dropping message")

		return false
	}

	if err := conn.Channel.Send(ctx, msg); err != nil {
		r.logger.Error().
			Err(err).
			Str("device_id", deviceID).
			Str("type", msg.MessageType()).
			Msg("Error sending message to device")

		r.registry.Release(deviceID, conn.Channel)

		if closeErr := conn.Channel.Close(); closeErr != nil {
			r.logger.Debug().Err(closeErr).Str("device_id", deviceID).Msg("Error closing failed channel")
		}

		if r.sendFailures != nil {
			r.sendFailures.Add(ctx, 1)
		}

		return false
	}

	r.logger.Debug().
		Str("device_id", deviceID).
		Str("type", msg.MessageType()).
		Msg("Message sent to device")

	return true
}

// SendToGroup fans msg out to every device online in groupID when called.
// It returns the number of devices the message reached.
func (r *Router) SendToGroup(ctx context.Context, groupID string, msg protocol.Outbound) int {
	return r.fanOut(ctx, r.registry.OnlineDevicesInGroup(groupID), msg)
}

// SendToUser fans msg out to every online device of userID.
func (r *Router) SendToUser(ctx context.Context, userID string, msg protocol.Outbound) int {
	return r.fanOut(ctx, r.registry.DevicesOfUser(userID), msg)
}

// BroadcastPresenceChange tells every device in the given groups that deviceID went online or offline.
// A device sharing several groups with deviceID receives the event once.
func (r *Router) BroadcastPresenceChange(ctx context.Context, deviceID string, groupIDs []string, online bool, label string) int {
	msg := protocol.DeviceStatusChanged{
		DeviceID:   deviceID,
		Online:     online,
		DeviceName: label,
		Timestamp:  r.now().UTC(),
	}

	var targets []string

	seen := make(map[string]struct{})

	for _, g := range groupIDs {
		for _, id := range r.registry.OnlineDevicesInGroup(g) {
			if _, ok := seen[id]; ok {
				continue
			}

			seen[id] = struct{}{}
			targets = append(targets, id)
		}
	}

	delivered := r.fanOut(ctx, targets, msg)

	r.logger.Debug().
		Str("device_id", deviceID).
		Bool("online", online).
		Int("recipients", len(targets)).
		Int("delivered", delivered).
		Msg("Broadcast presence change")

	return delivered
}

func (r *Router) fanOut(ctx context.Context, deviceIDs []string, msg protocol.Outbound) int {
	delivered := 0

	for _, id := range deviceIDs {
		if r.SendToDevice(ctx, id, msg) {
			delivered++
		}
	}

	return delivered
}
