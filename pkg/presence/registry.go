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
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"github.com/carverauto/buzzer/pkg/logger"
)

const meterName = "github.com/carverauto/buzzer/pkg/presence"

// Connection is a point-in-time copy of one registry entry.
type Connection struct {
	DeviceID string
	UserID   string
	GroupIDs []string
	LastSeen time.Time
	Channel  Channel
}

type entry struct {
	channel  Channel
	userID   string
	groups   []string
	lastSeen time.Time
}

// Registry maps devices to their live channel, owner and group memberships.
// All indexes are guarded by one lock so readers never observe a partial update.
type Registry struct {
	mu      sync.RWMutex
	devices map[string]*entry              // device → connection
	users   map[string]map[string]struct{} // user → devices
	groups  map[string]map[string]struct{} // group → devices

	now       func() time.Time
	logger    logger.Logger
	connected metric.Int64UpDownCounter
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithClock overrides the time source used for last-activity stamps.
func WithClock(now func() time.Time) RegistryOption {
	return func(r *Registry) {
		r.now = now
	}
}

func NewRegistry(log logger.Logger, opts ...RegistryOption) *Registry {
	connected, err := otel.Meter(meterName).Int64UpDownCounter("buzzer_connected_devices",
		metric.WithDescription("Devices currently holding a live channel"))
	if err != nil {
		log.Warn().Err(err).Msg("Failed to create connected devices gauge")
	}

	r := &Registry{
		devices:   make(map[string]*entry),
		users:     make(map[string]map[string]struct{}),
		groups:    make(map[string]map[string]struct{}),
		now:       time.Now,
		logger:    log,
		connected: connected,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Connect registers ch as the live channel of deviceID, replacing any earlier entry.
// The replaced channel, if any, is returned so the caller can close it.
func (r *Registry) Connect(ch Channel, deviceID, userID string, groupIDs []string) Channel {
	groups := dedupe(groupIDs)

	r.mu.Lock()

	var replaced Channel

	old, existed := r.devices[deviceID]
	if existed {
		if old.channel != ch {
			replaced = old.channel
		}

		r.removeLocked(deviceID, old)
	}

	r.devices[deviceID] = &entry{
		channel:  ch,
		userID:   userID,
		groups:   groups,
		lastSeen: r.now(),
	}

	addIndex(r.users, userID, deviceID)

	for _, g := range groups {
		addIndex(r.groups, g, deviceID)
	}

	r.mu.Unlock()

	if !existed {
		r.addConnected(1)
	}

	r.logger.Info().
		Str("device_id", deviceID).
		Str("user_id", userID).
		Int("groups", len(groups)).
		Bool("replaced", replaced != nil).
		Msg("Device connected")

	return replaced
}

// Disconnect removes deviceID and every index entry derived from it. Unknown devices are ignored.
func (r *Registry) Disconnect(deviceID string) {
	r.mu.Lock()

	e, ok := r.devices[deviceID]
	if ok {
		r.removeLocked(deviceID, e)
	}

	r.mu.Unlock()

	if ok {
		r.addConnected(-1)
		r.logger.Info().Str("device_id", deviceID).Msg("Device disconnected")
	}
}

// Release disconnects deviceID only while ch is still its registered channel.
// It reports whether an entry was removed.
func (r *Registry) Release(deviceID string, ch Channel) bool {
	r.mu.Lock()

	e, ok := r.devices[deviceID]
	if ok && e.channel == ch {
		r.removeLocked(deviceID, e)
	} else {
		ok = false
	}

	r.mu.Unlock()

	if ok {
		r.addConnected(-1)
		r.logger.Info().Str("device_id", deviceID).Msg("Device released")
	}

	return ok
}

func (r *Registry) IsOnline(deviceID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.devices[deviceID]

	return ok
}

// OnlineDevicesInGroup returns the devices currently online in groupID, unordered.
func (r *Registry) OnlineDevicesInGroup(groupID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return keys(r.groups[groupID])
}

// DevicesOfUser returns the online devices owned by userID, unordered.
func (r *Registry) DevicesOfUser(userID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return keys(r.users[userID])
}

// Get returns a copy of the entry for deviceID.
func (r *Registry) Get(deviceID string) (Connection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.devices[deviceID]
	if !ok {
		return Connection{}, false
	}

	return snapshot(deviceID, e), true
}

// Touch refreshes the last-activity stamp of deviceID while ch is still its channel.
func (r *Registry) Touch(deviceID string, ch Channel) bool {
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.devices[deviceID]
	if !ok || e.channel != ch {
		return false
	}

	e.lastSeen = now

	return true
}

// Stale returns the connections whose last activity is before cutoff.
func (r *Registry) Stale(cutoff time.Time) []Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var stale []Connection

	for id, e := range r.devices {
		if e.lastSeen.Before(cutoff) {
			stale = append(stale, snapshot(id, e))
		}
	}

	return stale
}

// Count returns the number of online devices.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.devices)
}

// CloseAll closes every registered channel. Entries are removed by the channels' own teardown.
func (r *Registry) CloseAll() {
	r.mu.RLock()

	channels := make([]Channel, 0, len(r.devices))
	for _, e := range r.devices {
		channels = append(channels, e.channel)
	}

	r.mu.RUnlock()

	for _, ch := range channels {
		if err := ch.Close(); err != nil {
			r.logger.Debug().Err(err).Msg("Error closing channel during shutdown")
		}
	}
}

func (r *Registry) removeLocked(deviceID string, e *entry) {
	delete(r.devices, deviceID)
	removeIndex(r.users, e.userID, deviceID)

	for _, g := range e.groups {
		removeIndex(r.groups, g, deviceID)
	}
}

func (r *Registry) addConnected(delta int64) {
	if r.connected != nil {
		r.connected.Add(context.Background(), delta)
	}
}

func snapshot(deviceID string, e *entry) Connection {
	return Connection{
		DeviceID: deviceID,
		UserID:   e.userID,
		GroupIDs: append([]string(nil), e.groups...),
		LastSeen: e.lastSeen,
		Channel:  e.channel,
	}
}

func addIndex(index map[string]map[string]struct{}, key, deviceID string) {
	set, ok := index[key]
	if !ok {
		set = make(map[string]struct{})
		index[key] = set
	}

	set[deviceID] = struct{}{}
}

func removeIndex(index map[string]map[string]struct{}, key, deviceID string) {
	set, ok := index[key]
	if !ok {
		return
	}

	delete(set, deviceID)

	if len(set) == 0 {
		delete(index, key)
	}
}

func keys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}

	return out
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))

	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}

		seen[id] = struct{}{}
		out = append(out, id)
	}

	return out
}
