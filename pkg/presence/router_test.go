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
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/carverauto/buzzer/pkg/logger"
	"github.com/carverauto/buzzer/pkg/protocol"
)

var errBrokenPipe = errors.New("broken pipe")

func newTestRouter() (*Registry, *Router) {
	r := NewRegistry(logger.NewTestLogger())

	return r, NewRouter(r, logger.NewTestLogger())
}

func TestSendToDeviceDelivers(t *testing.T) {
	registry, router := newTestRouter()
	ch := &fakeChannel{}
	registry.Connect(ch, "d1", "u1", []string{"g1"})

	msg := protocol.StopCommand{RingSessionID: "s1"}
	assert.True(t, router.SendToDevice(context.Background(), "d1", msg))
	assert.Equal(t, []protocol.Outbound{msg}, ch.received())
}

func TestSendToDeviceOffline(t *testing.T) {
	_, router := newTestRouter()

	assert.False(t, router.SendToDevice(context.Background(), "d1", protocol.Pong{}))
}

func TestSendToDeviceFailureDeregisters(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	registry, router := newTestRouter()

	ch := NewMockChannel(ctrl)
	ch.EXPECT().Send(gomock.Any(), gomock.Any()).Return(errBrokenPipe)
	ch.EXPECT().Close().Return(nil)

	registry.Connect(ch, "d1", "u1", []string{"g1"})

	assert.False(t, router.SendToDevice(context.Background(), "d1", protocol.Pong{}))
	assert.False(t, registry.IsOnline("d1"))
	assert.Empty(t, registry.OnlineDevicesInGroup("g1"))

	// the device is gone, so the next send never reaches the channel
	assert.False(t, router.SendToDevice(context.Background(), "d1", protocol.Pong{}))
}

func TestSendToDeviceFailureKeepsNewerChannel(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	registry, router := newTestRouter()
	fresh := &fakeChannel{}

	stale := NewMockChannel(ctrl)
	stale.EXPECT().Send(gomock.Any(), gomock.Any()).DoAndReturn(func(context.Context, protocol.Outbound) error {
		// the device reconnects while the write to the old channel is failing
		registry.Connect(fresh, "d1", "u1", nil)
		return errBrokenPipe
	})
	stale.EXPECT().Close().Return(nil)

	registry.Connect(stale, "d1", "u1", nil)

	assert.False(t, router.SendToDevice(context.Background(), "d1", protocol.Pong{}))

	conn, ok := registry.Get("d1")
	require.True(t, ok)
	assert.Same(t, fresh, conn.Channel)
}

func TestSendToGroupReachesExactlyOnlineMembers(t *testing.T) {
	registry, router := newTestRouter()

	member1 := &fakeChannel{}
	member2 := &fakeChannel{}
	outsider := &fakeChannel{}

	registry.Connect(member1, "d1", "u1", []string{"g1"})
	registry.Connect(member2, "d2", "u2", []string{"g1", "g2"})
	registry.Connect(outsider, "d3", "u3", []string{"g2"})

	delivered := router.SendToGroup(context.Background(), "g1", protocol.Pong{})
	assert.Equal(t, 2, delivered)
	assert.Len(t, member1.received(), 1)
	assert.Len(t, member2.received(), 1)
	assert.Empty(t, outsider.received())
}

func TestSendToGroupContinuesPastFailures(t *testing.T) {
	registry, router := newTestRouter()

	broken := &fakeChannel{err: errBrokenPipe}
	healthy := &fakeChannel{}

	registry.Connect(broken, "d1", "u1", []string{"g1"})
	registry.Connect(healthy, "d2", "u2", []string{"g1"})

	delivered := router.SendToGroup(context.Background(), "g1", protocol.Pong{})
	assert.Equal(t, 1, delivered)
	assert.Len(t, healthy.received(), 1)
	assert.True(t, broken.isClosed())
	assert.False(t, registry.IsOnline("d1"))
	assert.ElementsMatch(t, []string{"d2"}, registry.OnlineDevicesInGroup("g1"))
}

func TestSendToUser(t *testing.T) {
	registry, router := newTestRouter()

	phone := &fakeChannel{}
	laptop := &fakeChannel{}
	other := &fakeChannel{}

	registry.Connect(phone, "d1", "u1", nil)
	registry.Connect(laptop, "d2", "u1", nil)
	registry.Connect(other, "d3", "u2", nil)

	assert.Equal(t, 2, router.SendToUser(context.Background(), "u1", protocol.Pong{}))
	assert.Empty(t, other.received())
	assert.Zero(t, router.SendToUser(context.Background(), "nobody", protocol.Pong{}))
}

func TestBroadcastPresenceChange(t *testing.T) {
	registry, router := newTestRouter()

	peer := &fakeChannel{}
	registry.Connect(peer, "d2", "u2", []string{"g1", "g2"})

	delivered := router.BroadcastPresenceChange(context.Background(), "d1", []string{"g1", "g2"}, false, "Kitchen tablet")
	assert.Equal(t, 1, delivered)

	msgs := peer.received()
	require.Len(t, msgs, 1)

	status, ok := msgs[0].(protocol.DeviceStatusChanged)
	require.True(t, ok)
	assert.Equal(t, "d1", status.DeviceID)
	assert.False(t, status.Online)
	assert.Equal(t, "Kitchen tablet", status.DeviceName)
	assert.False(t, status.Timestamp.IsZero())
}

func TestDisconnectMidSessionStopsDelivery(t *testing.T) {
	registry, router := newTestRouter()
	ch := &fakeChannel{}

	registry.Connect(ch, "d1", "u1", []string{"g1"})
	require.True(t, router.SendToDevice(context.Background(), "d1", protocol.Pong{}))

	ch.mu.Lock()
	ch.err = errBrokenPipe
	ch.mu.Unlock()

	assert.False(t, router.SendToDevice(context.Background(), "d1", protocol.StopCommand{RingSessionID: "s1"}))
	assert.False(t, registry.IsOnline("d1"))
}
