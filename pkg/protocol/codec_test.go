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

package protocol

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeCarriesType(t *testing.T) {
	duration := 30
	ts := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	tests := []struct {
		name   string
		msg    Outbound
		fields map[string]interface{}
	}{
		{
			name: "ring command",
			msg:  RingCommand{RingSessionID: "s1", Duration: &duration, InitiatedByUserID: "u1", Timestamp: ts},
			fields: map[string]interface{}{
				"type":                 TypeRingCommand,
				"ring_session_id":      "s1",
				"duration":             float64(30),
				"initiated_by_user_id": "u1",
			},
		},
		{
			name:   "continuous ring command",
			msg:    RingCommand{RingSessionID: "s2", Timestamp: ts},
			fields: map[string]interface{}{"type": TypeRingCommand, "duration": nil},
		},
		{
			name:   "stop command",
			msg:    StopCommand{RingSessionID: "s1", Timestamp: ts},
			fields: map[string]interface{}{"type": TypeStopCommand, "ring_session_id": "s1"},
		},
		{
			name: "status change",
			msg:  DeviceStatusChanged{DeviceID: "d1", Online: true, DeviceName: "phone", Timestamp: ts},
			fields: map[string]interface{}{
				"type":        TypeDeviceStatusChanged,
				"device_id":   "d1",
				"online":      true,
				"device_name": "phone",
			},
		},
		{
			name:   "pong",
			msg:    Pong{Timestamp: ts},
			fields: map[string]interface{}{"type": TypePong, "timestamp": "2025-01-02T03:04:05Z"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := Encode(tt.msg)
			require.NoError(t, err)

			var decoded map[string]interface{}
			require.NoError(t, json.Unmarshal(data, &decoded))

			for key, want := range tt.fields {
				assert.Contains(t, decoded, key)
				assert.Equal(t, want, decoded[key], key)
			}

			back, err := DecodeOutbound(data)
			require.NoError(t, err)
			assert.Equal(t, tt.msg.MessageType(), back.MessageType())
		})
	}
}

func TestDecodeInbound(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Inbound
		err      error
	}{
		{name: "heartbeat", input: `{"type":"heartbeat"}`, expected: Heartbeat{}},
		{name: "ring started", input: `{"type":"ring_started","ring_session_id":"s1"}`, expected: RingStarted{RingSessionID: "s1"}},
		{name: "ring stopped", input: `{"type":"ring_stopped","ring_session_id":"s1"}`, expected: RingStopped{RingSessionID: "s1"}},
		{
			name:     "ring completed",
			input:    `{"type":"ring_completed","ring_session_id":"s1"}`,
			expected: RingCompleted{RingSessionID: "s1"},
		},
		{name: "unknown", input: `{"type":"dance"}`, err: ErrUnknownType},
		{name: "missing type", input: `{"ring_session_id":"s1"}`, err: ErrMissingType},
		{name: "server message", input: `{"type":"pong"}`, err: ErrUnknownType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := Decode([]byte(tt.input))
			if tt.err != nil {
				require.ErrorIs(t, err, tt.err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expected, msg)
		})
	}
}

func TestDecodeRejectsMalformed(t *testing.T) {
	_, err := Decode([]byte(`not json`))
	require.Error(t, err)

	_, err = Decode([]byte(`{"type":"ring_started","ring_session_id":7}`))
	require.Error(t, err)
}

func TestInboundRoundTripKeepsType(t *testing.T) {
	data, err := json.Marshal(RingCompleted{RingSessionID: "s9"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"ring_completed","ring_session_id":"s9"}`, string(data))

	data, err = json.Marshal(Heartbeat{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"heartbeat"}`, string(data))
}
