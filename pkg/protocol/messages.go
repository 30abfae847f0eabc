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

// Package protocol defines the JSON messages exchanged with devices over their live channel.
// Both directions are closed sets: only the types declared here satisfy Outbound and Inbound.
package protocol

import (
	"encoding/json"
	"time"
)

// Message type discriminators.
const (
	TypeRingCommand         = "ring_command"
	TypeStopCommand         = "stop_command"
	TypeDeviceStatusChanged = "device_status_changed"
	TypePong                = "pong"

	TypeHeartbeat     = "heartbeat"
	TypeRingStarted   = "ring_started"
	TypeRingStopped   = "ring_stopped"
	TypeRingCompleted = "ring_completed"
)

// Outbound is a message sent from the server to a device.
type Outbound interface {
	MessageType() string
	outbound()
}

// Inbound is a message reported by a device.
type Inbound interface {
	MessageType() string
	inbound()
}

// RingCommand tells a device to start alerting.
type RingCommand struct {
	RingSessionID     string    `json:"ring_session_id"`
	Duration          *int      `json:"duration"`
	InitiatedByUserID string    `json:"initiated_by_user_id"`
	InitiatorName     string    `json:"initiator_name,omitempty"`
	Timestamp         time.Time `json:"timestamp"`
}

// StopCommand tells a device to stop alerting.
type StopCommand struct {
	RingSessionID string    `json:"ring_session_id"`
	Timestamp     time.Time `json:"timestamp"`
}

// DeviceStatusChanged announces a presence change to the other members of a group.
type DeviceStatusChanged struct {
	DeviceID   string    `json:"device_id"`
	Online     bool      `json:"online"`
	DeviceName string    `json:"device_name"`
	Timestamp  time.Time `json:"timestamp"`
}

// Pong answers a heartbeat.
type Pong struct {
	Timestamp time.Time `json:"timestamp"`
}

func (RingCommand) MessageType() string         { return TypeRingCommand }
func (StopCommand) MessageType() string         { return TypeStopCommand }
func (DeviceStatusChanged) MessageType() string { return TypeDeviceStatusChanged }
func (Pong) MessageType() string                { return TypePong }

func (RingCommand) outbound()         {}
func (StopCommand) outbound()         {}
func (DeviceStatusChanged) outbound() {}
func (Pong) outbound()                {}

func (m RingCommand) MarshalJSON() ([]byte, error) {
	type alias RingCommand

	return json.Marshal(struct {
		Type string `json:"type"`
		alias
	}{Type: TypeRingCommand, alias: alias(m)})
}

func (m StopCommand) MarshalJSON() ([]byte, error) {
	type alias StopCommand

	return json.Marshal(struct {
		Type string `json:"type"`
		alias
	}{Type: TypeStopCommand, alias: alias(m)})
}

func (m DeviceStatusChanged) MarshalJSON() ([]byte, error) {
	type alias DeviceStatusChanged

	return json.Marshal(struct {
		Type string `json:"type"`
		alias
	}{Type: TypeDeviceStatusChanged, alias: alias(m)})
}

func (m Pong) MarshalJSON() ([]byte, error) {
	type alias Pong

	return json.Marshal(struct {
		Type string `json:"type"`
		alias
	}{Type: TypePong, alias: alias(m)})
}

// Heartbeat is the periodic keepalive a device sends.
type Heartbeat struct{}

// RingStarted reports that the device began alerting.
type RingStarted struct {
	RingSessionID string `json:"ring_session_id"`
}

// RingStopped reports that the device stopped alerting on request.
type RingStopped struct {
	RingSessionID string `json:"ring_session_id"`
}

// RingCompleted reports that the requested duration elapsed on the device.
type RingCompleted struct {
	RingSessionID string `json:"ring_session_id"`
}

func (Heartbeat) MessageType() string     { return TypeHeartbeat }
func (RingStarted) MessageType() string   { return TypeRingStarted }
func (RingStopped) MessageType() string   { return TypeRingStopped }
func (RingCompleted) MessageType() string { return TypeRingCompleted }

func (Heartbeat) inbound()     {}
func (RingStarted) inbound()   {}
func (RingStopped) inbound()   {}
func (RingCompleted) inbound() {}

func (m Heartbeat) MarshalJSON() ([]byte, error) {
	type alias Heartbeat

	return json.Marshal(struct {
		Type string `json:"type"`
		alias
	}{Type: TypeHeartbeat, alias: alias(m)})
}

func (m RingStarted) MarshalJSON() ([]byte, error) {
	type alias RingStarted

	return json.Marshal(struct {
		Type string `json:"type"`
		alias
	}{Type: TypeRingStarted, alias: alias(m)})
}

func (m RingStopped) MarshalJSON() ([]byte, error) {
	type alias RingStopped

	return json.Marshal(struct {
		Type string `json:"type"`
		alias
	}{Type: TypeRingStopped, alias: alias(m)})
}

func (m RingCompleted) MarshalJSON() ([]byte, error) {
	type alias RingCompleted

	return json.Marshal(struct {
		Type string `json:"type"`
		alias
	}{Type: TypeRingCompleted, alias: alias(m)})
}
