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
	"errors"
	"fmt"
)

var (
	ErrMissingType = errors.New("message has no type")
	ErrUnknownType = errors.New("unknown message type")
)

type envelope struct {
	Type string `json:"type"`
}

func peekType(data []byte) (string, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return "", fmt.Errorf("failed to decode message: %w", err)
	}

	if env.Type == "" {
		return "", ErrMissingType
	}

	return env.Type, nil
}

// Decode parses a device report.
func Decode(data []byte) (Inbound, error) {
	typ, err := peekType(data)
	if err != nil {
		return nil, err
	}

	switch typ {
	case TypeHeartbeat:
		return Heartbeat{}, nil
	case TypeRingStarted:
		return decodeAs[RingStarted](data)
	case TypeRingStopped:
		return decodeAs[RingStopped](data)
	case TypeRingCompleted:
		return decodeAs[RingCompleted](data)
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownType, typ)
}

// DecodeOutbound parses a server message. Device clients and tests use it.
func DecodeOutbound(data []byte) (Outbound, error) {
	typ, err := peekType(data)
	if err != nil {
		return nil, err
	}

	switch typ {
	case TypeRingCommand:
		return decodeAs[RingCommand](data)
	case TypeStopCommand:
		return decodeAs[StopCommand](data)
	case TypeDeviceStatusChanged:
		return decodeAs[DeviceStatusChanged](data)
	case TypePong:
		return decodeAs[Pong](data)
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownType, typ)
}

// Encode renders an outbound message with its type discriminator.
func Encode(msg Outbound) ([]byte, error) {
	return json.Marshal(msg)
}

func decodeAs[T any](data []byte) (T, error) {
	var msg T
	if err := json.Unmarshal(data, &msg); err != nil {
		return msg, fmt.Errorf("failed to decode %T: %w", msg, err)
	}

	return msg, nil
}
