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

package models

import (
	"encoding/json"
	"time"
)

// PushKeys holds the client public key material of a Web Push subscription.
type PushKeys struct {
	P256dh string `json:"p256dh"`
	Auth   string `json:"auth"`
}

// PushSubscription is the browser-issued subscription descriptor stored per device.
type PushSubscription struct {
	Endpoint       string   `json:"endpoint"`
	ExpirationTime *int64   `json:"expirationTime,omitempty"`
	Keys           PushKeys `json:"keys"`
}

// Valid reports whether the subscription has everything needed to encrypt a message.
func (s *PushSubscription) Valid() bool {
	return s != nil && s.Endpoint != "" && s.Keys.P256dh != "" && s.Keys.Auth != ""
}

// ParsePushSubscription decodes a stored subscription. Empty input yields nil.
func ParsePushSubscription(raw []byte) (*PushSubscription, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	var sub PushSubscription
	if err := json.Unmarshal(raw, &sub); err != nil {
		return nil, err
	}

	return &sub, nil
}

// User is the minimal account view the service needs.
type User struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

// Device is a registered client endpoint owned by one user.
type Device struct {
	ID               string            `json:"id"`
	UserID           string            `json:"user_id"`
	Name             string            `json:"device_name"`
	Type             string            `json:"device_type"`
	PushSubscription *PushSubscription `json:"push_subscription,omitempty"`
	IsOnline         bool              `json:"is_online"`
	LastSeen         *time.Time        `json:"last_seen,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
}

// Label returns the name shown to other group members.
func (d *Device) Label() string {
	if d.Name != "" {
		return d.Name
	}

	return d.ID
}
