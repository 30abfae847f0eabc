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

import "time"

// CloudEvent represents a CloudEvents v1.0 compliant event.
type CloudEvent struct {
	SpecVersion     string      `json:"specversion"`
	ID              string      `json:"id"`
	Source          string      `json:"source"`
	Type            string      `json:"type"`
	DataContentType string      `json:"datacontenttype"`
	Subject         string      `json:"subject,omitempty"`
	Time            *time.Time  `json:"time,omitempty"`
	Data            interface{} `json:"data,omitempty"`
}

// RingEventData is the payload of events.ring.* events.
type RingEventData struct {
	SessionID       string     `json:"ring_session_id"`
	GroupID         string     `json:"group_id"`
	InitiatorUserID string     `json:"initiated_by_user_id"`
	TargetDeviceID  string     `json:"target_device_id"`
	Status          RingStatus `json:"status"`
	DurationSeconds *int       `json:"duration_seconds,omitempty"`
	Timestamp       time.Time  `json:"timestamp"`
}

// NewRingEventData snapshots a session for publication.
func NewRingEventData(s *RingSession, at time.Time) *RingEventData {
	return &RingEventData{
		SessionID:       s.ID,
		GroupID:         s.GroupID,
		InitiatorUserID: s.InitiatorUserID,
		TargetDeviceID:  s.TargetDeviceID,
		Status:          s.Status,
		DurationSeconds: s.DurationSeconds,
		Timestamp:       at,
	}
}

// PresenceEventData is the payload of events.presence.* events.
type PresenceEventData struct {
	DeviceID   string    `json:"device_id"`
	UserID     string    `json:"user_id"`
	DeviceName string    `json:"device_name"`
	GroupIDs   []string  `json:"group_ids"`
	Online     bool      `json:"online"`
	Timestamp  time.Time `json:"timestamp"`
}
