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
	"math"
	"time"
)

// RingStatus is the lifecycle state of a ring session.
type RingStatus string

const (
	RingStatusInitiated RingStatus = "initiated"
	RingStatusRinging   RingStatus = "ringing"
	RingStatusFailed    RingStatus = "failed"
	RingStatusStopped   RingStatus = "stopped"
	RingStatusCompleted RingStatus = "completed"
)

// IsTerminal reports whether no further transition may leave this status.
func (s RingStatus) IsTerminal() bool {
	switch s {
	case RingStatusFailed, RingStatusStopped, RingStatusCompleted:
		return true
	case RingStatusInitiated, RingStatusRinging:
		return false
	}

	return false
}

// Valid reports whether s is a known status.
func (s RingStatus) Valid() bool {
	switch s {
	case RingStatusInitiated, RingStatusRinging, RingStatusFailed, RingStatusStopped, RingStatusCompleted:
		return true
	}

	return false
}

// RingSession is one request to alert a target device.
type RingSession struct {
	ID              string     `json:"id"`
	GroupID         string     `json:"group_id"`
	InitiatorUserID string     `json:"initiated_by_user_id"`
	TargetDeviceID  string     `json:"target_device_id"`
	DurationSeconds *int       `json:"duration_seconds"`
	Status          RingStatus `json:"status"`
	StartedAt       time.Time  `json:"started_at"`
	StoppedAt       *time.Time `json:"stopped_at"`
	CompletedAt     *time.Time `json:"completed_at"`
}

// MaxRingDurationSeconds is the longest ring the duration_seconds INTEGER column can hold.
const MaxRingDurationSeconds = math.MaxInt32

// Duration returns the requested ring length, or zero when the ring is continuous.
// Lengths above MaxRingDurationSeconds are capped.
func (s *RingSession) Duration() time.Duration {
	if s.DurationSeconds == nil || *s.DurationSeconds <= 0 {
		return 0
	}

	return time.Duration(min(*s.DurationSeconds, MaxRingDurationSeconds)) * time.Second
}

// Clone returns a deep copy so callers never share the store's pointers.
func (s *RingSession) Clone() *RingSession {
	if s == nil {
		return nil
	}

	c := *s

	if s.DurationSeconds != nil {
		d := *s.DurationSeconds
		c.DurationSeconds = &d
	}

	if s.StoppedAt != nil {
		t := *s.StoppedAt
		c.StoppedAt = &t
	}

	if s.CompletedAt != nil {
		t := *s.CompletedAt
		c.CompletedAt = &t
	}

	return &c
}
