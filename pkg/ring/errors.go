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

package ring

import "errors"

var (
	// ErrSessionNotFound is returned for an unknown ring session id.
	ErrSessionNotFound = errors.New("ring session not found")
	// ErrDeviceUnreachable is returned by Start when the ring command could not be delivered.
	ErrDeviceUnreachable = errors.New("failed to send ring command - device may be offline")
	// ErrInvalidTransition is returned when a session is not in a state the transition may leave.
	ErrInvalidTransition = errors.New("invalid ring session transition")
	// ErrSessionExists is returned when creating a session whose id is already stored.
	ErrSessionExists = errors.New("ring session already exists")
	// ErrForeignDevice is returned when a device reports on a session that does not target it.
	ErrForeignDevice = errors.New("ring session does not target this device")
	// ErrUnsupportedReport is returned for inbound messages that are not ring reports.
	ErrUnsupportedReport = errors.New("unsupported ring report")
	// ErrInvalidDuration is returned by Start for a duration outside 1..models.MaxRingDurationSeconds.
	ErrInvalidDuration = errors.New("ring duration out of range")
	errTargetRequired  = errors.New("target device is required")
)
