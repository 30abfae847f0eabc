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

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
}

// StartRingRequest asks to ring a device. GroupID is optional; any group shared
// with the target owner is used when it is empty.
type StartRingRequest struct {
	TargetDeviceID  string `json:"target_device_id"`
	DurationSeconds *int   `json:"duration_seconds,omitempty"`
	GroupID         string `json:"group_id,omitempty"`
}

// OnlineDevicesResponse lists the devices of a group holding a live channel.
type OnlineDevicesResponse struct {
	GroupID       string   `json:"group_id"`
	OnlineDevices []string `json:"online_devices"`
}

// SubscribeRequest registers a Web Push subscription for a device.
type SubscribeRequest struct {
	DeviceID     string            `json:"device_id"`
	Subscription *PushSubscription `json:"subscription"`
}

// StatusResponse is a generic acknowledgement body.
type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// VAPIDKeyResponse carries the key browsers subscribe with.
type VAPIDKeyResponse struct {
	PublicKey string `json:"publicKey"`
}
