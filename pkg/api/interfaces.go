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

// Package api serves the buzzer HTTP API.
package api

//go:generate mockgen -destination=mock_api.go -package=api github.com/carverauto/buzzer/pkg/api RingService

import (
	"context"

	"github.com/gorilla/mux"

	"github.com/carverauto/buzzer/pkg/models"
	"github.com/carverauto/buzzer/pkg/ring"
)

// RingService starts, stops and reads ring sessions for already authorized callers.
type RingService interface {
	Start(ctx context.Context, req ring.StartRequest) (*models.RingSession, error)
	Stop(ctx context.Context, sessionID string) (*models.RingSession, error)
	Get(ctx context.Context, sessionID string) (*models.RingSession, error)
}

// PresenceView answers live-channel queries.
type PresenceView interface {
	IsOnline(deviceID string) bool
	OnlineDevicesInGroup(groupID string) []string
}

// PushKeys exposes the VAPID public key.
type PushKeys interface {
	Configured() bool
	PublicKey() string
}

// RouteRegistrar mounts extra handlers, such as the websocket gateway, on the API router.
type RouteRegistrar interface {
	RegisterRoutes(r *mux.Router)
}
