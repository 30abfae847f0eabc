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

// Package presence tracks which devices hold a live channel and routes messages to them.
package presence

//go:generate mockgen -destination=mock_presence.go -package=presence github.com/carverauto/buzzer/pkg/presence Channel

import (
	"context"

	"github.com/carverauto/buzzer/pkg/protocol"
)

// Channel is a live bidirectional connection to exactly one device.
type Channel interface {
	// Send writes one message. Any error means the channel is dead.
	Send(ctx context.Context, msg protocol.Outbound) error
	// Close tears the connection down. It must be safe to call more than once.
	Close() error
}
