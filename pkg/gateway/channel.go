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

package gateway

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/carverauto/buzzer/pkg/presence"
	"github.com/carverauto/buzzer/pkg/protocol"
)

var errChannelClosed = errors.New("channel closed")

// wsChannel adapts a websocket connection to presence.Channel. Writes are serialized
// because gorilla connections allow one concurrent writer.
type wsChannel struct {
	conn         *websocket.Conn
	writeTimeout time.Duration

	mu     sync.Mutex
	closed atomic.Bool

	closeOnce sync.Once
	closeErr  error
}

var _ presence.Channel = (*wsChannel)(nil)

func newWSChannel(conn *websocket.Conn, writeTimeout time.Duration) *wsChannel {
	return &wsChannel{conn: conn, writeTimeout: writeTimeout}
}

// Send writes msg as one text frame. The write deadline is the earlier of the
// context deadline and the configured write timeout.
func (c *wsChannel) Send(ctx context.Context, msg protocol.Outbound) error {
	payload, err := protocol.Encode(msg)
	if err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return errChannelClosed
	}

	if err := c.conn.SetWriteDeadline(c.deadline(ctx)); err != nil {
		return fmt.Errorf("set write deadline: %w", err)
	}

	if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		return fmt.Errorf("write %s: %w", msg.MessageType(), err)
	}

	return nil
}

// Close sends a normal closure frame and closes the connection. It does not wait for
// an in-flight Send. Later calls return the first result.
func (c *wsChannel) Close() error {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(c.writeTimeout))

		c.closeErr = c.conn.Close()
	})

	return c.closeErr
}

func (c *wsChannel) deadline(ctx context.Context) time.Time {
	deadline := time.Now().Add(c.writeTimeout)

	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		return d
	}

	return deadline
}
