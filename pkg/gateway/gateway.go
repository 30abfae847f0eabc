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
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/carverauto/buzzer/pkg/db"
	"github.com/carverauto/buzzer/pkg/logger"
	"github.com/carverauto/buzzer/pkg/models"
	"github.com/carverauto/buzzer/pkg/presence"
	"github.com/carverauto/buzzer/pkg/protocol"
)

const (
	meterName = "github.com/carverauto/buzzer/pkg/gateway"

	// DevicePath is the websocket route. Clients pass their bearer token as ?token=.
	DevicePath = "/ws/{device_id}"

	maxMessageSize   = 64 * 1024
	handshakeTimeout = 10 * time.Second
	closeGracePeriod = time.Second
)

// Close reasons sent with a policy-violation close frame.
const (
	reasonInvalidToken   = "Invalid token"
	reasonUserNotFound   = "User not found"
	reasonDeviceNotFound = "Device not found or not owned by user"
	reasonInternal       = "Internal error"
)

// Gateway is the connection-accept layer for device channels.
type Gateway struct {
	router    *presence.Router
	registry  *presence.Registry
	directory db.Directory
	verifier  TokenVerifier
	rings     RingReporter
	events    PresencePublisher
	logger    logger.Logger
	upgrader  websocket.Upgrader
	now       func() time.Time

	writeTimeout   time.Duration
	idleTimeout    time.Duration
	sweepInterval  time.Duration
	persistTimeout time.Duration
	publishTimeout time.Duration

	rejections metric.Int64Counter

	sessions sync.WaitGroup
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithPresencePublisher publishes online/offline transitions in addition to the channel broadcast.
func WithPresencePublisher(p PresencePublisher) Option {
	return func(g *Gateway) {
		g.events = p
	}
}

// WithPresenceConfig applies write, idle and sweep timeouts.
func WithPresenceConfig(cfg models.PresenceConfig) Option {
	return func(g *Gateway) {
		if cfg.WriteTimeout > 0 {
			g.writeTimeout = time.Duration(cfg.WriteTimeout)
		}

		if cfg.SweepInterval > 0 {
			g.sweepInterval = time.Duration(cfg.SweepInterval)
		}

		g.idleTimeout = cfg.IdleAfter()
	}
}

// WithTimeouts bounds directory writes made on connect, heartbeat and disconnect, and presence event publishing.
func WithTimeouts(persist, publish time.Duration) Option {
	return func(g *Gateway) {
		if persist > 0 {
			g.persistTimeout = persist
		}

		if publish > 0 {
			g.publishTimeout = publish
		}
	}
}

// WithAllowedOrigins restricts the Origin header accepted on upgrade. "*" allows any origin.
func WithAllowedOrigins(origins []string) Option {
	return func(g *Gateway) {
		g.upgrader.CheckOrigin = originChecker(origins)
	}
}

// WithClock overrides the time source for persisted timestamps and idle detection.
func WithClock(now func() time.Time) Option {
	return func(g *Gateway) {
		g.now = now
	}
}

func New(router *presence.Router, directory db.Directory, verifier TokenVerifier, rings RingReporter,
	log logger.Logger, opts ...Option) *Gateway {
	rejections, err := otel.Meter(meterName).Int64Counter("buzzer_gateway_rejections_total",
		metric.WithDescription("Device connections refused during the handshake"))
	if err != nil {
		log.Warn().Err(err).Msg("Failed to create rejection counter")
	}

	g := &Gateway{
		router:    router,
		registry:  router.Registry(),
		directory: directory,
		verifier:  verifier,
		rings:     rings,
		logger:    log,
		now:       time.Now,
		upgrader: websocket.Upgrader{
			ReadBufferSize:   1024,
			WriteBufferSize:  1024,
			HandshakeTimeout: handshakeTimeout,
			CheckOrigin:      originChecker(nil),
		},
		writeTimeout:   models.DefaultWriteTimeout,
		idleTimeout:    models.DefaultIdleTimeout,
		sweepInterval:  models.DefaultSweepInterval,
		persistTimeout: models.DefaultPersistTimeout,
		publishTimeout: models.DefaultPublishTimeout,
		rejections:     rejections,
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// RegisterRoutes mounts the device websocket endpoint.
func (g *Gateway) RegisterRoutes(r *mux.Router) {
	r.HandleFunc(DevicePath, g.HandleDevice).Methods(http.MethodGet)
}

// session is one accepted device connection.
type session struct {
	deviceID string
	userID   string
	label    string
	groups   []string
	channel  *wsChannel
}

// HandleDevice upgrades the request and serves the device channel until it closes.
// Handshake failures close the socket with a policy-violation frame, matching what
// browser clients expect.
func (g *Gateway) HandleDevice(w http.ResponseWriter, r *http.Request) {
	deviceID := mux.Vars(r)["device_id"]
	token := r.URL.Query().Get("token")

	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.logger.Warn().
			Err(err).
			Str("device_id", deviceID).
			Str("remote_addr", r.RemoteAddr).
			Str("origin", r.Header.Get("Origin")).
			Msg("Failed to upgrade to WebSocket")

		return
	}

	g.sessions.Add(1)
	defer g.sessions.Done()

	ctx := context.WithoutCancel(r.Context())

	s, code, reason := g.accept(ctx, deviceID, token)
	if s == nil {
		g.reject(ctx, conn, deviceID, code, reason)

		return
	}

	s.channel = newWSChannel(conn, g.writeTimeout)
	conn.SetReadLimit(maxMessageSize)

	g.connect(ctx, s)
	defer g.disconnect(ctx, s)

	g.readLoop(ctx, conn, s)
}

// accept checks the token, the user and device ownership, and snapshots the user's groups.
func (g *Gateway) accept(ctx context.Context, deviceID, token string) (*session, int, string) {
	if token == "" || deviceID == "" {
		return nil, websocket.ClosePolicyViolation, reasonInvalidToken
	}

	userID, err := g.verifier.Verify(token)
	if err != nil {
		g.logger.Debug().Err(err).Str("device_id", deviceID).Msg("Rejected device token")

		return nil, websocket.ClosePolicyViolation, reasonInvalidToken
	}

	if _, err := g.directory.GetUser(ctx, userID); err != nil {
		return g.lookupFailure(err, deviceID, reasonUserNotFound, db.ErrUserNotFound)
	}

	device, err := g.directory.GetDevice(ctx, deviceID)
	if err != nil {
		return g.lookupFailure(err, deviceID, reasonDeviceNotFound, db.ErrDeviceNotFound)
	}

	if device.UserID != userID {
		return nil, websocket.ClosePolicyViolation, reasonDeviceNotFound
	}

	groups, err := g.directory.UserGroups(ctx, userID)
	if err != nil {
		return g.lookupFailure(err, deviceID, "", nil)
	}

	return &session{
		deviceID: deviceID,
		userID:   userID,
		label:    device.Label(),
		groups:   groups,
	}, 0, ""
}

func (g *Gateway) lookupFailure(err error, deviceID, reason string, notFound error) (*session, int, string) {
	if notFound != nil && errors.Is(err, notFound) {
		return nil, websocket.ClosePolicyViolation, reason
	}

	g.logger.Error().Err(err).Str("device_id", deviceID).Msg("Directory lookup failed during handshake")

	return nil, websocket.CloseInternalServerErr, reasonInternal
}

func (g *Gateway) reject(ctx context.Context, conn *websocket.Conn, deviceID string, code int, reason string) {
	g.logger.Info().
		Str("device_id", deviceID).
		Int("close_code", code).
		Str("reason", reason).
		Msg("Refused device connection")

	if g.rejections != nil {
		g.rejections.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
	}

	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason),
		time.Now().Add(closeGracePeriod))
	_ = conn.Close()
}

func (g *Gateway) connect(ctx context.Context, s *session) {
	if replaced := g.registry.Connect(s.channel, s.deviceID, s.userID, s.groups); replaced != nil {
		if err := replaced.Close(); err != nil {
			g.logger.Debug().Err(err).Str("device_id", s.deviceID).Msg("Error closing replaced channel")
		}
	}

	g.persist(ctx, "mark device online", func(ctx context.Context) error {
		return g.directory.SetDeviceOnline(ctx, s.deviceID, true, g.now())
	})

	g.router.BroadcastPresenceChange(ctx, s.deviceID, s.groups, true, s.label)
	g.publishPresence(ctx, s, true)
}

// disconnect runs once the read loop ends. The offline transition is skipped when a
// newer connection for the same device has already taken over.
func (g *Gateway) disconnect(ctx context.Context, s *session) {
	g.registry.Release(s.deviceID, s.channel)

	if err := s.channel.Close(); err != nil {
		g.logger.Debug().Err(err).Str("device_id", s.deviceID).Msg("Error closing channel")
	}

	if g.registry.IsOnline(s.deviceID) {
		g.logger.Debug().Str("device_id", s.deviceID).Msg("Device reconnected, skipping offline transition")

		return
	}

	g.persist(ctx, "mark device offline", func(ctx context.Context) error {
		return g.directory.SetDeviceOnline(ctx, s.deviceID, false, g.now())
	})

	g.router.BroadcastPresenceChange(ctx, s.deviceID, s.groups, false, s.label)
	g.publishPresence(ctx, s, false)
}

func (g *Gateway) readLoop(ctx context.Context, conn *websocket.Conn, s *session) {
	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				g.logger.Info().Err(err).Str("device_id", s.deviceID).Msg("Device connection lost")
			} else {
				g.logger.Debug().Err(err).Str("device_id", s.deviceID).Msg("Device connection closed")
			}

			return
		}

		if messageType != websocket.TextMessage {
			continue
		}

		g.registry.Touch(s.deviceID, s.channel)

		msg, err := protocol.Decode(data)
		if err != nil {
			g.logger.Warn().Err(err).Str("device_id", s.deviceID).Msg("Ignoring malformed device message")

			continue
		}

		if !g.handleMessage(ctx, s, msg) {
			return
		}
	}
}

// handleMessage reports whether the channel is still usable.
func (g *Gateway) handleMessage(ctx context.Context, s *session, msg protocol.Inbound) bool {
	switch msg.(type) {
	case protocol.Heartbeat:
		now := g.now()

		g.persist(ctx, "touch device", func(ctx context.Context) error {
			return g.directory.TouchDevice(ctx, s.deviceID, now)
		})

		sendCtx, cancel := context.WithTimeout(ctx, g.writeTimeout)
		defer cancel()

		if err := s.channel.Send(sendCtx, protocol.Pong{Timestamp: now.UTC()}); err != nil {
			g.logger.Warn().Err(err).Str("device_id", s.deviceID).Msg("Failed to answer heartbeat")

			return false
		}

	case protocol.RingStarted, protocol.RingStopped, protocol.RingCompleted:
		if _, err := g.rings.Acknowledge(ctx, s.deviceID, msg); err != nil {
			g.logger.Warn().
				Err(err).
				Str("device_id", s.deviceID).
				Str("report", msg.MessageType()).
				Msg("Ring report not applied")
		}

	default:
		g.logger.Debug().Str("device_id", s.deviceID).Str("type", msg.MessageType()).Msg("Unhandled device message")
	}

	return true
}

func (g *Gateway) persist(ctx context.Context, what string, fn func(context.Context) error) {
	ctx, cancel := context.WithTimeout(ctx, g.persistTimeout)
	defer cancel()

	if err := fn(ctx); err != nil {
		g.logger.Error().Err(err).Msg("Failed to " + what)
	}
}

func (g *Gateway) publishPresence(ctx context.Context, s *session, online bool) {
	if g.events == nil {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, g.publishTimeout)
	defer cancel()

	err := g.events.PublishPresenceEvent(ctx, &models.PresenceEventData{
		DeviceID:   s.deviceID,
		UserID:     s.userID,
		DeviceName: s.label,
		GroupIDs:   s.groups,
		Online:     online,
		Timestamp:  g.now().UTC(),
	})
	if err != nil {
		g.logger.Warn().Err(err).Str("device_id", s.deviceID).Bool("online", online).Msg("Failed to publish presence event")
	}
}

// RunSweeper closes channels idle for longer than the idle timeout until ctx is done.
// A zero idle timeout disables sweeping.
func (g *Gateway) RunSweeper(ctx context.Context) error {
	if g.idleTimeout <= 0 {
		g.logger.Info().Msg("Idle sweep disabled")

		return nil
	}

	ticker := time.NewTicker(g.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			g.Sweep()
		}
	}
}

// Sweep closes every channel whose last activity is older than the idle timeout and
// returns how many it closed. The normal disconnect path then takes the device offline.
func (g *Gateway) Sweep() int {
	if g.idleTimeout <= 0 {
		return 0
	}

	stale := g.registry.Stale(g.now().Add(-g.idleTimeout))

	for _, conn := range stale {
		g.logger.Info().
			Str("device_id", conn.DeviceID).
			Time("last_seen", conn.LastSeen).
			Msg("Closing idle device channel")

		if err := conn.Channel.Close(); err != nil {
			g.logger.Debug().Err(err).Str("device_id", conn.DeviceID).Msg("Error closing idle channel")
		}
	}

	return len(stale)
}

// Shutdown closes every device channel and waits for their handlers to finish.
func (g *Gateway) Shutdown(ctx context.Context) error {
	g.registry.CloseAll()

	done := make(chan struct{})

	go func() {
		g.sessions.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func originChecker(origins []string) func(*http.Request) bool {
	allowed := make(map[string]struct{}, len(origins))
	wildcard := len(origins) == 0

	for _, o := range origins {
		if o == "*" {
			wildcard = true
		}

		allowed[strings.ToLower(strings.TrimRight(o, "/"))] = struct{}{}
	}

	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || wildcard {
			return true
		}

		_, ok := allowed[strings.ToLower(origin)]

		return ok
	}
}
