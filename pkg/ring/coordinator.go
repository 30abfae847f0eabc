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

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/carverauto/buzzer/pkg/logger"
	"github.com/carverauto/buzzer/pkg/models"
	"github.com/carverauto/buzzer/pkg/protocol"
	"github.com/carverauto/buzzer/pkg/push"
)

const instrumentationName = "github.com/carverauto/buzzer/pkg/ring"

const (
	defaultPersistTimeout = 5 * time.Second
	defaultPushTimeout    = 15 * time.Second
	defaultPublishTimeout = 2 * time.Second
)

// StartRequest is an already authorized request to ring Target.
type StartRequest struct {
	GroupID         string
	InitiatorUserID string
	InitiatorName   string
	Target          *models.Device
	// DurationSeconds is nil for a ring that continues until stopped.
	DurationSeconds *int
}

// Coordinator drives ring sessions through initiated → ringing | failed, and
// ringing → stopped | completed. Terminal sessions are never modified.
type Coordinator struct {
	store    Store
	sender   Sender
	notifier Notifier
	subs     SubscriptionStore
	events   EventPublisher
	logger   logger.Logger

	now       func() time.Time
	newID     func() string
	afterFunc AfterFunc

	autoComplete   bool
	persistTimeout time.Duration
	pushTimeout    time.Duration
	publishTimeout time.Duration

	mu     sync.Mutex
	timers map[string]Timer
	bg     sync.WaitGroup

	sessions metric.Int64Counter
	tracer   trace.Tracer
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithNotifier enables the push notification that accompanies each ring command.
func WithNotifier(n Notifier) Option {
	return func(c *Coordinator) {
		c.notifier = n
	}
}

// WithSubscriptionStore clears a device's subscription once the push service reports it expired.
func WithSubscriptionStore(s SubscriptionStore) Option {
	return func(c *Coordinator) {
		c.subs = s
	}
}

// WithEventPublisher publishes lifecycle events for every recorded status.
func WithEventPublisher(p EventPublisher) Option {
	return func(c *Coordinator) {
		c.events = p
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) {
		c.now = now
	}
}

func WithIDGenerator(newID func() string) Option {
	return func(c *Coordinator) {
		c.newID = newID
	}
}

// WithAfterFunc replaces time.AfterFunc for auto-completion timers.
func WithAfterFunc(f AfterFunc) Option {
	return func(c *Coordinator) {
		c.afterFunc = f
	}
}

// WithAutoComplete controls whether a ringing session with a duration completes on its own.
func WithAutoComplete(enabled bool) Option {
	return func(c *Coordinator) {
		c.autoComplete = enabled
	}
}

// WithTracerProvider records Start and Stop spans on tp instead of the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Coordinator) {
		c.tracer = tp.Tracer(instrumentationName)
	}
}

// WithTimeouts sets the independent deadlines for persistence, push and event publishing.
// Zero values keep the defaults.
func WithTimeouts(persist, pushTimeout, publish time.Duration) Option {
	return func(c *Coordinator) {
		if persist > 0 {
			c.persistTimeout = persist
		}

		if pushTimeout > 0 {
			c.pushTimeout = pushTimeout
		}

		if publish > 0 {
			c.publishTimeout = publish
		}
	}
}

func NewCoordinator(store Store, sender Sender, log logger.Logger, opts ...Option) *Coordinator {
	sessions, err := otel.Meter(instrumentationName).Int64Counter("buzzer_ring_sessions_total",
		metric.WithDescription("Ring sessions by recorded status"))
	if err != nil {
		log.Warn().Err(err).Msg("Failed to create ring session counter")
	}

	c := &Coordinator{
		store:  store,
		sender: sender,
		logger: log,
		now:    time.Now,
		newID:  uuid.NewString,
		afterFunc: func(d time.Duration, f func()) Timer {
			return time.AfterFunc(d, f)
		},
		autoComplete:   true,
		persistTimeout: defaultPersistTimeout,
		pushTimeout:    defaultPushTimeout,
		publishTimeout: defaultPublishTimeout,
		timers:         make(map[string]Timer),
		sessions:       sessions,
		tracer:         otel.Tracer(instrumentationName),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Start creates a session and sends the ring command to the target device.
// If delivery fails the session is recorded failed and returned with ErrDeviceUnreachable.
// Cancelling ctx does not interrupt a start once it has begun.
func (c *Coordinator) Start(ctx context.Context, req StartRequest) (*models.RingSession, error) {
	var target string
	if req.Target != nil {
		target = req.Target.ID
	}

	ctx, span := c.tracer.Start(ctx, "ring.Start", trace.WithAttributes(
		attribute.String("ring.target_device_id", target),
		attribute.String("ring.group_id", req.GroupID),
	))
	defer span.End()

	session, err := c.start(ctx, req)
	endSpan(span, session, err)

	return session, err
}

func (c *Coordinator) start(ctx context.Context, req StartRequest) (*models.RingSession, error) {
	if req.Target == nil || req.Target.ID == "" {
		return nil, errTargetRequired
	}

	if d := req.DurationSeconds; d != nil && (*d <= 0 || *d > models.MaxRingDurationSeconds) {
		return nil, fmt.Errorf("%w: %d seconds", ErrInvalidDuration, *d)
	}

	ctx = context.WithoutCancel(ctx)

	session := &models.RingSession{
		ID:              c.newID(),
		GroupID:         req.GroupID,
		InitiatorUserID: req.InitiatorUserID,
		TargetDeviceID:  req.Target.ID,
		DurationSeconds: req.DurationSeconds,
		Status:          models.RingStatusInitiated,
		StartedAt:       c.now().UTC(),
	}

	if err := c.persist(ctx, func(ctx context.Context) error {
		return c.store.Create(ctx, session)
	}); err != nil {
		return nil, fmt.Errorf("failed to create ring session: %w", err)
	}

	cmd := protocol.RingCommand{
		RingSessionID:     session.ID,
		Duration:          session.DurationSeconds,
		InitiatedByUserID: session.InitiatorUserID,
		InitiatorName:     req.InitiatorName,
		Timestamp:         c.now().UTC(),
	}

	delivered := c.sender.SendToDevice(ctx, req.Target.ID, cmd)

	// push runs alongside live delivery, whatever its outcome
	c.notifyAsync(ctx, req.Target, session.ID, req.InitiatorName)

	if !delivered {
		failed, err := c.transition(ctx, session.ID, models.RingStatusFailed, models.RingStatusInitiated)
		if err != nil {
			return nil, fmt.Errorf("failed to record unreachable ring session: %w", err)
		}

		c.logger.Warn().
			Str("ring_session_id", session.ID).
			Str("device_id", req.Target.ID).
			Msg("Ring command not delivered, session failed")

		return failed, ErrDeviceUnreachable
	}

	ringing, err := c.transition(ctx, session.ID, models.RingStatusRinging, models.RingStatusInitiated)
	if errors.Is(err, ErrInvalidTransition) && ringing != nil {
		// stopped before the start finished
		return ringing, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to record ringing session: %w", err)
	}

	c.armTimer(ctx, ringing)

	c.logger.Info().
		Str("ring_session_id", ringing.ID).
		Str("device_id", ringing.TargetDeviceID).
		Str("group_id", ringing.GroupID).
		Interface("duration_seconds", ringing.DurationSeconds).
		Msg("Ring session started")

	return ringing, nil
}

// Stop ends a session. The stop command is best-effort; the session is recorded
// stopped whether or not it reached the device. Terminal sessions are returned unchanged.
func (c *Coordinator) Stop(ctx context.Context, sessionID string) (*models.RingSession, error) {
	ctx, span := c.tracer.Start(ctx, "ring.Stop", trace.WithAttributes(attribute.String("ring.session_id", sessionID)))
	defer span.End()

	session, err := c.stop(ctx, sessionID)
	endSpan(span, session, err)

	return session, err
}

func (c *Coordinator) stop(ctx context.Context, sessionID string) (*models.RingSession, error) {
	ctx = context.WithoutCancel(ctx)

	session, err := c.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if session.Status.IsTerminal() {
		return session, nil
	}

	cmd := protocol.StopCommand{RingSessionID: session.ID, Timestamp: c.now().UTC()}
	if !c.sender.SendToDevice(ctx, session.TargetDeviceID, cmd) {
		c.logger.Warn().
			Str("ring_session_id", session.ID).
			Str("device_id", session.TargetDeviceID).
			Msg("Stop command not delivered")
	}

	stopped, err := c.transition(ctx, session.ID, models.RingStatusStopped,
		models.RingStatusInitiated, models.RingStatusRinging)
	if errors.Is(err, ErrInvalidTransition) && stopped != nil {
		// completed concurrently
		return stopped, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to record stopped session: %w", err)
	}

	c.cancelTimer(session.ID)

	c.logger.Info().
		Str("ring_session_id", stopped.ID).
		Str("device_id", stopped.TargetDeviceID).
		Msg("Ring session stopped")

	return stopped, nil
}

// Get returns the stored session or ErrSessionNotFound.
func (c *Coordinator) Get(ctx context.Context, sessionID string) (*models.RingSession, error) {
	var session *models.RingSession

	err := c.persist(ctx, func(ctx context.Context) error {
		var err error

		session, err = c.store.Get(ctx, sessionID)

		return err
	})
	if err != nil {
		return nil, err
	}

	return session, nil
}

// Acknowledge applies a ring report sent by deviceID. A ring_completed report
// completes a ringing session targeting that device; other reports are only recorded in the log.
func (c *Coordinator) Acknowledge(ctx context.Context, deviceID string, report protocol.Inbound) (*models.RingSession, error) {
	var sessionID string

	switch m := report.(type) {
	case protocol.RingCompleted:
		sessionID = m.RingSessionID
	case protocol.RingStarted:
		sessionID = m.RingSessionID
	case protocol.RingStopped:
		sessionID = m.RingSessionID
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedReport, report.MessageType())
	}

	session, err := c.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if session.TargetDeviceID != deviceID {
		return nil, ErrForeignDevice
	}

	c.logger.Info().
		Str("ring_session_id", sessionID).
		Str("device_id", deviceID).
		Str("report", report.MessageType()).
		Str("status", string(session.Status)).
		Msg("Device ring report")

	if _, ok := report.(protocol.RingCompleted); !ok {
		return session, nil
	}

	return c.complete(ctx, sessionID)
}

// Close cancels pending auto-completion timers and waits for background push dispatches.
func (c *Coordinator) Close(ctx context.Context) error {
	c.mu.Lock()
	for id, t := range c.timers {
		t.Stop()
		delete(c.timers, id)
	}
	c.mu.Unlock()

	done := make(chan struct{})

	go func() {
		c.bg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Coordinator) complete(ctx context.Context, sessionID string) (*models.RingSession, error) {
	completed, err := c.transition(ctx, sessionID, models.RingStatusCompleted, models.RingStatusRinging)
	if errors.Is(err, ErrInvalidTransition) && completed != nil {
		return completed, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to record completed session: %w", err)
	}

	c.cancelTimer(sessionID)

	c.logger.Info().
		Str("ring_session_id", sessionID).
		Str("device_id", completed.TargetDeviceID).
		Msg("Ring session completed")

	return completed, nil
}

func (c *Coordinator) transition(ctx context.Context, sessionID string, to models.RingStatus,
	from ...models.RingStatus) (*models.RingSession, error) {
	var session *models.RingSession

	err := c.persist(ctx, func(ctx context.Context) error {
		var err error

		session, err = c.store.Transition(ctx, sessionID, to, c.now().UTC(), from...)

		return err
	})
	if err != nil {
		return session, err
	}

	c.record(ctx, session)

	return session, nil
}

func (c *Coordinator) persist(ctx context.Context, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, c.persistTimeout)
	defer cancel()

	return fn(ctx)
}

func (c *Coordinator) record(ctx context.Context, session *models.RingSession) {
	if c.sessions != nil {
		c.sessions.Add(ctx, 1, metric.WithAttributes(attribute.String("status", string(session.Status))))
	}

	if c.events == nil {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, c.publishTimeout)
	defer cancel()

	if err := c.events.PublishRingEvent(ctx, models.NewRingEventData(session, c.now().UTC())); err != nil {
		c.logger.Warn().
			Err(err).
			Str("ring_session_id", session.ID).
			Str("status", string(session.Status)).
			Msg("Failed to publish ring event")
	}
}

func (c *Coordinator) notifyAsync(ctx context.Context, device *models.Device, sessionID, initiator string) {
	if c.notifier == nil || device.PushSubscription == nil {
		return
	}

	title := "Incoming ring"
	body := "Someone in your group is ringing " + device.Label()

	if initiator != "" {
		body = initiator + " is ringing " + device.Label()
	}

	c.bg.Add(1)

	go func() {
		defer c.bg.Done()

		ctx, cancel := context.WithTimeout(ctx, c.pushTimeout)
		defer cancel()

		result := c.notifier.Notify(ctx, device, title, body)

		ev := c.logger.Debug()
		if result.Status == push.StatusFailed {
			ev = c.logger.Warn()
		}

		ev.Err(result.Err).
			Str("ring_session_id", sessionID).
			Str("device_id", device.ID).
			Str("result", string(result.Status)).
			Int("http_status", result.HTTPStatus).
			Msg("Push notification dispatched")

		if result.Expired() {
			c.clearSubscription(ctx, device.ID)
		}
	}()
}

func endSpan(span trace.Span, session *models.RingSession, err error) {
	if session != nil {
		span.SetAttributes(
			attribute.String("ring.session_id", session.ID),
			attribute.String("ring.status", string(session.Status)),
		)
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// clearSubscription drops a subscription the push service no longer recognises.
func (c *Coordinator) clearSubscription(ctx context.Context, deviceID string) {
	if c.subs == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.persistTimeout)
	defer cancel()

	if err := c.subs.SavePushSubscription(ctx, deviceID, nil); err != nil {
		c.logger.Warn().Err(err).Str("device_id", deviceID).Msg("Failed to clear expired push subscription")

		return
	}

	c.logger.Info().Str("device_id", deviceID).Msg("Cleared expired push subscription")
}

func (c *Coordinator) armTimer(ctx context.Context, session *models.RingSession) {
	d := session.Duration()
	if !c.autoComplete || d == 0 {
		return
	}

	id := session.ID

	// registered under mu so the callback and cancelTimer always see the entry
	c.mu.Lock()
	c.timers[id] = c.afterFunc(d, func() {
		c.mu.Lock()
		delete(c.timers, id)
		c.mu.Unlock()

		if _, err := c.complete(context.Background(), id); err != nil {
			c.logger.Error().Err(err).Str("ring_session_id", id).Msg("Failed to auto-complete ring session")
		}
	})
	c.mu.Unlock()

	// a Stop that landed before registration found no timer to cancel
	current, err := c.Get(ctx, id)
	if err != nil {
		c.logger.Warn().Err(err).Str("ring_session_id", id).Msg("Failed to re-check armed ring session")

		return
	}

	if current.Status.IsTerminal() {
		c.cancelTimer(id)
	}
}

func (c *Coordinator) cancelTimer(sessionID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if t, ok := c.timers[sessionID]; ok {
		t.Stop()
		delete(c.timers, sessionID)
	}
}
