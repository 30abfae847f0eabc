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

// Package push sends Web Push notifications to devices with a stored subscription.
package push

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	webpush "github.com/SherClockHolmes/webpush-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/carverauto/buzzer/pkg/logger"
	"github.com/carverauto/buzzer/pkg/models"
)

var (
	ErrNotConfigured  = errors.New("push dispatcher is not configured")
	ErrNoSubscription = errors.New("device has no push subscription")
	ErrRejected       = errors.New("push service rejected the notification")
)

// Status is the outcome class of one notification attempt.
type Status string

const (
	StatusSent    Status = "sent"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// Result describes one notification attempt. Notify never returns an error; callers log the Result.
type Result struct {
	Status     Status
	DeviceID   string
	HTTPStatus int
	Err        error
}

// Expired reports whether the push service says the subscription no longer exists.
func (r Result) Expired() bool {
	return r.HTTPStatus == http.StatusNotFound || r.HTTPStatus == http.StatusGone
}

type sendFunc func(ctx context.Context, message []byte, s *webpush.Subscription, options *webpush.Options) (*http.Response, error)

// Dispatcher sends notifications signed with the configured VAPID key pair.
type Dispatcher struct {
	config *models.PushConfig
	client webpush.HTTPClient
	send   sendFunc
	logger logger.Logger
	sent   metric.Int64Counter
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithHTTPClient overrides the client used to reach push services.
func WithHTTPClient(client webpush.HTTPClient) Option {
	return func(d *Dispatcher) {
		d.client = client
	}
}

func withSendFunc(send sendFunc) Option {
	return func(d *Dispatcher) {
		d.send = send
	}
}

func NewDispatcher(config *models.PushConfig, log logger.Logger, opts ...Option) *Dispatcher {
	counter, err := otel.Meter("github.com/carverauto/buzzer/pkg/push").Int64Counter("buzzer_push_notifications_total",
		metric.WithDescription("Push notification attempts by result"))
	if err != nil {
		log.Warn().Err(err).Msg("Failed to create push counter")
	}

	if config == nil {
		config = &models.PushConfig{}
	}

	d := &Dispatcher{
		config: config,
		client: &http.Client{},
		send:   webpush.SendNotificationWithContext,
		logger: log,
		sent:   counter,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Configured reports whether a VAPID key pair is available.
func (d *Dispatcher) Configured() bool {
	return d.config.Configured()
}

// PublicKey returns the VAPID public key clients subscribe with.
func (d *Dispatcher) PublicKey() string {
	return d.config.VAPIDPublicKey
}

type payload struct {
	Title    string `json:"title"`
	Body     string `json:"body"`
	DeviceID string `json:"device_id"`
}

// Notify sends one notification to device. It is skipped when the dispatcher is
// unconfigured or the device has no usable subscription.
func (d *Dispatcher) Notify(ctx context.Context, device *models.Device, title, body string) Result {
	result := d.notify(ctx, device, title, body)

	if d.sent != nil {
		d.sent.Add(ctx, 1, metric.WithAttributes(attribute.String("result", string(result.Status))))
	}

	return result
}

func (d *Dispatcher) notify(ctx context.Context, device *models.Device, title, body string) Result {
	if device == nil {
		return Result{Status: StatusSkipped, Err: ErrNoSubscription}
	}

	if !d.Configured() {
		return Result{Status: StatusSkipped, DeviceID: device.ID, Err: ErrNotConfigured}
	}

	if !device.PushSubscription.Valid() {
		return Result{Status: StatusSkipped, DeviceID: device.ID, Err: ErrNoSubscription}
	}

	message, err := json.Marshal(payload{Title: title, Body: body, DeviceID: device.ID})
	if err != nil {
		return Result{Status: StatusFailed, DeviceID: device.ID, Err: fmt.Errorf("failed to encode payload: %w", err)}
	}

	if timeout := time.Duration(d.config.Timeout); timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	sub := &webpush.Subscription{
		Endpoint: device.PushSubscription.Endpoint,
		Keys: webpush.Keys{
			Auth:   device.PushSubscription.Keys.Auth,
			P256dh: device.PushSubscription.Keys.P256dh,
		},
	}

	resp, err := d.send(ctx, message, sub, &webpush.Options{
		HTTPClient:      d.client,
		Subscriber:      strings.TrimPrefix(d.config.ClaimsEmail, "mailto:"),
		TTL:             int(time.Duration(d.config.TTL).Seconds()),
		Urgency:         webpush.UrgencyHigh,
		VAPIDPublicKey:  d.config.VAPIDPublicKey,
		VAPIDPrivateKey: d.config.VAPIDPrivateKey,
	})
	if err != nil {
		return Result{Status: StatusFailed, DeviceID: device.ID, Err: fmt.Errorf("failed to send push notification: %w", err)}
	}

	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= http.StatusBadRequest {
		return Result{
			Status:     StatusFailed,
			DeviceID:   device.ID,
			HTTPStatus: resp.StatusCode,
			Err:        fmt.Errorf("%w: status %d", ErrRejected, resp.StatusCode),
		}
	}

	d.logger.Debug().
		Str("device_id", device.ID).
		Int("status", resp.StatusCode).
		Msg("Push notification sent")

	return Result{Status: StatusSent, DeviceID: device.ID, HTTPStatus: resp.StatusCode}
}
