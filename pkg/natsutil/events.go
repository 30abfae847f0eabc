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

// Package natsutil publishes ring and presence CloudEvents to NATS JetStream.
package natsutil

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/carverauto/buzzer/pkg/logger"
	"github.com/carverauto/buzzer/pkg/models"
)

const (
	eventSource      = "buzzer/server"
	eventTypePrefix  = "com.carverauto.buzzer."
	ringSubject      = "events.ring."
	presenceSubject  = "events.presence."
	jsonContentType  = "application/json"
	cloudEventsSpec  = "1.0"
	defaultEventsTTL = 7 * 24 * time.Hour
)

var (
	errNATSNotConfigured = errors.New("nats configuration is missing")
	errNilEvent          = errors.New("event payload is nil")
)

// DefaultSubjects are bound to the events stream when the configuration lists none.
func DefaultSubjects() []string {
	return []string{ringSubject + "*", presenceSubject + "*"}
}

// streamPublisher is the slice of jetstream.JetStream the publisher needs.
type streamPublisher interface {
	Publish(ctx context.Context, subject string, payload []byte, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error)
}

// EventPublisher provides methods for publishing CloudEvents to NATS JetStream.
type EventPublisher struct {
	js     streamPublisher
	stream string
	logger logger.Logger
	now    func() time.Time
	newID  func() string
}

// NewEventPublisher creates a new EventPublisher for the specified stream.
func NewEventPublisher(js jetstream.JetStream, streamName string, log logger.Logger) *EventPublisher {
	return newEventPublisher(js, streamName, log)
}

func newEventPublisher(js streamPublisher, streamName string, log logger.Logger) *EventPublisher {
	return &EventPublisher{
		js:     js,
		stream: streamName,
		logger: log,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// PublishRingEvent publishes a session snapshot on events.ring.<status>.
func (p *EventPublisher) PublishRingEvent(ctx context.Context, data *models.RingEventData) error {
	if data == nil {
		return errNilEvent
	}

	status := string(data.Status)

	return p.publish(ctx, ringSubject+status, "ring."+status, data.Timestamp, data)
}

// PublishPresenceEvent publishes a device transition on events.presence.online or .offline.
func (p *EventPublisher) PublishPresenceEvent(ctx context.Context, data *models.PresenceEventData) error {
	if data == nil {
		return errNilEvent
	}

	state := "offline"
	if data.Online {
		state = "online"
	}

	return p.publish(ctx, presenceSubject+state, "presence."+state, data.Timestamp, data)
}

func (p *EventPublisher) publish(ctx context.Context, subject, kind string, at time.Time, data any) error {
	if at.IsZero() {
		at = p.now()
	}

	event := models.CloudEvent{
		SpecVersion:     cloudEventsSpec,
		ID:              p.newID(),
		Source:          eventSource,
		Type:            eventTypePrefix + kind,
		DataContentType: jsonContentType,
		Subject:         subject,
		Time:            &at,
		Data:            data,
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", kind, err)
	}

	ack, err := p.js.Publish(ctx, subject, payload, jetstream.WithMsgID(event.ID))
	if err != nil {
		return fmt.Errorf("failed to publish %s event: %w", kind, err)
	}

	p.logger.Debug().
		Str("event_id", event.ID).
		Str("subject", subject).
		Uint64("seq", ack.Sequence).
		Msg("published event")

	return nil
}

// Connect dials NATS with connection handlers that report through log.
func Connect(cfg *models.NATSConfig, log logger.Logger, extraOpts ...nats.Option) (*nats.Conn, error) {
	if cfg == nil || cfg.URL == "" {
		return nil, errNATSNotConfigured
	}

	opts := []nats.Option{
		nats.Name("buzzer"),
		nats.MaxReconnects(-1),
		nats.ErrorHandler(func(_ *nats.Conn, _ *nats.Subscription, err error) {
			log.Error().Err(err).Msg("NATS error")
		}),
		nats.ConnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("connected to NATS")
		}),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warn().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
	}

	if cfg.TLS != nil {
		tlsConf, err := TLSConfig(cfg.TLS)
		if err != nil {
			return nil, fmt.Errorf("failed to build NATS TLS config: %w", err)
		}

		opts = append(opts, nats.Secure(tlsConf))
	}

	opts = append(opts, extraOpts...)

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return nc, nil
}

// CreateEventPublisher ensures the configured stream exists and covers the event
// subjects, then returns a publisher bound to it.
func CreateEventPublisher(ctx context.Context, nc *nats.Conn, cfg *models.NATSConfig, log logger.Logger) (*EventPublisher, error) {
	if cfg == nil {
		return nil, errNATSNotConfigured
	}

	var (
		js  jetstream.JetStream
		err error
	)

	if cfg.Domain != "" {
		js, err = jetstream.NewWithDomain(nc, cfg.Domain)
		if err != nil {
			return nil, fmt.Errorf("failed to create JetStream context with domain %s: %w", cfg.Domain, err)
		}
	} else {
		js, err = jetstream.New(nc)
		if err != nil {
			return nil, fmt.Errorf("failed to create JetStream context: %w", err)
		}
	}

	streamName := cfg.Stream
	if streamName == "" {
		streamName = models.DefaultEventsStream
	}

	subjects := append([]string(nil), cfg.Subjects...)
	for _, subject := range DefaultSubjects() {
		subjects = ensureSubjectList(subjects, subject)
	}

	if err := ensureStream(ctx, js, streamName, subjects, log); err != nil {
		return nil, err
	}

	return NewEventPublisher(js, streamName, log), nil
}

func ensureStream(ctx context.Context, js jetstream.JetStream, name string, subjects []string, log logger.Logger) error {
	stream, err := js.Stream(ctx, name)

	switch {
	case isStreamMissingErr(err):
		if _, err := js.CreateStream(ctx, jetstream.StreamConfig{
			Name:     name,
			Subjects: subjects,
			MaxAge:   defaultEventsTTL,
		}); err != nil {
			return fmt.Errorf("failed to create stream %s: %w", name, err)
		}

		log.Info().Str("stream", name).Strs("subjects", subjects).Msg("created NATS JetStream stream")

		return nil
	case err != nil:
		return fmt.Errorf("failed to look up stream %s: %w", name, err)
	}

	cfg := stream.CachedInfo().Config
	merged := append([]string(nil), cfg.Subjects...)

	for _, subject := range subjects {
		merged = ensureSubjectList(merged, subject)
	}

	if len(merged) == len(cfg.Subjects) {
		return nil
	}

	cfg.Subjects = merged

	if _, err := js.UpdateStream(ctx, cfg); err != nil {
		return fmt.Errorf("failed to add subjects to stream %s: %w", name, err)
	}

	log.Info().Str("stream", name).Strs("subjects", merged).Msg("updated NATS JetStream stream subjects")

	return nil
}

// ensureSubjectList appends subject unless an existing pattern already matches it.
func ensureSubjectList(subjects []string, subject string) []string {
	for _, pattern := range subjects {
		if matchesSubject(pattern, subject) {
			return subjects
		}
	}

	return append(subjects, subject)
}

// matchesSubject applies NATS wildcard rules: "*" matches one token, ">" the rest.
func matchesSubject(pattern, subject string) bool {
	patternTokens := strings.Split(pattern, ".")
	subjectTokens := strings.Split(subject, ".")

	for i, token := range patternTokens {
		if token == ">" {
			return len(subjectTokens) > i
		}

		if i >= len(subjectTokens) {
			return false
		}

		if token != "*" && token != subjectTokens[i] {
			return false
		}
	}

	return len(patternTokens) == len(subjectTokens)
}

func isStreamMissingErr(err error) bool {
	return errors.Is(err, jetstream.ErrStreamNotFound) ||
		errors.Is(err, jetstream.ErrNoStreamResponse) ||
		errors.Is(err, nats.ErrStreamNotFound) ||
		errors.Is(err, nats.ErrNoStreamResponse) ||
		errors.Is(err, nats.ErrNoResponders)
}
