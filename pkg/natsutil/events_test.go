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

package natsutil

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/buzzer/pkg/logger"
	"github.com/carverauto/buzzer/pkg/models"
)

var errTestFixture = errors.New("fixture")

type published struct {
	subject string
	payload []byte
	opts    int
}

type fakeJetStream struct {
	msgs []published
	err  error
}

func (f *fakeJetStream) Publish(_ context.Context, subject string, payload []byte, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error) {
	if f.err != nil {
		return nil, f.err
	}

	f.msgs = append(f.msgs, published{subject: subject, payload: payload, opts: len(opts)})

	return &jetstream.PubAck{Stream: models.DefaultEventsStream, Sequence: uint64(len(f.msgs))}, nil
}

func newTestPublisher(js *fakeJetStream) *EventPublisher {
	p := newEventPublisher(js, models.DefaultEventsStream, logger.NewTestLogger())
	p.newID = func() string { return "evt-1" }

	return p
}

func TestPublishRingEvent(t *testing.T) {
	js := &fakeJetStream{}
	p := newTestPublisher(js)

	at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	duration := 30

	err := p.PublishRingEvent(context.Background(), &models.RingEventData{
		SessionID:       "s1",
		GroupID:         "g1",
		InitiatorUserID: "u1",
		TargetDeviceID:  "d1",
		Status:          models.RingStatusRinging,
		DurationSeconds: &duration,
		Timestamp:       at,
	})
	require.NoError(t, err)
	require.Len(t, js.msgs, 1)
	assert.Equal(t, "events.ring.ringing", js.msgs[0].subject)
	assert.Equal(t, 1, js.msgs[0].opts)

	var event struct {
		SpecVersion string               `json:"specversion"`
		ID          string               `json:"id"`
		Type        string               `json:"type"`
		Subject     string               `json:"subject"`
		Time        time.Time            `json:"time"`
		Data        models.RingEventData `json:"data"`
	}
	require.NoError(t, json.Unmarshal(js.msgs[0].payload, &event))

	assert.Equal(t, "1.0", event.SpecVersion)
	assert.Equal(t, "evt-1", event.ID)
	assert.Equal(t, "com.carverauto.buzzer.ring.ringing", event.Type)
	assert.Equal(t, "events.ring.ringing", event.Subject)
	assert.True(t, at.Equal(event.Time))
	assert.Equal(t, "s1", event.Data.SessionID)
	require.NotNil(t, event.Data.DurationSeconds)
	assert.Equal(t, 30, *event.Data.DurationSeconds)
}

func TestPublishPresenceEvent(t *testing.T) {
	js := &fakeJetStream{}
	p := newTestPublisher(js)

	require.NoError(t, p.PublishPresenceEvent(context.Background(), &models.PresenceEventData{DeviceID: "d1", Online: true}))
	require.NoError(t, p.PublishPresenceEvent(context.Background(), &models.PresenceEventData{DeviceID: "d1"}))

	require.Len(t, js.msgs, 2)
	assert.Equal(t, "events.presence.online", js.msgs[0].subject)
	assert.Equal(t, "events.presence.offline", js.msgs[1].subject)

	require.ErrorIs(t, p.PublishPresenceEvent(context.Background(), nil), errNilEvent)
}

func TestPublishSurfacesErrors(t *testing.T) {
	p := newTestPublisher(&fakeJetStream{err: errTestFixture})

	err := p.PublishRingEvent(context.Background(), &models.RingEventData{Status: models.RingStatusFailed})
	require.ErrorIs(t, err, errTestFixture)
}

func TestEnsureSubjectList(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		subjects []string
		subject  string
		want     []string
	}{
		{
			name:    "adds subject when list empty",
			subject: "events.ring.*",
			want:    []string{"events.ring.*"},
		},
		{
			name:     "keeps list when wildcard matches",
			subjects: []string{"events.ring.*"},
			subject:  "events.ring.ringing",
			want:     []string{"events.ring.*"},
		},
		{
			name:     "keeps list when greater wildcard matches",
			subjects: []string{"events.>"},
			subject:  "events.presence.*",
			want:     []string{"events.>"},
		},
		{
			name:     "appends when unmatched",
			subjects: []string{"events.ring.*"},
			subject:  "events.presence.*",
			want:     []string{"events.ring.*", "events.presence.*"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.want, ensureSubjectList(append([]string(nil), tc.subjects...), tc.subject))
		})
	}
}

func TestMatchesSubject(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		pattern  string
		subject  string
		expected bool
	}{
		{"exact match", "events.ring.stopped", "events.ring.stopped", true},
		{"single wildcard", "events.*.stopped", "events.ring.stopped", true},
		{"greater wildcard", "events.>", "events.ring.stopped", true},
		{"greater needs a token", "events.ring.>", "events.ring", false},
		{"no match length", "events.*", "events.ring.stopped", false},
		{"no match tokens", "logs.syslog.*", "events.ring.stopped", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.expected, matchesSubject(tc.pattern, tc.subject))
		})
	}
}

func TestIsStreamMissingErr(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"jetstream no stream response", jetstream.ErrNoStreamResponse, true},
		{"jetstream stream not found", jetstream.ErrStreamNotFound, true},
		{"nats no stream response", nats.ErrNoStreamResponse, true},
		{"nats stream not found", nats.ErrStreamNotFound, true},
		{"nats no responders", nats.ErrNoResponders, true},
		{"nil", nil, false},
		{"other error", errTestFixture, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.expected, isStreamMissingErr(tc.err))
		})
	}
}

func TestConnectRequiresURL(t *testing.T) {
	_, err := Connect(&models.NATSConfig{}, logger.NewTestLogger())
	require.ErrorIs(t, err, errNATSNotConfigured)

	_, err = TLSConfig(&models.NATSTLSConfig{CertFile: "c.pem"})
	require.ErrorIs(t, err, ErrTLSFilesRequired)
}
