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

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/buzzer/pkg/logger"
)

func TestDurationUnmarshalJSON(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expected    time.Duration
		expectError bool
	}{
		{name: "string", input: `"30s"`, expected: 30 * time.Second},
		{name: "minutes", input: `"1m30s"`, expected: 90 * time.Second},
		{name: "nanoseconds", input: `1000000000`, expected: time.Second},
		{name: "bad string", input: `"soon"`, expectError: true},
		{name: "bool", input: `true`, expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Duration

			err := json.Unmarshal([]byte(tt.input), &d)
			if tt.expectError {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expected, time.Duration(d))
		})
	}
}

func TestBuzzerConfigApplyDefaults(t *testing.T) {
	cfg := &BuzzerConfig{
		Database: &DatabaseConfig{Host: "db"},
		Push:     &PushConfig{},
		NATS:     &NATSConfig{URL: "nats://localhost:4222"},
	}

	cfg.ApplyDefaults()

	assert.Equal(t, DefaultListenAddr, cfg.ListenAddr)
	assert.Equal(t, DefaultJWTAlgorithm, cfg.Auth.JWTAlgorithm)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, DefaultDatabasePort, cfg.Database.Port)
	assert.Equal(t, DefaultEventsStream, cfg.NATS.Stream)
	assert.Equal(t, Duration(DefaultWriteTimeout), cfg.Presence.WriteTimeout)
	assert.Equal(t, Duration(DefaultPushTTL), cfg.Push.TTL)
	assert.Equal(t, DefaultIdleTimeout, cfg.Presence.IdleAfter())
	assert.True(t, cfg.Ring.AutoCompleteEnabled())
	assert.NotNil(t, cfg.Logging)
}

func TestLogExportInheritsMetricsCollector(t *testing.T) {
	tlsConfig := &logger.TLSConfig{CertFile: "c.pem", KeyFile: "k.pem"}
	cfg := &BuzzerConfig{
		Logging: &logger.Config{OTel: logger.OTelConfig{Enabled: true}},
		Metrics: MetricsConfig{OTel: &logger.OTelConfig{
			Enabled:  true,
			Endpoint: "collector:4317",
			Headers:  map[string]string{"x-api-key": "k"},
			TLS:      tlsConfig,
		}},
	}

	cfg.ApplyDefaults()

	assert.Equal(t, "collector:4317", cfg.Logging.OTel.Endpoint)
	assert.Same(t, tlsConfig, cfg.Logging.OTel.TLS)
	assert.Equal(t, "k", cfg.Logging.OTel.Headers["x-api-key"])

	own := &BuzzerConfig{
		Logging: &logger.Config{OTel: logger.OTelConfig{Enabled: true, Endpoint: "logs:4317"}},
		Metrics: MetricsConfig{OTel: &logger.OTelConfig{Enabled: true, Endpoint: "collector:4317"}},
	}

	own.ApplyDefaults()

	assert.Equal(t, "logs:4317", own.Logging.OTel.Endpoint)
}

func TestBuzzerConfigValidate(t *testing.T) {
	valid := func() *BuzzerConfig {
		return &BuzzerConfig{
			ListenAddr: ":8000",
			Auth:       AuthConfig{JWTSecret: "secret"},
			Database:   &DatabaseConfig{URL: "postgres://localhost/buzzer"},
		}
	}

	tests := []struct {
		name   string
		mutate func(*BuzzerConfig)
		err    error
	}{
		{name: "valid", mutate: func(*BuzzerConfig) {}},
		{name: "no listen addr", mutate: func(c *BuzzerConfig) { c.ListenAddr = "" }, err: errListenAddrRequired},
		{name: "no secret", mutate: func(c *BuzzerConfig) { c.Auth.JWTSecret = "" }, err: errJWTSecretRequired},
		{name: "rs256", mutate: func(c *BuzzerConfig) { c.Auth.JWTAlgorithm = "RS256" }, err: errUnsupportedJWTAlgorithm},
		{name: "no database", mutate: func(c *BuzzerConfig) { c.Database = nil }, err: errDatabaseRequired},
		{name: "empty database", mutate: func(c *BuzzerConfig) { c.Database = &DatabaseConfig{} }, err: errDatabaseRequired},
		{
			name:   "negative idle timeout",
			mutate: func(c *BuzzerConfig) { d := Duration(-time.Second); c.Presence.IdleTimeout = &d },
			err:    errNegativePresenceTimeout,
		},
		{
			name:   "half a vapid pair",
			mutate: func(c *BuzzerConfig) { c.Push = &PushConfig{VAPIDPublicKey: "pub"} },
			err:    errVAPIDKeyPairIncomplete,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.err == nil {
				require.NoError(t, err)
				return
			}

			require.ErrorIs(t, err, tt.err)
		})
	}
}

func TestRingConfigAutoComplete(t *testing.T) {
	off := false

	assert.True(t, RingConfig{}.AutoCompleteEnabled())
	assert.False(t, RingConfig{AutoComplete: &off}.AutoCompleteEnabled())
}

func TestRingStatusIsTerminal(t *testing.T) {
	assert.False(t, RingStatusInitiated.IsTerminal())
	assert.False(t, RingStatusRinging.IsTerminal())
	assert.True(t, RingStatusFailed.IsTerminal())
	assert.True(t, RingStatusStopped.IsTerminal())
	assert.True(t, RingStatusCompleted.IsTerminal())
	assert.False(t, RingStatus("paused").Valid())
}

func TestRingSessionClone(t *testing.T) {
	d := 30
	now := time.Now()
	s := &RingSession{ID: "s1", DurationSeconds: &d, StoppedAt: &now}

	c := s.Clone()
	*c.DurationSeconds = 5
	*c.StoppedAt = now.Add(time.Hour)

	assert.Equal(t, 30, *s.DurationSeconds)
	assert.Equal(t, now, *s.StoppedAt)
	assert.Equal(t, 30*time.Second, s.Duration())
	assert.Zero(t, (&RingSession{}).Duration())
}

func TestRingSessionDurationIsCapped(t *testing.T) {
	huge := 10_000_000_000
	s := &RingSession{DurationSeconds: &huge}

	assert.Equal(t, time.Duration(MaxRingDurationSeconds)*time.Second, s.Duration())
	assert.Positive(t, s.Duration())
}

func TestParsePushSubscription(t *testing.T) {
	sub, err := ParsePushSubscription(nil)
	require.NoError(t, err)
	assert.Nil(t, sub)

	sub, err = ParsePushSubscription([]byte(`{"endpoint":"https://push.example/1","keys":{"p256dh":"k","auth":"a"}}`))
	require.NoError(t, err)
	assert.True(t, sub.Valid())

	_, err = ParsePushSubscription([]byte(`{`))
	require.Error(t, err)

	assert.False(t, (&PushSubscription{Endpoint: "x"}).Valid())
}
