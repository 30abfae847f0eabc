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
	"errors"
	"fmt"
	"time"

	"github.com/carverauto/buzzer/pkg/logger"
)

var (
	errListenAddrRequired      = errors.New("listen address is required")
	errJWTSecretRequired       = errors.New("auth.jwt_secret is required")
	errUnsupportedJWTAlgorithm = errors.New("auth.jwt_algorithm must be HS256, HS384 or HS512")
	errDatabaseRequired        = errors.New("database url or host is required")
	errNegativePresenceTimeout = errors.New("presence timeouts must be non-negative")
	errVAPIDKeyPairIncomplete  = errors.New("push.vapid_public_key and push.vapid_private_key must be set together")
)

const (
	DefaultListenAddr      = ":8000"
	DefaultJWTAlgorithm    = "HS256"
	DefaultEventsStream    = "BUZZER_EVENTS"
	DefaultWriteTimeout    = 10 * time.Second
	DefaultIdleTimeout     = 90 * time.Second
	DefaultSweepInterval   = 30 * time.Second
	DefaultPushTTL         = 60 * time.Second
	DefaultPushTimeout     = 10 * time.Second
	DefaultPersistTimeout  = 5 * time.Second
	DefaultPublishTimeout  = 2 * time.Second
	DefaultDatabasePort    = 5432
	DefaultApplicationName = "buzzer"
)

// Duration is a time.Duration that unmarshals from "30s"-style strings or nanosecond numbers.
type Duration = logger.Duration

// CORSConfig lists the origins allowed to call the HTTP and websocket endpoints.
type CORSConfig struct {
	AllowedOrigins   []string `json:"allowed_origins"`
	AllowCredentials bool     `json:"allow_credentials"`
}

type AuthConfig struct {
	JWTSecret    string `json:"jwt_secret" sensitive:"true"`
	JWTAlgorithm string `json:"jwt_algorithm"`
}

// DatabaseConfig describes the Postgres cluster holding users, devices, groups and ring sessions.
// URL takes precedence over the discrete fields.
type DatabaseConfig struct {
	URL                string            `json:"url" sensitive:"true"`
	Host               string            `json:"host"`
	Port               int               `json:"port"`
	Database           string            `json:"database"`
	Username           string            `json:"username"`
	Password           string            `json:"password" sensitive:"true"`
	SSLMode            string            `json:"ssl_mode"`
	ApplicationName    string            `json:"application_name"`
	MaxConnections     int32             `json:"max_connections"`
	MinConnections     int32             `json:"min_connections"`
	MaxConnLifetime    Duration          `json:"max_conn_lifetime"`
	HealthCheckPeriod  Duration          `json:"health_check_period"`
	ExtraRuntimeParams map[string]string `json:"extra_runtime_params"`
	RunMigrations      bool              `json:"run_migrations"`
}

// PushConfig carries the VAPID credential pair used for Web Push.
type PushConfig struct {
	VAPIDPublicKey  string   `json:"vapid_public_key"`
	VAPIDPrivateKey string   `json:"vapid_private_key" sensitive:"true"`
	ClaimsEmail     string   `json:"claims_email"`
	TTL             Duration `json:"ttl"`
	Timeout         Duration `json:"timeout"`
}

// Configured reports whether push dispatch has a usable key pair.
func (p *PushConfig) Configured() bool {
	return p != nil && p.VAPIDPublicKey != "" && p.VAPIDPrivateKey != ""
}

type NATSConfig struct {
	URL            string         `json:"url"`
	Stream         string         `json:"stream"`
	Domain         string         `json:"domain"`
	Subjects       []string       `json:"subjects"`
	PublishTimeout Duration       `json:"publish_timeout"`
	TLS            *NATSTLSConfig `json:"tls,omitempty"`
}

// NATSTLSConfig enables mutual TLS towards the NATS cluster.
type NATSTLSConfig struct {
	CertFile   string `json:"cert_file"`
	KeyFile    string `json:"key_file"`
	CAFile     string `json:"ca_file"`
	ServerName string `json:"server_name"`
}

type PresenceConfig struct {
	// WriteTimeout bounds a single channel send.
	WriteTimeout Duration `json:"write_timeout"`
	// IdleTimeout closes channels that have not sent a heartbeat for this long.
	// Unset means DefaultIdleTimeout; an explicit zero disables the sweep.
	IdleTimeout   *Duration `json:"idle_timeout"`
	SweepInterval Duration  `json:"sweep_interval"`
}

// IdleAfter resolves the effective idle timeout.
func (p PresenceConfig) IdleAfter() time.Duration {
	if p.IdleTimeout == nil {
		return DefaultIdleTimeout
	}

	return time.Duration(*p.IdleTimeout)
}

type RingConfig struct {
	AutoComplete   *bool    `json:"auto_complete"`
	PersistTimeout Duration `json:"persist_timeout"`
}

// AutoCompleteEnabled defaults to true when unset.
func (r RingConfig) AutoCompleteEnabled() bool {
	return r.AutoComplete == nil || *r.AutoComplete
}

type MetricsConfig struct {
	OTel           *logger.OTelConfig `json:"otel"`
	ExportInterval Duration           `json:"export_interval"`
}

// TracingConfig enables OTLP export of ring coordinator spans.
type TracingConfig struct {
	OTel *logger.OTelConfig `json:"otel"`
}

// BuzzerConfig is the top-level service configuration.
type BuzzerConfig struct {
	ListenAddr string          `json:"listen_addr"`
	Logging    *logger.Config  `json:"logging"`
	CORS       CORSConfig      `json:"cors"`
	Auth       AuthConfig      `json:"auth"`
	Database   *DatabaseConfig `json:"database"`
	Push       *PushConfig     `json:"push"`
	NATS       *NATSConfig     `json:"nats"`
	Presence   PresenceConfig  `json:"presence"`
	Ring       RingConfig      `json:"ring"`
	Metrics    MetricsConfig   `json:"metrics"`
	Tracing    TracingConfig   `json:"tracing"`
}

// ApplyDefaults fills unset fields with their defaults.
func (c *BuzzerConfig) ApplyDefaults() {
	if c.ListenAddr == "" {
		c.ListenAddr = DefaultListenAddr
	}

	if c.Logging == nil {
		c.Logging = logger.DefaultConfig()
	}

	// log export without its own endpoint reuses the metrics collector
	if logs, metrics := &c.Logging.OTel, c.Metrics.OTel; logs.Enabled && logs.Endpoint == "" && metrics != nil {
		logs.Endpoint = metrics.Endpoint
		logs.Insecure = metrics.Insecure
		logs.TLS = metrics.TLS

		if len(logs.Headers) == 0 {
			logs.Headers = metrics.Headers
		}
	}

	if len(c.CORS.AllowedOrigins) == 0 {
		c.CORS.AllowedOrigins = []string{"*"}
	}

	if c.Auth.JWTAlgorithm == "" {
		c.Auth.JWTAlgorithm = DefaultJWTAlgorithm
	}

	if c.Database != nil {
		if c.Database.Port == 0 {
			c.Database.Port = DefaultDatabasePort
		}

		if c.Database.ApplicationName == "" {
			c.Database.ApplicationName = DefaultApplicationName
		}
	}

	if c.Push != nil {
		if c.Push.TTL == 0 {
			c.Push.TTL = Duration(DefaultPushTTL)
		}

		if c.Push.Timeout == 0 {
			c.Push.Timeout = Duration(DefaultPushTimeout)
		}
	}

	if c.NATS != nil {
		if c.NATS.Stream == "" {
			c.NATS.Stream = DefaultEventsStream
		}

		if len(c.NATS.Subjects) == 0 {
			c.NATS.Subjects = []string{"events.ring.*", "events.presence.*"}
		}

		if c.NATS.PublishTimeout == 0 {
			c.NATS.PublishTimeout = Duration(DefaultPublishTimeout)
		}
	}

	if c.Presence.WriteTimeout == 0 {
		c.Presence.WriteTimeout = Duration(DefaultWriteTimeout)
	}

	if c.Presence.SweepInterval == 0 {
		c.Presence.SweepInterval = Duration(DefaultSweepInterval)
	}

	if c.Ring.PersistTimeout == 0 {
		c.Ring.PersistTimeout = Duration(DefaultPersistTimeout)
	}
}

func (c *BuzzerConfig) Validate() error {
	if c.ListenAddr == "" {
		return errListenAddrRequired
	}

	if c.Auth.JWTSecret == "" {
		return errJWTSecretRequired
	}

	switch c.Auth.JWTAlgorithm {
	case "", "HS256", "HS384", "HS512":
	default:
		return fmt.Errorf("%w: %s", errUnsupportedJWTAlgorithm, c.Auth.JWTAlgorithm)
	}

	if c.Database == nil || (c.Database.URL == "" && c.Database.Host == "") {
		return errDatabaseRequired
	}

	if c.Presence.IdleAfter() < 0 || c.Presence.SweepInterval < 0 || c.Presence.WriteTimeout < 0 {
		return errNegativePresenceTimeout
	}

	if c.Push != nil && (c.Push.VAPIDPublicKey == "") != (c.Push.VAPIDPrivateKey == "") {
		return errVAPIDKeyPairIncomplete
	}

	return nil
}
