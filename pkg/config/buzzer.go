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

package config

import (
	"context"
	"errors"
	"os"

	"github.com/carverauto/buzzer/pkg/models"
)

// Well-known variables read after the configured source, matching the names
// deployments already use.
const (
	EnvDatabaseURL      = "DATABASE_URL"
	EnvSecretKey        = "SECRET_KEY"
	EnvVAPIDPublicKey   = "VAPID_PUBLIC_KEY"
	EnvVAPIDPrivateKey  = "VAPID_PRIVATE_KEY"
	EnvVAPIDClaimsEmail = "VAPID_CLAIMS_EMAIL"
	EnvNATSURL          = "NATS_URL"
	EnvListenAddr       = "LISTEN_ADDR"
)

// LoadBuzzerConfig loads the service configuration, overlays the well-known
// environment variables, applies defaults and validates the result. An empty
// path with the file source starts from an empty document.
func (c *Config) LoadBuzzerConfig(ctx context.Context, path string) (*models.BuzzerConfig, error) {
	cfg := &models.BuzzerConfig{}

	if err := c.Load(ctx, path, cfg); err != nil {
		if !errors.Is(err, errConfigPathRequired) {
			return nil, err
		}

		c.logger.Info().Msg("No config file given, using environment only")
	}

	ApplyEnvOverrides(cfg)
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ApplyEnvOverrides copies the well-known variables that are set onto cfg,
// creating the optional sections they belong to.
func ApplyEnvOverrides(cfg *models.BuzzerConfig) {
	if v := os.Getenv(EnvListenAddr); v != "" {
		cfg.ListenAddr = v
	}

	if v := os.Getenv(EnvSecretKey); v != "" {
		cfg.Auth.JWTSecret = v
	}

	if v := os.Getenv(EnvDatabaseURL); v != "" {
		if cfg.Database == nil {
			cfg.Database = &models.DatabaseConfig{}
		}

		cfg.Database.URL = v
	}

	setPush := func(apply func(p *models.PushConfig)) {
		if cfg.Push == nil {
			cfg.Push = &models.PushConfig{}
		}

		apply(cfg.Push)
	}

	if v := os.Getenv(EnvVAPIDPublicKey); v != "" {
		setPush(func(p *models.PushConfig) { p.VAPIDPublicKey = v })
	}

	if v := os.Getenv(EnvVAPIDPrivateKey); v != "" {
		setPush(func(p *models.PushConfig) { p.VAPIDPrivateKey = v })
	}

	if v := os.Getenv(EnvVAPIDClaimsEmail); v != "" {
		setPush(func(p *models.PushConfig) { p.ClaimsEmail = v })
	}

	if v := os.Getenv(EnvNATSURL); v != "" {
		if cfg.NATS == nil {
			cfg.NATS = &models.NATSConfig{}
		}

		cfg.NATS.URL = v
	}
}
