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

package db

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carverauto/buzzer/pkg/logger"
	"github.com/carverauto/buzzer/pkg/models"
)

// NewPool dials the configured cluster and returns a pgx pool.
func NewPool(ctx context.Context, cfg *models.DatabaseConfig, log logger.Logger) (*pgxpool.Pool, error) {
	if cfg == nil {
		return nil, errDatabaseNotConfigured
	}

	connURL, err := buildConnURL(cfg)
	if err != nil {
		return nil, err
	}

	poolConfig, err := pgxpool.ParseConfig(connURL.String())
	if err != nil {
		return nil, fmt.Errorf("db: failed to parse connection string: %w", err)
	}

	if cfg.MaxConnections > 0 {
		poolConfig.MaxConns = cfg.MaxConnections
	}

	if cfg.MinConnections > 0 {
		poolConfig.MinConns = cfg.MinConnections
	}

	if cfg.MaxConnLifetime > 0 {
		poolConfig.MaxConnLifetime = time.Duration(cfg.MaxConnLifetime)
	}

	if cfg.HealthCheckPeriod > 0 {
		poolConfig.HealthCheckPeriod = time.Duration(cfg.HealthCheckPeriod)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("db: failed to initialize pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()

		return nil, fmt.Errorf("db: ping failed: %w", err)
	}

	if log != nil {
		log.Info().
			Str("host", connURL.Hostname()).
			Str("database", poolConfig.ConnConfig.Database).
			Int32("max_conns", poolConfig.MaxConns).
			Msg("connected to postgres")
	}

	return pool, nil
}

// buildConnURL starts from cfg.URL when present, otherwise assembles one from the
// discrete fields. Query parameters already on the URL win over defaults.
func buildConnURL(cfg *models.DatabaseConfig) (*url.URL, error) {
	var connURL *url.URL

	if cfg.URL != "" {
		parsed, err := url.Parse(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", errDatabaseURLInvalid, err)
		}

		if parsed.Scheme != "postgres" && parsed.Scheme != "postgresql" {
			return nil, fmt.Errorf("%w: unsupported scheme %q", errDatabaseURLInvalid, parsed.Scheme)
		}

		connURL = parsed
	} else {
		port := cfg.Port
		if port == 0 {
			port = models.DefaultDatabasePort
		}

		connURL = &url.URL{
			Scheme: "postgres",
			Host:   fmt.Sprintf("%s:%d", cfg.Host, port),
			Path:   "/" + cfg.Database,
		}

		if cfg.Username != "" {
			if cfg.Password != "" {
				connURL.User = url.UserPassword(cfg.Username, cfg.Password)
			} else {
				connURL.User = url.User(cfg.Username)
			}
		}
	}

	query := connURL.Query()

	setDefault := func(key, value string) {
		if value != "" && query.Get(key) == "" {
			query.Set(key, value)
		}
	}

	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	setDefault("sslmode", sslMode)
	setDefault("application_name", cfg.ApplicationName)

	for k, v := range cfg.ExtraRuntimeParams {
		if k == "" {
			continue
		}

		query.Set(k, v)
	}

	connURL.RawQuery = query.Encode()

	return connURL, nil
}
