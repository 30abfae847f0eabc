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
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/buzzer/pkg/logger"
	"github.com/carverauto/buzzer/pkg/models"
)

var wellKnownEnv = []string{
	EnvDatabaseURL, EnvSecretKey, EnvVAPIDPublicKey, EnvVAPIDPrivateKey,
	EnvVAPIDClaimsEmail, EnvNATSURL, EnvListenAddr, "CONFIG_SOURCE", "CONFIG_ENV_PREFIX",
	"BUZZER_CONFIG_JSON",
}

func clearEnv(t *testing.T) {
	t.Helper()

	for _, name := range wellKnownEnv {
		t.Setenv(name, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "buzzer.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	return path
}

func TestLoadBuzzerConfigFromFile(t *testing.T) {
	clearEnv(t)

	path := writeConfig(t, `{
		"listen_addr": ":9000",
		"auth": {"jwt_secret": "file-secret"},
		"database": {"host": "pg", "database": "buzzer"},
		"presence": {"idle_timeout": "45s"},
		"ring": {"auto_complete": false}
	}`)

	t.Setenv(EnvSecretKey, "env-secret")
	t.Setenv(EnvVAPIDPublicKey, "pub")
	t.Setenv(EnvVAPIDPrivateKey, "priv")

	cfg, err := NewConfig(logger.NewTestLogger()).LoadBuzzerConfig(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.ListenAddr)
	assert.Equal(t, "env-secret", cfg.Auth.JWTSecret)
	assert.Equal(t, models.DefaultDatabasePort, cfg.Database.Port)
	assert.Equal(t, 45*time.Second, cfg.Presence.IdleAfter())
	assert.False(t, cfg.Ring.AutoCompleteEnabled())
	require.True(t, cfg.Push.Configured())
	assert.Equal(t, models.Duration(models.DefaultPushTTL), cfg.Push.TTL)
	assert.Nil(t, cfg.NATS)
}

func TestLoadBuzzerConfigEnvOnly(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvDatabaseURL, "postgres://app@pg/buzzer")
	t.Setenv(EnvSecretKey, "s3cret")
	t.Setenv(EnvNATSURL, "nats://nats:4222")

	cfg, err := NewConfig(nil).LoadBuzzerConfig(context.Background(), "")
	require.NoError(t, err)

	assert.Equal(t, "postgres://app@pg/buzzer", cfg.Database.URL)
	require.NotNil(t, cfg.NATS)
	assert.Equal(t, models.DefaultEventsStream, cfg.NATS.Stream)
	assert.Equal(t, models.DefaultListenAddr, cfg.ListenAddr)
	assert.Nil(t, cfg.Push)
}

func TestLoadBuzzerConfigRejectsMissingSecret(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvDatabaseURL, "postgres://app@pg/buzzer")

	_, err := NewConfig(nil).LoadBuzzerConfig(context.Background(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jwt_secret")
}

func TestLoadRejectsUnknownSource(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONFIG_SOURCE", "kv")

	var cfg models.BuzzerConfig
	err := NewConfig(nil).Load(context.Background(), "", &cfg)
	require.ErrorIs(t, err, errInvalidConfigSource)
}

func TestFileLoaderErrors(t *testing.T) {
	var cfg models.BuzzerConfig

	loader := &FileConfigLoader{}
	require.ErrorIs(t, loader.Load(context.Background(), "", &cfg), errConfigPathRequired)
	require.Error(t, loader.Load(context.Background(), filepath.Join(t.TempDir(), "missing.json"), &cfg))
	require.Error(t, loader.Load(context.Background(), writeConfig(t, "{not json"), &cfg))
}

func TestEnvConfigLoader(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONFIG_SOURCE", "env")
	t.Setenv("BUZZER_LISTEN_ADDR", ":7000")
	t.Setenv("BUZZER_AUTH_JWT_SECRET", "s3cret")
	t.Setenv("BUZZER_DATABASE_HOST", "pg")
	t.Setenv("BUZZER_DATABASE_MAX_CONNECTIONS", "12")
	t.Setenv("BUZZER_DATABASE_MAX_CONN_LIFETIME", "5m")
	t.Setenv("BUZZER_CORS_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")
	t.Setenv("BUZZER_RING_AUTO_COMPLETE", "false")
	t.Setenv("BUZZER_PRESENCE_SWEEP_INTERVAL", "not-a-duration")
	t.Setenv("BUZZER_DATABASE_EXTRA_RUNTIME_PARAMS", `{"search_path":"buzzer"}`)

	cfg, err := NewConfig(logger.NewTestLogger()).LoadBuzzerConfig(context.Background(), "")
	require.NoError(t, err)

	assert.Equal(t, ":7000", cfg.ListenAddr)
	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
	require.NotNil(t, cfg.Database)
	assert.Equal(t, "pg", cfg.Database.Host)
	assert.Equal(t, int32(12), cfg.Database.MaxConnections)
	assert.Equal(t, models.Duration(5*time.Minute), cfg.Database.MaxConnLifetime)
	assert.Equal(t, map[string]string{"search_path": "buzzer"}, cfg.Database.ExtraRuntimeParams)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORS.AllowedOrigins)
	assert.False(t, cfg.Ring.AutoCompleteEnabled())

	// the malformed value is skipped and the default applies
	assert.Equal(t, models.Duration(models.DefaultSweepInterval), cfg.Presence.SweepInterval)

	// untouched optional sections stay nil
	assert.Nil(t, cfg.NATS)
	assert.Nil(t, cfg.Push)
	assert.Nil(t, cfg.Metrics.OTel)
}

func TestEnvConfigLoaderJSONDocument(t *testing.T) {
	clearEnv(t)
	t.Setenv("BUZZER_CONFIG_JSON", `{"listen_addr":":7100","auth":{"jwt_secret":"x"}}`)
	t.Setenv("BUZZER_LISTEN_ADDR", ":7200")

	var cfg models.BuzzerConfig
	require.NoError(t, NewEnvConfigLoader(logger.NewTestLogger(), DefaultEnvPrefix).Load(context.Background(), "", &cfg))
	assert.Equal(t, ":7100", cfg.ListenAddr)

	require.ErrorIs(t, NewEnvConfigLoader(logger.NewTestLogger(), "NOPE_").Load(context.Background(), "", cfg),
		ErrDstMustBeNonNilPointer)
}

func TestRedacted(t *testing.T) {
	cfg := &models.BuzzerConfig{
		ListenAddr: ":8000",
		Auth:       models.AuthConfig{JWTSecret: "s3cret", JWTAlgorithm: "HS256"},
		Database:   &models.DatabaseConfig{URL: "postgres://app:pw@pg/buzzer"},
		Push:       &models.PushConfig{VAPIDPublicKey: "pub", VAPIDPrivateKey: "priv"},
	}

	out := Redacted(cfg)

	auth, ok := out["auth"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, redactedValue, auth["jwt_secret"])
	assert.Equal(t, "HS256", auth["jwt_algorithm"])

	db, ok := out["database"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, redactedValue, db["url"])
	assert.NotContains(t, db, "password")

	push, ok := out["push"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "pub", push["vapid_public_key"])
	assert.Equal(t, redactedValue, push["vapid_private_key"])

	assert.NotContains(t, out, "nats")
	assert.Nil(t, Redacted(nil))
}
