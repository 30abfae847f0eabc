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

package logger

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
)

func TestInit(t *testing.T) {
	config := &Config{
		Level:  "debug",
		Debug:  true,
		Output: "stdout",
	}

	if err := Init(config); err != nil {
		t.Fatalf("Failed to initialize logger: %v", err)
	}

	logger := GetLogger()
	if logger.GetLevel() != zerolog.DebugLevel {
		t.Errorf("Expected debug level, got %v", logger.GetLevel())
	}
}

func TestInitRejectsUnknownLevel(t *testing.T) {
	if err := Init(&Config{Level: "shouting"}); err == nil {
		t.Fatal("Expected an error for an unknown level")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name     string
		config   *Config
		expected zerolog.Level
	}{
		{name: "nil config", config: nil, expected: zerolog.InfoLevel},
		{name: "empty level", config: &Config{}, expected: zerolog.InfoLevel},
		{name: "explicit warn", config: &Config{Level: "warn"}, expected: zerolog.WarnLevel},
		{name: "debug wins", config: &Config{Level: "error", Debug: true}, expected: zerolog.DebugLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			level, err := ParseLevel(tt.config)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}

			if level != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, level)
			}
		})
	}
}

func TestWithComponent(t *testing.T) {
	componentLogger := WithComponent("test-component")

	if componentLogger.GetLevel() == zerolog.Disabled {
		t.Error("Component logger should not be disabled")
	}
}

func TestDefaultConfig(t *testing.T) {
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("LOG_OUTPUT", "stderr")

	config := DefaultConfig()

	if config.Level != "warn" {
		t.Errorf("Expected level warn, got %s", config.Level)
	}

	if config.Output != "stderr" {
		t.Errorf("Expected output stderr, got %s", config.Output)
	}
}

func TestInitializeMetricsDisabled(t *testing.T) {
	_, err := InitializeMetrics(context.Background(), MetricsConfig{OTel: &OTelConfig{Enabled: false}})
	if !errors.Is(err, ErrOTelMetricsDisabled) {
		t.Fatalf("Expected ErrOTelMetricsDisabled, got %v", err)
	}

	_, err = InitializeMetrics(context.Background(), MetricsConfig{OTel: &OTelConfig{Enabled: true}})
	if !errors.Is(err, ErrOTelMetricsDisabled) {
		t.Fatalf("Expected ErrOTelMetricsDisabled without endpoint, got %v", err)
	}
}

func TestNewTestLoggerDiscards(t *testing.T) {
	l := NewTestLogger()
	l.Info().Str("k", "v").Msg("discarded")

	if l.WithComponent("x").GetLevel() != zerolog.Disabled {
		t.Error("Test logger should be disabled")
	}
}

func TestInitializeTracingDisabled(t *testing.T) {
	_, err := InitializeTracing(context.Background(), TracingConfig{})
	if !errors.Is(err, ErrOTelTracingDisabled) {
		t.Fatalf("Expected ErrOTelTracingDisabled, got %v", err)
	}

	_, err = InitializeTracing(context.Background(), TracingConfig{OTel: &OTelConfig{Enabled: true}})
	if !errors.Is(err, ErrOTelTracingDisabled) {
		t.Fatalf("Expected ErrOTelTracingDisabled without endpoint, got %v", err)
	}

	if err := ShutdownTracing(context.Background()); err != nil {
		t.Fatalf("Expected nil shutdown without a provider, got %v", err)
	}
}
