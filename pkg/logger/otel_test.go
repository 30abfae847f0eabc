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
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
	otellog "go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

type exportedRecord struct {
	scope    string
	body     string
	severity otellog.Severity
	attrs    map[string]otellog.Value
}

type recordingExporter struct {
	mu      sync.Mutex
	records []exportedRecord
}

func (e *recordingExporter) Export(_ context.Context, records []sdklog.Record) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i := range records {
		r := &records[i]

		rec := exportedRecord{
			scope:    r.InstrumentationScope().Name,
			body:     r.Body().AsString(),
			severity: r.Severity(),
			attrs:    make(map[string]otellog.Value),
		}

		r.WalkAttributes(func(kv otellog.KeyValue) bool {
			rec.attrs[kv.Key] = kv.Value
			return true
		})

		e.records = append(e.records, rec)
	}

	return nil
}

func (*recordingExporter) Shutdown(context.Context) error   { return nil }
func (*recordingExporter) ForceFlush(context.Context) error { return nil }

func (e *recordingExporter) exported() []exportedRecord {
	e.mu.Lock()
	defer e.mu.Unlock()

	return append([]exportedRecord(nil), e.records...)
}

func newRecordingWriter(t *testing.T) (*OTelWriter, *recordingExporter) {
	t.Helper()

	exp := &recordingExporter{}
	provider := sdklog.NewLoggerProvider(sdklog.WithProcessor(sdklog.NewSimpleProcessor(exp)))

	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	return newOTelWriter(context.Background(), provider), exp
}

func TestNewOTELWriterRequiresEnabledEndpoint(t *testing.T) {
	if _, err := NewOTELWriter(context.Background(), OTelConfig{}); !errors.Is(err, ErrOTelLoggingDisabled) {
		t.Fatalf("Expected ErrOTelLoggingDisabled, got %v", err)
	}

	if _, err := NewOTELWriter(context.Background(), OTelConfig{Enabled: true}); !errors.Is(err, ErrOTelEndpointRequired) {
		t.Fatalf("Expected ErrOTelEndpointRequired, got %v", err)
	}
}

func TestOTelWriterTranslatesEvents(t *testing.T) {
	w, exp := newRecordingWriter(t)

	zlog := zerolog.New(w).With().Timestamp().Str("component", "ring").Logger()
	zlog.Warn().Str("device_id", "d1").Int("attempts", 3).Bool("delivered", false).Msg("Ring command not delivered")

	records := exp.exported()
	if len(records) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(records))
	}

	rec := records[0]

	if rec.scope != "ring" {
		t.Errorf("Expected scope ring, got %q", rec.scope)
	}

	if rec.body != "Ring command not delivered" {
		t.Errorf("Unexpected body %q", rec.body)
	}

	if rec.severity != otellog.SeverityWarn {
		t.Errorf("Expected warn severity, got %v", rec.severity)
	}

	if got := rec.attrs["device_id"].AsString(); got != "d1" {
		t.Errorf("Expected device_id d1, got %q", got)
	}

	if got := rec.attrs["attempts"].AsInt64(); got != 3 {
		t.Errorf("Expected attempts 3, got %d", got)
	}

	if v, ok := rec.attrs["delivered"]; !ok || v.Kind() != otellog.KindBool || v.AsBool() {
		t.Errorf("Expected delivered=false as a bool attribute, got %v", v)
	}

	for _, key := range []string{"level", "message", "component"} {
		if _, ok := rec.attrs[key]; ok {
			t.Errorf("Field %q should not be copied into attributes", key)
		}
	}
}

func TestOTelWriterDefaultScope(t *testing.T) {
	w, exp := newRecordingWriter(t)

	logger := zerolog.New(w)
	logger.Info().Msg("no component")

	records := exp.exported()
	if len(records) != 1 || records[0].scope != defaultLogScope {
		t.Fatalf("Expected one record in scope %q, got %+v", defaultLogScope, records)
	}
}

func TestOTelWriterSkipsNonJSON(t *testing.T) {
	w, exp := newRecordingWriter(t)

	n, err := w.Write([]byte("plain text"))
	if err != nil || n != len("plain text") {
		t.Fatalf("Expected the write to be swallowed, got n=%d err=%v", n, err)
	}

	if len(exp.exported()) != 0 {
		t.Error("Non-JSON input should not produce a record")
	}
}

func TestSeverityFromLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected otellog.Severity
	}{
		{"trace", otellog.SeverityTrace},
		{"debug", otellog.SeverityDebug},
		{"info", otellog.SeverityInfo},
		{"WARN", otellog.SeverityWarn},
		{"warning", otellog.SeverityWarn},
		{"error", otellog.SeverityError},
		{"fatal", otellog.SeverityFatal},
		{"panic", otellog.SeverityFatal},
		{"chatty", otellog.SeverityInfo},
	}

	for _, tt := range tests {
		if got := severityFromLevel(tt.level); got != tt.expected {
			t.Errorf("severityFromLevel(%q) = %v, expected %v", tt.level, got, tt.expected)
		}
	}
}

func TestTruncateKeepsRunesWhole(t *testing.T) {
	long := strings.Repeat("é", maxAttributeValueLength)

	got := truncate(long)

	if len(got) > maxAttributeValueLength {
		t.Errorf("Expected at most %d bytes, got %d", maxAttributeValueLength, len(got))
	}

	if !utf8.ValidString(got) || !strings.HasSuffix(got, "...") {
		t.Errorf("Expected a valid string ending in an ellipsis")
	}

	if truncate("short") != "short" {
		t.Error("Short values should pass through")
	}
}

func TestDefaultOTelConfigFromEnv(t *testing.T) {
	t.Setenv("OTEL_LOGS_ENABLED", "true")
	t.Setenv("OTEL_EXPORTER_OTLP_LOGS_ENDPOINT", "collector:4317")
	t.Setenv("OTEL_EXPORTER_OTLP_LOGS_HEADERS", "x-api-key=secret, tenant = ops")
	t.Setenv("OTEL_EXPORTER_OTLP_LOGS_TIMEOUT", "2s")

	config := DefaultOTelConfig()

	if !config.Enabled || config.Endpoint != "collector:4317" {
		t.Fatalf("Unexpected config %+v", config)
	}

	if config.Headers["x-api-key"] != "secret" || config.Headers["tenant"] != "ops" {
		t.Errorf("Unexpected headers %v", config.Headers)
	}

	if config.BatchTimeout != Duration(2*time.Second) {
		t.Errorf("Expected 2s batch timeout, got %v", time.Duration(config.BatchTimeout))
	}
}

func TestShutdownOTELWithoutProvider(t *testing.T) {
	if err := ShutdownOTEL(context.Background()); err != nil {
		t.Fatalf("Expected nil, got %v", err)
	}
}
