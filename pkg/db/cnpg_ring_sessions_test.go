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
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/buzzer/pkg/models"
	"github.com/carverauto/buzzer/pkg/ring"
)

func ringRow(status models.RingStatus, duration *int32, stopped, completed *time.Time) fakeRow {
	started := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	return fakeRow{values: []any{
		"s1", "g1", "u1", "d1", duration, string(status), started, stopped, completed,
	}}
}

func TestRingStoreCreate(t *testing.T) {
	exec := newFakeExecutor()
	store := newTestDB(exec).RingSessions()

	duration := 30
	session := &models.RingSession{
		ID:              "s1",
		GroupID:         "g1",
		InitiatorUserID: "u1",
		TargetDeviceID:  "d1",
		DurationSeconds: &duration,
		Status:          models.RingStatusInitiated,
		StartedAt:       time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
	}

	require.NoError(t, store.Create(context.Background(), session))
	require.Len(t, exec.execs, 1)
	assert.Equal(t, "initiated", exec.execs[0].args[5])

	exec.execErr = &pgconn.PgError{Code: pgUniqueViolation}
	require.ErrorIs(t, store.Create(context.Background(), session), ring.ErrSessionExists)
}

func TestRingStoreGet(t *testing.T) {
	duration := int32(45)

	exec := newFakeExecutor()
	exec.onRow("FROM ring_sessions", ringRow(models.RingStatusRinging, &duration, nil, nil))
	store := newTestDB(exec).RingSessions()

	session, err := store.Get(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, models.RingStatusRinging, session.Status)
	require.NotNil(t, session.DurationSeconds)
	assert.Equal(t, 45, *session.DurationSeconds)
	assert.Nil(t, session.StoppedAt)

	_, err = store.Get(context.Background(), "missing")
	require.ErrorIs(t, err, ring.ErrSessionNotFound)
}

func TestRingStoreTransition(t *testing.T) {
	at := time.Date(2025, 3, 1, 10, 5, 0, 0, time.UTC)

	exec := newFakeExecutor()
	exec.onRow("UPDATE ring_sessions", ringRow(models.RingStatusStopped, nil, &at, nil))
	store := newTestDB(exec).RingSessions()

	session, err := store.Transition(context.Background(), "s1", models.RingStatusStopped, at,
		models.RingStatusInitiated, models.RingStatusRinging)
	require.NoError(t, err)
	assert.Equal(t, models.RingStatusStopped, session.Status)
	require.NotNil(t, session.StoppedAt)
	assert.Equal(t, at, *session.StoppedAt)
	assert.Nil(t, session.DurationSeconds)

	args := exec.rowCalls[0].args
	assert.Equal(t, "stopped", args[1])
	assert.Equal(t, []string{"initiated", "ringing"}, args[3])
}

func TestRingStoreTransitionRefused(t *testing.T) {
	completed := time.Date(2025, 3, 1, 10, 1, 0, 0, time.UTC)

	exec := newFakeExecutor()
	exec.onRow("FROM ring_sessions", ringRow(models.RingStatusCompleted, nil, nil, &completed))
	store := newTestDB(exec).RingSessions()

	// the guarded update matches nothing, so the store reports the current row
	session, err := store.Transition(context.Background(), "s1", models.RingStatusStopped, time.Now(),
		models.RingStatusRinging)
	require.ErrorIs(t, err, ring.ErrInvalidTransition)
	require.NotNil(t, session)
	assert.Equal(t, models.RingStatusCompleted, session.Status)

	_, err = store.Transition(context.Background(), "missing", models.RingStatusStopped, time.Now(),
		models.RingStatusRinging)
	require.ErrorIs(t, err, ring.ErrSessionNotFound)
}
