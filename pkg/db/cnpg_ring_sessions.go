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
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/carverauto/buzzer/pkg/models"
	"github.com/carverauto/buzzer/pkg/ring"
)

const pgUniqueViolation = "23505"

const ringSessionColumns = `id, group_id, initiated_by, target_device_id, duration_seconds,
       status, started_at, stopped_at, completed_at`

const (
	insertRingSessionSQL = `
INSERT INTO ring_sessions (` + ringSessionColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	getRingSessionSQL = `
SELECT ` + ringSessionColumns + `
FROM ring_sessions
WHERE id = $1`

	// terminal rows never match, whatever the caller lists in $4
	transitionRingSessionSQL = `
UPDATE ring_sessions
SET status       = $2::text,
    stopped_at   = CASE WHEN $2::text = 'stopped' THEN $3::timestamptz ELSE stopped_at END,
    completed_at = CASE WHEN $2::text = 'completed' THEN $3::timestamptz ELSE completed_at END
WHERE id = $1
  AND status = ANY($4::text[])
  AND status NOT IN ('failed', 'stopped', 'completed')
RETURNING ` + ringSessionColumns
)

// RingStore implements ring.Store against the ring_sessions table.
type RingStore struct {
	executor pgxExecutor
}

var _ ring.Store = (*RingStore)(nil)

// RingSessions returns the ring session store sharing this connection pool.
func (db *DB) RingSessions() *RingStore {
	return &RingStore{executor: db.executor}
}

func (s *RingStore) Create(ctx context.Context, session *models.RingSession) error {
	_, err := s.executor.Exec(ctx, insertRingSessionSQL,
		session.ID,
		session.GroupID,
		session.InitiatorUserID,
		session.TargetDeviceID,
		session.DurationSeconds,
		string(session.Status),
		session.StartedAt.UTC(),
		utcPtr(session.StoppedAt),
		utcPtr(session.CompletedAt),
	)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return fmt.Errorf("%w: %s", ring.ErrSessionExists, session.ID)
	}

	if err != nil {
		return fmt.Errorf("insert ring session %s: %w", session.ID, err)
	}

	return nil
}

func (s *RingStore) Get(ctx context.Context, id string) (*models.RingSession, error) {
	session, err := scanRingSession(s.executor.QueryRow(ctx, getRingSessionSQL, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ring.ErrSessionNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("get ring session %s: %w", id, err)
	}

	return session, nil
}

func (s *RingStore) Transition(ctx context.Context, id string, to models.RingStatus, at time.Time,
	from ...models.RingStatus) (*models.RingSession, error) {
	allowed := make([]string, 0, len(from))
	for _, status := range from {
		allowed = append(allowed, string(status))
	}

	session, err := scanRingSession(s.executor.QueryRow(ctx, transitionRingSessionSQL, id, string(to), at.UTC(), allowed))
	if err == nil {
		return session, nil
	}

	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("transition ring session %s to %s: %w", id, to, err)
	}

	// no row matched: either the id is unknown or the status guard refused
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	return current, fmt.Errorf("%w: %s -> %s", ring.ErrInvalidTransition, current.Status, to)
}

func scanRingSession(row pgx.Row) (*models.RingSession, error) {
	var (
		session   models.RingSession
		status    string
		duration  *int32
		stopped   *time.Time
		completed *time.Time
	)

	if err := row.Scan(
		&session.ID,
		&session.GroupID,
		&session.InitiatorUserID,
		&session.TargetDeviceID,
		&duration,
		&status,
		&session.StartedAt,
		&stopped,
		&completed,
	); err != nil {
		return nil, err
	}

	session.Status = models.RingStatus(status)
	session.StoppedAt = stopped
	session.CompletedAt = completed

	if duration != nil {
		seconds := int(*duration)
		session.DurationSeconds = &seconds
	}

	return &session, nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}

	utc := t.UTC()

	return &utc
}
