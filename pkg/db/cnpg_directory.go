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
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carverauto/buzzer/pkg/logger"
	"github.com/carverauto/buzzer/pkg/models"
)

// DB implements Directory on top of a pgx pool.
type DB struct {
	executor pgxExecutor
	logger   logger.Logger
}

var _ Directory = (*DB)(nil)

// New wraps an open pool.
func New(pool *pgxpool.Pool, log logger.Logger) *DB {
	return &DB{executor: pool, logger: log}
}

const (
	getUserSQL = `
SELECT id, email, COALESCE(full_name, '')
FROM users
WHERE id = $1`

	getDeviceSQL = `
SELECT device_id, user_id, COALESCE(device_name, ''), COALESCE(device_type, ''),
       push_subscription, is_online, last_seen, created_at
FROM devices
WHERE device_id = $1`

	userGroupsSQL = `
SELECT group_id
FROM group_members
WHERE user_id = $1
ORDER BY group_id`

	sharedGroupSQL = `
SELECT a.group_id
FROM group_members a
JOIN group_members b ON b.group_id = a.group_id
WHERE a.user_id = $1
  AND b.user_id = $2
  AND ($3::text = '' OR a.group_id = $3::text)
ORDER BY a.group_id
LIMIT 1`

	isMemberSQL = `
SELECT EXISTS (
    SELECT 1 FROM group_members WHERE group_id = $1 AND user_id = $2
)`

	savePushSubscriptionSQL = `
UPDATE devices
SET push_subscription = $2, updated_at = now()
WHERE device_id = $1`

	setDeviceOnlineSQL = `
UPDATE devices
SET is_online = $2, last_seen = $3, updated_at = $3
WHERE device_id = $1`

	touchDeviceSQL = `
UPDATE devices
SET last_seen = $2
WHERE device_id = $1`

	resetOnlineSQL = `
UPDATE devices
SET is_online = false, updated_at = now()
WHERE is_online`
)

func (db *DB) GetUser(ctx context.Context, userID string) (*models.User, error) {
	var user models.User

	err := db.executor.QueryRow(ctx, getUserSQL, userID).Scan(&user.ID, &user.Email, &user.DisplayName)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("get user %s: %w", userID, err)
	}

	return &user, nil
}

func (db *DB) GetDevice(ctx context.Context, deviceID string) (*models.Device, error) {
	var (
		device   models.Device
		rawSub   []byte
		lastSeen *time.Time
	)

	err := db.executor.QueryRow(ctx, getDeviceSQL, deviceID).Scan(
		&device.ID,
		&device.UserID,
		&device.Name,
		&device.Type,
		&rawSub,
		&device.IsOnline,
		&lastSeen,
		&device.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrDeviceNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("get device %s: %w", deviceID, err)
	}

	device.LastSeen = lastSeen

	sub, err := models.ParsePushSubscription(rawSub)
	if err != nil {
		// a corrupt subscription only disables push for this device
		db.logger.Warn().Err(err).Str("device_id", deviceID).Msg("ignoring unreadable push subscription")
	} else {
		device.PushSubscription = sub
	}

	return &device, nil
}

func (db *DB) UserGroups(ctx context.Context, userID string) ([]string, error) {
	rows, err := db.executor.Query(ctx, userGroupsSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("list groups of %s: %w", userID, err)
	}
	defer rows.Close()

	var groups []string

	for rows.Next() {
		var groupID string
		if err := rows.Scan(&groupID); err != nil {
			return nil, fmt.Errorf("scan group of %s: %w", userID, err)
		}

		groups = append(groups, groupID)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate groups of %s: %w", userID, err)
	}

	return groups, nil
}

func (db *DB) SharedGroup(ctx context.Context, userA, userB, preferred string) (string, error) {
	var groupID string

	err := db.executor.QueryRow(ctx, sharedGroupSQL, userA, userB, preferred).Scan(&groupID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNoSharedGroup
	}

	if err != nil {
		return "", fmt.Errorf("shared group of %s and %s: %w", userA, userB, err)
	}

	return groupID, nil
}

func (db *DB) IsMember(ctx context.Context, groupID, userID string) (bool, error) {
	var member bool

	if err := db.executor.QueryRow(ctx, isMemberSQL, groupID, userID).Scan(&member); err != nil {
		return false, fmt.Errorf("membership of %s in %s: %w", userID, groupID, err)
	}

	return member, nil
}

func (db *DB) SavePushSubscription(ctx context.Context, deviceID string, sub *models.PushSubscription) error {
	var raw []byte

	if sub != nil {
		encoded, err := json.Marshal(sub)
		if err != nil {
			return fmt.Errorf("encode push subscription: %w", err)
		}

		raw = encoded
	}

	return db.updateDevice(ctx, savePushSubscriptionSQL, deviceID, raw)
}

func (db *DB) SetDeviceOnline(ctx context.Context, deviceID string, online bool, at time.Time) error {
	return db.updateDevice(ctx, setDeviceOnlineSQL, deviceID, online, at.UTC())
}

func (db *DB) TouchDevice(ctx context.Context, deviceID string, at time.Time) error {
	return db.updateDevice(ctx, touchDeviceSQL, deviceID, at.UTC())
}

// ResetOnlineDevices clears every is_online flag. Presence lives in process memory, so
// flags left over from a previous run are stale.
func (db *DB) ResetOnlineDevices(ctx context.Context) (int64, error) {
	tag, err := db.executor.Exec(ctx, resetOnlineSQL)
	if err != nil {
		return 0, fmt.Errorf("reset online devices: %w", err)
	}

	return tag.RowsAffected(), nil
}

func (db *DB) updateDevice(ctx context.Context, sql, deviceID string, args ...any) error {
	tag, err := db.executor.Exec(ctx, sql, append([]any{deviceID}, args...)...)
	if err != nil {
		return fmt.Errorf("update device %s: %w", deviceID, err)
	}

	if tag.RowsAffected() == 0 {
		return ErrDeviceNotFound
	}

	return nil
}
