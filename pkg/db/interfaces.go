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

// Package db persists users, devices, group memberships and ring sessions in Postgres.
package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/carverauto/buzzer/pkg/models"
)

//go:generate mockgen -destination=mock_db.go -package=db github.com/carverauto/buzzer/pkg/db Directory

// Directory is the read side of account data plus the few device fields this service writes.
type Directory interface {
	// GetUser returns ErrUserNotFound when the id is unknown.
	GetUser(ctx context.Context, userID string) (*models.User, error)
	// GetDevice returns ErrDeviceNotFound when the id is unknown.
	GetDevice(ctx context.Context, deviceID string) (*models.Device, error)
	// UserGroups lists the ids of every group the user belongs to.
	UserGroups(ctx context.Context, userID string) ([]string, error)
	// SharedGroup picks a group both users belong to. A non-empty preferred group
	// must be shared or ErrNoSharedGroup is returned.
	SharedGroup(ctx context.Context, userA, userB, preferred string) (string, error)
	IsMember(ctx context.Context, groupID, userID string) (bool, error)
	// SavePushSubscription replaces the device subscription. A nil subscription clears it.
	SavePushSubscription(ctx context.Context, deviceID string, sub *models.PushSubscription) error
	SetDeviceOnline(ctx context.Context, deviceID string, online bool, at time.Time) error
	TouchDevice(ctx context.Context, deviceID string, at time.Time) error
}

// pgxExecutor is the subset of *pgxpool.Pool used by the queries in this package.
type pgxExecutor interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}
