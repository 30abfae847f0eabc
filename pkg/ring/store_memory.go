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

package ring

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/carverauto/buzzer/pkg/models"
)

// MemoryStore keeps sessions in process memory. Callers always receive copies.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*models.RingSession
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*models.RingSession)}
}

func (m *MemoryStore) Create(_ context.Context, session *models.RingSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[session.ID]; ok {
		return fmt.Errorf("%w: %s", ErrSessionExists, session.ID)
	}

	m.sessions[session.ID] = session.Clone()

	return nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (*models.RingSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}

	return s.Clone(), nil
}

func (m *MemoryStore) Transition(_ context.Context, id string, to models.RingStatus, at time.Time,
	from ...models.RingStatus) (*models.RingSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}

	if s.Status.IsTerminal() || !slices.Contains(from, s.Status) {
		return s.Clone(), fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s.Status, to)
	}

	applyTransition(s, to, at)

	return s.Clone(), nil
}

func applyTransition(s *models.RingSession, to models.RingStatus, at time.Time) {
	s.Status = to

	switch to {
	case models.RingStatusStopped:
		s.StoppedAt = &at
	case models.RingStatusCompleted:
		s.CompletedAt = &at
	case models.RingStatusInitiated, models.RingStatusRinging, models.RingStatusFailed:
	}
}
