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

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"

	"github.com/gorilla/mux"

	"github.com/carverauto/buzzer/pkg/db"
	"github.com/carverauto/buzzer/pkg/models"
	"github.com/carverauto/buzzer/pkg/ring"
)

var errAccessDenied = errors.New("caller neither initiated the session nor owns the target device")

func (s *Server) startRing(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	var req models.StartRingRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if req.TargetDeviceID == "" {
		writeError(w, "target_device_id is required", http.StatusBadRequest)
		return
	}

	if req.DurationSeconds != nil && *req.DurationSeconds <= 0 {
		writeError(w, "duration_seconds must be positive", http.StatusBadRequest)
		return
	}

	if req.DurationSeconds != nil && *req.DurationSeconds > models.MaxRingDurationSeconds {
		writeError(w, fmt.Sprintf("duration_seconds must not exceed %d", models.MaxRingDurationSeconds), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()

	target, err := s.directory.GetDevice(ctx, req.TargetDeviceID)
	if errors.Is(err, db.ErrDeviceNotFound) {
		writeError(w, "Device not found", http.StatusNotFound)
		return
	}

	if err != nil {
		s.internalError(w, err, "Failed to load target device")
		return
	}

	groupID, err := s.directory.SharedGroup(ctx, userID, target.UserID, req.GroupID)
	if errors.Is(err, db.ErrNoSharedGroup) {
		writeError(w, "Target device owner is not in your group", http.StatusForbidden)
		return
	}

	if err != nil {
		s.internalError(w, err, "Failed to resolve shared group")
		return
	}

	if !s.presence.IsOnline(target.ID) {
		writeError(w, "Target device is offline", http.StatusBadRequest)
		return
	}

	session, err := s.rings.Start(ctx, ring.StartRequest{
		GroupID:         groupID,
		InitiatorUserID: userID,
		InitiatorName:   s.displayName(ctx, userID),
		Target:          target,
		DurationSeconds: req.DurationSeconds,
	})
	if errors.Is(err, ring.ErrDeviceUnreachable) {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err != nil {
		s.internalError(w, err, "Failed to start ring session")
		return
	}

	writeJSON(w, http.StatusOK, session)
}

func (s *Server) stopRing(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()

	session, ok := s.authorizedSession(ctx, w, r, "Cannot stop this ring session")
	if !ok {
		return
	}

	stopped, err := s.rings.Stop(ctx, session.ID)
	if errors.Is(err, ring.ErrSessionNotFound) {
		writeError(w, "Ring session not found", http.StatusNotFound)
		return
	}

	if err != nil {
		s.internalError(w, err, "Failed to stop ring session")
		return
	}

	writeJSON(w, http.StatusOK, stopped)
}

func (s *Server) getRing(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()

	session, ok := s.authorizedSession(ctx, w, r, "No access to this ring session")
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, session)
}

// authorizedSession loads the session named in the path and checks the caller may see it.
func (s *Server) authorizedSession(ctx context.Context, w http.ResponseWriter, r *http.Request,
	forbidden string) (*models.RingSession, bool) {
	userID, ok := callerID(w, r)
	if !ok {
		return nil, false
	}

	session, err := s.rings.Get(ctx, mux.Vars(r)["id"])
	if errors.Is(err, ring.ErrSessionNotFound) {
		writeError(w, "Ring session not found", http.StatusNotFound)
		return nil, false
	}

	if err != nil {
		s.internalError(w, err, "Failed to load ring session")
		return nil, false
	}

	err = s.canAccess(ctx, userID, session)
	if errors.Is(err, errAccessDenied) {
		writeError(w, forbidden, http.StatusForbidden)
		return nil, false
	}

	if err != nil {
		s.internalError(w, err, "Failed to check ring session access")
		return nil, false
	}

	return session, true
}

func (s *Server) canAccess(ctx context.Context, userID string, session *models.RingSession) error {
	if session.InitiatorUserID == userID {
		return nil
	}

	target, err := s.directory.GetDevice(ctx, session.TargetDeviceID)
	if errors.Is(err, db.ErrDeviceNotFound) {
		return errAccessDenied
	}

	if err != nil {
		return err
	}

	if target.UserID != userID {
		return errAccessDenied
	}

	return nil
}

// displayName is best-effort; the ring command carries an empty name when the lookup fails.
func (s *Server) displayName(ctx context.Context, userID string) string {
	user, err := s.directory.GetUser(ctx, userID)
	if err != nil {
		s.logger.Debug().Err(err).Str("user_id", userID).Msg("Could not resolve initiator name")
		return ""
	}

	if user.DisplayName != "" {
		return user.DisplayName
	}

	return user.Email
}

func (s *Server) getOnlineDevices(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	groupID := mux.Vars(r)["group_id"]

	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()

	member, err := s.directory.IsMember(ctx, groupID, userID)
	if err != nil {
		s.internalError(w, err, "Failed to check group membership")
		return
	}

	if !member {
		writeError(w, "Not a member of this group", http.StatusForbidden)
		return
	}

	online := s.presence.OnlineDevicesInGroup(groupID)
	if online == nil {
		online = []string{}
	}

	sort.Strings(online)

	writeJSON(w, http.StatusOK, models.OnlineDevicesResponse{GroupID: groupID, OnlineDevices: online})
}

func (s *Server) internalError(w http.ResponseWriter, err error, msg string) {
	s.logger.Error().Err(err).Msg(msg)

	writeError(w, "Internal server error", http.StatusInternalServerError)
}
