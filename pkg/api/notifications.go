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
	"net/http"

	"github.com/carverauto/buzzer/pkg/db"
	"github.com/carverauto/buzzer/pkg/models"
)

func (s *Server) getVAPIDPublicKey(w http.ResponseWriter, _ *http.Request) {
	if s.push == nil || !s.push.Configured() || s.push.PublicKey() == "" {
		writeError(w, "VAPID keys not configured on server", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, models.VAPIDKeyResponse{PublicKey: s.push.PublicKey()})
}

func (s *Server) subscribe(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	var req models.SubscribeRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if req.DeviceID == "" || !req.Subscription.Valid() {
		writeError(w, "device_id and a subscription with endpoint and keys are required", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()

	device, err := s.directory.GetDevice(ctx, req.DeviceID)
	if errors.Is(err, db.ErrDeviceNotFound) {
		writeError(w, "Device not found", http.StatusNotFound)
		return
	}

	if err != nil {
		s.internalError(w, err, "Failed to load device")
		return
	}

	if device.UserID != userID {
		writeError(w, "Not authorized to modify this device", http.StatusForbidden)
		return
	}

	if err := s.directory.SavePushSubscription(ctx, device.ID, req.Subscription); err != nil {
		s.internalError(w, err, "Failed to save push subscription")
		return
	}

	s.logger.Info().Str("device_id", device.ID).Msg("Saved push subscription")

	writeJSON(w, http.StatusOK, models.StatusResponse{Status: "success", Message: "Subscription saved"})
}
