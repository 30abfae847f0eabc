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
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/carverauto/buzzer/pkg/db"
	bzhttp "github.com/carverauto/buzzer/pkg/http"
	"github.com/carverauto/buzzer/pkg/logger"
	"github.com/carverauto/buzzer/pkg/models"
)

const (
	defaultTimeout           = 10 * time.Second
	defaultReadHeaderTimeout = 10 * time.Second
	defaultIdleTimeout       = 60 * time.Second
	maxRequestBody           = 1 << 20
)

// Server is the HTTP boundary. It authenticates callers and enforces group and
// ownership checks before handing identifiers to the ring coordinator.
type Server struct {
	router     *mux.Router
	rings      RingService
	directory  db.Directory
	presence   PresenceView
	push       PushKeys
	verifier   bzhttp.TokenVerifier
	extra      []RouteRegistrar
	corsConfig models.CORSConfig
	logger     logger.Logger
	timeout    time.Duration
}

// NewServer builds the API server and its routes.
func NewServer(config models.CORSConfig, log logger.Logger, options ...func(server *Server)) *Server {
	s := &Server{
		router:     mux.NewRouter(),
		corsConfig: config,
		logger:     log,
		timeout:    defaultTimeout,
	}

	for _, o := range options {
		o(s)
	}

	s.setupRoutes()

	return s
}

func WithRingService(r RingService) func(server *Server) {
	return func(server *Server) {
		server.rings = r
	}
}

func WithDirectory(d db.Directory) func(server *Server) {
	return func(server *Server) {
		server.directory = d
	}
}

func WithPresence(p PresenceView) func(server *Server) {
	return func(server *Server) {
		server.presence = p
	}
}

// WithPushKeys enables the VAPID key endpoint.
func WithPushKeys(p PushKeys) func(server *Server) {
	return func(server *Server) {
		server.push = p
	}
}

func WithTokenVerifier(v bzhttp.TokenVerifier) func(server *Server) {
	return func(server *Server) {
		server.verifier = v
	}
}

// WithRoutes mounts handlers that authenticate on their own, outside the /api prefix.
func WithRoutes(r RouteRegistrar) func(server *Server) {
	return func(server *Server) {
		server.extra = append(server.extra, r)
	}
}

// WithRequestTimeout bounds the directory and store calls made by a single request.
func WithRequestTimeout(d time.Duration) func(server *Server) {
	return func(server *Server) {
		if d > 0 {
			server.timeout = d
		}
	}
}

// Handler returns the root handler with middleware applied.
func (s *Server) Handler() http.Handler {
	return s.router
}

// HTTPServer returns an http.Server for addr. No read or write timeout is set
// because websocket connections share the listener.
func (s *Server) HTTPServer(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: defaultReadHeaderTimeout,
		IdleTimeout:       defaultIdleTimeout,
	}
}

func (s *Server) setupRoutes() {
	s.router.Use(func(next http.Handler) http.Handler {
		return bzhttp.CommonMiddleware(next, s.corsConfig, s.logger)
	})

	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	for _, r := range s.extra {
		r.RegisterRoutes(s.router)
	}

	protected := s.router.PathPrefix("/api").Subrouter()
	protected.Use(bzhttp.BearerAuthMiddleware(bzhttp.BearerAuthOptions{
		Verifier:        s.verifier,
		LogUnauthorized: true,
		Logger:          s.logger,
	}))

	protected.HandleFunc("/rings/start", s.startRing).Methods(http.MethodPost, http.MethodOptions)
	protected.HandleFunc("/rings/{id}/stop", s.stopRing).Methods(http.MethodPost, http.MethodOptions)
	protected.HandleFunc("/rings/{id}", s.getRing).Methods(http.MethodGet, http.MethodOptions)
	protected.HandleFunc("/groups/{group_id}/online", s.getOnlineDevices).Methods(http.MethodGet, http.MethodOptions)
	protected.HandleFunc("/notifications/vapid-public-key", s.getVAPIDPublicKey).Methods(http.MethodGet, http.MethodOptions)
	protected.HandleFunc("/notifications/subscribe", s.subscribe).Methods(http.MethodPost, http.MethodOptions)
}

func (*Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, models.StatusResponse{Status: "ok"})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, message string, statusCode int) {
	bzhttp.WriteError(w, message, statusCode)
}

// decodeBody reads a JSON request body. It writes the 400 response itself.
func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)

		return false
	}

	return true
}

// callerID returns the authenticated user. The auth middleware guarantees it on /api routes.
func callerID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := bzhttp.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, "Could not validate credentials", http.StatusUnauthorized)
	}

	return userID, ok
}
