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

// Package api provides the HTTP API server for AppRadar
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	arHttp "github.com/carverauto/appradar/pkg/http"
	"github.com/carverauto/appradar/pkg/logger"
	"github.com/carverauto/appradar/pkg/models"
	"github.com/carverauto/appradar/pkg/registry"
)

const (
	defaultReadTimeout  = 10 * time.Second
	defaultWriteTimeout = 30 * time.Second
	defaultIdleTimeout  = 60 * time.Second

	defaultListLimit = 100
)

// APIServer exposes the registry over REST and websockets.
type APIServer struct {
	router     *mux.Router
	corsConfig models.CORSConfig
	listenAddr string
	registry   registry.Service
	registrar  Registrar
	levels     LevelBridge
	streamCfg  models.StreamConfig
	hub        *LogHub
	httpServer *http.Server
	logger     logger.Logger
}

// NewAPIServer creates a new API server instance with the given configuration
func NewAPIServer(config models.CORSConfig, options ...func(server *APIServer)) *APIServer {
	s := &APIServer{
		router:     mux.NewRouter(),
		corsConfig: config,
	}

	for _, o := range options {
		o(s)
	}

	if s.logger == nil {
		s.logger = logger.NewTestLogger()
	}

	s.hub = NewLogHub(s.streamCfg, s.logger)

	s.setupRoutes()

	return s
}

// WithListenAddr sets the address the server binds on Start.
func WithListenAddr(addr string) func(*APIServer) {
	return func(server *APIServer) {
		server.listenAddr = addr
	}
}

// WithRegistry attaches the instance registry to the API server
func WithRegistry(reg registry.Service) func(server *APIServer) {
	return func(server *APIServer) {
		server.registry = reg
	}
}

// WithRegistrar attaches the direct registration handler to the API server
func WithRegistrar(r Registrar) func(server *APIServer) {
	return func(server *APIServer) {
		server.registrar = r
	}
}

// WithLevelBridge attaches the logger-level relay to the API server
func WithLevelBridge(b LevelBridge) func(server *APIServer) {
	return func(server *APIServer) {
		server.levels = b
	}
}

// WithStreamConfig sets the log streaming knobs for the API server
func WithStreamConfig(cfg models.StreamConfig) func(server *APIServer) {
	return func(server *APIServer) {
		server.streamCfg = cfg
	}
}

// WithLogger sets the logger for the API server
func WithLogger(log logger.Logger) func(server *APIServer) {
	return func(server *APIServer) {
		server.logger = log
	}
}

// Hub returns the websocket log hub so it can be wired as the registry's
// log sink.
func (s *APIServer) Hub() *LogHub { return s.hub }

// Router exposes the configured router, used directly by handler tests.
func (s *APIServer) Router() http.Handler { return s.router }

func (s *APIServer) setupRoutes() {
	s.router.Use(func(next http.Handler) http.Handler {
		return arHttp.CommonMiddleware(next, s.corsConfig)
	})

	api := s.router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/services", s.getServices).Methods("GET")
	api.HandleFunc("/services/{id}", s.getService).Methods("GET")
	api.HandleFunc("/services/{id}/metrics", s.getServiceMetrics).Methods("GET")
	api.HandleFunc("/services/{id}/logs", s.getServiceLogs).Methods("GET")
	api.HandleFunc("/services/{id}/logs/stream", s.streamServiceLogs).Methods("GET")
	api.HandleFunc("/services/{id}/loggers", s.getServiceLoggers).Methods("GET")
	api.HandleFunc("/services/{id}/loggers/{name}", s.setServiceLoggerLevel).Methods("POST")
	api.HandleFunc("/services/{id}/restart", s.restartService).Methods("POST")
	api.HandleFunc("/services/{id}/config", s.getServiceConfig).Methods("GET")
	api.HandleFunc("/services/{id}/config", s.upsertServiceConfig).Methods("POST", "PUT")
	api.HandleFunc("/services/{id}/config/{key}", s.deleteServiceConfig).Methods("DELETE")
	api.HandleFunc("/register", s.registerService).Methods("POST")
	api.HandleFunc("/unregister/{appId}", s.unregisterService).Methods("DELETE")
	api.HandleFunc("/status", s.getSystemStatus).Methods("GET")
	api.HandleFunc("/logs/stream", s.streamAllLogs).Methods("GET")
}

// Start implements the lifecycle.Service interface.
func (s *APIServer) Start(_ context.Context) error {
	s.httpServer = &http.Server{
		Addr:         s.listenAddr,
		Handler:      s.router,
		ReadTimeout:  defaultReadTimeout,
		WriteTimeout: defaultWriteTimeout,
		IdleTimeout:  defaultIdleTimeout,
	}

	s.logger.Info().Str("addr", s.listenAddr).Msg("Starting API server")

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

// Stop implements the lifecycle.Service interface.
func (s *APIServer) Stop(ctx context.Context) error {
	s.hub.Close()

	if s.httpServer == nil {
		return nil
	}

	return s.httpServer.Shutdown(ctx)
}

// instanceFromRequest resolves the {id} path variable into a registry
// record, writing the error response itself on failure.
func (s *APIServer) instanceFromRequest(w http.ResponseWriter, r *http.Request) (*models.Instance, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeError(w, "Invalid service id", http.StatusBadRequest)
		return nil, false
	}

	inst, err := s.registry.Get(id)
	if err != nil {
		writeError(w, "Service not found", http.StatusNotFound)
		return nil, false
	}

	return inst, true
}

func listLimit(r *http.Request) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return defaultListLimit
	}

	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return defaultListLimit
	}

	return limit
}

// @Summary List monitored services
// @Description Retrieves summaries of every registered or discovered instance
// @Tags Services
// @Accept json
// @Produce json
// @Success 200 {array} ServiceSummary "List of service summaries"
// @Router /api/services [get]
func (s *APIServer) getServices(w http.ResponseWriter, _ *http.Request) {
	instances := s.registry.List()

	summaries := make([]ServiceSummary, 0, len(instances))
	for _, inst := range instances {
		summaries = append(summaries, ServiceSummary{
			ID:        inst.ID,
			AppID:     inst.AppID,
			Name:      inst.Name,
			Namespace: inst.Namespace,
			Version:   inst.Version,
			Source:    inst.Source,
			Status:    inst.Status,
			LastSeen:  inst.LastSeen,
		})
	}

	s.encodeJSONResponse(w, summaries)
}

// @Summary Get service details
// @Description Retrieves the full record of one instance plus its latest metric sample
// @Tags Services
// @Accept json
// @Produce json
// @Param id path int true "Service ID"
// @Success 200 {object} ServiceDetail "Service details"
// @Failure 404 {object} models.ErrorResponse "Service not found"
// @Router /api/services/{id} [get]
func (s *APIServer) getService(w http.ResponseWriter, r *http.Request) {
	inst, ok := s.instanceFromRequest(w, r)
	if !ok {
		return
	}

	detail := ServiceDetail{Instance: inst}

	if samples, err := s.registry.ListMetrics(inst.ID, 1); err == nil && len(samples) > 0 {
		detail.LatestMetric = &samples[0]
	}

	s.encodeJSONResponse(w, detail)
}

// @Summary Get service metrics
// @Description Retrieves recent metric samples, newest first
// @Tags Services
// @Accept json
// @Produce json
// @Param id path int true "Service ID"
// @Param limit query int false "Maximum samples to return"
// @Success 200 {array} models.MetricSample "Metric samples"
// @Failure 404 {object} models.ErrorResponse "Service not found"
// @Router /api/services/{id}/metrics [get]
func (s *APIServer) getServiceMetrics(w http.ResponseWriter, r *http.Request) {
	inst, ok := s.instanceFromRequest(w, r)
	if !ok {
		return
	}

	samples, err := s.registry.ListMetrics(inst.ID, listLimit(r))
	if err != nil {
		writeError(w, "Service not found", http.StatusNotFound)
		return
	}

	s.encodeJSONResponse(w, samples)
}

// @Summary Get service logs
// @Description Retrieves recent collected log lines, newest first
// @Tags Services
// @Accept json
// @Produce json
// @Param id path int true "Service ID"
// @Param limit query int false "Maximum entries to return"
// @Success 200 {array} models.LogEntry "Log entries"
// @Failure 404 {object} models.ErrorResponse "Service not found"
// @Router /api/services/{id}/logs [get]
func (s *APIServer) getServiceLogs(w http.ResponseWriter, r *http.Request) {
	inst, ok := s.instanceFromRequest(w, r)
	if !ok {
		return
	}

	entries, err := s.registry.ListLogs(inst.ID, listLimit(r))
	if err != nil {
		writeError(w, "Service not found", http.StatusNotFound)
		return
	}

	s.encodeJSONResponse(w, entries)
}

// @Summary List instance loggers
// @Description Relays a logger listing to the instance's management endpoint
// @Tags Loggers
// @Accept json
// @Produce json
// @Param id path int true "Service ID"
// @Success 200 {object} map[string]models.LoggerLevels "Named loggers"
// @Failure 502 {object} models.ErrorResponse "Instance did not answer"
// @Router /api/services/{id}/loggers [get]
func (s *APIServer) getServiceLoggers(w http.ResponseWriter, r *http.Request) {
	inst, ok := s.instanceFromRequest(w, r)
	if !ok {
		return
	}

	loggers := s.levels.ListLoggers(r.Context(), inst)
	if loggers == nil {
		writeError(w, "Instance loggers unavailable", http.StatusBadGateway)
		return
	}

	s.encodeJSONResponse(w, loggers)
}

// @Summary Set instance logger level
// @Description Relays a logger-level change to the instance's management endpoint
// @Tags Loggers
// @Accept json
// @Produce json
// @Param id path int true "Service ID"
// @Param name path string true "Logger name"
// @Success 204 "Level accepted"
// @Failure 400 {object} models.ErrorResponse "Invalid level"
// @Failure 502 {object} models.ErrorResponse "Instance rejected the update"
// @Router /api/services/{id}/loggers/{name} [post]
func (s *APIServer) setServiceLoggerLevel(w http.ResponseWriter, r *http.Request) {
	inst, ok := s.instanceFromRequest(w, r)
	if !ok {
		return
	}

	var req SetLevelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ConfiguredLevel == "" {
		writeError(w, "configuredLevel is required", http.StatusBadRequest)
		return
	}

	if !s.levels.SetLoggerLevel(r.Context(), inst, mux.Vars(r)["name"], req.ConfiguredLevel) {
		writeError(w, "Instance did not accept the level change", http.StatusBadGateway)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// @Summary Restart a service
// @Description Relays a restart request to the instance's management endpoint
// @Tags Services
// @Accept json
// @Produce json
// @Param id path int true "Service ID"
// @Success 202 "Restart relayed"
// @Failure 404 {object} models.ErrorResponse "Service not found"
// @Failure 502 {object} models.ErrorResponse "Instance did not accept the restart"
// @Router /api/services/{id}/restart [post]
func (s *APIServer) restartService(w http.ResponseWriter, r *http.Request) {
	inst, ok := s.instanceFromRequest(w, r)
	if !ok {
		return
	}

	if err := s.registrar.Restart(r.Context(), inst.ID); err != nil {
		writeError(w, "Restart failed: "+err.Error(), http.StatusBadGateway)
		return
	}

	w.WriteHeader(http.StatusAccepted)
}

// @Summary List config properties
// @Description Retrieves the stored configuration properties of an instance
// @Tags Config
// @Accept json
// @Produce json
// @Param id path int true "Service ID"
// @Success 200 {array} models.ConfigProperty "Config properties"
// @Failure 404 {object} models.ErrorResponse "Service not found"
// @Router /api/services/{id}/config [get]
func (s *APIServer) getServiceConfig(w http.ResponseWriter, r *http.Request) {
	inst, ok := s.instanceFromRequest(w, r)
	if !ok {
		return
	}

	props, err := s.registry.ListConfigProperties(inst.ID)
	if err != nil {
		writeError(w, "Service not found", http.StatusNotFound)
		return
	}

	s.encodeJSONResponse(w, props)
}

// @Summary Store a config property
// @Description Creates or replaces one configuration property of an instance
// @Tags Config
// @Accept json
// @Produce json
// @Param id path int true "Service ID"
// @Success 204 "Property stored"
// @Failure 400 {object} models.ErrorResponse "Invalid property"
// @Router /api/services/{id}/config [post]
func (s *APIServer) upsertServiceConfig(w http.ResponseWriter, r *http.Request) {
	inst, ok := s.instanceFromRequest(w, r)
	if !ok {
		return
	}

	var prop models.ConfigProperty
	if err := json.NewDecoder(r.Body).Decode(&prop); err != nil || prop.Key == "" {
		writeError(w, "A property with a key is required", http.StatusBadRequest)
		return
	}

	if err := s.registry.UpsertConfigProperty(inst.ID, prop); err != nil {
		writeError(w, "Service not found", http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// @Summary Delete a config property
// @Description Removes one configuration property of an instance
// @Tags Config
// @Accept json
// @Produce json
// @Param id path int true "Service ID"
// @Param key path string true "Property key"
// @Success 204 "Property removed"
// @Failure 404 {object} models.ErrorResponse "Property not found"
// @Router /api/services/{id}/config/{key} [delete]
func (s *APIServer) deleteServiceConfig(w http.ResponseWriter, r *http.Request) {
	inst, ok := s.instanceFromRequest(w, r)
	if !ok {
		return
	}

	if err := s.registry.DeleteConfigProperty(inst.ID, mux.Vars(r)["key"]); err != nil {
		writeError(w, "Property not found", http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// @Summary Register a service
// @Description Directly registers an instance for monitoring
// @Tags Services
// @Accept json
// @Produce json
// @Success 201 {object} models.RegistrationResponse "Resolved registration"
// @Failure 400 {object} models.ErrorResponse "Invalid registration"
// @Router /api/register [post]
func (s *APIServer) registerService(w http.ResponseWriter, r *http.Request) {
	var req models.RegistrationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	resp, err := s.registrar.Register(r.Context(), &req)
	if err != nil {
		if errors.Is(err, models.ErrValidation) {
			writeError(w, err.Error(), http.StatusBadRequest)
			return
		}

		writeError(w, "Registration failed", http.StatusInternalServerError)

		return
	}

	status := http.StatusOK
	if resp.Created {
		status = http.StatusCreated
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Error().Err(err).Msg("Error encoding registration response")
	}
}

// @Summary Unregister a service
// @Description Removes a directly registered instance and its history
// @Tags Services
// @Accept json
// @Produce json
// @Param appId path string true "Application ID"
// @Success 204 "Instance removed"
// @Failure 404 {object} models.ErrorResponse "Unknown appId"
// @Router /api/unregister/{appId} [delete]
func (s *APIServer) unregisterService(w http.ResponseWriter, r *http.Request) {
	if err := s.registrar.Unregister(r.Context(), mux.Vars(r)["appId"]); err != nil {
		writeError(w, "Unknown appId", http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// @Summary Get system status
// @Description Summarizes the registry by instance status
// @Tags Status
// @Accept json
// @Produce json
// @Success 200 {object} SystemStatus "System summary"
// @Router /api/status [get]
func (s *APIServer) getSystemStatus(w http.ResponseWriter, _ *http.Request) {
	instances := s.registry.List()

	status := SystemStatus{
		TotalServices: len(instances),
		ByStatus:      make(map[models.Status]int),
		Timestamp:     time.Now(),
	}

	for _, inst := range instances {
		status.ByStatus[inst.Status]++
	}

	s.encodeJSONResponse(w, status)
}

func (s *APIServer) encodeJSONResponse(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error().Err(err).Msg("Error encoding response")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func writeError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")

	w.WriteHeader(statusCode)

	errResponse := models.ErrorResponse{
		Message: message,
		Status:  statusCode,
	}

	if err := json.NewEncoder(w).Encode(errResponse); err != nil {
		// Fallback in case encoding fails
		http.Error(w, "Failed to encode error response", http.StatusInternalServerError)
	}
}
