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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/appradar/pkg/logger"
	"github.com/carverauto/appradar/pkg/models"
	"github.com/carverauto/appradar/pkg/registry"
)

type stubRegistrar struct {
	registerResp *models.RegistrationResponse
	registerErr  error
	unregisterOK map[string]bool
	restartErr   error
	restartedIDs []int64
}

func (s *stubRegistrar) Register(_ context.Context, _ *models.RegistrationRequest) (*models.RegistrationResponse, error) {
	return s.registerResp, s.registerErr
}

func (s *stubRegistrar) Unregister(_ context.Context, appID string) error {
	if s.unregisterOK[appID] {
		return nil
	}

	return registry.ErrInstanceNotFound
}

func (s *stubRegistrar) Restart(_ context.Context, id int64) error {
	s.restartedIDs = append(s.restartedIDs, id)
	return s.restartErr
}

type stubBridge struct {
	loggers  map[string]models.LoggerLevels
	setOK    bool
	lastName string
	lastLvl  string
}

func (s *stubBridge) ListLoggers(context.Context, *models.Instance) map[string]models.LoggerLevels {
	return s.loggers
}

func (s *stubBridge) SetLoggerLevel(_ context.Context, _ *models.Instance, name, level string) bool {
	s.lastName = name
	s.lastLvl = level

	return s.setOK
}

type apiFixture struct {
	server    *APIServer
	registry  *registry.InstanceRegistry
	registrar *stubRegistrar
	bridge    *stubBridge
}

func newFixture(t *testing.T) *apiFixture {
	t.Helper()

	log := logger.NewTestLogger()
	reg := registry.NewInstanceRegistry(models.RetentionConfig{}, log)

	registrar := &stubRegistrar{unregisterOK: make(map[string]bool)}
	bridge := &stubBridge{}

	srv := NewAPIServer(models.CORSConfig{},
		WithRegistry(reg),
		WithRegistrar(registrar),
		WithLevelBridge(bridge),
		WithLogger(log),
	)

	return &apiFixture{server: srv, registry: reg, registrar: registrar, bridge: bridge}
}

func (f *apiFixture) addInstance(name string) *models.Instance {
	data := &models.Instance{
		Name:      name,
		Namespace: "shop",
		Source:    models.SourcePlatform,
		Status:    models.StatusUp,
		BaseURL:   "http://" + name + ":8080/actuator",
		Version:   "1.0.0",
	}

	return f.registry.UpsertByIdentity(data.Identity(), data)
}

func (f *apiFixture) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer

	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()

	f.server.Router().ServeHTTP(rec, req)

	return rec
}

func TestGetServices(t *testing.T) {
	f := newFixture(t)
	f.addInstance("orders")
	f.addInstance("billing")

	rec := f.do(t, http.MethodGet, "/api/services", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var summaries []ServiceSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summaries))
	require.Len(t, summaries, 2)
	assert.Equal(t, "orders", summaries[0].Name)
	assert.Equal(t, models.StatusUp, summaries[0].Status)
}

func TestGetServiceDetail(t *testing.T) {
	f := newFixture(t)
	inst := f.addInstance("orders")

	sample := models.MetricSample{Timestamp: time.Now(), MemoryUsed: 77}
	require.NoError(t, f.registry.AppendMetric(inst.ID, sample))

	rec := f.do(t, http.MethodGet, fmt.Sprintf("/api/services/%d", inst.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var detail ServiceDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &detail))
	assert.Equal(t, "orders", detail.Instance.Name)
	require.NotNil(t, detail.LatestMetric)
	assert.Equal(t, int64(77), detail.LatestMetric.MemoryUsed)
}

func TestGetServiceNotFound(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/services/999", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	var errResp models.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
	assert.Equal(t, http.StatusNotFound, errResp.Status)
}

func TestGetServiceBadID(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/services/not-a-number", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetServiceMetricsWithLimit(t *testing.T) {
	f := newFixture(t)
	inst := f.addInstance("orders")

	base := time.Now()
	for i := 0; i < 5; i++ {
		sample := models.MetricSample{Timestamp: base.Add(time.Duration(i) * time.Second), MemoryUsed: int64(i)}
		require.NoError(t, f.registry.AppendMetric(inst.ID, sample))
	}

	rec := f.do(t, http.MethodGet, fmt.Sprintf("/api/services/%d/metrics?limit=2", inst.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var samples []models.MetricSample
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &samples))
	require.Len(t, samples, 2)
	assert.Equal(t, int64(4), samples[0].MemoryUsed, "newest first")
}

func TestGetServiceLogs(t *testing.T) {
	f := newFixture(t)
	inst := f.addInstance("orders")

	require.NoError(t, f.registry.AppendLog(inst.ID, models.LogEntry{Timestamp: time.Now(), Level: "INFO", Message: "started"}))

	rec := f.do(t, http.MethodGet, fmt.Sprintf("/api/services/%d/logs", inst.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var entries []models.LogEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "started", entries[0].Message)
}

func TestGetServiceLoggers(t *testing.T) {
	f := newFixture(t)
	inst := f.addInstance("orders")

	f.bridge.loggers = map[string]models.LoggerLevels{
		"ROOT": {ConfiguredLevel: "INFO", EffectiveLevel: "INFO"},
	}

	rec := f.do(t, http.MethodGet, fmt.Sprintf("/api/services/%d/loggers", inst.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var loggers map[string]models.LoggerLevels
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &loggers))
	assert.Equal(t, "INFO", loggers["ROOT"].EffectiveLevel)
}

func TestGetServiceLoggersUnavailable(t *testing.T) {
	f := newFixture(t)
	inst := f.addInstance("orders")

	rec := f.do(t, http.MethodGet, fmt.Sprintf("/api/services/%d/loggers", inst.ID), nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestSetServiceLoggerLevel(t *testing.T) {
	f := newFixture(t)
	inst := f.addInstance("orders")
	f.bridge.setOK = true

	rec := f.do(t, http.MethodPost, fmt.Sprintf("/api/services/%d/loggers/com.example", inst.ID),
		SetLevelRequest{ConfiguredLevel: "DEBUG"})

	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "com.example", f.bridge.lastName)
	assert.Equal(t, "DEBUG", f.bridge.lastLvl)
}

func TestSetServiceLoggerLevelRejected(t *testing.T) {
	f := newFixture(t)
	inst := f.addInstance("orders")

	rec := f.do(t, http.MethodPost, fmt.Sprintf("/api/services/%d/loggers/ROOT", inst.ID),
		SetLevelRequest{ConfiguredLevel: "LOUD"})

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestSetServiceLoggerLevelMissingBody(t *testing.T) {
	f := newFixture(t)
	inst := f.addInstance("orders")

	rec := f.do(t, http.MethodPost, fmt.Sprintf("/api/services/%d/loggers/ROOT", inst.ID), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegisterService(t *testing.T) {
	f := newFixture(t)
	f.registrar.registerResp = &models.RegistrationResponse{AppID: "abc", ID: 1, Created: true}

	rec := f.do(t, http.MethodPost, "/api/register", models.RegistrationRequest{
		Name:        "payments",
		ActuatorURL: "http://payments:8080/actuator",
	})

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp models.RegistrationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "abc", resp.AppID)
}

func TestRegisterServiceUpdateReturnsOK(t *testing.T) {
	f := newFixture(t)
	f.registrar.registerResp = &models.RegistrationResponse{AppID: "abc", ID: 1, Created: false}

	rec := f.do(t, http.MethodPost, "/api/register", models.RegistrationRequest{
		Name:        "payments",
		ActuatorURL: "http://payments:8080/actuator",
		AppID:       "abc",
	})

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRegisterServiceValidationFailure(t *testing.T) {
	f := newFixture(t)
	f.registrar.registerErr = fmt.Errorf("%w: name is required", models.ErrValidation)

	rec := f.do(t, http.MethodPost, "/api/register", models.RegistrationRequest{})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var errResp models.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
	assert.Contains(t, errResp.Message, "name is required")
}

func TestRegisterServiceInvalidJSON(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/api/register", bytes.NewBufferString("{nope"))
	rec := httptest.NewRecorder()
	f.server.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUnregisterService(t *testing.T) {
	f := newFixture(t)
	f.registrar.unregisterOK["known-app"] = true

	rec := f.do(t, http.MethodDelete, "/api/unregister/known-app", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = f.do(t, http.MethodDelete, "/api/unregister/unknown-app", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRestartService(t *testing.T) {
	f := newFixture(t)
	inst := f.addInstance("orders")

	rec := f.do(t, http.MethodPost, fmt.Sprintf("/api/services/%d/restart", inst.ID), nil)
	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, []int64{inst.ID}, f.registrar.restartedIDs)
}

func TestRestartServiceUpstreamFailure(t *testing.T) {
	f := newFixture(t)
	inst := f.addInstance("orders")
	f.registrar.restartErr = fmt.Errorf("connection refused")

	rec := f.do(t, http.MethodPost, fmt.Sprintf("/api/services/%d/restart", inst.ID), nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestServiceConfigCRUD(t *testing.T) {
	f := newFixture(t)
	inst := f.addInstance("orders")

	prop := models.ConfigProperty{Key: "server.port", Value: "8080", Type: models.PropertyNumber}

	rec := f.do(t, http.MethodPost, fmt.Sprintf("/api/services/%d/config", inst.ID), prop)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = f.do(t, http.MethodGet, fmt.Sprintf("/api/services/%d/config", inst.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var props []models.ConfigProperty
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &props))
	require.Len(t, props, 1)
	assert.Equal(t, "server.port", props[0].Key)

	rec = f.do(t, http.MethodDelete, fmt.Sprintf("/api/services/%d/config/server.port", inst.ID), nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = f.do(t, http.MethodDelete, fmt.Sprintf("/api/services/%d/config/server.port", inst.ID), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpsertServiceConfigRequiresKey(t *testing.T) {
	f := newFixture(t)
	inst := f.addInstance("orders")

	rec := f.do(t, http.MethodPost, fmt.Sprintf("/api/services/%d/config", inst.ID),
		models.ConfigProperty{Value: "x"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetSystemStatus(t *testing.T) {
	f := newFixture(t)

	up := f.addInstance("orders")
	_ = up

	down := f.addInstance("billing")
	require.NoError(t, f.registry.SetStatus(down.ID, models.StatusDown))

	rec := f.do(t, http.MethodGet, "/api/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var status SystemStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, 2, status.TotalServices)
	assert.Equal(t, 1, status.ByStatus[models.StatusUp])
	assert.Equal(t, 1, status.ByStatus[models.StatusDown])
}

func TestCORSHeadersApplied(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/services", nil)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
