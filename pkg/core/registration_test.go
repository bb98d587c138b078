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

package core

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/appradar/pkg/logger"
	"github.com/carverauto/appradar/pkg/models"
	"github.com/carverauto/appradar/pkg/probe"
	"github.com/carverauto/appradar/pkg/registry"
)

func testServer() *Server {
	log := logger.NewTestLogger()

	return &Server{
		registry: registry.NewInstanceRegistry(models.RetentionConfig{}, log),
		prober:   probe.NewProber(time.Second, log),
		logger:   log,
	}
}

func TestRegisterNewInstance(t *testing.T) {
	s := testServer()

	resp, err := s.Register(context.Background(), &models.RegistrationRequest{
		Name:        "payments",
		ActuatorURL: "http://payments.internal:9090/actuator",
		Version:     "1.2.0",
	})
	require.NoError(t, err)

	assert.True(t, resp.Created)
	require.NotEmpty(t, resp.AppID)
	_, err = uuid.Parse(resp.AppID)
	assert.NoError(t, err, "generated appId must be a UUID")

	inst, err := s.registry.Get(resp.ID)
	require.NoError(t, err)
	assert.Equal(t, "payments", inst.Name)
	assert.Equal(t, models.SourceDirect, inst.Source)
	assert.Equal(t, models.StatusUnknown, inst.Status, "new registrations start unknown")
	assert.Equal(t, models.DefaultNamespace, inst.Namespace)
	assert.True(t, inst.AutoRegister)
	require.NotNil(t, inst.Host)
	assert.Equal(t, "payments.internal", *inst.Host)
	require.NotNil(t, inst.Port)
	assert.Equal(t, 9090, *inst.Port)
}

func TestRegisterValidation(t *testing.T) {
	s := testServer()

	tests := []struct {
		name string
		req  *models.RegistrationRequest
	}{
		{"missing name", &models.RegistrationRequest{ActuatorURL: "http://x:8080"}},
		{"missing url", &models.RegistrationRequest{Name: "payments"}},
		{"relative url", &models.RegistrationRequest{Name: "payments", ActuatorURL: "/actuator"}},
		{"unsupported scheme", &models.RegistrationRequest{Name: "payments", ActuatorURL: "ftp://x:21"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Register(context.Background(), tt.req)
			assert.ErrorIs(t, err, models.ErrValidation)
		})
	}

	assert.Empty(t, s.registry.List())
}

func TestRegisterExistingAppIDUpdatesInPlace(t *testing.T) {
	s := testServer()

	first, err := s.Register(context.Background(), &models.RegistrationRequest{
		Name:        "payments",
		ActuatorURL: "http://payments.internal:9090/actuator",
		AppID:       "payments-1",
		Version:     "1.0.0",
	})
	require.NoError(t, err)
	assert.True(t, first.Created)

	second, err := s.Register(context.Background(), &models.RegistrationRequest{
		Name:        "payments",
		ActuatorURL: "http://payments.internal:9191/actuator",
		AppID:       "payments-1",
		Version:     "1.1.0",
	})
	require.NoError(t, err)

	assert.False(t, second.Created)
	assert.Equal(t, first.ID, second.ID)

	all := s.registry.List()
	require.Len(t, all, 1)
	assert.Equal(t, "1.1.0", all[0].Version)
	assert.Equal(t, "http://payments.internal:9191/actuator", all[0].BaseURL)
}

func TestRegisterPortDefaultsByScheme(t *testing.T) {
	s := testServer()

	tests := []struct {
		name     string
		url      string
		expected int
	}{
		{"http default", "http://payments.internal/actuator", 80},
		{"https default", "https://payments.internal/actuator", 443},
		{"explicit", "http://payments.internal:8443/actuator", 8443},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := s.Register(context.Background(), &models.RegistrationRequest{
				Name:        "payments-" + tt.name,
				ActuatorURL: tt.url,
			})
			require.NoError(t, err)

			inst, err := s.registry.Get(resp.ID)
			require.NoError(t, err)
			require.NotNil(t, inst.Port)
			assert.Equal(t, tt.expected, *inst.Port)
		})
	}
}

func TestRegisterExplicitHostPortWin(t *testing.T) {
	s := testServer()

	resp, err := s.Register(context.Background(), &models.RegistrationRequest{
		Name:        "payments",
		ActuatorURL: "http://lb.internal:9090/actuator",
		Host:        "10.0.0.9",
		Port:        7070,
	})
	require.NoError(t, err)

	inst, err := s.registry.Get(resp.ID)
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.9", *inst.Host)
	assert.Equal(t, 7070, *inst.Port)
}

func TestRegisterAutoRegisterOptOut(t *testing.T) {
	s := testServer()

	optOut := false

	resp, err := s.Register(context.Background(), &models.RegistrationRequest{
		Name:         "payments",
		ActuatorURL:  "http://payments.internal:9090/actuator",
		AutoRegister: &optOut,
	})
	require.NoError(t, err)

	inst, err := s.registry.Get(resp.ID)
	require.NoError(t, err)
	assert.False(t, inst.AutoRegister)
}

func TestUnregister(t *testing.T) {
	s := testServer()

	resp, err := s.Register(context.Background(), &models.RegistrationRequest{
		Name:        "payments",
		ActuatorURL: "http://payments.internal:9090/actuator",
	})
	require.NoError(t, err)

	require.NoError(t, s.Unregister(context.Background(), resp.AppID))
	assert.Empty(t, s.registry.List())

	assert.ErrorIs(t, s.Unregister(context.Background(), resp.AppID), registry.ErrInstanceNotFound)
}

func TestRestartRelay(t *testing.T) {
	var restarted bool

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && r.URL.Path == "/restart" {
			restarted = true
			w.WriteHeader(http.StatusOK)

			return
		}

		w.WriteHeader(http.StatusNotFound)
	}))
	defer upstream.Close()

	s := testServer()

	resp, err := s.Register(context.Background(), &models.RegistrationRequest{
		Name:        "payments",
		ActuatorURL: upstream.URL,
	})
	require.NoError(t, err)

	require.NoError(t, s.Restart(context.Background(), resp.ID))
	assert.True(t, restarted)

	assert.ErrorIs(t, s.Restart(context.Background(), 999), registry.ErrInstanceNotFound)
}
