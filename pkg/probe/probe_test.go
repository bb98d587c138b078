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

package probe

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/appradar/pkg/logger"
	"github.com/carverauto/appradar/pkg/models"
)

func testInstance(baseURL string) *models.Instance {
	return &models.Instance{
		Name:    "orders",
		BaseURL: baseURL,
		Status:  models.StatusUnknown,
	}
}

func TestJoinURL(t *testing.T) {
	tests := []struct {
		name     string
		base     string
		sub      string
		expected string
	}{
		{"both clean", "http://svc:8080/actuator", "health", "http://svc:8080/actuator/health"},
		{"trailing slash on base", "http://svc:8080/actuator/", "health", "http://svc:8080/actuator/health"},
		{"leading slash on sub", "http://svc:8080/actuator", "/health", "http://svc:8080/actuator/health"},
		{"both slashed", "http://svc:8080/actuator/", "/health", "http://svc:8080/actuator/health"},
		{"empty sub", "http://svc:8080/actuator", "", "http://svc:8080/actuator"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, JoinURL(tt.base, tt.sub))
		})
	}
}

func TestHealthStatuses(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		statusCode int
		expected   models.Status
	}{
		{"up", `{"status":"UP"}`, http.StatusOK, models.StatusUp},
		{"lowercase up", `{"status":"up"}`, http.StatusOK, models.StatusUp},
		{"down with 503", `{"status":"DOWN"}`, http.StatusServiceUnavailable, models.StatusDown},
		{"warning", `{"status":"WARNING"}`, http.StatusOK, models.StatusWarning},
		{"out of service maps to unknown", `{"status":"OUT_OF_SERVICE"}`, http.StatusOK, models.StatusUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/health", r.URL.Path)
				w.WriteHeader(tt.statusCode)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			p := NewProber(time.Second, logger.NewTestLogger())

			status, err := p.Health(context.Background(), testInstance(srv.URL))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, status)
		})
	}
}

func TestHealthTransportFailure(t *testing.T) {
	p := NewProber(500*time.Millisecond, logger.NewTestLogger())

	// Nothing listens on this port.
	_, err := p.Health(context.Background(), testInstance("http://127.0.0.1:1"))
	require.Error(t, err)

	var probeErr *Error
	require.ErrorAs(t, err, &probeErr)
	assert.Zero(t, probeErr.StatusCode)
}

func TestHealthNonJSONError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("oops"))
	}))
	defer srv.Close()

	p := NewProber(time.Second, logger.NewTestLogger())

	_, err := p.Health(context.Background(), testInstance(srv.URL))
	require.Error(t, err)

	var probeErr *Error
	require.ErrorAs(t, err, &probeErr)
	assert.Equal(t, http.StatusInternalServerError, probeErr.StatusCode)
}

func TestVersionFromBuildSection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/info", r.URL.Path)
		_, _ = w.Write([]byte(`{"build":{"version":"2.7.1","artifact":"orders"}}`))
	}))
	defer srv.Close()

	p := NewProber(time.Second, logger.NewTestLogger())

	version, err := p.Version(context.Background(), testInstance(srv.URL))
	require.NoError(t, err)
	assert.Equal(t, "2.7.1", version)
}

func TestVersionFallbacks(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected string
	}{
		{"app section", `{"app":{"version":"1.0.3"}}`, "1.0.3"},
		{"top level", `{"version":"0.9.0"}`, "0.9.0"},
		{"absent", `{"git":{"commit":"abc"}}`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			p := NewProber(time.Second, logger.NewTestLogger())

			version, err := p.Version(context.Background(), testInstance(srv.URL))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, version)
		})
	}
}

func TestMetricsMapsKnownKeys(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/metrics", r.URL.Path)
		_, _ = w.Write([]byte(`{
			"memory.used": 104857600,
			"memory.max": 536870912,
			"cpu.usage": 0.42,
			"errors": 3,
			"threads.live": 25
		}`))
	}))
	defer srv.Close()

	p := NewProber(time.Second, logger.NewTestLogger())

	sample, err := p.Metrics(context.Background(), testInstance(srv.URL))
	require.NoError(t, err)

	assert.Equal(t, int64(104857600), sample.MemoryUsed)
	assert.Equal(t, int64(536870912), sample.MemoryMax)
	assert.InDelta(t, 0.42, sample.CPUUsage, 0.0001)
	assert.Equal(t, int64(3), sample.ErrorCount)
	assert.False(t, sample.Timestamp.IsZero())

	require.Contains(t, sample.Extra, "threads.live")
	assert.Equal(t, float64(25), sample.Extra["threads.live"])
}

func TestLogsBareArray(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/logs", r.URL.Path)
		_, _ = w.Write([]byte(`[
			{"timestamp":"2025-06-01T12:00:00Z","level":"INFO","message":"started"},
			{"ts":1748779200000,"level":"ERROR","msg":"boom"}
		]`))
	}))
	defer srv.Close()

	p := NewProber(time.Second, logger.NewTestLogger())

	entries, err := p.Logs(context.Background(), testInstance(srv.URL))
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "INFO", entries[0].Level)
	assert.Equal(t, "started", entries[0].Message)
	assert.Equal(t, time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC), entries[0].Timestamp)

	assert.Equal(t, "ERROR", entries[1].Level)
	assert.Equal(t, "boom", entries[1].Message)
	assert.Equal(t, time.UnixMilli(1748779200000).UTC(), entries[1].Timestamp)
}

func TestLogsWrappedArray(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"logs":[{"timestamp":"2025-06-01T12:00:00Z","level":"WARN","message":"slow query"}]}`))
	}))
	defer srv.Close()

	p := NewProber(time.Second, logger.NewTestLogger())

	entries, err := p.Logs(context.Background(), testInstance(srv.URL))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "WARN", entries[0].Level)
}

func TestRestartRelaysPost(t *testing.T) {
	var gotMethod, gotPath string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	p := NewProber(time.Second, logger.NewTestLogger())

	require.NoError(t, p.Restart(context.Background(), testInstance(srv.URL)))
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/restart", gotPath)
}

func TestProbeTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(300 * time.Millisecond)
		_, _ = w.Write([]byte(`{"status":"UP"}`))
	}))
	defer srv.Close()

	p := NewProber(50*time.Millisecond, logger.NewTestLogger())

	_, err := p.Health(context.Background(), testInstance(srv.URL))
	require.Error(t, err)

	var probeErr *Error
	assert.True(t, errors.As(err, &probeErr))
}
