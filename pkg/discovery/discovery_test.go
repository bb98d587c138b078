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

package discovery

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes/fake"

	"github.com/carverauto/appradar/pkg/logger"
	"github.com/carverauto/appradar/pkg/models"
	"github.com/carverauto/appradar/pkg/registry"
)

var errUnreachable = errors.New("connection refused")

type stubProber struct {
	mu      sync.Mutex
	status  models.Status
	version string
	err     error
	probed  []string
}

func (s *stubProber) Health(_ context.Context, inst *models.Instance) (models.Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.probed = append(s.probed, inst.BaseURL)

	if s.err != nil {
		return models.StatusUnknown, s.err
	}

	return s.status, nil
}

func (s *stubProber) Version(context.Context, *models.Instance) (string, error) {
	if s.err != nil {
		return "", s.err
	}

	return s.version, nil
}

func testCoordinator(client PlatformClient, prober Prober, config models.DiscoveryConfig) (*Coordinator, *registry.InstanceRegistry) {
	reg := registry.NewInstanceRegistry(models.RetentionConfig{}, logger.NewTestLogger())
	coord := NewCoordinator(reg, prober, client, config, nil, logger.NewTestLogger())

	return coord, reg
}

func service(name, namespace string, labels, annotations, selector map[string]string) *corev1.Service {
	return &corev1.Service{
		ObjectMeta: metav1.ObjectMeta{
			Name:        name,
			Namespace:   namespace,
			Labels:      labels,
			Annotations: annotations,
		},
		Spec: corev1.ServiceSpec{Selector: selector},
	}
}

func pod(name, namespace, ip string, labels, annotations map[string]string) *corev1.Pod {
	return &corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{
			Name:        name,
			Namespace:   namespace,
			Labels:      labels,
			Annotations: annotations,
		},
		Status: corev1.PodStatus{PodIP: ip},
	}
}

func TestIsCandidate(t *testing.T) {
	coord, _ := testCoordinator(DisconnectedClient{}, &stubProber{}, models.DiscoveryConfig{
		LabelAllowlist: []string{"appradar.io/monitor"},
	})

	tests := []struct {
		name     string
		workload string
		labels   map[string]string
		expected bool
	}{
		{"allowlisted label", "opaque", map[string]string{"appradar.io/monitor": "true"}, true},
		{"spring in name", "springboard", nil, true},
		{"boot in name", "reboot-manager", nil, true},
		{"service suffix", "orders-service", nil, true},
		{"svc suffix", "orders-svc", nil, true},
		{"mixed case", "ORDERS-SERVICE", nil, true},
		{"plain name", "postgres", nil, false},
		{"unrelated label", "postgres", map[string]string{"app": "postgres"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, coord.isCandidate(tt.workload, tt.labels))
		})
	}
}

func TestManagementTarget(t *testing.T) {
	coord, _ := testCoordinator(DisconnectedClient{}, &stubProber{}, models.DiscoveryConfig{})

	t.Run("defaults", func(t *testing.T) {
		port, path := coord.managementTarget(nil)
		assert.Equal(t, models.DefaultMgmtPort, port)
		assert.Equal(t, models.DefaultMgmtPath, path)
	})

	t.Run("annotations override", func(t *testing.T) {
		port, path := coord.managementTarget(map[string]string{
			models.DefaultPortAnnotation: "9090",
			models.DefaultPathAnnotation: "/manage",
		})
		assert.Equal(t, 9090, port)
		assert.Equal(t, "/manage", path)
	})

	t.Run("invalid port falls back", func(t *testing.T) {
		port, _ := coord.managementTarget(map[string]string{models.DefaultPortAnnotation: "loud"})
		assert.Equal(t, models.DefaultMgmtPort, port)
	})

	t.Run("path gains leading slash", func(t *testing.T) {
		_, path := coord.managementTarget(map[string]string{models.DefaultPathAnnotation: "manage"})
		assert.Equal(t, "/manage", path)
	})
}

func TestRunCycleDiscoversService(t *testing.T) {
	clientset := fake.NewSimpleClientset(
		service("orders-service", "shop", nil, nil, map[string]string{"app": "orders"}),
		pod("orders-7d4b9", "shop", "10.1.2.3", map[string]string{"app": "orders"}, nil),
	)

	prober := &stubProber{status: models.StatusUp, version: "2.3.1"}

	coord, reg := testCoordinator(NewConnectedClient(clientset), prober, models.DiscoveryConfig{Enabled: true})
	coord.RunCycle(context.Background())

	all := reg.List()
	require.Len(t, all, 1, "the fronted pod must not produce a second record")

	inst := all[0]
	assert.Equal(t, "orders-service", inst.Name)
	assert.Equal(t, "shop", inst.Namespace)
	assert.Equal(t, models.SourcePlatform, inst.Source)
	assert.Equal(t, models.StatusUp, inst.Status)
	assert.Equal(t, "2.3.1", inst.Version)
	assert.Equal(t, "http://orders-service.shop.svc.cluster.local:8080/actuator", inst.BaseURL)
	require.NotNil(t, inst.Host)
	assert.Equal(t, "orders-service.shop.svc.cluster.local", *inst.Host)
	require.NotNil(t, inst.Port)
	assert.Equal(t, 8080, *inst.Port)
	assert.NotNil(t, inst.LastSeen, "successful discovery probe counts as contact")
}

func TestRunCycleUnreachableCandidateRecordedDown(t *testing.T) {
	clientset := fake.NewSimpleClientset(
		service("orders-service", "shop", nil, nil, map[string]string{"app": "orders"}),
	)

	prober := &stubProber{err: errUnreachable}

	coord, reg := testCoordinator(NewConnectedClient(clientset), prober, models.DiscoveryConfig{Enabled: true})
	coord.RunCycle(context.Background())

	all := reg.List()
	require.Len(t, all, 1, "unreachable candidates are recorded, not dropped")
	assert.Equal(t, models.StatusDown, all[0].Status)
	assert.Equal(t, "unknown", all[0].Version)
	assert.Nil(t, all[0].LastSeen)
}

func TestRunCycleAnnotationsDriveURL(t *testing.T) {
	annotations := map[string]string{
		models.DefaultPortAnnotation: "9443",
		models.DefaultPathAnnotation: "/internal/actuator",
	}

	clientset := fake.NewSimpleClientset(
		service("billing-svc", "shop", nil, annotations, nil),
	)

	prober := &stubProber{status: models.StatusUp}

	coord, reg := testCoordinator(NewConnectedClient(clientset), prober, models.DiscoveryConfig{Enabled: true})
	coord.RunCycle(context.Background())

	all := reg.List()
	require.Len(t, all, 1)
	assert.Equal(t, "http://billing-svc.shop.svc.cluster.local:9443/internal/actuator", all[0].BaseURL)
}

func TestRunCyclePodOnlyPass(t *testing.T) {
	clientset := fake.NewSimpleClientset(
		pod("spring-batch-runner", "jobs", "10.9.8.7", nil, nil),
	)

	prober := &stubProber{status: models.StatusUp}

	coord, reg := testCoordinator(NewConnectedClient(clientset), prober, models.DiscoveryConfig{Enabled: true})
	coord.RunCycle(context.Background())

	all := reg.List()
	require.Len(t, all, 1)
	assert.Equal(t, "spring-batch-runner", all[0].Name)
	assert.Equal(t, "http://10.9.8.7:8080/actuator", all[0].BaseURL)
}

func TestRunCycleSkipsPodWithoutIP(t *testing.T) {
	clientset := fake.NewSimpleClientset(
		pod("spring-batch-runner", "jobs", "", nil, nil),
	)

	coord, reg := testCoordinator(NewConnectedClient(clientset), &stubProber{status: models.StatusUp}, models.DiscoveryConfig{Enabled: true})
	coord.RunCycle(context.Background())

	assert.Empty(t, reg.List())
}

func TestRunCycleIgnoresNonCandidates(t *testing.T) {
	clientset := fake.NewSimpleClientset(
		service("postgres", "shop", nil, nil, nil),
		pod("redis-0", "shop", "10.0.0.5", nil, nil),
	)

	coord, reg := testCoordinator(NewConnectedClient(clientset), &stubProber{status: models.StatusUp}, models.DiscoveryConfig{Enabled: true})
	coord.RunCycle(context.Background())

	assert.Empty(t, reg.List())
}

func TestRunCycleRepeatedPassesUpdateInPlace(t *testing.T) {
	clientset := fake.NewSimpleClientset(
		service("orders-service", "shop", nil, nil, nil),
	)

	prober := &stubProber{status: models.StatusUp, version: "1.0.0"}

	coord, reg := testCoordinator(NewConnectedClient(clientset), prober, models.DiscoveryConfig{Enabled: true})

	coord.RunCycle(context.Background())
	coord.RunCycle(context.Background())

	all := reg.List()
	require.Len(t, all, 1)
	assert.Equal(t, int64(1), all[0].ID)
}

func TestDisconnectedClientYieldsNothing(t *testing.T) {
	coord, reg := testCoordinator(DisconnectedClient{}, &stubProber{status: models.StatusUp}, models.DiscoveryConfig{})
	coord.RunCycle(context.Background())

	assert.Empty(t, reg.List())
}
