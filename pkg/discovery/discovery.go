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

// Package discovery scans the platform for running application instances
// and feeds them into the registry.
package discovery

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	corev1 "k8s.io/api/core/v1"
	klabels "k8s.io/apimachinery/pkg/labels"

	"github.com/carverauto/appradar/pkg/logger"
	"github.com/carverauto/appradar/pkg/models"
	"github.com/carverauto/appradar/pkg/registry"
)

// Prober is the slice of the endpoint prober the coordinator uses to
// qualify a discovered candidate.
type Prober interface {
	Health(ctx context.Context, inst *models.Instance) (models.Status, error)
	Version(ctx context.Context, inst *models.Instance) (string, error)
}

// Clock abstracts time-related operations.
type Clock interface {
	Now() time.Time
	Ticker(d time.Duration) Ticker
}

// Ticker abstracts the ticker behavior.
type Ticker interface {
	Chan() <-chan time.Time
	Stop()
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) Ticker(d time.Duration) Ticker {
	return &realTicker{t: time.NewTicker(d)}
}

type realTicker struct {
	t *time.Ticker
}

func (r *realTicker) Chan() <-chan time.Time { return r.t.C }
func (r *realTicker) Stop()                  { r.t.Stop() }

// nameHints mark a workload as an application candidate when no allowlist
// label matches.
var nameHints = []string{"spring", "boot"}

var nameSuffixes = []string{"-service", "-svc"}

// Coordinator runs periodic discovery cycles against the platform.
type Coordinator struct {
	registry  registry.Service
	prober    Prober
	client    PlatformClient
	config    models.DiscoveryConfig
	clock     Clock
	ticker    Ticker
	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
	logger    logger.Logger
}

// NewCoordinator creates a discovery coordinator. A nil clock uses real
// time.
func NewCoordinator(reg registry.Service, prober Prober, client PlatformClient, config models.DiscoveryConfig, clock Clock, log logger.Logger) *Coordinator {
	if clock == nil {
		clock = realClock{}
	}

	return &Coordinator{
		registry: reg,
		prober:   prober,
		client:   client,
		config:   config.WithDefaults(),
		clock:    clock,
		done:     make(chan struct{}),
		logger:   log,
	}
}

// Start implements the lifecycle.Service interface.
func (c *Coordinator) Start(ctx context.Context) error {
	interval := time.Duration(c.config.Interval)
	c.ticker = c.clock.Ticker(interval)

	defer c.ticker.Stop()

	c.logger.Info().Dur("interval", interval).Msg("Starting platform discovery")

	c.wg.Add(1)
	defer c.wg.Done()

	c.RunCycle(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.done:
			return nil
		case <-c.ticker.Chan():
			c.RunCycle(ctx)
		}
	}
}

// Stop implements the lifecycle.Service interface.
func (c *Coordinator) Stop(_ context.Context) error {
	c.closeOnce.Do(func() {
		close(c.done)
	})

	c.wg.Wait()

	return nil
}

// RunCycle performs one full discovery pass: a service sweep followed by a
// pod-only sweep for pods no processed service fronts. Individual
// candidate failures are logged and never abort the cycle.
func (c *Coordinator) RunCycle(ctx context.Context) {
	services, err := c.client.Services(ctx, c.config.Namespace)
	if err != nil {
		c.logger.Error().Err(err).Msg("Platform service listing failed")
		return
	}

	pods, err := c.client.Pods(ctx, c.config.Namespace)
	if err != nil {
		c.logger.Error().Err(err).Msg("Platform pod listing failed")
		return
	}

	covered := make(map[string]bool)

	for i := range services {
		svc := &services[i]

		if !c.isCandidate(svc.Name, svc.Labels) {
			continue
		}

		for _, pod := range matchPods(svc, pods) {
			covered[pod.Namespace+"/"+pod.Name] = true
		}

		c.processService(ctx, svc)
	}

	for i := range pods {
		pod := &pods[i]

		if covered[pod.Namespace+"/"+pod.Name] {
			continue
		}

		if !c.isCandidate(pod.Name, pod.Labels) {
			continue
		}

		c.processPod(ctx, pod)
	}
}

// isCandidate decides whether a workload looks like a monitorable
// application: either an allowlisted label is present, or the workload
// name carries one of the conventional hints.
func (c *Coordinator) isCandidate(name string, labels map[string]string) bool {
	for _, key := range c.config.LabelAllowlist {
		if _, ok := labels[key]; ok {
			return true
		}
	}

	lower := strings.ToLower(name)

	for _, hint := range nameHints {
		if strings.Contains(lower, hint) {
			return true
		}
	}

	for _, suffix := range nameSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}

	return false
}

// managementTarget resolves the management port and context path from the
// workload's annotations, falling back to the configured defaults.
func (c *Coordinator) managementTarget(annotations map[string]string) (port int, path string) {
	port = c.config.DefaultMgmtPort
	path = c.config.DefaultMgmtPath

	if raw, ok := annotations[c.config.PortAnnotation]; ok {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 65535 {
			port = parsed
		}
	}

	if raw, ok := annotations[c.config.PathAnnotation]; ok && raw != "" {
		if !strings.HasPrefix(raw, "/") {
			raw = "/" + raw
		}

		path = raw
	}

	return port, path
}

func matchPods(svc *corev1.Service, pods []corev1.Pod) []corev1.Pod {
	if len(svc.Spec.Selector) == 0 {
		return nil
	}

	selector := klabels.SelectorFromSet(svc.Spec.Selector)

	var matched []corev1.Pod

	for _, pod := range pods {
		if pod.Namespace == svc.Namespace && selector.Matches(klabels.Set(pod.Labels)) {
			matched = append(matched, pod)
		}
	}

	return matched
}

func (c *Coordinator) processService(ctx context.Context, svc *corev1.Service) {
	port, path := c.managementTarget(svc.Annotations)

	host := fmt.Sprintf("%s.%s.svc.cluster.local", svc.Name, svc.Namespace)
	baseURL := fmt.Sprintf("http://%s:%d%s", host, port, path)

	c.upsertCandidate(ctx, svc.Name, svc.Namespace, host, port, path, baseURL)
}

func (c *Coordinator) processPod(ctx context.Context, pod *corev1.Pod) {
	if pod.Status.PodIP == "" {
		c.logger.Debug().
			Str("pod", pod.Name).
			Str("namespace", pod.Namespace).
			Msg("Skipping pod without assigned IP")

		return
	}

	port, path := c.managementTarget(pod.Annotations)

	baseURL := fmt.Sprintf("http://%s:%d%s", pod.Status.PodIP, port, path)

	c.upsertCandidate(ctx, pod.Name, pod.Namespace, pod.Status.PodIP, port, path, baseURL)
}

// upsertCandidate probes the candidate and writes the outcome into the
// registry. An unreachable candidate is recorded as DOWN with an unknown
// version rather than dropped.
func (c *Coordinator) upsertCandidate(ctx context.Context, name, namespace, host string, port int, path, baseURL string) {
	inst := &models.Instance{
		Name:        name,
		Namespace:   namespace,
		Source:      models.SourcePlatform,
		BaseURL:     baseURL,
		Host:        &host,
		Port:        &port,
		ContextPath: path,
	}

	var contacted bool

	status, err := c.prober.Health(ctx, inst)
	if err != nil {
		c.logger.Debug().
			Err(err).
			Str("candidate", name).
			Str("namespace", namespace).
			Msg("Candidate health probe failed")

		inst.Status = models.StatusDown
		inst.Version = "unknown"
	} else {
		contacted = true
		inst.Status = status

		version, err := c.prober.Version(ctx, inst)
		if err != nil || version == "" {
			version = "unknown"
		}

		inst.Version = version
	}

	stored := c.registry.UpsertByIdentity(inst.Identity(), inst)

	if contacted {
		if err := c.registry.TouchLastSeen(stored.ID, c.clock.Now()); err != nil {
			c.logger.Debug().Err(err).Int64("id", stored.ID).Msg("Recording discovery contact failed")
		}
	}
}
