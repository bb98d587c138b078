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

// Package health runs the scheduled probing of registered instances.
package health

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/carverauto/appradar/pkg/logger"
	"github.com/carverauto/appradar/pkg/models"
	"github.com/carverauto/appradar/pkg/registry"
)

const maxConcurrentProbes = 16

// Checker probes due instances on a fixed tick and writes the results
// back through the registry's check-and-set path.
type Checker struct {
	registry  registry.Service
	prober    Prober
	config    models.HealthConfig
	clock     Clock
	ticker    Ticker
	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
	logger    logger.Logger
}

// NewChecker creates a health checker. A nil clock uses real time.
func NewChecker(reg registry.Service, prober Prober, config models.HealthConfig, clock Clock, log logger.Logger) *Checker {
	if clock == nil {
		clock = realClock{}
	}

	return &Checker{
		registry: reg,
		prober:   prober,
		config:   config.WithDefaults(),
		clock:    clock,
		done:     make(chan struct{}),
		logger:   log,
	}
}

// Start implements the lifecycle.Service interface.
func (c *Checker) Start(ctx context.Context) error {
	interval := time.Duration(c.config.Interval)
	c.ticker = c.clock.Ticker(interval)

	defer c.ticker.Stop()

	c.logger.Info().Dur("interval", interval).Msg("Starting health checker")

	c.wg.Add(1)
	defer c.wg.Done()

	c.checkAll(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.done:
			return nil
		case <-c.ticker.Chan():
			c.checkAll(ctx)
		}
	}
}

// Stop implements the lifecycle.Service interface.
func (c *Checker) Stop(_ context.Context) error {
	c.closeOnce.Do(func() {
		close(c.done)
	})

	c.wg.Wait()

	return nil
}

// checkAll probes every due instance concurrently and waits for the full
// sweep before returning.
func (c *Checker) checkAll(ctx context.Context) {
	now := c.clock.Now()

	var due []*models.Instance

	for _, inst := range c.registry.List() {
		if c.isDue(inst, now) {
			due = append(due, inst)
		}
	}

	if len(due) == 0 {
		return
	}

	c.logger.Debug().Int("instances", len(due)).Msg("Running health sweep")

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentProbes)

	for _, inst := range due {
		g.Go(func() error {
			c.checkInstance(gctx, inst)
			return nil
		})
	}

	_ = g.Wait()
}

// isDue applies the scheduling rule: never-contacted instances are always
// due; otherwise an instance is due once its own probe interval has
// elapsed since the last successful contact. Instances that have been
// DOWN past the cutoff are left to the discovery path.
func (c *Checker) isDue(inst *models.Instance, now time.Time) bool {
	if inst.LastSeen == nil {
		return true
	}

	if inst.Status == models.StatusDown {
		cutoff := now.Add(-time.Duration(c.config.DownCutoff))
		if inst.LastSeen.Before(cutoff) {
			return false
		}
	}

	interval := time.Duration(inst.ProbeInterval) * time.Second
	if interval <= 0 {
		interval = time.Duration(models.DefaultProbeIntervalSeconds) * time.Second
	}

	return !now.Before(inst.LastSeen.Add(interval))
}

func (c *Checker) checkInstance(ctx context.Context, inst *models.Instance) {
	probeCtx, cancel := context.WithTimeout(ctx, time.Duration(c.config.Timeout))
	defer cancel()

	prior := inst.LastUpdated

	status, err := c.prober.Health(probeCtx, inst)
	if err != nil {
		c.logger.Debug().
			Err(err).
			Str("instance", inst.Name).
			Str("namespace", inst.Namespace).
			Msg("Health probe failed")

		// Failure flips the record DOWN but does not count as contact.
		c.applyResult(inst, prior, registry.ProbeUpdate{Status: models.StatusDown})

		return
	}

	version, err := c.prober.Version(probeCtx, inst)
	if err != nil {
		// Info is best effort; the health answer alone is a contact.
		version = ""
	}

	seen := c.clock.Now()

	applied := c.applyResult(inst, prior, registry.ProbeUpdate{
		Status:  status,
		Version: version,
		Seen:    &seen,
	})
	if !applied {
		return
	}

	if status == models.StatusUp {
		c.collectMetrics(probeCtx, inst)
		c.collectLogs(probeCtx, inst)
	}
}

func (c *Checker) applyResult(inst *models.Instance, prior time.Time, update registry.ProbeUpdate) bool {
	applied, err := c.registry.ApplyProbeResult(inst.ID, prior, update)
	if err != nil {
		// The instance was deleted mid-probe.
		c.logger.Debug().
			Err(err).
			Int64("id", inst.ID).
			Msg("Discarding probe result for missing instance")

		return false
	}

	return applied
}

func (c *Checker) collectMetrics(ctx context.Context, inst *models.Instance) {
	sample, err := c.prober.Metrics(ctx, inst)
	if err != nil {
		c.logger.Debug().Err(err).Str("instance", inst.Name).Msg("Metrics probe failed")
		return
	}

	if err := c.registry.AppendMetric(inst.ID, sample); err != nil {
		c.logger.Debug().Err(err).Int64("id", inst.ID).Msg("Appending metric sample failed")
	}
}

// collectLogs fetches the instance's recent log lines and appends only
// those newer than the newest already retained, so re-probing does not
// duplicate history.
func (c *Checker) collectLogs(ctx context.Context, inst *models.Instance) {
	entries, err := c.prober.Logs(ctx, inst)
	if err != nil {
		c.logger.Debug().Err(err).Str("instance", inst.Name).Msg("Log probe failed")
		return
	}

	latest, err := c.registry.LatestLogTime(inst.ID)
	if err != nil {
		return
	}

	for _, entry := range entries {
		if !entry.Timestamp.After(latest) {
			continue
		}

		if err := c.registry.AppendLog(inst.ID, entry); err != nil {
			c.logger.Debug().Err(err).Int64("id", inst.ID).Msg("Appending log entry failed")
			return
		}
	}
}
