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

// Package core assembles the instance registry, discovery, and health
// checking into one runnable service.
package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/carverauto/appradar/pkg/discovery"
	"github.com/carverauto/appradar/pkg/health"
	"github.com/carverauto/appradar/pkg/logger"
	"github.com/carverauto/appradar/pkg/loglevel"
	"github.com/carverauto/appradar/pkg/models"
	"github.com/carverauto/appradar/pkg/probe"
	"github.com/carverauto/appradar/pkg/registry"
)

// Server owns the monitoring core: the registry plus the two periodic
// producers that feed it.
type Server struct {
	config      *models.CoreConfig
	registry    *registry.InstanceRegistry
	prober      *probe.Prober
	bridge      *loglevel.Bridge
	checker     *health.Checker
	coordinator *discovery.Coordinator
	logger      logger.Logger
}

// NewServer wires the core from configuration. It fails only when the
// configuration is invalid or a mandatory platform is unreachable.
func NewServer(_ context.Context, config *models.CoreConfig, log logger.Logger) (*Server, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	reg := registry.NewInstanceRegistry(config.Retention, log)

	prober := probe.NewProber(time.Duration(config.Health.Timeout), log)

	client, err := discovery.NewPlatformClient(config.Discovery, log)
	if err != nil {
		return nil, err
	}

	s := &Server{
		config:   config,
		registry: reg,
		prober:   prober,
		bridge:   loglevel.NewBridge(prober, log),
		checker:  health.NewChecker(reg, prober, config.Health, nil, log),
		logger:   log,
	}

	if config.Discovery.Enabled {
		s.coordinator = discovery.NewCoordinator(reg, prober, client, config.Discovery, nil, log)
	}

	return s, nil
}

// Registry exposes the instance table to the API layer.
func (s *Server) Registry() registry.Service { return s.registry }

// SetLogSink attaches the live log push channel to the registry.
func (s *Server) SetLogSink(sink registry.LogSink) { s.registry.SetLogSink(sink) }

// Bridge exposes the logger-level relay to the API layer.
func (s *Server) Bridge() *loglevel.Bridge { return s.bridge }

// Start implements the lifecycle.Service interface. It runs the health
// checker and, when enabled, the discovery coordinator until the context
// ends or Stop is called.
func (s *Server) Start(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return s.checker.Start(gctx)
	})

	if s.coordinator != nil {
		g.Go(func() error {
			return s.coordinator.Start(gctx)
		})
	}

	return g.Wait()
}

// Stop implements the lifecycle.Service interface.
func (s *Server) Stop(ctx context.Context) error {
	var coordErr error
	if s.coordinator != nil {
		coordErr = s.coordinator.Stop(ctx)
	}

	return errors.Join(s.checker.Stop(ctx), coordErr)
}
