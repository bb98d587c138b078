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

package app

import (
	"context"

	"github.com/carverauto/appradar/pkg/config"
	"github.com/carverauto/appradar/pkg/core"
	"github.com/carverauto/appradar/pkg/core/api"
	"github.com/carverauto/appradar/pkg/lifecycle"
	"github.com/carverauto/appradar/pkg/models"
)

// Options contains runtime configuration derived from CLI flags.
type Options struct {
	ConfigPath string
}

// Run boots the core service using the provided options.
func Run(ctx context.Context, opts Options) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var cfg models.CoreConfig

	if err := config.NewConfig(nil).LoadAndValidate(ctx, opts.ConfigPath, &cfg); err != nil {
		return err
	}

	mainLogger, err := lifecycle.CreateComponentLogger(ctx, "core-main", cfg.Logging)
	if err != nil {
		return err
	}

	defer func() {
		if shutdownErr := lifecycle.ShutdownLogger(); shutdownErr != nil {
			mainLogger.Error().Err(shutdownErr).Msg("Error shutting down logger")
		}
	}()

	server, err := core.NewServer(ctx, &cfg, mainLogger)
	if err != nil {
		return err
	}

	apiServer := api.NewAPIServer(cfg.CORS,
		api.WithListenAddr(cfg.ListenAddr),
		api.WithRegistry(server.Registry()),
		api.WithRegistrar(server),
		api.WithLevelBridge(server.Bridge()),
		api.WithStreamConfig(cfg.Stream),
		api.WithLogger(mainLogger),
	)

	// Log entries appended by the health collector are pushed straight
	// to websocket subscribers.
	server.SetLogSink(apiServer.Hub())

	mainLogger.Info().
		Str("listen_addr", cfg.ListenAddr).
		Bool("discovery_enabled", cfg.Discovery.Enabled).
		Msg("Starting AppRadar core")

	return lifecycle.RunServer(ctx, &lifecycle.ServerOptions{
		Services: []lifecycle.Service{server, apiServer},
		Logger:   mainLogger,
	})
}
