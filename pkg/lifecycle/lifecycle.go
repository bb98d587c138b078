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

// Package lifecycle manages service startup and shutdown.
package lifecycle

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/carverauto/appradar/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

// Service is anything with a blocking Start and a graceful Stop.
type Service interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// ServerOptions bundles the services run under one process lifecycle.
type ServerOptions struct {
	Services []Service
	Logger   logger.Logger
}

// RunServer starts every service and blocks until SIGINT/SIGTERM or the
// first service failure, then stops them all.
func RunServer(ctx context.Context, opts *ServerOptions) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	for _, svc := range opts.Services {
		g.Go(func() error {
			return svc.Start(gctx)
		})
	}

	<-gctx.Done()

	if opts.Logger != nil {
		opts.Logger.Info().Msg("Shutting down")
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var stopErr error

	for _, svc := range opts.Services {
		if err := svc.Stop(stopCtx); err != nil {
			stopErr = errors.Join(stopErr, err)
		}
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	return stopErr
}
