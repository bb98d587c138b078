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

// Package loglevel relays logger-level queries and updates to the
// management endpoints of monitored instances.
package loglevel

import (
	"context"
	"strings"

	"github.com/carverauto/appradar/pkg/logger"
	"github.com/carverauto/appradar/pkg/models"
	"github.com/carverauto/appradar/pkg/probe"
)

var validLevels = map[string]struct{}{
	"OFF":   {},
	"ERROR": {},
	"WARN":  {},
	"INFO":  {},
	"DEBUG": {},
	"TRACE": {},
}

// ValidLevel reports whether level (case-insensitive) is one of the
// accepted logger levels.
func ValidLevel(level string) bool {
	_, ok := validLevels[strings.ToUpper(strings.TrimSpace(level))]
	return ok
}

// Bridge relays logger-level operations to an instance. It holds no state
// of its own; every call is an on-demand round trip.
type Bridge struct {
	prober *probe.Prober
	logger logger.Logger
}

// NewBridge creates a logger-level bridge on top of the given prober.
func NewBridge(prober *probe.Prober, log logger.Logger) *Bridge {
	return &Bridge{prober: prober, logger: log}
}

type wireLogger struct {
	ConfiguredLevel string `json:"configuredLevel"`
	EffectiveLevel  string `json:"effectiveLevel"`
}

type loggersDocument struct {
	Loggers map[string]wireLogger `json:"loggers"`
}

// ListLoggers fetches the named loggers of an instance. Any transport or
// parse failure yields nil; the caller treats that as "no logger data".
func (b *Bridge) ListLoggers(ctx context.Context, inst *models.Instance) map[string]models.LoggerLevels {
	url := probe.JoinURL(inst.BaseURL, inst.EffectiveLoggersPath())

	var doc loggersDocument
	if err := b.prober.GetJSON(ctx, url, &doc); err != nil {
		b.logger.Debug().
			Err(err).
			Str("instance", inst.Name).
			Msg("Listing instance loggers failed")

		return nil
	}

	if doc.Loggers == nil {
		return nil
	}

	out := make(map[string]models.LoggerLevels, len(doc.Loggers))
	for name, lg := range doc.Loggers {
		out[name] = models.LoggerLevels{
			ConfiguredLevel: lg.ConfiguredLevel,
			EffectiveLevel:  lg.EffectiveLevel,
		}
	}

	return out
}

// SetLoggerLevel asks the instance to reconfigure one named logger. It
// returns false when the level is invalid or the instance did not accept
// the update.
func (b *Bridge) SetLoggerLevel(ctx context.Context, inst *models.Instance, name, level string) bool {
	if name == "" || !ValidLevel(level) {
		return false
	}

	url := probe.JoinURL(inst.BaseURL, probe.JoinURL(inst.EffectiveLoggersPath(), name))
	payload := map[string]string{"configuredLevel": strings.ToUpper(strings.TrimSpace(level))}

	if err := b.prober.PostJSON(ctx, url, payload, nil); err != nil {
		b.logger.Warn().
			Err(err).
			Str("instance", inst.Name).
			Str("logger", name).
			Str("level", level).
			Msg("Setting instance logger level failed")

		return false
	}

	return true
}
