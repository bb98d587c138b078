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
	"fmt"
	"net/url"
	"strconv"

	"github.com/google/uuid"

	"github.com/carverauto/appradar/pkg/models"
)

// Register handles a direct registration. An existing appId updates the
// record in place; a missing appId gets a generated UUID. New records
// start UNKNOWN until the first scheduled probe.
func (s *Server) Register(_ context.Context, req *models.RegistrationRequest) (*models.RegistrationResponse, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("%w: name is required", models.ErrValidation)
	}

	if req.ActuatorURL == "" {
		return nil, fmt.Errorf("%w: actuatorUrl is required", models.ErrValidation)
	}

	host, port, err := resolveEndpoint(req)
	if err != nil {
		return nil, err
	}

	appID := req.AppID
	created := true

	if appID == "" {
		appID = uuid.NewString()
	} else if _, err := s.registry.GetByAppID(appID); err == nil {
		created = false
	}

	autoRegister := true
	if req.AutoRegister != nil {
		autoRegister = *req.AutoRegister
	}

	inst := &models.Instance{
		AppID:         appID,
		Name:          req.Name,
		Version:       req.Version,
		Source:        models.SourceDirect,
		Status:        models.StatusUnknown,
		BaseURL:       req.ActuatorURL,
		Host:          &host,
		Port:          &port,
		ContextPath:   req.ContextPath,
		HealthPath:    req.HealthPath,
		MetricsPath:   req.MetricsPath,
		LogsPath:      req.LogsPath,
		ConfigPath:    req.ConfigPath,
		ProbeInterval: req.ProbeInterval,
		AutoRegister:  autoRegister,
	}

	stored := s.registry.UpsertByIdentity(inst.Identity(), inst)

	s.logger.Info().
		Str("app_id", appID).
		Str("name", req.Name).
		Bool("created", created).
		Msg("Direct registration processed")

	return &models.RegistrationResponse{
		AppID:   stored.AppID,
		ID:      stored.ID,
		Created: created,
	}, nil
}

// Unregister removes a directly registered instance and all its history.
func (s *Server) Unregister(_ context.Context, appID string) error {
	inst, err := s.registry.GetByAppID(appID)
	if err != nil {
		return err
	}

	return s.registry.Delete(inst.ID)
}

// Restart relays a restart request to the instance's own management
// endpoint. The outcome is reported to the caller but never alters the
// registry record; the next probe observes whatever happened.
func (s *Server) Restart(ctx context.Context, id int64) error {
	inst, err := s.registry.Get(id)
	if err != nil {
		return err
	}

	return s.prober.Restart(ctx, inst)
}

// resolveEndpoint fills host and port from the request, parsing them out
// of the probe URL when not given explicitly. Ports default by scheme.
func resolveEndpoint(req *models.RegistrationRequest) (host string, port int, err error) {
	parsed, err := url.Parse(req.ActuatorURL)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return "", 0, fmt.Errorf("%w: actuatorUrl is not a valid http(s) URL", models.ErrValidation)
	}

	host = req.Host
	if host == "" {
		host = parsed.Hostname()
	}

	port = req.Port
	if port == 0 {
		if raw := parsed.Port(); raw != "" {
			port, _ = strconv.Atoi(raw)
		} else if parsed.Scheme == "https" {
			port = 443
		} else {
			port = 80
		}
	}

	return host, port, nil
}
