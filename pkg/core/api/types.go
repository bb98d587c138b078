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

package api

import (
	"context"
	"time"

	"github.com/carverauto/appradar/pkg/models"
)

// Registrar handles the direct registration channel. The core server
// implements it.
type Registrar interface {
	Register(ctx context.Context, req *models.RegistrationRequest) (*models.RegistrationResponse, error)
	Unregister(ctx context.Context, appID string) error
	Restart(ctx context.Context, id int64) error
}

// LevelBridge relays logger-level operations to a monitored instance.
type LevelBridge interface {
	ListLoggers(ctx context.Context, inst *models.Instance) map[string]models.LoggerLevels
	SetLoggerLevel(ctx context.Context, inst *models.Instance, name, level string) bool
}

// ServiceSummary is the list-view shape of a monitored instance.
type ServiceSummary struct {
	ID        int64                  `json:"id"`
	AppID     string                 `json:"app_id,omitempty"`
	Name      string                 `json:"name"`
	Namespace string                 `json:"namespace"`
	Version   string                 `json:"version,omitempty"`
	Source    models.DiscoverySource `json:"source"`
	Status    models.Status          `json:"status"`
	LastSeen  *time.Time             `json:"last_seen,omitempty"`
}

// ServiceDetail is the single-instance view: the full record plus its
// most recent metric sample when one exists.
type ServiceDetail struct {
	Instance     *models.Instance     `json:"instance"`
	LatestMetric *models.MetricSample `json:"latest_metric,omitempty"`
}

// SystemStatus summarizes the registry for dashboards.
type SystemStatus struct {
	TotalServices int                   `json:"total_services"`
	ByStatus      map[models.Status]int `json:"by_status"`
	Timestamp     time.Time             `json:"timestamp"`
}

// SetLevelRequest is the body of a logger-level update.
type SetLevelRequest struct {
	ConfiguredLevel string `json:"configuredLevel"`
}
