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

//go:generate mockgen -destination=mock_registry.go -package=registry github.com/carverauto/appradar/pkg/registry Service

package registry

import (
	"time"

	"github.com/carverauto/appradar/pkg/models"
)

// Service is the canonical instance table plus bounded per-instance
// metric, log, and config-property history.
type Service interface {
	UpsertByIdentity(identity models.Identity, data *models.Instance) *models.Instance
	Get(id int64) (*models.Instance, error)
	GetByAppID(appID string) (*models.Instance, error)
	GetByWorkload(name, namespace string) (*models.Instance, error)
	List() []*models.Instance
	Delete(id int64) error

	SetStatus(id int64, status models.Status) error
	TouchLastSeen(id int64, t time.Time) error
	ApplyProbeResult(id int64, prior time.Time, update ProbeUpdate) (bool, error)

	AppendMetric(id int64, sample models.MetricSample) error
	ListMetrics(id int64, limit int) ([]models.MetricSample, error)
	AppendLog(id int64, entry models.LogEntry) error
	ListLogs(id int64, limit int) ([]models.LogEntry, error)
	LatestLogTime(id int64) (time.Time, error)

	UpsertConfigProperty(id int64, prop models.ConfigProperty) error
	ListConfigProperties(id int64) ([]models.ConfigProperty, error)
	DeleteConfigProperty(id int64, key string) error
}

// ProbeUpdate is the outcome of one health probe, applied to a record via
// check-and-set on LastUpdated.
type ProbeUpdate struct {
	Status  models.Status
	Version string
	// Seen is set only for successful contact; a failed probe leaves the
	// previous LastSeen untouched.
	Seen *time.Time
}

// LogSink receives every newly appended log entry. The API server's
// websocket hub implements this.
type LogSink interface {
	PublishLog(instanceID int64, entry models.LogEntry)
}

// Clock abstracts time.Now for tests.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }
