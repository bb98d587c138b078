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

//go:generate mockgen -destination=mock_health.go -package=health github.com/carverauto/appradar/pkg/health Prober,Clock,Ticker

package health

import (
	"context"
	"time"

	"github.com/carverauto/appradar/pkg/models"
)

// Prober is the subset of the endpoint prober the scheduler needs.
type Prober interface {
	Health(ctx context.Context, inst *models.Instance) (models.Status, error)
	Version(ctx context.Context, inst *models.Instance) (string, error)
	Metrics(ctx context.Context, inst *models.Instance) (models.MetricSample, error)
	Logs(ctx context.Context, inst *models.Instance) ([]models.LogEntry, error)
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
