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

package models

import "time"

// MetricSample is one probed metrics observation for an instance.
// Samples are append-only and read newest-first.
type MetricSample struct {
	Timestamp  time.Time              `json:"timestamp"`
	MemoryUsed int64                  `json:"memory_used"`
	MemoryMax  int64                  `json:"memory_max"`
	CPUUsage   float64                `json:"cpu_usage"`
	ErrorCount int64                  `json:"error_count"`
	Extra      map[string]interface{} `json:"extra,omitempty"`
}

// RetentionConfig bounds per-instance metric and log history.
type RetentionConfig struct {
	MaxMetricEntries int `json:"max_metric_entries"`
	MaxLogEntries    int `json:"max_log_entries"`
	MaxAgeDays       int `json:"max_age_days"`
}

const (
	DefaultMaxMetricEntries = 1000
	DefaultMaxLogEntries    = 1000
	DefaultMaxAgeDays       = 7
)

// WithDefaults fills unset retention bounds.
func (r RetentionConfig) WithDefaults() RetentionConfig {
	if r.MaxMetricEntries <= 0 {
		r.MaxMetricEntries = DefaultMaxMetricEntries
	}

	if r.MaxLogEntries <= 0 {
		r.MaxLogEntries = DefaultMaxLogEntries
	}

	if r.MaxAgeDays <= 0 {
		r.MaxAgeDays = DefaultMaxAgeDays
	}

	return r
}
