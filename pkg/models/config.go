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

import (
	"fmt"
	"time"

	"github.com/carverauto/appradar/pkg/logger"
)

var (
	errListenAddrRequired       = fmt.Errorf("listen_addr is required")
	errDiscoveryIntervalInvalid = fmt.Errorf("discovery.interval must be positive when discovery is enabled")
	errHealthIntervalInvalid    = fmt.Errorf("health.interval must be positive")
	errHealthTimeoutInvalid     = fmt.Errorf("health.timeout must be positive")
	errDefaultMgmtPortInvalid   = fmt.Errorf("discovery.default_mgmt_port must be between 1 and 65535")
	errPollFallbackInvalid      = fmt.Errorf("stream.poll_fallback_interval must be positive when push is disabled")
	errRecentLogLimitInvalid    = fmt.Errorf("stream.recent_log_limit must be non-negative")
	errRetentionMaxAgeDaysNeg   = fmt.Errorf("retention.max_age_days must be non-negative")
	errRetentionMaxEntriesNeg   = fmt.Errorf("retention entry limits must be non-negative")
	errDownCutoffBelowInterval  = fmt.Errorf("health.down_cutoff must be at least health.interval")
)

// DiscoveryConfig controls the platform (Kubernetes) discovery producer.
type DiscoveryConfig struct {
	Enabled         bool     `json:"enabled"`
	Mandatory       bool     `json:"mandatory"`
	Interval        Duration `json:"interval"`
	Namespace       string   `json:"namespace,omitempty"`
	Kubeconfig      string   `json:"kubeconfig,omitempty"`
	DefaultMgmtPort int      `json:"default_mgmt_port"`
	DefaultMgmtPath string   `json:"default_mgmt_path"`
	PortAnnotation  string   `json:"port_annotation"`
	PathAnnotation  string   `json:"path_annotation"`
	LabelAllowlist  []string `json:"label_allowlist,omitempty"`
}

const (
	DefaultDiscoveryInterval = 60 * time.Second
	DefaultMgmtPort          = 8080
	DefaultMgmtPath          = "/actuator"
	DefaultPortAnnotation    = "appradar.io/management-port"
	DefaultPathAnnotation    = "appradar.io/management-path"
)

// WithDefaults fills unset discovery knobs.
func (d DiscoveryConfig) WithDefaults() DiscoveryConfig {
	if d.Interval <= 0 {
		d.Interval = Duration(DefaultDiscoveryInterval)
	}

	if d.DefaultMgmtPort == 0 {
		d.DefaultMgmtPort = DefaultMgmtPort
	}

	if d.DefaultMgmtPath == "" {
		d.DefaultMgmtPath = DefaultMgmtPath
	}

	if d.PortAnnotation == "" {
		d.PortAnnotation = DefaultPortAnnotation
	}

	if d.PathAnnotation == "" {
		d.PathAnnotation = DefaultPathAnnotation
	}

	return d
}

// HealthConfig controls the health check scheduler.
type HealthConfig struct {
	Interval Duration `json:"interval"`
	Timeout  Duration `json:"timeout"`
	// DownCutoff excludes instances that have been DOWN longer than this
	// from scheduled probing, leaving them to the discovery path.
	DownCutoff Duration `json:"down_cutoff"`
}

const (
	DefaultHealthInterval = 10 * time.Second
	DefaultProbeTimeout   = 5 * time.Second
	DefaultDownCutoff     = 24 * time.Hour
)

// WithDefaults fills unset health scheduler knobs.
func (h HealthConfig) WithDefaults() HealthConfig {
	if h.Interval <= 0 {
		h.Interval = Duration(DefaultHealthInterval)
	}

	if h.Timeout <= 0 {
		h.Timeout = Duration(DefaultProbeTimeout)
	}

	if h.DownCutoff <= 0 {
		h.DownCutoff = Duration(DefaultDownCutoff)
	}

	return h
}

// StreamConfig controls live log push to API subscribers.
type StreamConfig struct {
	Enabled              bool     `json:"enabled"`
	PollFallbackInterval Duration `json:"poll_fallback_interval,omitempty"`
	RecentLogLimit       int      `json:"recent_log_limit,omitempty"`
}

const DefaultRecentLogLimit = 100

// CORSConfig mirrors the CORS knobs exposed on the HTTP API.
type CORSConfig struct {
	AllowedOrigins   []string `json:"allowed_origins,omitempty"`
	AllowCredentials bool     `json:"allow_credentials,omitempty"`
}

// CoreConfig is the top-level configuration for the appradar core service.
type CoreConfig struct {
	ListenAddr string          `json:"listen_addr"`
	Discovery  DiscoveryConfig `json:"discovery"`
	Health     HealthConfig    `json:"health"`
	Retention  RetentionConfig `json:"retention"`
	Stream     StreamConfig    `json:"stream"`
	CORS       CORSConfig      `json:"cors,omitempty"`
	Logging    *logger.Config  `json:"logging,omitempty"`
}

func (c *CoreConfig) Validate() error {
	if c.ListenAddr == "" {
		return errListenAddrRequired
	}

	if c.Discovery.Enabled && c.Discovery.Interval < 0 {
		return errDiscoveryIntervalInvalid
	}

	if c.Discovery.DefaultMgmtPort < 0 || c.Discovery.DefaultMgmtPort > 65535 {
		return errDefaultMgmtPortInvalid
	}

	if c.Health.Interval < 0 {
		return errHealthIntervalInvalid
	}

	if c.Health.Timeout < 0 {
		return errHealthTimeoutInvalid
	}

	if c.Health.DownCutoff > 0 && c.Health.Interval > 0 && c.Health.DownCutoff < c.Health.Interval {
		return errDownCutoffBelowInterval
	}

	if !c.Stream.Enabled && c.Stream.PollFallbackInterval < 0 {
		return errPollFallbackInvalid
	}

	if c.Stream.RecentLogLimit < 0 {
		return errRecentLogLimitInvalid
	}

	if c.Retention.MaxAgeDays < 0 {
		return errRetentionMaxAgeDaysNeg
	}

	if c.Retention.MaxMetricEntries < 0 || c.Retention.MaxLogEntries < 0 {
		return errRetentionMaxEntriesNeg
	}

	return nil
}
