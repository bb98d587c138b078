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

// Package models defines the shared data model for AppRadar.
package models

import (
	"strings"
	"time"
)

// Status is the health state of a monitored instance.
type Status string

const (
	StatusUp      Status = "UP"
	StatusDown    Status = "DOWN"
	StatusWarning Status = "WARNING"
	StatusUnknown Status = "UNKNOWN"
)

// ParseStatus maps an upstream health string to a Status, case-insensitively.
// Anything outside the known set (including values like OUT_OF_SERVICE) maps
// to StatusUnknown rather than an empty status.
func ParseStatus(s string) Status {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "UP":
		return StatusUp
	case "DOWN":
		return StatusDown
	case "WARNING":
		return StatusWarning
	default:
		return StatusUnknown
	}
}

// DiscoverySource tags which producer created an instance record.
type DiscoverySource string

const (
	SourcePlatform DiscoverySource = "platform"
	SourceDirect   DiscoverySource = "direct"
)

// Identity is how an instance is deduplicated across discovery passes:
// either a stable operator-assigned AppID (direct registration) or a
// (Workload, Namespace) pair (platform discovery). AppID wins when present.
type Identity struct {
	AppID     string
	Workload  string
	Namespace string
}

// HasAppID reports whether the identity carries a stable appId.
func (i Identity) HasAppID() bool {
	return i.AppID != ""
}

const (
	// DefaultNamespace is used for instances that are not cluster-scoped.
	DefaultNamespace = "default"

	// DefaultProbeIntervalSeconds is the per-instance health check interval
	// applied when a registration does not specify one.
	DefaultProbeIntervalSeconds = 30
)

// Instance is one monitored running application process.
type Instance struct {
	ID            int64           `json:"id"`
	AppID         string          `json:"app_id,omitempty"`
	Name          string          `json:"name"`
	Namespace     string          `json:"namespace"`
	Version       string          `json:"version,omitempty"`
	Source        DiscoverySource `json:"source"`
	Status        Status          `json:"status"`
	BaseURL       string          `json:"base_url"`
	Host          *string         `json:"host,omitempty"`
	Port          *int            `json:"port,omitempty"`
	ContextPath   string          `json:"context_path,omitempty"`
	HealthPath    string          `json:"health_path,omitempty"`
	InfoPath      string          `json:"info_path,omitempty"`
	MetricsPath   string          `json:"metrics_path,omitempty"`
	LogsPath      string          `json:"logs_path,omitempty"`
	ConfigPath    string          `json:"config_path,omitempty"`
	LoggersPath   string          `json:"loggers_path,omitempty"`
	RestartPath   string          `json:"restart_path,omitempty"`
	LastUpdated   time.Time       `json:"last_updated"`
	LastSeen      *time.Time      `json:"last_seen,omitempty"`
	ProbeInterval int             `json:"probe_interval_seconds"`
	AutoRegister  bool            `json:"auto_register"`
}

// Default management sub-paths, relative to BaseURL. A registration may
// override any of them.
const (
	DefaultHealthPath  = "/health"
	DefaultInfoPath    = "/info"
	DefaultMetricsPath = "/metrics"
	DefaultLogsPath    = "/logs"
	DefaultConfigPath  = "/env"
	DefaultLoggersPath = "/loggers"
	DefaultRestartPath = "/restart"
)

func orDefault(path, def string) string {
	if path == "" {
		return def
	}

	return path
}

// EffectiveHealthPath returns the health sub-path, falling back to the
// default when the registration did not set one. The same applies to the
// other Effective*Path accessors.
func (in *Instance) EffectiveHealthPath() string { return orDefault(in.HealthPath, DefaultHealthPath) }
func (in *Instance) EffectiveInfoPath() string   { return orDefault(in.InfoPath, DefaultInfoPath) }
func (in *Instance) EffectiveMetricsPath() string {
	return orDefault(in.MetricsPath, DefaultMetricsPath)
}
func (in *Instance) EffectiveLogsPath() string   { return orDefault(in.LogsPath, DefaultLogsPath) }
func (in *Instance) EffectiveConfigPath() string { return orDefault(in.ConfigPath, DefaultConfigPath) }
func (in *Instance) EffectiveLoggersPath() string {
	return orDefault(in.LoggersPath, DefaultLoggersPath)
}
func (in *Instance) EffectiveRestartPath() string {
	return orDefault(in.RestartPath, DefaultRestartPath)
}

// Identity returns the deduplication key for the instance.
func (in *Instance) Identity() Identity {
	if in.AppID != "" {
		return Identity{AppID: in.AppID}
	}

	return Identity{Workload: in.Name, Namespace: in.Namespace}
}

// DeepCopy returns an independent copy of the instance so that registry
// snapshots cannot be mutated by callers.
func (in *Instance) DeepCopy() *Instance {
	out := *in

	if in.Host != nil {
		h := *in.Host
		out.Host = &h
	}

	if in.Port != nil {
		p := *in.Port
		out.Port = &p
	}

	if in.LastSeen != nil {
		t := *in.LastSeen
		out.LastSeen = &t
	}

	return &out
}
