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

import "errors"

// ErrValidation is the base of every registration validation failure; the
// API layer maps anything wrapping it to a 400.
var ErrValidation = errors.New("invalid registration")

// RegistrationRequest is the body of a direct registration call. Field
// names are camelCase to match the conventions of the monitored clients
// that auto-register themselves.
type RegistrationRequest struct {
	Name          string `json:"name"`
	ActuatorURL   string `json:"actuatorUrl"`
	AppID         string `json:"appId,omitempty"`
	Version       string `json:"version,omitempty"`
	HealthPath    string `json:"healthPath,omitempty"`
	MetricsPath   string `json:"metricsPath,omitempty"`
	LogsPath      string `json:"logsPath,omitempty"`
	ConfigPath    string `json:"configPath,omitempty"`
	Host          string `json:"host,omitempty"`
	Port          int    `json:"port,omitempty"`
	ContextPath   string `json:"contextPath,omitempty"`
	AutoRegister  *bool  `json:"autoRegister,omitempty"`
	ProbeInterval int    `json:"probeIntervalSeconds,omitempty"`
}

// RegistrationResponse echoes the resolved identity back to the caller.
type RegistrationResponse struct {
	AppID   string `json:"appId"`
	ID      int64  `json:"id"`
	Created bool   `json:"created"`
}
