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

// PropertyType is the declared type of a config property value.
type PropertyType string

const (
	PropertyString  PropertyType = "string"
	PropertyNumber  PropertyType = "number"
	PropertyBoolean PropertyType = "boolean"
	PropertyArray   PropertyType = "array"
	PropertyMap     PropertyType = "map"
	PropertyJSON    PropertyType = "json"
	PropertyYAML    PropertyType = "yaml"
)

// ConfigProperty is one mutable configuration entry attached to an instance.
type ConfigProperty struct {
	Key         string       `json:"key"`
	Value       string       `json:"value"`
	Type        PropertyType `json:"type"`
	Source      string       `json:"source,omitempty"`
	Active      bool         `json:"active"`
	LastUpdated time.Time    `json:"last_updated"`
}
