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

package probe

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/carverauto/appradar/pkg/models"
)

// Health probes the instance's health endpoint and returns the reported
// status. Health endpoints conventionally answer 503 with a DOWN body, so
// a non-2xx response with a parseable status payload is still a valid
// answer, not a probe failure.
func (p *Prober) Health(ctx context.Context, inst *models.Instance) (models.Status, error) {
	url := JoinURL(inst.BaseURL, inst.EffectiveHealthPath())

	body, statusCode, err := p.getRaw(ctx, url)
	if err != nil {
		return models.StatusUnknown, err
	}

	var payload struct {
		Status string `json:"status"`
	}

	if jsonErr := json.Unmarshal(body, &payload); jsonErr == nil && payload.Status != "" {
		return models.ParseStatus(payload.Status), nil
	}

	if statusCode < http.StatusOK || statusCode >= http.StatusMultipleChoices {
		return models.StatusUnknown, &Error{URL: url, StatusCode: statusCode}
	}

	return models.StatusUnknown, &Error{URL: url, Err: fmt.Errorf("health response carried no status")}
}

func (p *Prober) getRaw(ctx context.Context, url string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, &Error{URL: url, Err: err}
	}

	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, 0, &Error{URL: url, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, 0, &Error{URL: url, Err: fmt.Errorf("reading response: %w", err)}
	}

	return body, resp.StatusCode, nil
}

// Version probes the instance's info endpoint and extracts a version
// string. It accepts the common layouts: build.version, app.version, and
// a top-level version key. An info document without a version yields "".
func (p *Prober) Version(ctx context.Context, inst *models.Instance) (string, error) {
	url := JoinURL(inst.BaseURL, inst.EffectiveInfoPath())

	var payload map[string]interface{}
	if err := p.GetJSON(ctx, url, &payload); err != nil {
		return "", err
	}

	return extractVersion(payload), nil
}

func extractVersion(payload map[string]interface{}) string {
	for _, section := range []string{"build", "app"} {
		if nested, ok := payload[section].(map[string]interface{}); ok {
			if v, ok := nested["version"].(string); ok && v != "" {
				return v
			}
		}
	}

	if v, ok := payload["version"].(string); ok {
		return v
	}

	return ""
}

// Metrics probes the instance's metrics endpoint and maps the flat JSON
// document onto a sample. Well-known keys fill the typed fields under a
// couple of spelling variants; everything else lands in Extra.
func (p *Prober) Metrics(ctx context.Context, inst *models.Instance) (models.MetricSample, error) {
	url := JoinURL(inst.BaseURL, inst.EffectiveMetricsPath())

	var payload map[string]interface{}
	if err := p.GetJSON(ctx, url, &payload); err != nil {
		return models.MetricSample{}, err
	}

	sample := models.MetricSample{Timestamp: time.Now()}

	for key, value := range payload {
		switch key {
		case "memory.used", "mem.used", "memoryUsed":
			sample.MemoryUsed = asInt64(value)
		case "memory.max", "mem.max", "memoryMax":
			sample.MemoryMax = asInt64(value)
		case "cpu.usage", "cpuUsage", "systemload.average":
			sample.CPUUsage = asFloat64(value)
		case "errors", "error.count", "errorCount":
			sample.ErrorCount = asInt64(value)
		default:
			if sample.Extra == nil {
				sample.Extra = make(map[string]interface{})
			}

			sample.Extra[key] = value
		}
	}

	return sample, nil
}

func asInt64(v interface{}) int64 {
	switch n := v.(type) {
	case float64:
		return int64(n)
	case json.Number:
		i, _ := n.Int64()
		return i
	default:
		return 0
	}
}

func asFloat64(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case json.Number:
		f, _ := n.Float64()
		return f
	default:
		return 0
	}
}

type wireLogEntry struct {
	Timestamp *time.Time  `json:"timestamp"`
	Time      *time.Time  `json:"time"`
	Epoch     json.Number `json:"ts"`
	Level     string      `json:"level"`
	Message   string      `json:"message"`
	Msg       string      `json:"msg"`
}

func (w *wireLogEntry) toModel() models.LogEntry {
	entry := models.LogEntry{Level: w.Level, Message: w.Message}

	if entry.Message == "" {
		entry.Message = w.Msg
	}

	switch {
	case w.Timestamp != nil:
		entry.Timestamp = *w.Timestamp
	case w.Time != nil:
		entry.Timestamp = *w.Time
	case w.Epoch != "":
		if millis, err := w.Epoch.Int64(); err == nil {
			entry.Timestamp = time.UnixMilli(millis).UTC()
		}
	}

	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	return entry
}

// Logs probes the instance's log endpoint. Both a bare JSON array and a
// document with a top-level "logs" array are accepted.
func (p *Prober) Logs(ctx context.Context, inst *models.Instance) ([]models.LogEntry, error) {
	url := JoinURL(inst.BaseURL, inst.EffectiveLogsPath())

	body, statusCode, err := p.getRaw(ctx, url)
	if err != nil {
		return nil, err
	}

	if statusCode < http.StatusOK || statusCode >= http.StatusMultipleChoices {
		return nil, &Error{URL: url, StatusCode: statusCode}
	}

	var wire []wireLogEntry

	if err := json.Unmarshal(body, &wire); err != nil {
		var wrapped struct {
			Logs []wireLogEntry `json:"logs"`
		}

		if err := json.Unmarshal(body, &wrapped); err != nil {
			return nil, &Error{URL: url, Err: fmt.Errorf("decoding logs: %w", err)}
		}

		wire = wrapped.Logs
	}

	entries := make([]models.LogEntry, 0, len(wire))
	for i := range wire {
		entries = append(entries, wire[i].toModel())
	}

	return entries, nil
}

// Restart relays a restart request to the instance's restart endpoint.
func (p *Prober) Restart(ctx context.Context, inst *models.Instance) error {
	url := JoinURL(inst.BaseURL, inst.EffectiveRestartPath())

	return p.PostJSON(ctx, url, nil, nil)
}
