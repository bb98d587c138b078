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

// Package probe implements the HTTP prober that talks to the management
// endpoints of monitored instances.
package probe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/carverauto/appradar/pkg/logger"
)

const (
	defaultTimeout = 5 * time.Second

	// Probe responses are small JSON documents; anything larger than this
	// is truncated rather than buffered.
	maxResponseBytes = 4 << 20
)

// Error is a typed probe failure. StatusCode is zero for transport
// failures and the upstream HTTP status for non-2xx responses.
type Error struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("probe %s: unexpected status %d", e.URL, e.StatusCode)
	}

	return fmt.Sprintf("probe %s: %v", e.URL, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Prober issues bounded HTTP requests against instance management
// endpoints. It is stateless and safe for concurrent use.
type Prober struct {
	client *http.Client
	logger logger.Logger
}

// NewProber creates a prober whose requests time out after timeout.
// A non-positive timeout falls back to 5s.
func NewProber(timeout time.Duration, log logger.Logger) *Prober {
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Prober{
		client: &http.Client{Timeout: timeout},
		logger: log,
	}
}

// JoinURL appends sub to base, normalizing the slash between them.
func JoinURL(base, sub string) string {
	if sub == "" {
		return base
	}

	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(sub, "/")
}

// GetJSON fetches url and decodes the body into out. A nil out discards
// the body after checking the status.
func (p *Prober) GetJSON(ctx context.Context, url string, out interface{}) error {
	body, err := p.do(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	if out == nil {
		return nil
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &Error{URL: url, Err: fmt.Errorf("decoding response: %w", err)}
	}

	return nil
}

// PostJSON posts payload (JSON-encoded, nil for an empty body) to url and
// decodes the response into out when out is non-nil.
func (p *Prober) PostJSON(ctx context.Context, url string, payload, out interface{}) error {
	var reqBody []byte

	if payload != nil {
		var err error

		reqBody, err = json.Marshal(payload)
		if err != nil {
			return &Error{URL: url, Err: fmt.Errorf("encoding request: %w", err)}
		}
	}

	body, err := p.do(ctx, http.MethodPost, url, reqBody)
	if err != nil {
		return err
	}

	if out == nil {
		return nil
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &Error{URL: url, Err: fmt.Errorf("decoding response: %w", err)}
	}

	return nil
}

func (p *Prober) do(ctx context.Context, method, url string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, &Error{URL: url, Err: err}
	}

	req.Header.Set("Accept", "application/json")

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := p.client.Do(req)
	if err != nil {
		if p.logger != nil {
			p.logger.Debug().Str("url", url).Err(err).Msg("Probe request failed")
		}

		return nil, &Error{URL: url, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &Error{URL: url, Err: fmt.Errorf("reading response: %w", err)}
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &Error{URL: url, StatusCode: resp.StatusCode}
	}

	return data, nil
}
