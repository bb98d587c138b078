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
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/carverauto/appradar/pkg/logger"
	"github.com/carverauto/appradar/pkg/models"
)

const subscriberBuffer = 64

// LogStreamMessage is one frame pushed to a websocket subscriber.
type LogStreamMessage struct {
	Type       string           `json:"type"` // "log", "fallback"
	InstanceID int64            `json:"instance_id,omitempty"`
	Entry      *models.LogEntry `json:"entry,omitempty"`

	// PollIntervalSeconds is set on "fallback" frames when push is
	// disabled, telling the client how often to poll instead.
	PollIntervalSeconds int `json:"poll_interval_seconds,omitempty"`
}

type subscriber struct {
	// instanceID zero subscribes to every instance.
	instanceID int64
	ch         chan LogStreamMessage
}

// LogHub fans newly appended log entries out to websocket subscribers.
// It implements registry.LogSink.
type LogHub struct {
	mu     sync.RWMutex
	subs   map[*subscriber]struct{}
	closed bool
	config models.StreamConfig
	logger logger.Logger
}

// NewLogHub creates an empty hub.
func NewLogHub(config models.StreamConfig, log logger.Logger) *LogHub {
	if config.RecentLogLimit <= 0 {
		config.RecentLogLimit = models.DefaultRecentLogLimit
	}

	return &LogHub{
		subs:   make(map[*subscriber]struct{}),
		config: config,
		logger: log,
	}
}

// PublishLog delivers one entry to every interested subscriber. A
// subscriber that cannot keep up has frames dropped rather than blocking
// the producer.
func (h *LogHub) PublishLog(instanceID int64, entry models.LogEntry) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.closed {
		return
	}

	msg := LogStreamMessage{Type: "log", InstanceID: instanceID, Entry: &entry}

	for sub := range h.subs {
		if sub.instanceID != 0 && sub.instanceID != instanceID {
			continue
		}

		select {
		case sub.ch <- msg:
		default:
			h.logger.Debug().Int64("instance_id", instanceID).Msg("Dropping log frame for slow subscriber")
		}
	}
}

func (h *LogHub) subscribe(instanceID int64) *subscriber {
	sub := &subscriber{
		instanceID: instanceID,
		ch:         make(chan LogStreamMessage, subscriberBuffer),
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		close(sub.ch)
		return sub
	}

	h.subs[sub] = struct{}{}

	return sub
}

func (h *LogHub) unsubscribe(sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.subs[sub]; ok {
		delete(h.subs, sub)
		close(sub.ch)
	}
}

// Close detaches every subscriber. Used on server shutdown.
func (h *LogHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}

	h.closed = true

	for sub := range h.subs {
		close(sub.ch)
	}

	h.subs = make(map[*subscriber]struct{})
}

// @Summary Stream service logs
// @Description Pushes newly collected log lines of one instance over a websocket
// @Tags Logs
// @Param id path int true "Service ID"
// @Router /api/services/{id}/logs/stream [get]
func (s *APIServer) streamServiceLogs(w http.ResponseWriter, r *http.Request) {
	inst, ok := s.instanceFromRequest(w, r)
	if !ok {
		return
	}

	s.serveLogStream(w, r, inst.ID)
}

// @Summary Stream all logs
// @Description Pushes newly collected log lines of every instance over a websocket
// @Tags Logs
// @Router /api/logs/stream [get]
func (s *APIServer) streamAllLogs(w http.ResponseWriter, r *http.Request) {
	s.serveLogStream(w, r, 0)
}

func (s *APIServer) serveLogStream(w http.ResponseWriter, r *http.Request, instanceID int64) {
	if !s.streamCfg.Enabled {
		// Push is off: answer with polling advice instead of upgrading.
		interval := time.Duration(s.streamCfg.PollFallbackInterval)
		if interval <= 0 {
			interval = 10 * time.Second
		}

		s.encodeJSONResponse(w, LogStreamMessage{
			Type:                "fallback",
			InstanceID:          instanceID,
			PollIntervalSeconds: int(interval.Seconds()),
		})

		return
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(_ *http.Request) bool {
			return true
		},
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("remote_addr", r.RemoteAddr).
			Msg("Failed to upgrade to WebSocket")

		return
	}

	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	go watchClientClose(conn, cancel)

	sub := s.hub.subscribe(instanceID)
	defer s.hub.unsubscribe(sub)

	// Replay the retained tail first so the client starts with context.
	if instanceID != 0 {
		s.replayRecent(conn, instanceID)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-sub.ch:
			if !ok {
				return
			}

			if err := conn.WriteJSON(msg); err != nil {
				s.logger.Debug().Err(err).Msg("WebSocket write failed, closing stream")
				return
			}
		}
	}
}

func (s *APIServer) replayRecent(conn *websocket.Conn, instanceID int64) {
	entries, err := s.registry.ListLogs(instanceID, s.hub.config.RecentLogLimit)
	if err != nil {
		return
	}

	// Entries come newest first; replay oldest first.
	for i := len(entries) - 1; i >= 0; i-- {
		entry := entries[i]

		msg := LogStreamMessage{Type: "log", InstanceID: instanceID, Entry: &entry}
		if err := conn.WriteJSON(msg); err != nil {
			return
		}
	}
}

// watchClientClose drains client frames so close frames are processed,
// canceling the stream context when the peer goes away.
func watchClientClose(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
