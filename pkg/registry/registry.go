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

// Package registry maintains the canonical table of monitored instances.
package registry

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/carverauto/appradar/pkg/logger"
	"github.com/carverauto/appradar/pkg/models"
)

var (
	ErrInstanceNotFound = errors.New("instance not found")
	ErrPropertyNotFound = errors.New("config property not found")
)

type workloadKey struct {
	name      string
	namespace string
}

// InstanceRegistry is the in-memory implementation of Service: an arena of
// instance records with stable numeric handles plus secondary indices by
// appId and by (workload, namespace). All updates are whole-record
// replacements under one lock, so per-identity upserts are atomic.
type InstanceRegistry struct {
	mu         sync.RWMutex
	nextID     int64
	instances  map[int64]*models.Instance
	byAppID    map[string]int64
	byWorkload map[workloadKey]int64
	metrics    map[int64]*ring[models.MetricSample]
	logs       map[int64]*ring[models.LogEntry]
	props      map[int64]map[string]*models.ConfigProperty
	retention  models.RetentionConfig
	clock      Clock
	logger     logger.Logger
	sink       LogSink
}

var _ Service = (*InstanceRegistry)(nil)

// Option customizes a new InstanceRegistry.
type Option func(*InstanceRegistry)

// WithClock injects a clock, used by tests to control retention cutoffs.
func WithClock(c Clock) Option {
	return func(r *InstanceRegistry) {
		r.clock = c
	}
}

// NewInstanceRegistry creates an empty registry with the given retention
// bounds.
func NewInstanceRegistry(retention models.RetentionConfig, log logger.Logger, opts ...Option) *InstanceRegistry {
	r := &InstanceRegistry{
		instances:  make(map[int64]*models.Instance),
		byAppID:    make(map[string]int64),
		byWorkload: make(map[workloadKey]int64),
		metrics:    make(map[int64]*ring[models.MetricSample]),
		logs:       make(map[int64]*ring[models.LogEntry]),
		props:      make(map[int64]map[string]*models.ConfigProperty),
		retention:  retention.WithDefaults(),
		clock:      realClock{},
		logger:     log,
	}

	for _, o := range opts {
		o(r)
	}

	return r
}

// SetLogSink wires the live log push channel. Entries appended after this
// call are forwarded to the sink.
func (r *InstanceRegistry) SetLogSink(sink LogSink) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sink = sink
}

// UpsertByIdentity merges data into the record with the same identity, or
// creates a new record with a fresh handle. Mutable fields are replaced
// and LastUpdated is bumped; LastSeen is preserved.
func (r *InstanceRegistry) UpsertByIdentity(identity models.Identity, data *models.Instance) *models.Instance {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.clock.Now()

	existing := r.lookupLocked(identity)
	if existing == nil {
		return r.createLocked(identity, data, now)
	}

	r.mergeLocked(existing, data, now)

	return existing.DeepCopy()
}

func (r *InstanceRegistry) lookupLocked(identity models.Identity) *models.Instance {
	if identity.HasAppID() {
		if id, ok := r.byAppID[identity.AppID]; ok {
			return r.instances[id]
		}

		return nil
	}

	if id, ok := r.byWorkload[workloadKey{identity.Workload, identity.Namespace}]; ok {
		return r.instances[id]
	}

	return nil
}

func (r *InstanceRegistry) createLocked(identity models.Identity, data *models.Instance, now time.Time) *models.Instance {
	r.nextID++

	inst := data.DeepCopy()
	inst.ID = r.nextID
	inst.LastUpdated = now

	if inst.Namespace == "" {
		inst.Namespace = models.DefaultNamespace
	}

	if inst.Status == "" {
		inst.Status = models.StatusUnknown
	}

	if inst.ProbeInterval <= 0 {
		inst.ProbeInterval = models.DefaultProbeIntervalSeconds
	}

	if identity.HasAppID() {
		inst.AppID = identity.AppID
	}

	r.instances[inst.ID] = inst
	r.indexLocked(inst)

	// Metric and log collections are created empty alongside the record.
	r.metrics[inst.ID] = newRing(r.retention.MaxMetricEntries, sampleTime)
	r.logs[inst.ID] = newRing(r.retention.MaxLogEntries, entryTime)
	r.props[inst.ID] = make(map[string]*models.ConfigProperty)

	if r.logger != nil {
		r.logger.Info().
			Int64("id", inst.ID).
			Str("name", inst.Name).
			Str("namespace", inst.Namespace).
			Str("source", string(inst.Source)).
			Msg("Registered new instance")
	}

	return inst.DeepCopy()
}

func (r *InstanceRegistry) mergeLocked(existing, data *models.Instance, now time.Time) {
	r.unindexLocked(existing)

	existing.Name = data.Name
	existing.Version = data.Version
	existing.Source = data.Source
	existing.BaseURL = data.BaseURL
	existing.ContextPath = data.ContextPath
	existing.HealthPath = data.HealthPath
	existing.InfoPath = data.InfoPath
	existing.MetricsPath = data.MetricsPath
	existing.LogsPath = data.LogsPath
	existing.ConfigPath = data.ConfigPath
	existing.LoggersPath = data.LoggersPath
	existing.RestartPath = data.RestartPath
	existing.AutoRegister = data.AutoRegister
	existing.LastUpdated = now

	if data.Namespace != "" {
		existing.Namespace = data.Namespace
	}

	if data.Status != "" {
		existing.Status = data.Status
	}

	if data.Host != nil {
		h := *data.Host
		existing.Host = &h
	}

	if data.Port != nil {
		p := *data.Port
		existing.Port = &p
	}

	if data.ProbeInterval > 0 {
		existing.ProbeInterval = data.ProbeInterval
	}

	if data.AppID != "" {
		existing.AppID = data.AppID
	}

	r.indexLocked(existing)
}

func (r *InstanceRegistry) indexLocked(inst *models.Instance) {
	if inst.AppID != "" {
		r.byAppID[inst.AppID] = inst.ID
	}

	// The workload slot stays with its first owner so a later record that
	// happens to share the name does not hijack workload lookups.
	key := workloadKey{inst.Name, inst.Namespace}
	if owner, ok := r.byWorkload[key]; !ok || owner == inst.ID {
		r.byWorkload[key] = inst.ID
	}
}

func (r *InstanceRegistry) unindexLocked(inst *models.Instance) {
	if inst.AppID != "" {
		delete(r.byAppID, inst.AppID)
	}

	key := workloadKey{inst.Name, inst.Namespace}
	if owner, ok := r.byWorkload[key]; ok && owner == inst.ID {
		delete(r.byWorkload, key)
	}
}

// Get returns a copy of the instance with the given handle.
func (r *InstanceRegistry) Get(id int64) (*models.Instance, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	inst, ok := r.instances[id]
	if !ok {
		return nil, ErrInstanceNotFound
	}

	return inst.DeepCopy(), nil
}

// GetByAppID returns the instance registered under the given appId.
func (r *InstanceRegistry) GetByAppID(appID string) (*models.Instance, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byAppID[appID]
	if !ok {
		return nil, ErrInstanceNotFound
	}

	return r.instances[id].DeepCopy(), nil
}

// GetByWorkload returns the instance discovered for the given workload.
func (r *InstanceRegistry) GetByWorkload(name, namespace string) (*models.Instance, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if namespace == "" {
		namespace = models.DefaultNamespace
	}

	id, ok := r.byWorkload[workloadKey{name, namespace}]
	if !ok {
		return nil, ErrInstanceNotFound
	}

	return r.instances[id].DeepCopy(), nil
}

// List returns copies of all records, ordered by handle.
func (r *InstanceRegistry) List() []*models.Instance {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*models.Instance, 0, len(r.instances))
	for _, inst := range r.instances {
		out = append(out, inst.DeepCopy())
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out
}

// Delete removes the record and cascades to its metrics, logs, and config
// properties.
func (r *InstanceRegistry) Delete(id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	inst, ok := r.instances[id]
	if !ok {
		return ErrInstanceNotFound
	}

	r.unindexLocked(inst)
	delete(r.instances, id)
	delete(r.metrics, id)
	delete(r.logs, id)
	delete(r.props, id)

	if r.logger != nil {
		r.logger.Info().Int64("id", id).Str("name", inst.Name).Msg("Deleted instance")
	}

	return nil
}

// SetStatus updates only the status, bumping LastUpdated.
func (r *InstanceRegistry) SetStatus(id int64, status models.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	inst, ok := r.instances[id]
	if !ok {
		return ErrInstanceNotFound
	}

	inst.Status = status
	inst.LastUpdated = r.clock.Now()

	return nil
}

// TouchLastSeen records a successful contact at t.
func (r *InstanceRegistry) TouchLastSeen(id int64, t time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	inst, ok := r.instances[id]
	if !ok {
		return ErrInstanceNotFound
	}

	inst.LastSeen = &t
	inst.LastUpdated = r.clock.Now()

	return nil
}

// ApplyProbeResult writes a probe outcome only if the record has not been
// updated since the probe began (prior). A stale result is dropped and
// reported as applied=false, which is not an error.
func (r *InstanceRegistry) ApplyProbeResult(id int64, prior time.Time, update ProbeUpdate) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	inst, ok := r.instances[id]
	if !ok {
		return false, ErrInstanceNotFound
	}

	if inst.LastUpdated.After(prior) {
		if r.logger != nil {
			r.logger.Debug().
				Int64("id", id).
				Time("record_updated", inst.LastUpdated).
				Time("probe_started", prior).
				Msg("Dropping stale probe result")
		}

		return false, nil
	}

	inst.Status = update.Status

	if update.Version != "" {
		inst.Version = update.Version
	}

	if update.Seen != nil {
		t := *update.Seen
		inst.LastSeen = &t
	}

	inst.LastUpdated = r.clock.Now()

	return true, nil
}

func sampleTime(s models.MetricSample) time.Time { return s.Timestamp }
func entryTime(e models.LogEntry) time.Time      { return e.Timestamp }

func (r *InstanceRegistry) ageCutoff(now time.Time) time.Time {
	return now.AddDate(0, 0, -r.retention.MaxAgeDays)
}

// AppendMetric appends a sample and applies retention.
func (r *InstanceRegistry) AppendMetric(id int64, sample models.MetricSample) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	buf, ok := r.metrics[id]
	if !ok {
		return ErrInstanceNotFound
	}

	buf.Append(sample)
	buf.TrimOlderThan(r.ageCutoff(r.clock.Now()))

	return nil
}

// ListMetrics returns at most limit samples, newest first.
func (r *InstanceRegistry) ListMetrics(id int64, limit int) ([]models.MetricSample, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	buf, ok := r.metrics[id]
	if !ok {
		return nil, ErrInstanceNotFound
	}

	return buf.Snapshot(limit), nil
}

// AppendLog appends a log entry, applies retention, and pushes the entry
// to the live sink if one is attached.
func (r *InstanceRegistry) AppendLog(id int64, entry models.LogEntry) error {
	r.mu.Lock()

	buf, ok := r.logs[id]
	if !ok {
		r.mu.Unlock()
		return ErrInstanceNotFound
	}

	buf.Append(entry)
	buf.TrimOlderThan(r.ageCutoff(r.clock.Now()))

	sink := r.sink
	r.mu.Unlock()

	// Published outside the lock so a slow subscriber cannot stall writers.
	if sink != nil {
		sink.PublishLog(id, entry)
	}

	return nil
}

// ListLogs returns at most limit entries, newest first.
func (r *InstanceRegistry) ListLogs(id int64, limit int) ([]models.LogEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	buf, ok := r.logs[id]
	if !ok {
		return nil, ErrInstanceNotFound
	}

	return buf.Snapshot(limit), nil
}

// LatestLogTime returns the timestamp of the newest retained entry, or the
// zero time when no logs have been collected yet.
func (r *InstanceRegistry) LatestLogTime(id int64) (time.Time, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	buf, ok := r.logs[id]
	if !ok {
		return time.Time{}, ErrInstanceNotFound
	}

	newest, ok := buf.Newest()
	if !ok {
		return time.Time{}, nil
	}

	return newest.Timestamp, nil
}

// UpsertConfigProperty creates or replaces a property, bumping its
// LastUpdated.
func (r *InstanceRegistry) UpsertConfigProperty(id int64, prop models.ConfigProperty) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	props, ok := r.props[id]
	if !ok {
		return ErrInstanceNotFound
	}

	prop.LastUpdated = r.clock.Now()
	stored := prop
	props[prop.Key] = &stored

	if inst, ok := r.instances[id]; ok {
		inst.LastUpdated = stored.LastUpdated
	}

	return nil
}

// ListConfigProperties returns the instance's properties sorted by key.
func (r *InstanceRegistry) ListConfigProperties(id int64) ([]models.ConfigProperty, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	props, ok := r.props[id]
	if !ok {
		return nil, ErrInstanceNotFound
	}

	out := make([]models.ConfigProperty, 0, len(props))
	for _, p := range props {
		out = append(out, *p)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })

	return out, nil
}

// DeleteConfigProperty removes a property by key.
func (r *InstanceRegistry) DeleteConfigProperty(id int64, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	props, ok := r.props[id]
	if !ok {
		return ErrInstanceNotFound
	}

	if _, ok := props[key]; !ok {
		return ErrPropertyNotFound
	}

	delete(props, key)

	if inst, ok := r.instances[id]; ok {
		inst.LastUpdated = r.clock.Now()
	}

	return nil
}
