// Package syncengine drains pending vault records to the backend and
// reconciles the result back into local state. One engine serves one
// device session; all state lives on the struct, nothing at package
// level.
package syncengine

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ruralcare/telemed/internal/client"
	"github.com/ruralcare/telemed/internal/ledger"
	"github.com/ruralcare/telemed/internal/model"
	"github.com/ruralcare/telemed/internal/scheduler"
	"github.com/ruralcare/telemed/internal/triage"
	"github.com/ruralcare/telemed/internal/vault"
	apperrors "github.com/ruralcare/telemed/pkg/errors"
	"github.com/ruralcare/telemed/pkg/logger"
	"github.com/ruralcare/telemed/pkg/metrics"
)

// ErrSyncInFlight is returned when a trigger arrives while a cycle is
// running. Callers treat it as a no-op, not a failure.
var ErrSyncInFlight = fmt.Errorf("sync already in flight")

// Config tunes the engine's scheduling behavior.
type Config struct {
	// Debounce delays the connectivity-triggered sync so a flapping
	// link does not fire a cycle per transition.
	Debounce time.Duration
	// Settle holds the in-flight guard closed after a cycle ends,
	// breaking tight re-trigger loops.
	Settle time.Duration
}

func (c *Config) applyDefaults() {
	if c.Debounce <= 0 {
		c.Debounce = 1500 * time.Millisecond
	}
	if c.Settle <= 0 {
		c.Settle = 2 * time.Second
	}
}

// Report describes what a sync cycle accomplished.
type Report struct {
	PendingBefore  int
	SymptomsSynced int
	RecordsSynced  int
	VisualTriaged  bool
}

// Engine owns the pending->synced transition. At most one cycle runs at
// a time; the guard is a mutex-protected flag because Go callers are
// concurrent, unlike the cooperative event loop this design came from.
type Engine struct {
	vault   *vault.Service
	ledger  *ledger.Ledger
	api     client.API
	logger  *logger.Logger
	metrics *metrics.Metrics
	cfg     Config

	mu       sync.Mutex
	syncing  bool
	debounce *scheduler.Task
}

func New(v *vault.Service, l *ledger.Ledger, api client.API, log *logger.Logger, m *metrics.Metrics, cfg Config) *Engine {
	if log == nil {
		log = logger.Nop()
	}
	cfg.applyDefaults()
	return &Engine{
		vault:   v,
		ledger:  l,
		api:     api,
		logger:  log.WithComponent("syncengine"),
		metrics: m,
		cfg:     cfg,
	}
}

// TriggerAsync fires a sync cycle without blocking the caller. Used
// right after a symptom or media record is appended; failures are
// logged, never surfaced to the action that created the record.
func (e *Engine) TriggerAsync(profile model.PatientProfile) {
	go func() {
		if _, err := e.Sync(context.Background(), profile); err != nil && err != ErrSyncInFlight {
			e.logger.Error(err, "background sync failed", "patient_id", profile.PatientID)
		}
	}()
}

// OnConnectivityChange schedules a debounced sync when the link comes
// back. Repeated transitions within the debounce window collapse into
// one cycle.
func (e *Engine) OnConnectivityChange(state model.ConnectivityState, profile model.PatientProfile) {
	e.mu.Lock()
	if e.debounce != nil {
		e.debounce.Stop()
		e.debounce = nil
	}
	if !state.Online() {
		e.mu.Unlock()
		return
	}
	e.debounce = scheduler.After(e.cfg.Debounce, func() {
		if _, err := e.Sync(context.Background(), profile); err != nil && err != ErrSyncInFlight {
			e.logger.Error(err, "connectivity sync failed", "patient_id", profile.PatientID)
		}
	})
	e.mu.Unlock()
}

// Close cancels any scheduled sync. In-flight cycles run to completion;
// none of the backend calls support cancellation mid-request.
func (e *Engine) Close() {
	e.mu.Lock()
	if e.debounce != nil {
		e.debounce.Stop()
		e.debounce = nil
	}
	e.mu.Unlock()
}

// Sync runs one delta-sync cycle for the patient. With nothing pending
// it is a no-op: no network calls, no state changes. A cycle already in
// flight returns ErrSyncInFlight.
func (e *Engine) Sync(ctx context.Context, profile model.PatientProfile) (Report, error) {
	e.mu.Lock()
	if e.syncing {
		e.mu.Unlock()
		if e.metrics != nil {
			e.metrics.SyncSkippedBusy.Inc()
		}
		return Report{}, ErrSyncInFlight
	}
	e.syncing = true
	e.mu.Unlock()

	// The guard stays closed for the settle window whatever the
	// outcome, so a success cascade cannot re-trigger immediately.
	defer scheduler.After(e.cfg.Settle, func() {
		e.mu.Lock()
		e.syncing = false
		e.mu.Unlock()
	})

	started := time.Now()
	report, err := e.cycle(ctx, profile)
	if e.metrics != nil {
		e.metrics.SyncLatency.Observe(time.Since(started).Seconds())
		outcome := "success"
		if err != nil {
			outcome = "failure"
		} else if report.PendingBefore == 0 {
			outcome = "noop"
		}
		e.metrics.SyncCycles.WithLabelValues(outcome).Inc()
		e.metrics.SyncRecordsSynced.Add(float64(report.RecordsSynced))
	}
	return report, err
}

func (e *Engine) cycle(ctx context.Context, profile model.PatientProfile) (Report, error) {
	v := e.vault.Load(profile)

	var pending []model.MedicalRecord
	for _, rec := range v.Records {
		if rec.Pending() {
			pending = append(pending, rec)
		}
	}
	report := Report{PendingBefore: len(pending)}
	if len(pending) == 0 {
		return report, nil
	}

	e.logger.Info("sync cycle starting",
		"patient_id", profile.PatientID, "pending", len(pending))

	var visuals, symptoms []model.MedicalRecord
	for _, rec := range pending {
		switch {
		case rec.Type == model.RecordTypeVisualTriage && rec.Media != nil:
			visuals = append(visuals, rec)
		case rec.Type == model.RecordTypeSymptom:
			symptoms = append(symptoms, rec)
		}
	}

	// One visual submission per cycle; the rest wait for the next
	// trigger. Visual failures never abort the symptom submission.
	triagedID := ""
	if len(visuals) > 0 {
		first := visuals[0]
		resp, err := e.api.VisualTriage(ctx, model.VisualTriageRequest{Image: first.Media.LowResData})
		if err != nil {
			e.logger.Error(err, "visual triage failed, record stays pending", "record_id", first.ID)
		} else {
			triagedID = first.ID
			e.vault.Update(profile,
				func(r model.MedicalRecord) bool { return r.ID == first.ID },
				func(r model.MedicalRecord) model.MedicalRecord {
					media := *r.Media
					media.Analysis = resp.Findings
					r.Media = &media
					r.Severity = resp.Urgency
					r.Status = model.RecordStatusSynced
					return r
				})
			report.VisualTriaged = true
			report.RecordsSynced++
		}
	}

	if len(symptoms) == 0 {
		return report, nil
	}

	if !profile.Complete() {
		// The backend would reject this with a 400 anyway; do not
		// waste the link. Not retryable until onboarding finishes.
		return report, apperrors.Validation("patient profile is incomplete, cannot sync", nil)
	}

	contents := make([]string, 0, len(symptoms))
	symptomIDs := make([]string, 0, len(symptoms))
	for _, rec := range symptoms {
		contents = append(contents, rec.Content)
		symptomIDs = append(symptomIDs, rec.ID)
	}
	symptomsText := strings.Join(contents, ", ")

	req := model.DeltaSyncRequest{
		Vault:       v,
		NewSymptoms: symptomsText,
		CurrentSymptoms: &model.CurrentSymptoms{
			Description: symptomsText,
			Severity:    triage.ClassifySeverity(symptomsText),
			Duration:    "Current episode",
		},
	}

	resp, err := e.api.DeltaSync(ctx, req)
	if err != nil {
		// Nothing gets marked: every symptom record stays pending for
		// the next trigger.
		e.logger.Error(err, "delta sync failed, records stay pending",
			"patient_id", profile.PatientID, "symptoms", len(symptoms))
		return report, fmt.Errorf("delta sync failed: %w", err)
	}

	// The backend owns packet creation; its routing decision is not
	// persisted locally. The local effect of success is marking state.
	e.logger.Info("delta sync accepted",
		"patient_id", profile.PatientID,
		"specialty", resp.SuggestedSpecialty, "urgency", string(resp.Urgency))

	synced := e.vault.Update(profile,
		func(r model.MedicalRecord) bool {
			if !r.Pending() {
				return false
			}
			// Untriaged visual records stay pending for a later cycle.
			if r.Type == model.RecordTypeVisualTriage {
				return r.ID == triagedID
			}
			return true
		},
		func(r model.MedicalRecord) model.MedicalRecord {
			r.Status = model.RecordStatusSynced
			return r
		})
	report.RecordsSynced += synced

	e.ledger.MarkSynced(profile.PatientID, symptomIDs)
	report.SymptomsSynced = len(symptomIDs)

	return report, nil
}
