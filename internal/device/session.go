// Package device assembles the patient-device components behind one
// session object. The session is the application root: it owns the
// store, the registry, the vault, the ledger and the sync engine, and
// it is the only place allowed to switch the active patient.
package device

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ruralcare/telemed/internal/client"
	"github.com/ruralcare/telemed/internal/kvstore"
	"github.com/ruralcare/telemed/internal/ledger"
	"github.com/ruralcare/telemed/internal/model"
	"github.com/ruralcare/telemed/internal/registry"
	"github.com/ruralcare/telemed/internal/reminders"
	"github.com/ruralcare/telemed/internal/scheduler"
	"github.com/ruralcare/telemed/internal/syncengine"
	"github.com/ruralcare/telemed/internal/triage"
	"github.com/ruralcare/telemed/internal/vault"
	"github.com/ruralcare/telemed/pkg/logger"
)

// Session is one device session. All per-patient in-memory state hangs
// off this struct so switching patients can wipe it in one place.
type Session struct {
	store     kvstore.Store
	registry  *registry.Registry
	vaults    *vault.Service
	ledger    *ledger.Ledger
	reminders *reminders.Service
	engine    *syncengine.Engine
	logger    *logger.Logger

	mu           sync.Mutex
	profile      *model.PatientProfile
	vault        model.PatientVault
	reminderTask *scheduler.Task
}

// New builds a session over the given store and backend client. The
// registry, vault, ledger and engine all share the one store.
func New(store kvstore.Store, api client.API, log *logger.Logger, cfg syncengine.Config) *Session {
	if log == nil {
		log = logger.Nop()
	}
	vaults := vault.NewService(store, log)
	led := ledger.New(store, log)
	return &Session{
		store:     store,
		registry:  registry.New(store, log),
		vaults:    vaults,
		ledger:    led,
		reminders: reminders.NewService(store, log),
		engine:    syncengine.New(vaults, led, api, log, nil, cfg),
		logger:    log.WithComponent("device"),
	}
}

// Registry exposes the profile list for onboarding screens.
func (s *Session) Registry() *registry.Registry { return s.registry }

// Ledger exposes the symptom history for the history screen.
func (s *Session) Ledger() *ledger.Ledger { return s.ledger }

// Reminders exposes the medicine reminder service.
func (s *Session) Reminders() *reminders.Service { return s.reminders }

// Restore loads the persisted session at startup: the profile list and
// the active patient, falling back to the first known profile. Returns
// false when onboarding is required.
func (s *Session) Restore() bool {
	if active, ok := s.registry.Active(); ok {
		s.SwitchTo(&active)
		return true
	}
	if patients := s.registry.List(); len(patients) > 0 {
		s.SwitchTo(&patients[0])
		return true
	}
	return false
}

// Onboard registers a new or re-onboarded patient and makes it active.
func (s *Session) Onboard(profile model.PatientProfile) model.PatientProfile {
	if profile.PatientID == "" {
		profile.PatientID = registry.GeneratePatientID(profile.Name, profile.Age, profile.Location)
	}
	s.registry.RegisterOrUpdate(profile)
	s.SwitchTo(&profile)
	return profile
}

// SwitchTo clears all in-memory per-patient state before activating the
// new profile. This is the patient-isolation invariant: records of two
// patients must never be visible at the same time, even on one device.
func (s *Session) SwitchTo(profile *model.PatientProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clearPatientStateLocked()
	s.registry.SetActive(profile)
	if profile == nil {
		return
	}

	p := *profile
	s.profile = &p
	// Ledger is authoritative for symptom history: a vault wiped by a
	// reset or crash gets its symptom records back here.
	s.vault = s.vaults.MergeLedger(p, s.ledger.History(p.PatientID))
	s.logger.Info("patient activated", "patient_id", p.PatientID)
}

// Active returns the active profile, or ok=false during onboarding.
func (s *Session) Active() (model.PatientProfile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.profile == nil {
		return model.PatientProfile{}, false
	}
	return *s.profile, true
}

// Vault returns the in-memory vault of the active patient.
func (s *Session) Vault() model.PatientVault {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.vault
}

// SubmitSymptom records a symptom: ledger first (the durable audit
// log), then the vault record carrying the same id, then a best-effort
// background sync. The ledger and vault share ids so a later sync can
// mark both consistently.
func (s *Session) SubmitSymptom(content string, severity model.Severity) (model.MedicalRecord, error) {
	s.mu.Lock()
	if s.profile == nil {
		s.mu.Unlock()
		return model.MedicalRecord{}, fmt.Errorf("no active patient")
	}
	profile := *s.profile
	s.mu.Unlock()

	if severity == "" {
		severity = triage.ClassifySeverity(content)
	}
	entry := s.ledger.AddSymptom(profile.PatientID, content, severity)
	record := model.NewSymptomRecord(entry.ID, content, severity, time.UnixMilli(entry.Timestamp))

	v, err := s.vaults.Append(profile, record)
	if err != nil {
		return model.MedicalRecord{}, err
	}
	s.setVault(profile, v)

	s.engine.TriggerAsync(profile)
	return record, nil
}

// SubmitVisual records a media upload for triage and fires a sync.
func (s *Session) SubmitVisual(content string, media model.Media) (model.MedicalRecord, error) {
	s.mu.Lock()
	if s.profile == nil {
		s.mu.Unlock()
		return model.MedicalRecord{}, fmt.Errorf("no active patient")
	}
	profile := *s.profile
	s.mu.Unlock()

	record := model.NewVisualTriageRecord(content, media, time.Now())
	v, err := s.vaults.Append(profile, record)
	if err != nil {
		return model.MedicalRecord{}, err
	}
	s.setVault(profile, v)

	s.engine.TriggerAsync(profile)
	return record, nil
}

// AppendDoctorRecord stores a doctor reply fetched from the backend.
// Doctor records arrive already synced.
func (s *Session) AppendDoctorRecord(record model.MedicalRecord) error {
	s.mu.Lock()
	if s.profile == nil {
		s.mu.Unlock()
		return fmt.Errorf("no active patient")
	}
	profile := *s.profile
	s.mu.Unlock()

	v, err := s.vaults.Append(profile, record)
	if err != nil {
		return err
	}
	s.setVault(profile, v)
	return nil
}

// SetConnectivity feeds network transitions to the sync engine.
func (s *Session) SetConnectivity(state model.ConnectivityState) {
	s.mu.Lock()
	profile := s.profile
	s.mu.Unlock()
	if profile == nil {
		return
	}
	s.engine.OnConnectivityChange(state, *profile)
}

// Sync runs a foreground sync cycle and reloads the in-memory vault
// with whatever the cycle marked.
func (s *Session) Sync() (syncengine.Report, error) {
	s.mu.Lock()
	if s.profile == nil {
		s.mu.Unlock()
		return syncengine.Report{}, fmt.Errorf("no active patient")
	}
	profile := *s.profile
	s.mu.Unlock()

	report, err := s.engine.Sync(context.Background(), profile)
	s.Reload()
	return report, err
}

// Reload refreshes the in-memory vault from storage, picking up
// background sync results.
func (s *Session) Reload() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.profile == nil {
		return
	}
	s.vault = s.vaults.Load(*s.profile)
}

// StartReminderChecks begins the minute-tick due-dose loop for the
// active patient. The previous loop, if any, is stopped first.
func (s *Session) StartReminderChecks(fn reminders.DueFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.profile == nil {
		return
	}
	if s.reminderTask != nil {
		s.reminderTask.Stop()
	}
	s.reminderTask = s.reminders.StartChecks(s.profile.PatientID, fn)
}

// Logout tears the session down: per-patient vault storage is removed
// (the ledger survives, it is the durable history), role and session
// keys are cleared and all in-memory state is dropped.
func (s *Session) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.profile != nil {
		s.vaults.Reset(s.profile.PatientID)
	}
	s.clearPatientStateLocked()
	s.registry.SetActive(nil)
	s.logger.Info("session logged out")
}

// Close stops background work without touching persisted state.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearPatientStateLocked()
}

func (s *Session) clearPatientStateLocked() {
	if s.reminderTask != nil {
		s.reminderTask.Stop()
		s.reminderTask = nil
	}
	s.engine.Close()
	s.profile = nil
	s.vault = model.PatientVault{Records: []model.MedicalRecord{}}
}

func (s *Session) setVault(profile model.PatientProfile, v model.PatientVault) {
	s.mu.Lock()
	defer s.mu.Unlock()
	// A switch may have raced the append; never surface another
	// patient's vault.
	if s.profile != nil && s.profile.PatientID == profile.PatientID {
		s.vault = v
	}
}
