// Package vault is the per-patient durable record store. Every mutation
// persists before returning, so a reload immediately after any user
// action reflects it — the data-loss-prevention invariant this
// component exists for.
package vault

import (
	"encoding/json"
	"fmt"

	"github.com/ruralcare/telemed/internal/kvstore"
	"github.com/ruralcare/telemed/internal/model"
	"github.com/ruralcare/telemed/pkg/logger"
)

// Service reads and writes patient vaults through the persistence
// adapter, one vault per patient id.
type Service struct {
	store  kvstore.Store
	logger *logger.Logger
}

func NewService(store kvstore.Store, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{store: store, logger: log.WithComponent("vault")}
}

// Load returns the vault for a patient, creating an empty one from the
// profile on first access. A missing or malformed records field is
// coerced to an empty slice, never an error: reads self-heal.
func (s *Service) Load(profile model.PatientProfile) model.PatientVault {
	raw, ok := s.store.Get(kvstore.VaultKey(profile.PatientID))
	if !ok {
		return model.PatientVault{PatientProfile: profile, Records: []model.MedicalRecord{}}
	}

	var v model.PatientVault
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		s.logger.Error(err, "malformed vault, reinitializing", "patient_id", profile.PatientID)
		return model.PatientVault{PatientProfile: profile, Records: []model.MedicalRecord{}}
	}
	if v.Records == nil {
		s.logger.Warn("vault records missing, coercing to empty", "patient_id", profile.PatientID)
		v.Records = []model.MedicalRecord{}
	}
	if v.PatientID == "" {
		v.PatientProfile = profile
	}
	return v
}

// Append validates the record, appends it to the patient's vault and
// persists synchronously.
func (s *Service) Append(profile model.PatientProfile, record model.MedicalRecord) (model.PatientVault, error) {
	if err := record.Validate(); err != nil {
		return model.PatientVault{}, fmt.Errorf("invalid record: %w", err)
	}
	v := s.Load(profile)
	v.Records = append(v.Records, record)
	s.persist(v)
	return v, nil
}

// Update replaces every record matching the predicate with the result
// of the updater, preserving order, and persists. Returns the number of
// records touched.
func (s *Service) Update(profile model.PatientProfile, match func(model.MedicalRecord) bool, update func(model.MedicalRecord) model.MedicalRecord) int {
	v := s.Load(profile)
	touched := 0
	for i, rec := range v.Records {
		if match(rec) {
			v.Records[i] = update(rec)
			touched++
		}
	}
	if touched > 0 {
		s.persist(v)
	}
	return touched
}

// MergeLedger rebuilds the vault's SYMPTOM records from the symptom
// ledger. The ledger is authoritative for symptom history: existing
// vault SYMPTOM records are replaced wholesale, so a vault reset never
// loses previously reported symptoms. Non-symptom records are kept.
func (s *Service) MergeLedger(profile model.PatientProfile, entries []model.PatientSymptom) model.PatientVault {
	v := s.Load(profile)

	kept := v.Records[:0]
	for _, rec := range v.Records {
		if rec.Type != model.RecordTypeSymptom {
			kept = append(kept, rec)
		}
	}
	v.Records = kept

	for _, sym := range entries {
		status := model.RecordStatusPending
		if sym.Synced {
			status = model.RecordStatusSynced
		}
		v.Records = append(v.Records, model.MedicalRecord{
			ID:        sym.ID,
			Type:      model.RecordTypeSymptom,
			Content:   sym.Content,
			Timestamp: sym.Timestamp,
			Severity:  sym.Severity,
			Status:    status,
		})
	}
	s.persist(v)
	return v
}

// Reset removes the persisted vault for a patient. Used on logout; the
// ledger keeps the symptom history.
func (s *Service) Reset(patientID string) {
	s.store.Remove(kvstore.VaultKey(patientID))
}

func (s *Service) persist(v model.PatientVault) {
	data, err := json.Marshal(v)
	if err != nil {
		s.logger.Error(err, "failed to marshal vault", "patient_id", v.PatientID)
		return
	}
	s.store.Set(kvstore.VaultKey(v.PatientID), string(data))
}
