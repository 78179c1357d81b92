// Package registry maintains the list of patient profiles known to this
// device and which one is active. Multiple family members commonly
// share one phone, so profile isolation starts here.
package registry

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ruralcare/telemed/internal/kvstore"
	"github.com/ruralcare/telemed/internal/model"
	"github.com/ruralcare/telemed/pkg/logger"
)

// GeneratePatientID derives a stable id from the identity triple. The
// same (name, age, location) always produces the same id, which makes
// registration idempotent across re-onboarding.
func GeneratePatientID(name string, age int, location string) string {
	raw := fmt.Sprintf("%s_%d_%s", name, age, location)
	var b strings.Builder
	b.Grow(len(raw))
	for _, c := range raw {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
			b.WriteRune(c)
		default:
			b.WriteRune('_')
		}
	}
	return "PAT-" + strings.ToUpper(b.String())
}

// Registry is the durable profile list plus the active-patient pointer.
type Registry struct {
	store  kvstore.Store
	logger *logger.Logger
}

func New(store kvstore.Store, log *logger.Logger) *Registry {
	if log == nil {
		log = logger.Nop()
	}
	return &Registry{store: store, logger: log.WithComponent("registry")}
}

// List returns every known profile in discovery order. Malformed stored
// JSON is treated as no data; startup must never crash on it.
func (r *Registry) List() []model.PatientProfile {
	raw, ok := r.store.Get(kvstore.KeyPatients)
	if !ok {
		return []model.PatientProfile{}
	}
	var patients []model.PatientProfile
	if err := json.Unmarshal([]byte(raw), &patients); err != nil {
		r.logger.Error(err, "malformed patient list, treating as empty")
		return []model.PatientProfile{}
	}
	return patients
}

// RegisterOrUpdate upserts a profile by patient id. New profiles append;
// existing profiles are replaced in place so discovery order holds.
func (r *Registry) RegisterOrUpdate(profile model.PatientProfile) {
	patients := r.List()
	replaced := false
	for i := range patients {
		if patients[i].PatientID == profile.PatientID {
			patients[i] = profile
			replaced = true
			break
		}
	}
	if !replaced {
		patients = append(patients, profile)
	}
	r.save(patients)
}

// Active returns the current profile, or ok=false when onboarding is
// required.
func (r *Registry) Active() (model.PatientProfile, bool) {
	raw, ok := r.store.Get(kvstore.KeyActivePatient)
	if !ok {
		return model.PatientProfile{}, false
	}
	var profile model.PatientProfile
	if err := json.Unmarshal([]byte(raw), &profile); err != nil {
		r.logger.Error(err, "malformed active patient, treating as none")
		return model.PatientProfile{}, false
	}
	if profile.PatientID == "" {
		return model.PatientProfile{}, false
	}
	return profile, true
}

// SetActive records which profile is current. A nil profile clears the
// pointer: no active patient, onboarding required.
func (r *Registry) SetActive(profile *model.PatientProfile) {
	if profile == nil {
		r.store.Remove(kvstore.KeyActivePatient)
		return
	}
	data, err := json.Marshal(profile)
	if err != nil {
		r.logger.Error(err, "failed to marshal active patient")
		return
	}
	r.store.Set(kvstore.KeyActivePatient, string(data))
}

func (r *Registry) save(patients []model.PatientProfile) {
	data, err := json.Marshal(patients)
	if err != nil {
		r.logger.Error(err, "failed to marshal patient list")
		return
	}
	r.store.Set(kvstore.KeyPatients, string(data))
}
