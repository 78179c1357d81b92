package kvstore

import "strings"

// Legacy key aliases from earlier on-device schemas. Reads fall back
// through the alias list in order; writes go to the canonical key and
// are mirrored to the aliases so old readers keep working during the
// migration window. The list is meant to shrink, not grow.
var legacyAliases = map[string][]string{
	KeyPatients:       {"hv_patient_profiles"},
	KeyActivePatient:  {"hv_current_patient_profile", "hv_patient_profile"},
	KeyMedicalCases:   {"allMedicalCases"},
	KeyPharmacyOrders: nil,
}

// legacyFor returns the ordered alias list for a key, handling the
// per-patient key families.
func legacyFor(key string) []string {
	if aliases, ok := legacyAliases[key]; ok {
		return aliases
	}
	if pid, ok := strings.CutPrefix(key, "vault:"); ok {
		return []string{"hv_vault_" + pid}
	}
	if pid, ok := strings.CutPrefix(key, "symptoms:"); ok {
		return []string{"symptoms_history_" + pid}
	}
	if pid, ok := strings.CutPrefix(key, "reminders:"); ok {
		return []string{"hv_reminders_" + pid}
	}
	return nil
}

// LegacyStore decorates a Store with alias-aware reads and mirrored
// writes.
type LegacyStore struct {
	inner Store
}

func WithLegacyAliases(inner Store) *LegacyStore {
	return &LegacyStore{inner: inner}
}

func (s *LegacyStore) Get(key string) (string, bool) {
	if v, ok := s.inner.Get(key); ok {
		return v, true
	}
	for _, alias := range legacyFor(key) {
		if v, ok := s.inner.Get(alias); ok {
			return v, true
		}
	}
	return "", false
}

func (s *LegacyStore) Set(key, value string) {
	s.inner.Set(key, value)
	for _, alias := range legacyFor(key) {
		s.inner.Set(alias, value)
	}
}

func (s *LegacyStore) Remove(key string) {
	s.inner.Remove(key)
	for _, alias := range legacyFor(key) {
		s.inner.Remove(alias)
	}
}

func (s *LegacyStore) Keys() []string {
	return s.inner.Keys()
}
