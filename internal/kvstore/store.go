// Package kvstore wraps the device's durable string-keyed storage.
//
// All higher components read and write through a Store. Writes that
// fail leave the prior persisted state in place: stale-but-consistent
// beats corrupt. Failures are logged, never returned to callers.
package kvstore

// Store is the synchronous key-value contract every persistence-backed
// component depends on.
type Store interface {
	// Get returns the value for key, or ok=false when absent.
	Get(key string) (value string, ok bool)
	// Set writes key. A failed write is logged and leaves the prior
	// value intact.
	Set(key, value string)
	// Remove deletes key. Removing an absent key is a no-op.
	Remove(key string)
	// Keys lists every stored key, in no particular order.
	Keys() []string
}

// Canonical storage keys. Per-patient keys are built with the helpers
// below; the legacy aliases live in legacy.go.
const (
	KeyPatients       = "patients"
	KeyActivePatient  = "activePatient"
	KeyPharmacyOrders = "pharmacy_orders"
	KeyMedicalCases   = "medicalCases"
)

// VaultKey returns the canonical per-patient vault key.
func VaultKey(patientID string) string {
	return "vault:" + patientID
}

// SymptomsKey returns the canonical per-patient symptom ledger key.
func SymptomsKey(patientID string) string {
	return "symptoms:" + patientID
}

// RemindersKey returns the canonical per-patient reminder list key.
func RemindersKey(patientID string) string {
	return "reminders:" + patientID
}
