package model

// PatientSymptom is one entry in the symptom history ledger. The ledger
// is independent of the vault and survives vault resets; it is the
// durable source of truth for what a patient ever reported.
type PatientSymptom struct {
	ID        string   `json:"id"`
	PatientID string   `json:"patientId"`
	Content   string   `json:"content"`
	Severity  Severity `json:"severity"`
	Timestamp int64    `json:"timestamp"`
	Synced    bool     `json:"synced"`
	SyncedAt  int64    `json:"syncedAt,omitempty"`
}

// SymptomStats summarizes a patient's ledger.
type SymptomStats struct {
	Total          int   `json:"total"`
	Synced         int   `json:"synced"`
	Unsynced       int   `json:"unsynced"`
	HighSeverity   int   `json:"highSeverity"`
	MediumSeverity int   `json:"mediumSeverity"`
	LowSeverity    int   `json:"lowSeverity"`
	LastSymptomAt  int64 `json:"lastSymptomAt,omitempty"`
}
