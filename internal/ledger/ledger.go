// Package ledger is the append-only, patient-scoped log of raw symptom
// submissions. It is deliberately decoupled from the vault: symptoms
// reported here survive a vault reset or a botched sync, and the vault
// rebuilds its SYMPTOM records from this log on load.
package ledger

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/ruralcare/telemed/internal/kvstore"
	"github.com/ruralcare/telemed/internal/model"
	"github.com/ruralcare/telemed/pkg/logger"
)

// write retries before giving up; a lost ledger write is the one
// unrecoverable case in the design.
const writeAttempts = 3

type Ledger struct {
	store  kvstore.Store
	logger *logger.Logger
	now    func() time.Time
}

func New(store kvstore.Store, log *logger.Logger) *Ledger {
	if log == nil {
		log = logger.Nop()
	}
	return &Ledger{store: store, logger: log.WithComponent("ledger"), now: time.Now}
}

// AddSymptom appends a submission and persists it. The entry's content
// and timestamp are never rewritten afterwards: the ledger is a
// write-once audit log.
func (l *Ledger) AddSymptom(patientID, content string, severity model.Severity) model.PatientSymptom {
	if severity == "" {
		severity = model.SeverityMedium
	}
	now := l.now()
	symptom := model.PatientSymptom{
		ID:        fmt.Sprintf("SYM-%d", now.UnixNano()),
		PatientID: patientID,
		Content:   content,
		Severity:  severity,
		Timestamp: now.UnixMilli(),
		Synced:    false,
	}

	entries := l.History(patientID)
	entries = append(entries, symptom)
	l.persist(patientID, entries)
	return symptom
}

// History returns all submissions for a patient in chronological order.
// Reads never mutate the log; malformed state reads as empty.
func (l *Ledger) History(patientID string) []model.PatientSymptom {
	raw, ok := l.store.Get(kvstore.SymptomsKey(patientID))
	if !ok {
		return []model.PatientSymptom{}
	}
	var entries []model.PatientSymptom
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		l.logger.Error(err, "malformed symptom history, treating as empty", "patient_id", patientID)
		return []model.PatientSymptom{}
	}
	return entries
}

// MarkSynced flips synced=true and stamps syncedAt for exactly the
// given ids. Re-marking an already-synced entry is a no-op, so the
// operation is idempotent under sync retries.
func (l *Ledger) MarkSynced(patientID string, ids []string) {
	if len(ids) == 0 {
		return
	}
	wanted := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}

	entries := l.History(patientID)
	changed := false
	now := l.now().UnixMilli()
	for i := range entries {
		if _, ok := wanted[entries[i].ID]; !ok || entries[i].Synced {
			continue
		}
		entries[i].Synced = true
		entries[i].SyncedAt = now
		changed = true
	}
	if changed {
		l.persist(patientID, entries)
	}
}

// Unsynced returns the submissions still awaiting backend acceptance,
// oldest first. This is the delta-sync engine's retry set.
func (l *Ledger) Unsynced(patientID string) []model.PatientSymptom {
	var pending []model.PatientSymptom
	for _, s := range l.History(patientID) {
		if !s.Synced {
			pending = append(pending, s)
		}
	}
	return pending
}

// Stats summarizes the patient's ledger for the history screen.
func (l *Ledger) Stats(patientID string) model.SymptomStats {
	entries := l.History(patientID)
	stats := model.SymptomStats{Total: len(entries)}
	for _, s := range entries {
		if s.Synced {
			stats.Synced++
		} else {
			stats.Unsynced++
		}
		switch s.Severity {
		case model.SeverityHigh:
			stats.HighSeverity++
		case model.SeverityMedium:
			stats.MediumSeverity++
		case model.SeverityLow:
			stats.LowSeverity++
		}
	}
	if len(entries) > 0 {
		stats.LastSymptomAt = entries[len(entries)-1].Timestamp
	}
	return stats
}

// ExportCSV renders the history for sharing with a clinic.
func (l *Ledger) ExportCSV(patientID string) string {
	out := "Date,Time,Symptom,Severity,Synced\n"
	for _, s := range l.History(patientID) {
		t := time.UnixMilli(s.Timestamp)
		synced := "No"
		if s.Synced {
			synced = "Yes"
		}
		out += fmt.Sprintf("%s,%s,%q,%s,%s\n",
			t.Format("2006-01-02"), t.Format("15:04:05"), s.Content, s.Severity, synced)
	}
	return out
}

func (l *Ledger) persist(patientID string, entries []model.PatientSymptom) {
	data, err := json.Marshal(entries)
	if err != nil {
		l.logger.Error(err, "failed to marshal symptom history", "patient_id", patientID)
		return
	}
	key := kvstore.SymptomsKey(patientID)
	for attempt := 0; attempt < writeAttempts; attempt++ {
		l.store.Set(key, string(data))
		if stored, ok := l.store.Get(key); ok && stored == string(data) {
			return
		}
	}
	l.logger.Error(nil, "symptom history write failed after retries", "patient_id", patientID)
}
