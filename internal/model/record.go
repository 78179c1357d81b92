package model

import (
	"fmt"
	"time"
)

type RecordType string

const (
	RecordTypeSymptom          RecordType = "SYMPTOM"
	RecordTypeVisualTriage     RecordType = "VISUAL_TRIAGE"
	RecordTypePrescription     RecordType = "PRESCRIPTION"
	RecordTypeDoctorNote       RecordType = "DOCTOR_NOTE"
	RecordTypeHistory          RecordType = "HISTORY"
	RecordTypeMedicineReminder RecordType = "MEDICINE_REMINDER"
)

type RecordStatus string

const (
	RecordStatusPending   RecordStatus = "PENDING"
	RecordStatusSynced    RecordStatus = "SYNCED"
	RecordStatusProcessed RecordStatus = "PROCESSED"
)

type Severity string

const (
	SeverityLow    Severity = "LOW"
	SeverityMedium Severity = "MEDIUM"
	SeverityHigh   Severity = "HIGH"
)

type MediaType string

const (
	MediaTypeImage       MediaType = "IMAGE"
	MediaTypeVideoFrames MediaType = "VIDEO_FRAMES"
)

// Media carries the visual payload of a VISUAL_TRIAGE record. LowResData
// is a base64 preview small enough to sync over a weak link; Analysis is
// filled in once triage has run.
type Media struct {
	Type       MediaType `json:"type"`
	LowResData string    `json:"lowResData"`
	HighResURL string    `json:"highResUrl,omitempty"`
	Analysis   string    `json:"analysis,omitempty"`
}

// DoctorInfo attributes a doctor-origin record.
type DoctorInfo struct {
	Name           string `json:"name"`
	Specialization string `json:"specialization"`
	ClinicID       string `json:"clinicId"`
}

// MedicalRecord is one entry in a patient vault. The vault is a log:
// records are appended and updated in place, never removed.
//
// The struct is a tagged union over Type; Validate rejects field
// combinations that do not belong to the variant.
type MedicalRecord struct {
	ID                string       `json:"id"`
	Type              RecordType   `json:"type"`
	Content           string       `json:"content"`
	TranslatedContent string       `json:"translatedContent,omitempty"`
	Timestamp         int64        `json:"timestamp"`
	Severity          Severity     `json:"severity,omitempty"`
	Status            RecordStatus `json:"status"`
	RoutedSpecialty   string       `json:"routedSpecialty,omitempty"`
	Media             *Media       `json:"media,omitempty"`
	DoctorInfo        *DoctorInfo  `json:"doctorInfo,omitempty"`
	ThreadID          string       `json:"threadId,omitempty"`
	ParentRecordID    string       `json:"parentRecordId,omitempty"`
}

// NewRecordID builds a locally unique, roughly monotonic record id from
// the type prefix and the creation time.
func NewRecordID(prefix string, now time.Time) string {
	return fmt.Sprintf("%s-%d", prefix, now.UnixNano())
}

// NewSymptomRecord creates a patient-origin SYMPTOM record, pending sync.
func NewSymptomRecord(id, content string, severity Severity, now time.Time) MedicalRecord {
	return MedicalRecord{
		ID:        id,
		Type:      RecordTypeSymptom,
		Content:   content,
		Timestamp: now.UnixMilli(),
		Severity:  severity,
		Status:    RecordStatusPending,
	}
}

// NewVisualTriageRecord creates a patient-origin VISUAL_TRIAGE record
// holding a low-resolution media payload, pending sync.
func NewVisualTriageRecord(content string, media Media, now time.Time) MedicalRecord {
	return MedicalRecord{
		ID:        NewRecordID("VIS", now),
		Type:      RecordTypeVisualTriage,
		Content:   content,
		Timestamp: now.UnixMilli(),
		Status:    RecordStatusPending,
		Media:     &media,
	}
}

// NewPrescriptionRecord creates a doctor-origin PRESCRIPTION record.
// Doctor records are born SYNCED: they already live server-side.
func NewPrescriptionRecord(content string, doctor DoctorInfo, parentID string, now time.Time) MedicalRecord {
	return MedicalRecord{
		ID:             NewRecordID("RX", now),
		Type:           RecordTypePrescription,
		Content:        content,
		Timestamp:      now.UnixMilli(),
		Status:         RecordStatusSynced,
		DoctorInfo:     &doctor,
		ParentRecordID: parentID,
	}
}

// NewDoctorNoteRecord creates a doctor-origin DOCTOR_NOTE record.
func NewDoctorNoteRecord(content string, doctor DoctorInfo, parentID string, now time.Time) MedicalRecord {
	return MedicalRecord{
		ID:             NewRecordID("NOTE", now),
		Type:           RecordTypeDoctorNote,
		Content:        content,
		Timestamp:      now.UnixMilli(),
		Status:         RecordStatusSynced,
		DoctorInfo:     &doctor,
		ParentRecordID: parentID,
	}
}

// Validate enforces the variant rules of the union.
func (r MedicalRecord) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("record id is required")
	}
	switch r.Type {
	case RecordTypeSymptom, RecordTypeHistory, RecordTypeMedicineReminder:
		if r.Media != nil {
			return fmt.Errorf("%s record must not carry media", r.Type)
		}
	case RecordTypeVisualTriage:
		if r.Media == nil {
			return fmt.Errorf("VISUAL_TRIAGE record requires media")
		}
	case RecordTypePrescription, RecordTypeDoctorNote:
		if r.Media != nil {
			return fmt.Errorf("%s record must not carry media", r.Type)
		}
		if r.DoctorInfo == nil {
			return fmt.Errorf("%s record requires doctor info", r.Type)
		}
	default:
		return fmt.Errorf("unknown record type %q", r.Type)
	}
	switch r.Status {
	case RecordStatusPending, RecordStatusSynced, RecordStatusProcessed:
	default:
		return fmt.Errorf("unknown record status %q", r.Status)
	}
	return nil
}

// Pending reports whether the record still awaits a sync cycle.
func (r MedicalRecord) Pending() bool {
	return r.Status == RecordStatusPending
}
