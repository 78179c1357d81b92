// Package cases is the shared medical-case store: image uploads a
// patient files for review and the doctor replies attached to them.
// Unlike the vault it is one list for the whole device, so the doctor
// role on the same device sees every patient's cases.
package cases

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/ruralcare/telemed/internal/kvstore"
	"github.com/ruralcare/telemed/internal/model"
	"github.com/ruralcare/telemed/pkg/logger"
)

type CaseStatus string

const (
	CaseStatusPending  CaseStatus = "PENDING"
	CaseStatusReviewed CaseStatus = "REVIEWED"
	CaseStatusResolved CaseStatus = "RESOLVED"
)

// CaseImage holds a base64 payload; file handles are not serializable
// into the KV store.
type CaseImage struct {
	ImageID    string          `json:"imageId"`
	Filename   string          `json:"filename"`
	Base64Data string          `json:"base64Data"`
	UploadedAt int64           `json:"uploadedAt"`
	Type       model.MediaType `json:"type"`
}

type CaseReply struct {
	ReplyID        string           `json:"replyId"`
	DoctorID       string           `json:"doctorId"`
	DoctorName     string           `json:"doctorName"`
	Specialization string           `json:"specialization"`
	Content        string           `json:"content"`
	Type           model.RecordType `json:"type"`
	Medication     string           `json:"medication,omitempty"`
	Timestamp      int64            `json:"timestamp"`
}

type MedicalCase struct {
	CaseID          string      `json:"caseId"`
	PatientID       string      `json:"patientId"`
	PatientName     string      `json:"patientName"`
	PatientAge      int         `json:"patientAge"`
	PatientPhone    string      `json:"patientPhone"`
	PatientDistrict string      `json:"patientDistrict"`
	PatientState    string      `json:"patientState"`
	Images          []CaseImage `json:"images"`
	Replies         []CaseReply `json:"replies"`
	Status          CaseStatus  `json:"status"`
	CreatedAt       int64       `json:"createdAt"`
	UpdatedAt       int64       `json:"updatedAt"`
}

type Service struct {
	store  kvstore.Store
	logger *logger.Logger
	now    func() time.Time
}

func NewService(store kvstore.Store, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{store: store, logger: log.WithComponent("cases"), now: time.Now}
}

// Create files a new case with its first image.
func (s *Service) Create(profile model.PatientProfile, imageBase64, filename string) MedicalCase {
	now := s.now()
	c := MedicalCase{
		CaseID:          fmt.Sprintf("CASE-%s-%d", profile.PatientID, now.UnixMilli()),
		PatientID:       profile.PatientID,
		PatientName:     profile.Name,
		PatientAge:      profile.Age,
		PatientPhone:    profile.PhoneNumber,
		PatientDistrict: profile.District,
		PatientState:    profile.State,
		Images: []CaseImage{{
			ImageID:    fmt.Sprintf("IMG-%d", now.UnixNano()),
			Filename:   filename,
			Base64Data: imageBase64,
			UploadedAt: now.UnixMilli(),
			Type:       model.MediaTypeImage,
		}},
		Replies:   []CaseReply{},
		Status:    CaseStatusPending,
		CreatedAt: now.UnixMilli(),
		UpdatedAt: now.UnixMilli(),
	}
	s.save(c)
	return c
}

// All returns every case on the device.
func (s *Service) All() []MedicalCase {
	raw, ok := s.store.Get(kvstore.KeyMedicalCases)
	if !ok {
		return []MedicalCase{}
	}
	var all []MedicalCase
	if err := json.Unmarshal([]byte(raw), &all); err != nil {
		s.logger.Error(err, "malformed case list, treating as empty")
		return []MedicalCase{}
	}
	return all
}

// ByPatient filters cases to one patient.
func (s *Service) ByPatient(patientID string) []MedicalCase {
	var out []MedicalCase
	for _, c := range s.All() {
		if c.PatientID == patientID {
			out = append(out, c)
		}
	}
	return out
}

// Get returns one case by id.
func (s *Service) Get(caseID string) (MedicalCase, bool) {
	for _, c := range s.All() {
		if c.CaseID == caseID {
			return c, true
		}
	}
	return MedicalCase{}, false
}

// AddReply attaches a doctor reply and moves the case to REVIEWED.
func (s *Service) AddReply(caseID string, doctor model.DoctorInfo, content string, replyType model.RecordType, medication string) (MedicalCase, error) {
	c, ok := s.Get(caseID)
	if !ok {
		return MedicalCase{}, fmt.Errorf("case %s not found", caseID)
	}
	now := s.now()
	c.Replies = append(c.Replies, CaseReply{
		ReplyID:        fmt.Sprintf("REPLY-%d", now.UnixNano()),
		DoctorID:       doctor.ClinicID,
		DoctorName:     doctor.Name,
		Specialization: doctor.Specialization,
		Content:        content,
		Type:           replyType,
		Medication:     medication,
		Timestamp:      now.UnixMilli(),
	})
	c.Status = CaseStatusReviewed
	c.UpdatedAt = now.UnixMilli()
	s.save(c)
	return c, nil
}

// Resolve closes a case.
func (s *Service) Resolve(caseID string) error {
	c, ok := s.Get(caseID)
	if !ok {
		return fmt.Errorf("case %s not found", caseID)
	}
	c.Status = CaseStatusResolved
	c.UpdatedAt = s.now().UnixMilli()
	s.save(c)
	return nil
}

func (s *Service) save(c MedicalCase) {
	all := s.All()
	found := false
	for i := range all {
		if all[i].CaseID == c.CaseID {
			all[i] = c
			found = true
			break
		}
	}
	if !found {
		all = append(all, c)
	}
	data, err := json.Marshal(all)
	if err != nil {
		s.logger.Error(err, "failed to marshal case list")
		return
	}
	s.store.Set(kvstore.KeyMedicalCases, string(data))
}
