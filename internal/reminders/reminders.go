// Package reminders manages per-patient medicine schedules. Delivery
// of the actual notification is the host UI's concern; this package
// owns the durable schedule and the due-time bookkeeping.
package reminders

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"github.com/ruralcare/telemed/internal/kvstore"
	"github.com/ruralcare/telemed/internal/model"
	"github.com/ruralcare/telemed/internal/scheduler"
	"github.com/ruralcare/telemed/pkg/logger"
)

// DueFunc is called for each reminder dose that is due right now.
type DueFunc func(reminder model.MedicineReminder, slot int)

type Service struct {
	store  kvstore.Store
	logger *logger.Logger
	now    func() time.Time
}

func NewService(store kvstore.Store, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{store: store, logger: log.WithComponent("reminders"), now: time.Now}
}

// Create registers a reminder with one dose slot per scheduled time.
func (s *Service) Create(patientID, medicineName, dosage string, schedule []string, prescribedBy, instructions string) model.MedicineReminder {
	now := s.now()
	times := make([]model.ReminderTime, 0, len(schedule))
	for _, t := range schedule {
		times = append(times, model.ReminderTime{Time: t})
	}
	reminder := model.MedicineReminder{
		ID:            fmt.Sprintf("REM-%d-%d", now.UnixMilli(), rand.Intn(1000)),
		PatientID:     patientID,
		MedicineName:  medicineName,
		Dosage:        dosage,
		TimeSchedule:  schedule,
		StartDate:     now.UnixMilli(),
		IsActive:      true,
		Instructions:  instructions,
		PrescribedBy:  prescribedBy,
		PrescribedAt:  now.UnixMilli(),
		ReminderTimes: times,
	}
	all := s.List(patientID)
	all = append(all, reminder)
	s.persist(patientID, all)
	return reminder
}

// List returns the patient's reminders. Malformed state reads empty.
func (s *Service) List(patientID string) []model.MedicineReminder {
	raw, ok := s.store.Get(kvstore.RemindersKey(patientID))
	if !ok {
		return []model.MedicineReminder{}
	}
	var all []model.MedicineReminder
	if err := json.Unmarshal([]byte(raw), &all); err != nil {
		s.logger.Error(err, "malformed reminder list, treating as empty", "patient_id", patientID)
		return []model.MedicineReminder{}
	}
	return all
}

// MarkDose records a dose as taken or skipped. The two outcomes are
// mutually exclusive; marking one clears the other.
func (s *Service) MarkDose(patientID, reminderID string, slot int, taken bool) error {
	all := s.List(patientID)
	for i := range all {
		if all[i].ID != reminderID {
			continue
		}
		if slot < 0 || slot >= len(all[i].ReminderTimes) {
			return fmt.Errorf("reminder %s has no dose slot %d", reminderID, slot)
		}
		rt := &all[i].ReminderTimes[slot]
		now := s.now().UnixMilli()
		if taken {
			rt.Taken, rt.TakenAt = true, now
			rt.Skipped, rt.SkippedAt = false, 0
		} else {
			rt.Skipped, rt.SkippedAt = true, now
			rt.Taken, rt.TakenAt = false, 0
		}
		s.persist(patientID, all)
		return nil
	}
	return fmt.Errorf("reminder %s not found", reminderID)
}

// Due returns the active reminders with a dose scheduled at the given
// wall-clock minute that has not been taken or skipped yet.
func (s *Service) Due(patientID string, at time.Time) []model.MedicineReminder {
	current := at.Format("15:04")
	var due []model.MedicineReminder
	for _, rem := range s.List(patientID) {
		if !rem.IsActive {
			continue
		}
		for _, rt := range rem.ReminderTimes {
			if rt.Time == current && !rt.Taken && !rt.Skipped {
				due = append(due, rem)
				break
			}
		}
	}
	return due
}

// StartChecks polls once a minute and invokes fn for every due dose.
// The returned task must be stopped on patient switch or shutdown.
func (s *Service) StartChecks(patientID string, fn DueFunc) *scheduler.Task {
	return scheduler.Every(time.Minute, func() {
		now := s.now()
		for _, rem := range s.Due(patientID, now) {
			current := now.Format("15:04")
			for i, rt := range rem.ReminderTimes {
				if rt.Time == current && !rt.Taken && !rt.Skipped {
					fn(rem, i)
				}
			}
		}
	})
}

func (s *Service) persist(patientID string, all []model.MedicineReminder) {
	data, err := json.Marshal(all)
	if err != nil {
		s.logger.Error(err, "failed to marshal reminder list", "patient_id", patientID)
		return
	}
	s.store.Set(kvstore.RemindersKey(patientID), string(data))
}
