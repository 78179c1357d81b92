package store

import (
	"sort"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/ruralcare/telemed/internal/model"
)

// messageTTL bounds how long undelivered doctor messages are held.
const messageTTL = 7 * 24 * time.Hour

// MessageStore holds doctor-to-patient messages keyed by patient id.
// Appends are guarded by a mutex: go-cache serializes single
// operations but not read-modify-write.
type MessageStore struct {
	mu    sync.Mutex
	cache *gocache.Cache
}

func NewMessageStore() *MessageStore {
	return &MessageStore{
		cache: gocache.New(messageTTL, time.Hour),
	}
}

// Append adds a message to the patient's inbox.
func (s *MessageStore) Append(msg model.DoctorMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var inbox []model.DoctorMessage
	if item, ok := s.cache.Get(msg.PatientID); ok {
		inbox = item.([]model.DoctorMessage)
	}
	inbox = append(inbox, msg)
	s.cache.Set(msg.PatientID, inbox, messageTTL)
}

// ForPatient returns the patient's messages, oldest first.
func (s *MessageStore) ForPatient(patientID string) []model.DoctorMessage {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.cache.Get(patientID)
	if !ok {
		return []model.DoctorMessage{}
	}
	inbox := append([]model.DoctorMessage(nil), item.([]model.DoctorMessage)...)
	sort.Slice(inbox, func(i, j int) bool { return inbox[i].Timestamp < inbox[j].Timestamp })
	return inbox
}
