package cases

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruralcare/telemed/internal/kvstore"
	"github.com/ruralcare/telemed/internal/model"
)

var asha = model.PatientProfile{
	PatientID: "PAT-ASHA_34_BIHAR",
	Name:      "Asha",
	Age:       34,
	District:  "Patna",
	State:     "Bihar",
}

func newTestService() *Service {
	s := NewService(kvstore.NewMemStore(), nil)
	base := time.Date(2026, 3, 1, 11, 0, 0, 0, time.UTC)
	n := 0
	s.now = func() time.Time {
		n++
		return base.Add(time.Duration(n) * time.Second)
	}
	return s
}

func TestCreate(t *testing.T) {
	s := newTestService()

	c := s.Create(asha, "b64-image", "rash.jpg")
	assert.Contains(t, c.CaseID, "CASE-"+asha.PatientID)
	assert.Equal(t, CaseStatusPending, c.Status)
	require.Len(t, c.Images, 1)
	assert.Equal(t, "rash.jpg", c.Images[0].Filename)
	assert.NotNil(t, c.Replies)

	got, ok := s.Get(c.CaseID)
	require.True(t, ok)
	assert.Equal(t, c.CaseID, got.CaseID)
}

func TestByPatient_SharedListAcrossRoles(t *testing.T) {
	s := newTestService()

	mine := s.Create(asha, "b64", "a.jpg")
	ravi := model.PatientProfile{PatientID: "PAT-RAVI_40_UP", Name: "Ravi", Age: 40}
	s.Create(ravi, "b64", "b.jpg")

	// Doctor role sees all cases on the device.
	assert.Len(t, s.All(), 2)

	byAsha := s.ByPatient(asha.PatientID)
	require.Len(t, byAsha, 1)
	assert.Equal(t, mine.CaseID, byAsha[0].CaseID)
}

func TestAddReply_MovesToReviewed(t *testing.T) {
	s := newTestService()
	c := s.Create(asha, "b64", "rash.jpg")

	doctor := model.DoctorInfo{Name: "Dr. Rao", Specialization: "Dermatology", ClinicID: "CLN-1"}
	got, err := s.AddReply(c.CaseID, doctor, "Apply ointment twice daily",
		model.RecordTypePrescription, "Clotrimazole")
	require.NoError(t, err)

	assert.Equal(t, CaseStatusReviewed, got.Status)
	require.Len(t, got.Replies, 1)
	assert.Equal(t, "Dr. Rao", got.Replies[0].DoctorName)
	assert.Equal(t, "Clotrimazole", got.Replies[0].Medication)
	assert.Greater(t, got.UpdatedAt, got.CreatedAt)

	_, err = s.AddReply("CASE-missing", doctor, "x", model.RecordTypeDoctorNote, "")
	assert.Error(t, err)
}

func TestResolve(t *testing.T) {
	s := newTestService()
	c := s.Create(asha, "b64", "rash.jpg")

	require.NoError(t, s.Resolve(c.CaseID))
	got, _ := s.Get(c.CaseID)
	assert.Equal(t, CaseStatusResolved, got.Status)

	assert.Error(t, s.Resolve("CASE-missing"))
}

func TestAll_MalformedReadsEmpty(t *testing.T) {
	store := kvstore.NewMemStore()
	store.Set(kvstore.KeyMedicalCases, "oops")
	s := NewService(store, nil)
	assert.Empty(t, s.All())
}
