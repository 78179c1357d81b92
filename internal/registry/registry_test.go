package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruralcare/telemed/internal/kvstore"
	"github.com/ruralcare/telemed/internal/model"
)

func TestGeneratePatientID(t *testing.T) {
	tests := []struct {
		name     string
		age      int
		location string
		want     string
	}{
		{"Asha Devi", 34, "Bihar", "PAT-ASHA_DEVI_34_BIHAR"},
		{"Ravi", 40, "Uttar Pradesh", "PAT-RAVI_40_UTTAR_PRADESH"},
		{"O'Brien", 28, "Delhi-NCR", "PAT-O_BRIEN_28_DELHI_NCR"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, GeneratePatientID(tt.name, tt.age, tt.location))
	}
}

func TestGeneratePatientID_Deterministic(t *testing.T) {
	a := GeneratePatientID("Asha", 34, "Bihar")
	b := GeneratePatientID("Asha", 34, "Bihar")
	assert.Equal(t, a, b)

	c := GeneratePatientID("Asha", 35, "Bihar")
	assert.NotEqual(t, a, c)
}

func TestRegistry_RegisterOrUpdate(t *testing.T) {
	r := New(kvstore.NewMemStore(), nil)

	asha := model.PatientProfile{PatientID: "PAT-ASHA_34_BIHAR", Name: "Asha", Age: 34, Location: "Bihar"}
	ravi := model.PatientProfile{PatientID: "PAT-RAVI_40_UP", Name: "Ravi", Age: 40, Location: "UP"}

	r.RegisterOrUpdate(asha)
	r.RegisterOrUpdate(ravi)
	require.Len(t, r.List(), 2)

	// Updating an existing profile keeps its position.
	asha.PhoneNumber = "9876543210"
	r.RegisterOrUpdate(asha)

	patients := r.List()
	require.Len(t, patients, 2)
	assert.Equal(t, "PAT-ASHA_34_BIHAR", patients[0].PatientID)
	assert.Equal(t, "9876543210", patients[0].PhoneNumber)
}

func TestRegistry_MalformedListReadsEmpty(t *testing.T) {
	store := kvstore.NewMemStore()
	store.Set(kvstore.KeyPatients, "{not json")

	r := New(store, nil)
	assert.Empty(t, r.List())

	// A registration after corruption recovers the list.
	r.RegisterOrUpdate(model.PatientProfile{PatientID: "PAT-X", Name: "X", Age: 1})
	assert.Len(t, r.List(), 1)
}

func TestRegistry_ActiveLifecycle(t *testing.T) {
	r := New(kvstore.NewMemStore(), nil)

	_, ok := r.Active()
	assert.False(t, ok)

	profile := model.PatientProfile{PatientID: "PAT-ASHA_34_BIHAR", Name: "Asha", Age: 34}
	r.SetActive(&profile)

	got, ok := r.Active()
	require.True(t, ok)
	assert.Equal(t, profile.PatientID, got.PatientID)

	r.SetActive(nil)
	_, ok = r.Active()
	assert.False(t, ok)
}

func TestRegistry_MalformedActiveReadsNone(t *testing.T) {
	store := kvstore.NewMemStore()
	store.Set(kvstore.KeyActivePatient, "garbage")

	r := New(store, nil)
	_, ok := r.Active()
	assert.False(t, ok)
}
