package kvstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_SetGetRemove(t *testing.T) {
	store, err := NewFileStore(t.TempDir(), nil)
	require.NoError(t, err)

	_, ok := store.Get("missing")
	assert.False(t, ok)

	store.Set("patients", `[{"patientId":"PAT-X"}]`)
	got, ok := store.Get("patients")
	require.True(t, ok)
	assert.Equal(t, `[{"patientId":"PAT-X"}]`, got)

	store.Set("patients", "[]")
	got, _ = store.Get("patients")
	assert.Equal(t, "[]", got)

	store.Remove("patients")
	_, ok = store.Get("patients")
	assert.False(t, ok)

	store.Remove("patients")
}

func TestFileStore_SurvivesReopen(t *testing.T) {
	dir := t.TempDir()

	store, err := NewFileStore(dir, nil)
	require.NoError(t, err)
	store.Set(VaultKey("PAT-ASHA_34_BIHAR"), `{"patientId":"PAT-ASHA_34_BIHAR"}`)
	store.Set("activePatient", `{"patientId":"PAT-ASHA_34_BIHAR"}`)

	reopened, err := NewFileStore(dir, nil)
	require.NoError(t, err)

	got, ok := reopened.Get(VaultKey("PAT-ASHA_34_BIHAR"))
	require.True(t, ok)
	assert.Equal(t, `{"patientId":"PAT-ASHA_34_BIHAR"}`, got)

	assert.ElementsMatch(t, []string{VaultKey("PAT-ASHA_34_BIHAR"), "activePatient"}, reopened.Keys())
}

func TestFileStore_KeyWithUnsafeCharacters(t *testing.T) {
	store, err := NewFileStore(t.TempDir(), nil)
	require.NoError(t, err)

	key := SymptomsKey("PAT-RAVI_40_UTTAR_PRADESH")
	store.Set(key, "[]")

	got, ok := store.Get(key)
	require.True(t, ok)
	assert.Equal(t, "[]", got)
	assert.Contains(t, store.Keys(), key)
}

func TestMemStore(t *testing.T) {
	store := NewMemStore()

	store.Set("a", "1")
	store.Set("b", "2")

	got, ok := store.Get("a")
	require.True(t, ok)
	assert.Equal(t, "1", got)

	store.Remove("a")
	_, ok = store.Get("a")
	assert.False(t, ok)
	assert.Equal(t, []string{"b"}, store.Keys())
}

func TestLegacyStore_ReadFallsBackToAlias(t *testing.T) {
	inner := NewMemStore()
	inner.Set("hv_vault_PAT-X", `{"patientId":"PAT-X"}`)
	inner.Set("hv_patient_profiles", `[{"patientId":"PAT-X"}]`)
	inner.Set("hv_current_patient_profile", `{"patientId":"PAT-X"}`)

	store := WithLegacyAliases(inner)

	got, ok := store.Get(VaultKey("PAT-X"))
	require.True(t, ok)
	assert.Equal(t, `{"patientId":"PAT-X"}`, got)

	got, ok = store.Get(KeyPatients)
	require.True(t, ok)
	assert.Equal(t, `[{"patientId":"PAT-X"}]`, got)

	got, ok = store.Get(KeyActivePatient)
	require.True(t, ok)
	assert.Equal(t, `{"patientId":"PAT-X"}`, got)
}

func TestLegacyStore_CanonicalWins(t *testing.T) {
	inner := NewMemStore()
	inner.Set(VaultKey("PAT-X"), "new")
	inner.Set("hv_vault_PAT-X", "old")

	store := WithLegacyAliases(inner)
	got, ok := store.Get(VaultKey("PAT-X"))
	require.True(t, ok)
	assert.Equal(t, "new", got)
}

func TestLegacyStore_WritesMirrorToAliases(t *testing.T) {
	inner := NewMemStore()
	store := WithLegacyAliases(inner)

	store.Set(SymptomsKey("PAT-X"), "[]")

	got, ok := inner.Get("symptoms_history_PAT-X")
	require.True(t, ok)
	assert.Equal(t, "[]", got)

	store.Remove(SymptomsKey("PAT-X"))
	_, ok = inner.Get("symptoms_history_PAT-X")
	assert.False(t, ok)
	_, ok = inner.Get(SymptomsKey("PAT-X"))
	assert.False(t, ok)
}
