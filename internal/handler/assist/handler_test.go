package assist

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruralcare/telemed/internal/model"
)

func setup() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler().RegisterRoutes(r.Group("/api"))
	return r
}

func post(t *testing.T, r *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	payload, _ := json.Marshal(body)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestPatientResponse_WithMedication(t *testing.T) {
	r := setup()

	w := post(t, r, "/api/patient-response", model.PatientResponseRequest{
		Note:       "Fungal infection",
		Medication: "Clotrimazole cream",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp model.PatientResponseResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Take Clotrimazole cream as prescribed. Complete the full course.", resp.Text)
	assert.Equal(t, []string{"SUN", "MOON", "FOOD"}, resp.Icons)
}

func TestPatientResponse_NoteOnly(t *testing.T) {
	r := setup()

	w := post(t, r, "/api/patient-response", model.PatientResponseRequest{
		Note: "Drink boiled water",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp model.PatientResponseResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Drink boiled water. Rest well and stay hydrated.", resp.Text)
	assert.Equal(t, []string{"SUN"}, resp.Icons)
}

func TestSpeechToText_DeterministicPerPayload(t *testing.T) {
	r := setup()

	w1 := post(t, r, "/api/speech-to-text", model.SpeechToTextRequest{Audio: "b64-audio"})
	require.Equal(t, http.StatusOK, w1.Code)
	var first model.SpeechToTextResponse
	require.NoError(t, json.Unmarshal(w1.Body.Bytes(), &first))
	assert.Contains(t, transcriptions, first.Text)

	w2 := post(t, r, "/api/speech-to-text", model.SpeechToTextRequest{Audio: "b64-audio"})
	var second model.SpeechToTextResponse
	require.NoError(t, json.Unmarshal(w2.Body.Bytes(), &second))
	assert.Equal(t, first.Text, second.Text)
}

func TestSpeechToText_RequiresAudio(t *testing.T) {
	r := setup()
	w := post(t, r, "/api/speech-to-text", model.SpeechToTextRequest{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTextToSpeech_AudioIsNull(t *testing.T) {
	r := setup()

	w := post(t, r, "/api/text-to-speech", model.TextToSpeechRequest{Text: "Take medicine at sunrise"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"audio":null}`, w.Body.String())
}
