// Package assist hosts the low-literacy helpers: phrasing doctor
// replies as simple instructions and the speech endpoints the device
// falls back to when on-device recognition is unavailable.
package assist

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ruralcare/telemed/internal/handler"
	"github.com/ruralcare/telemed/internal/model"
)

// canned transcriptions, picked deterministically per audio payload.
var transcriptions = []string{
	"I have fever and headache",
	"My stomach is paining",
	"I feel dizzy",
	"I have chest pain",
	"My back hurts",
}

type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/patient-response", h.PatientResponse)
	r.POST("/speech-to-text", h.SpeechToText)
	r.POST("/text-to-speech", h.TextToSpeech)
}

// PatientResponse turns a doctor's note into patient-facing text plus
// pictographic icons for non-readers.
func (h *Handler) PatientResponse(c *gin.Context) {
	var req model.PatientResponseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	var resp model.PatientResponseResponse
	if req.Medication != "" {
		resp.Text = "Take " + req.Medication + " as prescribed. Complete the full course."
		resp.Icons = []string{"SUN", "MOON", "FOOD"}
	} else {
		resp.Text = req.Note + ". Rest well and stay hydrated."
		resp.Icons = []string{"SUN"}
	}
	c.JSON(http.StatusOK, resp)
}

// SpeechToText transcribes an audio payload. There is no recognizer in
// the demo backend; the hash keeps repeated uploads stable.
func (h *Handler) SpeechToText(c *gin.Context) {
	var req model.SpeechToTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("audio is required"))
		return
	}

	c.JSON(http.StatusOK, model.SpeechToTextResponse{
		Text: transcriptions[contentHash(req.Audio)%uint32(len(transcriptions))],
	})
}

// TextToSpeech acknowledges a synthesis request. Audio generation is
// delegated to the device, so the payload is always null.
func (h *Handler) TextToSpeech(c *gin.Context) {
	var req model.TextToSpeechRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("text is required"))
		return
	}

	c.JSON(http.StatusOK, model.TextToSpeechResponse{Audio: nil})
}

func contentHash(s string) uint32 {
	var h int32
	for _, c := range s {
		h = (h << 5) - h + int32(c)
	}
	if h < 0 {
		h = -h
	}
	return uint32(h)
}
