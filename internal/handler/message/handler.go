// Package message handles the asynchronous doctor-to-patient channel.
package message

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/ruralcare/telemed/internal/handler"
	"github.com/ruralcare/telemed/internal/model"
	"github.com/ruralcare/telemed/internal/store"
	"github.com/ruralcare/telemed/pkg/messaging"
)

type Handler struct {
	messages *store.MessageStore
	broker   messaging.Broker
}

func NewHandler(messages *store.MessageStore, broker messaging.Broker) *Handler {
	return &Handler{messages: messages, broker: broker}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/send-doctor-message", h.SendDoctorMessage)
	r.GET("/get-patient-messages", h.PatientMessages)
}

// SendDoctorMessage queues a doctor reply for a patient. A message that
// names a medication becomes a prescription on the patient side.
func (h *Handler) SendDoctorMessage(c *gin.Context) {
	var req model.SendDoctorMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	msgType := req.Type
	if msgType == "" {
		msgType = model.RecordTypeDoctorNote
		if req.Medication != "" {
			msgType = model.RecordTypePrescription
		}
	}

	msg := model.DoctorMessage{
		MessageID:  uuid.NewString(),
		PatientID:  req.PatientID,
		Content:    req.Content,
		Medication: req.Medication,
		Type:       msgType,
		Doctor:     req.Doctor,
		Timestamp:  time.Now().UnixMilli(),
	}
	h.messages.Append(msg)

	if h.broker != nil {
		if err := h.broker.Publish(c.Request.Context(), messaging.ChannelDoctorMessage, msg); err != nil {
			log.Warn().Err(err).Msg("doctor message publish failed")
		}
	}

	log.Info().
		Str("message_id", msg.MessageID).
		Str("patient_id", msg.PatientID).
		Str("type", string(msgType)).
		Msg("doctor message queued")

	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"messageId": msg.MessageID}))
}

// PatientMessages returns the patient's inbox, oldest first.
func (h *Handler) PatientMessages(c *gin.Context) {
	patientID := c.Query("patientId")
	if patientID == "" {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("patientId is required"))
		return
	}

	c.JSON(http.StatusOK, model.PatientMessagesResponse{
		Messages: h.messages.ForPatient(patientID),
	})
}
