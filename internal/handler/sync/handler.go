// Package sync implements the delta-sync surface: accepting pending
// symptom submissions from patient devices, routing them to a
// specialty, and serving the resulting packet feed to doctors.
package sync

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/ruralcare/telemed/internal/handler"
	"github.com/ruralcare/telemed/internal/model"
	"github.com/ruralcare/telemed/internal/registry"
	"github.com/ruralcare/telemed/internal/store"
	"github.com/ruralcare/telemed/internal/triage"
	"github.com/ruralcare/telemed/pkg/messaging"
	"github.com/ruralcare/telemed/pkg/metrics"
	"github.com/ruralcare/telemed/pkg/validator"
)

type Handler struct {
	packets   *store.PacketStore
	broker    messaging.Broker
	metrics   *metrics.Metrics
	validator *validator.Validator
}

func NewHandler(packets *store.PacketStore, broker messaging.Broker, m *metrics.Metrics) *Handler {
	return &Handler{
		packets:   packets,
		broker:    broker,
		metrics:   m,
		validator: validator.New(),
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/delta-sync", h.DeltaSync)
	r.GET("/fetch-sync-packets", h.FetchSyncPackets)
	r.POST("/mark-packet-processed", h.MarkPacketProcessed)
}

// DeltaSync accepts one batch of pending symptoms plus the patient
// context snapshot, routes it, and parks a packet for the doctor feed.
func (h *Handler) DeltaSync(c *gin.Context) {
	var req model.DeltaSyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	// Identity fields are mandatory: a packet without them is useless
	// to the doctor on the other end.
	if err := h.validator.Var(req.Vault.Name, "required"); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("vault.name is required"))
		return
	}
	if err := h.validator.Var(req.Vault.Age, "required,gt=0"); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("vault.age is required"))
		return
	}

	routing := triage.Classify(req.NewSymptoms)
	if h.metrics != nil {
		h.metrics.TriageRequests.WithLabelValues(routing.Specialty).Inc()
	}

	patientID := req.Vault.PatientID
	if patientID == "" {
		patientID = registry.GeneratePatientID(req.Vault.Name, req.Vault.Age, req.Vault.Location)
	}

	summary := fmt.Sprintf("Patient %s (%dy, %s, %s) reports: %s",
		req.Vault.Name, req.Vault.Age, req.Vault.Location, req.Vault.State, req.NewSymptoms)

	packet := model.SyncPacket{
		PacketID:           uuid.NewString(),
		PatientID:          patientID,
		PatientName:        req.Vault.Name,
		Summary:            summary,
		SuggestedSpecialty: routing.Specialty,
		Urgency:            routing.Urgency,
		Timestamp:          time.Now().UnixMilli(),
		PatientContext: model.PatientContext{
			Age:           req.Vault.Age,
			Location:      req.Vault.Location,
			State:         req.Vault.State,
			District:      req.Vault.District,
			StreetVillage: req.Vault.StreetVillage,
			PhoneNumber:   req.Vault.PhoneNumber,
			Language:      string(req.Vault.Language),
			History:       historySnapshot(req.Vault.Records),
		},
		CurrentSymptoms: req.CurrentSymptoms,
	}
	h.packets.Add(packet)
	h.publish(c.Request.Context(), messaging.ChannelPacketCreated, packet)

	log.Info().
		Str("packet_id", packet.PacketID).
		Str("patient_id", patientID).
		Str("specialty", routing.Specialty).
		Str("urgency", string(routing.Urgency)).
		Msg("delta sync accepted")

	c.JSON(http.StatusOK, model.DeltaSyncResponse{
		Summary:            summary,
		Urgency:            routing.Urgency,
		SuggestedSpecialty: routing.Specialty,
		PacketSize:         fmt.Sprintf("%dKB", (len(req.NewSymptoms)+99)/100),
		PatientID:          patientID,
	})
}

// FetchSyncPackets serves the doctor feed, newest first.
func (h *Handler) FetchSyncPackets(c *gin.Context) {
	specialty := c.Query("specialty")
	lastPacketID := c.Query("lastPacketId")

	packets := h.packets.List(specialty, lastPacketID)
	c.JSON(http.StatusOK, model.FetchPacketsResponse{
		Packets:    packets,
		TotalCount: len(packets),
		LastSync:   time.Now().UnixMilli(),
	})
}

// MarkPacketProcessed retires a packet. Idempotent: retiring an
// already-removed packet still succeeds.
func (h *Handler) MarkPacketProcessed(c *gin.Context) {
	var req model.MarkPacketProcessedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	existed := h.packets.MarkProcessed(req.PacketID)
	if existed {
		h.publish(c.Request.Context(), messaging.ChannelPacketProcessed, req)
	}

	log.Info().
		Str("packet_id", req.PacketID).
		Str("doctor_id", req.DoctorID).
		Bool("existed", existed).
		Msg("packet processed")

	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"processed": true}))
}

func (h *Handler) publish(ctx context.Context, channel string, payload interface{}) {
	if h.broker == nil {
		return
	}
	status := "success"
	if err := h.broker.Publish(ctx, channel, payload); err != nil {
		status = "error"
		log.Warn().Err(err).Str("channel", channel).Msg("event publish failed")
	}
	if h.metrics != nil {
		h.metrics.BrokerPublishes.WithLabelValues(channel, status).Inc()
	}
}

// historySnapshot condenses the already-synced symptom records into the
// context string doctors see alongside the new episode.
func historySnapshot(records []model.MedicalRecord) string {
	var past []string
	for _, rec := range records {
		if rec.Type == model.RecordTypeSymptom && rec.Status != model.RecordStatusPending {
			past = append(past, rec.Content)
		}
	}
	return strings.Join(past, "; ")
}
