package model

// PatientContext is the demographics and history snapshot attached to a
// sync packet so a doctor can act without a second round trip.
type PatientContext struct {
	Age           int    `json:"age"`
	Location      string `json:"location"`
	State         string `json:"state"`
	District      string `json:"district"`
	StreetVillage string `json:"streetVillage,omitempty"`
	PhoneNumber   string `json:"phoneNumber,omitempty"`
	Language      string `json:"language,omitempty"`
	History       string `json:"history,omitempty"`
}

// CurrentSymptoms describes the episode being submitted.
type CurrentSymptoms struct {
	Description string   `json:"description"`
	Severity    Severity `json:"severity"`
	Duration    string   `json:"duration"`
}

// SyncPacket is the backend-side routed case bundle a doctor consumes
// and retires. It is never persisted on the patient device.
type SyncPacket struct {
	PacketID           string           `json:"packetId"`
	PatientID          string           `json:"patientId"`
	PatientName        string           `json:"patientName"`
	Summary            string           `json:"summary"`
	SuggestedSpecialty string           `json:"suggestedSpecialty"`
	Urgency            Severity         `json:"urgency"`
	Timestamp          int64            `json:"timestamp"`
	PatientContext     PatientContext   `json:"patientContext"`
	CurrentSymptoms    *CurrentSymptoms `json:"currentSymptoms,omitempty"`
}

// DeltaSyncRequest is the POST /api/delta-sync body. Vault carries the
// full identity snapshot; the backend rejects submissions without
// name and age.
type DeltaSyncRequest struct {
	Vault           PatientVault     `json:"vault" binding:"required"`
	NewSymptoms     string           `json:"newSymptoms" binding:"required"`
	CurrentSymptoms *CurrentSymptoms `json:"currentSymptoms,omitempty"`
}

type DeltaSyncResponse struct {
	Summary            string   `json:"summary"`
	Urgency            Severity `json:"urgency"`
	SuggestedSpecialty string   `json:"suggestedSpecialty"`
	PacketSize         string   `json:"packetSize"`
	PatientID          string   `json:"patientId"`
}

type FetchPacketsResponse struct {
	Packets    []SyncPacket `json:"packets"`
	TotalCount int          `json:"totalCount"`
	LastSync   int64        `json:"lastSync"`
}

type MarkPacketProcessedRequest struct {
	PacketID string `json:"packetId" binding:"required"`
	DoctorID string `json:"doctorId"`
}

type VisualTriageRequest struct {
	Image string `json:"image" binding:"required"`
}

type VisualTriageResponse struct {
	Findings string   `json:"findings"`
	Urgency  Severity `json:"urgency"`
}

// PatientResponseRequest asks the backend to phrase a doctor reply as
// patient-facing instructions.
type PatientResponseRequest struct {
	Note       string `json:"note"`
	Medication string `json:"medication"`
	Language   string `json:"language"`
}

type PatientResponseResponse struct {
	Text  string   `json:"text"`
	Icons []string `json:"icons"`
}

type SpeechToTextRequest struct {
	Audio    string `json:"audio" binding:"required"`
	Language string `json:"language"`
}

type SpeechToTextResponse struct {
	Text string `json:"text"`
}

type TextToSpeechRequest struct {
	Text string `json:"text" binding:"required"`
}

type TextToSpeechResponse struct {
	Audio *string `json:"audio"`
}
