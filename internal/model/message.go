package model

// DoctorMessage is an asynchronous doctor-to-patient message held by
// the backend, independent of the sync packet lifecycle.
type DoctorMessage struct {
	MessageID  string     `json:"messageId"`
	PatientID  string     `json:"patientId"`
	Content    string     `json:"content"`
	Medication string     `json:"medication,omitempty"`
	Type       RecordType `json:"type"`
	Doctor     DoctorInfo `json:"doctor"`
	Timestamp  int64      `json:"timestamp"`
}

type SendDoctorMessageRequest struct {
	PatientID  string     `json:"patientId" binding:"required"`
	Content    string     `json:"content" binding:"required"`
	Medication string     `json:"medication"`
	Type       RecordType `json:"type"`
	Doctor     DoctorInfo `json:"doctor"`
}

type PatientMessagesResponse struct {
	Messages []DoctorMessage `json:"messages"`
}
