package model

// ReminderTime is one scheduled dose slot within a day.
type ReminderTime struct {
	Time      string `json:"time"` // HH:MM
	Taken     bool   `json:"taken"`
	TakenAt   int64  `json:"takenAt,omitempty"`
	Skipped   bool   `json:"skipped"`
	SkippedAt int64  `json:"skippedAt,omitempty"`
}

// MedicineReminder is a per-patient medication schedule created from a
// doctor prescription.
type MedicineReminder struct {
	ID            string         `json:"id"`
	PatientID     string         `json:"patientId"`
	MedicineName  string         `json:"medicineName"`
	Dosage        string         `json:"dosage"`
	TimeSchedule  []string       `json:"timeSchedule"`
	StartDate     int64          `json:"startDate"`
	EndDate       int64          `json:"endDate,omitempty"`
	IsActive      bool           `json:"isActive"`
	Instructions  string         `json:"instructions,omitempty"`
	PrescribedBy  string         `json:"prescribedBy"`
	PrescribedAt  int64          `json:"prescribedDate"`
	ReminderTimes []ReminderTime `json:"reminderTimes"`
}
