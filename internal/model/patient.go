package model

// SupportedLanguage is the set of UI languages a patient can pick.
type SupportedLanguage string

const (
	LanguageEnglish SupportedLanguage = "English"
	LanguageHindi   SupportedLanguage = "Hindi"
	LanguageBengali SupportedLanguage = "Bengali"
	LanguageSwahili SupportedLanguage = "Swahili"
	LanguageTelugu  SupportedLanguage = "Telugu"
	LanguageMarathi SupportedLanguage = "Marathi"
	LanguageKannada SupportedLanguage = "Kannada"
	LanguageTamil   SupportedLanguage = "Tamil"
)

// PatientProfile identifies one patient on a shared device. The id is
// derived from (name, age, location) so re-onboarding the same person
// lands on the same profile.
type PatientProfile struct {
	PatientID     string            `json:"patientId"`
	Name          string            `json:"name"`
	Age           int               `json:"age"`
	Location      string            `json:"location"`
	State         string            `json:"state"`
	District      string            `json:"district"`
	StreetVillage string            `json:"streetVillage"`
	HouseNumber   string            `json:"houseNumber"`
	PhoneNumber   string            `json:"phoneNumber"`
	Language      SupportedLanguage `json:"language"`
}

// Complete reports whether the profile carries the identity fields the
// backend requires for a delta-sync submission.
func (p PatientProfile) Complete() bool {
	return p.Name != "" && p.Age > 0
}

// PatientVault is the per-patient durable record store.
type PatientVault struct {
	PatientProfile
	Records []MedicalRecord `json:"records"`
}

// DoctorProfile identifies a doctor session on this device.
type DoctorProfile struct {
	Name           string `json:"name"`
	Specialization string `json:"specialization"`
	ClinicID       string `json:"clinicId"`
}

// PharmacyProfile identifies a pharmacy session on this device.
type PharmacyProfile struct {
	Name     string `json:"name"`
	License  string `json:"license"`
	District string `json:"district"`
}
