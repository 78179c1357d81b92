// Package triage maps free-text symptom descriptions to a medical
// specialty and urgency tier. The same rules run on the device as an
// offline fallback and on the backend as the authoritative router, so
// both sides must stay keyword-compatible.
package triage

import (
	"strings"

	"github.com/ruralcare/telemed/internal/model"
)

// Routing is the outcome of classifying a symptom description.
type Routing struct {
	Specialty string
	Urgency   model.Severity
}

// DefaultSpecialty is used when no rule matches.
const DefaultSpecialty = "General Medicine"

type rule struct {
	keywords  []string
	specialty string
	urgency   model.Severity
}

// Rule order encodes priority: cardiac keywords are checked before the
// generic buckets, first match wins.
var rules = []rule{
	{[]string{"chest", "heart"}, "Cardiology", model.SeverityHigh},
	{[]string{"skin", "rash", "itch"}, "Dermatology", model.SeverityMedium},
	{[]string{"bone", "joint", "back pain"}, "Orthopedics", model.SeverityMedium},
	{[]string{"child", "baby", "pediatric"}, "Pediatrics", model.SeverityMedium},
	{[]string{"woman", "pregnancy", "gynec"}, "Gynaecology", model.SeverityMedium},
}

// Classify routes a symptom description. Matching is case-insensitive
// substring search; unmatched text goes to General Medicine at MEDIUM.
func Classify(symptomText string) Routing {
	text := strings.ToLower(symptomText)
	for _, r := range rules {
		for _, kw := range r.keywords {
			if strings.Contains(text, kw) {
				return Routing{Specialty: r.specialty, Urgency: r.urgency}
			}
		}
	}
	return Routing{Specialty: DefaultSpecialty, Urgency: model.SeverityMedium}
}

// ClassifySeverity estimates episode severity from the wording alone.
// Used to fill CurrentSymptoms on a delta-sync submission.
func ClassifySeverity(symptomText string) model.Severity {
	text := strings.ToLower(symptomText)
	switch {
	case strings.Contains(text, "severe"),
		strings.Contains(text, "chest"),
		strings.Contains(text, "heart"):
		return model.SeverityHigh
	case strings.Contains(text, "mild"),
		strings.Contains(text, "slight"):
		return model.SeverityLow
	default:
		return model.SeverityMedium
	}
}
