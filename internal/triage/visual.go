package triage

import (
	"fmt"

	"github.com/ruralcare/telemed/internal/model"
)

type visualPattern struct {
	urgency  model.Severity
	category string
}

var visualPatterns = []visualPattern{
	{model.SeverityMedium, "Dermatology"},
	{model.SeverityHigh, "Surgery"},
	{model.SeverityHigh, "Orthopedics"},
	{model.SeverityMedium, "Ophthalmology"},
	{model.SeverityLow, "Dermatology"},
}

// TriageImage produces deterministic findings for a base64 image
// payload. The demo backend has no vision model; the hash keeps the
// result stable for the same image so re-syncs do not flap.
func TriageImage(imageData string) model.VisualTriageResponse {
	matched := visualPatterns[contentHash(imageData)%uint32(len(visualPatterns))]
	return model.VisualTriageResponse{
		Findings: fmt.Sprintf("Visual indicators suggest %s concern", matched.category),
		Urgency:  matched.urgency,
	}
}

// contentHash is the 31-bit string hash the original triage rules used.
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
