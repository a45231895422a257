// Package timeline stores the dated clinical events extracted from a
// patient's documents. Events belong to exactly one clinical summary and
// are removed with it.
package timeline

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Event categories.
const (
	TypeExamination     = "examination"
	TypeConsultation    = "consultation"
	TypeHospitalization = "hospitalization"
	TypeTreatment       = "treatment"
	TypeDiagnosis       = "diagnosis"
	TypeImaging         = "imaging"
	TypeOther           = "other"
)

// UnknownSource is recorded when the model names no source document.
const UnknownSource = "unknown"

var eventTypes = []string{
	TypeExamination,
	TypeConsultation,
	TypeHospitalization,
	TypeTreatment,
	TypeDiagnosis,
	TypeImaging,
	TypeOther,
}

// EventTypes returns the accepted event categories.
func EventTypes() []string {
	return eventTypes
}

// Event is a persisted timeline entry. PatientName is filled on listings
// that span summaries.
type Event struct {
	ID             uuid.UUID `json:"id"`
	SummaryID      uuid.UUID `json:"summary_id"`
	EventDate      time.Time `json:"event_date"`
	EventType      string    `json:"event_type"`
	Description    string    `json:"description"`
	DocumentSource string    `json:"document_source"`
	CreatedAt      time.Time `json:"created_at"`
	PatientName    *string   `json:"patient_name,omitempty"`
}

// Draft is an event as produced by the model, before validation.
type Draft struct {
	EventDate      string
	EventType      string
	Description    string
	DocumentSource string
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006-01",
}

// ParseDate accepts RFC 3339, local date-times and bare dates. Dates
// without a zone are taken as UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)

	var err error
	for _, layout := range dateLayouts {
		var t time.Time
		if t, err = time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}

// NormalizeType maps unknown categories to TypeOther.
func NormalizeType(t string) string {
	t = strings.ToLower(strings.TrimSpace(t))
	if slices.Contains(eventTypes, t) {
		return t
	}
	return TypeOther
}

type row struct {
	date   time.Time
	typ    string
	desc   string
	source string
}

// prepare converts drafts into insertable rows and reports the drafts it
// had to drop.
func prepare(drafts []Draft) ([]row, []Draft) {
	rows := make([]row, 0, len(drafts))
	var skipped []Draft

	for _, d := range drafts {
		date, err := ParseDate(d.EventDate)
		if err != nil || strings.TrimSpace(d.Description) == "" {
			skipped = append(skipped, d)
			continue
		}

		source := strings.TrimSpace(d.DocumentSource)
		if source == "" {
			source = UnknownSource
		}

		rows = append(rows, row{
			date:   date,
			typ:    NormalizeType(d.EventType),
			desc:   strings.TrimSpace(d.Description),
			source: source,
		})
	}

	return rows, skipped
}
