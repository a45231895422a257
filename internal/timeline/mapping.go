package timeline

import (
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/medbrief/pkg/query"
	"github.com/JaimeStill/medbrief/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "medical_timeline", "t").
	Project("id", "ID").
	Project("summary_id", "SummaryID").
	Project("event_date", "EventDate").
	Project("event_type", "EventType").
	Project("description", "Description").
	Project("document_source", "DocumentSource").
	Project("created_at", "CreatedAt").
	Join("JOIN public.clinical_summaries s ON s.id = t.summary_id").
	ProjectJoined("s", "patient_name", "PatientName")

var defaultSort = query.SortField{
	Field:      "EventDate",
	Descending: true,
}

// Filters contains optional filtering criteria for timeline queries.
// From is inclusive and To exclusive.
type Filters struct {
	SummaryID *uuid.UUID `json:"summary_id,omitempty"`
	EventType *string    `json:"event_type,omitempty"`
	From      *time.Time `json:"from,omitempty"`
	To        *time.Time `json:"to,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("SummaryID", f.SummaryID).
		WhereEquals("EventType", f.EventType).
		WhereRange("EventDate", f.From, f.To)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if s := values.Get("summary_id"); s != "" {
		if id, err := uuid.Parse(s); err == nil {
			f.SummaryID = &id
		}
	}

	if t := values.Get("event_type"); t != "" {
		f.EventType = &t
	}

	f.From = dateParam(values.Get("from"))
	f.To = dateParam(values.Get("to"))

	return f
}

func dateParam(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := ParseDate(s)
	if err != nil {
		return nil
	}
	return &t
}

func scanEvent(s repository.Scanner) (Event, error) {
	var e Event
	err := s.Scan(
		&e.ID,
		&e.SummaryID,
		&e.EventDate,
		&e.EventType,
		&e.Description,
		&e.DocumentSource,
		&e.CreatedAt,
		&e.PatientName,
	)
	return e, err
}

func scanInserted(s repository.Scanner) (Event, error) {
	var e Event
	err := s.Scan(
		&e.ID,
		&e.SummaryID,
		&e.EventDate,
		&e.EventType,
		&e.Description,
		&e.DocumentSource,
		&e.CreatedAt,
	)
	return e, err
}
