package pipeline

import (
	"github.com/JaimeStill/medbrief/pkg/formatting"
	"github.com/JaimeStill/medbrief/pkg/gemini"
)

// Inconsistency categories and severities.
const (
	InconsistencyBiological  = "biological"
	InconsistencyTreatment   = "treatment"
	InconsistencyMissingInfo = "missing_info"
	InconsistencyTemporal    = "temporal"

	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

// Inconsistency is one contradiction the model found between documents.
type Inconsistency struct {
	Type        string `json:"type"`
	Severity    string `json:"severity"`
	Description string `json:"description"`
	Details     string `json:"details,omitempty"`
}

// TimelineEvent is a dated occurrence as emitted by the model.
// EventDate is unparsed.
type TimelineEvent struct {
	EventDate      string `json:"event_date"`
	EventType      string `json:"event_type"`
	Description    string `json:"description"`
	DocumentSource string `json:"document_source"`
}

// Brief is the structured summary returned by the model.
type Brief struct {
	ResumeClinique        string          `json:"resume_clinique"`
	PointsDeVigilance     []string        `json:"points_de_vigilance"`
	ComparaisonHistorique string          `json:"comparaison_historique"`
	RedFlags              []string        `json:"red_flags"`
	NoteMedicaleBrute     string          `json:"note_medicale_brute"`
	AExpliquerAuPatient   string          `json:"a_expliquer_au_patient"`
	TimelineEvents        []TimelineEvent `json:"timeline_events"`
	Inconsistencies       []Inconsistency `json:"inconsistencies"`
}

// normalize replaces absent lists with empty ones.
func (b *Brief) normalize() {
	if b.PointsDeVigilance == nil {
		b.PointsDeVigilance = []string{}
	}
	if b.RedFlags == nil {
		b.RedFlags = []string{}
	}
	if b.TimelineEvents == nil {
		b.TimelineEvents = []TimelineEvent{}
	}
	if b.Inconsistencies == nil {
		b.Inconsistencies = []Inconsistency{}
	}
}

func extract(text string) (Brief, error) {
	brief, err := formatting.Parse[Brief](text)
	if err != nil {
		return Brief{}, err
	}
	brief.normalize()
	return brief, nil
}

// BriefSchema is the responseSchema sent with every summary request.
func BriefSchema() *gemini.Schema {
	str := func(desc string) *gemini.Schema {
		return &gemini.Schema{Type: gemini.TypeString, Description: desc}
	}
	list := func(desc string) *gemini.Schema {
		return &gemini.Schema{Type: gemini.TypeArray, Description: desc, Items: str("")}
	}

	return &gemini.Schema{
		Type: gemini.TypeObject,
		Properties: map[string]*gemini.Schema{
			"resume_clinique":        str("Clinical synopsis"),
			"points_de_vigilance":    list("Watch points"),
			"comparaison_historique": str("Comparison with prior documents"),
			"red_flags":              list("Critical alerts"),
			"note_medicale_brute":    str("SOAP-style raw note"),
			"a_expliquer_au_patient": str("Patient-facing explanation"),
			"timeline_events": {
				Type: gemini.TypeArray,
				Items: &gemini.Schema{
					Type: gemini.TypeObject,
					Properties: map[string]*gemini.Schema{
						"event_date": str("ISO 8601 date"),
						"event_type": {
							Type: gemini.TypeString,
							Enum: []string{"examination", "consultation", "hospitalization", "treatment", "diagnosis", "imaging", "other"},
						},
						"description":     str(""),
						"document_source": str("Source document name"),
					},
					Required: []string{"event_date", "event_type", "description", "document_source"},
				},
			},
			"inconsistencies": {
				Type: gemini.TypeArray,
				Items: &gemini.Schema{
					Type: gemini.TypeObject,
					Properties: map[string]*gemini.Schema{
						"type": {
							Type: gemini.TypeString,
							Enum: []string{InconsistencyBiological, InconsistencyTreatment, InconsistencyMissingInfo, InconsistencyTemporal},
						},
						"severity": {
							Type: gemini.TypeString,
							Enum: []string{SeverityLow, SeverityMedium, SeverityHigh},
						},
						"description": str(""),
						"details":     str(""),
					},
					Required: []string{"type", "severity", "description", "details"},
				},
			},
		},
		Required: []string{
			"resume_clinique",
			"points_de_vigilance",
			"comparaison_historique",
			"red_flags",
			"note_medicale_brute",
			"a_expliquer_au_patient",
			"timeline_events",
			"inconsistencies",
		},
	}
}
