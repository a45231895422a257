// Package summaries implements the clinical summary domain: generating a
// brief from uploaded documents, archiving the sources, and serving the
// stored record, its narration and the patient list.
package summaries

import (
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/medbrief/internal/pipeline"
	"github.com/JaimeStill/medbrief/internal/timeline"
)

// FileRef describes one source document of a summary.
type FileRef struct {
	Filename   string `json:"filename"`
	Size       int64  `json:"size"`
	MimeType   string `json:"mimetype"`
	FileURI    string `json:"file_uri"`
	FileName   string `json:"file_name"`
	State      string `json:"state"`
	PageCount  *int   `json:"page_count,omitempty"`
	StorageKey string `json:"storage_key,omitempty"`
}

// ClinicalSummary is the stored result of one generation run.
// List fields are never nil.
type ClinicalSummary struct {
	ID                    uuid.UUID                `json:"id"`
	CreatedAt             time.Time                `json:"created_at"`
	PatientName           string                   `json:"patient_name"`
	Files                 []FileRef                `json:"files"`
	GeminiFileURIs        []string                 `json:"gemini_file_uris"`
	ResumeClinique        string                   `json:"resume_clinique"`
	PointsDeVigilance     []string                 `json:"points_de_vigilance"`
	ComparaisonHistorique string                   `json:"comparaison_historique"`
	RedFlags              []string                 `json:"red_flags"`
	NoteMedicaleBrute     string                   `json:"note_medicale_brute"`
	AExpliquerAuPatient   string                   `json:"a_expliquer_au_patient"`
	AudioBriefBase64      *string                  `json:"audio_brief_base64"`
	GenerationTimeMs      *int                     `json:"generation_time_ms"`
	Inconsistencies       []pipeline.Inconsistency `json:"inconsistencies"`
	TimelineEvents        []timeline.Event         `json:"timeline_events"`
	Urgency               Urgency                  `json:"urgency"`
}

// Item is the patient list projection of a summary.
type Item struct {
	ID               uuid.UUID `json:"id"`
	CreatedAt        time.Time `json:"created_at"`
	PatientName      string    `json:"patient_name"`
	FileCount        int       `json:"file_count"`
	ResumeClinique   string    `json:"resume_clinique"`
	RedFlags         []string  `json:"red_flags"`
	GenerationTimeMs *int      `json:"generation_time_ms"`
	Urgency          Urgency   `json:"urgency"`
}

// GenerateCommand is the input to Generate.
type GenerateCommand struct {
	PatientName string
	Files       []pipeline.File
}

// Response is the envelope returned by the generate endpoint.
type Response struct {
	Success bool             `json:"success"`
	Summary *ClinicalSummary `json:"summary,omitempty"`
}

func (s *ClinicalSummary) normalize() {
	if s.Files == nil {
		s.Files = []FileRef{}
	}
	if s.GeminiFileURIs == nil {
		s.GeminiFileURIs = []string{}
	}
	if s.PointsDeVigilance == nil {
		s.PointsDeVigilance = []string{}
	}
	if s.RedFlags == nil {
		s.RedFlags = []string{}
	}
	if s.Inconsistencies == nil {
		s.Inconsistencies = []pipeline.Inconsistency{}
	}
	if s.TimelineEvents == nil {
		s.TimelineEvents = []timeline.Event{}
	}
	s.Urgency = Assess(s.RedFlags, s.Inconsistencies)
}
