package summaries

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/JaimeStill/medbrief/pkg/query"
	"github.com/JaimeStill/medbrief/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "clinical_summaries", "cs").
	Project("id", "ID").
	Project("created_at", "CreatedAt").
	Project("patient_name", "PatientName").
	Project("files", "Files").
	Project("gemini_file_uris", "GeminiFileURIs").
	Project("resume_clinique", "ResumeClinique").
	Project("points_de_vigilance", "PointsDeVigilance").
	Project("comparaison_historique", "ComparaisonHistorique").
	Project("red_flags", "RedFlags").
	Project("note_medicale_brute", "NoteMedicaleBrute").
	Project("a_expliquer_au_patient", "AExpliquerAuPatient").
	Project("audio_brief_base64", "AudioBriefBase64").
	Project("generation_time_ms", "GenerationTimeMs").
	Project("inconsistencies", "Inconsistencies")

var itemProjection = query.
	NewProjectionMap("public", "clinical_summaries", "cs").
	Project("id", "ID").
	Project("created_at", "CreatedAt").
	Project("patient_name", "PatientName").
	Project("files", "Files").
	Project("resume_clinique", "ResumeClinique").
	Project("red_flags", "RedFlags").
	Project("inconsistencies", "Inconsistencies").
	Project("generation_time_ms", "GenerationTimeMs")

var defaultSort = query.SortField{
	Field:      "CreatedAt",
	Descending: true,
}

// Filters contains optional filtering criteria for summary queries.
// PatientName uses case-insensitive contains matching.
type Filters struct {
	PatientName *string `json:"patient_name,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.WhereContains("PatientName", f.PatientName)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if n := values.Get("patient_name"); n != "" {
		f.PatientName = &n
	}

	return f
}

func scanSummary(s repository.Scanner) (ClinicalSummary, error) {
	var (
		cs                                                ClinicalSummary
		files, uris, vigilance, redFlags, inconsistencies []byte
	)

	err := s.Scan(
		&cs.ID,
		&cs.CreatedAt,
		&cs.PatientName,
		&files,
		&uris,
		&cs.ResumeClinique,
		&vigilance,
		&cs.ComparaisonHistorique,
		&redFlags,
		&cs.NoteMedicaleBrute,
		&cs.AExpliquerAuPatient,
		&cs.AudioBriefBase64,
		&cs.GenerationTimeMs,
		&inconsistencies,
	)
	if err != nil {
		return cs, err
	}

	if err := decodeColumns(map[string]decodeTarget{
		"files":               {files, &cs.Files},
		"gemini_file_uris":    {uris, &cs.GeminiFileURIs},
		"points_de_vigilance": {vigilance, &cs.PointsDeVigilance},
		"red_flags":           {redFlags, &cs.RedFlags},
		"inconsistencies":     {inconsistencies, &cs.Inconsistencies},
	}); err != nil {
		return cs, err
	}

	cs.normalize()
	return cs, nil
}

func scanItem(s repository.Scanner) (Item, error) {
	var (
		item                             Item
		cs                               ClinicalSummary
		files, redFlags, inconsistencies []byte
	)

	err := s.Scan(
		&item.ID,
		&item.CreatedAt,
		&item.PatientName,
		&files,
		&item.ResumeClinique,
		&redFlags,
		&inconsistencies,
		&item.GenerationTimeMs,
	)
	if err != nil {
		return item, err
	}

	if err := decodeColumns(map[string]decodeTarget{
		"files":           {files, &cs.Files},
		"red_flags":       {redFlags, &cs.RedFlags},
		"inconsistencies": {inconsistencies, &cs.Inconsistencies},
	}); err != nil {
		return item, err
	}

	cs.normalize()
	item.FileCount = len(cs.Files)
	item.RedFlags = cs.RedFlags
	item.Urgency = cs.Urgency
	return item, nil
}

type decodeTarget struct {
	raw []byte
	dst any
}

func decodeColumns(cols map[string]decodeTarget) error {
	for name, col := range cols {
		if len(col.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(col.raw, col.dst); err != nil {
			return fmt.Errorf("decode %s: %w", name, err)
		}
	}
	return nil
}

// jsonArg marshals v for a jsonb parameter.
func jsonArg(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
