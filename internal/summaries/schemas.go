package summaries

import "github.com/JaimeStill/medbrief/pkg/openapi"

// Schemas returns the component schemas referenced by Routes.
func Schemas() map[string]*openapi.Schema {
	str := &openapi.Schema{Type: "string"}
	strList := &openapi.Schema{Type: "array", Items: str}
	urgency := &openapi.Schema{
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"score": {Type: "integer"},
			"level": {Type: "string", Enum: []any{UrgencyRoutine, UrgencyModerate, UrgencyUrgent}},
		},
	}

	return map[string]*openapi.Schema{
		"FileRef": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"filename":    str,
				"size":        {Type: "integer"},
				"mimetype":    str,
				"file_uri":    str,
				"file_name":   str,
				"state":       str,
				"page_count":  {Type: "integer"},
				"storage_key": str,
			},
		},
		"Inconsistency": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"type":        {Type: "string", Enum: []any{"biological", "treatment", "missing_info", "temporal"}},
				"severity":    {Type: "string", Enum: []any{"low", "medium", "high"}},
				"description": str,
				"details":     str,
			},
		},
		"ClinicalSummary": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"id":                     {Type: "string", Format: "uuid"},
				"created_at":             {Type: "string", Format: "date-time"},
				"patient_name":           str,
				"files":                  {Type: "array", Items: openapi.SchemaRef("FileRef")},
				"gemini_file_uris":       strList,
				"resume_clinique":        str,
				"points_de_vigilance":    strList,
				"comparaison_historique": str,
				"red_flags":              strList,
				"note_medicale_brute":    str,
				"a_expliquer_au_patient": str,
				"audio_brief_base64":     {Type: "string", Description: "Base64 MPEG audio, null when narration failed"},
				"generation_time_ms":     {Type: "integer"},
				"inconsistencies":        {Type: "array", Items: openapi.SchemaRef("Inconsistency")},
				"timeline_events":        {Type: "array", Items: openapi.SchemaRef("TimelineEvent")},
				"urgency":                urgency,
			},
		},
		"SummaryResponse": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"success": {Type: "boolean"},
				"summary": openapi.SchemaRef("ClinicalSummary"),
			},
		},
		"SummaryItem": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"id":                 {Type: "string", Format: "uuid"},
				"created_at":         {Type: "string", Format: "date-time"},
				"patient_name":       str,
				"file_count":         {Type: "integer"},
				"resume_clinique":    str,
				"red_flags":          strList,
				"generation_time_ms": {Type: "integer"},
				"urgency":            urgency,
			},
		},
		"SummaryPage": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"data":        {Type: "array", Items: openapi.SchemaRef("SummaryItem")},
				"total":       {Type: "integer"},
				"page":        {Type: "integer"},
				"page_size":   {Type: "integer"},
				"total_pages": {Type: "integer"},
			},
		},
		"SummarySearch": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"page":         {Type: "integer"},
				"page_size":    {Type: "integer"},
				"search":       str,
				"patient_name": str,
			},
		},
		"GenerateForm": {
			Type:     "object",
			Required: []string{"patientName", "files"},
			Properties: map[string]*openapi.Schema{
				"patientName": str,
				"files": {
					Type:  "array",
					Items: &openapi.Schema{Type: "string", Format: "binary"},
				},
			},
		},
	}
}
