package prompts

const summarySpec = `From ALL provided documents, generate STRICTLY a valid JSON object in this format:

{
  "resume_clinique": "Global summary in a few sentences, factual (includes imaging observations if present)",
  "points_de_vigilance": ["point 1", "point 2"],
  "comparaison_historique": "What has changed compared to previous examinations if possible",
  "red_flags": ["potentially concerning element 1"],
  "note_medicale_brute": "Raw clinical note in SOAP format (SUBJECTIVE, OBJECTIVE, ASSESSMENT, PLAN)",
  "a_expliquer_au_patient": "Simple formulation to explain to the patient, in accessible language",
  "timeline_events": [
    {
      "event_date": "2024-03-15T10:30:00Z",
      "event_type": "examination | consultation | hospitalization | treatment | diagnosis | imaging",
      "description": "Event description",
      "document_source": "filename.pdf"
    }
  ],
  "inconsistencies": [
    {
      "type": "biological | treatment | missing_info | temporal",
      "severity": "low | medium | high",
      "description": "Short description (1 sentence)",
      "details": "Detailed explanation with relevant values/dates"
    }
  ]
}

Output constraints:
- Respond in English.
- Use empty arrays when nothing applies; never omit a field.
- event_date must be an ISO 8601 date or date-time.
- The JSON must be PARSABLE without error.
- Do NOT put the JSON in a markdown code block, return only raw JSON.`

const chatSpec = `Réponds en français, en texte libre, sans mise en forme JSON.`

const physicianLetterSpec = `CONSIGNES :
- Format classique de courrier médical (en-tête, objet, développement, formule de politesse)
- Ton professionnel et concis
- Mention des éléments cliniques pertinents
- Demande d'avis ou de prise en charge selon le contexte
- Maximum 400 mots

Génère uniquement le corps du courrier (sans les coordonnées, sans la date).`

const patientLetterSpec = `CONSIGNES :
- Langage simple et compréhensible
- Ton rassurant mais honnête
- Explication des résultats en termes accessibles
- Mention des prochaines étapes si nécessaire
- Encouragement au suivi et à poser des questions
- Maximum 300 mots

Génère uniquement le corps du courrier.`

const consultationReportSpec = `CONSIGNES :
- Format SOAP (Subjectif, Objectif, Évaluation, Plan)
- Concis et factuel
- Mention des examens complémentaires si nécessaire
- Plan de suivi clair
- Maximum 400 mots

Génère uniquement le compte-rendu.`

var specs = map[Stage]string{
	StageSummary:            summarySpec,
	StageChat:               chatSpec,
	StagePhysicianLetter:    physicianLetterSpec,
	StagePatientLetter:      patientLetterSpec,
	StageConsultationReport: consultationReportSpec,
}

// DefaultSpec returns the fixed output contract for a stage.
func DefaultSpec(stage Stage) (string, error) {
	text, ok := specs[stage]
	if !ok {
		return "", ErrInvalidStage
	}
	return text, nil
}
