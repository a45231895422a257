// Package letters drafts correspondence from a stored clinical summary and
// keeps one editable letter per summary and kind.
package letters

import (
	"encoding/json"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/medbrief/internal/prompts"
)

// Kind identifies a letter template.
type Kind string

// Letter kinds.
const (
	KindPhysician Kind = "courrier_medecin"
	KindPatient   Kind = "courrier_patient"
	KindReport    Kind = "compte_rendu"
)

var kinds = []Kind{KindPhysician, KindPatient, KindReport}

var stages = map[Kind]prompts.Stage{
	KindPhysician: prompts.StagePhysicianLetter,
	KindPatient:   prompts.StagePatientLetter,
	KindReport:    prompts.StageConsultationReport,
}

// Kinds returns the supported letter kinds.
func Kinds() []Kind {
	return kinds
}

// ParseKind validates a string as a known letter kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !slices.Contains(kinds, k) {
		return "", ErrInvalidKind
	}
	return k, nil
}

// UnmarshalJSON rejects unknown kinds.
func (k *Kind) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	v, err := ParseKind(raw)
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// Stage returns the prompt stage that drafts letters of this kind.
func (k Kind) Stage() prompts.Stage {
	return stages[k]
}

// Letter is a generated letter, possibly edited by the clinician.
type Letter struct {
	ID         uuid.UUID `json:"id"`
	SummaryID  uuid.UUID `json:"summary_id"`
	LetterType Kind      `json:"letter_type"`
	Content    string    `json:"content"`
	IsEdited   bool      `json:"is_edited"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// GenerateCommand requests a letter for a summary.
type GenerateCommand struct {
	SummaryID  uuid.UUID `json:"summaryId"`
	LetterType Kind      `json:"letterType"`
}

// UpdateCommand replaces the letter body with the clinician's edit.
type UpdateCommand struct {
	Content string `json:"content"`
}

// Response is the envelope returned by the generate endpoint.
type Response struct {
	Success bool    `json:"success"`
	Letter  *Letter `json:"letter,omitempty"`
}
