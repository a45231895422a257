package prompts

import (
	"encoding/json"
	"slices"
)

// Stage identifies a generation call whose instructions can be overridden.
type Stage string

// Generation stages.
const (
	StageSummary            Stage = "summary"
	StageChat               Stage = "chat"
	StagePhysicianLetter    Stage = "physician_letter"
	StagePatientLetter      Stage = "patient_letter"
	StageConsultationReport Stage = "consultation_report"
)

var stages = []Stage{
	StageSummary,
	StageChat,
	StagePhysicianLetter,
	StagePatientLetter,
	StageConsultationReport,
}

// Stages returns the list of valid generation stages.
func Stages() []Stage {
	return stages
}

// UnmarshalJSON validates that the decoded string is a known stage value.
func (s *Stage) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	v, err := ParseStage(raw)
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// ParseStage validates a string as a known generation stage.
func ParseStage(s string) (Stage, error) {
	v := Stage(s)
	if !slices.Contains(stages, v) {
		return "", ErrInvalidStage
	}
	return v, nil
}
