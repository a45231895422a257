package summaries

import "github.com/JaimeStill/medbrief/internal/pipeline"

// Urgency levels.
const (
	UrgencyRoutine  = "routine"
	UrgencyModerate = "moderate"
	UrgencyUrgent   = "urgent"
)

const (
	redFlagWeight       = 10
	inconsistencyWeight = 5
	urgentThreshold     = 20
	moderateThreshold   = 10
)

// Urgency ranks a summary in the patient list.
type Urgency struct {
	Score int    `json:"score"`
	Level string `json:"level"`
}

// Assess scores red flags and high-severity inconsistencies.
func Assess(redFlags []string, inconsistencies []pipeline.Inconsistency) Urgency {
	score := len(redFlags) * redFlagWeight
	for _, inc := range inconsistencies {
		if inc.Severity == pipeline.SeverityHigh {
			score += inconsistencyWeight
		}
	}

	level := UrgencyRoutine
	switch {
	case score >= urgentThreshold:
		level = UrgencyUrgent
	case score >= moderateThreshold:
		level = UrgencyModerate
	}

	return Urgency{Score: score, Level: level}
}
