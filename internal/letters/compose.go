package letters

import (
	"context"
	"strings"

	"github.com/JaimeStill/medbrief/internal/prompts"
	"github.com/JaimeStill/medbrief/internal/summaries"
	"github.com/JaimeStill/medbrief/pkg/gemini"
)

// Generation parameters for letter drafting.
const (
	temperature     = 0.7
	maxOutputTokens = 1024
)

// Sections renders the summary fields a letter of kind k is drafted from.
func Sections(k Kind, s *summaries.ClinicalSummary) []string {
	resume := section("RÉSUMÉ CLINIQUE", s.ResumeClinique)

	switch k {
	case KindPhysician:
		return []string{
			resume,
			section("POINTS DE VIGILANCE", strings.Join(s.PointsDeVigilance, "\n")),
			section("RED FLAGS", strings.Join(s.RedFlags, "\n")),
			section("NOTE MÉDICALE", s.NoteMedicaleBrute),
		}
	case KindPatient:
		return []string{
			resume,
			section("À EXPLIQUER AU PATIENT", s.AExpliquerAuPatient),
		}
	case KindReport:
		return []string{
			resume,
			section("NOTE MÉDICALE", s.NoteMedicaleBrute),
			section("POINTS DE VIGILANCE", strings.Join(s.PointsDeVigilance, "\n")),
		}
	default:
		return nil
	}
}

func section(title, body string) string {
	return title + " :\n" + strings.TrimSpace(body)
}

// Prompt composes the full drafting prompt for kind k.
func Prompt(ctx context.Context, src prompts.Source, k Kind, s *summaries.ClinicalSummary) (string, error) {
	return prompts.Compose(ctx, src, k.Stage(), Sections(k, s)...)
}

// Request builds the single-turn generateContent request for prompt.
func Request(prompt string) *gemini.GenerateRequest {
	return &gemini.GenerateRequest{
		Contents: []gemini.Content{{
			Role:  gemini.RoleUser,
			Parts: []gemini.Part{gemini.TextPart(prompt)},
		}},
		GenerationConfig: &gemini.GenerationConfig{
			Temperature:     temperature,
			MaxOutputTokens: maxOutputTokens,
		},
	}
}
