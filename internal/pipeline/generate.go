package pipeline

import (
	"context"
	"fmt"

	"github.com/JaimeStill/medbrief/internal/prompts"
	"github.com/JaimeStill/medbrief/pkg/gemini"
)

// Sampling parameters for the summary call.
const (
	summaryTemperature = 0.2
	summaryTopK        = 40
	summaryTopP        = 0.95
	summaryMaxTokens   = 8192
)

func generate(ctx context.Context, rt *Runtime, files []Uploaded) (*gemini.GenerateResponse, error) {
	prompt, err := prompts.Compose(ctx, rt.Prompts, prompts.StageSummary)
	if err != nil {
		return nil, fmt.Errorf("%w: compose prompt: %w", gemini.ErrGeneration, err)
	}

	return rt.Gemini.Generate(ctx, SummaryRequest(prompt, files))
}

// SummaryRequest builds the generateContent body: the prompt followed by
// one file part per document, each carrying the MIME type it was uploaded with.
func SummaryRequest(prompt string, files []Uploaded) *gemini.GenerateRequest {
	parts := make([]gemini.Part, 0, len(files)+1)
	parts = append(parts, gemini.TextPart(prompt))
	for _, f := range files {
		parts = append(parts, gemini.FilePart(f.ContentType, f.Handle.URI))
	}

	return &gemini.GenerateRequest{
		Contents: []gemini.Content{{Role: gemini.RoleUser, Parts: parts}},
		GenerationConfig: &gemini.GenerationConfig{
			Temperature:      summaryTemperature,
			TopK:             summaryTopK,
			TopP:             summaryTopP,
			MaxOutputTokens:  summaryMaxTokens,
			ResponseMimeType: "application/json",
			ResponseSchema:   BriefSchema(),
		},
	}
}
