package chat

import (
	"github.com/JaimeStill/medbrief/internal/summaries"
	"github.com/JaimeStill/medbrief/pkg/gemini"
)

// Generation parameters for chat replies.
const (
	temperature     = 0.3
	maxOutputTokens = 2048
)

const defaultMimeType = "application/pdf"

// Handles returns the file parts stored against s, in upload order.
func Handles(s *summaries.ClinicalSummary) []gemini.Part {
	mime := make(map[string]string, len(s.Files))
	for _, f := range s.Files {
		if f.FileURI != "" && f.MimeType != "" {
			mime[f.FileURI] = f.MimeType
		}
	}

	parts := make([]gemini.Part, 0, len(s.GeminiFileURIs))
	for _, uri := range s.GeminiFileURIs {
		mt, ok := mime[uri]
		if !ok {
			mt = defaultMimeType
		}
		parts = append(parts, gemini.FilePart(mt, uri))
	}
	return parts
}

// BuildRequest replays turns in order, followed by one content holding the
// file handles.
func BuildRequest(instruction string, turns []Message, handles []gemini.Part) *gemini.GenerateRequest {
	contents := make([]gemini.Content, 0, len(turns)+1)
	for _, m := range turns {
		role := gemini.RoleModel
		if m.Role == RoleUser {
			role = gemini.RoleUser
		}
		contents = append(contents, gemini.Content{
			Role:  role,
			Parts: []gemini.Part{gemini.TextPart(m.Content)},
		})
	}
	contents = append(contents, gemini.Content{Role: gemini.RoleUser, Parts: handles})

	return &gemini.GenerateRequest{
		SystemInstruction: &gemini.Content{Parts: []gemini.Part{gemini.TextPart(instruction)}},
		Contents:          contents,
		GenerationConfig: &gemini.GenerationConfig{
			Temperature:     temperature,
			MaxOutputTokens: maxOutputTokens,
		},
	}
}
