package gemini

import (
	"encoding/json"
	"strconv"
	"strings"

	"google.golang.org/genai"
)

// File states reported by the file API.
const (
	StateProcessing = "PROCESSING"
	StateActive     = "ACTIVE"
	StateFailed     = "FAILED"
)

// Roles accepted in generateContent contents.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// Schema types accepted by responseSchema.
const (
	TypeObject  = "OBJECT"
	TypeArray   = "ARRAY"
	TypeString  = "STRING"
	TypeInteger = "INTEGER"
	TypeNumber  = "NUMBER"
	TypeBoolean = "BOOLEAN"
)

// File is a document registered with the file API.
// SizeBytes keeps the API's decimal string form.
type File struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName,omitempty"`
	MimeType    string `json:"mimeType,omitempty"`
	SizeBytes   string `json:"sizeBytes,omitempty"`
	URI         string `json:"uri"`
	State       string `json:"state"`
}

// Active reports whether the file can be referenced by generation requests.
func (f *File) Active() bool {
	return f.State == StateActive
}

// FileData references an uploaded file from a content part.
type FileData struct {
	MimeType string `json:"mimeType"`
	FileURI  string `json:"fileUri"`
}

// Part is a single piece of content: text or a file reference.
type Part struct {
	Text     string    `json:"text,omitempty"`
	FileData *FileData `json:"fileData,omitempty"`
}

// TextPart returns a text content part.
func TextPart(text string) Part {
	return Part{Text: text}
}

// FilePart returns a content part referencing an uploaded file.
func FilePart(mimeType, uri string) Part {
	return Part{FileData: &FileData{MimeType: mimeType, FileURI: uri}}
}

// Content is one turn of a conversation.
type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}

// Schema constrains structured model output.
type Schema struct {
	Type        string             `json:"type"`
	Description string             `json:"description,omitempty"`
	Enum        []string           `json:"enum,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Required    []string           `json:"required,omitempty"`
	Items       *Schema            `json:"items,omitempty"`
}

// GenerationConfig holds sampling and output parameters.
type GenerationConfig struct {
	Temperature      float64 `json:"temperature"`
	TopK             int     `json:"topK,omitempty"`
	TopP             float64 `json:"topP,omitempty"`
	MaxOutputTokens  int     `json:"maxOutputTokens,omitempty"`
	ResponseMimeType string  `json:"responseMimeType,omitempty"`
	ResponseSchema   *Schema `json:"responseSchema,omitempty"`
}

// GenerateRequest is the generateContent request body.
type GenerateRequest struct {
	SystemInstruction *Content          `json:"systemInstruction,omitempty"`
	Contents          []Content         `json:"contents"`
	GenerationConfig  *GenerationConfig `json:"generationConfig,omitempty"`
}

// Candidate is one generated response option.
type Candidate struct {
	Content      Content `json:"content"`
	FinishReason string  `json:"finishReason,omitempty"`
}

// UsageMetadata reports token accounting for a call.
type UsageMetadata struct {
	PromptTokenCount     int `json:"promptTokenCount"`
	CandidatesTokenCount int `json:"candidatesTokenCount"`
	TotalTokenCount      int `json:"totalTokenCount"`
}

// GenerateResponse is the generateContent response body.
// Raw keeps the undecoded body for auditing.
type GenerateResponse struct {
	Candidates    []Candidate     `json:"candidates"`
	UsageMetadata *UsageMetadata  `json:"usageMetadata,omitempty"`
	Raw           json.RawMessage `json:"-"`
}

// Text joins the text parts of the first candidate.
func (r *GenerateResponse) Text() string {
	if r == nil || len(r.Candidates) == 0 {
		return ""
	}

	var sb strings.Builder
	for _, p := range r.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	return strings.TrimSpace(sb.String())
}

func fileFromSDK(f *genai.File) *File {
	out := &File{
		Name:        f.Name,
		DisplayName: f.DisplayName,
		MimeType:    f.MIMEType,
		URI:         f.URI,
		State:       string(f.State),
	}
	if f.SizeBytes != nil {
		out.SizeBytes = strconv.FormatInt(*f.SizeBytes, 10)
	}
	return out
}

func (r *GenerateRequest) sdk() ([]*genai.Content, *genai.GenerateContentConfig) {
	contents := make([]*genai.Content, 0, len(r.Contents))
	for _, c := range r.Contents {
		contents = append(contents, c.sdk())
	}

	config := &genai.GenerateContentConfig{}
	if r.SystemInstruction != nil {
		config.SystemInstruction = r.SystemInstruction.sdk()
	}

	if g := r.GenerationConfig; g != nil {
		config.Temperature = genai.Ptr(float32(g.Temperature))
		if g.TopK > 0 {
			config.TopK = genai.Ptr(float32(g.TopK))
		}
		if g.TopP > 0 {
			config.TopP = genai.Ptr(float32(g.TopP))
		}
		config.MaxOutputTokens = int32(g.MaxOutputTokens)
		config.ResponseMIMEType = g.ResponseMimeType
		config.ResponseSchema = g.ResponseSchema.sdk()
	}

	return contents, config
}

func (c Content) sdk() *genai.Content {
	parts := make([]*genai.Part, 0, len(c.Parts))
	for _, p := range c.Parts {
		if p.FileData != nil {
			parts = append(parts, genai.NewPartFromURI(p.FileData.FileURI, p.FileData.MimeType))
			continue
		}
		parts = append(parts, genai.NewPartFromText(p.Text))
	}
	return &genai.Content{Role: c.Role, Parts: parts}
}

func (s *Schema) sdk() *genai.Schema {
	if s == nil {
		return nil
	}

	out := &genai.Schema{
		Type:        genai.Type(s.Type),
		Description: s.Description,
		Enum:        s.Enum,
		Required:    s.Required,
		Items:       s.Items.sdk(),
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for name, prop := range s.Properties {
			out.Properties[name] = prop.sdk()
		}
	}
	return out
}
