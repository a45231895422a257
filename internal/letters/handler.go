package letters

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/JaimeStill/medbrief/pkg/gemini"
	"github.com/JaimeStill/medbrief/pkg/handlers"
	"github.com/JaimeStill/medbrief/pkg/openapi"
	"github.com/JaimeStill/medbrief/pkg/routes"
)

// Handler provides HTTP endpoints for letter operations.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// NewHandler creates a Handler with the given system and logger.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "letters"),
	}
}

// Routes returns the route group definition for letter endpoints.
func (h *Handler) Routes() routes.Group {
	id := openapi.PathParam("id", "Letter UUID")

	return routes.Group{
		Prefix: "/letters",
		Tags:   []string{"Letters"},
		Routes: []routes.Route{
			{Method: "POST", Pattern: "", Handler: h.Generate, OpenAPI: &openapi.Operation{
				Summary:     "Draft a letter from a stored summary",
				Description: "Replaces any previous letter of the same type for the summary and clears its edited flag.",
				RequestBody: openapi.RequestBodyJSON("GenerateLetter", true),
				Responses: map[int]*openapi.Response{
					200: openapi.ResponseJSON("Generated letter", "LetterResponse"),
					400: openapi.ResponseRef("BadRequest"),
					404: openapi.ResponseRef("NotFound"),
					429: openapi.ResponseRef("TooManyRequests"),
					500: openapi.ResponseRef("InternalError"),
					502: openapi.ResponseRef("BadGateway"),
				},
			}},
			{Method: "GET", Pattern: "/summary/{id}", Handler: h.ListBySummary, OpenAPI: &openapi.Operation{
				Summary:    "List a summary's letters",
				Parameters: []*openapi.Parameter{openapi.PathParam("id", "Summary UUID")},
				Responses: map[int]*openapi.Response{
					200: openapi.ResponseJSON("Letters", "LetterList"),
					400: openapi.ResponseRef("BadRequest"),
				},
			}},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find, OpenAPI: &openapi.Operation{
				Summary:    "Find letter by ID",
				Parameters: []*openapi.Parameter{id},
				Responses: map[int]*openapi.Response{
					200: openapi.ResponseJSON("Letter", "Letter"),
					400: openapi.ResponseRef("BadRequest"),
					404: openapi.ResponseRef("NotFound"),
				},
			}},
			{Method: "PUT", Pattern: "/{id}", Handler: h.Update, OpenAPI: &openapi.Operation{
				Summary:     "Save clinician edits",
				Parameters:  []*openapi.Parameter{id},
				RequestBody: openapi.RequestBodyJSON("UpdateLetter", true),
				Responses: map[int]*openapi.Response{
					200: openapi.ResponseJSON("Edited letter", "Letter"),
					400: openapi.ResponseRef("BadRequest"),
					404: openapi.ResponseRef("NotFound"),
				},
			}},
		},
	}
}

// Schemas returns the component schemas referenced by Routes.
func Schemas() map[string]*openapi.Schema {
	types := make([]any, len(kinds))
	for i, k := range kinds {
		types[i] = string(k)
	}

	return map[string]*openapi.Schema{
		"Letter": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"id":          {Type: "string", Format: "uuid"},
				"summary_id":  {Type: "string", Format: "uuid"},
				"letter_type": {Type: "string", Enum: types},
				"content":     {Type: "string"},
				"is_edited":   {Type: "boolean"},
				"created_at":  {Type: "string", Format: "date-time"},
				"updated_at":  {Type: "string", Format: "date-time"},
			},
		},
		"LetterList": {Type: "array", Items: openapi.SchemaRef("Letter")},
		"LetterResponse": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"success": {Type: "boolean"},
				"letter":  openapi.SchemaRef("Letter"),
			},
		},
		"GenerateLetter": {
			Type:     "object",
			Required: []string{"summaryId", "letterType"},
			Properties: map[string]*openapi.Schema{
				"summaryId":  {Type: "string", Format: "uuid"},
				"letterType": {Type: "string", Enum: types},
			},
		},
		"UpdateLetter": {
			Type:     "object",
			Required: []string{"content"},
			Properties: map[string]*openapi.Schema{
				"content": {Type: "string"},
			},
		},
	}
}

// Generate drafts and stores a letter.
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	var cmd GenerateCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	letter, err := h.sys.Generate(r.Context(), cmd)
	if err != nil {
		status := MapHTTPStatus(err)
		switch status {
		case http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable:
			handlers.RespondRetry(w, h.logger, status, err, gemini.RetryAfter(err))
		default:
			handlers.RespondError(w, h.logger, status, err)
		}
		return
	}

	handlers.RespondJSON(w, http.StatusOK, Response{Success: true, Letter: letter})
}

// ListBySummary returns the letters drafted for one summary.
func (h *Handler) ListBySummary(w http.ResponseWriter, r *http.Request) {
	id, err := handlers.PathID(r, "id")
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	letters, err := h.sys.ListBySummary(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, letters)
}

// Find returns a single letter by its UUID path parameter.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, err := handlers.PathID(r, "id")
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	letter, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, letter)
}

// Update saves the edited content of a letter.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := handlers.PathID(r, "id")
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	var cmd UpdateCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	letter, err := h.sys.Update(r.Context(), id, cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, letter)
}
