package prompts

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/JaimeStill/medbrief/pkg/handlers"
	"github.com/JaimeStill/medbrief/pkg/openapi"
	"github.com/JaimeStill/medbrief/pkg/pagination"
	"github.com/JaimeStill/medbrief/pkg/routes"
)

// Handler provides HTTP endpoints for prompt operations.
type Handler struct {
	sys        System
	logger     *slog.Logger
	pagination pagination.Config
}

// SearchRequest combines pagination and filter criteria for the search endpoint.
type SearchRequest struct {
	pagination.PageRequest
	Filters
}

// StageContent is the response type for stage-scoped content endpoints.
type StageContent struct {
	Stage   Stage  `json:"stage"`
	Content string `json:"content"`
}

// NewHandler creates a Handler with the given system, logger, and pagination config.
func NewHandler(
	sys System,
	logger *slog.Logger,
	pagination pagination.Config,
) *Handler {
	return &Handler{
		sys:        sys,
		logger:     logger.With("handler", "prompts"),
		pagination: pagination,
	}
}

// Routes returns the route group definition for prompt endpoints.
func (h *Handler) Routes() routes.Group {
	id := openapi.PathParam("id", "Prompt UUID")
	stage := openapi.PathParam("stage", "Generation stage")

	return routes.Group{
		Prefix: "/prompts",
		Tags:   []string{"Prompts"},
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List, OpenAPI: &openapi.Operation{
				Summary: "List prompt overrides",
				Parameters: []*openapi.Parameter{
					openapi.QueryParam("stage", "string", "Filter by stage"),
					openapi.QueryParam("name", "string", "Name contains"),
					openapi.QueryParam("active", "boolean", "Filter by active flag"),
				},
				Responses: map[int]*openapi.Response{200: openapi.ResponseJSON("Page of prompts", "PromptPage")},
			}},
			{Method: "GET", Pattern: "/stages", Handler: h.Stages, OpenAPI: &openapi.Operation{
				Summary:   "List generation stages",
				Responses: map[int]*openapi.Response{200: {Description: "Stage names"}},
			}},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find, OpenAPI: &openapi.Operation{
				Summary:    "Get a prompt override",
				Parameters: []*openapi.Parameter{id},
				Responses: map[int]*openapi.Response{
					200: openapi.ResponseJSON("Prompt", "Prompt"),
					404: openapi.ResponseRef("NotFound"),
				},
			}},
			{Method: "GET", Pattern: "/{stage}/instructions", Handler: h.Instructions, OpenAPI: &openapi.Operation{
				Summary:    "Effective instructions for a stage",
				Parameters: []*openapi.Parameter{stage},
				Responses:  map[int]*openapi.Response{200: openapi.ResponseJSON("Stage content", "StageContent")},
			}},
			{Method: "GET", Pattern: "/{stage}/spec", Handler: h.Spec, OpenAPI: &openapi.Operation{
				Summary:    "Fixed output contract for a stage",
				Parameters: []*openapi.Parameter{stage},
				Responses:  map[int]*openapi.Response{200: openapi.ResponseJSON("Stage content", "StageContent")},
			}},
			{Method: "POST", Pattern: "", Handler: h.Create, OpenAPI: &openapi.Operation{
				Summary:     "Create a prompt override",
				RequestBody: openapi.RequestBodyJSON("PromptCommand", true),
				Responses: map[int]*openapi.Response{
					201: openapi.ResponseJSON("Created", "Prompt"),
					400: openapi.ResponseRef("BadRequest"),
					409: openapi.ResponseRef("Conflict"),
				},
			}},
			{Method: "PUT", Pattern: "/{id}", Handler: h.Update, OpenAPI: &openapi.Operation{
				Summary:     "Update a prompt override",
				Parameters:  []*openapi.Parameter{id},
				RequestBody: openapi.RequestBodyJSON("PromptCommand", true),
				Responses: map[int]*openapi.Response{
					200: openapi.ResponseJSON("Updated", "Prompt"),
					404: openapi.ResponseRef("NotFound"),
				},
			}},
			{Method: "DELETE", Pattern: "/{id}", Handler: h.Delete, OpenAPI: &openapi.Operation{
				Summary:    "Delete a prompt override",
				Parameters: []*openapi.Parameter{id},
				Responses:  map[int]*openapi.Response{204: {Description: "Deleted"}, 404: openapi.ResponseRef("NotFound")},
			}},
			{Method: "POST", Pattern: "/search", Handler: h.Search, OpenAPI: &openapi.Operation{
				Summary:     "Search prompt overrides",
				RequestBody: openapi.RequestBodyJSON("PageRequest", false),
				Responses:   map[int]*openapi.Response{200: openapi.ResponseJSON("Page of prompts", "PromptPage")},
			}},
			{Method: "POST", Pattern: "/{id}/activate", Handler: h.Activate, OpenAPI: &openapi.Operation{
				Summary:    "Make a prompt the active override for its stage",
				Parameters: []*openapi.Parameter{id},
				Responses:  map[int]*openapi.Response{200: openapi.ResponseJSON("Activated", "Prompt")},
			}},
			{Method: "POST", Pattern: "/{id}/deactivate", Handler: h.Deactivate, OpenAPI: &openapi.Operation{
				Summary:    "Return a stage to its default instructions",
				Parameters: []*openapi.Parameter{id},
				Responses:  map[int]*openapi.Response{200: openapi.ResponseJSON("Deactivated", "Prompt")},
			}},
		},
	}
}

// Schemas returns the OpenAPI component schemas referenced by Routes.
func Schemas() map[string]*openapi.Schema {
	prompt := &openapi.Schema{
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"id":           {Type: "string", Format: "uuid"},
			"name":         {Type: "string"},
			"stage":        {Type: "string", Enum: stageEnum()},
			"instructions": {Type: "string"},
			"description":  {Type: "string"},
			"active":       {Type: "boolean"},
		},
	}

	return map[string]*openapi.Schema{
		"Prompt": prompt,
		"PromptPage": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"data":        {Type: "array", Items: openapi.SchemaRef("Prompt")},
				"total":       {Type: "integer"},
				"page":        {Type: "integer"},
				"page_size":   {Type: "integer"},
				"total_pages": {Type: "integer"},
			},
		},
		"PromptCommand": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"name":         {Type: "string"},
				"stage":        {Type: "string", Enum: stageEnum()},
				"instructions": {Type: "string"},
				"description":  {Type: "string"},
			},
			Required: []string{"name", "stage", "instructions"},
		},
		"StageContent": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"stage":   {Type: "string"},
				"content": {Type: "string"},
			},
		},
	}
}

func stageEnum() []any {
	out := make([]any, len(stages))
	for i, s := range stages {
		out[i] = string(s)
	}
	return out
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := handlers.PathID(r, "id")
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return uuid.Nil, false
	}
	return id, true
}

func decodeBody[T any](h *Handler, w http.ResponseWriter, r *http.Request) (T, bool) {
	var v T
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("decode body: %w", err))
		return v, false
	}
	return v, true
}

// byID adapts a prompt lookup or transition keyed by the {id} path value.
func (h *Handler) byID(op func(context.Context, uuid.UUID) (*Prompt, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := h.pathID(w, r)
		if !ok {
			return
		}
		prompt, err := op(r.Context(), id)
		if err != nil {
			h.fail(w, err)
			return
		}
		handlers.RespondJSON(w, http.StatusOK, prompt)
	}
}

func (h *Handler) byStage(op func(context.Context, Stage) (string, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stage, err := ParseStage(r.PathValue("stage"))
		if err != nil {
			h.fail(w, err)
			return
		}
		text, err := op(r.Context(), stage)
		if err != nil {
			h.fail(w, err)
			return
		}
		handlers.RespondJSON(w, http.StatusOK, StageContent{Stage: stage, Content: text})
	}
}

func (h *Handler) page(w http.ResponseWriter, r *http.Request, page pagination.PageRequest, filters Filters) {
	result, err := h.sys.List(r.Context(), page, filters)
	if err != nil {
		h.fail(w, err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, result)
}

// List serves GET /prompts with query-string filters.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()
	h.page(w, r, pagination.PageRequestFromQuery(values, h.pagination), FiltersFromQuery(values))
}

// Search is List with the criteria in a JSON body.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeBody[SearchRequest](h, w, r)
	if !ok {
		return
	}
	req.PageRequest.Normalize(h.pagination)
	h.page(w, r, req.PageRequest, req.Filters)
}

func (h *Handler) Stages(w http.ResponseWriter, r *http.Request) {
	handlers.RespondJSON(w, http.StatusOK, Stages())
}

func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	h.byID(h.sys.Find)(w, r)
}

// Activate makes the prompt its stage's override, clearing the previous holder.
func (h *Handler) Activate(w http.ResponseWriter, r *http.Request) {
	h.byID(h.sys.Activate)(w, r)
}

// Deactivate reverts the prompt's stage to its built-in instructions.
func (h *Handler) Deactivate(w http.ResponseWriter, r *http.Request) {
	h.byID(h.sys.Deactivate)(w, r)
}

// Instructions returns the text a stage currently runs with.
func (h *Handler) Instructions(w http.ResponseWriter, r *http.Request) {
	h.byStage(h.sys.Instructions)(w, r)
}

// Spec returns a stage's fixed output contract.
func (h *Handler) Spec(w http.ResponseWriter, r *http.Request) {
	h.byStage(h.sys.Spec)(w, r)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	cmd, ok := decodeBody[CreateCommand](h, w, r)
	if !ok {
		return
	}
	prompt, err := h.sys.Create(r.Context(), cmd)
	if err != nil {
		h.fail(w, err)
		return
	}
	handlers.RespondJSON(w, http.StatusCreated, prompt)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	cmd, ok := decodeBody[UpdateCommand](h, w, r)
	if !ok {
		return
	}
	prompt, err := h.sys.Update(r.Context(), id, cmd)
	if err != nil {
		h.fail(w, err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, prompt)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.sys.Delete(r.Context(), id); err != nil {
		h.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
