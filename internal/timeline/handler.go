package timeline

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/JaimeStill/medbrief/pkg/handlers"
	"github.com/JaimeStill/medbrief/pkg/openapi"
	"github.com/JaimeStill/medbrief/pkg/pagination"
	"github.com/JaimeStill/medbrief/pkg/routes"
)

// Handler provides HTTP endpoints for timeline queries.
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

// NewHandler creates a Handler with the given system, logger, and pagination config.
func NewHandler(sys System, logger *slog.Logger, pagination pagination.Config) *Handler {
	return &Handler{
		sys:        sys,
		logger:     logger.With("handler", "timeline"),
		pagination: pagination,
	}
}

// Routes returns the route group definition for timeline endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/timeline",
		Tags:   []string{"Timeline"},
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List, OpenAPI: &openapi.Operation{
				Summary: "List timeline events across summaries",
				Parameters: []*openapi.Parameter{
					openapi.QueryParam("summary_id", "string", "Filter by summary"),
					openapi.QueryParam("event_type", "string", "Filter by event category"),
					openapi.QueryParam("from", "string", "Earliest event date, inclusive"),
					openapi.QueryParam("to", "string", "Latest event date, exclusive"),
					openapi.QueryParam("page", "integer", "Page number"),
					openapi.QueryParam("page_size", "integer", "Page size"),
					openapi.QueryParam("search", "string", "Search description, source and patient"),
				},
				Responses: map[int]*openapi.Response{
					200: openapi.ResponseJSON("Page of events", "TimelinePage"),
				},
			}},
			{Method: "POST", Pattern: "/search", Handler: h.Search, OpenAPI: &openapi.Operation{
				Summary:     "Search timeline events",
				RequestBody: openapi.RequestBodyJSON("TimelineSearch", true),
				Responses: map[int]*openapi.Response{
					200: openapi.ResponseJSON("Page of events", "TimelinePage"),
					400: openapi.ResponseRef("BadRequest"),
				},
			}},
			{Method: "GET", Pattern: "/summary/{id}", Handler: h.ListBySummary, OpenAPI: &openapi.Operation{
				Summary:    "List a summary's events, newest first",
				Parameters: []*openapi.Parameter{openapi.PathParam("id", "Summary UUID")},
				Responses: map[int]*openapi.Response{
					200: openapi.ResponseJSON("Events", "TimelineEventList"),
					400: openapi.ResponseRef("BadRequest"),
				},
			}},
		},
	}
}

// Schemas returns the component schemas referenced by Routes.
func Schemas() map[string]*openapi.Schema {
	types := make([]any, len(eventTypes))
	for i, t := range eventTypes {
		types[i] = t
	}

	event := &openapi.Schema{
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"id":              {Type: "string", Format: "uuid"},
			"summary_id":      {Type: "string", Format: "uuid"},
			"event_date":      {Type: "string", Format: "date-time"},
			"event_type":      {Type: "string", Enum: types},
			"description":     {Type: "string"},
			"document_source": {Type: "string"},
			"created_at":      {Type: "string", Format: "date-time"},
			"patient_name":    {Type: "string"},
		},
	}

	return map[string]*openapi.Schema{
		"TimelineEvent":     event,
		"TimelineEventList": {Type: "array", Items: openapi.SchemaRef("TimelineEvent")},
		"TimelinePage": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"data":        {Type: "array", Items: openapi.SchemaRef("TimelineEvent")},
				"total":       {Type: "integer"},
				"page":        {Type: "integer"},
				"page_size":   {Type: "integer"},
				"total_pages": {Type: "integer"},
			},
		},
		"TimelineSearch": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"page":       {Type: "integer"},
				"page_size":  {Type: "integer"},
				"search":     {Type: "string"},
				"summary_id": {Type: "string", Format: "uuid"},
				"event_type": {Type: "string", Enum: types},
				"from":       {Type: "string", Format: "date-time"},
				"to":         {Type: "string", Format: "date-time"},
			},
		},
	}
}

// List returns a paginated list of events with optional query parameter filters.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)
	filters := FiltersFromQuery(r.URL.Query())

	result, err := h.sys.List(r.Context(), page, filters)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Search accepts a JSON body with pagination and filter criteria.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	req.PageRequest.Normalize(h.pagination)

	result, err := h.sys.List(r.Context(), req.PageRequest, req.Filters)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// ListBySummary returns the events recorded for one summary.
func (h *Handler) ListBySummary(w http.ResponseWriter, r *http.Request) {
	id, err := handlers.PathID(r, "id")
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	events, err := h.sys.ListBySummary(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, events)
}
